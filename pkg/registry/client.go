package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"golang.org/x/time/rate"

	"github.com/arthur-debert/bpack/internal/version"
	"github.com/arthur-debert/bpack/pkg/config"
	"github.com/arthur-debert/bpack/pkg/errors"
	"github.com/arthur-debert/bpack/pkg/filesystem"
	"github.com/arthur-debert/bpack/pkg/logging"
	"github.com/arthur-debert/bpack/pkg/packs"
	"github.com/arthur-debert/bpack/pkg/packspec"
	"github.com/arthur-debert/bpack/pkg/paths"
)

// Options configures a Client. Zero values fall back to the built-in
// configuration defaults.
type Options struct {
	URL       string
	CDN       string
	Keyword   string
	UserAgent string
	Timeout   time.Duration
	RateLimit float64
	Burst     int
	PerPage   int
	Retries   int
	// RetryInterval is the first backoff delay; later ones grow exponentially
	RetryInterval time.Duration
	// CacheDir is the base cache directory; crates go into its crates/ child
	CacheDir   string
	HTTPClient *http.Client
	FS         filesystem.FS
}

// OptionsFromConfig maps the registry and cache sections
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		URL:       cfg.Registry.URL,
		CDN:       cfg.Registry.CDN,
		Keyword:   cfg.Registry.Keyword,
		UserAgent: cfg.Registry.UserAgent,
		Timeout:   cfg.Registry.Timeout,
		RateLimit: cfg.Registry.RateLimit,
		Burst:     cfg.Registry.Burst,
		PerPage:   cfg.Registry.PerPage,
		Retries:   cfg.Registry.Retries,
		CacheDir:  cfg.Cache.Dir,
	}
}

// Client talks to the crates.io API and CDN. Every request waits on a
// shared rate limiter; transient failures are retried with exponential
// backoff.
type Client struct {
	opts    Options
	http    *http.Client
	limiter *rate.Limiter
	fs      filesystem.FS
}

// NewClient creates a client, filling unset options from the defaults
func NewClient(opts Options) *Client {
	defaults := OptionsFromConfig(config.Default())
	if opts.URL == "" {
		opts.URL = defaults.URL
	}
	if opts.CDN == "" {
		opts.CDN = defaults.CDN
	}
	if opts.Keyword == "" {
		opts.Keyword = defaults.Keyword
	}
	if opts.UserAgent == "" {
		opts.UserAgent = version.UserAgent()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaults.Timeout
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = defaults.RateLimit
	}
	if opts.Burst <= 0 {
		opts.Burst = defaults.Burst
	}
	if opts.PerPage <= 0 {
		opts.PerPage = defaults.PerPage
	}
	if opts.Retries <= 0 {
		opts.Retries = defaults.Retries
	}
	opts.URL = strings.TrimRight(opts.URL, "/")
	opts.CDN = strings.TrimRight(opts.CDN, "/")

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}
	fsys := opts.FS
	if fsys == nil {
		fsys = filesystem.NewOS()
	}

	return &Client{
		opts:    opts,
		http:    httpClient,
		limiter: rate.NewLimiter(rate.Limit(opts.RateLimit), opts.Burst),
		fs:      fsys,
	}
}

// CratesDir is where downloaded crates are extracted
func (c *Client) CratesDir() string {
	return paths.CratesCacheDir(c.opts.CacheDir)
}

// get performs a rate-limited GET and returns the body. 404 maps to
// NOT_FOUND and is not retried; other failures are FETCH_ERROR.
func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	logger := logging.GetLogger("registry.client")

	op := func() ([]byte, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, backoff.Permanent(errors.Wrap(err, errors.ErrFetch, "request cancelled"))
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, backoff.Permanent(errors.Wrapf(err, errors.ErrFetch, "invalid request URL %s", rawURL))
		}
		req.Header.Set("User-Agent", c.opts.UserAgent)
		req.Header.Set("Accept", "application/json")

		logger.Debug().Str("url", rawURL).Msg("GET")
		resp, err := c.http.Do(req)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrFetch, "request to %s failed", rawURL)
		}
		defer func() { _ = resp.Body.Close() }()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrFetch, "failed to read response from %s", rawURL)
		}

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return nil, backoff.Permanent(errors.Newf(errors.ErrNotFound, "%s was not found", rawURL).
				WithDetail("url", rawURL))
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			return nil, errors.Newf(errors.ErrFetch, "registry returned %d", resp.StatusCode).
				WithDetail("url", rawURL).
				WithDetail("status", resp.StatusCode)
		case resp.StatusCode != http.StatusOK:
			return nil, backoff.Permanent(errors.Newf(errors.ErrFetch, "registry returned %d: %s", resp.StatusCode, snippet(body)).
				WithDetail("url", rawURL).
				WithDetail("status", resp.StatusCode))
		}
		return body, nil
	}

	policy := backoff.NewExponentialBackOff()
	if c.opts.RetryInterval > 0 {
		policy.InitialInterval = c.opts.RetryInterval
	}
	body, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(uint(c.opts.Retries)),
		backoff.WithMaxElapsedTime(c.opts.Timeout*time.Duration(c.opts.Retries)),
		backoff.WithNotify(func(err error, next time.Duration) {
			logger.Warn().Err(err).Dur("retry_in", next).Msg("Registry request failed, retrying")
		}),
	)
	if err != nil {
		if errors.GetErrorCode(err) == errors.ErrUnknown {
			return nil, errors.Wrapf(err, errors.ErrFetch, "request to %s failed", rawURL)
		}
		return nil, err
	}
	return body, nil
}

func (c *Client) getJSON(ctx context.Context, rawURL string, out interface{}) error {
	body, err := c.get(ctx, rawURL)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return errors.Wrapf(err, errors.ErrFetch, "unexpected response from %s", rawURL)
	}
	return nil
}

func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}

type searchResponse struct {
	Crates []struct {
		Name             string `json:"name"`
		MaxVersion       string `json:"max_version"`
		MaxStableVersion string `json:"max_stable_version"`
		Description      string `json:"description"`
		Repository       string `json:"repository"`
		Downloads        int64  `json:"downloads"`
	} `json:"crates"`
}

// Search lists packs published with the battery-pack keyword, optionally
// filtered by a free-text query. Crates not following the naming
// convention are dropped.
func (c *Client) Search(ctx context.Context, filter string) ([]PackSummary, error) {
	q := url.Values{}
	q.Set("keyword", c.opts.Keyword)
	q.Set("per_page", fmt.Sprint(c.opts.PerPage))
	if filter != "" {
		q.Set("q", filter)
	}

	var resp searchResponse
	if err := c.getJSON(ctx, c.opts.URL+"?"+q.Encode(), &resp); err != nil {
		return nil, err
	}

	var out []PackSummary
	for _, cr := range resp.Crates {
		if !packs.IsPackName(cr.Name) {
			continue
		}
		v := cr.MaxStableVersion
		if v == "" {
			v = cr.MaxVersion
		}
		out = append(out, PackSummary{
			Name:        cr.Name,
			ShortName:   packs.ShortName(cr.Name),
			Version:     v,
			Description: strings.TrimSpace(cr.Description),
			Repository:  cr.Repository,
			Downloads:   cr.Downloads,
			Source:      SourceRegistry,
		})
	}
	return out, nil
}

type crateResponse struct {
	Crate struct {
		Name             string `json:"name"`
		MaxVersion       string `json:"max_version"`
		MaxStableVersion string `json:"max_stable_version"`
		Description      string `json:"description"`
		Repository       string `json:"repository"`
		Documentation    string `json:"documentation"`
	} `json:"crate"`
	Versions []struct {
		Num      string `json:"num"`
		Yanked   bool   `json:"yanked"`
		Checksum string `json:"checksum"`
	} `json:"versions"`
}

// Crate fetches a crate's metadata. Version is the newest non-yanked
// version as listed by the registry.
func (c *Client) Crate(ctx context.Context, name string) (CrateInfo, error) {
	var resp crateResponse
	if err := c.getJSON(ctx, c.opts.URL+"/"+url.PathEscape(name), &resp); err != nil {
		return CrateInfo{}, err
	}

	info := CrateInfo{
		Name:          resp.Crate.Name,
		Description:   strings.TrimSpace(resp.Crate.Description),
		Repository:    resp.Crate.Repository,
		Documentation: resp.Crate.Documentation,
	}
	for _, v := range resp.Versions {
		if v.Yanked {
			continue
		}
		info.Versions = append(info.Versions, v.Num)
		if info.Version == "" {
			info.Version = v.Num
			info.Checksum = v.Checksum
		}
	}
	if info.Version == "" {
		return info, errors.Newf(errors.ErrNotFound, "%s has no published version", name).
			WithDetail("crate", name)
	}
	return info, nil
}

type ownersResponse struct {
	Users []Owner `json:"users"`
}

// Owners lists a crate's owners
func (c *Client) Owners(ctx context.Context, name string) ([]Owner, error) {
	var resp ownersResponse
	if err := c.getJSON(ctx, c.opts.URL+"/"+url.PathEscape(name)+"/owners", &resp); err != nil {
		return nil, err
	}
	return resp.Users, nil
}

// FetchSpec downloads the newest version of a pack and parses its spec
func (c *Client) FetchSpec(ctx context.Context, name string) (*packspec.Spec, error) {
	info, err := c.Crate(ctx, name)
	if err != nil {
		return nil, err
	}
	dir, err := c.Download(ctx, name, info.Version, info.Checksum)
	if err != nil {
		return nil, err
	}
	return packspec.Load(dir)
}
