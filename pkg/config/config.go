package config

import "time"

// Registry holds crates.io access settings
type Registry struct {
	URL       string        `koanf:"url" validate:"required,url"`
	CDN       string        `koanf:"cdn" validate:"required,url"`
	Keyword   string        `koanf:"keyword" validate:"required"`
	UserAgent string        `koanf:"user_agent"`
	Timeout   time.Duration `koanf:"timeout" validate:"gt=0"`
	// RateLimit is in requests per second
	RateLimit float64 `koanf:"rate_limit" validate:"gt=0"`
	Burst     int     `koanf:"burst" validate:"gte=1"`
	PerPage   int     `koanf:"per_page" validate:"gte=1,lte=100"`
	// Retries is the number of attempts for a failed request
	Retries int `koanf:"retries" validate:"gte=1,lte=10"`
}

// Cache holds download cache settings. An empty Dir means the XDG cache home.
type Cache struct {
	Dir string `koanf:"dir"`
}

// Packs holds pack naming and local source settings
type Packs struct {
	Suffix     string   `koanf:"suffix" validate:"required"`
	LocalPaths []string `koanf:"local_paths"`
}

// Output holds rendering settings
type Output struct {
	Format       string `koanf:"format" validate:"oneof=auto term terminal text plain json yaml xml"`
	GlamourStyle string `koanf:"glamour_style"`
	WordWrap     int    `koanf:"word_wrap" validate:"gte=0"`
}

// Scaffold selects how project templates are materialized
type Scaffold struct {
	Engine string `koanf:"engine" validate:"oneof=builtin cargo-generate"`
}

// TUI holds interactive session settings
type TUI struct {
	AltScreen bool `koanf:"alt_screen"`
}

// Config is the main configuration structure
type Config struct {
	Registry Registry `koanf:"registry"`
	Cache    Cache    `koanf:"cache"`
	Packs    Packs    `koanf:"packs"`
	Output   Output   `koanf:"output"`
	Scaffold Scaffold `koanf:"scaffold"`
	TUI      TUI      `koanf:"tui"`
}
