package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/bpack/pkg/errors"
	"github.com/arthur-debert/bpack/pkg/logging"
	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every environment override. Nested keys use a double
// underscore: BPACK_REGISTRY__TIMEOUT=10s sets registry.timeout.
const EnvPrefix = "BPACK_"

// ProjectConfigName is the per-project configuration file, looked up next to
// the crate manifest.
const ProjectConfigName = ".bpack.toml"

var validate = validator.New()

// LoadOptions controls which layers are merged
type LoadOptions struct {
	// UserConfigFile is the user-level config. Missing files are skipped.
	UserConfigFile string
	// ProjectDir is searched for ProjectConfigName. Empty skips the layer.
	ProjectDir string
	// Overrides are applied last, keyed by dotted path (e.g. "output.format").
	Overrides map[string]interface{}
}

// Load merges embedded defaults, the user file, the project file, the
// environment and explicit overrides, in that order, then validates the result.
func Load(opts LoadOptions) (*Config, error) {
	log := logging.GetLogger("config")
	k := koanf.New(".")

	if err := k.Load(defaults{}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to load defaults")
	}

	for _, path := range []string{opts.UserConfigFile, projectConfigPath(opts.ProjectDir)} {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err != nil {
			log.Trace().Str("path", path).Msg("Config layer not present")
			continue
		}
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigLoad, "failed to load config from %s", path).
				WithDetail("path", path)
		}
		log.Debug().Str("path", path).Msg("Loaded config layer")
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load environment overrides")
	}

	if len(opts.Overrides) > 0 {
		if err := k.Load(confmap.Provider(opts.Overrides, "."), nil); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load overrides")
		}
	}

	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to unmarshal configuration")
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the embedded defaults alone
func Default() *Config {
	cfg, err := Load(LoadOptions{})
	if err != nil {
		// The embedded file is part of the binary; failing here is a build defect.
		panic(err)
	}
	return cfg
}

// Validate checks value constraints declared on the config structs
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return errors.Wrap(err, errors.ErrConfigValid, "invalid configuration")
	}
	return nil
}

func projectConfigPath(dir string) string {
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, ProjectConfigName)
}

// envKey maps BPACK_REGISTRY__USER_AGENT to registry.user_agent
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(key, "__", ".")
}
