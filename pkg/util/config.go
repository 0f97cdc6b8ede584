package util

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Port      int           `mapstructure:"port"`
	Timeout   time.Duration `mapstructure:"timeout"`
	RateLimit float64       `mapstructure:"rate_limit"` // requests per second, 0 disables the limiter
	RateBurst int           `mapstructure:"rate_burst"`
}

type SearchConfig struct {
	RadiusKm   float64 `mapstructure:"radius_km"`   // initial nearest-vertex search radius
	MaxSettled int     `mapstructure:"max_settled"` // a* budget, 0 = unbounded
	CacheSize  int     `mapstructure:"cache_size"`  // cached vertex-to-vertex paths, 0 disables the cache

	Landmarks    int    `mapstructure:"landmarks"`     // alt landmarks, 0 uses the great-circle heuristic only
	LandmarkFile string `mapstructure:"landmark_file"` // bzip2 landmark table reused across runs when set
}

type BatchConfig struct {
	Workers int `mapstructure:"workers"`
}

// Config is built once at process start and handed to the components that need it.
type Config struct {
	OsmFile     string       `mapstructure:"osm_file"`
	LogLevel    string       `mapstructure:"log_level"`
	RoutableKey string       `mapstructure:"routable_key"`
	HTTP        HTTPConfig   `mapstructure:"http"`
	Search      SearchConfig `mapstructure:"search"`
	Batch       BatchConfig  `mapstructure:"batch"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("osm_file", "./data/map.osm.pbf")
	v.SetDefault("log_level", "info")
	v.SetDefault("routable_key", "highway")
	v.SetDefault("http.port", 6060)
	v.SetDefault("http.timeout", "60s")
	v.SetDefault("http.rate_limit", 0.0)
	v.SetDefault("http.rate_burst", 20)
	v.SetDefault("search.radius_km", 0.5)
	v.SetDefault("search.max_settled", 0)
	v.SetDefault("search.cache_size", 10000)
	v.SetDefault("search.landmarks", 0)
	v.SetDefault("search.landmark_file", "")
	v.SetDefault("batch.workers", 4)
}

// DefaultConfig returns the configuration without any file or environment overrides.
func DefaultConfig() Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// defaults always decode
	_ = v.Unmarshal(&cfg)
	return cfg
}

// LoadConfig reads defaults, then the config file, then APP_* environment variables.
// When path is empty the file ./configuration/<APP_ENVIRONMENT>.toml is used if it exists.
func LoadConfig(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "__"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("fatal error config file: %w", err)
		}
	} else {
		environment := os.Getenv("APP_ENVIRONMENT")
		if environment == "" {
			environment = "local"
		}
		v.SetConfigName(environment)
		v.SetConfigType("toml")
		v.AddConfigPath(filepath.Join(".", "configuration"))
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("fatal error config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.RoutableKey) == "" {
		return WrapErrorf(nil, ErrBadParamInput, "routable_key must not be empty")
	}
	if c.HTTP.Port < 1 || c.HTTP.Port > 65535 {
		return WrapErrorf(nil, ErrBadParamInput, "http.port %d out of range", c.HTTP.Port)
	}
	if c.Batch.Workers < 1 {
		return WrapErrorf(nil, ErrBadParamInput, "batch.workers must be at least 1")
	}
	if c.Search.RadiusKm <= 0 {
		return WrapErrorf(nil, ErrBadParamInput, "search.radius_km must be positive")
	}
	if c.Search.MaxSettled < 0 {
		return WrapErrorf(nil, ErrBadParamInput, "search.max_settled must not be negative")
	}
	if c.Search.CacheSize < 0 {
		return WrapErrorf(nil, ErrBadParamInput, "search.cache_size must not be negative")
	}
	if c.Search.Landmarks < 0 || c.Search.Landmarks > 64 {
		return WrapErrorf(nil, ErrBadParamInput, "search.landmarks %d out of range [0, 64]", c.Search.Landmarks)
	}
	return nil
}
