package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/fustilio/glost/pkg/errors"
	"github.com/fustilio/glost/pkg/pipeline"
)

// Config is the optional TOML run configuration loaded via --config.
// Flags take precedence over config values; config values take
// precedence over built-in defaults.
type Config struct {
	// Policy is the failure policy for pipeline runs: strict or lenient.
	Policy string `toml:"policy"`

	// Only restricts runs to a subset of extension ids.
	Only []string `toml:"only"`

	// Cache configures the provider lookup cache.
	Cache CacheConfig `toml:"cache"`

	// Dictionary configures the pronunciation dictionary source.
	Dictionary DictConfig `toml:"dictionary"`

	// Frequency configures the word frequency source.
	Frequency DictConfig `toml:"frequency"`

	// Server configures the HTTP annotation service.
	Server ServerConfig `toml:"server"`
}

// CacheConfig selects and configures a cache backend.
type CacheConfig struct {
	// Backend is one of "none", "memory", "file", "redis".
	Backend string `toml:"backend"`

	// Dir is the cache directory for the file backend.
	// Defaults to ~/.cache/glost when empty.
	Dir string `toml:"dir"`

	// RedisAddr is the host:port for the redis backend.
	RedisAddr string `toml:"redis_addr"`

	// RedisPassword is the optional redis password.
	RedisPassword string `toml:"redis_password"`

	// RedisDB is the redis database number.
	RedisDB int `toml:"redis_db"`
}

// DictConfig selects a dictionary data source. At most one of Path,
// URL, and MongoURI may be set.
type DictConfig struct {
	// Path is a JSON file mapping words to entries.
	Path string `toml:"path"`

	// URL is an http(s) location serving the same JSON shape as Path.
	// The dictionary is downloaded once at startup.
	URL string `toml:"url"`

	// MongoURI is a mongodb connection string.
	MongoURI string `toml:"mongo_uri"`

	// MongoDatabase and MongoCollection locate the entries when
	// MongoURI is set.
	MongoDatabase   string `toml:"mongo_database"`
	MongoCollection string `toml:"mongo_collection"`
}

// ServerConfig configures the serve command.
type ServerConfig struct {
	// Listen is the address for the HTTP service, e.g. ":8080".
	Listen string `toml:"listen"`
}

// defaultConfig returns the configuration used when no file is given.
func defaultConfig() *Config {
	return &Config{
		Policy: string(pipeline.DefaultPolicy),
		Cache:  CacheConfig{Backend: "none"},
		Server: ServerConfig{Listen: ":8080"},
	}
}

// loadConfig reads a TOML config file and applies defaults for unset
// fields. An empty path returns the defaults.
func loadConfig(path string) (*Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("loading config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// validate checks config invariants that TOML decoding cannot express.
func (c *Config) validate() error {
	if c.Policy != "" {
		if err := pipeline.ValidatePolicy(pipeline.Policy(c.Policy)); err != nil {
			return err
		}
	}
	switch c.Cache.Backend {
	case "", "none", "memory", "file", "redis":
	default:
		return fmt.Errorf("unknown cache backend %q (must be none, memory, file, or redis)", c.Cache.Backend)
	}
	if c.Cache.Backend == "redis" && c.Cache.RedisAddr == "" {
		return fmt.Errorf("cache backend redis requires redis_addr")
	}
	for _, d := range []struct {
		name string
		cfg  DictConfig
	}{{"dictionary", c.Dictionary}, {"frequency", c.Frequency}} {
		sources := 0
		for _, s := range []string{d.cfg.Path, d.cfg.URL, d.cfg.MongoURI} {
			if s != "" {
				sources++
			}
		}
		if sources > 1 {
			return fmt.Errorf("%s: path, url, and mongo_uri are mutually exclusive", d.name)
		}
		if d.cfg.URL != "" {
			if err := errors.ValidateURL(d.cfg.URL); err != nil {
				return fmt.Errorf("%s: %w", d.name, err)
			}
		}
		if d.cfg.MongoURI != "" && (d.cfg.MongoDatabase == "" || d.cfg.MongoCollection == "") {
			return fmt.Errorf("%s: mongo_uri requires mongo_database and mongo_collection", d.name)
		}
	}
	return nil
}

// cacheDir returns the file cache directory, creating the default under
// the user cache dir when none is configured.
func (c *CacheConfig) cacheDir() (string, error) {
	if c.Dir != "" {
		return c.Dir, nil
	}
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("resolving cache dir: %w", err)
	}
	return filepath.Join(base, "glost"), nil
}
