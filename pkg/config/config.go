// Package config loads engine configuration files.
//
// A configuration file holds the pipeline options plus the cache and server
// settings of the host. TOML, YAML and JSON are accepted; the format follows
// the file extension:
//
//	[pipeline]
//	cluster = "team"
//	collapsed = ["root"]
//
//	[pipeline.layout]
//	type = "forceDirected2d"
//
//	[pipeline.layout.force]
//	cluster_type = "force"
//
//	[pipeline.sizing]
//	type = "pagerank"
//
//	[cache]
//	backend = "redis"
//	url = "redis://localhost:6379"
//
//	[server]
//	addr = ":8080"
//
// Unknown keys are rejected, so a misspelled option fails loudly instead of
// silently taking its default.
//
// [Loader] keeps the latest valid configuration and reloads it when the file
// changes on disk, using fsnotify. [WatchFiles] exposes the same watching for
// other files, such as graph inputs.
package config

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/graphscape/pkg/cache"
	"github.com/matzehuels/graphscape/pkg/errors"
	"github.com/matzehuels/graphscape/pkg/layout"
	"github.com/matzehuels/graphscape/pkg/pipeline"
)

// Cache backends.
const (
	BackendFile  = "file"
	BackendNone  = "none"
	BackendRedis = "redis"
	BackendMongo = "mongo"
)

// ValidBackends is the set of supported cache backends.
var ValidBackends = map[string]bool{
	BackendFile:  true,
	BackendNone:  true,
	BackendRedis: true,
	BackendMongo: true,
}

// DefaultAddr is the server listen address when none is configured.
const DefaultAddr = ":8080"

// DefaultSessionTTL is how long an idle server session is kept.
const DefaultSessionTTL = 30 * time.Minute

// Config is the content of a configuration file.
type Config struct {
	Pipeline pipeline.Options `json:"pipeline" toml:"pipeline" yaml:"pipeline"`
	Cache    CacheConfig      `json:"cache" toml:"cache" yaml:"cache"`
	Server   ServerConfig     `json:"server" toml:"server" yaml:"server"`
}

// CacheConfig selects and configures the layout cache.
type CacheConfig struct {
	Backend string `json:"backend,omitempty" toml:"backend" yaml:"backend,omitempty"`

	// Dir is the file cache directory.
	Dir string `json:"dir,omitempty" toml:"dir" yaml:"dir,omitempty"`

	// URL is the Redis URL or MongoDB URI.
	URL        string `json:"url,omitempty" toml:"url" yaml:"url,omitempty"`
	Prefix     string `json:"prefix,omitempty" toml:"prefix" yaml:"prefix,omitempty"`
	Database   string `json:"database,omitempty" toml:"database" yaml:"database,omitempty"`
	Collection string `json:"collection,omitempty" toml:"collection" yaml:"collection,omitempty"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr       string   `json:"addr,omitempty" toml:"addr" yaml:"addr,omitempty"`
	SessionTTL duration `json:"session_ttl,omitempty" toml:"session_ttl" yaml:"session_ttl,omitempty"`
}

// duration decodes Go duration strings such as "30m" from any format.
type duration time.Duration

func (d *duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = duration(v)
	return nil
}

func (d duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Default returns the configuration used when no file is given.
func Default() Config {
	c := Config{}
	c.SetDefaults()
	return c
}

// SetDefaults fills unset host settings. Pipeline defaults are applied by
// [pipeline.Options.ValidateAndSetDefaults].
func (c *Config) SetDefaults() {
	if c.Cache.Backend == "" {
		c.Cache.Backend = BackendFile
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Server.SessionTTL <= 0 {
		c.Server.SessionTTL = duration(DefaultSessionTTL)
	}
}

// SessionTTL returns the configured idle session lifetime.
func (c *Config) SessionTTL() time.Duration { return time.Duration(c.Server.SessionTTL) }

// Validate checks the host settings and the pipeline options.
func (c *Config) Validate() error {
	if c.Cache.Backend != "" && !ValidBackends[c.Cache.Backend] {
		return errors.New(errors.ErrCodeInvalidOptions, "unknown cache backend %q", c.Cache.Backend)
	}
	opts := c.Pipeline
	if opts.Layout.ResolvedType() == layout.Custom {
		return errors.New(errors.ErrCodeInvalidOptions, "custom layouts cannot be configured from a file")
	}
	return opts.ValidateAndSetDefaults()
}

// =============================================================================
// Loading
// =============================================================================

// Load reads, decodes and validates the configuration file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "read config %s", path)
		}
		return Config{}, errors.Wrap(errors.ErrCodeInvalidPath, err, "read config %s", path)
	}
	cfg, err := Decode(data, formatOf(path))
	if err != nil {
		return Config{}, errors.Wrap(errors.GetCode(err), err, "config %s", path)
	}
	return cfg, nil
}

// Decode parses data in the given format ("toml", "yaml" or "json"),
// validates it and applies host defaults.
func Decode(data []byte, format string) (Config, error) {
	var cfg Config
	switch format {
	case "toml":
		md, err := toml.Decode(string(data), &cfg)
		if err != nil {
			return Config{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse TOML")
		}
		if keys := md.Undecoded(); len(keys) > 0 {
			return Config{}, errors.New(errors.ErrCodeInvalidOptions, "unknown key %q", keys[0].String())
		}
	case "yaml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && len(bytes.TrimSpace(data)) > 0 {
			return Config{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse YAML")
		}
	case "json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&cfg); err != nil {
			return Config{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse JSON")
		}
	default:
		return Config{}, errors.New(errors.ErrCodeInvalidFormat, "unknown config format %q", format)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	cfg.SetDefaults()
	return cfg, nil
}

func formatOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	case ".json":
		return "json"
	default:
		return "toml"
	}
}

// =============================================================================
// Cache Construction
// =============================================================================

// OpenCache connects the configured cache backend. defaultDir is used by the
// file backend when no directory is configured.
func (c CacheConfig) OpenCache(ctx context.Context, defaultDir string) (cache.Cache, error) {
	switch c.Backend {
	case BackendNone:
		return cache.NewNullCache(), nil
	case BackendRedis:
		rc, err := cache.NewRedisCache(ctx, cache.RedisOptions{URL: c.URL, Prefix: c.Prefix})
		if err != nil {
			return nil, err
		}
		return rc, nil
	case BackendMongo:
		mc, err := cache.NewMongoCache(ctx, cache.MongoOptions{
			URI:        c.URL,
			Database:   c.Database,
			Collection: c.Collection,
		})
		if err != nil {
			return nil, err
		}
		return mc, nil
	case BackendFile, "":
		dir := c.Dir
		if dir == "" {
			dir = defaultDir
		}
		if dir == "" {
			return cache.NewNullCache(), nil
		}
		fc, err := cache.NewFileCache(dir)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeCache, err, "open file cache")
		}
		return fc, nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidOptions, "unknown cache backend %q", c.Backend)
	}
}

// Keyer returns the cache keyer for the configured prefix. The Redis backend
// prefixes keys itself.
func (c CacheConfig) Keyer() cache.Keyer {
	if c.Prefix == "" || c.Backend == BackendRedis {
		return cache.NewDefaultKeyer()
	}
	return cache.NewScopedKeyer(nil, c.Prefix)
}
