// Package config loads the coursemap configuration.
//
// Configuration is layered: built-in defaults, then an optional TOML or
// YAML file (chosen by extension), then COURSEMAP_* environment variables.
// The file path comes from --config or COURSEMAP_CONFIG.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/coursemap/pkg/credits"
	"github.com/matzehuels/coursemap/pkg/errors"
	"github.com/matzehuels/coursemap/pkg/layout"
	"github.com/matzehuels/coursemap/pkg/pipeline"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "COURSEMAP_"

// EnvConfigPath names the variable holding the config file path.
const EnvConfigPath = EnvPrefix + "CONFIG"

// Catalog sources.
const (
	SourceFile     = "file"
	SourcePostgres = "postgres"
	SourceMongo    = "mongo"
)

// Record and cache backends.
const (
	BackendNone     = "none"
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendMongo    = "mongo"
)

// Config is the complete configuration.
type Config struct {
	Server   ServerConfig         `toml:"server" yaml:"server"`
	Layout   LayoutConfig         `toml:"layout" yaml:"layout"`
	Credits  credits.Requirements `toml:"credits" yaml:"credits"`
	Catalog  CatalogConfig        `toml:"catalog" yaml:"catalog"`
	Records  RecordsConfig        `toml:"records" yaml:"records"`
	Cache    CacheConfig          `toml:"cache" yaml:"cache"`
	Postgres PostgresConfig       `toml:"postgres" yaml:"postgres"`
	Mongo    MongoConfig          `toml:"mongo" yaml:"mongo"`
	Redis    RedisConfig          `toml:"redis" yaml:"redis"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr           string        `toml:"addr" yaml:"addr"`
	ReadTimeout    time.Duration `toml:"read_timeout" yaml:"read_timeout"`
	WriteTimeout   time.Duration `toml:"write_timeout" yaml:"write_timeout"`
	RequestTimeout time.Duration `toml:"request_timeout" yaml:"request_timeout"`
}

// LayoutConfig sets the grid cell size.
type LayoutConfig struct {
	ColumnWidth float64 `toml:"column_width" yaml:"column_width"`
	RowHeight   float64 `toml:"row_height" yaml:"row_height"`
}

// CatalogConfig selects where the catalog is read from.
type CatalogConfig struct {
	Source string `toml:"source" yaml:"source"`
	Path   string `toml:"path" yaml:"path"`
}

// RecordsConfig selects where student records are stored.
type RecordsConfig struct {
	Backend    string        `toml:"backend" yaml:"backend"`
	Dir        string        `toml:"dir" yaml:"dir"`
	SessionTTL time.Duration `toml:"session_ttl" yaml:"session_ttl"`
}

// CacheConfig selects the layout and render cache.
type CacheConfig struct {
	Backend string        `toml:"backend" yaml:"backend"`
	TTL     time.Duration `toml:"ttl" yaml:"ttl"`
	Dir     string        `toml:"dir" yaml:"dir"`
}

// PostgresConfig configures the Postgres pool.
type PostgresConfig struct {
	DSN      string `toml:"dsn" yaml:"dsn"`
	MaxConns int32  `toml:"max_conns" yaml:"max_conns"`
}

// MongoConfig configures the MongoDB client.
type MongoConfig struct {
	URI      string `toml:"uri" yaml:"uri"`
	Database string `toml:"database" yaml:"database"`
}

// RedisConfig configures the Redis client. URL takes precedence over the
// other fields.
type RedisConfig struct {
	Addr     string `toml:"addr" yaml:"addr"`
	Password string `toml:"password" yaml:"password"`
	DB       int    `toml:"db" yaml:"db"`
	URL      string `toml:"url" yaml:"url"`
}

// Default returns the built-in configuration: a catalog.json next to the
// working directory, file records under the user config dir and a file cache.
func Default() Config {
	lo := layout.DefaultOptions()
	return Config{
		Server: ServerConfig{
			Addr:           ":8080",
			ReadTimeout:    10 * time.Second,
			WriteTimeout:   30 * time.Second,
			RequestTimeout: 20 * time.Second,
		},
		Layout:   LayoutConfig{ColumnWidth: lo.ColumnWidth, RowHeight: lo.RowHeight},
		Credits:  credits.DefaultRequirements(),
		Catalog:  CatalogConfig{Source: SourceFile, Path: "catalog.json"},
		Records:  RecordsConfig{Backend: BackendFile, SessionTTL: pipeline.DefaultSessionTTL},
		Cache:    CacheConfig{Backend: BackendFile, TTL: pipeline.DefaultCacheTTL},
		Postgres: PostgresConfig{MaxConns: 10},
		Mongo:    MongoConfig{URI: "mongodb://localhost:27017", Database: "coursemap"},
		Redis:    RedisConfig{Addr: "localhost:6379"},
	}
}

// Load reads the configuration from path, or from COURSEMAP_CONFIG when path
// is empty, and applies environment overrides. Without a file the defaults
// are used.
func Load(path string) (*Config, error) {
	return LoadWithEnv(path, os.LookupEnv)
}

// LookupFunc looks up an environment variable.
type LookupFunc func(key string) (string, bool)

// LoadWithEnv is [Load] with an explicit environment.
func LoadWithEnv(path string, lookup LookupFunc) (*Config, error) {
	cfg := Default()
	if path == "" {
		path, _ = lookup(EnvConfigPath)
	}
	if path != "" {
		if err := cfg.readFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(lookup); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.Wrap(errors.ErrCodeNotFound, err, "config file %s", path)
		}
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "read config %s", path)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, c)
	case ".toml", "":
		_, err = toml.Decode(string(data), c)
	default:
		return errors.New(errors.ErrCodeInvalidFormat, "unsupported config format %q (use .toml or .yaml)", ext)
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse config %s", path)
	}
	return nil
}

func (c *Config) applyEnv(lookup LookupFunc) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = v
		}
	}
	str("SERVER_ADDR", &c.Server.Addr)
	str("CATALOG_SOURCE", &c.Catalog.Source)
	str("CATALOG_PATH", &c.Catalog.Path)
	str("RECORDS_BACKEND", &c.Records.Backend)
	str("RECORDS_DIR", &c.Records.Dir)
	str("CACHE_BACKEND", &c.Cache.Backend)
	str("CACHE_DIR", &c.Cache.Dir)
	str("POSTGRES_DSN", &c.Postgres.DSN)
	str("MONGO_URI", &c.Mongo.URI)
	str("MONGO_DATABASE", &c.Mongo.Database)
	str("REDIS_ADDR", &c.Redis.Addr)
	str("REDIS_PASSWORD", &c.Redis.Password)
	str("REDIS_URL", &c.Redis.URL)

	dur := func(name string, dst *time.Duration) error {
		v, ok := lookup(EnvPrefix + name)
		if !ok {
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "%s%s", EnvPrefix, name)
		}
		*dst = d
		return nil
	}
	if err := dur("CACHE_TTL", &c.Cache.TTL); err != nil {
		return err
	}
	if err := dur("RECORDS_SESSION_TTL", &c.Records.SessionTTL); err != nil {
		return err
	}
	if v, ok := lookup(EnvPrefix + "REDIS_DB"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "%sREDIS_DB", EnvPrefix)
		}
		c.Redis.DB = n
	}
	return nil
}

// Validate checks backend names and the settings each backend needs.
func (c *Config) Validate() error {
	switch c.Catalog.Source {
	case SourceFile:
		if err := errors.ValidatePath(c.Catalog.Path); err != nil {
			return err
		}
	case SourcePostgres, SourceMongo:
	default:
		return invalid("catalog.source", c.Catalog.Source, SourceFile, SourcePostgres, SourceMongo)
	}

	switch c.Records.Backend {
	case BackendMemory, BackendFile, BackendRedis, BackendPostgres, BackendMongo:
	default:
		return invalid("records.backend", c.Records.Backend, BackendMemory, BackendFile, BackendRedis, BackendPostgres, BackendMongo)
	}

	switch c.Cache.Backend {
	case BackendNone, BackendFile, BackendRedis:
	default:
		return invalid("cache.backend", c.Cache.Backend, BackendNone, BackendFile, BackendRedis)
	}

	if c.uses(BackendPostgres) && c.Postgres.DSN == "" {
		return errors.New(errors.ErrCodeInvalidInput, "postgres.dsn is required for the postgres backend")
	}
	if c.uses(BackendMongo) && (c.Mongo.URI == "" || c.Mongo.Database == "") {
		return errors.New(errors.ErrCodeInvalidInput, "mongo.uri and mongo.database are required for the mongo backend")
	}
	if c.Cache.TTL < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "cache.ttl must be non-negative")
	}
	if c.Records.SessionTTL < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "records.session_ttl must be non-negative")
	}
	if c.Layout.ColumnWidth < 0 || c.Layout.RowHeight < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "layout dimensions must be non-negative")
	}
	if err := c.Credits.Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "credits")
	}
	return nil
}

// uses reports whether the catalog or the records use the named backend.
func (c *Config) uses(backend string) bool {
	return c.Catalog.Source == backend || c.Records.Backend == backend
}

func invalid(field, got string, valid ...string) error {
	return errors.New(errors.ErrCodeInvalidInput, "invalid %s %q (must be one of: %s)", field, got, strings.Join(valid, ", "))
}

// PipelineOptions converts the configuration into runner options.
func (c *Config) PipelineOptions() pipeline.Options {
	return pipeline.Options{
		Layout:     layout.Options{ColumnWidth: c.Layout.ColumnWidth, RowHeight: c.Layout.RowHeight},
		Credits:    c.Credits,
		CacheTTL:   c.Cache.TTL,
		SessionTTL: c.Records.SessionTTL,
	}
}

// Describe returns a one-line summary for logs.
func (c *Config) Describe() string {
	return fmt.Sprintf("catalog=%s records=%s cache=%s", c.Catalog.Source, c.Records.Backend, c.Cache.Backend)
}
