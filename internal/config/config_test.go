package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/coursemap/pkg/errors"
)

func env(vars map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := LoadWithEnv("", env(nil))
	if err != nil {
		t.Fatalf("LoadWithEnv: %v", err)
	}
	if cfg.Server.Addr != ":8080" || cfg.Catalog.Source != SourceFile || cfg.Cache.TTL != time.Hour {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.Layout.ColumnWidth != 260 || cfg.Layout.RowHeight != 180 {
		t.Errorf("layout defaults = %+v", cfg.Layout)
	}
	if cfg.Credits.Total != 128 {
		t.Errorf("credit defaults = %+v", cfg.Credits)
	}
}

func TestLoad_TOML(t *testing.T) {
	path := writeFile(t, "coursemap.toml", `
[server]
addr = ":9090"
read_timeout = "5s"

[layout]
column_width = 200

[credits]
compulsory = 70
elective = 20
general = 30
total = 130

[records]
backend = "redis"

[cache]
backend = "none"
ttl = "15m"

[redis]
addr = "redis:6379"
db = 2
`)
	cfg, err := LoadWithEnv(path, env(nil))
	if err != nil {
		t.Fatalf("LoadWithEnv: %v", err)
	}
	if cfg.Server.Addr != ":9090" || cfg.Server.ReadTimeout != 5*time.Second {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Server.WriteTimeout != 30*time.Second {
		t.Errorf("unset field lost its default: %v", cfg.Server.WriteTimeout)
	}
	if cfg.Layout.ColumnWidth != 200 || cfg.Layout.RowHeight != 180 {
		t.Errorf("layout = %+v", cfg.Layout)
	}
	if cfg.Credits.Compulsory != 70 || cfg.Records.Backend != BackendRedis || cfg.Cache.TTL != 15*time.Minute {
		t.Errorf("config = %+v", cfg)
	}
	if cfg.Redis.Addr != "redis:6379" || cfg.Redis.DB != 2 {
		t.Errorf("redis = %+v", cfg.Redis)
	}
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "coursemap.yaml", `
catalog:
  source: mongo
records:
  backend: mongo
mongo:
  uri: mongodb://db:27017
  database: curriculum
cache:
  ttl: 2h
`)
	cfg, err := LoadWithEnv(path, env(nil))
	if err != nil {
		t.Fatalf("LoadWithEnv: %v", err)
	}
	if cfg.Catalog.Source != SourceMongo || cfg.Mongo.Database != "curriculum" || cfg.Cache.TTL != 2*time.Hour {
		t.Errorf("config = %+v", cfg)
	}
}

func TestLoad_PathFromEnv(t *testing.T) {
	path := writeFile(t, "c.toml", "[server]\naddr = \":7000\"\n")
	cfg, err := LoadWithEnv("", env(map[string]string{EnvConfigPath: path}))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Addr != ":7000" {
		t.Errorf("addr = %q", cfg.Server.Addr)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeFile(t, "c.toml", "[server]\naddr = \":7000\"\n")
	cfg, err := LoadWithEnv(path, env(map[string]string{
		"COURSEMAP_SERVER_ADDR":     ":6000",
		"COURSEMAP_CATALOG_SOURCE":  "postgres",
		"COURSEMAP_POSTGRES_DSN":    "postgres://localhost/cm",
		"COURSEMAP_RECORDS_BACKEND": "postgres",
		"COURSEMAP_CACHE_TTL":       "30s",
		"COURSEMAP_REDIS_DB":        "3",

		"COURSEMAP_RECORDS_SESSION_TTL": "5m",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Addr != ":6000" || cfg.Catalog.Source != SourcePostgres || cfg.Postgres.DSN == "" {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.Cache.TTL != 30*time.Second || cfg.Redis.DB != 3 {
		t.Errorf("typed overrides not applied: ttl %v db %d", cfg.Cache.TTL, cfg.Redis.DB)
	}
	if cfg.Records.SessionTTL != 5*time.Minute {
		t.Errorf("session ttl = %v, want 5m", cfg.Records.SessionTTL)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		env      map[string]string
		wantCode errors.Code
	}{
		{"missing file", "/nonexistent/coursemap.toml", nil, errors.ErrCodeNotFound},
		{"bad toml", writeFile(t, "bad.toml", "[server\n"), nil, errors.ErrCodeInvalidFormat},
		{"bad extension", writeFile(t, "c.ini", "x=1"), nil, errors.ErrCodeInvalidFormat},
		{"bad duration", "", map[string]string{"COURSEMAP_CACHE_TTL": "soon"}, errors.ErrCodeInvalidInput},
		{"bad session ttl", "", map[string]string{"COURSEMAP_RECORDS_SESSION_TTL": "later"}, errors.ErrCodeInvalidInput},
		{"negative session ttl", "", map[string]string{"COURSEMAP_RECORDS_SESSION_TTL": "-1m"}, errors.ErrCodeInvalidInput},
		{"bad backend", "", map[string]string{"COURSEMAP_RECORDS_BACKEND": "sqlite"}, errors.ErrCodeInvalidInput},
		{"postgres without dsn", "", map[string]string{"COURSEMAP_RECORDS_BACKEND": "postgres"}, errors.ErrCodeInvalidInput},
		{"catalog traversal", "", map[string]string{"COURSEMAP_CATALOG_PATH": "../catalog.json"}, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadWithEnv(tt.path, env(tt.env))
			if !errors.Is(err, tt.wantCode) {
				t.Errorf("error = %v, want %s", err, tt.wantCode)
			}
		})
	}
}

func TestPipelineOptions(t *testing.T) {
	cfg := Default()
	cfg.Layout.ColumnWidth = 100
	opts := cfg.PipelineOptions()
	if opts.Layout.ColumnWidth != 100 || opts.CacheTTL != time.Hour || opts.Credits.General != 28 ||
		opts.SessionTTL != 30*time.Minute {
		t.Errorf("PipelineOptions = %+v", opts)
	}
	if err := opts.Validate(); err != nil {
		t.Error(err)
	}
}
