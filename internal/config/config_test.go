package config

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		HTTP:     HTTPConfig{Port: 8080},
		Database: DatabaseConfig{Driver: DriverRedis, Addrs: []string{"localhost:6379"}},
		Events:   EventsConfig{ConfigDir: "config/events"},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"invalid port", func(c *Config) { c.HTTP.Port = 0 }, true},
		{"port too large", func(c *Config) { c.HTTP.Port = 70000 }, true},
		{"missing redis addrs", func(c *Config) { c.Database.Addrs = nil }, true},
		{"no database needs no addrs", func(c *Config) {
			c.Database.Driver = DriverNone
			c.Database.Addrs = nil
		}, false},
		{"unknown driver", func(c *Config) { c.Database.Driver = "valkey" }, true},
		{"known timezone", func(c *Config) { c.Search.Timezone = "Asia/Dhaka" }, false},
		{"unknown timezone", func(c *Config) { c.Search.Timezone = "Mars/Olympus" }, true},
		{"missing events dir", func(c *Config) { c.Events.ConfigDir = "" }, true},
		{"log level upper case", func(c *Config) { c.Logging.Level = "WARN" }, false},
		{"unknown log level", func(c *Config) { c.Logging.Level = "verbose" }, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 10 {
		t.Errorf("expected WriteTimeoutSec=10, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("expected ShutdownSec=10, got %d", cfg.HTTP.ShutdownSec)
	}
	if cfg.Database.Driver != DriverRedis {
		t.Errorf("expected Driver=redis, got %q", cfg.Database.Driver)
	}
	if cfg.Database.ReadinessTimeout != 10 {
		t.Errorf("expected ReadinessTimeout=10, got %d", cfg.Database.ReadinessTimeout)
	}
	if cfg.Events.ConfigDir != "config/events" {
		t.Errorf("expected ConfigDir='config/events', got %q", cfg.Events.ConfigDir)
	}
	if cfg.Events.KeyPrefix != "crvs:" {
		t.Errorf("expected KeyPrefix='crvs:', got %q", cfg.Events.KeyPrefix)
	}
	if cfg.Search.MinFilledParams != 2 {
		t.Errorf("expected MinFilledParams=2, got %d", cfg.Search.MinFilledParams)
	}
	if cfg.Database.ScanCount != 100 {
		t.Errorf("expected ScanCount=100, got %d", cfg.Database.ScanCount)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:     HTTPConfig{ReadTimeoutSec: 30, WriteTimeoutSec: 60, ShutdownSec: 5},
		Database: DatabaseConfig{Driver: DriverNone, ReadinessTimeout: 15},
		Events:   EventsConfig{ConfigDir: "/etc/events", KeyPrefix: "custom:"},
		Search:   SearchConfig{MinFilledParams: 3},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 30 {
		t.Errorf("expected ReadTimeoutSec=30, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 60 {
		t.Errorf("expected WriteTimeoutSec=60, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.Database.Driver != DriverNone || cfg.Database.Enabled() {
		t.Errorf("expected driver none to stay disabled, got %q", cfg.Database.Driver)
	}
	if cfg.Events.ConfigDir != "/etc/events" || cfg.Events.KeyPrefix != "custom:" {
		t.Errorf("unexpected events config %+v", cfg.Events)
	}
	if cfg.Search.MinFilledParams != 3 {
		t.Errorf("expected MinFilledParams=3, got %d", cfg.Search.MinFilledParams)
	}
}

func TestSearchConfig_Location(t *testing.T) {
	loc, err := SearchConfig{}.Location()
	if err != nil || loc != time.UTC {
		t.Errorf("empty timezone must be UTC, got %v %v", loc, err)
	}
	loc, err = SearchConfig{Timezone: "Asia/Dhaka"}.Location()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loc.String() != "Asia/Dhaka" {
		t.Errorf("location = %s", loc)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("CRVS_TEST_PORT", "9090")
	tests := []struct {
		in, want string
	}{
		{"port: ${CRVS_TEST_PORT}", "port: 9090"},
		{"port: ${CRVS_TEST_PORT:-8080}", "port: 9090"},
		{"port: ${CRVS_TEST_UNSET:-8080}", "port: 8080"},
		{"port: ${CRVS_TEST_UNSET}", "port: "},
		{"no vars", "no vars"},
	}
	for _, tc := range tests {
		if got := string(expandEnvVars([]byte(tc.in))); got != tc.want {
			t.Errorf("expandEnvVars(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "config"), 0o755); err != nil {
		t.Fatal(err)
	}
	yml := `
http:
  port: ${CRVS_TEST_HTTP_PORT:-8181}
database:
  driver: none
search:
  timezone: UTC
  min_filled_params: 3
auth:
  api_keys: [k1]
`
	if err := os.WriteFile(filepath.Join(dir, "config", "unit.yaml"), []byte(yml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Chdir(dir)

	cfg, err := Load("unit")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTP.Port != 8181 || cfg.Database.Enabled() || cfg.Search.MinFilledParams != 3 {
		t.Errorf("unexpected config %+v", cfg)
	}
	if len(cfg.Auth.APIKeys) != 1 || cfg.Auth.APIKeys[0] != "k1" {
		t.Errorf("api keys = %v", cfg.Auth.APIKeys)
	}
	if cfg.Events.ConfigDir != "config/events" {
		t.Errorf("defaults not applied: %+v", cfg.Events)
	}
}

func TestLoad_Missing(t *testing.T) {
	t.Chdir(t.TempDir())
	if _, err := Load("does-not-exist"); err == nil {
		t.Fatal("expected error")
	}
}

func TestLoad_ConfigPathOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	if err := os.WriteFile(path, []byte("http:\n  port: 9000\ndatabase:\n  driver: none\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_PATH", path)

	cfg, err := Load("ignored")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTP.Port != 9000 {
		t.Errorf("port = %d, want 9000", cfg.HTTP.Port)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		yml     string
		wantErr bool
	}{
		{"minimal", "http:\n  port: 8080\ndatabase:\n  driver: none\n", false},
		{"unknown key", "http:\n  port: 8080\n  portt: 1\ndatabase:\n  driver: none\n", true},
		{"empty document fails validation", "", true},
		{"malformed", "http: [", true},
		{"redis with scan count", "http:\n  port: 8080\ndatabase:\n  addrs: [r:6379]\n  scan_count: 500\n", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.yml))
			if (err != nil) != tc.wantErr {
				t.Errorf("Parse() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestAuthConfig_Keys(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"none", nil, nil},
		{"unset variable", []string{""}, nil},
		{"list", []string{"a", "b"}, []string{"a", "b"}},
		{"comma separated", []string{"a, b,,c "}, []string{"a", "b", "c"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := AuthConfig{APIKeys: tc.in}.Keys()
			if !slices.Equal(got, tc.want) {
				t.Errorf("Keys() = %v, want %v", got, tc.want)
			}
		})
	}
}
