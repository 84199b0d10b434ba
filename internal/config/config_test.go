package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PCG_API_BASE_URL", "")
	t.Setenv("SETTINGS_BACKEND", "")
	t.Setenv("PCG_HTTP_TIMEOUT_SECONDS", "")
	t.Setenv("ADMIN_USER", "")
	t.Setenv("ADMIN_PASSWORD", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.PlanningCenter.BaseURL != "https://api.planningcenteronline.com" {
		t.Fatalf("unexpected base url %q", cfg.PlanningCenter.BaseURL)
	}
	if cfg.PlanningCenter.Timeout != 5*time.Second {
		t.Fatalf("unexpected timeout %s", cfg.PlanningCenter.Timeout)
	}
	if cfg.Settings.Backend != BackendMemory {
		t.Fatalf("unexpected backend %q", cfg.Settings.Backend)
	}
	if cfg.Admin.Enabled() {
		t.Fatalf("admin should be disabled without credentials")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PCG_API_BASE_URL", "http://localhost:9999/")
	t.Setenv("PCG_HTTP_TIMEOUT_SECONDS", "12")
	t.Setenv("PCG_CLIENT_ID", "id")
	t.Setenv("PCG_CLIENT_SECRET", "secret")
	t.Setenv("PCG_DEBUG_MODE", "true")
	t.Setenv("PCG_TAG_FILTER", "Youth")
	t.Setenv("SETTINGS_BACKEND", "Redis")
	t.Setenv("ADMIN_USER", "admin")
	t.Setenv("ADMIN_PASSWORD", "pw")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.PlanningCenter.BaseURL != "http://localhost:9999" {
		t.Fatalf("trailing slash should be trimmed, got %q", cfg.PlanningCenter.BaseURL)
	}
	if cfg.PlanningCenter.Timeout != 12*time.Second {
		t.Fatalf("unexpected timeout %s", cfg.PlanningCenter.Timeout)
	}
	if !cfg.Defaults.DebugMode || cfg.Defaults.TagFilter != "Youth" {
		t.Fatalf("unexpected defaults %+v", cfg.Defaults)
	}
	if cfg.Settings.Backend != BackendRedis {
		t.Fatalf("backend should be lowercased, got %q", cfg.Settings.Backend)
	}
	if !cfg.Admin.Enabled() {
		t.Fatalf("admin should be enabled")
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			PlanningCenter: PlanningCenterConfig{BaseURL: "https://example.test"},
			Settings:       SettingsConfig{Backend: BackendMemory},
			Server:         ServerConfig{Addr: ":8080"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "missing base url", mutate: func(c *Config) { c.PlanningCenter.BaseURL = "" }, wantErr: true},
		{name: "unknown backend", mutate: func(c *Config) { c.Settings.Backend = "etcd" }, wantErr: true},
		{name: "negative timeout", mutate: func(c *Config) { c.PlanningCenter.Timeout = -time.Second }, wantErr: true},
		{name: "admin user without password", mutate: func(c *Config) { c.Admin.User = "admin" }, wantErr: true},
		{name: "missing addr", mutate: func(c *Config) { c.Server.Addr = "" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
