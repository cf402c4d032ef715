package config

import (
	"log/slog"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q", cfg.HTTPAddr)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v", cfg.LogLevel)
	}
	if got := cfg.Cities; len(got) != 3 || got[2] != "Hong Kong" {
		t.Errorf("Cities = %q", got)
	}
	if cfg.GeoTimeout != 8*time.Second || cfg.GeoMaxAge != 30*time.Second {
		t.Errorf("geo timings = %v / %v", cfg.GeoTimeout, cfg.GeoMaxAge)
	}
	if cfg.LicenseStrategy != StrategyPrefix || cfg.EntitlementBackend != BackendSQLite {
		t.Errorf("strategy %q backend %q", cfg.LicenseStrategy, cfg.EntitlementBackend)
	}
	if cfg.LicenseAPIURL != "" {
		t.Errorf("LicenseAPIURL = %q, want empty", cfg.LicenseAPIURL)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("CITIES", " Lima , Cusco,,")
	t.Setenv("LICENSE_STRATEGY", "Remote")
	t.Setenv("ENTITLEMENT_BACKEND", "redis")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("GEO_FIXED", "-12.05,-77.04")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cfg.Cities) != 2 || cfg.Cities[0] != "Lima" || cfg.Cities[1] != "Cusco" {
		t.Errorf("Cities = %q", cfg.Cities)
	}
	if cfg.LicenseStrategy != StrategyRemote {
		t.Errorf("LicenseStrategy = %q", cfg.LicenseStrategy)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel = %v", cfg.LogLevel)
	}
	if cfg.GeoFixed != "-12.05,-77.04" {
		t.Errorf("GeoFixed = %q", cfg.GeoFixed)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"strategy", "LICENSE_STRATEGY", "honor-system"},
		{"backend", "ENTITLEMENT_BACKEND", "cookies"},
		{"no cities", "CITIES", " , "},
		{"timeout", "LICENSE_TIMEOUT", "0s"},
		{"duration", "GEO_TIMEOUT", "soon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Errorf("expected error for %s=%q", tt.key, tt.value)
			}
		})
	}
}
