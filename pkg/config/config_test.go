package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Success(t *testing.T) {
	setMinimalEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.App.Env != "production" {
		t.Fatalf("expected App.Env to be production, got %q", cfg.App.Env)
	}
	if cfg.Catalog.URL != "http://catalog.test/graphql" {
		t.Fatalf("unexpected catalog url %q", cfg.Catalog.URL)
	}
	if cfg.Storage.Driver != StorageDriverMemory {
		t.Fatalf("expected memory storage by default, got %q", cfg.Storage.Driver)
	}
	if got := cfg.Checkout.SuccessDelay; got != 2*time.Second {
		t.Fatalf("expected success delay 2s, got %v", got)
	}
	if got := cfg.Checkout.AddedFlashDelay; got != 2*time.Second {
		t.Fatalf("expected added flash delay 2s, got %v", got)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	setMinimalEnv(t)
	if err := os.Unsetenv(EnvAppEnv); err != nil {
		t.Fatalf("failed to unset %s: %v", EnvAppEnv, err)
	}

	if _, err := Load(); err == nil {
		t.Fatal("expected missing required env to return an error")
	}
}

func TestLoad_SQLStorageRequiresDSN(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvStorageDriver, StorageDriverSQL)

	if _, err := Load(); err == nil {
		t.Fatal("expected sql storage without DSN to fail")
	}

	t.Setenv(EnvDBDSN, "file::memory:?cache=shared")
	t.Setenv(EnvDBDriver, DBDriverSQLite)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.Storage.UsesSQL() {
		t.Fatal("expected UsesSQL to be true")
	}
}

func TestLoad_RejectsUnknownStorageDriver(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvStorageDriver, "floppy")

	if _, err := Load(); err == nil {
		t.Fatal("expected unknown storage driver to fail")
	}
}

func setMinimalEnv(t *testing.T) {
	t.Helper()

	t.Setenv(EnvAppEnv, "production")
	t.Setenv(EnvPort, "8081")
	t.Setenv(EnvCatalogURL, "http://catalog.test/graphql")
	unsetEnv(t, EnvStorageDriver)
	unsetEnv(t, EnvDBDSN)
	unsetEnv(t, EnvDBDriver)
}

func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	if err := os.Unsetenv(key); err != nil {
		t.Fatalf("failed to unset %s: %v", key, err)
	}
}

func TestAppConfigEnvHelpers(t *testing.T) {
	devConfig := AppConfig{Env: "DEV"}
	if !devConfig.IsDev() {
		t.Fatalf("expected IsDev true for %q", devConfig.Env)
	}
	if devConfig.IsProd() {
		t.Fatalf("expected IsProd false for %q", devConfig.Env)
	}

	prodConfig := AppConfig{Env: "prod"}
	if !prodConfig.IsProd() {
		t.Fatalf("expected IsProd true for %q", prodConfig.Env)
	}
	if prodConfig.IsDev() {
		t.Fatalf("expected IsDev false for %q", prodConfig.Env)
	}
}

func TestLoad_CORSOriginsList(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv("STOREFRONT_CORS_ORIGINS", "http://localhost:3000,https://shop.example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if len(cfg.App.CORSOrigins) != 2 || cfg.App.CORSOrigins[1] != "https://shop.example.com" {
		t.Fatalf("unexpected origins %v", cfg.App.CORSOrigins)
	}
	if cfg.App.ShutdownTimeout != 10*time.Second {
		t.Fatalf("expected default shutdown timeout, got %v", cfg.App.ShutdownTimeout)
	}
}

func TestLoad_RejectsNonPositiveDelays(t *testing.T) {
	tests := []struct {
		env   string
		value string
	}{
		{env: EnvAddedFlashWait, value: "0s"},
		{env: EnvSuccessDelay, value: "-1s"},
		{env: EnvSessionIdleTTL, value: "0"},
		{env: EnvSessionSweepInt, value: "0s"},
	}
	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			setMinimalEnv(t)
			t.Setenv(tt.env, tt.value)
			if _, err := Load(); err == nil {
				t.Fatalf("expected %s=%s to be rejected", tt.env, tt.value)
			}
		})
	}
}

func TestLoad_SessionDefaults(t *testing.T) {
	setMinimalEnv(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Session.IdleTTL != 30*time.Minute || cfg.Session.SweepInterval != time.Minute {
		t.Fatalf("unexpected session config %+v", cfg.Session)
	}
}
