package config

import "testing"

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/textmagic")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
}

func TestLoadDefaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.AppEnv != "development" {
		t.Errorf("expected development env, got %q", cfg.AppEnv)
	}
	if cfg.AppPort != 8080 {
		t.Errorf("expected port 8080, got %d", cfg.AppPort)
	}
	if cfg.AIEnabled() {
		t.Error("expected demo mode when OPENAI_API_KEY is unset")
	}
	if cfg.StripeEnabled() {
		t.Error("expected billing disabled when STRIPE_SECRET_KEY is unset")
	}
}

func TestLoadMissingDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing DATABASE_URL")
	}
}

func TestLoadProductionRequiresJWTSecret(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing JWT_SECRET in production")
	}

	t.Setenv("JWT_SECRET", "super-secret")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.IsProduction() {
		t.Error("expected production mode")
	}
}

func TestGetCORSAllowedOrigins(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://example.com, https://app.example.com ,")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	origins := cfg.GetCORSAllowedOrigins()
	if len(origins) != 2 {
		t.Fatalf("expected 2 origins, got %d: %v", len(origins), origins)
	}
	if origins[0] != "https://example.com" || origins[1] != "https://app.example.com" {
		t.Errorf("unexpected origins: %v", origins)
	}
}
