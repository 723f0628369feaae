package config

import "testing"

func validConfig() *Config {
	return &Config{
		JWTSecret: "secret",
		Redmine:   RedmineConfig{URL: "https://tickets.example.com"},
		Retry:     RetryConfig{MaxAttempts: 3},
	}
}

func TestValidate_OK(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_MissingJWTSecret(t *testing.T) {
	cfg := validConfig()
	cfg.JWTSecret = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing JWT_SECRET")
	}
}

func TestValidate_MissingRemoteURL(t *testing.T) {
	cfg := validConfig()
	cfg.Redmine.URL = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing REDMINE_URL")
	}
}

func TestValidate_BadRetryAttempts(t *testing.T) {
	cfg := validConfig()
	cfg.Retry.MaxAttempts = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for zero retry attempts")
	}
}
