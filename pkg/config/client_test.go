package config

import (
	"testing"
	"time"
)

func TestLoadClientConfig_Defaults(t *testing.T) {
	t.Setenv("TASKFLOW_API_BASE_URL", "")
	cfg, err := LoadClientConfig()
	if err != nil {
		t.Fatalf("LoadClientConfig: %v", err)
	}
	if cfg.LoginPath != "/login" || cfg.RegisterPath != "/register" {
		t.Errorf("paths = %q %q", cfg.LoginPath, cfg.RegisterPath)
	}
	if cfg.Timeout != 20*time.Second {
		t.Errorf("timeout = %s", cfg.Timeout)
	}
	if cfg.Namespace != "default" {
		t.Errorf("namespace = %q", cfg.Namespace)
	}
}

func TestLoadClientConfig_FromEnv(t *testing.T) {
	t.Setenv("TASKFLOW_API_BASE_URL", "https://api.example.com/v1")
	t.Setenv("TASKFLOW_LOGIN_PATH", "/auth/login")
	t.Setenv("TASKFLOW_TIMEOUT", "5s")
	t.Setenv("TASKFLOW_REDIS_URL", "redis://localhost:6379/2")

	cfg, err := LoadClientConfig()
	if err != nil {
		t.Fatalf("LoadClientConfig: %v", err)
	}
	if cfg.BaseURL != "https://api.example.com/v1" || cfg.LoginPath != "/auth/login" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Timeout != 5*time.Second || cfg.RedisURL != "redis://localhost:6379/2" {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadClientConfig_InvalidTimeout(t *testing.T) {
	t.Setenv("TASKFLOW_TIMEOUT", "soon")
	if _, err := LoadClientConfig(); err == nil {
		t.Error("expected parse error")
	}
}

func TestJWTConfig_AccessTTL(t *testing.T) {
	if got := (JWTConfig{}).AccessTTL(); got != time.Hour {
		t.Errorf("default ttl = %s", got)
	}
	if got := (JWTConfig{AccessTokenExpire: 90}).AccessTTL(); got != 90*time.Second {
		t.Errorf("ttl = %s", got)
	}
}
