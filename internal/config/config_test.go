package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadUsesDefaultsAndYAMLOverrides(t *testing.T) {
	clearConfigEnv(t)

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")
	yaml := `
http:
  addr: ":9090"
chat:
  max_message_len: 500
  send_rate_per_10s: 5
hmu:
  retention: 48h
realtime:
  ping_period: 20s
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.HTTP.Addr != ":9090" {
		t.Fatalf("unexpected http addr: %s", cfg.HTTP.Addr)
	}
	if cfg.Chat.MaxMessageLen != 500 {
		t.Fatalf("unexpected max message len: %d", cfg.Chat.MaxMessageLen)
	}
	if cfg.Chat.SendRatePer10Sec != 5 {
		t.Fatalf("unexpected send rate: %d", cfg.Chat.SendRatePer10Sec)
	}
	if cfg.HMU.Retention != 48*time.Hour {
		t.Fatalf("unexpected hmu retention: %s", cfg.HMU.Retention)
	}
	if cfg.Realtime.PingPeriod != 20*time.Second {
		t.Fatalf("unexpected ping period: %s", cfg.Realtime.PingPeriod)
	}

	// untouched keys keep defaults
	if cfg.Postgres.DSN != Default().Postgres.DSN {
		t.Fatalf("postgres dsn should keep default, got %s", cfg.Postgres.DSN)
	}
	if cfg.HMU.FeedLimit != 20 {
		t.Fatalf("unexpected hmu feed limit: %d", cfg.HMU.FeedLimit)
	}
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	clearConfigEnv(t)

	t.Setenv("HTTP_ADDR", ":7070")
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("CHAT_SEND_RATE_PER_10S", "3")
	t.Setenv("HMU_CLEANUP_INTERVAL", "30m")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.HTTP.Addr != ":7070" {
		t.Fatalf("unexpected http addr: %s", cfg.HTTP.Addr)
	}
	if cfg.Auth.JWTSecret != "env-secret" {
		t.Fatalf("unexpected jwt secret: %s", cfg.Auth.JWTSecret)
	}
	if cfg.Chat.SendRatePer10Sec != 3 {
		t.Fatalf("unexpected send rate: %d", cfg.Chat.SendRatePer10Sec)
	}
	if cfg.HMU.CleanupInterval != 30*time.Minute {
		t.Fatalf("unexpected cleanup interval: %s", cfg.HMU.CleanupInterval)
	}
}

func TestLoadRejectsBadEnvValues(t *testing.T) {
	clearConfigEnv(t)

	t.Setenv("CHAT_MAX_MESSAGE_LEN", "not-a-number")

	if _, err := Load(""); err == nil {
		t.Fatal("expected error for invalid int override")
	}
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.HTTP.Addr != Default().HTTP.Addr {
		t.Fatalf("unexpected http addr: %s", cfg.HTTP.Addr)
	}
}

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_ENV", "HTTP_ADDR", "HTTP_READ_TIMEOUT", "HTTP_WRITE_TIMEOUT",
		"HTTP_IDLE_TIMEOUT", "LOG_LEVEL", "POSTGRES_DSN", "REDIS_ADDR",
		"REDIS_PASSWORD", "REDIS_DB", "JWT_SECRET",
		"CHAT_MAX_MESSAGE_LEN", "CHAT_SEND_RATE_PER_10S", "HMU_FEED_LIMIT",
		"HMU_RETENTION", "HMU_CLEANUP_INTERVAL", "REALTIME_SEND_BUFFER",
		"REALTIME_PING_PERIOD",
	} {
		t.Setenv(key, "")
	}
}
