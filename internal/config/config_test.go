package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoadDefaultsAndEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://env/db")
	t.Setenv("JWT_SECRET", "from-env")
	p := writeConfig(t, `
database:
  url: postgres://file/db
auth:
  admins:
    - username: ana
      password_hash: "$2a$10$abc"
      role: 10
limits:
  attempt_window: 10m
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Database.DSN != "postgres://env/db" || cfg.Auth.JWTSecret != "from-env" {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}
	if cfg.Server.Port != 8080 || cfg.Email.Driver != MailDriverDryRun || cfg.Files.RootDir != "./files" {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
	if cfg.Limits.AttemptWindow != 10*time.Minute || cfg.Limits.AttemptLimit != 5 || cfg.Limits.CheckoutTTL != 2*time.Hour {
		t.Fatalf("limits = %+v", cfg.Limits)
	}
	if len(cfg.Auth.Admins) != 1 || cfg.Auth.Admins[0].Role != 10 {
		t.Fatalf("admins = %+v", cfg.Auth.Admins)
	}
}

func TestLoadValidation(t *testing.T) {
	cases := map[string]string{
		"no dsn":        "server:\n  port: 9000\n",
		"smtp no host":  "database:\n  url: x\nemail:\n  driver: smtp\n",
		"http no relay": "database:\n  url: x\nemail:\n  driver: http\n",
		"bad driver":    "database:\n  url: x\nemail:\n  driver: pigeon\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv("DATABASE_URL", "")
			if _, err := Load(writeConfig(t, body)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestPathFromEnv(t *testing.T) {
	t.Setenv("TICKETERA_CONFIG", "/etc/ticketera.yaml")
	if Path() != "/etc/ticketera.yaml" {
		t.Fatal("TICKETERA_CONFIG ignored")
	}
}
