// cliparse/cliparse_test.go
package cliparse

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// clearEnv blanks every variable ParseFlags reads so the host environment
// cannot leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "SOURCE", "UPSTREAM_URL", "DATABASE_URL", "DATABASE_TYPE", "VOTE_NAMESPACE",
		"ADMIN_KEY_SALT", "IP_HASH_SALT", "ACQUIRE_TIMEOUT", "SESSION_TTL", "MAX_SESSIONS",
		"VOTE_RATE", "LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}
}

func TestParseFlags_EnvVars(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("UPSTREAM_URL", "http://transit.example")
	t.Setenv("ADMIN_KEY_SALT", "test-salt")
	t.Setenv("ACQUIRE_TIMEOUT", "5s")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := ParseFlags([]string{})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Port)
	}
	if cfg.UpstreamURL != "http://transit.example" {
		t.Errorf("expected upstream URL from env, got %q", cfg.UpstreamURL)
	}
	if cfg.AcquireTimeout != 5*time.Second {
		t.Errorf("expected acquire timeout 5s, got %v", cfg.AcquireTimeout)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("expected debug level, got %v", cfg.LogLevel)
	}
}

func TestParseFlags_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("UPSTREAM_URL", "http://transit.example")
	t.Setenv("ADMIN_KEY_SALT", "test-salt")

	cfg, err := ParseFlags([]string{})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != 3318 {
		t.Errorf("expected default port 3318, got %d", cfg.Port)
	}
	if cfg.Source != SourceHTTP {
		t.Errorf("expected default source http, got %q", cfg.Source)
	}
	if cfg.DatabaseType != "sqlite" {
		t.Errorf("expected default database type sqlite, got %q", cfg.DatabaseType)
	}
	if cfg.VoteNamespace != "gtfs-agencies" {
		t.Errorf("expected default namespace, got %q", cfg.VoteNamespace)
	}
	if cfg.IPHashSalt != "test-salt" {
		t.Errorf("IP salt should default to admin salt, got %q", cfg.IPHashSalt)
	}
	if cfg.AcquireTimeout != 30*time.Second || cfg.SessionTTL != 2*time.Hour {
		t.Errorf("unexpected default timeouts: %v, %v", cfg.AcquireTimeout, cfg.SessionTTL)
	}
	if cfg.MaxSessions != 10000 || cfg.VoteRate != 2 {
		t.Errorf("unexpected default limits: %d, %v", cfg.MaxSessions, cfg.VoteRate)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("expected info level, got %v", cfg.LogLevel)
	}
}

func TestParseFlags_CLIOverridesEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("SOURCE", "http")

	cfg, err := ParseFlags([]string{"-p", "8080", "-s", "sql", "-d", "file:test.db", "-admin-salt", "s1", "-ip-salt", "s2"})
	if err != nil {
		t.Fatal(err)
	}

	// CLI should override env
	if cfg.Port != 8080 {
		t.Errorf("CLI should override env: expected 8080, got %d", cfg.Port)
	}
	if cfg.Source != SourceSQL || cfg.DatabaseURL != "file:test.db" {
		t.Errorf("expected sql source with database URL, got %q %q", cfg.Source, cfg.DatabaseURL)
	}
	if cfg.IPHashSalt != "s2" {
		t.Errorf("expected ip salt s2, got %q", cfg.IPHashSalt)
	}
}

func TestParseFlags_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		args []string
	}{
		{"missing upstream", map[string]string{"ADMIN_KEY_SALT": "s"}, nil},
		{"missing database", map[string]string{"ADMIN_KEY_SALT": "s", "SOURCE": "sql"}, nil},
		{"unknown source", map[string]string{"ADMIN_KEY_SALT": "s"}, []string{"-s", "ftp"}},
		{"missing admin salt", map[string]string{"UPSTREAM_URL": "http://x"}, nil},
		{"bad port", map[string]string{"UPSTREAM_URL": "http://x", "ADMIN_KEY_SALT": "s", "PORT": "abc"}, nil},
		{"bad timeout", map[string]string{"UPSTREAM_URL": "http://x", "ADMIN_KEY_SALT": "s", "ACQUIRE_TIMEOUT": "soon"}, nil},
		{"bad max sessions", map[string]string{"UPSTREAM_URL": "http://x", "ADMIN_KEY_SALT": "s", "MAX_SESSIONS": "-1"}, nil},
		{"bad log level", map[string]string{"UPSTREAM_URL": "http://x", "ADMIN_KEY_SALT": "s", "LOG_LEVEL": "loud"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := ParseFlags(tt.args); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoadEnvFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "7000")
	// godotenv only fills variables that are absent, not merely empty
	os.Unsetenv("UPSTREAM_URL")
	os.Unsetenv("ADMIN_KEY_SALT")

	path := filepath.Join(t.TempDir(), ".env")
	content := "PORT=1234\nUPSTREAM_URL=http://from-file.example\nADMIN_KEY_SALT=file-salt\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := LoadEnvFile(path); err != nil {
		t.Fatalf("LoadEnvFile() error = %v", err)
	}

	cfg, err := ParseFlags(nil)
	if err != nil {
		t.Fatal(err)
	}

	// Existing environment wins over the file
	if cfg.Port != 7000 {
		t.Errorf("expected port 7000, got %d", cfg.Port)
	}
	if cfg.UpstreamURL != "http://from-file.example" {
		t.Errorf("expected upstream URL from file, got %q", cfg.UpstreamURL)
	}
}

func TestLoadEnvFile_Missing(t *testing.T) {
	if err := LoadEnvFile(filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Errorf("missing file should be ignored, got %v", err)
	}
}
