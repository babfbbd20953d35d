package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ERATECHARGE_DB_DRIVER", "")
	t.Setenv("ERATECHARGE_STRICT", "")

	cfg := FromEnv()
	if cfg.Port != "8000" {
		t.Errorf("unexpected default port %q", cfg.Port)
	}
	if !cfg.Strict {
		t.Errorf("expected strict mode by default")
	}
	if cfg.DB.Driver != DriverMemory {
		t.Errorf("unexpected default driver %q", cfg.DB.Driver)
	}
	if cfg.RetentionDuration() != 0 {
		t.Errorf("expected no retention by default")
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := `
port: "9090"
strict: false
db:
  driver: sqlite
  dsn: ledger.db
ledger:
  retention: 30d
  prune_schedule: "0 3 * * *"
logging:
  level: debug
auth:
  tokens:
    - name: billing-batch
      role: biller
      sha256: ` + strings.Repeat("a", 64) + `
`
	if err := os.WriteFile(path, []byte(body), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("PORT", "7000")
	t.Setenv("ERATECHARGE_DB_DRIVER", "")
	t.Setenv("ERATECHARGE_STRICT", "")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != "7000" {
		t.Errorf("expected env to override port, got %q", cfg.Port)
	}
	if cfg.Strict {
		t.Errorf("expected strict=false from file")
	}
	if cfg.DB.Driver != DriverSQLite || cfg.DB.DSN != "ledger.db" {
		t.Errorf("unexpected db config %+v", cfg.DB)
	}
	if cfg.RetentionDuration() != 30*24*time.Hour {
		t.Errorf("unexpected retention %s", cfg.RetentionDuration())
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "console" {
		t.Errorf("unexpected logging config %+v", cfg.Logging)
	}
	if len(cfg.Auth.Tokens) != 1 || cfg.Auth.Tokens[0].Role != "biller" {
		t.Errorf("unexpected tokens %+v", cfg.Auth.Tokens)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("ERATECHARGE_DB_DRIVER", "")
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port == "" {
		t.Fatalf("expected defaults")
	}
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("ERATECHARGE_DB_DRIVER", "mysql")
	t.Setenv("ERATECHARGE_PRUNE_SCHEDULE", "whenever")
	if _, err := Load(""); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestParseRetention(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"", 0, false},
		{"never", 0, false},
		{"0", 0, false},
		{"7d", 7 * 24 * time.Hour, false},
		{"2w", 14 * 24 * time.Hour, false},
		{"36h", 36 * time.Hour, false},
		{"90m", 90 * time.Minute, false},
		{"-1h", 0, true},
		{"soon", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseRetention(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseRetention(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseRetention(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestValidate_TokenDigest(t *testing.T) {
	tests := []struct {
		name    string
		digest  string
		wantErr bool
	}{
		{"hex", strings.Repeat("ab", 32), false},
		{"upper hex", strings.Repeat("AB", 32), false},
		{"not hex", strings.Repeat("zz", 32), true},
		{"too short", strings.Repeat("ab", 16), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Auth.Tokens = []TokenConfig{{Name: "ci", Role: "biller", SHA256: tt.digest}}
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
