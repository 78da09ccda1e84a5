package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}

const validYAML = `
upbit:
  access_key: test-access
  secret_key: test-secret
database:
  host: localhost
  name: crypto_trading
  user: trader
  password: secret
`

func TestLoad(t *testing.T) {
	path := writeTempConfig(t, validYAML)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Upbit.AccessKey != "test-access" {
		t.Errorf("AccessKey = %q, want test-access", cfg.Upbit.AccessKey)
	}
	if cfg.Database.Host != "localhost" {
		t.Errorf("Host = %q, want localhost", cfg.Database.Host)
	}
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("TEST_UPBIT_SECRET", "expanded-secret")

	path := writeTempConfig(t, `
upbit:
  access_key: test-access
  secret_key: ${TEST_UPBIT_SECRET}
database:
  host: localhost
  name: crypto_trading
  user: trader
  password: secret
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Upbit.SecretKey != "expanded-secret" {
		t.Errorf("SecretKey = %q, want expanded-secret", cfg.Upbit.SecretKey)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeTempConfig(t, "upbit: [not: valid")
	if _, err := Load(path); err == nil {
		t.Error("expected error for invalid yaml")
	}
}

func TestLoadWithDefaults(t *testing.T) {
	path := writeTempConfig(t, validYAML)

	cfg, err := LoadWithDefaults(path)
	if err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}

	if cfg.Upbit.RestURL != DefaultRestURL {
		t.Errorf("RestURL = %q, want %q", cfg.Upbit.RestURL, DefaultRestURL)
	}
	if cfg.Upbit.WSURL != DefaultWSURL {
		t.Errorf("WSURL = %q, want %q", cfg.Upbit.WSURL, DefaultWSURL)
	}
	if cfg.Upbit.TokenRefreshInterval != 24*time.Hour {
		t.Errorf("TokenRefreshInterval = %v, want 24h", cfg.Upbit.TokenRefreshInterval)
	}
	if cfg.Database.Port != DefaultDBPort {
		t.Errorf("Port = %d, want %d", cfg.Database.Port, DefaultDBPort)
	}
	if cfg.Stream.ConnectRetryWait != 5*time.Second {
		t.Errorf("ConnectRetryWait = %v, want 5s", cfg.Stream.ConnectRetryWait)
	}
	if cfg.Stream.ReadRetryWait != time.Second {
		t.Errorf("ReadRetryWait = %v, want 1s", cfg.Stream.ReadRetryWait)
	}
}

func TestLoadWithDefaults_ExplicitValuesKept(t *testing.T) {
	path := writeTempConfig(t, validYAML+`
stream:
  queue_size: 64
  connect_retry_wait: 2s
`)

	cfg, err := LoadWithDefaults(path)
	if err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}

	if cfg.Stream.QueueSize != 64 {
		t.Errorf("QueueSize = %d, want 64", cfg.Stream.QueueSize)
	}
	if cfg.Stream.ConnectRetryWait != 2*time.Second {
		t.Errorf("ConnectRetryWait = %v, want 2s", cfg.Stream.ConnectRetryWait)
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg, err := LoadWithDefaults(writeTempConfig(t, validYAML))
		if err != nil {
			t.Fatalf("load base config: %v", err)
		}
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "missing access key",
			mutate:  func(c *Config) { c.Upbit.AccessKey = "" },
			wantErr: "access_key",
		},
		{
			name:    "missing secret key",
			mutate:  func(c *Config) { c.Upbit.SecretKey = "" },
			wantErr: "secret_key",
		},
		{
			name:    "missing db host",
			mutate:  func(c *Config) { c.Database.Host = "" },
			wantErr: "database.host",
		},
		{
			name:    "missing db password",
			mutate:  func(c *Config) { c.Database.Password = "" },
			wantErr: "database.password",
		},
		{
			name:    "min conns exceeds max",
			mutate:  func(c *Config) { c.Database.MinConns = 20 },
			wantErr: "min_conns",
		},
		{
			name:    "zero queue size",
			mutate:  func(c *Config) { c.Stream.QueueSize = -1 },
			wantErr: "queue_size",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate failed: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want substring %q", err, tt.wantErr)
			}
		})
	}
}
