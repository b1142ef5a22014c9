package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/marketimport")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.MaxConns != 10 {
		t.Errorf("MaxConns = %d, want 10", cfg.Database.MaxConns)
	}
	if cfg.Import.MaxFileSize != 25*1024*1024 {
		t.Errorf("MaxFileSize = %d, want 25MB", cfg.Import.MaxFileSize)
	}
	if cfg.Import.Timeout != 10*time.Minute {
		t.Errorf("Timeout = %s, want 10m", cfg.Import.Timeout)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Level = %q, want info", cfg.Logging.Level)
	}
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_URL", "")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error when DATABASE_URL is unset")
	}
	if !strings.Contains(err.Error(), "DATABASE_URL") {
		t.Errorf("error does not name the missing variable: %v", err)
	}
}

func TestLoadAlternateEnvVar(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_URL", "postgres://localhost/alt")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Database.URL != "postgres://localhost/alt" {
		t.Errorf("URL = %q", cfg.Database.URL)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/marketimport")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("IMPORT_MAX_FILE_SIZE", "1048576")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Import.MaxFileSize != 1048576 {
		t.Errorf("MaxFileSize = %d", cfg.Import.MaxFileSize)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Format = %q", cfg.Logging.Format)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{
			name: "bad port",
			env:  map[string]string{"SERVER_PORT": "70000"},
			want: "SERVER_PORT",
		},
		{
			name: "max conns below min conns",
			env:  map[string]string{"DB_MAX_CONNS": "1", "DB_MIN_CONNS": "5"},
			want: "DB_MAX_CONNS",
		},
		{
			name: "bad log level",
			env:  map[string]string{"LOG_LEVEL": "verbose"},
			want: "LOG_LEVEL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DATABASE_URL", "postgres://localhost/marketimport")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %v does not mention %s", err, tt.want)
			}
		})
	}
}

func TestAddr(t *testing.T) {
	c := &ServerConfig{Host: "127.0.0.1", Port: 8080}
	if got := c.Addr(); got != "127.0.0.1:8080" {
		t.Errorf("Addr() = %q", got)
	}

	c = &ServerConfig{Host: "", Port: 9000}
	if got := c.Addr(); got != ":9000" {
		t.Errorf("Addr() = %q", got)
	}
}
