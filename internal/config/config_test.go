package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(file, []byte("log:\n  level: debug\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, v, err := Load(file)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if v.ConfigFileUsed() != file {
		t.Errorf("expected config file %s, got %s", file, v.ConfigFileUsed())
	}

	if cfg.Log.Level != "debug" {
		t.Errorf("expected log level from file, got %q", cfg.Log.Level)
	}
	if cfg.Server.Port != 8080 || cfg.Realtime.Port != 8081 {
		t.Errorf("unexpected ports %d/%d", cfg.Server.Port, cfg.Realtime.Port)
	}
	if cfg.Realtime.Path != "/claimHub" {
		t.Errorf("expected /claimHub, got %s", cfg.Realtime.Path)
	}
	if cfg.WebSocket.PongWait != 60*time.Second {
		t.Errorf("expected pong wait 60s, got %v", cfg.WebSocket.PongWait)
	}
	if cfg.JWT.AccessDuration != 15*time.Minute {
		t.Errorf("expected access duration 15m, got %v", cfg.JWT.AccessDuration)
	}
	if cfg.Database.Driver != "sqlite" || cfg.Database.FilePath != "" {
		t.Errorf("expected in-memory sqlite, got %q %q", cfg.Database.Driver, cfg.Database.FilePath)
	}
	if cfg.Claims.IDGen.Scheme != "snowflake" {
		t.Errorf("expected snowflake scheme, got %q", cfg.Claims.IDGen.Scheme)
	}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		t.Error("expected default CORS origins")
	}
}

func TestLoad_FileOverrides(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "portal.yaml")
	yaml := `
server:
  port: 9000
realtime:
  port: 9001
claims:
  id_scheme: ulid
  submit_rate: 0
storage:
  driver: local
  local:
    base_path: /tmp/portal-docs
pubsub:
  driver: none
`
	if err := os.WriteFile(file, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, _, err := Load(file)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr() != "0.0.0.0:9000" {
		t.Errorf("unexpected addr %s", cfg.Server.Addr())
	}
	if cfg.Claims.IDGen.Scheme != "ulid" {
		t.Errorf("expected ulid, got %s", cfg.Claims.IDGen.Scheme)
	}
	if cfg.Claims.SubmitRate != 0 {
		t.Errorf("expected rate limiting disabled, got %v", cfg.Claims.SubmitRate)
	}
	if cfg.Storage.Local.BasePath != "/tmp/portal-docs" {
		t.Errorf("unexpected base path %s", cfg.Storage.Local.BasePath)
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	if _, _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing explicit config file")
	}
}

func TestValidate_SamePorts(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(file, []byte("server:\n  port: 7000\nrealtime:\n  port: 7000\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := Load(file); err == nil {
		t.Error("expected error when both listeners share a port")
	}
}
