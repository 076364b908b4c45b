package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfigSaveAndLoad(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("HOME", tmp)

	cfg := CLIConfig{
		ServerURL: "http://myhost:9090",
		UserID:    "SALES-07",
	}

	if err := saveConfig(cfg); err != nil {
		t.Fatalf("save: %v", err)
	}

	path := filepath.Join(tmp, ".config", "fv", "config.yaml")
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("config file not found: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("permissions = %o, want 600", info.Mode().Perm())
	}

	loaded, err := loadConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded != cfg {
		t.Errorf("loaded = %+v, want %+v", loaded, cfg)
	}
}

func TestLoadConfigMissing(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg != (CLIConfig{}) {
		t.Errorf("expected zero config, got %+v", cfg)
	}
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("HOME", tmp)
	dir := filepath.Join(tmp, ".config", "fv")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("server_url: [unclosed"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := loadConfig(); err == nil {
		t.Error("expected parse error")
	}
}

func TestGetServerURL(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("HOME", tmp)
	t.Setenv("FV_SERVER_URL", "")

	if got := getServerURL(); got != defaultServerURL {
		t.Errorf("default: got %q", got)
	}

	if err := saveConfig(CLIConfig{ServerURL: "http://from-config"}); err != nil {
		t.Fatal(err)
	}
	if got := getServerURL(); got != "http://from-config" {
		t.Errorf("config: got %q", got)
	}

	t.Setenv("FV_SERVER_URL", "http://from-env")
	if got := getServerURL(); got != "http://from-env" {
		t.Errorf("env: got %q", got)
	}
}

func TestGetUserPrecedence(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("HOME", tmp)
	t.Setenv("FV_USER", "")
	flagUser = ""
	t.Cleanup(func() { flagUser = "" })

	if got := getUser(); got != "" {
		t.Errorf("empty: got %q", got)
	}

	if err := saveConfig(CLIConfig{UserID: "CONFIG-USER"}); err != nil {
		t.Fatal(err)
	}
	if got := getUser(); got != "CONFIG-USER" {
		t.Errorf("config: got %q", got)
	}

	t.Setenv("FV_USER", "ENV-USER")
	if got := getUser(); got != "ENV-USER" {
		t.Errorf("env: got %q", got)
	}

	flagUser = "FLAG-USER"
	if got := getUser(); got != "FLAG-USER" {
		t.Errorf("flag: got %q", got)
	}
}
