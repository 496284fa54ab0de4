package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileIsZeroConfig(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DevicesFrom != 0 || cfg.Verbose || len(cfg.ScreenBlacklist) != 0 {
		t.Errorf("Load of missing file = %+v, want zero config", cfg)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `devices_from: 3
screen_blacklist:
  - HDMI-A-1
workspace_blacklist:
  - 7
  - 9
verbose: true
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	if cfg.DevicesFrom != 3 {
		t.Errorf("DevicesFrom = %d, want 3", cfg.DevicesFrom)
	}
	if !cfg.Verbose {
		t.Error("Verbose = false, want true")
	}
	if !cfg.ScreenBlacklisted("HDMI-A-1") {
		t.Error("HDMI-A-1 not blacklisted")
	}
	if cfg.ScreenBlacklisted("DP-1") {
		t.Error("DP-1 blacklisted, want allowed")
	}
	if !cfg.WorkspaceBlacklisted(7) || !cfg.WorkspaceBlacklisted(9) {
		t.Error("workspaces 7 and 9 not blacklisted")
	}
	if cfg.WorkspaceBlacklisted(1) {
		t.Error("workspace 1 blacklisted, want allowed")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("devices_from: [nope"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Error("Load of invalid YAML succeeded, want error")
	}
}

func TestFinalizeRejectsNegativeDevicesFrom(t *testing.T) {
	cfg := &Config{DevicesFrom: -1}
	if err := cfg.Finalize(); err == nil {
		t.Error("Finalize accepted devices_from -1, want error")
	}
}

func TestBlacklistsLayeredFromFlags(t *testing.T) {
	cfg := &Config{ScreenBlacklist: []string{"DP-3"}}
	cfg.BlacklistScreens("HDMI-A-1")
	cfg.BlacklistWorkspaces(5)
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	if !cfg.ScreenBlacklisted("DP-3") || !cfg.ScreenBlacklisted("HDMI-A-1") {
		t.Error("file and flag screen blacklists not merged")
	}
	if !cfg.WorkspaceBlacklisted(5) {
		t.Error("flag workspace blacklist not applied")
	}
}
