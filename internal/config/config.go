package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Config is the controller's runtime configuration: the first usable v4l2
// device index, the screens and workspaces that must never be recorded, and
// diagnostic verbosity. It is assembled once at startup (file first, then
// CLI flags on top) and read-only afterwards.
type Config struct {
	DevicesFrom        int      `yaml:"devices_from"`
	ScreenBlacklist    []string `yaml:"screen_blacklist"`
	WorkspaceBlacklist []int    `yaml:"workspace_blacklist"`
	Verbose            bool     `yaml:"verbose"`

	screens    map[string]struct{}
	workspaces map[int]struct{}
}

// DefaultPath returns the standard config file location.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "swaycast", "config.yaml"), nil
}

// BlacklistScreens adds output names to the screen blacklist. Only valid
// before Finalize.
func (c *Config) BlacklistScreens(names ...string) {
	c.ScreenBlacklist = append(c.ScreenBlacklist, names...)
}

// BlacklistWorkspaces adds workspace numbers to the workspace blacklist.
// Only valid before Finalize.
func (c *Config) BlacklistWorkspaces(nums ...int) {
	c.WorkspaceBlacklist = append(c.WorkspaceBlacklist, nums...)
}

// Finalize validates the configuration and builds the blacklist lookup
// tables. The config must not be modified afterwards.
func (c *Config) Finalize() error {
	if c.DevicesFrom < 0 {
		return fmt.Errorf("devices_from must be >= 0, got %d", c.DevicesFrom)
	}
	c.screens = make(map[string]struct{}, len(c.ScreenBlacklist))
	for _, name := range c.ScreenBlacklist {
		c.screens[name] = struct{}{}
	}
	c.workspaces = make(map[int]struct{}, len(c.WorkspaceBlacklist))
	for _, num := range c.WorkspaceBlacklist {
		c.workspaces[num] = struct{}{}
	}
	return nil
}

// ScreenBlacklisted reports whether the named output is excluded from
// recording.
func (c *Config) ScreenBlacklisted(name string) bool {
	_, ok := c.screens[name]
	return ok
}

// WorkspaceBlacklisted reports whether the numbered workspace is excluded
// from recording.
func (c *Config) WorkspaceBlacklisted(num int) bool {
	_, ok := c.workspaces[num]
	return ok
}
