// Package config loads the admin's process configuration and provides the
// site settings store the resource indexes keep their sort preferences in.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to environment overrides, e.g. RESADMIN_ADDR.
const EnvPrefix = "RESADMIN"

// AppConfig is the resolved process configuration.
type AppConfig struct {
	Addr      string    `mapstructure:"addr"`
	DocRoot   string    `mapstructure:"docroot"`
	Workspace string    `mapstructure:"workspace"` // Driver files and template overrides
	Templates string    `mapstructure:"templates"` // System templates
	Static    string    `mapstructure:"static"`    // Admin assets served under /static
	Database  string    `mapstructure:"database"`  // Pages and attachments
	Settings  string    `mapstructure:"settings"`  // Sort preferences and other site settings
	Log       LogConfig `mapstructure:"log"`
}

// LogConfig selects the log level and output format.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// RegisterFlags adds the configuration flags to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "Path to a config file (yaml, json or toml)")
	fs.String("addr", ":8081", "Address the admin server listens on")
	fs.String("docroot", "", "Site root directory (default: working directory)")
	fs.String("workspace", "", "Workspace directory (default: <docroot>/workspace)")
	fs.String("templates", "", "System template directory (default: <docroot>/templates)")
	fs.String("static", "", "Admin static assets directory (default: <docroot>/web/admin/static)")
	fs.String("database", "", "SQLite database file (default: <docroot>/manifest/pages.db)")
	fs.String("settings", "", "Settings file (default: <docroot>/manifest/config.yaml)")
	fs.String("log-level", "info", "Log level: debug, info, warn, error")
	fs.String("log-format", "text", "Log format: text or json")
}

// Load resolves the configuration from defaults, an optional config file,
// RESADMIN_* environment variables and finally the flags in fs.
func Load(fs *pflag.FlagSet) (*AppConfig, error) {
	v := viper.New()

	v.SetDefault("addr", ":8081")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if fs != nil {
		for _, key := range []string{"addr", "docroot", "workspace", "templates", "static", "database", "settings"} {
			if f := fs.Lookup(key); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", key, err)
				}
			}
		}
		if f := fs.Lookup("log-level"); f != nil {
			if err := v.BindPFlag("log.level", f); err != nil {
				return nil, fmt.Errorf("failed to bind flag log-level: %w", err)
			}
		}
		if f := fs.Lookup("log-format"); f != nil {
			if err := v.BindPFlag("log.format", f); err != nil {
				return nil, fmt.Errorf("failed to bind flag log-format: %w", err)
			}
		}
		if f := fs.Lookup("config"); f != nil && f.Value.String() != "" {
			v.SetConfigFile(f.Value.String())
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read config file %s: %w", f.Value.String(), err)
			}
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}
	if err := cfg.resolvePaths(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// resolvePaths fills unset directories relative to the document root and
// makes every path absolute.
func (c *AppConfig) resolvePaths() error {
	if c.DocRoot == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get working directory: %w", err)
		}
		c.DocRoot = wd
	}
	root, err := filepath.Abs(c.DocRoot)
	if err != nil {
		return fmt.Errorf("failed to resolve docroot %s: %w", c.DocRoot, err)
	}
	c.DocRoot = root

	defaults := []struct {
		target *string
		rel    string
	}{
		{&c.Workspace, "workspace"},
		{&c.Templates, "templates"},
		{&c.Static, filepath.Join("web", "admin", "static")},
		{&c.Database, filepath.Join("manifest", "pages.db")},
		{&c.Settings, filepath.Join("manifest", "config.yaml")},
	}
	for _, d := range defaults {
		if *d.target == "" {
			*d.target = filepath.Join(root, d.rel)
		} else if !filepath.IsAbs(*d.target) {
			*d.target = filepath.Join(root, *d.target)
		}
	}
	return nil
}
