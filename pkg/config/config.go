// Package config loads the daemon configuration from a TOML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/BurntSushi/toml"
	"github.com/adrg/xdg"
)

const appName = "hyprkeymap"

type JournalBackend string

const (
	JournalSqlite JournalBackend = "sqlite"
	JournalJSON   JournalBackend = "json"
	JournalMemory JournalBackend = "memory"
	JournalNone   JournalBackend = "none"
)

type Config struct {
	SocketPath   string  `toml:"socket_path"`
	EvdevXMLPath string  `toml:"evdev_xml_path"`
	Journal      Journal `toml:"journal"`
	Access       Access  `toml:"access"`
}

type Journal struct {
	Backend JournalBackend `toml:"backend"`
	Path    string         `toml:"path"`
	// Limit caps the entries kept by the json and memory backends.
	Limit int `toml:"limit"`
}

// Access lists who may see the keymap manager. With both lists empty only
// processes of the daemon's own user are allowed.
type Access struct {
	AllowedUIDs        []int    `toml:"allowed_uids"`
	AllowedExecutables []string `toml:"allowed_executables"`
}

func Default() *Config {
	return &Config{
		SocketPath:   filepath.Join(xdg.RuntimeDir, appName+".sock"),
		EvdevXMLPath: "/usr/share/X11/xkb/rules/evdev.xml",
		Journal: Journal{
			Backend: JournalSqlite,
			Path:    filepath.Join(xdg.DataHome, appName, "journal.db"),
			Limit:   1000,
		},
	}
}

func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, appName, "config.toml")
}

// Load reads the file at path on top of the defaults. A missing file yields
// the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	md, err := toml.DecodeFile(path, cfg)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return cfg, nil
	case err != nil:
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown keys in %s: %v", path, undecoded)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate %s: %w", path, err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.SocketPath == "" {
		return errors.New("socket_path must not be empty")
	}
	if c.EvdevXMLPath == "" {
		return errors.New("evdev_xml_path must not be empty")
	}

	backends := []JournalBackend{JournalSqlite, JournalJSON, JournalMemory, JournalNone}
	if !slices.Contains(backends, c.Journal.Backend) {
		return fmt.Errorf("unknown journal backend %q", c.Journal.Backend)
	}
	if c.Journal.Path == "" && (c.Journal.Backend == JournalSqlite || c.Journal.Backend == JournalJSON) {
		return fmt.Errorf("journal backend %q needs a path", c.Journal.Backend)
	}
	if c.Journal.Limit < 0 {
		return errors.New("journal limit must not be negative")
	}

	return nil
}
