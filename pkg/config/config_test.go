package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"codeberg.org/miketth/hyprkeymap/pkg/wayland"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.NoError(t, cfg.Validate())
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
socket_path = "/run/user/1000/keymap.sock"

[journal]
backend = "json"
path = "/tmp/journal.json"
limit = 50

[access]
allowed_uids = [0, 1000]
allowed_executables = ["/usr/bin/waybar"]
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/run/user/1000/keymap.sock", cfg.SocketPath)
	assert.Equal(t, Default().EvdevXMLPath, cfg.EvdevXMLPath)
	assert.Equal(t, Journal{Backend: JournalJSON, Path: "/tmp/journal.json", Limit: 50}, cfg.Journal)
	assert.Equal(t, []int{0, 1000}, cfg.Access.AllowedUIDs)
	assert.Equal(t, []string{"/usr/bin/waybar"}, cfg.Access.AllowedExecutables)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"syntax", `socket_path = `},
		{"unknown key", `sokcet_path = "/x"`},
		{"empty socket", `socket_path = ""`},
		{"backend", "[journal]\nbackend = \"postgres\""},
		{"no path", "[journal]\nbackend = \"sqlite\"\npath = \"\""},
		{"limit", "[journal]\nlimit = -1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestPolicy(t *testing.T) {
	display := wayland.NewDisplay[struct{}](zap.NewNop().Sugar())
	client := func(pid, uid int) *wayland.Client {
		return display.AddClient(wayland.Credentials{PID: pid, UID: uid}, nil)
	}

	own := Access{}.Policy()
	assert.True(t, own.Allow(client(1, os.Getuid())))
	assert.False(t, own.Allow(client(1, os.Getuid()+1)))

	p := Access{AllowedUIDs: []int{42}, AllowedExecutables: []string{"/usr/bin/waybar"}}.Policy()
	p.readExe = func(pid int) (string, error) {
		switch pid {
		case 10:
			return "/usr/bin/waybar", nil
		case 11:
			return "/usr/bin/evil", nil
		}
		return "", errors.New("no such process")
	}

	assert.True(t, p.Allow(client(99, 42)))
	assert.True(t, p.Allow(client(10, 7)))
	assert.False(t, p.Allow(client(11, 7)))
	assert.False(t, p.Allow(client(12, 7)))
	assert.False(t, p.Allow(client(0, 7)))
}
