package hyprland

import (
	"io"
	"net"
	"path/filepath"
	"sync"
	"testing"

	"codeberg.org/miketth/hyprkeymap/pkg/hyprkeymap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeHyprctl answers each request on the socket with the reply for it.
func fakeHyprctl(t *testing.T, replies map[string]string) (string, func() []string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".socket.sock")
	l, err := net.Listen("unix", path)
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })

	var lock sync.Mutex
	var seen []string
	go func() {
		for {
			conn, err := l.Accept()
			if err != nil {
				return
			}
			buf := make([]byte, 512)
			n, _ := conn.Read(buf)
			req := string(buf[:n])
			lock.Lock()
			seen = append(seen, req)
			lock.Unlock()
			_, _ = io.WriteString(conn, replies[req])
			conn.Close()
		}
	}()

	return path, func() []string {
		lock.Lock()
		defer lock.Unlock()
		return append([]string(nil), seen...)
	}
}

const devicesJSON = `{
  "mice": [],
  "keyboards": [{
    "address": "0x1",
    "name": "at-translated-set-2-keyboard",
    "rules": "", "model": "",
    "layout": "us,de",
    "variant": ",nodeadkeys",
    "options": "grp:alt_shift_toggle",
    "active_keymap": "German (no dead keys)",
    "main": true
  }]
}`

func TestGetKeyboards(t *testing.T) {
	path, _ := fakeHyprctl(t, map[string]string{"j/devices": devicesJSON})
	ctl := &Hyprctl{SocketPath: path}

	keyboards, err := ctl.GetKeyboards()
	require.NoError(t, err)
	assert.Equal(t, []hyprkeymap.Keyboard{{
		Name:         "at-translated-set-2-keyboard",
		Layouts:      []string{"us", "de"},
		Variants:     []string{"", "nodeadkeys"},
		ActiveKeymap: "German (no dead keys)",
	}}, keyboards)
}

func TestSwitchToLayout(t *testing.T) {
	path, seen := fakeHyprctl(t, map[string]string{
		"/switchxkblayout kbd 1":     "ok",
		"/switchxkblayout kbd 9":     "layout idx out of range (max 1)",
		"/switchxkblayout missing 0": "device not found",
		"/switchxkblayout kbd 2":     "what",
	})
	ctl := &Hyprctl{SocketPath: path}

	assert.NoError(t, ctl.SwitchToLayout("kbd", 1))
	assert.ErrorIs(t, ctl.SwitchToLayout("kbd", 9), ErrIndexOutOfRange)
	assert.ErrorIs(t, ctl.SwitchToLayout("missing", 0), ErrDeviceNotFound)
	assert.ErrorContains(t, ctl.SwitchToLayout("kbd", 2), "unknown hyprctl error")
	assert.Len(t, seen(), 4)
}

func TestSocketPath(t *testing.T) {
	t.Setenv("HYPRLAND_INSTANCE_SIGNATURE", "")
	_, err := getSocketPath(Socket2)
	assert.ErrorIs(t, err, ErrNotRunning)

	_, err = NewHyprctl()
	assert.ErrorIs(t, err, ErrNotRunning)

	t.Setenv("HYPRLAND_INSTANCE_SIGNATURE", "sig-that-does-not-exist")
	path, err := getSocketPath(Socket2)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/hypr/sig-that-does-not-exist/.socket2.sock", path)

	_, err = getSocketPath(socketType(7))
	assert.Error(t, err)
}

func TestReadLine(t *testing.T) {
	server, conn := net.Pipe()
	c := newClient(conn)
	defer c.Close()

	go func() {
		_, _ = io.WriteString(server, "activelayout>>kbd,English (US)\nworkspace>>2\n")
		server.Close()
	}()

	line, err := c.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "activelayout>>kbd,English (US)", line)

	line, err = c.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "workspace>>2", line)

	_, err = c.ReadLine()
	assert.ErrorIs(t, err, io.EOF)
}

