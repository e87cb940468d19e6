package hyprland

import (
	"fmt"
	"net"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

func connect(sock socketType) (net.Conn, error) {
	socketPath, err := getSocketPath(sock)
	if err != nil {
		return nil, fmt.Errorf("get socket path: %w", err)
	}

	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}

	return conn, nil
}

type socketType int

const (
	Hyperctl socketType = iota
	Socket2
)

func getSocketPath(sock socketType) (string, error) {
	signature := os.Getenv("HYPRLAND_INSTANCE_SIGNATURE")
	if signature == "" {
		return "", fmt.Errorf("HYPRLAND_INSTANCE_SIGNATURE is not set, %w", ErrNotRunning)
	}

	var name string
	switch sock {
	case Hyperctl:
		name = ".socket.sock"
	case Socket2:
		name = ".socket2.sock"
	default:
		return "", fmt.Errorf("unknown socket type: %d", sock)
	}

	// hyprland >= 0.40 keeps its sockets in the runtime dir, older versions
	// in /tmp
	dir := filepath.Join(xdg.RuntimeDir, "hypr", signature)
	if _, err := os.Stat(dir); err != nil {
		dir = filepath.Join("/tmp/hypr", signature)
	}

	return filepath.Join(dir, name), nil
}
