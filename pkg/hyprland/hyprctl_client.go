package hyprland

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"regexp"
	"strings"

	"codeberg.org/miketth/hyprkeymap/pkg/hyprkeymap"
)

var (
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrDeviceNotFound  = errors.New("device not found")
)

var errorMapper = []struct {
	re  *regexp.Regexp
	err error
}{
	{regexp.MustCompile(`^ok$`), nil},
	{regexp.MustCompile(`layout idx out of range.*`), ErrIndexOutOfRange},
	{regexp.MustCompile(`device not found`), ErrDeviceNotFound},
}

// Hyprctl talks to Hyprland's request socket, like the hyprctl binary does.
type Hyprctl struct {
	// SocketPath overrides the socket derived from the environment.
	SocketPath string
}

func NewHyprctl() (*Hyprctl, error) {
	if _, err := getSocketPath(Hyperctl); err != nil {
		return nil, err
	}
	return &Hyprctl{}, nil
}

func (c *Hyprctl) SwitchToLayout(keyboard string, idx int) error {
	resp, err := c.request(fmt.Sprintf("switchxkblayout %s %d", keyboard, idx), "")
	if err != nil {
		return err
	}

	outStr := strings.TrimSpace(string(resp))
	for _, m := range errorMapper {
		if m.re.MatchString(outStr) {
			return m.err
		}
	}

	return fmt.Errorf("unknown hyprctl error: %s", outStr)
}

func (c *Hyprctl) GetKeyboards() ([]hyprkeymap.Keyboard, error) {
	resp, err := c.request("devices", "j")
	if err != nil {
		return nil, err
	}

	var devs devices
	if err := json.Unmarshal(resp, &devs); err != nil {
		return nil, fmt.Errorf("unmarshal devices: %w, (hyprctl: %s)", err, resp)
	}

	keyboards := devs.Keyboards
	out := make([]hyprkeymap.Keyboard, 0, len(keyboards))
	for _, k := range keyboards {
		out = append(out, k.toKeyboard())
	}

	return out, nil
}

// keyboard is one entry of `hyprctl devices -j`.
type keyboard struct {
	Name         string `json:"name"`
	Layout       string `json:"layout"`
	Variant      string `json:"variant"`
	Options      string `json:"options"`
	ActiveKeymap string `json:"active_keymap"`
}

type devices struct {
	Keyboards []keyboard `json:"keyboards"`
}

func (k keyboard) toKeyboard() hyprkeymap.Keyboard {
	return hyprkeymap.Keyboard{
		Name:         k.Name,
		Layouts:      strings.Split(k.Layout, ","),
		Variants:     strings.Split(k.Variant, ","),
		ActiveKeymap: k.ActiveKeymap,
	}
}

func (c *Hyprctl) dial() (net.Conn, error) {
	if c.SocketPath != "" {
		conn, err := net.Dial("unix", c.SocketPath)
		if err != nil {
			return nil, fmt.Errorf("dial: %w", err)
		}
		return conn, nil
	}
	return connect(Hyperctl)
}

func (c *Hyprctl) request(request string, args string) ([]byte, error) {
	conn, err := c.dial()
	if err != nil {
		return nil, fmt.Errorf("connect hyprctl socket: %w", err)
	}
	defer conn.Close()

	_, err = conn.Write([]byte(fmt.Sprintf("%s/%s", args, request)))
	if err != nil {
		return nil, fmt.Errorf("write to hyprctl socket: %w", err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, conn); err != nil {
		return nil, fmt.Errorf("read response from hyprctl socket: %w", err)
	}

	return buf.Bytes(), nil
}
