//go:build !linux

package wayland

import (
	"errors"
	"net"
)

func peerCredentials(net.Conn) (Credentials, error) {
	return Credentials{}, errors.New("peer credentials are only supported on linux")
}
