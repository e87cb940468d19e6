package config

import (
	"fmt"
	"os"
	"slices"

	"codeberg.org/miketth/hyprkeymap/pkg/wayland"
)

// Policy decides which clients may see the keymap manager.
type Policy struct {
	uids        []int
	executables []string
	readExe     func(pid int) (string, error)
}

func (a Access) Policy() *Policy {
	uids := a.AllowedUIDs
	if len(uids) == 0 && len(a.AllowedExecutables) == 0 {
		uids = []int{os.Getuid()}
	}

	return &Policy{
		uids:        uids,
		executables: a.AllowedExecutables,
		readExe:     procExe,
	}
}

func (p *Policy) Allow(client *wayland.Client) bool {
	creds := client.Credentials()
	if slices.Contains(p.uids, creds.UID) {
		return true
	}
	if len(p.executables) == 0 || creds.PID <= 0 {
		return false
	}

	exe, err := p.readExe(creds.PID)
	if err != nil {
		return false
	}
	return slices.Contains(p.executables, exe)
}

func procExe(pid int) (string, error) {
	return os.Readlink(fmt.Sprintf("/proc/%d/exe", pid))
}
