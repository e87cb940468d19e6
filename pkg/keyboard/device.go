package keyboard

import (
	"fmt"
	"sync"
)

// Group is an XKB layout index. Groups are compared by equality only.
type Group uint32

// Switcher applies a layout change on the real keyboard.
type Switcher interface {
	SwitchToLayout(keyboard string, idx int) error
}

type Device struct {
	name     string
	layouts  []string
	switcher Switcher
	serial   uint64

	lock   sync.Mutex
	active Group
}

func (d *Device) Name() string {
	return d.name
}

func (d *Device) Layouts() []string {
	return d.layouts
}

func (d *Device) ActiveLayout() Group {
	d.lock.Lock()
	defer d.lock.Unlock()
	return d.active
}

// SetLayout makes group the active layout, forwarding it to the switcher
// first when the device has one. The lock is not held across the switcher
// call.
func (d *Device) SetLayout(group Group) error {
	if d.switcher != nil {
		if err := d.switcher.SwitchToLayout(d.name, int(group)); err != nil {
			return fmt.Errorf("switch %q to layout %d: %w", d.name, group, err)
		}
	}

	d.Update(group)
	return nil
}

// Update records a layout change that already happened on the keyboard.
func (d *Device) Update(group Group) {
	d.lock.Lock()
	defer d.lock.Unlock()
	d.active = group
}
