// Package keymap implements the keymap manager protocol: clients bind a
// keyboard, receive its active layout group and may change it.
package keymap

import (
	"slices"

	"codeberg.org/miketth/hyprkeymap/pkg/keyboard"
	"codeberg.org/miketth/hyprkeymap/pkg/wayland"
	"go.uber.org/zap"
)

// Handler is implemented by the host state. Every request handler and the
// refresh pass get the host passed in explicitly.
type Handler interface {
	KeymapState() *State
	ResolveKeyboard(ref *wayland.Resource) (keyboard.Handle, bool)
}

// ClientFilter decides whether a client may see and bind the manager global.
type ClientFilter func(client *wayland.Client) bool

// GroupChange describes a group event that was sent to a client.
type GroupChange struct {
	Client   wayland.ClientID
	Object   wayland.ObjectID
	Keyboard string
	Group    keyboard.Group
	Initial  bool
}

// Binding ties a keymap object to the keyboard it reports on.
type Binding struct {
	resource *wayland.Resource
	// nil when the keyboard could not be resolved at creation
	handle   *keyboard.Handle
	group    keyboard.Group
	hasGroup bool
}

func (b *Binding) Resource() *wayland.Resource {
	return b.resource
}

// LastGroup returns the group last sent to the client, if any.
func (b *Binding) LastGroup() (keyboard.Group, bool) {
	return b.group, b.hasGroup
}

// State holds the manager global and every live keymap binding.
type State struct {
	global    wayland.GlobalID
	removeFn  func()
	keymaps   []*Binding
	observers []func(GroupChange)
	log       *zap.SugaredLogger
}

// NewState advertises the manager global. The filter is captured once and
// consulted for every advertisement and bind.
func NewState[H Handler](display *wayland.Display[H], filter ClientFilter, log *zap.SugaredLogger) *State {
	global := display.CreateGlobal(ManagerInterface, ManagerVersion, managerGlobal[H]{filter: filter})

	return &State{
		global:   global,
		removeFn: func() { display.RemoveGlobal(global) },
		log:      log,
	}
}

func (s *State) Global() wayland.GlobalID {
	return s.global
}

// Close withdraws the manager global. Existing bindings keep working until
// their clients destroy them.
func (s *State) Close() {
	if s.removeFn != nil {
		s.removeFn()
		s.removeFn = nil
	}
}

// Observe registers fn to be called for every group event, right before it
// is sent.
func (s *State) Observe(fn func(GroupChange)) {
	s.observers = append(s.observers, fn)
}

func (s *State) Len() int {
	return len(s.keymaps)
}

func (s *State) Bindings() []*Binding {
	return slices.Clone(s.keymaps)
}

func (s *State) add(b *Binding) {
	s.keymaps = append(s.keymaps, b)
}

func (s *State) remove(res *wayland.Resource) {
	idx := slices.IndexFunc(s.keymaps, func(b *Binding) bool {
		return b.resource == res
	})
	if idx < 0 {
		return
	}
	s.keymaps = slices.Delete(s.keymaps, idx, idx+1)
}

func (s *State) sendGroup(b *Binding, group keyboard.Group, initial bool) {
	change := GroupChange{
		Client:  b.resource.Client().ID(),
		Object:  b.resource.ID(),
		Group:   group,
		Initial: initial,
	}
	if b.handle != nil {
		change.Keyboard = b.handle.Name()
	}
	for _, fn := range s.observers {
		fn(change)
	}

	b.resource.Post("group", uint32(group))
}

// Refresh sends a group event to every binding whose keyboard changed its
// active layout since the last event. The host calls it once per input
// processing cycle.
func Refresh(host Handler) {
	s := host.KeymapState()

	// event delivery may end up destroying bindings, iterate a snapshot
	for _, b := range slices.Clone(s.keymaps) {
		if b.handle == nil || !b.resource.Alive() {
			continue
		}

		dev, ok := b.handle.Device()
		if !ok {
			continue
		}

		active := dev.ActiveLayout()
		if b.hasGroup && b.group == active {
			continue
		}

		b.group, b.hasGroup = active, true
		s.sendGroup(b, active, false)
	}
}
