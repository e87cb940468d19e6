package hyprkeymap

import (
	"fmt"
	"time"
)

type EventListener interface {
	ReadLine() (string, error)
}

type KeyboardLayoutSwitcher interface {
	GetKeyboards() ([]Keyboard, error)
	SwitchToLayout(keyboard string, idx int) error
}

type Keyboard struct {
	Name         string
	Layouts      []string
	Variants     []string
	ActiveKeymap string
}

// LayoutNames returns the configured layouts in xkb notation, e.g.
// "de(nodeadkeys)".
func (k Keyboard) LayoutNames() []string {
	out := make([]string, len(k.Layouts))
	for i, l := range k.Layouts {
		var variant string
		if i < len(k.Variants) {
			variant = k.Variants[i]
		}
		out[i] = Layout{Code: l, Variant: variant}.String()
	}
	return out
}

type Layout struct {
	Code    string
	Variant string
}

func (l Layout) String() string {
	if l.Variant == "" {
		return l.Code
	}
	return fmt.Sprintf("%s(%s)", l.Code, l.Variant)
}

// JournalEntry is one group event sent to a client.
type JournalEntry struct {
	Time     time.Time
	Client   uint64
	Object   uint32
	Keyboard string
	Group    uint32
	Initial  bool
}

// Journal keeps a diagnostic history of group events. It is never used to
// restore layouts.
type Journal interface {
	Record(entry JournalEntry) error
	Recent(limit int) ([]JournalEntry, error)
}
