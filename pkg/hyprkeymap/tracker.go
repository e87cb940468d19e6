package hyprkeymap

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"codeberg.org/miketth/hyprkeymap/pkg/keyboard"
	"codeberg.org/miketth/hyprkeymap/pkg/xkblayouts"
	"go.uber.org/zap"
)

// Tracker mirrors Hyprland's keyboards and their active layouts into a
// keyboard registry.
type Tracker struct {
	known          map[string]Keyboard
	layoutIdxCache map[string]map[string]int

	keyboards       *keyboard.Registry
	switcher        KeyboardLayoutSwitcher
	possibleLayouts *xkblayouts.XkbConfigRegistry
	log             *zap.SugaredLogger
}

func NewTracker(
	keyboards *keyboard.Registry,
	switcher KeyboardLayoutSwitcher,
	possibleLayouts *xkblayouts.XkbConfigRegistry,
	log *zap.SugaredLogger,
) *Tracker {
	return &Tracker{
		known:           make(map[string]Keyboard),
		layoutIdxCache:  make(map[string]map[string]int),
		keyboards:       keyboards,
		switcher:        switcher,
		possibleLayouts: possibleLayouts,
		log:             log,
	}
}

// Sync reloads the keyboard list. Devices whose layouts did not change keep
// their identity, so bindings to them stay valid.
func (t *Tracker) Sync() error {
	keyboards, err := t.switcher.GetKeyboards()
	if err != nil {
		return fmt.Errorf("get keyboards: %w", err)
	}

	seen := make(map[string]bool, len(keyboards))
	for _, k := range keyboards {
		seen[k.Name] = true

		layouts := k.LayoutNames()
		dev, ok := t.keyboards.Get(k.Name)
		sameLayouts := ok && slices.Equal(dev.Layouts(), layouts)
		if !sameLayouts {
			// the old layout indexes mean nothing for the new device
			delete(t.layoutIdxCache, k.Name)
		}

		active, err := t.layoutIndex(k, k.ActiveKeymap)
		resolved := err == nil
		if !resolved {
			t.log.Debugw("could not determine active layout", "keyboard", k.Name, "error", err)
			active = 0
		}

		if sameLayouts {
			// keep the last known group rather than guessing
			if resolved {
				dev.Update(keyboard.Group(active))
			}
			t.known[k.Name] = k
			continue
		}

		t.keyboards.Add(k.Name, layouts, keyboard.Group(active), t.switcher)
		t.known[k.Name] = k
		t.log.Infow("tracking keyboard", "keyboard", k.Name, "layouts", layouts, "active", active)
	}

	for _, name := range t.keyboards.Names() {
		if seen[name] {
			continue
		}
		t.keyboards.Remove(name)
		delete(t.known, name)
		delete(t.layoutIdxCache, name)
		t.log.Infow("keyboard gone", "keyboard", name)
	}

	return nil
}

// ReadLines forwards lines from the listener until ctx is done or reading
// fails. The caller unblocks a pending read on shutdown by closing the
// listener's connection.
func ReadLines(ctx context.Context, listener EventListener, out chan<- string) error {
	for {
		line, err := listener.ReadLine()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("get line: %w", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case out <- line:
		}
	}
}

func (t *Tracker) ProcessLine(line string) error {
	fields := strings.SplitN(line, ">>", 2)
	if len(fields) < 2 {
		return fmt.Errorf("invalid line: %q", line)
	}

	evType := fields[0]
	evData := fields[1]
	switch evType {
	case "activelayout":
		return t.processLayoutChange(evData)
	case "configreloaded":
		return t.Sync()
	}

	return nil
}

func (t *Tracker) processLayoutChange(data string) error {
	dataParts := strings.Split(data, ",")

	if len(dataParts) < 2 {
		return fmt.Errorf("invalid layout change data: %q", data)
	}

	keyboardName := dataParts[0]
	layout := strings.Join(dataParts[1:], ",")

	if _, ok := t.known[keyboardName]; !ok {
		if err := t.Sync(); err != nil {
			return fmt.Errorf("sync unknown keyboard %q: %w", keyboardName, err)
		}
	}

	k, ok := t.known[keyboardName]
	if !ok {
		return fmt.Errorf("keyboard %q not found", keyboardName)
	}

	idx, err := t.layoutIndex(k, layout)
	if err != nil {
		return fmt.Errorf("get layout index: %w", err)
	}

	dev, ok := t.keyboards.Get(keyboardName)
	if !ok {
		return fmt.Errorf("keyboard %q not registered", keyboardName)
	}
	dev.Update(keyboard.Group(idx))

	return nil
}

func (t *Tracker) layoutIndex(k Keyboard, layout string) (int, error) {
	// get it from cache if possible
	if idx, ok := t.layoutIdxCache[k.Name][layout]; ok {
		return idx, nil
	}

	// get layout code and variant code
	layoutCode, variantCode := t.possibleLayouts.GetLayoutAndVariantFromPrettyName(layout)
	if layoutCode == "" {
		return -1, fmt.Errorf("layout %q not found", layout)
	}

	for i := range k.Layouts {
		var variant string
		if i < len(k.Variants) {
			variant = k.Variants[i]
		}
		if k.Layouts[i] == layoutCode && variant == variantCode {
			if t.layoutIdxCache[k.Name] == nil {
				t.layoutIdxCache[k.Name] = make(map[string]int)
			}

			t.layoutIdxCache[k.Name][layout] = i
			return i, nil
		}
	}

	return -1, fmt.Errorf("layout %q not found for keyboard %q", layout, k.Name)
}
