package hyprkeymap

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"codeberg.org/miketth/hyprkeymap/pkg/keyboard"
	"codeberg.org/miketth/hyprkeymap/pkg/xkblayouts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testLayoutsXML = `<xkbConfigRegistry>
  <layoutList>
    <layout>
      <configItem><name>us</name><description>English (US)</description></configItem>
    </layout>
    <layout>
      <configItem><name>de</name><description>German</description></configItem>
      <variantList>
        <variant><configItem><name>nodeadkeys</name><description>German (no dead keys)</description></configItem></variant>
      </variantList>
    </layout>
    <layout>
      <configItem><name>hu</name><description>Hungarian</description></configItem>
    </layout>
  </layoutList>
</xkbConfigRegistry>`

type fakeHyprland struct {
	keyboards []Keyboard
	switches  []string
	getCalls  int
	err       error
}

func (f *fakeHyprland) GetKeyboards() ([]Keyboard, error) {
	f.getCalls++
	return f.keyboards, f.err
}

func (f *fakeHyprland) SwitchToLayout(keyboard string, idx int) error {
	f.switches = append(f.switches, keyboard)
	return nil
}

func newTestTracker(t *testing.T, hypr *fakeHyprland) (*Tracker, *keyboard.Registry) {
	t.Helper()
	layouts, err := xkblayouts.Decode(strings.NewReader(testLayoutsXML))
	require.NoError(t, err)

	registry := keyboard.NewRegistry()
	return NewTracker(registry, hypr, layouts, zap.NewNop().Sugar()), registry
}

func TestTrackerSync(t *testing.T) {
	hypr := &fakeHyprland{keyboards: []Keyboard{{
		Name:         "kbd",
		Layouts:      []string{"us", "de"},
		Variants:     []string{"", "nodeadkeys"},
		ActiveKeymap: "German (no dead keys)",
	}}}
	tracker, registry := newTestTracker(t, hypr)

	require.NoError(t, tracker.Sync())
	dev, ok := registry.Get("kbd")
	require.True(t, ok)
	assert.Equal(t, []string{"us", "de(nodeadkeys)"}, dev.Layouts())
	assert.Equal(t, keyboard.Group(1), dev.ActiveLayout())

	// same layouts keep the device
	hypr.keyboards[0].ActiveKeymap = "English (US)"
	require.NoError(t, tracker.Sync())
	same, _ := registry.Get("kbd")
	assert.Same(t, dev, same)
	assert.Equal(t, keyboard.Group(0), dev.ActiveLayout())

	// changed layouts replace it
	hypr.keyboards[0].Layouts = []string{"us", "hu"}
	hypr.keyboards[0].Variants = []string{"", ""}
	hypr.keyboards[0].ActiveKeymap = "Hungarian"
	require.NoError(t, tracker.Sync())
	replaced, _ := registry.Get("kbd")
	assert.NotSame(t, dev, replaced)
	assert.Equal(t, keyboard.Group(1), replaced.ActiveLayout())

	// the device switches through hyprland
	require.NoError(t, replaced.SetLayout(0))
	assert.Equal(t, []string{"kbd"}, hypr.switches)

	hypr.keyboards = nil
	require.NoError(t, tracker.Sync())
	_, ok = registry.Get("kbd")
	assert.False(t, ok)

	hypr.err = errors.New("boom")
	assert.Error(t, tracker.Sync())
}

func TestTrackerSyncUnresolvableKeymap(t *testing.T) {
	hypr := &fakeHyprland{keyboards: []Keyboard{{
		Name:         "kbd",
		Layouts:      []string{"us", "de"},
		Variants:     []string{"", ""},
		ActiveKeymap: "German",
	}}}
	tracker, registry := newTestTracker(t, hypr)

	require.NoError(t, tracker.Sync())
	dev, ok := registry.Get("kbd")
	require.True(t, ok)
	assert.Equal(t, keyboard.Group(1), dev.ActiveLayout())

	// an existing device keeps its group
	hypr.keyboards[0].ActiveKeymap = "Klingon"
	require.NoError(t, tracker.ProcessLine("configreloaded>>"))
	same, _ := registry.Get("kbd")
	assert.Same(t, dev, same)
	assert.Equal(t, keyboard.Group(1), dev.ActiveLayout())

	// a new device starts at the first group
	hypr.keyboards[0].Layouts = []string{"us", "hu"}
	require.NoError(t, tracker.Sync())
	replaced, _ := registry.Get("kbd")
	assert.NotSame(t, dev, replaced)
	assert.Equal(t, keyboard.Group(0), replaced.ActiveLayout())
}

func TestTrackerProcessLine(t *testing.T) {
	hypr := &fakeHyprland{keyboards: []Keyboard{{
		Name:         "kbd",
		Layouts:      []string{"us", "de", "hu"},
		Variants:     []string{"", "", ""},
		ActiveKeymap: "English (US)",
	}}}
	tracker, registry := newTestTracker(t, hypr)

	// an unknown keyboard triggers a sync
	require.NoError(t, tracker.ProcessLine("activelayout>>kbd,Hungarian"))
	assert.Equal(t, 1, hypr.getCalls)
	dev, ok := registry.Get("kbd")
	require.True(t, ok)
	assert.Equal(t, keyboard.Group(2), dev.ActiveLayout())

	require.NoError(t, tracker.ProcessLine("activelayout>>kbd,German"))
	assert.Equal(t, keyboard.Group(1), dev.ActiveLayout())
	assert.Equal(t, 1, hypr.getCalls)

	require.NoError(t, tracker.ProcessLine("workspace>>3"))
	hypr.keyboards[0].ActiveKeymap = "German"
	require.NoError(t, tracker.ProcessLine("configreloaded>>"))
	assert.Equal(t, 2, hypr.getCalls)
	assert.Equal(t, keyboard.Group(1), dev.ActiveLayout())

	assert.Error(t, tracker.ProcessLine("garbage"))
	assert.Error(t, tracker.ProcessLine("activelayout>>kbd"))
	assert.Error(t, tracker.ProcessLine("activelayout>>kbd,Klingon"))
	assert.Error(t, tracker.ProcessLine("activelayout>>ghost,German"))
	assert.Equal(t, keyboard.Group(1), dev.ActiveLayout())
}

type scriptedListener struct {
	lines []string
}

func (l *scriptedListener) ReadLine() (string, error) {
	if len(l.lines) == 0 {
		return "", io.EOF
	}
	line := l.lines[0]
	l.lines = l.lines[1:]
	return line, nil
}

func TestReadLines(t *testing.T) {
	out := make(chan string, 2)
	err := ReadLines(context.Background(), &scriptedListener{lines: []string{"a>>1", "b>>2"}}, out)
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, "a>>1", <-out)
	assert.Equal(t, "b>>2", <-out)
}
