package hyprkeymap

import (
	"context"
	"time"

	"codeberg.org/miketth/hyprkeymap/pkg/keyboard"
	"codeberg.org/miketth/hyprkeymap/pkg/keymap"
	"codeberg.org/miketth/hyprkeymap/pkg/wayland"
	"go.uber.org/zap"
)

// Host owns the display and all protocol state. Everything it owns is only
// touched from the goroutine running Run.
type Host struct {
	display   *wayland.Display[*Host]
	keymaps   *keymap.State
	keyboards *keyboard.Registry
	tracker   *Tracker
	clients   map[*wayland.Conn]*wayland.Client
	journal   Journal
	now       func() time.Time
	log       *zap.SugaredLogger
}

func NewHost(
	keyboards *keyboard.Registry,
	tracker *Tracker,
	filter keymap.ClientFilter,
	journal Journal,
	log *zap.SugaredLogger,
) *Host {
	h := &Host{
		display:   wayland.NewDisplay[*Host](log),
		keyboards: keyboards,
		tracker:   tracker,
		clients:   make(map[*wayland.Conn]*wayland.Client),
		journal:   journal,
		now:       time.Now,
		log:       log,
	}

	keyboard.RegisterSeat(h.display, keyboards)
	h.keymaps = keymap.NewState(h.display, filter, log)
	h.keymaps.Observe(h.record)

	return h
}

func (h *Host) KeymapState() *keymap.State {
	return h.keymaps
}

func (h *Host) ResolveKeyboard(ref *wayland.Resource) (keyboard.Handle, bool) {
	return h.keyboards.Resolve(ref)
}

func (h *Host) record(change keymap.GroupChange) {
	h.log.Debugw("sent group",
		"client", change.Client, "object", change.Object,
		"keyboard", change.Keyboard, "group", change.Group, "initial", change.Initial)

	if h.journal == nil {
		return
	}

	err := h.journal.Record(JournalEntry{
		Time:     h.now(),
		Client:   uint64(change.Client),
		Object:   uint32(change.Object),
		Keyboard: change.Keyboard,
		Group:    uint32(change.Group),
		Initial:  change.Initial,
	})
	if err != nil {
		h.log.Warnw("record group change", "error", err)
	}
}

// Run is the host's event loop. Every Hyprland event and every client
// message is one input cycle, followed by exactly one keymap refresh.
func (h *Host) Run(ctx context.Context, lines <-chan string, conns <-chan wayland.ConnEvent) error {
	defer h.shutdown()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line := <-lines:
			if err := h.tracker.ProcessLine(line); err != nil {
				h.log.Warnw("process hyprland event", "line", line, "error", err)
			}
		case ev := <-conns:
			h.handleConn(ev)
		}

		keymap.Refresh(h)
	}
}

func (h *Host) handleConn(ev wayland.ConnEvent) {
	switch {
	case ev.Connected:
		h.clients[ev.Conn] = h.display.AddClient(ev.Conn.Credentials(), ev.Conn.Send)
	case ev.Closed:
		if ev.Err != nil {
			h.log.Debugw("client connection closed", "error", ev.Err)
		}
		h.disconnect(ev.Conn)
	default:
		client, ok := h.clients[ev.Conn]
		if !ok {
			return
		}
		if err := h.display.Dispatch(h, client, ev.Message); err != nil {
			h.log.Infow("protocol error, disconnecting client", "client", client.ID(), "error", err)
			ev.Conn.Send(wayland.Message{Object: wayland.RegistryID, Name: "error", Args: []any{err.Error()}})
			h.disconnect(ev.Conn)
		}
	}
}

func (h *Host) disconnect(conn *wayland.Conn) {
	client, ok := h.clients[conn]
	if !ok {
		return
	}
	delete(h.clients, conn)
	h.display.DisconnectClient(h, client)
	conn.Finish()
}

func (h *Host) shutdown() {
	for conn := range h.clients {
		h.disconnect(conn)
	}
	h.keymaps.Close()
}
