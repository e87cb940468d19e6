package keyboard

import (
	"fmt"

	"codeberg.org/miketth/hyprkeymap/pkg/wayland"
)

var KeyboardInterface = &wayland.Interface{
	Name:    "hyprkeymap_keyboard",
	Version: 1,
	Requests: []wayland.MessageSpec{
		{Name: "release", Destructor: true},
	},
}

// SeatInterface hands out keyboard objects by device name. It stands in for
// wl_seat, which only knows a single keyboard per seat.
var SeatInterface = &wayland.Interface{
	Name:    "hyprkeymap_seat",
	Version: 1,
	Requests: []wayland.MessageSpec{
		{Name: "get_keyboard", Args: []wayland.ArgType{wayland.ArgString, wayland.ArgNewID}},
		{Name: "release", Destructor: true},
	},
	Events: []wayland.MessageSpec{
		{Name: "keyboard", Args: []wayland.ArgType{wayland.ArgString}},
	},
}

// RegisterSeat advertises the seat global to every client.
func RegisterSeat[H any](display *wayland.Display[H], registry *Registry) wayland.GlobalID {
	return display.CreateGlobal(SeatInterface, SeatInterface.Version, seatGlobal[H]{registry: registry})
}

type seatGlobal[H any] struct {
	registry *Registry
}

func (seatGlobal[H]) CanView(*wayland.Client) bool {
	return true
}

func (g seatGlobal[H]) Bind(_ H, _ *wayland.Client, id wayland.ObjectID, _ uint32, init *wayland.DataInit[H]) {
	seat := init.Init(id, SeatInterface, seatDispatcher[H]{}, nil)
	for _, name := range g.registry.Names() {
		seat.Post("keyboard", name)
	}
}

type seatDispatcher[H any] struct{}

func (seatDispatcher[H]) Request(_ H, _ *wayland.Client, _ *wayland.Resource, req wayland.Request, init *wayland.DataInit[H]) {
	switch req.Name {
	case "get_keyboard":
		// the name is kept even if no such device exists, the object then
		// never resolves
		init.Init(req.Args[1].NewID, KeyboardInterface, keyboardDispatcher[H]{}, req.Args[0].String)
	case "release":
	default:
		panic(fmt.Sprintf("unreachable: %s request %q", SeatInterface.Name, req.Name))
	}
}

func (seatDispatcher[H]) Destroyed(H, *wayland.Client, *wayland.Resource) {}

type keyboardDispatcher[H any] struct{}

func (keyboardDispatcher[H]) Request(_ H, _ *wayland.Client, _ *wayland.Resource, req wayland.Request, _ *wayland.DataInit[H]) {
	switch req.Name {
	case "release":
	default:
		panic(fmt.Sprintf("unreachable: %s request %q", KeyboardInterface.Name, req.Name))
	}
}

func (keyboardDispatcher[H]) Destroyed(H, *wayland.Client, *wayland.Resource) {}
