package keymap

import (
	"fmt"

	"codeberg.org/miketth/hyprkeymap/pkg/keyboard"
	"codeberg.org/miketth/hyprkeymap/pkg/wayland"
)

type managerGlobal[H Handler] struct {
	filter ClientFilter
}

func (g managerGlobal[H]) CanView(client *wayland.Client) bool {
	if g.filter == nil {
		return true
	}
	return g.filter(client)
}

func (managerGlobal[H]) Bind(_ H, _ *wayland.Client, id wayland.ObjectID, _ uint32, init *wayland.DataInit[H]) {
	init.Init(id, ManagerInterface, managerDispatcher[H]{}, nil)
}

type managerDispatcher[H Handler] struct{}

func (managerDispatcher[H]) Request(host H, client *wayland.Client, _ *wayland.Resource, req wayland.Request, init *wayland.DataInit[H]) {
	switch req.Name {
	case "get_keymap":
		ref, id := req.Args[0].Object, req.Args[1].NewID
		s := host.KeymapState()

		b := &Binding{}
		if handle, ok := host.ResolveKeyboard(ref); ok {
			if dev, ok := handle.Device(); ok {
				b.handle = &handle
				b.group, b.hasGroup = dev.ActiveLayout(), true
			}
		}

		b.resource = init.Init(id, KeymapInterface, keymapDispatcher[H]{}, b)
		if b.hasGroup {
			s.sendGroup(b, b.group, true)
		}
		s.add(b)

		s.log.Debugw("created keymap binding",
			"client", client.ID(), "object", id, "inert", b.handle == nil)
	case "destroy":
	default:
		panic(fmt.Sprintf("unreachable: %s request %q", ManagerInterface.Name, req.Name))
	}
}

func (managerDispatcher[H]) Destroyed(H, *wayland.Client, *wayland.Resource) {}

type keymapDispatcher[H Handler] struct{}

func (keymapDispatcher[H]) Request(host H, _ *wayland.Client, res *wayland.Resource, req wayland.Request, _ *wayland.DataInit[H]) {
	switch req.Name {
	case "set_group":
		b := res.Data().(*Binding)
		if b.handle == nil {
			return
		}
		dev, ok := b.handle.Device()
		if !ok {
			return
		}

		// the cached group is left alone, the next refresh reconciles it
		if err := dev.SetLayout(keyboard.Group(req.Args[0].Uint)); err != nil {
			host.KeymapState().log.Warnw("set group failed", "keyboard", dev.Name(), "error", err)
		}
	case "destroy":
	default:
		panic(fmt.Sprintf("unreachable: %s request %q", KeymapInterface.Name, req.Name))
	}
}

func (keymapDispatcher[H]) Destroyed(host H, client *wayland.Client, res *wayland.Resource) {
	host.KeymapState().remove(res)
	host.KeymapState().log.Debugw("destroyed keymap binding", "client", client.ID(), "object", res.ID())
}
