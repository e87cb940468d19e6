package keymap

import "codeberg.org/miketth/hyprkeymap/pkg/wayland"

const ManagerVersion = 1

var KeymapInterface = &wayland.Interface{
	Name:    "zcosmic_keymap_v1",
	Version: 1,
	Requests: []wayland.MessageSpec{
		{Name: "set_group", Args: []wayland.ArgType{wayland.ArgUint}},
		{Name: "destroy", Destructor: true},
	},
	Events: []wayland.MessageSpec{
		{Name: "group", Args: []wayland.ArgType{wayland.ArgUint}},
	},
}

var ManagerInterface = &wayland.Interface{
	Name:    "zcosmic_keymap_manager_v1",
	Version: ManagerVersion,
	Requests: []wayland.MessageSpec{
		{Name: "get_keymap", Args: []wayland.ArgType{wayland.ArgObject, wayland.ArgNewID}},
		{Name: "destroy", Destructor: true},
	},
}
