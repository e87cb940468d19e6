package wayland

import (
	"encoding/json"
	"fmt"
	"math"
)

type ClientID uint64

type ObjectID uint32

// GlobalID is the registry name a global is advertised under.
type GlobalID uint32

// RegistryID is the object every client starts with. It lists and binds
// globals.
const RegistryID ObjectID = 1

type ArgType int

const (
	ArgUint ArgType = iota
	ArgObject
	ArgNewID
	ArgString
)

type MessageSpec struct {
	Name       string
	Args       []ArgType
	Destructor bool
}

// Interface describes the requests and events of a protocol interface.
type Interface struct {
	Name     string
	Version  uint32
	Requests []MessageSpec
	Events   []MessageSpec
}

func (i *Interface) request(name string) (int, MessageSpec, bool) {
	for opcode, spec := range i.Requests {
		if spec.Name == name {
			return opcode, spec, true
		}
	}
	return -1, MessageSpec{}, false
}

// Message is a request or an event as it travels between client and server.
// Integer arguments may arrive as any Go integer type or as float64 when
// decoded from JSON.
type Message struct {
	Object ObjectID `json:"object"`
	Name   string   `json:"name"`
	Args   []any    `json:"args,omitempty"`
}

// Arg is a decoded request argument. Only the field matching the argument
// type is set.
type Arg struct {
	Uint   uint32
	Object *Resource
	NewID  ObjectID
	String string
}

type Request struct {
	Opcode int
	Name   string
	Args   []Arg
}

func toUint32(v any) (uint32, error) {
	switch n := v.(type) {
	case uint32:
		return n, nil
	case int:
		return fromInt64(int64(n))
	case int64:
		return fromInt64(n)
	case uint:
		if uint64(n) > math.MaxUint32 {
			return 0, fmt.Errorf("%d out of range", n)
		}
		return uint32(n), nil
	case ObjectID:
		return uint32(n), nil
	case GlobalID:
		return uint32(n), nil
	case float64:
		if n < 0 || n > math.MaxUint32 || n != math.Trunc(n) {
			return 0, fmt.Errorf("%v is not a uint32", n)
		}
		return uint32(n), nil
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, err
		}
		return fromInt64(i)
	}
	return 0, fmt.Errorf("unexpected %T", v)
}

func fromInt64(n int64) (uint32, error) {
	if n < 0 || n > math.MaxUint32 {
		return 0, fmt.Errorf("%d out of range", n)
	}
	return uint32(n), nil
}
