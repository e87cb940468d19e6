package wayland

import (
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap"
)

// Dispatcher handles requests for objects of one interface. H is the host
// state passed to every handler.
type Dispatcher[H any] interface {
	Request(host H, client *Client, resource *Resource, request Request, init *DataInit[H])
	Destroyed(host H, client *Client, resource *Resource)
}

type GlobalHandler[H any] interface {
	CanView(client *Client) bool
	Bind(host H, client *Client, id ObjectID, version uint32, init *DataInit[H])
}

type GlobalInfo struct {
	Name      GlobalID
	Interface string
	Version   uint32
}

type global[H any] struct {
	name    GlobalID
	iface   *Interface
	version uint32
	handler GlobalHandler[H]
}

type Display[H any] struct {
	globals    []*global[H]
	nextGlobal GlobalID
	clients    map[ClientID]*Client
	nextClient ClientID
	log        *zap.SugaredLogger
}

func NewDisplay[H any](log *zap.SugaredLogger) *Display[H] {
	return &Display[H]{
		nextGlobal: 1,
		clients:    make(map[ClientID]*Client),
		nextClient: 1,
		log:        log,
	}
}

func (d *Display[H]) CreateGlobal(iface *Interface, version uint32, handler GlobalHandler[H]) GlobalID {
	g := &global[H]{
		name:    d.nextGlobal,
		iface:   iface,
		version: version,
		handler: handler,
	}
	d.nextGlobal++
	d.globals = append(d.globals, g)

	d.log.Debugw("created global", "interface", iface.Name, "name", g.name)

	return g.name
}

func (d *Display[H]) RemoveGlobal(name GlobalID) {
	d.globals = slices.DeleteFunc(d.globals, func(g *global[H]) bool {
		return g.name == name
	})
}

// Globals lists the globals the client is allowed to see.
func (d *Display[H]) Globals(client *Client) []GlobalInfo {
	var out []GlobalInfo
	for _, g := range d.globals {
		if !g.handler.CanView(client) {
			continue
		}
		out = append(out, GlobalInfo{Name: g.name, Interface: g.iface.Name, Version: g.version})
	}
	return out
}

func (d *Display[H]) AddClient(creds Credentials, sink EventSink) *Client {
	client := &Client{
		id:      d.nextClient,
		creds:   creds,
		sink:    sink,
		objects: make(map[ObjectID]*Resource),
	}
	d.nextClient++
	d.clients[client.id] = client

	d.log.Debugw("client connected", "client", client.id, "pid", creds.PID, "uid", creds.UID)

	return client
}

// DisconnectClient destroys every object the client still owns, in creation
// order of their ids, and forgets the client.
func (d *Display[H]) DisconnectClient(host H, client *Client) {
	if client.closed {
		return
	}

	ids := make([]ObjectID, 0, len(client.objects))
	for id := range client.objects {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	for _, id := range ids {
		if res, ok := client.objects[id]; ok {
			d.destroy(host, res)
		}
	}

	client.closed = true
	delete(d.clients, client.id)

	d.log.Debugw("client disconnected", "client", client.id)
}

// Bind binds a global on behalf of the client, as the registry bind request
// would.
func (d *Display[H]) Bind(host H, client *Client, name GlobalID, version uint32, id ObjectID) error {
	idx := slices.IndexFunc(d.globals, func(g *global[H]) bool { return g.name == name })
	if idx < 0 {
		return fmt.Errorf("bind %d: %w", name, ErrGlobalNotFound)
	}
	g := d.globals[idx]

	// invisible globals behave as if they did not exist
	if !g.handler.CanView(client) {
		return fmt.Errorf("bind %d: %w", name, ErrGlobalNotFound)
	}
	if version == 0 || version > g.version {
		return fmt.Errorf("bind %s version %d: %w", g.iface.Name, version, ErrInvalidArgs)
	}
	if err := checkNewID(client, id); err != nil {
		return err
	}

	g.handler.Bind(host, client, id, version, &DataInit[H]{display: d, client: client, version: version})
	return nil
}

// Dispatch decodes a request message against the target object's interface
// and hands it to the object's dispatcher. Errors are protocol errors; the
// caller is expected to disconnect the client.
func (d *Display[H]) Dispatch(host H, client *Client, msg Message) error {
	if client.closed {
		return fmt.Errorf("client %d: %w", client.id, ErrUnknownObject)
	}

	if msg.Object == RegistryID {
		return d.dispatchRegistry(host, client, msg)
	}

	res, ok := client.objects[msg.Object]
	if !ok {
		return fmt.Errorf("object %d: %w", msg.Object, ErrUnknownObject)
	}

	opcode, spec, ok := res.iface.request(msg.Name)
	if !ok {
		return fmt.Errorf("%s@%d.%s: %w", res.iface.Name, res.id, msg.Name, ErrInvalidMethod)
	}

	args, err := decodeArgs(client, spec, msg.Args)
	if err != nil {
		return fmt.Errorf("%s@%d.%s: %w", res.iface.Name, res.id, msg.Name, err)
	}

	dispatcher := res.dispatcher.(Dispatcher[H])
	init := &DataInit[H]{display: d, client: client, version: res.version}
	dispatcher.Request(host, client, res, Request{Opcode: opcode, Name: spec.Name, Args: args}, init)

	if spec.Destructor && res.alive {
		d.destroy(host, res)
	}

	return nil
}

func (d *Display[H]) dispatchRegistry(host H, client *Client, msg Message) error {
	switch msg.Name {
	case "list":
		for _, g := range d.Globals(client) {
			client.send(Message{
				Object: RegistryID,
				Name:   "global",
				Args:   []any{uint32(g.Name), g.Interface, g.Version},
			})
		}
		return nil
	case "bind":
		args, err := decodeArgs(client, registryBind, msg.Args)
		if err != nil {
			return fmt.Errorf("registry.bind: %w", err)
		}
		return d.Bind(host, client, GlobalID(args[0].Uint), args[1].Uint, args[2].NewID)
	}

	return fmt.Errorf("registry.%s: %w", msg.Name, ErrInvalidMethod)
}

var registryBind = MessageSpec{Name: "bind", Args: []ArgType{ArgUint, ArgUint, ArgNewID}}

func (d *Display[H]) destroy(host H, res *Resource) {
	client := res.client
	delete(client.objects, res.id)
	res.alive = false

	if dispatcher, ok := res.dispatcher.(Dispatcher[H]); ok {
		dispatcher.Destroyed(host, client, res)
	}
}

func decodeArgs(client *Client, spec MessageSpec, raw []any) ([]Arg, error) {
	if len(raw) != len(spec.Args) {
		return nil, fmt.Errorf("want %d arguments, got %d: %w", len(spec.Args), len(raw), ErrInvalidArgs)
	}

	args := make([]Arg, len(raw))
	for i, typ := range spec.Args {
		switch typ {
		case ArgUint:
			v, err := toUint32(raw[i])
			if err != nil {
				return nil, fmt.Errorf("argument %d: %v: %w", i, err, ErrInvalidArgs)
			}
			args[i].Uint = v
		case ArgObject:
			v, err := toUint32(raw[i])
			if err != nil {
				return nil, fmt.Errorf("argument %d: %v: %w", i, err, ErrInvalidArgs)
			}
			res, ok := client.objects[ObjectID(v)]
			if !ok {
				return nil, fmt.Errorf("argument %d: object %d: %w", i, v, ErrUnknownObject)
			}
			args[i].Object = res
		case ArgNewID:
			v, err := toUint32(raw[i])
			if err != nil {
				return nil, fmt.Errorf("argument %d: %v: %w", i, err, ErrInvalidArgs)
			}
			if err := checkNewID(client, ObjectID(v)); err != nil {
				return nil, err
			}
			args[i].NewID = ObjectID(v)
		case ArgString:
			s, ok := raw[i].(string)
			if !ok {
				return nil, fmt.Errorf("argument %d: unexpected %T: %w", i, raw[i], ErrInvalidArgs)
			}
			args[i].String = s
		default:
			return nil, errors.New("unknown argument type")
		}
	}

	return args, nil
}

func checkNewID(client *Client, id ObjectID) error {
	if id == 0 || id == RegistryID {
		return fmt.Errorf("id %d: %w", id, ErrInvalidObjectID)
	}
	if _, used := client.objects[id]; used {
		return fmt.Errorf("id %d already in use: %w", id, ErrInvalidObjectID)
	}
	return nil
}

// DataInit creates the resources announced by new_id arguments.
type DataInit[H any] struct {
	display *Display[H]
	client  *Client
	version uint32
}

func (i *DataInit[H]) Init(id ObjectID, iface *Interface, dispatcher Dispatcher[H], data any) *Resource {
	res := &Resource{
		id:         id,
		client:     i.client,
		iface:      iface,
		version:    i.version,
		dispatcher: dispatcher,
		data:       data,
		alive:      true,
	}
	i.client.objects[id] = res
	return res
}
