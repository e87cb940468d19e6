package wayland

type Credentials struct {
	PID int
	UID int
	GID int
}

// EventSink receives every event posted to a client's objects.
type EventSink func(Message)

type Client struct {
	id      ClientID
	creds   Credentials
	sink    EventSink
	objects map[ObjectID]*Resource
	closed  bool
}

func (c *Client) ID() ClientID {
	return c.id
}

func (c *Client) Credentials() Credentials {
	return c.creds
}

// Object looks up one of the client's live objects.
func (c *Client) Object(id ObjectID) (*Resource, bool) {
	res, ok := c.objects[id]
	return res, ok
}

func (c *Client) send(msg Message) {
	if c.closed || c.sink == nil {
		return
	}
	c.sink(msg)
}

// Resource is a live protocol object owned by a client.
type Resource struct {
	id         ObjectID
	client     *Client
	iface      *Interface
	version    uint32
	dispatcher any
	data       any
	alive      bool
}

func (r *Resource) ID() ObjectID {
	return r.id
}

func (r *Resource) Client() *Client {
	return r.client
}

func (r *Resource) Interface() *Interface {
	return r.iface
}

func (r *Resource) Version() uint32 {
	return r.version
}

// Data returns the user data the resource was initialized with.
func (r *Resource) Data() any {
	return r.data
}

// Alive reports whether the resource has not been destroyed yet.
func (r *Resource) Alive() bool {
	return r.alive
}

// Post sends an event to the owning client. Events on destroyed resources
// are dropped.
func (r *Resource) Post(event string, args ...any) {
	if !r.alive {
		return
	}
	r.client.send(Message{Object: r.id, Name: event, Args: args})
}
