package wayland

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"sync"

	"go.uber.org/zap"
)

const outgoingQueueSize = 64

// Conn is a client connection speaking newline delimited JSON messages.
type Conn struct {
	conn  net.Conn
	creds Credentials
	out   chan Message
	log   *zap.SugaredLogger

	done chan struct{}
	once sync.Once

	// closed once the connection should end after the queued events
	finish     chan struct{}
	finishOnce sync.Once
}

func (c *Conn) Credentials() Credentials {
	return c.creds
}

// Send queues a message for the client. A client that does not keep up with
// its events is disconnected.
func (c *Conn) Send(msg Message) {
	select {
	case <-c.done:
	case c.out <- msg:
	default:
		c.log.Warnw("client event queue full, closing connection", "pid", c.creds.PID)
		c.Close()
	}
}

func (c *Conn) Close() error {
	var err error
	c.once.Do(func() {
		close(c.done)
		err = c.conn.Close()
	})
	return err
}

// Finish closes the connection once the already queued events are written.
func (c *Conn) Finish() {
	c.finishOnce.Do(func() { close(c.finish) })
}

func (c *Conn) writeLoop() {
	enc := json.NewEncoder(c.conn)
	write := func(msg Message) bool {
		if err := enc.Encode(msg); err != nil {
			c.log.Debugw("write to client failed", "error", err)
			c.Close()
			return false
		}
		return true
	}

	for {
		select {
		case <-c.done:
			return
		case msg := <-c.out:
			if !write(msg) {
				return
			}
		case <-c.finish:
			for {
				select {
				case msg := <-c.out:
					if !write(msg) {
						return
					}
				default:
					c.Close()
					return
				}
			}
		}
	}
}

// ConnEvent is delivered to the host loop for every decoded request, for new
// connections and for closed connections.
type ConnEvent struct {
	Conn      *Conn
	Message   Message
	Connected bool
	Closed    bool
	Err       error
}

type Listener struct {
	listener net.Listener
	path     string
	log      *zap.SugaredLogger
}

// Listen creates the unix socket at path, replacing a stale one.
func Listen(path string, log *zap.SugaredLogger) (*Listener, error) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("remove stale socket: %w", err)
	}

	l, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen: %w", err)
	}

	return &Listener{listener: l, path: path, log: log}, nil
}

func (l *Listener) Close() error {
	err := l.listener.Close()
	_ = os.Remove(l.path)
	return err
}

// Serve accepts connections until ctx is done, feeding every connection's
// traffic into events.
func (l *Listener) Serve(ctx context.Context, events chan<- ConnEvent) error {
	go func() {
		<-ctx.Done()
		_ = l.listener.Close()
	}()

	for {
		nc, err := l.listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("accept: %w", err)
		}

		creds, err := peerCredentials(nc)
		if err != nil {
			l.log.Warnw("rejecting connection without peer credentials", "error", err)
			_ = nc.Close()
			continue
		}

		conn := &Conn{
			conn:   nc,
			creds:  creds,
			out:    make(chan Message, outgoingQueueSize),
			done:   make(chan struct{}),
			finish: make(chan struct{}),
			log:    l.log,
		}

		go conn.writeLoop()
		go conn.readLoop(ctx, events)
	}
}

func (c *Conn) readLoop(ctx context.Context, events chan<- ConnEvent) {
	deliver := func(ev ConnEvent) bool {
		select {
		case events <- ev:
			return true
		case <-ctx.Done():
			c.Close()
			return false
		}
	}

	if !deliver(ConnEvent{Conn: c, Connected: true}) {
		return
	}

	scanner := bufio.NewScanner(c.conn)
	for scanner.Scan() {
		var msg Message
		if err := json.Unmarshal(scanner.Bytes(), &msg); err != nil {
			deliver(ConnEvent{Conn: c, Closed: true, Err: fmt.Errorf("decode message: %w", err)})
			c.Close()
			return
		}
		if !deliver(ConnEvent{Conn: c, Message: msg}) {
			return
		}
	}

	deliver(ConnEvent{Conn: c, Closed: true, Err: scanner.Err()})
	c.Close()
}
