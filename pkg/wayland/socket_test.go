//go:build linux

package wayland

import (
	"bufio"
	"context"
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func nextEvent(t *testing.T, events <-chan ConnEvent) ConnEvent {
	t.Helper()
	select {
	case ev := <-events:
		return ev
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for connection event")
		return ConnEvent{}
	}
}

func TestSocketRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keymap.sock")
	l, err := Listen(path, zap.NewNop().Sugar())
	require.NoError(t, err)
	defer l.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := make(chan ConnEvent)
	go func() { _ = l.Serve(ctx, events) }()

	client, err := net.Dial("unix", path)
	require.NoError(t, err)
	defer client.Close()

	ev := nextEvent(t, events)
	require.True(t, ev.Connected)
	assert.Equal(t, os.Getuid(), ev.Conn.Credentials().UID)
	assert.Equal(t, os.Getpid(), ev.Conn.Credentials().PID)

	_, err = client.Write([]byte(`{"object":1,"name":"bind","args":[2,1,3]}` + "\n"))
	require.NoError(t, err)

	ev = nextEvent(t, events)
	assert.Equal(t, Message{Object: 1, Name: "bind", Args: []any{float64(2), float64(1), float64(3)}}, ev.Message)

	ev.Conn.Send(Message{Object: 3, Name: "group", Args: []any{uint32(1)}})

	reader := bufio.NewReader(client)
	line, err := reader.ReadBytes('\n')
	require.NoError(t, err)

	var got Message
	require.NoError(t, json.Unmarshal(line, &got))
	assert.Equal(t, Message{Object: 3, Name: "group", Args: []any{float64(1)}}, got)

	require.NoError(t, client.Close())
	ev = nextEvent(t, events)
	assert.True(t, ev.Closed)
}

func TestSocketMalformedMessage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keymap.sock")
	l, err := Listen(path, zap.NewNop().Sugar())
	require.NoError(t, err)
	defer l.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := make(chan ConnEvent)
	go func() { _ = l.Serve(ctx, events) }()

	client, err := net.Dial("unix", path)
	require.NoError(t, err)
	defer client.Close()

	require.True(t, nextEvent(t, events).Connected)

	_, err = client.Write([]byte("not json\n"))
	require.NoError(t, err)

	ev := nextEvent(t, events)
	assert.True(t, ev.Closed)
	assert.Error(t, ev.Err)
}
