package feed

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/gnmyt/MCDash-sub000/internal/events"
)

const writeTimeout = 5 * time.Second

// clientFrame is the single client->server frame shape.
type clientFrame struct {
	Event string `json:"event"` // ATTACH | DETACH
	Name  string `json:"name"`
}

// Channel owns exactly one live connection. Frame writes are serialized, and
// closing the connection deterministically unregisters every listener it
// holds; a write after close is a safe no-op.
type Channel struct {
	conn       *websocket.Conn
	dispatcher *events.Dispatcher
	catalogue  *Catalogue

	writeMu sync.Mutex
	closed  bool

	mu       sync.Mutex
	attached map[string]events.Registration
}

func NewChannel(conn *websocket.Conn, d *events.Dispatcher, c *Catalogue) *Channel {
	return &Channel{
		conn:       conn,
		dispatcher: d,
		catalogue:  c,
		attached:   map[string]events.Registration{},
	}
}

// Serve runs the read loop until the client disconnects or ctx is cancelled,
// then tears everything down.
func (ch *Channel) Serve(ctx context.Context) {
	defer ch.teardown()
	for {
		var frame clientFrame
		if err := wsjson.Read(ctx, ch.conn, &frame); err != nil {
			return
		}
		switch frame.Event {
		case "ATTACH":
			ch.attach(ctx, frame.Name)
		case "DETACH":
			ch.detach(frame.Name)
		default:
			ch.send(ctx, map[string]any{"event": "ERROR", "message": "unknown frame event"})
		}
	}
}

// attach binds exactly one listener for the named feed; re-attaching replaces
// the prior binding. The backlog is flushed under the write lock with the live
// listener already registered, so backlog frames precede live ones and no
// event in between is lost.
func (ch *Channel) attach(ctx context.Context, name string) {
	f, ok := ch.catalogue.Get(name)
	if !ok {
		ch.send(ctx, map[string]any{"event": "ERROR", "message": "unknown feed: " + name})
		return
	}

	ch.writeMu.Lock()
	ch.mu.Lock()
	if prev, ok := ch.attached[name]; ok {
		ch.dispatcher.Unregister(prev)
	}
	reg := ch.dispatcher.Register(f.EventType, func(ev events.Event) {
		ch.send(context.Background(), f.Frame(ev))
	})
	ch.attached[name] = reg
	ch.mu.Unlock()

	if f.Backlog != nil {
		for _, frame := range f.Backlog() {
			ch.writeLocked(ctx, frame)
		}
	}
	ch.writeMu.Unlock()
}

// detach removes the binding; detaching an unattached name is a no-op.
func (ch *Channel) detach(name string) {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	if reg, ok := ch.attached[name]; ok {
		ch.dispatcher.Unregister(reg)
		delete(ch.attached, name)
	}
}

func (ch *Channel) teardown() {
	ch.mu.Lock()
	for name, reg := range ch.attached {
		ch.dispatcher.Unregister(reg)
		delete(ch.attached, name)
	}
	ch.mu.Unlock()

	ch.writeMu.Lock()
	ch.closed = true
	ch.writeMu.Unlock()
	_ = ch.conn.Close(websocket.StatusNormalClosure, "closed")
}

// send serializes one outbound frame. Events may arrive from any producer
// goroutine; the write mutex keeps frames whole.
func (ch *Channel) send(ctx context.Context, frame map[string]any) {
	ch.writeMu.Lock()
	defer ch.writeMu.Unlock()
	ch.writeLocked(ctx, frame)
}

func (ch *Channel) writeLocked(ctx context.Context, frame map[string]any) {
	if ch.closed {
		return
	}
	wctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	if err := wsjson.Write(wctx, ch.conn, frame); err != nil {
		slog.Debug("feed write failed", "error", err)
		ch.closed = true
	}
}

// attachedCount reports the number of active bindings, for tests.
func (ch *Channel) attachedCount() int {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	return len(ch.attached)
}
