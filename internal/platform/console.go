package platform

import (
	"bufio"
	"io"
	"sync"

	"github.com/gnmyt/MCDash-sub000/internal/events"
)

const EventConsoleLine = "console.line"

// ConsoleLine is dispatched for every line the server prints.
type ConsoleLine struct {
	Line string
}

func (ConsoleLine) EventType() string { return EventConsoleLine }

// Console keeps a bounded ring of recent output so a freshly attached feed
// can be given a backlog, and dispatches each appended line as an event.
type Console struct {
	dispatcher *events.Dispatcher

	mu    sync.Mutex
	ring  []string
	next  int
	count int
}

func NewConsole(d *events.Dispatcher, capacity int) *Console {
	if capacity <= 0 {
		capacity = 200
	}
	return &Console{dispatcher: d, ring: make([]string, capacity)}
}

func (c *Console) Append(line string) {
	c.mu.Lock()
	c.ring[c.next] = line
	c.next = (c.next + 1) % len(c.ring)
	if c.count < len(c.ring) {
		c.count++
	}
	c.mu.Unlock()
	c.dispatcher.Dispatch(ConsoleLine{Line: line})
}

// History returns the retained lines, oldest first.
func (c *Console) History() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, c.count)
	start := c.next - c.count
	if start < 0 {
		start += len(c.ring)
	}
	for i := 0; i < c.count; i++ {
		out = append(out, c.ring[(start+i)%len(c.ring)])
	}
	return out
}

// Pump reads lines from r (typically the server process stdout) into the
// console until EOF. Run it on its own goroutine.
func (c *Console) Pump(r io.Reader) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 256*1024)
	for sc.Scan() {
		c.Append(sc.Text())
	}
}
