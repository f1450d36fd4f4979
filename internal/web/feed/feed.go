// Package feed layers named live feeds over the event dispatcher: a client on
// a long-lived connection attaches and detaches feeds by name and receives one
// JSON object per frame.
package feed

import "github.com/gnmyt/MCDash-sub000/internal/events"

// Feed binds a feed name to the event type it relays. Backlog, when set,
// returns a bounded snapshot of recent frames flushed on attach so the client
// sees no gap before live delivery starts.
type Feed struct {
	Name      string
	EventType string
	Frame     func(events.Event) map[string]any
	Backlog   func() []map[string]any
}

// Catalogue is the set of feeds a server exposes. Populated at construction
// time, read-only afterwards.
type Catalogue struct {
	feeds map[string]Feed
}

func NewCatalogue(feeds ...Feed) *Catalogue {
	m := make(map[string]Feed, len(feeds))
	for _, f := range feeds {
		m[f.Name] = f
	}
	return &Catalogue{feeds: m}
}

func (c *Catalogue) Get(name string) (Feed, bool) {
	f, ok := c.feeds[name]
	return f, ok
}
