package httpserver

import (
	"github.com/gnmyt/MCDash-sub000/internal/events"
	"github.com/gnmyt/MCDash-sub000/internal/platform"
	"github.com/gnmyt/MCDash-sub000/internal/properties"
	"github.com/gnmyt/MCDash-sub000/internal/web/feed"
)

// FeedNames clients may attach over /api/ws.
const (
	FeedConsole    = "CONSOLE"
	FeedProperties = "PROPERTIES"
)

// Feeds builds the catalogue the websocket channel serves. The console feed
// carries a backlog so a client attaching mid-session still sees recent
// output; the properties feed is change-notification only.
func Feeds(console *platform.Console) *feed.Catalogue {
	return feed.NewCatalogue(
		feed.Feed{
			Name:      FeedConsole,
			EventType: platform.EventConsoleLine,
			Frame: func(ev events.Event) map[string]any {
				line, _ := ev.(platform.ConsoleLine)
				return map[string]any{"event": FeedConsole, "message": line.Line}
			},
			Backlog: func() []map[string]any {
				history := console.History()
				out := make([]map[string]any, 0, len(history))
				for _, l := range history {
					out = append(out, map[string]any{"event": FeedConsole, "message": l})
				}
				return out
			},
		},
		feed.Feed{
			Name:      FeedProperties,
			EventType: properties.EventChanged,
			Frame: func(ev events.Event) map[string]any {
				ch, _ := ev.(properties.Changed)
				return map[string]any{"event": FeedProperties, "path": ch.Path}
			},
		},
	)
}
