// Package platform defines the narrow surface a host platform supplies to the
// dashboard core, and a local adapter for the standalone host. Adapters feed
// the event dispatcher; the core never calls game internals directly.
package platform

import "context"

type Status struct {
	Online      bool   `json:"online"`
	Version     string `json:"version"`
	PlayerCount int    `json:"player_count"`
	MaxPlayers  int    `json:"max_players"`
}

type Player struct {
	Name string `json:"name"`
	UUID string `json:"uuid,omitempty"`
}

// Adapter is implemented per host environment (standalone process, embedded
// in the server, embedded in a proxy).
type Adapter interface {
	// ServerRoot is the working directory of the managed server.
	ServerRoot() string
	Status(ctx context.Context) (Status, error)
	Players(ctx context.Context) ([]Player, error)
	// SendCommand submits one line to the server console.
	SendCommand(ctx context.Context, command string) error
}
