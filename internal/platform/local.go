package platform

import (
	"context"
	"errors"
	"io"
	"sync"
)

// LocalAdapter serves the standalone host: it owns the console buffer and a
// writer into the managed process's stdin. Status and player data come from
// whoever constructed it (the process supervisor), pushed via setters.
type LocalAdapter struct {
	root    string
	console *Console

	mu      sync.RWMutex
	stdin   io.Writer
	status  Status
	players []Player
}

func NewLocalAdapter(root string, console *Console) *LocalAdapter {
	return &LocalAdapter{root: root, console: console}
}

func (a *LocalAdapter) ServerRoot() string { return a.root }

func (a *LocalAdapter) Console() *Console { return a.console }

// SetStdin wires the running server process's stdin; nil detaches it (server
// stopped).
func (a *LocalAdapter) SetStdin(w io.Writer) {
	a.mu.Lock()
	a.stdin = w
	a.mu.Unlock()
}

func (a *LocalAdapter) SetStatus(s Status) {
	a.mu.Lock()
	a.status = s
	a.mu.Unlock()
}

func (a *LocalAdapter) SetPlayers(p []Player) {
	a.mu.Lock()
	a.players = p
	a.mu.Unlock()
}

func (a *LocalAdapter) Status(context.Context) (Status, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.status, nil
}

func (a *LocalAdapter) Players(context.Context) ([]Player, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]Player, len(a.players))
	copy(out, a.players)
	return out, nil
}

func (a *LocalAdapter) SendCommand(_ context.Context, command string) error {
	a.mu.RLock()
	w := a.stdin
	a.mu.RUnlock()
	if w == nil {
		return errors.New("server is not running")
	}
	// Echo into the console so the command shows up in history and feeds,
	// the way the server's own log would show it.
	a.console.Append("> " + command)
	_, err := io.WriteString(w, command+"\n")
	return err
}
