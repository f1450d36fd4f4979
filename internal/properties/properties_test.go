package properties

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gnmyt/MCDash-sub000/internal/events"
)

func writeTemp(t *testing.T, content string) *File {
	t.Helper()
	path := filepath.Join(t.TempDir(), "server.properties")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return NewFile(path)
}

func TestAllSkipsCommentsAndGarbage(t *testing.T) {
	f := writeTemp(t, "# comment\nmotd=A Minecraft Server\n\nmax-players=20\n!legacy\nnot a pair\n")
	props, err := f.All()
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if len(props) != 2 || props["motd"] != "A Minecraft Server" || props["max-players"] != "20" {
		t.Fatalf("props = %v", props)
	}
}

func TestMissingFileParsesEmpty(t *testing.T) {
	f := NewFile(filepath.Join(t.TempDir(), "server.properties"))
	props, err := f.All()
	if err != nil || len(props) != 0 {
		t.Fatalf("props = %v, err = %v", props, err)
	}
	if err := f.Set("motd", "first"); err != nil {
		t.Fatalf("set on missing file: %v", err)
	}
	props, _ = f.All()
	if props["motd"] != "first" {
		t.Fatalf("props = %v", props)
	}
}

func TestSetUpdatesAndAppends(t *testing.T) {
	f := writeTemp(t, "motd=old\n")
	if err := f.Set("motd", "new"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := f.Set("pvp", "true"); err != nil {
		t.Fatalf("set new key: %v", err)
	}
	props, _ := f.All()
	if props["motd"] != "new" || props["pvp"] != "true" {
		t.Fatalf("props = %v", props)
	}
}

func TestWatchDispatchesOnRewrite(t *testing.T) {
	f := writeTemp(t, "motd=a\n")
	d := events.NewDispatcher()

	got := make(chan events.Event, 1)
	d.Register(EventChanged, func(ev events.Event) {
		select {
		case got <- ev:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = Watch(ctx, f, d)
	}()

	// Give the watcher a moment to arm before rewriting.
	time.Sleep(100 * time.Millisecond)
	if err := f.Set("motd", "b"); err != nil {
		t.Fatalf("set: %v", err)
	}

	select {
	case ev := <-got:
		if ev.(Changed).Path != f.Path() {
			t.Fatalf("event path = %v", ev)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no change event dispatched")
	}
	cancel()
	<-done
}
