package platform

import (
	"context"
	"strings"
	"testing"

	"github.com/gnmyt/MCDash-sub000/internal/events"
)

func TestConsoleRingKeepsLastN(t *testing.T) {
	c := NewConsole(events.NewDispatcher(), 3)
	for _, l := range []string{"a", "b", "c", "d", "e"} {
		c.Append(l)
	}
	got := c.History()
	want := []string{"c", "d", "e"}
	if len(got) != len(want) {
		t.Fatalf("history = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("history = %v, want %v", got, want)
		}
	}
}

func TestConsoleDispatchesLines(t *testing.T) {
	d := events.NewDispatcher()
	c := NewConsole(d, 10)
	var seen []string
	d.Register(EventConsoleLine, func(ev events.Event) {
		seen = append(seen, ev.(ConsoleLine).Line)
	})
	c.Append("hello")
	c.Pump(strings.NewReader("one\ntwo\n"))
	if len(seen) != 3 || seen[2] != "two" {
		t.Fatalf("seen = %v", seen)
	}
}

func TestLocalAdapterSendCommand(t *testing.T) {
	d := events.NewDispatcher()
	c := NewConsole(d, 10)
	a := NewLocalAdapter(t.TempDir(), c)

	if err := a.SendCommand(context.Background(), "list"); err == nil {
		t.Fatal("command without a running server should fail")
	}

	var sb strings.Builder
	a.SetStdin(&sb)
	if err := a.SendCommand(context.Background(), "list"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if sb.String() != "list\n" {
		t.Fatalf("stdin got %q", sb.String())
	}
	hist := c.History()
	if len(hist) != 1 || hist[0] != "> list" {
		t.Fatalf("history = %v", hist)
	}
}
