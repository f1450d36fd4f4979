package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/gnmyt/MCDash-sub000/internal/events"
	"github.com/gnmyt/MCDash-sub000/internal/permission"
	"github.com/gnmyt/MCDash-sub000/internal/platform"
	"github.com/gnmyt/MCDash-sub000/internal/web"
)

type staticAuth struct{ token string }

func (a *staticAuth) Validate(_ context.Context, token string) (uint, bool, error) {
	if token == a.token {
		return 1, true, nil
	}
	return 0, false, nil
}

func (a *staticAuth) IsAdmin(context.Context, uint) (bool, error) { return true, nil }

func (a *staticAuth) Allows(context.Context, uint, permission.Feature, permission.Level) (bool, error) {
	return true, nil
}

func newTestServer(t *testing.T) (*httptest.Server, *platform.Console, *events.Dispatcher) {
	t.Helper()
	auth := &staticAuth{token: "sekrit"}
	reg := web.NewRegistry()
	reg.MustRegister(web.Route{Method: "GET", Path: "/ping",
		Handle: func(*web.Ctx) (*web.Response, error) {
			return web.OK(map[string]any{"message": "pong"}), nil
		}})
	pipeline := &web.Pipeline{
		Prefix: "/api", Registry: reg,
		Sessions: auth, Admins: auth, Perms: auth,
	}
	dispatcher := events.NewDispatcher()
	console := platform.NewConsole(dispatcher, 16)
	srv := New(Config{Addr: ":0"}, pipeline, dispatcher, Feeds(console))
	ts := httptest.NewServer(srv.engine())
	t.Cleanup(ts.Close)
	return ts, console, dispatcher
}

func TestAPIRoutesReachPipeline(t *testing.T) {
	ts, _, _ := newTestServer(t)
	resp, err := http.Get(ts.URL + "/api/ping")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if out["error"] != false || out["message"] != "pong" {
		t.Fatalf("body = %v", out)
	}
	if rid := resp.Header.Get("X-Request-ID"); rid == "" {
		t.Fatal("missing X-Request-ID")
	}
}

func TestUnknownPathWithoutStaticIs404(t *testing.T) {
	ts, _, _ := newTestServer(t)
	resp, err := http.Get(ts.URL + "/somewhere")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status %d", resp.StatusCode)
	}
}

func TestCORSPreflight(t *testing.T) {
	ts, _, _ := newTestServer(t)
	req, _ := http.NewRequest(http.MethodOptions, ts.URL+"/api/ping", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("status %d", resp.StatusCode)
	}
	if resp.Header.Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("allow-origin = %q", resp.Header.Get("Access-Control-Allow-Origin"))
	}
}

func TestWebsocketRequiresSession(t *testing.T) {
	ts, _, _ := newTestServer(t)
	resp, err := http.Get(ts.URL + "/api/ws?token=wrong")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status %d", resp.StatusCode)
	}
}

func TestWebsocketConsoleFeed(t *testing.T) {
	ts, console, _ := newTestServer(t)
	console.Append("[INFO] starting")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/ws?token=sekrit"
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "done")

	if err := wsjson.Write(ctx, conn, map[string]any{"event": "ATTACH", "name": FeedConsole}); err != nil {
		t.Fatal(err)
	}
	var frame map[string]any
	if err := wsjson.Read(ctx, conn, &frame); err != nil {
		t.Fatal(err)
	}
	if frame["event"] != FeedConsole || frame["message"] != "[INFO] starting" {
		t.Fatalf("backlog frame = %v", frame)
	}

	console.Append("[INFO] done")
	if err := wsjson.Read(ctx, conn, &frame); err != nil {
		t.Fatal(err)
	}
	if frame["message"] != "[INFO] done" {
		t.Fatalf("live frame = %v", frame)
	}
}
