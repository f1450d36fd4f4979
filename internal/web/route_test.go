package web

import "testing"

func TestMatchExtractsParamsInOrder(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister(Route{Method: "GET", Path: "/resource/:id/tasks/:taskId",
		Handle: func(*Ctx) (*Response, error) { return OK(nil), nil }})

	route, params, ok := reg.Resolve("GET", "/resource/42/tasks/cleanup")
	if !ok {
		t.Fatal("expected match")
	}
	if route.Path != "/resource/:id/tasks/:taskId" {
		t.Fatalf("resolved wrong route: %s", route.Path)
	}
	if len(params) != 2 || params[0] != (Param{"id", "42"}) || params[1] != (Param{"taskId", "cleanup"}) {
		t.Fatalf("params = %v", params)
	}
}

func TestMatchIsExactSegmentCount(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister(Route{Method: "GET", Path: "/files/:name",
		Handle: func(*Ctx) (*Response, error) { return OK(nil), nil }})

	for _, path := range []string{"/files", "/files/a/b", "/", "/files//"} {
		if _, _, ok := reg.Resolve("GET", path); ok {
			t.Fatalf("path %q should not match /files/:name", path)
		}
	}
}

func TestMethodDispatch(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister(Route{Method: "GET", Path: "/thing", Handle: stub})
	if _, _, ok := reg.Resolve("DELETE", "/thing"); ok {
		t.Fatal("method mismatch must not resolve")
	}
	if _, _, ok := reg.Resolve("get", "/thing"); !ok {
		t.Fatal("method matching should be case-insensitive")
	}
}

func TestRegistrationOrderIsPriority(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister(Route{Method: "GET", Path: "/users/me", Handle: stub})
	reg.MustRegister(Route{Method: "GET", Path: "/users/:id", Handle: stub})

	route, _, ok := reg.Resolve("GET", "/users/me")
	if !ok || route.Path != "/users/me" {
		t.Fatalf("literal route should win by registration order, got %v", route)
	}
	route, params, ok := reg.Resolve("GET", "/users/7")
	if !ok || route.Path != "/users/:id" {
		t.Fatal("parameter route should catch the rest")
	}
	if v, _ := params.Get("id"); v != "7" {
		t.Fatalf("id = %q", v)
	}
}

func TestDuplicateRegistrationLastWins(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister(Route{Method: "GET", Path: "/x", Handle: func(*Ctx) (*Response, error) {
		return OK(map[string]any{"v": 1}), nil
	}})
	reg.MustRegister(Route{Method: "GET", Path: "/x", Handle: func(*Ctx) (*Response, error) {
		return OK(map[string]any{"v": 2}), nil
	}})

	route, _, _ := reg.Resolve("GET", "/x")
	resp, _ := route.Handle(&Ctx{})
	if resp.Fields["v"] != 2 {
		t.Fatalf("last registration should win, got %v", resp.Fields["v"])
	}
	if len(reg.Routes()) != 1 {
		t.Fatalf("duplicate should replace, table has %d entries", len(reg.Routes()))
	}
}

func TestEmptyParamNameRejected(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Register(Route{Method: "GET", Path: "/a/:/b", Handle: stub}); err == nil {
		t.Fatal("empty parameter name should be rejected")
	}
}

func stub(*Ctx) (*Response, error) { return OK(nil), nil }
