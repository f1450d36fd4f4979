package web

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/gnmyt/MCDash-sub000/internal/permission"
)

// SessionValidator resolves a bearer token to its owning user.
type SessionValidator interface {
	Validate(ctx context.Context, token string) (uint, bool, error)
}

// AdminSource answers whether a user is the designated admin.
type AdminSource interface {
	IsAdmin(ctx context.Context, userID uint) (bool, error)
}

// PermissionSource answers per-feature level checks for non-admin users.
type PermissionSource interface {
	Allows(ctx context.Context, userID uint, f permission.Feature, min permission.Level) (bool, error)
}

// Pipeline turns an inbound request into an authenticated, authorized,
// decoded handler call. It holds no per-request state; everything mutable
// lives on the Ctx it builds.
type Pipeline struct {
	Prefix   string // API prefix, e.g. "/api"
	Registry *Registry
	Sessions SessionValidator
	Admins   AdminSource
	Perms    PermissionSource
}

func (p *Pipeline) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	if path != p.Prefix && !strings.HasPrefix(path, p.Prefix+"/") {
		writeFailure(w, http.StatusNotFound, "not found")
		return
	}
	route, params, ok := p.Registry.Resolve(r.Method, strings.TrimPrefix(path, p.Prefix))
	if !ok {
		writeFailure(w, http.StatusNotFound, "not found")
		return
	}

	c := &Ctx{Request: r, Params: params}

	if route.Auth {
		if !p.authenticate(w, r, c) {
			return
		}
		if !p.authorize(w, r, c, route) {
			return
		}
	}

	if route.Input == StructuredInput {
		if err := decodeInput(r, c); err != nil {
			writeFailure(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	resp, err := invoke(route, c)
	if err != nil {
		var apiErr *Error
		if errors.As(err, &apiErr) {
			writeFailure(w, apiErr.Kind.status(), apiErr.Message)
			return
		}
		slog.Error("handler failed", "method", route.Method, "path", route.Path, "error", err)
		writeFailure(w, http.StatusInternalServerError, err.Error())
		return
	}
	if resp == nil {
		slog.Error("handler returned no response", "method", route.Method, "path", route.Path)
		writeFailure(w, http.StatusInternalServerError, "empty handler response")
		return
	}
	resp.write(w)
}

func (p *Pipeline) authenticate(w http.ResponseWriter, r *http.Request, c *Ctx) bool {
	token, ok := bearerToken(r)
	if !ok {
		writeFailure(w, http.StatusUnauthorized, "not authenticated")
		return false
	}
	userID, live, err := p.Sessions.Validate(r.Context(), token)
	if err != nil {
		slog.Error("session lookup failed", "error", err)
		writeFailure(w, http.StatusInternalServerError, "server error")
		return false
	}
	if !live {
		writeFailure(w, http.StatusUnauthorized, "not authenticated")
		return false
	}
	c.UserID = userID
	c.Token = token
	admin, err := p.Admins.IsAdmin(r.Context(), userID)
	if err != nil {
		slog.Error("admin lookup failed", "error", err)
		writeFailure(w, http.StatusInternalServerError, "server error")
		return false
	}
	c.IsAdmin = admin
	return true
}

func (p *Pipeline) authorize(w http.ResponseWriter, r *http.Request, c *Ctx, route *Route) bool {
	if len(route.Requires) == 0 || c.IsAdmin {
		return true
	}
	for _, req := range route.Requires {
		ok, err := p.Perms.Allows(r.Context(), c.UserID, req.Feature, req.Level)
		if err != nil {
			slog.Error("permission lookup failed", "error", err)
			writeFailure(w, http.StatusInternalServerError, "server error")
			return false
		}
		if !ok {
			writeFailure(w, http.StatusForbidden, "insufficient permissions")
			return false
		}
	}
	return true
}

// decodeInput fills Ctx.body. GET reads query parameters, everything else a
// JSON object body. An empty body decodes as the empty object so that
// RequireFields produces the field-naming message rather than "malformed".
func decodeInput(r *http.Request, c *Ctx) error {
	if r.Method == http.MethodGet {
		body := make(map[string]any)
		for k, vs := range r.URL.Query() {
			if len(vs) > 0 {
				body[k] = vs[0]
			}
		}
		c.body = body
		return nil
	}
	body := make(map[string]any)
	if err := jsonAPI.NewDecoder(r.Body).Decode(&body); err != nil {
		if errors.Is(err, io.EOF) {
			c.body = map[string]any{} // no body at all; RequireFields names what's missing
			return nil
		}
		return BadRequest("malformed request body")
	}
	c.body = body
	return nil
}

// invoke runs the handler through the closed dispatch switch, converting a
// panic into an error so one broken handler cannot take the worker down.
func invoke(route *Route, c *Ctx) (resp *Response, err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("handler panic", "method", route.Method, "path", route.Path,
				"panic", r, "stack", string(debug.Stack()))
			err = fmt.Errorf("%v", r)
		}
	}()
	switch route.Input {
	case NoInput, StructuredInput:
		return route.Handle(c)
	default:
		return nil, fmt.Errorf("unknown input shape %d", route.Input)
	}
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(h[len(prefix):]), true
}
