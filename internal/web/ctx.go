package web

import (
	"fmt"
	"net/http"
	"strconv"
)

// Ctx carries everything a handler may touch: the decoded structured input,
// extracted path parameters, and the authenticated identity. It is built per
// request and never shared.
type Ctx struct {
	Request *http.Request
	Params  Params

	// UserID is set after authentication; 0 on unauthenticated routes.
	UserID  uint
	IsAdmin bool
	// Token is the validated bearer token (logout needs it).
	Token string

	body map[string]any
}

// RequireFields fails the request with a 400 naming the first absent field.
// This is a handler-invoked contract, not a pipeline stage.
func (c *Ctx) RequireFields(names ...string) error {
	for _, n := range names {
		if v, ok := c.body[n]; !ok || v == nil || v == "" {
			return BadRequest("missing required field: " + n)
		}
	}
	return nil
}

// Field returns the raw decoded value of a structured input field.
func (c *Ctx) Field(name string) (any, bool) {
	v, ok := c.body[name]
	return v, ok
}

// String returns a field as string ("" when absent or not a string).
func (c *Ctx) String(name string) string {
	if v, ok := c.body[name]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// Int returns a field as int. JSON numbers arrive as float64, query values as
// strings; both are accepted.
func (c *Ctx) Int(name string) (int, bool) {
	switch v := c.body[name].(type) {
	case float64:
		return int(v), true
	case string:
		n, err := strconv.Atoi(v)
		return n, err == nil
	}
	return 0, false
}

func (c *Ctx) Bool(name string) bool {
	switch v := c.body[name].(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(v)
		return b
	}
	return false
}

// Param returns a path parameter value; absent parameters are a routing bug,
// so the miss is reported as an error for the handler to propagate.
func (c *Ctx) Param(name string) (string, error) {
	v, ok := c.Params.Get(name)
	if !ok {
		return "", fmt.Errorf("path parameter %q not bound", name)
	}
	return v, nil
}

// IntParam parses a numeric path parameter, failing the request with 400 on
// garbage input.
func (c *Ctx) IntParam(name string) (uint, error) {
	raw, err := c.Param(name)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, BadRequest("invalid value for " + name)
	}
	return uint(n), nil
}
