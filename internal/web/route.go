// Package web is the request dispatch core: a declaratively registered route
// table resolved by registration order, and the pipeline that authenticates,
// authorizes, decodes and invokes the matched handler.
package web

import (
	"fmt"
	"strings"

	"github.com/gnmyt/MCDash-sub000/internal/permission"
)

// InputShape declares how a route's input is decoded. The set is closed on
// purpose: dispatch is an explicit switch, never signature inspection.
type InputShape int

const (
	// NoInput routes skip the decode stage entirely.
	NoInput InputShape = iota
	// StructuredInput routes decode query parameters (GET) or a JSON body
	// (everything else) into Ctx fields before the handler runs.
	StructuredInput
)

type HandlerFunc func(*Ctx) (*Response, error)

// Requirement gates a route on a minimum permission level for one feature.
type Requirement struct {
	Feature permission.Feature
	Level   permission.Level
}

// Route is an immutable descriptor built once at startup. Path templates use
// literal segments and :name parameters; a parameter matches exactly one
// non-empty segment.
type Route struct {
	Method   string
	Path     string
	Auth     bool // bearer session required
	Requires []Requirement
	Input    InputShape
	Handle   HandlerFunc

	segments []segment
}

type segment struct {
	literal string
	param   string // non-empty means named parameter
}

// compile splits the template. Returns an error for empty templates and empty
// parameter names; everything else is the caller's business.
func (r *Route) compile() error {
	p := strings.Trim(r.Path, "/")
	if p == "" {
		r.segments = nil
		return nil
	}
	parts := strings.Split(p, "/")
	segs := make([]segment, 0, len(parts))
	for _, part := range parts {
		if strings.HasPrefix(part, ":") {
			name := part[1:]
			if name == "" {
				return fmt.Errorf("route %s %s: empty parameter name", r.Method, r.Path)
			}
			segs = append(segs, segment{param: name})
			continue
		}
		segs = append(segs, segment{literal: part})
	}
	r.segments = segs
	return nil
}

// match checks a concrete path against the compiled template. Matching is
// exact segment count; parameter values are returned in declaration order and
// are not URL-decoded here.
func (r *Route) match(path string) (Params, bool) {
	p := strings.Trim(path, "/")
	if p == "" {
		if len(r.segments) == 0 {
			return nil, true
		}
		return nil, false
	}
	parts := strings.Split(p, "/")
	if len(parts) != len(r.segments) {
		return nil, false
	}
	var params Params
	for i, seg := range r.segments {
		if seg.param != "" {
			if parts[i] == "" {
				return nil, false
			}
			params = append(params, Param{Name: seg.param, Value: parts[i]})
			continue
		}
		if seg.literal != parts[i] {
			return nil, false
		}
	}
	return params, true
}

type Param struct {
	Name  string
	Value string
}

// Params preserves declaration order of the route's named parameters.
type Params []Param

func (p Params) Get(name string) (string, bool) {
	for _, kv := range p {
		if kv.Name == name {
			return kv.Value, true
		}
	}
	return "", false
}
