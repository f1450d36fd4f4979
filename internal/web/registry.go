package web

import "strings"

// Registry holds the registered route table. All registration happens during
// startup; Resolve is read-only thereafter, so no locking is needed.
type Registry struct {
	routes []*Route
}

func NewRegistry() *Registry { return &Registry{} }

// Register compiles and appends a route. Resolution scans in registration
// order, so more specific literal routes must be registered before parameter
// routes that could also match. Registering the same method+template twice
// replaces the earlier entry: last registration silently wins. Known footgun.
func (reg *Registry) Register(r Route) error {
	r.Method = strings.ToUpper(r.Method)
	if err := r.compile(); err != nil {
		return err
	}
	for i, existing := range reg.routes {
		if existing.Method == r.Method && existing.Path == r.Path {
			reg.routes[i] = &r
			return nil
		}
	}
	reg.routes = append(reg.routes, &r)
	return nil
}

// MustRegister is Register for static tables built in code, where a bad
// template is a programming error.
func (reg *Registry) MustRegister(r Route) {
	if err := reg.Register(r); err != nil {
		panic(err)
	}
}

// Resolve returns the first registered route whose method matches and whose
// template matches the path, plus the extracted parameters.
func (reg *Registry) Resolve(method, path string) (*Route, Params, bool) {
	method = strings.ToUpper(method)
	for _, r := range reg.routes {
		if r.Method != method {
			continue
		}
		if params, ok := r.match(path); ok {
			return r, params, true
		}
	}
	return nil, nil, false
}

// Routes returns the table in registration order (for startup logging).
func (reg *Registry) Routes() []*Route { return reg.routes }
