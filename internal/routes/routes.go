// Package routes declares the dashboard's static route table and the handlers
// behind it. The table is built in code at startup; route visibility is a
// compile-time property, there is no scanning or reflection.
package routes

import (
	"context"

	"github.com/gnmyt/MCDash-sub000/internal/accounts"
	"github.com/gnmyt/MCDash-sub000/internal/audit/chain"
	"github.com/gnmyt/MCDash-sub000/internal/jobs"
	"github.com/gnmyt/MCDash-sub000/internal/permission"
	"github.com/gnmyt/MCDash-sub000/internal/platform"
	"github.com/gnmyt/MCDash-sub000/internal/properties"
	"github.com/gnmyt/MCDash-sub000/internal/session"
	"github.com/gnmyt/MCDash-sub000/internal/web"
)

// Deps collects everything handlers reach for. Audit is optional; the rest
// are required.
type Deps struct {
	Accounts  *accounts.Store
	Sessions  *session.Store
	Perms     *permission.Store
	Schedules *jobs.Store
	Adapter   platform.Adapter
	Console   *platform.Console
	Props     *properties.File
	Audit     *chain.Writer
}

// Register fills the registry. Order matters: literal routes precede
// parameter routes that could shadow them.
func Register(reg *web.Registry, d *Deps) {
	settingsRead := []web.Requirement{{Feature: permission.FeatureSettings, Level: permission.LevelRead}}
	settingsFull := []web.Requirement{{Feature: permission.FeatureSettings, Level: permission.LevelFull}}

	reg.MustRegister(web.Route{Method: "GET", Path: "/ping", Handle: d.handlePing})

	reg.MustRegister(web.Route{Method: "POST", Path: "/session/create",
		Input: web.StructuredInput, Handle: d.handleLogin})
	reg.MustRegister(web.Route{Method: "POST", Path: "/session/destroy",
		Auth: true, Handle: d.handleLogout})
	reg.MustRegister(web.Route{Method: "GET", Path: "/session/list",
		Auth: true, Requires: settingsRead, Input: web.StructuredInput, Handle: d.handleSessionList})
	reg.MustRegister(web.Route{Method: "POST", Path: "/session/revoke",
		Auth: true, Requires: settingsFull, Input: web.StructuredInput, Handle: d.handleSessionRevoke})

	reg.MustRegister(web.Route{Method: "GET", Path: "/accounts/list",
		Auth: true, Requires: settingsRead, Handle: d.handleAccountList})
	reg.MustRegister(web.Route{Method: "PUT", Path: "/accounts/create",
		Auth: true, Requires: settingsFull, Input: web.StructuredInput, Handle: d.handleAccountCreate})
	reg.MustRegister(web.Route{Method: "DELETE", Path: "/accounts/delete",
		Auth: true, Requires: settingsFull, Input: web.StructuredInput, Handle: d.handleAccountDelete})
	reg.MustRegister(web.Route{Method: "PATCH", Path: "/accounts/password",
		Auth: true, Input: web.StructuredInput, Handle: d.handlePasswordChange})

	reg.MustRegister(web.Route{Method: "GET", Path: "/permissions/:userId",
		Auth: true, Requires: settingsRead, Handle: d.handlePermissionGet})
	reg.MustRegister(web.Route{Method: "PATCH", Path: "/permissions/:userId",
		Auth: true, Requires: settingsFull, Input: web.StructuredInput, Handle: d.handlePermissionSet})

	reg.MustRegister(web.Route{Method: "POST", Path: "/console/command",
		Auth: true, Requires: consoleFull, Input: web.StructuredInput, Handle: d.handleConsoleCommand})
	reg.MustRegister(web.Route{Method: "GET", Path: "/console/history",
		Auth: true, Requires: consoleRead, Handle: d.handleConsoleHistory})

	reg.MustRegister(web.Route{Method: "GET", Path: "/properties/list",
		Auth: true, Requires: settingsRead, Handle: d.handlePropertiesList})
	reg.MustRegister(web.Route{Method: "PATCH", Path: "/properties/update",
		Auth: true, Requires: settingsFull, Input: web.StructuredInput, Handle: d.handlePropertiesUpdate})

	reg.MustRegister(web.Route{Method: "GET", Path: "/schedules/list",
		Auth: true, Requires: schedRead, Handle: d.handleScheduleList})
	reg.MustRegister(web.Route{Method: "PUT", Path: "/schedules/create",
		Auth: true, Requires: schedFull, Input: web.StructuredInput, Handle: d.handleScheduleCreate})
	reg.MustRegister(web.Route{Method: "DELETE", Path: "/schedules/delete/:id",
		Auth: true, Requires: schedFull, Handle: d.handleScheduleDelete})
}

var (
	consoleRead = []web.Requirement{{Feature: permission.FeatureConsole, Level: permission.LevelRead}}
	consoleFull = []web.Requirement{{Feature: permission.FeatureConsole, Level: permission.LevelFull}}
	schedRead   = []web.Requirement{{Feature: permission.FeatureSchedules, Level: permission.LevelRead}}
	schedFull   = []web.Requirement{{Feature: permission.FeatureSchedules, Level: permission.LevelFull}}
)

// audit logs best-effort; a broken audit file must not fail requests.
func (d *Deps) audit(kind, actor, target string, meta map[string]string) {
	if d.Audit == nil {
		return
	}
	_ = d.Audit.Log(kind, actor, target, meta)
}

// actorName resolves the acting user's name for audit entries.
func (d *Deps) actorName(ctx context.Context, userID uint) string {
	a, err := d.Accounts.ByID(ctx, userID)
	if err != nil {
		return "unknown"
	}
	return a.Username
}
