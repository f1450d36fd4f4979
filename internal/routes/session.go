package routes

import (
	"strconv"

	"github.com/gnmyt/MCDash-sub000/internal/audit/chain"
	"github.com/gnmyt/MCDash-sub000/internal/web"
)

func (d *Deps) handlePing(c *web.Ctx) (*web.Response, error) {
	return web.OK(map[string]any{"message": "pong"}), nil
}

// handleLogin exchanges credentials for a fresh session token. Bad username
// and bad password are the same answer on purpose.
func (d *Deps) handleLogin(c *web.Ctx) (*web.Response, error) {
	if err := c.RequireFields("username", "password"); err != nil {
		return nil, err
	}
	ctx := c.Request.Context()
	username := c.String("username")
	acct, ok, err := d.Accounts.Authenticate(ctx, username, c.String("password"))
	if err != nil {
		return nil, err
	}
	if !ok {
		d.audit(chain.KindLoginFailed, username, "", nil)
		return nil, web.Unauthenticated("invalid credentials")
	}
	token, err := d.Sessions.Create(ctx, acct.ID, c.Request.UserAgent())
	if err != nil {
		return nil, err
	}
	d.audit(chain.KindLogin, acct.Username, "", nil)
	return web.OK(map[string]any{"session": token}), nil
}

func (d *Deps) handleLogout(c *web.Ctx) (*web.Response, error) {
	ctx := c.Request.Context()
	if err := d.Sessions.Destroy(ctx, c.Token); err != nil {
		return nil, err
	}
	d.audit(chain.KindLogout, d.actorName(ctx, c.UserID), "", nil)
	return web.OK(nil), nil
}

// handleSessionList reports the active sessions of one user. Tokens are never
// echoed back; only metadata leaves the store.
func (d *Deps) handleSessionList(c *web.Ctx) (*web.Response, error) {
	userID, ok := c.Int("userId")
	if !ok {
		return nil, web.BadRequest("missing required field: userId")
	}
	sessions, err := d.Sessions.ListByUser(c.Request.Context(), uint(userID))
	if err != nil {
		return nil, err
	}
	list := make([]map[string]any, 0, len(sessions))
	for _, s := range sessions {
		list = append(list, map[string]any{
			"client":       s.Client,
			"created_at":   s.CreatedAt,
			"last_used_at": s.LastUsedAt,
		})
	}
	return web.OK(map[string]any{"sessions": list}), nil
}

func (d *Deps) handleSessionRevoke(c *web.Ctx) (*web.Response, error) {
	userID, ok := c.Int("userId")
	if !ok {
		return nil, web.BadRequest("missing required field: userId")
	}
	ctx := c.Request.Context()
	if err := d.Sessions.DestroyAll(ctx, uint(userID)); err != nil {
		return nil, err
	}
	d.audit(chain.KindSessionsRevoked, d.actorName(ctx, c.UserID),
		strconv.Itoa(userID), nil)
	return web.OK(nil), nil
}
