package routes

import (
	"errors"
	"strconv"

	"github.com/gnmyt/MCDash-sub000/internal/accounts"
	"github.com/gnmyt/MCDash-sub000/internal/audit/chain"
	"github.com/gnmyt/MCDash-sub000/internal/web"
)

func (d *Deps) handleAccountList(c *web.Ctx) (*web.Response, error) {
	ctx := c.Request.Context()
	list, err := d.Accounts.List(ctx)
	if err != nil {
		return nil, err
	}
	adminID, _, err := d.Accounts.AdminID(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]map[string]any, 0, len(list))
	for _, a := range list {
		out = append(out, map[string]any{
			"id":         a.ID,
			"username":   a.Username,
			"admin":      a.ID == adminID,
			"created_at": a.CreatedAt,
		})
	}
	return web.OK(map[string]any{"accounts": out}), nil
}

func (d *Deps) handleAccountCreate(c *web.Ctx) (*web.Response, error) {
	if err := c.RequireFields("username", "password"); err != nil {
		return nil, err
	}
	ctx := c.Request.Context()
	acct, err := d.Accounts.Create(ctx, c.String("username"), c.String("password"))
	if errors.Is(err, accounts.ErrUsernameTaken) {
		return nil, web.Conflict("username already taken")
	}
	if err != nil {
		return nil, err
	}
	d.audit(chain.KindAccountCreated, d.actorName(ctx, c.UserID), acct.Username, nil)
	return web.OK(map[string]any{"id": acct.ID}), nil
}

// handleAccountDelete removes an account and all of its sessions. The caller
// cannot delete itself; the admin property migrates to the next lowest id.
func (d *Deps) handleAccountDelete(c *web.Ctx) (*web.Response, error) {
	userID, ok := c.Int("userId")
	if !ok {
		return nil, web.BadRequest("missing required field: userId")
	}
	if uint(userID) == c.UserID {
		return nil, web.BadRequest("cannot delete the account you are logged in as")
	}
	ctx := c.Request.Context()
	target, err := d.Accounts.ByID(ctx, uint(userID))
	if errors.Is(err, accounts.ErrNotFound) {
		return nil, web.NotFound("account not found")
	}
	if err != nil {
		return nil, err
	}
	if err := d.Accounts.Delete(ctx, uint(userID)); err != nil {
		return nil, err
	}
	if err := d.Sessions.DestroyAll(ctx, uint(userID)); err != nil {
		return nil, err
	}
	if err := d.Perms.DeleteAll(ctx, uint(userID)); err != nil {
		return nil, err
	}
	d.audit(chain.KindAccountDeleted, d.actorName(ctx, c.UserID), target.Username, nil)
	return web.OK(nil), nil
}

// handlePasswordChange updates the caller's own password after re-verifying
// the current one.
func (d *Deps) handlePasswordChange(c *web.Ctx) (*web.Response, error) {
	if err := c.RequireFields("current", "password"); err != nil {
		return nil, err
	}
	ctx := c.Request.Context()
	acct, err := d.Accounts.ByID(ctx, c.UserID)
	if err != nil {
		return nil, err
	}
	_, ok, err := d.Accounts.Authenticate(ctx, acct.Username, c.String("current"))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, web.Unauthorized("current password does not match")
	}
	if err := d.Accounts.SetPassword(ctx, c.UserID, c.String("password")); err != nil {
		return nil, err
	}
	d.audit(chain.KindPasswordChanged, acct.Username, strconv.Itoa(int(c.UserID)), nil)
	return web.OK(nil), nil
}
