package routes

import (
	"errors"
	"strconv"

	"github.com/gnmyt/MCDash-sub000/internal/accounts"
	"github.com/gnmyt/MCDash-sub000/internal/audit/chain"
	"github.com/gnmyt/MCDash-sub000/internal/permission"
	"github.com/gnmyt/MCDash-sub000/internal/web"
)

// handlePermissionGet reports a user's level per feature plus the encoded
// form clients persist.
func (d *Deps) handlePermissionGet(c *web.Ctx) (*web.Response, error) {
	userID, err := c.IntParam("userId")
	if err != nil {
		return nil, err
	}
	ctx := c.Request.Context()
	if _, err := d.Accounts.ByID(ctx, userID); err != nil {
		if errors.Is(err, accounts.ErrNotFound) {
			return nil, web.NotFound("account not found")
		}
		return nil, err
	}
	admin, err := d.Accounts.IsAdmin(ctx, userID)
	if err != nil {
		return nil, err
	}
	set, err := d.Perms.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	levels := map[string]any{}
	for _, f := range permission.Features {
		l := set.Get(f)
		if admin {
			l = permission.LevelFull
		}
		levels[f.String()] = l.String()
	}
	accessible := []string{}
	if admin {
		for _, f := range permission.Features {
			accessible = append(accessible, f.String())
		}
	} else {
		for _, f := range set.Accessible(permission.Features[:]) {
			accessible = append(accessible, f.String())
		}
	}
	return web.OK(map[string]any{
		"admin":       admin,
		"permissions": levels,
		"accessible":  accessible,
		"encoded":     set.Encode(),
	}), nil
}

// handlePermissionSet upserts one feature grant. The admin account's access
// is derived, not stored, so editing it is rejected.
func (d *Deps) handlePermissionSet(c *web.Ctx) (*web.Response, error) {
	userID, err := c.IntParam("userId")
	if err != nil {
		return nil, err
	}
	if err := c.RequireFields("feature", "level"); err != nil {
		return nil, err
	}
	feature, ok := permission.ParseFeature(c.String("feature"))
	if !ok {
		return nil, web.BadRequest("unknown feature: " + c.String("feature"))
	}
	level, ok := permission.ParseLevel(c.String("level"))
	if !ok {
		return nil, web.BadRequest("unknown level: " + c.String("level"))
	}
	ctx := c.Request.Context()
	if _, err := d.Accounts.ByID(ctx, userID); err != nil {
		if errors.Is(err, accounts.ErrNotFound) {
			return nil, web.NotFound("account not found")
		}
		return nil, err
	}
	admin, err := d.Accounts.IsAdmin(ctx, userID)
	if err != nil {
		return nil, err
	}
	if admin {
		return nil, web.BadRequest("the admin account always has full access")
	}
	if err := d.Perms.SetLevel(ctx, userID, feature, level); err != nil {
		return nil, err
	}
	d.audit(chain.KindPermissionChanged, d.actorName(ctx, c.UserID),
		strconv.Itoa(int(userID)), map[string]string{
			"feature": feature.String(),
			"level":   level.String(),
		})
	return web.OK(nil), nil
}
