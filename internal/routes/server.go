package routes

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gnmyt/MCDash-sub000/internal/audit/chain"
	"github.com/gnmyt/MCDash-sub000/internal/jobs"
	"github.com/gnmyt/MCDash-sub000/internal/web"
)

func (d *Deps) handleConsoleCommand(c *web.Ctx) (*web.Response, error) {
	if err := c.RequireFields("command"); err != nil {
		return nil, err
	}
	command := strings.TrimSpace(c.String("command"))
	if command == "" {
		return nil, web.BadRequest("missing required field: command")
	}
	ctx := c.Request.Context()
	if err := d.Adapter.SendCommand(ctx, command); err != nil {
		return nil, err
	}
	d.audit(chain.KindCommandIssued, d.actorName(ctx, c.UserID), "",
		map[string]string{"command": command})
	return web.OK(nil), nil
}

func (d *Deps) handleConsoleHistory(c *web.Ctx) (*web.Response, error) {
	return web.OK(map[string]any{"lines": d.Console.History()}), nil
}

func (d *Deps) handlePropertiesList(c *web.Ctx) (*web.Response, error) {
	props, err := d.Props.All()
	if err != nil {
		return nil, err
	}
	return web.OK(map[string]any{"properties": props}), nil
}

func (d *Deps) handlePropertiesUpdate(c *web.Ctx) (*web.Response, error) {
	if err := c.RequireFields("key", "value"); err != nil {
		return nil, err
	}
	if err := d.Props.Set(c.String("key"), c.String("value")); err != nil {
		return nil, err
	}
	return web.OK(nil), nil
}

func (d *Deps) handleScheduleList(c *web.Ctx) (*web.Response, error) {
	list, err := d.Schedules.List(c.Request.Context())
	if err != nil {
		return nil, err
	}
	out := make([]map[string]any, 0, len(list))
	for _, s := range list {
		entry := map[string]any{
			"id":       s.ID,
			"name":     s.Name,
			"action":   s.Action,
			"payload":  s.Payload,
			"interval": s.IntervalSeconds,
			"enabled":  s.Enabled,
		}
		if s.LastRunAt != nil {
			entry["last_run_at"] = *s.LastRunAt
		}
		out = append(out, entry)
	}
	return web.OK(map[string]any{"schedules": out}), nil
}

func (d *Deps) handleScheduleCreate(c *web.Ctx) (*web.Response, error) {
	if err := c.RequireFields("name", "action", "interval"); err != nil {
		return nil, err
	}
	action := c.String("action")
	if !jobs.ValidAction(action) {
		return nil, web.BadRequest("unknown action: " + action)
	}
	interval, ok := c.Int("interval")
	if !ok || interval < 1 {
		return nil, web.BadRequest("interval must be a positive number of seconds")
	}
	rec := jobs.ScheduleRecord{
		Name:            c.String("name"),
		Action:          action,
		Payload:         c.String("payload"),
		IntervalSeconds: int64(interval),
		Enabled:         true,
	}
	if err := d.Schedules.Create(c.Request.Context(), &rec); err != nil {
		return nil, err
	}
	return web.OK(map[string]any{"id": rec.ID}), nil
}

func (d *Deps) handleScheduleDelete(c *web.Ctx) (*web.Response, error) {
	id, err := c.IntParam("id")
	if err != nil {
		return nil, err
	}
	if err := d.Schedules.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, jobs.ErrNotFound) {
			return nil, web.NotFound("schedule not found: " + strconv.Itoa(int(id)))
		}
		return nil, err
	}
	return web.OK(nil), nil
}
