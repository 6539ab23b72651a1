package routes

import (
	"encoding/json"
	"fmt"
	"time"

	"rental-scheduling-server/utils"

	"github.com/kataras/iris/v12"
)

// StreamInvalidations pushes availability-changed events for a property as
// server-sent events. Clients also receive a periodic fallback tick, so a
// missed broadcast only delays a refresh instead of losing it.
func StreamInvalidations(ctx iris.Context) {
	propertyID, ok := paramPropertyID(ctx)
	if !ok {
		return
	}

	events, err := syncSvc.Subscribe(ctx.Request().Context(), propertyID)
	if err != nil {
		utils.CreateError(iris.StatusInternalServerError, "Error", err.Error(), ctx)
		return
	}

	ctx.ContentType("text/event-stream")
	ctx.Header("Cache-Control", "no-cache")
	ctx.Header("Connection", "keep-alive")

	w := ctx.ResponseWriter()
	for ev := range events {
		payload, err := json.Marshal(ev)
		if err != nil {
			continue
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
			return
		}
		w.Flush()
	}
}

// CheckStale answers the "view became active again" trigger: has this
// property's availability changed since the given instant?
func CheckStale(ctx iris.Context) {
	propertyID, ok := paramPropertyID(ctx)
	if !ok {
		return
	}

	since := time.Time{}
	if raw := ctx.URLParam("since"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			utils.CreateError(iris.StatusBadRequest, "Bad Request", "since must be RFC3339", ctx)
			return
		}
		since = parsed
	}

	stale, err := syncSvc.StaleSince(ctx.Request().Context(), propertyID, since)
	if err != nil {
		utils.CreateError(iris.StatusInternalServerError, "Error", err.Error(), ctx)
		return
	}
	ctx.JSON(iris.Map{"stale": stale})
}
