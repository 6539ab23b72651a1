package routes

import (
	"context"
	"errors"

	"rental-scheduling-server/models"
	"rental-scheduling-server/services"
	"rental-scheduling-server/storage"
	"rental-scheduling-server/utils"

	"github.com/kataras/iris/v12"
)

// BlockStore is the block persistence the owner endpoints use.
type BlockStore interface {
	CreateBlock(ctx context.Context, block *models.PropertyBlock) error
	BlocksByProperty(ctx context.Context, propertyID uint) ([]models.PropertyBlock, error)
}

// Deps are the collaborators the handlers call into.
type Deps struct {
	Availability *services.AvailabilityService
	Reservations *services.ReservationService
	Pricing      *services.PricingService
	Properties   services.PropertyStore
	Sync         *services.SyncService
	Blocks       BlockStore
}

var (
	availabilitySvc *services.AvailabilityService
	reservationSvc  *services.ReservationService
	pricingSvc      *services.PricingService
	propertyStore   services.PropertyStore
	syncSvc         *services.SyncService
	blockStore      BlockStore
)

// Configure injects the services the handlers use. Tests call it with
// memory-backed services.
func Configure(deps Deps) {
	availabilitySvc = deps.Availability
	reservationSvc = deps.Reservations
	pricingSvc = deps.Pricing
	propertyStore = deps.Properties
	syncSvc = deps.Sync
	blockStore = deps.Blocks
}

// Register mounts the API surface on the app.
func Register(app *iris.Application) {
	api := app.Party("/api", utils.CallerIDMiddleware)

	properties := api.Party("/properties")
	{
		properties.Get("/{id:uint64}/availability", GetMonthAvailability)
		properties.Post("/{id:uint64}/check-availability", CheckAvailability)
		properties.Get("/{id:uint64}/quote", QuoteStay)
		properties.Post("/{id:uint64}/reserve", CreateReservation)
		properties.Get("/{id:uint64}/reservations", GetReservationsByPropertyID)
		properties.Post("/{id:uint64}/blocks", BlockPropertyDates)
		properties.Get("/{id:uint64}/blocks", GetPropertyBlocks)
	}

	reservations := api.Party("/reservations")
	{
		reservations.Get("/{id:uint64}", GetReservation)
		reservations.Patch("/{id:uint64}/status", UpdateReservationStatus)
		reservations.Patch("/{id:uint64}/cancel", CancelReservation)
	}

	api.Get("/sync/{id:uint64}", StreamInvalidations)
	api.Get("/sync/{id:uint64}/stale", CheckStale)
	api.Post("/maintenance/expire-pending", ExpirePendingReservations)
}

// writeServiceError translates domain errors to HTTP statuses. Conflicts
// carry the overlapping dates so the client can redraw its calendar.
func writeServiceError(err error, ctx iris.Context) {
	var conflict *storage.ConflictError
	switch {
	case errors.As(err, &conflict):
		dates := make([]string, len(conflict.Dates))
		for i, d := range conflict.Dates {
			dates[i] = d.Format("2006-01-02")
		}
		ctx.StatusCode(iris.StatusConflict)
		ctx.JSON(iris.Map{"error": "Conflict", "message": "selected dates are not available", "conflictingDates": dates})
	case errors.Is(err, services.ErrPropertyNotFound), errors.Is(err, services.ErrBookingNotFound):
		utils.CreateError(iris.StatusNotFound, "Not Found", err.Error(), ctx)
	case errors.Is(err, services.ErrValidation), errors.Is(err, services.ErrTerminalStatus):
		utils.CreateError(iris.StatusUnprocessableEntity, "Validation Error", err.Error(), ctx)
	default:
		utils.CreateError(iris.StatusInternalServerError, "Error", err.Error(), ctx)
	}
}

func paramPropertyID(ctx iris.Context) (uint, bool) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "invalid id", ctx)
		return 0, false
	}
	return id, true
}
