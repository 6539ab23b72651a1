package routes

import (
	"rental-scheduling-server/services"
	"rental-scheduling-server/utils"

	"github.com/kataras/iris/v12"
)

// CreateReservationInput is the body of POST /properties/{id}/reserve.
// TenantID comes from the Auth collaborator upstream; this core only records
// who booked.
type CreateReservationInput struct {
	StartDate   string            `json:"startDate" validate:"required"`
	EndDate     string            `json:"endDate" validate:"required"`
	GuestCount  int               `json:"guestCount" validate:"required,gte=1"`
	TenantID    uint              `json:"tenantID"`
	ContactInfo map[string]string `json:"contactInfo"`
}

// CreateReservation validates and atomically commits a booking. 409 with the
// conflicting dates on overlap, 422 on validation failure.
func CreateReservation(ctx iris.Context) {
	propertyID, ok := paramPropertyID(ctx)
	if !ok {
		return
	}

	var input CreateReservationInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}
	start, end, ok := DateRangeInput{StartDate: input.StartDate, EndDate: input.EndDate}.parse(ctx)
	if !ok {
		return
	}

	tenantID := input.TenantID
	if callerID := utils.CallerID(ctx); callerID != 0 {
		tenantID = callerID
	}

	booking, err := reservationSvc.Reserve(ctx.Request().Context(), services.ReserveRequest{
		PropertyID:  propertyID,
		TenantID:    tenantID,
		StartDate:   start,
		EndDate:     end,
		GuestCount:  input.GuestCount,
		ContactInfo: input.ContactInfo,
	})
	if err != nil {
		writeServiceError(err, ctx)
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(booking)
}

// UpdateReservationStatusInput is the body of PATCH /reservations/{id}/status.
type UpdateReservationStatusInput struct {
	Status        string `json:"status" validate:"required,oneof=pending confirmed cancelled completed"`
	PaymentStatus string `json:"paymentStatus" validate:"omitempty,oneof=pending paid failed refunded"`
}

// UpdateReservationStatus moves a booking along its status graph; cancelled
// and completed are terminal.
func UpdateReservationStatus(ctx iris.Context) {
	id, ok := paramPropertyID(ctx)
	if !ok {
		return
	}

	var input UpdateReservationStatusInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	booking, err := reservationSvc.UpdateStatus(ctx.Request().Context(), id, input.Status, input.PaymentStatus)
	if err != nil {
		writeServiceError(err, ctx)
		return
	}
	ctx.JSON(booking)
}

// CancelReservation cancels a pending or confirmed booking, freeing its
// dates immediately.
func CancelReservation(ctx iris.Context) {
	id, ok := paramPropertyID(ctx)
	if !ok {
		return
	}

	booking, err := reservationSvc.Cancel(ctx.Request().Context(), id)
	if err != nil {
		writeServiceError(err, ctx)
		return
	}
	ctx.JSON(booking)
}

// GetReservation returns one booking.
func GetReservation(ctx iris.Context) {
	id, ok := paramPropertyID(ctx)
	if !ok {
		return
	}

	booking, err := reservationSvc.Get(ctx.Request().Context(), id)
	if err != nil {
		writeServiceError(err, ctx)
		return
	}
	ctx.JSON(booking)
}

// GetReservationsByPropertyID lists a property's bookings, newest first.
func GetReservationsByPropertyID(ctx iris.Context) {
	propertyID, ok := paramPropertyID(ctx)
	if !ok {
		return
	}

	bookings, err := reservationSvc.ListByProperty(ctx.Request().Context(), propertyID)
	if err != nil {
		writeServiceError(err, ctx)
		return
	}
	ctx.JSON(bookings)
}

// ExpirePendingReservations runs the pending-expiry sweep on demand; the
// cron schedule runs the same sweep automatically.
func ExpirePendingReservations(ctx iris.Context) {
	n, err := reservationSvc.ExpirePending(ctx.Request().Context())
	if err != nil {
		writeServiceError(err, ctx)
		return
	}
	ctx.JSON(iris.Map{"expired": n})
}
