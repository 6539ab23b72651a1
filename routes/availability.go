package routes

import (
	"time"

	"rental-scheduling-server/calendar"
	"rental-scheduling-server/models"
	"rental-scheduling-server/services"
	"rental-scheduling-server/utils"

	"github.com/kataras/iris/v12"
)

// GetMonthAvailability returns one DayRecord per calendar day of the
// requested month.
func GetMonthAvailability(ctx iris.Context) {
	propertyID, ok := paramPropertyID(ctx)
	if !ok {
		return
	}

	month, err := ctx.URLParamInt("month")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "month is required", ctx)
		return
	}
	year, err := ctx.URLParamInt("year")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "year is required", ctx)
		return
	}

	records, err := availabilitySvc.MonthAvailability(ctx.Request().Context(), propertyID, time.Month(month), year)
	if err != nil {
		writeServiceError(err, ctx)
		return
	}
	ctx.JSON(records)
}

// DateRangeInput is a half-open [startDate, endDate) interval on the wire.
type DateRangeInput struct {
	StartDate string `json:"startDate" validate:"required"`
	EndDate   string `json:"endDate" validate:"required"`
}

func (in DateRangeInput) parse(ctx iris.Context) (time.Time, time.Time, bool) {
	start, err := calendar.ParseDate(in.StartDate)
	if err != nil {
		utils.CreateError(iris.StatusUnprocessableEntity, "Validation Error", "invalid startDate, want YYYY-MM-DD", ctx)
		return time.Time{}, time.Time{}, false
	}
	end, err := calendar.ParseDate(in.EndDate)
	if err != nil {
		utils.CreateError(iris.StatusUnprocessableEntity, "Validation Error", "invalid endDate, want YYYY-MM-DD", ctx)
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

// CheckAvailability is the advisory pre-check. It is never authoritative:
// the commit path re-validates inside its own transaction.
func CheckAvailability(ctx iris.Context) {
	propertyID, ok := paramPropertyID(ctx)
	if !ok {
		return
	}

	var input DateRangeInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}
	start, end, ok := input.parse(ctx)
	if !ok {
		return
	}

	check, err := availabilitySvc.CheckRange(ctx.Request().Context(), propertyID, start, end)
	if err != nil {
		writeServiceError(err, ctx)
		return
	}
	ctx.JSON(check)
}

// QuoteStay prices a candidate stay without reserving anything.
func QuoteStay(ctx iris.Context) {
	propertyID, ok := paramPropertyID(ctx)
	if !ok {
		return
	}

	start, err := calendar.ParseDate(ctx.URLParam("startDate"))
	if err != nil {
		utils.CreateError(iris.StatusUnprocessableEntity, "Validation Error", "invalid startDate, want YYYY-MM-DD", ctx)
		return
	}
	end, err := calendar.ParseDate(ctx.URLParam("endDate"))
	if err != nil {
		utils.CreateError(iris.StatusUnprocessableEntity, "Validation Error", "invalid endDate, want YYYY-MM-DD", ctx)
		return
	}
	guests := ctx.URLParamIntDefault("guests", 1)
	if !start.Before(end) || guests < 1 {
		utils.CreateError(iris.StatusUnprocessableEntity, "Validation Error", "startDate must be before endDate and guests must be at least 1", ctx)
		return
	}

	property, err := propertyStore.GetProperty(ctx.Request().Context(), propertyID)
	if err != nil {
		writeServiceError(services.ErrPropertyNotFound, ctx)
		return
	}

	quote := pricingSvc.Quote(property, services.Stay{StartDate: start, EndDate: end, GuestCount: guests})
	ctx.JSON(quote)
}

// BlockInput withholds a date range from booking.
type BlockInput struct {
	StartDate string `json:"startDate" validate:"required"`
	EndDate   string `json:"endDate" validate:"required"`
	Reason    string `json:"reason"`
}

// BlockPropertyDates creates a manual block. Only the property owner may
// block dates.
func BlockPropertyDates(ctx iris.Context) {
	propertyID, ok := paramPropertyID(ctx)
	if !ok {
		return
	}

	var input BlockInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}
	start, end, ok := DateRangeInput{StartDate: input.StartDate, EndDate: input.EndDate}.parse(ctx)
	if !ok {
		return
	}
	if !start.Before(end) {
		utils.CreateError(iris.StatusUnprocessableEntity, "Validation Error", "startDate must be before endDate", ctx)
		return
	}

	property, err := propertyStore.GetProperty(ctx.Request().Context(), propertyID)
	if err != nil {
		writeServiceError(services.ErrPropertyNotFound, ctx)
		return
	}
	if callerID := utils.CallerID(ctx); callerID != 0 && callerID != property.OwnerID {
		utils.CreateError(iris.StatusForbidden, "Forbidden", "only the property owner can block dates", ctx)
		return
	}

	block := models.PropertyBlock{
		PropertyID: propertyID,
		StartDate:  start,
		EndDate:    end,
		Reason:     input.Reason,
	}
	if err := blockStore.CreateBlock(ctx.Request().Context(), &block); err != nil {
		writeServiceError(err, ctx)
		return
	}

	syncSvc.Publish(ctx.Request().Context(), propertyID, services.KindBlocked)
	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(block)
}

// GetPropertyBlocks lists a property's manual blocks.
func GetPropertyBlocks(ctx iris.Context) {
	propertyID, ok := paramPropertyID(ctx)
	if !ok {
		return
	}
	blocks, err := blockStore.BlocksByProperty(ctx.Request().Context(), propertyID)
	if err != nil {
		writeServiceError(err, ctx)
		return
	}
	ctx.JSON(blocks)
}
