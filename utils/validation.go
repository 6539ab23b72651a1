package utils

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/kataras/iris/v12"
)

type validationError struct {
	Field string `json:"field"`
	Tag   string `json:"tag"`
	Value string `json:"value,omitempty"`
}

// HandleValidationErrors maps a ReadJSON failure to the right client error:
// 422 with per-field detail for validator violations, 400 for malformed
// bodies.
func HandleValidationErrors(err error, ctx iris.Context) {
	var fieldErrors validator.ValidationErrors
	if errors.As(err, &fieldErrors) {
		out := make([]validationError, 0, len(fieldErrors))
		for _, fe := range fieldErrors {
			out = append(out, validationError{
				Field: fe.Field(),
				Tag:   fe.Tag(),
				Value: fe.Param(),
			})
		}
		ctx.StatusCode(iris.StatusUnprocessableEntity)
		ctx.JSON(iris.Map{"error": "Validation Error", "fields": out})
		return
	}
	CreateError(iris.StatusBadRequest, "Bad Request", err.Error(), ctx)
}
