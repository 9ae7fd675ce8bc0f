package app

import (
	"errors"

	"schwarzesbrett/pkg/httperror"

	"github.com/go-playground/validator/v10"
)

func validateRequest(code string, req any) error {
	validate := validator.New(validator.WithRequiredStructEnabled())

	if err := validate.Struct(req); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			return httperror.BadRequest(
				code+".validation_failed",
				"Validation failed for the request",
				ve.Error(),
			)
		}

		return httperror.InternalServerError(
			code+".validation_error",
			"An unexpected validation error occurred",
			nil,
		)
	}
	return nil
}

// pageBounds normalises 1-based paging parameters.
func pageBounds(page, pageSize, defaultSize int) (int, int) {
	page = max(page, 1)
	if pageSize < 1 {
		pageSize = defaultSize
	}
	return page, min(pageSize, 100)
}
