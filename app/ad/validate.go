package ad

import (
	"errors"
	"time"

	"schwarzesbrett/domain"
	"schwarzesbrett/pkg/httperror"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// DefaultRuntime is how long an ad stays active when no end is given.
const DefaultRuntime = 30 * 24 * time.Hour

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

// checkPricing enforces that free ads carry no price and priced ads no negative one.
func checkPricing(code string, priceType string, price decimal.Decimal) error {
	if price.IsNegative() {
		return httperror.BadRequest(code+".invalid_price", "Price must not be negative", nil)
	}
	if priceType == domain.PriceTypeFree && !price.IsZero() {
		return httperror.BadRequest(code+".invalid_price", "Free ads cannot have a price", nil)
	}
	return nil
}
