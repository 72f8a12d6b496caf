package validator

import (
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
)

var (
	// seatKeyRgx matches the canonical "{row}-{number}" seat key, e.g. "A-12".
	seatKeyRgx = regexp.MustCompile(`^[A-Z]{1,2}-[1-9][0-9]{0,2}$`)

	voucherCodeRgx = regexp.MustCompile(`^[A-Z0-9]{3,16}$`)
)

func NewValidator() *validator.Validate {
	validator := validator.New(validator.WithRequiredStructEnabled())

	validator.RegisterValidation("seat_key", validateSeatKey)
	validator.RegisterValidation("voucher_code", validateVoucherCode)

	return validator
}

func validateSeatKey(fl validator.FieldLevel) bool {
	return seatKeyRgx.MatchString(fl.Field().String())
}

func validateVoucherCode(fl validator.FieldLevel) bool {
	return voucherCodeRgx.MatchString(fl.Field().String())
}

// ValidationMessage converts validator errors into readable messages
func ValidationMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must contain at least %s items", err.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", err.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", err.Param())
	case "uuid4":
		return "must be a valid UUID"
	case "seat_key":
		return "must be a seat key like A-12"
	case "voucher_code":
		return "must be an uppercase alphanumeric code"
	default:
		return "is invalid"
	}
}
