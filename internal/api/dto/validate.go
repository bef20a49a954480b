package dto

import (
	"github.com/asaskevich/govalidator"

	apperrors "github.com/spec-kit/support-desk/pkg/util/errorutil"
)

// Validate runs the struct's `valid` tags and reports failures per field.
func Validate(req any) error {
	if _, err := govalidator.ValidateStruct(req); err != nil {
		details := map[string]any{}
		for field, msg := range govalidator.ErrorsByField(err) {
			details[field] = msg
		}
		return apperrors.NewValidationError("invalid request", details)
	}
	return nil
}
