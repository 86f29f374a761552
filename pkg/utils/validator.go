package utils

import (
	"context"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

var presentationIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]{0,127}$`)

func init() {
	validate = validator.New()
	if err := validate.RegisterValidation("presentationid", validatePresentationID); err != nil {
		panic(err)
	}
}

// IsValidPresentationID reports whether id can be used as a path component.
func IsValidPresentationID(id string) bool {
	return presentationIDPattern.MatchString(id) && !strings.Contains(id, "..")
}

func validatePresentationID(fl validator.FieldLevel) bool {
	return IsValidPresentationID(fl.Field().String())
}

func ValidateStruct(ctx context.Context, s interface{}) error {
	return validate.StructCtx(ctx, s)
}
