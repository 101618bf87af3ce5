package common

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	usernameExpr = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
)

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernameExpr.MatchString(fl.Field().String())
	})
}

// ValidationError carries every violated rule; callers surface the whole
// list instead of failing on the first one.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Violations, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// Validate checks a struct against its validate tags and aggregates all
// failures into a single ValidationError.
func Validate(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("common.Validate: %w", err)
	}
	violations := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		violations = append(violations, messageFor(fe))
	}
	return &ValidationError{Violations: violations}
}

// ViolationsFromError extracts the rule list, if err is a ValidationError.
func ViolationsFromError(err error) []string {
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return vErr.Violations
	}
	return nil
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "min":
		if fe.Kind().String() == "string" {
			return fmt.Sprintf("%s must be at least %s characters long", fe.Field(), fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		if fe.Kind().String() == "string" {
			return fmt.Sprintf("%s must be at most %s characters long", fe.Field(), fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	case "username":
		return fmt.Sprintf("%s can only contain letters, numbers, underscores and hyphens", fe.Field())
	default:
		return fmt.Sprintf("%s failed rule %q", fe.Field(), fe.Tag())
	}
}
