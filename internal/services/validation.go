package services

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"
	"unicode"

	"medreminder/internal/models"

	"github.com/go-playground/validator/v10"
)

const minPasswordLength = 8

var emailPattern = regexp.MustCompile(`^[A-Za-z0-9+_.-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)

// clockLayouts are the accepted time-of-day inputs, normalized to models.TimeLayout.
var clockLayouts = []string{models.TimeLayout, "15:04"}

// newValidator builds the validator shared by the services. Field names in
// errors come from the `label` struct tag.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if label := fld.Tag.Get("label"); label != "" {
			return label
		}
		return fld.Name
	})
	_ = v.RegisterValidation("emailtld", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("strongpassword", func(fl validator.FieldLevel) bool {
		return isStrongPassword(fl.Field().String())
	})
	_ = v.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
		_, err := parseClock(fl.Field().String())
		return err == nil
	})
	return v
}

// isStrongPassword requires at least minPasswordLength characters with an
// upper-case letter, a lower-case letter, a digit and any other character.
func isStrongPassword(password string) bool {
	if len([]rune(password)) < minPasswordLength {
		return false
	}
	var upper, lower, digit, special bool
	for _, c := range password {
		switch {
		case unicode.IsUpper(c):
			upper = true
		case unicode.IsLower(c):
			lower = true
		case unicode.IsDigit(c):
			digit = true
		default:
			special = true
		}
	}
	return upper && lower && digit && special
}

func parseClock(value string) (time.Time, error) {
	var lastErr error
	for _, layout := range clockLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// validationMessage turns the first failed constraint into a user-facing message.
func validationMessage(err error) string {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return "Invalid input"
	}
	fe := errs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "emailtld":
		return "Invalid email format"
	case "strongpassword":
		return fmt.Sprintf("Password must be at least %d characters long and contain at least one uppercase letter, "+
			"one lowercase letter, one digit, and one special character", minPasswordLength)
	case "eqfield":
		return "Passwords do not match"
	case "datetime":
		return fmt.Sprintf("%s must be a date in YYYY-MM-DD format", fe.Field())
	case "clock":
		return fmt.Sprintf("%s must be a time in HH:MM or HH:MM:SS format", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
