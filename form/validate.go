package form

import (
	"reflect"
	"regexp"
	"slices"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"sahayakseva/backend/models"
)

var panPattern = regexp.MustCompile(`^[A-Z]{5}[0-9]{4}[A-Z]{1}$`)

const (
	MsgRequired = "Please fill all required fields"
	MsgAadhaar  = "Aadhaar number should be 12 digits"
	MsgPAN      = "Invalid PAN number format"
)

// StripSpaces removes every whitespace rune, as Aadhaar numbers are typed in groups of four.
func StripSpaces(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// ValidAadhaar reports whether s is exactly 12 ASCII digits once whitespace is stripped.
func ValidAadhaar(s string) bool {
	s = StripSpaces(s)
	if len(s) != 12 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// ValidPAN checks the format only. Case folding happens when the value is typed.
func ValidPAN(s string) bool {
	return panPattern.MatchString(s)
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("aadhaar", func(fl validator.FieldLevel) bool {
		return ValidAadhaar(fl.Field().String())
	})
	_ = v.RegisterValidation("pan", func(fl validator.FieldLevel) bool {
		return ValidPAN(fl.Field().String())
	})
	_ = v.RegisterValidation("indianstate", func(fl validator.FieldLevel) bool {
		return slices.Contains(models.States, fl.Field().String())
	})
	return v
}

var validate = newValidator()
