package validator

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type ErrorResponse struct {
	FailedField string `json:"field"`
	Tag         string `json:"tag"`
	Value       string `json:"value,omitempty"`
}

func (e ErrorResponse) String() string {
	if e.Value != "" {
		return fmt.Sprintf("%s failed on '%s=%s'", e.FailedField, e.Tag, e.Value)
	}
	return fmt.Sprintf("%s failed on '%s'", e.FailedField, e.Tag)
}

var validate = validator.New()

func init() {
	validate.RegisterValidation("uuid_required", func(fl validator.FieldLevel) bool {
		if id, ok := fl.Field().Interface().(uuid.UUID); ok {
			return id != uuid.Nil
		}
		return false
	})
	validate.RegisterValidation("gtin", func(fl validator.FieldLevel) bool {
		return ValidGTIN(fl.Field().String())
	})
	validate.RegisterValidation("digits", func(fl validator.FieldLevel) bool {
		return isDigits(fl.Field().String())
	})
}

func ValidateStruct(data interface{}) []*ErrorResponse {
	var errors []*ErrorResponse
	err := validate.Struct(data)
	if err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return []*ErrorResponse{{FailedField: "", Tag: err.Error()}}
		}
		for _, err := range verrs {
			errors = append(errors, &ErrorResponse{
				FailedField: err.StructNamespace(),
				Tag:         err.Tag(),
				Value:       err.Param(),
			})
		}
	}
	return errors
}

// Summary joins validation failures into a single message.
func Summary(errs []*ErrorResponse) string {
	parts := make([]string, len(errs))
	for i, e := range errs {
		parts[i] = e.String()
	}
	return strings.Join(parts, "; ")
}

// ValidGTIN reports whether code is a GTIN-8/12/13/14 with a correct GS1
// check digit.
func ValidGTIN(code string) bool {
	switch len(code) {
	case 8, 12, 13, 14:
	default:
		return false
	}
	if !isDigits(code) {
		return false
	}

	sum := 0
	// weights alternate 3,1 starting from the digit left of the check digit
	for i := len(code) - 2; i >= 0; i-- {
		d := int(code[i] - '0')
		if (len(code)-2-i)%2 == 0 {
			d *= 3
		}
		sum += d
	}
	check := (10 - sum%10) % 10
	return check == int(code[len(code)-1]-'0')
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
