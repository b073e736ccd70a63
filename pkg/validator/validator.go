package validator

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"go-stock-tracker/internal/model"
	"go-stock-tracker/pkg/apperror"
)

type ErrorResponse struct {
	FailedField string
	Tag         string
	Value       string
}

var (
	validate = validator.New()

	productCodePattern = regexp.MustCompile(`^[A-Z0-9]{3,10}$`)
	barcodePattern     = regexp.MustCompile(`^\d{8,13}$`)
)

func init() {
	// Report json names instead of Go field names
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	validate.RegisterValidation("product_code", func(fl validator.FieldLevel) bool {
		return productCodePattern.MatchString(strings.ToUpper(fl.Field().String()))
	})
	validate.RegisterValidation("barcode", func(fl validator.FieldLevel) bool {
		return barcodePattern.MatchString(fl.Field().String())
	})
	validate.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return model.Category(fl.Field().String()).Valid()
	})
	validate.RegisterValidation("unit", func(fl validator.FieldLevel) bool {
		return model.Unit(fl.Field().String()).Valid()
	})
}

func ValidateStruct(data interface{}) []*ErrorResponse {
	var errors []*ErrorResponse
	err := validate.Struct(data)
	if err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return []*ErrorResponse{{FailedField: "body", Tag: "invalid"}}
		}
		for _, err := range verrs {
			var element ErrorResponse
			element.FailedField = err.Field()
			element.Tag = err.Tag()
			element.Value = err.Param()
			errors = append(errors, &element)
		}
	}
	return errors
}

// Check validates data and folds failures into a validation apperror with
// one message per field.
func Check(data interface{}) error {
	errs := ValidateStruct(data)
	if len(errs) == 0 {
		return nil
	}
	fields := make(map[string]string, len(errs))
	for _, e := range errs {
		fields[e.FailedField] = describe(e)
	}
	first := errs[0]
	return apperror.Validation(
		fmt.Sprintf("Validation failed: field '%s' %s", first.FailedField, fields[first.FailedField]),
		fields,
	)
}

func describe(e *ErrorResponse) string {
	switch e.Tag {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + e.Value
	case "max":
		return "must be at most " + e.Value
	case "gte":
		return "must be greater than or equal to " + e.Value
	case "gtefield":
		return "must not be lower than " + lowerFirst(e.Value)
	case "email":
		return "must be a valid email address"
	case "oneof":
		return "must be one of: " + e.Value
	case "product_code":
		return "must be 3-10 uppercase letters or digits"
	case "barcode":
		return "must be 8-13 digits"
	case "category":
		return "is not a known category"
	case "unit":
		return "is not a known unit"
	}
	return "failed on '" + e.Tag + "'"
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
