package validator

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

var yyyymmdd = regexp.MustCompile(`^\d{8}$`)

func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	_ = validate.RegisterValidation("yyyymmdd", func(fl validator.FieldLevel) bool {
		return yyyymmdd.MatchString(fl.Field().String())
	})
}

// Validate struct fields. Keys are json field names, values the failed tag.
func Validate(v interface{}) map[string]string {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return map[string]string{"": err.Error()}
	}

	errors := make(map[string]string)
	for _, err := range errs {
		errors[err.Field()] = err.Tag()
	}
	return errors
}

// IsDate reports whether s is an 8 digit YYYYMMDD string.
func IsDate(s string) bool {
	return yyyymmdd.MatchString(s)
}
