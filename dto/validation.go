package dto

import (
	"errors"
	"reflect"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// FieldError is a validation failure raised while decoding a single field.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Message
}

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		RegisterValidators(v)
	}
}

// RegisterValidators installs the custom rules used by the request DTOs.
func RegisterValidators(v *validator.Validate) {
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return CountDigits(fl.Field().String()) >= 10
	})
	_ = v.RegisterValidation("accepted", func(fl validator.FieldLevel) bool {
		return fl.Field().Kind() == reflect.Bool && fl.Field().Bool()
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	v.RegisterStructValidation(validateBannerForm, BannerForm{})
}

func CountDigits(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsDigit(r) {
			n++
		}
	}
	return n
}

// Validate runs the binding rules of obj without decoding anything.
func Validate(obj any) map[string]string {
	return FieldErrors(obj, binding.Validator.ValidateStruct(obj))
}

// FieldErrors maps err onto the json field names of obj, using each field's
// message tag. It returns nil when err is not a validation failure.
func FieldErrors(obj any, err error) map[string]string {
	if err == nil {
		return nil
	}

	var fieldErr *FieldError
	if errors.As(err, &fieldErr) {
		return map[string]string{fieldErr.Field: fieldErr.Message}
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}

	t := reflect.TypeOf(obj)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		if _, seen := out[fe.Field()]; seen {
			continue
		}
		out[fe.Field()] = messageFor(t, fe)
	}
	return out
}

func messageFor(t reflect.Type, fe validator.FieldError) string {
	if t != nil && t.Kind() == reflect.Struct {
		if sf, ok := t.FieldByName(fe.StructField()); ok {
			if msg := sf.Tag.Get("message"); msg != "" {
				return msg
			}
		}
	}
	switch fe.Tag() {
	case "required", "notblank":
		return "is required"
	case "email":
		return "must be a valid email"
	case "url":
		return "must be a valid URL"
	}
	return "is invalid"
}
