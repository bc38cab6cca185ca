package dto

import (
	"errors"
	"html"
	"reflect"
	"strings"

	"credentialing-crm/internal/core/domain"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("enrollment_status", validateEnrollmentStatus)
	}
}

// validateEnrollmentStatus accepts only members of the lifecycle enum.
func validateEnrollmentStatus(fl validator.FieldLevel) bool {
	return domain.EnrollmentStatus(fl.Field().String()).IsValid()
}

// IsEnrollmentStatusError reports whether a binding error came from the
// enrollment_status tag, so handlers can surface the domain rejection
// instead of a generic validation message.
func IsEnrollmentStatusError(err error) bool {
	var vErrs validator.ValidationErrors
	if !errors.As(err, &vErrs) {
		return false
	}
	for _, fe := range vErrs {
		if fe.Tag() == "enrollment_status" {
			return true
		}
	}
	return false
}

// SanitizeStruct trims whitespace and HTML-escapes every exported string
// field (including *string) of a struct pointer.
func SanitizeStruct(v interface{}) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Struct {
		return
	}
	sanitizeFields(rv.Elem())
}

func sanitizeFields(rv reflect.Value) {
	for i := 0; i < rv.NumField(); i++ {
		f := rv.Field(i)
		if !f.CanSet() {
			continue
		}
		switch f.Kind() {
		case reflect.String:
			f.SetString(sanitize(f.String()))
		case reflect.Ptr:
			if f.IsNil() {
				continue
			}
			elem := f.Elem()
			if elem.Kind() == reflect.String {
				s := sanitize(elem.String())
				elem.SetString(s)
			}
		}
	}
}

func sanitize(s string) string {
	return html.EscapeString(strings.TrimSpace(s))
}
