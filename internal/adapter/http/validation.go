package http

import (
	"reflect"
	"regexp"
	"strings"
	"time"

	domain "chitfund-backend/internal/domain/scheme"

	"github.com/go-playground/validator/v10"
)

// Reusable error payload
type FieldError struct {
	Field   string `json:"field"`
	Value   any    `json:"value,omitempty"`
	Message string `json:"message"`
}
type ErrorResponse struct {
	Error   string       `json:"error"`
	Details []FieldError `json:"details,omitempty"`
}

var (
	reUCFSIN  = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9-]{3,31}$`)
	reMobile  = regexp.MustCompile(`^\+?[0-9]{10,15}$`)
	reActorID = regexp.MustCompile(`^[A-Za-z0-9_.:-]{1,64}$`)
)

type CustomValidator struct{ v *validator.Validate }

func NewValidator() *CustomValidator {
	v := validator.New()

	// report fields by their json name, matching the engine's field errors
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	// subscriber identification number: alphanumeric with dashes, 4-32 chars
	_ = v.RegisterValidation("ucfsin", func(fl validator.FieldLevel) bool {
		return reUCFSIN.MatchString(fl.Field().String())
	})
	// 10-15 digits, optional leading +
	_ = v.RegisterValidation("mobile", func(fl validator.FieldLevel) bool {
		return reMobile.MatchString(fl.Field().String())
	})
	// calendar date YYYY-MM-DD
	_ = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		_, err := time.Parse(domain.DateLayout, fl.Field().String())
		return err == nil
	})

	return &CustomValidator{v: v}
}

func (cv *CustomValidator) Validate(i any) error { return cv.v.Struct(i) }

// Map validator.ValidationErrors → []FieldError with readable messages.
func ToFieldErrors(err error) []FieldError {
	ve, ok := err.(validator.ValidationErrors)
	if !ok {
		return []FieldError{{Field: "_", Message: err.Error()}}
	}
	out := make([]FieldError, 0, len(ve))
	for _, e := range ve {
		field := fieldPath(e)
		switch e.Tag() {
		case "required":
			out = append(out, FieldError{Field: field, Message: "is required"})
		case "ucfsin":
			out = append(out, FieldError{Field: field, Value: e.Value(), Message: "must be 4-32 letters, digits or dashes"})
		case "mobile":
			out = append(out, FieldError{Field: field, Value: e.Value(), Message: "must be 10-15 digits with optional leading +"})
		case "isodate":
			out = append(out, FieldError{Field: field, Value: e.Value(), Message: "must be a date in YYYY-MM-DD format"})
		case "gt":
			out = append(out, FieldError{Field: field, Value: e.Value(), Message: "must be greater than " + e.Param()})
		case "gte", "min":
			out = append(out, FieldError{Field: field, Value: e.Value(), Message: "must be at least " + e.Param()})
		case "lte", "max":
			out = append(out, FieldError{Field: field, Value: e.Value(), Message: "must be at most " + e.Param()})
		default:
			out = append(out, FieldError{Field: field, Value: e.Value(), Message: e.Tag() + " validation failed"})
		}
	}
	return out
}

// fieldPath drops the request struct name: "subscribers[0].mobile".
func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return e.Field()
}

func fromDomainFields(in []domain.FieldError) []FieldError {
	out := make([]FieldError, 0, len(in))
	for _, f := range in {
		out = append(out, FieldError{Field: f.Field, Value: f.Value, Message: f.Message})
	}
	return out
}
