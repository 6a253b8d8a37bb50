package dto

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/jsamuelsen/clinic-site/internal/domain"
	"github.com/jsamuelsen/clinic-site/internal/platform/logging"
)

var (
	// ErrValidation wraps struct tag and Validate method failures.
	ErrValidation = errors.New("validation failed")

	// ErrBinding wraps a body that is not the expected JSON.
	ErrBinding = errors.New("binding failed")
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator returns the shared validator. Field errors are named by their
// JSON tag, and the doctorid tag accepts only roster doctor ids.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}

			return name
		})

		_ = validate.RegisterValidation("doctorid", func(fl validator.FieldLevel) bool {
			id := fl.Field().String()
			return id == "" || domain.DoctorID(id).Known()
		})
	})

	return validate
}

// Validatable is a request with rules beyond its struct tags.
type Validatable interface {
	Validate() error
}

// Validate checks v's struct tags, then its Validate method if it has one.
func Validate(v any) error {
	if err := Validator().Struct(v); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}

	if vv, ok := v.(Validatable); ok {
		if err := vv.Validate(); err != nil {
			return fmt.Errorf("%w: %w", ErrValidation, err)
		}
	}

	return nil
}

// BindAndValidate decodes the JSON body into v and validates it.
func BindAndValidate(c *gin.Context, v any) error {
	if err := c.ShouldBindJSON(v); err != nil {
		return fmt.Errorf("%w: %w", ErrBinding, err)
	}

	return Validate(v)
}

// RejectInvalid answers 400 for a BindAndValidate error. A bad body is
// BAD_REQUEST; a failed rule is VALIDATION_ERROR with field details.
func RejectInvalid(c *gin.Context, err error) {
	details := ValidationErrors(err)

	resp := NewErrorResponseWithDetails(ErrorCodeValidation, "request validation failed", details)

	switch {
	case errors.Is(err, ErrBinding):
		resp = NewErrorResponse(ErrorCodeBadRequest, "invalid request body")
	case len(details) == 0:
		resp.Error.Message = err.Error()
	}

	resp.TraceID = GetTraceID(c)

	logging.FromContext(c.Request.Context()).Warn("request rejected", "error", err.Error())

	c.JSON(http.StatusBadRequest, resp)
}

// ValidationErrors maps each failed field, by JSON name, to a message.
// Map keys show up as field[key].
func ValidationErrors(err error) map[string]string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return nil
	}

	out := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		out[fe.Field()] = validationMessage(fe)
	}

	return out
}

var validationMessages = map[string]string{
	"required":   "this field is required",
	"doctorid":   "must be a known doctor id",
	"startswith": "must start with %s",
	"oneof":      "must be one of: %s",
	"min":        "must be at least %s",
	"max":        "must be at most %s",
}

func validationMessage(fe validator.FieldError) string {
	msg, ok := validationMessages[fe.Tag()]
	if !ok {
		return "failed validation: " + fe.Tag()
	}

	if strings.Contains(msg, "%s") {
		return fmt.Sprintf(msg, fe.Param())
	}

	return msg
}
