package validator

import (
	"errors"
	"fmt"
	"strings"

	"agendo/pkg/civil"
	"agendo/pkg/logger"
	"agendo/pkg/model"

	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type BookingValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewBookingValidator(log *logger.Logger) *BookingValidator {
	v := validator.New()

	if err := v.RegisterValidation("valid_clock", validateClock); err != nil {
		log.Fatal("Failed to register 'valid_clock' validator", "error", err)
	}
	if err := v.RegisterValidation("utc_offset", validateUTCOffset); err != nil {
		log.Fatal("Failed to register 'utc_offset' validator", "error", err)
	}

	log.Info("Booking validator initialized successfully")

	return &BookingValidator{
		validate: v,
		logger:   log,
	}
}

func validateClock(fl validator.FieldLevel) bool {
	_, _, err := civil.ParseClock(fl.Field().String())
	return err == nil
}

func validateUTCOffset(fl validator.FieldLevel) bool {
	_, err := civil.ParseOffset(fl.Field().String())
	return err == nil
}

// ValidateRequest checks a client booking payload before any domain rules run.
func (v *BookingValidator) ValidateRequest(req *model.BookingRequest) error {
	if err := v.validate.Struct(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

// Validate checks a fully-built appointment right before persistence.
func (v *BookingValidator) Validate(appointment *model.Appointment) error {
	if err := v.validate.Struct(appointment); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	if !appointment.EndTime.After(appointment.StartTime) {
		return ValidationErrors{
			ValidationError{
				Field:   "EndTime",
				Message: "end_time must be after start_time",
			},
		}
	}

	return nil
}

// ValidateProvider guards against malformed provider configuration reaching
// the slot arithmetic.
func (v *BookingValidator) ValidateProvider(provider *model.Provider) error {
	if err := v.validate.Struct(provider); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	var errs ValidationErrors
	for i, w := range provider.Windows {
		startMin, err1 := civil.ClockMinutes(w.Start)
		endMin, err2 := civil.ClockMinutes(w.End)
		if err1 != nil || err2 != nil {
			continue
		}
		if startMin >= endMin {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("Windows[%d]", i),
				Message: "window start must be before window end",
			})
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (v *BookingValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var out ValidationErrors
	for _, err := range errs {
		out = append(out, ValidationError{
			Field:   err.Field(),
			Message: messageForTag(err),
		})
	}
	return out
}

func messageForTag(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "mongodb":
		return "must be a valid object ID"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", err.Param())
	case "min":
		return fmt.Sprintf("must be at least %s", err.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", err.Param())
	case "gtfield":
		return fmt.Sprintf("must be greater than %s", err.Param())
	case "valid_clock":
		return "must be a HH:MM wall-clock value"
	case "utc_offset":
		return "must be a +HH:MM or -HH:MM UTC offset"
	default:
		return fmt.Sprintf("failed validation rule '%s'", err.Tag())
	}
}
