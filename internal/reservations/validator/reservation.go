package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"onehotel/pkg/clock"
	apperrors "onehotel/pkg/errors"
	"onehotel/pkg/logger"
	"onehotel/pkg/model"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// DateRules bound the length of a stay and how far ahead it may start.
// All values are whole days.
type DateRules struct {
	MaxDurationDays int
	MinAdvanceDays  int
	MaxAdvanceDays  int
}

func DefaultDateRules() DateRules {
	return DateRules{
		MaxDurationDays: 3,
		MinAdvanceDays:  1,
		MaxAdvanceDays:  30,
	}
}

type ReservationValidator struct {
	validate *validator.Validate
	rules    DateRules
}

func NewReservationValidator(rules DateRules, log *logger.Logger) *ReservationValidator {
	v := validator.New()
	v.RegisterTagNameFunc(jsonFieldName)
	v.RegisterCustomTypeFunc(dateValue, model.Date{})

	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		log.Fatal("Failed to register 'notblank' validator", "error", err)
	}

	log.Debug("Reservation validator initialized",
		"max_duration_days", rules.MaxDurationDays,
		"min_advance_days", rules.MinAdvanceDays,
		"max_advance_days", rules.MaxAdvanceDays,
	)

	return &ReservationValidator{
		validate: v,
		rules:    rules,
	}
}

func jsonFieldName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	if name == "-" || name == "" {
		return fld.Name
	}
	return name
}

// dateValue makes an unset model.Date fail "required".
func dateValue(v reflect.Value) any {
	d, ok := v.Interface().(model.Date)
	if !ok || d.IsZero() {
		return nil
	}
	return d.Time
}

// Validate checks that every field is present and well-formed. Only the
// first offending field, in declaration order, is reported.
func (v *ReservationValidator) Validate(in *model.ReservationInput) error {
	if in == nil {
		return apperrors.ValidationKind(apperrors.KindMissingField, "Reservation body is required")
	}

	err := v.validate.Struct(in)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) || len(validationErrs) == 0 {
		return apperrors.Internal("Failed to validate reservation", err)
	}

	first := validationErrs[0]
	return apperrors.ValidationKind(apperrors.KindMissingField, translate(first)).
		WithDetails(map[string]any{"field": first.Field()})
}

func translate(err validator.FieldError) string {
	switch err.Tag() {
	case "required", "notblank":
		return fmt.Sprintf("%s is required", err.Field())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", err.Field(), err.Param())
	}
	return fmt.Sprintf("%s is invalid", err.Field())
}

// Normalize drops the time of day from both stay dates.
func (v *ReservationValidator) Normalize(in *model.ReservationInput) (start, end time.Time) {
	return clock.StartOfDay(in.StartDate.Time), clock.StartOfDay(in.EndDate.Time)
}

// CheckDates applies the stay rules to normalized dates. The first broken
// rule is returned, in this order: range, duration, minimum advance,
// maximum advance.
func (v *ReservationValidator) CheckDates(start, end, today time.Time) error {
	if !start.Before(end) {
		return apperrors.ValidationKind(apperrors.KindInvalidRange,
			"start_date must be before end_date")
	}

	if clock.DaysBetween(start, end) > v.rules.MaxDurationDays {
		return apperrors.ValidationKind(apperrors.KindDurationTooLong,
			fmt.Sprintf("Reservation cannot be longer than %d days", v.rules.MaxDurationDays))
	}

	advance := clock.DaysBetween(today, start)
	if advance < v.rules.MinAdvanceDays {
		return apperrors.ValidationKind(apperrors.KindTooSoon,
			fmt.Sprintf("Reservation must start at least %d day(s) after today", v.rules.MinAdvanceDays))
	}
	if advance > v.rules.MaxAdvanceDays {
		return apperrors.ValidationKind(apperrors.KindTooFarAhead,
			fmt.Sprintf("Reservation cannot start more than %d days after today", v.rules.MaxAdvanceDays))
	}

	return nil
}

func (v *ReservationValidator) Rules() DateRules {
	return v.rules
}
