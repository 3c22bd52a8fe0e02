package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// validate is a singleton validator instance
	validate *validator.Validate

	MaxNameLength = 60
	MaxIconLength = 8
	MaxNoteLength = 2000
	MaxIDLength   = 64

	habitIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
)

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("habitid", func(fl validator.FieldLevel) bool {
		return habitIDPattern.MatchString(fl.Field().String())
	})
}

// HabitRequest is the payload for creating a habit
type HabitRequest struct {
	Name       string `json:"name" yaml:"name" validate:"required,min=1,max=60"`
	Icon       string `json:"icon" yaml:"icon" validate:"omitempty,max=8"`
	Importance string `json:"importance" yaml:"importance" validate:"omitempty,oneof=low medium high"`
}

// HabitPatch is the payload for updating a habit; nil fields are left alone
type HabitPatch struct {
	Name       *string `json:"name,omitempty" validate:"omitempty,min=1,max=60"`
	Icon       *string `json:"icon,omitempty" validate:"omitempty,max=8"`
	Importance *string `json:"importance,omitempty" validate:"omitempty,oneof=low medium high"`
}

// NoteRequest is the payload for a day's reflection note
type NoteRequest struct {
	Note string `json:"note" validate:"max=2000"`
}

// ValidateHabitRequest validates a habit creation request
func ValidateHabitRequest(req *HabitRequest) error {
	if req == nil {
		return errors.New("habit request cannot be nil")
	}
	req.Name = strings.TrimSpace(req.Name)

	if err := validate.Struct(req); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// ValidateHabitPatch validates a habit update request
func ValidateHabitPatch(req *HabitPatch) error {
	if req == nil {
		return errors.New("habit update cannot be nil")
	}
	if req.Name != nil {
		trimmed := strings.TrimSpace(*req.Name)
		if trimmed == "" {
			return errors.New("Name: field is required")
		}
		req.Name = &trimmed
	}
	if req.Name == nil && req.Icon == nil && req.Importance == nil {
		return errors.New("update must change at least one field")
	}

	if err := validate.Struct(req); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// ValidateNote validates a reflection note
func ValidateNote(req *NoteRequest) error {
	if req == nil {
		return errors.New("note request cannot be nil")
	}
	if err := validate.Struct(req); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// ValidateHabitID checks an identifier taken from a URL or command line.
// Generated identifiers are UUIDs; imported ones only need to be URL safe.
func ValidateHabitID(id string) error {
	if err := validate.Var(id, "required,max=64,habitid"); err != nil {
		return fmt.Errorf("habit id %q is invalid", id)
	}
	return nil
}

// ValidateDateKey checks a YYYY-MM-DD calendar date
func ValidateDateKey(date string) error {
	if err := validate.Var(date, "required,datetime=2006-01-02"); err != nil {
		return fmt.Errorf("date %q must use the YYYY-MM-DD format", date)
	}
	return nil
}

// formatValidationError converts validator errors to a more user-friendly format
func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	// Report the first failing field
	for _, e := range validationErrs {
		field := e.Field()
		param := e.Param()

		switch e.Tag() {
		case "required":
			return fmt.Errorf("%s: field is required", field)
		case "min":
			return fmt.Errorf("%s: must be at least %s characters", field, param)
		case "max":
			return fmt.Errorf("%s: must not exceed %s characters", field, param)
		case "oneof":
			return fmt.Errorf("%s: must be one of [%s]", field, param)
		default:
			return fmt.Errorf("%s: validation failed (%s)", field, e.Tag())
		}
	}

	return err
}
