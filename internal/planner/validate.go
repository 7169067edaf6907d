package planner

import (
	"errors"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})
	_ = v.RegisterValidation("day", func(fl validator.FieldLevel) bool {
		_, err := ParseDay(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("finite", func(fl validator.FieldLevel) bool {
		return isFinite(fl.Field().Float())
	})
	return v
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Validate checks a value's validation tags and reports the first failing
// field as a *ValidationError.
func Validate(value any) error {
	err := validate.Struct(value)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &ValidationError{Reason: err.Error()}
	}
	return fieldError(fieldErrs[0])
}

func fieldError(e validator.FieldError) error {
	field := e.Field()
	switch e.Tag() {
	case "required":
		return invalid(field, "is required")
	case "gt":
		return invalid(field, "must be greater than %s", e.Param())
	case "gte":
		return invalid(field, "must be at least %s", e.Param())
	case "lte":
		return invalid(field, "must be at most %s", e.Param())
	case "oneof":
		return invalid(field, "must be one of: %s", e.Param())
	case "finite":
		return invalid(field, "must be a number")
	case "day":
		return invalid(field, "must use the YYYY-MM-DD format")
	default:
		return invalid(field, "is invalid")
	}
}

// CourseInput carries the editable fields of a course.
type CourseInput struct {
	Name         string   `json:"name" validate:"required"`
	Credits      float64  `json:"credits" validate:"finite,gt=0"`
	TargetGrade  float64  `json:"target_grade" validate:"finite,gte=0,lte=100"`
	CurrentGrade *float64 `json:"current_grade" validate:"omitempty,finite,gte=0,lte=100"`
}

// AssignmentInput carries the editable fields of an assignment.
type AssignmentInput struct {
	Title    string   `json:"title" validate:"required"`
	CourseID string   `json:"course_id" validate:"required"`
	DueDate  string   `json:"due_date" validate:"required,day"`
	Weight   float64  `json:"weight" validate:"finite,gte=0,lte=100"`
	Status   string   `json:"status" validate:"required,oneof=pending in-progress completed"`
	Grade    *float64 `json:"grade" validate:"omitempty,finite"`
}

// StudySessionInput carries the fields of a new study session.
type StudySessionInput struct {
	CourseID      string  `json:"course_id" validate:"required"`
	Date          string  `json:"date" validate:"required,day"`
	DurationHours float64 `json:"duration_hours" validate:"finite,gt=0"`
	Notes         string  `json:"notes"`
}

// GoalInput carries the editable fields of a goal.
type GoalInput struct {
	Description string  `json:"description" validate:"required"`
	Progress    float64 `json:"progress" validate:"finite,gte=0,lte=100"`
	TargetDate  *string `json:"target_date" validate:"omitempty,day"`
}
