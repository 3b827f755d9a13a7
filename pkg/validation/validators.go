package validation

import (
	"regexp"
	"time"

	"github.com/go-playground/validator/v10"
)

// Regex patterns
var (
	// Usernames: letters, digits, underscore, dot; must start with a letter.
	usernameRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_.]*$`)

	// Course identifiers like CS101 or MATH201-H: uppercase letters followed
	// by digits, optional section suffix.
	courseIDRegex = regexp.MustCompile(`^[A-Z]{2,8}[0-9]{2,4}(-[A-Z0-9]{1,4})?$`)
)

// RegisterValidators registers custom validators to the validator instance
func RegisterValidators(v *validator.Validate) {
	_ = v.RegisterValidation("valid_username", ValidUsername)
	_ = v.RegisterValidation("valid_course_id", ValidCourseID)
	_ = v.RegisterValidation("past_date", PastDate)
}

// ValidUsername validates username structure. Emptiness is left to
// `required` so the tag can be combined with optional fields.
func ValidUsername(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	if val == "" {
		return true
	}
	return usernameRegex.MatchString(val)
}

// ValidCourseID validates a course identifier like CS101.
func ValidCourseID(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	if val == "" {
		return true
	}
	return courseIDRegex.MatchString(val)
}

// PastDate validates that a time field lies strictly in the past. Used for
// date of birth, where the DB cannot enforce a dynamic bound.
func PastDate(fl validator.FieldLevel) bool {
	switch v := fl.Field().Interface().(type) {
	case time.Time:
		return v.IsZero() || v.Before(time.Now())
	case *time.Time:
		return v == nil || v.Before(time.Now())
	}
	return false
}
