package ranking

import "go-studybuddy-backend/internal/domain"

// DefaultEnumConfig mirrors the enum values the backend seeds. Deployments
// can override it with ENUM_CONFIG_FILE at startup.
func DefaultEnumConfig() *domain.EnumConfig {
	return &domain.EnumConfig{
		Grades: []domain.EnumValue{
			{Value: "freshman", Label: "Freshman"},
			{Value: "sophomore", Label: "Sophomore"},
			{Value: "junior", Label: "Junior"},
			{Value: "senior", Label: "Senior"},
			{Value: "postgraduate", Label: "Postgraduate"},
		},
		Genders: []domain.EnumValue{
			{Value: "male", Label: "Male"},
			{Value: "female", Label: "Female"},
			{Value: "non_binary", Label: "Non-Binary"},
			{Value: "prefer_not_to_say", Label: "Prefer not to say"},
		},
	}
}

// FormatGrade returns the display label for a grade value. Unrecognized
// values pass through unchanged so a stale client never sees an error.
func FormatGrade(cfg *domain.EnumConfig, grade string) string {
	if grade == "" {
		return ""
	}
	if cfg != nil {
		for _, g := range cfg.Grades {
			if g.Value == grade {
				return g.Label
			}
		}
	}
	return grade
}

// FormatGender returns the display label for a gender value, with the same
// pass-through fallback as FormatGrade.
func FormatGender(cfg *domain.EnumConfig, gender string) string {
	if gender == "" {
		return ""
	}
	if cfg != nil {
		for _, g := range cfg.Genders {
			if g.Value == gender {
				return g.Label
			}
		}
	}
	return gender
}
