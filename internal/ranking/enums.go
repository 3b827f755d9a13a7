package ranking

import (
	"encoding/json"
	"fmt"
	"os"

	"go-studybuddy-backend/internal/domain"
)

// LoadEnumConfig reads the enum override file, or returns the defaults when
// path is empty. Partial files are allowed: a file that only lists grades
// keeps the default genders.
func LoadEnumConfig(path string) (*domain.EnumConfig, error) {
	cfg := DefaultEnumConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("enum config: %w", err)
	}

	var override domain.EnumConfig
	if err := json.Unmarshal(data, &override); err != nil {
		return nil, fmt.Errorf("enum config %s: %w", path, err)
	}

	if len(override.Grades) > 0 {
		cfg.Grades = override.Grades
	}
	if len(override.Genders) > 0 {
		cfg.Genders = override.Genders
	}
	return cfg, nil
}
