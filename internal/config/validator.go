package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate checks a loaded config against its struct tags and returns a
// single readable error listing every offending field.
func Validate(cfg *Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fmt.Errorf("config validation failed: %w", err)
	}

	var problems []string
	for _, e := range validationErrors {
		switch e.Tag() {
		case "required":
			problems = append(problems, fmt.Sprintf("%s is required", e.Field()))
		case "oneof":
			problems = append(problems, fmt.Sprintf("%s must be one of [%s]", e.Field(), e.Param()))
		case "min", "gte":
			problems = append(problems, fmt.Sprintf("%s must be >= %s", e.Field(), e.Param()))
		case "max", "lte":
			problems = append(problems, fmt.Sprintf("%s must be <= %s", e.Field(), e.Param()))
		case "gt":
			problems = append(problems, fmt.Sprintf("%s must be > %s", e.Field(), e.Param()))
		default:
			problems = append(problems, fmt.Sprintf("%s is invalid", e.Field()))
		}
	}

	return fmt.Errorf("config validation failed: %s", strings.Join(problems, "; "))
}
