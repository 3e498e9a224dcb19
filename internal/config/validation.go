package config

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
)

// CustomValidator wraps the validator with custom validation rules
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a new validator with custom validation functions
func NewValidator() *CustomValidator {
	v := validator.New()

	v.RegisterValidation("environment", validateEnvironment)
	v.RegisterValidation("loglevel", validateLogLevel)
	v.RegisterValidation("driver", validateDriver)
	v.RegisterValidation("cronspec", validateCronSpec)

	return &CustomValidator{validator: v}
}

// Validate validates the entire configuration
func Validate(cfg *Config) error {
	return NewValidator().Validate(cfg)
}

// Validate validates the configuration using registered validation rules
func (cv *CustomValidator) Validate(cfg *Config) error {
	if err := cv.validator.Struct(cfg); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return formatValidationErrors(validationErrors)
		}
		return fmt.Errorf("validation failed: %w", err)
	}

	return validateCrossField(cfg)
}

func validateEnvironment(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "development", "staging", "production":
		return true
	default:
		return false
	}
}

func validateLogLevel(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

func validateDriver(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "memory", "sqlite", "postgres":
		return true
	default:
		return false
	}
}

// validateCronSpec accepts anything the scheduler's parser accepts, descriptors included
func validateCronSpec(fl validator.FieldLevel) bool {
	_, err := cron.ParseStandard(fl.Field().String())
	return err == nil
}

func validateCrossField(cfg *Config) error {
	if cfg.Database.Driver == "postgres" {
		if cfg.Database.MaxIdleConnections > cfg.Database.MaxConnections {
			return fmt.Errorf("max_idle_connections cannot exceed max_connections")
		}
		if cfg.IsProduction() && cfg.Database.SSLMode == "disable" {
			return fmt.Errorf("production environment requires SSL mode to be 'require' or 'verify-full'")
		}
	}

	a := cfg.Allocation
	if a.FloorG1 != 0 && a.FloorG2 != 0 && a.FloorG1 < a.FloorG2 {
		return fmt.Errorf("allocation floor_g1 cannot be below floor_g2")
	}
	if a.FloorG2 != 0 && a.FloorOther != 0 && a.FloorG2 < a.FloorOther {
		return fmt.Errorf("allocation floor_g2 cannot be below floor_other")
	}

	e := cfg.Entry
	if e.EliteSoftCap != 0 && e.EliteHardCap != 0 && e.EliteSoftCap > e.EliteHardCap {
		return fmt.Errorf("entry elite_soft_cap cannot exceed elite_hard_cap")
	}
	if e.EliteHardCap != 0 && e.FinaleHardCap != 0 && e.FinaleHardCap < e.EliteHardCap {
		return fmt.Errorf("entry finale_hard_cap cannot be below elite_hard_cap")
	}

	if cfg.Scheduler.Enabled && cfg.Scheduler.AdvanceSpec == "" {
		return fmt.Errorf("scheduler.advance_spec is required when the scheduler is enabled")
	}

	return nil
}

// formatValidationErrors formats validation errors into a readable string
func formatValidationErrors(validationErrors validator.ValidationErrors) error {
	var errMsg string
	for _, fieldError := range validationErrors {
		field := fieldError.Namespace()
		tag := fieldError.Tag()
		value := fieldError.Value()

		switch tag {
		case "required", "required_if":
			errMsg += fmt.Sprintf("- Field '%s' is required\n", field)
		case "url":
			errMsg += fmt.Sprintf("- Field '%s' must be a valid URL, got '%v'\n", field, value)
		case "min", "max":
			errMsg += fmt.Sprintf("- Field '%s' validation failed: %s constraint violated\n", field, tag)
		case "gt", "gte", "lt", "lte":
			errMsg += fmt.Sprintf("- Field '%s' validation failed: numeric constraint %s violated\n", field, tag)
		case "environment":
			errMsg += fmt.Sprintf("- Field '%s' must be one of: development, staging, production\n", field)
		case "loglevel":
			errMsg += fmt.Sprintf("- Field '%s' must be one of: debug, info, warn, error\n", field)
		case "driver":
			errMsg += fmt.Sprintf("- Field '%s' must be one of: memory, sqlite, postgres\n", field)
		case "cronspec":
			errMsg += fmt.Sprintf("- Field '%s' is not a valid cron spec: '%v'\n", field, value)
		case "oneof":
			errMsg += fmt.Sprintf("- Field '%s' has invalid value '%v'\n", field, value)
		default:
			errMsg += fmt.Sprintf("- Field '%s' failed validation: %s\n", field, tag)
		}
	}
	return fmt.Errorf("configuration validation failed:\n%s", errMsg)
}
