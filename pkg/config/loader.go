package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"

	"github.com/orjumedia/storefront/pkg/validator"
)

// Load parses environment variables into the provided struct and then runs
// its `validate` tags. The struct should use `env` tags to define mappings.
//
// Example:
//
//	type Config struct {
//	    Port       int    `env:"PORT" envDefault:"4242" validate:"gte=1,lte=65535"`
//	    SuccessURL string `env:"CHECKOUT_SUCCESS_URL" validate:"required,url"`
//	}
func Load(cfg any) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	if err := validator.Validate(cfg); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}
	return nil
}
