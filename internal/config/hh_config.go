package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type HHConfig struct {
	BaseURL              string        `mapstructure:"base_url"`
	UserAgent            string        `mapstructure:"user_agent"`
	Timeout              time.Duration `mapstructure:"timeout"`
	PageDelay            time.Duration `mapstructure:"page_delay"`
	MaxRequestsPerSecond float32       `mapstructure:"max_requests_per_second"`
}

func (config HHConfig) validate() error {
	var errs []error

	if config.BaseURL == "" {
		errs = append(errs, fmt.Errorf("missing variable: base_url"))
	}
	if config.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("timeout must be positive"))
	}
	if config.PageDelay < 0 {
		errs = append(errs, fmt.Errorf("page_delay must be non-negative"))
	}
	if config.MaxRequestsPerSecond < 0 {
		errs = append(errs, fmt.Errorf("max_requests_per_second must be non-negative"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("multiple errors occurred: %w", errors.Join(errs...))
	}

	return nil
}

func (config HHConfig) bindEnvironmentVariables() error {
	var errs []error
	if err := viper.BindEnv("hh.base_url", "HH_BASE_URL"); err != nil {
		errs = append(errs, err)
	}

	if err := viper.BindEnv("hh.user_agent", "HH_USER_AGENT"); err != nil {
		errs = append(errs, err)
	}

	if err := viper.BindEnv("hh.max_requests_per_second", "HH_MAX_REQUESTS_PER_SECOND"); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}
