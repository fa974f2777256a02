package config

import (
	"fmt"
)

type CleanerConfig struct {
	// 0 disables the cleaner.
	VacancyExpirationDays int    `mapstructure:"vacancy_expiration_days"`
	Schedule              string `mapstructure:"schedule"`
}

func (config CleanerConfig) validate() error {
	if config.VacancyExpirationDays < 0 {
		return fmt.Errorf("vacancy_expiration_days must be non-negative")
	}
	if config.VacancyExpirationDays > 0 && config.Schedule == "" {
		return fmt.Errorf("missing variable: schedule")
	}
	return nil
}
