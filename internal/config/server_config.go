package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// ServerConfig configures the serve command. RunSchedule is a cron spec for running
// all active tasks, empty disables scheduled runs.
type ServerConfig struct {
	Port          int           `mapstructure:"port"`
	StatsCacheTTL time.Duration `mapstructure:"stats_cache_ttl"`
	RunSchedule   string        `mapstructure:"run_schedule"`
}

func (config ServerConfig) validate() error {
	if config.Port <= 0 || config.Port > 65535 {
		return fmt.Errorf("invalid port: %d", config.Port)
	}
	return nil
}

func (config ServerConfig) bindEnvironmentVariables() error {
	var errs []error
	if err := viper.BindEnv("server.port", "PORT"); err != nil {
		errs = append(errs, err)
	}
	if err := viper.BindEnv("server.run_schedule", "RUN_SCHEDULE"); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
