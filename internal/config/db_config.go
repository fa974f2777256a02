package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

type DBConfig struct {
	ConnectionString string `mapstructure:"connection_string"`
	// LogQueries switches the gorm logger from errors only to every statement.
	LogQueries bool `mapstructure:"log_queries"`
}

func (config DBConfig) validate() error {
	if config.ConnectionString == "" {
		return fmt.Errorf("missing variable: db connection string")
	}
	return nil
}

func (config DBConfig) bindEnvironmentVariables() error {
	return errors.Join(
		viper.BindEnv("db.connection_string", "DB_CONNECTION_STRING"),
		viper.BindEnv("db.log_queries", "DB_LOG_QUERIES"),
	)
}
