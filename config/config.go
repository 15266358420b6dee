// Package config loads the service's configuration (spec C12) with
// viper: a config file plus environment overrides, following the teacher
// pack's cmd-level flag+viper pattern.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Database holds the Postgres connection settings.
type Database struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// DSN builds a libpq-style connection string from the fields above.
func (d Database) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// Config is the fully resolved set of recognized options (spec §6/4.12).
type Config struct {
	CalculationPrecision int // decimal digits, default 100
	LoggingLevel         string
	LoggingDirectory     string
	LoggingFileName      string
	Addr                 string
	Database             Database
}


// Load reads configPath (if non-empty) plus KAOSD_-prefixed environment
// variables into a Config, applying spec-mandated defaults. Dots in keys
// become underscores in variable names (logging.level -> KAOSD_LOGGING_LEVEL).
func Load(configPath string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("KAOSD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("calculation_precision", 100)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.directory", "")
	v.SetDefault("logging.file_name", "")
	v.SetDefault("addr", ":8080")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: reading %s: %w", configPath, err)
		}
	}

	return Config{
		CalculationPrecision: v.GetInt("calculation_precision"),
		LoggingLevel:         v.GetString("logging.level"),
		LoggingDirectory:     v.GetString("logging.directory"),
		LoggingFileName:      v.GetString("logging.file_name"),
		Addr:                 v.GetString("addr"),
		Database: Database{
			Host:     v.GetString("database.host"),
			Port:     v.GetInt("database.port"),
			User:     v.GetString("database.user"),
			Password: v.GetString("database.password"),
			Name:     v.GetString("database.name"),
			SSLMode:  v.GetString("database.sslmode"),
		},
	}, nil
}
