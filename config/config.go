/*
Package config loads the service configuration.

Values come from a YAML file when one is given, with environment variables
overriding. Missing required values are a configuration error and abort the
process before any table I/O happens.
*/
package config

import (
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env         string `yaml:"env" env:"APP_ENV" env-default:"prod"`
	StoragePath string `yaml:"storage_path" env:"STORAGE_PATH" env-required:"true"`

	HTTPServer `yaml:"http_server"`

	// Backing-store retry policy for transient failures.
	RetryAttempts int           `yaml:"retry_attempts" env:"RETRY_ATTEMPTS" env-default:"3"`
	RetryDelay    time.Duration `yaml:"retry_delay" env:"RETRY_DELAY" env-default:"2s"`

	// DailyTarget adds the recommended-daily-amount column to the output.
	DailyTarget bool `yaml:"daily_target" env:"DAILY_TARGET" env-default:"false"`
}

type HTTPServer struct {
	Address     string        `yaml:"address" env:"HTTP_ADDRESS" env-default:"localhost:4010"`
	Timeout     time.Duration `yaml:"timeout" env:"HTTP_TIMEOUT" env-default:"10s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
}

// Load reads the configuration, from path when non-empty, otherwise from the
// environment alone.
func Load(path string) (*Config, error) {
	var cfg Config
	var err error
	if path != "" {
		err = cleanenv.ReadConfig(path, &cfg)
	} else {
		err = cleanenv.ReadEnv(&cfg)
	}
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}
