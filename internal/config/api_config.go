package config

import (
	"errors"
	"fmt"
	"github.com/spf13/viper"
	"net/url"
	"strings"
	"time"
)

type APIConfig struct {
	BaseURL              string        `mapstructure:"base_url"`
	Timeout              time.Duration `mapstructure:"timeout"`
	MaxRequestsPerSecond float32       `mapstructure:"max_requests_per_second"`
	Username             string        `mapstructure:"username"`
	Password             string        `mapstructure:"password"`
	RefreshSchedule      string        `mapstructure:"refresh_schedule"`
	RefreshBefore        time.Duration `mapstructure:"refresh_before"`
}

func (config *APIConfig) setDefaults() {
	viper.SetDefault("api.timeout", 20*time.Second)
	viper.SetDefault("api.refresh_schedule", "@every 1m")
	viper.SetDefault("api.refresh_before", 2*time.Minute)
}

func (config *APIConfig) validate() error {

	var errs []error

	if config.BaseURL == "" {
		errs = append(errs, fmt.Errorf("missing variable: base_url"))
	} else if u, err := url.Parse(config.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		errs = append(errs, fmt.Errorf("base_url must be an http(s) url: %q", config.BaseURL))
	}

	if config.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("timeout must be positive"))
	}

	if config.MaxRequestsPerSecond < 0 {
		errs = append(errs, fmt.Errorf("max_requests_per_second must be non-negative"))
	}

	if (config.Username == "") != (config.Password == "") {
		errs = append(errs, fmt.Errorf("username and password must be set together"))
	}

	if strings.TrimSpace(config.RefreshSchedule) == "" {
		errs = append(errs, fmt.Errorf("missing variable: refresh_schedule"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

func (config *APIConfig) bindEnvironmentVariables() error {
	return bindAll(map[string]string{
		"api.base_url": "DEVHUNT_API_URL",
		"api.username": "DEVHUNT_USERNAME",
		"api.password": "DEVHUNT_PASSWORD",
	})
}
