package config

import (
	"errors"
	"fmt"
	"github.com/spf13/viper"
	"net/url"
	"time"
)

type NotificationsConfig struct {
	URL         string        `mapstructure:"url"`
	Topic       string        `mapstructure:"topic"`
	RetryDelay  time.Duration `mapstructure:"retry_delay"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
}

func (config *NotificationsConfig) setDefaults() {
	viper.SetDefault("notifications.topic", "new_application")
	viper.SetDefault("notifications.retry_delay", 5*time.Second)
	viper.SetDefault("notifications.dial_timeout", 10*time.Second)
}

func (config *NotificationsConfig) validate() error {

	var errs []error

	if config.URL == "" {
		errs = append(errs, fmt.Errorf("missing variable: url"))
	} else if u, err := url.Parse(config.URL); err != nil || (u.Scheme != "ws" && u.Scheme != "wss") {
		errs = append(errs, fmt.Errorf("url must be a ws(s) url: %q", config.URL))
	}

	if config.Topic == "" {
		errs = append(errs, fmt.Errorf("missing variable: topic"))
	}

	if config.RetryDelay <= 0 {
		errs = append(errs, fmt.Errorf("retry_delay must be positive"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

func (config *NotificationsConfig) bindEnvironmentVariables() error {
	return bindAll(map[string]string{
		"notifications.url":   "DEVHUNT_WS_URL",
		"notifications.topic": "DEVHUNT_WS_TOPIC",
	})
}
