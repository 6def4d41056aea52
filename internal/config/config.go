package config

import (
	"errors"
	"fmt"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"os"
)

type Config struct {
	Logger        LoggerConfig        `mapstructure:"logger"`
	Metrics       MetricsConfig       `mapstructure:"metrics"`
	API           APIConfig           `mapstructure:"api"`
	Notifications NotificationsConfig `mapstructure:"notifications"`
	Store         StoreConfig         `mapstructure:"store"`
	Bot           BotConfig           `mapstructure:"bot"`
}

type section interface {
	validate() error
	bindEnvironmentVariables() error
	setDefaults()
}

var configFile = "./configs/config.yaml"

func Get() *Config {

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warnf("can't load .env file: %v", err)
	}

	file := configFile
	if value, ok := os.LookupEnv("CONFIG_PATH"); ok && value != "" {
		file = value
	}

	config, err := loadConfig(file)
	if err != nil {
		log.Fatal(err)
	}

	return config
}

func loadConfig(file string) (*Config, error) {

	viper.SetConfigFile(file)
	viper.AutomaticEnv()

	config := Config{}
	sections := config.sections()

	for _, s := range sections {
		s.section.setDefaults()
	}

	if err := bindEnvironmentVariables(sections); err != nil {
		return nil, err
	}

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", file, err)
	}

	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

type namedSection struct {
	name    string
	section section
}

func (config *Config) sections() []namedSection {
	return []namedSection{
		{"LoggerConfig", &config.Logger},
		{"MetricsConfig", &config.Metrics},
		{"APIConfig", &config.API},
		{"NotificationsConfig", &config.Notifications},
		{"StoreConfig", &config.Store},
		{"BotConfig", &config.Bot},
	}
}

func bindEnvironmentVariables(sections []namedSection) error {
	var errs []error

	for _, s := range sections {
		if err := s.section.bindEnvironmentVariables(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.name, err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("multiple errors occurred: %w", errors.Join(errs...))
	}

	return nil
}

func (config *Config) validate() error {
	var errs []error

	for _, s := range config.sections() {
		if err := s.section.validate(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.name, err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("multiple errors occurred: %w", errors.Join(errs...))
	}

	return nil
}

func bindAll(bindings map[string]string) error {
	var errs []error
	for key, env := range bindings {
		if err := viper.BindEnv(key, env); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
