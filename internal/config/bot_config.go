package config

import "errors"

type BotConfig struct {
	Token  string `mapstructure:"token"`
	ChatID int64  `mapstructure:"chat_id"`
}

func (config *BotConfig) Enabled() bool {
	return config.Token != ""
}

func (config *BotConfig) setDefaults() {}

func (config *BotConfig) validate() error {
	if config.Enabled() && config.ChatID == 0 {
		return errors.New("chat_id is required when token is set")
	}
	return nil
}

func (config *BotConfig) bindEnvironmentVariables() error {
	return bindAll(map[string]string{
		"bot.token":   "TG_TOKEN",
		"bot.chat_id": "TG_CHAT_ID",
	})
}
