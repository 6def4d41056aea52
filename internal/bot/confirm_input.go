package bot

import (
	botApi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"strings"
)

const (
	yesAnswer = "Yes"
	noAnswer  = "No"
)

type confirmInput struct {
	chatID   int64
	prompt   string
	onFinish func(confirmed bool)
}

func newConfirmInput(chatID int64, prompt string, onFinish func(confirmed bool)) *confirmInput {
	return &confirmInput{chatID: chatID, prompt: prompt, onFinish: onFinish}
}

func (c *confirmInput) InitMessage() botApi.Chattable {
	msg := botApi.NewMessage(c.chatID, c.prompt)
	msg.ReplyMarkup = botApi.NewReplyKeyboard(
		botApi.NewKeyboardButtonRow(
			botApi.NewKeyboardButton(yesAnswer),
			botApi.NewKeyboardButton(noAnswer),
		),
		botApi.NewKeyboardButtonRow(
			botApi.NewKeyboardButton(backToMenuCommandName),
		),
	)
	return msg
}

func (c *confirmInput) HandleInput(input string) botApi.Chattable {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "yes", "y":
		c.onFinish(true)
	case "no", "n":
		c.onFinish(false)
	default:
		return botApi.NewMessage(c.chatID, "Answer yes or no.")
	}
	return nil
}
