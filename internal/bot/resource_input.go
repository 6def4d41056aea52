package bot

import (
	"fmt"
	botApi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"strconv"
	"strings"
)

type resourceInput struct {
	chatID   int64
	names    []string
	onFinish func(name string)
}

func newResourceInput(chatID int64, names []string, onFinish func(name string)) *resourceInput {
	return &resourceInput{chatID: chatID, names: names, onFinish: onFinish}
}

func (r *resourceInput) InitMessage() botApi.Chattable {
	text := "Choose a resource (number or name):\n"
	for i, name := range r.names {
		text += fmt.Sprintf("%d: %s\n", i+1, name)
	}

	msg := botApi.NewMessage(r.chatID, text)
	msg.ReplyMarkup = keyboardWithExit()
	return msg
}

func (r *resourceInput) HandleInput(input string) botApi.Chattable {
	input = strings.TrimSpace(input)

	if number, err := strconv.Atoi(input); err == nil {
		if number < 1 || number > len(r.names) {
			return botApi.NewMessage(r.chatID, "No resource with that number.")
		}
		r.onFinish(r.names[number-1])
		return nil
	}

	for _, name := range r.names {
		if strings.EqualFold(name, input) {
			r.onFinish(name)
			return nil
		}
	}
	return botApi.NewMessage(r.chatID, "No resource with that name.")
}
