package bot

import (
	"fmt"
	botApi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/devhunt/devhunt-agent/internal/resources"
	"strings"
)

// keepValue keeps the current (or suggested) value of a field.
const keepValue = "-"

type validation struct {
	function     func(input string) bool
	errorMessage string
}

// fieldInput asks for one form field. Sending keepValue leaves the current value in place,
// onFinish then gets kept=true.
type fieldInput struct {
	chatID      int64
	field       resources.FieldSpec
	current     string
	onFinish    func(value string, kept bool)
	validations []validation
}

func newFieldInput(chatID int64, field resources.FieldSpec, current string, onFinish func(value string, kept bool)) *fieldInput {
	input := &fieldInput{chatID: chatID, field: field, current: current, onFinish: onFinish}

	if field.Required {
		input.AddValidation(validation{
			function: func(value string) bool {
				if value == keepValue {
					return current != ""
				}
				return strings.TrimSpace(value) != ""
			},
			errorMessage: fmt.Sprintf("%s is required.", field.DisplayName()),
		})
	}
	return input
}

func (a *fieldInput) AddValidation(validation validation) {
	a.validations = append(a.validations, validation)
}

func (a *fieldInput) prompt() string {
	prompt := fmt.Sprintf("Enter %s", strings.ToLower(a.field.DisplayName()))
	if a.current != "" {
		prompt += fmt.Sprintf(" (send %s to keep \"%s\")", keepValue, a.current)
	}
	return prompt
}

func (a *fieldInput) InitMessage() botApi.Chattable {
	msg := botApi.NewMessage(a.chatID, a.prompt())
	msg.ReplyMarkup = keyboardWithExit()
	return msg
}

func (a *fieldInput) HandleInput(input string) botApi.Chattable {

	for _, _validation := range a.validations {
		if !_validation.function(input) {
			return botApi.NewMessage(a.chatID, _validation.errorMessage)
		}
	}

	if input == keepValue {
		a.onFinish(a.current, true)
		return nil
	}
	a.onFinish(strings.TrimSpace(input), false)
	return nil
}
