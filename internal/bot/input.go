package bot

import botApi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

// inputHandler is one step of a flow. HandleInput returns a reply to send when the
// step stays current (usually a validation error) or nil when the step is done.
type inputHandler interface {
	InitMessage() botApi.Chattable
	HandleInput(input string) botApi.Chattable
}
