package bot

import (
	"context"
	"fmt"
	botApi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/devhunt/devhunt-agent/internal/resources"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// entryFlow is the step machine shared by the add, edit and delete commands.
// Each step is an inputHandler; a step moves the flow on by replacing curInput.
type entryFlow struct {
	api                  apiInterface
	chatID               int64
	deps                 *Dependencies
	manager              resourceManager
	curInput             inputHandler
	finished             bool
	finishCallback       func()
	finalMessageKeyboard *botApi.ReplyKeyboardMarkup
}

func newEntryFlow(api apiInterface, chatID int64, deps *Dependencies) entryFlow {
	return entryFlow{api: api, chatID: chatID, deps: deps}
}

func (f *entryFlow) WithFinishCallback(callback func()) {
	f.finishCallback = callback
}

func (f *entryFlow) WithKeyboardOnFinalMessage(keyboard botApi.ReplyKeyboardMarkup) {
	f.finalMessageKeyboard = &keyboard
}

func (f *entryFlow) Run() {
	_, _ = sendWithLogError(f.api, f.curInput.InitMessage())
}

func (f *entryFlow) OnUserInput(input string) {

	previousInput := f.curInput
	msg := f.curInput.HandleInput(input)

	if f.finished {
		return
	}

	if f.curInput == previousInput {
		_, _ = sendWithLogError(f.api, msg)
		return
	}

	_, _ = sendWithLogError(f.api, f.curInput.InitMessage())
}

func (f *entryFlow) Cancel() {
	if f.manager != nil {
		f.manager.Cancel()
	}
}

func (f *entryFlow) selectResource(name string) {
	f.manager = f.deps.Managers[name]
}

func (f *entryFlow) next(input inputHandler) {
	f.curInput = input
}

func (f *entryFlow) finish(text string) {
	msg := botApi.NewMessage(f.chatID, text)
	if f.finalMessageKeyboard != nil {
		msg.ReplyMarkup = f.finalMessageKeyboard
	}
	_, _ = sendWithLogError(f.api, msg)

	f.finished = true
	if f.finishCallback != nil {
		f.finishCallback()
	}
}

// fieldInput asks for the field at index, then for the next one or submits.
func (f *entryFlow) fieldInput(index int) inputHandler {
	config := f.manager.Config()
	field := config.Fields[index]

	return newFieldInput(f.chatID, field, f.manager.Dialog().Values[field.Name], func(value string, kept bool) {
		if !kept {
			if _, err := f.manager.SetField(field.Name, value); err != nil {
				f.fail(err)
				return
			}
		}

		if index+1 < len(config.Fields) {
			f.next(f.fieldInput(index + 1))
			return
		}
		f.submit()
	})
}

// submit sends the dialog. On a rejected submit the form starts over with the entered values kept.
func (f *entryFlow) submit() {
	item := f.manager.Config().ItemName

	record, err := f.manager.Submit(context.Background())
	if err != nil {
		text, sessionEnded := f.describeFailure(err)
		if sessionEnded {
			f.finish(text)
			return
		}
		_, _ = sendWithLogError(f.api, botApi.NewMessage(f.chatID, text+"\nCheck the values and send them again."))
		f.next(f.fieldInput(0))
		return
	}

	if record.ID == 0 {
		f.finish(fmt.Sprintf("%s saved.", item))
		return
	}
	f.finish(fmt.Sprintf("%s #%d saved.", item, record.ID))
}

func (f *entryFlow) fail(err error) {
	text, _ := f.describeFailure(err)
	f.Cancel()
	f.finish(text)
}

// describeFailure ends the session on authorization failures, otherwise it returns
// the alert the manager raised for err.
func (f *entryFlow) describeFailure(err error) (string, bool) {
	if f.deps.Session.HandleFailure(context.Background(), err) {
		return "Your session has expired. Log in again to continue.", true
	}

	if alert, found := f.deps.Alerts.Latest(); found && alert.Severity != resources.SeveritySuccess {
		return alert.Text, false
	}

	if !errors.Is(err, resources.ErrValidation) {
		log.Errorf("entry flow: %v", err)
	}
	return "Internal error!", false
}
