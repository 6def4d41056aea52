package bot

import (
	"context"
	"fmt"
	botApi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/devhunt/devhunt-agent/internal/resources"
	"github.com/pkg/errors"
	"strconv"
	"strings"
)

var errNoRecords = errors.New("resource has no records")

type recordInput struct {
	chatID   int64
	config   resources.ResourceConfig
	records  []resources.Record
	onFinish func(record resources.Record)
}

func newRecordInput(chatID int64, manager resourceManager, onFinish func(record resources.Record)) (*recordInput, error) {
	records, err := manager.FetchAll(context.Background())
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, errNoRecords
	}
	return &recordInput{chatID: chatID, config: manager.Config(), records: records, onFinish: onFinish}, nil
}

func (r *recordInput) InitMessage() botApi.Chattable {
	text := fmt.Sprintf("Enter the ID of the %s:\n", strings.ToLower(r.config.ItemName))
	text += recordsToText(r.config, r.records)

	msg := botApi.NewMessage(r.chatID, text)
	msg.ReplyMarkup = keyboardWithExit()
	return msg
}

func (r *recordInput) HandleInput(input string) botApi.Chattable {

	id, err := strconv.Atoi(strings.TrimPrefix(strings.TrimSpace(input), "#"))
	if err != nil {
		return botApi.NewMessage(r.chatID, "Enter a number!")
	}

	for _, record := range r.records {
		if record.ID == id {
			r.onFinish(record)
			return nil
		}
	}
	return botApi.NewMessage(r.chatID, fmt.Sprintf("No %s with that ID.", strings.ToLower(r.config.ItemName)))
}

// recordsToText renders one line per record, ID first, then the fields in configured order.
func recordsToText(config resources.ResourceConfig, records []resources.Record) (text string) {
	for _, record := range records {
		parts := []string{"#" + strconv.Itoa(record.ID)}
		for _, field := range config.Fields {
			parts = append(parts, record.Get(field.Name))
		}
		text += strings.Join(parts, " | ") + "\n"
	}
	return text
}
