package bot

import (
	"fmt"
	botApi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/devhunt/devhunt-agent/internal/events"
	"github.com/devhunt/devhunt-agent/internal/notifications"
	"strings"
)

const timeLayout = "2006-01-02 15:04"

// notificationsMessage renders the feed and marks it as read.
func (b *Bot) notificationsMessage(chatID int64, args string) botApi.Chattable {
	filter, err := notifications.ParseFilter(strings.TrimSpace(args))
	if err != nil {
		return botApi.NewMessage(chatID, "Usage: /notifications [all|responses|matches]")
	}

	messages := b.deps.Feed.List(filter)
	b.deps.Feed.Open()

	if len(messages) == 0 {
		return botApi.NewMessage(chatID, "No notifications.")
	}

	lines := make([]string, 0, len(messages))
	for i, message := range messages {
		line := fmt.Sprintf("%d. %s", i+1, messageToText(message))
		if !message.Read {
			line = "* " + line
		}
		lines = append(lines, line)
	}
	return botApi.NewMessage(chatID, strings.Join(lines, "\n"))
}

func messageToText(message notifications.Message) string {
	text := message.Text
	if message.HasJobLink() {
		text += fmt.Sprintf(" (job #%s)", message.JobID)
	}
	if !message.Timestamp.IsZero() {
		text += ", " + message.Timestamp.Format(timeLayout)
	}
	return text
}

func (b *Bot) onNotificationReceived(event events.NotificationReceived) {
	if strings.TrimSpace(event.Message) == "" || event.Message == notifications.ConnectedMessage {
		return
	}

	message := notifications.ParseMessage(0, event.Message)
	msg := botApi.NewMessage(b.chatID, "New notification: "+messageToText(message))
	_, _ = sendWithLogError(b.api, msg)
}
