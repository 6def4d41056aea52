package bot

import (
	"context"
	"fmt"
	"github.com/asaskevich/EventBus"
	botApi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/devhunt/devhunt-agent/internal/events"
	"github.com/devhunt/devhunt-agent/internal/notifications"
	"github.com/devhunt/devhunt-agent/internal/resources"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
	"slices"
	"sort"
	"strings"
	"sync"
)

type Dependencies struct {
	Session  sessionService
	Feed     notificationFeed
	Channel  notificationChannel
	Managers map[string]*resources.Manager
	Alerts   alertSource
}

type sessionService interface {
	Logout(ctx context.Context, reason string) error
	HandleFailure(ctx context.Context, err error) bool
	IsAuthenticated(ctx context.Context) bool
}

type notificationFeed interface {
	List(filter notifications.Filter) []notifications.Message
	Open()
	UnreadCount() int
}

type notificationChannel interface {
	SetTopic(topic string)
	Topic() string
	IsConnected() bool
}

type resourceManager interface {
	Config() resources.ResourceConfig
	FetchAll(ctx context.Context) ([]resources.Record, error)
	Dialog() resources.Dialog
	OpenAdd() resources.Dialog
	OpenEdit(id int) (resources.Dialog, error)
	SetField(name, value string) (resources.Dialog, error)
	Submit(ctx context.Context) (resources.Record, error)
	Cancel()
	Delete(ctx context.Context, id int, confirm func(prompt string) bool) error
}

type alertSource interface {
	Latest() (resources.Alert, bool)
}

func (d *Dependencies) validate() error {
	if d.Session == nil {
		return errors.New("session is nil")
	}
	if d.Feed == nil {
		return errors.New("notification feed is nil")
	}
	if d.Channel == nil {
		return errors.New("notification channel is nil")
	}
	if len(d.Managers) == 0 {
		return errors.New("no resource managers")
	}
	if d.Alerts == nil {
		return errors.New("alerts is nil")
	}
	return nil
}

func (d *Dependencies) resourceNames() []string {
	names := lo.Keys(d.Managers)
	sort.Strings(names)
	return names
}

// Bot is the Telegram shell of the agent. It serves a single chat.
type Bot struct {
	tg     *botApi.BotAPI
	api    apiInterface
	chatID int64
	bus    EventBus.Bus
	deps   Dependencies

	mu           sync.Mutex
	userContexts map[int64]*userContext
}

const backToMenuCommandName = "Back to menu"

var globalCommands = []string{addEntryCommandName, editEntryCommandName, deleteEntryCommandName, backToMenuCommandName}

func NewBot(token string, chatID int64, bus EventBus.Bus, deps Dependencies) (*Bot, error) {

	api, err := botApi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	log.Infof("Authorized on account %s", api.Self.UserName)

	err = botApi.SetLogger(log.StandardLogger())
	if err != nil {
		return nil, err
	}

	createdBot, err := newBot(api, chatID, bus, deps)
	if err != nil {
		return nil, err
	}
	createdBot.tg = api
	return createdBot, nil
}

func newBot(api apiInterface, chatID int64, bus EventBus.Bus, deps Dependencies) (*Bot, error) {

	if bus == nil {
		return nil, errors.New("bus is nil")
	}

	if err := deps.validate(); err != nil {
		return nil, err
	}

	createdBot := &Bot{api: api, chatID: chatID, bus: bus, deps: deps, userContexts: make(map[int64]*userContext)}

	// transactional keeps forwarded notifications in receipt order
	err := bus.SubscribeAsync(events.NotificationReceivedTopic, createdBot.onNotificationReceived, true)
	if err != nil {
		return nil, err
	}
	return createdBot, nil
}

func (b *Bot) Run() {

	updateConfig := botApi.NewUpdate(0)
	updateConfig.Timeout = 60

	updates := b.tg.GetUpdatesChan(updateConfig)

	for update := range updates {

		if update.Message == nil {
			continue
		}

		if update.Message.Chat.IsGroup() || update.Message.Chat.IsSuperGroup() {
			continue
		}

		go b.handleMessage(update.Message)
	}
}

func (b *Bot) Stop() {
	if b.tg != nil {
		b.tg.StopReceivingUpdates()
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ctx := range b.userContexts {
		ctx.Cancel()
	}
}

func (b *Bot) handleMessage(message *botApi.Message) {

	if message.Chat.ID != b.chatID {
		log.Warnf("ignoring message from chat %d", message.Chat.ID)
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	cmd := message.Command()
	if cmd == "" && slices.Contains(globalCommands, message.Text) {
		cmd = message.Text
	}

	if cmd != "" {
		b.handleCommand(message.From, message.Chat, cmd, message.CommandArguments())
	} else {
		b.handleInput(message.From, message.Chat, message.Text)
	}
}

func (b *Bot) handleCommand(user *botApi.User, chat *botApi.Chat, command string, args string) {

	var response botApi.Chattable

	if b.userContexts[user.ID] == nil {
		b.userContexts[user.ID] = newUserContext(chat.ID)
	}
	var ctx = b.userContexts[user.ID]

	switch command {
	case "start", backToMenuCommandName:
		ctx.Cancel()
		delete(b.userContexts, user.ID)
		text := "Hi! I forward your DevHunt notifications and manage reference data."
		if command == backToMenuCommandName {
			text = "You are back in the main menu."
		}
		messageResponse := botApi.NewMessage(chat.ID, text)
		messageResponse.ReplyMarkup = defaultReplyKeyboard()
		response = messageResponse
	case "notifications":
		response = b.notificationsMessage(chat.ID, args)
	case "status":
		response = b.statusMessage(chat.ID)
	case "topic":
		response = b.topicMessage(chat.ID, args)
	case "list":
		response = b.listMessage(chat.ID, args)
	case "logout":
		ctx.Cancel()
		delete(b.userContexts, user.ID)
		response = b.logoutMessage(chat.ID)
	case addEntryCommandName, editEntryCommandName, deleteEntryCommandName:
		if !b.deps.Session.IsAuthenticated(context.Background()) {
			response = botApi.NewMessage(chat.ID, "You are not logged in.")
			break
		}
		cmd, err := b.createCommand(command, chat.ID)
		if err != nil {
			log.Errorf("couldn't create %s: %v", command, err)
			response = botApi.NewMessage(chat.ID, "Internal error!")
			break
		}
		ctx.RunCommand(cmd, command)
	default:
		response = botApi.NewMessage(chat.ID, "Unknown command!")
	}

	_, _ = sendWithLogError(b.api, response)
}

func (b *Bot) createCommand(name string, chatID int64) (command, error) {

	switch name {
	case addEntryCommandName:
		return newAddEntryCommand(b.api, chatID, &b.deps), nil
	case editEntryCommandName:
		return newEditEntryCommand(b.api, chatID, &b.deps), nil
	case deleteEntryCommandName:
		return newDeleteEntryCommand(b.api, chatID, &b.deps), nil
	default:
		return nil, fmt.Errorf("unknown command: %v", name)
	}
}

func (b *Bot) handleInput(user *botApi.User, chat *botApi.Chat, input string) {

	ctx := b.userContexts[user.ID]
	if ctx == nil || !ctx.HasRunningCommand() {
		_, _ = sendWithLogError(b.api, botApi.NewMessage(chat.ID, "Waiting for a command."))
		return
	}

	ctx.OnUserInput(input)
}

func (b *Bot) topicMessage(chatID int64, topic string) botApi.Chattable {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return botApi.NewMessage(chatID, fmt.Sprintf("Current topic: %s (%s)", b.deps.Channel.Topic(), connectionState(b.deps.Channel)))
	}

	b.deps.Channel.SetTopic(topic)
	return botApi.NewMessage(chatID, fmt.Sprintf("Subscribed to %s (%s)", topic, connectionState(b.deps.Channel)))
}

func (b *Bot) statusMessage(chatID int64) botApi.Chattable {
	text := fmt.Sprintf("Topic: %s (%s)\nUnread notifications: %d",
		b.deps.Channel.Topic(), connectionState(b.deps.Channel), b.deps.Feed.UnreadCount())
	if !b.deps.Session.IsAuthenticated(context.Background()) {
		text += "\nYou are not logged in."
	}
	return botApi.NewMessage(chatID, text)
}

func (b *Bot) listMessage(chatID int64, name string) botApi.Chattable {
	manager, found := b.deps.Managers[strings.TrimSpace(name)]
	if !found {
		return botApi.NewMessage(chatID, "Usage: /list <resource>\nResources: "+strings.Join(b.deps.resourceNames(), ", "))
	}

	config := manager.Config()
	records, err := manager.FetchAll(context.Background())
	if err != nil {
		if b.deps.Session.HandleFailure(context.Background(), err) {
			return botApi.NewMessage(chatID, "Your session has expired. Log in again to continue.")
		}
		return botApi.NewMessage(chatID, fmt.Sprintf("Failed to fetch %ss", config.ItemName))
	}

	if len(records) == 0 {
		return botApi.NewMessage(chatID, fmt.Sprintf("There are no %ss yet.", config.ItemName))
	}
	return botApi.NewMessage(chatID, fmt.Sprintf("%ss:\n%s", config.ItemName, recordsToText(config, records)))
}

func (b *Bot) logoutMessage(chatID int64) botApi.Chattable {
	if err := b.deps.Session.Logout(context.Background(), "logout requested from chat"); err != nil {
		log.Errorf("logout: %v", err)
		return botApi.NewMessage(chatID, "Logged out, but some credentials could not be removed.")
	}
	return botApi.NewMessage(chatID, "Logged out.")
}

func connectionState(channel notificationChannel) string {
	if channel.IsConnected() {
		return "connected"
	}
	return "disconnected"
}

func defaultReplyKeyboard() botApi.ReplyKeyboardMarkup {
	return botApi.NewReplyKeyboard(
		botApi.NewKeyboardButtonRow(
			botApi.NewKeyboardButton(addEntryCommandName),
			botApi.NewKeyboardButton(editEntryCommandName),
			botApi.NewKeyboardButton(deleteEntryCommandName),
		),
	)
}

func keyboardWithExit() botApi.ReplyKeyboardMarkup {
	return botApi.NewReplyKeyboard(
		botApi.NewKeyboardButtonRow(
			botApi.NewKeyboardButton(backToMenuCommandName),
		),
	)
}
