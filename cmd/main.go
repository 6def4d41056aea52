package main

import (
	"context"
	"github.com/asaskevich/EventBus"
	"github.com/devhunt/devhunt-agent/internal/auth"
	"github.com/devhunt/devhunt-agent/internal/bot"
	"github.com/devhunt/devhunt-agent/internal/clients/devhunt"
	"github.com/devhunt/devhunt-agent/internal/config"
	"github.com/devhunt/devhunt-agent/internal/logger"
	"github.com/devhunt/devhunt-agent/internal/metrics"
	"github.com/devhunt/devhunt-agent/internal/notifications"
	"github.com/devhunt/devhunt-agent/internal/resources"
	"github.com/devhunt/devhunt-agent/internal/services"
	"github.com/devhunt/devhunt-agent/internal/store"
	log "github.com/sirupsen/logrus"
	"os/signal"
	"syscall"
)

func openStore(ctx context.Context, cfg config.StoreConfig) (store.KeyValueStore, func() error, error) {
	switch cfg.Backend {
	case config.BackendSQLite:
		sqlite, err := store.NewSQLite(cfg.ConnectionString)
		if err != nil {
			return nil, nil, err
		}
		return store.NewCached(sqlite, cfg.CacheTTL), sqlite.Close, nil
	case config.BackendRedis:
		redis, err := store.NewRedis(ctx, cfg.RedisURL, cfg.KeyPrefix)
		if err != nil {
			return nil, nil, err
		}
		return store.NewCached(redis, cfg.CacheTTL), redis.Close, nil
	default:
		log.Warn("memory credential store: session and notification history are lost on restart")
		return store.NewMemory(), func() error { return nil }, nil
	}
}

func newManagers(client *devhunt.Client, alerts *resources.Alerts) map[string]*resources.Manager {
	managers := make(map[string]*resources.Manager)
	for name, resourceConfig := range resources.Catalog() {
		manager, err := resources.NewManager(resourceConfig, client, alerts)
		if err != nil {
			log.Fatalf("can't create %s manager: %v", name, err)
		}
		managers[name] = manager
	}
	return managers
}

func runBot(cfg config.BotConfig, bus EventBus.Bus, deps bot.Dependencies) *bot.Bot {
	tgbot, err := bot.NewBot(cfg.Token, cfg.ChatID, bus, deps)
	if err != nil {
		log.Fatalf("can't create bot: %v", err)
	}
	go tgbot.Run()
	return tgbot
}

func main() {

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Get()

	logger.Setup(ctx, cfg.Logger)
	defer logger.Cleanup()

	metrics.StartMetricsServer(cfg.Metrics.Address)

	credentials, closeStore, err := openStore(ctx, cfg.Store)
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeStore).Fatalf("can't open credential store: %v", err)
	}
	defer func() {
		if err := closeStore(); err != nil {
			log.Errorf("can't close credential store: %v", err)
		}
	}()

	bus := EventBus.New()

	client := devhunt.NewClient(cfg.API.BaseURL, credentials)
	client.SetTimeout(cfg.API.Timeout)
	client.SetRateLimit(cfg.API.MaxRequestsPerSecond)

	session, err := auth.NewSession(client, credentials, bus)
	if err != nil {
		log.Fatalf("can't create session: %v", err)
	}
	if cfg.API.Username != "" && !session.IsAuthenticated(ctx) {
		if err = session.Login(ctx, cfg.API.Username, cfg.API.Password); err != nil {
			log.WithField(logger.ErrorTypeField, logger.ErrorTypeAuth).Errorf("login failed: %v", err)
		}
	}

	refresher, err := services.NewTokenRefresher(session, cfg.API.RefreshSchedule, cfg.API.RefreshBefore)
	if err != nil {
		log.Fatalf("can't create token refresher: %v", err)
	}
	defer refresher.Stop()

	feed, err := notifications.NewFeed(ctx, credentials, bus)
	if err != nil {
		log.Fatalf("can't create notification feed: %v", err)
	}

	channel, err := notifications.NewChannel(cfg.Notifications.URL, credentials, bus)
	if err != nil {
		log.Fatalf("can't create notification channel: %v", err)
	}
	channel.SetRetryDelay(cfg.Notifications.RetryDelay)
	channel.SetDialTimeout(cfg.Notifications.DialTimeout)
	channel.SetDialer(notifications.NewWSDialer(cfg.Notifications.DialTimeout))
	channel.Connect(cfg.Notifications.Topic)
	defer channel.Close()

	alerts := resources.NewAlerts(resources.DefaultAlertTTL)
	managers := newManagers(client, alerts)

	var tgbot *bot.Bot
	if cfg.Bot.Enabled() {
		deps := bot.Dependencies{
			Session:  session,
			Feed:     feed,
			Channel:  channel,
			Managers: managers,
			Alerts:   alerts,
		}
		tgbot = runBot(cfg.Bot, bus, deps)
	} else {
		log.Info("telegram bot disabled, notifications are only logged")
	}

	<-ctx.Done()

	log.Info("Shutting down services...")
	if tgbot != nil {
		tgbot.Stop()
	}
	log.Info("Services stopped.")
}
