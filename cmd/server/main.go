package main

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/nexoapp/nexo/internal/auth"
	"github.com/nexoapp/nexo/internal/config"
	"github.com/nexoapp/nexo/internal/events"
	eventskafka "github.com/nexoapp/nexo/internal/events/kafka"
	"github.com/nexoapp/nexo/internal/server"
	"github.com/nexoapp/nexo/internal/service"
	"github.com/nexoapp/nexo/internal/storage/sqlite"
	"github.com/nexoapp/nexo/internal/ws"
	"github.com/nexoapp/nexo/pkg/logging"
)

func main() {
	logging.Setup()
	cfg := config.Load()

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		slog.Error("failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("storage initialized", "database", cfg.DBPath)

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)
	authenticator := auth.NewPasswordAuthenticator(store)

	// Websocket hub pushes notifications to connected clients; Kafka is
	// layered on when brokers are configured.
	hub := ws.NewHub(slog.Default(), func(*http.Request) bool { return true })
	go hub.Ping(30 * time.Second)

	var publisher events.Publisher = hub
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPub := eventskafka.NewPublisher(cfg.KafkaBrokers)
		defer kafkaPub.Close()
		publisher = events.Multi{hub, kafkaPub}
		slog.Info("kafka publisher enabled", "brokers", cfg.KafkaBrokers)
	}

	notifications := service.NewNotificationService(store, publisher)
	wallet := service.NewWalletService(store, notifications)

	services := server.Services{
		Auth:          service.NewAuthService(authenticator, jwtManager, store, slog.Default()),
		Expenses:      service.NewExpenseService(store, notifications),
		Wallet:        wallet,
		Friends:       service.NewFriendService(store),
		Groups:        service.NewGroupService(store),
		Reminders:     service.NewReminderService(store, wallet, notifications),
		Notifications: notifications,
		Budgets:       service.NewBudgetService(store),
		Badges:        service.NewBadgeService(store),
	}

	handler := server.New(services, jwtManager, hub, cfg.AllowedOrigins)

	slog.Info("server starting", "addr", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, handler); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
