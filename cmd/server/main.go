package main

import (
	"context"
	"errors"
	"fintrack/auth"
	"fintrack/gateway"
	"fintrack/httpapi"
	"fintrack/presence"
	"fintrack/relay"
	"fintrack/repositories"
	"fintrack/services"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
	"github.com/nats-io/nats.go"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and
// centralizes error reporting so every defer executes before exit.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load() // a missing .env file is fine, real env wins anyway
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Database (BadgerDB)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 3. Repositories & Services
	users := repositories.NewUserRepository(db)
	messages := repositories.NewMessageRepository(db, log)
	budgets := repositories.NewBudgetRepository(db)
	transactions := repositories.NewTransactionRepository(db)

	tokens := auth.NewTokenManager(config.JWTSecret, config.JWTTTL)
	authService := services.NewAuthService(users, tokens)
	budgetService := services.NewBudgetService(budgets)
	transactionService := services.NewTransactionService(transactions, budgets)
	dashboardService := services.NewDashboardService(transactions)
	conversationService := services.NewConversationService(messages, users, log)

	// 4. Presence Directory & Message Relay
	// A reachable NATS gives cross-process presence and delivery. When it is
	// down the process still serves traffic in single-process degraded mode;
	// the client keeps reconnecting in the background for the relay.
	directory, deliveryRelay, cleanup := connectMessaging(config, log)
	defer cleanup()

	gw := gateway.New(directory, deliveryRelay, conversationService, users, tokens, log)

	// 5. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 6. Start the gateway before exposing the websocket endpoint: the relay
	// subscription must be live first or early messages would be lost.
	if err := gw.Start(ctx); err != nil {
		return fmt.Errorf("gateway failed to start: %w", err)
	}
	defer gw.Close()

	api := httpapi.NewServer(
		authService, budgetService, transactionService,
		dashboardService, conversationService, gw, tokens, log,
	)

	// 7. HTTP Server
	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	server := &http.Server{
		Addr:              address,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "address", address, "at", time.Now().UTC())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	// 8. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	// 9. Final Cleanup
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn("HTTP shutdown did not finish cleanly", "error", err)
	}
	log.Info("Program stopped cleanly")

	return nil
}

// connectMessaging wires the shared directory and relay on NATS, falling
// back to in-process implementations when the broker is unreachable. The
// returned cleanup drains the connection on shutdown.
func connectMessaging(config Config, log *slog.Logger) (presence.Directory, relay.Relay, func()) {
	nc, err := nats.Connect(config.NatsURL,
		nats.Timeout(config.NatsTimeout),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn("NATS disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("NATS reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		log.Warn("NATS unreachable, running in single-process degraded mode",
			"url", config.NatsURL, "error", err)
		return presence.NewMemoryDirectory(), relay.NewMemoryRelay(), func() {}
	}

	js, err := nc.JetStream()
	if err != nil {
		log.Warn("JetStream unavailable, running in single-process degraded mode", "error", err)
		nc.Close()
		return presence.NewMemoryDirectory(), relay.NewMemoryRelay(), func() {}
	}
	directory, err := presence.NewKVDirectory(js)
	if err != nil {
		log.Warn("Presence bucket unavailable, running in single-process degraded mode", "error", err)
		nc.Close()
		return presence.NewMemoryDirectory(), relay.NewMemoryRelay(), func() {}
	}

	log.Info("Connected to NATS", "url", nc.ConnectedUrl())
	cleanup := func() {
		log.Info("Draining NATS connection...")
		if err := nc.Drain(); err != nil {
			nc.Close()
		}
	}
	return directory, relay.NewNATSRelay(nc), cleanup
}
