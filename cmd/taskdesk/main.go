package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/taskdesk/internal/api"
	"github.com/terraincognita07/taskdesk/internal/bridge"
	"github.com/terraincognita07/taskdesk/internal/cli"
	"github.com/terraincognita07/taskdesk/internal/config"
	"github.com/terraincognita07/taskdesk/internal/db"
	"github.com/terraincognita07/taskdesk/internal/gateway"
	"github.com/terraincognita07/taskdesk/internal/i18n"
	"github.com/terraincognita07/taskdesk/internal/logging"
	"github.com/terraincognita07/taskdesk/internal/security"
	"github.com/terraincognita07/taskdesk/internal/services"
	"go.uber.org/zap"
)

const (
	commandServe          = "serve"
	commandResetPassword  = "reset-password"
	commandBootstrapAdmin = "bootstrap-admin"
)

const usage = `usage:
  taskdesk [serve]
  taskdesk reset-password <username>
  taskdesk bootstrap-admin <username>`

type invocation struct {
	command  string
	username string
}

func main() {
	inv, err := parseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, inv, cfg, logger); err != nil {
		logger.Error("taskdesk exited", zap.String("command", inv.command), zap.Error(err))
		stop()
		os.Exit(1)
	}
}

func parseArgs(args []string) (invocation, error) {
	if len(args) == 0 {
		return invocation{command: commandServe}, nil
	}

	switch args[0] {
	case commandServe:
		if len(args) != 1 {
			return invocation{}, errors.New("serve takes no arguments")
		}
		return invocation{command: commandServe}, nil
	case commandResetPassword, commandBootstrapAdmin:
		if len(args) != 2 || args[1] == "" {
			return invocation{}, fmt.Errorf("%s requires exactly one username", args[0])
		}
		return invocation{command: args[0], username: args[1]}, nil
	default:
		return invocation{}, fmt.Errorf("unknown command %q", args[0])
	}
}

func run(ctx context.Context, inv invocation, cfg *config.Config, logger *zap.Logger) error {
	options := cli.Options{
		DBPath:     cfg.DBPath,
		BcryptCost: cfg.BcryptCost,
		Logger:     logger,
		Out:        os.Stdout,
	}

	switch inv.command {
	case commandResetPassword:
		return cli.RunResetPasswordCommand(ctx, options, inv.username)
	case commandBootstrapAdmin:
		return cli.RunBootstrapAdminCommand(ctx, options, inv.username, cli.TerminalPasswordReader)
	default:
		return serve(ctx, cfg, logger)
	}
}

func serve(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	store, err := db.Open(ctx, cfg.DBPath, logger)
	if err != nil {
		return fmt.Errorf("database init failed: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("close store", zap.Error(err))
		}
	}()

	secret, err := cfg.SessionSecret()
	if err != nil {
		return err
	}
	issuer, err := security.NewTokenIssuer(secret, cfg.SessionTTL)
	if err != nil {
		return fmt.Errorf("session tokens: %w", err)
	}

	messages, err := i18n.NewManager(cfg.Language, i18n.Locales)
	if err != nil {
		return fmt.Errorf("i18n init failed: %w", err)
	}

	repos := store.Repositories()
	commands, err := gateway.New(gateway.Dependencies{
		Credentials: services.NewCredentialService(repos.Users, services.NewPasswordHasher(cfg.BcryptCost)),
		Tasks:       services.NewTaskService(repos.Tasks, repos.Users),
		Sessions:    issuer,
		Messages:    messages,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	broker, err := bridge.StartBroker(bridge.BrokerConfig{Host: cfg.Bridge.Host, Port: cfg.Bridge.Port}, logger)
	if err != nil {
		return err
	}
	defer broker.Shutdown()

	bridgeServer, err := bridge.NewServer(broker.ClientURL(), commands, logger)
	if err != nil {
		return err
	}
	defer bridgeServer.Close()
	if err := bridgeServer.Start(); err != nil {
		return err
	}

	logger.Info("taskdesk ready",
		zap.String("db", store.Path()),
		zap.String("bridge", broker.ClientURL()),
		zap.Bool("http", cfg.HTTP.Enabled),
	)

	if !cfg.HTTP.Enabled {
		<-ctx.Done()
		return nil
	}
	return serveHTTP(ctx, cfg, api.NewApp(api.NewHandler(commands, messages), logger), logger)
}

func serveHTTP(ctx context.Context, cfg *config.Config, app *fiber.App, logger *zap.Logger) error {
	listenErr := make(chan error, 1)
	go func() {
		logger.Info("http listening", zap.String("addr", cfg.HTTPAddr()))
		listenErr <- app.Listen(cfg.HTTPAddr())
	}()

	select {
	case err := <-listenErr:
		return fmt.Errorf("http server exited: %w", err)
	case <-ctx.Done():
	}

	timeout := cfg.HTTP.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown failed: %w", err)
	}
	return nil
}
