package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/pribylovaa/account-client/internal/api"
	"github.com/pribylovaa/account-client/internal/app"
	"github.com/pribylovaa/account-client/internal/config"
	logctx "github.com/pribylovaa/account-client/internal/pkg/log"
	"github.com/pribylovaa/account-client/internal/session"
	"github.com/pribylovaa/account-client/internal/session/file"
	redisstore "github.com/pribylovaa/account-client/internal/session/redis"
	"github.com/pribylovaa/account-client/internal/terminal"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

const usage = `usage: account-client [--config path] <command> [flags]

commands:
  login     [--email e] [--password p] [--show-password]
  register  [--email e] [--password p] [--show-password]
  me        show profile (protected page)
  refresh   exchange refresh token for a new access token
  logout    remove session cookies
  status    show session state without calling the API
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	global := flag.NewFlagSet("account-client", flag.ContinueOnError)
	global.SetOutput(stderr)
	global.Usage = func() { fmt.Fprint(stderr, usage) }

	var configPath string
	global.StringVar(&configPath, "config", "", "path to config file (overrides CONFIG_PATH env)")
	if err := global.Parse(args); err != nil {
		return 2
	}

	rest := global.Args()
	if len(rest) == 0 {
		global.Usage()
		return 2
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		setupLogger(envProd, stderr).Error("config_load_failed", slog.String("err", err.Error()))
		return 1
	}

	log := setupLogger(cfg.Env, stderr)
	slog.SetDefault(log)
	log.Debug("starting account-client", "env", cfg.Env, "command", rest[0])

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	ctx = logctx.Into(ctx, log)

	store, err := openStore(ctx, cfg.Session)
	if err != nil {
		log.Error("session_store_init_failed", slog.String("backend", cfg.Session.Backend), slog.String("err", err.Error()))
		return 1
	}

	defer func() {
		if cerr := store.Close(); cerr != nil {
			log.Warn("session_store_close_failed", slog.String("err", cerr.Error()))
		}
	}()

	client, err := api.New(api.Options{
		BaseURL:   cfg.API.BaseURL,
		Timeout:   cfg.API.Timeout,
		UserAgent: cfg.API.UserAgent,
		Logger:    log,
	})
	if err != nil {
		log.Error("api_client_init_failed", slog.String("err", err.Error()))
		return 1
	}

	view := terminal.NewView(stdout, stderr, log)
	a := app.New(app.Deps{
		API:             client,
		Store:           store,
		View:            view,
		RefreshOnExpiry: cfg.Auth.RefreshOnExpiry,
	})

	cmd := &commands{app: a, view: view, stdout: stdout, stderr: stderr}
	if err := cmd.dispatch(ctx, rest[0], rest[1:]); err != nil {
		if errors.Is(err, errUnknownCommand) {
			global.Usage()
			return 2
		}

		log.Debug("command_failed", slog.String("command", rest[0]), slog.String("err", err.Error()))
		return 1
	}

	return 0
}

// openStore выбирает бэкенд хранилища cookie по конфигу.
func openStore(ctx context.Context, cfg config.SessionConfig) (session.Store, error) {
	switch cfg.Backend {
	case config.SessionBackendRedis:
		st, err := redisstore.New(ctx, cfg.RedisURL, cfg.RedisPrefix)
		if err != nil {
			return nil, err
		}
		return st, nil
	default:
		path, err := cfg.CookiePath()
		if err != nil {
			return nil, err
		}

		st, err := file.New(path)
		if err != nil {
			return nil, err
		}
		return st, nil
	}
}

// setupLogger пишет в stderr: stdout занят результатом команды.
func setupLogger(env string, w io.Writer) *slog.Logger {
	switch env {
	case envLocal:
		return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envDev:
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envProd:
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}
