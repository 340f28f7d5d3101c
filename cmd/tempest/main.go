package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tempest-bot/internal/bot"
	"tempest-bot/internal/config"
	"tempest-bot/internal/health"
	"tempest-bot/internal/storage"

	cli "github.com/urfave/cli/v2"
	_ "go.uber.org/automaxprocs"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	app := cli.App{
		Name:  "tempest",
		Usage: "community bot: keyword replies, welcomes, moderation and broadcasts",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "path to the YAML config file",
				Value:   "config.yaml",
				EnvVars: []string{"CONFIG_PATH"},
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "debug, info, warn or error (overrides config)",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cctx *cli.Context) error {
	cfg, err := config.Load(cctx.String("config"))
	if err != nil {
		return err
	}
	if cctx.IsSet("log-level") {
		cfg.LogLevel = cctx.String("log-level")
	}

	logger, err := config.BuildLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	ctx, stop := signal.NotifyContext(cctx.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	checks := map[string]health.Check{}
	var settings storage.Settings = storage.NewMemory()
	if cfg.DatabaseURL != "" {
		store, err := storage.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("storage init failed", zap.Error(err))
		}
		defer store.Close()
		if err := store.Migrate(ctx); err != nil {
			logger.Fatal("migrations failed", zap.Error(err))
		}
		settings = store
		checks["database"] = store.Ping
	} else {
		logger.Info("no database configured, guild settings are kept in memory")
	}

	botSvc, err := bot.New(cfg, logger, settings)
	if err != nil {
		logger.Fatal("bot init failed", zap.Error(err))
	}
	if err := botSvc.Start(); err != nil {
		logger.Fatal("bot start failed", zap.Error(err))
	}
	logger.Info("bot started")
	checks["discord"] = botSvc.Ready

	g, gctx := errgroup.WithContext(ctx)
	if cfg.Health.Enabled {
		server := health.NewServer(cfg.Health.Addr, checks, logger)
		g.Go(server.Start)
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutdown requested")
		return nil
	})

	err = g.Wait()
	botSvc.Close()
	return err
}
