package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taxiorders/config"
	"taxiorders/pkg/api"
	"taxiorders/pkg/bot"
	"taxiorders/pkg/logger"
	"taxiorders/service"
	"taxiorders/storage"
	"taxiorders/storage/memory"
	"taxiorders/storage/postgres"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.ServiceName, cfg.LoggerLevel)

	stg, err := newStorage(cfg, log)
	if err != nil {
		log.Error("failed to init storage", logger.String("driver", cfg.StorageDriver), logger.Error(err))
		os.Exit(1)
	}
	defer stg.Close()

	svc := service.New(stg, cfg, log)

	srv := api.NewServer(cfg, api.NewRouter(api.NewHandler(svc, log), cfg.GinMode))
	go func() {
		log.Info("http server starting", logger.Int("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server stopped", logger.Error(err))
			os.Exit(1)
		}
	}()

	var tgBot *bot.Bot
	if cfg.TelegramBotToken != "" {
		tgBot, err = bot.New(&cfg, svc, log)
		if err != nil {
			log.Error("failed to init telegram bot", logger.Error(err))
			os.Exit(1)
		}
		go tgBot.Start()
	} else {
		log.Info("TG_BOT_TOKEN is empty, telegram bot disabled")
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")

	if tgBot != nil {
		tgBot.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("http server forced to shutdown", logger.Error(err))
	}
}

func newStorage(cfg config.Config, log logger.ILogger) (storage.IStorage, error) {
	switch cfg.StorageDriver {
	case config.StorageMemory:
		log.Warning("using in-memory storage, data is lost on restart")
		return memory.New(log), nil
	case config.StoragePostgres:
		return postgres.New(context.Background(), cfg, log)
	}
	return nil, errors.New("unknown STORAGE_DRIVER " + cfg.StorageDriver)
}
