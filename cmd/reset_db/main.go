package main

import (
	"context"
	"flag"
	"os"

	"taxiorders/config"
	"taxiorders/pkg/logger"
	"taxiorders/pkg/models"
	"taxiorders/storage/postgres"
)

func main() {
	seed := flag.Bool("seed", false, "create a demo client and driver after truncating")
	flag.Parse()

	cfg := config.Load()
	log := logger.New(cfg.ServiceName, cfg.LoggerLevel)
	ctx := context.Background()

	pg, err := postgres.New(ctx, cfg, log)
	if err != nil {
		log.Error("failed to connect postgres", logger.Error(err))
		os.Exit(1)
	}
	defer pg.Close()

	// Users are kept: they are registered through the bot and the gateway.
	if _, err = pg.Pool().Exec(ctx, "TRUNCATE TABLE order_transitions, orders RESTART IDENTITY"); err != nil {
		log.Error("failed to truncate tables", logger.Error(err))
		os.Exit(1)
	}
	log.Info("truncated orders and order_transitions")

	if !*seed {
		return
	}
	for _, u := range []*models.User{
		{FullName: "Demo Client", Role: models.RoleClient},
		{FullName: "Demo Driver", Role: models.RoleDriver},
	} {
		created, err := pg.User().Create(ctx, u)
		if err != nil {
			log.Error("failed to seed user", logger.String("name", u.FullName), logger.Error(err))
			os.Exit(1)
		}
		log.Info("seeded user", logger.Int64("id", created.ID), logger.String("role", string(created.Role)))
	}
}
