package main

import (
	"context"
	"errors"
	"time"

	"github.com/Lagergrenk/grindmode-sub001/internal/config"
	"github.com/Lagergrenk/grindmode-sub001/internal/repository/mongo"
	"github.com/Lagergrenk/grindmode-sub001/internal/service"
	"github.com/spf13/cobra"
)

var indexesCmd = &cobra.Command{
	Use:   "indexes",
	Short: "Create the MongoDB indexes and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.Database.Driver != config.DriverMongo {
			return errors.New("indexes: database.driver is not mongo")
		}

		client, err := mongo.ConnectDB(cfg.Database.URI)
		if err != nil {
			return err
		}
		defer mongo.DisconnectDB(client)

		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := mongo.EnsureIndexes(ctx, client.Database(cfg.Database.Name), service.ScopedCollections...); err != nil {
			return err
		}
		logger.Info("indexes ensured", "collections", service.ScopedCollections)
		return nil
	},
}
