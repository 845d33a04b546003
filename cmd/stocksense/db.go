package main

import (
	"context"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/stocksense/backend-go/internal/repository/postgres"
	"github.com/andresuchdata/stocksense/backend-go/pkg/logger"
)

type dbKey struct{}

func openDB(c *cli.Context) (*postgres.DB, error) {
	db, err := postgres.Open("pgx", c.String("db-url"), 4)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(c.Context); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

func initDB(c *cli.Context) error {
	db, err := openDB(c)
	if err != nil {
		return err
	}

	// Store the database connection in the context
	c.Context = context.WithValue(c.Context, dbKey{}, db)
	return nil
}

func closeDB(c *cli.Context) error {
	if db, ok := c.Context.Value(dbKey{}).(*postgres.DB); ok && db != nil {
		return db.Close()
	}
	return nil
}

func runMigrate(c *cli.Context) error {
	db, ok := c.Context.Value(dbKey{}).(*postgres.DB)
	if !ok || db == nil {
		return fmt.Errorf("database connection not found in context")
	}

	if err := postgres.Migrate(c.Context, db.DB.DB); err != nil {
		return err
	}

	logger.Log.Info().Msg("schema applied")
	return nil
}
