package main

import (
	"context"
	"database/sql"
	"errors"

	"github.com/bossygit/digital-medical-certificate-system/internal/platform/config"
	"github.com/bossygit/digital-medical-certificate-system/internal/platform/postgres"
)

// openDatabase reads the same environment as the server.
func openDatabase(ctx context.Context) (*sql.DB, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return nil, err
	}
	if !cfg.Database.Enabled() {
		return nil, errors.New("DATABASE_URL is not set")
	}
	return postgres.Open(ctx, cfg.Database)
}
