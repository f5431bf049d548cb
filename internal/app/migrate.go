package app

import (
	"context"
	"errors"

	"github.com/vilanovax/wibecur-sub000/internal/storage"
)

// Migrate applies pending schema migrations.
func (a *App) Migrate(_ context.Context) error {
	if a.Config.Database.DSN == "" {
		return errors.New("database not configured; cannot migrate")
	}

	if err := storage.RunMigrations(a.Config.Database.DSN); err != nil {
		return err
	}
	a.Logger.Info().Msg("migrations applied")
	return nil
}
