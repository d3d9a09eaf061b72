package bootstrap

import (
	"context"
	"errors"
	"log/slog"

	"gorm.io/gorm"

	"pqms/internal/bootstrap/config"
	"pqms/internal/bootstrap/logging"
	"pqms/internal/errs"
	"pqms/internal/infrastructure/persistence/sqlite/model"
	"pqms/internal/usecase/quality"
)

type App struct {
	Config config.Config
	DB     *gorm.DB
}

func (a *App) InitSchema(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}

	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.app"))
	logging.Info(logCtx, "start schema migration")

	if err := a.DB.WithContext(ctx).AutoMigrate(model.All()...); err != nil {
		return errs.Wrap(err, "auto migrate schema")
	}

	logging.Info(logCtx, "schema migration completed")
	return nil
}

// Initialize migrates the schema and seeds the system settings record. It is idempotent.
func (a *App) Initialize(ctx context.Context, svc *quality.Service) error {
	if err := a.InitSchema(ctx); err != nil {
		return err
	}
	if _, err := svc.SeedSettings(ctx); err != nil {
		return errs.Wrap(err, "seed system settings")
	}
	return nil
}
