package bootstrap

import (
	"context"
	"log/slog"

	"go.uber.org/fx"
	"gorm.io/gorm"

	"pqms/internal/bootstrap/config"
	"pqms/internal/bootstrap/database"
	"pqms/internal/bootstrap/logging"
	"pqms/internal/errs"
	"pqms/internal/infrastructure/kvstore"
	"pqms/internal/infrastructure/messaging"
	sqliterepo "pqms/internal/infrastructure/persistence/sqlite/repository"
	sqliteuow "pqms/internal/infrastructure/persistence/sqlite/uow"
	"pqms/internal/ports"
	"pqms/internal/usecase/quality"
)

var Module = fx.Options(
	fx.Provide(provideConfig),
	fx.Provide(provideDatabase),
	fx.Provide(provideApp),
	fx.Provide(
		fx.Annotate(sqliterepo.NewCatalogRepository, fx.As(new(ports.CatalogRepository))),
		fx.Annotate(sqliterepo.NewChecklistRepository, fx.As(new(ports.ChecklistRepository))),
		fx.Annotate(sqliterepo.NewProcessSheetRepository, fx.As(new(ports.ProcessSheetRepository))),
		fx.Annotate(sqliterepo.NewExecutionRepository, fx.As(new(ports.ExecutionRepository))),
		fx.Annotate(sqliterepo.NewTaskRepository, fx.As(new(ports.TaskRepository))),
		fx.Annotate(sqliterepo.NewUserRepository, fx.As(new(ports.UserRepository))),
	),
	fx.Provide(
		fx.Annotate(
			sqliteuow.NewUnitOfWork,
			fx.As(new(ports.UnitOfWork)),
		),
	),
	fx.Provide(
		fx.Annotate(
			kvstore.NewSQLiteStore,
			fx.As(new(ports.KeyValueStore)),
		),
	),
	fx.Provide(provideEventPublisher),
	fx.Provide(provideQualityOptions),
	fx.Provide(quality.NewService),
)

type configParams struct {
	fx.In

	Ctx        context.Context
	ConfigFile string `name:"configFile"`
}

func provideConfig(p configParams) (config.Config, error) {
	ctx := logging.WithAttrs(p.Ctx, slog.String("component", "bootstrap.fx"))
	return config.Load(ctx, p.ConfigFile)
}

func provideDatabase(lc fx.Lifecycle, ctx context.Context, cfg config.Config) (*gorm.DB, error) {
	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.fx"))

	db, err := database.Open(logCtx, cfg.Database)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	})

	return db, nil
}

// provideEventPublisher connects to NATS when configured and drops events otherwise.
func provideEventPublisher(lc fx.Lifecycle, ctx context.Context, cfg config.Config) (ports.EventPublisher, error) {
	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.fx"))

	if cfg.Messaging.NATSURL == "" {
		logging.Info(logCtx, "event publishing disabled")
		return messaging.NopPublisher{}, nil
	}

	publisher, err := messaging.NewNATSPublisher(cfg.Messaging.NATSURL, cfg.Messaging.SubjectPrefix, cfg.App.Name)
	if err != nil {
		return nil, errs.Wrap(err, "connect event publisher")
	}
	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return publisher.Close()
		},
	})

	logging.Info(logCtx, "event publishing enabled", slog.String("subject_prefix", cfg.Messaging.SubjectPrefix))
	return publisher, nil
}

func provideQualityOptions(cfg config.Config) quality.Options {
	return quality.Options{
		StrictMembership: cfg.Quality.StrictResultMembership,
		MediaBaseURL:     cfg.Media.BaseURL,
	}
}

func provideApp(cfg config.Config, db *gorm.DB) *App {
	return &App{
		Config: cfg,
		DB:     db,
	}
}
