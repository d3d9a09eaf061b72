package bootstrap

import (
	"context"
	"path/filepath"
	"testing"

	"go.uber.org/fx"

	"pqms/internal/usecase/quality"
)

func TestModuleWiresQualityService(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("PQMS_DATABASE_DSN", filepath.Join(dir, "pqms.sqlite"))
	t.Setenv("PQMS_MESSAGING_NATS_URL", "")

	ctx := context.Background()
	var app *App
	var svc *quality.Service
	fxApp := fx.New(
		Module,
		fx.NopLogger,
		fx.Provide(func() context.Context { return ctx }),
		fx.Provide(
			fx.Annotate(
				func() string { return "" },
				fx.ResultTags(`name:"configFile"`),
			),
		),
		fx.Populate(&app, &svc),
	)
	if err := fxApp.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer func() {
		if err := fxApp.Stop(ctx); err != nil {
			t.Fatalf("Stop() error = %v", err)
		}
	}()

	if err := app.Initialize(ctx, svc); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	if err := app.Initialize(ctx, svc); err != nil {
		t.Fatalf("second Initialize() error = %v", err)
	}

	settings, err := svc.GetSettings(ctx)
	if err != nil {
		t.Fatalf("GetSettings() error = %v", err)
	}
	if settings.Language != "ja" {
		t.Fatalf("language = %q, want ja", settings.Language)
	}
}
