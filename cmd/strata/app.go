// File: cmd/strata/app.go
package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"

	"strata/internal/config"
	"strata/internal/provider/factory"
	"strata/internal/service"
	"strata/internal/ui/prompt"
	"strata/pkg/formatter"
)

// appContainer holds all the shared dependencies for the application
type appContainer struct {
	Config           *config.Config
	ConfigManager    *config.ConfigManager
	ProviderFactory  *factory.Factory
	StorageService   *service.StorageService
	QueryService     *service.QueryService
	StorageFormatter *formatter.StorageFormatter
	QueryFormatter   *formatter.QueryFormatter
	Prompter         prompt.Prompter
	Logger           *slog.Logger
}

type appKey struct{}

// Creates and initializes a new application container
func newApp(cfgManager *config.ConfigManager, in io.Reader, out io.Writer, logger *slog.Logger) (*appContainer, error) {
	cfg, err := cfgManager.LoadConfig()
	if err != nil {
		return nil, err
	}

	providerFactory := factory.NewFactory(cfg, logger)

	return &appContainer{
		Config:           cfg,
		ConfigManager:    cfgManager,
		ProviderFactory:  providerFactory,
		StorageService:   service.NewStorageService(providerFactory, logger),
		QueryService:     service.NewQueryService(providerFactory, logger),
		StorageFormatter: formatter.NewStorageFormatter(),
		QueryFormatter:   formatter.NewQueryFormatter(),
		Prompter:         prompt.NewStandardPrompter(in, out),
		Logger:           logger,
	}, nil
}

// Config manager used when the root command builds the app; tests point it at a temp dir
var newConfigManager = config.NewConfigManager

func contextWithApp(ctx context.Context, app *appContainer) context.Context {
	return context.WithValue(ctx, appKey{}, app)
}

func appFromContext(ctx context.Context) (*appContainer, error) {
	if ctx == nil {
		return nil, errors.New("application not initialized")
	}
	app, ok := ctx.Value(appKey{}).(*appContainer)
	if !ok || app == nil {
		return nil, errors.New("application not initialized")
	}
	return app, nil
}

// Opens the --output destination; "-" or empty means stdout
func openOutput(path string, stdout io.Writer) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopWriteCloser{stdout}, nil
	}
	return os.Create(path)
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }
