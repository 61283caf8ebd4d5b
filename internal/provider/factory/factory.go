// File: internal/provider/factory/factory.go
package factory

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strata/internal/config"
	"strata/internal/provider/registry"
	"strata/pkg/common"
	"strata/pkg/storage"
	"strings"
)

type Factory struct {
	cfg    *config.Config
	logger *slog.Logger
}

func NewFactory(cfg *config.Config, logger *slog.Logger) *Factory {
	return &Factory{
		cfg:    cfg,
		logger: logger,
	}
}

// Returns a list of providers that are registered and configured
func (f *Factory) GetConfiguredProviders() []string {
	var configuredProviders []string
	allRegistrations := registry.GetAllRegistrations()

	for name, registration := range allRegistrations {
		if registration.ConfigCheck(f.cfg) {
			configuredProviders = append(configuredProviders, name)
		}
	}
	sort.Strings(configuredProviders)
	return configuredProviders
}

// Checks if a specific provider is registered and configured
func (f *Factory) IsConfigured(providerName string) bool {
	registration, exists := registry.GetRegistration(providerName)
	if !exists {
		return false
	}
	return registration.ConfigCheck(f.cfg)
}

// Initializes and returns the storage client for the specified provider
func (f *Factory) GetStorageProvider(ctx context.Context, providerName string) (storage.Storage, error) {
	normalizedName := strings.ToLower(providerName)
	providerLogger := f.logger.With("provider", normalizedName)

	registration, exists := registry.GetRegistration(normalizedName)

	if !exists {
		return nil, &common.UnsupportedProviderError{Name: providerName}
	}

	if !registration.ConfigCheck(f.cfg) {
		return nil, fmt.Errorf("provider '%s' is not configured. Use 'strata config set %s.<key> <value>' (e.g., '%s.access_key')", normalizedName, normalizedName, normalizedName)
	}

	// Dynamically initialize the provider using the registered initializer function
	client, err := registration.Initializer(ctx, f.cfg, providerLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize provider %s: %w", normalizedName, err)
	}

	return client, nil
}

// Returns the native inspector for a provider, or nil when none is registered or configured
func (f *Factory) GetBucketInspector(ctx context.Context, providerName string) (storage.BucketInspector, error) {
	normalizedName := strings.ToLower(providerName)

	registration, exists := registry.GetInspectorRegistration(normalizedName)
	if !exists || !registration.ConfigCheck(f.cfg) {
		return nil, nil
	}

	inspector, err := registration.Initializer(ctx, f.cfg, f.logger.With("provider", normalizedName, "inspector", "native"))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize native inspector for %s: %w", normalizedName, err)
	}
	return inspector, nil
}

// Builds the gateway configuration for a provider from the loaded config
func (f *Factory) GetProviderConfig(providerName, bucket string) (common.ProviderConfig, error) {
	return f.cfg.ProviderConfig(providerName, bucket)
}

// Returns the query defaults from the loaded config
func (f *Factory) QuerySettings() config.QuerySettings {
	return f.cfg.Query
}
