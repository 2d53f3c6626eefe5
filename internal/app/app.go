// Package app wires configuration, storage, clients and services into a
// running application.
package app

import (
	"fmt"

	"github.com/MarcosLaine/Controle-se-sub003/internal/clients/quotes"
	"github.com/MarcosLaine/Controle-se-sub003/internal/common"
	"github.com/MarcosLaine/Controle-se-sub003/internal/interfaces"
	"github.com/MarcosLaine/Controle-se-sub003/internal/services/valuation"
	"github.com/MarcosLaine/Controle-se-sub003/internal/storage/txdb"
)

// App holds the composed application.
type App struct {
	Config *common.Config
	Logger *common.Logger

	Store  interfaces.TransactionStore
	Oracle interfaces.PriceOracle

	Valuation interfaces.ValuationService
}

// NewApp loads config and builds the full service graph.
func NewApp(configPath string) (*App, error) {
	cfg, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := common.NewLogger(cfg.Logging.Level)

	store, err := txdb.NewStore(logger, cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open transaction store: %w", err)
	}

	oracle := quotes.NewClient(cfg.Clients.Quotes.APIKey,
		quotes.WithBaseURL(cfg.Clients.Quotes.BaseURL),
		quotes.WithRateLimit(cfg.Clients.Quotes.RateLimit),
		quotes.WithTimeout(cfg.Clients.Quotes.GetTimeout()),
		quotes.WithLogger(logger),
	)

	return &App{
		Config:    cfg,
		Logger:    logger,
		Store:     store,
		Oracle:    oracle,
		Valuation: valuation.NewService(store, oracle, cfg.BaseCurrency, logger),
	}, nil
}

// Close releases application resources.
func (a *App) Close() {
	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			a.Logger.Error().Err(err).Msg("Failed to close transaction store")
		}
	}
}
