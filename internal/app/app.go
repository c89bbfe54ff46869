package app

import (
	"fmt"
	"net/http"
	"os"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/phenrril/catalogseed/internal/adapters/ai/gemini"
	"github.com/phenrril/catalogseed/internal/adapters/ai/openai"
	"github.com/phenrril/catalogseed/internal/adapters/httpserver"
	"github.com/phenrril/catalogseed/internal/adapters/repo/postgres"
	"github.com/phenrril/catalogseed/internal/adapters/scraper"
	"github.com/phenrril/catalogseed/internal/adapters/shopware"
	"github.com/phenrril/catalogseed/internal/adapters/storage/localfs"
	"github.com/phenrril/catalogseed/internal/config"
	"github.com/phenrril/catalogseed/internal/domain"
	"github.com/phenrril/catalogseed/internal/httpclient"
	"github.com/phenrril/catalogseed/internal/usecase"
)

type model interface {
	domain.TextModel
	domain.ImageModel
}

type App struct {
	Config   config.Config
	DB       *gorm.DB
	Store    domain.CatalogStore
	Pipeline *usecase.Pipeline
	SeedUC   *usecase.SeedUC
}

func NewApp(cfg config.Config) (*App, error) {
	client := httpclient.New(httpclient.Options{PreferIPv4: cfg.PreferIPv4, Timeout: cfg.HTTPTimeout})

	var m model
	switch cfg.AIProvider {
	case config.ProviderGemini:
		m = gemini.New(gemini.Options{
			APIKey:     cfg.GeminiAPIKey,
			BaseURL:    cfg.GeminiBaseURL,
			APIVersion: cfg.GeminiAPIVersion,
			TextModel:  cfg.GeminiTextModel,
			ImageModel: cfg.GeminiImageModel,
			HTTPClient: client,
		})
	default:
		m = openai.New(openai.Options{
			APIKey:     cfg.OpenAIAPIKey,
			BaseURL:    cfg.OpenAIBaseURL,
			TextModel:  cfg.OpenAITextModel,
			ImageModel: cfg.OpenAIImageModel,
			HTTPClient: client,
		})
	}

	if err := os.MkdirAll(cfg.ImageCacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("image cache dir: %w", err)
	}

	enricherOpts := scraper.Options{
		Static:   scraper.NewStaticFetcher(client, cfg.CrawlStaticTimeout),
		MaxChars: cfg.CrawlMaxChars,
	}
	if cfg.CrawlRender {
		enricherOpts.Rendered = scraper.NewRenderedFetcher(cfg.CrawlRenderTimeout, cfg.CrawlSettle)
	}

	pipeline := usecase.NewPipeline(usecase.PipelineOptions{
		Enricher:      scraper.NewEnricher(enricherOpts),
		Briefs:        usecase.NewBriefGenerator(m),
		Products:      usecase.NewProductGenerator(m),
		Images:        usecase.NewImageGenerator(m, localfs.New(cfg.ImageCacheDir)),
		MaxConcurrent: cfg.MaxConcurrent,
	})

	app := &App{Config: cfg, Pipeline: pipeline}

	switch cfg.StoreDriver {
	case config.StoreShopware:
		store, err := shopware.New(shopware.Options{
			BaseURL:      cfg.ShopwareURL,
			ClientID:     cfg.ShopwareClientID,
			ClientSecret: cfg.ShopwareSecret,
			Username:     cfg.ShopwareUsername,
			Password:     cfg.ShopwarePassword,
			Currency:     cfg.ShopwareCurrency,
			TaxName:      cfg.ShopwareTaxName,
			HTTPClient:   client,
		})
		if err != nil {
			return nil, err
		}
		app.Store = store
	case config.StorePostgres:
		db, err := postgres.Open(cfg.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		app.DB = db
		app.Store = postgres.NewCatalogRepo(db)
	}

	app.SeedUC = &usecase.SeedUC{
		Pipeline:       pipeline,
		PropertyGroups: usecase.NewPropertyGroupGenerator(m),
		Store:          app.Store,
	}

	log.Info().
		Str("provider", cfg.AIProvider).
		Str("store", cfg.StoreDriver).
		Bool("render", cfg.CrawlRender).
		Int("max_concurrent", cfg.MaxConcurrent).
		Msg("app configured")
	return app, nil
}

func (a *App) HTTPHandler() http.Handler {
	return httpserver.New(a.SeedUC, a.Config.RequestTimeout)
}

// Migrate creates the catalog tables when the SQL store is in use.
func (a *App) Migrate() error {
	if a.DB == nil {
		return nil
	}
	return postgres.NewCatalogRepo(a.DB).Migrate()
}
