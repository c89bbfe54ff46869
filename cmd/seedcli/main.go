package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"github.com/phenrril/catalogseed/internal/adapters/export/xlsx"
	"github.com/phenrril/catalogseed/internal/app"
	"github.com/phenrril/catalogseed/internal/config"
	"github.com/phenrril/catalogseed/internal/domain"
	"github.com/phenrril/catalogseed/internal/usecase"
)

func main() {
	var (
		category       = flag.String("category", "", "business category, e.g. \"soft drinks\"")
		count          = flag.Int("count", 3, "number of products to generate (1-50)")
		reviews        = flag.Bool("reviews", false, "generate at least 5 reviews per product")
		images         = flag.Bool("images", false, "generate a product photo for every product")
		extra          = flag.String("context", "", "additional context; a URL in it is crawled")
		propertyGroups = flag.Int("property-groups", 0, "generate this many property groups first")
		minWords       = flag.Int("min-words", 0, "minimum description length in words")
		upload         = flag.Bool("upload", false, "upload the result to the configured store")
		xlsxPath       = flag.String("xlsx", "", "also write the products to this spreadsheet")
	)
	flag.Parse()

	_ = godotenv.Load()
	zerolog.TimeFieldFormat = time.RFC3339
	zlog.Logger = zlog.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	if *category == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		zlog.Fatal().Err(err).Msg("invalid configuration")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	application, err := app.NewApp(cfg)
	if err != nil {
		zlog.Fatal().Err(err).Msg("failed to create app")
	}
	if err := application.Migrate(); err != nil {
		zlog.Fatal().Err(err).Msg("failed to migrate database")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, cfg.RequestTimeout)
	defer cancel()

	report, err := application.SeedUC.Seed(ctx, usecase.SeedRequest{
		GenerateOptions: domain.GenerateOptions{
			Category:            *category,
			Count:               *count,
			WantImages:          *images,
			WantReviews:         *reviews,
			MinDescriptionWords: *minWords,
			Context:             *extra,
		},
		PropertyGroupCount: *propertyGroups,
		Upload:             *upload,
	})
	if err != nil && report == nil {
		zlog.Fatal().Err(err).Str("category", *category).Msg("generation failed")
	}
	if err != nil {
		zlog.Error().Err(err).Msg("upload failed")
	}

	if *xlsxPath != "" {
		if err := writeXLSX(*xlsxPath, report); err != nil {
			zlog.Error().Err(err).Str("path", *xlsxPath).Msg("xlsx export failed")
		} else {
			zlog.Info().Str("path", *xlsxPath).Msg("spreadsheet written")
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(report)
}

func writeXLSX(path string, report *usecase.SeedReport) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := xlsx.Export(f, report.Category, report.Products); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
