package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/phenrril/catalogseed/internal/domain"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"

	StoreShopware = "shopware"
	StorePostgres = "postgres"
	StoreNone     = "none"
)

type Config struct {
	Port     string
	LogLevel string

	AIProvider string

	OpenAIAPIKey     string
	OpenAIBaseURL    string
	OpenAITextModel  string
	OpenAIImageModel string

	GeminiAPIKey     string
	GeminiBaseURL    string
	GeminiAPIVersion string
	GeminiTextModel  string
	GeminiImageModel string

	ImageCacheDir string

	CrawlMaxChars      int
	CrawlStaticTimeout time.Duration
	CrawlRenderTimeout time.Duration
	CrawlSettle        time.Duration
	CrawlRender        bool

	MaxConcurrent  int
	HTTPTimeout    time.Duration
	RequestTimeout time.Duration
	PreferIPv4     bool

	StoreDriver      string
	ShopwareURL      string
	ShopwareClientID string
	ShopwareSecret   string
	ShopwareUsername string
	ShopwarePassword string
	ShopwareCurrency string
	ShopwareTaxName  string
	DatabaseDSN      string
}

func Load() (Config, error) {
	cfg := Config{
		Port:     getEnv("PORT", "8080"),
		LogLevel: strings.ToLower(getEnv("LOG_LEVEL", "info")),

		AIProvider: strings.ToLower(getEnv("AI_PROVIDER", ProviderOpenAI)),

		OpenAIAPIKey:     getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:    getEnv("OPENAI_BASE_URL", ""),
		OpenAITextModel:  getEnv("OPENAI_TEXT_MODEL", "gpt-4o-mini"),
		OpenAIImageModel: getEnv("OPENAI_IMAGE_MODEL", "dall-e-3"),

		GeminiAPIKey:     getEnv("GEMINI_API_KEY", ""),
		GeminiBaseURL:    getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
		GeminiAPIVersion: getEnv("GEMINI_API_VERSION", "v1beta"),
		GeminiTextModel:  getEnv("GEMINI_TEXT_MODEL", ""),
		GeminiImageModel: getEnv("GEMINI_IMAGE_MODEL", ""),

		ImageCacheDir: getEnv("IMAGE_CACHE_DIR", "image_cache"),

		CrawlMaxChars:      getEnvInt("CRAWL_MAX_CHARS", 3000),
		CrawlStaticTimeout: getEnvDuration("CRAWL_STATIC_TIMEOUT_SECONDS", 10, time.Second),
		CrawlRenderTimeout: getEnvDuration("CRAWL_RENDER_TIMEOUT_SECONDS", 30, time.Second),
		CrawlSettle:        getEnvDuration("CRAWL_SETTLE_MS", 1500, time.Millisecond),
		CrawlRender:        getEnvBool("CRAWL_RENDER", true),

		MaxConcurrent:  getEnvInt("MAX_CONCURRENT", 5),
		HTTPTimeout:    getEnvDuration("HTTP_TIMEOUT_SECONDS", 180, time.Second),
		RequestTimeout: getEnvDuration("REQUEST_TIMEOUT_SECONDS", 600, time.Second),
		PreferIPv4:     getEnvBool("PREFER_IPV4", false),

		StoreDriver:      strings.ToLower(getEnv("STORE_DRIVER", StoreNone)),
		ShopwareURL:      getEnv("SW_API_URL", ""),
		ShopwareClientID: getEnv("SW_CLIENT_ID", ""),
		ShopwareSecret:   getEnv("SW_CLIENT_SECRET", ""),
		ShopwareUsername: getEnv("SW_USERNAME", ""),
		ShopwarePassword: getEnv("SW_PASSWORD", ""),
		ShopwareCurrency: getEnv("SW_CURRENCY", "EUR"),
		ShopwareTaxName:  getEnv("SW_TAX_NAME", ""),
		DatabaseDSN:      getEnv("DB_DSN", ""),
	}

	switch cfg.AIProvider {
	case ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return Config{}, missing("OPENAI_API_KEY")
		}
	case ProviderGemini:
		if cfg.GeminiAPIKey == "" {
			return Config{}, missing("GEMINI_API_KEY")
		}
	default:
		return Config{}, fmt.Errorf("AI_PROVIDER %q: must be %s or %s", cfg.AIProvider, ProviderOpenAI, ProviderGemini)
	}

	switch cfg.StoreDriver {
	case StoreNone:
	case StoreShopware:
		if cfg.ShopwareURL == "" {
			return Config{}, missing("SW_API_URL")
		}
		if cfg.ShopwareUsername == "" && (cfg.ShopwareClientID == "" || cfg.ShopwareSecret == "") {
			return Config{}, missing("SW_CLIENT_ID/SW_CLIENT_SECRET or SW_USERNAME")
		}
	case StorePostgres:
		if cfg.DatabaseDSN == "" {
			return Config{}, missing("DB_DSN")
		}
	default:
		return Config{}, fmt.Errorf("STORE_DRIVER %q: must be %s, %s or %s", cfg.StoreDriver, StoreShopware, StorePostgres, StoreNone)
	}

	if cfg.MaxConcurrent < 1 {
		cfg.MaxConcurrent = 1
	}
	if cfg.CrawlMaxChars < 1 {
		cfg.CrawlMaxChars = 3000
	}
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = 180 * time.Second
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 600 * time.Second
	}

	return cfg, nil
}

func missing(key string) error {
	return fmt.Errorf("%s is required: %w", key, domain.ErrMissingConfig)
}

func getEnv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback int, unit time.Duration) time.Duration {
	return time.Duration(getEnvInt(key, fallback)) * unit
}
