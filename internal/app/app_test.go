package app

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phenrril/catalogseed/internal/adapters/shopware"
	"github.com/phenrril/catalogseed/internal/config"
)

func baseConfig(t *testing.T) config.Config {
	return config.Config{
		AIProvider:    config.ProviderOpenAI,
		OpenAIAPIKey:  "sk-test",
		ImageCacheDir: t.TempDir(),
		CrawlMaxChars: 3000,
		MaxConcurrent: 2,
		StoreDriver:   config.StoreNone,
	}
}

func TestNewApp_NoStore(t *testing.T) {
	a, err := NewApp(baseConfig(t))
	require.NoError(t, err)
	assert.Nil(t, a.Store)
	assert.NotNil(t, a.SeedUC)
	assert.NoError(t, a.Migrate())

	rec := httptest.NewRecorder()
	a.HTTPHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNewApp_Shopware(t *testing.T) {
	cfg := baseConfig(t)
	cfg.AIProvider = config.ProviderGemini
	cfg.GeminiAPIKey = "g-test"
	cfg.StoreDriver = config.StoreShopware
	cfg.ShopwareURL = "http://shop.local"
	cfg.ShopwareUsername = "admin"

	a, err := NewApp(cfg)
	require.NoError(t, err)
	assert.IsType(t, &shopware.Store{}, a.Store)
}

func TestNewApp_ShopwareMissingURL(t *testing.T) {
	cfg := baseConfig(t)
	cfg.StoreDriver = config.StoreShopware
	_, err := NewApp(cfg)
	assert.Error(t, err)
}
