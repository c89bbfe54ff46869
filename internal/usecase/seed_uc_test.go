package usecase

import (
	"context"
	"encoding/base64"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phenrril/catalogseed/internal/domain"
)

type recordingStore struct {
	mu      sync.Mutex
	upserts []domain.EntityType
	records map[domain.EntityType][]any
	media   map[string][]byte
}

func newRecordingStore() *recordingStore {
	return &recordingStore{records: map[domain.EntityType][]any{}, media: map[string][]byte{}}
}

func (s *recordingStore) Upsert(_ context.Context, entity domain.EntityType, records []any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upserts = append(s.upserts, entity)
	s.records[entity] = append(s.records[entity], records...)
	return nil
}

func (s *recordingStore) UploadMedia(_ context.Context, mediaID, _, _ string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.media[mediaID] = data
	return nil
}

type stubPipeline struct {
	products []domain.Product
	err      error
	got      domain.GenerateOptions
}

func (p *stubPipeline) GenerateProducts(_ context.Context, opts domain.GenerateOptions) ([]domain.Product, error) {
	p.got = opts
	return p.products, p.err
}

type stubGroups struct{ groups []domain.PropertyGroup }

func (s stubGroups) Generate(context.Context, string, int) []domain.PropertyGroup {
	out := make([]domain.PropertyGroup, len(s.groups))
	copy(out, s.groups)
	return out
}

func TestSeedUC_SeedAndUpload(t *testing.T) {
	withImage := sampleProduct("Lamp One")
	withImage.Image = &domain.ImageAttachment{Name: "LampOne", Type: ".png", Data: base64.StdEncoding.EncodeToString([]byte("png"))}
	pipeline := &stubPipeline{products: []domain.Product{withImage, sampleProduct("Lamp Two")}}
	store := newRecordingStore()
	uc := &SeedUC{
		Pipeline: pipeline,
		PropertyGroups: stubGroups{groups: []domain.PropertyGroup{{
			Name: "Color", DisplayType: domain.DisplayTypeColor,
			Options: []domain.PropertyOption{{Name: "Red"}, {Name: "Blue"}},
		}}},
		Store: store,
	}

	report, err := uc.Seed(context.Background(), SeedRequest{
		GenerateOptions:    domain.GenerateOptions{Category: "lamps", Count: 2, WantImages: true},
		PropertyGroupCount: 1,
		Upload:             true,
	})
	require.NoError(t, err)

	assert.True(t, report.Uploaded)
	assert.Equal(t, 2, report.Generated)
	assert.Equal(t, 1, report.WithImages)

	require.Len(t, pipeline.got.PropertyGroups, 1)
	group := pipeline.got.PropertyGroups[0]
	assert.Len(t, group.ID, 32)
	for _, o := range group.Options {
		assert.Len(t, o.ID, 32)
	}

	assert.Equal(t, []domain.EntityType{
		domain.EntityCategory, domain.EntityPropertyGroup, domain.EntityMedia, domain.EntityProduct,
	}, store.upserts)

	products := store.records[domain.EntityProduct]
	require.Len(t, products, 2)
	first := products[0].(domain.ProductRecord)
	second := products[1].(domain.ProductRecord)
	cat := store.records[domain.EntityCategory][0].(domain.CategoryRecord)
	assert.Equal(t, cat.ID, first.CategoryID)
	assert.NotEmpty(t, first.Product.ID)
	assert.NotEmpty(t, first.MediaID)
	assert.Empty(t, second.MediaID)
	assert.Equal(t, []byte("png"), store.media[first.MediaID])
}

func TestSeedUC_NoUploadWithoutFlag(t *testing.T) {
	store := newRecordingStore()
	uc := &SeedUC{Pipeline: &stubPipeline{products: []domain.Product{sampleProduct("A")}}, Store: store}

	report, err := uc.Seed(context.Background(), SeedRequest{GenerateOptions: domain.GenerateOptions{Category: "x", Count: 1}})
	require.NoError(t, err)
	assert.False(t, report.Uploaded)
	assert.Empty(t, store.upserts)
}

func TestSeedUC_PipelineFailure(t *testing.T) {
	uc := &SeedUC{Pipeline: &stubPipeline{err: domain.ErrNoProducts}}
	_, err := uc.Seed(context.Background(), SeedRequest{GenerateOptions: domain.GenerateOptions{Category: "x", Count: 1}})
	assert.ErrorIs(t, err, domain.ErrNoProducts)
}

func TestSeedUC_UploadWithoutStore(t *testing.T) {
	uc := &SeedUC{Pipeline: &stubPipeline{products: []domain.Product{sampleProduct("A")}}}
	report, err := uc.Seed(context.Background(), SeedRequest{GenerateOptions: domain.GenerateOptions{Category: "x", Count: 1}, Upload: true})
	assert.Error(t, err)
	require.NotNil(t, report)
	assert.False(t, report.Uploaded)
}

type findingStore struct {
	*recordingStore
	categoryID string
}

func (s findingStore) FindCategory(_ context.Context, name string) (string, bool, error) {
	if name == "lamps" {
		return s.categoryID, true, nil
	}
	return "", false, nil
}

func TestSeedUC_ReusesExistingCategory(t *testing.T) {
	store := findingStore{recordingStore: newRecordingStore(), categoryID: "existing-cat"}
	uc := &SeedUC{Pipeline: &stubPipeline{products: []domain.Product{sampleProduct("A")}}, Store: store}

	_, err := uc.Seed(context.Background(), SeedRequest{GenerateOptions: domain.GenerateOptions{Category: "lamps", Count: 1}, Upload: true})
	require.NoError(t, err)

	assert.Equal(t, []domain.EntityType{domain.EntityProduct}, store.upserts)
	rec := store.records[domain.EntityProduct][0].(domain.ProductRecord)
	assert.Equal(t, "existing-cat", rec.CategoryID)
}
