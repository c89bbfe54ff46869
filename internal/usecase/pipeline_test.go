package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phenrril/catalogseed/internal/domain"
)

type fixedPlanner struct {
	result domain.Result[[]domain.ProductBrief]
	calls  int
}

func (p *fixedPlanner) Generate(context.Context, string, int, string) domain.Result[[]domain.ProductBrief] {
	p.calls++
	return p.result
}

// recordingWriter fails the attempts listed in failOn (0-based call index)
// and records every request it sees.
type recordingWriter struct {
	mu     sync.Mutex
	reqs   []ProductRequest
	failOn map[int]bool
}

func (w *recordingWriter) Generate(_ context.Context, req ProductRequest) domain.Result[domain.Product] {
	w.mu.Lock()
	n := len(w.reqs)
	prior := append([]string(nil), req.PriorNames...)
	req.PriorNames = prior
	w.reqs = append(w.reqs, req)
	w.mu.Unlock()

	if w.failOn[n] {
		return domain.Fail[domain.Product](fmt.Errorf("attempt %d: %w", n, errProvider))
	}
	name := fmt.Sprintf("Product %d", n)
	if req.Brief != nil {
		name = "From " + req.Brief.NameIdea
	}
	return domain.Ok(sampleProduct(name))
}

func TestGenerateProducts_FallbackMakesExactlyCountAttempts(t *testing.T) {
	planner := &fixedPlanner{result: domain.Ok([]domain.ProductBrief{})}
	writer := &recordingWriter{failOn: map[int]bool{1: true, 3: true}}
	p := NewPipeline(PipelineOptions{Briefs: planner, Products: writer})

	products, err := p.GenerateProducts(context.Background(), domain.GenerateOptions{Category: "tools", Count: 5})
	require.NoError(t, err)

	assert.Len(t, writer.reqs, 5)
	assert.Equal(t, []string{"Product 0", "Product 2", "Product 4"}, domain.ProductNames(products))
	for _, req := range writer.reqs {
		assert.Nil(t, req.Brief)
	}
}

func TestGenerateProducts_FallbackWhenBriefsFail(t *testing.T) {
	planner := &fixedPlanner{result: domain.Fail[[]domain.ProductBrief](errProvider)}
	writer := &recordingWriter{}
	p := NewPipeline(PipelineOptions{Briefs: planner, Products: writer})

	products, err := p.GenerateProducts(context.Background(), domain.GenerateOptions{Category: "tools", Count: 3})
	require.NoError(t, err)
	assert.Len(t, products, 3)
	assert.Len(t, writer.reqs, 3)
}

func TestGenerateProducts_PriorNamesGrowWithAcceptedProducts(t *testing.T) {
	planner := &fixedPlanner{result: domain.Ok([]domain.ProductBrief{})}
	writer := &recordingWriter{failOn: map[int]bool{2: true}}
	p := NewPipeline(PipelineOptions{Briefs: planner, Products: writer})

	_, err := p.GenerateProducts(context.Background(), domain.GenerateOptions{Category: "tools", Count: 5})
	require.NoError(t, err)

	want := [][]string{
		{},
		{"Product 0"},
		{"Product 0", "Product 1"},
		{"Product 0", "Product 1"},
		{"Product 0", "Product 1", "Product 3"},
	}
	require.Len(t, writer.reqs, len(want))
	for k, req := range writer.reqs {
		assert.Equal(t, want[k], append([]string{}, req.PriorNames...), "attempt %d", k+1)
	}
}

func TestGenerateProducts_FastPathSeedsEveryProductWithItsBrief(t *testing.T) {
	planner := &fixedPlanner{result: domain.Ok(sampleBriefs(4))}
	writer := &recordingWriter{}
	p := NewPipeline(PipelineOptions{Briefs: planner, Products: writer, MaxConcurrent: 2})

	products, err := p.GenerateProducts(context.Background(), domain.GenerateOptions{Category: "bags", Count: 4})
	require.NoError(t, err)

	assert.Len(t, products, 4)
	seen := map[string]bool{}
	for _, req := range writer.reqs {
		require.NotNil(t, req.Brief)
		assert.Empty(t, req.PriorNames)
		seen[req.Brief.NameIdea] = true
	}
	assert.Len(t, seen, 4)
	assert.Equal(t, "From Concept 0", products[0].Name)
	assert.Equal(t, "From Concept 3", products[3].Name)
}

func TestGenerateProducts_FastPathShortfallIsToppedUp(t *testing.T) {
	planner := &fixedPlanner{result: domain.Ok(sampleBriefs(2))}
	writer := &recordingWriter{}
	p := NewPipeline(PipelineOptions{Briefs: planner, Products: writer, MaxConcurrent: 1})

	products, err := p.GenerateProducts(context.Background(), domain.GenerateOptions{Category: "bags", Count: 3})
	require.NoError(t, err)

	require.Len(t, products, 3)
	require.Len(t, writer.reqs, 3)
	last := writer.reqs[2]
	assert.Nil(t, last.Brief)
	assert.ElementsMatch(t, []string{"From Concept 0", "From Concept 1"}, last.PriorNames)
}

func TestGenerateProducts_AllAttemptsFail(t *testing.T) {
	planner := &fixedPlanner{result: domain.Ok([]domain.ProductBrief{})}
	writer := &recordingWriter{failOn: map[int]bool{0: true, 1: true}}
	p := NewPipeline(PipelineOptions{Briefs: planner, Products: writer})

	products, err := p.GenerateProducts(context.Background(), domain.GenerateOptions{Category: "tools", Count: 2})
	assert.ErrorIs(t, err, domain.ErrNoProducts)
	assert.Empty(t, products)
	assert.Len(t, writer.reqs, 2)
}

func TestGenerateProducts_EnrichesContextOnce(t *testing.T) {
	enricher := &stubEnricher{out: "enriched context"}
	planner := &fixedPlanner{result: domain.Ok(sampleBriefs(2))}
	writer := &recordingWriter{}
	p := NewPipeline(PipelineOptions{Enricher: enricher, Briefs: planner, Products: writer})

	_, err := p.GenerateProducts(context.Background(), domain.GenerateOptions{Category: "tea", Count: 2, Context: "see https://example.com"})
	require.NoError(t, err)

	assert.Equal(t, 1, enricher.calls)
	for _, req := range writer.reqs {
		assert.Equal(t, "enriched context", req.Context)
	}
}

func TestGenerateProducts_ImagesAreAttachedInOrder(t *testing.T) {
	planner := &fixedPlanner{result: domain.Ok(sampleBriefs(3))}
	writer := &recordingWriter{}
	images := NewImageGenerator(&countingImageModel{data: []byte("png-bytes")}, newMemoryCache())
	p := NewPipeline(PipelineOptions{Briefs: planner, Products: writer, Images: images})

	products, err := p.GenerateProducts(context.Background(), domain.GenerateOptions{Category: "lamps", Count: 3, WantImages: true})
	require.NoError(t, err)

	require.Len(t, products, 3)
	for i, prod := range products {
		require.NotNil(t, prod.Image, "product %d", i)
		assert.Equal(t, CacheKey(prod.Name), prod.Image.Name)
		assert.Equal(t, domain.ImageTypePNG, prod.Image.Type)
	}
}

func TestGenerateProducts_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	planner := &fixedPlanner{result: domain.Ok([]domain.ProductBrief{})}
	writer := &recordingWriter{}
	p := NewPipeline(PipelineOptions{Briefs: planner, Products: writer})

	_, err := p.GenerateProducts(ctx, domain.GenerateOptions{Category: "tools", Count: 3})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, writer.reqs)
}

func TestScenario_SoftDrinksWithReviews(t *testing.T) {
	model := newScriptedTextModel()
	model.on("product_briefs", func(int, domain.StructuredRequest) ([]byte, error) {
		return mustJSON(map[string]any{"briefs": sampleBriefs(3)}), nil
	})
	model.on("product", func(n int, _ domain.StructuredRequest) ([]byte, error) {
		p := sampleProduct(fmt.Sprintf("Fizz %d", n))
		p.ProductReviews = sampleReviews(5 + n)
		return mustJSON(p), nil
	})

	p := NewPipeline(PipelineOptions{
		Briefs:   NewBriefGenerator(model),
		Products: NewProductGenerator(model),
	})
	products, err := p.GenerateProducts(context.Background(), domain.GenerateOptions{
		Category:    "soft drinks",
		Count:       3,
		WantReviews: true,
	})
	require.NoError(t, err)

	assert.LessOrEqual(t, len(products), 3)
	require.NotEmpty(t, products)
	for _, prod := range products {
		assert.GreaterOrEqual(t, len(prod.ProductReviews), 5)
		assert.Nil(t, prod.Options)
		assert.Nil(t, prod.Image)
	}

	for _, call := range model.callsNamed("product") {
		var schema map[string]any
		require.NoError(t, json.Unmarshal(call.Schema, &schema))
		props := schema["properties"].(map[string]any)
		assert.Contains(t, props, "productReviews")
		assert.NotContains(t, props, "options")
	}
}

func TestScenario_FurnitureOptionsFromSuppliedGroups(t *testing.T) {
	groups := []domain.PropertyGroup{{
		ID:          "g1",
		Name:        "Material",
		DisplayType: domain.DisplayTypeText,
		Options:     []domain.PropertyOption{{ID: "a", Name: "Oak"}, {ID: "b", Name: "Steel"}},
	}}

	model := newScriptedTextModel()
	model.on("product_briefs", func(int, domain.StructuredRequest) ([]byte, error) {
		return mustJSON(map[string]any{"briefs": []domain.ProductBrief{}}), nil
	})
	model.on("product", func(n int, _ domain.StructuredRequest) ([]byte, error) {
		p := sampleProduct(fmt.Sprintf("Chair %d", n))
		switch n {
		case 1:
			p.Options = []domain.OptionRef{{ID: "a"}, {ID: "zzz"}}
		case 2:
			p.Options = []domain.OptionRef{{ID: "b"}}
		default:
			p.Options = []domain.OptionRef{{ID: "a"}, {ID: "b"}}
		}
		return mustJSON(p), nil
	})

	p := NewPipeline(PipelineOptions{
		Briefs:   NewBriefGenerator(model),
		Products: NewProductGenerator(model),
	})
	products, err := p.GenerateProducts(context.Background(), domain.GenerateOptions{
		Category:       "furniture",
		Count:          4,
		PropertyGroups: groups,
	})
	require.NoError(t, err)

	assert.Len(t, model.callsNamed("product"), 4)
	require.Len(t, products, 2)
	for _, prod := range products {
		assert.GreaterOrEqual(t, len(prod.Options), 2)
		for _, o := range prod.Options {
			assert.Contains(t, []string{"a", "b"}, o.ID)
		}
	}
}
