package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/phenrril/catalogseed/internal/domain"
)

type textCall struct {
	Name   string
	Prompt string
	Schema json.RawMessage
}

// scriptedTextModel answers by request name. A handler returning an error
// simulates a provider failure.
type scriptedTextModel struct {
	mu       sync.Mutex
	calls    []textCall
	handlers map[string]func(n int, req domain.StructuredRequest) ([]byte, error)
	counts   map[string]int
}

func newScriptedTextModel() *scriptedTextModel {
	return &scriptedTextModel{
		handlers: map[string]func(int, domain.StructuredRequest) ([]byte, error){},
		counts:   map[string]int{},
	}
}

func (m *scriptedTextModel) on(name string, h func(n int, req domain.StructuredRequest) ([]byte, error)) {
	m.handlers[name] = h
}

func (m *scriptedTextModel) GenerateJSON(_ context.Context, req domain.StructuredRequest) ([]byte, error) {
	schema, _ := req.Schema.MarshalJSON()
	m.mu.Lock()
	m.calls = append(m.calls, textCall{Name: req.Name, Prompt: req.Prompt, Schema: schema})
	n := m.counts[req.Name]
	m.counts[req.Name]++
	h := m.handlers[req.Name]
	m.mu.Unlock()
	if h == nil {
		return nil, fmt.Errorf("no handler for %s", req.Name)
	}
	return h(n, req)
}

func (m *scriptedTextModel) callsNamed(name string) []textCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []textCall
	for _, c := range m.calls {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

type countingImageModel struct {
	mu    sync.Mutex
	calls int
	data  []byte
	err   error
}

func (m *countingImageModel) GenerateImage(context.Context, string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.data, nil
}

func (m *countingImageModel) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type memoryCache struct {
	mu    sync.Mutex
	files map[string][]byte
}

func newMemoryCache() *memoryCache { return &memoryCache{files: map[string][]byte{}} }

func (c *memoryCache) Load(dir, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, ok := c.files[dir+"/"+key]
	return data, ok, nil
}

func (c *memoryCache) Store(dir, key string, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.files[dir+"/"+key]; ok {
		return nil
	}
	c.files[dir+"/"+key] = data
	return nil
}

var errProvider = errors.New("provider unavailable")

func mustJSON(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}

func sampleReviews(n int) []domain.ProductReview {
	out := make([]domain.ProductReview, n)
	for i := range out {
		out[i] = domain.ProductReview{
			ExternalUser:  fmt.Sprintf("User %d", i),
			ExternalEmail: fmt.Sprintf("user%d@example.com", i),
			Title:         "Solid choice",
			Content:       "Does what it promises.",
			Points:        1 + i%5,
			Status:        true,
		}
	}
	return out
}

func sampleProduct(name string) domain.Product {
	return domain.Product{Name: name, Description: "<p>A fine product.</p>", Price: 12.5, Stock: 40}
}

func sampleBriefs(n int) []domain.ProductBrief {
	out := make([]domain.ProductBrief, n)
	for i := range out {
		out[i] = domain.ProductBrief{
			NameIdea:        fmt.Sprintf("Concept %d", i),
			TargetAudience:  "commuters",
			PriceTier:       domain.PriceTierMid,
			Differentiators: []string{"light", "durable", "recyclable"},
		}
	}
	return out
}

type stubEnricher struct {
	calls int
	out   string
}

func (e *stubEnricher) Enrich(_ context.Context, raw string) string {
	e.calls++
	if e.out == "" {
		return raw
	}
	return e.out
}
