package usecase

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/phenrril/catalogseed/internal/domain"
)

const defaultMaxConcurrent = 5

// BriefPlanner returns at most count briefs.
type BriefPlanner interface {
	Generate(ctx context.Context, category string, count int, extraContext string) domain.Result[[]domain.ProductBrief]
}

type ProductWriter interface {
	Generate(ctx context.Context, req ProductRequest) domain.Result[domain.Product]
}

type ImageAttacher interface {
	Attach(ctx context.Context, p domain.Product, category, extraContext string) domain.Product
}

type PipelineOptions struct {
	Enricher      domain.Enricher
	Briefs        BriefPlanner
	Products      ProductWriter
	Images        ImageAttacher
	MaxConcurrent int
}

// Pipeline turns a category and a few options into a set of products:
// enrich the context once, plan briefs and generate one product per brief in
// parallel, fall back to sequential name-aware generation when no plan is
// available, then attach images in parallel.
type Pipeline struct {
	enricher      domain.Enricher
	briefs        BriefPlanner
	products      ProductWriter
	images        ImageAttacher
	maxConcurrent int
}

func NewPipeline(opts PipelineOptions) *Pipeline {
	maxConcurrent := opts.MaxConcurrent
	if maxConcurrent < 1 {
		maxConcurrent = defaultMaxConcurrent
	}
	return &Pipeline{
		enricher:      opts.Enricher,
		briefs:        opts.Briefs,
		products:      opts.Products,
		images:        opts.Images,
		maxConcurrent: maxConcurrent,
	}
}

func (p *Pipeline) GenerateProducts(ctx context.Context, opts domain.GenerateOptions) ([]domain.Product, error) {
	if opts.Count < 1 {
		return nil, domain.ErrNoProducts
	}

	enriched := opts.Context
	if p.enricher != nil && strings.TrimSpace(opts.Context) != "" {
		enriched = p.enricher.Enrich(ctx, opts.Context)
	}

	base := ProductRequest{
		Category:            opts.Category,
		PropertyGroups:      opts.PropertyGroups,
		WantReviews:         opts.WantReviews,
		MinDescriptionWords: opts.MinDescriptionWords,
		Context:             enriched,
	}

	products, err := p.fastPath(ctx, base, opts.Count)
	if err != nil {
		return nil, err
	}

	switch {
	case len(products) == 0:
		log.Info().Str("category", opts.Category).Int("count", opts.Count).Msg("fast path produced nothing, generating sequentially")
		products = p.sequential(ctx, base, nil, opts.Count)
	case len(products) < opts.Count:
		missing := opts.Count - len(products)
		log.Info().Str("category", opts.Category).Int("missing", missing).Msg("topping up fast path result sequentially")
		products = p.sequential(ctx, base, products, missing)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, domain.ErrNoProducts
	}

	if opts.WantImages && p.images != nil {
		products, err = p.attachImages(ctx, products, opts.Category, enriched)
		if err != nil {
			return nil, err
		}
	}

	log.Info().Str("category", opts.Category).Int("requested", opts.Count).Int("generated", len(products)).Msg("products generated")
	return products, nil
}

// fastPath plans briefs and generates one product per brief concurrently.
// Products that fail are dropped; no retries happen here.
func (p *Pipeline) fastPath(ctx context.Context, base ProductRequest, count int) ([]domain.Product, error) {
	if p.briefs == nil {
		return nil, nil
	}
	planned := p.briefs.Generate(ctx, base.Category, count, base.Context)
	if planned.Err != nil || len(planned.Value) == 0 {
		return nil, nil
	}
	briefs := planned.Value

	results := make([]domain.Result[domain.Product], len(briefs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.maxConcurrent)
	for i := range briefs {
		i := i
		g.Go(func() error {
			req := base
			req.Brief = &briefs[i]
			req.PriorNames = nil
			results[i] = p.products.Generate(gctx, req)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for i, r := range results {
		if r.Err != nil {
			log.Warn().Err(r.Err).Str("category", base.Category).Int("brief", i).Str("name_idea", briefs[i].NameIdea).Msg("product from brief dropped")
		}
	}
	products, _ := domain.Collect(results)
	return products, nil
}

// sequential performs exactly attempts generation calls. Every call sees the
// names of all products accepted before it; the accumulator is threaded from
// one attempt to the next.
func (p *Pipeline) sequential(ctx context.Context, base ProductRequest, accepted []domain.Product, attempts int) []domain.Product {
	acc := make([]domain.Product, len(accepted), len(accepted)+attempts)
	copy(acc, accepted)
	for i := 0; i < attempts; i++ {
		if ctx.Err() != nil {
			break
		}
		acc = p.attempt(ctx, base, acc, i)
	}
	return acc
}

func (p *Pipeline) attempt(ctx context.Context, base ProductRequest, acc []domain.Product, n int) []domain.Product {
	req := base
	req.Brief = nil
	req.PriorNames = domain.ProductNames(acc)
	res := p.products.Generate(ctx, req)
	if res.Err != nil {
		log.Warn().Err(res.Err).Str("category", base.Category).Int("attempt", n+1).Msg("sequential product dropped")
		return acc
	}
	return append(acc, res.Value)
}

func (p *Pipeline) attachImages(ctx context.Context, products []domain.Product, category, extraContext string) ([]domain.Product, error) {
	out := make([]domain.Product, len(products))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.maxConcurrent)
	for i := range products {
		i := i
		g.Go(func() error {
			out[i] = p.images.Attach(gctx, products[i], category, extraContext)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
