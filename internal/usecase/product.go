package usecase

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/phenrril/catalogseed/internal/domain"
)

const minReviews = 5
const minOptions = 2

// ProductRequest describes one product generation call. PriorNames and Brief
// are alternative diversification strategies and are not combined.
type ProductRequest struct {
	Category            string
	PropertyGroups      []domain.PropertyGroup
	WantReviews         bool
	MinDescriptionWords int
	Context             string
	PriorNames          []string
	Brief               *domain.ProductBrief
}

type ProductGenerator struct {
	model domain.TextModel
}

func NewProductGenerator(model domain.TextModel) *ProductGenerator {
	return &ProductGenerator{model: model}
}

func (g *ProductGenerator) Generate(ctx context.Context, req ProductRequest) domain.Result[domain.Product] {
	optionIDs := domain.OptionIDs(req.PropertyGroups)

	raw, err := g.model.GenerateJSON(ctx, domain.StructuredRequest{
		Name:         "product",
		Instructions: systemInstructions,
		Prompt:       productPrompt(req),
		Schema:       productSchema(req.WantReviews, optionIDs),
		Strict:       true,
	})
	if err != nil {
		return domain.Fail[domain.Product](fmt.Errorf("generate product: %w", err))
	}

	var p domain.Product
	if err := decodeOutput(raw, &p); err != nil {
		return domain.Fail[domain.Product](fmt.Errorf("parse product: %w", err))
	}
	if err := checkProduct(&p, req.WantReviews, optionIDs); err != nil {
		return domain.Fail[domain.Product](err)
	}

	log.Debug().Str("category", req.Category).Str("name", p.Name).Bool("brief", req.Brief != nil).Int("prior", len(req.PriorNames)).Msg("product generated")
	return domain.Ok(p)
}

// checkProduct enforces the request-dependent rules the static validation
// tags cannot express, and drops fields that were not asked for.
func checkProduct(p *domain.Product, wantReviews bool, optionIDs []string) error {
	p.ID = ""
	p.Image = nil

	if wantReviews {
		if len(p.ProductReviews) < minReviews {
			return fmt.Errorf("%w: %d reviews, want at least %d", domain.ErrInvalidOutput, len(p.ProductReviews), minReviews)
		}
	} else {
		p.ProductReviews = nil
	}

	if len(optionIDs) == 0 {
		p.Options = nil
		return nil
	}
	allowed := make(map[string]struct{}, len(optionIDs))
	for _, id := range optionIDs {
		allowed[id] = struct{}{}
	}
	if len(p.Options) < minOptions {
		return fmt.Errorf("%w: %d options, want at least %d", domain.ErrInvalidOutput, len(p.Options), minOptions)
	}
	for _, o := range p.Options {
		if _, ok := allowed[o.ID]; !ok {
			return fmt.Errorf("%w: unknown option id %q", domain.ErrInvalidOutput, o.ID)
		}
	}
	return nil
}
