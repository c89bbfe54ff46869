package usecase

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/phenrril/catalogseed/internal/domain"
)

type BriefGenerator struct {
	model domain.TextModel
}

func NewBriefGenerator(model domain.TextModel) *BriefGenerator {
	return &BriefGenerator{model: model}
}

type briefList struct {
	Briefs []domain.ProductBrief `json:"briefs" validate:"dive"`
}

// Generate plans count product concepts in a single model call. A failed
// call or a reply that does not validate yields a failed result; callers
// treat that as "no plan available".
func (g *BriefGenerator) Generate(ctx context.Context, category string, count int, extraContext string) domain.Result[[]domain.ProductBrief] {
	if count < 1 {
		return domain.Ok([]domain.ProductBrief{})
	}

	raw, err := g.model.GenerateJSON(ctx, domain.StructuredRequest{
		Name:         "product_briefs",
		Instructions: systemInstructions,
		Prompt:       briefPrompt(category, count, extraContext),
		Schema:       briefListSchema(),
	})
	if err != nil {
		log.Warn().Err(err).Str("category", category).Msg("brief generation failed")
		return domain.Fail[[]domain.ProductBrief](fmt.Errorf("generate briefs: %w", err))
	}

	var out briefList
	if err := decodeOutput(raw, &out); err != nil {
		log.Warn().Err(err).Str("category", category).Msg("brief output rejected")
		return domain.Fail[[]domain.ProductBrief](fmt.Errorf("parse briefs: %w", err))
	}

	briefs := out.Briefs
	if len(briefs) > count {
		briefs = briefs[:count]
	}
	log.Debug().Str("category", category).Int("requested", count).Int("planned", len(briefs)).Msg("briefs planned")
	return domain.Ok(briefs)
}
