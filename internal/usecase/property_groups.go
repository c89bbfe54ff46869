package usecase

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/phenrril/catalogseed/internal/domain"
)

const defaultPropertyGroupCount = 2

type PropertyGroupGenerator struct {
	model domain.TextModel
}

func NewPropertyGroupGenerator(model domain.TextModel) *PropertyGroupGenerator {
	return &PropertyGroupGenerator{model: model}
}

type propertyGroupList struct {
	PropertyGroups []domain.PropertyGroup `json:"propertyGroups" validate:"dive"`
}

// Generate returns groups without ids; the caller assigns them before upload.
// Failures are logged and yield an empty slice.
func (g *PropertyGroupGenerator) Generate(ctx context.Context, category string, groupCount int) []domain.PropertyGroup {
	if groupCount <= 0 {
		groupCount = defaultPropertyGroupCount
	}

	raw, err := g.model.GenerateJSON(ctx, domain.StructuredRequest{
		Name:         "property_groups",
		Instructions: systemInstructions,
		Prompt:       propertyGroupPrompt(category, groupCount),
		Schema:       propertyGroupsSchema(),
	})
	if err != nil {
		log.Warn().Err(err).Str("category", category).Msg("property group generation failed")
		return []domain.PropertyGroup{}
	}

	var out propertyGroupList
	if err := decodeOutput(raw, &out); err != nil {
		log.Warn().Err(fmt.Errorf("parse property groups: %w", err)).Str("category", category).Msg("property group output rejected")
		return []domain.PropertyGroup{}
	}

	groups := out.PropertyGroups
	if len(groups) > groupCount {
		groups = groups[:groupCount]
	}
	for i := range groups {
		if groups[i].DisplayType != domain.DisplayTypeColor {
			for j := range groups[i].Options {
				groups[i].Options[j].ColorHexCode = ""
			}
		}
	}
	return groups
}
