package usecase

import (
	"fmt"
	"strings"

	"github.com/phenrril/catalogseed/internal/domain"
)

const (
	defaultMinDescriptionWords = 100
	maxImageContextChars       = 800
)

const systemInstructions = "You generate realistic demo data for an online shop. Always answer with a single JSON document that matches the requested schema."

func productPrompt(req ProductRequest) string {
	minWords := req.MinDescriptionWords
	if minWords <= 0 {
		minWords = defaultMinDescriptionWords
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Create one realistic product for an online shop in the industry %q. ", req.Category)
	b.WriteString("Do not use real brand names or trademarks. ")
	fmt.Fprintf(&b, "The description must be at least %d words long and may use simple HTML (p, ul, li, strong). ", minWords)
	b.WriteString("Choose a plausible gross price and stock level.")

	if req.WantReviews {
		b.WriteString("\n\nAdd at least 5 product reviews from different customers with ratings between 1 and 5 points; mix positive and critical opinions.")
	}

	if len(req.PropertyGroups) > 0 {
		b.WriteString("\n\nAssign at least 2 fitting property options to the product. Only use option ids from this list:")
		for _, g := range req.PropertyGroups {
			fmt.Fprintf(&b, "\n- %s:", g.Name)
			for _, o := range g.Options {
				fmt.Fprintf(&b, " %s (id %s);", o.Name, o.ID)
			}
		}
	}

	if c := strings.TrimSpace(req.Context); c != "" {
		fmt.Fprintf(&b, "\n\nAdditional context for the product:\n%s", c)
	}

	if len(req.PriorNames) > 0 {
		b.WriteString("\n\nThese products already exist:")
		for _, name := range req.PriorNames {
			fmt.Fprintf(&b, "\n- %q", name)
		}
		b.WriteString("\nCreate a clearly different product: a different concept, a different name and a different price point.")
	}

	if req.Brief != nil {
		br := req.Brief
		b.WriteString("\n\nBase the product on this concept:")
		fmt.Fprintf(&b, "\nName idea: %s", br.NameIdea)
		fmt.Fprintf(&b, "\nTarget audience: %s", br.TargetAudience)
		if br.PriceTier != "" {
			fmt.Fprintf(&b, "\nPrice tier: %s", br.PriceTier)
		}
		if len(br.Differentiators) > 0 {
			b.WriteString("\nDifferentiators:")
			for _, d := range br.Differentiators {
				fmt.Fprintf(&b, "\n- %s", d)
			}
		}
	}

	return b.String()
}

func briefPrompt(category string, count int, context string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Plan %d distinct product concepts for an online shop in the industry %q. ", count, category)
	b.WriteString("Every concept needs a working name, a target audience, an optional price tier (budget, mid or premium) and 3 to 6 differentiators. ")
	b.WriteString("The concepts must differ from each other in purpose, audience and price; do not use real brand names.")
	if c := strings.TrimSpace(context); c != "" {
		fmt.Fprintf(&b, "\n\nAdditional context:\n%s", c)
	}
	return b.String()
}

func propertyGroupPrompt(category string, groupCount int) string {
	return fmt.Sprintf(
		"Create %d property groups for products in the industry %q, for example Color, Size or Material. "+
			"Every group needs a name, a short description, a display type (\"color\" for colors, otherwise \"text\") and 3 to 8 options. "+
			"Give color options a hex code.",
		groupCount, category,
	)
}

func imagePrompt(p domain.Product, category, context string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Professional studio product photography of %q, a product from the category %q. ", p.Name, category)
	fmt.Fprintf(&b, "Product details: %s. ", clip(stripTags(p.Description), maxImageContextChars))
	b.WriteString("Photorealistic, clean white background, soft studio lighting, macro lens, shallow depth of field. ")
	b.WriteString("No text, no labels, no logos, no watermarks.")
	if c := strings.TrimSpace(context); c != "" {
		fmt.Fprintf(&b, " Additional context: %s", clip(c, maxImageContextChars))
	}
	return b.String()
}

func stripTags(html string) string {
	var b strings.Builder
	inTag := false
	for _, r := range html {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
			b.WriteRune(' ')
		case !inTag:
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func clip(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
