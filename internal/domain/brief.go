package domain

type PriceTier string

const (
	PriceTierBudget  PriceTier = "budget"
	PriceTierMid     PriceTier = "mid"
	PriceTierPremium PriceTier = "premium"
)

// ProductBrief is a short product concept planned before generation so that
// products generated in parallel do not collapse into near-duplicates.
type ProductBrief struct {
	NameIdea        string    `json:"nameIdea" validate:"required"`
	TargetAudience  string    `json:"targetAudience" validate:"required"`
	PriceTier       PriceTier `json:"priceTier,omitempty" validate:"omitempty,oneof=budget mid premium"`
	Differentiators []string  `json:"differentiators" validate:"min=3,max=6,dive,required"`
}
