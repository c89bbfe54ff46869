package domain

type EntityType string

const (
	EntityProduct       EntityType = "product"
	EntityMedia         EntityType = "media"
	EntityPropertyGroup EntityType = "property_group"
	EntityCategory      EntityType = "category"
)

// ProductRecord is what gets upserted for a product: the generated product
// plus the links resolved by the seeding run.
type ProductRecord struct {
	Product    Product
	CategoryID string
	MediaID    string
}

type MediaRecord struct {
	ID          string
	FileName    string
	ContentType string
	Alt         string
}

type CategoryRecord struct {
	ID   string
	Name string
}

// GenerateOptions are the parameters of one pipeline run.
type GenerateOptions struct {
	Category            string          `json:"category" validate:"required"`
	Count               int             `json:"count" validate:"min=1,max=50"`
	PropertyGroups      []PropertyGroup `json:"propertyGroups,omitempty"`
	WantImages          bool            `json:"wantImages"`
	WantReviews         bool            `json:"wantReviews"`
	MinDescriptionWords int             `json:"minDescriptionWords"`
	Context             string          `json:"context,omitempty"`
}
