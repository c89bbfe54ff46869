package domain

// Product is a generated catalog product. It only lives in memory until it is
// handed to a CatalogStore.
type Product struct {
	ID             string           `json:"id,omitempty"`
	Name           string           `json:"name" validate:"required"`
	Description    string           `json:"description" validate:"required"`
	Price          float64          `json:"price" validate:"gt=0"`
	Stock          int              `json:"stock" validate:"gte=0"`
	ProductReviews []ProductReview  `json:"productReviews,omitempty" validate:"omitempty,dive"`
	Options        []OptionRef      `json:"options,omitempty" validate:"omitempty,dive"`
	Image          *ImageAttachment `json:"image,omitempty"`
}

type ProductReview struct {
	ExternalUser  string `json:"externalUser" validate:"required"`
	ExternalEmail string `json:"externalEmail" validate:"required"`
	Title         string `json:"title" validate:"required"`
	Content       string `json:"content" validate:"required"`
	Points        int    `json:"points" validate:"min=1,max=5"`
	Status        bool   `json:"status"`
}

type OptionRef struct {
	ID string `json:"id" validate:"required"`
}

// ImageAttachment carries the product photo. Name doubles as the cache key.
type ImageAttachment struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Data string `json:"data"`
}

const ImageTypePNG = ".png"

func (p Product) AverageRating() float64 {
	if len(p.ProductReviews) == 0 {
		return 0
	}
	total := 0
	for _, r := range p.ProductReviews {
		total += r.Points
	}
	return float64(total) / float64(len(p.ProductReviews))
}

func ProductNames(products []Product) []string {
	names := make([]string, 0, len(products))
	for _, p := range products {
		names = append(names, p.Name)
	}
	return names
}
