package postgres

import (
	"time"

	"github.com/phenrril/catalogseed/internal/domain"
)

type CategoryRow struct {
	ID        string `gorm:"primaryKey;size:32"`
	Name      string `gorm:"size:255;index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (CategoryRow) TableName() string { return "catalog_categories" }

type PropertyGroupRow struct {
	ID          string              `gorm:"primaryKey;size:32"`
	Name        string              `gorm:"size:255"`
	Description string              `gorm:"type:text"`
	DisplayType string              `gorm:"size:20"`
	Options     []PropertyOptionRow `gorm:"foreignKey:GroupID"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (PropertyGroupRow) TableName() string { return "catalog_property_groups" }

type PropertyOptionRow struct {
	ID           string `gorm:"primaryKey;size:32"`
	GroupID      string `gorm:"size:32;index"`
	Name         string `gorm:"size:255"`
	ColorHexCode string `gorm:"size:9"`
	Position     int
}

func (PropertyOptionRow) TableName() string { return "catalog_property_options" }

type MediaRow struct {
	ID          string `gorm:"primaryKey;size:32"`
	FileName    string `gorm:"size:255"`
	ContentType string `gorm:"size:60"`
	Alt         string `gorm:"size:255"`
	Data        []byte
	Size        int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (MediaRow) TableName() string { return "catalog_media" }

type ProductRow struct {
	ID          string                 `gorm:"primaryKey;size:32"`
	CategoryID  string                 `gorm:"size:32;index"`
	MediaID     string                 `gorm:"size:32"`
	Name        string                 `gorm:"size:255;not null"`
	Description string                 `gorm:"type:text"`
	Price       float64                `gorm:"type:decimal(12,2)"`
	Stock       int
	OptionIDs   []string               `gorm:"type:text;serializer:json"`
	Reviews     []domain.ProductReview `gorm:"type:text;serializer:json"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (ProductRow) TableName() string { return "catalog_products" }

func (r ProductRow) toDomain() domain.Product {
	p := domain.Product{
		ID:             r.ID,
		Name:           r.Name,
		Description:    r.Description,
		Price:          r.Price,
		Stock:          r.Stock,
		ProductReviews: r.Reviews,
	}
	for _, id := range r.OptionIDs {
		p.Options = append(p.Options, domain.OptionRef{ID: id})
	}
	return p
}
