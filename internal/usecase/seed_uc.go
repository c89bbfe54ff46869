package usecase

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/phenrril/catalogseed/internal/domain"
)

const imageContentType = "image/png"

type ProductPipeline interface {
	GenerateProducts(ctx context.Context, opts domain.GenerateOptions) ([]domain.Product, error)
}

type PropertyGroupSource interface {
	Generate(ctx context.Context, category string, groupCount int) []domain.PropertyGroup
}

// SeedUC runs a full seeding job: property groups, products, and the upload
// of everything to the catalog store.
type SeedUC struct {
	Pipeline       ProductPipeline
	PropertyGroups PropertyGroupSource
	Store          domain.CatalogStore
}

type SeedRequest struct {
	domain.GenerateOptions
	PropertyGroupCount int  `json:"propertyGroupCount"`
	Upload             bool `json:"upload"`
}

type SeedReport struct {
	Category       string                 `json:"category"`
	Requested      int                    `json:"requested"`
	Generated      int                    `json:"generated"`
	WithImages     int                    `json:"withImages"`
	Uploaded       bool                   `json:"uploaded"`
	PropertyGroups []domain.PropertyGroup `json:"propertyGroups,omitempty"`
	Products       []domain.Product       `json:"products"`
}

// NewID returns a dashless uuid, the id format the commerce platform expects.
func NewID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func (uc *SeedUC) Seed(ctx context.Context, req SeedRequest) (*SeedReport, error) {
	if strings.TrimSpace(req.Category) == "" {
		return nil, errors.New("empty category")
	}
	if uc.Pipeline == nil {
		return nil, errors.New("pipeline not configured")
	}

	opts := req.GenerateOptions
	if req.PropertyGroupCount > 0 && len(opts.PropertyGroups) == 0 {
		opts.PropertyGroups = uc.GeneratePropertyGroups(ctx, req.Category, req.PropertyGroupCount)
	} else {
		AssignGroupIDs(opts.PropertyGroups)
	}

	products, err := uc.Pipeline.GenerateProducts(ctx, opts)
	if err != nil {
		return nil, err
	}

	report := &SeedReport{
		Category:       req.Category,
		Requested:      req.Count,
		Generated:      len(products),
		PropertyGroups: opts.PropertyGroups,
		Products:       products,
	}
	for _, p := range products {
		if p.Image != nil {
			report.WithImages++
		}
	}

	if req.Upload {
		if err := uc.Upload(ctx, req.Category, opts.PropertyGroups, products); err != nil {
			return report, fmt.Errorf("upload: %w", err)
		}
		report.Uploaded = true
	}
	return report, nil
}

// GeneratePropertyGroups generates groups and gives every group and option an
// id, so the ids can constrain product generation.
func (uc *SeedUC) GeneratePropertyGroups(ctx context.Context, category string, groupCount int) []domain.PropertyGroup {
	if uc.PropertyGroups == nil {
		return nil
	}
	groups := uc.PropertyGroups.Generate(ctx, category, groupCount)
	AssignGroupIDs(groups)
	return groups
}

func AssignGroupIDs(groups []domain.PropertyGroup) {
	for i := range groups {
		if groups[i].ID == "" {
			groups[i].ID = NewID()
		}
		for j := range groups[i].Options {
			if groups[i].Options[j].ID == "" {
				groups[i].Options[j].ID = NewID()
			}
		}
	}
}

func (uc *SeedUC) Upload(ctx context.Context, category string, groups []domain.PropertyGroup, products []domain.Product) error {
	if uc.Store == nil {
		return errors.New("no catalog store configured")
	}

	cat := domain.CategoryRecord{ID: NewID(), Name: category}
	existing := false
	if finder, ok := uc.Store.(domain.CategoryFinder); ok {
		id, found, err := finder.FindCategory(ctx, category)
		if err != nil {
			return fmt.Errorf("category lookup: %w", err)
		}
		if found {
			cat.ID, existing = id, true
		}
	}
	if !existing {
		if err := uc.Store.Upsert(ctx, domain.EntityCategory, []any{cat}); err != nil {
			return fmt.Errorf("category: %w", err)
		}
	}

	if len(groups) > 0 {
		records := make([]any, 0, len(groups))
		for _, g := range groups {
			records = append(records, g)
		}
		if err := uc.Store.Upsert(ctx, domain.EntityPropertyGroup, records); err != nil {
			return fmt.Errorf("property groups: %w", err)
		}
	}

	type pendingUpload struct {
		media domain.MediaRecord
		data  []byte
	}
	var (
		productRecords = make([]any, 0, len(products))
		mediaRecords   []any
		uploads        []pendingUpload
	)
	for i := range products {
		p := &products[i]
		if p.ID == "" {
			p.ID = NewID()
		}
		rec := domain.ProductRecord{Product: *p, CategoryID: cat.ID}
		if p.Image != nil {
			data, err := base64.StdEncoding.DecodeString(p.Image.Data)
			if err != nil {
				log.Warn().Err(err).Str("product", p.Name).Msg("image payload not valid base64, skipping media")
			} else {
				m := domain.MediaRecord{
					ID:          NewID(),
					FileName:    p.Image.Name + "-" + p.ID[:8],
					ContentType: imageContentType,
					Alt:         p.Name,
				}
				rec.MediaID = m.ID
				mediaRecords = append(mediaRecords, m)
				uploads = append(uploads, pendingUpload{media: m, data: data})
			}
		}
		productRecords = append(productRecords, rec)
	}

	if len(mediaRecords) > 0 {
		if err := uc.Store.Upsert(ctx, domain.EntityMedia, mediaRecords); err != nil {
			return fmt.Errorf("media: %w", err)
		}
	}
	if err := uc.Store.Upsert(ctx, domain.EntityProduct, productRecords); err != nil {
		return fmt.Errorf("products: %w", err)
	}
	for _, u := range uploads {
		if err := uc.Store.UploadMedia(ctx, u.media.ID, u.media.FileName, u.media.ContentType, u.data); err != nil {
			log.Warn().Err(err).Str("media_id", u.media.ID).Msg("media upload failed")
		}
	}

	log.Info().Str("category", category).Int("products", len(productRecords)).Int("media", len(uploads)).Int("property_groups", len(groups)).Msg("catalog uploaded")
	return nil
}
