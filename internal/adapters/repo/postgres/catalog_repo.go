package postgres

import (
	"context"
	"errors"
	"fmt"

	pgdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/phenrril/catalogseed/internal/domain"
)

func Open(dsn string) (*gorm.DB, error) {
	return gorm.Open(pgdriver.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)})
}

// CatalogRepo is a domain.CatalogStore on plain SQL tables, for demo setups
// without a commerce platform.
type CatalogRepo struct{ db *gorm.DB }

func NewCatalogRepo(db *gorm.DB) *CatalogRepo { return &CatalogRepo{db: db} }

func (r *CatalogRepo) Migrate() error {
	return r.db.AutoMigrate(&CategoryRow{}, &PropertyGroupRow{}, &PropertyOptionRow{}, &MediaRow{}, &ProductRow{})
}

func (r *CatalogRepo) Upsert(ctx context.Context, entity domain.EntityType, records []any) error {
	if len(records) == 0 {
		return nil
	}
	db := r.db.WithContext(ctx)
	upsert := clause.OnConflict{UpdateAll: true}

	switch entity {
	case domain.EntityCategory:
		rows, err := convert(records, func(c domain.CategoryRecord) CategoryRow {
			return CategoryRow{ID: c.ID, Name: c.Name}
		})
		if err != nil {
			return err
		}
		return db.Clauses(upsert).Create(&rows).Error

	case domain.EntityMedia:
		rows, err := convert(records, func(m domain.MediaRecord) MediaRow {
			return MediaRow{ID: m.ID, FileName: m.FileName, ContentType: m.ContentType, Alt: m.Alt}
		})
		if err != nil {
			return err
		}
		return db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"file_name", "content_type", "alt", "updated_at"}),
		}).Create(&rows).Error

	case domain.EntityPropertyGroup:
		groups, err := convert(records, func(g domain.PropertyGroup) PropertyGroupRow {
			row := PropertyGroupRow{ID: g.ID, Name: g.Name, Description: g.Description, DisplayType: string(g.DisplayType)}
			for i, o := range g.Options {
				row.Options = append(row.Options, PropertyOptionRow{
					ID: o.ID, GroupID: g.ID, Name: o.Name, ColorHexCode: o.ColorHexCode, Position: i + 1,
				})
			}
			return row
		})
		if err != nil {
			return err
		}
		return db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Omit(clause.Associations).Clauses(upsert).Create(&groups).Error; err != nil {
				return err
			}
			var options []PropertyOptionRow
			for _, g := range groups {
				options = append(options, g.Options...)
			}
			if len(options) == 0 {
				return nil
			}
			return tx.Clauses(upsert).Create(&options).Error
		})

	case domain.EntityProduct:
		rows, err := convert(records, func(rec domain.ProductRecord) ProductRow {
			p := rec.Product
			row := ProductRow{
				ID:          p.ID,
				CategoryID:  rec.CategoryID,
				MediaID:     rec.MediaID,
				Name:        p.Name,
				Description: p.Description,
				Price:       p.Price,
				Stock:       p.Stock,
				Reviews:     p.ProductReviews,
			}
			for _, o := range p.Options {
				row.OptionIDs = append(row.OptionIDs, o.ID)
			}
			return row
		})
		if err != nil {
			return err
		}
		return db.Clauses(upsert).Create(&rows).Error
	}
	return fmt.Errorf("unsupported entity %q", entity)
}

// UploadMedia stores the bytes in the media row, creating it if the record
// was never upserted.
func (r *CatalogRepo) UploadMedia(ctx context.Context, mediaID, fileName, contentType string, data []byte) error {
	row := MediaRow{ID: mediaID, FileName: fileName, ContentType: contentType, Data: data, Size: len(data)}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"file_name", "content_type", "data", "size", "updated_at"}),
	}).Create(&row).Error
}

func (r *CatalogRepo) FindCategory(ctx context.Context, name string) (string, bool, error) {
	var row CategoryRow
	err := r.db.WithContext(ctx).Where("name = ?", name).Order("created_at asc").First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return row.ID, true, nil
}

func (r *CatalogRepo) ListProducts(ctx context.Context, categoryID string) ([]domain.Product, error) {
	var rows []ProductRow
	q := r.db.WithContext(ctx).Order("name asc")
	if categoryID != "" {
		q = q.Where("category_id = ?", categoryID)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Product, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *CatalogRepo) FindMedia(ctx context.Context, id string) (*MediaRow, error) {
	var row MediaRow
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &row, nil
}

func convert[T, R any](records []any, fn func(T) R) ([]R, error) {
	out := make([]R, 0, len(records))
	for i, rec := range records {
		v, ok := rec.(T)
		if !ok {
			return nil, fmt.Errorf("record %d: unexpected type %T", i, rec)
		}
		out = append(out, fn(v))
	}
	return out, nil
}
