package shopware

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/phenrril/catalogseed/internal/domain"
)

const (
	syncPath          = "/api/_action/sync"
	visibilityAll     = 30
	productNumberSize = 12
)

type syncOperation struct {
	Entity  string           `json:"entity"`
	Action  string           `json:"action"`
	Payload []map[string]any `json:"payload"`
}

func (s *Store) Upsert(ctx context.Context, entity domain.EntityType, records []any) error {
	if len(records) == 0 {
		return nil
	}

	var (
		payload []map[string]any
		err     error
	)
	switch entity {
	case domain.EntityCategory:
		payload, err = mapEach(records, categoryPayload)
	case domain.EntityPropertyGroup:
		payload, err = mapEach(records, propertyGroupPayload)
	case domain.EntityMedia:
		payload, err = mapEach(records, mediaPayload)
	case domain.EntityProduct:
		l, lerr := s.resolve(ctx)
		if lerr != nil {
			return lerr
		}
		payload, err = mapEach(records, func(r domain.ProductRecord) map[string]any { return productPayload(r, l) })
	default:
		return fmt.Errorf("unsupported entity %q", entity)
	}
	if err != nil {
		return err
	}

	ops := map[string]syncOperation{
		"seed-" + string(entity): {Entity: string(entity), Action: "upsert", Payload: payload},
	}
	if err := s.postJSON(ctx, syncPath, ops, nil); err != nil {
		return err
	}
	log.Info().Str("entity", string(entity)).Int("records", len(payload)).Msg("shopware sync")
	return nil
}

func (s *Store) UploadMedia(ctx context.Context, mediaID, fileName, contentType string, data []byte) error {
	ext := strings.TrimPrefix(path.Ext(fileName), ".")
	name := strings.TrimSuffix(fileName, path.Ext(fileName))
	if ext == "" {
		ext = extensionFor(contentType)
	}
	q := url.Values{}
	q.Set("extension", ext)
	q.Set("fileName", name)
	return s.do(ctx, http.MethodPost, "/api/_action/media/"+mediaID+"/upload", q, contentType, bytes.NewReader(data), nil)
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return "jpg"
	case "image/webp":
		return "webp"
	default:
		return "png"
	}
}

func mapEach[T any](records []any, fn func(T) map[string]any) ([]map[string]any, error) {
	out := make([]map[string]any, 0, len(records))
	for i, r := range records {
		v, ok := r.(T)
		if !ok {
			return nil, fmt.Errorf("record %d: unexpected type %T", i, r)
		}
		out = append(out, fn(v))
	}
	return out, nil
}

func categoryPayload(c domain.CategoryRecord) map[string]any {
	return map[string]any{"id": c.ID, "name": c.Name, "active": true}
}

func propertyGroupPayload(g domain.PropertyGroup) map[string]any {
	options := make([]map[string]any, 0, len(g.Options))
	for i, o := range g.Options {
		opt := map[string]any{"id": o.ID, "name": o.Name, "position": i + 1}
		if o.ColorHexCode != "" {
			opt["colorHexCode"] = o.ColorHexCode
		}
		options = append(options, opt)
	}
	return map[string]any{
		"id":          g.ID,
		"name":        g.Name,
		"description": g.Description,
		"displayType": string(g.DisplayType),
		"sortingType": "alphanumeric",
		"options":     options,
	}
}

func mediaPayload(m domain.MediaRecord) map[string]any {
	return map[string]any{"id": m.ID, "alt": m.Alt, "title": m.Alt}
}

func productPayload(r domain.ProductRecord, l *lookups) map[string]any {
	p := r.Product
	net := p.Price
	if l.taxRate > 0 {
		net = math.Round(p.Price/(1+l.taxRate/100)*100) / 100
	}

	number := strings.ToUpper(p.ID)
	if len(number) > productNumberSize {
		number = number[:productNumberSize]
	}

	out := map[string]any{
		"id":            p.ID,
		"productNumber": "SEED-" + number,
		"name":          p.Name,
		"description":   p.Description,
		"stock":         p.Stock,
		"active":        true,
		"taxId":         l.taxID,
		"price": []map[string]any{{
			"currencyId": l.currencyID,
			"gross":      p.Price,
			"net":        net,
			"linked":     true,
		}},
		"visibilities": []map[string]any{{
			"salesChannelId": l.salesChannelID,
			"visibility":     visibilityAll,
		}},
	}
	if r.CategoryID != "" {
		out["categories"] = []map[string]any{{"id": r.CategoryID}}
	}
	if len(p.Options) > 0 {
		props := make([]map[string]any, 0, len(p.Options))
		for _, o := range p.Options {
			props = append(props, map[string]any{"id": o.ID})
		}
		out["properties"] = props
	}
	if len(p.ProductReviews) > 0 {
		reviews := make([]map[string]any, 0, len(p.ProductReviews))
		for _, rv := range p.ProductReviews {
			reviews = append(reviews, map[string]any{
				"salesChannelId": l.salesChannelID,
				"languageId":     systemLanguageID,
				"externalUser":   rv.ExternalUser,
				"externalEmail":  rv.ExternalEmail,
				"title":          rv.Title,
				"content":        rv.Content,
				"points":         rv.Points,
				"status":         rv.Status,
			})
		}
		out["productReviews"] = reviews
	}
	if r.MediaID != "" {
		// product_media rows reuse the media id so coverId can point at it.
		out["media"] = []map[string]any{{"id": r.MediaID, "mediaId": r.MediaID, "position": 1}}
		out["coverId"] = r.MediaID
	}
	return out
}
