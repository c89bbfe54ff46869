package usecase

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"

	"github.com/rs/zerolog/log"

	"github.com/phenrril/catalogseed/internal/domain"
)

var nonAlpha = regexp.MustCompile(`[^a-zA-Z]`)

const uncategorizedDir = "uncategorized"

// CacheKey strips everything but ASCII letters. Identical product names
// within a category therefore share one cached image.
func CacheKey(s string) string {
	return nonAlpha.ReplaceAllString(s, "")
}

type ImageGenerator struct {
	model domain.ImageModel
	cache domain.ImageCache
}

func NewImageGenerator(model domain.ImageModel, cache domain.ImageCache) *ImageGenerator {
	return &ImageGenerator{model: model, cache: cache}
}

// Attach returns p with an image attached. When no image can be produced the
// product is returned unchanged.
func (g *ImageGenerator) Attach(ctx context.Context, p domain.Product, category, extraContext string) domain.Product {
	res := g.Generate(ctx, p, category, extraContext)
	if res.Err != nil {
		log.Warn().Err(res.Err).Str("category", category).Str("product", p.Name).Msg("product image skipped")
		return p
	}
	img := res.Value
	p.Image = &img
	return p
}

func (g *ImageGenerator) Generate(ctx context.Context, p domain.Product, category, extraContext string) domain.Result[domain.ImageAttachment] {
	key := CacheKey(p.Name)
	dir := CacheKey(category)
	if dir == "" {
		dir = uncategorizedDir
	}

	if key != "" && g.cache != nil {
		data, ok, err := g.cache.Load(dir, key)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("image cache read failed")
		}
		if ok {
			log.Debug().Str("key", key).Str("dir", dir).Msg("image cache hit")
			return domain.Ok(attachment(key, data))
		}
	}

	if g.model == nil {
		return domain.Fail[domain.ImageAttachment](errors.New("no image model configured"))
	}
	data, err := g.model.GenerateImage(ctx, imagePrompt(p, category, extraContext))
	if err != nil {
		return domain.Fail[domain.ImageAttachment](fmt.Errorf("generate image: %w", err))
	}
	if len(data) == 0 {
		return domain.Fail[domain.ImageAttachment](domain.ErrEmptyResponse)
	}

	if key != "" && g.cache != nil {
		if err := g.cache.Store(dir, key, data); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("image cache write failed")
		}
	}
	if key == "" {
		key = "product"
	}
	return domain.Ok(attachment(key, data))
}

func attachment(key string, data []byte) domain.ImageAttachment {
	return domain.ImageAttachment{
		Name: key,
		Type: domain.ImageTypePNG,
		Data: base64.StdEncoding.EncodeToString(data),
	}
}
