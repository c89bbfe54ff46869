package scraper

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

const DefaultMaxChars = 3000

type Options struct {
	Static   Fetcher
	Rendered Fetcher
	MaxChars int
}

// Enricher appends the readable text of the first URL found in a context
// string. It is best effort: on any failure the context comes back as is.
type Enricher struct {
	static   Fetcher
	rendered Fetcher
	maxChars int
}

func NewEnricher(opts Options) *Enricher {
	maxChars := opts.MaxChars
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	return &Enricher{static: opts.Static, rendered: opts.Rendered, maxChars: maxChars}
}

func (e *Enricher) Enrich(ctx context.Context, rawContext string) string {
	url, ok := FirstURL(rawContext)
	if !ok {
		return rawContext
	}

	text, err := e.crawl(ctx, url)
	if err != nil {
		log.Warn().Err(err).Str("url", url).Msg("context enrichment skipped")
		return rawContext
	}

	var b strings.Builder
	b.WriteString(rawContext)
	fmt.Fprintf(&b, "\n\n--- Crawled content from %s ---\n", url)
	b.WriteString(Clip(text, e.maxChars))
	b.WriteString("\n--- End of crawled content ---")
	log.Info().Str("url", url).Int("chars", len(text)).Msg("context enriched")
	return b.String()
}

func (e *Enricher) crawl(ctx context.Context, url string) (string, error) {
	var errs []error
	for _, f := range []Fetcher{e.rendered, e.static} {
		if f == nil {
			continue
		}
		html, err := f.Fetch(ctx, url)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		text, err := ExtractText(html)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if text == "" {
			errs = append(errs, errors.New("no readable text"))
			continue
		}
		return text, nil
	}
	if len(errs) == 0 {
		return "", errors.New("no fetcher configured")
	}
	return "", errors.Join(errs...)
}
