package scraper

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	noiseSelector   = "script, style, noscript, nav, footer, header, aside, iframe, svg, form, [aria-hidden=true], .cookie, .banner, .advert"
	contentSelector = "h1, h2, h3, h4, h5, h6, p, li"
)

var (
	blankRuns  = regexp.MustCompile(`\n{3,}`)
	spaceRuns  = regexp.MustCompile(`[ \t\r\f\v]+`)
	urlPattern = regexp.MustCompile(`https?://\S+`)
)

// ExtractText keeps the text of headings, paragraphs and list items in
// document order, after dropping scripts, navigation and decoration.
func ExtractText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", err
	}
	doc.Find(noiseSelector).Remove()

	var blocks []string
	doc.Find(contentSelector).Each(func(_ int, s *goquery.Selection) {
		// an enclosing block already carries this text
		if s.ParentsFiltered(contentSelector).Length() > 0 {
			return
		}
		text := strings.TrimSpace(spaceRuns.ReplaceAllString(s.Text(), " "))
		if text != "" {
			blocks = append(blocks, text)
		}
	})

	text := strings.Join(blocks, "\n\n")
	text = blankRuns.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text), nil
}

// closers maps a closing bracket to its opener.
var closers = map[byte]byte{')': '(', ']': '[', '}': '{'}

// FirstURL returns the first http(s) URL in s, without trailing punctuation.
// A closing bracket is kept when the URL itself opened it, as in
// https://en.wikipedia.org/wiki/Go_(programming_language).
func FirstURL(s string) (string, bool) {
	m := urlPattern.FindString(s)
	if m == "" {
		return "", false
	}
	for m != "" {
		last := m[len(m)-1]
		if strings.IndexByte(`.,;:!?>'"`, last) >= 0 {
			m = m[:len(m)-1]
			continue
		}
		opener, ok := closers[last]
		if !ok || strings.Count(m, string(opener)) >= strings.Count(m, string(last)) {
			break
		}
		m = m[:len(m)-1]
	}
	return m, m != ""
}

func Clip(text string, maxChars int) string {
	if maxChars <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= maxChars {
		return text
	}
	return strings.TrimSpace(string(runes[:maxChars])) + "\n[... content truncated]"
}
