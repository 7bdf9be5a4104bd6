package htmlclean

import (
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"
)

// tzMarker matches an explicit timezone offset or designator at the end
// of a timestamp string (Z, UTC, GMT, or a +HH:MM/-HHMM offset).
var tzMarker = regexp.MustCompile(`(?i)(Z|UTC|GMT|[+-]\d{2}:?\d{2})\s*$`)

// minQualifyingParagraphLen is the preferred paragraph length; if no
// paragraph on the page reaches it, all non-empty paragraphs are used
// instead of producing an empty body.
const minQualifyingParagraphLen = 40

// ExtractedArticle is the heuristic extractor's output for one successful
// page fetch, used as the LLM's fallback.
type ExtractedArticle struct {
	Title       string
	Body        string
	PublishedAt time.Time
	HasDate     bool
}

// Extract implements the heuristic article extraction rules: title and
// published-at come from meta tags with fallbacks, body comes from the
// first qualifying container's paragraph text, falling back to the
// already-cleaned page text if no paragraph was found at all. Returns
// ok=false when both title and body end up empty, per "emit nothing".
func Extract(htmlBody []byte, cleanedText string, maxArticleChars int) (ExtractedArticle, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(htmlBody)))
	if err != nil {
		return ExtractedArticle{}, false
	}

	title := extractTitle(doc)
	publishedAt, hasDate := extractPublishedAt(doc)
	body := extractBody(doc)

	if body == "" {
		body = cleanedText
	}

	body = Clip(body, maxArticleChars)

	if title == "" && body == "" {
		return ExtractedArticle{}, false
	}

	return ExtractedArticle{
		Title:       title,
		Body:        body,
		PublishedAt: publishedAt,
		HasDate:     hasDate,
	}, true
}

func extractTitle(doc *goquery.Document) string {
	if content, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok && strings.TrimSpace(content) != "" {
		return strings.TrimSpace(content)
	}

	if content, ok := doc.Find(`meta[name="twitter:title"]`).Attr("content"); ok && strings.TrimSpace(content) != "" {
		return strings.TrimSpace(content)
	}

	return strings.TrimSpace(doc.Find("title").First().Text())
}

func extractPublishedAt(doc *goquery.Document) (time.Time, bool) {
	raw, ok := doc.Find(`meta[property="article:published_time"]`).Attr("content")
	if !ok || strings.TrimSpace(raw) == "" {
		raw, ok = doc.Find("time[datetime]").First().Attr("datetime")
	}

	if !ok || strings.TrimSpace(raw) == "" {
		return time.Time{}, false
	}

	return ParseTimestamp(raw)
}

// ParseTimestamp parses a flexible ISO-ish timestamp, used for both meta
// tag dates here and LLM-supplied published_at fields in the article
// storage gateway. Naive timestamps (no explicit zone/offset) are assumed
// UTC rather than trusting dateparse's Local-zone guess.
func ParseTimestamp(raw string) (time.Time, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return time.Time{}, false
	}

	parsed, err := dateparse.ParseAny(trimmed)
	if err != nil {
		return time.Time{}, false
	}

	if !tzMarker.MatchString(trimmed) {
		parsed = time.Date(
			parsed.Year(), parsed.Month(), parsed.Day(),
			parsed.Hour(), parsed.Minute(), parsed.Second(), parsed.Nanosecond(),
			time.UTC,
		)
	}

	return parsed, true
}

func extractBody(doc *goquery.Document) string {
	container := doc.Find("article").First()
	if container.Length() == 0 {
		container = doc.Find("main").First()
	}

	if container.Length() == 0 {
		container = doc.Find("body").First()
	}

	if container.Length() == 0 {
		container = doc.Selection
	}

	var qualifying, all []string

	container.Find("p").Each(func(_ int, sel *goquery.Selection) {
		text := collapseWhitespace(sel.Text())
		if text == "" {
			return
		}

		all = append(all, text)

		if len(text) >= minQualifyingParagraphLen {
			qualifying = append(qualifying, text)
		}
	})

	if len(qualifying) > 0 {
		return strings.Join(qualifying, "\n\n")
	}

	return strings.Join(all, "\n\n")
}

func collapseWhitespace(s string) string {
	return strings.TrimSpace(strings.Join(strings.Fields(s), " "))
}
