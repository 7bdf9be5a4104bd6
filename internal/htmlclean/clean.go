// Package htmlclean turns a fetched page's raw HTML into the cleaned text,
// candidate next-hop URLs, and heuristic article extraction the crawl
// engine needs when the LLM extractor is disabled or unavailable.
package htmlclean

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// droppedTags are stripped entirely before text extraction: none of their
// contents are ever genuine article prose or navigable article links.
var droppedTags = []string{"script", "style", "noscript", "header", "footer", "nav", "aside", "form"}

// Clean extracts visible text from raw HTML: drops droppedTags, walks the
// remaining tree collecting text with newline separators, trims each
// line, drops empty lines, and rejoins with "\n".
func Clean(htmlBody []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(htmlBody)))
	if err != nil {
		return "", err
	}

	doc.Find(strings.Join(droppedTags, ",")).Remove()

	var texts []string
	var walk func(*goquery.Selection)
	walk = func(sel *goquery.Selection) {
		sel.Contents().Each(func(_ int, child *goquery.Selection) {
			if goquery.NodeName(child) == "#text" {
				texts = append(texts, child.Text())
			} else {
				walk(child)
			}
		})
	}
	walk(doc.Selection)

	raw := strings.Join(texts, "\n")

	var lines []string

	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed != "" {
			lines = append(lines, trimmed)
		}
	}

	return strings.Join(lines, "\n"), nil
}

// CandidateURLs harvests every <a href>, resolves it against base, rejects
// non-HTTP(S) schemes, optionally rejects cross-host links, and dedupes
// preserving first-seen order. The 200-per-payload cap applies only when
// the candidate block is rendered into the prompt (internal/prompt), not
// here.
func CandidateURLs(htmlBody []byte, base string, allowExternalDomains bool) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(htmlBody)))
	if err != nil {
		return nil, err
	}

	baseURL, err := url.Parse(base)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)

	var out []string

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")

		href = strings.TrimSpace(href)
		if href == "" {
			return
		}

		resolved, err := baseURL.Parse(href)
		if err != nil {
			return
		}

		if resolved.Scheme != "http" && resolved.Scheme != "https" {
			return
		}

		if !allowExternalDomains && resolved.Hostname() != baseURL.Hostname() {
			return
		}

		abs := resolved.String()
		if seen[abs] {
			return
		}

		seen[abs] = true

		out = append(out, abs)
	})

	return out, nil
}

// candidateBlockCap is the per-payload cap on how many candidate URLs get
// rendered into the prompt's candidate block.
const candidateBlockCap = 200

// CandidateBlockCap exposes candidateBlockCap to internal/prompt.
func CandidateBlockCap() int {
	return candidateBlockCap
}
