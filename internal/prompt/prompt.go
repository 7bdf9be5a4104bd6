// Package prompt assembles the per-step context, candidate-URL block, and
// final prompt text the LLM extractor is called with.
package prompt

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lueurxax/newscrawl/internal/htmlclean"
)

// Payload is one successfully fetched-and-cleaned page contributing to a
// step's combined prompt.
type Payload struct {
	SeedURL       string
	URL           string
	CleanedText   string
	CandidateURLs []string
}

// UniqueSeedURLs returns payloads' seed URLs in first-seen order, deduped.
func UniqueSeedURLs(payloads []Payload) []string {
	seen := make(map[string]bool)

	var out []string

	for _, p := range payloads {
		if seen[p.SeedURL] {
			continue
		}

		seen[p.SeedURL] = true

		out = append(out, p.SeedURL)
	}

	return out
}

// BuildContext concatenates per-payload blocks, joined by the literal
// separator "\n\n---\n\n".
func BuildContext(payloads []Payload) string {
	blocks := make([]string, 0, len(payloads))

	for _, p := range payloads {
		blocks = append(blocks, fmt.Sprintf("Seed: %s\nURL: %s\n%s", p.SeedURL, p.URL, p.CleanedText))
	}

	return strings.Join(blocks, "\n\n---\n\n")
}

// BuildCandidateBlock renders, per payload, a bulleted list of up to
// htmlclean.CandidateBlockCap() candidate URLs (or "(none)"), separated by
// a blank line. Returns the literal "(none)" if the whole block is empty.
func BuildCandidateBlock(payloads []Payload) string {
	blockCap := htmlclean.CandidateBlockCap()

	blocks := make([]string, 0, len(payloads))

	for _, p := range payloads {
		candidates := p.CandidateURLs
		if len(candidates) > blockCap {
			candidates = candidates[:blockCap]
		}

		var body string
		if len(candidates) == 0 {
			body = "(none)"
		} else {
			bullets := make([]string, 0, len(candidates))
			for _, c := range candidates {
				bullets = append(bullets, "- "+c)
			}

			body = strings.Join(bullets, "\n")
		}

		blocks = append(blocks, fmt.Sprintf("Seed: %s\n%s", p.SeedURL, body))
	}

	joined := strings.Join(blocks, "\n\n")
	if joined == "" {
		return "(none)"
	}

	return joined
}

// Build formats template with the step's fields, matching the original
// system's Python str.format placeholders.
func Build(template, objective string, payloads []Payload, maxNextURLs, maxArticles, maxArticleChars int) string {
	seedURLs := UniqueSeedURLs(payloads)

	bulletedSeeds := make([]string, 0, len(seedURLs))
	for _, s := range seedURLs {
		bulletedSeeds = append(bulletedSeeds, "- "+s)
	}

	firstSeedURL := ""
	if len(seedURLs) > 0 {
		firstSeedURL = seedURLs[0]
	}

	context := BuildContext(payloads)
	if strings.TrimSpace(objective) != "" {
		context = "Objective:\n" + objective + "\n\n" + context
	}

	candidateBlock := BuildCandidateBlock(payloads)

	replacer := strings.NewReplacer(
		"{seed_urls}", strings.Join(bulletedSeeds, "\n"),
		"{seed_url}", firstSeedURL,
		"{context}", context,
		"{candidate_urls}", candidateBlock,
		"{max_next_urls}", strconv.Itoa(maxNextURLs),
		"{max_articles}", strconv.Itoa(maxArticles),
		"{max_article_chars}", strconv.Itoa(maxArticleChars),
	)

	return replacer.Replace(template)
}
