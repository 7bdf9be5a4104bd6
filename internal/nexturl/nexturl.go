// Package nexturl reconciles LLM-suggested next-hop URLs with per-seed
// targets and a heuristic fallback pool, producing the bounded list of
// (seed_url, next_url) pairs the engine enqueues each step.
package nexturl

import (
	"math/rand"
	"strings"
)

// SeedPair is one seed_url -> next_url suggestion or selection.
type SeedPair struct {
	SeedURL string
	NextURL string
}

// skipTokens are path substrings that disqualify a candidate URL from the
// heuristic fallback pool; checked case-insensitively.
var skipTokens = []string{
	"/login", "/signup", "/register", "/account", "/privacy", "/terms",
	"/cookie", "/contact", "/about", "/help", "/support", "/advertise",
	"/subscribe", "/newsletter", "/rss",
}

// SelectNextURLs implements select_next_urls: dedupe preserving order,
// drop skip-token URLs, shuffle with rng, then take the first
// max(1, limit). rng is an explicit dependency so callers can seed it for
// deterministic tests.
func SelectNextURLs(pool []string, limit int, rng *rand.Rand) []string {
	deduped := dedupe(pool)

	filtered := make([]string, 0, len(deduped))

	for _, url := range deduped {
		if !containsSkipToken(url) {
			filtered = append(filtered, url)
		}
	}

	rng.Shuffle(len(filtered), func(i, j int) {
		filtered[i], filtered[j] = filtered[j], filtered[i]
	})

	if limit < 1 {
		limit = 1
	}

	if limit > len(filtered) {
		limit = len(filtered)
	}

	return filtered[:limit]
}

func containsSkipToken(url string) bool {
	lower := strings.ToLower(url)

	for _, token := range skipTokens {
		if strings.Contains(lower, token) {
			return true
		}
	}

	return false
}

func dedupe(items []string) []string {
	seen := make(map[string]bool, len(items))

	out := make([]string, 0, len(items))

	for _, item := range items {
		if seen[item] {
			continue
		}

		seen[item] = true

		out = append(out, item)
	}

	return out
}

// Assign implements the next-URL assigner algorithm (stable):
//  1. Build a seed_url -> next_url mapping from llmPairs, restricted to
//     seeds present in this step.
//  2. Emit, in seed order, each (seed, mapping[seed]) whose URL isn't
//     already used.
//  3. If step 2 emitted nothing and llmFlat is non-empty, round-robin
//     assign llmFlat URLs across seeds, skipping empties and used URLs.
//  4. Top up from the heuristic fallback pool, round-robin across seeds,
//     until targetSize is reached or the fallback runs dry.
func Assign(
	llmPairs []SeedPair, llmFlat []string, seedURLs []string, targetSize int,
	candidatePool []string, rng *rand.Rand,
) []SeedPair {
	if len(seedURLs) == 0 {
		return nil
	}

	used := make(map[string]bool)

	var selections []SeedPair

	mapping := make(map[string]string, len(llmPairs))
	inStep := make(map[string]bool, len(seedURLs))

	for _, s := range seedURLs {
		inStep[s] = true
	}

	for _, pair := range llmPairs {
		if inStep[pair.SeedURL] {
			mapping[pair.SeedURL] = pair.NextURL
		}
	}

	for _, seed := range seedURLs {
		next, ok := mapping[seed]
		if !ok || next == "" || used[next] {
			continue
		}

		selections = append(selections, SeedPair{SeedURL: seed, NextURL: next})
		used[next] = true
	}

	if len(selections) == 0 && len(llmFlat) > 0 {
		for i, next := range llmFlat {
			if next == "" || used[next] {
				continue
			}

			seed := seedURLs[i%len(seedURLs)]
			selections = append(selections, SeedPair{SeedURL: seed, NextURL: next})
			used[next] = true
		}
	}

	if len(selections) >= targetSize {
		return selections
	}

	fallback := SelectNextURLs(candidatePool, targetSize, rng)

	i := 0

	for _, next := range fallback {
		if len(selections) >= targetSize {
			break
		}

		if next == "" || used[next] {
			continue
		}

		seed := seedURLs[i%len(seedURLs)]
		selections = append(selections, SeedPair{SeedURL: seed, NextURL: next})
		used[next] = true
		i++
	}

	return selections
}
