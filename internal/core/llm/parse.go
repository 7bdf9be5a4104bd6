package llm

import "encoding/json"

// parseResponse decodes raw LLM text into a Result per the shared response
// parsing rules every provider adapter funnels through: accept a JSON
// object only; coerce next_urls_by_seed when given as a mapping; reject
// the whole result if next_urls, next_urls_by_seed, or articles isn't a
// list once coerced.
func parseResponse(content string) *Result {
	var raw map[string]any

	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return nil
	}

	nextURLsRaw, nextURLsOK := asList(raw["next_urls"])
	if !nextURLsOK {
		return nil
	}

	articlesRaw, articlesOK := asList(raw["articles"])
	if !articlesOK {
		return nil
	}

	bySeed, ok := coerceNextURLsBySeed(raw["next_urls_by_seed"])
	if !ok {
		return nil
	}

	result := &Result{
		NextURLs:       filterStrings(nextURLsRaw),
		NextURLsBySeed: bySeed,
		Articles:       filterDicts(articlesRaw),
	}

	return result
}

// asList reports a field as present-and-a-list (v is a []any), or absent
// (v is nil, treated as an empty list); any other shape is rejected.
func asList(v any) ([]any, bool) {
	if v == nil {
		return nil, true
	}

	list, ok := v.([]any)

	return list, ok
}

// coerceNextURLsBySeed accepts either a JSON array of {seed_url, next_url}
// objects or a JSON object keyed by seed_url, matching the original
// system's permissive _parse_response.
func coerceNextURLsBySeed(v any) ([]SeedNextURL, bool) {
	switch val := v.(type) {
	case nil:
		return nil, true
	case []any:
		return filterSeedPairs(val), true
	case map[string]any:
		pairs := make([]SeedNextURL, 0, len(val))

		for seedURL, nextURL := range val {
			s, ok := nextURL.(string)
			if !ok {
				continue
			}

			pairs = append(pairs, SeedNextURL{SeedURL: seedURL, NextURL: s})
		}

		return pairs, true
	default:
		return nil, false
	}
}

func filterStrings(items []any) []string {
	out := make([]string, 0, len(items))

	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}

	return out
}

func filterDicts(items []any) []map[string]any {
	out := make([]map[string]any, 0, len(items))

	for _, item := range items {
		if d, ok := item.(map[string]any); ok {
			out = append(out, d)
		}
	}

	return out
}

func filterSeedPairs(items []any) []SeedNextURL {
	out := make([]SeedNextURL, 0, len(items))

	for _, item := range items {
		d, ok := item.(map[string]any)
		if !ok {
			continue
		}

		seedURL, _ := d["seed_url"].(string)
		nextURL, _ := d["next_url"].(string)

		if seedURL == "" && nextURL == "" {
			continue
		}

		out = append(out, SeedNextURL{SeedURL: seedURL, NextURL: nextURL})
	}

	return out
}
