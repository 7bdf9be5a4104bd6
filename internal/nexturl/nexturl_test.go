package nexturl

import (
	"math/rand"
	"testing"
)

func TestSelectNextURLs(t *testing.T) {
	tests := []struct {
		name  string
		pool  []string
		limit int
		want  int
	}{
		{
			name:  "dedupes and drops skip tokens",
			pool:  []string{"https://a.example/article", "https://a.example/article", "https://a.example/login"},
			limit: 5,
			want:  1,
		},
		{
			name:  "limit below 1 is clamped to 1",
			pool:  []string{"https://a.example/x", "https://a.example/y"},
			limit: 0,
			want:  1,
		},
		{
			name:  "limit above pool size is clamped to pool size",
			pool:  []string{"https://a.example/x"},
			limit: 10,
			want:  1,
		},
		{
			name:  "empty pool yields empty result",
			pool:  nil,
			limit: 5,
			want:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rng := rand.New(rand.NewSource(1))

			got := SelectNextURLs(tt.pool, tt.limit, rng)
			if len(got) != tt.want {
				t.Errorf("SelectNextURLs() = %v (len %d), want len %d", got, len(got), tt.want)
			}
		})
	}
}

func TestSelectNextURLsDropsAllSkipTokenVariants(t *testing.T) {
	pool := []string{
		"https://a.example/login", "https://a.example/signup", "https://a.example/register",
		"https://a.example/account", "https://a.example/privacy", "https://a.example/terms",
		"https://a.example/cookie", "https://a.example/contact", "https://a.example/about",
		"https://a.example/help", "https://a.example/support", "https://a.example/advertise",
		"https://a.example/subscribe", "https://a.example/newsletter", "https://a.example/rss",
		"https://a.example/article-1",
	}

	rng := rand.New(rand.NewSource(1))

	got := SelectNextURLs(pool, len(pool), rng)
	if len(got) != 1 || got[0] != "https://a.example/article-1" {
		t.Errorf("SelectNextURLs() = %v, want only the article URL", got)
	}
}

func TestAssignPrefersLLMPairs(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	seeds := []string{"https://seed-a.example", "https://seed-b.example"}
	llmPairs := []SeedPair{
		{SeedURL: "https://seed-a.example", NextURL: "https://seed-a.example/next-1"},
		{SeedURL: "https://seed-b.example", NextURL: "https://seed-b.example/next-1"},
	}

	got := Assign(llmPairs, nil, seeds, 2, nil, rng)

	if len(got) != 2 {
		t.Fatalf("Assign() = %v, want 2 selections", got)
	}

	for i, sel := range got {
		if sel.SeedURL != seeds[i] || sel.NextURL != llmPairs[i].NextURL {
			t.Errorf("Assign()[%d] = %+v, want %+v", i, sel, llmPairs[i])
		}
	}
}

func TestAssignFallsBackToFlatLLMList(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	seeds := []string{"https://seed-a.example", "https://seed-b.example"}
	llmFlat := []string{"https://seed-a.example/flat-1", "https://seed-b.example/flat-2"}

	got := Assign(nil, llmFlat, seeds, 2, nil, rng)

	if len(got) != 2 {
		t.Fatalf("Assign() = %v, want 2 selections", got)
	}

	used := map[string]bool{}
	for _, sel := range got {
		used[sel.NextURL] = true
	}

	for _, next := range llmFlat {
		if !used[next] {
			t.Errorf("Assign() missing flat URL %q in %v", next, got)
		}
	}
}

func TestAssignTopsUpFromCandidatePool(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	seeds := []string{"https://seed-a.example"}
	pool := []string{"https://seed-a.example/fallback-1", "https://seed-a.example/fallback-2"}

	got := Assign(nil, nil, seeds, 2, pool, rng)

	if len(got) != 2 {
		t.Fatalf("Assign() = %v, want 2 selections from fallback pool", got)
	}

	for _, sel := range got {
		if sel.SeedURL != seeds[0] {
			t.Errorf("Assign() selection seed = %q, want %q", sel.SeedURL, seeds[0])
		}
	}
}

func TestAssignNeverDuplicatesAcrossSources(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	seeds := []string{"https://seed-a.example"}
	llmPairs := []SeedPair{{SeedURL: "https://seed-a.example", NextURL: "https://seed-a.example/dup"}}
	pool := []string{"https://seed-a.example/dup", "https://seed-a.example/fresh"}

	got := Assign(llmPairs, nil, seeds, 2, pool, rng)

	seen := map[string]int{}
	for _, sel := range got {
		seen[sel.NextURL]++
	}

	for url, count := range seen {
		if count > 1 {
			t.Errorf("Assign() duplicated URL %q %d times in %v", url, count, got)
		}
	}
}

func TestAssignEmptySeedsReturnsNil(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	got := Assign(nil, nil, nil, 5, []string{"https://x.example"}, rng)
	if got != nil {
		t.Errorf("Assign() = %v, want nil for empty seedURLs", got)
	}
}
