package engine

import (
	"testing"

	"github.com/lueurxax/newscrawl/internal/core/llm"
	"github.com/lueurxax/newscrawl/internal/domain"
)

func TestExtractLLMPairsNilResult(t *testing.T) {
	if got := extractLLMPairs(nil); got != nil {
		t.Errorf("extractLLMPairs(nil) = %v, want nil", got)
	}
}

func TestExtractLLMPairsMapsSeedNextURL(t *testing.T) {
	result := &llm.Result{
		NextURLsBySeed: []llm.SeedNextURL{
			{SeedURL: "https://a.example", NextURL: "https://a.example/2"},
		},
	}

	got := extractLLMPairs(result)
	if len(got) != 1 || got[0].SeedURL != "https://a.example" || got[0].NextURL != "https://a.example/2" {
		t.Errorf("extractLLMPairs() = %v, want one mapped pair", got)
	}
}

func TestExtractLLMFlatNilResult(t *testing.T) {
	if got := extractLLMFlat(nil); got != nil {
		t.Errorf("extractLLMFlat(nil) = %v, want nil", got)
	}
}

func TestExtractLLMFlatPassesThrough(t *testing.T) {
	result := &llm.Result{NextURLs: []string{"https://a.example/x"}}

	got := extractLLMFlat(result)
	if len(got) != 1 || got[0] != "https://a.example/x" {
		t.Errorf("extractLLMFlat() = %v, want the result's NextURLs", got)
	}
}

func TestSeedContext(t *testing.T) {
	batch := []domain.CrawlQueueItem{
		{SeedID: "seed-1", SeedURL: "https://a.example", Depth: 2},
		{SeedID: "seed-1", SeedURL: "https://a.example", Depth: 0},
		{SeedID: "", SeedURL: "https://b.example", Depth: 1},
	}

	seedMap, seedDepth := seedContext(batch)

	if seedMap["https://a.example"].ID != "seed-1" {
		t.Errorf("seedMap[https://a.example].ID = %q, want %q", seedMap["https://a.example"].ID, "seed-1")
	}

	if _, ok := seedMap["https://b.example"]; ok {
		t.Error("seedMap should not include a seed with an empty SeedID")
	}

	if seedDepth["https://a.example"] != 0 {
		t.Errorf("seedDepth[https://a.example] = %d, want minimum depth 0", seedDepth["https://a.example"])
	}

	if seedDepth["https://b.example"] != 1 {
		t.Errorf("seedDepth[https://b.example] = %d, want 1", seedDepth["https://b.example"])
	}
}
