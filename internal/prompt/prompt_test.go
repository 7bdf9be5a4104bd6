package prompt

import (
	"strings"
	"testing"
)

func TestUniqueSeedURLs(t *testing.T) {
	payloads := []Payload{
		{SeedURL: "https://a.example"},
		{SeedURL: "https://b.example"},
		{SeedURL: "https://a.example"},
	}

	got := UniqueSeedURLs(payloads)
	want := []string{"https://a.example", "https://b.example"}

	if len(got) != len(want) {
		t.Fatalf("UniqueSeedURLs() = %v, want %v", got, want)
	}

	for i := range want {
		if got[i] != want[i] {
			t.Errorf("UniqueSeedURLs()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestBuildContext(t *testing.T) {
	payloads := []Payload{
		{SeedURL: "https://a.example", URL: "https://a.example/1", CleanedText: "text one"},
		{SeedURL: "https://a.example", URL: "https://a.example/2", CleanedText: "text two"},
	}

	got := BuildContext(payloads)

	if !strings.Contains(got, "text one") || !strings.Contains(got, "text two") {
		t.Errorf("BuildContext() = %q, missing expected text", got)
	}

	if !strings.Contains(got, "\n\n---\n\n") {
		t.Errorf("BuildContext() = %q, missing block separator", got)
	}
}

func TestBuildCandidateBlockEmptyYieldsNone(t *testing.T) {
	got := BuildCandidateBlock(nil)
	if got != "(none)" {
		t.Errorf("BuildCandidateBlock(nil) = %q, want %q", got, "(none)")
	}
}

func TestBuildCandidateBlockRendersBullets(t *testing.T) {
	payloads := []Payload{
		{SeedURL: "https://a.example", CandidateURLs: []string{"https://a.example/x", "https://a.example/y"}},
		{SeedURL: "https://b.example", CandidateURLs: nil},
	}

	got := BuildCandidateBlock(payloads)

	if !strings.Contains(got, "- https://a.example/x") {
		t.Errorf("BuildCandidateBlock() = %q, missing bullet", got)
	}

	if !strings.Contains(got, "Seed: https://b.example\n(none)") {
		t.Errorf("BuildCandidateBlock() = %q, missing empty-seed fallback", got)
	}
}

func TestBuild(t *testing.T) {
	template := "Seeds:\n{seed_urls}\n\nObjective-bearing context:\n{context}\n\nCandidates:\n{candidate_urls}\n\nLimits: {max_next_urls}/{max_articles}/{max_article_chars}"

	payloads := []Payload{
		{SeedURL: "https://a.example", URL: "https://a.example/1", CleanedText: "body text", CandidateURLs: []string{"https://a.example/next"}},
	}

	got := Build(template, "find breaking news", payloads, 5, 10, 2000)

	for _, want := range []string{
		"- https://a.example",
		"Objective:\nfind breaking news",
		"body text",
		"- https://a.example/next",
		"Limits: 5/10/2000",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Build() = %q, missing %q", got, want)
		}
	}
}

func TestBuildWithoutObjectiveOmitsHeader(t *testing.T) {
	got := Build("{context}", "", []Payload{{SeedURL: "https://a.example", CleanedText: "x"}}, 1, 1, 1)

	if strings.Contains(got, "Objective:") {
		t.Errorf("Build() = %q, should omit Objective header when objective is blank", got)
	}
}
