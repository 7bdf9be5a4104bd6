package htmlclean

import (
	"testing"
	"time"
)

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantOK  bool
		wantUTC bool
	}{
		{
			name:    "explicit Z offset kept as-is",
			raw:     "2026-01-15T10:30:00Z",
			wantOK:  true,
			wantUTC: true,
		},
		{
			name:    "explicit numeric offset recognized as explicit",
			raw:     "2026-01-15T10:30:00+02:00",
			wantOK:  true,
			wantUTC: false,
		},
		{
			name:    "naive timestamp assumed UTC",
			raw:     "2026-01-15T10:30:00",
			wantOK:  true,
			wantUTC: true,
		},
		{
			name:   "empty string fails",
			raw:    "",
			wantOK: false,
		},
		{
			name:   "garbage fails",
			raw:    "not a date",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseTimestamp(tt.raw)
			if ok != tt.wantOK {
				t.Fatalf("ParseTimestamp(%q) ok = %v, want %v", tt.raw, ok, tt.wantOK)
			}

			if !ok {
				return
			}

			if tt.wantUTC && got.Location() != time.UTC {
				t.Errorf("ParseTimestamp(%q) location = %v, want UTC", tt.raw, got.Location())
			}
		})
	}
}

func TestExtractUsesMetaTagsAndFallsBackToCleanedText(t *testing.T) {
	html := `<html><head>
		<meta property="og:title" content="Breaking News Title">
		<meta property="article:published_time" content="2026-01-15T10:00:00Z">
	</head><body>
		<article><p>This is a sufficiently long paragraph of article body text for the extractor.</p></article>
	</body></html>`

	got, ok := Extract([]byte(html), "cleaned fallback text", 2000)
	if !ok {
		t.Fatalf("Extract() ok = false, want true")
	}

	if got.Title != "Breaking News Title" {
		t.Errorf("Extract() Title = %q, want %q", got.Title, "Breaking News Title")
	}

	if !got.HasDate {
		t.Errorf("Extract() HasDate = false, want true")
	}
}

func TestExtractFallsBackToCleanedTextWhenNoParagraphs(t *testing.T) {
	html := `<html><body><div>no paragraphs here</div></body></html>`

	got, ok := Extract([]byte(html), "cleaned fallback text", 2000)
	if !ok {
		t.Fatalf("Extract() ok = false, want true")
	}

	if got.Body != "cleaned fallback text" {
		t.Errorf("Extract() Body = %q, want fallback text", got.Body)
	}
}

func TestExtractReturnsFalseWhenEmpty(t *testing.T) {
	html := `<html><head></head><body></body></html>`

	_, ok := Extract([]byte(html), "", 2000)
	if ok {
		t.Errorf("Extract() ok = true, want false for empty title and body")
	}
}
