package domain

import (
	"testing"
	"unicode/utf8"
)

func TestClipError(t *testing.T) {
	tests := []struct {
		name      string
		msg       string
		wantRunes int // expected output length in runes, not bytes
	}{
		{name: "short message passes through", msg: "boom", wantRunes: 4},
		{name: "exactly at limit passes through", msg: repeat("x", MaxErrorLen), wantRunes: MaxErrorLen},
		{name: "over limit is clipped", msg: repeat("x", MaxErrorLen+500), wantRunes: MaxErrorLen},
		{
			name:      "multi-byte runes clipped without splitting a rune",
			msg:       repeat("世", MaxErrorLen+500),
			wantRunes: MaxErrorLen,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClipError(tt.msg)

			if !utf8.ValidString(got) {
				t.Fatalf("ClipError() produced invalid UTF-8: %q", got)
			}

			if gotRunes := utf8.RuneCountInString(got); gotRunes != tt.wantRunes {
				t.Errorf("ClipError() rune count = %d, want %d", gotRunes, tt.wantRunes)
			}
		})
	}
}

func TestNewDefaultCrawlerConfig(t *testing.T) {
	cfg := NewDefaultCrawlerConfig()

	if cfg.PromptTemplate == "" {
		t.Error("NewDefaultCrawlerConfig() PromptTemplate is empty")
	}

	if cfg.UserAgent != DefaultUserAgent {
		t.Errorf("NewDefaultCrawlerConfig() UserAgent = %q, want %q", cfg.UserAgent, DefaultUserAgent)
	}

	if cfg.MaxDepth <= 0 {
		t.Errorf("NewDefaultCrawlerConfig() MaxDepth = %d, want positive", cfg.MaxDepth)
	}
}

func repeat(s string, n int) string {
	out := make([]byte, 0, n*len(s))
	for i := 0; i < n; i++ {
		out = append(out, s...)
	}

	return string(out)
}
