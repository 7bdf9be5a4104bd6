package engine

import (
	"strings"
	"testing"
)

func TestResolveArticleURL(t *testing.T) {
	tests := []struct {
		name      string
		sourceURL string
		rawURL    string
		want      string
	}{
		{
			name:      "empty raw falls back to source",
			sourceURL: "https://news.example/seed",
			rawURL:    "",
			want:      "https://news.example/seed",
		},
		{
			name:      "absolute raw passes through",
			sourceURL: "https://news.example/seed",
			rawURL:    "https://other.example/article",
			want:      "https://other.example/article",
		},
		{
			name:      "relative raw resolves against source",
			sourceURL: "https://news.example/section/",
			rawURL:    "article-1",
			want:      "https://news.example/section/article-1",
		},
		{
			name:      "whitespace around raw is trimmed",
			sourceURL: "https://news.example/seed",
			rawURL:    "  https://other.example/article  ",
			want:      "https://other.example/article",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolveArticleURL(tt.sourceURL, tt.rawURL)
			if got != tt.want {
				t.Errorf("resolveArticleURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHostOf(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{name: "plain host", url: "https://news.example/path", want: "news.example"},
		{name: "host with port", url: "https://news.example:8080/path", want: "news.example:8080"},
		{name: "unparsable returns empty", url: "://bad", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := hostOf(tt.url)
			if got != tt.want {
				t.Errorf("hostOf(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

func TestPassesQualityGate(t *testing.T) {
	longBody := strings.Repeat("this is real article prose with plenty of letters. ", 10)

	tests := []struct {
		name  string
		title string
		body  string
		want  bool
	}{
		{
			name:  "empty body always rejected",
			title: "Some title that is long enough on its own merits",
			body:  "",
			want:  false,
		},
		{
			name:  "short body and short title rejected",
			title: "short",
			body:  "also short",
			want:  false,
		},
		{
			name:  "short body but long title accepted",
			title: strings.Repeat("x", 20),
			body:  "short body text here",
			want:  true,
		},
		{
			name:  "long body accepted regardless of title",
			title: "",
			body:  longBody,
			want:  true,
		},
		{
			name:  "blocklisted phrase rejected",
			title: "404 Not Found",
			body:  longBody,
			want:  false,
		},
		{
			name:  "low alphabetic ratio rejected",
			title: "",
			body:  strings.Repeat("1234567890 !@#$% ", 20),
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := passesQualityGate(tt.title, tt.body)
			if got != tt.want {
				t.Errorf("passesQualityGate(%q, ...) = %v, want %v", tt.title, got, tt.want)
			}
		})
	}
}

func TestAlphabeticRatio(t *testing.T) {
	tests := []struct {
		name string
		s    string
		want float64
	}{
		{name: "empty string", s: "", want: 0},
		{name: "all letters", s: "abcdef", want: 1},
		{name: "all digits", s: "123456", want: 0},
		{name: "half and half", s: "ab12", want: 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := alphabeticRatio(tt.s)
			if got != tt.want {
				t.Errorf("alphabeticRatio(%q) = %v, want %v", tt.s, got, tt.want)
			}
		})
	}
}

func TestAsString(t *testing.T) {
	tests := []struct {
		name string
		v    any
		want string
	}{
		{name: "string passes through", v: "hello", want: "hello"},
		{name: "nil yields empty", v: nil, want: ""},
		{name: "non-string yields empty", v: 42, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := asString(tt.v)
			if got != tt.want {
				t.Errorf("asString(%v) = %q, want %q", tt.v, got, tt.want)
			}
		})
	}
}
