package htmlclean

import (
	"strings"
	"testing"
)

func TestClip(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		maxChars int
		want     string
	}{
		{
			name:     "under limit passes through unchanged",
			text:     "short text",
			maxChars: 100,
			want:     "short text",
		},
		{
			name:     "non-positive maxChars means unlimited",
			text:     strings.Repeat("x", 50),
			maxChars: 0,
			want:     strings.Repeat("x", 50),
		},
		{
			name:     "exactly at limit passes through unchanged",
			text:     "12345",
			maxChars: 5,
			want:     "12345",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Clip(tt.text, tt.maxChars)
			if got != tt.want {
				t.Errorf("Clip() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClipOverLimitKeepsHeadAndTail(t *testing.T) {
	text := strings.Repeat("a", 70) + strings.Repeat("b", 30)

	got := Clip(text, 50)

	if !strings.Contains(got, "\n...\n") {
		t.Fatalf("Clip() = %q, want a marker between head and tail", got)
	}

	if !strings.HasPrefix(got, strings.Repeat("a", 35)) {
		t.Errorf("Clip() head = %q, want to start with 35 a's", got[:40])
	}

	if !strings.HasSuffix(got, strings.Repeat("b", 15)) {
		t.Errorf("Clip() tail = %q, want to end with 15 b's", got)
	}
}

func TestClipRespectsRuneBoundaries(t *testing.T) {
	text := strings.Repeat("世", 30) + strings.Repeat("界", 30)

	got := Clip(text, 10)

	for _, r := range got {
		if r != '世' && r != '界' && r != '\n' && r != '.' {
			t.Fatalf("Clip() produced an unexpected rune %q in %q", r, got)
		}
	}
}
