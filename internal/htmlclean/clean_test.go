package htmlclean

import (
	"strings"
	"testing"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name string
		html string
		want []string // substrings expected to survive
		omit []string // substrings expected to be dropped entirely
	}{
		{
			name: "drops script and style content",
			html: `<html><body><p>Hello</p><script>alert(1)</script><style>.x{color:red}</style></body></html>`,
			want: []string{"Hello"},
			omit: []string{"alert(1)", "color:red"},
		},
		{
			name: "drops nav header footer",
			html: `<html><body><nav>Menu</nav><header>Masthead</header><p>Body text</p><footer>Copyright</footer></body></html>`,
			want: []string{"Body text"},
			omit: []string{"Menu", "Masthead", "Copyright"},
		},
		{
			name: "trims and drops blank lines",
			html: "<p>  First  </p><p></p><p>Second</p>",
			want: []string{"First", "Second"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Clean([]byte(tt.html))
			if err != nil {
				t.Fatalf("Clean() error = %v", err)
			}

			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("Clean() = %q, want to contain %q", got, w)
				}
			}

			for _, o := range tt.omit {
				if strings.Contains(got, o) {
					t.Errorf("Clean() = %q, want to omit %q", got, o)
				}
			}
		})
	}
}

func TestCandidateURLs(t *testing.T) {
	html := `<html><body>
		<a href="/article-1">one</a>
		<a href="https://other.example/article-2">two</a>
		<a href="javascript:alert(1)">bad</a>
		<a href="/article-1">dup</a>
		<a href="mailto:a@example.com">mail</a>
	</body></html>`

	t.Run("same-domain only by default", func(t *testing.T) {
		got, err := CandidateURLs([]byte(html), "https://news.example", false)
		if err != nil {
			t.Fatalf("CandidateURLs() error = %v", err)
		}

		want := []string{"https://news.example/article-1"}
		if len(got) != len(want) || got[0] != want[0] {
			t.Errorf("CandidateURLs() = %v, want %v", got, want)
		}
	})

	t.Run("allow external domains", func(t *testing.T) {
		got, err := CandidateURLs([]byte(html), "https://news.example", true)
		if err != nil {
			t.Fatalf("CandidateURLs() error = %v", err)
		}

		if len(got) != 2 {
			t.Errorf("CandidateURLs() = %v, want 2 entries", got)
		}
	})
}
