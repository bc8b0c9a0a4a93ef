package urlutil

import (
	"net/url"
	"testing"
)

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "lowercases scheme and host",
			in:   "HTTPS://WWW.Cricbuzz.COM/",
			want: "https://www.cricbuzz.com/",
		},
		{
			name: "strips default https port",
			in:   "https://www.cricbuzz.com:443/live",
			want: "https://www.cricbuzz.com/live",
		},
		{
			name: "strips default http port",
			in:   "http://example.com:80/",
			want: "http://example.com/",
		},
		{
			name: "keeps non-default port",
			in:   "http://example.com:8080/x",
			want: "http://example.com:8080/x",
		},
		{
			name: "strips trailing slashes",
			in:   "https://example.com/live-cricket-scores///",
			want: "https://example.com/live-cricket-scores",
		},
		{
			name: "drops query and fragment",
			in:   "https://example.com/page?id=1#top",
			want: "https://example.com/page",
		},
		{
			name: "idempotent",
			in:   "https://example.com/page",
			want: "https://example.com/page",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, err := url.Parse(tt.in)
			if err != nil {
				t.Fatalf("parse %q: %v", tt.in, err)
			}
			got := Canonicalize(*parsed)
			if got.String() != tt.want {
				t.Errorf("Canonicalize(%q) = %q, want %q", tt.in, got.String(), tt.want)
			}
		})
	}
}

func TestJoin(t *testing.T) {
	tests := []struct {
		name     string
		base     string
		segments []string
		want     string
	}{
		{
			name:     "root base with one segment",
			base:     "https://www.cricbuzz.com",
			segments: []string{"live-cricket-scores"},
			want:     "https://www.cricbuzz.com/live-cricket-scores",
		},
		{
			name:     "trailing slash on base does not double",
			base:     "https://www.cricbuzz.com/",
			segments: []string{"live-cricket-scores", "139252"},
			want:     "https://www.cricbuzz.com/live-cricket-scores/139252",
		},
		{
			name:     "segment with surrounding slashes",
			base:     "https://www.cricbuzz.com",
			segments: []string{"/live-cricket-scores/", "139252"},
			want:     "https://www.cricbuzz.com/live-cricket-scores/139252",
		},
		{
			name:     "base with existing path",
			base:     "https://proxy.internal/cricbuzz",
			segments: []string{"live-cricket-scores", "139252"},
			want:     "https://proxy.internal/cricbuzz/live-cricket-scores/139252",
		},
		{
			name:     "no segments returns canonical base",
			base:     "https://www.cricbuzz.com/",
			segments: nil,
			want:     "https://www.cricbuzz.com/",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, err := url.Parse(tt.base)
			if err != nil {
				t.Fatalf("parse %q: %v", tt.base, err)
			}
			got := Join(*parsed, tt.segments...)
			if got.String() != tt.want {
				t.Errorf("Join(%q, %v) = %q, want %q", tt.base, tt.segments, got.String(), tt.want)
			}
		})
	}
}
