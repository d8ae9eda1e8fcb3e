package origin

import "testing"

func TestNormalize(t *testing.T) {
	fallback := "https://fallback.test"

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "localhost keeps http", raw: "http://localhost:5173", want: "http://localhost:5173"},
		{name: "loopback keeps http", raw: "http://127.0.0.1:3000", want: "http://127.0.0.1:3000"},
		{name: "plain http forced to https", raw: "http://example.com", want: "https://example.com"},
		{name: "https passes through", raw: "https://example.com", want: "https://example.com"},
		{name: "port preserved", raw: "http://example.com:8443", want: "https://example.com:8443"},
		{name: "path and query stripped", raw: "https://example.com/checkout?x=1", want: "https://example.com"},
		{name: "garbage falls back", raw: "not-a-url", want: fallback},
		{name: "empty falls back", raw: "", want: fallback},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.raw, fallback); got != tt.want {
				t.Fatalf("Normalize(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestBuildURL(t *testing.T) {
	tests := []struct {
		origin string
		path   string
		want   string
	}{
		{"https://example.com", "/return/acct_1", "https://example.com/return/acct_1"},
		{"https://example.com/", "/return/acct_1", "https://example.com/return/acct_1"},
		{"https://example.com", "return/acct_1", "https://example.com/return/acct_1"},
		{"http://localhost:5173", "/course/42?session_id={CHECKOUT_SESSION_ID}", "http://localhost:5173/course/42?session_id={CHECKOUT_SESSION_ID}"},
		{"https://example.com", "", "https://example.com"},
	}

	for _, tt := range tests {
		if got := BuildURL(tt.origin, tt.path); got != tt.want {
			t.Fatalf("BuildURL(%q, %q) = %q, want %q", tt.origin, tt.path, got, tt.want)
		}
	}
}
