package httputil

import "testing"

func strPtr(s string) *string { return &s }

func TestAbsoluteURL(t *testing.T) {
	base := "http://localhost:8080"

	tests := []struct {
		name     string
		baseURL  string
		path     *string
		expected *string
	}{
		{"nil path", base, nil, nil},
		{"empty path", base, strPtr(""), nil},
		{"relative path", base, strPtr("uploads/a.png"), strPtr("http://localhost:8080/uploads/a.png")},
		{"leading slash", base, strPtr("/uploads/a.png"), strPtr("http://localhost:8080/uploads/a.png")},
		{"trailing slash on base", base + "/", strPtr("uploads/a.png"), strPtr("http://localhost:8080/uploads/a.png")},
		{"already absolute http", base, strPtr("http://cdn.example.com/a.png"), strPtr("http://cdn.example.com/a.png")},
		{"already absolute https", base, strPtr("https://cdn.example.com/a.png"), strPtr("https://cdn.example.com/a.png")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AbsoluteURL(tt.baseURL, tt.path)
			switch {
			case tt.expected == nil && got != nil:
				t.Errorf("expected nil, got %q", *got)
			case tt.expected != nil && got == nil:
				t.Errorf("expected %q, got nil", *tt.expected)
			case tt.expected != nil && got != nil && *got != *tt.expected:
				t.Errorf("expected %q, got %q", *tt.expected, *got)
			}
		})
	}
}
