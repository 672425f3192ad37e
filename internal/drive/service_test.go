package drive

import (
	"context"
	"testing"
)

func TestEscapeQuery(t *testing.T) {
	tests := map[string]string{
		"plain":        "plain",
		"O'Brien":      `O\'Brien`,
		`back\slash`:   `back\\slash`,
		`it's\'quoted`: `it\'s\\\'quoted`,
	}
	for in, want := range tests {
		if got := escapeQuery(in); got != want {
			t.Errorf("escapeQuery(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNewServiceRejectsBadCredentials(t *testing.T) {
	if _, err := NewService(context.Background(), "{not json"); err == nil {
		t.Fatal("expected error for malformed credentials")
	}
}

func TestFindFile(t *testing.T) {
	files := []*File{
		{ID: "1", Name: "Stock.csv"},
		{ID: "2", Name: "stock.csv"},
		{ID: "3", Name: "sales.xlsx"},
	}
	if f := findFile(files, "stock.csv"); f == nil || f.ID != "2" {
		t.Errorf("exact match: got %+v", f)
	}
	if f := findFile(files, "SALES.xlsx"); f == nil || f.ID != "3" {
		t.Errorf("case-insensitive match: got %+v", f)
	}
	if f := findFile(files, "purchases.csv"); f != nil {
		t.Errorf("expected no match, got %+v", f)
	}
}
