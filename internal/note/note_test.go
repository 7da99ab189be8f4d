package note

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, KindNone},
		{"validation", Invalid("category", "unknown category %q", "x"), KindValidation},
		{"wrapped validation", fmt.Errorf("create note: %w", Invalid("title", "too long")), KindValidation},
		{"auth", fmt.Errorf("list notes: %w", ErrAuth), KindAuth},
		{"not found", fmt.Errorf("note n1: %w", ErrNotFound), KindNotFound},
		{"network", fmt.Errorf("dial: %w", ErrNetwork), KindNetwork},
		{"unknown", errors.New("boom"), KindUnknown},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := KindOf(tc.err); got != tc.want {
				t.Errorf("KindOf(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}

func TestFieldOf(t *testing.T) {
	err := fmt.Errorf("update: %w", Invalid("category", "unknown"))
	if got := FieldOf(err); got != "category" {
		t.Errorf("FieldOf = %q, want category", got)
	}
	if got := FieldOf(errors.New("plain")); got != "" {
		t.Errorf("FieldOf(plain) = %q, want empty", got)
	}
}

func TestPatch(t *testing.T) {
	var p Patch
	if !p.IsEmpty() {
		t.Fatal("zero patch should be empty")
	}

	title := "New"
	p.Title = &title
	n := Note{Title: "Old", Content: "x", CategoryID: "c1"}
	p.Apply(&n)
	if n.Title != "New" || n.Content != "x" || n.CategoryID != "c1" {
		t.Errorf("Apply touched the wrong fields: %+v", n)
	}
}

func TestSortCategories(t *testing.T) {
	cats := []Category{
		{ID: "b", Name: "School", SortOrder: 2},
		{ID: "c", Name: "Alpha", SortOrder: 2},
		{ID: "a", Name: "Personal", SortOrder: 1},
	}
	SortCategories(cats)
	got := []string{cats[0].ID, cats[1].ID, cats[2].ID}
	want := []string{"a", "c", "b"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestFormatLastEdited(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local)

	tests := []struct {
		at   time.Time
		want string
	}{
		{time.Time{}, ""},
		{now.Add(-30 * time.Second), "Just now"},
		{now.Add(-1 * time.Minute), "1 minute ago"},
		{now.Add(-5 * time.Minute), "5 minutes ago"},
		{now.Add(-2 * time.Hour), "2 hours ago"},
		{time.Date(2026, 1, 4, 9, 0, 0, 0, time.Local), "Jan 4"},
		{time.Date(2025, 12, 24, 9, 0, 0, 0, time.Local), "Dec 24, 2025"},
	}

	for _, tc := range tests {
		if got := FormatLastEdited(tc.at, now); got != tc.want {
			t.Errorf("FormatLastEdited(%v) = %q, want %q", tc.at, got, tc.want)
		}
	}
}

func TestFormatCardDate(t *testing.T) {
	now := time.Date(2026, 6, 11, 15, 0, 0, 0, time.Local)

	if got := FormatCardDate(now.Add(-time.Hour), now); got != "today" {
		t.Errorf("got %q, want today", got)
	}
	if got := FormatCardDate(now.AddDate(0, 0, -1), now); got != "yesterday" {
		t.Errorf("got %q, want yesterday", got)
	}
	if got := FormatCardDate(time.Date(2026, 6, 1, 8, 0, 0, 0, time.Local), now); got != "June 1" {
		t.Errorf("got %q, want June 1", got)
	}
}

func TestPreview(t *testing.T) {
	if got := Preview("  short  ", 10); got != "short" {
		t.Errorf("got %q", got)
	}
	long := strings.Repeat("é", 12)
	got := Preview(long, 10)
	if got != strings.Repeat("é", 10)+"..." {
		t.Errorf("got %q", got)
	}
}

func TestValidate(t *testing.T) {
	long := strings.Repeat("é", MaxTitleLength+1)
	blank := ""
	tests := []struct {
		name  string
		err   error
		field string
	}{
		{"create ok", NewNote{CategoryID: "c1", Title: "x"}.Validate(), ""},
		{"create without category", NewNote{Title: "x"}.Validate(), "category"},
		{"create long title", NewNote{CategoryID: "c1", Title: long}.Validate(), "title"},
		{"empty patch", Patch{}.Validate(), ""},
		{"blank category patch", Patch{CategoryID: &blank}.Validate(), "category"},
		{"long title patch", Patch{Title: &long}.Validate(), "title"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.field == "" {
				if tt.err != nil {
					t.Fatalf("unexpected error: %v", tt.err)
				}
				return
			}
			if KindOf(tt.err) != KindValidation || FieldOf(tt.err) != tt.field {
				t.Errorf("err = %v, want validation on %s", tt.err, tt.field)
			}
		})
	}
}
