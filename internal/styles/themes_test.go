package styles

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestIsValidHexColor(t *testing.T) {
	tests := []struct {
		name  string
		input string
		valid bool
	}{
		{"valid uppercase", "#FF5500", true},
		{"valid lowercase", "#aabbcc", true},
		{"valid with alpha", "#00000080", true},
		{"invalid 3-char", "#FFF", false},
		{"invalid 7-char", "#FF55001", false},
		{"no hash", "FF5500", false},
		{"invalid char", "#GGGGGG", false},
		{"empty string", "", false},
		{"just hash", "#", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidHexColor(tt.input); got != tt.valid {
				t.Errorf("IsValidHexColor(%q) = %v, want %v", tt.input, got, tt.valid)
			}
		})
	}
}

func TestApplyTheme(t *testing.T) {
	defer ApplyTheme(DefaultTheme.Name)

	ApplyTheme("paper")
	if GetCurrentThemeName() != "paper" {
		t.Fatalf("current theme = %q, want paper", GetCurrentThemeName())
	}
	if Primary != lipgloss.Color(PaperTheme.Colors.Primary) {
		t.Errorf("Primary = %v, want %v", Primary, PaperTheme.Colors.Primary)
	}
	if GetMarkdownTheme() != "light" {
		t.Errorf("markdown theme = %q, want light", GetMarkdownTheme())
	}

	ApplyTheme("no-such-theme")
	if GetCurrentThemeName() != DefaultTheme.Name {
		t.Errorf("unknown theme applied %q, want default", GetCurrentThemeName())
	}
}

func TestNextThemeWraps(t *testing.T) {
	defer ApplyTheme(DefaultTheme.Name)

	names := ListThemes()
	seen := map[string]bool{}
	for range names {
		next := NextTheme()
		seen[next] = true
		ApplyTheme(next)
	}
	if len(seen) != len(names) {
		t.Errorf("cycled through %d themes, want %d", len(seen), len(names))
	}
	if GetCurrentThemeName() != DefaultTheme.Name {
		t.Errorf("after full cycle theme = %q, want %q", GetCurrentThemeName(), DefaultTheme.Name)
	}
}

func TestReadableOn(t *testing.T) {
	tests := []struct {
		bg   string
		want lipgloss.Color
	}{
		{"#FFA07A", "#000000"}, // Random Thoughts
		{"#87CEEB", "#000000"}, // School
		{"#98FB98", "#000000"}, // Personal
		{"#111827", "#FFFFFF"},
		{"#7C3AED", "#FFFFFF"},
	}
	for _, tt := range tests {
		if got := ReadableOn(tt.bg); got != tt.want {
			t.Errorf("ReadableOn(%s) = %v, want %v", tt.bg, got, tt.want)
		}
	}
}

func TestCategoryBadge(t *testing.T) {
	got := CategoryBadge("School", "#87CEEB")
	if !strings.Contains(got, "School") {
		t.Errorf("badge %q missing name", got)
	}
	if CategoryColor("nope") != TextMuted {
		t.Error("invalid color should fall back to muted")
	}
}
