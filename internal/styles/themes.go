package styles

import (
	"regexp"
	"sort"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// themeMu protects themeRegistry and currentTheme.
var themeMu sync.RWMutex

// hexColorRegex validates hex color codes (#RRGGBB or #RRGGBBAA with alpha)
var hexColorRegex = regexp.MustCompile(`^#[0-9A-Fa-f]{6}([0-9A-Fa-f]{2})?$`)

// ColorPalette holds all theme colors
type ColorPalette struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
	Accent    string `json:"accent"`

	Success string `json:"success"`
	Warning string `json:"warning"`
	Error   string `json:"error"`
	Info    string `json:"info"`

	TextPrimary   string `json:"textPrimary"`
	TextSecondary string `json:"textSecondary"`
	TextMuted     string `json:"textMuted"`
	TextSubtle    string `json:"textSubtle"`

	BgPrimary   string `json:"bgPrimary"`
	BgSecondary string `json:"bgSecondary"`
	BgTertiary  string `json:"bgTertiary"`

	BorderNormal string `json:"borderNormal"`
	BorderActive string `json:"borderActive"`

	ToastSuccessText string `json:"toastSuccessText"`
	ToastErrorText   string `json:"toastErrorText"`

	MarkdownTheme string `json:"markdownTheme"` // Glamour style name
}

// Theme represents a complete theme configuration
type Theme struct {
	Name        string       `json:"name"`
	DisplayName string       `json:"displayName"`
	Colors      ColorPalette `json:"colors"`
}

// Built-in themes
var (
	DefaultTheme = Theme{
		Name:        "default",
		DisplayName: "Default Dark",
		Colors: ColorPalette{
			Primary:   "#7C3AED",
			Secondary: "#3B82F6",
			Accent:    "#F59E0B",

			Success: "#10B981",
			Warning: "#F59E0B",
			Error:   "#EF4444",
			Info:    "#3B82F6",

			TextPrimary:   "#F9FAFB",
			TextSecondary: "#9CA3AF",
			TextMuted:     "#6B7280",
			TextSubtle:    "#4B5563",

			BgPrimary:   "#111827",
			BgSecondary: "#1F2937",
			BgTertiary:  "#374151",

			BorderNormal: "#374151",
			BorderActive: "#7C3AED",

			ToastSuccessText: "#000000",
			ToastErrorText:   "#FFFFFF",

			MarkdownTheme: "dark",
		},
	}

	// PaperTheme matches the warm beige look of the web client.
	PaperTheme = Theme{
		Name:        "paper",
		DisplayName: "Paper",
		Colors: ColorPalette{
			Primary:   "#957139",
			Secondary: "#88642A",
			Accent:    "#C08A3E",

			Success: "#3F7D4E",
			Warning: "#B7791F",
			Error:   "#C53030",
			Info:    "#2B6CB0",

			TextPrimary:   "#1F1A14",
			TextSecondary: "#4A4034",
			TextMuted:     "#7A6D5C",
			TextSubtle:    "#A89A86",

			BgPrimary:   "#FAF1E3",
			BgSecondary: "#F2E4CC",
			BgTertiary:  "#E6D3B1",

			BorderNormal: "#D9C4A0",
			BorderActive: "#957139",

			ToastSuccessText: "#FFFFFF",
			ToastErrorText:   "#FFFFFF",

			MarkdownTheme: "light",
		},
	}
)

var (
	themeRegistry = map[string]Theme{
		DefaultTheme.Name: DefaultTheme,
		PaperTheme.Name:   PaperTheme,
	}
	currentTheme = DefaultTheme.Name
)

// IsValidHexColor reports whether hex is #RRGGBB or #RRGGBBAA.
func IsValidHexColor(hex string) bool {
	return hexColorRegex.MatchString(hex)
}

// IsValidTheme reports whether name is a registered theme.
func IsValidTheme(name string) bool {
	themeMu.RLock()
	defer themeMu.RUnlock()
	_, ok := themeRegistry[name]
	return ok
}

// GetTheme returns the named theme, falling back to the default.
func GetTheme(name string) Theme {
	themeMu.RLock()
	defer themeMu.RUnlock()
	if t, ok := themeRegistry[name]; ok {
		return t
	}
	return DefaultTheme
}

// GetCurrentThemeName returns the name of the applied theme.
func GetCurrentThemeName() string {
	themeMu.RLock()
	defer themeMu.RUnlock()
	return currentTheme
}

// ListThemes returns registered theme names in sorted order.
func ListThemes() []string {
	themeMu.RLock()
	defer themeMu.RUnlock()
	names := make([]string, 0, len(themeRegistry))
	for name := range themeRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NextTheme returns the theme after the current one, wrapping around.
func NextTheme() string {
	names := ListThemes()
	cur := GetCurrentThemeName()
	for i, n := range names {
		if n == cur {
			return names[(i+1)%len(names)]
		}
	}
	return names[0]
}

// ApplyTheme switches to the named theme. Unknown names apply the default.
func ApplyTheme(name string) {
	theme := GetTheme(name)
	ApplyThemeColors(theme)
	themeMu.Lock()
	currentTheme = theme.Name
	themeMu.Unlock()
}

// ApplyThemeColors updates the color variables and rebuilds styles.
func ApplyThemeColors(theme Theme) {
	c := theme.Colors

	Primary = lipgloss.Color(c.Primary)
	Secondary = lipgloss.Color(c.Secondary)
	Accent = lipgloss.Color(c.Accent)

	Success = lipgloss.Color(c.Success)
	Warning = lipgloss.Color(c.Warning)
	Error = lipgloss.Color(c.Error)
	Info = lipgloss.Color(c.Info)

	TextPrimary = lipgloss.Color(c.TextPrimary)
	TextSecondary = lipgloss.Color(c.TextSecondary)
	TextMuted = lipgloss.Color(c.TextMuted)
	TextSubtle = lipgloss.Color(c.TextSubtle)

	BgPrimary = lipgloss.Color(c.BgPrimary)
	BgSecondary = lipgloss.Color(c.BgSecondary)
	BgTertiary = lipgloss.Color(c.BgTertiary)

	BorderNormal = lipgloss.Color(c.BorderNormal)
	BorderActive = lipgloss.Color(c.BorderActive)

	ToastSuccessTextColor = lipgloss.Color(c.ToastSuccessText)
	ToastErrorTextColor = lipgloss.Color(c.ToastErrorText)

	CurrentMarkdownTheme = c.MarkdownTheme

	rebuildStyles()
}

// GetMarkdownTheme returns the glamour style name for the current theme.
func GetMarkdownTheme() string {
	return CurrentMarkdownTheme
}
