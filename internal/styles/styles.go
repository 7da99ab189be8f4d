package styles

import "github.com/charmbracelet/lipgloss"

// Color palette - default dark theme
var (
	// Primary colors
	Primary   = lipgloss.Color("#7C3AED") // Purple
	Secondary = lipgloss.Color("#3B82F6") // Blue
	Accent    = lipgloss.Color("#F59E0B") // Amber

	// Status colors
	Success = lipgloss.Color("#10B981") // Green
	Warning = lipgloss.Color("#F59E0B") // Amber
	Error   = lipgloss.Color("#EF4444") // Red
	Info    = lipgloss.Color("#3B82F6") // Blue

	// Text colors
	TextPrimary   = lipgloss.Color("#F9FAFB")
	TextSecondary = lipgloss.Color("#9CA3AF")
	TextMuted     = lipgloss.Color("#6B7280")
	TextSubtle    = lipgloss.Color("#4B5563")

	// Background colors
	BgPrimary   = lipgloss.Color("#111827")
	BgSecondary = lipgloss.Color("#1F2937")
	BgTertiary  = lipgloss.Color("#374151")

	// Border colors
	BorderNormal = lipgloss.Color("#374151")
	BorderActive = lipgloss.Color("#7C3AED")

	ToastSuccessTextColor = lipgloss.Color("#000000")
	ToastErrorTextColor   = lipgloss.Color("#FFFFFF")

	// Glamour style name (updated by ApplyTheme)
	CurrentMarkdownTheme = "dark"
)

// Panel styles
var (
	PanelActive   lipgloss.Style
	PanelInactive lipgloss.Style
	PanelHeader   lipgloss.Style
)

// Text styles
var (
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Body     lipgloss.Style
	Muted    lipgloss.Style
	Subtle   lipgloss.Style
	KeyHint  lipgloss.Style
	ErrText  lipgloss.Style
	Saving   lipgloss.Style
)

// List item styles
var (
	ListItemNormal   lipgloss.Style
	ListItemSelected lipgloss.Style
	ListCursor       lipgloss.Style
)

// Footer, toasts and modals
var (
	Footer       lipgloss.Style
	Header       lipgloss.Style
	ToastSuccess lipgloss.Style
	ToastError   lipgloss.Style
	ModalBox     lipgloss.Style
	ModalTitle   lipgloss.Style
	Button       lipgloss.Style
	ButtonFocus  lipgloss.Style
)

func init() {
	rebuildStyles()
}

// rebuildStyles recreates every style from the current color variables.
func rebuildStyles() {
	PanelActive = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(BorderActive).
		Padding(0, 1)

	PanelInactive = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(BorderNormal).
		Padding(0, 1)

	PanelHeader = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextPrimary).
		MarginBottom(1)

	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextPrimary)

	Subtitle = lipgloss.NewStyle().
		Foreground(TextSecondary)

	Body = lipgloss.NewStyle().
		Foreground(TextPrimary)

	Muted = lipgloss.NewStyle().
		Foreground(TextMuted)

	Subtle = lipgloss.NewStyle().
		Foreground(TextSubtle)

	KeyHint = lipgloss.NewStyle().
		Foreground(TextMuted).
		Background(BgTertiary).
		Padding(0, 1)

	ErrText = lipgloss.NewStyle().
		Foreground(Error)

	Saving = lipgloss.NewStyle().
		Foreground(Warning).
		Italic(true)

	ListItemNormal = lipgloss.NewStyle().
		Foreground(TextPrimary)

	ListItemSelected = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Background(BgTertiary)

	ListCursor = lipgloss.NewStyle().
		Foreground(Primary).
		Bold(true)

	Footer = lipgloss.NewStyle().
		Foreground(TextMuted).
		Background(BgSecondary)

	Header = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Background(BgSecondary).
		Bold(true)

	ToastSuccess = lipgloss.NewStyle().
		Background(Success).
		Foreground(ToastSuccessTextColor).
		Bold(true).
		Padding(0, 1)

	ToastError = lipgloss.NewStyle().
		Background(Error).
		Foreground(ToastErrorTextColor).
		Bold(true).
		Padding(0, 1)

	ModalBox = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Primary).
		Background(BgSecondary).
		Padding(1, 2)

	ModalTitle = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Bold(true).
		MarginBottom(1)

	Button = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Background(BgTertiary).
		Padding(0, 2)

	ButtonFocus = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Background(Primary).
		Padding(0, 2).
		Bold(true)
}
