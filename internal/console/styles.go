package console

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/powerpack/internal/inlineedit"
	"github.com/muurk/powerpack/internal/version"
)

// AppName is shown in the container header
const AppName = "ADMIN POWER PACK"

// Layout constants for responsive terminal width
const (
	MinTerminalWidth = 72 // Minimum supported terminal width
	DefaultWidth     = 100
	DefaultHeight    = 30
)

// Color palette
var (
	PrimaryColor   = lipgloss.Color("#7D56F4") // Purple
	SecondaryColor = lipgloss.Color("#43BF6D") // Green
	WarningColor   = lipgloss.Color("#FFA500") // Orange
	ErrorColor     = lipgloss.Color("#FF5555") // Red

	TextColor   = lipgloss.Color("#FFFFFF") // White
	SubtleColor = lipgloss.Color("#626262") // Gray
	BorderColor = lipgloss.Color("#7D56F4") // Purple (same as primary)
)

var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor).
			Bold(true).
			Padding(1, 0, 0, 1)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(SubtleColor).
			Italic(true)

	NavItemStyle = lipgloss.NewStyle().
			Foreground(SubtleColor).
			Padding(0, 1)

	ActiveNavItemStyle = lipgloss.NewStyle().
				Foreground(TextColor).
				Background(PrimaryColor).
				Bold(true).
				Padding(0, 1)

	RowStyle = lipgloss.NewStyle().
			PaddingLeft(2)

	SelectedRowStyle = lipgloss.NewStyle().
				Foreground(SecondaryColor).
				Bold(true)

	DisabledRowStyle = lipgloss.NewStyle().
				Foreground(SubtleColor).
				Strikethrough(true)

	ColumnHeaderStyle = lipgloss.NewStyle().
				Foreground(SubtleColor).
				Bold(true).
				PaddingLeft(2)

	ErrorTextStyle = lipgloss.NewStyle().
			Foreground(ErrorColor)

	WarningTextStyle = lipgloss.NewStyle().
				Foreground(WarningColor).
				Bold(true)

	HintStyle = lipgloss.NewStyle().
			Foreground(SubtleColor)

	SpinnerStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor)

	InfoBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(BorderColor).
			Padding(0, 1).
			MarginLeft(1)

	ErrorBoxStyle = lipgloss.NewStyle().
			Foreground(ErrorColor).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ErrorColor).
			Padding(1, 2)
)

// ToneColor maps an inline-edit tone to the palette
func ToneColor(t inlineedit.Tone) lipgloss.Color {
	switch t {
	case inlineedit.ToneWarning:
		return WarningColor
	case inlineedit.ToneSuccess:
		return SecondaryColor
	case inlineedit.ToneError:
		return ErrorColor
	default:
		return SubtleColor
	}
}

// RenderAffordance renders the status glyph of a field, or a blank of the
// same width for Idle so columns stay aligned.
func RenderAffordance(s inlineedit.Status) string {
	a := s.Affordance()
	if a.Glyph == "" {
		return " "
	}
	return lipgloss.NewStyle().Foreground(ToneColor(a.Tone)).Render(a.Glyph)
}

// BuildHeaderContent creates header content with app name, version and instance
func BuildHeaderContent(instance string) string {
	left := lipgloss.NewStyle().
		Foreground(TextColor).
		Bold(true).
		Render(AppName + " v" + version.Version)

	if instance == "" {
		return left
	}
	right := lipgloss.NewStyle().
		Foreground(SubtleColor).
		Render(instance)

	return lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", right)
}

// RenderApplicationContainer wraps every screen: header, content and a
// footer with context help, inside a bordered full-terminal panel.
func RenderApplicationContainer(instance, content, footerText string, terminalWidth, terminalHeight int) string {
	if terminalWidth < MinTerminalWidth {
		terminalWidth = MinTerminalWidth
	}
	if terminalHeight < 10 {
		terminalHeight = 10
	}

	headerStyle := lipgloss.NewStyle().
		BorderStyle(lipgloss.Border{Bottom: "─"}).
		BorderForeground(BorderColor).
		Width(terminalWidth-4).
		Padding(0, 1)

	footerStyle := lipgloss.NewStyle().
		BorderStyle(lipgloss.Border{Top: "─"}).
		BorderForeground(BorderColor).
		Foreground(SubtleColor).
		Width(terminalWidth-4).
		Padding(0, 1)

	inner := lipgloss.JoinVertical(
		lipgloss.Left,
		headerStyle.Render(BuildHeaderContent(instance)),
		lipgloss.NewStyle().Width(terminalWidth-4).Render(content),
		footerStyle.Render(footerText),
	)

	bordered := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(BorderColor).
		Width(terminalWidth - 2).
		Height(terminalHeight - 2).
		AlignVertical(lipgloss.Top).
		Render(inner)

	return lipgloss.Place(terminalWidth, terminalHeight, lipgloss.Left, lipgloss.Top, bordered)
}
