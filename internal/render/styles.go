package render

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/rcliao/scriptsync/internal/model"
)

// Semantic color palette.
var (
	colorPrimary = lipgloss.Color("#00BFFF") // cyan: headings, links
	colorAccent  = lipgloss.Color("#FFD700") // gold: active fragments
	colorMuted   = lipgloss.Color("#636363") // gray: rules, quote bars
	colorSurface = lipgloss.Color("#1E1E2E") // code background

	colorVoice  = lipgloss.Color("#5B8DEF")
	colorMusic  = lipgloss.Color("#00E676")
	colorEffect = lipgloss.Color("#FF5252")
	colorOther  = lipgloss.Color("#C792EA")
)

// Gutter marks.
const (
	markLinked = "▎"
	markActive = "▶"
	markNone   = " "
)

func categoryColor(c model.Category) lipgloss.Color {
	switch c.Effective() {
	case model.CategoryMusic:
		return colorMusic
	case model.CategoryEffect:
		return colorEffect
	case model.CategoryOther:
		return colorOther
	default:
		return colorVoice
	}
}

type styles struct {
	heading   lipgloss.Style
	bold      lipgloss.Style
	italic    lipgloss.Style
	code      lipgloss.Style
	codeBlock lipgloss.Style
	link      lipgloss.Style
	rule      lipgloss.Style
	quoteBar  lipgloss.Style
	header    lipgloss.Style
	active    lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		heading: r.NewStyle().
			Foreground(colorPrimary).
			Bold(true),
		bold: r.NewStyle().
			Bold(true),
		italic: r.NewStyle().
			Italic(true),
		code: r.NewStyle().
			Background(colorSurface),
		codeBlock: r.NewStyle().
			Background(colorSurface).
			Padding(0, 1),
		link: r.NewStyle().
			Foreground(colorPrimary).
			Underline(true),
		rule: r.NewStyle().
			Foreground(colorMuted),
		quoteBar: r.NewStyle().
			Foreground(colorMuted),
		header: r.NewStyle().
			Bold(true),
		active: r.NewStyle().
			Foreground(colorAccent).
			Bold(true),
	}
}
