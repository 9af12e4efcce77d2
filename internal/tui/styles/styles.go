package styles

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette
var (
	PortalTeal = lipgloss.Color("#14B8A6")
	SlateDark  = lipgloss.Color("#1F2937")
	SlateLight = lipgloss.Color("#374151")
	DimGray    = lipgloss.Color("#6B7280")
	LightGray  = lipgloss.Color("#9CA3AF")
	White      = lipgloss.Color("#F9FAFB")
	Green      = lipgloss.Color("#10B981")
	Red        = lipgloss.Color("#EF4444")
	Pink       = lipgloss.Color("#EC4899")
	Amber      = lipgloss.Color("#F59E0B")
)

// Text styles
var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(White).
			Bold(true)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(LightGray)

	DimStyle = lipgloss.NewStyle().
			Foreground(DimGray)

	AccentStyle = lipgloss.NewStyle().
			Foreground(PortalTeal)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(Red)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(Green)

	SectionStyle = lipgloss.NewStyle().
			Foreground(PortalTeal).
			Bold(true).
			MarginTop(1)
)

// Raw engagement markers (unstyled)
const (
	UnreadChar  = "○"
	ReadChar    = "✓"
	LikedChar   = "♥"
	UnlikedChar = "♡"
	StarChar    = "★"
)

// Engagement marker styles
var (
	UnreadStyle = lipgloss.NewStyle().Foreground(DimGray)
	ReadStyle   = lipgloss.NewStyle().Foreground(Green)
	LikedStyle  = lipgloss.NewStyle().Foreground(Pink)
	StarStyle   = lipgloss.NewStyle().Foreground(Amber)
)

// Pre-rendered markers
var (
	UnreadDot = UnreadStyle.Render(UnreadChar)
	ReadCheck = ReadStyle.Render(ReadChar)
)

// Panel styles
var (
	ListStyle = lipgloss.NewStyle().
			Padding(1, 2)

	InspectorStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(DimGray).
			Padding(1, 2)

	FooterStyle = lipgloss.NewStyle().
			Foreground(DimGray).
			Padding(0, 1)
)

// Help styles
var (
	HelpKeyStyle = lipgloss.NewStyle().
			Foreground(PortalTeal)

	HelpDescStyle = lipgloss.NewStyle().
			Foreground(DimGray)
)

// Spinner style
var (
	SpinnerStyle = lipgloss.NewStyle().
			Foreground(PortalTeal)
)

// Filter styles
var (
	FilterPromptStyle = lipgloss.NewStyle().
				Foreground(PortalTeal).
				Bold(true)
)

// Truncate shortens s to width cells, ending in an ellipsis when cut
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= width {
		return s
	}
	runes := []rune(s)
	if width <= 1 {
		return string(runes[:1])
	}
	for len(runes) > 0 && lipgloss.Width(string(runes))+1 > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}

// RenderReadStatus renders the read marker
func RenderReadStatus(read bool) string {
	if read {
		return ReadCheck
	}
	return UnreadDot
}

// RenderLike renders the like marker followed by the count
func RenderLike(liked bool, count int) string {
	if liked {
		return LikedStyle.Render(LikedChar) + " " + strconv.Itoa(count)
	}
	return DimStyle.Render(UnlikedChar) + " " + strconv.Itoa(count)
}

// RenderListRow renders a complete list row with uniform background when selected.
// Each part is styled explicitly so ANSI resets inside one part do not clear
// the row background.
func RenderListRow(parts []RowPart, selected bool, width int) string {
	var b strings.Builder
	visibleLen := 0

	base := lipgloss.NewStyle()
	if selected {
		base = base.Background(SlateLight)
	}

	for _, part := range parts {
		style := base
		switch {
		case part.Foreground != nil:
			style = style.Foreground(*part.Foreground)
		case selected:
			style = style.Foreground(White)
		default:
			style = style.Foreground(LightGray)
		}
		b.WriteString(style.Render(part.Text))
		visibleLen += lipgloss.Width(part.Text)
	}

	// Fill to width, leaving one cell of margin each side
	if pad := width - visibleLen - 2; pad > 0 {
		b.WriteString(base.Render(strings.Repeat(" ", pad)))
	}

	margin := base.Render(" ")
	return margin + b.String() + margin
}

// RowPart is a piece of a list row with an optional foreground color
type RowPart struct {
	Text       string
	Foreground *lipgloss.Color
}
