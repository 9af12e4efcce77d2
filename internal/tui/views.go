package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/lumen/internal/catalog"
	"github.com/mmcdole/lumen/internal/tui/styles"
)

const (
	listWidthPercent = 60
	minSplitWidth    = 80 // Narrower terminals hide the inspector
)

// View renders the application
func (m Model) View() string {
	if !m.Ready {
		return "Loading..."
	}

	if m.State == StateHelp {
		return m.renderHelp()
	}

	header := m.renderHeader()
	footer := m.renderFooter()

	bodyHeight := max(m.Height-lipgloss.Height(header)-lipgloss.Height(footer), 1)

	var body string
	if m.Width >= minSplitWidth {
		listWidth := m.Width * listWidthPercent / 100
		list := lipgloss.NewStyle().Width(listWidth).Height(bodyHeight).Render(m.renderList(listWidth))
		inspector := styles.InspectorStyle.
			Width(m.Width - listWidth - 4).
			Height(bodyHeight - 2).
			Render(m.renderInspector())
		body = lipgloss.JoinHorizontal(lipgloss.Top, list, inspector)
	} else {
		body = lipgloss.NewStyle().Height(bodyHeight).Render(m.renderList(m.Width))
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

func (m Model) renderHeader() string {
	title := styles.TitleStyle.Render("lumen") + styles.DimStyle.Render(" · procedures")
	if m.Loading {
		title += " " + m.spinner.View()
	}

	var right string
	if id := m.svc.Identity; id.SignedIn() {
		who := id.Subject
		if who == "" {
			who = "signed in"
		}
		if id.Admin {
			who += " (admin)"
		}
		right = styles.SubtitleStyle.Render(who)
	} else {
		right = styles.DimStyle.Render("anonymous")
	}

	gap := max(m.Width-lipgloss.Width(title)-lipgloss.Width(right)-2, 1)
	return " " + title + strings.Repeat(" ", gap) + right + " "
}

// renderList draws the current page, with a section label wherever the
// major step number changes. Filtered results are ranked, so they show
// no section labels.
func (m Model) renderList(width int) string {
	if len(m.visible) == 0 {
		switch {
		case m.Loading:
			return styles.ListStyle.Render(styles.DimStyle.Render("Loading procedures..."))
		case m.filterInput.Value() != "":
			return styles.ListStyle.Render(styles.DimStyle.Render("No matches"))
		default:
			return styles.ListStyle.Render(styles.DimStyle.Render("No procedures"))
		}
	}

	start, end := m.paginator.GetSliceBounds(len(m.visible))
	filtered := m.filterInput.Value() != ""
	inner := max(width-4, 10)

	var lines []string
	lastSection := ""
	for i := start; i < end; i++ {
		e := m.visible[i]
		if !filtered {
			if s := e.Key.Section(); s != lastSection {
				lines = append(lines, styles.SectionStyle.Render(sectionLabel(s)))
				lastSection = s
			}
		}
		lines = append(lines, m.renderRow(e, i == m.cursor, inner))
	}

	lines = append(lines, "", styles.DimStyle.Render(m.paginator.View()))
	return styles.ListStyle.Render(strings.Join(lines, "\n"))
}

func (m Model) renderRow(e catalog.Entry, selected bool, width int) string {
	step := fmt.Sprintf("%-6s", e.Key.Canonical)
	titleWidth := max(width-lipgloss.Width(step)-6, 1)

	stepColor := styles.DimGray
	return styles.RenderListRow([]styles.RowPart{
		{Text: styles.RenderReadStatus(m.svc.Reads.IsRead(e.Value.ID)) + " "},
		{Text: step + " ", Foreground: &stepColor},
		{Text: styles.Truncate(e.Value.Title, titleWidth)},
	}, selected, width)
}

func sectionLabel(s string) string {
	if s == "uncategorized" {
		return "Uncategorized"
	}
	return "Section " + s
}

// renderInspector shows the selected procedure with its like and review state
func (m Model) renderInspector() string {
	e, ok := m.selected()
	if !ok {
		return styles.DimStyle.Render("Nothing selected")
	}

	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render(e.Value.Title))
	b.WriteString("\n")
	b.WriteString(styles.DimStyle.Render("Step " + e.Key.Canonical))
	b.WriteString("\n\n")

	if summary := strings.TrimSpace(e.Value.Summary); summary != "" {
		b.WriteString(styles.SubtitleStyle.Render(summary))
		b.WriteString("\n\n")
	}

	read := "Not read yet"
	if m.svc.Reads.IsRead(e.Value.ID) {
		read = "Read"
	}
	b.WriteString(styles.RenderReadStatus(m.svc.Reads.IsRead(e.Value.ID)) + " " + read + "\n")

	if m.like != nil {
		like := m.like.Snapshot()
		line := styles.RenderLike(like.Liked, like.Count)
		if like.Pending {
			line += styles.DimStyle.Render(" saving…")
		}
		b.WriteString(line + "\n")
		if like.Err != "" {
			b.WriteString(styles.ErrorStyle.Render(like.Err) + "\n")
		}
	}

	review := m.svc.Reviews.Snapshot()
	if review.RefID == e.Value.ID {
		b.WriteString(renderScores(review.Average(), len(review.Scores), review.MyScore))
		if review.Loading {
			b.WriteString(styles.DimStyle.Render(" loading…"))
		}
		b.WriteString("\n")
		if review.Err != "" {
			b.WriteString(styles.ErrorStyle.Render(review.Err) + "\n")
		}
	}

	return b.String()
}

func renderScores(avg *float64, count int, mine *float64) string {
	star := styles.StarStyle.Render(styles.StarChar)
	var line string
	if avg == nil {
		line = star + styles.DimStyle.Render(" no scores yet")
	} else {
		line = fmt.Sprintf("%s %.2f %s", star, *avg, styles.DimStyle.Render(fmt.Sprintf("(%d)", count)))
	}
	if mine != nil {
		line += styles.SubtitleStyle.Render(fmt.Sprintf("  yours: %.1f", *mine))
	}
	return line
}

func (m Model) renderFooter() string {
	if m.State == StateFiltering || m.filterInput.Value() != "" {
		return styles.FooterStyle.Render(m.filterInput.View())
	}
	if m.StatusMsg != "" {
		if m.StatusIsErr {
			return styles.FooterStyle.Render(styles.ErrorStyle.Render(m.StatusMsg))
		}
		return styles.FooterStyle.Render(styles.SuccessStyle.Render(m.StatusMsg))
	}
	return styles.FooterStyle.Render(m.help.ShortHelpView(Keys.ShortHelp()))
}

func (m Model) renderHelp() string {
	h := m.help
	h.ShowAll = true
	content := styles.TitleStyle.Render("Keys") + "\n\n" + h.View(Keys)
	return lipgloss.Place(m.Width, m.Height, lipgloss.Center, lipgloss.Center, content)
}
