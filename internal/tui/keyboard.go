package tui

import (
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// handleKeyMsg handles keyboard input
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Handle state-specific keys
	switch m.State {
	case StateHelp:
		if key.Matches(msg, Keys.Escape, Keys.Help, Keys.Quit) {
			m.State = StateBrowsing
		}
		return m, nil

	case StateFiltering:
		return m.handleFilterKey(msg)
	}

	switch {
	case key.Matches(msg, Keys.Quit):
		m.shutdown()
		return m, tea.Quit

	case key.Matches(msg, Keys.Help):
		m.State = StateHelp
		return m, nil

	case key.Matches(msg, Keys.Escape):
		if m.filterInput.Value() != "" {
			m.filterInput.SetValue("")
			m.applyFilter()
			return m, m.selectionChanged()
		}
		return m, nil

	case key.Matches(msg, Keys.Filter):
		m.State = StateFiltering
		return m, m.filterInput.Focus()

	case key.Matches(msg, Keys.Up):
		return m, m.moveTo(m.cursor - 1)

	case key.Matches(msg, Keys.Down):
		return m, m.moveTo(m.cursor + 1)

	case key.Matches(msg, Keys.PrevPage):
		return m, m.moveTo((m.paginator.Page - 1) * m.paginator.PerPage)

	case key.Matches(msg, Keys.NextPage):
		if m.paginator.OnLastPage() {
			return m, nil
		}
		return m, m.moveTo((m.paginator.Page + 1) * m.paginator.PerPage)

	case key.Matches(msg, Keys.Home):
		return m, m.moveTo(0)

	case key.Matches(msg, Keys.End):
		return m, m.moveTo(len(m.visible) - 1)

	case key.Matches(msg, Keys.Refresh):
		m.Loading = true
		return m, tea.Batch(
			m.spinner.Tick,
			RefreshCatalogCmd(m.ctx, m.svc.Catalog),
			RefreshReadsCmd(m.ctx, m.svc.Reads, m.svc.Identity),
		)

	case key.Matches(msg, Keys.Open):
		e, ok := m.selected()
		if !ok {
			return m, nil
		}
		pageURL, err := m.itemURL(e)
		if err != nil {
			return m, func() tea.Msg { return ErrMsg{Err: err, Context: "open the page"} }
		}
		return m, OpenPageCmd(m.svc.Opener, pageURL)

	case key.Matches(msg, Keys.MarkRead):
		e, ok := m.selected()
		if !ok || m.svc.Reads.IsRead(e.Value.ID) {
			return m, nil
		}
		if !m.requireSignIn("mark procedures read") {
			return m, nil
		}
		return m, MarkReadCmd(m.ctx, m.svc.Reads, e, m.svc.Identity)

	case key.Matches(msg, Keys.Like):
		e, ok := m.selected()
		if !ok || m.like == nil {
			return m, nil
		}
		if !m.requireSignIn("like procedures") {
			return m, nil
		}
		return m, ToggleLikeCmd(m.ctx, m.like, e.Value.ID, m.svc.Identity)

	case key.Matches(msg, Keys.Rate):
		e, ok := m.selected()
		if !ok {
			return m, nil
		}
		if !m.requireSignIn("rate procedures") {
			return m, nil
		}
		score, err := strconv.ParseFloat(msg.String(), 64)
		if err != nil {
			return m, nil
		}
		return m, SubmitScoreCmd(m.ctx, m.svc.Reviews, e.Value.ID, score, m.svc.Identity)
	}

	return m, nil
}

// handleFilterKey routes keys to the filter input. Enter keeps the filter,
// esc clears it.
func (m Model) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.State = StateBrowsing
		m.filterInput.Blur()
		return m, nil
	case tea.KeyEsc:
		m.State = StateBrowsing
		m.filterInput.Blur()
		m.filterInput.SetValue("")
		m.applyFilter()
		return m, m.selectionChanged()
	case tea.KeyCtrlC:
		m.shutdown()
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	m.cursor = 0
	m.applyFilter()
	return m, tea.Batch(cmd, m.selectionChanged())
}
