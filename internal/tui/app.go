package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/paginator"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/lumen/internal/adapter"
	"github.com/mmcdole/lumen/internal/catalog"
	"github.com/mmcdole/lumen/internal/domain"
	"github.com/mmcdole/lumen/internal/engagement"
	"github.com/mmcdole/lumen/internal/paging"
	"github.com/mmcdole/lumen/internal/tui/styles"
	"github.com/sahilm/fuzzy"
)

// ApplicationState represents the current state of the application
type ApplicationState int

const (
	StateBrowsing ApplicationState = iota
	StateFiltering
	StateHelp
)

// Opener launches a web page
type Opener interface {
	Open(pageURL string) error
}

// Services is what the browser needs from the composition root
type Services struct {
	Catalog  *catalog.Service
	Reads    *engagement.ReadTracker
	Reviews  *engagement.ReviewBoard
	Likes    domain.LikeRepository // Like trackers are per item
	Opener   Opener
	WebBase  string
	Identity domain.Identity
	PageSize int
}

// Model is the main Bubble Tea model for the procedure browser
type Model struct {
	// Application state
	State ApplicationState
	Ready bool

	ctx    context.Context
	cancel context.CancelFunc
	svc    Services
	logger *slog.Logger

	events chan engagement.Event
	like   *engagement.LikeTracker // Selected item's like state

	// Listing
	all       []catalog.Entry
	visible   []catalog.Entry // all, or the filter matches in rank order
	cursor    int             // Index into visible
	detailID  int64           // Item the inspector is loaded for
	paginator paginator.Model

	// UI components
	spinner     spinner.Model
	filterInput textinput.Model
	help        help.Model

	// Dimensions
	Width  int
	Height int

	// UI state
	StatusMsg   string
	StatusIsErr bool
	Loading     bool
}

// NewModel creates a new application model. Cancelling ctx aborts every
// request the browser has in flight.
func NewModel(ctx context.Context, svc Services, logger *slog.Logger) Model {
	if logger == nil {
		logger = slog.Default()
	}
	if svc.PageSize <= 0 {
		svc.PageSize = paging.DefaultPageSize
	}
	ctx, cancel := context.WithCancel(ctx)

	p := paginator.New()
	p.Type = paginator.Arabic
	p.PerPage = svc.PageSize

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.SpinnerStyle

	ti := textinput.New()
	ti.Prompt = styles.FilterPromptStyle.Render("/ ")
	ti.Placeholder = "filter titles"

	h := help.New()
	h.Styles.ShortKey = styles.HelpKeyStyle
	h.Styles.ShortDesc = styles.HelpDescStyle
	h.Styles.FullKey = styles.HelpKeyStyle
	h.Styles.FullDesc = styles.HelpDescStyle

	events := make(chan engagement.Event, 64)
	observer := NewChannelObserver(events)
	svc.Reads.SetObserver(observer)
	svc.Reviews.SetObserver(observer)

	return Model{
		State:       StateBrowsing,
		ctx:         ctx,
		cancel:      cancel,
		svc:         svc,
		logger:      logger,
		events:      events,
		paginator:   p,
		spinner:     sp,
		filterInput: ti,
		help:        h,
		Loading:     true,
	}
}

// Init initializes the application
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		RefreshCatalogCmd(m.ctx, m.svc.Catalog),
		RefreshReadsCmd(m.ctx, m.svc.Reads, m.svc.Identity),
		ListenEngagementCmd(m.events),
	)
}

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Ready = true
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case spinner.TickMsg:
		if !m.Loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case CatalogLoadedMsg:
		m.Loading = false
		if msg.Err != nil {
			// The catalog keeps the user-facing message
			m.StatusMsg = m.svc.Catalog.Snapshot().Err
			m.StatusIsErr = true
		}
		m.all = m.svc.Catalog.All()
		m.applyFilter()
		return m, m.selectionChanged()

	case ReadsLoadedMsg:
		if msg.Err != nil {
			m.StatusMsg = m.svc.Reads.Snapshot().Err
			m.StatusIsErr = true
			return m, ClearStatusCmd(5 * time.Second)
		}
		return m, nil

	case EngagementChangedMsg:
		// Stores are read on every View; keep listening
		return m, ListenEngagementCmd(m.events)

	case DetailsLoadedMsg:
		return m, nil

	case MarkedReadMsg:
		m.StatusMsg = fmt.Sprintf("Marked %q read", msg.Title)
		m.StatusIsErr = false
		return m, ClearStatusCmd(3 * time.Second)

	case LikeToggledMsg:
		if msg.Liked {
			m.StatusMsg = "Liked"
		} else {
			m.StatusMsg = "Like removed"
		}
		m.StatusIsErr = false
		return m, ClearStatusCmd(2 * time.Second)

	case ScoreSubmittedMsg:
		m.StatusMsg = fmt.Sprintf("Scored %.1f", msg.Score)
		m.StatusIsErr = false
		return m, ClearStatusCmd(3 * time.Second)

	case PageOpenedMsg:
		m.StatusMsg = "Opened " + msg.URL
		m.StatusIsErr = false
		return m, ClearStatusCmd(3 * time.Second)

	case ErrMsg:
		m.StatusMsg = domain.Describe(msg.Context, msg.Err)
		m.StatusIsErr = true
		m.logger.Error("browser action failed", "action", msg.Context, "error", msg.Err)
		return m, ClearStatusCmd(5 * time.Second)

	case StatusMsg:
		m.StatusMsg = msg.Message
		m.StatusIsErr = msg.IsError
		return m, ClearStatusCmd(3 * time.Second)

	case ClearStatusMsg:
		m.StatusMsg = ""
		m.StatusIsErr = false
		return m, nil
	}

	return m, nil
}

// selected returns the entry under the cursor
func (m Model) selected() (catalog.Entry, bool) {
	if m.cursor < 0 || m.cursor >= len(m.visible) {
		return catalog.Entry{}, false
	}
	return m.visible[m.cursor], true
}

// applyFilter recomputes the visible entries. Matches are ranked by
// sahilm/fuzzy score; with no query the listing keeps step order.
func (m *Model) applyFilter() {
	query := strings.TrimSpace(m.filterInput.Value())
	if query == "" {
		m.visible = m.all
	} else {
		lowerTitles := make([]string, len(m.all))
		for i, e := range m.all {
			lowerTitles[i] = strings.ToLower(e.Value.Title)
		}
		matches := fuzzy.Find(strings.ToLower(query), lowerTitles)
		m.visible = make([]catalog.Entry, len(matches))
		for i, match := range matches {
			m.visible[i] = m.all[match.Index]
		}
	}

	m.paginator.SetTotalPages(len(m.visible))
	m.cursor = min(m.cursor, max(len(m.visible)-1, 0))
	m.syncPage()
}

// moveTo places the cursor on index i (clamped)
func (m *Model) moveTo(i int) tea.Cmd {
	if len(m.visible) == 0 {
		return nil
	}
	m.cursor = max(0, min(i, len(m.visible)-1))
	m.syncPage()
	return m.selectionChanged()
}

func (m *Model) syncPage() {
	if m.paginator.PerPage > 0 {
		m.paginator.Page = m.cursor / m.paginator.PerPage
	}
}

// selectionChanged retargets the inspector when the selected item changes.
// Older like and review loads are superseded by the stores themselves.
func (m *Model) selectionChanged() tea.Cmd {
	e, ok := m.selected()
	if !ok || e.Value.ID == m.detailID {
		return nil
	}
	m.detailID = e.Value.ID

	if m.like != nil {
		m.like.SetObserver(nil)
		m.like.Close()
	}
	m.like = engagement.NewLikeTracker(m.svc.Likes, domain.DomainProcedures, e.Value.ID, m.logger)
	m.like.SetObserver(NewChannelObserver(m.events))

	return tea.Batch(
		LoadLikeCmd(m.ctx, m.like, e.Value.ID, m.svc.Identity, m.logger),
		LoadReviewsCmd(m.ctx, m.svc.Reviews, e.Value.ID, m.svc.Identity, m.logger),
	)
}

// requireSignIn sets a status message and reports false when anonymous
func (m *Model) requireSignIn(action string) bool {
	if m.svc.Identity.SignedIn() {
		return true
	}
	m.StatusMsg = domain.Describe(action, domain.ErrNotSignedIn)
	m.StatusIsErr = true
	return false
}

// shutdown cancels everything in flight before quitting
func (m *Model) shutdown() {
	m.cancel()
	if m.like != nil {
		m.like.Close()
	}
	m.svc.Catalog.Close()
	m.svc.Reads.Close()
	m.svc.Reviews.Close()
}

// itemURL returns the web page of the selected procedure
func (m Model) itemURL(e catalog.Entry) (string, error) {
	return adapter.ItemURL(m.svc.WebBase, domain.DomainProcedures, e.Value.ID)
}

// Run starts the browser and blocks until the user quits
func Run(ctx context.Context, svc Services, logger *slog.Logger) error {
	model := NewModel(ctx, svc, logger)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)

	final, err := p.Run()
	if fm, ok := final.(Model); ok {
		fm.shutdown()
	}
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
