// Package ui is the interactive terminal front end: a search box with a
// debounced suggestion dropdown above a paginated result list.
package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"charm.land/bubbles/v2/paginator"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"github.com/go-logr/logr"

	"github.com/oakwood-commons/kliff/internal/config"
	"github.com/oakwood-commons/kliff/internal/paging"
	"github.com/oakwood-commons/kliff/internal/prefs"
	"github.com/oakwood-commons/kliff/internal/query"
	"github.com/oakwood-commons/kliff/internal/render"
	"github.com/oakwood-commons/kliff/internal/results"
	"github.com/oakwood-commons/kliff/internal/suggest"
)

// InputErrorFlash is how long the empty-query indicator stays up.
const InputErrorFlash = 500 * time.Millisecond

// dropdownTop is the screen row of the first suggestion: title, then input.
const dropdownTop = 2

const (
	defaultWidth  = 80
	defaultHeight = 24
)

type focusArea int

const (
	focusInput focusArea = iota
	focusResults
)

// suggestTickMsg ends a debounce window.
type suggestTickMsg struct {
	Ticket uint64
	Text   string
}

// blurElapsedMsg ends the blur grace period numbered Seq.
type blurElapsedMsg struct{ Seq int }

// flashClearMsg hides the input error indicator numbered Seq.
type flashClearMsg struct{ Seq int }

// resultsMsg carries a finished resolution back to Update.
type resultsMsg struct {
	req results.Request
	set results.ResultSet
	err error
}

// Options configures a Model.
type Options struct {
	Config       config.Config
	Source       suggest.Source
	Resolver     results.Resolver
	Prefs        prefs.Store
	Theme        string
	NoColor      bool
	InitialQuery string
	Context      context.Context
	Logger       logr.Logger
	Clock        suggest.Clock
}

// Model is the bubbletea model for the search screen.
type Model struct {
	cfg    config.Config
	ctx    context.Context
	log    logr.Logger
	engine *suggest.Engine
	pager  *results.Paginator
	prefs  prefs.Store

	dropdown suggest.State
	input    textinput.Model
	dots     paginator.Model

	themeName string
	styles    render.Styles
	noColor   bool

	focus     focusArea
	cursor    int
	inputErr  bool
	flashSeq  int
	blurSeq   int
	blurGrace time.Duration
	status    string
	width     int
	height    int
	initCmd   tea.Cmd
}

// New builds the model. A non-empty InitialQuery is submitted on Init.
func New(opts Options) (*Model, error) {
	if opts.Source == nil {
		return nil, errors.New("ui: a suggestion source is required")
	}
	if opts.Resolver == nil {
		return nil, errors.New("ui: a resolver is required")
	}
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.Logger.GetSink() == nil {
		opts.Logger = logr.Discard()
	}
	policy, err := suggest.ParseEnterPolicy(opts.Config.Search.EnterPolicy)
	if err != nil {
		return nil, err
	}

	ti := textinput.New()
	ti.Prompt = "› "
	ti.Placeholder = "Search"
	ti.CharLimit = 256
	ti.SetWidth(defaultWidth - 8)
	ti.Focus()

	dots := paginator.New()
	dots.Type = paginator.Dots
	dots.ActiveDot = "●"
	dots.InactiveDot = "○"

	m := &Model{
		cfg: opts.Config,
		ctx: opts.Context,
		log: opts.Logger,
		engine: suggest.NewEngine(opts.Source, suggest.Options{
			MaxSuggestions: opts.Config.Search.MaxSuggestions,
			Debounce:       opts.Config.Search.Debounce(),
			Clock:          opts.Clock,
		}),
		pager:     results.New(opts.Resolver, opts.Config.Search.PageSize, results.WithLogger(opts.Logger.WithName("results"))),
		prefs:     opts.Prefs,
		dropdown:  suggest.NewState(policy),
		input:     ti,
		dots:      dots,
		noColor:   opts.NoColor,
		blurGrace: opts.Config.Search.BlurGrace(),
		width:     defaultWidth,
		height:    defaultHeight,
	}
	if m.blurGrace <= 0 {
		m.blurGrace = suggest.DefaultBlurGrace
	}
	m.setTheme(opts.Theme)
	m.syncDots()

	if strings.TrimSpace(opts.InitialQuery) != "" {
		m.input.SetValue(opts.InitialQuery)
		m.input.CursorEnd()
		m.dropdown.Input = opts.InitialQuery
		m.initCmd = m.submit(opts.InitialQuery)
	}
	return m, nil
}

// Init starts the initial search, if any.
func (m *Model) Init() tea.Cmd { return m.initCmd }

// Update handles one message.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.input.SetWidth(max(m.width-8, 10))
		return m, nil

	case suggestTickMsg:
		items, ok := m.engine.Settle(msg.Ticket, msg.Text)
		if !ok {
			return m, nil
		}
		return m, m.dispatch(suggest.SuggestionsReady{Text: msg.Text, Items: items})

	case blurElapsedMsg:
		if msg.Seq != m.blurSeq {
			return m, nil
		}
		return m, m.dispatch(suggest.BlurElapsed{})

	case flashClearMsg:
		if msg.Seq == m.flashSeq {
			m.inputErr = false
		}
		return m, nil

	case resultsMsg:
		if !m.pager.Complete(msg.req, msg.set, msg.err) {
			return m, nil
		}
		m.cursor = 0
		m.status = ""
		if msg.err != nil && !errors.Is(msg.err, context.Canceled) {
			m.status = msg.err.Error()
		}
		m.syncDots()
		return m, nil

	case tea.FocusMsg:
		if m.focus == focusInput {
			m.keepDropdown()
		}
		return m, nil

	case tea.BlurMsg:
		return m, m.dispatch(suggest.FocusLost{})

	case tea.MouseClickMsg:
		return m, m.click(msg.Mouse())

	case tea.KeyPressMsg:
		if m.focus == focusResults {
			return m, m.resultKey(msg)
		}
		return m, m.inputKey(msg)
	}

	if m.focus == focusInput {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) inputKey(msg tea.KeyPressMsg) tea.Cmd {
	switch InputKeyBindings[msg.String()] {
	case ActionQuit:
		return m.quit()
	case ActionTheme:
		return m.toggleTheme()
	case ActionPrevPage:
		m.step(paging.Prev)
		return nil
	case ActionNextPage:
		m.step(paging.Next)
		return nil
	case ActionFocusResult:
		m.focus = focusResults
		m.input.Blur()
		return m.dispatch(suggest.FocusLost{})
	}

	if k, ok := dropdownKey(msg); ok {
		return m.dispatch(suggest.KeyPressed{Key: k})
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if after := m.input.Value(); after != before {
		return tea.Batch(cmd, m.dispatch(suggest.TextChanged{Text: after}))
	}
	return cmd
}

func (m *Model) resultKey(msg tea.KeyPressMsg) tea.Cmd {
	page := m.pager.Page()
	switch ResultKeyBindings[msg.String()] {
	case ActionQuit:
		return m.quit()
	case ActionTheme:
		return m.toggleTheme()
	case ActionPrevPage:
		m.step(paging.Prev)
	case ActionNextPage:
		m.step(paging.Next)
	case ActionCursorUp:
		if m.cursor > 0 {
			m.cursor--
		}
	case ActionCursorDown:
		if m.cursor < len(page)-1 {
			m.cursor++
		}
	case ActionOpen:
		if m.cursor < len(page) {
			m.report("open", openURLFn(page[m.cursor].Href()))
		}
	case ActionCopy:
		if m.cursor < len(page) {
			m.report("copy", copyFn(page[m.cursor].Href()))
		}
	case ActionFocusInput:
		return m.focusInput()
	}
	return nil
}

// click routes a mouse press to the dropdown: a row selects, anything else
// is an outside click.
func (m *Model) click(mouse tea.Mouse) tea.Cmd {
	if mouse.Button != tea.MouseLeft {
		return nil
	}
	if n := len(m.dropdown.Visible()); n > 0 && mouse.Y >= dropdownTop && mouse.Y < dropdownTop+n {
		return m.dispatch(suggest.ItemClicked{Index: mouse.Y - dropdownTop})
	}
	cmd := m.dispatch(suggest.ClickedOutside{})
	if mouse.Y == dropdownTop-1 && m.focus != focusInput {
		return tea.Batch(cmd, m.focusInput())
	}
	return cmd
}

// dispatch feeds ev to the dropdown and performs the requested effects.
func (m *Model) dispatch(ev suggest.Event) tea.Cmd {
	var out suggest.Outcome
	m.dropdown, out = suggest.Reduce(m.dropdown, ev)

	var cmds []tea.Cmd
	switch out.Refresh {
	case suggest.RefreshSchedule:
		ticket, text := m.engine.Schedule(), m.dropdown.Input
		cmds = append(cmds, tea.Tick(m.engine.Debounce(), func(time.Time) tea.Msg {
			return suggestTickMsg{Ticket: ticket, Text: text}
		}))
	case suggest.RefreshCancel:
		m.engine.Cancel()
	}
	if out.StartBlurGrace {
		m.blurSeq++
		seq := m.blurSeq
		cmds = append(cmds, tea.Tick(m.blurGrace, func(time.Time) tea.Msg {
			return blurElapsedMsg{Seq: seq}
		}))
	}
	if out.Refocus {
		m.input.SetValue(m.dropdown.Input)
		m.input.CursorEnd()
		cmds = append(cmds, m.focusInput())
	}
	if out.Submit {
		cmds = append(cmds, m.submit(out.Query))
	}
	return tea.Batch(cmds...)
}

// submit finalizes text and starts resolving it. An empty query flashes the
// input error instead.
func (m *Model) submit(text string) tea.Cmd {
	q, err := query.Finalize(text)
	if err != nil {
		m.inputErr = true
		m.flashSeq++
		seq := m.flashSeq
		return tea.Tick(InputErrorFlash, func(time.Time) tea.Msg { return flashClearMsg{Seq: seq} })
	}
	m.inputErr = false
	m.log.V(1).Info("navigate", "url", query.NavigationURL(q))
	req := m.pager.Begin(m.ctx, q)
	pager := m.pager
	return func() tea.Msg {
		set, err := pager.Run(req)
		return resultsMsg{req: req, set: set, err: err}
	}
}

func (m *Model) step(d paging.Direction) {
	if m.pager.Step(d) {
		m.cursor = 0
		m.syncDots()
	}
}

func (m *Model) focusInput() tea.Cmd {
	m.focus = focusInput
	m.keepDropdown()
	return m.input.Focus()
}

// keepDropdown cancels a pending blur close once focus is back.
func (m *Model) keepDropdown() {
	m.blurSeq++
	m.dropdown.Focused = true
	m.dropdown.BlurPending = false
}

func (m *Model) toggleTheme() tea.Cmd {
	next := m.cfg.NextTheme(m.themeName)
	m.setTheme(next)
	if m.prefs != nil {
		if err := m.prefs.Save(prefs.Prefs{Theme: m.themeName}); err != nil {
			m.log.Error(err, "failed to save theme preference", "theme", m.themeName)
			m.status = fmt.Sprintf("theme not saved: %v", err)
			return nil
		}
	}
	m.status = "theme: " + m.themeName
	return nil
}

func (m *Model) setTheme(name string) {
	resolved, th := m.cfg.ResolveTheme(name)
	m.themeName = resolved
	m.styles = render.NewStyles(th, m.noColor)
}

func (m *Model) report(what string, err error) {
	if err != nil {
		m.log.Error(err, what+" failed")
		m.status = fmt.Sprintf("%s failed: %v", what, err)
		return
	}
	m.status = what + ": ok"
}

func (m *Model) quit() tea.Cmd {
	m.engine.Cancel()
	return tea.Quit
}

func (m *Model) syncDots() {
	pg := m.pager.State().Page
	m.dots.PerPage = pg.Size
	m.dots.SetTotalPages(pg.Total)
	m.dots.Page = pg.Current - 1
}

// Query returns the text in the search box.
func (m *Model) Query() string { return m.input.Value() }

// Theme returns the active theme name.
func (m *Model) Theme() string { return m.themeName }

// Dropdown returns the suggestion dropdown state.
func (m *Model) Dropdown() suggest.State { return m.dropdown }

// Results returns the paginator state.
func (m *Model) Results() results.State { return m.pager.State() }

// InputError reports whether the empty-query indicator is showing.
func (m *Model) InputError() bool { return m.inputErr }
