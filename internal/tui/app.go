// internal/tui/app.go
//
// The Waypoint terminal UI. It follows the bubbletea Elm architecture: remote
// work runs inside commands and comes back as messages, and every state change
// happens in Update on the program's single goroutine.

package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/waypoint/internal/config"
	"github.com/kingrea/waypoint/internal/export"
	"github.com/kingrea/waypoint/internal/identity"
	"github.com/kingrea/waypoint/internal/logging"
	"github.com/kingrea/waypoint/internal/trip"
)

// appState represents which screen is shown.
type appState int

const (
	stateSignIn appState = iota
	statePlanner
)

// Deps are the collaborators the App drives.
type Deps struct {
	Config   *config.Config
	Identity identity.Provider
	Session  *trip.Session
	Logger   *logging.Logger
}

// AppOption customizes App construction for tests and alternate runtimes.
type AppOption func(*App)

// WithClock overrides the clock used for export file names.
func WithClock(clock func() time.Time) AppOption {
	return func(a *App) {
		if clock != nil {
			a.clock = clock
		}
	}
}

// WithContext sets the parent context for remote calls.
func WithContext(ctx context.Context) AppOption {
	return func(a *App) {
		if ctx != nil {
			a.ctx = ctx
		}
	}
}

type tripResultMsg struct {
	result trip.Result
}

type authResultMsg struct {
	session *identity.Session
	signUp  bool
	err     error
}

type signedOutMsg struct {
	err error
}

type exportDoneMsg struct {
	path string
	err  error
}

// App is the root model.
type App struct {
	state    appState
	config   *config.Config
	identity identity.Provider
	session  *trip.Session
	logger   *logging.Logger
	ctx      context.Context
	clock    func() time.Time

	signIn  *signInView
	planner *plannerView
	spinner spinner.Model

	statusMsg string
	showLog   bool
	width     int
	height    int
}

const logPanelLines = 6

// NewApp creates the App on the sign-in screen.
func NewApp(deps Deps, opts ...AppOption) (*App, error) {
	if deps.Config == nil {
		return nil, errors.New("tui: config is required")
	}
	if deps.Identity == nil {
		return nil, errors.New("tui: identity provider is required")
	}
	if deps.Session == nil {
		return nil, errors.New("tui: trip session is required")
	}
	spin := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(accentStyle))
	app := &App{
		state:    stateSignIn,
		config:   deps.Config,
		identity: deps.Identity,
		session:  deps.Session,
		logger:   deps.Logger.Component("tui"),
		ctx:      context.Background(),
		clock:    time.Now,
		spinner:  spin,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(app)
		}
	}
	app.signIn = newSignInView()
	app.planner = newPlannerView(app.session)
	if app.session.Authenticated() {
		app.state = statePlanner
	}
	return app, nil
}

// Init is called once when the program starts.
func (a *App) Init() tea.Cmd {
	return nil
}

// Update is called when a message is received.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.signIn.setWidth(msg.Width)
		a.planner.setWidth(msg.Width)
		return a, nil

	case spinner.TickMsg:
		if !a.busy() {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case authResultMsg:
		return a.handleAuthResult(msg)

	case tripResultMsg:
		return a.handleTripResult(msg)

	case signedOutMsg:
		if msg.err != nil {
			a.logger.Warn().Err(msg.err).Msg("sign out")
		}
		return a, nil

	case exportDoneMsg:
		if msg.err != nil {
			a.statusMsg = fmt.Sprintf("Export failed: %v", msg.err)
			a.logger.Error().Err(msg.err).Msg("export")
			return a, nil
		}
		a.statusMsg = fmt.Sprintf("Itinerary saved to %s", msg.path)
		a.logger.Info().Str("path", msg.path).Msg("exported itinerary")
		return a, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return a, tea.Quit
		case "ctrl+l":
			a.showLog = !a.showLog
			return a, nil
		}
		switch a.state {
		case stateSignIn:
			return a.updateSignIn(msg)
		case statePlanner:
			return a.updatePlanner(msg)
		}
	}
	return a, nil
}

func (a *App) busy() bool {
	return a.signIn.busy || a.session.Busy()
}

func (a *App) updateSignIn(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return a, tea.Quit
	case "enter":
		if a.signIn.busy {
			return a, nil
		}
		email, password, signUp, ok := a.signIn.submit()
		if !ok {
			a.signIn.problem = "Please enter both email and password."
			return a, nil
		}
		a.signIn.busy = true
		a.signIn.problem = ""
		return a, tea.Batch(a.authenticate(email, password, signUp), a.spinner.Tick)
	}
	a.signIn.handleKey(msg)
	return a, nil
}

func (a *App) authenticate(email, password string, signUp bool) tea.Cmd {
	provider := a.identity
	ctx := a.ctx
	return func() tea.Msg {
		var (
			session *identity.Session
			err     error
		)
		if signUp {
			session, err = provider.SignUp(ctx, email, password)
		} else {
			session, err = provider.SignIn(ctx, email, password)
		}
		return authResultMsg{session: session, signUp: signUp, err: err}
	}
}

func (a *App) handleAuthResult(msg authResultMsg) (tea.Model, tea.Cmd) {
	a.signIn.busy = false
	if msg.err != nil {
		var authErr *identity.AuthError
		if errors.As(msg.err, &authErr) {
			a.signIn.problem = authErr.UserMessage()
		} else {
			a.signIn.problem = fmt.Sprintf("Authentication failed: %v", msg.err)
		}
		a.logger.Warn().Err(msg.err).Bool("sign_up", msg.signUp).Msg("authentication failed")
		return a, nil
	}
	a.session.SignIn(msg.session)
	a.signIn.reset()
	a.state = statePlanner
	a.planner.focusOn(focusQuery)
	a.statusMsg = fmt.Sprintf("Signed in as %s", msg.session.Email)
	a.logger.Info().Str("email", msg.session.Email).Msg("signed in")
	return a, nil
}

func (a *App) updatePlanner(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	p := a.planner
	switch msg.String() {
	case "esc":
		return a, tea.Quit
	case "q":
		if p.focus == focusCandidates {
			return a, tea.Quit
		}
	case "tab":
		p.focusOn(p.focus.next())
		return a, nil
	case "shift+tab":
		p.focusOn(p.focus.prev())
		return a, nil
	case "ctrl+p":
		return a.togglePreference()
	case "ctrl+e":
		return a, a.exportItinerary()
	case "ctrl+o":
		return a.signOut()
	case "enter":
		if p.focus == focusQuery {
			return a.search()
		}
		return a.plan()
	}

	if p.focus == focusCandidates {
		switch msg.String() {
		case "up", "k":
			p.moveCursor(-1)
		case "down", "j":
			p.moveCursor(1)
		case " ", "x":
			p.toggleCurrent()
		}
		return a, nil
	}
	p.handleInput(msg)
	return a, nil
}

func (a *App) search() (tea.Model, tea.Cmd) {
	job, err := a.session.Search(a.ctx, a.planner.query.Value())
	if err != nil {
		return a, nil
	}
	a.planner.cursor = 0
	a.statusMsg = ""
	return a, a.runJob(job)
}

func (a *App) plan() (tea.Model, tea.Cmd) {
	job, err := a.session.Plan(a.ctx)
	if err != nil {
		return a, nil
	}
	a.statusMsg = ""
	return a, a.runJob(job)
}

func (a *App) togglePreference() (tea.Model, tea.Cmd) {
	next := a.session.Preference().Toggle()
	if err := a.config.SetDefaultPreference(string(next)); err != nil {
		a.logger.Warn().Err(err).Msg("persist preference")
	}
	if _, planned := a.session.Itinerary(); planned || a.session.PlanningStatus() == trip.StatusPending {
		job, err := a.session.Replan(a.ctx, next)
		if err != nil {
			return a, nil
		}
		return a, a.runJob(job)
	}
	if err := a.session.SetPreference(next); err != nil {
		a.statusMsg = trip.Message(err)
	}
	return a, nil
}

func (a *App) runJob(job trip.Job) tea.Cmd {
	if job == nil {
		return nil
	}
	run := func() tea.Msg {
		return tripResultMsg{result: job()}
	}
	return tea.Batch(run, a.spinner.Tick)
}

func (a *App) handleTripResult(msg tripResultMsg) (tea.Model, tea.Cmd) {
	out := a.session.Apply(msg.result)
	if !out.Applied {
		return a, nil
	}
	if out.Err != nil {
		a.logger.Warn().Str("intent", out.Intent).Err(out.Err).Msg("request failed")
		return a, nil
	}
	switch out.Intent {
	case trip.IntentDiscover:
		a.planner.afterDiscovery()
		a.statusMsg = fmt.Sprintf("%d places found", len(a.session.Candidates()))
	case trip.IntentPlan:
		if it, ok := a.session.Itinerary(); ok {
			a.statusMsg = fmt.Sprintf("Itinerary ready: %d stops", len(it.Legs))
		}
	}
	return a, nil
}

func (a *App) exportItinerary() tea.Cmd {
	it, ok := a.session.Itinerary()
	if !ok {
		a.statusMsg = "Plan a trip before exporting."
		return nil
	}
	selection := a.session.Selection()
	path := filepath.Join(a.config.ExportsDir(), export.FileName(a.clock(), "pdf"))
	return func() tea.Msg {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return exportDoneMsg{err: err}
		}
		f, err := os.Create(path)
		if err != nil {
			return exportDoneMsg{err: err}
		}
		if err := export.WritePDF(f, it, selection); err != nil {
			_ = f.Close()
			return exportDoneMsg{err: err}
		}
		return exportDoneMsg{path: path, err: f.Close()}
	}
}

func (a *App) signOut() (tea.Model, tea.Cmd) {
	a.session.SignOut()
	a.planner = newPlannerView(a.session)
	a.planner.setWidth(a.width)
	a.state = stateSignIn
	a.statusMsg = "Signed out."
	a.logger.Info().Msg("signed out")
	provider := a.identity
	ctx := a.ctx
	return a, func() tea.Msg {
		return signedOutMsg{err: provider.SignOut(ctx)}
	}
}

// View renders the current state to a string.
func (a *App) View() string {
	width := a.width
	if width <= 0 {
		width = 100
	}
	var body string
	switch a.state {
	case stateSignIn:
		body = a.signIn.view(a.spinner.View())
	default:
		body = a.planner.view(a.spinner.View())
	}
	box := frameStyle.Width(max(40, width-2)).Render(body)
	sections := []string{headerStyle.Render("◆ WAYPOINT"), box}
	if strings.TrimSpace(a.statusMsg) != "" {
		sections = append(sections, footerStyle.Render(a.statusMsg))
	}
	if a.showLog {
		sections = append(sections, a.renderLogPanel(width))
	}
	sections = append(sections, footerStyle.Render(a.help()))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (a *App) renderLogPanel(width int) string {
	entries := logging.Tail(a.logger.Path(), logPanelLines)
	lines := []string{labelStyle.Render("Recent activity")}
	if len(entries) == 0 {
		lines = append(lines, dimStyle.Render("No log entries yet."))
	}
	for _, entry := range entries {
		style := dimStyle
		if entry.Level == "warn" || entry.Level == "error" {
			style = problemStyle
		}
		lines = append(lines, style.Render(entry.String()))
	}
	return logPanelStyle.Width(max(40, width-2)).Render(strings.Join(lines, "\n"))
}

func (a *App) help() string {
	if a.state == stateSignIn {
		return "tab switch field · ctrl+t sign in/sign up · enter submit · ctrl+l log · esc quit"
	}
	return "tab focus · enter search/plan · space pick · ctrl+p route · ctrl+e export · ctrl+l log · ctrl+o sign out · esc quit"
}
