package ui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/flix/internal/guard"
	"github.com/desertthunder/flix/internal/models"
	"github.com/desertthunder/flix/internal/search"
	"github.com/desertthunder/flix/internal/services"
	"github.com/desertthunder/flix/internal/session"
	"github.com/desertthunder/flix/internal/shared"
)

// Options holds the dependencies of a [Model].
type Options struct {
	Session   *session.Manager
	Movies    services.MovieService
	Search    search.Options
	Logger    *log.Logger
	StartPath string
	// OpenURL opens a page outside the terminal. Defaults to [shared.OpenBrowser].
	OpenURL func(string) error
}

// Model represents the TUI application state.
type Model struct {
	ctx        context.Context
	cancel     context.CancelFunc
	session    *session.Manager
	movies     services.MovieService
	searchOpts search.Options
	logger     *log.Logger
	openURL    func(string) error

	nav     *guard.Navigator
	route   guard.Route
	initCmd tea.Cmd

	searchSig  signal
	detailSig  signal
	sessionSig signal
	unsubs     []func()

	controller  *search.Controller
	unsubSearch func()
	results     search.State
	query       textinput.Model
	list        list.Model
	listFocus   bool

	loader      *search.DetailLoader
	unsubDetail func()
	detail      search.DetailState
	viewport    viewport.Model

	form    *authForm
	spinner spinner.Model
	help    help.Model
	keys    keyMap
	status  string
	width   int
	height  int
}

// NewModel creates a new TUI model positioned at opts.StartPath (sign-in when empty).
func NewModel(ctx context.Context, opts Options) *Model {
	ctx, cancel := context.WithCancel(ctx)

	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	openURL := opts.OpenURL
	if openURL == nil {
		openURL = shared.OpenBrowser
	}
	searchOpts := opts.Search
	searchOpts.Context = ctx
	if searchOpts.Logger == nil {
		searchOpts.Logger = logger
	}

	query := textinput.New()
	query.Placeholder = "Search for a movie..."
	query.Prompt = "🔍 "
	query.CharLimit = 128

	results := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	results.SetShowTitle(false)
	results.SetFilteringEnabled(false)
	results.SetShowHelp(false)
	results.SetShowStatusBar(false)
	results.DisableQuitKeybindings()

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = styles.title.UnsetMarginBottom()

	m := &Model{
		ctx:        ctx,
		cancel:     cancel,
		session:    opts.Session,
		movies:     opts.Movies,
		searchOpts: searchOpts,
		logger:     logger,
		openURL:    openURL,
		searchSig:  newSignal(),
		detailSig:  newSignal(),
		sessionSig: newSignal(),
		query:      query,
		list:       results,
		viewport:   viewport.New(0, 0),
		spinner:    spin,
		help:       help.New(),
		keys:       newKeyMap(),
	}

	m.unsubs = append(m.unsubs, m.session.Subscribe(func(session.State) { m.sessionSig.raise() }))

	start := opts.StartPath
	if start == "" {
		start = guard.PathSignIn
	}
	m.nav = guard.NewNavigator(m.session.Current().IsAuthenticated(), start)
	m.route = m.nav.Current()
	m.initCmd = m.enter(m.route)
	return m
}

// Route returns the view being rendered.
func (m *Model) Route() guard.Route {
	return m.route
}

// Close stops background work owned by the model. Safe to call more than once.
func (m *Model) Close() {
	m.cancel()
	m.stopSearch()
	m.stopDetail()
	for _, unsub := range m.unsubs {
		unsub()
	}
	m.unsubs = nil
}

// Init starts the listeners and enters the first view.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.initCmd,
		m.waitFor(m.searchSig, searchChangedMsg),
		m.waitFor(m.detailSig, detailChangedMsg),
		m.waitFor(m.sessionSig, sessionChangedMsg),
		m.spinner.Tick,
	)
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width-4, max(msg.Height-14, 3))
		m.viewport.Width = msg.Width - 4
		m.viewport.Height = max(msg.Height-6, 3)
		m.renderDetail()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case Msg:
		return m, m.handleMsg(msg)

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.forceQ) {
			m.Close()
			return m, tea.Quit
		}
		m.status = ""

		switch m.route.Kind {
		case guard.SignIn:
			return m, m.handleSignInKeys(msg)
		case guard.SignUp:
			return m, m.handleSignUpKeys(msg)
		case guard.Home:
			return m, m.handleHomeKeys(msg)
		case guard.Movie:
			return m, m.handleMovieKeys(msg)
		default:
			return m, m.handleNotFoundKeys(msg)
		}
	}

	return m, m.updateInputs(msg)
}

func (m *Model) handleMsg(msg Msg) tea.Cmd {
	switch msg.kind {
	case MsgSearchChanged:
		var cmd tea.Cmd
		if m.controller != nil {
			cmd = m.applySearch(m.controller.Snapshot())
		}
		return tea.Batch(cmd, m.waitFor(m.searchSig, searchChangedMsg))

	case MsgDetailChanged:
		if m.loader != nil {
			m.detail = m.loader.Snapshot()
			m.renderDetail()
		}
		return m.waitFor(m.detailSig, detailChangedMsg)

	case MsgSessionChanged:
		authenticated := m.session.Current().IsAuthenticated()
		return tea.Batch(m.transition(m.nav.SetAuthenticated(authenticated)), m.waitFor(m.sessionSig, sessionChangedMsg))

	case MsgBrowserOpened:
		if err, _ := msg.data.(error); err != nil {
			m.logger.Warn("failed to open browser", "err", err)
			m.status = styles.err.Render(fmt.Sprintf("Could not open browser: %v", err))
		} else {
			m.status = styles.ok.Render("Opened in browser.")
		}
	}
	return nil
}

// View renders the UI based on the current route.
func (m *Model) View() string {
	var body string
	switch m.route.Kind {
	case guard.SignIn:
		body = m.renderSignIn()
	case guard.SignUp:
		body = m.renderSignUp()
	case guard.Home:
		body = m.renderHome()
	case guard.Movie:
		body = m.renderMovie()
	default:
		body = m.renderNotFound()
	}

	parts := []string{}
	if header := m.renderHeader(); header != "" {
		parts = append(parts, header)
	}
	parts = append(parts, body)
	if m.status != "" {
		parts = append(parts, m.status)
	}
	return strings.Join(parts, "\n\n")
}

// waitFor blocks until sig is raised, then delivers mk().
func (m *Model) waitFor(sig signal, mk func() Msg) tea.Cmd {
	return func() tea.Msg {
		select {
		case <-m.ctx.Done():
			return nil
		case <-sig:
			return mk()
		}
	}
}

// transition moves to r, tearing down whatever the previous view owned.
func (m *Model) transition(r guard.Route) tea.Cmd {
	if r == m.route {
		return nil
	}

	prev := m.route
	m.route = r
	m.logger.Debug("navigate", "from", prev.Path, "to", r.Path, "view", r.Kind)

	if prev.Kind == guard.Movie {
		m.stopDetail()
	}
	if !r.Protected() {
		m.stopSearch()
	}
	return m.enter(r)
}

func (m *Model) enter(r guard.Route) tea.Cmd {
	switch r.Kind {
	case guard.SignIn:
		m.form = newSignInForm(m.session.LastEmail())
		return textinput.Blink
	case guard.SignUp:
		m.form = newSignUpForm()
		return textinput.Blink
	case guard.Home:
		m.form = nil
		cmd := m.startSearch()
		m.listFocus = false
		return tea.Batch(cmd, m.query.Focus())
	case guard.Movie:
		m.form = nil
		m.startDetail(r.MovieID)
	default:
		m.form = nil
	}
	return nil
}

func (m *Model) startSearch() tea.Cmd {
	if m.controller != nil {
		return nil
	}

	m.controller = search.NewController(m.movies, m.searchOpts)
	m.unsubSearch = m.controller.Subscribe(func(search.State) { m.searchSig.raise() })

	snap := m.controller.Snapshot()
	m.query.SetValue(snap.RawQuery)
	m.query.CursorEnd()
	return m.applySearch(snap)
}

func (m *Model) stopSearch() {
	if m.controller == nil {
		return
	}
	m.unsubSearch()
	m.controller.Close()
	m.controller = nil
	m.results = search.State{}
	m.query.SetValue("")
	m.list.SetItems(nil)
}

func (m *Model) applySearch(s search.State) tea.Cmd {
	m.results = s
	if !s.HasResults() {
		m.listFocus = false
	}
	return m.list.SetItems(movieItems(s.Results))
}

func (m *Model) startDetail(id string) {
	m.stopDetail()

	m.loader = search.NewDetailLoader(m.movies, m.searchOpts)
	m.unsubDetail = m.loader.Subscribe(func(search.DetailState) { m.detailSig.raise() })
	m.loader.Load(id)
	m.detail = m.loader.Snapshot()
	m.renderDetail()
	m.viewport.GotoTop()
}

func (m *Model) stopDetail() {
	if m.loader == nil {
		return
	}
	m.unsubDetail()
	m.loader.Close()
	m.loader = nil
	m.detail = search.DetailState{}
}

func (m *Model) logout() tea.Cmd {
	r := m.nav.SignedOut()
	if err := m.session.Logout(); err != nil {
		m.logger.Error("logout failed", "err", err)
		m.status = styles.err.Render(shared.UserMessage(err))
	}
	return m.transition(r)
}

func (m *Model) open(id string) tea.Cmd {
	target := shared.IMDbURL(id)
	return func() tea.Msg {
		return browserOpenedMsg(m.openURL(target))
	}
}

func (m *Model) updateInputs(msg tea.Msg) tea.Cmd {
	switch {
	case m.form != nil:
		return m.form.update(msg)
	case m.route.Kind == guard.Home && !m.listFocus:
		var cmd tea.Cmd
		m.query, cmd = m.query.Update(msg)
		return cmd
	case m.route.Kind == guard.Movie:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return cmd
	}
	return nil
}

func (m *Model) handleSignInKeys(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.swap):
		return m.transition(m.nav.Go(guard.PathSignUp))
	case key.Matches(msg, m.keys.remember):
		m.form.remember = !m.form.remember
		return nil
	case key.Matches(msg, m.keys.next):
		return m.form.move(1)
	case key.Matches(msg, m.keys.prev):
		return m.form.move(-1)
	case key.Matches(msg, m.keys.submit):
		return m.submitSignIn()
	}
	return m.form.update(msg)
}

func (m *Model) submitSignIn() tea.Cmd {
	email := strings.TrimSpace(m.form.value(session.FieldEmail))
	password := m.form.value(session.FieldPassword)

	if errs := session.ValidateLogin(email, password); !errs.OK() {
		return m.form.reject(errs)
	}

	if _, err := m.session.Login(email, password); err != nil {
		m.form.errs = session.FieldErrors{}
		m.form.failure = shared.UserMessage(err)
		return nil
	}

	if err := m.session.RememberEmail(email, m.form.remember); err != nil {
		m.logger.Warn("failed to update remembered email", "err", err)
	}
	return m.transition(m.nav.SetAuthenticated(true))
}

func (m *Model) handleSignUpKeys(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.swap), msg.Type == tea.KeyEsc:
		return m.transition(m.nav.Go(guard.PathSignIn))
	case key.Matches(msg, m.keys.next):
		return m.form.move(1)
	case key.Matches(msg, m.keys.prev):
		return m.form.move(-1)
	case key.Matches(msg, m.keys.submit):
		return m.submitSignUp()
	}
	return m.form.update(msg)
}

func (m *Model) submitSignUp() tea.Cmd {
	name := m.form.value(session.FieldName)
	email := m.form.value(session.FieldEmail)
	password := m.form.value(session.FieldPassword)
	confirm := m.form.value(session.FieldConfirm)

	if errs := session.ValidateSignup(name, email, password, confirm); !errs.OK() {
		return m.form.reject(errs)
	}

	if _, err := m.session.Signup(email, password, name); err != nil {
		m.form.errs = session.FieldErrors{}
		m.form.failure = shared.UserMessage(err)
		return nil
	}
	return m.transition(m.nav.SetAuthenticated(true))
}

func (m *Model) handleHomeKeys(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, m.keys.logout) {
		return m.logout()
	}
	if key.Matches(msg, m.keys.focus) {
		return m.toggleFocus()
	}

	if !m.listFocus {
		switch {
		case key.Matches(msg, m.keys.submit):
			m.controller.SetQuery(m.query.Value())
			m.controller.Commit()
			return nil
		case key.Matches(msg, m.keys.retry):
			m.controller.Retry()
			return nil
		case msg.Type == tea.KeyDown && m.results.HasResults():
			return m.toggleFocus()
		}

		before := m.query.Value()
		var cmd tea.Cmd
		m.query, cmd = m.query.Update(msg)
		if after := m.query.Value(); after != before {
			m.controller.SetQuery(after)
		}
		return cmd
	}

	switch {
	case key.Matches(msg, m.keys.enter):
		if item, ok := m.list.SelectedItem().(movieItem); ok {
			return m.transition(m.nav.Go(guard.MoviePath(item.movie.ID)))
		}
		return nil
	case key.Matches(msg, m.keys.open):
		if item, ok := m.list.SelectedItem().(movieItem); ok {
			return m.open(item.movie.ID)
		}
		return nil
	case msg.Type == tea.KeyEsc:
		return m.toggleFocus()
	case key.Matches(msg, m.keys.quit):
		m.Close()
		return tea.Quit
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return cmd
}

func (m *Model) toggleFocus() tea.Cmd {
	if !m.listFocus && m.results.HasResults() {
		m.listFocus = true
		m.query.Blur()
		return nil
	}
	m.listFocus = false
	return m.query.Focus()
}

func (m *Model) handleMovieKeys(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.back):
		return m.transition(m.nav.Back())
	case key.Matches(msg, m.keys.logout):
		return m.logout()
	case key.Matches(msg, m.keys.open):
		return m.open(m.route.MovieID)
	case key.Matches(msg, m.keys.retry):
		if m.loader != nil && m.detail.Error != "" {
			m.loader.Load(m.route.MovieID)
			m.detail = m.loader.Snapshot()
			m.renderDetail()
		}
		return nil
	case key.Matches(msg, m.keys.quit):
		m.Close()
		return tea.Quit
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return cmd
}

func (m *Model) handleNotFoundKeys(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.enter):
		return m.transition(m.nav.Go(guard.PathSignIn))
	case key.Matches(msg, m.keys.back):
		return m.transition(m.nav.Back())
	case key.Matches(msg, m.keys.quit):
		m.Close()
		return tea.Quit
	}
	return nil
}

func (m *Model) renderHeader() string {
	state := m.session.Current()
	if !state.IsAuthenticated() {
		return ""
	}

	brand := styles.title.UnsetMarginBottom().Render("FLIX")
	who := state.Account.Name
	if who == "" {
		who = state.Account.Email
	}
	return fmt.Sprintf("%s  %s", brand, styles.muted.Render("Signed in as "+who))
}

func (m *Model) renderSignIn() string {
	form := m.form.view("Sign In", "")
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.next, m.keys.submit, m.keys.remember, m.keys.swap, m.keys.forceQ})
	return fmt.Sprintf("%s\n\n%s\n\n%s", form, styles.muted.Render("New here? Press ctrl+n to sign up."), helpView)
}

func (m *Model) renderSignUp() string {
	form := m.form.view("Sign Up", "Create an account to start searching.")
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.next, m.keys.submit, m.keys.swap, m.keys.forceQ})
	return fmt.Sprintf("%s\n\n%s\n\n%s", form, styles.muted.Render("Already have an account? Press ctrl+n to sign in."), helpView)
}

func (m *Model) renderHome() string {
	var b strings.Builder

	b.WriteString(styles.title.Render("Welcome back"))
	b.WriteString("\n")
	b.WriteString(styles.muted.Render("Search for your favorite movies powered by the OMDB API."))
	b.WriteString("\n\n")
	b.WriteString(m.query.View())
	b.WriteString("  " + styles.help.Render("Press Enter or wait"))
	b.WriteString("\n\n")

	committed := m.results.CommittedQuery
	if committed == "" {
		committed = "—"
	}
	line := "Showing results for " + styles.label.Render(committed)
	if m.results.HasResults() {
		n := m.results.ResultCount()
		plural := "s"
		if n == 1 {
			plural = ""
		}
		line += styles.muted.Render(fmt.Sprintf("  %d movie%s found", n, plural))
	}
	b.WriteString(line + "\n\n")

	switch {
	case m.results.Loading:
		b.WriteString(m.spinner.View() + " Searching...")
	case m.results.Error != "":
		b.WriteString(styles.err.Render(m.results.Error))
	case m.results.IsEmpty():
		b.WriteString(fmt.Sprintf("No movies found for %s. Try another search term.", styles.label.Render(m.results.CommittedQuery)))
	case m.results.HasResults():
		b.WriteString(m.list.View())
	}

	var keys []key.Binding
	if m.listFocus {
		keys = []key.Binding{m.keys.up, m.keys.down, m.keys.enter, m.keys.open, m.keys.focus, m.keys.logout, m.keys.quit}
	} else {
		keys = []key.Binding{m.keys.submit, m.keys.focus, m.keys.retry, m.keys.logout, m.keys.forceQ}
	}
	b.WriteString("\n\n" + m.help.ShortHelpView(keys))
	return b.String()
}

func (m *Model) renderMovie() string {
	keys := []key.Binding{m.keys.back, m.keys.open, m.keys.logout, m.keys.quit}

	var body string
	switch {
	case m.detail.Loading:
		body = m.spinner.View() + " Loading movie..."
	case m.detail.Error != "":
		body = styles.err.Render(m.detail.Error)
		keys = append(keys, m.keys.retry)
	case m.detail.Detail == nil:
		body = styles.muted.Render("Movie not found.")
	default:
		body = m.viewport.View()
	}
	return fmt.Sprintf("%s\n\n%s", body, m.help.ShortHelpView(keys))
}

func (m *Model) renderNotFound() string {
	title := styles.title.Render("404")
	info := "This page could not be found.\n" +
		styles.muted.Render("The page you are looking for might have been removed or is temporarily unavailable.")
	helpView := m.help.ShortHelpView([]key.Binding{
		key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "go to login")),
		m.keys.back,
		m.keys.quit,
	})
	return fmt.Sprintf("%s\n%s\n\n%s", title, info, helpView)
}

// renderDetail lays out the loaded movie into the viewport.
func (m *Model) renderDetail() {
	d := m.detail.Detail
	if d == nil {
		m.viewport.SetContent("")
		return
	}

	width := m.viewport.Width
	if width <= 0 {
		width = 80
	}

	var b strings.Builder
	b.WriteString(styles.title.Render(d.Title))
	b.WriteString("\n")

	meta := []string{}
	for _, v := range []string{d.Year, d.Runtime, d.Rated} {
		if models.Present(v) {
			meta = append(meta, strings.TrimSpace(v))
		}
	}
	if len(meta) > 0 {
		b.WriteString(styles.muted.Render(strings.Join(meta, " • ")) + "\n")
	}
	if models.Present(d.IMDbRating) {
		rating := fmt.Sprintf("★ %s/10", d.IMDbRating)
		if models.Present(d.IMDbVotes) {
			rating += fmt.Sprintf(" (%s votes)", d.IMDbVotes)
		}
		b.WriteString(styles.warn.Render(rating) + "\n")
	}
	b.WriteString("\n")

	if models.Present(d.Plot) {
		b.WriteString(lipgloss.NewStyle().Width(width).Render(d.Plot))
		b.WriteString("\n\n")
	}

	rows := [][2]string{
		{"Genre", d.Genre},
		{"Director", d.Director},
		{"Writer", d.Writer},
		{"Cast", strings.Join(d.Cast(), ", ")},
		{"Released", d.Released},
		{"Language", d.Language},
		{"Country", d.Country},
	}
	labelWidth := lipgloss.NewStyle().Width(10)
	for _, row := range rows {
		if !models.Present(row[1]) {
			continue
		}
		value := lipgloss.NewStyle().Width(max(width-10, 20)).Render(row[1])
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, labelWidth.Render(styles.label.Render(row[0])), value))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if d.HasPoster() {
		b.WriteString(styles.muted.Render("Poster: " + d.Poster))
	} else {
		b.WriteString(styles.muted.Render("No image"))
	}
	b.WriteString("\n" + styles.help.Render(shared.IMDbURL(d.ID)))

	m.viewport.SetContent(b.String())
}
