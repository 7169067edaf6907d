// internal/tui/app.go
//
// This is the terminal front end of the planner. It uses bubbletea, which
// follows The Elm Architecture:
//
// 1. Model: the application state (App)
// 2. Update: a function that updates state based on messages
// 3. View: a function that renders state to a string
//
// Every change loads the data file, applies one mutation and saves it back,
// so the web front end and this one always see each other's writes.

package tui

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/kingrea/academic-planner/internal/config"
	"github.com/kingrea/academic-planner/internal/logbook"
	"github.com/kingrea/academic-planner/internal/planner"
	"github.com/kingrea/academic-planner/internal/report"
	"github.com/kingrea/academic-planner/internal/store"
)

// appState represents which "screen" we're on
type appState int

const (
	stateMainMenu appState = iota
	stateDashboard
	stateProgress
	stateCourses
	stateAssignments
	stateGoals
	stateForm
)

const (
	defaultDeadlines = 3
	logTailLines     = 8
)

// AppOption customizes App construction for tests and alternate runtimes.
type AppOption func(*App)

// WithClock overrides the clock that decides "today".
func WithClock(clock report.Clock) AppOption {
	return func(a *App) {
		if clock != nil {
			a.clock = clock
		}
	}
}

// WithIDGenerator overrides how new record ids are minted.
func WithIDGenerator(gen func() string) AppOption {
	return func(a *App) {
		if gen != nil {
			a.newID = gen
		}
	}
}

// WithLogbook attaches the activity journal shown in the side panel.
func WithLogbook(lb *logbook.Logbook) AppOption {
	return func(a *App) {
		a.logbook = lb
	}
}

// pendingAction is a destructive change waiting for a y/n answer.
type pendingAction struct {
	prompt string
	run    func(doc *planner.Document) (string, error)
}

// App is the main application model. In bubbletea, this holds ALL your state.
type App struct {
	state     appState
	config    *config.Config
	store     store.DocumentStore
	logbook   *logbook.Logbook
	watcher   *fileWatcher
	clock     report.Clock
	newID     func() string
	deadlines int

	// Last successfully loaded document, used for rendering only.
	doc planner.Document

	// UI components
	mainMenu list.Model
	records  list.Model
	form     *formModel
	confirm  *pendingAction

	statusMsg string
	statusErr bool
	loadErr   error

	width  int
	height int
}

// menuItem implements list.Item interface for our menu items
type menuItem struct {
	title string
	desc  string
}

func (i menuItem) Title() string       { return i.title }
func (i menuItem) Description() string { return i.desc }
func (i menuItem) FilterValue() string { return i.title }

// recordItem is one course, assignment or goal in a management screen.
type recordItem struct {
	id    string
	title string
	desc  string
}

func (i recordItem) Title() string       { return i.title }
func (i recordItem) Description() string { return i.desc }
func (i recordItem) FilterValue() string { return i.title }

// NewApp creates a new App over st. cfg may be nil, in which case defaults
// apply and the data file is not watched.
func NewApp(cfg *config.Config, st store.DocumentStore, opts ...AppOption) (*App, error) {
	if st == nil {
		return nil, errors.New("tui: store is required")
	}
	mainMenu := list.New(buildMainMenu(), list.NewDefaultDelegate(), 0, 0)
	mainMenu.Title = "ACADEMIC PLANNER"
	mainMenu.SetShowStatusBar(false)
	mainMenu.SetFilteringEnabled(false)
	records := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	records.SetShowStatusBar(false)
	records.SetFilteringEnabled(false)
	records.SetShowHelp(false)

	app := &App{
		state:     stateMainMenu,
		config:    cfg,
		store:     st,
		clock:     report.SystemClock,
		newID:     uuid.NewString,
		deadlines: defaultDeadlines,
		doc:       planner.NewDocument(),
		mainMenu:  mainMenu,
		records:   records,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(app)
		}
	}
	if cfg != nil {
		if n := cfg.Project.Dashboard.TextDeadlines; n > 0 {
			app.deadlines = n
		}
		if w, err := newFileWatcher(cfg.DataFilePath()); err != nil {
			app.logWarn("Live reload disabled: %v", err)
		} else {
			app.watcher = w
		}
	}
	app.reload()
	app.logInfo("Session opened · %d courses, %d assignments", len(app.doc.Courses), len(app.doc.Assignments))
	return app, nil
}

// buildMainMenu creates the main menu items
func buildMainMenu() []list.Item {
	return []list.Item{
		menuItem{title: "View dashboard", desc: "Summary, GPA and upcoming deadlines"},
		menuItem{title: "Edit student profile", desc: "Name and term"},
		menuItem{title: "Manage courses", desc: "Add, grade or remove courses"},
		menuItem{title: "Manage assignments", desc: "Add assignments and track their status"},
		menuItem{title: "Log study session", desc: "Record time spent studying"},
		menuItem{title: "Manage goals", desc: "Add goals and track progress"},
		menuItem{title: "View progress report", desc: "Per-course completion and study time"},
		menuItem{title: "Exit", desc: "Quit the planner"},
	}
}

// Close releases the data file watcher.
func (a *App) Close() error {
	if a.watcher == nil {
		return nil
	}
	err := a.watcher.Close()
	a.watcher = nil
	return err
}

func (a *App) logInfo(format string, args ...any) {
	if a.logbook == nil {
		return
	}
	a.logbook.Info(format, args...)
}

func (a *App) logWarn(format string, args ...any) {
	if a.logbook == nil {
		return
	}
	a.logbook.Warn(format, args...)
}

func (a *App) logError(format string, args ...any) {
	if a.logbook == nil {
		return
	}
	a.logbook.Error(format, args...)
}

func (a *App) setStatus(msg string) {
	a.statusMsg = msg
	a.statusErr = false
}

func (a *App) setError(err error) {
	a.statusMsg = describeError(err)
	a.statusErr = true
}

// reload refreshes the rendered document from disk. A failed load keeps the
// previous document on screen.
func (a *App) reload() {
	doc, err := a.store.Load()
	if err != nil {
		a.loadErr = err
		a.logError("Load failed: %v", err)
		return
	}
	a.loadErr = nil
	a.doc = doc
	a.refreshRecords()
}

// mutate runs one load → change → save cycle.
func (a *App) mutate(change func(doc *planner.Document) (string, error)) error {
	doc, err := a.store.Load()
	if err != nil {
		a.loadErr = err
		return err
	}
	message, err := change(&doc)
	if err != nil {
		return err
	}
	if err := a.store.Save(doc); err != nil {
		a.logError("Save failed: %v", err)
		return err
	}
	a.loadErr = nil
	a.doc = doc
	a.setStatus(message)
	a.logInfo("%s", message)
	a.refreshRecords()
	return nil
}

func (a *App) watchData() tea.Cmd {
	if a.watcher == nil {
		return nil
	}
	return a.watcher.next()
}

// Init is called once when the program starts.
func (a *App) Init() tea.Cmd {
	return a.watchData()
}

// Update is called when a message is received.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.mainMenu.SetSize(max(0, msg.Width-6), max(0, msg.Height-10))
		a.records.SetSize(max(0, msg.Width-6), max(0, msg.Height-12))
		return a, nil

	case dataChangedMsg:
		a.reload()
		return a, a.watchData()

	case watchErrMsg:
		a.logWarn("Watcher error: %v", msg.err)
		return a, a.watchData()

	case tea.KeyMsg:
		key := msg.String()
		if key == "ctrl+c" {
			return a, tea.Quit
		}
		if a.confirm != nil {
			return a.answerConfirm(key)
		}
		if a.state == stateForm {
			return a.updateForm(msg)
		}
		switch key {
		case "q":
			if a.state == stateMainMenu {
				return a, tea.Quit
			}
			return a.returnToMainMenu()
		case "esc":
			if a.state != stateMainMenu {
				return a.returnToMainMenu()
			}
		case "r":
			a.reload()
			if a.loadErr == nil {
				a.setStatus("Reloaded planner data.")
			}
			return a, nil
		case "enter":
			if a.state == stateMainMenu {
				return a.handleMainMenuSelection()
			}
		default:
			if a.isRecordScreen() {
				if model, cmd, handled := a.handleRecordKey(key); handled {
					return model, cmd
				}
			}
		}
	}

	var cmd tea.Cmd
	switch a.state {
	case stateMainMenu:
		a.mainMenu, cmd = a.mainMenu.Update(msg)
	case stateCourses, stateAssignments, stateGoals:
		a.records, cmd = a.records.Update(msg)
	case stateForm:
		if a.form != nil {
			cmd = a.form.update(msg)
		}
	}
	return a, cmd
}

// handleMainMenuSelection processes menu item selection
func (a *App) handleMainMenuSelection() (tea.Model, tea.Cmd) {
	item, ok := a.mainMenu.SelectedItem().(menuItem)
	if !ok {
		return a, nil
	}
	a.setStatus("")

	switch item.title {
	case "View dashboard":
		return a.enter(stateDashboard)
	case "Edit student profile":
		return a.openForm(a.profileForm())
	case "Manage courses":
		return a.enter(stateCourses)
	case "Manage assignments":
		return a.enter(stateAssignments)
	case "Log study session":
		if len(a.doc.Courses) == 0 {
			a.setError(errors.New("add a course before logging study sessions"))
			return a, nil
		}
		return a.openForm(a.sessionForm(stateMainMenu))
	case "Manage goals":
		return a.enter(stateGoals)
	case "View progress report":
		return a.enter(stateProgress)
	case "Exit":
		a.logInfo("Session closed")
		return a, tea.Quit
	}
	return a, nil
}

func (a *App) enter(state appState) (tea.Model, tea.Cmd) {
	a.state = state
	a.reload()
	a.records.Select(0)
	return a, nil
}

func (a *App) returnToMainMenu() (tea.Model, tea.Cmd) {
	a.state = stateMainMenu
	a.form = nil
	a.confirm = nil
	return a, nil
}

func (a *App) openForm(f *formModel) (tea.Model, tea.Cmd) {
	a.form = f
	a.state = stateForm
	return a, f.setFocus(0)
}

func (a *App) closeForm() {
	if a.form != nil {
		a.state = a.form.back
	}
	a.form = nil
	a.refreshRecords()
}

func (a *App) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.form == nil {
		return a.returnToMainMenu()
	}
	switch msg.String() {
	case "esc":
		a.closeForm()
		a.setStatus("Cancelled.")
		return a, nil
	case "tab", "down":
		return a, a.form.next()
	case "shift+tab", "up":
		return a, a.form.prev()
	case "enter":
		if !a.form.onLastField() {
			return a, a.form.next()
		}
		return a.submitForm()
	}
	return a, a.form.update(msg)
}

func (a *App) submitForm() (tea.Model, tea.Cmd) {
	values := a.form.values()
	submit := a.form.submit
	err := a.mutate(func(doc *planner.Document) (string, error) {
		return submit(doc, values)
	})
	if err != nil {
		a.form.err = describeError(err)
		return a, nil
	}
	a.closeForm()
	return a, nil
}

func (a *App) answerConfirm(key string) (tea.Model, tea.Cmd) {
	action := a.confirm
	a.confirm = nil
	if key != "y" && key != "Y" {
		a.setStatus("Cancelled.")
		return a, nil
	}
	if err := a.mutate(action.run); err != nil {
		a.setError(err)
	}
	return a, nil
}

func (a *App) isRecordScreen() bool {
	return a.state == stateCourses || a.state == stateAssignments || a.state == stateGoals
}

func (a *App) selectedRecord() (recordItem, bool) {
	item, ok := a.records.SelectedItem().(recordItem)
	return item, ok
}

// describeError turns planner errors into one line for the status bar.
func describeError(err error) string {
	var verr *planner.ValidationError
	switch {
	case errors.As(err, &verr):
		return "Invalid input: " + verr.Error()
	case errors.Is(err, planner.ErrNotFound):
		return "Not found: " + err.Error()
	case errors.Is(err, planner.ErrMalformedDocument):
		return "Data file is malformed: " + err.Error()
	default:
		return "Error: " + err.Error()
	}
}

// View renders the current state to a string.
func (a *App) View() string {
	width := a.width
	if width <= 0 {
		width = 100
	}
	rightWidth := max(32, width/3)
	leftWidth := width - rightWidth - 4
	if leftWidth < 40 {
		leftWidth = width - 4
		rightWidth = 0
	}
	if a.state == stateMainMenu {
		a.mainMenu.SetSize(max(20, leftWidth-4), max(12, a.height-10))
	}

	var content string
	switch a.state {
	case stateMainMenu:
		content = a.mainMenu.View()
	case stateDashboard:
		content = a.renderDashboard()
	case stateProgress:
		content = a.renderProgress()
	case stateCourses, stateAssignments, stateGoals:
		content = a.renderRecords()
	case stateForm:
		if a.form != nil {
			content = a.form.view()
		}
	}
	return a.renderFrame(content, leftWidth, rightWidth)
}

func (a *App) renderFrame(mainContent string, leftWidth, rightWidth int) string {
	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FF6B6B")).
		MarginBottom(1).
		Render("ACADEMIC PLANNER")
	leftBox := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444444")).
		Padding(0, 1).
		Width(max(20, leftWidth)).
		Render(mainContent)
	body := leftBox
	if rightWidth > 0 {
		if panel := a.renderLogPanel(rightWidth - 4); panel != "" {
			body = lipgloss.JoinHorizontal(lipgloss.Top, leftBox, panel)
		}
	}

	var footer []string
	if a.confirm != nil {
		footer = append(footer, lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFB86C")).Render(a.confirm.prompt))
	} else if a.statusMsg != "" {
		color := lipgloss.Color("#50FA7B")
		if a.statusErr {
			color = lipgloss.Color("#FF6B6B")
		}
		footer = append(footer, lipgloss.NewStyle().Foreground(color).Render(a.statusMsg))
	}
	if a.loadErr != nil {
		footer = append(footer, lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Render(describeError(a.loadErr)))
	}
	footer = append(footer, lipgloss.NewStyle().
		Foreground(lipgloss.Color("#888888")).
		Render("enter select · esc back · r reload · q quit"))
	return lipgloss.JoinVertical(lipgloss.Left, header, body, strings.Join(footer, "\n"))
}

func (a *App) renderLogPanel(width int) string {
	if a.logbook == nil {
		return ""
	}
	lines, total := a.logbook.Tail(logTailLines)
	if len(lines) == 0 {
		return ""
	}
	fileName := filepath.Base(a.logbook.Path())
	if fileName == "." || fileName == "" {
		fileName = "log"
	}
	head := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#5B8DEF")).
		Render(fmt.Sprintf("LOG · %s (%d)", fileName, total))
	body := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#AAAAAA")).
		Width(max(20, width)).
		Render(strings.Join(lines, "\n"))
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444444")).
		Padding(0, 1).
		Render(fmt.Sprintf("%s\n%s", head, body))
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
