package tui

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kingrea/academic-planner/internal/logbook"
	"github.com/kingrea/academic-planner/internal/planner"
	"github.com/kingrea/academic-planner/internal/store"
)

func TestMainMenuItems(t *testing.T) {
	want := []string{
		"View dashboard",
		"Edit student profile",
		"Manage courses",
		"Manage assignments",
		"Log study session",
		"Manage goals",
		"View progress report",
		"Exit",
	}
	items := buildMainMenu()
	if len(items) != len(want) {
		t.Fatalf("expected %d menu items, got %d", len(want), len(items))
	}
	for i, item := range items {
		if got := item.(menuItem).title; got != want[i] {
			t.Fatalf("item %d: got %q want %q", i, got, want[i])
		}
	}
}

func TestAddCourseThroughForm(t *testing.T) {
	app, st := newTestApp(t, false)
	app = press(t, app, enterState(stateCourses), key("a"))
	if app.state != stateForm || app.form == nil {
		t.Fatalf("expected course form, got state %d", app.state)
	}
	app.form.set("name", "  Linear Algebra ")
	app.form.set("credits", "4")
	app.form.set("target_grade", "88")
	app = submit(t, app)

	if app.state != stateCourses {
		t.Fatalf("expected return to course list, got state %d", app.state)
	}
	doc := mustLoad(t, st)
	if len(doc.Courses) != 1 {
		t.Fatalf("expected one course, got %d", len(doc.Courses))
	}
	course := doc.Courses[0]
	if course.ID != "id-1" || course.Name != "Linear Algebra" || course.Credits != 4 || course.CurrentGrade != nil {
		t.Fatalf("unexpected course: %+v", course)
	}
	if len(app.records.Items()) != 1 {
		t.Fatalf("expected list to show the new course")
	}
	if !strings.Contains(app.statusMsg, "Linear Algebra") {
		t.Fatalf("expected status message, got %q", app.statusMsg)
	}
}

func TestFormValidationKeepsFormOpen(t *testing.T) {
	tests := []struct {
		name   string
		values map[string]string
		want   string
	}{
		{"zero credits", map[string]string{"name": "Art", "credits": "0"}, "credits must be greater than 0"},
		{"text credits", map[string]string{"name": "Art", "credits": "three"}, "credits must be a number"},
		{"blank name", map[string]string{"name": "", "credits": "3"}, "name is required"},
		{"grade over 100", map[string]string{"name": "Art", "credits": "3", "current_grade": "101"}, "current_grade must be at most 100"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, st := newTestApp(t, false)
			app = press(t, app, enterState(stateCourses), key("a"))
			for k, v := range tt.values {
				app.form.set(k, v)
			}
			app = submit(t, app)
			if app.state != stateForm || app.form == nil {
				t.Fatalf("form should stay open on invalid input")
			}
			if !strings.Contains(app.form.err, tt.want) {
				t.Fatalf("expected error containing %q, got %q", tt.want, app.form.err)
			}
			if doc := mustLoad(t, st); len(doc.Courses) != 0 {
				t.Fatalf("invalid input must not be saved")
			}
		})
	}
}

func TestEscCancelsForm(t *testing.T) {
	app, st := newTestApp(t, true)
	app = press(t, app, enterState(stateGoals), key("a"))
	app.form.set("description", "Never saved")
	app = press(t, app, special(tea.KeyEsc))
	if app.state != stateGoals || app.form != nil {
		t.Fatalf("esc should close the form, got state %d", app.state)
	}
	if doc := mustLoad(t, st); len(doc.Goals) != 1 {
		t.Fatalf("cancelled form must not change goals")
	}
}

func TestDeleteCourseAsksForConfirmation(t *testing.T) {
	app, st := newTestApp(t, true)
	app = press(t, app, enterState(stateCourses))
	selectRecord(t, app, "c1")

	app = press(t, app, key("d"))
	if app.confirm == nil {
		t.Fatalf("expected confirmation prompt")
	}
	app = press(t, app, key("n"))
	if doc := mustLoad(t, st); len(doc.Courses) != 2 {
		t.Fatalf("cancelled delete must keep courses")
	}

	app = press(t, app, key("d"), key("y"))
	doc := mustLoad(t, st)
	if len(doc.Courses) != 1 || doc.Courses[0].ID != "c2" {
		t.Fatalf("expected only c2 to remain, got %+v", doc.Courses)
	}
	for _, a := range doc.Assignments {
		if a.CourseID == "c1" {
			t.Fatalf("assignment %s of removed course survived", a.ID)
		}
	}
	for _, s := range doc.StudySessions {
		if s.CourseID == "c1" {
			t.Fatalf("session %s of removed course survived", s.ID)
		}
	}
	if !strings.Contains(app.statusMsg, "3 assignments and 1 study sessions") {
		t.Fatalf("unexpected status %q", app.statusMsg)
	}
}

func TestAssignmentStatusKeepsGradeWhenBlank(t *testing.T) {
	app, st := newTestApp(t, true)
	app = press(t, app, enterState(stateAssignments))
	selectRecord(t, app, "a3")
	app = press(t, app, key("s"))
	if app.form == nil {
		t.Fatalf("expected status form")
	}
	app.form.set("status", " Completed ")
	app.form.set("grade", "")
	app = submit(t, app)

	if app.form != nil {
		t.Fatalf("unexpected form error: %s", app.form.err)
	}
	a, ok := func() (planner.Assignment, bool) {
		doc := mustLoad(t, st)
		return doc.Assignment("a3")
	}()
	if !ok {
		t.Fatalf("assignment a3 missing")
	}
	if a.Status != planner.StatusCompleted {
		t.Fatalf("expected completed, got %q", a.Status)
	}
	if a.Grade == nil || *a.Grade != 75 {
		t.Fatalf("expected grade 75 to be kept, got %v", a.Grade)
	}
}

func TestAssignmentStatusRejectsUnknownStatus(t *testing.T) {
	app, st := newTestApp(t, true)
	app = press(t, app, enterState(stateAssignments))
	selectRecord(t, app, "a1")
	app = press(t, app, key("s"))
	app.form.set("status", "finished")
	app = submit(t, app)
	if app.form == nil || !strings.Contains(app.form.err, "status must be one of") {
		t.Fatalf("expected status validation error")
	}
	a, _ := func() (planner.Assignment, bool) {
		doc := mustLoad(t, st)
		return doc.Assignment("a1")
	}()
	if a.Status != planner.StatusPending {
		t.Fatalf("status must not change, got %q", a.Status)
	}
}

func TestLogStudySessionByCourseNumber(t *testing.T) {
	app, st := newTestApp(t, true)
	app.mainMenu.Select(4)
	app = press(t, app, special(tea.KeyEnter))
	if app.form == nil || app.form.title != "Log study session" {
		t.Fatalf("expected study session form")
	}
	if got := app.form.values()["date"]; got != "2024-05-01" {
		t.Fatalf("expected date to default to today, got %q", got)
	}
	app.form.set("course", "2")
	app.form.set("duration_hours", "1.5")
	app.form.set("notes", "flashcards")
	app = submit(t, app)

	if app.state != stateMainMenu {
		t.Fatalf("expected return to main menu, got %d", app.state)
	}
	doc := mustLoad(t, st)
	last := doc.StudySessions[len(doc.StudySessions)-1]
	if last.CourseID != "c2" || last.DurationHours != 1.5 || last.Notes != "flashcards" || last.Date != "2024-05-01" {
		t.Fatalf("unexpected session: %+v", last)
	}
}

func TestLogStudySessionNeedsACourse(t *testing.T) {
	app, _ := newTestApp(t, false)
	app.mainMenu.Select(4)
	app = press(t, app, special(tea.KeyEnter))
	if app.state != stateMainMenu || !app.statusErr {
		t.Fatalf("expected an error on the main menu, got state %d", app.state)
	}
}

func TestGoalProgressForm(t *testing.T) {
	app, st := newTestApp(t, true)
	app = press(t, app, enterState(stateGoals))
	selectRecord(t, app, "g1")
	app = press(t, app, key("p"))
	app.form.set("progress", "150")
	app = submit(t, app)
	if app.form == nil || !strings.Contains(app.form.err, "progress") {
		t.Fatalf("expected progress range error")
	}
	app.form.set("progress", "80")
	app = submit(t, app)
	goal, _ := func() (planner.Goal, bool) {
		doc := mustLoad(t, st)
		return doc.Goal("g1")
	}()
	if goal.Progress != 80 {
		t.Fatalf("expected progress 80, got %v", goal.Progress)
	}
}

func TestDashboardShowsNextThreeDeadlines(t *testing.T) {
	app, _ := newTestApp(t, true)
	out := app.renderDashboard()
	for _, title := range []string{"Problem set", "Lab", "Essay"} {
		if !strings.Contains(out, title) {
			t.Fatalf("dashboard missing %q:\n%s", title, out)
		}
	}
	if strings.Contains(out, "Final project") {
		t.Fatalf("dashboard should list three deadlines only:\n%s", out)
	}
	if strings.Contains(out, "Old quiz") {
		t.Fatalf("past assignments must not be listed:\n%s", out)
	}
	if !strings.Contains(out, "Estimated GPA:") || !strings.Contains(out, "3.50") {
		t.Fatalf("unexpected GPA line:\n%s", out)
	}
}

func TestProgressReport(t *testing.T) {
	app, _ := newTestApp(t, true)
	out := app.renderProgress()
	for _, want := range []string{
		"Calculus",
		"Assignments completed: 1/3",
		"Average assignment grade: 75.0",
		"Total study hours: 5.0",
		"Read daily: 40%",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("progress report missing %q:\n%s", want, out)
		}
	}
}

func TestResolveCourse(t *testing.T) {
	doc := fixtureDocument()
	tests := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{"1", "c1", false},
		{"2", "c2", false},
		{"c2", "c2", false},
		{"calculus", "c1", false},
		{"3", "", true},
		{"", "", true},
		{"Biology", "", true},
	}
	for _, tt := range tests {
		got, err := resolveCourse(doc, tt.raw)
		if (err != nil) != tt.wantErr {
			t.Fatalf("resolveCourse(%q) error = %v", tt.raw, err)
		}
		if got != tt.want {
			t.Fatalf("resolveCourse(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestDataChangedReloadsDocument(t *testing.T) {
	app, st := newTestApp(t, true)
	other := store.New(st.Path())
	doc := mustLoad(t, other)
	doc.SetProfile("Grace", "Fall 2024")
	if err := other.Save(doc); err != nil {
		t.Fatalf("save: %v", err)
	}
	app = press(t, app, dataChangedMsg{})
	if app.doc.StudentName != "Grace" {
		t.Fatalf("expected reload to pick up external change, got %q", app.doc.StudentName)
	}
}

func TestWatcherReportsSaves(t *testing.T) {
	path := filepath.Join(t.TempDir(), "planner_data.json")
	w, err := newFileWatcher(path)
	if err != nil {
		t.Fatalf("watcher: %v", err)
	}
	defer w.Close()

	got := make(chan tea.Msg, 1)
	go func() { got <- w.next()() }()

	if err := store.New(path).Save(fixtureDocument()); err != nil {
		t.Fatalf("save: %v", err)
	}
	select {
	case msg := <-got:
		if _, ok := msg.(dataChangedMsg); !ok {
			t.Fatalf("expected dataChangedMsg, got %T", msg)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for file change")
	}
}

func TestViewShowsActivityLog(t *testing.T) {
	app, _ := newTestApp(t, true)
	app = press(t, app, tea.WindowSizeMsg{Width: 160, Height: 50}, enterState(stateGoals), key("d"), key("y"))
	view := app.View()
	if !strings.Contains(view, "LOG · activity.log") {
		t.Fatalf("expected log panel in view:\n%s", view)
	}
	if !strings.Contains(view, "Removed goal") {
		t.Fatalf("expected journal entry in view:\n%s", view)
	}
}

func TestQuitFromMainMenu(t *testing.T) {
	app, _ := newTestApp(t, false)
	_, cmd := app.Update(key("q"))
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg")
	}
}

// Helpers.

type enterState appState

func fixtureDocument() planner.Document {
	doc := planner.NewDocument()
	doc.StudentName = "Ada"
	doc.Term = "Spring 2024"
	doc.Courses = []planner.Course{
		{ID: "c1", Name: "Calculus", Credits: 4, TargetGrade: 90, CurrentGrade: planner.Float(91)},
		{ID: "c2", Name: "History", Credits: 3, TargetGrade: 85, CurrentGrade: planner.Float(88)},
	}
	doc.Assignments = []planner.Assignment{
		{ID: "a1", Title: "Problem set", CourseID: "c1", DueDate: "2024-05-02", Weight: 10, Status: planner.StatusPending},
		{ID: "a2", Title: "Essay", CourseID: "c2", DueDate: "2024-05-04", Weight: 20, Status: planner.StatusInProgress},
		{ID: "a3", Title: "Lab", CourseID: "c1", DueDate: "2024-05-03", Weight: 15, Status: planner.StatusCompleted, Grade: planner.Float(75)},
		{ID: "a4", Title: "Final project", CourseID: "c2", DueDate: "2024-05-20", Weight: 40, Status: planner.StatusPending},
		{ID: "a5", Title: "Old quiz", CourseID: "c1", DueDate: "2024-04-01", Weight: 5, Status: planner.StatusPending},
	}
	doc.StudySessions = []planner.StudySession{
		{ID: "s1", CourseID: "c1", Date: "2024-04-29", DurationHours: 3},
		{ID: "s2", CourseID: "c2", Date: "2024-04-30", DurationHours: 2},
	}
	doc.Goals = []planner.Goal{{ID: "g1", Description: "Read daily", Progress: 40}}
	return doc
}

func newTestApp(t *testing.T, seeded bool) (*App, *store.Store) {
	t.Helper()
	dir := t.TempDir()
	st := store.New(filepath.Join(dir, "planner_data.json"))
	if seeded {
		if err := st.Save(fixtureDocument()); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	lb, err := logbook.New(filepath.Join(dir, "logs", "activity.log"), "tui")
	if err != nil {
		t.Fatalf("logbook: %v", err)
	}
	n := 0
	app, err := NewApp(nil, st,
		WithClock(func() time.Time { return time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC) }),
		WithIDGenerator(func() string { n++; return fmt.Sprintf("id-%d", n) }),
		WithLogbook(lb),
	)
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	return app, st
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func special(k tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: k}
}

// press feeds messages through Update; an enterState value switches screens
// the way the main menu does.
func press(t *testing.T, app *App, msgs ...any) *App {
	t.Helper()
	for _, msg := range msgs {
		var model tea.Model
		if s, ok := msg.(enterState); ok {
			model, _ = app.enter(appState(s))
		} else {
			model, _ = app.Update(msg)
		}
		next, ok := model.(*App)
		if !ok {
			t.Fatalf("unexpected model type: %T", model)
		}
		app = next
	}
	return app
}

func submit(t *testing.T, app *App) *App {
	t.Helper()
	if app.form == nil {
		t.Fatalf("no form open")
	}
	app.form.setFocus(len(app.form.fields) - 1)
	return press(t, app, special(tea.KeyEnter))
}

func selectRecord(t *testing.T, app *App, id string) {
	t.Helper()
	for i, item := range app.records.Items() {
		if item.(recordItem).id == id {
			app.records.Select(i)
			return
		}
	}
	t.Fatalf("record %s not listed", id)
}

func mustLoad(t *testing.T, st store.DocumentStore) planner.Document {
	t.Helper()
	doc, err := st.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	return doc
}
