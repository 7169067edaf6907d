package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/academic-planner/internal/planner"
	"github.com/kingrea/academic-planner/internal/report"
)

var (
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
)

// refreshRecords rebuilds the management list for the current screen,
// keeping the cursor in range.
func (a *App) refreshRecords() {
	var (
		title string
		items []list.Item
	)
	switch a.state {
	case stateCourses:
		title = "Courses"
		items = courseItems(a.doc)
	case stateAssignments:
		title = "Assignments"
		items = assignmentItems(a.doc)
	case stateGoals:
		title = "Goals"
		items = goalItems(a.doc)
	default:
		return
	}
	idx := a.records.Index()
	a.records.Title = title
	a.records.SetItems(items)
	if idx >= len(items) {
		idx = len(items) - 1
	}
	if idx < 0 {
		idx = 0
	}
	a.records.Select(idx)
}

func courseItems(doc planner.Document) []list.Item {
	items := make([]list.Item, 0, len(doc.Courses))
	for _, c := range doc.Courses {
		items = append(items, recordItem{
			id:    c.ID,
			title: c.Name,
			desc: fmt.Sprintf("%s credits · target %s · current %s",
				formatNumber(c.Credits), formatNumber(c.TargetGrade), formatGrade(c.CurrentGrade)),
		})
	}
	return items
}

func assignmentItems(doc planner.Document) []list.Item {
	sorted := report.AssignmentsByDueDate(doc)
	items := make([]list.Item, 0, len(sorted))
	for _, a := range sorted {
		items = append(items, recordItem{
			id:    a.ID,
			title: fmt.Sprintf("%s (%s)", a.Title, a.CourseName),
			desc: fmt.Sprintf("due %s · %s · weight %s%% · grade %s",
				a.DueDate, a.Status, formatNumber(a.Weight), formatGrade(a.Grade)),
		})
	}
	return items
}

func goalItems(doc planner.Document) []list.Item {
	items := make([]list.Item, 0, len(doc.Goals))
	for _, g := range doc.Goals {
		desc := fmt.Sprintf("%s%% complete", formatNumber(g.Progress))
		if g.TargetDate != nil {
			desc += " · target " + *g.TargetDate
		}
		items = append(items, recordItem{id: g.ID, title: g.Description, desc: desc})
	}
	return items
}

func (a *App) renderRecords() string {
	var hint, empty string
	switch a.state {
	case stateCourses:
		hint = "a add · g set grade · d remove · esc back"
		empty = "No courses yet. Press a to add one."
	case stateAssignments:
		hint = "a add · s set status/grade · d remove · esc back"
		empty = "No assignments yet. Press a to add one."
	case stateGoals:
		hint = "a add · p set progress · d remove · esc back"
		empty = "No goals yet. Press a to add one."
	}
	body := a.records.View()
	if len(a.records.Items()) == 0 {
		body = sectionStyle.Render(a.records.Title) + "\n\n" + mutedStyle.Render(empty)
	}
	return lipgloss.JoinVertical(lipgloss.Left, body, "", mutedStyle.Render(hint))
}

// handleRecordKey runs the per-screen shortcuts of the management lists.
func (a *App) handleRecordKey(key string) (tea.Model, tea.Cmd, bool) {
	if key == "a" {
		switch a.state {
		case stateCourses:
			model, cmd := a.openForm(a.courseForm())
			return model, cmd, true
		case stateAssignments:
			if len(a.doc.Courses) == 0 {
				a.setError(fmt.Errorf("add a course before adding assignments"))
				return a, nil, true
			}
			model, cmd := a.openForm(a.assignmentForm())
			return model, cmd, true
		case stateGoals:
			model, cmd := a.openForm(a.goalForm())
			return model, cmd, true
		}
	}

	item, ok := a.selectedRecord()
	switch {
	case key == "d" && ok:
		a.confirm = a.deleteAction(item)
		return a, nil, a.confirm != nil
	case key == "g" && ok && a.state == stateCourses:
		model, cmd := a.openForm(a.courseGradeForm(item.id))
		return model, cmd, true
	case key == "s" && ok && a.state == stateAssignments:
		model, cmd := a.openForm(a.assignmentStatusForm(item.id))
		return model, cmd, true
	case key == "p" && ok && a.state == stateGoals:
		model, cmd := a.openForm(a.goalProgressForm(item.id))
		return model, cmd, true
	}
	return a, nil, false
}

func (a *App) deleteAction(item recordItem) *pendingAction {
	id := item.id
	switch a.state {
	case stateCourses:
		return &pendingAction{
			prompt: fmt.Sprintf("Remove course %q with its assignments and study sessions? (y/n)", item.title),
			run: func(doc *planner.Document) (string, error) {
				removal, err := doc.DeleteCourse(id)
				if err != nil {
					return "", err
				}
				return fmt.Sprintf("Removed course %q, %d assignments and %d study sessions.",
					removal.Course.Name, removal.RemovedAssignments, removal.RemovedSessions), nil
			},
		}
	case stateAssignments:
		return &pendingAction{
			prompt: fmt.Sprintf("Remove assignment %q? (y/n)", item.title),
			run: func(doc *planner.Document) (string, error) {
				removed, err := doc.DeleteAssignment(id)
				if err != nil {
					return "", err
				}
				return fmt.Sprintf("Removed assignment %q.", removed.Title), nil
			},
		}
	case stateGoals:
		return &pendingAction{
			prompt: fmt.Sprintf("Remove goal %q? (y/n)", item.title),
			run: func(doc *planner.Document) (string, error) {
				removed, err := doc.DeleteGoal(id)
				if err != nil {
					return "", err
				}
				return fmt.Sprintf("Removed goal %q.", removed.Description), nil
			},
		}
	}
	return nil
}

// Forms.

func (a *App) profileForm() *formModel {
	return newForm("Edit student profile", stateMainMenu,
		func(doc *planner.Document, v map[string]string) (string, error) {
			doc.SetProfile(v["student_name"], v["term"])
			return "Profile updated.", nil
		},
		newField("student_name", "Student name", a.doc.StudentName, "Ada Lovelace"),
		newField("term", "Term", a.doc.Term, "Spring 2025"),
	)
}

func (a *App) courseForm() *formModel {
	newID := a.newID
	return newForm("Add course", stateCourses,
		func(doc *planner.Document, v map[string]string) (string, error) {
			credits, err := planner.ParseFloat("credits", v["credits"])
			if err != nil {
				return "", err
			}
			target, err := planner.ParseFloat("target_grade", v["target_grade"])
			if err != nil {
				return "", err
			}
			current, err := planner.ParseOptionalFloat("current_grade", v["current_grade"])
			if err != nil {
				return "", err
			}
			course := planner.NewCourse(newID(), planner.CourseInput{
				Name: v["name"], Credits: credits, TargetGrade: target, CurrentGrade: current,
			})
			if err := doc.AddCourse(course); err != nil {
				return "", err
			}
			return fmt.Sprintf("Added course %q.", course.Name), nil
		},
		newField("name", "Name", "", "Calculus I"),
		newField("credits", "Credits", "3", ""),
		newField("target_grade", "Target grade", "90", ""),
		newField("current_grade", "Current grade", "", "blank if none yet"),
	)
}

func (a *App) courseGradeForm(id string) *formModel {
	current := ""
	if c, ok := a.doc.Course(id); ok {
		current = optionalNumber(c.CurrentGrade)
	}
	return newForm("Update course grade", stateCourses,
		func(doc *planner.Document, v map[string]string) (string, error) {
			grade, err := planner.ParseFloat("current_grade", v["current_grade"])
			if err != nil {
				return "", err
			}
			course, err := doc.SetCourseGrade(id, grade)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("Set %s grade to %s.", course.Name, formatNumber(grade)), nil
		},
		newField("current_grade", "Current grade", current, "0-100"),
	)
}

func (a *App) assignmentForm() *formModel {
	newID := a.newID
	f := newForm("Add assignment", stateAssignments,
		func(doc *planner.Document, v map[string]string) (string, error) {
			courseID, err := resolveCourse(*doc, v["course"])
			if err != nil {
				return "", err
			}
			due, err := planner.ParseDate("due_date", v["due_date"])
			if err != nil {
				return "", err
			}
			weight, err := planner.ParseFloat("weight", v["weight"])
			if err != nil {
				return "", err
			}
			assignment := planner.NewAssignment(newID(), planner.AssignmentInput{
				Title: v["title"], CourseID: courseID, DueDate: due, Weight: weight, Status: planner.StatusPending,
			})
			if err := doc.AddAssignment(assignment); err != nil {
				return "", err
			}
			return fmt.Sprintf("Added assignment %q for %s.", assignment.Title, doc.CourseName(courseID)), nil
		},
		newField("title", "Title", "", "Problem set 3"),
		newField("course", "Course", "", "number, id or name"),
		newField("due_date", "Due date", "", planner.DateLayout),
		newField("weight", "Weight (%)", "0", ""),
	)
	f.hint = courseHint(a.doc)
	return f
}

func (a *App) assignmentStatusForm(id string) *formModel {
	status, grade := planner.StatusPending, ""
	if as, ok := a.doc.Assignment(id); ok {
		status = as.Status
		grade = optionalNumber(as.Grade)
	}
	f := newForm("Update assignment status", stateAssignments,
		func(doc *planner.Document, v map[string]string) (string, error) {
			grade, err := planner.ParseOptionalFloat("grade", v["grade"])
			if err != nil {
				return "", err
			}
			updated, err := doc.SetAssignmentStatus(id, v["status"], grade)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("Marked %q as %s.", updated.Title, updated.Status), nil
		},
		newField("status", "Status", status, strings.Join(planner.Statuses, " / ")),
		newField("grade", "Grade", grade, "blank keeps the current grade"),
	)
	f.hint = "Statuses: " + strings.Join(planner.Statuses, ", ")
	return f
}

func (a *App) sessionForm(back appState) *formModel {
	newID := a.newID
	today := report.Today(a.clock()).Format(planner.DateLayout)
	f := newForm("Log study session", back,
		func(doc *planner.Document, v map[string]string) (string, error) {
			courseID, err := resolveCourse(*doc, v["course"])
			if err != nil {
				return "", err
			}
			date, err := planner.ParseDate("date", v["date"])
			if err != nil {
				return "", err
			}
			hours, err := planner.ParseFloat("duration_hours", v["duration_hours"])
			if err != nil {
				return "", err
			}
			session := planner.NewStudySession(newID(), planner.StudySessionInput{
				CourseID: courseID, Date: date, DurationHours: hours, Notes: v["notes"],
			})
			if err := doc.AddStudySession(session); err != nil {
				return "", err
			}
			return fmt.Sprintf("Logged %s hours for %s.", formatNumber(hours), doc.CourseName(courseID)), nil
		},
		newField("course", "Course", "", "number, id or name"),
		newField("date", "Date", today, planner.DateLayout),
		newField("duration_hours", "Hours", "1", ""),
		newField("notes", "Notes", "", "optional"),
	)
	f.hint = courseHint(a.doc)
	return f
}

func (a *App) goalForm() *formModel {
	newID := a.newID
	return newForm("Add goal", stateGoals,
		func(doc *planner.Document, v map[string]string) (string, error) {
			progress, err := planner.ParseFloat("progress", v["progress"])
			if err != nil {
				return "", err
			}
			target, err := planner.ParseOptionalDate("target_date", v["target_date"])
			if err != nil {
				return "", err
			}
			goal := planner.NewGoal(newID(), planner.GoalInput{
				Description: v["description"], Progress: progress, TargetDate: target,
			})
			if err := doc.AddGoal(goal); err != nil {
				return "", err
			}
			return fmt.Sprintf("Added goal %q.", goal.Description), nil
		},
		newField("description", "Description", "", "Read one paper a week"),
		newField("target_date", "Target date", "", "optional, "+planner.DateLayout),
		newField("progress", "Progress (%)", "0", ""),
	)
}

func (a *App) goalProgressForm(id string) *formModel {
	current := "0"
	if g, ok := a.doc.Goal(id); ok {
		current = formatNumber(g.Progress)
	}
	return newForm("Update goal progress", stateGoals,
		func(doc *planner.Document, v map[string]string) (string, error) {
			progress, err := planner.ParseFloat("progress", v["progress"])
			if err != nil {
				return "", err
			}
			goal, err := doc.SetGoalProgress(id, progress)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("Goal %q is now %s%% complete.", goal.Description, formatNumber(goal.Progress)), nil
		},
		newField("progress", "Progress (%)", current, "0-100"),
	)
}

// resolveCourse accepts a 1-based position in the course list, a course id
// or a case-insensitive course name.
func resolveCourse(doc planner.Document, raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", &planner.ValidationError{Field: "course", Reason: "is required"}
	}
	if n, err := strconv.Atoi(raw); err == nil && n >= 1 && n <= len(doc.Courses) {
		return doc.Courses[n-1].ID, nil
	}
	if _, ok := doc.Course(raw); ok {
		return raw, nil
	}
	for _, c := range doc.Courses {
		if strings.EqualFold(c.Name, raw) {
			return c.ID, nil
		}
	}
	return "", &planner.ValidationError{Field: "course", Reason: "does not match an existing course"}
}

func courseHint(doc planner.Document) string {
	parts := make([]string, 0, len(doc.Courses))
	for i, c := range doc.Courses {
		parts = append(parts, fmt.Sprintf("%d. %s", i+1, c.Name))
	}
	return "Courses: " + strings.Join(parts, "  ")
}

// Read-only screens.

func (a *App) renderDashboard() string {
	dash := report.BuildDashboard(a.doc, a.clock)
	name := dash.StudentName
	if name == "" {
		name = "Student"
	}
	term := dash.Term
	if term == "" {
		term = "Term not set"
	}
	lines := []string{
		sectionStyle.Render("Dashboard"),
		fmt.Sprintf("%s · %s", name, term),
		"",
		fmt.Sprintf("Courses:               %d", dash.TotalCourses),
		fmt.Sprintf("Estimated GPA:         %.2f", dash.GPA),
		fmt.Sprintf("Assignments completed: %d", dash.CompletedAssignments),
		fmt.Sprintf("Assignments open:      %d", dash.PendingAssignments),
		fmt.Sprintf("Study hours (7 days):  %.1f", dash.StudyHoursLastWeek),
		fmt.Sprintf("Average goal progress: %.1f%%", dash.GoalProgressAverage),
		"",
		sectionStyle.Render("Next deadlines"),
	}
	upcoming := dash.NextDeadlines(a.deadlines)
	if len(upcoming) == 0 {
		lines = append(lines, mutedStyle.Render("Nothing due."))
	}
	for _, u := range upcoming {
		lines = append(lines, fmt.Sprintf("%s  %s (%s) · %s", u.DueDate, u.Title, u.CourseName, u.Status))
	}
	return strings.Join(lines, "\n")
}

func (a *App) renderProgress() string {
	rep := report.Progress(a.doc)
	lines := []string{sectionStyle.Render("Progress report"), ""}
	if len(rep.Courses) == 0 {
		lines = append(lines, mutedStyle.Render("No courses yet."))
	}
	for _, cp := range rep.Courses {
		lines = append(lines,
			lipgloss.NewStyle().Bold(true).Render(cp.Course.Name),
			fmt.Sprintf("  Current grade: %s (target %s)", formatGrade(cp.Course.CurrentGrade), formatNumber(cp.Course.TargetGrade)),
			fmt.Sprintf("  Assignments completed: %d/%d", cp.Completed, cp.Total),
			fmt.Sprintf("  Average assignment grade: %s", formatGrade(cp.AverageGrade)),
			fmt.Sprintf("  Study hours: %.1f", cp.StudyHours),
		)
	}
	lines = append(lines, "", fmt.Sprintf("Total study hours: %.1f", rep.TotalStudyHours))
	if len(rep.Goals) > 0 {
		lines = append(lines, "", sectionStyle.Render("Goals"))
		for _, g := range rep.Goals {
			lines = append(lines, fmt.Sprintf("  %s: %s%%", g.Description, formatNumber(g.Progress)))
		}
	}
	return strings.Join(lines, "\n")
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatGrade(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return strconv.FormatFloat(*v, 'f', 1, 64)
}

func optionalNumber(v *float64) string {
	if v == nil {
		return ""
	}
	return formatNumber(*v)
}
