package web

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kingrea/academic-planner/internal/planner"
	"github.com/kingrea/academic-planner/internal/report"
)

func (s *Server) load(w http.ResponseWriter, r *http.Request) (planner.Document, bool) {
	doc, err := s.store.Load()
	if err != nil {
		s.fail(w, r, "load planner data", err)
		return planner.Document{}, false
	}
	return doc, true
}

func (s *Server) save(w http.ResponseWriter, r *http.Request, doc planner.Document) bool {
	err := s.store.Save(doc)
	s.metrics.recordSave(err)
	if err != nil {
		s.journal.Error("save failed: %v", err)
		s.fail(w, r, "save planner data", err)
		return false
	}
	return true
}

// commit saves doc, records message in the journal and redirects with a
// success flash.
func (s *Server) commit(w http.ResponseWriter, r *http.Request, doc planner.Document, target, message string) {
	if !s.save(w, r, doc) {
		return
	}
	s.journal.Info("%s", message)
	s.flash(w, r, flashSuccess, message)
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, action string, err error) {
	s.logger.Error("web: "+action, zap.String("path", r.URL.Path), zap.Error(err))
	s.render(w, r, http.StatusInternalServerError, "error", "Error", "", map[string]string{
		"Message": fmt.Sprintf("Could not %s: %v", action, err),
	})
}

// notFound flashes the miss and sends the browser back to the list page.
func (s *Server) notFound(w http.ResponseWriter, r *http.Request, err error, target string) {
	message := "Record not found."
	var nf *planner.NotFoundError
	if errors.As(err, &nf) {
		message = capitalize(nf.Kind) + " not found."
	}
	s.flash(w, r, flashError, message)
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (s *Server) parseForm(w http.ResponseWriter, r *http.Request) bool {
	r.Body = http.MaxBytesReader(w, r.Body, s.settings.MaxFormBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form submission", http.StatusBadRequest)
		return false
	}
	return true
}

func invalidMessage(err error) string {
	return "Invalid input: " + err.Error()
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":         "ok",
		"uptime_seconds": s.uptimeSeconds(),
	})
}

type dashboardView struct {
	report.Dashboard
	Deadlines []report.UpcomingAssignment
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.load(w, r)
	if !ok {
		return
	}
	dash := report.BuildDashboard(doc, s.clock)
	s.render(w, r, http.StatusOK, "dashboard", "Dashboard", "dashboard", dashboardView{
		Dashboard: dash,
		Deadlines: dash.NextDeadlines(s.settings.Deadlines),
	})
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.load(w, r)
	if !ok {
		return
	}
	s.render(w, r, http.StatusOK, "progress", "Progress", "progress", report.Progress(doc))
}

func (s *Server) handleProfileForm(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.load(w, r)
	if !ok {
		return
	}
	s.render(w, r, http.StatusOK, "profile", "Profile", "profile", formView{
		Action: "/profile",
		Submit: "Save profile",
		Values: url.Values{"student_name": {doc.StudentName}, "term": {doc.Term}},
	})
}

func (s *Server) handleProfileSave(w http.ResponseWriter, r *http.Request) {
	if !s.parseForm(w, r) {
		return
	}
	doc, ok := s.load(w, r)
	if !ok {
		return
	}
	doc.SetProfile(r.PostForm.Get("student_name"), r.PostForm.Get("term"))
	s.commit(w, r, doc, "/", "Profile updated successfully!")
}

// Courses.

func (s *Server) handleCourses(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.load(w, r)
	if !ok {
		return
	}
	s.render(w, r, http.StatusOK, "courses", "Courses", "courses", doc.Courses)
}

func (s *Server) courseForm(w http.ResponseWriter, r *http.Request, status int, form formView) {
	title := "Add course"
	if form.Submit == "Save course" {
		title = "Edit course"
	}
	s.render(w, r, status, "course_form", title, "courses", form)
}

func (s *Server) handleCourseAddForm(w http.ResponseWriter, r *http.Request) {
	s.courseForm(w, r, http.StatusOK, formView{
		Action: "/courses/add",
		Submit: "Add course",
		Values: url.Values{"credits": {"3"}, "target_grade": {"90"}},
	})
}

func (s *Server) handleCourseAdd(w http.ResponseWriter, r *http.Request) {
	if !s.parseForm(w, r) {
		return
	}
	form := formView{Action: "/courses/add", Submit: "Add course", Values: r.PostForm}
	in, err := courseInputFromForm(r.PostForm)
	if err != nil {
		form.Error = invalidMessage(err)
		s.courseForm(w, r, http.StatusUnprocessableEntity, form)
		return
	}
	doc, ok := s.load(w, r)
	if !ok {
		return
	}
	course := planner.NewCourse(s.newID(), in)
	if err := doc.AddCourse(course); err != nil {
		form.Error = invalidMessage(err)
		s.courseForm(w, r, http.StatusUnprocessableEntity, form)
		return
	}
	s.commit(w, r, doc, "/courses", fmt.Sprintf("Course %q added successfully!", course.Name))
}

func (s *Server) handleCourseEditForm(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	doc, ok := s.load(w, r)
	if !ok {
		return
	}
	course, found := doc.Course(id)
	if !found {
		s.flash(w, r, flashError, "Course not found.")
		http.Redirect(w, r, "/courses", http.StatusSeeOther)
		return
	}
	s.courseForm(w, r, http.StatusOK, formView{
		Action: "/courses/" + url.PathEscape(id) + "/edit",
		Submit: "Save course",
		Values: courseValues(course),
	})
}

func (s *Server) handleCourseEdit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.parseForm(w, r) {
		return
	}
	form := formView{Action: "/courses/" + url.PathEscape(id) + "/edit", Submit: "Save course", Values: r.PostForm}
	in, err := courseInputFromForm(r.PostForm)
	if err != nil {
		form.Error = invalidMessage(err)
		s.courseForm(w, r, http.StatusUnprocessableEntity, form)
		return
	}
	doc, ok := s.load(w, r)
	if !ok {
		return
	}
	course, err := doc.UpdateCourse(id, in)
	switch {
	case errors.Is(err, planner.ErrNotFound):
		s.notFound(w, r, err, "/courses")
		return
	case err != nil:
		form.Error = invalidMessage(err)
		s.courseForm(w, r, http.StatusUnprocessableEntity, form)
		return
	}
	s.commit(w, r, doc, "/courses", fmt.Sprintf("Course %q updated successfully!", course.Name))
}

func (s *Server) handleCourseDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	doc, ok := s.load(w, r)
	if !ok {
		return
	}
	removal, err := doc.DeleteCourse(id)
	if err != nil {
		s.notFound(w, r, err, "/courses")
		return
	}
	s.commit(w, r, doc, "/courses", fmt.Sprintf("Course %q deleted along with %d assignments and %d study sessions.",
		removal.Course.Name, removal.RemovedAssignments, removal.RemovedSessions))
}

// Assignments.

func (s *Server) handleAssignments(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.load(w, r)
	if !ok {
		return
	}
	s.render(w, r, http.StatusOK, "assignments", "Assignments", "assignments", report.AssignmentsByDueDate(doc))
}

func (s *Server) assignmentForm(w http.ResponseWriter, r *http.Request, status int, form formView) {
	title := "Add assignment"
	if form.Submit == "Save assignment" {
		title = "Edit assignment"
	}
	if form.Courses == nil {
		if doc, err := s.store.Load(); err == nil {
			form.Courses = doc.Courses
		}
	}
	form.Statuses = planner.Statuses
	s.render(w, r, status, "assignment_form", title, "assignments", form)
}

func (s *Server) handleAssignmentAddForm(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.load(w, r)
	if !ok {
		return
	}
	if len(doc.Courses) == 0 {
		s.flash(w, r, flashError, "Add a course before adding assignments.")
		http.Redirect(w, r, "/courses/add", http.StatusSeeOther)
		return
	}
	s.assignmentForm(w, r, http.StatusOK, formView{
		Action:  "/assignments/add",
		Submit:  "Add assignment",
		Values:  url.Values{"weight": {"0"}, "status": {planner.StatusPending}},
		Courses: doc.Courses,
	})
}

func (s *Server) handleAssignmentAdd(w http.ResponseWriter, r *http.Request) {
	if !s.parseForm(w, r) {
		return
	}
	form := formView{Action: "/assignments/add", Submit: "Add assignment", Values: r.PostForm}
	in, err := assignmentInputFromForm(r.PostForm)
	if err != nil {
		form.Error = invalidMessage(err)
		s.assignmentForm(w, r, http.StatusUnprocessableEntity, form)
		return
	}
	doc, ok := s.load(w, r)
	if !ok {
		return
	}
	assignment := planner.NewAssignment(s.newID(), in)
	if err := doc.AddAssignment(assignment); err != nil {
		form.Error = invalidMessage(err)
		form.Courses = doc.Courses
		s.assignmentForm(w, r, http.StatusUnprocessableEntity, form)
		return
	}
	s.commit(w, r, doc, "/assignments", fmt.Sprintf("Assignment %q added successfully!", assignment.Title))
}

func (s *Server) handleAssignmentEditForm(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	doc, ok := s.load(w, r)
	if !ok {
		return
	}
	assignment, found := doc.Assignment(id)
	if !found {
		s.flash(w, r, flashError, "Assignment not found.")
		http.Redirect(w, r, "/assignments", http.StatusSeeOther)
		return
	}
	s.assignmentForm(w, r, http.StatusOK, formView{
		Action:  "/assignments/" + url.PathEscape(id) + "/edit",
		Submit:  "Save assignment",
		Values:  assignmentValues(assignment),
		Courses: doc.Courses,
	})
}

func (s *Server) handleAssignmentEdit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.parseForm(w, r) {
		return
	}
	form := formView{Action: "/assignments/" + url.PathEscape(id) + "/edit", Submit: "Save assignment", Values: r.PostForm}
	in, err := assignmentInputFromForm(r.PostForm)
	if err != nil {
		form.Error = invalidMessage(err)
		s.assignmentForm(w, r, http.StatusUnprocessableEntity, form)
		return
	}
	doc, ok := s.load(w, r)
	if !ok {
		return
	}
	assignment, err := doc.UpdateAssignment(id, in)
	switch {
	case errors.Is(err, planner.ErrNotFound):
		s.notFound(w, r, err, "/assignments")
		return
	case err != nil:
		form.Error = invalidMessage(err)
		form.Courses = doc.Courses
		s.assignmentForm(w, r, http.StatusUnprocessableEntity, form)
		return
	}
	s.commit(w, r, doc, "/assignments", fmt.Sprintf("Assignment %q updated successfully!", assignment.Title))
}

func (s *Server) handleAssignmentDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	doc, ok := s.load(w, r)
	if !ok {
		return
	}
	assignment, err := doc.DeleteAssignment(id)
	if err != nil {
		s.notFound(w, r, err, "/assignments")
		return
	}
	s.commit(w, r, doc, "/assignments", fmt.Sprintf("Assignment %q deleted.", assignment.Title))
}

// Study sessions.

func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.load(w, r)
	if !ok {
		return
	}
	s.render(w, r, http.StatusOK, "sessions", "Study sessions", "sessions", report.SessionsNewestFirst(doc))
}

func (s *Server) sessionForm(w http.ResponseWriter, r *http.Request, status int, form formView) {
	if form.Courses == nil {
		if doc, err := s.store.Load(); err == nil {
			form.Courses = doc.Courses
		}
	}
	s.render(w, r, status, "session_form", "Log study session", "sessions", form)
}

func (s *Server) handleSessionAddForm(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.load(w, r)
	if !ok {
		return
	}
	if len(doc.Courses) == 0 {
		s.flash(w, r, flashError, "Add a course before logging study sessions.")
		http.Redirect(w, r, "/courses/add", http.StatusSeeOther)
		return
	}
	today := report.Today(s.clock()).Format(planner.DateLayout)
	s.sessionForm(w, r, http.StatusOK, formView{
		Action:  "/study-sessions/add",
		Submit:  "Log session",
		Values:  url.Values{"date": {today}, "duration_hours": {"1"}},
		Courses: doc.Courses,
	})
}

func (s *Server) handleSessionAdd(w http.ResponseWriter, r *http.Request) {
	if !s.parseForm(w, r) {
		return
	}
	form := formView{Action: "/study-sessions/add", Submit: "Log session", Values: r.PostForm}
	in, err := sessionInputFromForm(r.PostForm)
	if err != nil {
		form.Error = invalidMessage(err)
		s.sessionForm(w, r, http.StatusUnprocessableEntity, form)
		return
	}
	doc, ok := s.load(w, r)
	if !ok {
		return
	}
	session := planner.NewStudySession(s.newID(), in)
	if err := doc.AddStudySession(session); err != nil {
		form.Error = invalidMessage(err)
		form.Courses = doc.Courses
		s.sessionForm(w, r, http.StatusUnprocessableEntity, form)
		return
	}
	s.commit(w, r, doc, "/study-sessions", fmt.Sprintf("Logged %s hours for %s.",
		formatNumber(session.DurationHours), doc.CourseName(session.CourseID)))
}

func (s *Server) handleSessionDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	doc, ok := s.load(w, r)
	if !ok {
		return
	}
	session, err := doc.DeleteStudySession(id)
	if err != nil {
		s.notFound(w, r, err, "/study-sessions")
		return
	}
	s.commit(w, r, doc, "/study-sessions", fmt.Sprintf("Study session on %s deleted.", session.Date))
}

// Goals.

func (s *Server) handleGoals(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.load(w, r)
	if !ok {
		return
	}
	s.render(w, r, http.StatusOK, "goals", "Goals", "goals", doc.Goals)
}

func (s *Server) goalForm(w http.ResponseWriter, r *http.Request, status int, form formView) {
	title := "Add goal"
	if form.Submit == "Save goal" {
		title = "Edit goal"
	}
	s.render(w, r, status, "goal_form", title, "goals", form)
}

func (s *Server) handleGoalAddForm(w http.ResponseWriter, r *http.Request) {
	s.goalForm(w, r, http.StatusOK, formView{
		Action: "/goals/add",
		Submit: "Add goal",
		Values: url.Values{"progress": {"0"}},
	})
}

func (s *Server) handleGoalAdd(w http.ResponseWriter, r *http.Request) {
	if !s.parseForm(w, r) {
		return
	}
	form := formView{Action: "/goals/add", Submit: "Add goal", Values: r.PostForm}
	in, err := goalInputFromForm(r.PostForm)
	if err != nil {
		form.Error = invalidMessage(err)
		s.goalForm(w, r, http.StatusUnprocessableEntity, form)
		return
	}
	doc, ok := s.load(w, r)
	if !ok {
		return
	}
	goal := planner.NewGoal(s.newID(), in)
	if err := doc.AddGoal(goal); err != nil {
		form.Error = invalidMessage(err)
		s.goalForm(w, r, http.StatusUnprocessableEntity, form)
		return
	}
	s.commit(w, r, doc, "/goals", fmt.Sprintf("Goal %q added successfully!", goal.Description))
}

func (s *Server) handleGoalEditForm(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	doc, ok := s.load(w, r)
	if !ok {
		return
	}
	goal, found := doc.Goal(id)
	if !found {
		s.flash(w, r, flashError, "Goal not found.")
		http.Redirect(w, r, "/goals", http.StatusSeeOther)
		return
	}
	s.goalForm(w, r, http.StatusOK, formView{
		Action: "/goals/" + url.PathEscape(id) + "/edit",
		Submit: "Save goal",
		Values: goalValues(goal),
	})
}

func (s *Server) handleGoalEdit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.parseForm(w, r) {
		return
	}
	form := formView{Action: "/goals/" + url.PathEscape(id) + "/edit", Submit: "Save goal", Values: r.PostForm}
	in, err := goalInputFromForm(r.PostForm)
	if err != nil {
		form.Error = invalidMessage(err)
		s.goalForm(w, r, http.StatusUnprocessableEntity, form)
		return
	}
	doc, ok := s.load(w, r)
	if !ok {
		return
	}
	goal, err := doc.UpdateGoal(id, in)
	switch {
	case errors.Is(err, planner.ErrNotFound):
		s.notFound(w, r, err, "/goals")
		return
	case err != nil:
		form.Error = invalidMessage(err)
		s.goalForm(w, r, http.StatusUnprocessableEntity, form)
		return
	}
	s.commit(w, r, doc, "/goals", fmt.Sprintf("Goal %q updated successfully!", goal.Description))
}

func (s *Server) handleGoalDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	doc, ok := s.load(w, r)
	if !ok {
		return
	}
	goal, err := doc.DeleteGoal(id)
	if err != nil {
		s.notFound(w, r, err, "/goals")
		return
	}
	s.commit(w, r, doc, "/goals", fmt.Sprintf("Goal %q deleted.", goal.Description))
}
