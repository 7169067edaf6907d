package planner

import "strings"

// CourseRemoval reports what a cascading course delete removed.
type CourseRemoval struct {
	Course             Course
	RemovedAssignments int
	RemovedSessions    int
}

// SetProfile replaces the student name and term.
func (d *Document) SetProfile(name, term string) {
	d.StudentName = strings.TrimSpace(name)
	d.Term = strings.TrimSpace(term)
}

// NewCourse builds a course from validated input and a caller-generated id.
func NewCourse(id string, in CourseInput) Course {
	return Course{
		ID:           id,
		Name:         strings.TrimSpace(in.Name),
		Credits:      in.Credits,
		TargetGrade:  in.TargetGrade,
		CurrentGrade: cloneFloat(in.CurrentGrade),
	}
}

// Course looks up a course by id.
func (d *Document) Course(id string) (Course, bool) {
	idx := d.courseIndex(id)
	if idx < 0 {
		return Course{}, false
	}
	return d.Courses[idx], true
}

// CourseName resolves a course id to its name, or UnknownCourse.
func (d *Document) CourseName(id string) string {
	if c, ok := d.Course(id); ok {
		return c.Name
	}
	return UnknownCourse
}

// AddCourse appends a course after validating it.
func (d *Document) AddCourse(c Course) error {
	c.Name = strings.TrimSpace(c.Name)
	if err := requireID(c.ID); err != nil {
		return err
	}
	if d.courseIndex(c.ID) >= 0 {
		return invalid("id", "duplicates an existing course")
	}
	if err := Validate(CourseInput{Name: c.Name, Credits: c.Credits, TargetGrade: c.TargetGrade, CurrentGrade: c.CurrentGrade}); err != nil {
		return err
	}
	d.Courses = append(d.Courses, c)
	return nil
}

// UpdateCourse replaces every editable field of a course.
func (d *Document) UpdateCourse(id string, in CourseInput) (Course, error) {
	idx := d.courseIndex(id)
	if idx < 0 {
		return Course{}, notFound("course", id)
	}
	in.Name = strings.TrimSpace(in.Name)
	if err := Validate(in); err != nil {
		return Course{}, err
	}
	updated := NewCourse(id, in)
	d.Courses[idx] = updated
	return updated, nil
}

// SetCourseGrade records the current grade of a course.
func (d *Document) SetCourseGrade(id string, grade float64) (Course, error) {
	idx := d.courseIndex(id)
	if idx < 0 {
		return Course{}, notFound("course", id)
	}
	if !isFinite(grade) || grade < 0 || grade > 100 {
		return Course{}, invalid("current_grade", "must be between 0 and 100")
	}
	d.Courses[idx].CurrentGrade = Float(grade)
	return d.Courses[idx], nil
}

// DeleteCourse removes a course together with every assignment and study
// session that references it.
func (d *Document) DeleteCourse(id string) (CourseRemoval, error) {
	idx := d.courseIndex(id)
	if idx < 0 {
		return CourseRemoval{}, notFound("course", id)
	}
	removal := CourseRemoval{Course: d.Courses[idx]}

	assignments := make([]Assignment, 0, len(d.Assignments))
	for _, a := range d.Assignments {
		if a.CourseID == id {
			removal.RemovedAssignments++
			continue
		}
		assignments = append(assignments, a)
	}
	sessions := make([]StudySession, 0, len(d.StudySessions))
	for _, s := range d.StudySessions {
		if s.CourseID == id {
			removal.RemovedSessions++
			continue
		}
		sessions = append(sessions, s)
	}
	d.Assignments = assignments
	d.StudySessions = sessions
	d.Courses = append(d.Courses[:idx:idx], d.Courses[idx+1:]...)
	return removal, nil
}

// NewAssignment builds an assignment from validated input.
func NewAssignment(id string, in AssignmentInput) Assignment {
	return Assignment{
		ID:       id,
		Title:    strings.TrimSpace(in.Title),
		CourseID: in.CourseID,
		DueDate:  strings.TrimSpace(in.DueDate),
		Weight:   in.Weight,
		Status:   NormalizeStatus(in.Status),
		Grade:    cloneFloat(in.Grade),
	}
}

// Assignment looks up an assignment by id.
func (d *Document) Assignment(id string) (Assignment, bool) {
	idx := d.assignmentIndex(id)
	if idx < 0 {
		return Assignment{}, false
	}
	return d.Assignments[idx], true
}

// AddAssignment appends an assignment. Its course must exist now; later
// course removal cascades, other dangling references are tolerated.
func (d *Document) AddAssignment(a Assignment) error {
	if err := requireID(a.ID); err != nil {
		return err
	}
	if d.assignmentIndex(a.ID) >= 0 {
		return invalid("id", "duplicates an existing assignment")
	}
	a.Status = NormalizeStatus(a.Status)
	if err := Validate(a.input()); err != nil {
		return err
	}
	if d.courseIndex(a.CourseID) < 0 {
		return invalid("course_id", "does not match an existing course")
	}
	d.Assignments = append(d.Assignments, a)
	return nil
}

// UpdateAssignment replaces every editable field of an assignment.
func (d *Document) UpdateAssignment(id string, in AssignmentInput) (Assignment, error) {
	idx := d.assignmentIndex(id)
	if idx < 0 {
		return Assignment{}, notFound("assignment", id)
	}
	in.Status = NormalizeStatus(in.Status)
	if err := Validate(in); err != nil {
		return Assignment{}, err
	}
	if in.CourseID != d.Assignments[idx].CourseID && d.courseIndex(in.CourseID) < 0 {
		return Assignment{}, invalid("course_id", "does not match an existing course")
	}
	updated := NewAssignment(id, in)
	d.Assignments[idx] = updated
	return updated, nil
}

// SetAssignmentStatus updates the status and, when grade is non-nil, the grade.
func (d *Document) SetAssignmentStatus(id, status string, grade *float64) (Assignment, error) {
	idx := d.assignmentIndex(id)
	if idx < 0 {
		return Assignment{}, notFound("assignment", id)
	}
	in := d.Assignments[idx].input()
	in.Status = NormalizeStatus(status)
	if grade != nil {
		if !isFinite(*grade) {
			return Assignment{}, invalid("grade", "must be a number")
		}
		in.Grade = grade
	}
	if !knownStatus(in.Status) {
		return Assignment{}, invalid("status", "must be one of: %s", strings.Join(Statuses, " "))
	}
	d.Assignments[idx].Status = in.Status
	d.Assignments[idx].Grade = cloneFloat(in.Grade)
	return d.Assignments[idx], nil
}

// DeleteAssignment removes a single assignment.
func (d *Document) DeleteAssignment(id string) (Assignment, error) {
	idx := d.assignmentIndex(id)
	if idx < 0 {
		return Assignment{}, notFound("assignment", id)
	}
	removed := d.Assignments[idx]
	d.Assignments = append(d.Assignments[:idx:idx], d.Assignments[idx+1:]...)
	return removed, nil
}

// NewStudySession builds a session from validated input.
func NewStudySession(id string, in StudySessionInput) StudySession {
	return StudySession{
		ID:            id,
		CourseID:      in.CourseID,
		Date:          strings.TrimSpace(in.Date),
		DurationHours: in.DurationHours,
		Notes:         strings.TrimSpace(in.Notes),
	}
}

// AddStudySession appends a session for an existing course.
func (d *Document) AddStudySession(s StudySession) error {
	if err := requireID(s.ID); err != nil {
		return err
	}
	if d.sessionIndex(s.ID) >= 0 {
		return invalid("id", "duplicates an existing study session")
	}
	if err := Validate(StudySessionInput{CourseID: s.CourseID, Date: s.Date, DurationHours: s.DurationHours, Notes: s.Notes}); err != nil {
		return err
	}
	if d.courseIndex(s.CourseID) < 0 {
		return invalid("course_id", "does not match an existing course")
	}
	d.StudySessions = append(d.StudySessions, s)
	return nil
}

// DeleteStudySession removes a single session.
func (d *Document) DeleteStudySession(id string) (StudySession, error) {
	idx := d.sessionIndex(id)
	if idx < 0 {
		return StudySession{}, notFound("study session", id)
	}
	removed := d.StudySessions[idx]
	d.StudySessions = append(d.StudySessions[:idx:idx], d.StudySessions[idx+1:]...)
	return removed, nil
}

// NewGoal builds a goal from validated input.
func NewGoal(id string, in GoalInput) Goal {
	g := Goal{
		ID:          id,
		Description: strings.TrimSpace(in.Description),
		Progress:    in.Progress,
	}
	if in.TargetDate != nil && strings.TrimSpace(*in.TargetDate) != "" {
		v := strings.TrimSpace(*in.TargetDate)
		g.TargetDate = &v
	}
	return g
}

// Goal looks up a goal by id.
func (d *Document) Goal(id string) (Goal, bool) {
	idx := d.goalIndex(id)
	if idx < 0 {
		return Goal{}, false
	}
	return d.Goals[idx], true
}

// AddGoal appends a goal.
func (d *Document) AddGoal(g Goal) error {
	if err := requireID(g.ID); err != nil {
		return err
	}
	if d.goalIndex(g.ID) >= 0 {
		return invalid("id", "duplicates an existing goal")
	}
	g.Description = strings.TrimSpace(g.Description)
	g.TargetDate = trimDate(g.TargetDate)
	if err := Validate(GoalInput{Description: g.Description, Progress: g.Progress, TargetDate: g.TargetDate}); err != nil {
		return err
	}
	d.Goals = append(d.Goals, g)
	return nil
}

// UpdateGoal replaces every editable field of a goal.
func (d *Document) UpdateGoal(id string, in GoalInput) (Goal, error) {
	idx := d.goalIndex(id)
	if idx < 0 {
		return Goal{}, notFound("goal", id)
	}
	in.Description = strings.TrimSpace(in.Description)
	in.TargetDate = trimDate(in.TargetDate)
	if err := Validate(in); err != nil {
		return Goal{}, err
	}
	updated := NewGoal(id, in)
	d.Goals[idx] = updated
	return updated, nil
}

// SetGoalProgress updates only the progress of a goal.
func (d *Document) SetGoalProgress(id string, progress float64) (Goal, error) {
	idx := d.goalIndex(id)
	if idx < 0 {
		return Goal{}, notFound("goal", id)
	}
	if !isFinite(progress) || progress < 0 || progress > 100 {
		return Goal{}, invalid("progress", "must be between 0 and 100")
	}
	d.Goals[idx].Progress = progress
	return d.Goals[idx], nil
}

// DeleteGoal removes a single goal.
func (d *Document) DeleteGoal(id string) (Goal, error) {
	idx := d.goalIndex(id)
	if idx < 0 {
		return Goal{}, notFound("goal", id)
	}
	removed := d.Goals[idx]
	d.Goals = append(d.Goals[:idx:idx], d.Goals[idx+1:]...)
	return removed, nil
}

func (a Assignment) input() AssignmentInput {
	return AssignmentInput{
		Title:    a.Title,
		CourseID: a.CourseID,
		DueDate:  a.DueDate,
		Weight:   a.Weight,
		Status:   a.Status,
		Grade:    a.Grade,
	}
}

func knownStatus(status string) bool {
	for _, s := range Statuses {
		if s == status {
			return true
		}
	}
	return false
}

// trimDate trims an optional date; blank clears it.
func trimDate(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func requireID(id string) error {
	if strings.TrimSpace(id) == "" {
		return invalid("id", "is required")
	}
	return nil
}

func (d *Document) courseIndex(id string) int {
	for i := range d.Courses {
		if d.Courses[i].ID == id {
			return i
		}
	}
	return -1
}

func (d *Document) assignmentIndex(id string) int {
	for i := range d.Assignments {
		if d.Assignments[i].ID == id {
			return i
		}
	}
	return -1
}

func (d *Document) sessionIndex(id string) int {
	for i := range d.StudySessions {
		if d.StudySessions[i].ID == id {
			return i
		}
	}
	return -1
}

func (d *Document) goalIndex(id string) int {
	for i := range d.Goals {
		if d.Goals[i].ID == id {
			return i
		}
	}
	return -1
}
