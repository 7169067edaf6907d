// Package planner holds the academic planner document and the typed
// mutations the front ends apply to it.
package planner

import "time"

// DateLayout is the only accepted textual date format.
const DateLayout = "2006-01-02"

// UnknownCourse is displayed for a course id that no longer resolves.
const UnknownCourse = "Unknown"

// Assignment statuses offered by the front ends. Only StatusCompleted is
// significant to aggregation; documents may carry other strings.
const (
	StatusPending    = "pending"
	StatusInProgress = "in-progress"
	StatusCompleted  = "completed"
)

// Statuses lists the selectable assignment statuses in display order.
var Statuses = []string{StatusPending, StatusInProgress, StatusCompleted}

// Course is a single enrolled course.
type Course struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Credits      float64  `json:"credits"`
	TargetGrade  float64  `json:"target_grade"`
	CurrentGrade *float64 `json:"current_grade"`
}

// Assignment belongs to a course by id. The reference is checked only when
// the assignment is created.
type Assignment struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	CourseID string   `json:"course_id"`
	DueDate  string   `json:"due_date"`
	Weight   float64  `json:"weight"`
	Status   string   `json:"status"`
	Grade    *float64 `json:"grade"`
}

// Completed reports whether the assignment status is literally "completed".
func (a Assignment) Completed() bool {
	return a.Status == StatusCompleted
}

// StudySession records time spent on a course.
type StudySession struct {
	ID            string  `json:"id"`
	CourseID      string  `json:"course_id"`
	Date          string  `json:"date"`
	DurationHours float64 `json:"duration_hours"`
	Notes         string  `json:"notes"`
}

// Goal is a free-form personal target with percentage progress.
type Goal struct {
	ID          string  `json:"id"`
	Description string  `json:"description"`
	Progress    float64 `json:"progress"`
	TargetDate  *string `json:"target_date"`
}

// Document is the whole persisted planner state.
type Document struct {
	StudentName   string         `json:"student_name"`
	Term          string         `json:"term"`
	Courses       []Course       `json:"courses"`
	Assignments   []Assignment   `json:"assignments"`
	StudySessions []StudySession `json:"study_sessions"`
	Goals         []Goal         `json:"goals"`
}

// NewDocument returns an empty document with non-nil collections.
func NewDocument() Document {
	return Document{
		Courses:       []Course{},
		Assignments:   []Assignment{},
		StudySessions: []StudySession{},
		Goals:         []Goal{},
	}
}

// Normalize replaces nil collections with empty ones so the document always
// encodes as arrays.
func (d *Document) Normalize() {
	if d.Courses == nil {
		d.Courses = []Course{}
	}
	if d.Assignments == nil {
		d.Assignments = []Assignment{}
	}
	if d.StudySessions == nil {
		d.StudySessions = []StudySession{}
	}
	if d.Goals == nil {
		d.Goals = []Goal{}
	}
}

// Clone returns a deep copy, including optional pointer fields.
func (d Document) Clone() Document {
	out := Document{
		StudentName:   d.StudentName,
		Term:          d.Term,
		Courses:       make([]Course, len(d.Courses)),
		Assignments:   make([]Assignment, len(d.Assignments)),
		StudySessions: append([]StudySession{}, d.StudySessions...),
		Goals:         make([]Goal, len(d.Goals)),
	}
	for i, c := range d.Courses {
		c.CurrentGrade = cloneFloat(c.CurrentGrade)
		out.Courses[i] = c
	}
	for i, a := range d.Assignments {
		a.Grade = cloneFloat(a.Grade)
		out.Assignments[i] = a
	}
	for i, g := range d.Goals {
		if g.TargetDate != nil {
			v := *g.TargetDate
			g.TargetDate = &v
		}
		out.Goals[i] = g
	}
	return out
}

// ParseDay parses a YYYY-MM-DD string into a UTC midnight time.
func ParseDay(value string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, value, time.UTC)
}

// Float returns a pointer to v, for optional numeric fields.
func Float(v float64) *float64 {
	return &v
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	return Float(*v)
}
