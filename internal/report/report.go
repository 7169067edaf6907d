package report

import (
	"sort"
	"time"

	"github.com/kingrea/academic-planner/internal/planner"
)

// UpcomingAssignment pairs an assignment with its resolved course name.
type UpcomingAssignment struct {
	planner.Assignment
	CourseName string
}

// SessionEntry pairs a study session with its resolved course name.
type SessionEntry struct {
	planner.StudySession
	CourseName string
}

// Dashboard is the summary shown on the landing screen of both front ends.
type Dashboard struct {
	StudentName          string
	Term                 string
	TotalCourses         int
	CompletedAssignments int
	PendingAssignments   int
	GPA                  float64
	StudyHoursLastWeek   float64
	GoalProgressAverage  float64
	Upcoming             []UpcomingAssignment
}

// NextDeadlines returns at most n upcoming assignments.
func (d Dashboard) NextDeadlines(n int) []UpcomingAssignment {
	if n < 0 || n >= len(d.Upcoming) {
		return d.Upcoming
	}
	return d.Upcoming[:n]
}

// BuildDashboard computes every dashboard metric against clock's today.
func BuildDashboard(doc planner.Document, clock Clock) Dashboard {
	if clock == nil {
		clock = SystemClock
	}
	now := clock()
	dash := Dashboard{
		StudentName:         doc.StudentName,
		Term:                doc.Term,
		TotalCourses:        len(doc.Courses),
		GPA:                 EstimateGPA(doc.Courses),
		StudyHoursLastWeek:  StudyHoursLastWeek(doc.StudySessions, now),
		GoalProgressAverage: GoalProgressAverage(doc.Goals),
		Upcoming:            UpcomingAssignments(doc, now),
	}
	for _, a := range doc.Assignments {
		if a.Completed() {
			dash.CompletedAssignments++
		} else {
			dash.PendingAssignments++
		}
	}
	return dash
}

// UpcomingAssignments returns assignments due today or later, ordered by due
// date. Equal dates keep insertion order.
func UpcomingAssignments(doc planner.Document, now time.Time) []UpcomingAssignment {
	today := Today(now)
	names := courseNames(doc.Courses)
	type dated struct {
		entry UpcomingAssignment
		due   time.Time
	}
	var pending []dated
	for _, a := range doc.Assignments {
		due, err := planner.ParseDay(a.DueDate)
		if err != nil || due.Before(today) {
			continue
		}
		pending = append(pending, dated{entry: UpcomingAssignment{Assignment: a, CourseName: names.lookup(a.CourseID)}, due: due})
	}
	sort.SliceStable(pending, func(i, j int) bool {
		return pending[i].due.Before(pending[j].due)
	})
	out := make([]UpcomingAssignment, len(pending))
	for i, p := range pending {
		out[i] = p.entry
	}
	return out
}

// AssignmentsByDueDate lists every assignment, earliest due first, with
// course names resolved.
func AssignmentsByDueDate(doc planner.Document) []UpcomingAssignment {
	names := courseNames(doc.Courses)
	out := make([]UpcomingAssignment, len(doc.Assignments))
	for i, a := range doc.Assignments {
		out[i] = UpcomingAssignment{Assignment: a, CourseName: names.lookup(a.CourseID)}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return dayBefore(out[i].DueDate, out[j].DueDate)
	})
	return out
}

// SessionsNewestFirst lists study sessions by date, most recent first.
func SessionsNewestFirst(doc planner.Document) []SessionEntry {
	names := courseNames(doc.Courses)
	out := make([]SessionEntry, len(doc.StudySessions))
	for i, s := range doc.StudySessions {
		out[i] = SessionEntry{StudySession: s, CourseName: names.lookup(s.CourseID)}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return dayBefore(out[j].Date, out[i].Date)
	})
	return out
}

// dayBefore orders two stored dates. Unparsable values fall back to text order.
func dayBefore(a, b string) bool {
	da, errA := planner.ParseDay(a)
	db, errB := planner.ParseDay(b)
	if errA != nil || errB != nil {
		return a < b
	}
	return da.Before(db)
}

type nameIndex map[string]string

func courseNames(courses []planner.Course) nameIndex {
	idx := make(nameIndex, len(courses))
	for _, c := range courses {
		idx[c.ID] = c.Name
	}
	return idx
}

func (n nameIndex) lookup(id string) string {
	if name, ok := n[id]; ok {
		return name
	}
	return planner.UnknownCourse
}
