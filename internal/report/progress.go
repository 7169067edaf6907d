package report

import "github.com/kingrea/academic-planner/internal/planner"

// CourseProgress rolls up one course's assignments and study time.
type CourseProgress struct {
	Course      planner.Course
	Assignments []planner.Assignment
	Completed   int
	Total       int
	// AverageGrade is nil when no assignment of the course is graded.
	AverageGrade *float64
	StudyHours   float64
}

// ProgressReport covers every course plus document-wide study time.
type ProgressReport struct {
	Courses         []CourseProgress
	TotalStudyHours float64
	Goals           []planner.Goal
}

// Progress builds the per-course rollup in course insertion order.
func Progress(doc planner.Document) ProgressReport {
	rep := ProgressReport{
		Courses:         make([]CourseProgress, 0, len(doc.Courses)),
		TotalStudyHours: TotalStudyHours(doc.StudySessions),
		Goals:           doc.Goals,
	}
	for _, c := range doc.Courses {
		rep.Courses = append(rep.Courses, courseProgress(c, doc))
	}
	return rep
}

func courseProgress(c planner.Course, doc planner.Document) CourseProgress {
	cp := CourseProgress{Course: c, Assignments: []planner.Assignment{}}
	var grades []float64
	for _, a := range doc.Assignments {
		if a.CourseID != c.ID {
			continue
		}
		cp.Assignments = append(cp.Assignments, a)
		if a.Completed() {
			cp.Completed++
		}
		if a.Grade != nil {
			grades = append(grades, *a.Grade)
		}
	}
	cp.Total = len(cp.Assignments)
	if avg, ok := mean(grades); ok {
		cp.AverageGrade = &avg
	}
	for _, s := range doc.StudySessions {
		if s.CourseID == c.ID {
			cp.StudyHours += s.DurationHours
		}
	}
	return cp
}
