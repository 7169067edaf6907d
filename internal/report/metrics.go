// Package report computes dashboard metrics and progress rollups from a
// planner document snapshot. Nothing here performs I/O or reads the system
// clock directly.
package report

import (
	"math"
	"time"

	"github.com/kingrea/academic-planner/internal/planner"
)

// Clock supplies "now"; tests pin it.
type Clock func() time.Time

// SystemClock reads wall-clock time.
func SystemClock() time.Time {
	return time.Now()
}

// StudyWindowDays is how far back the weekly study-hour total reaches.
const StudyWindowDays = 7

type gpaStep struct {
	min    float64
	points float64
}

// Ordered highest first; the first step whose minimum the grade reaches wins.
var gpaScale = []gpaStep{
	{93, 4.0},
	{90, 3.7},
	{87, 3.3},
	{83, 3.0},
	{80, 2.7},
	{77, 2.3},
	{73, 2.0},
	{70, 1.7},
	{67, 1.3},
	{65, 1.0},
}

// Today returns the calendar date of t as UTC midnight, the same
// representation planner.ParseDay produces.
func Today(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// GradeToGPA maps a percentage grade onto the four-point scale.
func GradeToGPA(grade float64) float64 {
	for _, step := range gpaScale {
		if grade >= step.min {
			return step.points
		}
	}
	return 0.0
}

// EstimateGPA averages the GPA points of every course with a current grade,
// rounded to two decimals. No graded courses yields 0.
func EstimateGPA(courses []planner.Course) float64 {
	points := make([]float64, 0, len(courses))
	for _, c := range courses {
		if c.CurrentGrade != nil {
			points = append(points, GradeToGPA(*c.CurrentGrade))
		}
	}
	avg, _ := mean(points)
	return round2(avg)
}

// StudyHoursLastWeek sums sessions dated on or after today minus seven days.
func StudyHoursLastWeek(sessions []planner.StudySession, now time.Time) float64 {
	cutoff := Today(now).AddDate(0, 0, -StudyWindowDays)
	total := 0.0
	for _, s := range sessions {
		day, err := planner.ParseDay(s.Date)
		if err != nil {
			continue
		}
		if !day.Before(cutoff) {
			total += s.DurationHours
		}
	}
	return total
}

// GoalProgressAverage is the mean goal progress, 0 without goals.
func GoalProgressAverage(goals []planner.Goal) float64 {
	values := make([]float64, len(goals))
	for i, g := range goals {
		values[i] = g.Progress
	}
	avg, _ := mean(values)
	return avg
}

// TotalStudyHours sums every session regardless of course.
func TotalStudyHours(sessions []planner.StudySession) float64 {
	total := 0.0
	for _, s := range sessions {
		total += s.DurationHours
	}
	return total
}

// mean is the single place averages are taken; ok is false for no values
// and the neutral result is 0.
func mean(values []float64) (avg float64, ok bool) {
	if len(values) == 0 {
		return 0, false
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values)), true
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
