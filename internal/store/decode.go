package store

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/kingrea/academic-planner/internal/planner"
)

// Pointer fields distinguish an absent (or null) key from a zero value, so
// required fields can be enforced instead of silently defaulted.
type wireDocument struct {
	StudentName   *string            `json:"student_name"`
	Term          *string            `json:"term"`
	Courses       []wireCourse       `json:"courses"`
	Assignments   []wireAssignment   `json:"assignments"`
	StudySessions []wireStudySession `json:"study_sessions"`
	Goals         []wireGoal         `json:"goals"`
}

type wireCourse struct {
	ID           *string  `json:"id"`
	Name         *string  `json:"name"`
	Credits      *float64 `json:"credits"`
	TargetGrade  *float64 `json:"target_grade"`
	CurrentGrade *float64 `json:"current_grade"`
}

type wireAssignment struct {
	ID       *string  `json:"id"`
	Title    *string  `json:"title"`
	CourseID *string  `json:"course_id"`
	DueDate  *string  `json:"due_date"`
	Weight   *float64 `json:"weight"`
	Status   *string  `json:"status"`
	Grade    *float64 `json:"grade"`
}

type wireStudySession struct {
	ID            *string  `json:"id"`
	CourseID      *string  `json:"course_id"`
	Date          *string  `json:"date"`
	DurationHours *float64 `json:"duration_hours"`
	Notes         *string  `json:"notes"`
}

type wireGoal struct {
	ID          *string  `json:"id"`
	Description *string  `json:"description"`
	Progress    *float64 `json:"progress"`
	TargetDate  *string  `json:"target_date"`
}

type presence struct {
	name string
	ok   bool
}

// Decode parses a stored document. Missing top-level keys default to empty;
// missing required record fields, wrong types, bad dates and duplicate ids
// are reported as planner.ErrMalformedDocument.
func Decode(data []byte) (planner.Document, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return planner.Document{}, fmt.Errorf("%w: top level must be a JSON object", planner.ErrMalformedDocument)
	}
	var wire wireDocument
	if err := json.Unmarshal(trimmed, &wire); err != nil {
		return planner.Document{}, fmt.Errorf("%w: %v", planner.ErrMalformedDocument, err)
	}

	doc := planner.NewDocument()
	doc.StudentName = deref(wire.StudentName)
	doc.Term = deref(wire.Term)

	for i, w := range wire.Courses {
		path := fmt.Sprintf("courses[%d]", i)
		if err := requireFields(path,
			presence{"id", w.ID != nil},
			presence{"name", w.Name != nil},
			presence{"credits", w.Credits != nil},
			presence{"target_grade", w.TargetGrade != nil},
		); err != nil {
			return planner.Document{}, err
		}
		doc.Courses = append(doc.Courses, planner.Course{
			ID:           *w.ID,
			Name:         *w.Name,
			Credits:      *w.Credits,
			TargetGrade:  *w.TargetGrade,
			CurrentGrade: w.CurrentGrade,
		})
	}

	for i, w := range wire.Assignments {
		path := fmt.Sprintf("assignments[%d]", i)
		if err := requireFields(path,
			presence{"id", w.ID != nil},
			presence{"title", w.Title != nil},
			presence{"course_id", w.CourseID != nil},
			presence{"due_date", w.DueDate != nil},
			presence{"weight", w.Weight != nil},
		); err != nil {
			return planner.Document{}, err
		}
		if err := requireDate(path, "due_date", *w.DueDate); err != nil {
			return planner.Document{}, err
		}
		status := planner.StatusPending
		if w.Status != nil {
			status = *w.Status
		}
		doc.Assignments = append(doc.Assignments, planner.Assignment{
			ID:       *w.ID,
			Title:    *w.Title,
			CourseID: *w.CourseID,
			DueDate:  *w.DueDate,
			Weight:   *w.Weight,
			Status:   status,
			Grade:    w.Grade,
		})
	}

	for i, w := range wire.StudySessions {
		path := fmt.Sprintf("study_sessions[%d]", i)
		if err := requireFields(path,
			presence{"id", w.ID != nil},
			presence{"course_id", w.CourseID != nil},
			presence{"date", w.Date != nil},
			presence{"duration_hours", w.DurationHours != nil},
		); err != nil {
			return planner.Document{}, err
		}
		if err := requireDate(path, "date", *w.Date); err != nil {
			return planner.Document{}, err
		}
		doc.StudySessions = append(doc.StudySessions, planner.StudySession{
			ID:            *w.ID,
			CourseID:      *w.CourseID,
			Date:          *w.Date,
			DurationHours: *w.DurationHours,
			Notes:         deref(w.Notes),
		})
	}

	for i, w := range wire.Goals {
		path := fmt.Sprintf("goals[%d]", i)
		if err := requireFields(path,
			presence{"id", w.ID != nil},
			presence{"description", w.Description != nil},
			presence{"progress", w.Progress != nil},
		); err != nil {
			return planner.Document{}, err
		}
		if w.TargetDate != nil {
			if err := requireDate(path, "target_date", *w.TargetDate); err != nil {
				return planner.Document{}, err
			}
		}
		doc.Goals = append(doc.Goals, planner.Goal{
			ID:          *w.ID,
			Description: *w.Description,
			Progress:    *w.Progress,
			TargetDate:  w.TargetDate,
		})
	}

	if err := checkUniqueIDs(doc); err != nil {
		return planner.Document{}, err
	}
	return doc, nil
}

func requireFields(path string, fields ...presence) error {
	for _, f := range fields {
		if !f.ok {
			return fmt.Errorf("%w: %s: missing required field %q", planner.ErrMalformedDocument, path, f.name)
		}
	}
	return nil
}

func requireDate(path, field, value string) error {
	if _, err := planner.ParseDay(value); err != nil {
		return fmt.Errorf("%w: %s.%s: %q is not a YYYY-MM-DD date", planner.ErrMalformedDocument, path, field, value)
	}
	return nil
}

func checkUniqueIDs(doc planner.Document) error {
	collections := []struct {
		name string
		ids  []string
	}{
		{"courses", collectIDs(doc.Courses, func(c planner.Course) string { return c.ID })},
		{"assignments", collectIDs(doc.Assignments, func(a planner.Assignment) string { return a.ID })},
		{"study_sessions", collectIDs(doc.StudySessions, func(s planner.StudySession) string { return s.ID })},
		{"goals", collectIDs(doc.Goals, func(g planner.Goal) string { return g.ID })},
	}
	for _, c := range collections {
		seen := make(map[string]struct{}, len(c.ids))
		for _, id := range c.ids {
			if _, dup := seen[id]; dup {
				return fmt.Errorf("%w: %s: duplicate id %q", planner.ErrMalformedDocument, c.name, id)
			}
			seen[id] = struct{}{}
		}
	}
	return nil
}

func collectIDs[T any](items []T, id func(T) string) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = id(item)
	}
	return out
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
