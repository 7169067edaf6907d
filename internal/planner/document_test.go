package planner

import (
	"errors"
	"math"
	"reflect"
	"testing"
)

func fixtureDocument(t *testing.T) Document {
	t.Helper()
	doc := NewDocument()
	doc.SetProfile("  Ada  ", " Fall ")
	for _, c := range []Course{
		{ID: "c1", Name: "Calculus", Credits: 4, TargetGrade: 90},
		{ID: "c2", Name: "History", Credits: 3, TargetGrade: 85, CurrentGrade: Float(88)},
	} {
		if err := doc.AddCourse(c); err != nil {
			t.Fatalf("add course %s: %v", c.ID, err)
		}
	}
	for _, a := range []Assignment{
		{ID: "a1", Title: "Limits", CourseID: "c1", DueDate: "2024-12-20", Weight: 10},
		{ID: "a2", Title: "Essay", CourseID: "c2", DueDate: "2024-12-21", Weight: 25, Status: StatusCompleted, Grade: Float(91)},
		{ID: "a3", Title: "Series", CourseID: "c1", DueDate: "2025-01-05", Weight: 15},
	} {
		if err := doc.AddAssignment(a); err != nil {
			t.Fatalf("add assignment %s: %v", a.ID, err)
		}
	}
	for _, s := range []StudySession{
		{ID: "s1", CourseID: "c1", Date: "2024-12-10", DurationHours: 2},
		{ID: "s2", CourseID: "c2", Date: "2024-12-11", DurationHours: 1.5, Notes: "reading"},
	} {
		if err := doc.AddStudySession(s); err != nil {
			t.Fatalf("add session %s: %v", s.ID, err)
		}
	}
	if err := doc.AddGoal(Goal{ID: "g1", Description: "Make dean's list", Progress: 40}); err != nil {
		t.Fatalf("add goal: %v", err)
	}
	return doc
}

func TestSetProfileTrims(t *testing.T) {
	doc := fixtureDocument(t)
	if doc.StudentName != "Ada" || doc.Term != "Fall" {
		t.Fatalf("profile = %q/%q", doc.StudentName, doc.Term)
	}
}

func TestDeleteCourseCascades(t *testing.T) {
	doc := fixtureDocument(t)
	removal, err := doc.DeleteCourse("c1")
	if err != nil {
		t.Fatalf("delete course: %v", err)
	}
	if removal.RemovedAssignments != 2 || removal.RemovedSessions != 1 {
		t.Fatalf("removal = %+v", removal)
	}
	if len(doc.Courses) != 1 || doc.Courses[0].ID != "c2" {
		t.Fatalf("courses = %+v", doc.Courses)
	}
	if len(doc.Assignments) != 1 || doc.Assignments[0].ID != "a2" {
		t.Fatalf("assignments = %+v", doc.Assignments)
	}
	if len(doc.StudySessions) != 1 || doc.StudySessions[0].ID != "s2" {
		t.Fatalf("sessions = %+v", doc.StudySessions)
	}
	if len(doc.Goals) != 1 {
		t.Fatalf("goals should be untouched")
	}
}

func TestDeleteAssignmentNeverTouchesCourses(t *testing.T) {
	doc := fixtureDocument(t)
	before := doc.Clone()
	if _, err := doc.DeleteAssignment("a1"); err != nil {
		t.Fatalf("delete assignment: %v", err)
	}
	if _, err := doc.DeleteStudySession("s2"); err != nil {
		t.Fatalf("delete session: %v", err)
	}
	if !reflect.DeepEqual(before.Courses, doc.Courses) {
		t.Fatalf("courses changed: %+v", doc.Courses)
	}
	if len(doc.Assignments) != 2 || len(doc.StudySessions) != 1 {
		t.Fatalf("unexpected counts: %d assignments, %d sessions", len(doc.Assignments), len(doc.StudySessions))
	}
}

func TestMissingIDsReportNotFound(t *testing.T) {
	doc := fixtureDocument(t)
	checks := map[string]error{}
	_, checks["course"] = doc.DeleteCourse("nope")
	_, checks["course grade"] = doc.SetCourseGrade("nope", 90)
	_, checks["assignment"] = doc.DeleteAssignment("nope")
	_, checks["assignment status"] = doc.SetAssignmentStatus("nope", StatusCompleted, nil)
	_, checks["session"] = doc.DeleteStudySession("nope")
	_, checks["goal"] = doc.DeleteGoal("nope")
	_, checks["goal progress"] = doc.SetGoalProgress("nope", 10)
	for name, err := range checks {
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("%s: expected ErrNotFound, got %v", name, err)
		}
	}
}

func TestValidationLeavesDocumentUnchanged(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Document) error
		field  string
	}{
		{"blank course name", func(d *Document) error {
			return d.AddCourse(Course{ID: "c9", Name: "  ", Credits: 3, TargetGrade: 80})
		}, "name"},
		{"zero credits", func(d *Document) error {
			return d.AddCourse(Course{ID: "c9", Name: "Art", Credits: 0, TargetGrade: 80})
		}, "credits"},
		{"target out of range", func(d *Document) error {
			_, err := d.UpdateCourse("c1", CourseInput{Name: "Calc", Credits: 4, TargetGrade: 101})
			return err
		}, "target_grade"},
		{"current grade out of range", func(d *Document) error {
			_, err := d.SetCourseGrade("c1", -1)
			return err
		}, "current_grade"},
		{"duplicate course id", func(d *Document) error {
			return d.AddCourse(Course{ID: "c1", Name: "Dup", Credits: 1, TargetGrade: 1})
		}, "id"},
		{"bad due date", func(d *Document) error {
			return d.AddAssignment(Assignment{ID: "a9", Title: "Lab", CourseID: "c1", DueDate: "12/20/2024", Weight: 5})
		}, "due_date"},
		{"unknown course on create", func(d *Document) error {
			return d.AddAssignment(Assignment{ID: "a9", Title: "Lab", CourseID: "zz", DueDate: "2024-12-20", Weight: 5})
		}, "course_id"},
		{"weight over 100", func(d *Document) error {
			_, err := d.UpdateAssignment("a1", AssignmentInput{Title: "Limits", CourseID: "c1", DueDate: "2024-12-20", Weight: 120, Status: StatusPending})
			return err
		}, "weight"},
		{"unknown status", func(d *Document) error {
			_, err := d.SetAssignmentStatus("a1", "abandoned", nil)
			return err
		}, "status"},
		{"non-positive duration", func(d *Document) error {
			return d.AddStudySession(StudySession{ID: "s9", CourseID: "c1", Date: "2024-12-12", DurationHours: 0})
		}, "duration_hours"},
		{"goal progress range", func(d *Document) error {
			_, err := d.SetGoalProgress("g1", 150)
			return err
		}, "progress"},
		{"goal target date", func(d *Document) error {
			bad := "next week"
			return d.AddGoal(Goal{ID: "g9", Description: "Sleep", Progress: 0, TargetDate: &bad})
		}, "target_date"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			doc := fixtureDocument(t)
			before := doc.Clone()
			err := tc.mutate(&doc)
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
			var vErr *ValidationError
			if !errors.As(err, &vErr) || vErr.Field != tc.field {
				t.Fatalf("expected field %q, got %v", tc.field, err)
			}
			if !reflect.DeepEqual(before, doc) {
				t.Fatalf("document mutated on failed validation")
			}
		})
	}
}

func TestSetAssignmentStatusKeepsGradeWhenNil(t *testing.T) {
	doc := fixtureDocument(t)
	updated, err := doc.SetAssignmentStatus("a2", "In-Progress", nil)
	if err != nil {
		t.Fatalf("set status: %v", err)
	}
	if updated.Status != StatusInProgress {
		t.Fatalf("status = %q", updated.Status)
	}
	if updated.Grade == nil || *updated.Grade != 91 {
		t.Fatalf("grade should be preserved, got %v", updated.Grade)
	}
	updated, err = doc.SetAssignmentStatus("a1", StatusCompleted, Float(77))
	if err != nil {
		t.Fatalf("set status: %v", err)
	}
	if !updated.Completed() || *updated.Grade != 77 {
		t.Fatalf("unexpected assignment %+v", updated)
	}
}

func TestUpdateAssignmentKeepsDanglingCourse(t *testing.T) {
	doc := fixtureDocument(t)
	doc.Courses = doc.Courses[1:] // c1 removed without cascade
	if got := doc.CourseName("c1"); got != UnknownCourse {
		t.Fatalf("CourseName = %q", got)
	}
	_, err := doc.UpdateAssignment("a1", AssignmentInput{Title: "Limits II", CourseID: "c1", DueDate: "2024-12-22", Weight: 10, Status: StatusPending})
	if err != nil {
		t.Fatalf("dangling reference should be tolerated on edit: %v", err)
	}
}

func TestUpdateGoalClearsBlankTargetDate(t *testing.T) {
	doc := fixtureDocument(t)
	blank := " "
	goal, err := doc.UpdateGoal("g1", GoalInput{Description: "Honors", Progress: 55, TargetDate: &blank})
	if err != nil {
		t.Fatalf("update goal: %v", err)
	}
	if goal.TargetDate != nil {
		t.Fatalf("blank target date should clear, got %q", *goal.TargetDate)
	}
}

func TestAddGoalDropsBlankTargetDate(t *testing.T) {
	doc := fixtureDocument(t)
	blank := "  "
	if err := doc.AddGoal(Goal{ID: "g2", Description: "Sleep more", Progress: 10, TargetDate: &blank}); err != nil {
		t.Fatalf("add goal: %v", err)
	}
	goal, ok := doc.Goal("g2")
	if !ok || goal.TargetDate != nil {
		t.Fatalf("goal = %+v, %v", goal, ok)
	}
}

func TestNonFiniteNumbersAreRejected(t *testing.T) {
	for _, raw := range []string{"NaN", "nan", "Inf", "+Inf", "-inf", "infinity"} {
		if _, err := ParseFloat("grade", raw); !errors.Is(err, ErrValidation) {
			t.Fatalf("ParseFloat(%q) err = %v", raw, err)
		}
		if _, err := ParseOptionalFloat("grade", raw); !errors.Is(err, ErrValidation) {
			t.Fatalf("ParseOptionalFloat(%q) err = %v", raw, err)
		}
	}

	nan, inf := math.NaN(), math.Inf(1)
	tests := []struct {
		name   string
		field  string
		mutate func(doc *Document) error
	}{
		{"course credits", "credits", func(doc *Document) error {
			return doc.AddCourse(Course{ID: "c9", Name: "Art", Credits: inf, TargetGrade: 90})
		}},
		{"course current grade", "current_grade", func(doc *Document) error {
			_, err := doc.UpdateCourse("c1", CourseInput{Name: "Calculus", Credits: 4, TargetGrade: 90, CurrentGrade: Float(nan)})
			return err
		}},
		{"course grade update", "current_grade", func(doc *Document) error {
			_, err := doc.SetCourseGrade("c1", nan)
			return err
		}},
		{"assignment grade on add", "grade", func(doc *Document) error {
			return doc.AddAssignment(Assignment{ID: "a9", Title: "Quiz", CourseID: "c1", DueDate: "2024-12-30", Weight: 5, Grade: Float(inf)})
		}},
		{"assignment grade on edit", "grade", func(doc *Document) error {
			_, err := doc.UpdateAssignment("a1", AssignmentInput{Title: "Limits", CourseID: "c1", DueDate: "2024-12-20", Weight: 10, Status: StatusPending, Grade: Float(nan)})
			return err
		}},
		{"assignment status grade", "grade", func(doc *Document) error {
			_, err := doc.SetAssignmentStatus("a1", StatusCompleted, Float(nan))
			return err
		}},
		{"session duration", "duration_hours", func(doc *Document) error {
			return doc.AddStudySession(StudySession{ID: "s9", CourseID: "c1", Date: "2024-12-12", DurationHours: inf})
		}},
		{"goal progress", "progress", func(doc *Document) error {
			_, err := doc.SetGoalProgress("g1", nan)
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := fixtureDocument(t)
			before := doc.Clone()
			err := tt.mutate(&doc)
			var verr *ValidationError
			if !errors.As(err, &verr) || verr.Field != tt.field {
				t.Fatalf("expected validation error on %s, got %v", tt.field, err)
			}
			if !reflect.DeepEqual(doc, before) {
				t.Fatalf("document changed after rejected input")
			}
		})
	}
}

func TestParseHelpers(t *testing.T) {
	if v, err := ParseFloat("credits", " 3.5 "); err != nil || v != 3.5 {
		t.Fatalf("ParseFloat = %v, %v", v, err)
	}
	if _, err := ParseFloat("credits", "three"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if v, err := ParseOptionalFloat("grade", ""); err != nil || v != nil {
		t.Fatalf("blank optional float = %v, %v", v, err)
	}
	if _, err := ParseDate("due_date", "2024-13-01"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected date validation error, got %v", err)
	}
	if v, err := ParseOptionalDate("target_date", "2025-05-01"); err != nil || *v != "2025-05-01" {
		t.Fatalf("ParseOptionalDate = %v, %v", v, err)
	}
	if got := NormalizeStatus(" Completed "); got != StatusCompleted {
		t.Fatalf("NormalizeStatus = %q", got)
	}
}

func TestCloneIsDeep(t *testing.T) {
	doc := fixtureDocument(t)
	clone := doc.Clone()
	*clone.Courses[1].CurrentGrade = 10
	clone.Assignments[0].Title = "changed"
	if *doc.Courses[1].CurrentGrade != 88 || doc.Assignments[0].Title != "Limits" {
		t.Fatalf("clone shares state with original")
	}
}
