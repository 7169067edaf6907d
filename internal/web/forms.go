package web

import (
	"net/url"
	"strings"

	"github.com/kingrea/academic-planner/internal/planner"
)

func courseInputFromForm(form url.Values) (planner.CourseInput, error) {
	credits, err := planner.ParseFloat("credits", form.Get("credits"))
	if err != nil {
		return planner.CourseInput{}, err
	}
	target, err := planner.ParseFloat("target_grade", form.Get("target_grade"))
	if err != nil {
		return planner.CourseInput{}, err
	}
	current, err := planner.ParseOptionalFloat("current_grade", form.Get("current_grade"))
	if err != nil {
		return planner.CourseInput{}, err
	}
	return planner.CourseInput{
		Name:         strings.TrimSpace(form.Get("name")),
		Credits:      credits,
		TargetGrade:  target,
		CurrentGrade: current,
	}, nil
}

func courseValues(c planner.Course) url.Values {
	return url.Values{
		"name":          {c.Name},
		"credits":       {formatNumber(c.Credits)},
		"target_grade":  {formatNumber(c.TargetGrade)},
		"current_grade": {optionalNumber(c.CurrentGrade)},
	}
}

func assignmentInputFromForm(form url.Values) (planner.AssignmentInput, error) {
	due, err := planner.ParseDate("due_date", form.Get("due_date"))
	if err != nil {
		return planner.AssignmentInput{}, err
	}
	weight, err := planner.ParseFloat("weight", form.Get("weight"))
	if err != nil {
		return planner.AssignmentInput{}, err
	}
	grade, err := planner.ParseOptionalFloat("grade", form.Get("grade"))
	if err != nil {
		return planner.AssignmentInput{}, err
	}
	return planner.AssignmentInput{
		Title:    strings.TrimSpace(form.Get("title")),
		CourseID: strings.TrimSpace(form.Get("course_id")),
		DueDate:  due,
		Weight:   weight,
		Status:   planner.NormalizeStatus(form.Get("status")),
		Grade:    grade,
	}, nil
}

func assignmentValues(a planner.Assignment) url.Values {
	return url.Values{
		"title":     {a.Title},
		"course_id": {a.CourseID},
		"due_date":  {a.DueDate},
		"weight":    {formatNumber(a.Weight)},
		"status":    {a.Status},
		"grade":     {optionalNumber(a.Grade)},
	}
}

func sessionInputFromForm(form url.Values) (planner.StudySessionInput, error) {
	date, err := planner.ParseDate("date", form.Get("date"))
	if err != nil {
		return planner.StudySessionInput{}, err
	}
	hours, err := planner.ParseFloat("duration_hours", form.Get("duration_hours"))
	if err != nil {
		return planner.StudySessionInput{}, err
	}
	return planner.StudySessionInput{
		CourseID:      strings.TrimSpace(form.Get("course_id")),
		Date:          date,
		DurationHours: hours,
		Notes:         strings.TrimSpace(form.Get("notes")),
	}, nil
}

func goalInputFromForm(form url.Values) (planner.GoalInput, error) {
	progress, err := planner.ParseFloat("progress", form.Get("progress"))
	if err != nil {
		return planner.GoalInput{}, err
	}
	target, err := planner.ParseOptionalDate("target_date", form.Get("target_date"))
	if err != nil {
		return planner.GoalInput{}, err
	}
	return planner.GoalInput{
		Description: strings.TrimSpace(form.Get("description")),
		Progress:    progress,
		TargetDate:  target,
	}, nil
}

func goalValues(g planner.Goal) url.Values {
	target := ""
	if g.TargetDate != nil {
		target = *g.TargetDate
	}
	return url.Values{
		"description": {g.Description},
		"progress":    {formatNumber(g.Progress)},
		"target_date": {target},
	}
}

func optionalNumber(v *float64) string {
	if v == nil {
		return ""
	}
	return formatNumber(*v)
}
