package web

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/kingrea/academic-planner/internal/planner"
)

//go:embed templates/*.html
var templateFS embed.FS

const flashSessionName = "planner-flash"

const (
	flashSuccess = "success"
	flashError   = "error"
)

var pageNames = []string{
	"dashboard",
	"progress",
	"profile",
	"courses",
	"course_form",
	"assignments",
	"assignment_form",
	"sessions",
	"session_form",
	"goals",
	"goal_form",
	"error",
}

type pageSet map[string]*template.Template

var templateFuncs = template.FuncMap{
	"grade": func(v *float64) string {
		if v == nil {
			return "N/A"
		}
		return strconv.FormatFloat(*v, 'f', 1, 64)
	},
	"fixed1": func(v float64) string { return strconv.FormatFloat(v, 'f', 1, 64) },
	"fixed2": func(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) },
	"num":    formatNumber,
	"date": func(v *string) string {
		if v == nil {
			return ""
		}
		return *v
	},
	"percent": func(done, total int) int {
		if total == 0 {
			return 0
		}
		return done * 100 / total
	},
}

func parsePages() (pageSet, error) {
	pages := make(pageSet, len(pageNames))
	for _, name := range pageNames {
		tmpl, err := template.New(name).Funcs(templateFuncs).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("web: parse template %s: %w", name, err)
		}
		pages[name] = tmpl
	}
	return pages, nil
}

type flashMessage struct {
	Kind string
	Text string
}

type pageData struct {
	Title   string
	Active  string
	Flashes []flashMessage
	Data    any
}

// formView backs every add/edit form.
type formView struct {
	Action   string
	Submit   string
	Values   url.Values
	Error    string
	Courses  []planner.Course
	Statuses []string
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, page, title, active string, data any) {
	tmpl, ok := s.pages[page]
	if !ok {
		http.Error(w, "unknown page", http.StatusInternalServerError)
		return
	}
	view := pageData{
		Title:   title,
		Active:  active,
		Flashes: s.takeFlashes(w, r),
		Data:    data,
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", view); err != nil {
		s.logger.Error("web: render", zap.String("page", page), zap.Error(err))
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (s *Server) flash(w http.ResponseWriter, r *http.Request, kind, text string) {
	sess, _ := s.cookies.Get(r, flashSessionName)
	sess.AddFlash(text, kind)
	if err := sess.Save(r, w); err != nil {
		s.logger.Warn("web: save flash", zap.Error(err))
	}
}

func (s *Server) takeFlashes(w http.ResponseWriter, r *http.Request) []flashMessage {
	sess, _ := s.cookies.Get(r, flashSessionName)
	var out []flashMessage
	for _, kind := range []string{flashSuccess, flashError} {
		for _, f := range sess.Flashes(kind) {
			if text, ok := f.(string); ok {
				out = append(out, flashMessage{Kind: kind, Text: text})
			}
		}
	}
	if len(out) > 0 {
		if err := sess.Save(r, w); err != nil {
			s.logger.Warn("web: clear flashes", zap.Error(err))
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
