// Package setup verifies that a project directory is ready for the planner.
package setup

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/kingrea/academic-planner/internal/config"
	"github.com/kingrea/academic-planner/internal/planner"
	"github.com/kingrea/academic-planner/internal/store"
)

// Status of a single check.
type Status string

const (
	StatusOK      Status = "ok"
	StatusMissing Status = "missing"
	StatusWarn    Status = "warn"
	StatusFailed  Status = "failed"
)

// Item is one line of the setup report.
type Item struct {
	Name   string
	Path   string
	Status Status
	Detail string
	// Required items turn the report invalid when not ok.
	Required bool
}

// Report collects every check for a project.
type Report struct {
	ProjectDir string
	Items      []Item
}

// IsValid reports whether every required item passed.
func (r Report) IsValid() bool {
	for _, item := range r.Items {
		if item.Required && item.Status != StatusOK {
			return false
		}
	}
	return true
}

// Check inspects the project without modifying it.
func Check(projectDir string) Report {
	rep := Report{ProjectDir: projectDir}
	plannerDir := filepath.Join(projectDir, config.PlannerDir)
	rep.Items = append(rep.Items, dirItem(".planner directory", plannerDir, true))

	cfg, err := config.NewConfig(projectDir)
	cfgItem := Item{Name: "config file", Required: true}
	switch {
	case err != nil:
		cfgItem.Status = StatusFailed
		cfgItem.Detail = err.Error()
	default:
		cfgItem.Path = cfg.ProjectConfigPath()
		if _, statErr := os.Stat(cfgItem.Path); statErr != nil {
			cfgItem.Status = StatusMissing
			cfgItem.Detail = "defaults in use; run `planner` once to create it"
			cfgItem.Required = false
		} else {
			cfgItem.Status = StatusOK
			cfgItem.Detail = fmt.Sprintf("web %s, data %s", cfg.WebAddress(), cfg.Project.DataFile)
		}
	}
	rep.Items = append(rep.Items, cfgItem)
	if cfg == nil {
		return rep
	}

	rep.Items = append(rep.Items, dirItem("logs directory", cfg.LogsDir(), false))
	rep.Items = append(rep.Items, dataItem(cfg.DataFilePath()))
	return rep
}

func dirItem(name, path string, required bool) Item {
	item := Item{Name: name, Path: path, Required: required}
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		item.Status = StatusMissing
	case err != nil:
		item.Status = StatusFailed
		item.Detail = err.Error()
	case !info.IsDir():
		item.Status = StatusFailed
		item.Detail = "not a directory"
	default:
		item.Status = StatusOK
	}
	return item
}

func dataItem(path string) Item {
	item := Item{Name: "planner data", Path: path, Required: true}
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		item.Status = StatusWarn
		item.Detail = "no data yet; an empty planner will be created on first save"
		item.Required = false
		return item
	}
	if err != nil {
		item.Status = StatusFailed
		item.Detail = err.Error()
		return item
	}
	doc, err := store.New(path).Load()
	switch {
	case errors.Is(err, planner.ErrMalformedDocument):
		item.Status = StatusFailed
		item.Detail = "malformed document: " + err.Error()
	case err != nil:
		item.Status = StatusFailed
		item.Detail = err.Error()
	default:
		item.Status = StatusOK
		item.Detail = fmt.Sprintf("%d bytes; %d courses, %d assignments, %d study sessions, %d goals",
			info.Size(), len(doc.Courses), len(doc.Assignments), len(doc.StudySessions), len(doc.Goals))
	}
	return item
}
