package setup

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kingrea/academic-planner/internal/config"
	"github.com/kingrea/academic-planner/internal/planner"
	"github.com/kingrea/academic-planner/internal/store"
)

func findItem(t *testing.T, rep Report, name string) Item {
	t.Helper()
	for _, item := range rep.Items {
		if item.Name == name {
			return item
		}
	}
	t.Fatalf("item %q not in report: %+v", name, rep.Items)
	return Item{}
}

func TestCheckFreshDirectory(t *testing.T) {
	rep := Check(t.TempDir())
	if rep.IsValid() {
		t.Fatalf("uninitialized project should be invalid")
	}
	if got := findItem(t, rep, ".planner directory").Status; got != StatusMissing {
		t.Fatalf(".planner status = %s", got)
	}
	if got := findItem(t, rep, "planner data").Status; got != StatusWarn {
		t.Fatalf("data status = %s", got)
	}
}

func TestCheckInitializedProjectWithData(t *testing.T) {
	projectDir := t.TempDir()
	if err := config.InitPlannerDir(projectDir); err != nil {
		t.Fatal(err)
	}
	doc := planner.NewDocument()
	doc.Courses = append(doc.Courses, planner.Course{ID: "c1", Name: "Art", Credits: 2, TargetGrade: 80})
	if err := store.New(filepath.Join(projectDir, config.DefaultDataFile)).Save(doc); err != nil {
		t.Fatal(err)
	}
	rep := Check(projectDir)
	if !rep.IsValid() {
		t.Fatalf("expected valid report, got %+v", rep.Items)
	}
	data := findItem(t, rep, "planner data")
	if data.Status != StatusOK || !strings.Contains(data.Detail, "1 courses") {
		t.Fatalf("data item = %+v", data)
	}
}

func TestCheckFlagsMalformedData(t *testing.T) {
	projectDir := t.TempDir()
	if err := config.InitPlannerDir(projectDir); err != nil {
		t.Fatal(err)
	}
	bad := `{"courses": [{"id": "c1"}]}`
	if err := os.WriteFile(filepath.Join(projectDir, config.DefaultDataFile), []byte(bad), 0o644); err != nil {
		t.Fatal(err)
	}
	rep := Check(projectDir)
	if rep.IsValid() {
		t.Fatalf("malformed data should invalidate the report")
	}
	data := findItem(t, rep, "planner data")
	if data.Status != StatusFailed || !strings.Contains(data.Detail, "malformed") {
		t.Fatalf("data item = %+v", data)
	}
}
