package testsupport

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/goliatone/go-skillsnap/portfolio"
)

// FixturePath is the path of filename under the package testdata directory.
func FixturePath(filename string) string {
	return filepath.Join("testdata", filename)
}

// LoadJSON decodes the JSON fixture at path into a T.
func LoadJSON[T any](t testing.TB, path string) T {
	t.Helper()

	var out T
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to load fixture from %s: %v", path, err)
	}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("failed to unmarshal JSON fixture from %s: %v", path, err)
	}
	return out
}

// LoadProjects reads a project list fixture and assigns every project to userID.
func LoadProjects(t testing.TB, path string, userID int64) []portfolio.Project {
	t.Helper()

	projects := LoadJSON[[]portfolio.Project](t, path)
	for i := range projects {
		projects[i].PortfolioUserID = userID
	}
	return projects
}
