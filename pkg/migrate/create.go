package migrate

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"text/template"
	"time"
)

const versionLayout = "20060102150405"

var unsafeNameChars = regexp.MustCompile(`[^a-z0-9]+`)

var migrationTmpl = template.Must(template.New("migration").Parse(`-- +goose Up
-- +goose StatementBegin
-- {{.Name}}: portable SQL only, the fixture runs on SQLite and Postgres
-- +goose StatementEnd

-- +goose Down
-- +goose StatementBegin
-- undo {{.Name}}
-- +goose StatementEnd
`))

// CreateSQLMigration writes an empty goose migration to
// <dir>/<version>_<name>.sql and returns its path. The name must not already be
// used by another migration in dir.
func CreateSQLMigration(dir string, name string) (string, error) {
	return createSQLMigration(dir, name, time.Now().UTC())
}

func createSQLMigration(dir, name string, now time.Time) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("dir is required")
	}
	slug := migrationSlug(name)
	if slug == "" {
		return "", fmt.Errorf("migration name %q has no usable characters", name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir %q: %w", dir, err)
	}

	taken, err := filepath.Glob(filepath.Join(dir, "*_"+slug+".sql"))
	if err != nil {
		return "", err
	}
	if len(taken) > 0 {
		return "", fmt.Errorf("migration %q already exists: %s", slug, taken[0])
	}

	var body bytes.Buffer
	if err := migrationTmpl.Execute(&body, struct{ Name string }{slug}); err != nil {
		return "", fmt.Errorf("render migration: %w", err)
	}
	target := filepath.Join(dir, now.Format(versionLayout)+"_"+slug+".sql")
	if err := os.WriteFile(target, body.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("write migration %q: %w", target, err)
	}
	return target, nil
}

// migrationSlug lowercases name and collapses every run of other characters to
// a single underscore.
func migrationSlug(name string) string {
	slug := unsafeNameChars.ReplaceAllString(strings.ToLower(name), "_")
	return strings.Trim(slug, "_")
}
