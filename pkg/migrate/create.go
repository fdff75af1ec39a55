package migrate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"text/template"

	"github.com/pressly/goose/v3"
)

var nameSanitizeRe = regexp.MustCompile(`[^a-z0-9]+`)

// sqlTemplate wraps both directions in statement blocks.
var sqlTemplate = template.Must(template.New("shophub.sql").Parse(`-- +goose Up
-- +goose StatementBegin
SELECT 'up SQL query';
-- +goose StatementEnd

-- +goose Down
-- +goose StatementBegin
SELECT 'down SQL query';
-- +goose StatementEnd
`))

// CreateSQLMigration writes <dir>/<YYYYMMDDHHMMSS>_<name>.sql through goose
// and returns its path. Names are snake_cased; reusing the name of an
// existing migration is rejected.
func CreateSQLMigration(dir string, name string) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("dir is required")
	}
	safe := strings.Trim(nameSanitizeRe.ReplaceAllString(strings.ToLower(name), "_"), "_")
	if safe == "" {
		return "", fmt.Errorf("name %q results in empty sanitized filename", name)
	}

	pattern := filepath.Join(dir, "*_"+safe+".sql")
	if existing, _ := filepath.Glob(pattern); len(existing) > 0 {
		return "", fmt.Errorf("migration named %q already exists: %s", safe, filepath.Base(existing[0]))
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir %q: %w", dir, err)
	}

	goose.SetSequential(false)
	if err := goose.CreateWithTemplate(nil, dir, sqlTemplate, safe, "sql"); err != nil {
		return "", fmt.Errorf("goose create: %w", err)
	}

	created, err := filepath.Glob(pattern)
	if err != nil || len(created) != 1 {
		return "", fmt.Errorf("locate created migration %q", safe)
	}
	return created[0], nil
}
