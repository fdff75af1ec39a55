package migrate

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"regexp"
	"strings"
)

var sqlFileRe = regexp.MustCompile(`^(\d{14})_[a-z0-9_]+\.sql$`)

const (
	annotationUp        = "-- +goose Up"
	annotationDown      = "-- +goose Down"
	annotationStmtBegin = "-- +goose StatementBegin"
	annotationStmtEnd   = "-- +goose StatementEnd"
)

// ValidateDir checks the migrations in a directory on disk.
func ValidateDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("dir is required")
	}
	return ValidateFS(os.DirFS(dir), ".")
}

// ValidateFS checks filenames, version uniqueness and goose annotations of
// every .sql file under dir.
func ValidateFS(fsys fs.FS, dir string) error {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return fmt.Errorf("read dir %q: %w", dir, err)
	}

	versions := make(map[string]string)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".sql") {
			continue
		}
		match := sqlFileRe.FindStringSubmatch(name)
		if match == nil {
			return fmt.Errorf("invalid migration filename %q (expected YYYYMMDDHHMMSS_name.sql)", name)
		}
		if prev, dup := versions[match[1]]; dup {
			return fmt.Errorf("duplicate migration version %s in %q and %q", match[1], prev, name)
		}
		versions[match[1]] = name

		body, err := fs.ReadFile(fsys, path.Join(dir, name))
		if err != nil {
			return fmt.Errorf("read file %q: %w", name, err)
		}
		if err := checkAnnotations(string(body)); err != nil {
			return fmt.Errorf("migration %q: %w", name, err)
		}
	}

	if len(versions) == 0 {
		return fmt.Errorf("no migrations found in %q", dir)
	}
	return nil
}

// checkAnnotations requires an Up section before a Down section and
// balanced statement blocks.
func checkAnnotations(sql string) error {
	up := strings.Index(sql, annotationUp)
	down := strings.Index(sql, annotationDown)
	switch {
	case up < 0:
		return fmt.Errorf("missing %q", annotationUp)
	case down < 0:
		return fmt.Errorf("missing %q", annotationDown)
	case down < up:
		return fmt.Errorf("%q must precede %q", annotationUp, annotationDown)
	}

	open := false
	for _, line := range strings.Split(sql, "\n") {
		switch strings.TrimSpace(line) {
		case annotationStmtBegin:
			if open {
				return fmt.Errorf("nested %q", annotationStmtBegin)
			}
			open = true
		case annotationStmtEnd:
			if !open {
				return fmt.Errorf("%q without matching begin", annotationStmtEnd)
			}
			open = false
		}
	}
	if open {
		return fmt.Errorf("unterminated %q", annotationStmtBegin)
	}
	return nil
}
