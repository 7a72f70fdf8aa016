package migrate

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"regexp"
	"strings"

	"github.com/angelmondragon/storefront/pkg/db/models"
)

const (
	markerUp             = "-- +goose Up"
	markerDown           = "-- +goose Down"
	markerStatementBegin = "-- +goose StatementBegin"
	markerStatementEnd   = "-- +goose StatementEnd"
)

var sqlFileRe = regexp.MustCompile(`^(\d{14})_[a-z0-9_]+\.sql$`)

// RequiredTables are the tables the cart storage backend reads and writes.
func RequiredTables() []string {
	return []string{models.CartBlob{}.TableName()}
}

// ValidateDir checks the migrations of a source directory.
func ValidateDir(dir string, requiredTables ...string) error {
	if dir == "" {
		return fmt.Errorf("dir is required")
	}
	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("read dir %q: %w", dir, err)
	}
	return Validate(os.DirFS(dir), requiredTables...)
}

// Validate checks every migration in fsys: goose file naming, unique versions,
// an Up section ahead of its Down section and balanced statement blocks. Each
// required table must be created by some migration.
func Validate(fsys fs.FS, requiredTables ...string) error {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}

	seen := map[string]string{}
	var created strings.Builder
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || path.Ext(name) != ".sql" {
			continue
		}

		m := sqlFileRe.FindStringSubmatch(name)
		if m == nil {
			return fmt.Errorf("invalid migration filename %q (expected YYYYMMDDHHMMSS_name.sql)", name)
		}
		if prev, ok := seen[m[1]]; ok {
			return fmt.Errorf("duplicate migration version %s in %q and %q", m[1], prev, name)
		}
		seen[m[1]] = name

		b, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("read file %q: %w", name, err)
		}
		up, err := checkMarkers(name, string(b))
		if err != nil {
			return err
		}
		created.WriteString(strings.ToLower(up))
	}

	for _, table := range requiredTables {
		if !strings.Contains(created.String(), "create table if not exists "+strings.ToLower(table)) {
			return fmt.Errorf("no migration creates table %q", table)
		}
	}
	return nil
}

// checkMarkers validates the goose annotations and returns the Up section.
func checkMarkers(name, txt string) (string, error) {
	upAt := strings.Index(txt, markerUp)
	downAt := strings.Index(txt, markerDown)
	switch {
	case upAt < 0:
		return "", fmt.Errorf("migration %q missing %q", name, markerUp)
	case downAt < 0:
		return "", fmt.Errorf("migration %q missing %q", name, markerDown)
	case downAt < upAt:
		return "", fmt.Errorf("migration %q has Down before Up", name)
	}

	depth := 0
	for _, line := range strings.Split(txt, "\n") {
		switch strings.TrimSpace(line) {
		case markerStatementBegin:
			depth++
		case markerStatementEnd:
			depth--
		}
		if depth < 0 || depth > 1 {
			return "", fmt.Errorf("migration %q has unbalanced statement blocks", name)
		}
	}
	if depth != 0 {
		return "", fmt.Errorf("migration %q has an unterminated statement block", name)
	}
	return txt[upAt:downAt], nil
}
