package migrator

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Migration represents a database migration.
type Migration struct {
	Version       int
	Name          string
	UpSQL         string
	NoTransaction bool
}

var (
	filenameRegex = regexp.MustCompile(`^(\d{3})_([a-zA-Z0-9_-]+)\.sql$`)
	upMarkerRegex = regexp.MustCompile(`^--\s*\+migrate\s+Up(\s+notransaction)?\s*$`)
)

// ParseMigrationFile parses a single migration file and returns a Migration struct.
func ParseMigrationFile(path string) (*Migration, error) {
	// Parse filename
	filename := filepath.Base(path)
	matches := filenameRegex.FindStringSubmatch(filename)
	if matches == nil {
		return nil, fmt.Errorf("invalid migration filename format: %s (expected NNN_name.sql)", filename)
	}

	version, err := strconv.Atoi(matches[1])
	if err != nil {
		return nil, fmt.Errorf("invalid version number in filename: %s", matches[1])
	}

	name := matches[2]

	// Read file content
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read migration file: %w", err)
	}

	lines := strings.Split(string(content), "\n")

	// Find Up marker
	upMarkerLine := -1
	noTransaction := false

	for i, line := range lines {
		if m := upMarkerRegex.FindStringSubmatch(line); m != nil {
			upMarkerLine = i
			if strings.TrimSpace(m[1]) == "notransaction" {
				noTransaction = true
			}
			break
		}
	}

	if upMarkerLine == -1 {
		return nil, fmt.Errorf("missing '-- +migrate Up' marker in migration file: %s", filename)
	}

	upSQL := strings.TrimSpace(strings.Join(lines[upMarkerLine+1:], "\n"))
	if upSQL == "" {
		return nil, fmt.Errorf("migration file contains no SQL: %s", filename)
	}

	return &Migration{
		Version:       version,
		Name:          name,
		UpSQL:         upSQL,
		NoTransaction: noTransaction,
	}, nil
}

// LoadMigrations reads every migration file in dir and returns them sorted
// by version. Duplicate versions are an error.
func LoadMigrations(dir string) ([]Migration, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var migrations []Migration
	seen := make(map[int]string)

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		migration, err := ParseMigrationFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}

		if other, ok := seen[migration.Version]; ok {
			return nil, fmt.Errorf("duplicate migration version %d: %s and %s", migration.Version, other, entry.Name())
		}
		seen[migration.Version] = entry.Name()

		migrations = append(migrations, *migration)
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})

	return migrations, nil
}
