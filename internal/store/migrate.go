package store

import (
	"cmp"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migration files are named NNN_description.up.sql.
var migrationName = regexp.MustCompile(`^(\d+)_(.+)\.up\.sql$`)

const createVersionTable = `
CREATE TABLE IF NOT EXISTS schema_migrations (
    version     INTEGER PRIMARY KEY,
    applied_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    description TEXT
)`

// Migration is one schema step.
type Migration struct {
	Version     int
	Description string
	UpSQL       string
}

// Migrator brings a SQLite recipe database up to the embedded schema.
type Migrator struct {
	db    *sql.DB
	files fs.FS
}

// NewMigrator returns a migrator for db using the embedded migrations.
func NewMigrator(db *sql.DB) *Migrator {
	return &Migrator{db: db, files: migrationsFS}
}

// LoadMigrations returns the known migrations ordered by version.
func (m *Migrator) LoadMigrations() ([]Migration, error) {
	names, err := fs.Glob(m.files, "migrations/*.up.sql")
	if err != nil {
		return nil, fmt.Errorf("listing migrations: %w", err)
	}

	migrations := make([]Migration, 0, len(names))
	seen := make(map[int]string, len(names))

	for _, name := range names {
		match := migrationName.FindStringSubmatch(path.Base(name))
		if match == nil {
			continue
		}

		version, err := strconv.Atoi(match[1])
		if err != nil {
			return nil, fmt.Errorf("migration %s: bad version: %w", name, err)
		}

		if other, dup := seen[version]; dup {
			return nil, fmt.Errorf("migrations %s and %s share version %d", other, name, version)
		}

		seen[version] = name

		body, err := fs.ReadFile(m.files, name)
		if err != nil {
			return nil, fmt.Errorf("reading migration %s: %w", name, err)
		}

		migrations = append(migrations, Migration{
			Version:     version,
			Description: strings.ReplaceAll(match[2], "_", " "),
			UpSQL:       string(body),
		})
	}

	slices.SortFunc(migrations, func(a, b Migration) int { return cmp.Compare(a.Version, b.Version) })

	return migrations, nil
}

// CurrentVersion returns the highest applied version, 0 for a new database.
func (m *Migrator) CurrentVersion() (int, error) {
	if _, err := m.db.Exec(createVersionTable); err != nil {
		return 0, fmt.Errorf("creating schema_migrations: %w", err)
	}

	var version int
	if err := m.db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&version); err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}

	return version, nil
}

// MigrateUp applies every migration newer than CurrentVersion, each in its
// own transaction together with its version row.
func (m *Migrator) MigrateUp() error {
	migrations, err := m.LoadMigrations()
	if err != nil {
		return err
	}

	current, err := m.CurrentVersion()
	if err != nil {
		return err
	}

	for _, mig := range migrations {
		if mig.Version <= current {
			continue
		}

		if err := m.apply(mig); err != nil {
			return fmt.Errorf("applying migration %d (%s): %w", mig.Version, mig.Description, err)
		}
	}

	return nil
}

func (m *Migrator) apply(mig Migration) error {
	tx, err := m.db.Begin()
	if err != nil {
		return err
	}

	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(mig.UpSQL); err != nil {
		return err
	}

	if _, err := tx.Exec(`INSERT INTO schema_migrations (version, description) VALUES (?, ?)`, mig.Version, mig.Description); err != nil {
		return err
	}

	return tx.Commit()
}
