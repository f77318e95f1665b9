// Package migration applies versioned SQL files (V<N>__<name>.sql) to
// Postgres at startup, tracking what ran in a schema_migrations table.
package migration

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"hash/fnv"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Runner applies all pending migrations found in Dir. When Dir is
// empty it falls back to a "migrations" directory next to the binary.
type Runner struct {
	Dir string
}

type migrationFile struct {
	Version  int64
	Name     string
	Filename string
	SQL      string
	Checksum string
}

var migrationNameRe = regexp.MustCompile(`^V(\d+)__([A-Za-z0-9_.-]+)\.sql$`)

// lockKey serializes concurrent deploys applying the same migrations.
var lockKey = func() int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte("sharespace.schema_migrations"))
	return int64(h.Sum64() >> 1)
}()

func (r Runner) Run(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("migration runner requires a db")
	}

	dir := strings.TrimSpace(r.Dir)
	if dir == "" {
		exe, err := os.Executable()
		if err != nil {
			return err
		}
		dir = filepath.Join(filepath.Dir(exe), "migrations")
	}

	files, err := readMigrationDir(dir)
	if err != nil || len(files) == 0 {
		return err
	}

	if _, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS schema_migrations (
	version BIGINT PRIMARY KEY,
	name TEXT NOT NULL,
	checksum TEXT NOT NULL,
	applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`); err != nil {
		return err
	}

	if _, err := db.ExecContext(ctx, `SELECT pg_advisory_lock($1)`, lockKey); err != nil {
		return err
	}
	defer func() {
		_, _ = db.ExecContext(context.Background(), `SELECT pg_advisory_unlock($1)`, lockKey)
	}()

	applied, err := appliedChecksums(ctx, db)
	if err != nil {
		return err
	}

	for _, f := range files {
		if sum, ok := applied[f.Version]; ok {
			if sum != f.Checksum {
				return fmt.Errorf("migration %s changed after being applied (checksum mismatch)", f.Filename)
			}
			continue
		}
		if err := apply(ctx, db, f); err != nil {
			return err
		}
	}
	return nil
}

func readMigrationDir(dir string) ([]migrationFile, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	seen := map[int64]string{}
	var files []migrationFile
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		f, ok, err := parseMigrationFile(dir, e.Name())
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if prev, dup := seen[f.Version]; dup {
			return nil, fmt.Errorf("migration version %d used by both %s and %s", f.Version, prev, f.Filename)
		}
		seen[f.Version] = f.Filename
		files = append(files, f)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Version < files[j].Version })
	return files, nil
}

func parseMigrationFile(dir, name string) (migrationFile, bool, error) {
	m := migrationNameRe.FindStringSubmatch(name)
	if m == nil {
		return migrationFile{}, false, nil
	}
	version, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return migrationFile{}, false, fmt.Errorf("bad migration version in %s", name)
	}

	b, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return migrationFile{}, false, err
	}
	stmt := strings.TrimSpace(string(b))
	if stmt == "" {
		return migrationFile{}, false, fmt.Errorf("migration %s is empty", name)
	}

	sum := sha256.Sum256([]byte(stmt))
	return migrationFile{
		Version:  version,
		Name:     m[2],
		Filename: name,
		SQL:      stmt,
		Checksum: hex.EncodeToString(sum[:]),
	}, true, nil
}

func appliedChecksums(ctx context.Context, db *sql.DB) (map[int64]string, error) {
	rows, err := db.QueryContext(ctx, `SELECT version, checksum FROM schema_migrations`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[int64]string{}
	for rows.Next() {
		var version int64
		var checksum string
		if err := rows.Scan(&version, &checksum); err != nil {
			return nil, err
		}
		out[version] = checksum
	}
	return out, rows.Err()
}

func apply(ctx context.Context, db *sql.DB, f migrationFile) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, f.SQL); err != nil {
		return fmt.Errorf("apply %s: %w", f.Filename, err)
	}
	if _, err := tx.ExecContext(
		ctx,
		`INSERT INTO schema_migrations (version, name, checksum, applied_at) VALUES ($1, $2, $3, $4)`,
		f.Version, f.Name, f.Checksum, time.Now().UTC(),
	); err != nil {
		return err
	}
	return tx.Commit()
}
