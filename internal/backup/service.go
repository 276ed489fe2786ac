// Package backup writes compressed SQL dumps of the tracker database.
package backup

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
)

const fileSuffix = "_trackerdump.sql.gz"

// parent tables come before the tables referencing them so a restore with
// foreign keys enabled succeeds
var dumpOrder = []string{
	"app_user",
	"customer",
	"project",
	"project_note",
	"goal",
	"task",
	"session",
}

type Service struct {
	db  *sqlx.DB
	dir string
}

// NewService stores backups in a "backups" directory next to dbPath.
func NewService(db *sqlx.DB, dbPath string) *Service {
	return &Service{
		db:  db,
		dir: filepath.Join(filepath.Dir(dbPath), "backups"),
	}
}

// Result describes a completed backup.
type Result struct {
	Filename string
	Path     string
	Size     int64
	Rows     int
}

// Create snapshots the database with VACUUM INTO and writes a gzip
// compressed SQL dump of the snapshot.
func (s *Service) Create(ctx context.Context) (*Result, error) {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return nil, fmt.Errorf("create backup directory: %w", err)
	}

	filename := time.Now().UTC().Format("2006-01-02_15.04.05") + fileSuffix
	path := filepath.Join(s.dir, filename)

	snapshot := filepath.Join(s.dir, "snapshot.db")
	os.Remove(snapshot)
	defer os.Remove(snapshot)

	if _, err := s.db.ExecContext(ctx, `VACUUM INTO ?`, snapshot); err != nil {
		return nil, fmt.Errorf("vacuum into snapshot: %w", err)
	}

	src, err := sqlx.Open("sqlite3", snapshot+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	defer src.Close()

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create backup file: %w", err)
	}
	defer f.Close()

	gz := gzip.NewWriter(f)
	rows, err := writeDump(ctx, src, gz)
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("write dump: %w", err)
	}
	if err := gz.Close(); err != nil {
		return nil, fmt.Errorf("close gzip writer: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat backup file: %w", err)
	}

	return &Result{
		Filename: filename,
		Path:     path,
		Size:     info.Size(),
		Rows:     rows,
	}, nil
}

// Prune deletes all but the newest keep backups and returns the removed
// file names.
func (s *Service) Prune(keep int) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(s.dir, "*"+fileSuffix))
	if err != nil {
		return nil, err
	}
	if len(matches) <= keep {
		return nil, nil
	}

	// timestamped names sort chronologically
	sort.Strings(matches)

	var removed []string
	for _, m := range matches[:len(matches)-keep] {
		if err := os.Remove(m); err != nil {
			return removed, fmt.Errorf("remove %s: %w", filepath.Base(m), err)
		}
		removed = append(removed, filepath.Base(m))
	}
	return removed, nil
}

type schemaObject struct {
	Type string `db:"type"`
	Name string `db:"name"`
	SQL  string `db:"sql"`
}

func writeDump(ctx context.Context, db *sqlx.DB, w io.Writer) (int, error) {
	var schemas []schemaObject
	err := db.SelectContext(ctx, &schemas, `
		SELECT type, name, sql
		FROM sqlite_master
		WHERE sql IS NOT NULL
		  AND name NOT LIKE 'sqlite_%'
		ORDER BY CASE type WHEN 'table' THEN 1 WHEN 'index' THEN 2 ELSE 3 END, name
	`)
	if err != nil {
		return 0, fmt.Errorf("query schema: %w", err)
	}

	var appID int
	if err := db.GetContext(ctx, &appID, `PRAGMA application_id`); err != nil {
		return 0, fmt.Errorf("read application_id: %w", err)
	}

	fmt.Fprintf(w, "-- Customers Tracker database backup\n")
	fmt.Fprintf(w, "-- Generated: %s\n", time.Now().UTC().Format(time.RFC3339))
	fmt.Fprintf(w, "PRAGMA application_id=%d;\n", appID)
	fmt.Fprintf(w, "PRAGMA foreign_keys=ON;\n")
	fmt.Fprintf(w, "BEGIN TRANSACTION;\n\n")

	var tables []string
	for _, s := range schemas {
		if _, err := fmt.Fprintf(w, "%s;\n", s.SQL); err != nil {
			return 0, err
		}
		if s.Type == "table" {
			tables = append(tables, s.Name)
		}
	}
	fmt.Fprintln(w)

	total := 0
	for _, table := range orderTables(tables) {
		n, err := writeInserts(ctx, db, w, table)
		if err != nil {
			return 0, fmt.Errorf("dump %s: %w", table, err)
		}
		total += n
	}

	if _, err := fmt.Fprintf(w, "COMMIT;\n"); err != nil {
		return 0, err
	}
	return total, nil
}

// orderTables puts known tables in dependency order followed by any others
// (e.g. the migrations table) alphabetically.
func orderTables(tables []string) []string {
	present := make(map[string]bool, len(tables))
	for _, t := range tables {
		present[t] = true
	}

	out := make([]string, 0, len(tables))
	for _, t := range dumpOrder {
		if present[t] {
			out = append(out, t)
			delete(present, t)
		}
	}

	var rest []string
	for t := range present {
		rest = append(rest, t)
	}
	sort.Strings(rest)
	return append(out, rest...)
}

func writeInserts(ctx context.Context, db *sqlx.DB, w io.Writer, table string) (int, error) {
	rows, err := db.QueryxContext(ctx, fmt.Sprintf("SELECT * FROM %q ORDER BY rowid", table))
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return 0, err
	}
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = fmt.Sprintf("%q", c)
	}
	prefix := fmt.Sprintf("INSERT INTO %q (%s) VALUES (", table, strings.Join(quoted, ", "))

	n := 0
	for rows.Next() {
		row, err := rows.SliceScan()
		if err != nil {
			return n, err
		}
		values := make([]string, len(row))
		for i, v := range row {
			values[i] = formatValue(v)
		}
		if _, err := fmt.Fprintf(w, "%s%s);\n", prefix, strings.Join(values, ", ")); err != nil {
			return n, err
		}
		n++
	}
	if n > 0 {
		fmt.Fprintln(w)
	}
	return n, rows.Err()
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return quote(string(val))
	case string:
		return quote(val)
	case time.Time:
		return quote(val.UTC().Format("2006-01-02 15:04:05.999999999-07:00"))
	case bool:
		if val {
			return "1"
		}
		return "0"
	case int64, float64:
		return fmt.Sprintf("%v", val)
	default:
		return quote(fmt.Sprintf("%v", val))
	}
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
