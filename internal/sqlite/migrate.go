package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/GuiaBolso/darwin"
	_ "github.com/mattn/go-sqlite3"
)

// ApplicationID is the SQLite application_id for tracker databases.
// "CTRK" in ASCII: C=0x43, T=0x54, R=0x52, K=0x4B
const ApplicationID = 0x4354524B

// ErrInvalidDatabase is returned when the database does not belong to the tracker.
var ErrInvalidDatabase = errors.New("not a valid 'tracker' database")

// defineMigrations returns the schema history of the tracker database.
// Comments may only trail sql on a line (they are stripped before the checksum is taken).
// Never change or remove a released step: darwin stores a checksum of every script.
func defineMigrations() []darwin.Migration {
	m := []darwin.Migration{

		// Major version per release (1.xx, 2.xx), minor number per step. Versions must ascend.

		{Version: 1.00, Description: "Set application_id", Script: `
		PRAGMA application_id = 0x4354524B;`},

		{Version: 1.01, Description: "Create Table 'app_user'", Script: `
		CREATE TABLE IF NOT EXISTS app_user (
			user_id VARCHAR(36) PRIMARY KEY,
			email VARCHAR(255) NOT NULL UNIQUE COLLATE NOCASE,
			password_hash VARCHAR(60) NOT NULL,
			first_name VARCHAR(255) NOT NULL,
			last_name VARCHAR(255) NOT NULL,
			created_at DATETIME NOT NULL
		);`},

		{Version: 1.02, Description: "Create Table 'customer'", Script: `
		CREATE TABLE IF NOT EXISTS customer (
			customer_id VARCHAR(36) PRIMARY KEY,
			user_id VARCHAR(36) NOT NULL,
			first_name VARCHAR(255) NOT NULL DEFAULT '',
			last_name VARCHAR(255) NOT NULL DEFAULT '',
			email VARCHAR(255) NOT NULL DEFAULT '',
			phone VARCHAR(50) NOT NULL DEFAULT '',
			address VARCHAR(255) NOT NULL DEFAULT '',
			FOREIGN KEY (user_id) REFERENCES app_user (user_id) ON DELETE CASCADE
		);`},

		{Version: 1.03, Description: "Create Index 'idx_customer_user_id'", Script: `
		CREATE INDEX IF NOT EXISTS idx_customer_user_id ON customer (user_id ASC);`},

		{Version: 1.04, Description: "Create Table 'project'", Script: `
		CREATE TABLE IF NOT EXISTS project (
			project_id VARCHAR(36) PRIMARY KEY,
			customer_id VARCHAR(36) NOT NULL,
			project_name VARCHAR(255) NOT NULL DEFAULT '',
			dog_diagnosis TEXT NOT NULL DEFAULT '',
			dog_accessories TEXT NOT NULL DEFAULT '',
			dog_environmental_management TEXT NOT NULL DEFAULT '',
			dog_summary TEXT NOT NULL DEFAULT '',
			FOREIGN KEY (customer_id) REFERENCES customer (customer_id) ON DELETE CASCADE
		);`},

		{Version: 1.05, Description: "Create Index 'idx_project_customer_id'", Script: `
		CREATE INDEX IF NOT EXISTS idx_project_customer_id ON project (customer_id ASC);`},

		{Version: 1.06, Description: "Create Table 'project_note'", Script: `
		CREATE TABLE IF NOT EXISTS project_note (
			note_id VARCHAR(36) PRIMARY KEY,
			project_id VARCHAR(36) NOT NULL,
			position INTEGER NOT NULL,
			creation_time DATETIME,
			description TEXT NOT NULL DEFAULT '',
			FOREIGN KEY (project_id) REFERENCES project (project_id) ON DELETE CASCADE
		);`},

		{Version: 1.07, Description: "Create Index 'idx_project_note_project_id'", Script: `
		CREATE INDEX IF NOT EXISTS idx_project_note_project_id ON project_note (project_id ASC, position ASC);`},

		{Version: 1.08, Description: "Create Table 'goal'", Script: `
		CREATE TABLE IF NOT EXISTS goal (
			goal_id VARCHAR(36) PRIMARY KEY,
			project_id VARCHAR(36) NOT NULL,
			position INTEGER NOT NULL,
			title VARCHAR(255) NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			start_time DATETIME,
			end_time DATETIME,
			FOREIGN KEY (project_id) REFERENCES project (project_id) ON DELETE CASCADE
		);`},

		{Version: 1.09, Description: "Create Index 'idx_goal_project_id'", Script: `
		CREATE INDEX IF NOT EXISTS idx_goal_project_id ON goal (project_id ASC, position ASC);`},

		{Version: 1.10, Description: "Create Table 'task'", Script: `
		CREATE TABLE IF NOT EXISTS task (
			task_id VARCHAR(36) PRIMARY KEY,
			goal_id VARCHAR(36) NOT NULL,
			position INTEGER NOT NULL,
			title VARCHAR(255) NOT NULL DEFAULT '',
			completed INTEGER NOT NULL DEFAULT 0,
			FOREIGN KEY (goal_id) REFERENCES goal (goal_id) ON DELETE CASCADE
		);`},

		{Version: 1.11, Description: "Create Index 'idx_task_goal_id'", Script: `
		CREATE INDEX IF NOT EXISTS idx_task_goal_id ON task (goal_id ASC, position ASC);`},

		{Version: 1.12, Description: "Create Table 'session'", Script: `
		CREATE TABLE IF NOT EXISTS session (
			session_id VARCHAR(36) PRIMARY KEY,
			user_id VARCHAR(36) NOT NULL,
			created_at DATETIME NOT NULL,
			expires_at DATETIME NOT NULL,
			FOREIGN KEY (user_id) REFERENCES app_user (user_id) ON DELETE CASCADE
		);`},

		{Version: 1.13, Description: "Create Index 'idx_session_expires_at'", Script: `
		CREATE INDEX IF NOT EXISTS idx_session_expires_at ON session (expires_at ASC);`},
	}
	return m
}

// changes describes the version transition for the startup log
func changes(v1, v2 float64) string {
	if v1 == v2 {
		return fmt.Sprintf("DB Version: %.2f", v1)
	}
	return fmt.Sprintf("DB Version: %.2f (migrated from %.2f to %.2f)", v2, v1, v2)
}

// currentVersion returns the number of applied steps and the highest applied version
func currentVersion(db *sql.DB) (count int, ver float64, err error) {
	// a new database has no darwin table yet
	err = db.QueryRow(`select count(*) from sqlite_master where tbl_name = 'darwin_migrations';`).Scan(&count)
	if err != nil || count == 0 {
		return 0, 0, err
	}

	err = db.QueryRow(`select count(*), max(version) from darwin_migrations;`).Scan(&count, &ver)
	return count, ver, err
}

// minifiedMigrations returns the migrations with normalized scripts so that
// whitespace, case or comment edits do not change their checksums
func minifiedMigrations() []darwin.Migration {
	migrations := defineMigrations()
	for i := range migrations {
		migrations[i].Script = minify(migrations[i].Script)
	}
	return migrations
}

// minify lowercases the script, drops comments and collapses whitespace
func minify(script string) string {
	var b strings.Builder
	s := strings.ToLower(strings.ReplaceAll(script, "/*", "--"))
	for _, line := range strings.Split(s, "\n") {
		if i := strings.Index(line, "--"); i != -1 {
			line = line[:i]
		}
		b.WriteString(strings.TrimSpace(line) + "\n")
	}

	result := strings.ReplaceAll(b.String(), "\t", " ")
	for strings.Contains(result, "  ") {
		result = strings.ReplaceAll(result, "  ", " ")
	}
	return strings.TrimSpace(result)
}

// progress lists the steps darwin attempted during a failed run
func progress(ch <-chan darwin.MigrationInfo) string {
	var b strings.Builder
	for info := range ch {
		_, _ = fmt.Fprintf(&b, "v%.2f: %q (%s) Error: %v\n",
			info.Migration.Version, info.Migration.Description, info.Status.String(), info.Error)
	}
	return b.String()
}

// Schema returns the schema definitions for display.
func Schema() string {
	var b strings.Builder
	for _, m := range defineMigrations() {
		_, _ = fmt.Fprintf(&b, "-- %s (%.2f)\n%s\n\n", m.Description, m.Version, m.Script)
	}
	return b.String()
}

// VerifyApplicationID checks that the database belongs to the tracker.
// Empty databases (application_id 0 and no tables) are accepted.
func VerifyApplicationID(db *sql.DB) error {
	var appID int
	if err := db.QueryRow("PRAGMA application_id;").Scan(&appID); err != nil {
		return fmt.Errorf("read application_id: %w", err)
	}

	if appID == ApplicationID {
		return nil
	}
	if appID != 0 {
		return fmt.Errorf("%w (application_id 0x%X)", ErrInvalidDatabase, appID)
	}

	var tableCount int
	err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%'`).Scan(&tableCount)
	if err != nil {
		return fmt.Errorf("check tables: %w", err)
	}
	if tableCount > 0 {
		return fmt.Errorf("%w (has tables but no application_id)", ErrInvalidDatabase)
	}

	return nil
}

// RunMigrations brings an open database up to the current schema version.
func RunMigrations(db *sql.DB) error {
	if err := VerifyApplicationID(db); err != nil {
		return err
	}

	count, v1, err := currentVersion(db)
	if err != nil {
		return err
	}

	migrations := minifiedMigrations()
	if count == len(migrations) && v1 == migrations[count-1].Version {
		log.Printf("Database version %.2f is current, no migrations needed", v1)
		return nil
	}

	driver := darwin.NewGenericDriver(db, darwin.SqliteDialect{})
	infoChan := make(chan darwin.MigrationInfo, len(migrations))
	d := darwin.New(driver, migrations, infoChan)

	if err := d.Migrate(); err != nil {
		close(infoChan)
		_, v2, _ := currentVersion(db)
		prog := progress(infoChan)
		log.Printf("migration (was v%.2f now v%.2f): %v (%s)", v1, v2, err, prog)
		return fmt.Errorf("migration error: %w\n%s", err, prog)
	}
	close(infoChan)

	_, v2, err := currentVersion(db)
	if err != nil {
		return err
	}

	log.Print(changes(v1, v2))
	return nil
}
