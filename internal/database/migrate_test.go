package database

import (
	"strings"
	"testing"
)

func TestSplitStatements(t *testing.T) {
	t.Parallel()

	src := `-- header; with a semicolon
CREATE TABLE a (
	id INT
);

-- second
INSERT INTO a VALUES (1);
SELECT 1`
	got := splitStatements(src)
	if len(got) != 3 {
		t.Fatalf("expected 3 statements, got %d: %q", len(got), got)
	}
	if !strings.HasPrefix(got[0], "CREATE TABLE a (") || strings.HasSuffix(got[0], ";") {
		t.Fatalf("unexpected first statement %q", got[0])
	}
	if got[1] != "INSERT INTO a VALUES (1)" {
		t.Fatalf("unexpected second statement %q", got[1])
	}
	if got[2] != "SELECT 1" {
		t.Fatalf("unexpected trailing statement %q", got[2])
	}
}

func TestEmbeddedMigrationsParse(t *testing.T) {
	t.Parallel()

	raw, err := migrationFiles.ReadFile("migrations/001_init.sql")
	if err != nil {
		t.Fatalf("read embedded migration: %v", err)
	}
	stmts := splitStatements(string(raw))
	if len(stmts) != 3 {
		t.Fatalf("expected 3 statements in 001_init.sql, got %d", len(stmts))
	}
	for _, s := range stmts {
		if !strings.HasPrefix(s, "CREATE TABLE IF NOT EXISTS") {
			t.Fatalf("unexpected statement %q", s)
		}
	}
}

func TestDSN(t *testing.T) {
	t.Parallel()

	if got := DSN("app", "", "db", "3306", "events"); got != "app@tcp(db:3306)/events?charset=utf8mb4&parseTime=true&loc=UTC" {
		t.Fatalf("unexpected dsn %q", got)
	}
	if got := DSN("app", "pw", "db", "3306", "events"); !strings.HasPrefix(got, "app:pw@tcp(db:3306)/") {
		t.Fatalf("unexpected dsn %q", got)
	}
}
