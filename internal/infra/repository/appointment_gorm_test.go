package repository

import (
	"strings"
	"testing"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newDryRunDB opens the postgres dialector without touching a server:
// statements are built, never executed.
func newDryRunDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=localhost user=clinic dbname=clinic",
	}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
	})
	if err != nil {
		t.Fatalf("open dialector: %v", err)
	}
	return db
}

func TestConflictQuerySQL(t *testing.T) {
	db := newDryRunDB(t)
	day := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)

	t.Run("LockRidesRowSelectNotAggregate", func(t *testing.T) {
		var ids []uint
		stmt := lockConflictingIDs(db.Session(&gorm.Session{NewDB: true}), 1, day, "10:00 AM", &ids).Statement

		sql := stmt.SQL.String()
		if !strings.Contains(sql, "FOR UPDATE") {
			t.Errorf("pre-check does not lock rows: %s", sql)
		}
		if strings.Contains(strings.ToLower(sql), "count(") {
			t.Errorf("FOR UPDATE combined with an aggregate, postgres rejects this: %s", sql)
		}
	})

	t.Run("CancelledRowsDoNotConflict", func(t *testing.T) {
		var ids []uint
		stmt := lockConflictingIDs(db.Session(&gorm.Session{NewDB: true}), 1, day, "10:00 AM", &ids).Statement

		if !strings.Contains(stmt.SQL.String(), "status <> ") {
			t.Fatalf("pre-check does not exclude a status: %s", stmt.SQL.String())
		}

		found := false
		for _, v := range stmt.Vars {
			if v == "cancelled" {
				found = true
			}
		}
		if !found {
			t.Errorf("excluded status is not cancelled: %v", stmt.Vars)
		}
	})

	t.Run("ScopeFiltersOnSlotTriple", func(t *testing.T) {
		var count int64
		stmt := conflictScope(db.Session(&gorm.Session{NewDB: true}), 1, day, "10:00 AM").
			Count(&count).Statement

		sql := stmt.SQL.String()
		for _, col := range []string{"doctor_id", "date", "time_slot"} {
			if !strings.Contains(sql, col) {
				t.Errorf("conflict scope misses %s: %s", col, sql)
			}
		}
	})
}
