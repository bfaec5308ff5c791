package storage

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
)

func setupKV(t *testing.T) *SQLiteKV {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "todoit-test.db")
	kv, err := OpenSQLite(dbPath)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = kv.Close() })
	return kv
}

func TestKVRoundTrip(t *testing.T) {
	kv := setupKV(t)
	ctx := context.Background()

	if err := kv.Set(ctx, KeyTheme, []byte(`"dark"`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := kv.Get(ctx, KeyTheme)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != `"dark"` {
		t.Fatalf("unexpected value: %s", got)
	}

	if err := kv.Set(ctx, KeyTheme, []byte(`"light"`)); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, err = kv.Get(ctx, KeyTheme)
	if err != nil {
		t.Fatalf("get after overwrite: %v", err)
	}
	if string(got) != `"light"` {
		t.Fatalf("overwrite not applied: %s", got)
	}
}

func TestKVMissingKey(t *testing.T) {
	kv := setupKV(t)
	ctx := context.Background()

	_, err := kv.Get(ctx, KeyTasks)
	if err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got: %v", err)
	}
}

func TestKVDelete(t *testing.T) {
	kv := setupKV(t)
	ctx := context.Background()

	if err := kv.Set(ctx, KeyTasks, []byte(`[]`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := kv.Delete(ctx, KeyTasks); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := kv.Get(ctx, KeyTasks); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound after delete, got: %v", err)
	}
	// Deleting an absent key is a no-op.
	if err := kv.Delete(ctx, KeyTasks); err != nil {
		t.Fatalf("delete absent key: %v", err)
	}
}

func TestMigrateDownDropsSchema(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "todoit-test.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := MigrateUp(db); err != nil {
		t.Fatalf("migrate up: %v", err)
	}
	if err := MigrateDown(db); err != nil {
		t.Fatalf("migrate down: %v", err)
	}
	if _, err := db.Exec(`SELECT value FROM kv`); err == nil {
		t.Fatal("expected query against dropped table to fail")
	}
}
