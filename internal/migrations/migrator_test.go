package migrations

import (
	"context"
	"strings"
	"testing"
	"testing/fstest"

	dbmigrations "filedeck/db/migrations"
)

func TestLoadMigrationFiles_SortedAndFiltered(t *testing.T) {
	files := fstest.MapFS{
		"0002_b.up.sql":   {Data: []byte("SELECT 2;")},
		"0001_a.up.sql":   {Data: []byte("SELECT 1;")},
		"0001_a.down.sql": {Data: []byte("SELECT 0;")},
		"README.md":       {Data: []byte("notes")},
	}

	migs, err := loadMigrationFiles(files)
	if err != nil {
		t.Fatalf("loadMigrationFiles returned error: %v", err)
	}
	if len(migs) != 2 || migs[0].Name != "0001_a.up.sql" || migs[1].Name != "0002_b.up.sql" {
		t.Fatalf("unexpected migrations %+v", migs)
	}
}

func TestLoadMigrationFiles_RejectsEmpty(t *testing.T) {
	files := fstest.MapFS{"0001_empty.up.sql": {Data: []byte("  \n")}}
	if _, err := loadMigrationFiles(files); err == nil {
		t.Fatal("expected error for empty migration")
	}
}

func TestPending(t *testing.T) {
	all := []migrationFile{{Name: "a"}, {Name: "b"}, {Name: "c"}}
	got := pending(all, map[string]bool{"b": true})
	if len(got) != 2 || got[0].Name != "a" || got[1].Name != "c" {
		t.Fatalf("unexpected pending %+v", got)
	}
}

func TestEmbeddedMigrations(t *testing.T) {
	migs, err := loadMigrationFiles(dbmigrations.UpFiles)
	if err != nil {
		t.Fatalf("loadMigrationFiles returned error: %v", err)
	}
	if len(migs) == 0 || !strings.Contains(migs[0].SQL, "seed_files") {
		t.Fatalf("expected seed_files migration first, got %+v", migs)
	}
}

func TestApplyFS_NilDB(t *testing.T) {
	if _, err := ApplyFS(context.Background(), nil, fstest.MapFS{}, nil); err == nil {
		t.Fatal("expected error for nil db")
	}
}
