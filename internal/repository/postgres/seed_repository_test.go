package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"filedeck/internal/repository"
)

type fakeRow struct {
	values []any
	err    error
}

func (f fakeRow) Scan(dest ...any) error {
	if f.err != nil {
		return f.err
	}
	if len(dest) != len(f.values) {
		return errors.New("column count mismatch")
	}
	for i, d := range dest {
		switch p := d.(type) {
		case *int64:
			*p = f.values[i].(int64)
		case *string:
			*p = f.values[i].(string)
		case *sql.NullString:
			if f.values[i] == nil {
				*p = sql.NullString{}
			} else {
				*p = sql.NullString{String: f.values[i].(string), Valid: true}
			}
		default:
			return errors.New("unexpected destination")
		}
	}
	return nil
}

func TestScanFileRecord(t *testing.T) {
	rec, err := scanFileRecord(fakeRow{values: []any{int64(7), "Clip", " VIDEO ", "/file-server/clip.mp4"}})
	if err != nil {
		t.Fatalf("scanFileRecord returned error: %v", err)
	}
	if rec.ID != 7 || rec.Name != "Clip" || rec.Path != "/file-server/clip.mp4" {
		t.Fatalf("unexpected record %+v", rec)
	}
	if rec.Type != repository.FileTypeVideo {
		t.Fatalf("expected normalized video type, got %q", rec.Type)
	}
}

func TestScanFileRecord_NullType(t *testing.T) {
	rec, err := scanFileRecord(fakeRow{values: []any{int64(1), "a", nil, "/file-server/a.bin"}})
	if err != nil {
		t.Fatalf("scanFileRecord returned error: %v", err)
	}
	if rec.Type != "" {
		t.Fatalf("null type should stay empty, got %q", rec.Type)
	}
}

func TestScanFileRecord_Error(t *testing.T) {
	if _, err := scanFileRecord(fakeRow{err: sql.ErrNoRows}); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestLoadSeed_NotInitialized(t *testing.T) {
	var repo *SeedRepository
	if _, err := repo.LoadSeed(context.Background()); err == nil {
		t.Fatal("expected error for nil repository")
	}
}
