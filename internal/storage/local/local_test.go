package local

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"filedeck/internal/storage"
)

func TestStore_Read(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "sub", "a.mp3"), []byte("audio"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	store := NewStore(dir)
	rc, err := store.Read(context.Background(), "sub/a.mp3")
	if err != nil {
		t.Fatalf("Read returned error: %v", err)
	}
	defer rc.Close()

	body, _ := io.ReadAll(rc)
	if string(body) != "audio" {
		t.Fatalf("unexpected content %q", body)
	}
}

func TestStore_ReadMissingAndDirectory(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	if _, err := store.Read(context.Background(), "missing.mp3"); !errors.Is(err, storage.ErrObjectNotFound) {
		t.Fatalf("expected ErrObjectNotFound, got %v", err)
	}
	if err := os.Mkdir(filepath.Join(dir, "folder"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if _, err := store.Read(context.Background(), "folder"); !errors.Is(err, storage.ErrObjectNotFound) {
		t.Fatalf("expected ErrObjectNotFound for directory, got %v", err)
	}
}

func TestStore_ReadStaysInsideBaseDir(t *testing.T) {
	parent := t.TempDir()
	base := filepath.Join(parent, "base")
	if err := os.Mkdir(base, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(parent, "secret.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	store := NewStore(base)
	if _, err := store.Read(context.Background(), "../secret.txt"); !errors.Is(err, storage.ErrObjectNotFound) {
		t.Fatalf("expected traversal to be contained, got %v", err)
	}
}

func TestStore_ReadCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewStore(t.TempDir()).Read(ctx, "a"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
