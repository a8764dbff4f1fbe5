package viewer

import (
	"testing"

	"filedeck/internal/repository"
)

func TestKindFor(t *testing.T) {
	tests := []struct {
		in   repository.FileType
		want Kind
	}{
		{repository.FileTypeVideo, KindVideo},
		{repository.FileTypeAudio, KindAudio},
		{repository.FileTypeDocument, KindDocument},
		{repository.FileTypeImage, KindImage},
		{repository.FileTypeUnknown, KindNone},
		{repository.FileType(""), KindNone},
	}

	for _, tt := range tests {
		if got := KindFor(tt.in); got != tt.want {
			t.Errorf("KindFor(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestDescribe_MediaFile(t *testing.T) {
	rec := repository.FileRecord{ID: 1, Name: "Trip", Type: repository.FileTypeVideo, Path: "/file-server/trip.mp4"}

	p := Describe(rec)
	if p.Kind != KindVideo || p.Path != rec.Path || p.Name != "Trip" || p.Type != repository.FileTypeVideo {
		t.Fatalf("unexpected preview %+v", p)
	}
	if p.Language != "" {
		t.Fatalf("media files carry no language hint, got %q", p.Language)
	}
}

func TestDescribe_UnknownFileGetsLanguageHint(t *testing.T) {
	rec := repository.FileRecord{ID: 2, Name: "entry point", Type: repository.FileTypeUnknown, Path: "/file-server/src/main.go"}

	p := Describe(rec)
	if p.Kind != KindNone {
		t.Fatalf("expected no viewer, got %s", p.Kind)
	}
	if p.Language != "Go" {
		t.Fatalf("expected Go language hint, got %q", p.Language)
	}
}

func TestDescribe_UnknownWithoutHint(t *testing.T) {
	p := Describe(repository.FileRecord{Name: "e.xyz", Type: repository.FileTypeUnknown, Path: "/file-server/e.xyz"})
	if p.Kind != KindNone {
		t.Fatalf("expected no viewer, got %s", p.Kind)
	}
}
