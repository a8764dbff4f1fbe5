package repository

import "testing"

func TestDetectFileType(t *testing.T) {
	tests := []struct {
		name string
		want FileType
	}{
		{"clip.mp4", FileTypeVideo},
		{"CLIP.MOV", FileTypeVideo},
		{"a.avi", FileTypeVideo},
		{"a.mkv", FileTypeVideo},
		{"song.mp3", FileTypeAudio},
		{"song.Wav", FileTypeAudio},
		{"memo.m4a", FileTypeAudio},
		{"report.pdf", FileTypeDocument},
		{"report.doc", FileTypeDocument},
		{"report.DOCX", FileTypeDocument},
		{"pic.jpg", FileTypeImage},
		{"pic.jpeg", FileTypeImage},
		{"pic.png", FileTypeImage},
		{"pic.HEIC", FileTypeImage},
		{"archive.tar.gz", FileTypeUnknown},
		{"e.xyz", FileTypeUnknown},
		{"README", FileTypeUnknown},
		{"mp4", FileTypeVideo},
		{"trailing.", FileTypeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectFileType(tt.name); got != tt.want {
				t.Errorf("DetectFileType(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestFileType_Valid(t *testing.T) {
	for _, ft := range append(KnownFileTypes, FileTypeUnknown) {
		if !ft.Valid() {
			t.Errorf("%q should be valid", ft)
		}
	}
	if FileType("all").Valid() {
		t.Error(`"all" is a filter, not a file type`)
	}
}
