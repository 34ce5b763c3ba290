package mediameta

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bogem/id3v2/v2"
)

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name     string
		info     Info
		fallback string
		want     string
	}{
		{
			name:     "title and artist",
			info:     Info{Title: "The Talk", Artist: "Jane Doe"},
			fallback: "upload.mp3",
			want:     "Jane Doe - The Talk",
		},
		{
			name:     "title only",
			info:     Info{Title: "The Talk"},
			fallback: "upload.mp3",
			want:     "The Talk",
		},
		{
			name:     "no tags",
			info:     Info{},
			fallback: "upload.mp3",
			want:     "upload.mp3",
		},
		{
			name:     "artist without title still falls back",
			info:     Info{Artist: "Jane Doe"},
			fallback: "upload.mp3",
			want:     "upload.mp3",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DisplayName(tt.info, tt.fallback); got != tt.want {
				t.Errorf("DisplayName = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtract_MP3(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tagged.mp3")
	if err := os.WriteFile(path, []byte("not real audio"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		t.Fatalf("Failed to open tag: %v", err)
	}
	tag.SetTitle("Quarterly Review")
	tag.SetArtist("Finance Team")
	if err := tag.Save(); err != nil {
		t.Fatalf("Failed to save tag: %v", err)
	}
	tag.Close()

	info, err := Extract(path)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if info.Title != "Quarterly Review" {
		t.Errorf("Expected title, got %q", info.Title)
	}
	if info.Artist != "Finance Team" {
		t.Errorf("Expected artist, got %q", info.Artist)
	}
}

func TestExtract_UnknownExtension(t *testing.T) {
	info, err := Extract("whatever.wav")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if info.Title != "" || info.Artist != "" {
		t.Errorf("Expected empty info, got %+v", info)
	}
}
