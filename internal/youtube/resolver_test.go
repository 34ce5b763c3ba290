package youtube

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nobita6986/BatchTranscriber/internal/domain"
)

func TestExtractVideoID(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		want    string
		wantErr bool
	}{
		{
			name: "standard watch url",
			url:  "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
			want: "dQw4w9WgXcQ",
		},
		{
			name: "watch url with extra params",
			url:  "https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=42s",
			want: "dQw4w9WgXcQ",
		},
		{
			name: "v param not first",
			url:  "https://www.youtube.com/watch?list=PL123&v=dQw4w9WgXcQ",
			want: "dQw4w9WgXcQ",
		},
		{
			name: "short link",
			url:  "https://youtu.be/dQw4w9WgXcQ",
			want: "dQw4w9WgXcQ",
		},
		{
			name: "short link with params",
			url:  "https://youtu.be/dQw4w9WgXcQ?si=abc",
			want: "dQw4w9WgXcQ",
		},
		{
			name: "embed url",
			url:  "https://www.youtube.com/embed/dQw4w9WgXcQ",
			want: "dQw4w9WgXcQ",
		},
		{
			name: "shorts url",
			url:  "https://www.youtube.com/shorts/dQw4w9WgXcQ",
			want: "dQw4w9WgXcQ",
		},
		{
			name:    "empty",
			url:     "",
			wantErr: true,
		},
		{
			name:    "not a youtube url",
			url:     "https://example.com/watch?v=nope",
			wantErr: true,
		},
		{
			name:    "id too short",
			url:     "https://www.youtube.com/watch?v=short",
			wantErr: true,
		},
		{
			name:    "plain text",
			url:     "hello world",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractVideoID(tt.url)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Expected error for %q, got id %q", tt.url, got)
				}
				if !errors.Is(err, domain.ErrInvalidURL) {
					t.Errorf("Expected ErrInvalidURL, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ExtractVideoID(%q) failed: %v", tt.url, err)
			}
			if got != tt.want {
				t.Errorf("Expected id %q, got %q", tt.want, got)
			}
		})
	}
}

func TestWatchAndThumbnailURL(t *testing.T) {
	if got := WatchURL("dQw4w9WgXcQ"); got != "https://www.youtube.com/watch?v=dQw4w9WgXcQ" {
		t.Errorf("Unexpected watch url: %s", got)
	}
	if got := ThumbnailURL("dQw4w9WgXcQ"); got != "https://img.youtube.com/vi/dQw4w9WgXcQ/hqdefault.jpg" {
		t.Errorf("Unexpected thumbnail url: %s", got)
	}
}

func TestMetadata(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("format") != "json" {
			t.Errorf("Expected format=json, got %s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"title":"A Real Title","author_name":"Someone","thumbnail_url":"https://cdn.example/t.jpg"}`))
	}))
	defer srv.Close()

	r := NewResolver(nil, nil)
	r.endpoint = srv.URL

	meta, err := r.Metadata(context.Background(), "https://youtu.be/dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("Metadata failed: %v", err)
	}
	if meta.Title != "A Real Title" {
		t.Errorf("Expected fetched title, got %q", meta.Title)
	}
	if meta.Author != "Someone" {
		t.Errorf("Expected author, got %q", meta.Author)
	}
}

func TestMetadata_DegradesToSyntheticTitle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer srv.Close()

	r := NewResolver(nil, nil)
	r.endpoint = srv.URL

	meta, err := r.Metadata(context.Background(), "https://youtu.be/dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("Expected degraded metadata, got error: %v", err)
	}
	if meta.Title != "YouTube Video (dQw4w9WgXcQ)" {
		t.Errorf("Expected synthetic title, got %q", meta.Title)
	}
	if meta.Thumbnail != ThumbnailURL("dQw4w9WgXcQ") {
		t.Errorf("Expected derived thumbnail, got %q", meta.Thumbnail)
	}
}

func TestMetadata_InvalidURLStillFails(t *testing.T) {
	r := NewResolver(nil, nil)
	if _, err := r.Metadata(context.Background(), "https://example.com/nope"); !errors.Is(err, domain.ErrInvalidURL) {
		t.Errorf("Expected ErrInvalidURL, got %v", err)
	}
}
