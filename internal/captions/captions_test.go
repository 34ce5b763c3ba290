package captions

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/nobita6986/BatchTranscriber/internal/domain"
	"github.com/nobita6986/BatchTranscriber/internal/httpclient"
	"github.com/nobita6986/BatchTranscriber/internal/logger"
)

const testVideoURL = "https://www.youtube.com/watch?v=dQw4w9WgXcQ"

// stubStrategy records invocations and returns a canned result.
type stubStrategy struct {
	name   string
	text   string
	err    error
	called int
}

func (s *stubStrategy) Name() string { return s.name }

func (s *stubStrategy) Acquire(ctx context.Context, videoID string) (string, error) {
	s.called++
	return s.text, s.err
}

func newTestFetcher(strategies ...Strategy) *Fetcher {
	f := NewFetcher(httpclient.NewClient(nil, 0), logger.Default())
	f.free = strategies
	return f
}

func TestFetcher_FirstSuccessWins(t *testing.T) {
	first := &stubStrategy{name: "first", text: "hello from first"}
	second := &stubStrategy{name: "second", text: "never used"}

	f := newTestFetcher(first, second)
	text, err := f.Fetch(context.Background(), testVideoURL, "")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if text != "hello from first" {
		t.Errorf("Expected first strategy's text, got %q", text)
	}
	if second.called != 0 {
		t.Errorf("Second strategy should not run after a success, called %d times", second.called)
	}
}

func TestFetcher_FallsThroughFailures(t *testing.T) {
	first := &stubStrategy{name: "first", err: errors.New("boom")}
	second := &stubStrategy{name: "second", text: "recovered"}

	f := newTestFetcher(first, second)
	text, err := f.Fetch(context.Background(), testVideoURL, "")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if text != "recovered" {
		t.Errorf("Expected second strategy's text, got %q", text)
	}
	if first.called != 1 {
		t.Errorf("Expected first strategy to be tried once, got %d", first.called)
	}
}

func TestFetcher_EmptyResultCountsAsFailure(t *testing.T) {
	first := &stubStrategy{name: "first", text: ""}
	second := &stubStrategy{name: "second", text: "from second"}

	f := newTestFetcher(first, second)
	text, err := f.Fetch(context.Background(), testVideoURL, "")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if text != "from second" {
		t.Errorf("Expected fallthrough on empty text, got %q", text)
	}
}

func TestFetcher_AllFailAggregatesLastError(t *testing.T) {
	first := &stubStrategy{name: "first", err: errors.New("first broke")}
	second := &stubStrategy{name: "second", err: errors.New("second broke")}

	f := newTestFetcher(first, second)
	_, err := f.Fetch(context.Background(), testVideoURL, "")
	if err == nil {
		t.Fatal("Expected error when every strategy fails")
	}
	if !errors.Is(err, domain.ErrAllStrategiesFailed) {
		t.Errorf("Expected ErrAllStrategiesFailed, got %v", err)
	}
	if !strings.Contains(err.Error(), "second broke") {
		t.Errorf("Expected last failure message in error, got %q", err.Error())
	}
}

func TestFetcher_InvalidURLFailsFast(t *testing.T) {
	first := &stubStrategy{name: "first", text: "unused"}

	f := newTestFetcher(first)
	_, err := f.Fetch(context.Background(), "not a url", "")
	if !errors.Is(err, domain.ErrInvalidURL) {
		t.Fatalf("Expected ErrInvalidURL, got %v", err)
	}
	if first.called != 0 {
		t.Error("No strategy should run for an invalid url")
	}
}

func TestPremiumStrategy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("engine") != "youtube_transcripts" {
			t.Errorf("Expected engine=youtube_transcripts, got %s", q.Get("engine"))
		}
		if q.Get("video_id") != "dQw4w9WgXcQ" {
			t.Errorf("Unexpected video_id %s", q.Get("video_id"))
		}
		switch q.Get("api_key") {
		case "good":
			fmt.Fprint(w, `{"transcripts":[{"text":"hello "},{"text":" world"}]}`)
		case "empty":
			fmt.Fprint(w, `{"transcripts":[]}`)
		default:
			http.Error(w, "unauthorized", http.StatusUnauthorized)
		}
	}))
	defer srv.Close()

	client := httpclient.NewClient(srv.Client(), 0)
	log := logger.Default()

	t.Run("joins fragments", func(t *testing.T) {
		s := NewPremiumStrategy(client, "good", log)
		s.endpoint = srv.URL
		text, err := s.Acquire(context.Background(), "dQw4w9WgXcQ")
		if err != nil {
			t.Fatalf("Acquire failed: %v", err)
		}
		if text != "hello world" {
			t.Errorf("Expected joined transcript, got %q", text)
		}
	})

	t.Run("rejected key", func(t *testing.T) {
		s := NewPremiumStrategy(client, "bad", log)
		s.endpoint = srv.URL
		_, err := s.Acquire(context.Background(), "dQw4w9WgXcQ")
		if !errors.Is(err, domain.ErrCredentialRejected) {
			t.Errorf("Expected ErrCredentialRejected, got %v", err)
		}
	})

	t.Run("no transcripts", func(t *testing.T) {
		s := NewPremiumStrategy(client, "empty", log)
		s.endpoint = srv.URL
		_, err := s.Acquire(context.Background(), "dQw4w9WgXcQ")
		if !errors.Is(err, domain.ErrNoCaptions) {
			t.Errorf("Expected ErrNoCaptions, got %v", err)
		}
	})
}

func TestInstanceStrategy(t *testing.T) {
	var srvURL string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/videos/dQw4w9WgXcQ":
			fmt.Fprintf(w, `{"captions":[
				{"label":"English (auto-generated)","language_code":"en","url":"/api/v1/captions/auto"},
				{"label":"English","language_code":"en","url":"/api/v1/captions/manual"}
			]}`)
		case "/api/v1/captions/manual":
			fmt.Fprint(w, "WEBVTT\nKind: captions\nLanguage: en\n\n00:00:00.000 --> 00:00:02.000\nHello <c>there</c>\n\n00:00:02.000 --> 00:00:04.000\ngeneral Kenobi\n")
		case "/api/v1/captions/auto":
			t.Error("Auto track fetched despite a manual track being available")
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()
	srvURL = srv.URL

	s := NewInstanceStrategy(httpclient.NewClient(srv.Client(), 0), logger.Default())
	s.instances = []string{srvURL}

	text, err := s.Acquire(context.Background(), "dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	if text != "Hello there general Kenobi" {
		t.Errorf("Unexpected cleaned transcript: %q", text)
	}
}

func TestInstanceStrategy_NoCaptions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"captions":[]}`)
	}))
	defer srv.Close()

	s := NewInstanceStrategy(httpclient.NewClient(srv.Client(), 0), logger.Default())
	s.instances = []string{srv.URL}

	_, err := s.Acquire(context.Background(), "dQw4w9WgXcQ")
	if !errors.Is(err, domain.ErrNoCaptions) {
		t.Errorf("Expected ErrNoCaptions, got %v", err)
	}
}

func TestCleanWebVTT(t *testing.T) {
	payload := "WEBVTT\nKind: captions\nLanguage: en\n\n00:00.000 --> 00:02.000\n<v Speaker>first   line</v>\n\n00:02,000 --> 00:04,000\nsecond line\n"
	got := CleanWebVTT(payload)
	want := "first line second line"
	if got != want {
		t.Errorf("CleanWebVTT = %q, want %q", got, want)
	}
}

func TestCleanTimedText(t *testing.T) {
	payload := `<?xml version="1.0"?><transcript><text start="0" dur="2">it&amp;#39;s one</text><text start="2" dur="2">and&amp;amp;two</text></transcript>`
	got := cleanTimedText(payload)
	want := "it's one and&two"
	if got != want {
		t.Errorf("cleanTimedText = %q, want %q", got, want)
	}
}

func TestExtractCaptionTracks(t *testing.T) {
	page := `var ytInitialPlayerResponse = {"captions":{"playerCaptionsTracklistRenderer":{"captionTracks":[{"baseUrl":"https://example.com/tt?v=1","name":{"simpleText":"English"},"languageCode":"en"},{"baseUrl":"https://example.com/tt?v=2&kind=asr","name":{"simpleText":"English (auto-generated)"},"languageCode":"en","kind":"asr"}]}}};`
	tracks, err := extractCaptionTracks(page)
	if err != nil {
		t.Fatalf("extractCaptionTracks failed: %v", err)
	}
	if len(tracks) != 2 {
		t.Fatalf("Expected 2 tracks, got %d", len(tracks))
	}
	if tracks[0].Label != "English" || tracks[0].Kind != "" {
		t.Errorf("Unexpected first track: %+v", tracks[0])
	}
	if tracks[1].Kind != "asr" {
		t.Errorf("Expected asr kind on second track, got %q", tracks[1].Kind)
	}
}

func TestExtractCaptionTracks_Missing(t *testing.T) {
	if _, err := extractCaptionTracks("<html>no player data</html>"); !errors.Is(err, domain.ErrNoCaptions) {
		t.Errorf("Expected ErrNoCaptions, got %v", err)
	}
}

func TestExtractJSONArrayAfter(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		marker string
		want   string
		wantOK bool
	}{
		{
			name:   "nested arrays",
			input:  `"items":[[1,2],[3]] trailing`,
			marker: `"items":`,
			want:   `[[1,2],[3]]`,
			wantOK: true,
		},
		{
			name:   "brackets inside strings ignored",
			input:  `"items":[{"s":"a ] b"},{"s":"["}]`,
			marker: `"items":`,
			want:   `[{"s":"a ] b"},{"s":"["}]`,
			wantOK: true,
		},
		{
			name:   "marker absent",
			input:  `nothing here`,
			marker: `"items":`,
			wantOK: false,
		},
		{
			name:   "unbalanced",
			input:  `"items":[1,2`,
			marker: `"items":`,
			wantOK: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := extractJSONArrayAfter(tt.input, tt.marker)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("Extracted %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCollapseWhitespace(t *testing.T) {
	if got := collapseWhitespace("  a\t b\n\nc "); got != "a b c" {
		t.Errorf("collapseWhitespace = %q", got)
	}
}

func TestFetcher_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	<-ctx.Done()

	slow := &stubStrategy{name: "slow", err: ctx.Err()}
	f := newTestFetcher(slow)
	_, err := f.Fetch(ctx, testVideoURL, "")
	if err == nil {
		t.Fatal("Expected error after cancellation")
	}
}
