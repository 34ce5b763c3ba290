package captions

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/nobita6986/BatchTranscriber/internal/domain"
	"github.com/nobita6986/BatchTranscriber/internal/httpclient"
	"github.com/nobita6986/BatchTranscriber/internal/logger"
	"github.com/nobita6986/BatchTranscriber/internal/youtube"
)

// defaultProxies is the fixed ordered list of CORS relay proxies. Each entry
// is a prefix the url-encoded target is appended to.
var defaultProxies = []string{
	"https://api.allorigins.win/raw?url=",
	"https://corsproxy.io/?url=",
	"https://api.codetabs.com/v1/proxy?quest=",
}

// captchaMarker signals the watch page was replaced by a bot wall. The
// affected proxy is burned immediately.
const captchaMarker = "our systems have detected unusual traffic"

// ScrapeStrategy pulls the watch page itself through relay proxies and digs
// the caption track list out of the embedded player response.
type ScrapeStrategy struct {
	client  *httpclient.Client
	logger  *logger.Logger
	proxies []string
}

func NewScrapeStrategy(client *httpclient.Client, log *logger.Logger) *ScrapeStrategy {
	return &ScrapeStrategy{
		client:  client,
		logger:  log.WithStrategy("scrape"),
		proxies: defaultProxies,
	}
}

func (s *ScrapeStrategy) Name() string { return "scrape" }

func (s *ScrapeStrategy) Acquire(ctx context.Context, videoID string) (string, error) {
	var lastErr error
	for _, proxy := range s.proxies {
		text, err := s.throughProxy(ctx, proxy, videoID)
		if err != nil {
			s.logger.Debug("Proxy failed", "proxy", proxy, "video_id", videoID, "error", err)
			lastErr = err
			continue
		}
		return text, nil
	}
	if lastErr == nil {
		lastErr = domain.ErrNoCaptions
	}
	return "", fmt.Errorf("all proxies exhausted: %w", lastErr)
}

func (s *ScrapeStrategy) throughProxy(ctx context.Context, proxy, videoID string) (string, error) {
	page, err := s.get(ctx, proxy+url.QueryEscape(youtube.WatchURL(videoID)))
	if err != nil {
		return "", fmt.Errorf("fetch watch page: %w", err)
	}
	if strings.Contains(strings.ToLower(page), captchaMarker) {
		return "", fmt.Errorf("proxy hit a CAPTCHA wall")
	}

	tracks, err := extractCaptionTracks(page)
	if err != nil {
		return "", err
	}

	best, ok := SelectBestTrack(tracks)
	if !ok {
		return "", domain.ErrNoCaptions
	}

	payload, err := s.get(ctx, proxy+url.QueryEscape(best.URL))
	if err != nil {
		return "", fmt.Errorf("fetch caption xml: %w", err)
	}

	text := cleanTimedText(payload)
	if text == "" {
		return "", domain.ErrNoCaptions
	}
	return text, nil
}

func (s *ScrapeStrategy) get(ctx context.Context, target string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := s.client.Do(ctx, req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

type captionTrack struct {
	BaseURL string `json:"baseUrl"`
	Name    struct {
		SimpleText string `json:"simpleText"`
	} `json:"name"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"`
}

// extractCaptionTracks locates the captionTracks array in the watch page,
// either as the bare JSON field or inside the embedded player response.
func extractCaptionTracks(page string) ([]Track, error) {
	raw, ok := extractJSONArrayAfter(page, `"captionTracks":`)
	if !ok {
		return nil, domain.ErrNoCaptions
	}

	var parsed []captionTrack
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("parse caption tracks: %w", err)
	}
	if len(parsed) == 0 {
		return nil, domain.ErrNoCaptions
	}

	tracks := make([]Track, 0, len(parsed))
	for _, ct := range parsed {
		if ct.BaseURL == "" {
			continue
		}
		tracks = append(tracks, Track{
			Language: ct.LanguageCode,
			Label:    ct.Name.SimpleText,
			Kind:     ct.Kind,
			URL:      strings.ReplaceAll(ct.BaseURL, `\u0026`, "&"),
		})
	}
	if len(tracks) == 0 {
		return nil, domain.ErrNoCaptions
	}
	return tracks, nil
}

// extractJSONArrayAfter scans for marker and returns the balanced JSON array
// that follows it. Bracket depth is tracked outside string literals only.
func extractJSONArrayAfter(s, marker string) (string, bool) {
	idx := strings.Index(s, marker)
	if idx < 0 {
		return "", false
	}
	rest := s[idx+len(marker):]
	start := strings.IndexByte(rest, '[')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(rest); i++ {
		c := rest[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return rest[start : i+1], true
			}
		}
	}
	return "", false
}

var timedTextTag = regexp.MustCompile(`<[^>]+>`)

// cleanTimedText converts caption XML into plain text: tags become spaces,
// entities are decoded (twice, the payload double-encodes them).
func cleanTimedText(payload string) string {
	text := timedTextTag.ReplaceAllString(payload, " ")
	text = html.UnescapeString(html.UnescapeString(text))
	return collapseWhitespace(text)
}
