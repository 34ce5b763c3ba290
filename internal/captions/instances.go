package captions

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"

	"github.com/nobita6986/BatchTranscriber/internal/constants"
	"github.com/nobita6986/BatchTranscriber/internal/domain"
	"github.com/nobita6986/BatchTranscriber/internal/httpclient"
	"github.com/nobita6986/BatchTranscriber/internal/logger"
)

// defaultInstances is the fixed ordered list of community front-end
// instances tried by the instance strategy.
var defaultInstances = []string{
	"https://inv.nadeko.net",
	"https://invidious.nerdvpn.de",
	"https://yewtu.be",
	"https://invidious.f5.si",
}

// InstanceStrategy pulls caption metadata and WebVTT payloads from
// alternate public front-end instances.
type InstanceStrategy struct {
	client    *httpclient.Client
	logger    *logger.Logger
	instances []string
}

func NewInstanceStrategy(client *httpclient.Client, log *logger.Logger) *InstanceStrategy {
	return &InstanceStrategy{
		client:    client,
		logger:    log.WithStrategy("instances"),
		instances: defaultInstances,
	}
}

func (s *InstanceStrategy) Name() string { return "instances" }

type instanceVideoResponse struct {
	Captions []struct {
		Label        string `json:"label"`
		LanguageCode string `json:"language_code"`
		URL          string `json:"url"`
	} `json:"captions"`
}

func (s *InstanceStrategy) Acquire(ctx context.Context, videoID string) (string, error) {
	var lastErr error
	for _, instance := range s.instances {
		text, err := s.fromInstance(ctx, instance, videoID)
		if err != nil {
			s.logger.Debug("Instance failed", "instance", instance, "video_id", videoID, "error", err)
			lastErr = err
			continue
		}
		return text, nil
	}
	if lastErr == nil {
		lastErr = domain.ErrNoCaptions
	}
	return "", fmt.Errorf("all instances exhausted: %w", lastErr)
}

func (s *InstanceStrategy) fromInstance(ctx context.Context, instance, videoID string) (string, error) {
	body, err := s.get(ctx, instance+"/api/v1/videos/"+videoID)
	if err != nil {
		return "", err
	}

	var video instanceVideoResponse
	if err := json.Unmarshal(body, &video); err != nil {
		return "", fmt.Errorf("decode video response: %w", err)
	}
	if len(video.Captions) == 0 {
		return "", domain.ErrNoCaptions
	}

	tracks := make([]Track, 0, len(video.Captions))
	for _, c := range video.Captions {
		url := c.URL
		if strings.HasPrefix(url, "/") {
			url = instance + url
		}
		tracks = append(tracks, Track{
			Language: c.LanguageCode,
			Label:    c.Label,
			URL:      url,
		})
	}

	best, ok := SelectBestTrack(tracks)
	if !ok {
		return "", domain.ErrNoCaptions
	}

	payload, err := s.get(ctx, best.URL)
	if err != nil {
		return "", fmt.Errorf("fetch caption payload: %w", err)
	}

	text := CleanWebVTT(string(payload))
	if len(text) < constants.MinCaptionLength {
		return "", fmt.Errorf("caption payload too short (%d chars)", len(text))
	}
	return text, nil
}

func (s *InstanceStrategy) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d from %s", resp.StatusCode, url)
	}
	return io.ReadAll(resp.Body)
}

var (
	vttTimestampLine = regexp.MustCompile(`^\s*\d{2}:\d{2}(:\d{2})?[.,]\d{3}\s*-->`)
	vttMarkup        = regexp.MustCompile(`<[^>]+>`)
)

// CleanWebVTT reduces a WebVTT payload to plain prose: the header and
// timestamp lines go, markup tags go, remaining lines join with spaces.
func CleanWebVTT(payload string) string {
	lines := strings.Split(payload, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || trimmed == "WEBVTT" || strings.HasPrefix(trimmed, "WEBVTT ") {
			continue
		}
		if strings.HasPrefix(trimmed, "Kind:") || strings.HasPrefix(trimmed, "Language:") {
			continue
		}
		if vttTimestampLine.MatchString(trimmed) {
			continue
		}
		cleaned := vttMarkup.ReplaceAllString(trimmed, "")
		if cleaned == "" {
			continue
		}
		kept = append(kept, cleaned)
	}
	return collapseWhitespace(strings.Join(kept, " "))
}
