package captions

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/nobita6986/BatchTranscriber/internal/constants"
	"github.com/nobita6986/BatchTranscriber/internal/domain"
	"github.com/nobita6986/BatchTranscriber/internal/httpclient"
	"github.com/nobita6986/BatchTranscriber/internal/logger"
)

// PremiumStrategy queries a commercial transcript-search backend. It only
// participates when the user configured a key for it.
type PremiumStrategy struct {
	client   *httpclient.Client
	logger   *logger.Logger
	apiKey   string
	endpoint string
}

func NewPremiumStrategy(client *httpclient.Client, apiKey string, log *logger.Logger) *PremiumStrategy {
	return &PremiumStrategy{
		client:   client,
		logger:   log.WithStrategy("premium"),
		apiKey:   apiKey,
		endpoint: constants.SearchAPIEndpoint,
	}
}

func (s *PremiumStrategy) Name() string { return "premium" }

type searchAPIResponse struct {
	Transcripts []struct {
		Text string `json:"text"`
	} `json:"transcripts"`
	Error string `json:"error"`
}

func (s *PremiumStrategy) Acquire(ctx context.Context, videoID string) (string, error) {
	params := url.Values{}
	params.Set("engine", "youtube_transcripts")
	params.Set("video_id", videoID)
	params.Set("api_key", s.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return "", err
	}

	resp, err := s.client.Do(ctx, req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	// A rejected key is a distinct failure kind: the chain moves on
	// immediately instead of retrying this strategy.
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return "", domain.ErrCredentialRejected
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("transcript search returned status %d", resp.StatusCode)
	}

	var payload searchAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode transcript search response: %w", err)
	}
	if len(payload.Transcripts) == 0 {
		if payload.Error != "" {
			return "", fmt.Errorf("transcript search: %s", payload.Error)
		}
		return "", domain.ErrNoCaptions
	}

	fragments := make([]string, 0, len(payload.Transcripts))
	for _, t := range payload.Transcripts {
		if t.Text != "" {
			fragments = append(fragments, t.Text)
		}
	}
	text := collapseWhitespace(strings.Join(fragments, " "))
	if text == "" {
		return "", domain.ErrNoCaptions
	}
	return text, nil
}
