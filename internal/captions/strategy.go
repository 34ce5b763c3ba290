// Package captions acquires raw transcript text for YouTube videos through
// an ordered chain of fallback strategies.
package captions

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/nobita6986/BatchTranscriber/internal/domain"
	"github.com/nobita6986/BatchTranscriber/internal/httpclient"
	"github.com/nobita6986/BatchTranscriber/internal/logger"
	"github.com/nobita6986/BatchTranscriber/internal/youtube"
)

// Strategy is one independent method of acquiring a transcript. Strategies
// are tried strictly in order; the first success wins.
type Strategy interface {
	Name() string
	Acquire(ctx context.Context, videoID string) (string, error)
}

// Fetcher orchestrates the strategy chain.
type Fetcher struct {
	client *httpclient.Client
	logger *logger.Logger
	free   []Strategy
}

func NewFetcher(client *httpclient.Client, log *logger.Logger) *Fetcher {
	if client == nil {
		client = httpclient.NewClient(nil, 200*time.Millisecond)
	}
	if log == nil {
		log = logger.Default()
	}
	log = log.WithComponent("captions")
	return &Fetcher{
		client: client,
		logger: log,
		free: []Strategy{
			NewInstanceStrategy(client, log),
			NewScrapeStrategy(client, log),
		},
	}
}

// Fetch resolves the video id and walks the chain: premium (when a key is
// present), then the community instances, then page scraping. Per-strategy
// failures are logged and swallowed; only full exhaustion reaches the
// caller, carrying the last underlying message.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string, premiumKey string) (string, error) {
	videoID, err := youtube.ExtractVideoID(rawURL)
	if err != nil {
		return "", err
	}

	strategies := make([]Strategy, 0, len(f.free)+1)
	if premiumKey != "" {
		strategies = append(strategies, NewPremiumStrategy(f.client, premiumKey, f.logger))
	}
	strategies = append(strategies, f.free...)

	var lastErr error
	for _, s := range strategies {
		text, err := s.Acquire(ctx, videoID)
		if err == nil && text != "" {
			f.logger.Info("Transcript acquired", "video_id", videoID, "strategy", s.Name(), "chars", len(text))
			return text, nil
		}
		if err == nil {
			err = domain.ErrNoCaptions
		}
		lastErr = err
		f.logger.Warn("Strategy failed", "video_id", videoID, "strategy", s.Name(), "error", err)
	}

	if lastErr == nil {
		lastErr = domain.ErrNoCaptions
	}
	return "", fmt.Errorf("%w: %s", domain.ErrAllStrategiesFailed, lastErr.Error())
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// collapseWhitespace folds runs of whitespace into single spaces.
func collapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}
