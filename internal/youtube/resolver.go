// Package youtube resolves YouTube URLs into canonical video ids and
// display metadata.
package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"time"

	"github.com/nobita6986/BatchTranscriber/internal/constants"
	"github.com/nobita6986/BatchTranscriber/internal/domain"
	"github.com/nobita6986/BatchTranscriber/internal/httpclient"
	"github.com/nobita6986/BatchTranscriber/internal/logger"
)

// videoIDPattern covers the known URL shapes: watch?v=, youtu.be/, embed/,
// shorts/, v/, u/<char>/ and bare &v= query params. Ids are exactly 11
// characters; the trailing class rejects longer id-like runs.
var videoIDPattern = regexp.MustCompile(`(?:youtu\.be/|youtube\.com/(?:watch\?v=|embed/|shorts/|v/|u/\w/)|[?&]v=)([0-9A-Za-z_-]{11})(?:[^0-9A-Za-z_-]|$)`)

// ExtractVideoID is the single authority for id extraction. Every component
// that needs a video id goes through here.
func ExtractVideoID(rawURL string) (string, error) {
	m := videoIDPattern.FindStringSubmatch(rawURL)
	if m == nil {
		return "", domain.ErrInvalidURL
	}
	return m[1], nil
}

// WatchURL returns the canonical watch?v= form for a video id.
func WatchURL(videoID string) string {
	return constants.WatchURLPrefix + videoID
}

// ThumbnailURL returns the deterministic thumbnail for a video id.
func ThumbnailURL(videoID string) string {
	return fmt.Sprintf(constants.ThumbnailURLPattern, videoID)
}

// VideoMetadata is the display metadata for an enqueued YouTube job.
type VideoMetadata struct {
	Title     string `json:"title"`
	Author    string `json:"author_name"`
	Thumbnail string `json:"thumbnail_url"`
}

// Resolver fetches public embed metadata for videos.
type Resolver struct {
	client   *httpclient.Client
	logger   *logger.Logger
	endpoint string
}

func NewResolver(client *httpclient.Client, log *logger.Logger) *Resolver {
	if client == nil {
		client = httpclient.NewClient(nil, 100*time.Millisecond)
	}
	if log == nil {
		log = logger.Default()
	}
	return &Resolver{
		client:   client,
		logger:   log.WithComponent("resolver"),
		endpoint: constants.OEmbedEndpoint,
	}
}

// Metadata fetches oEmbed metadata for a URL. It only fails when no video id
// can be extracted; transport and parse failures degrade to a synthetic
// title and a thumbnail derived from the id.
func (r *Resolver) Metadata(ctx context.Context, rawURL string) (VideoMetadata, error) {
	videoID, err := ExtractVideoID(rawURL)
	if err != nil {
		return VideoMetadata{}, err
	}

	meta, err := r.fetchOEmbed(ctx, videoID)
	if err != nil {
		r.logger.Warn("Metadata fetch failed, using synthetic title", "video_id", videoID, "error", err)
		return syntheticMetadata(videoID), nil
	}
	if meta.Title == "" {
		meta.Title = syntheticTitle(videoID)
	}
	if meta.Thumbnail == "" {
		meta.Thumbnail = ThumbnailURL(videoID)
	}
	return meta, nil
}

func (r *Resolver) fetchOEmbed(ctx context.Context, videoID string) (VideoMetadata, error) {
	endpoint := fmt.Sprintf("%s?url=%s&format=json", r.endpoint, url.QueryEscape(WatchURL(videoID)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return VideoMetadata{}, err
	}

	resp, err := r.client.Do(ctx, req)
	if err != nil {
		return VideoMetadata{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return VideoMetadata{}, fmt.Errorf("oembed returned status %d", resp.StatusCode)
	}

	var meta VideoMetadata
	if err := json.NewDecoder(resp.Body).Decode(&meta); err != nil {
		return VideoMetadata{}, fmt.Errorf("decode oembed response: %w", err)
	}
	return meta, nil
}

func syntheticTitle(videoID string) string {
	return fmt.Sprintf("YouTube Video (%s)", videoID)
}

func syntheticMetadata(videoID string) VideoMetadata {
	return VideoMetadata{
		Title:     syntheticTitle(videoID),
		Thumbnail: ThumbnailURL(videoID),
	}
}
