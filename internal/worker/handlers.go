package worker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nobita6986/BatchTranscriber/internal/ai"
	"github.com/nobita6986/BatchTranscriber/internal/app"
	"github.com/nobita6986/BatchTranscriber/internal/captions"
	"github.com/nobita6986/BatchTranscriber/internal/constants"
	"github.com/nobita6986/BatchTranscriber/internal/domain"
	"github.com/nobita6986/BatchTranscriber/internal/logger"
	"github.com/nobita6986/BatchTranscriber/internal/store"
)

// FileHandler transcribes uploaded media through the AI backend.
type FileHandler struct {
	Repo        *store.DB
	AI          *ai.Client
	Credentials *app.CredentialService
}

func NewFileHandler(repo *store.DB, aiClient *ai.Client, creds *app.CredentialService) *FileHandler {
	return &FileHandler{Repo: repo, AI: aiClient, Credentials: creds}
}

func (h *FileHandler) Handle(ctx context.Context, job *domain.Job, log *logger.Logger) (string, error) {
	data, err := os.ReadFile(job.MediaPath)
	if err != nil {
		return "", fmt.Errorf("read media file: %w", err)
	}

	// Payload is in memory, the job leaves the uploading stage.
	if err := h.Repo.UpdateJobStatus(job.ID, domain.JobStatusProcessing, 50); err != nil {
		log.Error("Failed to update status", "error", err)
	}

	mimeType := job.MimeType
	if mimeType == "" {
		mimeType = guessMimeType(job.MediaPath)
	}

	key := h.Credentials.ResolveTranscriptionKey()
	transcript, err := h.AI.TranscribeMedia(ctx, data, mimeType, key)
	if err != nil {
		return "", err
	}
	return transcript, nil
}

// YouTubeHandler acquires captions through the strategy chain and refines
// them through the AI backend.
type YouTubeHandler struct {
	Repo        *store.DB
	Captions    *captions.Fetcher
	AI          *ai.Client
	Credentials *app.CredentialService
}

func NewYouTubeHandler(repo *store.DB, fetcher *captions.Fetcher, aiClient *ai.Client, creds *app.CredentialService) *YouTubeHandler {
	return &YouTubeHandler{Repo: repo, Captions: fetcher, AI: aiClient, Credentials: creds}
}

func (h *YouTubeHandler) Handle(ctx context.Context, job *domain.Job, log *logger.Logger) (string, error) {
	raw, err := h.Captions.Fetch(ctx, job.SourceURL, h.Credentials.ResolveCaptionKey())
	if err != nil {
		return "", err
	}

	// Raw captions acquired, refinement is the processing stage.
	if err := h.Repo.UpdateJobStatus(job.ID, domain.JobStatusProcessing, 50); err != nil {
		log.Error("Failed to update status", "error", err)
	}

	// Refinement cannot hard-fail, it degrades to the raw text.
	refined := h.AI.RefineText(ctx, raw, h.Credentials.ResolveTranscriptionKey())
	return refined, nil
}

func guessMimeType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case constants.ExtMP3:
		return constants.MimeTypeMP3
	case constants.ExtMP4:
		return constants.MimeTypeMP4
	case constants.ExtFLAC:
		return constants.MimeTypeFLAC
	case constants.ExtWAV:
		return constants.MimeTypeWAV
	case constants.ExtWebM:
		return constants.MimeTypeWebM
	case constants.ExtM4A:
		return constants.MimeTypeM4A
	default:
		return "application/octet-stream"
	}
}
