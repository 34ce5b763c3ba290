package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nobita6986/BatchTranscriber/internal/constants"
	"github.com/nobita6986/BatchTranscriber/internal/domain"
	"github.com/nobita6986/BatchTranscriber/internal/logger"
	"github.com/nobita6986/BatchTranscriber/internal/mediameta"
	"github.com/nobita6986/BatchTranscriber/internal/store"
	"github.com/nobita6986/BatchTranscriber/internal/youtube"
)

type JobService struct {
	Repo     *store.DB
	Resolver *youtube.Resolver
	Logger   *logger.Logger
	MediaDir string
}

func NewJobService(repo *store.DB, resolver *youtube.Resolver, mediaDir string, log *logger.Logger) *JobService {
	return &JobService{
		Repo:     repo,
		Resolver: resolver,
		Logger:   log.WithComponent("jobs"),
		MediaDir: mediaDir,
	}
}

// EnqueueYouTube creates an idle job for a YouTube URL. The display name
// starts as the raw URL; real metadata arrives asynchronously and never
// blocks or fails the enqueue.
func (s *JobService) EnqueueYouTube(url string) (*domain.Job, error) {
	videoID, err := youtube.ExtractVideoID(url)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	job := &domain.Job{
		ID:          uuid.New().String(),
		Source:      domain.JobSourceYouTube,
		Status:      domain.JobStatusIdle,
		DisplayName: url,
		Thumbnail:   youtube.ThumbnailURL(videoID),
		SourceURL:   url,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.Repo.CreateJob(job); err != nil {
		return nil, err
	}
	s.Logger.Info("Job enqueued", "job_id", job.ID, "source", job.Source, "video_id", videoID)

	go s.fetchMetadata(job.ID, url)

	return job, nil
}

// fetchMetadata replaces the raw URL with the fetched video title. Failures
// are silent; the resolver already degrades to a synthetic title.
func (s *JobService) fetchMetadata(jobID, url string) {
	ctx, cancel := context.WithTimeout(context.Background(), constants.DefaultHTTPTimeout)
	defer cancel()

	meta, err := s.Resolver.Metadata(ctx, url)
	if err != nil {
		return
	}
	if err := s.Repo.UpdateJobMetadata(jobID, meta.Title, meta.Thumbnail); err != nil {
		s.Logger.Warn("Failed to store video metadata", "job_id", jobID, "error", err)
	}
}

// EnqueueFile stores an uploaded media file and creates an idle job for it.
func (s *JobService) EnqueueFile(fileName string, mimeType string, r io.Reader) (*domain.Job, error) {
	if err := os.MkdirAll(s.MediaDir, constants.DirPermissions); err != nil {
		return nil, fmt.Errorf("create media directory: %w", err)
	}

	id := uuid.New().String()
	mediaPath := filepath.Join(s.MediaDir, id+strings.ToLower(filepath.Ext(fileName)))

	f, err := os.Create(mediaPath)
	if err != nil {
		return nil, fmt.Errorf("create media file: %w", err)
	}
	size, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(mediaPath)
		return nil, fmt.Errorf("store media file: %w", err)
	}

	displayName := fileName
	if info, tagErr := mediameta.Extract(mediaPath); tagErr == nil {
		displayName = mediameta.DisplayName(info, fileName)
	}

	now := time.Now()
	job := &domain.Job{
		ID:          id,
		Source:      domain.JobSourceFile,
		Status:      domain.JobStatusIdle,
		DisplayName: displayName,
		MediaPath:   mediaPath,
		MimeType:    mimeType,
		FileSize:    size,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.Repo.CreateJob(job); err != nil {
		_ = os.Remove(mediaPath)
		return nil, err
	}
	s.Logger.Info("Job enqueued", "job_id", job.ID, "source", job.Source, "file", fileName, "bytes", size)
	return job, nil
}

func (s *JobService) ListJobs() ([]*domain.Job, error) {
	return s.Repo.ListJobs(constants.MaxListedJobs)
}

func (s *JobService) GetJob(id string) (*domain.Job, error) {
	return s.Repo.GetJob(id)
}

// RetryJob returns an errored job to idle. Only errored jobs are retryable.
func (s *JobService) RetryJob(id string) error {
	job, err := s.Repo.GetJob(id)
	if err != nil {
		return err
	}
	if job == nil {
		return fmt.Errorf("job not found")
	}
	if job.Status != domain.JobStatusError {
		return fmt.Errorf("job %s is %s, only errored jobs can be retried", id, job.Status)
	}
	if err := s.Repo.ResetJob(id); err != nil {
		return err
	}
	s.Logger.Info("Job retried", "job_id", id)
	return nil
}

// RetryAllFailed returns every errored job to idle.
func (s *JobService) RetryAllFailed() (int64, error) {
	n, err := s.Repo.ResetFailedJobs()
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.Logger.Info("Failed jobs retried", "count", n)
	}
	return n, nil
}

// RemoveJob deletes a job. An in-flight job's remote calls are not aborted;
// their eventual result lands on a deleted row and disappears.
func (s *JobService) RemoveJob(id string) error {
	job, err := s.Repo.GetJob(id)
	if err != nil {
		return err
	}
	if job == nil {
		return fmt.Errorf("job not found")
	}
	if err := s.Repo.DeleteJob(id); err != nil {
		return err
	}
	if job.MediaPath != "" {
		_ = os.Remove(job.MediaPath)
	}
	s.Logger.Info("Job removed", "job_id", id, "status", job.Status)
	return nil
}

func (s *JobService) GetJobStats() (*store.JobStats, error) {
	return s.Repo.GetJobStats()
}
