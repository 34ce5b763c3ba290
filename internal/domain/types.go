package domain

import "errors"

type JobSource string

const (
	JobSourceFile    JobSource = "file"
	JobSourceYouTube JobSource = "youtube"
)

type JobStatus string

const (
	JobStatusIdle       JobStatus = "idle"
	JobStatusUploading  JobStatus = "uploading"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusError      JobStatus = "error"
)

// IsActive reports whether a status occupies a concurrency slot.
func (s JobStatus) IsActive() bool {
	return s == JobStatusUploading || s == JobStatusProcessing
}

// IsTerminal reports whether a status requires user action to leave.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusError
}

// Failure kinds surfaced by the pipeline. Strategy-internal failures are
// swallowed at the strategy boundary and never reach a job directly.
var (
	ErrInvalidURL          = errors.New("invalid YouTube URL")
	ErrMissingCredential   = errors.New("no transcription API key configured")
	ErrCredentialRejected  = errors.New("API key rejected or quota exhausted")
	ErrNoCaptions          = errors.New("no captions available for this video")
	ErrAllStrategiesFailed = errors.New("all transcript sources failed")
	ErrEmptyResult         = errors.New("transcription returned no text")
	ErrRequestTooLarge     = errors.New("media file rejected by the API, it may be too large")
)
