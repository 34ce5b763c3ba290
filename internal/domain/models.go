package domain

import "time"

// Job represents one work item in the transcription queue.
type Job struct {
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	Error       *string    `json:"error,omitempty" db:"error"`
	ID          string     `json:"id" db:"id"`
	Source      JobSource  `json:"source" db:"source"`
	Status      JobStatus  `json:"status" db:"status"`
	DisplayName string     `json:"display_name" db:"display_name"`
	Thumbnail   string     `json:"thumbnail,omitempty" db:"thumbnail"`
	SourceURL   string     `json:"source_url,omitempty" db:"source_url"`
	MediaPath   string     `json:"-" db:"media_path"`
	MimeType    string     `json:"-" db:"mime_type"`
	FileSize    int64      `json:"file_size" db:"file_size"`
	Transcript  string     `json:"transcript,omitempty" db:"transcript"`
	Progress    float64    `json:"progress" db:"progress"`
}

// LibraryItem is an immutable record of a completed transcription.
type LibraryItem struct {
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	ID         string    `json:"id" db:"id"`
	FileName   string    `json:"file_name" db:"file_name"`
	FileSize   int64     `json:"file_size" db:"file_size"`
	Source     JobSource `json:"source" db:"source"`
	SourceURL  string    `json:"source_url,omitempty" db:"source_url"`
	Transcript string    `json:"transcript" db:"transcript"`
}

// CredentialConfig is a named API key for the transcription backend.
type CredentialConfig struct {
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	SecretValue string    `json:"-" db:"secret_value"`
}
