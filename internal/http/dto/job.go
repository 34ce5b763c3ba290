package dto

import (
	"time"

	"github.com/nobita6986/BatchTranscriber/internal/domain"
)

type JobResponse struct {
	ID          string  `json:"id"`
	Source      string  `json:"source"`
	Status      string  `json:"status"`
	DisplayName string  `json:"display_name"`
	Thumbnail   string  `json:"thumbnail,omitempty"`
	SourceURL   string  `json:"source_url,omitempty"`
	FileSize    int64   `json:"file_size,omitempty"`
	Transcript  string  `json:"transcript,omitempty"`
	Error       string  `json:"error,omitempty"`
	Progress    float64 `json:"progress"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

func NewJobResponse(j *domain.Job) JobResponse {
	resp := JobResponse{
		ID:          j.ID,
		Source:      string(j.Source),
		Status:      string(j.Status),
		DisplayName: j.DisplayName,
		Thumbnail:   j.Thumbnail,
		SourceURL:   j.SourceURL,
		FileSize:    j.FileSize,
		Transcript:  j.Transcript,
		Progress:    j.Progress,
		CreatedAt:   j.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   j.UpdatedAt.Format(time.RFC3339),
	}
	if j.Error != nil {
		resp.Error = *j.Error
	}
	return resp
}

func NewJobListResponse(jobs []*domain.Job) []JobResponse {
	out := make([]JobResponse, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, NewJobResponse(j))
	}
	return out
}

type CreateJobRequest struct {
	URL string `json:"url"`
}

type QueueStateResponse struct {
	Paused bool `json:"paused"`
	Limit  int  `json:"limit"`
}

type ConcurrencyRequest struct {
	Limit int `json:"limit"`
}
