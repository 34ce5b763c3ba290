package dto

import (
	"time"

	"github.com/nobita6986/BatchTranscriber/internal/domain"
)

type LibraryItemResponse struct {
	ID         string `json:"id"`
	FileName   string `json:"file_name"`
	FileSize   int64  `json:"file_size"`
	Source     string `json:"source"`
	SourceURL  string `json:"source_url,omitempty"`
	Transcript string `json:"transcript"`
	CreatedAt  string `json:"created_at"`
}

func NewLibraryItemResponse(item *domain.LibraryItem) LibraryItemResponse {
	return LibraryItemResponse{
		ID:         item.ID,
		FileName:   item.FileName,
		FileSize:   item.FileSize,
		Source:     string(item.Source),
		SourceURL:  item.SourceURL,
		Transcript: item.Transcript,
		CreatedAt:  item.CreatedAt.Format(time.RFC3339),
	}
}

func NewLibraryListResponse(items []*domain.LibraryItem) []LibraryItemResponse {
	out := make([]LibraryItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, NewLibraryItemResponse(item))
	}
	return out
}
