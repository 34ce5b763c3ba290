package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nobita6986/BatchTranscriber/internal/constants"
	"github.com/nobita6986/BatchTranscriber/internal/domain"
	"github.com/nobita6986/BatchTranscriber/internal/logger"
	"github.com/nobita6986/BatchTranscriber/internal/store"
)

type LibraryService struct {
	Repo   *store.DB
	Logger *logger.Logger
}

func NewLibraryService(repo *store.DB, log *logger.Logger) *LibraryService {
	return &LibraryService{Repo: repo, Logger: log.WithComponent("library")}
}

// AddFromJob records a completed job's snapshot as an immutable library item.
func (s *LibraryService) AddFromJob(job *domain.Job) (*domain.LibraryItem, error) {
	item := &domain.LibraryItem{
		ID:         uuid.New().String(),
		FileName:   job.DisplayName,
		FileSize:   job.FileSize,
		Source:     job.Source,
		SourceURL:  job.SourceURL,
		Transcript: job.Transcript,
		CreatedAt:  time.Now(),
	}
	if err := s.Repo.CreateLibraryItem(item); err != nil {
		return nil, err
	}
	s.Logger.Info("Library item added", "item_id", item.ID, "file_name", item.FileName)
	return item, nil
}

func (s *LibraryService) List() ([]*domain.LibraryItem, error) {
	return s.Repo.ListLibraryItems(constants.MaxLibraryItems)
}

func (s *LibraryService) Remove(id string) error {
	return s.Repo.DeleteLibraryItem(id)
}

func (s *LibraryService) Clear() error {
	s.Logger.Info("Library cleared")
	return s.Repo.ClearLibrary()
}

// ExportAll concatenates every transcript into one text blob, each item
// preceded by a fixed header block.
func (s *LibraryService) ExportAll() (string, error) {
	items, err := s.Repo.ListLibraryItems(constants.MaxLibraryItems)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for i, item := range items {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(fmt.Sprintf("==========\nFile: %s\nSource: %s\nCreated: %s\n==========\n",
			item.FileName, item.Source, item.CreatedAt.Format(time.RFC3339)))
		b.WriteString(item.Transcript)
	}
	return b.String(), nil
}
