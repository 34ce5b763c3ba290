package app

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nobita6986/BatchTranscriber/internal/domain"
	"github.com/nobita6986/BatchTranscriber/internal/logger"
	"github.com/nobita6986/BatchTranscriber/internal/store"
	"github.com/nobita6986/BatchTranscriber/internal/youtube"
)

func setupTestDB(t *testing.T) *store.DB {
	t.Helper()
	db, err := store.NewSQLiteDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestJobService(t *testing.T, db *store.DB) *JobService {
	t.Helper()
	return NewJobService(db, youtube.NewResolver(nil, nil), t.TempDir(), logger.Default())
}

func TestJobService_EnqueueYouTube(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestJobService(t, db)

	job, err := svc.EnqueueYouTube("https://youtu.be/dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("EnqueueYouTube failed: %v", err)
	}
	if job.Status != domain.JobStatusIdle {
		t.Errorf("Expected idle status, got %s", job.Status)
	}
	if job.Source != domain.JobSourceYouTube {
		t.Errorf("Expected youtube source, got %s", job.Source)
	}
	if job.DisplayName != "https://youtu.be/dQw4w9WgXcQ" {
		t.Errorf("Expected url as initial display name, got %q", job.DisplayName)
	}
	if !strings.Contains(job.Thumbnail, "dQw4w9WgXcQ") {
		t.Errorf("Expected derived thumbnail, got %q", job.Thumbnail)
	}

	stored, _ := db.GetJob(job.ID)
	if stored == nil {
		t.Fatal("Job not persisted")
	}
}

func TestJobService_EnqueueYouTube_InvalidURL(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestJobService(t, db)

	_, err := svc.EnqueueYouTube("https://example.com/not-a-video")
	if !errors.Is(err, domain.ErrInvalidURL) {
		t.Fatalf("Expected ErrInvalidURL, got %v", err)
	}

	jobs, _ := svc.ListJobs()
	if len(jobs) != 0 {
		t.Errorf("Invalid url must not create a job, found %d", len(jobs))
	}
}

func TestJobService_EnqueueFile(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestJobService(t, db)

	content := "pretend media bytes"
	job, err := svc.EnqueueFile("talk.mp3", "audio/mpeg", strings.NewReader(content))
	if err != nil {
		t.Fatalf("EnqueueFile failed: %v", err)
	}
	if job.Source != domain.JobSourceFile {
		t.Errorf("Expected file source, got %s", job.Source)
	}
	if job.FileSize != int64(len(content)) {
		t.Errorf("Expected size %d, got %d", len(content), job.FileSize)
	}
	if job.MediaPath == "" {
		t.Error("Expected media path to be set")
	}
	if job.DisplayName != "talk.mp3" {
		t.Errorf("Expected file name as display name, got %q", job.DisplayName)
	}
}

func TestJobService_RetrySemantics(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestJobService(t, db)

	job, err := svc.EnqueueYouTube("https://youtu.be/dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("EnqueueYouTube failed: %v", err)
	}

	// Idle jobs are not retryable.
	if err := svc.RetryJob(job.ID); err == nil {
		t.Error("Expected retry of an idle job to fail")
	}

	db.UpdateJobError(job.ID, "strategy chain exhausted")
	if err := svc.RetryJob(job.ID); err != nil {
		t.Fatalf("RetryJob failed: %v", err)
	}

	fetched, _ := db.GetJob(job.ID)
	if fetched.Status != domain.JobStatusIdle {
		t.Errorf("Expected idle after retry, got %s", fetched.Status)
	}
	if fetched.Error != nil {
		t.Errorf("Expected error cleared, got %v", *fetched.Error)
	}
}

func TestJobService_RetryJob_Missing(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestJobService(t, db)
	if err := svc.RetryJob("nope"); err == nil {
		t.Error("Expected error for missing job")
	}
}

func TestJobService_RemoveJob(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestJobService(t, db)

	job, err := svc.EnqueueFile("a.mp3", "audio/mpeg", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("EnqueueFile failed: %v", err)
	}
	if err := svc.RemoveJob(job.ID); err != nil {
		t.Fatalf("RemoveJob failed: %v", err)
	}
	fetched, _ := db.GetJob(job.ID)
	if fetched != nil {
		t.Errorf("Expected job gone, got %+v", fetched)
	}
	if err := svc.RemoveJob(job.ID); err == nil {
		t.Error("Expected error removing a missing job")
	}
}

func TestLibraryService_AddFromJob(t *testing.T) {
	db := setupTestDB(t)
	lib := NewLibraryService(db, logger.Default())

	job := &domain.Job{
		ID:          "j1",
		Source:      domain.JobSourceYouTube,
		Status:      domain.JobStatusCompleted,
		DisplayName: "A Talk",
		SourceURL:   "https://youtu.be/dQw4w9WgXcQ",
		Transcript:  "what was said",
		FileSize:    123,
	}

	item, err := lib.AddFromJob(job)
	if err != nil {
		t.Fatalf("AddFromJob failed: %v", err)
	}
	if item.FileName != "A Talk" {
		t.Errorf("Expected display name carried over, got %q", item.FileName)
	}
	if item.Transcript != "what was said" {
		t.Errorf("Expected transcript carried over, got %q", item.Transcript)
	}

	items, _ := lib.List()
	if len(items) != 1 {
		t.Fatalf("Expected 1 library item, got %d", len(items))
	}
}

func TestLibraryService_ExportAll(t *testing.T) {
	db := setupTestDB(t)
	lib := NewLibraryService(db, logger.Default())

	base := time.Now()
	items := []*domain.LibraryItem{
		{ID: "1", FileName: "first.mp3", Source: domain.JobSourceFile, Transcript: "first words", CreatedAt: base},
		{ID: "2", FileName: "second.mp3", Source: domain.JobSourceFile, Transcript: "second words", CreatedAt: base.Add(time.Second)},
	}
	for _, item := range items {
		if err := db.CreateLibraryItem(item); err != nil {
			t.Fatalf("CreateLibraryItem failed: %v", err)
		}
	}

	blob, err := lib.ExportAll()
	if err != nil {
		t.Fatalf("ExportAll failed: %v", err)
	}

	// Newest first, each with its header block.
	if !strings.HasPrefix(blob, "==========\nFile: second.mp3\n") {
		t.Errorf("Expected newest item first, got:\n%s", blob)
	}
	if !strings.Contains(blob, "File: first.mp3") {
		t.Error("Expected both items in export")
	}
	if !strings.Contains(blob, "second words\n\n==========") {
		t.Errorf("Expected items separated by blank line, got:\n%s", blob)
	}
	if !strings.Contains(blob, "Source: file\n") {
		t.Error("Expected source line in header")
	}
}

func TestLibraryService_ExportAll_Empty(t *testing.T) {
	db := setupTestDB(t)
	lib := NewLibraryService(db, logger.Default())

	blob, err := lib.ExportAll()
	if err != nil {
		t.Fatalf("ExportAll failed: %v", err)
	}
	if blob != "" {
		t.Errorf("Expected empty export, got %q", blob)
	}
}

func TestCredentialService_Resolution(t *testing.T) {
	db := setupTestDB(t)
	settings := store.NewSettingsRepo(db)
	svc := NewCredentialService(db, settings, "env-default-key", logger.Default())

	// No credentials stored: the environment default wins.
	if got := svc.ResolveTranscriptionKey(); got != "env-default-key" {
		t.Errorf("Expected default key, got %q", got)
	}

	cred, err := svc.Add("work", "sk-work")
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	// Stored but not active: still the default.
	if got := svc.ResolveTranscriptionKey(); got != "env-default-key" {
		t.Errorf("Expected default key while none active, got %q", got)
	}

	if err := svc.SetActive(cred.ID); err != nil {
		t.Fatalf("SetActive failed: %v", err)
	}
	if got := svc.ResolveTranscriptionKey(); got != "sk-work" {
		t.Errorf("Expected active credential's secret, got %q", got)
	}

	// Deleting the active credential falls back to the default.
	if err := svc.Delete(cred.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if got := svc.ActiveID(); got != "" {
		t.Errorf("Expected active id cleared, got %q", got)
	}
	if got := svc.ResolveTranscriptionKey(); got != "env-default-key" {
		t.Errorf("Expected default key after delete, got %q", got)
	}
}

func TestCredentialService_NoDefault(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCredentialService(db, store.NewSettingsRepo(db), "", logger.Default())

	if got := svc.ResolveTranscriptionKey(); got != "" {
		t.Errorf("Expected empty key, got %q", got)
	}
}

func TestCredentialService_Validation(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCredentialService(db, store.NewSettingsRepo(db), "", logger.Default())

	if _, err := svc.Add("", "secret"); err == nil {
		t.Error("Expected error for empty name")
	}
	if _, err := svc.Add("name", ""); err == nil {
		t.Error("Expected error for empty secret")
	}
	if err := svc.SetActive("missing-id"); err == nil {
		t.Error("Expected error activating a missing credential")
	}
}

func TestCredentialService_CaptionKey(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCredentialService(db, store.NewSettingsRepo(db), "default", logger.Default())

	// The caption key never falls back to the transcription default.
	if got := svc.ResolveCaptionKey(); got != "" {
		t.Errorf("Expected empty caption key, got %q", got)
	}

	if err := svc.SetCaptionKey("searchapi-key"); err != nil {
		t.Fatalf("SetCaptionKey failed: %v", err)
	}
	if got := svc.ResolveCaptionKey(); got != "searchapi-key" {
		t.Errorf("Expected stored caption key, got %q", got)
	}

	if err := svc.SetCaptionKey(""); err != nil {
		t.Fatalf("Clearing caption key failed: %v", err)
	}
	if got := svc.ResolveCaptionKey(); got != "" {
		t.Errorf("Expected caption key cleared, got %q", got)
	}
}
