package httpapp

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nobita6986/BatchTranscriber/internal/app"
	"github.com/nobita6986/BatchTranscriber/internal/logger"
	"github.com/nobita6986/BatchTranscriber/internal/store"
	"github.com/nobita6986/BatchTranscriber/internal/worker"
)

type Handler struct {
	Jobs        *app.JobService
	Library     *app.LibraryService
	Credentials *app.CredentialService
	Scheduler   *worker.Scheduler
	Settings    *store.SettingsRepo
	Logger      *logger.Logger
}

func NewHandler(jobs *app.JobService, library *app.LibraryService, creds *app.CredentialService, scheduler *worker.Scheduler, settings *store.SettingsRepo, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.Default()
	}
	return &Handler{
		Jobs:        jobs,
		Library:     library,
		Credentials: creds,
		Scheduler:   scheduler,
		Settings:    settings,
		Logger:      log.WithComponent("http"),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Post("/jobs", h.CreateYouTubeJob)
		r.Post("/jobs/upload", h.UploadFileJob)
		r.Get("/jobs", h.ListJobs)
		r.Get("/jobs/stats", h.JobStats)
		r.Get("/jobs/{id}", h.GetJob)
		r.Post("/jobs/{id}/retry", h.RetryJob)
		r.Post("/jobs/retry-all", h.RetryAllJobs)
		r.Delete("/jobs/{id}", h.RemoveJob)

		r.Get("/queue", h.QueueState)
		r.Post("/queue/pause", h.PauseQueue)
		r.Post("/queue/resume", h.ResumeQueue)
		r.Put("/queue/concurrency", h.SetConcurrency)

		r.Get("/library", h.ListLibrary)
		r.Get("/library/export", h.ExportLibrary)
		r.Delete("/library/{id}", h.RemoveLibraryItem)
		r.Delete("/library", h.ClearLibrary)

		r.Get("/credentials", h.ListCredentials)
		r.Post("/credentials", h.AddCredential)
		r.Delete("/credentials/{id}", h.DeleteCredential)
		r.Put("/credentials/active", h.SetActiveCredential)
		r.Put("/credentials/captions", h.SetCaptionKey)
	})
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			h.Logger.Error("Failed to encode response", "error", err)
		}
	}
}

func (h *Handler) respondError(w http.ResponseWriter, status int, msg string) {
	h.respondJSON(w, status, map[string]string{"error": msg})
}
