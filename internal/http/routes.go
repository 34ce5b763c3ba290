package httpapp

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/nobita6986/BatchTranscriber/internal/constants"
	"github.com/nobita6986/BatchTranscriber/internal/domain"
	"github.com/nobita6986/BatchTranscriber/internal/http/dto"
	"github.com/nobita6986/BatchTranscriber/internal/store"
)

func (h *Handler) CreateYouTubeJob(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.URL == "" {
		h.respondError(w, http.StatusBadRequest, "url is required")
		return
	}

	job, err := h.Jobs.EnqueueYouTube(req.URL)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidURL) {
			h.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.Scheduler.Kick()
	h.respondJSON(w, http.StatusCreated, dto.NewJobResponse(job))
}

func (h *Handler) UploadFileJob(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(constants.MaxUploadBytes); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	job, err := h.Jobs.EnqueueFile(header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.Scheduler.Kick()
	h.respondJSON(w, http.StatusCreated, dto.NewJobResponse(job))
}

func (h *Handler) ListJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.Jobs.ListJobs()
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.respondJSON(w, http.StatusOK, dto.NewJobListResponse(jobs))
}

func (h *Handler) GetJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	job, err := h.Jobs.GetJob(id)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if job == nil {
		h.respondError(w, http.StatusNotFound, "job not found")
		return
	}
	h.respondJSON(w, http.StatusOK, dto.NewJobResponse(job))
}

func (h *Handler) JobStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Jobs.GetJobStats()
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.respondJSON(w, http.StatusOK, stats)
}

// RetryJob resets an errored job and resumes a paused queue so the retry is
// actually picked up.
func (h *Handler) RetryJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Jobs.RetryJob(id); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.Scheduler.Resume()
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "retried"})
}

func (h *Handler) RetryAllJobs(w http.ResponseWriter, r *http.Request) {
	n, err := h.Jobs.RetryAllFailed()
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.Scheduler.Resume()
	h.respondJSON(w, http.StatusOK, map[string]int64{"retried": n})
}

func (h *Handler) RemoveJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Jobs.RemoveJob(id); err != nil {
		h.respondError(w, http.StatusNotFound, err.Error())
		return
	}
	h.Scheduler.Kick()
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

func (h *Handler) QueueState(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, dto.QueueStateResponse{
		Paused: h.Scheduler.Paused(),
		Limit:  h.Scheduler.Limit(),
	})
}

func (h *Handler) PauseQueue(w http.ResponseWriter, r *http.Request) {
	h.Scheduler.Pause()
	h.respondJSON(w, http.StatusOK, dto.QueueStateResponse{Paused: true, Limit: h.Scheduler.Limit()})
}

func (h *Handler) ResumeQueue(w http.ResponseWriter, r *http.Request) {
	h.Scheduler.Resume()
	h.respondJSON(w, http.StatusOK, dto.QueueStateResponse{Paused: false, Limit: h.Scheduler.Limit()})
}

func (h *Handler) SetConcurrency(w http.ResponseWriter, r *http.Request) {
	var req dto.ConcurrencyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Limit < constants.MinConcurrency || req.Limit > constants.MaxConcurrency {
		h.respondError(w, http.StatusBadRequest,
			"limit must be between "+strconv.Itoa(constants.MinConcurrency)+" and "+strconv.Itoa(constants.MaxConcurrency))
		return
	}
	limit := h.Scheduler.SetLimit(req.Limit)
	if err := h.Settings.Set(store.SettingConcurrency, strconv.Itoa(limit)); err != nil {
		h.Logger.Error("Failed to persist concurrency setting", "error", err)
	}
	h.respondJSON(w, http.StatusOK, dto.QueueStateResponse{Paused: h.Scheduler.Paused(), Limit: limit})
}

func (h *Handler) ListLibrary(w http.ResponseWriter, r *http.Request) {
	items, err := h.Library.List()
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.respondJSON(w, http.StatusOK, dto.NewLibraryListResponse(items))
}

func (h *Handler) ExportLibrary(w http.ResponseWriter, r *http.Request) {
	blob, err := h.Library.ExportAll()
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="transcripts.txt"`)
	_, _ = w.Write([]byte(blob))
}

func (h *Handler) RemoveLibraryItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Library.Remove(id); err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

func (h *Handler) ClearLibrary(w http.ResponseWriter, r *http.Request) {
	if err := h.Library.Clear(); err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

func (h *Handler) ListCredentials(w http.ResponseWriter, r *http.Request) {
	creds, err := h.Credentials.List()
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.respondJSON(w, http.StatusOK, dto.NewCredentialListResponse(creds, h.Credentials.ActiveID()))
}

func (h *Handler) AddCredential(w http.ResponseWriter, r *http.Request) {
	var req dto.AddCredentialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cred, err := h.Credentials.Add(req.Name, req.Secret)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.respondJSON(w, http.StatusCreated, dto.NewCredentialResponse(cred, h.Credentials.ActiveID()))
}

func (h *Handler) DeleteCredential(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Credentials.Delete(id); err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) SetActiveCredential(w http.ResponseWriter, r *http.Request) {
	var req dto.SetActiveCredentialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.Credentials.SetActive(req.ID); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "active"})
}

func (h *Handler) SetCaptionKey(w http.ResponseWriter, r *http.Request) {
	var req dto.CaptionKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.Credentials.SetCaptionKey(req.Key); err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}
