package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nobita6986/BatchTranscriber/internal/app"
	"github.com/nobita6986/BatchTranscriber/internal/constants"
	"github.com/nobita6986/BatchTranscriber/internal/domain"
	"github.com/nobita6986/BatchTranscriber/internal/logger"
	"github.com/nobita6986/BatchTranscriber/internal/store"
)

// Scheduler owns the queue: it admits idle jobs up to the concurrency limit
// and drives each admitted job to a terminal state. The limit is a soft cap
// recomputed from live counts on every pass, not a worker-pool allocation.
type Scheduler struct {
	Repo        *store.DB
	Library     *app.LibraryService
	Credentials *app.CredentialService
	Dispatcher  *Dispatcher
	Logger      *logger.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	wake   chan struct{}

	mu     sync.Mutex
	limit  int
	paused bool
}

func NewScheduler(repo *store.DB, library *app.LibraryService, creds *app.CredentialService, dispatcher *Dispatcher, limit int, log *logger.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	if log == nil {
		log = logger.Default()
	}

	return &Scheduler{
		Repo:        repo,
		Library:     library,
		Credentials: creds,
		Dispatcher:  dispatcher,
		Logger:      log.WithComponent("scheduler"),
		ctx:         ctx,
		cancel:      cancel,
		wake:        make(chan struct{}, 1),
		limit:       clampLimit(limit),
	}
}

func (s *Scheduler) Start() {
	s.Logger.Info("Starting scheduler", "limit", s.Limit())

	if err := s.Repo.ResetStuckJobs(); err != nil {
		s.Logger.Error("Failed to reset stuck jobs", "error", err)
	}

	s.wg.Add(1)
	go s.run()
}

func (s *Scheduler) Stop() {
	s.Logger.Info("Stopping scheduler")
	s.cancel()
	s.wg.Wait()
}

// Kick requests a prompt scheduling pass without waiting for the ticker.
func (s *Scheduler) Kick() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Scheduler) Pause() {
	s.mu.Lock()
	s.paused = true
	s.mu.Unlock()
	s.Logger.Info("Queue paused")
}

func (s *Scheduler) Resume() {
	s.mu.Lock()
	s.paused = false
	s.mu.Unlock()
	s.Logger.Info("Queue resumed")
	s.Kick()
}

func (s *Scheduler) Paused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

func (s *Scheduler) Limit() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.limit
}

// SetLimit adjusts the concurrency cap at runtime. Values are clamped to the
// supported range; running jobs are never interrupted by a lower cap.
func (s *Scheduler) SetLimit(limit int) int {
	limit = clampLimit(limit)
	s.mu.Lock()
	s.limit = limit
	s.mu.Unlock()
	s.Logger.Info("Concurrency limit changed", "limit", limit)
	s.Kick()
	return limit
}

func clampLimit(limit int) int {
	if limit < constants.MinConcurrency {
		return constants.MinConcurrency
	}
	if limit > constants.MaxConcurrency {
		return constants.MaxConcurrency
	}
	return limit
}

func (s *Scheduler) run() {
	defer s.wg.Done()
	ticker := time.NewTicker(constants.DefaultPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
		case <-s.wake:
		}
		s.schedulePass()
	}
}

// schedulePass computes free slots from live counts and admits idle jobs in
// insertion order. The store's conditional claim makes each admission
// atomic: a job flips to non-idle before any suspension point.
func (s *Scheduler) schedulePass() {
	if s.Paused() {
		return
	}

	active, err := s.Repo.CountActiveJobs()
	if err != nil {
		s.Logger.Error("Failed to count active jobs", "error", err)
		return
	}

	slots := s.Limit() - active
	if slots <= 0 {
		return
	}

	idle, err := s.Repo.ListIdleJobs()
	if err != nil {
		s.Logger.Error("Failed to list idle jobs", "error", err)
		return
	}

	admitted := 0
	for _, job := range idle {
		if admitted >= slots {
			break
		}

		claimed, err := s.Repo.ClaimJob(job.ID)
		if err != nil {
			s.Logger.Error("Failed to claim job", "job_id", job.ID, "error", err)
			continue
		}
		if !claimed {
			continue
		}

		// Admission requires a transcription credential. Without one the
		// job errors out and the queue pauses instead of burning every
		// remaining idle job on the same condition.
		if s.Credentials.ResolveTranscriptionKey() == "" {
			_ = s.Repo.UpdateJobError(job.ID, domain.ErrMissingCredential.Error())
			s.Logger.Warn("No transcription credential configured, pausing queue", "job_id", job.ID)
			s.Pause()
			return
		}

		admitted++
		s.wg.Add(1)
		go func(j *domain.Job) {
			defer s.wg.Done()
			s.runJob(s.ctx, j)
			s.Kick()
		}(job)
	}
}

func (s *Scheduler) runJob(ctx context.Context, job *domain.Job) {
	defer func() {
		if r := recover(); r != nil {
			s.Logger.Error("Panic in job",
				"job_id", job.ID,
				"panic", r,
			)
			_ = s.Repo.UpdateJobError(job.ID, fmt.Sprintf("Panic: %v", r))
		}
	}()

	log := s.Logger.WithJob(job.ID, string(job.Source))
	log.Info("Running job", "display_name", job.DisplayName)

	transcript, err := s.Dispatcher.Dispatch(ctx, job, log)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			log.Info("Job abandoned on shutdown")
			return
		}
		log.Error("Job failed", "error", err)
		_ = s.Repo.UpdateJobError(job.ID, err.Error())
		return
	}

	if err := s.Repo.CompleteJob(job.ID, transcript); err != nil {
		log.Error("Failed to record transcript", "error", err)
		return
	}

	// Re-read the row for the freshest display name; metadata may have
	// arrived after enqueue. A nil row means the job was removed while in
	// flight and its result is discarded.
	snapshot, err := s.Repo.GetJob(job.ID)
	if err != nil || snapshot == nil {
		if snapshot == nil {
			log.Info("Job removed while in flight, result discarded")
		}
		return
	}

	if _, err := s.Library.AddFromJob(snapshot); err != nil {
		log.Error("Failed to add library item", "error", err)
	}

	log.Info("Job completed", "chars", len(transcript))
}
