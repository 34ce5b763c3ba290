package store

import (
	"database/sql"
	"time"

	"github.com/nobita6986/BatchTranscriber/internal/domain"
)

func (db *DB) CreateJob(job *domain.Job) error {
	query := `INSERT INTO jobs (id, source, status, display_name, thumbnail, source_url, media_path, mime_type, file_size, transcript, progress, created_at, updated_at)
		VALUES (:id, :source, :status, :display_name, :thumbnail, :source_url, :media_path, :mime_type, :file_size, :transcript, :progress, :created_at, :updated_at)`

	_, err := db.NamedExec(query, job)
	return err
}

func (db *DB) GetJob(id string) (*domain.Job, error) {
	query := `SELECT * FROM jobs WHERE id = ?`

	job := &domain.Job{}
	err := db.Get(job, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return job, nil
}

func (db *DB) ListJobs(limit int) ([]*domain.Job, error) {
	query := `SELECT * FROM jobs ORDER BY created_at ASC, id ASC LIMIT ?`

	var jobs []*domain.Job
	err := db.Select(&jobs, query, limit)
	return jobs, err
}

// ListIdleJobs returns idle jobs in queue insertion order.
func (db *DB) ListIdleJobs() ([]*domain.Job, error) {
	query := `SELECT * FROM jobs WHERE status = ? ORDER BY created_at ASC, id ASC`

	var jobs []*domain.Job
	err := db.Select(&jobs, query, domain.JobStatusIdle)
	return jobs, err
}

// CountActiveJobs counts jobs currently occupying a concurrency slot.
func (db *DB) CountActiveJobs() (int, error) {
	query := `SELECT COUNT(*) FROM jobs WHERE status IN (?, ?)`

	var count int
	err := db.Get(&count, query, domain.JobStatusUploading, domain.JobStatusProcessing)
	return count, err
}

// ClaimJob flips an idle job to uploading. The conditional update is the
// admission atomicity guarantee: only one scheduling pass can win the claim.
func (db *DB) ClaimJob(id string) (bool, error) {
	query := `UPDATE jobs SET status = ?, updated_at = ? WHERE id = ? AND status = ?`

	res, err := db.Exec(query, domain.JobStatusUploading, time.Now(), id, domain.JobStatusIdle)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (db *DB) UpdateJobStatus(id string, status domain.JobStatus, progress float64) error {
	query := `UPDATE jobs SET status = ?, progress = ?, updated_at = ? WHERE id = ?`
	_, err := db.Exec(query, status, progress, time.Now(), id)
	return err
}

func (db *DB) UpdateJobError(id string, errorMsg string) error {
	query := `UPDATE jobs SET status = ?, error = ?, transcript = '', progress = 0, updated_at = ? WHERE id = ?`
	_, err := db.Exec(query, domain.JobStatusError, errorMsg, time.Now(), id)
	return err
}

// CompleteJob records the final transcript. A removed job's row is gone by
// now, so the update silently misses and the result is discarded.
func (db *DB) CompleteJob(id string, transcript string) error {
	now := time.Now()
	query := `UPDATE jobs SET status = ?, transcript = ?, error = NULL, progress = 100, completed_at = ?, updated_at = ? WHERE id = ?`
	_, err := db.Exec(query, domain.JobStatusCompleted, transcript, now, now, id)
	return err
}

// ResetJob returns an errored job to idle for another attempt.
func (db *DB) ResetJob(id string) error {
	query := `UPDATE jobs SET status = ?, error = NULL, transcript = '', progress = 0, updated_at = ? WHERE id = ?`
	_, err := db.Exec(query, domain.JobStatusIdle, time.Now(), id)
	return err
}

// ResetFailedJobs returns every errored job to idle.
func (db *DB) ResetFailedJobs() (int64, error) {
	query := `UPDATE jobs SET status = ?, error = NULL, transcript = '', progress = 0, updated_at = ? WHERE status = ?`
	res, err := db.Exec(query, domain.JobStatusIdle, time.Now(), domain.JobStatusError)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// UpdateJobMetadata applies asynchronously fetched display metadata without
// touching job state.
func (db *DB) UpdateJobMetadata(id string, displayName string, thumbnail string) error {
	query := `UPDATE jobs SET display_name = ?, thumbnail = ?, updated_at = ? WHERE id = ?`
	_, err := db.Exec(query, displayName, thumbnail, time.Now(), id)
	return err
}

func (db *DB) UpdateJobProgress(id string, progress float64) error {
	query := `UPDATE jobs SET progress = ?, updated_at = ? WHERE id = ?`
	_, err := db.Exec(query, progress, time.Now(), id)
	return err
}

func (db *DB) DeleteJob(id string) error {
	query := `DELETE FROM jobs WHERE id = ?`
	_, err := db.Exec(query, id)
	return err
}

// ResetStuckJobs returns jobs left mid-flight by a previous process to idle.
func (db *DB) ResetStuckJobs() error {
	query := `UPDATE jobs SET status = ?, progress = 0, updated_at = ? WHERE status IN (?, ?)`
	_, err := db.Exec(query, domain.JobStatusIdle, time.Now(), domain.JobStatusUploading, domain.JobStatusProcessing)
	return err
}

type JobStats struct {
	Total     int `db:"total"`
	Completed int `db:"completed"`
	Failed    int `db:"failed"`
}

func (db *DB) GetJobStats() (*JobStats, error) {
	query := `SELECT
		COUNT(*) as total,
		COALESCE(SUM(CASE WHEN status = 'completed' THEN 1 ELSE 0 END), 0) as completed,
		COALESCE(SUM(CASE WHEN status = 'error' THEN 1 ELSE 0 END), 0) as failed
	FROM jobs`

	stats := &JobStats{}
	err := db.Get(stats, query)
	return stats, err
}
