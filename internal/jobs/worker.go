package jobs

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
)

// finishTimeout bounds the final status write of a job, which must still
// happen after the worker context is cancelled.
const finishTimeout = 5 * time.Second

// StartWorker runs pending jobs one at a time until ctx is done. Jobs left
// running by a previous process are put back in the queue first.
func (m *Manager) StartWorker(ctx context.Context) {
	m.logger.Info("job worker started", "poll_interval", m.pollInterval)

	if n, err := m.requeueInterrupted(ctx); err != nil {
		m.logger.Error("failed to requeue interrupted jobs", "error", err)
	} else if n > 0 {
		m.logger.Info("requeued interrupted jobs", "count", n)
	}

	ticker := time.NewTicker(m.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("job worker stopping")
			return
		case <-ticker.C:
			// Drain the queue before waiting for the next tick.
			for m.processNextJob(ctx) {
			}
		}
	}
}

// processNextJob claims and runs the oldest pending job. It reports whether
// a job was found.
func (m *Manager) processNextJob(ctx context.Context) bool {
	job, err := m.claimNextJob(ctx)
	if errors.Is(err, pgx.ErrNoRows) {
		return false
	}
	if err != nil {
		m.logger.Error("failed to claim job", "error", err)
		return false
	}

	m.runJob(ctx, job)
	return true
}

// runJob executes a claimed job and records its outcome. The outcome is
// written even when ctx was cancelled mid-crawl.
func (m *Manager) runJob(ctx context.Context, job *Job) {
	m.logger.Info("processing job", "id", job.ID, "kind", job.Kind, "target", job.Target)

	count, err := m.execute(ctx, job)

	finishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), finishTimeout)
	defer cancel()

	if err != nil {
		m.logger.Error("job failed", "id", job.ID, "error", err)
		if updateErr := m.finishJob(finishCtx, job.ID, StatusFailed, 0, err); updateErr != nil {
			m.logger.Error("failed to mark job as failed", "id", job.ID, "error", updateErr)
		}
		return
	}

	if err := m.finishJob(finishCtx, job.ID, StatusCompleted, count, nil); err != nil {
		m.logger.Error("failed to mark job as completed", "id", job.ID, "error", err)
	}

	m.logger.Info("job completed", "id", job.ID, "results", count)
}

// requeueInterrupted moves jobs stuck in running back to pending. One worker
// runs per deployment, so at startup no job can legitimately be running.
func (m *Manager) requeueInterrupted(ctx context.Context) (int64, error) {
	tag, err := m.db.Exec(ctx, `
		UPDATE crawl_jobs SET status = $1, started_at = NULL
		WHERE status = $2`,
		StatusPending, StatusRunning)
	if err != nil {
		return 0, fmt.Errorf("failed to requeue running jobs: %w", err)
	}
	return tag.RowsAffected(), nil
}

// claimNextJob moves the oldest pending job to running in a single statement,
// so two workers never pick up the same job.
func (m *Manager) claimNextJob(ctx context.Context) (*Job, error) {
	return scanJob(m.db.QueryRow(ctx, `
		UPDATE crawl_jobs SET status = $1, started_at = NOW()
		WHERE id = (
			SELECT id FROM crawl_jobs
			WHERE status = $2
			ORDER BY created_at
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING `+jobColumns,
		StatusRunning, StatusPending))
}

// execute crawls the job target and stores the result. It returns the number
// of rows or faces stored.
func (m *Manager) execute(ctx context.Context, job *Job) (int, error) {
	switch job.Kind {
	case KindSet:
		rows, err := m.crawler.FetchCardList(ctx, job.Target)
		if err != nil {
			return 0, err
		}
		if err := m.results.SaveCardSet(ctx, job.ID, job.Target, rows); err != nil {
			return 0, err
		}
		return len(rows), nil

	case KindCard:
		id, err := strconv.Atoi(job.Target)
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrInvalidJob, err)
		}
		faces, err := m.crawler.FetchCard(ctx, id)
		if err != nil {
			return 0, err
		}
		if err := m.results.SaveCard(ctx, job.ID, id, faces); err != nil {
			return 0, err
		}
		return len(faces), nil

	default:
		return 0, fmt.Errorf("%w: unknown kind %q", ErrInvalidJob, job.Kind)
	}
}

func (m *Manager) finishJob(ctx context.Context, jobID, status string, count int, jobErr error) error {
	message := ""
	if jobErr != nil {
		message = jobErr.Error()
	}

	_, err := m.db.Exec(ctx, `
		UPDATE crawl_jobs
		SET status = $1, result_count = $2, error = $3, completed_at = NOW()
		WHERE id = $4`,
		status, count, message, jobID)
	return err
}
