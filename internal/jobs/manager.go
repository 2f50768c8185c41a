package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/maltedev/gatherer-scraper/internal/database"
	"github.com/maltedev/gatherer-scraper/internal/models"
)

type Kind string

const (
	KindSet  Kind = "set"
	KindCard Kind = "card"
)

const (
	StatusPending   = "pending"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

var (
	ErrInvalidJob  = errors.New("invalid job")
	ErrJobNotFound = errors.New("job not found")
)

// CardCrawler is the crawl side of a job.
type CardCrawler interface {
	FetchCardList(ctx context.Context, setName string) ([]*models.CardListRow, error)
	FetchCard(ctx context.Context, multiverseID int) ([]*models.CardFace, error)
}

// ResultStore persists what a job crawled.
type ResultStore interface {
	SaveCardSet(ctx context.Context, jobID, setName string, rows []*models.CardListRow) error
	SaveCard(ctx context.Context, jobID string, multiverseID int, faces []*models.CardFace) error
}

// Querier is the slice of database.DB the job manager runs its statements on.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// Job is one asynchronous crawl of a set or a card.
type Job struct {
	ID          string     `json:"id"`
	Kind        Kind       `json:"kind"`
	Target      string     `json:"target"`
	Status      string     `json:"status"`
	ResultCount int        `json:"result_count"`
	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Error       string     `json:"error,omitempty"`
}

type Stats struct {
	TotalJobs     int     `json:"total_jobs"`
	PendingJobs   int     `json:"pending_jobs"`
	RunningJobs   int     `json:"running_jobs"`
	CompletedJobs int     `json:"completed_jobs"`
	FailedJobs    int     `json:"failed_jobs"`
	SuccessRate   float64 `json:"success_rate"`
	StoredSets    int     `json:"stored_sets"`
	StoredCards   int     `json:"stored_cards"`
}

type Manager struct {
	db           Querier
	cards        *database.CardStore
	crawler      CardCrawler
	results      ResultStore
	pollInterval time.Duration
	logger       *slog.Logger
}

func NewManager(db *database.DB, crawler CardCrawler, results ResultStore, pollInterval time.Duration, logger *slog.Logger) *Manager {
	if pollInterval <= 0 {
		pollInterval = 10 * time.Second
	}

	return &Manager{
		db:           db,
		cards:        database.NewCardStore(db),
		crawler:      crawler,
		results:      results,
		pollInterval: pollInterval,
		logger:       logger.With("component", "job_manager"),
	}
}

// Validate checks a job request and returns the normalized target.
func Validate(kind Kind, target string) (string, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return "", fmt.Errorf("%w: target is required", ErrInvalidJob)
	}

	switch kind {
	case KindSet:
		return target, nil
	case KindCard:
		id, err := strconv.Atoi(target)
		if err != nil || id <= 0 {
			return "", fmt.Errorf("%w: card target must be a positive multiverse id, got %q", ErrInvalidJob, target)
		}
		return strconv.Itoa(id), nil
	default:
		return "", fmt.Errorf("%w: unknown kind %q", ErrInvalidJob, kind)
	}
}

func (m *Manager) CreateJob(ctx context.Context, kind Kind, target string) (*Job, error) {
	target, err := Validate(kind, target)
	if err != nil {
		return nil, err
	}

	job := &Job{
		ID:        uuid.New().String(),
		Kind:      kind,
		Target:    target,
		Status:    StatusPending,
		CreatedAt: time.Now(),
	}

	_, err = m.db.Exec(ctx, `
		INSERT INTO crawl_jobs (id, kind, target, status, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		job.ID, job.Kind, job.Target, job.Status, job.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}

	m.logger.Info("job created", "id", job.ID, "kind", kind, "target", target)
	return job, nil
}

const jobColumns = `id, kind, target, status, result_count, error, created_at, started_at, completed_at`

func scanJob(row pgx.Row) (*Job, error) {
	job := &Job{}
	err := row.Scan(
		&job.ID, &job.Kind, &job.Target, &job.Status, &job.ResultCount, &job.Error,
		&job.CreatedAt, &job.StartedAt, &job.CompletedAt,
	)
	return job, err
}

func (m *Manager) GetJob(ctx context.Context, jobID string) (*Job, error) {
	if _, err := uuid.Parse(jobID); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
	}

	job, err := scanJob(m.db.QueryRow(ctx,
		`SELECT `+jobColumns+` FROM crawl_jobs WHERE id = $1`, jobID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	return job, nil
}

// ListJobs returns the 100 most recent jobs.
func (m *Manager) ListJobs(ctx context.Context) ([]*Job, error) {
	rows, err := m.db.Query(ctx,
		`SELECT `+jobColumns+` FROM crawl_jobs ORDER BY created_at DESC LIMIT 100`)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	jobs := make([]*Job, 0)
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, job)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating jobs: %w", err)
	}

	return jobs, nil
}

func (m *Manager) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}

	err := m.db.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'pending'),
			COUNT(*) FILTER (WHERE status = 'running'),
			COUNT(*) FILTER (WHERE status = 'completed'),
			COUNT(*) FILTER (WHERE status = 'failed')
		FROM crawl_jobs`,
	).Scan(&stats.TotalJobs, &stats.PendingJobs, &stats.RunningJobs, &stats.CompletedJobs, &stats.FailedJobs)
	if err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}

	stats.SuccessRate = successRate(stats.CompletedJobs, stats.TotalJobs)

	stats.StoredSets, stats.StoredCards, err = m.cards.Counts(ctx)
	if err != nil {
		return nil, err
	}

	return stats, nil
}

func successRate(completed, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(completed) / float64(total) * 100
}
