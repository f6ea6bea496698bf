package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Junior-NGOY/masomo-sub003/internal/models"
)

const exportJobColumns = `id, format, params, status, progress, result_url, created_by, created_at, finished_at, error_message`

// ExportJobRepository persists export job metadata.
type ExportJobRepository struct {
	db *sqlx.DB
}

// NewExportJobRepository constructs the repository.
func NewExportJobRepository(db *sqlx.DB) *ExportJobRepository {
	return &ExportJobRepository{db: db}
}

// Create inserts a new export job row with generated defaults.
func (r *ExportJobRepository) Create(ctx context.Context, job *models.ExportJob) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.Status == "" {
		job.Status = models.ExportStatusQueued
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO export_jobs (` + exportJobColumns + `)
VALUES (:id, :format, :params, :status, :progress, :result_url, :created_by, :created_at, :finished_at, :error_message)`
	if _, err := r.db.NamedExecContext(ctx, query, job); err != nil {
		return fmt.Errorf("create export job: %w", err)
	}
	return nil
}

// GetByID returns a job row by its identifier.
func (r *ExportJobRepository) GetByID(ctx context.Context, id string) (*models.ExportJob, error) {
	query := r.db.Rebind(`SELECT ` + exportJobColumns + ` FROM export_jobs WHERE id = ?`)
	var job models.ExportJob
	if err := r.db.GetContext(ctx, &job, query, id); err != nil {
		return nil, fmt.Errorf("get export job: %w", err)
	}
	return &job, nil
}

// UpdateExportJobParams defines the mutable fields.
type UpdateExportJobParams struct {
	Status       *models.ExportStatus
	Progress     *int
	ResultURL    *string
	ErrorMessage *string
	FinishedAt   *time.Time
}

// Update persists the provided changes for a job row.
func (r *ExportJobRepository) Update(ctx context.Context, id string, params UpdateExportJobParams) error {
	set := make([]string, 0, 5)
	args := make([]interface{}, 0, 6)

	if params.Status != nil {
		set = append(set, "status = ?")
		args = append(args, *params.Status)
	}
	if params.Progress != nil {
		set = append(set, "progress = ?")
		args = append(args, *params.Progress)
	}
	if params.ResultURL != nil {
		set = append(set, "result_url = ?")
		args = append(args, *params.ResultURL)
	}
	if params.ErrorMessage != nil {
		set = append(set, "error_message = ?")
		args = append(args, *params.ErrorMessage)
	}
	if params.FinishedAt != nil {
		set = append(set, "finished_at = ?")
		args = append(args, *params.FinishedAt)
	}
	if len(set) == 0 {
		return nil
	}

	query := r.db.Rebind(fmt.Sprintf("UPDATE export_jobs SET %s WHERE id = ?", strings.Join(set, ", ")))
	args = append(args, id)

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update export job: %w", err)
	}
	return nil
}

// ListByStatus fetches jobs in the given state oldest first (used for cold
// start recovery).
func (r *ExportJobRepository) ListByStatus(ctx context.Context, status models.ExportStatus, limit int) ([]models.ExportJob, error) {
	if limit <= 0 {
		limit = 20
	}
	query := r.db.Rebind(`SELECT ` + exportJobColumns + ` FROM export_jobs WHERE status = ? ORDER BY created_at ASC LIMIT ?`)
	jobs := []models.ExportJob{}
	if err := r.db.SelectContext(ctx, &jobs, query, status, limit); err != nil {
		return nil, fmt.Errorf("list export jobs: %w", err)
	}
	return jobs, nil
}

// ListFinishedBefore retrieves completed jobs prior to cutoff that still
// reference a stored file.
func (r *ExportJobRepository) ListFinishedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.ExportJob, error) {
	if limit <= 0 {
		limit = 50
	}
	query := r.db.Rebind(`SELECT ` + exportJobColumns + ` FROM export_jobs
WHERE status = ? AND finished_at IS NOT NULL AND finished_at < ? AND result_url IS NOT NULL AND result_url <> '' ORDER BY finished_at ASC LIMIT ?`)
	jobs := []models.ExportJob{}
	if err := r.db.SelectContext(ctx, &jobs, query, models.ExportStatusFinished, cutoff, limit); err != nil {
		return nil, fmt.Errorf("list finished export jobs: %w", err)
	}
	return jobs, nil
}
