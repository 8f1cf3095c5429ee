package sync

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"crm-backend/internal/database"
)

type SyncJobRepository interface {
	Create(ctx context.Context, job *SyncJob) error
	Get(ctx context.Context, jobID string) (*SyncJob, error)
	List(ctx context.Context, limit int) ([]SyncJob, error)
	MarkRunning(ctx context.Context, jobID string) error
	MarkCompleted(ctx context.Context, jobID string, summary *SyncSummary) error
	MarkFailed(ctx context.Context, jobID string, errMsg string) error
	MarkSkipped(ctx context.Context, jobID string, reason string) error
	HasActiveJob(ctx context.Context) (bool, error)
}

type IntegrationConfigRepository interface {
	Get(ctx context.Context) (*IntegrationConfig, error)
	Upsert(ctx context.Context, cfg *IntegrationConfig) error
	RecordSyncResult(ctx context.Context, status string, errMsg string, nextSyncAt time.Time) error
}

type SyncJobRepositoryImpl struct {
	db *sql.DB
}

func NewSyncJobRepository(db *database.PostgresDB) SyncJobRepository {
	return &SyncJobRepositoryImpl{db: db.DB}
}

const syncJobColumns = `id, job_id, service_name, job_type, status, started_at, completed_at,
	total_items, processed_items, failed_items, result_data, error_message, created_at, updated_at`

func (r *SyncJobRepositoryImpl) Create(ctx context.Context, job *SyncJob) error {
	query := `INSERT INTO sync_job (job_id, service_name, job_type, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`
	return r.db.QueryRowContext(ctx, query, job.JobID, job.ServiceName, job.JobType, job.Status).
		Scan(&job.ID, &job.CreatedAt, &job.UpdatedAt)
}

func (r *SyncJobRepositoryImpl) Get(ctx context.Context, jobID string) (*SyncJob, error) {
	query := `SELECT ` + syncJobColumns + ` FROM sync_job WHERE job_id = $1`
	return scanSyncJob(r.db.QueryRowContext(ctx, query, jobID))
}

func (r *SyncJobRepositoryImpl) List(ctx context.Context, limit int) ([]SyncJob, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `SELECT ` + syncJobColumns + ` FROM sync_job ORDER BY created_at DESC LIMIT $1`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []SyncJob
	for rows.Next() {
		job, err := scanSyncJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *job)
	}
	return jobs, rows.Err()
}

func (r *SyncJobRepositoryImpl) MarkRunning(ctx context.Context, jobID string) error {
	query := `UPDATE sync_job
		SET status = $1, started_at = NOW(), updated_at = NOW()
		WHERE job_id = $2`
	_, err := r.db.ExecContext(ctx, query, JobStatusRunning, jobID)
	return err
}

func (r *SyncJobRepositoryImpl) MarkCompleted(ctx context.Context, jobID string, summary *SyncSummary) error {
	resultData, err := json.Marshal(summary)
	if err != nil {
		return err
	}

	query := `UPDATE sync_job
		SET status = $1, completed_at = NOW(), updated_at = NOW(),
			total_items = $2, processed_items = $3, failed_items = $4, result_data = $5
		WHERE job_id = $6`
	processed := summary.TotalProcessed()
	failed := summary.TotalFailed()
	_, err = r.db.ExecContext(ctx, query, JobStatusCompleted,
		processed+failed, processed, failed, resultData, jobID)
	return err
}

func (r *SyncJobRepositoryImpl) MarkFailed(ctx context.Context, jobID string, errMsg string) error {
	query := `UPDATE sync_job
		SET status = $1, completed_at = NOW(), updated_at = NOW(), error_message = $2
		WHERE job_id = $3`
	_, err := r.db.ExecContext(ctx, query, JobStatusFailed, errMsg, jobID)
	return err
}

func (r *SyncJobRepositoryImpl) MarkSkipped(ctx context.Context, jobID string, reason string) error {
	query := `UPDATE sync_job
		SET status = $1, completed_at = NOW(), updated_at = NOW(), error_message = $2
		WHERE job_id = $3`
	_, err := r.db.ExecContext(ctx, query, JobStatusSkipped, reason, jobID)
	return err
}

// HasActiveJob reports whether a sync run is pending or in flight, used to
// keep concurrent runs from stepping on each other.
func (r *SyncJobRepositoryImpl) HasActiveJob(ctx context.Context) (bool, error) {
	query := `SELECT COUNT(*) FROM sync_job
		WHERE service_name = $1 AND status IN ($2, $3)`
	var count int
	err := r.db.QueryRowContext(ctx, query, ServiceName, JobStatusPending, JobStatusRunning).Scan(&count)
	return count > 0, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSyncJob(row rowScanner) (*SyncJob, error) {
	var job SyncJob
	var startedAt, completedAt sql.NullTime
	var resultData []byte
	var errMsg sql.NullString

	err := row.Scan(&job.ID, &job.JobID, &job.ServiceName, &job.JobType, &job.Status,
		&startedAt, &completedAt, &job.TotalItems, &job.ProcessedItems, &job.FailedItems,
		&resultData, &errMsg, &job.CreatedAt, &job.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if startedAt.Valid {
		job.StartedAt = &startedAt.Time
	}
	if completedAt.Valid {
		job.CompletedAt = &completedAt.Time
	}
	if errMsg.Valid {
		job.ErrorMessage = errMsg.String
	}
	if len(resultData) > 0 {
		_ = json.Unmarshal(resultData, &job.ResultData)
	}
	return &job, nil
}

type IntegrationConfigRepositoryImpl struct {
	db *sql.DB
}

func NewIntegrationConfigRepository(db *database.PostgresDB) IntegrationConfigRepository {
	return &IntegrationConfigRepositoryImpl{db: db.DB}
}

func (r *IntegrationConfigRepositoryImpl) Get(ctx context.Context) (*IntegrationConfig, error) {
	query := `SELECT id, service_name, is_enabled, sync_interval_minutes,
			last_sync_at, next_sync_at, sync_status, error_message, created_at, updated_at
		FROM integration_config WHERE service_name = $1`

	var cfg IntegrationConfig
	var lastSync, nextSync sql.NullTime
	var errMsg sql.NullString
	err := r.db.QueryRowContext(ctx, query, ServiceName).Scan(
		&cfg.ID, &cfg.ServiceName, &cfg.IsEnabled, &cfg.SyncIntervalMinutes,
		&lastSync, &nextSync, &cfg.SyncStatus, &errMsg, &cfg.CreatedAt, &cfg.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if lastSync.Valid {
		cfg.LastSyncAt = &lastSync.Time
	}
	if nextSync.Valid {
		cfg.NextSyncAt = &nextSync.Time
	}
	if errMsg.Valid {
		cfg.ErrorMessage = errMsg.String
	}
	return &cfg, nil
}

func (r *IntegrationConfigRepositoryImpl) Upsert(ctx context.Context, cfg *IntegrationConfig) error {
	query := `INSERT INTO integration_config (service_name, is_enabled, sync_interval_minutes, sync_status)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (service_name) DO UPDATE SET
			is_enabled = EXCLUDED.is_enabled,
			sync_interval_minutes = EXCLUDED.sync_interval_minutes,
			updated_at = NOW()
		RETURNING id, created_at, updated_at`
	status := cfg.SyncStatus
	if status == "" {
		status = "inactive"
	}
	return r.db.QueryRowContext(ctx, query,
		ServiceName, cfg.IsEnabled, cfg.SyncIntervalMinutes, status).
		Scan(&cfg.ID, &cfg.CreatedAt, &cfg.UpdatedAt)
}

// RecordSyncResult stamps the outcome of the latest run on the config row.
func (r *IntegrationConfigRepositoryImpl) RecordSyncResult(ctx context.Context, status string, errMsg string, nextSyncAt time.Time) error {
	query := `UPDATE integration_config
		SET last_sync_at = NOW(), next_sync_at = $1, sync_status = $2,
			error_message = $3, updated_at = NOW()
		WHERE service_name = $4`
	var errVal any
	if errMsg != "" {
		errVal = errMsg
	}
	_, err := r.db.ExecContext(ctx, query, nextSyncAt, status, errVal, ServiceName)
	return err
}
