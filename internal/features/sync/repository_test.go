package sync

import (
	"context"
	"testing"
	"time"

	"crm-backend/internal/database"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockJobRepo(t *testing.T) (SyncJobRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewSyncJobRepository(&database.PostgresDB{DB: db}), mock
}

func TestSyncJobCreate(t *testing.T) {
	repo, mock := newMockJobRepo(t)

	now := time.Now()
	mock.ExpectQuery("INSERT INTO sync_job").
		WithArgs("job-1", ServiceName, JobTypeFull, JobStatusPending).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
			AddRow(int64(7), now, now))

	job := &SyncJob{
		JobID:       "job-1",
		ServiceName: ServiceName,
		JobType:     JobTypeFull,
		Status:      JobStatusPending,
	}
	require.NoError(t, repo.Create(context.Background(), job))
	assert.Equal(t, int64(7), job.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSyncJobGetDecodesResultData(t *testing.T) {
	repo, mock := newMockJobRepo(t)

	now := time.Now()
	resultJSON := []byte(`{"job_type":"full_sync","entities":{"products":{"created":5,"updated":0,"failed":0}}}`)
	mock.ExpectQuery("SELECT (.+) FROM sync_job WHERE job_id").
		WithArgs("job-1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "job_id", "service_name", "job_type", "status", "started_at", "completed_at",
			"total_items", "processed_items", "failed_items", "result_data", "error_message",
			"created_at", "updated_at",
		}).AddRow(int64(1), "job-1", ServiceName, JobTypeFull, JobStatusCompleted,
			now, now, 5, 5, 0, resultJSON, nil, now, now))

	job, err := repo.Get(context.Background(), "job-1")
	require.NoError(t, err)

	assert.Equal(t, JobStatusCompleted, job.Status)
	assert.NotNil(t, job.StartedAt)
	assert.NotNil(t, job.CompletedAt)
	assert.Empty(t, job.ErrorMessage)
	assert.Contains(t, job.ResultData, "entities")
}

func TestSyncJobMarkFailed(t *testing.T) {
	repo, mock := newMockJobRepo(t)

	mock.ExpectExec("UPDATE sync_job").
		WithArgs(JobStatusFailed, "auth failed", "job-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.MarkFailed(context.Background(), "job-1", "auth failed"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHasActiveJob(t *testing.T) {
	repo, mock := newMockJobRepo(t)

	mock.ExpectQuery("SELECT COUNT").
		WithArgs(ServiceName, JobStatusPending, JobStatusRunning).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	active, err := repo.HasActiveJob(context.Background())
	require.NoError(t, err)
	assert.True(t, active)
}

func TestIntegrationConfigGet(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewIntegrationConfigRepository(&database.PostgresDB{DB: db})

	now := time.Now()
	mock.ExpectQuery("SELECT (.+) FROM integration_config").
		WithArgs(ServiceName).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "service_name", "is_enabled", "sync_interval_minutes",
			"last_sync_at", "next_sync_at", "sync_status", "error_message",
			"created_at", "updated_at",
		}).AddRow(int64(1), ServiceName, true, 15, now, nil, "active", nil, now, now))

	cfg, err := repo.Get(context.Background())
	require.NoError(t, err)

	assert.True(t, cfg.IsEnabled)
	assert.Equal(t, 15, cfg.SyncIntervalMinutes)
	assert.NotNil(t, cfg.LastSyncAt)
	assert.Nil(t, cfg.NextSyncAt)
}
