package sync

import "time"

// Job statuses.
const (
	JobStatusPending   = "pending"
	JobStatusRunning   = "running"
	JobStatusCompleted = "completed"
	JobStatusFailed    = "failed"
	JobStatusSkipped   = "skipped"
)

// Job types.
const (
	JobTypeFull        = "full_sync"
	JobTypeIncremental = "incremental_sync"
)

// ServiceName identifies the ERP integration in sync_job and
// integration_config rows.
const ServiceName = "moysklad"

// SyncJob is one tracked sync run.
type SyncJob struct {
	ID             int64          `json:"id"`
	JobID          string         `json:"job_id"`
	ServiceName    string         `json:"service_name"`
	JobType        string         `json:"job_type"`
	Status         string         `json:"status"`
	StartedAt      *time.Time     `json:"started_at"`
	CompletedAt    *time.Time     `json:"completed_at"`
	TotalItems     int            `json:"total_items"`
	ProcessedItems int            `json:"processed_items"`
	FailedItems    int            `json:"failed_items"`
	ResultData     map[string]any `json:"result_data,omitempty"`
	ErrorMessage   string         `json:"error_message,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// IntegrationConfig holds the stored state of the ERP connection.
type IntegrationConfig struct {
	ID                  int64      `json:"id"`
	ServiceName         string     `json:"service_name"`
	IsEnabled           bool       `json:"is_enabled"`
	SyncIntervalMinutes int        `json:"sync_interval_minutes"`
	LastSyncAt          *time.Time `json:"last_sync_at"`
	NextSyncAt          *time.Time `json:"next_sync_at"`
	SyncStatus          string     `json:"sync_status"`
	ErrorMessage        string     `json:"error_message,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// EntityResult counts the outcome of one entity type within a run.
type EntityResult struct {
	Created int    `json:"created"`
	Updated int    `json:"updated"`
	Failed  int    `json:"failed"`
	Error   string `json:"error,omitempty"`
}

// SyncSummary is the aggregated result of one sync run, stored as the job's
// result_data and returned to API callers.
type SyncSummary struct {
	JobType    string                  `json:"job_type"`
	StartedAt  time.Time               `json:"started_at"`
	FinishedAt time.Time               `json:"finished_at"`
	Entities   map[string]EntityResult `json:"entities"`
	Resolved   map[string]int          `json:"resolved"`
	Errors     []string                `json:"errors,omitempty"`
}

// NewSyncSummary returns an empty summary ready to accumulate results.
func NewSyncSummary(jobType string) *SyncSummary {
	return &SyncSummary{
		JobType:   jobType,
		StartedAt: time.Now().UTC(),
		Entities:  make(map[string]EntityResult),
		Resolved:  make(map[string]int),
	}
}

// TotalProcessed sums created and updated counts across all entities.
func (s *SyncSummary) TotalProcessed() int {
	total := 0
	for _, r := range s.Entities {
		total += r.Created + r.Updated
	}
	return total
}

// TotalFailed sums failed counts across all entities.
func (s *SyncSummary) TotalFailed() int {
	total := 0
	for _, r := range s.Entities {
		total += r.Failed
	}
	return total
}
