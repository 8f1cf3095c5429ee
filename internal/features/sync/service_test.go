package sync

import (
	"context"
	"database/sql"
	stdsync "sync"
	"testing"
	"time"

	"crm-backend/internal/moysklad"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeClient serves canned rows per entity name.
type fakeClient struct {
	rows map[string][]map[string]any
	errs map[string]error

	// lastSince records the filter passed to incremental-capable fetchers.
	lastSince map[string]*time.Time
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		rows:      make(map[string][]map[string]any),
		errs:      make(map[string]error),
		lastSince: make(map[string]*time.Time),
	}
}

func (f *fakeClient) serve(name string, since *time.Time) ([]map[string]any, error) {
	f.lastSince[name] = since
	if err := f.errs[name]; err != nil {
		return nil, err
	}
	return f.rows[name], nil
}

func (f *fakeClient) TestConnection(ctx context.Context) *moysklad.ConnectionTest {
	return &moysklad.ConnectionTest{Success: true, Message: "ok"}
}

func (f *fakeClient) Currencies(ctx context.Context) ([]map[string]any, error) {
	return f.serve("currencies", nil)
}
func (f *fakeClient) Countries(ctx context.Context) ([]map[string]any, error) {
	return f.serve("countries", nil)
}
func (f *fakeClient) UnitsOfMeasure(ctx context.Context) ([]map[string]any, error) {
	return f.serve("units", nil)
}
func (f *fakeClient) ProductFolders(ctx context.Context) ([]map[string]any, error) {
	return f.serve("product_folders", nil)
}
func (f *fakeClient) Organizations(ctx context.Context) ([]map[string]any, error) {
	return f.serve("organizations", nil)
}
func (f *fakeClient) Projects(ctx context.Context) ([]map[string]any, error) {
	return f.serve("projects", nil)
}
func (f *fakeClient) Stores(ctx context.Context) ([]map[string]any, error) {
	return f.serve("stores", nil)
}
func (f *fakeClient) Employees(ctx context.Context) ([]map[string]any, error) {
	return f.serve("employees", nil)
}
func (f *fakeClient) Counterparties(ctx context.Context, since *time.Time) ([]map[string]any, error) {
	return f.serve("counterparties", since)
}
func (f *fakeClient) Contracts(ctx context.Context, since *time.Time) ([]map[string]any, error) {
	return f.serve("contracts", since)
}
func (f *fakeClient) Products(ctx context.Context, since *time.Time) ([]map[string]any, error) {
	return f.serve("products", since)
}
func (f *fakeClient) Services(ctx context.Context, since *time.Time) ([]map[string]any, error) {
	return f.serve("services", since)
}
func (f *fakeClient) Stock(ctx context.Context, storeID string) ([]map[string]any, error) {
	return f.serve("stock", nil)
}
func (f *fakeClient) CustomerOrders(ctx context.Context, since *time.Time) ([]map[string]any, error) {
	return f.serve("customer_orders", since)
}
func (f *fakeClient) Demands(ctx context.Context, since *time.Time) ([]map[string]any, error) {
	return f.serve("demands", since)
}
func (f *fakeClient) InvoicesOut(ctx context.Context, since *time.Time) ([]map[string]any, error) {
	return f.serve("invoices_out", since)
}
func (f *fakeClient) PurchaseOrders(ctx context.Context, since *time.Time) ([]map[string]any, error) {
	return f.serve("purchase_orders", since)
}
func (f *fakeClient) Supplies(ctx context.Context, since *time.Time) ([]map[string]any, error) {
	return f.serve("supplies", since)
}
func (f *fakeClient) InvoicesIn(ctx context.Context, since *time.Time) ([]map[string]any, error) {
	return f.serve("invoices_in", since)
}
func (f *fakeClient) Enters(ctx context.Context, since *time.Time) ([]map[string]any, error) {
	return f.serve("enters", since)
}
func (f *fakeClient) Losses(ctx context.Context, since *time.Time) ([]map[string]any, error) {
	return f.serve("losses", since)
}
func (f *fakeClient) Moves(ctx context.Context, since *time.Time) ([]map[string]any, error) {
	return f.serve("moves", since)
}
func (f *fakeClient) Inventories(ctx context.Context, since *time.Time) ([]map[string]any, error) {
	return f.serve("inventories", since)
}

// memWriter stores upserted records per table keyed by external id.
type memWriter struct {
	tables map[string]map[string]moysklad.Record
	order  []string
}

func newMemWriter() *memWriter {
	return &memWriter{tables: make(map[string]map[string]moysklad.Record)}
}

func (w *memWriter) UpsertBatch(ctx context.Context, table string, records []moysklad.Record) EntityResult {
	var result EntityResult
	if w.tables[table] == nil {
		w.tables[table] = make(map[string]moysklad.Record)
		w.order = append(w.order, table)
	}
	for _, record := range records {
		if _, exists := w.tables[table][record.ExternalID]; exists {
			result.Updated++
		} else {
			result.Created++
		}
		w.tables[table][record.ExternalID] = record
	}
	return result
}

type memResolver struct {
	calls int
}

func (r *memResolver) ResolveAll(ctx context.Context) map[string]int {
	r.calls++
	return map[string]int{"product.folder_id": 1}
}

// memJobRepo tracks job state transitions in memory. Guarded by a mutex
// because triggered runs finalize their job from a goroutine.
type memJobRepo struct {
	mu   stdsync.Mutex
	jobs map[string]*SyncJob
}

func newMemJobRepo() *memJobRepo {
	return &memJobRepo{jobs: make(map[string]*SyncJob)}
}

func (r *memJobRepo) Create(ctx context.Context, job *SyncJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	job.CreatedAt = time.Now()
	r.jobs[job.JobID] = job
	return nil
}

func (r *memJobRepo) Get(ctx context.Context, jobID string) (*SyncJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job := *r.jobs[jobID]
	return &job, nil
}

func (r *memJobRepo) List(ctx context.Context, limit int) ([]SyncJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var jobs []SyncJob
	for _, j := range r.jobs {
		jobs = append(jobs, *j)
	}
	return jobs, nil
}

func (r *memJobRepo) setStatus(jobID, status, errMsg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[jobID].Status = status
	r.jobs[jobID].ErrorMessage = errMsg
}

func (r *memJobRepo) MarkRunning(ctx context.Context, jobID string) error {
	r.setStatus(jobID, JobStatusRunning, "")
	return nil
}

func (r *memJobRepo) MarkCompleted(ctx context.Context, jobID string, summary *SyncSummary) error {
	r.setStatus(jobID, JobStatusCompleted, "")
	return nil
}

func (r *memJobRepo) MarkFailed(ctx context.Context, jobID string, errMsg string) error {
	r.setStatus(jobID, JobStatusFailed, errMsg)
	return nil
}

func (r *memJobRepo) MarkSkipped(ctx context.Context, jobID string, reason string) error {
	r.setStatus(jobID, JobStatusSkipped, reason)
	return nil
}

func (r *memJobRepo) HasActiveJob(ctx context.Context) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, j := range r.jobs {
		if j.Status == JobStatusPending || j.Status == JobStatusRunning {
			return true, nil
		}
	}
	return false, nil
}

type memConfigRepo struct {
	cfg *IntegrationConfig
}

func (r *memConfigRepo) Get(ctx context.Context) (*IntegrationConfig, error) {
	if r.cfg == nil {
		return nil, sql.ErrNoRows
	}
	return r.cfg, nil
}

func (r *memConfigRepo) Upsert(ctx context.Context, cfg *IntegrationConfig) error {
	r.cfg = cfg
	return nil
}

func (r *memConfigRepo) RecordSyncResult(ctx context.Context, status string, errMsg string, nextSyncAt time.Time) error {
	if r.cfg != nil {
		r.cfg.SyncStatus = status
		r.cfg.ErrorMessage = errMsg
	}
	return nil
}

func newTestService(client RemoteClient) (*SyncServiceImpl, *memWriter, *memResolver) {
	writer := newMemWriter()
	resolver := &memResolver{}
	svc := &SyncServiceImpl{
		JobRepo:    newMemJobRepo(),
		ConfigRepo: &memConfigRepo{cfg: &IntegrationConfig{IsEnabled: true, SyncIntervalMinutes: 15}},
		Writer:     writer,
		Resolver:   resolver,
		NewClient:  func() (RemoteClient, error) { return client, nil },
		Log:        zap.NewNop(),
	}
	return svc, writer, resolver
}

func TestFullSyncDependencyOrder(t *testing.T) {
	client := newFakeClient()
	client.rows["product_folders"] = []map[string]any{
		{"id": "f-1", "name": "Parent"},
		{"id": "f-2", "name": "Child", "productFolder": map[string]any{"id": "f-1"}},
	}
	client.rows["products"] = []map[string]any{
		{"id": "p-1", "name": "Widget", "productFolder": map[string]any{"id": "f-1"}},
		{"id": "p-2", "name": "Gadget", "productFolder": map[string]any{"id": "f-2"}},
	}

	svc, writer, resolver := newTestService(client)
	summary, err := svc.RunFullSync(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Entities["product_folders"].Created)
	assert.Equal(t, 2, summary.Entities["products"].Created)

	// Folders land before products so the resolver pass can link them.
	folderIdx, productIdx := -1, -1
	for i, table := range writer.order {
		switch table {
		case "product_folder":
			folderIdx = i
		case "product":
			productIdx = i
		}
	}
	assert.Less(t, folderIdx, productIdx)
	assert.Equal(t, 1, resolver.calls)

	// Pending references survive the write untouched.
	assert.Equal(t, "f-2", writer.tables["product"]["p-2"].Fields["folder_external_id"])
}

func TestFullSyncIsIdempotent(t *testing.T) {
	client := newFakeClient()
	client.rows["products"] = []map[string]any{
		{"id": "p-1", "name": "Widget"},
	}

	svc, writer, _ := newTestService(client)

	first, err := svc.RunFullSync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, first.Entities["products"].Created)
	assert.Equal(t, 0, first.Entities["products"].Updated)

	second, err := svc.RunFullSync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, second.Entities["products"].Created)
	assert.Equal(t, 1, second.Entities["products"].Updated)

	assert.Len(t, writer.tables["product"], 1)
}

func TestFullSyncFailsFastOnAuthError(t *testing.T) {
	client := newFakeClient()
	client.errs["currencies"] = &moysklad.AuthError{}

	svc, writer, _ := newTestService(client)
	_, err := svc.RunFullSync(context.Background())

	require.Error(t, err)
	var authErr *moysklad.AuthError
	assert.ErrorAs(t, err, &authErr)
	assert.Empty(t, writer.tables)
}

func TestFullSyncContinuesPastNonFatalError(t *testing.T) {
	client := newFakeClient()
	client.errs["countries"] = &moysklad.APIError{Status: 500, Body: "boom"}
	client.rows["products"] = []map[string]any{{"id": "p-1", "name": "Widget"}}

	svc, _, _ := newTestService(client)
	summary, err := svc.RunFullSync(context.Background())

	require.NoError(t, err)
	assert.Len(t, summary.Errors, 1)
	assert.Equal(t, 1, summary.Entities["products"].Created)
	assert.NotEmpty(t, summary.Entities["countries"].Error)
}

func TestFullSyncRefusesDisabledIntegration(t *testing.T) {
	svc, _, _ := newTestService(newFakeClient())
	svc.ConfigRepo = &memConfigRepo{cfg: &IntegrationConfig{IsEnabled: false}}

	_, err := svc.RunFullSync(context.Background())
	assert.ErrorIs(t, err, ErrIntegrationDisabled)
}

func TestDisabledIntegrationFinalizesJobSkipped(t *testing.T) {
	svc, _, _ := newTestService(newFakeClient())
	svc.ConfigRepo = &memConfigRepo{cfg: &IntegrationConfig{IsEnabled: false}}
	jobRepo := newMemJobRepo()
	svc.JobRepo = jobRepo

	jobID, err := svc.TriggerFullSync(context.Background())
	require.NoError(t, err)

	// Configured but disabled means skipped, never failed.
	require.Eventually(t, func() bool {
		job, _ := jobRepo.Get(context.Background(), jobID)
		return job != nil && job.Status == JobStatusSkipped
	}, 2*time.Second, 10*time.Millisecond)

	job, err := jobRepo.Get(context.Background(), jobID)
	require.NoError(t, err)
	assert.NotEqual(t, JobStatusFailed, job.Status)
	assert.Contains(t, job.ErrorMessage, "disabled")
}

func TestFullSyncFailsWithoutCredentials(t *testing.T) {
	svc, _, _ := newTestService(nil)
	svc.NewClient = func() (RemoteClient, error) { return nil, moysklad.ErrNoCredentials }

	_, err := svc.RunFullSync(context.Background())
	assert.ErrorIs(t, err, moysklad.ErrNoCredentials)
}

func TestIncrementalSyncNeverReturnsError(t *testing.T) {
	t.Run("fetch failures are collected", func(t *testing.T) {
		client := newFakeClient()
		client.errs["products"] = &moysklad.APIError{Status: 500, Body: "boom"}
		client.rows["counterparties"] = []map[string]any{{"id": "cp-1", "name": "ACME"}}

		svc, _, _ := newTestService(client)
		summary, err := svc.RunIncrementalSync(context.Background())

		require.NoError(t, err)
		assert.Len(t, summary.Errors, 1)
		assert.Equal(t, 1, summary.Entities["counterparties"].Created)
	})

	t.Run("missing credentials are not fatal", func(t *testing.T) {
		svc, _, _ := newTestService(nil)
		svc.NewClient = func() (RemoteClient, error) { return nil, moysklad.ErrNoCredentials }

		summary, err := svc.RunIncrementalSync(context.Background())
		require.NoError(t, err)
		assert.Len(t, summary.Errors, 1)
	})
}

func TestIncrementalSyncScope(t *testing.T) {
	client := newFakeClient()
	svc, _, _ := newTestService(client)

	_, err := svc.RunIncrementalSync(context.Background())
	require.NoError(t, err)

	// Incremental covers the fast-changing entities only.
	for _, name := range []string{"products", "services", "counterparties", "stock"} {
		_, called := client.lastSince[name]
		assert.True(t, called, "expected %s to be fetched", name)
	}
	_, called := client.lastSince["contracts"]
	assert.False(t, called, "contracts should not run incrementally")

	// The filter reaches at least 24h back.
	since := client.lastSince["products"]
	require.NotNil(t, since)
	assert.WithinDuration(t, time.Now().UTC().Add(-incrementalLookback), *since, time.Minute)
}

func TestTriggerCreatesJobAndRejectsConcurrent(t *testing.T) {
	client := newFakeClient()
	svc, _, _ := newTestService(client)
	jobRepo := newMemJobRepo()
	svc.JobRepo = jobRepo

	// Seed a running job; the trigger must refuse a second one.
	jobRepo.jobs["busy"] = &SyncJob{JobID: "busy", Status: JobStatusRunning}

	_, err := svc.TriggerFullSync(context.Background())
	assert.ErrorIs(t, err, errSyncInProgress)

	jobRepo.jobs["busy"].Status = JobStatusCompleted
	jobID, err := svc.TriggerFullSync(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, jobID)

	require.Eventually(t, func() bool {
		job, _ := jobRepo.Get(context.Background(), jobID)
		return job != nil && job.Status == JobStatusCompleted
	}, 2*time.Second, 10*time.Millisecond)
}

func TestSkippedRowsCountAsFailed(t *testing.T) {
	client := newFakeClient()
	client.rows["products"] = []map[string]any{
		{"id": "p-1", "name": "Widget"},
		{"name": "no id"},
	}

	svc, _, _ := newTestService(client)
	summary, err := svc.RunFullSync(context.Background())
	require.NoError(t, err)

	result := summary.Entities["products"]
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 1, result.Failed)
}

func TestTestConnection(t *testing.T) {
	svc, _, _ := newTestService(newFakeClient())
	result := svc.TestConnection(context.Background())
	assert.True(t, result.Success)

	svc.NewClient = func() (RemoteClient, error) { return nil, moysklad.ErrNoCredentials }
	result = svc.TestConnection(context.Background())
	assert.False(t, result.Success)
}
