package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"crm-backend/internal/moysklad"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RemoteClient is the slice of the ERP client the orchestrator needs. The
// indirection exists so tests can run against an in-memory fake.
type RemoteClient interface {
	TestConnection(ctx context.Context) *moysklad.ConnectionTest

	Currencies(ctx context.Context) ([]map[string]any, error)
	Countries(ctx context.Context) ([]map[string]any, error)
	UnitsOfMeasure(ctx context.Context) ([]map[string]any, error)
	ProductFolders(ctx context.Context) ([]map[string]any, error)
	Organizations(ctx context.Context) ([]map[string]any, error)
	Projects(ctx context.Context) ([]map[string]any, error)
	Stores(ctx context.Context) ([]map[string]any, error)
	Employees(ctx context.Context) ([]map[string]any, error)

	Counterparties(ctx context.Context, updatedSince *time.Time) ([]map[string]any, error)
	Contracts(ctx context.Context, updatedSince *time.Time) ([]map[string]any, error)
	Products(ctx context.Context, updatedSince *time.Time) ([]map[string]any, error)
	Services(ctx context.Context, updatedSince *time.Time) ([]map[string]any, error)
	Stock(ctx context.Context, storeID string) ([]map[string]any, error)

	CustomerOrders(ctx context.Context, updatedSince *time.Time) ([]map[string]any, error)
	Demands(ctx context.Context, updatedSince *time.Time) ([]map[string]any, error)
	InvoicesOut(ctx context.Context, updatedSince *time.Time) ([]map[string]any, error)
	PurchaseOrders(ctx context.Context, updatedSince *time.Time) ([]map[string]any, error)
	Supplies(ctx context.Context, updatedSince *time.Time) ([]map[string]any, error)
	InvoicesIn(ctx context.Context, updatedSince *time.Time) ([]map[string]any, error)

	Enters(ctx context.Context, updatedSince *time.Time) ([]map[string]any, error)
	Losses(ctx context.Context, updatedSince *time.Time) ([]map[string]any, error)
	Moves(ctx context.Context, updatedSince *time.Time) ([]map[string]any, error)
	Inventories(ctx context.Context, updatedSince *time.Time) ([]map[string]any, error)
}

// ClientFactory builds a RemoteClient from the stored integration settings.
// It fails with moysklad.ErrNoCredentials when the integration is not
// configured.
type ClientFactory func() (RemoteClient, error)

// RecordWriter persists mapped records. Satisfied by *Writer.
type RecordWriter interface {
	UpsertBatch(ctx context.Context, table string, records []moysklad.Record) EntityResult
}

// RefResolver rewrites pending references into local FKs. Satisfied by
// *Resolver.
type RefResolver interface {
	ResolveAll(ctx context.Context) map[string]int
}

// incrementalLookback is how far behind last_sync_at the incremental filter
// reaches, to absorb clock skew and missed runs.
const incrementalLookback = 24 * time.Hour

var errSyncInProgress = errors.New("a sync job is already running")

// ErrIntegrationDisabled aborts a run when the stored config turns the
// integration off. The job record finalizes as skipped, not failed.
var ErrIntegrationDisabled = errors.New("integration is disabled")

type SyncService interface {
	TriggerFullSync(ctx context.Context) (string, error)
	TriggerIncrementalSync(ctx context.Context) (string, error)
	RunFullSync(ctx context.Context) (*SyncSummary, error)
	RunIncrementalSync(ctx context.Context) (*SyncSummary, error)
	TestConnection(ctx context.Context) *moysklad.ConnectionTest
	GetJob(ctx context.Context, jobID string) (*SyncJob, error)
	ListJobs(ctx context.Context, limit int) ([]SyncJob, error)
	GetConfig(ctx context.Context) (*IntegrationConfig, error)
	UpdateConfig(ctx context.Context, cfg *IntegrationConfig) error
}

type SyncServiceImpl struct {
	JobRepo    SyncJobRepository
	ConfigRepo IntegrationConfigRepository
	Writer     RecordWriter
	Resolver   RefResolver
	NewClient  ClientFactory
	Log        *zap.Logger
}

func NewSyncService(jobRepo SyncJobRepository, configRepo IntegrationConfigRepository, writer *Writer, resolver *Resolver, factory ClientFactory, log *zap.Logger) SyncService {
	return &SyncServiceImpl{
		JobRepo:    jobRepo,
		ConfigRepo: configRepo,
		Writer:     writer,
		Resolver:   resolver,
		NewClient:  factory,
		Log:        log,
	}
}

// entityStep is one entity type in a sync run: fetch remote rows, map them,
// upsert into the target table.
type entityStep struct {
	name  string
	table string
	fetch func(ctx context.Context, client RemoteClient, since *time.Time) ([]map[string]any, error)
	toRec func(row map[string]any) (moysklad.Record, bool)
}

// fullSyncSteps lists every entity in dependency order so that referenced
// entities land before the rows that point at them.
var fullSyncSteps = []entityStep{
	{name: "currencies", table: "currency",
		fetch: func(ctx context.Context, c RemoteClient, _ *time.Time) ([]map[string]any, error) { return c.Currencies(ctx) },
		toRec: moysklad.MapCurrency},
	{name: "countries", table: "country",
		fetch: func(ctx context.Context, c RemoteClient, _ *time.Time) ([]map[string]any, error) { return c.Countries(ctx) },
		toRec: moysklad.MapCountry},
	{name: "units", table: "unit_of_measure",
		fetch: func(ctx context.Context, c RemoteClient, _ *time.Time) ([]map[string]any, error) {
			return c.UnitsOfMeasure(ctx)
		},
		toRec: moysklad.MapUnitOfMeasure},
	{name: "product_folders", table: "product_folder",
		fetch: func(ctx context.Context, c RemoteClient, _ *time.Time) ([]map[string]any, error) {
			return c.ProductFolders(ctx)
		},
		toRec: moysklad.MapProductFolder},
	{name: "organizations", table: "organization",
		fetch: func(ctx context.Context, c RemoteClient, _ *time.Time) ([]map[string]any, error) {
			return c.Organizations(ctx)
		},
		toRec: moysklad.MapOrganization},
	{name: "projects", table: "project",
		fetch: func(ctx context.Context, c RemoteClient, _ *time.Time) ([]map[string]any, error) { return c.Projects(ctx) },
		toRec: moysklad.MapProject},
	{name: "stores", table: "store",
		fetch: func(ctx context.Context, c RemoteClient, _ *time.Time) ([]map[string]any, error) { return c.Stores(ctx) },
		toRec: moysklad.MapStore},
	{name: "counterparties", table: "counterparty",
		fetch: func(ctx context.Context, c RemoteClient, since *time.Time) ([]map[string]any, error) {
			return c.Counterparties(ctx, since)
		},
		toRec: moysklad.MapCounterparty},
	{name: "employees", table: "employee",
		fetch: func(ctx context.Context, c RemoteClient, _ *time.Time) ([]map[string]any, error) { return c.Employees(ctx) },
		toRec: moysklad.MapEmployee},
	{name: "contracts", table: "contract",
		fetch: func(ctx context.Context, c RemoteClient, since *time.Time) ([]map[string]any, error) {
			return c.Contracts(ctx, since)
		},
		toRec: moysklad.MapContract},
	{name: "products", table: "product",
		fetch: func(ctx context.Context, c RemoteClient, since *time.Time) ([]map[string]any, error) {
			return c.Products(ctx, since)
		},
		toRec: moysklad.MapProduct},
	{name: "services", table: "service",
		fetch: func(ctx context.Context, c RemoteClient, since *time.Time) ([]map[string]any, error) {
			return c.Services(ctx, since)
		},
		toRec: moysklad.MapService},
	{name: "stock", table: "stock",
		fetch: func(ctx context.Context, c RemoteClient, _ *time.Time) ([]map[string]any, error) { return c.Stock(ctx, "") },
		toRec: moysklad.MapStock},
	{name: "customer_orders", table: "sales_document",
		fetch: func(ctx context.Context, c RemoteClient, since *time.Time) ([]map[string]any, error) {
			return c.CustomerOrders(ctx, since)
		},
		toRec: salesDoc("customer_order")},
	{name: "demands", table: "sales_document",
		fetch: func(ctx context.Context, c RemoteClient, since *time.Time) ([]map[string]any, error) {
			return c.Demands(ctx, since)
		},
		toRec: salesDoc("demand")},
	{name: "invoices_out", table: "sales_document",
		fetch: func(ctx context.Context, c RemoteClient, since *time.Time) ([]map[string]any, error) {
			return c.InvoicesOut(ctx, since)
		},
		toRec: salesDoc("invoice_out")},
	{name: "purchase_orders", table: "purchase_document",
		fetch: func(ctx context.Context, c RemoteClient, since *time.Time) ([]map[string]any, error) {
			return c.PurchaseOrders(ctx, since)
		},
		toRec: purchaseDoc("purchase_order")},
	{name: "supplies", table: "purchase_document",
		fetch: func(ctx context.Context, c RemoteClient, since *time.Time) ([]map[string]any, error) {
			return c.Supplies(ctx, since)
		},
		toRec: purchaseDoc("supply")},
	{name: "invoices_in", table: "purchase_document",
		fetch: func(ctx context.Context, c RemoteClient, since *time.Time) ([]map[string]any, error) {
			return c.InvoicesIn(ctx, since)
		},
		toRec: purchaseDoc("invoice_in")},
	{name: "enters", table: "stock_movement",
		fetch: func(ctx context.Context, c RemoteClient, since *time.Time) ([]map[string]any, error) {
			return c.Enters(ctx, since)
		},
		toRec: stockMove("enter")},
	{name: "losses", table: "stock_movement",
		fetch: func(ctx context.Context, c RemoteClient, since *time.Time) ([]map[string]any, error) {
			return c.Losses(ctx, since)
		},
		toRec: stockMove("loss")},
	{name: "moves", table: "stock_movement",
		fetch: func(ctx context.Context, c RemoteClient, since *time.Time) ([]map[string]any, error) {
			return c.Moves(ctx, since)
		},
		toRec: stockMove("move")},
	{name: "inventories", table: "stock_movement",
		fetch: func(ctx context.Context, c RemoteClient, since *time.Time) ([]map[string]any, error) {
			return c.Inventories(ctx, since)
		},
		toRec: stockMove("inventory")},
}

// incrementalSteps cover the fast-changing entities only.
var incrementalSteps = []entityStep{
	fullSyncStep("products"),
	fullSyncStep("services"),
	fullSyncStep("counterparties"),
	fullSyncStep("stock"),
}

func fullSyncStep(name string) entityStep {
	for _, step := range fullSyncSteps {
		if step.name == name {
			return step
		}
	}
	panic("unknown sync step: " + name)
}

func salesDoc(docType string) func(map[string]any) (moysklad.Record, bool) {
	return func(row map[string]any) (moysklad.Record, bool) {
		return moysklad.MapSalesDocument(row, docType)
	}
}

func purchaseDoc(docType string) func(map[string]any) (moysklad.Record, bool) {
	return func(row map[string]any) (moysklad.Record, bool) {
		return moysklad.MapPurchaseDocument(row, docType)
	}
}

func stockMove(docType string) func(map[string]any) (moysklad.Record, bool) {
	return func(row map[string]any) (moysklad.Record, bool) {
		return moysklad.MapStockMovement(row, docType)
	}
}

// TriggerFullSync creates a job record and runs the full sync in the
// background. Returns the job id immediately.
func (s *SyncServiceImpl) TriggerFullSync(ctx context.Context) (string, error) {
	return s.trigger(ctx, JobTypeFull, s.RunFullSync)
}

// TriggerIncrementalSync creates a job record and runs the incremental sync
// in the background.
func (s *SyncServiceImpl) TriggerIncrementalSync(ctx context.Context) (string, error) {
	return s.trigger(ctx, JobTypeIncremental, s.RunIncrementalSync)
}

func (s *SyncServiceImpl) trigger(ctx context.Context, jobType string, run func(context.Context) (*SyncSummary, error)) (string, error) {
	active, err := s.JobRepo.HasActiveJob(ctx)
	if err != nil {
		return "", err
	}
	if active {
		return "", errSyncInProgress
	}

	job := &SyncJob{
		JobID:       uuid.NewString(),
		ServiceName: ServiceName,
		JobType:     jobType,
		Status:      JobStatusPending,
	}
	if err := s.JobRepo.Create(ctx, job); err != nil {
		return "", err
	}

	go s.execute(job.JobID, run)
	return job.JobID, nil
}

// execute runs one sync in the background and finalizes its job record.
func (s *SyncServiceImpl) execute(jobID string, run func(context.Context) (*SyncSummary, error)) {
	ctx := context.Background()

	if err := s.JobRepo.MarkRunning(ctx, jobID); err != nil {
		s.Log.Error("Failed to mark sync job running", zap.String("job_id", jobID), zap.Error(err))
		return
	}

	summary, err := run(ctx)
	switch {
	case errors.Is(err, moysklad.ErrNoCredentials), errors.Is(err, ErrIntegrationDisabled):
		_ = s.JobRepo.MarkSkipped(ctx, jobID, err.Error())
	case err != nil:
		_ = s.JobRepo.MarkFailed(ctx, jobID, err.Error())
	default:
		if err := s.JobRepo.MarkCompleted(ctx, jobID, summary); err != nil {
			s.Log.Error("Failed to finalize sync job", zap.String("job_id", jobID), zap.Error(err))
		}
	}
}

// RunFullSync synchronizes every entity type in dependency order, then runs
// the reference resolver. Fails fast on configuration, credential and
// connectivity problems; a non-fatal error on one entity is recorded and the
// remaining entities still run.
func (s *SyncServiceImpl) RunFullSync(ctx context.Context) (*SyncSummary, error) {
	client, err := s.NewClient()
	if err != nil {
		return nil, err
	}

	cfg, cfgErr := s.ConfigRepo.Get(ctx)
	if cfgErr == nil && !cfg.IsEnabled {
		return nil, fmt.Errorf("%s: %w", ServiceName, ErrIntegrationDisabled)
	}

	summary := NewSyncSummary(JobTypeFull)
	s.Log.Info("Starting full sync")

	for _, step := range fullSyncSteps {
		if err := s.runStep(ctx, client, step, nil, summary); err != nil {
			if moysklad.IsFatal(err) {
				s.recordOutcome(ctx, "error", err.Error())
				return summary, err
			}
			summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", step.name, err))
		}
	}

	summary.Resolved = s.Resolver.ResolveAll(ctx)
	summary.FinishedAt = time.Now().UTC()
	s.recordOutcome(ctx, "active", "")

	s.Log.Info("Full sync finished",
		zap.Int("processed", summary.TotalProcessed()),
		zap.Int("failed", summary.TotalFailed()),
		zap.Duration("took", summary.FinishedAt.Sub(summary.StartedAt)))
	return summary, nil
}

// RunIncrementalSync refreshes the fast-changing entities with a server-side
// updated-since filter. It never returns an error: every failure is captured
// in the summary so scheduled runs keep going.
func (s *SyncServiceImpl) RunIncrementalSync(ctx context.Context) (*SyncSummary, error) {
	summary := NewSyncSummary(JobTypeIncremental)

	client, err := s.NewClient()
	if err != nil {
		summary.Errors = append(summary.Errors, err.Error())
		summary.FinishedAt = time.Now().UTC()
		return summary, nil
	}

	since := time.Now().UTC().Add(-incrementalLookback)
	if cfg, err := s.ConfigRepo.Get(ctx); err == nil && cfg.LastSyncAt != nil {
		since = cfg.LastSyncAt.Add(-incrementalLookback)
	}

	s.Log.Info("Starting incremental sync", zap.Time("since", since))

	for _, step := range incrementalSteps {
		if err := s.runStep(ctx, client, step, &since, summary); err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", step.name, err))
		}
	}

	summary.Resolved = s.Resolver.ResolveAll(ctx)
	summary.FinishedAt = time.Now().UTC()

	status := "active"
	errMsg := ""
	if len(summary.Errors) > 0 {
		status = "error"
		errMsg = summary.Errors[0]
	}
	s.recordOutcome(ctx, status, errMsg)

	s.Log.Info("Incremental sync finished",
		zap.Int("processed", summary.TotalProcessed()),
		zap.Int("errors", len(summary.Errors)))
	return summary, nil
}

// runStep fetches, maps and upserts one entity type. The returned error is
// non-nil only for fetch failures; per-record write failures are absorbed
// into the entity result.
func (s *SyncServiceImpl) runStep(ctx context.Context, client RemoteClient, step entityStep, since *time.Time, summary *SyncSummary) error {
	rows, err := step.fetch(ctx, client, since)
	if err != nil {
		summary.Entities[step.name] = EntityResult{Error: err.Error()}
		return err
	}

	records := make([]moysklad.Record, 0, len(rows))
	skipped := 0
	for _, row := range rows {
		record, ok := step.toRec(row)
		if !ok {
			skipped++
			continue
		}
		records = append(records, record)
	}
	if skipped > 0 {
		s.Log.Warn("Skipped rows without an id",
			zap.String("entity", step.name),
			zap.Int("skipped", skipped))
	}

	result := s.Writer.UpsertBatch(ctx, step.table, records)
	result.Failed += skipped
	summary.Entities[step.name] = result

	s.Log.Info("Synced entity",
		zap.String("entity", step.name),
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated),
		zap.Int("failed", result.Failed))
	return nil
}

// recordOutcome stamps the integration config with the latest run result.
func (s *SyncServiceImpl) recordOutcome(ctx context.Context, status, errMsg string) {
	interval := 15
	if cfg, err := s.ConfigRepo.Get(ctx); err == nil && cfg.SyncIntervalMinutes > 0 {
		interval = cfg.SyncIntervalMinutes
	}
	next := time.Now().UTC().Add(time.Duration(interval) * time.Minute)
	if err := s.ConfigRepo.RecordSyncResult(ctx, status, errMsg, next); err != nil {
		s.Log.Warn("Failed to record sync outcome", zap.Error(err))
	}
}

func (s *SyncServiceImpl) TestConnection(ctx context.Context) *moysklad.ConnectionTest {
	client, err := s.NewClient()
	if err != nil {
		return &moysklad.ConnectionTest{
			Success: false,
			Message: err.Error(),
		}
	}
	return client.TestConnection(ctx)
}

func (s *SyncServiceImpl) GetJob(ctx context.Context, jobID string) (*SyncJob, error) {
	return s.JobRepo.Get(ctx, jobID)
}

func (s *SyncServiceImpl) ListJobs(ctx context.Context, limit int) ([]SyncJob, error) {
	return s.JobRepo.List(ctx, limit)
}

func (s *SyncServiceImpl) GetConfig(ctx context.Context) (*IntegrationConfig, error) {
	return s.ConfigRepo.Get(ctx)
}

func (s *SyncServiceImpl) UpdateConfig(ctx context.Context, cfg *IntegrationConfig) error {
	return s.ConfigRepo.Upsert(ctx, cfg)
}
