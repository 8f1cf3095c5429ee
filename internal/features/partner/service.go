package partner

import "context"

type PartnerService interface {
	ListCounterparties(ctx context.Context, filter CounterpartyFilter) ([]Counterparty, int, error)
	GetCounterparty(ctx context.Context, id int64) (*Counterparty, error)
	ListOrganizations(ctx context.Context) ([]Organization, error)
	ListEmployees(ctx context.Context) ([]Employee, error)
	ListProjects(ctx context.Context) ([]Project, error)
	ListContracts(ctx context.Context, counterpartyID *int64) ([]Contract, error)
}

type PartnerServiceImpl struct {
	Repo PartnerRepository
}

func NewPartnerService(repo PartnerRepository) PartnerService {
	return &PartnerServiceImpl{Repo: repo}
}

func (s *PartnerServiceImpl) ListCounterparties(ctx context.Context, filter CounterpartyFilter) ([]Counterparty, int, error) {
	return s.Repo.ListCounterparties(ctx, filter)
}

func (s *PartnerServiceImpl) GetCounterparty(ctx context.Context, id int64) (*Counterparty, error) {
	return s.Repo.GetCounterparty(ctx, id)
}

func (s *PartnerServiceImpl) ListOrganizations(ctx context.Context) ([]Organization, error) {
	return s.Repo.ListOrganizations(ctx)
}

func (s *PartnerServiceImpl) ListEmployees(ctx context.Context) ([]Employee, error) {
	return s.Repo.ListEmployees(ctx)
}

func (s *PartnerServiceImpl) ListProjects(ctx context.Context) ([]Project, error) {
	return s.Repo.ListProjects(ctx)
}

func (s *PartnerServiceImpl) ListContracts(ctx context.Context, counterpartyID *int64) ([]Contract, error) {
	return s.Repo.ListContracts(ctx, counterpartyID)
}
