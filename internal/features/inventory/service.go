package inventory

import "context"

type InventoryService interface {
	ListStores(ctx context.Context) ([]Store, error)
	ListStock(ctx context.Context, filter StockFilter) ([]StockLevel, int, error)
}

type InventoryServiceImpl struct {
	Repo InventoryRepository
}

func NewInventoryService(repo InventoryRepository) InventoryService {
	return &InventoryServiceImpl{Repo: repo}
}

func (s *InventoryServiceImpl) ListStores(ctx context.Context) ([]Store, error) {
	return s.Repo.ListStores(ctx)
}

func (s *InventoryServiceImpl) ListStock(ctx context.Context, filter StockFilter) ([]StockLevel, int, error) {
	return s.Repo.ListStock(ctx, filter)
}
