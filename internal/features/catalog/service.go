package catalog

import (
	"context"
)

type CatalogService interface {
	ListProducts(ctx context.Context, filter ProductFilter) ([]Product, int, error)
	GetProduct(ctx context.Context, id int64) (*Product, error)
	ListFolders(ctx context.Context) ([]ProductFolder, error)
	ListUnits(ctx context.Context) ([]UnitOfMeasure, error)
	ListServices(ctx context.Context, archived *bool) ([]Service, error)
}

type CatalogServiceImpl struct {
	Repo CatalogRepository
}

func NewCatalogService(repo CatalogRepository) CatalogService {
	return &CatalogServiceImpl{Repo: repo}
}

func (s *CatalogServiceImpl) ListProducts(ctx context.Context, filter ProductFilter) ([]Product, int, error) {
	return s.Repo.ListProducts(ctx, filter)
}

func (s *CatalogServiceImpl) GetProduct(ctx context.Context, id int64) (*Product, error) {
	return s.Repo.GetProduct(ctx, id)
}

func (s *CatalogServiceImpl) ListFolders(ctx context.Context) ([]ProductFolder, error) {
	return s.Repo.ListFolders(ctx)
}

func (s *CatalogServiceImpl) ListUnits(ctx context.Context) ([]UnitOfMeasure, error) {
	return s.Repo.ListUnits(ctx)
}

func (s *CatalogServiceImpl) ListServices(ctx context.Context, archived *bool) ([]Service, error) {
	return s.Repo.ListServices(ctx, archived)
}
