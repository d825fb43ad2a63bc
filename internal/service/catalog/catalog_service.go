package catalog

import (
	"context"

	"github.com/mkravets/tripbooking/internal/domain"
	"github.com/mkravets/tripbooking/internal/repository"
)

type CatalogUseCase interface {
	List(ctx context.Context) ([]domain.TourPackage, error)
	GetPackage(ctx context.Context, id int64) (*domain.TourPackage, error)
}

type Cache interface {
	GetPackages(ctx context.Context) ([]domain.TourPackage, error)
	SetPackages(ctx context.Context, packages []domain.TourPackage) error
	GetPackage(ctx context.Context, id int64) (*domain.TourPackage, error)
	SetPackage(ctx context.Context, pkg *domain.TourPackage) error
}

// CatalogService fronts the package catalog with a cache-aside layer. It is
// also the package resolver the price calculator runs against, so confirm-time
// lookups hit redis before Postgres.
type CatalogService struct {
	repo  repository.PackageRepository
	cache Cache
}

func NewCatalogService(repo repository.PackageRepository, cache Cache) *CatalogService {
	return &CatalogService{repo: repo, cache: cache}
}

func (s *CatalogService) List(ctx context.Context) ([]domain.TourPackage, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetPackages(ctx); err == nil && cached != nil {
			return cached, nil
		}
	}

	packages, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.SetPackages(ctx, packages)
	}
	return packages, nil
}

// GetPackage returns (nil, nil) for unknown ids; absence is not cached.
func (s *CatalogService) GetPackage(ctx context.Context, id int64) (*domain.TourPackage, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetPackage(ctx, id); err == nil && cached != nil {
			return cached, nil
		}
	}

	pkg, err := s.repo.GetByID(ctx, id)
	if err != nil || pkg == nil {
		return pkg, err
	}
	if s.cache != nil {
		_ = s.cache.SetPackage(ctx, pkg)
	}
	return pkg, nil
}

var _ CatalogUseCase = (*CatalogService)(nil)
