package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mkravets/tripbooking/internal/apperr"
	"github.com/mkravets/tripbooking/internal/domain"
)

type PackageRepository interface {
	List(ctx context.Context) ([]domain.TourPackage, error)
	GetByID(ctx context.Context, id int64) (*domain.TourPackage, error)
}

type UserRepository interface {
	Exists(ctx context.Context, id int64) (bool, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

type PGPackageRepository struct {
	db *pgxpool.Pool
}

func NewPackageRepository(db *pgxpool.Pool) PackageRepository {
	return &PGPackageRepository{db: db}
}

func (r *PGPackageRepository) List(ctx context.Context) ([]domain.TourPackage, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, price, created_at, updated_at FROM packages ORDER BY name`)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindPersistence, "failed to list packages", err)
	}
	defer rows.Close()

	packages := make([]domain.TourPackage, 0)
	for rows.Next() {
		var p domain.TourPackage
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, apperr.Wrap(apperr.KindPersistence, "failed to scan package", err)
		}
		packages = append(packages, p)
	}
	return packages, rows.Err()
}

// GetByID returns (nil, nil) when the package does not exist; callers decide
// whether that is a not-found error or a cache miss.
func (r *PGPackageRepository) GetByID(ctx context.Context, id int64) (*domain.TourPackage, error) {
	row := r.db.QueryRow(ctx, `SELECT id, name, price, created_at, updated_at FROM packages WHERE id=$1`, id)
	var p domain.TourPackage
	if err := row.Scan(&p.ID, &p.Name, &p.Price, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, apperr.Wrap(apperr.KindPersistence, "failed to read package", err)
	}
	return &p, nil
}

type PGUserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) UserRepository {
	return &PGUserRepository{db: db}
}

func (r *PGUserRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id=$1)`, id).Scan(&exists); err != nil {
		return false, apperr.Wrap(apperr.KindPersistence, "failed to check user", err)
	}
	return exists, nil
}

// GetByID returns (nil, nil) for unknown users.
func (r *PGUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	row := r.db.QueryRow(ctx, `SELECT id, email, name FROM users WHERE id=$1`, id)
	var u domain.User
	if err := row.Scan(&u.ID, &u.Email, &u.Name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, apperr.Wrap(apperr.KindPersistence, "failed to read user", err)
	}
	return &u, nil
}

var _ PackageRepository = (*PGPackageRepository)(nil)
var _ UserRepository = (*PGUserRepository)(nil)
