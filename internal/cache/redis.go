package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mkravets/tripbooking/config"
	"github.com/mkravets/tripbooking/internal/domain"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	client      *redis.Client
	packagesTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, packagesTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:      redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		packagesTTL: packagesTTL,
	}
}

func (c *RedisCache) GetPackages(ctx context.Context) ([]domain.TourPackage, error) {
	data, err := c.client.Get(ctx, packagesKey()).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var packages []domain.TourPackage
	if err := json.Unmarshal(data, &packages); err != nil {
		return nil, err
	}
	return packages, nil
}

func (c *RedisCache) SetPackages(ctx context.Context, packages []domain.TourPackage) error {
	payload, err := json.Marshal(packages)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, packagesKey(), payload, c.packagesTTL).Err()
}

func (c *RedisCache) GetPackage(ctx context.Context, id int64) (*domain.TourPackage, error) {
	data, err := c.client.Get(ctx, packageKey(id)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var pkg domain.TourPackage
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, err
	}
	return &pkg, nil
}

func (c *RedisCache) SetPackage(ctx context.Context, pkg *domain.TourPackage) error {
	payload, err := json.Marshal(pkg)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, packageKey(pkg.ID), payload, c.packagesTTL).Err()
}

func packagesKey() string {
	return "cache:packages"
}

func packageKey(id int64) string {
	return fmt.Sprintf("cache:package:%d", id)
}
