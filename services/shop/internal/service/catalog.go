package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Skotchmaster/cosmetics_shop/services/shop/internal/models"
	"github.com/Skotchmaster/cosmetics_shop/services/shop/internal/repo"
	"github.com/Skotchmaster/cosmetics_shop/services/shop/internal/util"
	"gorm.io/gorm"
)

type ProductSearcher interface {
	Search(ctx context.Context, query string, from, size int) (int64, []models.Product, error)
}

type ProductPage struct {
	Total int64
	Page  int
	Size  int
	Items []models.Product
}

type CatalogService struct {
	Repo     *repo.GormRepo
	Searcher ProductSearcher
}

var ErrSearchUnavailable = errors.New("search is not configured")

func (s *CatalogService) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	p, err := s.Repo.GetProduct(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

func (s *CatalogService) ListProducts(ctx context.Context, page, size int) (*ProductPage, error) {
	offset, limit := util.Calculate(page, size)
	total, items, err := s.Repo.ListActiveProducts(ctx, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return &ProductPage{Total: total, Page: offset/limit + 1, Size: limit, Items: items}, nil
}

func (s *CatalogService) SearchProducts(ctx context.Context, query string, page, size int) (*ProductPage, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, validationf("search query is required")
	}
	if s.Searcher == nil {
		return nil, ErrSearchUnavailable
	}

	from, limit := util.Calculate(page, size)
	total, items, err := s.Searcher.Search(ctx, query, from, limit)
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	return &ProductPage{Total: total, Page: from/limit + 1, Size: limit, Items: items}, nil
}
