package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/shopcart/internal/events"
	"github.com/Skotchmaster/shopcart/internal/models"
	"github.com/Skotchmaster/shopcart/internal/repo"
	"github.com/Skotchmaster/shopcart/internal/search"
	"github.com/Skotchmaster/shopcart/internal/transport"
	"github.com/Skotchmaster/shopcart/pkg/logging"
)

type CatalogService struct {
	Repo   *repo.GormRepo
	Events events.Publisher
	Search search.Index
}

func (s *CatalogService) index() search.Index {
	if s.Search == nil {
		return search.StoreIndex{Store: s.Repo}
	}
	return s.Search
}

func (s *CatalogService) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	p, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		return nil, mapRepoErr(fmt.Sprintf("product %d", id), err)
	}
	return p, nil
}

func (s *CatalogService) ListProducts(ctx context.Context, name string, offset, limit int) (int64, []models.Product, error) {
	total, items, err := s.Repo.ListProducts(ctx, name, offset, limit)
	if err != nil {
		return 0, nil, mapRepoErr("list products", err)
	}
	return total, items, nil
}

// SearchProducts asks the search index first and falls back to the store when
// the index is unavailable.
func (s *CatalogService) SearchProducts(ctx context.Context, q string, offset, limit int) (int64, []models.Product, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return 0, nil, fmt.Errorf("query is required: %w", ErrValidation)
	}

	total, items, err := s.index().Search(ctx, q, offset, limit)
	if err == nil {
		return total, items, nil
	}
	logging.FromContext(ctx).Warn("search_index_error", "error", err)

	total, items, err = s.Repo.SearchProducts(ctx, q, offset, limit)
	if err != nil {
		return 0, nil, mapRepoErr("search products", err)
	}
	return total, items, nil
}

func validateProduct(name *string, price *decimal.Decimal, stock *int) error {
	if name != nil && blank(*name) {
		return fmt.Errorf("name is required: %w", ErrValidation)
	}
	if price != nil && price.IsNegative() {
		return fmt.Errorf("price cannot be negative: %w", ErrValidation)
	}
	if stock != nil && *stock < 0 {
		return fmt.Errorf("stock cannot be negative: %w", ErrValidation)
	}
	return nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, actor Actor, req transport.CreateProductRequest) (*models.Product, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if err := validateProduct(&req.Name, &req.Price, &req.Stock); err != nil {
		return nil, err
	}

	p := &models.Product{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		ImageURL:    req.ImageURL,
		Price:       req.Price,
		Stock:       req.Stock,
	}
	if err := s.Repo.CreateProduct(ctx, p); err != nil {
		return nil, mapRepoErr("create product", err)
	}

	s.reindex(ctx, p)
	publish(ctx, s.Events, events.TopicProduct, actor.UserID, map[string]any{
		"type":      "product_created",
		"productID": p.ID,
		"name":      p.Name,
		"userID":    actor.UserID,
	})
	return p, nil
}

func (s *CatalogService) PatchProduct(ctx context.Context, actor Actor, id uint, req transport.PatchProductRequest) (*models.Product, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if err := validateProduct(req.Name, req.Price, req.Stock); err != nil {
		return nil, err
	}
	if req.Name != nil {
		trimmed := strings.TrimSpace(*req.Name)
		req.Name = &trimmed
	}

	p, err := s.Repo.PatchProduct(ctx, id, req)
	if err != nil {
		return nil, mapRepoErr(fmt.Sprintf("product %d", id), err)
	}

	s.reindex(ctx, p)
	publish(ctx, s.Events, events.TopicProduct, actor.UserID, map[string]any{
		"type":      "product_updated",
		"productID": p.ID,
		"userID":    actor.UserID,
	})
	return p, nil
}

// DeleteProduct refuses while any cart line still points at the product.
func (s *CatalogService) DeleteProduct(ctx context.Context, actor Actor, id uint) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if err := s.Repo.DeleteProduct(ctx, id); err != nil {
		return mapRepoErr(fmt.Sprintf("product %d", id), err)
	}

	if err := s.index().DeleteProduct(ctx, id); err != nil {
		logging.FromContext(ctx).Warn("search_index_error", "product_id", id, "error", err)
	}
	publish(ctx, s.Events, events.TopicProduct, actor.UserID, map[string]any{
		"type":      "product_deleted",
		"productID": id,
		"userID":    actor.UserID,
	})
	return nil
}

func (s *CatalogService) reindex(ctx context.Context, p *models.Product) {
	if err := s.index().IndexProduct(ctx, p); err != nil {
		logging.FromContext(ctx).Warn("search_index_error", "product_id", p.ID, "error", err)
	}
}
