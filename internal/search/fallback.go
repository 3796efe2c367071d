package search

import (
	"context"

	"github.com/Skotchmaster/shopcart/internal/models"
)

type ProductStore interface {
	SearchProducts(ctx context.Context, query string, offset, limit int) (int64, []models.Product, error)
}

// StoreIndex answers searches from the database when Elasticsearch is not
// configured. Index writes are no-ops since the store is the source.
type StoreIndex struct {
	Store ProductStore
}

var _ Index = StoreIndex{}

func (StoreIndex) IndexProduct(context.Context, *models.Product) error { return nil }
func (StoreIndex) DeleteProduct(context.Context, uint) error           { return nil }

func (s StoreIndex) Search(ctx context.Context, q string, offset, limit int) (int64, []models.Product, error) {
	return s.Store.SearchProducts(ctx, q, offset, limit)
}
