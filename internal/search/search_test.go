package search

import (
	"context"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/shopcart/internal/models"
)

func TestBuildQuery(t *testing.T) {
	t.Parallel()

	raw, err := json.Marshal(buildQuery("lamp"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"query":{"multi_match":{"query":"lamp","fields":["name^2","description"],"fuzziness":"AUTO"}}}`, string(raw))
}

func TestDecodeResponse(t *testing.T) {
	t.Parallel()

	body := `{"hits":{"total":{"value":7},"hits":[
		{"_source":{"id":3,"name":"Desk lamp","description":"warm","price":"19.90","stock":4}},
		{"_source":{"id":9,"name":"Floor lamp","price":"49.00","stock":0}}
	]}}`

	total, items, err := decodeResponse(strings.NewReader(body))
	require.NoError(t, err)
	assert.EqualValues(t, 7, total)
	require.Len(t, items, 2)
	assert.EqualValues(t, 3, items[0].ID)
	assert.Equal(t, "Desk lamp", items[0].Name)
	assert.True(t, decimal.RequireFromString("19.90").Equal(items[0].Price))
	assert.Equal(t, 0, items[1].Stock)

	_, _, err = decodeResponse(strings.NewReader("{"))
	assert.Error(t, err)
}

type fakeStore struct{ q string }

func (f *fakeStore) SearchProducts(_ context.Context, q string, _, _ int) (int64, []models.Product, error) {
	f.q = q
	return 1, []models.Product{{ID: 1, Name: "pen"}}, nil
}

func TestStoreIndex(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	idx := StoreIndex{Store: store}
	ctx := context.Background()

	require.NoError(t, idx.IndexProduct(ctx, &models.Product{ID: 1}))
	require.NoError(t, idx.DeleteProduct(ctx, 1))

	total, items, err := idx.Search(ctx, "pen", 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Len(t, items, 1)
	assert.Equal(t, "pen", store.q)
}

// Runs only against a live cluster, e.g. ES_TEST_URL=http://localhost:9200.
func TestESIndex_RoundTrip(t *testing.T) {
	url := os.Getenv("ES_TEST_URL")
	if url == "" {
		t.Skip("ES_TEST_URL not set")
	}
	ctx := context.Background()

	idx, err := NewClient(ctx, Config{URL: url, Index: "products_test"})
	require.NoError(t, err)

	p := &models.Product{ID: 4242, Name: "Walnut desk lamp", Description: "brass switch", Price: decimal.RequireFromString("35.00"), Stock: 2}
	require.NoError(t, idx.IndexProduct(ctx, p))
	t.Cleanup(func() { _ = idx.DeleteProduct(ctx, p.ID) })

	total, items, err := idx.Search(ctx, "wallnut lamp", 0, 10)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, total, int64(1))
	require.NotEmpty(t, items)
	assert.EqualValues(t, 4242, items[0].ID)
}
