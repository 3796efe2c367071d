package httpserver

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/shopcart/internal/models"
	"github.com/Skotchmaster/shopcart/internal/transport"
)

type cartPage struct {
	Data []models.Cart `json:"data"`
	Meta struct {
		Total int64 `json:"total"`
	} `json:"meta"`
}

func TestCartFlow(t *testing.T) {
	env := newTestEnv(t)
	env.user("alice", false)
	tea := env.product("tea", "12.50", 5)
	mug := env.product("mug", "7.25", 10)
	cookies := env.login("alice")

	rec := env.serve(http.MethodGet, "/carts/open", nil, cookies...)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.serve(http.MethodPost, "/carts/open", nil, cookies...)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	cart := decode[models.Cart](t, rec)
	assert.Equal(t, models.CartOpen, cart.Status)

	rec = env.serve(http.MethodPost, "/carts/open", nil, cookies...)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, cart.ID, decode[models.Cart](t, rec).ID)

	rec = env.serve(http.MethodPost, "/carts/open/items", transport.AddItemRequest{ProductID: tea.ID, Quantity: 3}, cookies...)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = env.serve(http.MethodPost, "/carts/open/items", transport.AddItemRequest{ProductID: tea.ID, Quantity: 4}, cookies...)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())

	rec = env.serve(http.MethodPost, fmt.Sprintf("/carts/%d/items", cart.ID), transport.AddItemRequest{ProductID: mug.ID, Quantity: 1}, cookies...)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	mugItem := decode[models.CartItem](t, rec)

	rec = env.serve(http.MethodPatch, fmt.Sprintf("/carts/items/%d", mugItem.ID), transport.UpdateItemRequest{Quantity: 2}, cookies...)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = env.serve(http.MethodGet, "/carts/open", nil, cookies...)
	require.Equal(t, http.StatusOK, rec.Code)
	open := decode[models.Cart](t, rec)
	require.Len(t, open.Items, 2)
	assert.Equal(t, 3, open.Items[0].Quantity)
	assert.True(t, decimal.RequireFromString("52").Equal(open.TotalPrice), open.TotalPrice.String())

	rec = env.serve(http.MethodPost, "/carts/checkout", nil, cookies...)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decode[transport.CartStatusResponse](t, rec)
	assert.Equal(t, cart.ID, res.CartID)
	assert.Equal(t, string(models.CartCheckedOut), res.Status)
	assert.True(t, decimal.RequireFromString("52").Equal(res.TotalPrice))

	rec = env.serve(http.MethodPost, "/carts/checkout", nil, cookies...)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = env.serve(http.MethodPost, fmt.Sprintf("/carts/%d/cancel", cart.ID), nil, cookies...)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.serve(http.MethodGet, "/carts?status=CHECKED_OUT", nil, cookies...)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[cartPage](t, rec)
	assert.EqualValues(t, 1, page.Meta.Total)

	p, err := env.Repo.GetProduct(t.Context(), tea.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, p.Stock)
}

func TestCartHandlers_Unauthenticated(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{"/carts", "/carts/open", "/carts/1"} {
		rec := env.serve(http.MethodGet, path, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}

func TestCartHandlers_Ownership(t *testing.T) {
	env := newTestEnv(t)
	alice := env.user("alice", false)
	bob := env.user("bob", false)
	admin := env.user("root", true)
	tea := env.product("tea", "1.00", 5)

	cart, _, err := env.Repo.CreateCart(t.Context(), alice.ID)
	require.NoError(t, err)
	item, err := env.Repo.AddItem(t.Context(), cart.ID, tea.ID, 1)
	require.NoError(t, err)

	_, _, c := env.doJSONRequest(http.MethodGet, "/carts/:id", nil)
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprint(cart.ID))
	asUser(c, bob.ID, false)
	requireHTTPError(t, env.C.GetCart(c), http.StatusForbidden)

	_, _, c = env.doJSONRequest(http.MethodPatch, "/carts/items/:item_id", transport.UpdateItemRequest{Quantity: 2})
	c.SetParamNames("item_id")
	c.SetParamValues(fmt.Sprint(item.ID))
	asUser(c, bob.ID, false)
	requireHTTPError(t, env.C.UpdateItem(c), http.StatusForbidden)

	_, _, c = env.doJSONRequest(http.MethodGet, "/carts?user_id=1", nil)
	asUser(c, bob.ID, false)
	requireHTTPError(t, env.C.ListCarts(c), http.StatusForbidden)

	rec, _, c := env.doJSONRequest(http.MethodGet, "/carts/:id", nil)
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprint(cart.ID))
	asUser(c, admin.ID, true)
	require.NoError(t, env.C.GetCart(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _, c = env.doJSONRequest(http.MethodDelete, "/carts/:id", nil)
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprint(cart.ID))
	asUser(c, alice.ID, false)
	require.NoError(t, env.C.DeleteCart(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestCartHandlers_GetItem(t *testing.T) {
	env := newTestEnv(t)
	alice := env.user("alice", false)
	env.user("bob", false)
	tea := env.product("tea", "1.00", 5)

	cart, _, err := env.Repo.CreateCart(t.Context(), alice.ID)
	require.NoError(t, err)
	item, err := env.Repo.AddItem(t.Context(), cart.ID, tea.ID, 2)
	require.NoError(t, err)

	path := fmt.Sprintf("/carts/items/%d", item.ID)
	rec := env.serve(http.MethodGet, path, nil, env.login("alice")...)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decode[models.CartItem](t, rec)
	assert.Equal(t, 2, got.Quantity)
	require.NotNil(t, got.Product)
	assert.Equal(t, "tea", got.Product.Name)

	rec = env.serve(http.MethodGet, path, nil, env.login("bob")...)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.serve(http.MethodGet, "/carts/items/999", nil, env.login("alice")...)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.serve(http.MethodGet, "/carts/items/abc", nil, env.login("alice")...)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCartHandlers_Validation(t *testing.T) {
	env := newTestEnv(t)
	alice := env.user("alice", false)
	tea := env.product("tea", "1.00", 5)

	for _, body := range []transport.AddItemRequest{
		{ProductID: 0, Quantity: 1},
		{ProductID: tea.ID, Quantity: 0},
		{ProductID: tea.ID, Quantity: -2},
	} {
		_, _, c := env.doJSONRequest(http.MethodPost, "/carts/open/items", body)
		asUser(c, alice.ID, false)
		requireHTTPError(t, env.C.AddToOpenCart(c), http.StatusBadRequest)
	}

	_, _, c := env.doJSONRequest(http.MethodPost, "/carts/open/items", transport.AddItemRequest{ProductID: 999, Quantity: 1})
	asUser(c, alice.ID, false)
	requireHTTPError(t, env.C.AddToOpenCart(c), http.StatusNotFound)

	_, _, c = env.doJSONRequest(http.MethodGet, "/carts?status=LOST", nil)
	asUser(c, alice.ID, false)
	requireHTTPError(t, env.C.ListCarts(c), http.StatusBadRequest)

	_, _, c = env.doJSONRequest(http.MethodPost, "/carts/open/items", "not an object")
	asUser(c, alice.ID, false)
	requireHTTPError(t, env.C.AddToOpenCart(c), http.StatusBadRequest)
}

func TestCartHandlers_DeleteAll(t *testing.T) {
	env := newTestEnv(t)
	alice := env.user("alice", false)

	_, _, err := env.Repo.CreateCart(t.Context(), alice.ID)
	require.NoError(t, err)

	rec, _, c := env.doJSONRequest(http.MethodDelete, "/carts", nil)
	asUser(c, alice.ID, false)
	require.NoError(t, env.C.DeleteAllCarts(c))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"deleted":1}`, rec.Body.String())
}
