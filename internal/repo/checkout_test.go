package repo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/shopcart/internal/models"
)

func TestCheckout_NoOpenCart(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "alice")

	_, err := f.repo.Checkout(f.ctx, u.ID)
	require.ErrorIs(t, err, ErrEmptyCart)
}

func TestCheckout_EmptyCartStaysOpen(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "alice")
	cart := f.openCart(t, u.ID)

	_, err := f.repo.Checkout(f.ctx, u.ID)
	require.ErrorIs(t, err, ErrEmptyCart)
	assert.Equal(t, models.CartOpen, f.reloadCart(t, cart.ID).Status)
}

func TestCheckout_ShortStockChangesNothing(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "alice")
	pen := f.product(t, "pen", "1.00", 10)
	lamp := f.product(t, "lamp", "20.00", 5)
	cart := f.openCart(t, u.ID)

	_, err := f.repo.AddItem(f.ctx, cart.ID, pen.ID, 4)
	require.NoError(t, err)
	_, err = f.repo.AddItem(f.ctx, cart.ID, lamp.ID, 5)
	require.NoError(t, err)

	// someone else bought lamps in the meantime
	require.NoError(t, f.repo.DecrementStock(f.ctx, lamp.ID, 2))

	_, err = f.repo.Checkout(f.ctx, u.ID)
	require.ErrorIs(t, err, ErrInsufficientStock)

	assert.Equal(t, models.CartOpen, f.reloadCart(t, cart.ID).Status)
	assert.Equal(t, 10, f.reloadProduct(t, pen.ID).Stock)
	assert.Equal(t, 3, f.reloadProduct(t, lamp.ID).Stock)
}

func TestCheckout_Success(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "alice")
	pen := f.product(t, "pen", "1.50", 10)
	lamp := f.product(t, "lamp", "20.00", 5)
	cart := f.openCart(t, u.ID)

	_, err := f.repo.AddItem(f.ctx, cart.ID, lamp.ID, 5)
	require.NoError(t, err)
	_, err = f.repo.AddItem(f.ctx, cart.ID, pen.ID, 3)
	require.NoError(t, err)

	done, err := f.repo.Checkout(f.ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CartCheckedOut, done.Status)
	require.NotNil(t, done.CheckedOutAt)
	requireDecimal(t, "104.5", done.TotalPrice)
	assert.Len(t, done.Items, 2)

	assert.Equal(t, 7, f.reloadProduct(t, pen.ID).Stock)
	assert.Equal(t, 0, f.reloadProduct(t, lamp.ID).Stock)

	stored := f.reloadCart(t, cart.ID)
	assert.Equal(t, models.CartCheckedOut, stored.Status)
	requireDecimal(t, "104.5", stored.TotalPrice)

	_, err = f.repo.GetOpenCart(f.ctx, u.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestCheckout_DecrementsByProduct(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "alice")
	first := f.product(t, "first", "1.00", 10)
	second := f.product(t, "second", "1.00", 10)
	third := f.product(t, "third", "1.00", 10)
	cart := f.openCart(t, u.ID)

	// item ids and product ids deliberately disagree
	item, err := f.repo.AddItem(f.ctx, cart.ID, third.ID, 2)
	require.NoError(t, err)
	require.NotEqual(t, item.ID, item.ProductID)

	_, err = f.repo.Checkout(f.ctx, u.ID)
	require.NoError(t, err)

	assert.Equal(t, 10, f.reloadProduct(t, first.ID).Stock)
	assert.Equal(t, 10, f.reloadProduct(t, second.ID).Stock)
	assert.Equal(t, 8, f.reloadProduct(t, third.ID).Stock)
}

func TestCancel(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "alice")
	p := f.product(t, "pen", "1.00", 10)

	cart := f.openCart(t, u.ID)
	_, err := f.repo.AddItem(f.ctx, cart.ID, p.ID, 2)
	require.NoError(t, err)

	cancelled, err := f.repo.Cancel(f.ctx, cart.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CartCancelled, cancelled.Status)
	assert.Equal(t, 10, f.reloadProduct(t, p.ID).Stock)

	_, err = f.repo.Cancel(f.ctx, cart.ID)
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = f.repo.Cancel(f.ctx, 999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestCancel_CheckedOutCart(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "alice")
	p := f.product(t, "pen", "1.00", 10)

	cart := f.openCart(t, u.ID)
	_, err := f.repo.AddItem(f.ctx, cart.ID, p.ID, 2)
	require.NoError(t, err)
	_, err = f.repo.Checkout(f.ctx, u.ID)
	require.NoError(t, err)

	_, err = f.repo.Cancel(f.ctx, cart.ID)
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.Equal(t, models.CartCheckedOut, f.reloadCart(t, cart.ID).Status)
	assert.Equal(t, 8, f.reloadProduct(t, p.ID).Stock)
}
