package repo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/shopcart/internal/models"
	"github.com/Skotchmaster/shopcart/internal/transport"
)

func TestCreateUser_Duplicate(t *testing.T) {
	f := newFixture(t)
	f.user(t, "alice")

	err := f.repo.CreateUser(f.ctx, &models.User{Username: "alice", Email: "other@example.com", PasswordHash: "x"})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestGetUserByNameAndEmail(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "alice")
	f.user(t, "bob")

	got, err := f.repo.GetUserByUsername(f.ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	got, err = f.repo.GetUserByEmail(f.ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = f.repo.GetUserByEmail(f.ctx, "nobody@example.com")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUpdateUser(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "alice")
	f.user(t, "bob")

	first, hash := "Alice", "new-hash"
	got, err := f.repo.UpdateUser(f.ctx, u.ID, UserPatch{FirstName: &first, PasswordHash: &hash})
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.FirstName)
	assert.Equal(t, "new-hash", got.PasswordHash)
	assert.Equal(t, "alice@example.com", got.Email)

	taken := "bob@example.com"
	_, err = f.repo.UpdateUser(f.ctx, u.ID, UserPatch{Email: &taken})
	assert.ErrorIs(t, err, ErrDuplicate)

	_, err = f.repo.UpdateUser(f.ctx, 999, UserPatch{FirstName: &first})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestDeleteUser_RemovesOwnedRows(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "alice")
	other := f.user(t, "bob")
	p := f.product(t, "pen", "1.00", 10)

	cart := f.openCart(t, u.ID)
	_, err := f.repo.AddItem(f.ctx, cart.ID, p.ID, 2)
	require.NoError(t, err)
	require.NoError(t, f.repo.CreateAddress(f.ctx, &models.Address{UserID: u.ID, Country: "NL", City: "Utrecht", Street: "Oudegracht 1"}))
	require.NoError(t, f.repo.AddRefreshToken(f.ctx, &models.RefreshToken{Token: "h", UserID: u.ID, JTI: "j", ExpiresAt: time.Now().Add(time.Hour).Unix()}))
	otherCart := f.openCart(t, other.ID)

	require.NoError(t, f.repo.DeleteUser(f.ctx, u.ID))

	for _, m := range []any{&models.Cart{}, &models.Address{}, &models.RefreshToken{}} {
		var n int64
		require.NoError(t, f.db.Model(m).Where("user_id = ?", u.ID).Count(&n).Error)
		assert.Zero(t, n)
	}
	var items int64
	require.NoError(t, f.db.Model(&models.CartItem{}).Count(&items).Error)
	assert.Zero(t, items)

	_, err = f.repo.GetCart(f.ctx, otherCart.ID)
	assert.NoError(t, err)
	assert.Equal(t, 10, f.reloadProduct(t, p.ID).Stock)

	assert.ErrorIs(t, f.repo.DeleteUser(f.ctx, u.ID), gorm.ErrRecordNotFound)
}

func TestRotateRefreshToken(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "alice")
	exp := time.Now().Add(time.Hour).Unix()

	require.NoError(t, f.repo.AddRefreshToken(f.ctx, &models.RefreshToken{Token: "h1", UserID: u.ID, JTI: "j1", ExpiresAt: exp}))

	next := &models.RefreshToken{Token: "h2", UserID: u.ID, JTI: "j2", ExpiresAt: exp}
	require.NoError(t, f.repo.RotateRefreshToken(f.ctx, "j1", "h1", next))

	old, err := f.repo.FindRefreshByJTI(f.ctx, "j1")
	require.NoError(t, err)
	assert.True(t, old.Revoked)

	replay := &models.RefreshToken{Token: "h3", UserID: u.ID, JTI: "j3", ExpiresAt: exp}
	assert.ErrorIs(t, f.repo.RotateRefreshToken(f.ctx, "j1", "h1", replay), ErrTokenRevoked)
	assert.ErrorIs(t, f.repo.RotateRefreshToken(f.ctx, "j2", "wrong", replay), ErrTokenRevoked)
	assert.ErrorIs(t, f.repo.RotateRefreshToken(f.ctx, "missing", "h", replay), ErrTokenRevoked)

	require.NoError(t, f.repo.RevokeRefresh(f.ctx, "h2"))
	cur, err := f.repo.FindRefreshByJTI(f.ctx, "j2")
	require.NoError(t, err)
	assert.True(t, cur.Revoked)
}

func TestAddresses(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "alice")

	a := &models.Address{UserID: u.ID, Country: "NL", City: "Utrecht", Street: "Oudegracht 1"}
	require.NoError(t, f.repo.CreateAddress(f.ctx, a))

	city := "Amsterdam"
	got, err := f.repo.PatchAddress(f.ctx, a.ID, transport.PatchAddressRequest{City: &city})
	require.NoError(t, err)
	assert.Equal(t, "Amsterdam", got.City)
	assert.Equal(t, "NL", got.Country)

	list, err := f.repo.ListAddresses(f.ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, f.repo.DeleteAddress(f.ctx, a.ID))
	assert.ErrorIs(t, f.repo.DeleteAddress(f.ctx, a.ID), gorm.ErrRecordNotFound)
	_, err = f.repo.GetAddress(f.ctx, a.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
