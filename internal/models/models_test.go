package models

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenMigratesAndAssignsIDs(t *testing.T) {
	db, err := Open(":memory:", zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })

	user := User{FirstName: "Ada", LastName: "L", Email: "ada@myshop.test", PasswordHash: "x", Role: "user"}
	require.NoError(t, db.Create(&user).Error)
	assert.Len(t, user.ID, 26)

	product := Product{Name: "Kettle", SKU: "K-1"}
	require.NoError(t, db.Create(&product).Error)

	review := Review{ProductID: product.ID, UserID: user.ID, Rating: 4, Text: "good"}
	require.NoError(t, db.Create(&review).Error)

	var loaded Review
	require.NoError(t, FindByIDWithPreload(db, review.ID, &loaded, "Product", "User"))
	assert.Equal(t, "Kettle", loaded.Product.Name)
	assert.Equal(t, "ada@myshop.test", loaded.User.Email)
}

func TestUniqueEmail(t *testing.T) {
	db, err := Open(":memory:", zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })

	require.NoError(t, db.Create(&User{FirstName: "a", LastName: "b", Email: "dup@myshop.test", PasswordHash: "x"}).Error)
	err = db.Create(&User{FirstName: "c", LastName: "d", Email: "dup@myshop.test", PasswordHash: "x"}).Error
	assert.Error(t, err)
}

func TestFindByIDMissing(t *testing.T) {
	db, err := Open(":memory:", zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })

	var product Product
	assert.Error(t, FindByID(db, "missing", &product))
}
