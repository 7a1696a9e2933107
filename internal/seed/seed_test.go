package seed

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/myshop-dev/myshop/internal/auth"
	"github.com/myshop-dev/myshop/internal/models"
)

const sample = `
admins:
  - first_name: Ada
    last_name: Admin
    email: Admin@MyShop.test
    password: secret
users:
  - first_name: Sam
    last_name: Shopper
    email: sam@myshop.test
    password: secret
products:
  - name: Kettle
    desc: Boils water
    sku: K-1
  - name: Toaster
    sku: T-1
    image_url: /uploads/toaster.png
`

func TestParseRejectsIncompleteRecords(t *testing.T) {
	_, err := Parse([]byte("admins:\n  - email: a@b.com\n"))
	assert.ErrorContains(t, err, "email and password")

	_, err = Parse([]byte("products:\n  - name: Kettle\n"))
	assert.ErrorContains(t, err, "name and sku")

	_, err = Parse([]byte("admins: [unclosed"))
	assert.Error(t, err)
}

func TestApplyIsIdempotent(t *testing.T) {
	db, err := models.Open(":memory:", zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = models.Close(db) })

	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0600))

	f, err := Load(path)
	require.NoError(t, err)

	res, err := Apply(db, f, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, Result{Users: 2, Products: 2}, res)

	res, err = Apply(db, f, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, Result{}, res)

	var admin models.User
	require.NoError(t, db.Where("email = ?", "admin@myshop.test").First(&admin).Error)
	assert.Equal(t, auth.RoleAdmin, admin.Role)
	assert.NoError(t, auth.VerifyPassword("secret", admin.PasswordHash))
}

func TestAdmin(t *testing.T) {
	db, err := models.Open(":memory:", zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = models.Close(db) })

	created, err := Admin(db, "root@myshop.test", "pw")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = Admin(db, "root@myshop.test", "pw")
	require.NoError(t, err)
	assert.False(t, created)
}
