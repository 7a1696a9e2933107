package shell

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/myshop-dev/myshop/internal/cli/auth"
	"github.com/myshop-dev/myshop/internal/cli/client"
	"github.com/myshop-dev/myshop/internal/cli/notify"
)

type flaggedSource struct {
	flagged int
}

func (f *flaggedSource) ListFakeReviews(ctx context.Context) ([]client.ReviewRecord, error) {
	return make([]client.ReviewRecord, f.flagged), nil
}

func newTestShell(t *testing.T, role auth.Role, flagged int) (*Shell, *notify.Synchronizer, *flaggedSource, *auth.Store) {
	t.Helper()

	store := auth.NewStore(auth.NewMemoryBackend(), zerolog.Nop())
	if role != "" {
		require.NoError(t, store.Write(auth.Session{Token: "t1", Role: role, UserID: "u1"}))
	}
	source := &flaggedSource{flagged: flagged}
	sync := notify.New(store, source, zerolog.Nop())
	sh := New(store, sync)
	t.Cleanup(sh.Close)
	return sh, sync, source, store
}

func TestMenu_PerPrincipal(t *testing.T) {
	tests := []struct {
		name       string
		role       auth.Role
		wantBrand  string
		wantLinks  []string
		wantAction string
	}{
		{"anonymous", "", "/", nil, "Login"},
		{"user", auth.RoleUser, "/products", []string{"/products"}, "Logout"},
		{"admin", auth.RoleAdmin, "/admin/products", []string{"/admin/products", "/admin/reviews"}, "Logout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sh, _, _, _ := newTestShell(t, tt.role, 0)

			menu := sh.Menu()
			assert.Equal(t, tt.wantBrand, menu.Brand.Path)
			var paths []string
			for _, link := range menu.Links {
				paths = append(paths, link.Path)
			}
			assert.Equal(t, tt.wantLinks, paths)
			assert.Equal(t, tt.wantAction, menu.Action.Label)
		})
	}
}

func TestMenu_BadgeFollowsSynchronizer(t *testing.T) {
	sh, sync, source, _ := newTestShell(t, auth.RoleAdmin, 3)
	ctx := context.Background()

	assert.Equal(t, 0, sh.Badge())

	sync.Bootstrap(ctx)
	assert.Equal(t, 3, sh.Menu().Links[1].Badge)

	source.flagged = 2
	sync.Refresh(ctx)
	assert.Equal(t, 2, sh.Menu().Links[1].Badge)

	var out bytes.Buffer
	require.NoError(t, sh.Render(&out, "/admin/reviews"))
	assert.Contains(t, out.String(), "*Fake Reviews (2) </admin/reviews>")
}

func TestClose_StopsUpdates(t *testing.T) {
	sh, sync, _, _ := newTestShell(t, auth.RoleAdmin, 4)

	sh.Close()
	sync.Refresh(context.Background())

	assert.Equal(t, 0, sh.Badge())
	assert.Equal(t, 4, sync.Count())
}

func TestRender_HiddenOnAnonymousForms(t *testing.T) {
	sh, _, _, _ := newTestShell(t, auth.RoleUser, 0)

	for _, path := range []string{"/", "/signup"} {
		var out bytes.Buffer
		require.NoError(t, sh.Render(&out, path))
		assert.Empty(t, out.String(), path)
	}

	var out bytes.Buffer
	require.NoError(t, sh.Render(&out, "/products"))
	assert.Contains(t, out.String(), "MyShop </products>")
	assert.Contains(t, out.String(), "Logout")
	assert.NotContains(t, out.String(), "Fake Reviews")
}

func TestMenu_FollowsLogout(t *testing.T) {
	sh, _, _, store := newTestShell(t, auth.RoleAdmin, 0)

	require.NoError(t, store.Clear())

	menu := sh.Menu()
	assert.Empty(t, menu.Links)
	assert.Equal(t, "Login", menu.Action.Label)
}

func TestHidden(t *testing.T) {
	assert.True(t, Hidden("/"))
	assert.True(t, Hidden("/signup"))
	assert.False(t, Hidden("/products"))
	assert.False(t, Hidden("/admin/reviews"))
}
