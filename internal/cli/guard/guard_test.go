package guard

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/myshop-dev/myshop/internal/cli/auth"
)

func TestGuards_DecisionTable(t *testing.T) {
	tests := []struct {
		name      string
		guard     Guard
		principal auth.Principal
		admit     bool
	}{
		{"user guard admits user", UserGuard{}, auth.User, true},
		{"user guard denies admin", UserGuard{}, auth.Admin, false},
		{"user guard denies anonymous", UserGuard{}, auth.Anonymous, false},
		{"admin guard admits admin", AdminGuard{}, auth.Admin, true},
		{"admin guard denies user", AdminGuard{}, auth.User, false},
		{"admin guard denies anonymous", AdminGuard{}, auth.Anonymous, false},
		{"open admits anonymous", Open{}, auth.Anonymous, true},
		{"open admits admin", Open{}, auth.Admin, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := tt.guard.Decide(tt.principal)
			assert.Equal(t, tt.admit, d.Admit)
			if tt.admit {
				assert.Empty(t, d.Redirect)
			} else {
				assert.Equal(t, AnonymousLanding, d.Redirect)
			}
		})
	}
}

func TestCheck_ReadsStore(t *testing.T) {
	store := auth.NewStore(auth.NewMemoryBackend(), zerolog.Nop())

	assert.False(t, Check(AdminGuard{}, store).Admit)
	assert.False(t, Check(UserGuard{}, store).Admit)

	require.NoError(t, store.Write(auth.Session{Token: "t1", Role: auth.RoleAdmin, UserID: "u1"}))
	assert.True(t, Check(AdminGuard{}, store).Admit)
	assert.False(t, Check(UserGuard{}, store).Admit)

	require.NoError(t, store.Write(auth.Session{Token: "t2", Role: auth.RoleUser, UserID: "u2"}))
	assert.False(t, Check(AdminGuard{}, store).Admit)
	assert.True(t, Check(UserGuard{}, store).Admit)

	// Each check re-reads; nothing is cached between navigations.
	require.NoError(t, store.Clear())
	assert.False(t, Check(UserGuard{}, store).Admit)

	assert.True(t, Check(nil, store).Admit)
}
