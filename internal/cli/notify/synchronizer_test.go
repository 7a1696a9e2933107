package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/myshop-dev/myshop/internal/cli/auth"
	"github.com/myshop-dev/myshop/internal/cli/client"
)

// fakeSource counts calls and returns a fixed number of flagged reviews.
type fakeSource struct {
	mu      sync.Mutex
	calls   int
	flagged int
	err     error
	block   chan struct{}
}

func (f *fakeSource) ListFakeReviews(ctx context.Context) ([]client.ReviewRecord, error) {
	f.mu.Lock()
	f.calls++
	block := f.block
	flagged, err := f.flagged, f.err
	f.mu.Unlock()

	if block != nil {
		<-block
	}
	if err != nil {
		return nil, err
	}
	return make([]client.ReviewRecord, flagged), nil
}

func (f *fakeSource) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func newTestSynchronizer(t *testing.T, role auth.Role, source *fakeSource) (*Synchronizer, *auth.Store) {
	t.Helper()
	store := auth.NewStore(auth.NewMemoryBackend(), zerolog.Nop())
	if role != "" {
		require.NoError(t, store.Write(auth.Session{Token: "t-" + string(role), Role: role, UserID: "u1"}))
	}
	return New(store, source, zerolog.Nop()), store
}

func TestBootstrap_UserNeverFetches(t *testing.T) {
	source := &fakeSource{flagged: 3}
	s, _ := newTestSynchronizer(t, auth.RoleUser, source)

	s.Bootstrap(context.Background())

	assert.Equal(t, 0, s.Count())
	assert.Equal(t, 0, source.Calls())
}

func TestBootstrap_AnonymousNeverFetches(t *testing.T) {
	source := &fakeSource{flagged: 3}
	s, _ := newTestSynchronizer(t, "", source)

	s.Bootstrap(context.Background())
	assert.Equal(t, 0, s.Refresh(context.Background()))

	assert.Equal(t, 0, source.Calls())
}

func TestBootstrap_AdminFetchesExactlyOnce(t *testing.T) {
	source := &fakeSource{flagged: 3}
	s, _ := newTestSynchronizer(t, auth.RoleAdmin, source)

	s.Bootstrap(context.Background())
	s.Bootstrap(context.Background())

	assert.Equal(t, 3, s.Count())
	assert.Equal(t, 1, source.Calls())
}

func TestBootstrap_NewSessionBootstrapsAgain(t *testing.T) {
	source := &fakeSource{flagged: 2}
	s, store := newTestSynchronizer(t, auth.RoleAdmin, source)
	ctx := context.Background()

	s.Bootstrap(ctx)
	require.NoError(t, store.Write(auth.Session{Token: "another", Role: auth.RoleAdmin, UserID: "u2"}))
	s.Bootstrap(ctx)

	assert.Equal(t, 2, source.Calls())
}

func TestRefresh_FailureDegradesToZero(t *testing.T) {
	source := &fakeSource{flagged: 4}
	s, _ := newTestSynchronizer(t, auth.RoleAdmin, source)
	ctx := context.Background()

	require.Equal(t, 4, s.Refresh(ctx))

	source.mu.Lock()
	source.err = errors.New("connection refused")
	source.mu.Unlock()

	assert.Equal(t, 0, s.Refresh(ctx))
	assert.Equal(t, 0, s.Count())
}

func TestRefresh_DecreasesAfterModeration(t *testing.T) {
	source := &fakeSource{flagged: 5}
	s, _ := newTestSynchronizer(t, auth.RoleAdmin, source)
	ctx := context.Background()

	s.Bootstrap(ctx)
	before := s.Count()

	source.mu.Lock()
	source.flagged--
	source.mu.Unlock()
	s.Refresh(ctx)

	assert.Equal(t, before-1, s.Count())
}

func TestSubscribe_ReceivesChangesUntilUnsubscribed(t *testing.T) {
	source := &fakeSource{flagged: 2}
	s, _ := newTestSynchronizer(t, auth.RoleAdmin, source)
	ctx := context.Background()

	var seen []int
	unsubscribe := s.Subscribe(func(count int) { seen = append(seen, count) })

	s.Refresh(ctx)
	s.Refresh(ctx) // unchanged value, no notification

	source.mu.Lock()
	source.flagged = 1
	source.mu.Unlock()
	s.Refresh(ctx)

	unsubscribe()
	s.Reset()

	assert.Equal(t, []int{2, 1}, seen)
	assert.Equal(t, 0, s.Count())
}

func TestReset_DropsInFlightResult(t *testing.T) {
	source := &fakeSource{flagged: 7, block: make(chan struct{})}
	s, store := newTestSynchronizer(t, auth.RoleAdmin, source)

	done := make(chan int)
	go func() { done <- s.Refresh(context.Background()) }()

	// Wait until the request is in flight, then log out underneath it.
	require.Eventually(t, func() bool { return source.Calls() == 1 }, testTimeout, testTick)
	require.NoError(t, store.Clear())
	s.Reset()
	close(source.block)
	<-done

	assert.Equal(t, 0, s.Count())
}

func TestRefresh_ConcurrentCallsShareRequest(t *testing.T) {
	source := &fakeSource{flagged: 1, block: make(chan struct{})}
	s, _ := newTestSynchronizer(t, auth.RoleAdmin, source)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Refresh(context.Background())
		}()
	}

	require.Eventually(t, func() bool { return source.Calls() == 1 }, testTimeout, testTick)
	close(source.block)
	wg.Wait()

	assert.Equal(t, 1, s.Count())
	assert.LessOrEqual(t, source.Calls(), 5)
}

func TestRefresh_NewSessionDoesNotJoinPreviousRequest(t *testing.T) {
	source := &fakeSource{flagged: 7, block: make(chan struct{})}
	s, store := newTestSynchronizer(t, auth.RoleAdmin, source)
	firstBlock := source.block

	first := make(chan int)
	go func() { first <- s.Refresh(context.Background()) }()
	require.Eventually(t, func() bool { return source.Calls() == 1 }, testTimeout, testTick)

	// Another admin logs in while the old request is still in flight
	require.NoError(t, store.Write(auth.Session{Token: "t-other", Role: auth.RoleAdmin, UserID: "u2"}))
	s.Reset()
	source.mu.Lock()
	source.block = nil
	source.flagged = 2
	source.mu.Unlock()

	second := make(chan int)
	go func() { second <- s.Refresh(context.Background()) }()

	select {
	case got := <-second:
		assert.Equal(t, 2, got)
	case <-time.After(testTimeout):
		t.Fatal("refresh for the new session waited on the previous session's request")
	}

	close(firstBlock)
	<-first

	assert.Equal(t, 2, source.Calls())
	assert.Equal(t, 2, s.Count())
}
