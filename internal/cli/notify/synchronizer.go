// Package notify holds the moderation count shared by every view.
package notify

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/myshop-dev/myshop/internal/cli/auth"
	"github.com/myshop-dev/myshop/internal/cli/client"
)

// Source fetches the reviews currently flagged for moderation.
type Source interface {
	ListFakeReviews(ctx context.Context) ([]client.ReviewRecord, error)
}

// Counter is the read side of the synchronizer.
type Counter interface {
	Count() int
	Subscribe(fn func(count int)) (unsubscribe func())
}

// Synchronizer owns the pending-moderation count. Refresh and Reset are the
// only writers; any number of subscribers read it.
type Synchronizer struct {
	sessions auth.SessionReader
	source   Source
	logger   zerolog.Logger
	group    singleflight.Group

	mu           sync.Mutex
	count        int
	epoch        uint64
	bootstrapped string
	nextID       int
	subscribers  map[int]func(int)
}

// New creates a synchronizer with a zero count.
func New(sessions auth.SessionReader, source Source, logger zerolog.Logger) *Synchronizer {
	return &Synchronizer{
		sessions:    sessions,
		source:      source,
		logger:      logger,
		subscribers: make(map[int]func(int)),
	}
}

// Count returns the current moderation count.
func (s *Synchronizer) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// Subscribe registers fn to be called with the new count after every change.
// After unsubscribe returns, fn is never called again.
func (s *Synchronizer) Subscribe(fn func(count int)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subscribers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}
}

// Bootstrap runs once per session: an admin session triggers a single
// Refresh, anything else zeroes the count without touching the network.
// Calling it again for the same session is a no-op.
func (s *Synchronizer) Bootstrap(ctx context.Context) {
	sess, ok := s.sessions.Read()
	principal := auth.PrincipalOf(sess, ok)

	s.mu.Lock()
	if principal == auth.Admin && s.bootstrapped == sess.Token {
		s.mu.Unlock()
		return
	}
	if principal == auth.Admin {
		s.bootstrapped = sess.Token
	} else {
		s.bootstrapped = ""
	}
	s.mu.Unlock()

	if principal != auth.Admin {
		s.set(0, s.currentEpoch())
		return
	}
	s.Refresh(ctx)
}

// Refresh re-fetches the count. For anything but an admin session it sets
// zero and skips the request. Failures degrade to zero and are logged.
func (s *Synchronizer) Refresh(ctx context.Context) int {
	epoch := s.currentEpoch()

	sess, ok := s.sessions.Read()
	if auth.PrincipalOf(sess, ok) != auth.Admin {
		s.set(0, epoch)
		return 0
	}

	// Concurrent refreshes of one session share one request.
	v, err, _ := s.group.Do("fake-reviews:"+sess.Token, func() (any, error) {
		reviews, err := s.source.ListFakeReviews(ctx)
		if err != nil {
			return 0, err
		}
		return len(reviews), nil
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to refresh moderation count")
		s.set(0, epoch)
		return 0
	}

	count := v.(int)
	s.set(count, epoch)
	return count
}

// Reset zeroes the count and forgets the bootstrapped session. Results of
// refreshes that started before the reset are dropped.
func (s *Synchronizer) Reset() {
	s.mu.Lock()
	s.epoch++
	s.bootstrapped = ""
	epoch := s.epoch
	s.mu.Unlock()

	s.set(0, epoch)
}

func (s *Synchronizer) currentEpoch() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.epoch
}

// set publishes count unless a Reset happened since epoch was taken.
// Subscribers run outside the lock and only when the value changes.
func (s *Synchronizer) set(count int, epoch uint64) {
	s.mu.Lock()
	if epoch != s.epoch {
		s.mu.Unlock()
		s.logger.Debug().Int("count", count).Msg("Dropping stale moderation count")
		return
	}
	if count == s.count {
		s.mu.Unlock()
		return
	}
	s.count = count

	ids := make([]int, 0, len(s.subscribers))
	for id := range s.subscribers {
		ids = append(ids, id)
	}
	s.mu.Unlock()

	for _, id := range ids {
		s.mu.Lock()
		fn, ok := s.subscribers[id]
		s.mu.Unlock()
		if ok {
			fn(count)
		}
	}
}
