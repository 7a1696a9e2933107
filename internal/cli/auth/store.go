package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// ErrNotFound is returned by a Backend when no session document is stored.
var ErrNotFound = errors.New("session not found")

// Store is the durable credential store. The triple is always written,
// read and cleared as a single document so no reader observes half a session.
type Store struct {
	mu      sync.Mutex
	backend Backend
	logger  zerolog.Logger
}

// NewStore creates a store over the given backend.
func NewStore(backend Backend, logger zerolog.Logger) *Store {
	return &Store{
		backend: backend,
		logger:  logger,
	}
}

// Write persists the session, replacing any previous one.
func (s *Store) Write(sess Session) error {
	if !sess.Valid() {
		return fmt.Errorf("refusing to store incomplete session")
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.backend.Set(data); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Read returns the stored session. Missing, partial or unreadable documents
// are all reported as absent.
func (s *Store) Read() (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, _, err := s.load()
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to read stored session")
		return Session{}, false
	}
	if !sess.Valid() {
		return Session{}, false
	}
	return sess, true
}

// Clear removes the stored session. Clearing an empty store is a no-op.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.clear()
}

// Bootstrap reads the session once at startup and discards a stored
// document that is present but inconsistent (e.g. edited by hand).
func (s *Store) Bootstrap() (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, present, err := s.load()
	if err != nil && !present {
		s.logger.Warn().Err(err).Msg("Failed to read stored session")
		return Session{}, false
	}
	if !present {
		return Session{}, false
	}
	if err != nil || !sess.Valid() {
		s.logger.Warn().
			Err(err).
			Bool("has_token", sess.Token != "").
			Str("role", string(sess.Role)).
			Msg("Discarding inconsistent stored session")
		if err := s.clear(); err != nil {
			s.logger.Error().Err(err).Msg("Failed to clear stored session")
		}
		return Session{}, false
	}
	return sess, true
}

// load must be called with mu held. present is false when nothing is stored.
func (s *Store) load() (sess Session, present bool, err error) {
	data, err := s.backend.Get()
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Session{}, false, nil
		}
		return Session{}, false, fmt.Errorf("failed to load session: %w", err)
	}

	if err := json.Unmarshal(data, &sess); err != nil {
		return Session{}, true, fmt.Errorf("failed to parse session: %w", err)
	}
	return sess, true, nil
}

func (s *Store) clear() error {
	if err := s.backend.Delete(); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
