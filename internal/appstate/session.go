package appstate

import (
	"encoding/json"
	"errors"
	"sync"

	"go.uber.org/zap"
)

const sessionKey = "tripsify.session"

// Session is the persisted authentication state.
type Session struct {
	Token  string `json:"token"`
	UserID int64  `json:"user_id"`
}

// AuthStore owns the session: it persists before publishing so a crash
// right after login still restores an authenticated app.
type AuthStore struct {
	mu      sync.Mutex
	storage Storage
	log     *zap.Logger

	session *Session
	subs    []func(*Session)
}

func NewAuthStore(storage Storage, log *zap.Logger) *AuthStore {
	return &AuthStore{storage: storage, log: log}
}

// Load restores the persisted session at startup. A corrupt record is
// dropped and the user starts signed out.
func (s *AuthStore) Load() *Session {
	raw, err := s.storage.Get(sessionKey)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		s.log.Warn("session read failed", zap.Error(err))
		return nil
	}

	var sess Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil || sess.Token == "" {
		s.log.Warn("stored session unreadable, discarding")
		if err := s.storage.Remove(sessionKey); err != nil {
			s.log.Warn("stale session not removed", zap.Error(err))
		}
		return nil
	}

	s.mu.Lock()
	s.session = &sess
	s.mu.Unlock()
	return &sess
}

// Login persists the session first and publishes it only on success.
func (s *AuthStore) Login(token string, userID int64) error {
	sess := &Session{Token: token, UserID: userID}
	raw, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	if err := s.storage.Set(sessionKey, string(raw)); err != nil {
		return err
	}

	s.mu.Lock()
	s.session = sess
	subs := append([]func(*Session){}, s.subs...)
	s.mu.Unlock()

	for _, fn := range subs {
		fn(sess)
	}
	return nil
}

// Logout clears local state even when the storage delete fails.
func (s *AuthStore) Logout() {
	if err := s.storage.Remove(sessionKey); err != nil {
		s.log.Warn("session not removed from storage", zap.Error(err))
	}

	s.mu.Lock()
	s.session = nil
	subs := append([]func(*Session){}, s.subs...)
	s.mu.Unlock()

	for _, fn := range subs {
		fn(nil)
	}
}

func (s *AuthStore) Current() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

func (s *AuthStore) Authenticated() bool {
	return s.Current() != nil
}

// Subscribe registers a session listener and returns its removal func.
func (s *AuthStore) Subscribe(fn func(*Session)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
	i := len(s.subs) - 1
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if i < len(s.subs) {
			s.subs[i] = func(*Session) {}
		}
	}
}
