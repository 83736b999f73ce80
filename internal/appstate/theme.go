package appstate

import (
	"sync"

	"go.uber.org/zap"
)

const themeKey = "tripsify.theme_mode"

// ThemeMode is the user's preference; Scheme is what actually renders.
type ThemeMode string

type Scheme string

const (
	ModeLight  ThemeMode = "light"
	ModeDark   ThemeMode = "dark"
	ModeSystem ThemeMode = "system"

	SchemeLight Scheme = "light"
	SchemeDark  Scheme = "dark"
)

func (m ThemeMode) valid() bool {
	return m == ModeLight || m == ModeDark || m == ModeSystem
}

// SchemeSource reports the OS color scheme; ok is false when the
// platform cannot tell.
type SchemeSource func() (Scheme, bool)

// ThemeStore resolves the effective scheme from the stored mode and
// the OS, and notifies subscribers on change. Persistence is
// best-effort: a failing write keeps the in-memory choice.
type ThemeStore struct {
	mu      sync.Mutex
	storage Storage
	source  SchemeSource
	log     *zap.Logger

	mode ThemeMode
	subs []func(Scheme)
}

func NewThemeStore(storage Storage, source SchemeSource, log *zap.Logger) *ThemeStore {
	s := &ThemeStore{
		storage: storage,
		source:  source,
		log:     log,
		mode:    ModeSystem,
	}
	if raw, err := storage.Get(themeKey); err == nil && ThemeMode(raw).valid() {
		s.mode = ThemeMode(raw)
	}
	return s
}

func (s *ThemeStore) Mode() ThemeMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// Effective resolves the rendered scheme. In system mode an unknown OS
// scheme falls back to light.
func (s *ThemeStore) Effective() Scheme {
	s.mu.Lock()
	mode := s.mode
	source := s.source
	s.mu.Unlock()
	return resolve(mode, source)
}

func resolve(mode ThemeMode, source SchemeSource) Scheme {
	switch mode {
	case ModeLight:
		return SchemeLight
	case ModeDark:
		return SchemeDark
	}
	if source != nil {
		if scheme, ok := source(); ok {
			return scheme
		}
	}
	return SchemeLight
}

// SetMode updates the preference and publishes the new scheme even
// when persisting fails.
func (s *ThemeStore) SetMode(mode ThemeMode) {
	if !mode.valid() {
		return
	}

	s.mu.Lock()
	s.mode = mode
	scheme := resolve(mode, s.source)
	subs := append([]func(Scheme){}, s.subs...)
	s.mu.Unlock()

	if err := s.storage.Set(themeKey, string(mode)); err != nil {
		s.log.Warn("theme preference not persisted", zap.Error(err))
	}
	for _, fn := range subs {
		fn(scheme)
	}
}

// Refresh recomputes the scheme after an OS appearance change; only
// system mode reacts.
func (s *ThemeStore) Refresh() {
	s.mu.Lock()
	if s.mode != ModeSystem {
		s.mu.Unlock()
		return
	}
	scheme := resolve(s.mode, s.source)
	subs := append([]func(Scheme){}, s.subs...)
	s.mu.Unlock()

	for _, fn := range subs {
		fn(scheme)
	}
}

// Subscribe registers a scheme listener and returns its removal func.
func (s *ThemeStore) Subscribe(fn func(Scheme)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
	i := len(s.subs) - 1
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if i < len(s.subs) {
			s.subs[i] = func(Scheme) {}
		}
	}
}
