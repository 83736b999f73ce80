package appstate

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

const settingsKey = "tripsify.settings"

// Settings are the app's boolean toggles, persisted as one blob.
type Settings struct {
	PushNotifications bool `json:"push_notifications"`
	EmailUpdates      bool `json:"email_updates"`
	LocationSharing   bool `json:"location_sharing"`
}

func defaultSettings() Settings {
	return Settings{PushNotifications: true}
}

// SettingsStore persists toggles best-effort; toggling always takes
// effect in memory.
type SettingsStore struct {
	mu       sync.Mutex
	storage  Storage
	log      *zap.Logger
	settings Settings
}

func NewSettingsStore(storage Storage, log *zap.Logger) *SettingsStore {
	s := &SettingsStore{storage: storage, log: log, settings: defaultSettings()}
	if raw, err := storage.Get(settingsKey); err == nil {
		var stored Settings
		if json.Unmarshal([]byte(raw), &stored) == nil {
			s.settings = stored
		}
	}
	return s
}

func (s *SettingsStore) Get() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

func (s *SettingsStore) Update(fn func(*Settings)) Settings {
	s.mu.Lock()
	fn(&s.settings)
	current := s.settings
	s.mu.Unlock()

	raw, err := json.Marshal(current)
	if err == nil {
		err = s.storage.Set(settingsKey, string(raw))
	}
	if err != nil {
		s.log.Warn("settings not persisted", zap.Error(err))
	}
	return current
}

func (s *SettingsStore) SetPushNotifications(on bool) Settings {
	return s.Update(func(st *Settings) { st.PushNotifications = on })
}

func (s *SettingsStore) SetEmailUpdates(on bool) Settings {
	return s.Update(func(st *Settings) { st.EmailUpdates = on })
}

func (s *SettingsStore) SetLocationSharing(on bool) Settings {
	return s.Update(func(st *Settings) { st.LocationSharing = on })
}
