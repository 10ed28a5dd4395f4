package commands

import (
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/keshon/slashdispatch/pkg/datastore"
)

const (
	settingMaxRepeat = "max-repeat"
	settingMaxDice   = "max-dice"
)

var settingDefaults = map[string]int64{
	settingMaxRepeat: 5,
	settingMaxDice:   20,
}

// Settings holds per-guild numeric overrides. When backed by a datastore
// every change is written through to it.
type Settings struct {
	mu     sync.RWMutex
	guilds map[string]map[string]int64
	store  *datastore.Store
}

func NewSettings() *Settings {
	return &Settings{guilds: make(map[string]map[string]int64)}
}

// NewStoredSettings loads the overrides kept in store, one key per guild.
func NewStoredSettings(store *datastore.Store) (*Settings, error) {
	s := NewSettings()
	s.store = store
	for _, guildID := range store.Keys() {
		var g map[string]int64
		if _, err := store.Get(guildID, &g); err != nil {
			return nil, fmt.Errorf("load settings of guild %s: %w", guildID, err)
		}
		if len(g) > 0 {
			s.guilds[guildID] = g
		}
	}
	return s, nil
}

// Get returns the guild's value for key, falling back to the default.
func (s *Settings) Get(guildID, key string) int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.guilds[guildID][key]; ok {
		return v
	}
	return settingDefaults[key]
}

// Set overrides key for a guild. The in-memory value only changes once the
// backing store accepted it.
func (s *Settings) Set(guildID, key string, value int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g := maps.Clone(s.guilds[guildID])
	if g == nil {
		g = make(map[string]int64)
	}
	g[key] = value
	return s.commit(guildID, g)
}

// Reset drops the override for key, or all overrides when key is empty.
func (s *Settings) Reset(guildID, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var g map[string]int64
	if key != "" {
		g = maps.Clone(s.guilds[guildID])
		delete(g, key)
	}
	return s.commit(guildID, g)
}

// All returns the effective settings of a guild.
func (s *Settings) All(guildID string) map[string]int64 {
	out := maps.Clone(settingDefaults)
	s.mu.RLock()
	defer s.mu.RUnlock()
	maps.Copy(out, s.guilds[guildID])
	return out
}

// commit persists g as the guild's overrides and then installs it. It must
// be called with mu held.
func (s *Settings) commit(guildID string, g map[string]int64) error {
	if s.store != nil {
		var err error
		if len(g) == 0 {
			err = s.store.Delete(guildID)
		} else {
			err = s.store.Put(guildID, g)
		}
		if err != nil {
			return err
		}
	}
	if len(g) == 0 {
		delete(s.guilds, guildID)
	} else {
		s.guilds[guildID] = g
	}
	return nil
}

func settingKeys() []string {
	return slices.Sorted(maps.Keys(settingDefaults))
}
