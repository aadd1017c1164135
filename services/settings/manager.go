package settings

import (
	"context"
	"sync"

	"habitat-go/errcode"
	"habitat-go/logger"
	"habitat-go/types"
)

// Manager owns the in-memory settings and writes every change through to
// the Store.
type Manager struct {
	mu    sync.RWMutex
	cur   types.SystemSettings
	store Store
	log   *logger.Logger
}

// Open loads the settings once. A store with nothing saved is initialised
// with the defaults.
func Open(ctx context.Context, store Store, log *logger.Logger) (*Manager, error) {
	if log == nil {
		log = logger.Nop()
	}
	m := &Manager{store: store, log: log.Named("settings")}

	s, err := store.Load(ctx)
	switch errcode.Of(err) {
	case errcode.OK:
		s.Normalize()
		m.log.Infow("settings loaded", "feeder_hour", int(s.FeederHour), "feeder_minute", int(s.FeederMinute))
	case errcode.NotFound:
		s = types.DefaultSettings()
		if err := store.Save(ctx, s); err != nil {
			return nil, errcode.Wrap(errcode.Error, "settings.init", err)
		}
		m.log.Infow("settings initialised with defaults")
	default:
		return nil, errcode.Wrap(errcode.Error, "settings.load", err)
	}
	if s.FWVersion != types.FirmwareVersion {
		m.log.Infow("firmware version changed", "stored", s.FWVersion, "running", types.FirmwareVersion)
		s.FWVersion = types.FirmwareVersion
		if err := store.Save(ctx, s); err != nil {
			m.log.Warnw("firmware version not persisted", "err", err)
		}
	}
	m.cur = s
	return m, nil
}

// Settings returns a copy of the current settings.
func (m *Manager) Settings() types.SystemSettings {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cur
}

// Update applies f, clamps the result and saves it. If the save fails the
// in-memory copy is left unchanged and the error is returned.
func (m *Manager) Update(ctx context.Context, f func(s *types.SystemSettings)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	next := m.cur
	f(&next)
	next.Normalize()
	if next == m.cur {
		return nil
	}
	if err := m.store.Save(ctx, next); err != nil {
		m.log.Warnw("settings save failed", "err", err)
		return err
	}
	m.cur = next
	return nil
}
