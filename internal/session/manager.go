package session

import (
	"time"

	"casalgastos/internal/cache"
	applog "casalgastos/internal/log"
)

// Manager hands out one Session per identity. Sessions live in an LRU cache
// and are dropped after ttl without use.
type Manager struct {
	sessions *cache.LRUCache[*Session]
	boot     Bootstrapper
	ledger   Ledger
	logger   *applog.Logger
	now      func() time.Time
}

func NewManager(boot Bootstrapper, ledger Ledger, size int, ttl time.Duration, logger *applog.Logger) *Manager {
	if logger == nil {
		logger = applog.Discard()
	}
	logger = logger.WithComponent(applog.ComponentSession)
	sessions := cache.NewLRUCache[*Session](size, ttl)
	sessions.OnEvict(func(key string, _ *Session) {
		logger.Debug("Session evicted", applog.FieldUserID, key)
	})
	return &Manager{
		sessions: sessions,
		boot:     boot,
		ledger:   ledger,
		logger:   logger,
		now:      time.Now,
	}
}

// Get returns the session of userID, creating it on first use.
func (m *Manager) Get(userID string) *Session {
	return m.sessions.GetOrCreate(userID, func() *Session {
		m.logger.Debug("Session created", applog.FieldUserID, userID)
		return newSession(userID, m.boot, m.ledger, m.logger, m.now)
	})
}

// Drop forgets the session of userID, e.g. on logout.
func (m *Manager) Drop(userID string) {
	m.sessions.Delete(userID)
}

// Len reports the number of live sessions.
func (m *Manager) Len() int { return m.sessions.Size() }

// Cache exposes the session store so it can be swept by a cache.Manager.
func (m *Manager) Cache() cache.Cleaner { return m.sessions }
