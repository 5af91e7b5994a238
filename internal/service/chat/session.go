package chat

import (
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"lumina/internal/domain"
)

// sessionEntry is the last accepted result of one conversation.
type sessionEntry struct {
	question string
	result   *domain.Result
	expires  time.Time
}

// SessionCache keeps each conversation's last result for follow-up questions.
// Entries are keyed per session: results are never visible across sessions.
// A cron janitor evicts expired entries; a size cap evicts the oldest.
type SessionCache struct {
	mu      sync.Mutex
	entries map[string]sessionEntry
	ttl     time.Duration
	max     int
	janitor *cron.Cron
	now     func() time.Time
}

// NewSessionCache creates a cache and starts its eviction janitor.
func NewSessionCache(ttl time.Duration, max int) *SessionCache {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	if max <= 0 {
		max = 1000
	}
	c := &SessionCache{
		entries: map[string]sessionEntry{},
		ttl:     ttl,
		max:     max,
		janitor: cron.New(),
		now:     time.Now,
	}
	_, _ = c.janitor.AddFunc("@every 1m", c.evictExpired)
	c.janitor.Start()
	return c
}

// Stop halts the eviction janitor.
func (c *SessionCache) Stop() {
	c.janitor.Stop()
}

// Store records the session's last question and result.
func (c *SessionCache) Store(sessionID, question string, result *domain.Result) {
	if sessionID == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[sessionID] = sessionEntry{
		question: question,
		result:   result,
		expires:  c.now().Add(c.ttl),
	}
	c.enforceCapLocked()
}

// Get returns the session's last result, or false when absent or expired.
func (c *SessionCache) Get(sessionID string) (*domain.Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[sessionID]
	if !ok || c.now().After(e.expires) {
		delete(c.entries, sessionID)
		return nil, false
	}
	return e.result, true
}

// Forget removes a session's entry.
func (c *SessionCache) Forget(sessionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, sessionID)
}

func (c *SessionCache) evictExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for id, e := range c.entries {
		if now.After(e.expires) {
			delete(c.entries, id)
		}
	}
}

// enforceCapLocked evicts the entries closest to expiry until the cache fits.
func (c *SessionCache) enforceCapLocked() {
	if len(c.entries) <= c.max {
		return
	}
	type aged struct {
		id      string
		expires time.Time
	}
	all := make([]aged, 0, len(c.entries))
	for id, e := range c.entries {
		all = append(all, aged{id: id, expires: e.expires})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].expires.Before(all[j].expires) })
	for _, a := range all[:len(c.entries)-c.max] {
		delete(c.entries, a.id)
	}
}
