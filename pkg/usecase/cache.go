package usecase

import (
	"sync"

	"github.com/aoi-lab/chatkeeper/pkg/domain/model"
	"github.com/aoi-lab/chatkeeper/pkg/domain/types"
)

// Cache owns all mutable in-process state: the event dedup slot and the
// user record store. It is created once at startup, seeded by Bootstrap,
// and every access goes through its methods. It is safe for concurrent
// use by the per-delivery goroutines.
type Cache struct {
	mu sync.Mutex

	// Dedup slot. Only the most recently accepted event is remembered;
	// two non-adjacent deliveries of the same event are not caught. That
	// bound is intentional and must not be widened silently.
	lastEventID   string
	lastEventTime int64

	users   map[types.UserID]*model.UserRecord
	userMus map[types.UserID]*sync.Mutex
}

// NewCache creates an empty cache
func NewCache() *Cache {
	return &Cache{
		users:   make(map[types.UserID]*model.UserRecord),
		userMus: make(map[types.UserID]*sync.Mutex),
	}
}

// Accept reports whether the event is new. An event is rejected if its ID
// matches the last accepted event or its timestamp is strictly older; an
// accepted event replaces the slot. Check and update are one critical
// section so concurrent redeliveries cannot both pass.
func (c *Cache) Accept(eventID string, eventTime int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if eventID == c.lastEventID || eventTime < c.lastEventTime {
		return false
	}

	c.lastEventID = eventID
	c.lastEventTime = eventTime
	return true
}

// Get returns a snapshot copy of the user's record
func (c *Cache) Get(id types.UserID) (*model.UserRecord, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rec, ok := c.users[id]
	if !ok {
		return nil, false
	}
	return rec.Clone(), true
}

// Put stores a copy of the record, replacing any existing one
func (c *Cache) Put(rec *model.UserRecord) {
	if rec == nil || rec.ID == "" {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.users[rec.ID] = rec.Clone()
}

// Len returns the number of cached user records
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.users)
}

// LockUser serializes event processing per user and returns the unlock
// function. Two concurrent events for the same user must not interleave
// their read-modify-write of the record.
func (c *Cache) LockUser(id types.UserID) func() {
	c.mu.Lock()
	mu, ok := c.userMus[id]
	if !ok {
		mu = &sync.Mutex{}
		c.userMus[id] = mu
	}
	c.mu.Unlock()

	mu.Lock()
	return mu.Unlock
}
