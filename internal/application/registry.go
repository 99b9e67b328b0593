package application

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/bnema/fishbowl/internal/domain"
	"github.com/bnema/fishbowl/internal/ports"
)

// sessionEntry guards one session. A closed entry has been removed from the
// registry and must not be mutated again.
type sessionEntry struct {
	mu      sync.Mutex
	session *domain.Session
	closed  bool
}

// Registry owns the live sessions and the user to session index.
//
// Locks are taken entry first, registry second. The registry lock is never
// held while waiting on an entry.
type Registry struct {
	mu       sync.Mutex
	sessions map[domain.SessionID]*sessionEntry
	users    map[domain.UserID]domain.SessionID

	maxSessions int
	limits      domain.Limits
	clock       ports.Clock
}

func NewRegistry(maxSessions int, limits domain.Limits, clock ports.Clock) *Registry {
	if clock == nil {
		clock = ports.SystemClock{}
	}

	return &Registry{
		sessions:    map[domain.SessionID]*sessionEntry{},
		users:       map[domain.UserID]domain.SessionID{},
		maxSessions: maxSessions,
		limits:      limits,
		clock:       clock,
	}
}

// Start opens a session for creator under the lowest free ID.
func (r *Registry) Start(creator domain.UserID, home domain.ChannelID) (domain.Summary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.freeID()
	if !ok {
		return domain.Summary{}, fmt.Errorf("%w (max %d)", domain.ErrRegistryFull, r.maxSessions)
	}
	if current, seated := r.users[creator]; seated {
		return domain.Summary{}, fmt.Errorf("session #%d: %w", current, domain.ErrAlreadySeated)
	}

	session := domain.NewSession(id, creator, home, r.limits, r.clock.Now())
	r.sessions[id] = &sessionEntry{session: session}
	r.users[creator] = id
	return session.Summary(), nil
}

func (r *Registry) freeID() (domain.SessionID, bool) {
	for i := 0; i < r.maxSessions; i++ {
		id := domain.SessionID(i)
		if _, taken := r.sessions[id]; !taken {
			return id, true
		}
	}
	return 0, false
}

// Join seats user in session id. The user index is reserved before the
// session is touched so a user can never be seated twice.
func (r *Registry) Join(user domain.UserID, id domain.SessionID) (domain.Summary, error) {
	r.mu.Lock()
	if current, seated := r.users[user]; seated {
		r.mu.Unlock()
		return domain.Summary{}, fmt.Errorf("session #%d: %w", current, domain.ErrAlreadySeated)
	}
	entry, ok := r.sessions[id]
	if !ok {
		r.mu.Unlock()
		return domain.Summary{}, fmt.Errorf("session #%d: %w", id, domain.ErrSessionNotFound)
	}
	r.users[user] = id
	r.mu.Unlock()

	entry.mu.Lock()
	defer entry.mu.Unlock()

	err := domain.ErrSessionNotFound
	if !entry.closed {
		err = entry.session.Join(user)
	}
	if err != nil {
		r.mu.Lock()
		if r.users[user] == id {
			delete(r.users, user)
		}
		r.mu.Unlock()
		return domain.Summary{}, fmt.Errorf("join session #%d: %w", id, err)
	}

	entry.session.Touch(r.clock.Now())
	return entry.session.Summary(), nil
}

// SessionOf reports the session user is seated in.
func (r *Registry) SessionOf(user domain.UserID) (domain.SessionID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.users[user]
	return id, ok
}

// List summarizes every live session ordered by ID.
func (r *Registry) List() []domain.Summary {
	r.mu.Lock()
	entries := make([]*sessionEntry, 0, len(r.sessions))
	for _, entry := range r.sessions {
		entries = append(entries, entry)
	}
	r.mu.Unlock()

	out := make([]domain.Summary, 0, len(entries))
	for _, entry := range entries {
		entry.mu.Lock()
		if !entry.closed {
			out = append(out, entry.session.Summary())
		}
		entry.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// sessionTx is exclusive access to one session. It must be released.
type sessionTx struct {
	registry *Registry
	entry    *sessionEntry
	session  *domain.Session
}

// acquire locks the session user is seated in and refreshes its idle clock.
func (r *Registry) acquire(user domain.UserID) (*sessionTx, error) {
	for {
		r.mu.Lock()
		id, ok := r.users[user]
		entry := r.sessions[id]
		r.mu.Unlock()
		if !ok || entry == nil {
			return nil, domain.ErrNotInSession
		}

		entry.mu.Lock()
		if !entry.closed && entry.session.IsPlayer(user) {
			entry.session.Touch(r.clock.Now())
			return &sessionTx{registry: r, entry: entry, session: entry.session}, nil
		}
		entry.mu.Unlock()

		// The user moved between the lookup and the lock; follow them.
		r.mu.Lock()
		current, still := r.users[user]
		r.mu.Unlock()
		if !still || current == id {
			return nil, domain.ErrNotInSession
		}
	}
}

func (tx *sessionTx) release() {
	tx.entry.mu.Unlock()
}

// detach drops users from the index if they still point at this session.
func (tx *sessionTx) detach(users ...domain.UserID) {
	r := tx.registry
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, user := range users {
		if r.users[user] == tx.session.ID {
			delete(r.users, user)
		}
	}
}

// end closes the session and detaches every player still seated, plus
// departed users that left the roster in the same transaction.
func (tx *sessionTx) end(departed ...domain.UserID) {
	tx.entry.closed = true
	tx.detach(append(tx.session.Players(), departed...)...)

	r := tx.registry
	r.mu.Lock()
	if r.sessions[tx.session.ID] == tx.entry {
		delete(r.sessions, tx.session.ID)
	}
	r.mu.Unlock()
}

// Sweep ends every session idle for longer than timeout and returns what
// they looked like just before.
func (r *Registry) Sweep(now time.Time, timeout time.Duration) []domain.Summary {
	r.mu.Lock()
	entries := make([]*sessionEntry, 0, len(r.sessions))
	for _, entry := range r.sessions {
		entries = append(entries, entry)
	}
	r.mu.Unlock()

	var evicted []domain.Summary
	for _, entry := range entries {
		entry.mu.Lock()
		if !entry.closed && entry.session.IdleFor(now) > timeout {
			evicted = append(evicted, entry.session.Summary())
			tx := &sessionTx{registry: r, entry: entry, session: entry.session}
			tx.end()
		}
		entry.mu.Unlock()
	}
	sort.Slice(evicted, func(i, j int) bool { return evicted[i].ID < evicted[j].ID })
	return evicted
}

// CheckIntegrity verifies that every indexed user points at a live session
// that seats them.
func (r *Registry) CheckIntegrity() error {
	r.mu.Lock()
	index := make(map[domain.UserID]domain.SessionID, len(r.users))
	for user, id := range r.users {
		index[user] = id
	}
	entries := make(map[domain.SessionID]*sessionEntry, len(r.sessions))
	for id, entry := range r.sessions {
		entries[id] = entry
	}
	r.mu.Unlock()

	for user, id := range index {
		entry, ok := entries[id]
		if !ok {
			return fmt.Errorf("user %s points at missing session #%d", user, id)
		}
		entry.mu.Lock()
		seated := entry.session.IsPlayer(user)
		entry.mu.Unlock()
		if !seated {
			return fmt.Errorf("user %s indexed in session #%d but not seated", user, id)
		}
	}
	return nil
}
