// Package session resolves who is calling and tracks signed-in users.
//
// A Registry is an explicit object passed to whatever needs identity changes;
// there is no process-wide current user. Listeners subscribe for sign-in,
// role-change and sign-out notifications and unsubscribe with the returned func.
package session

import (
	"slices"
	"sync"
	"time"
)

// ChangeKind describes a session transition.
type ChangeKind string

const (
	SignedIn    ChangeKind = "signed_in"
	RoleChanged ChangeKind = "role_changed"
	SignedOut   ChangeKind = "signed_out"
)

// Change is delivered to every subscriber. Previous is the last user seen for
// the uid (zero on SignedIn).
type Change struct {
	Kind     ChangeKind
	User     User
	Previous User
	At       time.Time
}

// Listener receives session changes. It is called synchronously and must not
// call back into the Registry.
type Listener func(Change)

// Registry tracks users seen by the API.
type Registry struct {
	mu        sync.Mutex
	active    map[string]entry
	listeners []subscriber
	nextID    int
	now       func() time.Time
}

// subscriber keeps registration order so listeners are called in the order
// they subscribed.
type subscriber struct {
	id int
	fn Listener
}

type entry struct {
	user     User
	lastSeen time.Time
}

func NewRegistry() *Registry {
	return &Registry{
		active:    make(map[string]entry),
		now:       time.Now,
	}
}

// Subscribe registers fn and returns a func that removes it. Listeners are
// notified in the order they subscribed.
func (r *Registry) Subscribe(fn Listener) (unsubscribe func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextID
	r.nextID++
	r.listeners = append(r.listeners, subscriber{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.listeners = slices.DeleteFunc(r.listeners, func(s subscriber) bool { return s.id == id })
		})
	}
}

// Observe records a resolved user. The first sighting of a uid emits SignedIn,
// a different role than last time emits RoleChanged.
func (r *Registry) Observe(u User) {
	now := r.now()

	r.mu.Lock()
	prev, seen := r.active[u.UID]
	r.active[u.UID] = entry{user: u, lastSeen: now}
	var change *Change
	switch {
	case !seen:
		change = &Change{Kind: SignedIn, User: u, At: now}
	case prev.user.Role != u.Role:
		change = &Change{Kind: RoleChanged, User: u, Previous: prev.user, At: now}
	}
	listeners := r.snapshotListeners()
	r.mu.Unlock()

	if change != nil {
		notify(listeners, *change)
	}
}

// End removes uid and emits SignedOut. It reports whether uid was active.
func (r *Registry) End(uid string) bool {
	r.mu.Lock()
	prev, ok := r.active[uid]
	if ok {
		delete(r.active, uid)
	}
	listeners := r.snapshotListeners()
	r.mu.Unlock()

	if ok {
		notify(listeners, Change{Kind: SignedOut, User: prev.user, Previous: prev.user, At: r.now()})
	}
	return ok
}

// Current returns the last user observed for uid.
func (r *Registry) Current(uid string) (User, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.active[uid]
	return e.user, ok
}

// Active returns the number of tracked users.
func (r *Registry) Active() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.active)
}

// Expire ends every session idle for longer than idle and returns how many ended.
func (r *Registry) Expire(idle time.Duration) int {
	cutoff := r.now().Add(-idle)

	r.mu.Lock()
	var expired []User
	for uid, e := range r.active {
		if e.lastSeen.Before(cutoff) {
			expired = append(expired, e.user)
			delete(r.active, uid)
		}
	}
	listeners := r.snapshotListeners()
	r.mu.Unlock()

	for _, u := range expired {
		notify(listeners, Change{Kind: SignedOut, User: u, Previous: u, At: r.now()})
	}
	return len(expired)
}

func (r *Registry) snapshotListeners() []Listener {
	out := make([]Listener, 0, len(r.listeners))
	for _, s := range r.listeners {
		out = append(out, s.fn)
	}
	return out
}

func notify(listeners []Listener, c Change) {
	for _, fn := range listeners {
		fn(c)
	}
}
