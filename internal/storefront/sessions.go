package storefront

import "sync"

// maxListingsPerSession bounds the listing pages tracked per session; the
// lowest page numbers are forgotten first.
const maxListingsPerSession = 16

// sessionState holds the per-session serialization primitives. cartMu orders
// every cart read-modify-write of the session. listings maps each rendered
// page instance to the newest listing stamp issued or observed for it, so
// two tabs of one session never supersede each other's category requests.
type sessionState struct {
	cartMu sync.Mutex

	listMu   sync.Mutex
	lastPage uint64
	listings map[uint64]uint64
}

type sessionRegistry struct {
	mu       sync.Mutex
	sessions map[string]*sessionState
}

func newSessionRegistry() *sessionRegistry {
	return &sessionRegistry{sessions: make(map[string]*sessionState)}
}

func (r *sessionRegistry) get(sessionID string) *sessionState {
	r.mu.Lock()
	defer r.mu.Unlock()
	state, ok := r.sessions[sessionID]
	if !ok {
		state = &sessionState{listings: make(map[uint64]uint64)}
		r.sessions[sessionID] = state
	}
	return state
}

// withCart runs fn while holding the session's cart lock.
func (r *sessionRegistry) withCart(sessionID string, fn func() error) error {
	state := r.get(sessionID)
	state.cartMu.Lock()
	defer state.cartMu.Unlock()
	return fn()
}

// newListing mints the page token of a freshly rendered home page.
func (r *sessionRegistry) newListing(sessionID string) uint64 {
	state := r.get(sessionID)
	state.listMu.Lock()
	defer state.listMu.Unlock()
	state.lastPage++
	state.listings[state.lastPage] = 0
	state.evictListings()
	return state.lastPage
}

// nextSeq issues a fresh listing stamp for one page of the session.
func (r *sessionRegistry) nextSeq(sessionID string, page uint64) uint64 {
	state := r.get(sessionID)
	state.listMu.Lock()
	defer state.listMu.Unlock()
	seq := state.listings[page] + 1
	state.listings[page] = seq
	state.evictListings()
	return seq
}

// observeSeq records a client supplied stamp for a page, keeping the maximum.
func (r *sessionRegistry) observeSeq(sessionID string, page, seq uint64) {
	state := r.get(sessionID)
	state.listMu.Lock()
	defer state.listMu.Unlock()
	if current, ok := state.listings[page]; !ok || seq > current {
		state.listings[page] = seq
	}
	state.evictListings()
}

// isLatest reports whether seq is still the newest stamp of the page.
func (r *sessionRegistry) isLatest(sessionID string, page, seq uint64) bool {
	state := r.get(sessionID)
	state.listMu.Lock()
	defer state.listMu.Unlock()
	current, ok := state.listings[page]
	return ok && current == seq
}

// evictListings must be called with listMu held.
func (s *sessionState) evictListings() {
	for len(s.listings) > maxListingsPerSession {
		oldest, first := uint64(0), true
		for page := range s.listings {
			if first || page < oldest {
				oldest, first = page, false
			}
		}
		delete(s.listings, oldest)
	}
}
