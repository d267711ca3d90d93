package partyhistory

import (
	"sync"
	"time"
)

// Viewer is the per-browser state held by the web server: one quiz session
// and one tutor transcript.
type Viewer struct {
	ID       string
	Quiz     *QuizSession
	Chat     *ChatSession
	lastSeen time.Time
}

// SessionStore keeps viewers in memory, evicting the oldest beyond capacity.
// Nothing in it outlives the process.
type SessionStore struct {
	mu       sync.Mutex
	viewers  map[string]*Viewer
	queue    []string // FIFO of viewer IDs by creation
	capacity int
	newView  func(id string) *Viewer
	now      func() time.Time
}

// NewSessionStore creates a store holding at most capacity viewers; newView
// builds the state for a viewer seen for the first time.
func NewSessionStore(capacity int, newView func(id string) *Viewer) *SessionStore {
	return &SessionStore{
		viewers:  make(map[string]*Viewer),
		queue:    make([]string, 0),
		capacity: capacity,
		newView:  newView,
		now:      time.Now,
	}
}

// Get returns the viewer for id, creating it if needed.
func (ss *SessionStore) Get(id string) *Viewer {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	if v, ok := ss.viewers[id]; ok {
		v.lastSeen = ss.now()
		return v
	}

	v := ss.newView(id)
	v.ID = id
	v.lastSeen = ss.now()
	ss.viewers[id] = v
	ss.queue = append(ss.queue, id)

	for ss.capacity > 0 && len(ss.queue) > ss.capacity {
		ss.removeLocked(ss.queue[0])
	}
	return v
}

// Remove drops a viewer and cancels its outstanding quiz fetch.
func (ss *SessionStore) Remove(id string) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	ss.removeLocked(id)
}

func (ss *SessionStore) removeLocked(id string) {
	if v, ok := ss.viewers[id]; ok {
		v.Quiz.Close()
		delete(ss.viewers, id)
	}

	for i, qid := range ss.queue {
		if qid == id {
			ss.queue = append(ss.queue[:i], ss.queue[i+1:]...)
			break
		}
	}
}

// Sweep removes viewers idle for longer than maxIdle and returns how many went.
func (ss *SessionStore) Sweep(maxIdle time.Duration) int {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	cutoff := ss.now().Add(-maxIdle)
	var stale []string
	for id, v := range ss.viewers {
		if v.lastSeen.Before(cutoff) {
			stale = append(stale, id)
		}
	}
	for _, id := range stale {
		ss.removeLocked(id)
	}
	return len(stale)
}

// Size returns the number of viewers held
func (ss *SessionStore) Size() int {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return len(ss.queue)
}

// CloseAll cancels every outstanding fetch and empties the store.
func (ss *SessionStore) CloseAll() {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	for _, v := range ss.viewers {
		v.Quiz.Close()
	}
	ss.viewers = make(map[string]*Viewer)
	ss.queue = ss.queue[:0]
}
