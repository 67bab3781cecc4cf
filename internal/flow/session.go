// Package flow implements the per-user conversational state machine that
// drives the guided add/view/edit/delete/search interactions.
package flow

import "sync"

// Flow identifies the multi-step interaction a user is currently inside.
type Flow string

const (
	// FlowNone means no flow is active.
	FlowNone Flow = ""
	// FlowAdd collects every field of a new record.
	FlowAdd Flow = "add"
	// FlowEdit resolves a record by id, then re-collects every field.
	FlowEdit Flow = "edit"
	// FlowDelete resolves a record by id and removes it.
	FlowDelete Flow = "delete"
	// FlowSearch runs one substring query and terminates.
	FlowSearch Flow = "search"
)

// Awaiting disambiguates what the next free-text message means.
type Awaiting string

const (
	// AwaitingNone means free text is not expected.
	AwaitingNone Awaiting = ""
	// AwaitingID expects a numeric record id.
	AwaitingID Awaiting = "id"
	// AwaitingFieldData expects the value for the field at Cursor.
	AwaitingFieldData Awaiting = "field_data"
	// AwaitingSearchQuery expects a search term.
	AwaitingSearchQuery Awaiting = "search_query"
)

// Session is the in-memory conversation state of one user. It is never
// persisted; a restart drops every in-flight flow.
type Session struct {
	Flow       Flow
	Collection string
	// Cursor indexes the collection's ordered fields during add/edit.
	Cursor int
	Data   map[string]string
	// TargetID is the numeric id of the record being edited or deleted.
	TargetID int64
	// StorageKey addresses the resolved record for update calls.
	StorageKey string
	Awaiting   Awaiting
}

// Active reports whether any flow is in progress.
func (s Session) Active() bool {
	return s.Flow != FlowNone
}

// Reset returns the session to the idle shape, discarding in-flight data.
func (s *Session) Reset() {
	*s = Session{Data: make(map[string]string)}
}

func (s *Session) clone() Session {
	out := *s
	out.Data = make(map[string]string, len(s.Data))
	for k, v := range s.Data {
		out.Data[k] = v
	}
	return out
}

type entry struct {
	mu   sync.Mutex
	sess Session
}

// Sessions is the in-memory session repository, keyed by user identity.
// Entries are created lazily and cleared in place, never shared across users.
type Sessions struct {
	mu      sync.Mutex
	entries map[int64]*entry
}

// NewSessions returns an empty repository.
func NewSessions() *Sessions {
	return &Sessions{entries: make(map[int64]*entry)}
}

func (s *Sessions) entryFor(userID int64) *entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[userID]
	if !ok {
		e = &entry{sess: Session{Data: make(map[string]string)}}
		s.entries[userID] = e
	}
	return e
}

// Get returns a snapshot of the user's session, creating an idle one if
// absent. It never fails.
func (s *Sessions) Get(userID int64) Session {
	e := s.entryFor(userID)
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sess.clone()
}

// Clear resets the user's session to idle. Idempotent.
func (s *Sessions) Clear(userID int64) {
	e := s.entryFor(userID)
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sess.Reset()
}

// With runs fn against a working copy of the user's session while holding the
// user's lock, serializing events per user. The copy is committed only when
// fn returns normally, so a panicking handler leaves the previous session
// shape intact instead of a half-updated one.
func (s *Sessions) With(userID int64, fn func(sess *Session) error) error {
	e := s.entryFor(userID)
	e.mu.Lock()
	defer e.mu.Unlock()

	work := e.sess.clone()
	err := fn(&work)
	e.sess = work
	return err
}
