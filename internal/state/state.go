package state

import (
	"github.com/moldworks/moldtrack/internal/model"
)

// ChangeKind identifies which logical record a mutation touched.
// Observers use it to decide what to persist.
type ChangeKind int

const (
	ChangeTasks ChangeKind = iota
	ChangeMembers
	ChangeSenderEmail
	ChangeSession
)

// Observer is notified synchronously after each committed mutation.
type Observer func(kind ChangeKind)

// State is the application-state container shared by every view: the
// task collection, member collection, sender email, and current
// session. All mutations validate first, then replace the affected
// value wholesale (copy-on-write) and bump the revision counter, so
// derived views can detect change by comparing revisions instead of
// diffing slices.
//
// State is confined to the UI event loop; asynchronous work (AI calls)
// re-enters through messages handled on that loop, so no locking is
// needed.
type State struct {
	tasks       []model.Task
	members     []model.Member
	senderEmail string
	session     *model.Session

	revision  uint64
	observers []Observer
}

// New creates a State seeded with the given records.
func New(tasks []model.Task, members []model.Member, senderEmail string, session *model.Session) *State {
	return &State{
		tasks:       tasks,
		members:     members,
		senderEmail: senderEmail,
		session:     session,
	}
}

// Subscribe registers an observer called after every committed
// mutation. Registration order is notification order.
func (s *State) Subscribe(o Observer) {
	s.observers = append(s.observers, o)
}

// commit records the change and notifies observers.
func (s *State) commit(kind ChangeKind) {
	s.revision++
	for _, o := range s.observers {
		o(kind)
	}
}

// Revision returns a counter that increases with every committed
// mutation. Equal revisions mean identical state.
func (s *State) Revision() uint64 {
	return s.revision
}

// Tasks returns the current task collection. The returned slice is the
// canonical value; callers must treat it as read-only.
func (s *State) Tasks() []model.Task {
	return s.tasks
}

// TaskByID returns the task with the given id, or nil.
func (s *State) TaskByID(id string) *model.Task {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return &s.tasks[i]
		}
	}
	return nil
}

// Members returns the current member collection, read-only.
func (s *State) Members() []model.Member {
	return s.members
}

// SenderEmail returns the configured system sender address.
func (s *State) SenderEmail() string {
	return s.senderEmail
}

// Session returns the authenticated principal, or nil when logged out.
func (s *State) Session() *model.Session {
	return s.session
}

// requireManager returns an error unless a manager session is active.
func (s *State) requireManager() error {
	if s.session == nil {
		return ErrNoSession
	}
	if !s.session.IsManager() {
		return ErrNotPermitted
	}
	return nil
}

// requireSession returns an error unless any session is active.
func (s *State) requireSession() error {
	if s.session == nil {
		return ErrNoSession
	}
	return nil
}
