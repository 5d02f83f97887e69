package sync

import (
	"context"
	"time"

	"github.com/moldworks/moldtrack/internal/model"
	"github.com/moldworks/moldtrack/internal/state"
	"github.com/moldworks/moldtrack/internal/store"
)

// writeTimeout bounds a single persistence write.
const writeTimeout = 5 * time.Second

// syncIndicatorDuration is how long the transient "syncing" indicator
// stays raised after a task write. Cosmetic only; writes are
// synchronous and never block further mutations.
const syncIndicatorDuration = 600 * time.Millisecond

// Restored holds the records read back from the store at startup.
type Restored struct {
	Tasks       []model.Task
	Members     []model.Member
	SenderEmail string
	Session     *model.Session
}

// Synchronizer mirrors the application state into the durable
// key-value store. It observes the state container and writes the
// affected record synchronously after each mutation; the session key
// is deleted (not nulled) on logout.
type Synchronizer struct {
	store store.Store
	st    *state.State

	syncingUntil time.Time
	lastErr      error
}

// New creates a Synchronizer over the given store.
func New(s store.Store) *Synchronizer {
	return &Synchronizer{store: s}
}

// Restore reads the four logical records. A missing key or an
// unparseable value silently falls back to the baked-in default for
// that record; a first run therefore yields the seed dataset, no
// session, and the default sender address.
func (y *Synchronizer) Restore(ctx context.Context) Restored {
	r := Restored{
		Tasks:       model.SeedTasks(),
		Members:     model.SeedMembers(),
		SenderEmail: model.DefaultSenderEmail,
	}

	if tasks, err := y.store.LoadTasks(ctx); err == nil {
		r.Tasks = tasks
	}
	if members, err := y.store.LoadMembers(ctx); err == nil {
		r.Members = members
	}
	if addr, err := y.store.LoadSenderEmail(ctx); err == nil && addr != "" {
		r.SenderEmail = addr
	}
	if sess, err := y.store.LoadSession(ctx); err == nil {
		r.Session = sess
	}

	return r
}

// Attach subscribes the synchronizer to the state container. Must be
// called once before any mutation.
func (y *Synchronizer) Attach(st *state.State) {
	y.st = st
	st.Subscribe(y.onChange)
}

// onChange persists the record a mutation touched. A write failure is
// recorded for the header indicator; there is no retry or rollback.
func (y *Synchronizer) onChange(kind state.ChangeKind) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	var err error
	switch kind {
	case state.ChangeTasks:
		err = y.store.SaveTasks(ctx, y.st.Tasks())
		y.syncingUntil = time.Now().Add(syncIndicatorDuration)
	case state.ChangeMembers:
		err = y.store.SaveMembers(ctx, y.st.Members())
	case state.ChangeSenderEmail:
		err = y.store.SaveSenderEmail(ctx, y.st.SenderEmail())
	case state.ChangeSession:
		if sess := y.st.Session(); sess != nil {
			err = y.store.SaveSession(ctx, *sess)
		} else {
			err = y.store.DeleteSession(ctx)
		}
	}

	y.lastErr = err
}

// Syncing reports whether the transient syncing indicator is raised.
func (y *Synchronizer) Syncing() bool {
	return time.Now().Before(y.syncingUntil)
}

// LastError returns the most recent write error, or nil.
func (y *Synchronizer) LastError() error {
	return y.lastErr
}
