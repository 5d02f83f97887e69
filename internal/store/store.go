package store

import (
	"context"
	"errors"

	"github.com/moldworks/moldtrack/internal/model"
)

// Logical record keys. Each key maps to one JSON-serialized value in
// the underlying key-value store.
const (
	KeyTasks       = "tasks"
	KeyMembers     = "members"
	KeySenderEmail = "sender_email"
	KeySession     = "session"
)

// ErrNotFound is returned when a key has no stored value, e.g. on
// first run. Callers fall back to the seed defaults.
var ErrNotFound = errors.New("store: key not found")

// Store is the durable key-value collaborator holding the four logical
// records: task collection, member collection, sender email, and the
// current session. Reads of a missing key return ErrNotFound; reads of
// a corrupted value return a decode error; both are recovered by the
// synchronizer, never surfaced to the user.
type Store interface {
	SaveTasks(ctx context.Context, tasks []model.Task) error
	LoadTasks(ctx context.Context) ([]model.Task, error)

	SaveMembers(ctx context.Context, members []model.Member) error
	LoadMembers(ctx context.Context) ([]model.Member, error)

	SaveSenderEmail(ctx context.Context, addr string) error
	LoadSenderEmail(ctx context.Context) (string, error)

	// SaveSession writes the session record. DeleteSession removes the
	// key entirely; a logged-out store has no session record at all.
	SaveSession(ctx context.Context, s model.Session) error
	LoadSession(ctx context.Context) (*model.Session, error)
	DeleteSession(ctx context.Context) error

	Close() error
}
