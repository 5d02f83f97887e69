package sync

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moldworks/moldtrack/internal/model"
	"github.com/moldworks/moldtrack/internal/state"
	"github.com/moldworks/moldtrack/internal/store"
	"github.com/moldworks/moldtrack/tests/testutil"
)

func TestRestoreEmptyStoreYieldsDefaults(t *testing.T) {
	s := testutil.NewTestStore(t)
	syn := New(s)

	r := syn.Restore(context.Background())

	assert.Equal(t, model.SeedTasks(), r.Tasks)
	assert.Equal(t, model.SeedMembers(), r.Members)
	assert.Equal(t, model.DefaultSenderEmail, r.SenderEmail)
	assert.Nil(t, r.Session)
}

func TestRestorePrefersStoredRecords(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)

	tasks := []model.Task{{ID: "D-900", MoldName: "MOLD-X9", Title: "Gate redesign",
		Status: model.StatusTodo, Priority: model.PriorityHigh, Tags: []model.Phase{model.PhaseDesign}}}
	members := []model.Member{{EmpID: "M777", Name: "Fay Chen", Role: model.RoleManager, Password: "secret99"}}
	sess := model.Session{EmpID: "M777", Name: "Fay Chen", Role: model.RoleManager}

	require.NoError(t, s.SaveTasks(ctx, tasks))
	require.NoError(t, s.SaveMembers(ctx, members))
	require.NoError(t, s.SaveSenderEmail(ctx, "ops@moldcorp.com"))
	require.NoError(t, s.SaveSession(ctx, sess))

	r := New(s).Restore(ctx)

	assert.Equal(t, tasks, r.Tasks)
	assert.Equal(t, members, r.Members)
	assert.Equal(t, "ops@moldcorp.com", r.SenderEmail)
	require.NotNil(t, r.Session)
	assert.Equal(t, sess, *r.Session)
}

func TestRestoreEmptySenderEmailFallsBackToDefault(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)
	require.NoError(t, s.SaveSenderEmail(ctx, ""))

	r := New(s).Restore(ctx)
	assert.Equal(t, model.DefaultSenderEmail, r.SenderEmail)
}

// brokenStore fails every load; Restore must fall back to defaults.
type brokenStore struct {
	store.Store
}

func (brokenStore) LoadTasks(context.Context) ([]model.Task, error) {
	return nil, errors.New("corrupt record")
}

func (brokenStore) LoadMembers(context.Context) ([]model.Member, error) {
	return nil, errors.New("corrupt record")
}

func (brokenStore) LoadSenderEmail(context.Context) (string, error) {
	return "", errors.New("corrupt record")
}

func (brokenStore) LoadSession(context.Context) (*model.Session, error) {
	return nil, errors.New("corrupt record")
}

func TestRestoreFallsBackToDefaultsOnLoadErrors(t *testing.T) {
	r := New(brokenStore{}).Restore(context.Background())

	assert.Equal(t, model.SeedTasks(), r.Tasks)
	assert.Equal(t, model.SeedMembers(), r.Members)
	assert.Equal(t, model.DefaultSenderEmail, r.SenderEmail)
	assert.Nil(t, r.Session)
}

// attached builds a state container from a fresh restore and wires the
// synchronizer to it, mirroring the startup sequence.
func attached(t *testing.T) (*Synchronizer, *state.State, *store.SQLiteStore) {
	t.Helper()

	s := testutil.NewTestStore(t)
	syn := New(s)
	r := syn.Restore(context.Background())

	st := state.New(r.Tasks, r.Members, r.SenderEmail, r.Session)
	syn.Attach(st)
	return syn, st, s
}

func TestTaskMutationRoundTripsThroughStore(t *testing.T) {
	syn, st, s := attached(t)

	_, err := st.Authenticate("M001", model.DefaultPassword)
	require.NoError(t, err)

	title := "Hot runner balance study"
	mold := "MOLD-A1"
	created, err := st.SaveTask(state.TaskPatch{Title: &title, MoldName: &mold})
	require.NoError(t, err)
	require.NoError(t, syn.LastError())

	trial, err := st.AddTrial(created.ID, model.MoldTrial{Condition: "melt 230C, hold 8s"})
	require.NoError(t, err)

	loaded, err := s.LoadTasks(context.Background())
	require.NoError(t, err)

	var found *model.Task
	for i := range loaded {
		if loaded[i].ID == created.ID {
			found = &loaded[i]
		}
	}
	require.NotNil(t, found, "created task must be persisted")
	assert.Equal(t, title, found.Title)
	require.Len(t, found.Trials, 1)
	assert.Equal(t, trial.ID, found.Trials[0].ID)
	assert.Equal(t, "melt 230C, hold 8s", found.Trials[0].Condition)
}

func TestTaskWriteRaisesSyncingIndicator(t *testing.T) {
	syn, st, _ := attached(t)

	_, err := st.Authenticate("M001", model.DefaultPassword)
	require.NoError(t, err)
	assert.False(t, syn.Syncing(), "session writes must not raise the indicator")

	title := "Cooling channel rework"
	mold := "MOLD-B2"
	_, err = st.SaveTask(state.TaskPatch{Title: &title, MoldName: &mold})
	require.NoError(t, err)

	assert.True(t, syn.Syncing())
}

func TestLoginPersistsSessionAndLogoutDeletesIt(t *testing.T) {
	ctx := context.Background()
	_, st, s := attached(t)

	_, err := st.Authenticate("M001", model.DefaultPassword)
	require.NoError(t, err)

	sess, err := s.LoadSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, "M001", sess.EmpID)

	st.Logout()

	// The key is removed entirely, not overwritten with a null record.
	_, err = s.LoadSession(ctx)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

// flakyStore delegates to a real store but fails task writes.
type flakyStore struct {
	store.Store
}

func (f flakyStore) SaveTasks(context.Context, []model.Task) error {
	return errors.New("disk full")
}

func TestWriteFailureSurfacesAsLastError(t *testing.T) {
	syn := New(flakyStore{Store: testutil.NewTestStore(t)})
	r := syn.Restore(context.Background())

	st := state.New(r.Tasks, r.Members, r.SenderEmail, r.Session)
	syn.Attach(st)

	_, err := st.Authenticate("M001", model.DefaultPassword)
	require.NoError(t, err)
	require.NoError(t, syn.LastError(), "session write uses the real store")

	title := "Parting line polish"
	mold := "MOLD-A1"
	_, err = st.SaveTask(state.TaskPatch{Title: &title, MoldName: &mold})
	require.NoError(t, err, "the mutation itself still succeeds")

	assert.EqualError(t, syn.LastError(), "disk full")
}
