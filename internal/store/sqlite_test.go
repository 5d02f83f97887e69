package store_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moldworks/moldtrack/internal/model"
	"github.com/moldworks/moldtrack/internal/store"
	"github.com/moldworks/moldtrack/tests/testutil"
)

func TestMissingKeysReturnErrNotFound(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)

	_, err := s.LoadTasks(ctx)
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.LoadMembers(ctx)
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.LoadSenderEmail(ctx)
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.LoadSession(ctx)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSaveOverwritesExistingRecord(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)

	require.NoError(t, s.SaveSenderEmail(ctx, "first@moldcorp.com"))
	require.NoError(t, s.SaveSenderEmail(ctx, "second@moldcorp.com"))

	addr, err := s.LoadSenderEmail(ctx)
	require.NoError(t, err)
	assert.Equal(t, "second@moldcorp.com", addr)
}

func TestTasksRoundTripPreservesNestedTrials(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)

	in := []model.Task{{
		ID: "T-103", MoldName: "MOLD-B2", Title: "T1 trial run",
		Status: model.StatusReview, Priority: model.PriorityCritical,
		Tags: []model.Phase{model.PhaseTrial},
		Trials: []model.MoldTrial{
			{ID: "tr-1", Version: "T1", Date: "2025-06-10", Condition: "melt 230C",
				Result: model.TrialAdjust, AIAdvice: "raise holding pressure"},
		},
	}}

	require.NoError(t, s.SaveTasks(ctx, in))
	out, err := s.LoadTasks(ctx)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestDeleteSessionIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)

	require.NoError(t, s.SaveSession(ctx, model.Session{EmpID: "M001", Name: "Alice Chao", Role: model.RoleManager}))
	require.NoError(t, s.DeleteSession(ctx))
	require.NoError(t, s.DeleteSession(ctx))

	_, err := s.LoadSession(ctx)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestReopenKeepsDataAndSkipsAppliedMigrations(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "moldtrack.db")

	s1, err := store.NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, s1.SaveSenderEmail(ctx, "ops@moldcorp.com"))
	require.NoError(t, s1.Close())

	s2, err := store.NewSQLiteStore(path)
	require.NoError(t, err)
	defer s2.Close()

	addr, err := s2.LoadSenderEmail(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ops@moldcorp.com", addr)
}
