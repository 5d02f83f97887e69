package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moldworks/moldtrack/internal/model"
)

func newTestState(t *testing.T) *State {
	t.Helper()
	return New(model.SeedTasks(), model.SeedMembers(), model.DefaultSenderEmail, nil)
}

func loginManager(t *testing.T, s *State) {
	t.Helper()
	_, err := s.Authenticate("M001", "123456")
	require.NoError(t, err)
}

func loginEngineer(t *testing.T, s *State) {
	t.Helper()
	_, err := s.Authenticate("E001", "123456")
	require.NoError(t, err)
}

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }

func phasePtr(p model.Phase) *model.Phase { return &p }

func statusPtr(s model.TaskStatus) *model.TaskStatus { return &s }

func TestAuthenticateCaseInsensitiveEmpID(t *testing.T) {
	s := newTestState(t)

	sess, err := s.Authenticate("m001", "123456")
	require.NoError(t, err)
	assert.Equal(t, "M001", sess.EmpID)
	assert.Equal(t, "Alice Chao", sess.Name)
	assert.True(t, sess.IsManager())
}

func TestAuthenticateRejectsBadCredentials(t *testing.T) {
	s := newTestState(t)

	_, err := s.Authenticate("M001", "wrong")
	assert.ErrorIs(t, err, ErrBadCredentials)

	_, err = s.Authenticate("X999", "123456")
	assert.ErrorIs(t, err, ErrBadCredentials)

	assert.Nil(t, s.Session())
}

func TestLogoutClearsSession(t *testing.T) {
	s := newTestState(t)
	loginManager(t, s)
	require.NotNil(t, s.Session())

	var kinds []ChangeKind
	s.Subscribe(func(kind ChangeKind) { kinds = append(kinds, kind) })

	s.Logout()
	assert.Nil(t, s.Session())
	assert.Equal(t, []ChangeKind{ChangeSession}, kinds)

	// Logging out again is a no-op and must not notify observers.
	s.Logout()
	assert.Len(t, kinds, 1)
}

func TestSaveTaskCreateDefaults(t *testing.T) {
	s := newTestState(t)
	loginManager(t, s)

	task, err := s.SaveTask(TaskPatch{
		MoldName: strPtr("MOLD-Z9"),
		Title:    strPtr("Parting line polish"),
		Phase:    phasePtr(model.PhaseTrial),
	})
	require.NoError(t, err)

	assert.Equal(t, model.StatusTodo, task.Status)
	assert.Equal(t, model.PriorityMedium, task.Priority)
	assert.Equal(t, 0, task.Progress)
	assert.Equal(t, []model.Phase{model.PhaseTrial}, task.Tags)
	assert.Regexp(t, `^T-\d{3}$`, task.ID)
}

func TestSaveTaskCreateIDsAreUnique(t *testing.T) {
	s := New(nil, model.SeedMembers(), model.DefaultSenderEmail, nil)
	loginManager(t, s)

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		task, err := s.SaveTask(TaskPatch{
			MoldName: strPtr("MOLD-Z9"),
			Title:    strPtr("repeat"),
			Phase:    phasePtr(model.PhaseDesign),
		})
		require.NoError(t, err)
		assert.False(t, seen[task.ID], "duplicate id %s", task.ID)
		seen[task.ID] = true
	}
}

func TestSaveTaskUpdateMergesSuppliedFields(t *testing.T) {
	s := newTestState(t)
	loginManager(t, s)

	before := *s.TaskByID("D-201")

	task, err := s.SaveTask(TaskPatch{
		ID:       "D-201",
		Progress: intPtr(80),
		Status:   statusPtr(model.StatusReview),
	})
	require.NoError(t, err)

	assert.Equal(t, 80, task.Progress)
	assert.Equal(t, model.StatusReview, task.Status)
	// Unsupplied fields are preserved.
	assert.Equal(t, before.Title, task.Title)
	assert.Equal(t, before.Assignee, task.Assignee)
	assert.Equal(t, before.ID, task.ID)
}

func TestSaveTaskClampsProgress(t *testing.T) {
	s := newTestState(t)
	loginManager(t, s)

	task, err := s.SaveTask(TaskPatch{ID: "D-201", Progress: intPtr(250)})
	require.NoError(t, err)
	assert.Equal(t, 100, task.Progress)

	task, err = s.SaveTask(TaskPatch{ID: "D-201", Progress: intPtr(-5)})
	require.NoError(t, err)
	assert.Equal(t, 0, task.Progress)
}

func TestSaveTaskNormalizesPhaseTags(t *testing.T) {
	s := newTestState(t)
	loginManager(t, s)

	task, err := s.SaveTask(TaskPatch{ID: "T-104", Phase: phasePtr(model.PhaseMassProduction)})
	require.NoError(t, err)
	assert.Equal(t, []model.Phase{model.PhaseMassProduction}, task.Tags)
}

func TestSaveTaskValidation(t *testing.T) {
	s := newTestState(t)
	loginManager(t, s)

	_, err := s.SaveTask(TaskPatch{Title: strPtr("no mold")})
	assert.True(t, IsValidation(err))

	_, err = s.SaveTask(TaskPatch{
		MoldName: strPtr("MOLD-Z9"),
		Title:    strPtr("ghost assignee"),
		Assignee: strPtr("Nobody Here"),
	})
	assert.True(t, IsValidation(err))

	_, err = s.SaveTask(TaskPatch{ID: "NOPE-1", Title: strPtr("x")})
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestSaveTaskRequiresManager(t *testing.T) {
	s := newTestState(t)

	_, err := s.SaveTask(TaskPatch{MoldName: strPtr("M"), Title: strPtr("t")})
	assert.ErrorIs(t, err, ErrNoSession)

	loginEngineer(t, s)
	_, err = s.SaveTask(TaskPatch{MoldName: strPtr("M"), Title: strPtr("t")})
	assert.ErrorIs(t, err, ErrNotPermitted)
}

func TestSaveTaskCopiesOnWrite(t *testing.T) {
	s := newTestState(t)
	loginManager(t, s)

	before := s.Tasks()
	beforeProgress := before[0].Progress

	_, err := s.SaveTask(TaskPatch{ID: before[0].ID, Progress: intPtr(beforeProgress + 1)})
	require.NoError(t, err)

	// The previously returned slice is unchanged.
	assert.Equal(t, beforeProgress, before[0].Progress)
}

func TestDeleteTask(t *testing.T) {
	s := newTestState(t)
	loginManager(t, s)

	require.NoError(t, s.DeleteTask("D-101"))
	assert.Nil(t, s.TaskByID("D-101"))

	assert.ErrorIs(t, s.DeleteTask("D-101"), ErrTaskNotFound)
}

func TestDeleteTaskRequiresManager(t *testing.T) {
	s := newTestState(t)
	loginEngineer(t, s)

	assert.ErrorIs(t, s.DeleteTask("D-101"), ErrNotPermitted)
	assert.NotNil(t, s.TaskByID("D-101"))
}

func TestAddTrialDefaultsAndAppend(t *testing.T) {
	s := newTestState(t)
	loginEngineer(t, s)

	trial, err := s.AddTrial("T-104", model.MoldTrial{Condition: "short shot on rib"})
	require.NoError(t, err)

	assert.NotEmpty(t, trial.ID)
	assert.Equal(t, model.TrialPending, trial.Result)
	assert.Equal(t, "T1", trial.Version)
	assert.NotEmpty(t, trial.Date)
	assert.Empty(t, trial.AIAdvice)

	task := s.TaskByID("T-104")
	require.Len(t, task.Trials, 2)
	assert.Equal(t, trial.ID, task.Trials[1].ID)
}

func TestAddTrialRequiresCondition(t *testing.T) {
	s := newTestState(t)
	loginEngineer(t, s)

	_, err := s.AddTrial("T-104", model.MoldTrial{Condition: "   "})
	assert.True(t, IsValidation(err))
}

func TestAddTrialUnknownTask(t *testing.T) {
	s := newTestState(t)
	loginEngineer(t, s)

	_, err := s.AddTrial("NOPE-1", model.MoldTrial{Condition: "flash"})
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestAttachTrialAdvice(t *testing.T) {
	s := newTestState(t)
	loginEngineer(t, s)

	trial, err := s.AddTrial("T-104", model.MoldTrial{Condition: "flow lines near gate"})
	require.NoError(t, err)

	require.NoError(t, s.AttachTrialAdvice("T-104", trial.ID, "Raise melt temperature by 10C."))

	task := s.TaskByID("T-104")
	assert.Equal(t, "Raise melt temperature by 10C.", task.Trials[len(task.Trials)-1].AIAdvice)

	assert.ErrorIs(t, s.AttachTrialAdvice("T-104", "missing-trial", "x"), ErrTaskNotFound)
}

func TestCreateMember(t *testing.T) {
	s := newTestState(t)
	loginManager(t, s)

	err := s.CreateMember(model.Member{EmpID: "E005", Name: "Fay Wu", Email: "fay@moldcorp.com"})
	require.NoError(t, err)

	members := s.Members()
	added := members[len(members)-1]
	assert.Equal(t, model.RoleEngineer, added.Role)
	assert.Equal(t, model.DefaultPassword, added.Password)
}

func TestCreateMemberRejectsDuplicateEmpID(t *testing.T) {
	s := newTestState(t)
	loginManager(t, s)

	err := s.CreateMember(model.Member{EmpID: "e001", Name: "Dup", Email: "dup@moldcorp.com"})
	assert.True(t, IsValidation(err))
}

func TestCreateMemberRequiresManager(t *testing.T) {
	s := newTestState(t)
	loginEngineer(t, s)

	err := s.CreateMember(model.Member{EmpID: "E005", Name: "Fay Wu", Email: "fay@moldcorp.com"})
	assert.ErrorIs(t, err, ErrNotPermitted)
}

func TestChangePassword(t *testing.T) {
	s := newTestState(t)
	loginEngineer(t, s)

	assert.True(t, IsValidation(s.ChangePassword("123456", "abcdef", "different")))
	assert.True(t, IsValidation(s.ChangePassword("123456", "abc", "abc")))
	assert.True(t, IsValidation(s.ChangePassword("wrong", "abcdef", "abcdef")))

	require.NoError(t, s.ChangePassword("123456", "abcdef", "abcdef"))

	// Old password no longer works; new one does.
	s.Logout()
	_, err := s.Authenticate("E001", "123456")
	assert.ErrorIs(t, err, ErrBadCredentials)
	_, err = s.Authenticate("E001", "abcdef")
	assert.NoError(t, err)
}

func TestSetSenderEmail(t *testing.T) {
	s := newTestState(t)
	loginManager(t, s)

	require.NoError(t, s.SetSenderEmail("  plm@moldcorp.com  "))
	assert.Equal(t, "plm@moldcorp.com", s.SenderEmail())

	assert.True(t, IsValidation(s.SetSenderEmail("   ")))
}

func TestImportTasksReassignsIDs(t *testing.T) {
	s := newTestState(t)
	loginManager(t, s)

	existing := len(s.Tasks())
	count, err := s.ImportTasks([]model.Task{
		{ID: "D-101", MoldName: "MOLD-X", Title: "collides with seed id", Status: model.StatusTodo, Priority: model.PriorityMedium, Tags: []model.Phase{model.PhaseDesign}},
		{MoldName: "MOLD-Y", Title: "no id at all", Status: model.StatusTodo, Priority: model.PriorityMedium, Tags: []model.Phase{model.PhaseAssembly}},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	tasks := s.Tasks()
	require.Len(t, tasks, existing+2)

	ids := make(map[string]int)
	for _, task := range tasks {
		ids[task.ID]++
	}
	for id, n := range ids {
		assert.Equal(t, 1, n, "id %s duplicated", id)
	}
}

func TestRevisionAdvancesOnEveryCommit(t *testing.T) {
	s := newTestState(t)
	loginManager(t, s)

	before := s.Revision()
	_, err := s.SaveTask(TaskPatch{ID: "D-201", Progress: intPtr(50)})
	require.NoError(t, err)
	assert.Greater(t, s.Revision(), before)
}
