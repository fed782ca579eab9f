package committer

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/gridiron-edge/internal/ledger"
	"github.com/yourusername/gridiron-edge/internal/models"
)

// MockPickRepository mocks the pick store
type MockPickRepository struct {
	mock.Mock
}

func (m *MockPickRepository) Create(ctx context.Context, pick *models.Pick) error {
	args := m.Called(ctx, pick)
	return args.Error(0)
}

func (m *MockPickRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Pick, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Pick), args.Error(1)
}

func (m *MockPickRepository) GetAll(ctx context.Context) ([]*models.Pick, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Pick), args.Error(1)
}

func (m *MockPickRepository) GetByWeek(ctx context.Context, week int) ([]*models.Pick, error) {
	args := m.Called(ctx, week)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Pick), args.Error(1)
}

func (m *MockPickRepository) GetPending(ctx context.Context) ([]*models.Pick, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Pick), args.Error(1)
}

func (m *MockPickRepository) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	args := m.Called(ctx, id, fields)
	return args.Error(0)
}

func (m *MockPickRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type fakeNotifier struct {
	picks int
	stats int
}

func (n *fakeNotifier) RefreshPicks() { n.picks++ }
func (n *fakeNotifier) RefreshStats() { n.stats++ }

func stagedBatch(t *testing.T) (*ledger.Store, []ledger.Operation) {
	t.Helper()
	picks := []*models.Pick{
		models.NewPick(models.GameInfo{HomeTeam: "Kansas City Chiefs", AwayTeam: "Buffalo Bills", Week: 1}),
		models.NewPick(models.GameInfo{HomeTeam: "Dallas Cowboys", AwayTeam: "Philadelphia Eagles", Week: 1}),
		models.NewPick(models.GameInfo{HomeTeam: "Green Bay Packers", AwayTeam: "Chicago Bears", Week: 1}),
	}
	store := ledger.NewStore(picks)
	require.NoError(t, store.Update(picks[0].ID, map[string]interface{}{"result": "win"}))
	require.NoError(t, store.Update(picks[1].ID, map[string]interface{}{"result": "loss"}))
	require.NoError(t, store.Update(picks[2].ID, map[string]interface{}{"result": "push"}))
	return store, store.PendingOperations()
}

func TestCommitSuccessEmitsRefreshSignals(t *testing.T) {
	_, ops := stagedBatch(t)

	repo := new(MockPickRepository)
	for _, op := range ops {
		repo.On("UpdateFields", mock.Anything, op.PickID, op.Payload).Return(nil)
	}

	notifier := &fakeNotifier{}
	c := NewCommitter(repo, notifier, nil)
	result := c.Commit(context.Background(), ops, Options{Validate: true})

	assert.True(t, result.Success)
	assert.Len(t, result.Succeeded, 3)
	assert.Empty(t, result.Failed)
	assert.Equal(t, 1, notifier.picks, "refreshPicks fires once per successful commit")
	assert.Equal(t, 1, notifier.stats, "refreshStats fires once per successful commit")
	repo.AssertExpectations(t)
}

func TestValidationFailureAbortsBeforeAnyCall(t *testing.T) {
	picks := []*models.Pick{
		models.NewPick(models.GameInfo{HomeTeam: "Kansas City Chiefs", AwayTeam: "Buffalo Bills", Week: 1}),
	}
	store := ledger.NewStore(picks)
	require.NoError(t, store.Update(picks[0].ID, map[string]interface{}{"result": "win"}))

	// Corrupt the payload after staging to simulate a bad upstream edit.
	ops := store.PendingOperations()
	ops[0].Payload["result"] = "victory"

	repo := new(MockPickRepository)
	notifier := &fakeNotifier{}
	c := NewCommitter(repo, notifier, nil)
	result := c.Commit(context.Background(), ops, Options{Validate: true})

	assert.False(t, result.Success)
	require.Len(t, result.Failed, 1)
	assert.ErrorIs(t, result.Failed[0].Err, models.ErrInvalidResult)
	assert.Zero(t, notifier.picks)
	repo.AssertNotCalled(t, "UpdateFields", mock.Anything, mock.Anything, mock.Anything)
}

func TestValidationRejectsUnknownField(t *testing.T) {
	op := ledger.Operation{
		PickID:  uuid.New(),
		Type:    ledger.OpUpdate,
		Payload: map[string]interface{}{"home_team": "Someone Else"},
	}

	repo := new(MockPickRepository)
	c := NewCommitter(repo, nil, nil)
	result := c.Commit(context.Background(), []ledger.Operation{op}, Options{Validate: true})

	assert.False(t, result.Success)
	require.Len(t, result.Failed, 1)
	assert.ErrorIs(t, result.Failed[0].Err, models.ErrUnknownField)
}

func TestMidBatchFailureRollsBackAppliedPrefix(t *testing.T) {
	store, ops := stagedBatch(t)
	failing := ops[1].PickID

	repo := new(MockPickRepository)
	repo.On("UpdateFields", mock.Anything, ops[0].PickID, ops[0].Payload).Return(nil).Once()
	repo.On("UpdateFields", mock.Anything, failing, ops[1].Payload).Return(errors.New("network down")).Once()
	// Inverse update restores the snapshot value of the edited field.
	repo.On("UpdateFields", mock.Anything, ops[0].PickID, map[string]interface{}{"result": "pending"}).Return(nil).Once()

	c := NewCommitter(repo, nil, nil)
	result := c.Commit(context.Background(), ops, Options{ContinueOnError: false})

	assert.False(t, result.Success)
	assert.True(t, result.RolledBack)
	assert.False(t, result.RequiresReload)
	assert.Empty(t, result.Succeeded)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, failing, result.Failed[0].PickID)

	// The third operation never executes.
	repo.AssertNotCalled(t, "UpdateFields", mock.Anything, ops[2].PickID, ops[2].Payload)
	repo.AssertExpectations(t)

	// The session ledger can now restore the visible view to match.
	store.RollbackAll()
	for _, p := range store.Picks() {
		assert.Equal(t, models.ResultPending, p.Result)
	}
}

func TestContinueOnErrorKeepsSuccesses(t *testing.T) {
	_, ops := stagedBatch(t)
	failing := ops[1].PickID

	repo := new(MockPickRepository)
	repo.On("UpdateFields", mock.Anything, ops[0].PickID, ops[0].Payload).Return(nil).Once()
	repo.On("UpdateFields", mock.Anything, failing, ops[1].Payload).Return(errors.New("network down")).Once()
	repo.On("UpdateFields", mock.Anything, ops[2].PickID, ops[2].Payload).Return(nil).Once()

	notifier := &fakeNotifier{}
	c := NewCommitter(repo, notifier, nil)
	result := c.Commit(context.Background(), ops, Options{ContinueOnError: true})

	assert.False(t, result.Success)
	assert.False(t, result.RolledBack, "continueOnError never rolls back persisted successes")
	assert.Len(t, result.Succeeded, 2)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, failing, result.Failed[0].PickID)
	assert.Equal(t, "1 of 3 operations failed; 2 persisted", result.Summary)
	assert.Zero(t, notifier.picks, "partial batches do not emit refresh signals")
	repo.AssertExpectations(t)
}

func TestDeleteBeforeFailureRequiresReload(t *testing.T) {
	picks := []*models.Pick{
		models.NewPick(models.GameInfo{HomeTeam: "Kansas City Chiefs", AwayTeam: "Buffalo Bills", Week: 1}),
		models.NewPick(models.GameInfo{HomeTeam: "Dallas Cowboys", AwayTeam: "Philadelphia Eagles", Week: 1}),
	}
	store := ledger.NewStore(picks)
	require.NoError(t, store.Delete(picks[0].ID))
	require.NoError(t, store.Update(picks[1].ID, map[string]interface{}{"result": "win"}))
	ops := store.PendingOperations()

	repo := new(MockPickRepository)
	repo.On("Delete", mock.Anything, picks[0].ID).Return(nil).Once()
	repo.On("UpdateFields", mock.Anything, picks[1].ID, ops[1].Payload).Return(errors.New("network down")).Once()

	c := NewCommitter(repo, nil, nil)
	result := c.Commit(context.Background(), ops, Options{ContinueOnError: false})

	assert.False(t, result.Success)
	assert.True(t, result.RolledBack)
	assert.True(t, result.RequiresReload, "a committed delete cannot be restored at this layer")

	var sawUnrecoverable bool
	for _, f := range result.Failed {
		if errors.Is(f.Err, models.ErrUnrecoverableDelete) {
			sawUnrecoverable = true
		}
	}
	assert.True(t, sawUnrecoverable)
	repo.AssertExpectations(t)
}

func TestEmptyBatch(t *testing.T) {
	c := NewCommitter(new(MockPickRepository), nil, nil)
	result := c.Commit(context.Background(), nil, Options{})
	assert.True(t, result.Success)
	assert.Equal(t, "no pending operations", result.Summary)
}
