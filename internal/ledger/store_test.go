package ledger

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/gridiron-edge/internal/models"
)

func seedPicks(n int) []*models.Pick {
	base := time.Date(2025, 10, 1, 12, 0, 0, 0, time.UTC)
	picks := make([]*models.Pick, 0, n)
	for i := 0; i < n; i++ {
		p := models.NewPick(models.GameInfo{
			HomeTeam: "Kansas City Chiefs",
			AwayTeam: "Buffalo Bills",
			Week:     i + 1,
		})
		p.Confidence = 50
		p.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		picks = append(picks, p)
	}
	return picks
}

func TestUpdateThenRollbackRestoresOriginal(t *testing.T) {
	picks := seedPicks(1)
	store := NewStore(picks)
	id := picks[0].ID

	original, ok := store.Get(id)
	require.True(t, ok)
	want := original.Clone()

	require.NoError(t, store.Update(id, map[string]interface{}{
		"result":     "win",
		"confidence": 80.0,
	}))

	edited, _ := store.Get(id)
	assert.Equal(t, models.ResultWin, edited.Result)
	assert.Equal(t, 80.0, edited.Confidence)

	require.NoError(t, store.RollbackOperation(id))
	restored, _ := store.Get(id)
	restored.UpdatedAt = want.UpdatedAt
	assert.Equal(t, want, restored, "rollback must restore the pre-edit pick exactly")
	assert.False(t, store.HasPending())
}

func TestRepeatedEditsCoalesceAndKeepFirstSnapshot(t *testing.T) {
	picks := seedPicks(1)
	store := NewStore(picks)
	id := picks[0].ID

	pristine, _ := store.Get(id)
	want := pristine.Clone()

	require.NoError(t, store.Update(id, map[string]interface{}{"result": "win"}))
	require.NoError(t, store.Update(id, map[string]interface{}{"result": "loss"}))
	require.NoError(t, store.Update(id, map[string]interface{}{"confidence": 90.0}))

	ops := store.PendingOperations()
	require.Len(t, ops, 1, "edits to the same pick coalesce into one pending op")
	assert.Equal(t, OpUpdate, ops[0].Type)
	assert.Equal(t, "loss", ops[0].Payload["result"], "payload carries the latest value")
	assert.Equal(t, 90.0, ops[0].Payload["confidence"], "payload accumulates across edits")

	// Rollback lands on the true original, not an intermediate edit.
	require.NoError(t, store.RollbackOperation(id))
	restored, _ := store.Get(id)
	restored.UpdatedAt = want.UpdatedAt
	assert.Equal(t, want, restored)
}

func TestDeleteHidesFromVisibleView(t *testing.T) {
	picks := seedPicks(3)
	store := NewStore(picks)

	require.NoError(t, store.Delete(picks[1].ID))
	assert.Len(t, store.Picks(), 2)
	_, ok := store.Get(picks[1].ID)
	assert.False(t, ok)

	// Rolling back reinserts the pick at its original slot.
	require.NoError(t, store.RollbackOperation(picks[1].ID))
	visible := store.Picks()
	require.Len(t, visible, 3)
	assert.Equal(t, picks[1].ID, visible[1].ID)
}

func TestUpdateThenDeleteCoalescesIntoDelete(t *testing.T) {
	picks := seedPicks(1)
	store := NewStore(picks)
	id := picks[0].ID

	pristine, _ := store.Get(id)
	want := pristine.Clone()

	require.NoError(t, store.Update(id, map[string]interface{}{"result": "win"}))
	require.NoError(t, store.Delete(id))

	ops := store.PendingOperations()
	require.Len(t, ops, 1)
	assert.Equal(t, OpDelete, ops[0].Type)

	require.NoError(t, store.RollbackOperation(id))
	restored, _ := store.Get(id)
	restored.UpdatedAt = want.UpdatedAt
	assert.Equal(t, want, restored, "snapshot survives the update-then-delete coalesce")
}

func TestRollbackAllRestoresEveryPick(t *testing.T) {
	picks := seedPicks(3)
	store := NewStore(picks)

	before := make(map[uuid.UUID]models.Pick)
	for _, p := range store.Picks() {
		before[p.ID] = *p.Clone()
	}

	require.NoError(t, store.Update(picks[0].ID, map[string]interface{}{"result": "win"}))
	require.NoError(t, store.Update(picks[1].ID, map[string]interface{}{"ats_result": "push"}))
	require.NoError(t, store.Delete(picks[2].ID))

	store.RollbackAll()
	assert.False(t, store.HasPending())

	visible := store.Picks()
	require.Len(t, visible, 3)
	for _, p := range visible {
		want := before[p.ID]
		got := *p
		got.UpdatedAt = want.UpdatedAt
		assert.Equal(t, want, got)
	}
}

func TestUpdateUnknownFieldRejected(t *testing.T) {
	picks := seedPicks(1)
	store := NewStore(picks)

	err := store.Update(picks[0].ID, map[string]interface{}{"home_team": "Someone Else"})
	assert.ErrorIs(t, err, models.ErrUnknownField)
	assert.False(t, store.HasPending(), "rejected edits must not enter the ledger")
}

func TestUpdateMissingPick(t *testing.T) {
	store := NewStore(nil)
	err := store.Update(uuid.New(), map[string]interface{}{"result": "win"})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestClearKeepsVisibleState(t *testing.T) {
	picks := seedPicks(1)
	store := NewStore(picks)
	id := picks[0].ID

	require.NoError(t, store.Update(id, map[string]interface{}{"result": "win"}))
	store.Clear()

	assert.False(t, store.HasPending())
	p, _ := store.Get(id)
	assert.Equal(t, models.ResultWin, p.Result, "commit keeps the applied edit visible")
}
