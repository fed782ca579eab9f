package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/gridiron-edge/internal/committer"
	"github.com/yourusername/gridiron-edge/internal/edge"
	"github.com/yourusername/gridiron-edge/internal/models"
	"github.com/yourusername/gridiron-edge/internal/oddsfeed"
	"github.com/yourusername/gridiron-edge/internal/outcome"
	"github.com/yourusername/gridiron-edge/internal/simfeed"
)

// fakeRepo is an in-memory PickRepository
type fakeRepo struct {
	mu    sync.Mutex
	picks map[uuid.UUID]*models.Pick
	order []uuid.UUID

	updateErr map[uuid.UUID]error
	deleteErr map[uuid.UUID]error
}

func newFakeRepo(picks ...*models.Pick) *fakeRepo {
	r := &fakeRepo{
		picks:     make(map[uuid.UUID]*models.Pick),
		updateErr: make(map[uuid.UUID]error),
		deleteErr: make(map[uuid.UUID]error),
	}
	for _, p := range picks {
		r.picks[p.ID] = p.Clone()
		r.order = append(r.order, p.ID)
	}
	return r
}

func (r *fakeRepo) Create(ctx context.Context, pick *models.Pick) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.picks[pick.ID] = pick.Clone()
	r.order = append(r.order, pick.ID)
	return nil
}

func (r *fakeRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Pick, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.picks[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return p.Clone(), nil
}

func (r *fakeRepo) GetAll(ctx context.Context) ([]*models.Pick, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Pick, 0, len(r.order))
	for _, id := range r.order {
		if p, ok := r.picks[id]; ok {
			out = append(out, p.Clone())
		}
	}
	return out, nil
}

func (r *fakeRepo) GetByWeek(ctx context.Context, week int) ([]*models.Pick, error) {
	all, _ := r.GetAll(ctx)
	out := all[:0]
	for _, p := range all {
		if p.Game.Week == week {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakeRepo) GetPending(ctx context.Context) ([]*models.Pick, error) {
	all, _ := r.GetAll(ctx)
	out := all[:0]
	for _, p := range all {
		if !p.IsSettled() {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakeRepo) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.updateErr[id]; err != nil {
		return err
	}
	p, ok := r.picks[id]
	if !ok {
		return models.ErrNotFound
	}
	return p.ApplyFields(fields)
}

func (r *fakeRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.deleteErr[id]; err != nil {
		return err
	}
	if _, ok := r.picks[id]; !ok {
		return models.ErrNotFound
	}
	delete(r.picks, id)
	return nil
}

// fakeOdds serves canned week data
type fakeOdds struct {
	week   []oddsfeed.GameUpdate
	scores []oddsfeed.GameUpdate
	err    error
}

func (f *fakeOdds) FetchWeek(ctx context.Context, season, week int) ([]oddsfeed.GameUpdate, error) {
	return f.week, f.err
}

func (f *fakeOdds) FetchScores(ctx context.Context, season, week int) ([]oddsfeed.GameUpdate, error) {
	return f.scores, f.err
}

func (f *fakeOdds) Name() string { return "fake" }

// fakeSims serves one snapshot for every game
type fakeSims struct {
	snapshot *models.SimulationSnapshot
	err      error
}

func (f *fakeSims) GetSnapshot(ctx context.Context, home, away string, week int) (*models.SimulationSnapshot, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.snapshot, nil
}

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

func chiefsBillsPick(week int) *models.Pick {
	pick := models.NewPick(models.GameInfo{
		HomeTeam:      "Kansas City Chiefs",
		AwayTeam:      "Buffalo Bills",
		Week:          week,
		Kickoff:       time.Date(2026, 11, 22, 18, 0, 0, 0, time.UTC),
		HomeMoneyline: -150,
		AwayMoneyline: 130,
		SpreadOdds:    -110,
		OverOdds:      -110,
		UnderOdds:     -110,
		SpreadLine:    floatPtr(-3.0),
		TotalLine:     floatPtr(47.5),
	})
	pick.MoneylinePick = "Chiefs win at home"
	pick.SpreadPick = "Chiefs -3"
	pick.TotalPick = "Under 47.5"
	return pick
}

func finalUpdate(pick *models.Pick, home, away int) oddsfeed.GameUpdate {
	info := pick.Game
	info.HomeScore = intPtr(home)
	info.AwayScore = intPtr(away)
	return oddsfeed.GameUpdate{SourceID: "g1", Final: true, Info: info}
}

func TestResolveWeekSettlesPicks(t *testing.T) {
	pick := chiefsBillsPick(12)
	repo := newFakeRepo(pick)
	feed := &fakeOdds{scores: []oddsfeed.GameUpdate{finalUpdate(pick, 27, 20)}}

	svc := NewResolutionService(repo, feed, outcome.NewResolver(outcome.DefaultPushThreshold, nil), nil, nil)
	summary, err := svc.ResolveWeek(context.Background(), 2026, 12)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Examined)
	assert.Equal(t, 1, summary.Resolved)
	assert.Equal(t, 0, summary.Errors)

	stored, err := repo.GetByID(context.Background(), pick.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ResultWin, stored.Result)
	assert.Equal(t, models.ResultWin, stored.ATSResult) // 27-20 covers -3
	assert.Equal(t, models.ResultWin, stored.OUResult)  // 47 under 47.5
	require.NotNil(t, stored.Game.HomeScore)
	assert.Equal(t, 27, *stored.Game.HomeScore)
}

func TestResolveWeekSkipsUnfinishedGames(t *testing.T) {
	pick := chiefsBillsPick(12)
	repo := newFakeRepo(pick)
	feed := &fakeOdds{scores: nil}

	svc := NewResolutionService(repo, feed, outcome.NewResolver(outcome.DefaultPushThreshold, nil), nil, nil)
	summary, err := svc.ResolveWeek(context.Background(), 2026, 12)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 0, summary.Resolved)

	stored, _ := repo.GetByID(context.Background(), pick.ID)
	assert.Equal(t, models.ResultPending, stored.Result)
}

func TestResolveWeekSkipsSettledPicks(t *testing.T) {
	pick := chiefsBillsPick(12)
	pick.Result = models.ResultWin
	pick.ATSResult = models.ResultLoss
	pick.OUResult = models.ResultPush
	repo := newFakeRepo(pick)
	feed := &fakeOdds{scores: []oddsfeed.GameUpdate{finalUpdate(pick, 27, 20)}}

	svc := NewResolutionService(repo, feed, outcome.NewResolver(outcome.DefaultPushThreshold, nil), nil, nil)
	summary, err := svc.ResolveWeek(context.Background(), 2026, 12)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Skipped)
}

func TestRefreshWeekUpdatesEdges(t *testing.T) {
	pick := chiefsBillsPick(12)
	repo := newFakeRepo(pick)
	odds := &fakeOdds{week: []oddsfeed.GameUpdate{{SourceID: "g1", Info: pick.Game}}}
	sims := &fakeSims{snapshot: &models.SimulationSnapshot{
		HomeWin:       65,
		AwayWin:       35,
		FavoriteCover: 55,
		UnderdogCover: 45,
		Over:          48,
		Under:         52,
	}}

	svc := NewEdgeService(repo, odds, sims, edge.NewEngine(edge.DefaultConfig(), nil), nil)
	summary, err := svc.RefreshWeek(context.Background(), 2026, 12)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Updated)
	assert.Equal(t, 0, summary.Errors)

	stored, _ := repo.GetByID(context.Background(), pick.ID)
	// 65% at -150: raw edge (0.65*1.667-1)*100 = 8.33, shrunk by 0.3 => 2.5
	assert.InDelta(t, 2.5, stored.MoneylineEdge, 0.01)
	assert.NotZero(t, stored.SpreadEdge)
	assert.NotZero(t, stored.TotalEdge)
}

func TestRefreshWeekMissingSnapshotSkips(t *testing.T) {
	pick := chiefsBillsPick(12)
	repo := newFakeRepo(pick)
	odds := &fakeOdds{week: []oddsfeed.GameUpdate{{SourceID: "g1", Info: pick.Game}}}
	sims := &fakeSims{err: simfeedNotFound()}

	svc := NewEdgeService(repo, odds, sims, edge.NewEngine(edge.DefaultConfig(), nil), nil)
	summary, err := svc.RefreshWeek(context.Background(), 2026, 12)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 0, summary.Updated)
}

func TestCleanupServiceRemovesDuplicates(t *testing.T) {
	original := chiefsBillsPick(12)
	duplicate := chiefsBillsPick(12)
	duplicate.CreatedAt = original.CreatedAt.Add(time.Minute)
	duplicate.Game.HomeTeam = "Chiefs" // alias of the same team
	other := chiefsBillsPick(13)

	repo := newFakeRepo(original, duplicate, other)
	svc := NewCleanupService(repo, nil, nil)

	report, err := svc.RemoveDuplicates(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Groups)
	assert.Equal(t, 1, report.Deleted)

	_, err = repo.GetByID(context.Background(), duplicate.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = repo.GetByID(context.Background(), original.ID)
	assert.NoError(t, err)
}

type recordingNotifier struct {
	picks int
	stats int
}

func (n *recordingNotifier) RefreshPicks() { n.picks++ }
func (n *recordingNotifier) RefreshStats() { n.stats++ }

func TestSessionStageAndCommit(t *testing.T) {
	pick := chiefsBillsPick(12)
	repo := newFakeRepo(pick)
	notifier := &recordingNotifier{}
	svc := NewSessionService(repo, committer.NewCommitter(repo, notifier, nil), nil, nil)

	ctx := context.Background()
	require.NoError(t, svc.Begin(ctx))

	require.NoError(t, svc.StageUpdate(pick.ID, map[string]interface{}{"result": "win", "confidence": 80.0}))
	assert.True(t, svc.HasPending())

	// staged view reflects the edit before commit
	staged, err := svc.Get(pick.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ResultWin, staged.Result)

	// store still holds the committed value
	stored, _ := repo.GetByID(ctx, pick.ID)
	assert.Equal(t, models.ResultPending, stored.Result)

	result, err := svc.Commit(ctx, committer.Options{})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.False(t, svc.HasPending())
	assert.Equal(t, 1, notifier.picks)
	assert.Equal(t, 1, notifier.stats)

	stored, _ = repo.GetByID(ctx, pick.ID)
	assert.Equal(t, models.ResultWin, stored.Result)
	assert.InDelta(t, 80.0, stored.Confidence, 1e-9)
}

func TestSessionDiscardRestoresCommittedView(t *testing.T) {
	pick := chiefsBillsPick(12)
	repo := newFakeRepo(pick)
	svc := NewSessionService(repo, committer.NewCommitter(repo, nil, nil), nil, nil)

	ctx := context.Background()
	require.NoError(t, svc.Begin(ctx))
	require.NoError(t, svc.StageDelete(pick.ID))

	_, err := svc.Get(pick.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)

	require.NoError(t, svc.Discard())
	restored, err := svc.Get(pick.ID)
	require.NoError(t, err)
	assert.Equal(t, pick.ID, restored.ID)
}

func TestSessionCommitFailureRollsBackEdits(t *testing.T) {
	pick := chiefsBillsPick(12)
	repo := newFakeRepo(pick)
	repo.updateErr[pick.ID] = fmt.Errorf("connection reset")
	svc := NewSessionService(repo, committer.NewCommitter(repo, nil, nil), nil, nil)

	ctx := context.Background()
	require.NoError(t, svc.Begin(ctx))
	require.NoError(t, svc.StageUpdate(pick.ID, map[string]interface{}{"confidence": 55.0}))

	result, err := svc.Commit(ctx, committer.Options{})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.True(t, result.RolledBack)

	// the store rolled back, so the session view matches it again
	assert.False(t, svc.HasPending())
	staged, err := svc.Get(pick.ID)
	require.NoError(t, err)
	assert.InDelta(t, pick.Confidence, staged.Confidence, 1e-9)
}

func simfeedNotFound() error {
	return fmt.Errorf("wrapped: %w", simfeed.ErrSnapshotNotFound)
}
