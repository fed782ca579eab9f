package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/gridiron-edge/internal/committer"
	"github.com/yourusername/gridiron-edge/internal/ledger"
	"github.com/yourusername/gridiron-edge/internal/logger"
	"github.com/yourusername/gridiron-edge/internal/metrics"
	"github.com/yourusername/gridiron-edge/internal/models"
	"github.com/yourusername/gridiron-edge/internal/repository"
)

// SessionService owns an editing session: a working copy of the picks with
// pending edits and deletes that only reach the store on Commit. Reads during
// a session see staged state; other sessions see committed state only.
type SessionService struct {
	repo      repository.PickRepository
	committer *committer.Committer
	audit     *logger.AuditLogger
	logger    *logrus.Logger

	mu    sync.Mutex
	store *ledger.Store
}

// NewSessionService creates a session service
func NewSessionService(repo repository.PickRepository, cmt *committer.Committer, audit *logger.AuditLogger, log *logrus.Logger) *SessionService {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &SessionService{
		repo:      repo,
		committer: cmt,
		audit:     audit,
		logger:    log,
	}
}

// Begin loads committed picks into a fresh working copy, discarding any
// previous session state
func (s *SessionService) Begin(ctx context.Context) error {
	picks, err := s.repo.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load picks: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.store = ledger.NewStore(picks)
	metrics.PendingOperations.Set(0)
	metrics.PendingPicks.Set(float64(countPending(picks)))
	return nil
}

// Picks returns the staged view of all picks
func (s *SessionService) Picks() ([]*models.Pick, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store == nil {
		return nil, fmt.Errorf("no active session")
	}
	return s.store.Picks(), nil
}

// Get returns the staged view of one pick
func (s *SessionService) Get(id uuid.UUID) (*models.Pick, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store == nil {
		return nil, fmt.Errorf("no active session")
	}
	pick, ok := s.store.Get(id)
	if !ok {
		return nil, models.ErrNotFound
	}
	return pick, nil
}

// StageUpdate stages field edits for a pick
func (s *SessionService) StageUpdate(id uuid.UUID, fields map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store == nil {
		return fmt.Errorf("no active session")
	}
	if err := s.store.Update(id, fields); err != nil {
		return err
	}
	metrics.PendingOperations.Set(float64(len(s.store.PendingOperations())))
	return nil
}

// StageDelete stages the removal of a pick
func (s *SessionService) StageDelete(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store == nil {
		return fmt.Errorf("no active session")
	}
	if err := s.store.Delete(id); err != nil {
		return err
	}
	metrics.PendingOperations.Set(float64(len(s.store.PendingOperations())))
	return nil
}

// Undo reverts the pending operation for one pick
func (s *SessionService) Undo(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store == nil {
		return fmt.Errorf("no active session")
	}
	if err := s.store.RollbackOperation(id); err != nil {
		return err
	}
	metrics.PendingOperations.Set(float64(len(s.store.PendingOperations())))
	return nil
}

// Discard reverts every pending operation, restoring the committed view
func (s *SessionService) Discard() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store == nil {
		return fmt.Errorf("no active session")
	}
	s.store.RollbackAll()
	metrics.PendingOperations.Set(0)
	return nil
}

// HasPending reports whether the session holds uncommitted edits
func (s *SessionService) HasPending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store != nil && s.store.HasPending()
}

// Commit applies all pending operations to the store. On full success the
// session is cleared. On a rolled-back failure the staged edits are rolled
// back as well, mirroring the store. When the committer reports an
// unrecoverable state the session is reloaded from the store so staged state
// never diverges from what actually persisted.
func (s *SessionService) Commit(ctx context.Context, opts committer.Options) (committer.Result, error) {
	s.mu.Lock()
	if s.store == nil {
		s.mu.Unlock()
		return committer.Result{}, fmt.Errorf("no active session")
	}
	ops := s.store.PendingOperations()
	s.mu.Unlock()

	result := s.committer.Commit(ctx, ops, opts)

	if s.audit != nil {
		s.audit.LogBatchCommit(len(result.Succeeded), len(result.Failed), result.RolledBack, result.Summary)
	}
	metrics.RecordBatchCommit(commitOutcome(result))
	if result.RolledBack {
		metrics.BatchRollbacksTotal.Inc()
	}

	switch {
	case result.Success:
		s.mu.Lock()
		s.store.Clear()
		s.mu.Unlock()
		metrics.PendingOperations.Set(0)
	case result.RequiresReload:
		if err := s.Begin(ctx); err != nil {
			s.logger.WithError(err).Error("Failed to reload session after partial commit")
			return result, err
		}
	case result.RolledBack:
		// The store was restored, so the staged edits are discarded too
		// and the session returns to the committed view
		s.mu.Lock()
		s.store.RollbackAll()
		s.mu.Unlock()
		metrics.PendingOperations.Set(0)
		s.logger.WithField("summary", result.Summary).Warn("Commit failed and rolled back, session edits discarded")
	default:
		// Partial commit or validation rejection: persisted ops already
		// match their staged values, failed edits stay staged for retry
		s.logger.WithField("summary", result.Summary).Warn("Commit incomplete, failed edits retained")
	}

	return result, nil
}

func commitOutcome(result committer.Result) string {
	switch {
	case result.Success:
		return "success"
	case result.RequiresReload:
		return "partial"
	case result.RolledBack:
		return "rolled_back"
	default:
		return "failed"
	}
}

func countPending(picks []*models.Pick) int {
	n := 0
	for _, p := range picks {
		if !p.IsSettled() {
			n++
		}
	}
	return n
}
