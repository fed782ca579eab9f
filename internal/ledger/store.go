// Package ledger holds the session-local view of the pick set plus the
// ordered log of pending edits. The store is owned by one session and passed
// by reference; it is never a package-level singleton, so independent
// sessions (and tests) stay isolated.
package ledger

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/gridiron-edge/internal/models"
)

// OpType distinguishes pending operations
type OpType string

const (
	OpUpdate OpType = "update"
	OpDelete OpType = "delete"
)

// Operation is one pending edit awaiting commit. Snapshot is the pristine
// pick captured the FIRST time this id was touched, so repeated edits still
// roll back to the true original rather than an intermediate state.
type Operation struct {
	PickID    uuid.UUID
	Type      OpType
	Payload   map[string]interface{}
	Snapshot  *models.Pick
	Timestamp time.Time

	// position preserves the pick's slot in the visible ordering so a
	// rolled-back delete reappears where it was.
	position int
}

// Store is the in-memory ledger of a single editing session
type Store struct {
	visible map[uuid.UUID]*models.Pick
	order   []uuid.UUID
	ops     []Operation
}

// NewStore creates a session store seeded with the authoritative pick set.
// The picks are cloned so later rollbacks compare against untouched data.
func NewStore(picks []*models.Pick) *Store {
	s := &Store{visible: make(map[uuid.UUID]*models.Pick, len(picks))}
	for _, p := range picks {
		s.visible[p.ID] = p.Clone()
		s.order = append(s.order, p.ID)
	}
	return s
}

// Picks returns the currently visible dataset in display order, with all
// pending edits applied.
func (s *Store) Picks() []*models.Pick {
	out := make([]*models.Pick, 0, len(s.order))
	for _, id := range s.order {
		if p, ok := s.visible[id]; ok {
			out = append(out, p)
		}
	}
	return out
}

// Get returns the visible pick for an id
func (s *Store) Get(id uuid.UUID) (*models.Pick, bool) {
	p, ok := s.visible[id]
	return p, ok
}

// Update applies a field payload to the visible pick immediately and records
// a pending update operation. Repeated edits to the same pick coalesce into
// one pending op carrying the merged payload and the first snapshot.
func (s *Store) Update(id uuid.UUID, fields map[string]interface{}) error {
	pick, ok := s.visible[id]
	if !ok {
		return fmt.Errorf("update %s: %w", id, models.ErrNotFound)
	}

	if idx := s.findOp(id); idx >= 0 {
		// Coalesce into the existing pending op: merge the payload and
		// refresh the timestamp, but keep the first pristine snapshot.
		if err := pick.ApplyFields(fields); err != nil {
			return fmt.Errorf("update %s: %w", id, err)
		}
		merged := s.ops[idx].Payload
		if merged == nil {
			merged = make(map[string]interface{}, len(fields))
		}
		for k, v := range fields {
			merged[k] = v
		}
		s.ops[idx].Type = OpUpdate
		s.ops[idx].Payload = merged
		s.ops[idx].Timestamp = time.Now().UTC()
		return nil
	}

	snapshot := pick.Clone()
	if err := pick.ApplyFields(fields); err != nil {
		return fmt.Errorf("update %s: %w", id, err)
	}
	s.ops = append(s.ops, Operation{
		PickID:    id,
		Type:      OpUpdate,
		Payload:   copyPayload(fields),
		Snapshot:  snapshot,
		Timestamp: time.Now().UTC(),
		position:  s.indexOf(id),
	})
	return nil
}

// Delete removes the pick from the visible view immediately and records a
// pending delete. A pending update for the same pick coalesces into the
// delete while keeping the original snapshot.
func (s *Store) Delete(id uuid.UUID) error {
	pick, ok := s.visible[id]
	if !ok {
		return fmt.Errorf("delete %s: %w", id, models.ErrNotFound)
	}

	position := s.indexOf(id)
	snapshot := pick.Clone()
	if idx := s.findOp(id); idx >= 0 {
		snapshot = s.ops[idx].Snapshot
		position = s.ops[idx].position
		s.removeOp(idx)
	}

	delete(s.visible, id)
	s.removeFromOrder(id)
	s.ops = append(s.ops, Operation{
		PickID:    id,
		Type:      OpDelete,
		Snapshot:  snapshot,
		Timestamp: time.Now().UTC(),
		position:  position,
	})
	return nil
}

// RollbackOperation restores the first pristine snapshot for the pick and
// drops its pending operation.
func (s *Store) RollbackOperation(id uuid.UUID) error {
	idx := s.findOp(id)
	if idx < 0 {
		return fmt.Errorf("rollback %s: no pending operation", id)
	}
	s.restore(s.ops[idx])
	s.removeOp(idx)
	return nil
}

// RollbackAll restores every pending operation in reverse-chronological
// order, leaving the visible state equal to the last known-good snapshot.
func (s *Store) RollbackAll() {
	for i := len(s.ops) - 1; i >= 0; i-- {
		s.restore(s.ops[i])
	}
	s.ops = nil
}

// PendingOperations returns a copy of the ledger in append order
func (s *Store) PendingOperations() []Operation {
	out := make([]Operation, len(s.ops))
	copy(out, s.ops)
	return out
}

// HasPending reports whether any edits await commit
func (s *Store) HasPending() bool {
	return len(s.ops) > 0
}

// Clear drops the ledger after a successful commit. The visible state is
// kept: it already reflects what was persisted.
func (s *Store) Clear() {
	s.ops = nil
}

func (s *Store) restore(op Operation) {
	restored := op.Snapshot.Clone()
	if _, present := s.visible[op.PickID]; !present {
		pos := op.position
		if pos < 0 || pos > len(s.order) {
			pos = len(s.order)
		}
		s.order = append(s.order[:pos], append([]uuid.UUID{op.PickID}, s.order[pos:]...)...)
	}
	s.visible[op.PickID] = restored
}

func (s *Store) findOp(id uuid.UUID) int {
	for i, op := range s.ops {
		if op.PickID == id {
			return i
		}
	}
	return -1
}

func (s *Store) removeOp(idx int) {
	s.ops = append(s.ops[:idx], s.ops[idx+1:]...)
}

func (s *Store) indexOf(id uuid.UUID) int {
	for i, oid := range s.order {
		if oid == id {
			return i
		}
	}
	return -1
}

func (s *Store) removeFromOrder(id uuid.UUID) {
	if idx := s.indexOf(id); idx >= 0 {
		s.order = append(s.order[:idx], s.order[idx+1:]...)
	}
}

func copyPayload(fields map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return out
}
