// Package committer executes a batch of pending ledger operations against
// the persistent store. Operations run strictly sequentially so that a
// partial failure is always a well-defined prefix, which is what makes
// rollback reproducible.
package committer

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/gridiron-edge/internal/ledger"
	"github.com/yourusername/gridiron-edge/internal/models"
	"github.com/yourusername/gridiron-edge/internal/repository"
)

// Notifier receives the refresh signals emitted after a successful commit
type Notifier interface {
	RefreshPicks()
	RefreshStats()
}

// Options controls batch behavior
type Options struct {
	// ContinueOnError records failures and keeps executing instead of
	// stopping and rolling back the applied prefix.
	ContinueOnError bool
	// Validate runs the pre-validation pass before any store call.
	Validate bool
}

// Failure records one operation that could not be executed
type Failure struct {
	PickID uuid.UUID
	Type   ledger.OpType
	Err    error
}

// Result summarizes a batch commit
type Result struct {
	Success        bool
	Succeeded      []uuid.UUID
	Failed         []Failure
	RolledBack     bool
	RequiresReload bool
	Summary        string
}

// Committer applies pending operations to the pick store
type Committer struct {
	repo     repository.PickRepository
	notifier Notifier
	validate *validator.Validate
	logger   *logrus.Logger
}

// NewCommitter creates a committer. The notifier may be nil when no view
// needs refresh signals.
func NewCommitter(repo repository.PickRepository, notifier Notifier, logger *logrus.Logger) *Committer {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Committer{
		repo:     repo,
		notifier: notifier,
		validate: validator.New(),
		logger:   logger,
	}
}

// Commit executes the batch. With Validate set, the first violation aborts
// the whole batch before any store call; the short-circuit never escapes as
// an error. Execution is sequential; failure handling follows Options. On
// overall success the refresh signals are emitted and the caller should
// clear its ledger.
func (c *Committer) Commit(ctx context.Context, ops []ledger.Operation, opts Options) Result {
	if len(ops) == 0 {
		return Result{Success: true, Summary: "no pending operations"}
	}

	if opts.Validate {
		if failure := c.preValidate(ops); failure != nil {
			c.logger.WithError(failure.Err).WithField("pick_id", failure.PickID).
				Warn("Batch rejected by pre-validation; nothing executed")
			return Result{
				Failed:  []Failure{*failure},
				Summary: fmt.Sprintf("validation failed before execution: %v", failure.Err),
			}
		}
	}

	var (
		result    Result
		succeeded []ledger.Operation
	)

	for _, op := range ops {
		if err := c.execute(ctx, op); err != nil {
			result.Failed = append(result.Failed, Failure{PickID: op.PickID, Type: op.Type, Err: err})
			c.logger.WithError(err).WithFields(logrus.Fields{
				"pick_id": op.PickID,
				"type":    op.Type,
			}).Error("Batch operation failed")

			if opts.ContinueOnError {
				continue
			}

			rollback := c.rollback(ctx, succeeded)
			result.Succeeded = nil
			result.RolledBack = true
			result.RequiresReload = rollback.requiresReload
			result.Failed = append(result.Failed, rollback.failures...)
			result.Summary = fmt.Sprintf(
				"operation on pick %s failed, rolled back %d applied operation(s): %v",
				op.PickID, len(succeeded), err,
			)
			return result
		}
		succeeded = append(succeeded, op)
		result.Succeeded = append(result.Succeeded, op.PickID)
	}

	if len(result.Failed) > 0 {
		result.Summary = fmt.Sprintf("%d of %d operations failed; %d persisted",
			len(result.Failed), len(ops), len(result.Succeeded))
		return result
	}

	result.Success = true
	result.Summary = fmt.Sprintf("%d operation(s) committed", len(result.Succeeded))
	if c.notifier != nil {
		c.notifier.RefreshPicks()
		c.notifier.RefreshStats()
	}
	return result
}

// preValidate checks every update payload against the field whitelist and
// the result enum. The first violation is returned; nothing executes.
func (c *Committer) preValidate(ops []ledger.Operation) *Failure {
	for _, op := range ops {
		if op.Type != ledger.OpUpdate {
			continue
		}
		for name, value := range op.Payload {
			if !models.UpdatableFields[name] {
				return &Failure{
					PickID: op.PickID,
					Type:   op.Type,
					Err:    fmt.Errorf("%w: %s", models.ErrUnknownField, name),
				}
			}
			if models.IsResultField(name) {
				if err := c.validate.Var(fmt.Sprint(value), "oneof=pending win loss push"); err != nil {
					return &Failure{
						PickID: op.PickID,
						Type:   op.Type,
						Err:    fmt.Errorf("%w: field %s value %v", models.ErrInvalidResult, name, value),
					}
				}
			}
		}
	}
	return nil
}

func (c *Committer) execute(ctx context.Context, op ledger.Operation) error {
	switch op.Type {
	case ledger.OpUpdate:
		return c.repo.UpdateFields(ctx, op.PickID, op.Payload)
	case ledger.OpDelete:
		return c.repo.Delete(ctx, op.PickID)
	default:
		return fmt.Errorf("unknown operation type %q", op.Type)
	}
}

type rollbackOutcome struct {
	failures       []Failure
	requiresReload bool
}

// rollback replays inverse updates for the applied prefix in reverse order.
// Only field updates are restorable from snapshots; a committed delete
// cannot be undone here, so the caller must reload authoritative state.
func (c *Committer) rollback(ctx context.Context, applied []ledger.Operation) rollbackOutcome {
	var out rollbackOutcome
	for i := len(applied) - 1; i >= 0; i-- {
		op := applied[i]

		if op.Type == ledger.OpDelete {
			out.requiresReload = true
			out.failures = append(out.failures, Failure{
				PickID: op.PickID,
				Type:   op.Type,
				Err:    models.ErrUnrecoverableDelete,
			})
			c.logger.WithField("pick_id", op.PickID).
				Error("Cannot roll back committed delete; authoritative reload required")
			continue
		}

		inverse := make(map[string]interface{}, len(op.Payload))
		for name := range op.Payload {
			if value, ok := op.Snapshot.FieldValue(name); ok {
				inverse[name] = value
			}
		}
		if len(inverse) == 0 {
			continue
		}
		if err := c.repo.UpdateFields(ctx, op.PickID, inverse); err != nil {
			out.failures = append(out.failures, Failure{
				PickID: op.PickID,
				Type:   op.Type,
				Err:    fmt.Errorf("rollback failed: %w", err),
			})
			c.logger.WithError(err).WithField("pick_id", op.PickID).
				Error("Failed to roll back applied operation")
		}
	}
	return out
}
