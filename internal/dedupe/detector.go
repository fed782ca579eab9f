// Package dedupe detects and cleans up picks that refer to the same game.
// Game identity is the canonicalized team pair plus week; kickoff time is
// deliberately excluded from the key so rescheduled games still collide.
package dedupe

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/gridiron-edge/internal/models"
	"github.com/yourusername/gridiron-edge/internal/teams"
)

// GameKey returns the canonical identity of a game. Alias normalization
// makes "Browns" and "Cleveland Browns" produce the same key.
func GameKey(home, away string, week int) string {
	return fmt.Sprintf("%s-%s-%d", teams.CanonicalSlug(home), teams.CanonicalSlug(away), week)
}

// Group is one cluster of picks sharing a game identity. Original is the
// earliest-created member; Duplicates holds the rest in creation order.
type Group struct {
	Key        string
	Original   *models.Pick
	Duplicates []*models.Pick
}

// FindGroups buckets picks by game identity and returns every bucket with
// more than one member. Picks are ordered by CreatedAt ascending before
// bucketing so the earliest member is always the original.
func FindGroups(picks []*models.Pick) []Group {
	ordered := make([]*models.Pick, len(picks))
	copy(ordered, picks)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
	})

	buckets := make(map[string][]*models.Pick)
	var keys []string
	for _, p := range ordered {
		key := GameKey(p.Game.HomeTeam, p.Game.AwayTeam, p.Game.Week)
		if _, seen := buckets[key]; !seen {
			keys = append(keys, key)
		}
		buckets[key] = append(buckets[key], p)
	}

	var groups []Group
	for _, key := range keys {
		members := buckets[key]
		if len(members) < 2 {
			continue
		}
		groups = append(groups, Group{
			Key:        key,
			Original:   members[0],
			Duplicates: members[1:],
		})
	}
	return groups
}

// IsDuplicate reports whether the pick is a non-original member of a
// duplicate group within the given set.
func IsDuplicate(picks []*models.Pick, pick *models.Pick) bool {
	for _, g := range FindGroups(picks) {
		for _, d := range g.Duplicates {
			if d.ID == pick.ID {
				return true
			}
		}
	}
	return false
}

// FindOriginal returns the canonical member of the pick's duplicate group,
// or nil when the pick is not part of one.
func FindOriginal(picks []*models.Pick, pick *models.Pick) *models.Pick {
	key := GameKey(pick.Game.HomeTeam, pick.Game.AwayTeam, pick.Game.Week)
	for _, g := range FindGroups(picks) {
		if g.Key == key {
			return g.Original
		}
	}
	return nil
}

// Deleter is the store operation Cleanup needs
type Deleter interface {
	Delete(ctx context.Context, id uuid.UUID) error
}

// Failure records one pick that could not be deleted during cleanup
type Failure struct {
	ID  uuid.UUID
	Err error
}

// CleanupReport summarizes a best-effort cleanup run
type CleanupReport struct {
	Groups   int
	Deleted  int
	Failures []Failure
}

// Summary renders the report as a one-line status string
func (r CleanupReport) Summary() string {
	return fmt.Sprintf("%d duplicate groups, %d deleted, %d failed", r.Groups, r.Deleted, len(r.Failures))
}

// Detector groups duplicate picks and drives their cleanup
type Detector struct {
	store  Deleter
	logger *logrus.Logger
}

// NewDetector creates a detector backed by the given store
func NewDetector(store Deleter, logger *logrus.Logger) *Detector {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Detector{store: store, logger: logger}
}

// Cleanup deletes every non-original member of every duplicate group.
// Deletions are best-effort: a failure is recorded and the run continues.
func (d *Detector) Cleanup(ctx context.Context, picks []*models.Pick) CleanupReport {
	groups := FindGroups(picks)
	report := CleanupReport{Groups: len(groups)}

	for _, g := range groups {
		for _, dup := range g.Duplicates {
			if err := d.store.Delete(ctx, dup.ID); err != nil {
				report.Failures = append(report.Failures, Failure{ID: dup.ID, Err: err})
				d.logger.WithError(err).WithFields(logrus.Fields{
					"pick_id": dup.ID,
					"key":     g.Key,
				}).Warn("Failed to delete duplicate pick")
				continue
			}
			report.Deleted++
		}
	}

	if report.Groups > 0 {
		d.logger.WithFields(logrus.Fields{
			"groups":  report.Groups,
			"deleted": report.Deleted,
			"failed":  len(report.Failures),
		}).Info("Duplicate cleanup completed")
	}
	return report
}
