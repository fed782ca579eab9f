// Package logger provides audit logging.
package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// AuditLogger provides a dedicated audit trail for pick mutations.
type AuditLogger struct {
	*logrus.Entry
}

// NewAuditLogger creates a new audit logger.
func NewAuditLogger(baseLogger *logrus.Logger) *AuditLogger {
	return &AuditLogger{
		Entry: baseLogger.WithField("component", "audit"),
	}
}

// LogScoreEntry logs final scores being recorded for a pick.
func (al *AuditLogger) LogScoreEntry(pickID string, homeScore, awayScore int, timestamp time.Time) {
	al.WithFields(logrus.Fields{
		"pick_id":    pickID,
		"home_score": homeScore,
		"away_score": awayScore,
		"timestamp":  timestamp.Unix(),
	}).Info("Final scores recorded")
}

// LogResultChange logs a market result transition.
func (al *AuditLogger) LogResultChange(pickID, market, oldResult, newResult string) {
	al.WithFields(logrus.Fields{
		"pick_id":    pickID,
		"market":     market,
		"old_result": oldResult,
		"new_result": newResult,
	}).Info("Market result changed")
}

// LogBatchCommit logs the outcome of a batch commit.
func (al *AuditLogger) LogBatchCommit(succeeded, failed int, rolledBack bool, summary string) {
	al.WithFields(logrus.Fields{
		"succeeded":   succeeded,
		"failed":      failed,
		"rolled_back": rolledBack,
		"summary":     summary,
	}).Info("Batch commit recorded")
}

// LogPickDeletion logs a pick removal, including duplicate cleanup.
func (al *AuditLogger) LogPickDeletion(pickID, reason string) {
	al.WithFields(logrus.Fields{
		"pick_id": pickID,
		"reason":  reason,
	}).Info("Pick deleted")
}
