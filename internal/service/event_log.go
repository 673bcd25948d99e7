package service

import (
	"context"
	"strings"
	"time"

	"github.com/shopfloor/api/internal/ledger"
	"github.com/shopfloor/api/internal/model"
)

// newLogEntry builds an audit entry attributed to the actor.
func newLogEntry(now time.Time, typ model.LogType, message string, actor Actor) model.JobLog {
	return model.JobLog{
		ID:        newID("LOG"),
		Timestamp: now,
		Type:      typ,
		Message:   message,
		User:      actor.Name,
	}
}

// appendLocked appends an entry to a job held by tx.
func appendLocked(tx *ledger.JobTx, entry model.JobLog) {
	tx.Job.Logs = append(tx.Job.Logs, entry)
	tx.Job.UpdatedAt = entry.Timestamp
}

// AppendLog adds a free-form entry to a job's history.
func (s *JobService) AppendLog(ctx context.Context, jobID string, typ model.LogType, message string) (model.JobLog, error) {
	start := time.Now()

	entry, err := s.appendLog(ctx, jobID, typ, message)
	s.observe(ctx, "append_log", err, start)
	return entry, err
}

func (s *JobService) appendLog(ctx context.Context, jobID string, typ model.LogType, message string) (model.JobLog, error) {
	const op = "AppendLog"
	if typ == "" {
		typ = model.LogTypeInfo
	}
	if !typ.Valid() {
		return model.JobLog{}, invalidArgument(op, "unknown log type %q", typ)
	}
	if strings.TrimSpace(message) == "" {
		return model.JobLog{}, invalidArgument(op, "message is required")
	}

	actor := ActorFrom(ctx)
	var entry model.JobLog
	job, err := s.store.WithJob(jobID, func(tx *ledger.JobTx) error {
		entry = newLogEntry(s.now(), typ, message, actor)
		appendLocked(tx, entry)
		return nil
	})
	if err != nil {
		return model.JobLog{}, fromLedger(op, err)
	}
	s.publishers.JobChanged(job, &entry)
	return entry, nil
}
