package quality

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"pqms/internal/bootstrap/logging"
	"pqms/internal/errs"
)

const (
	subjectChecklistSaved   = "checklist.saved"
	subjectExecutionSaved   = "execution.saved"
	subjectExecutionDeleted = "execution.deleted"
)

type savedEvent struct {
	ID          uint64    `json:"id"`
	Version     int       `json:"version,omitempty"`
	ChecklistID uint64    `json:"checklist_id,omitempty"`
	At          time.Time `json:"at"`
}

// publish is called after commit. Failures are logged, never returned.
func (s *Service) publish(ctx context.Context, subject string, event savedEvent) {
	if s.events == nil {
		return
	}
	event.At = time.Now().UTC()

	payload, err := json.Marshal(event)
	if err != nil {
		logging.Warn(ctx, "encode event failed", slog.String("subject", subject), slog.Any("err", errs.Loggable(err)))
		return
	}
	if err := s.events.Publish(ctx, subject, payload); err != nil {
		logging.Warn(ctx, "publish event failed", slog.String("subject", subject), slog.Any("err", errs.Loggable(err)))
	}
}
