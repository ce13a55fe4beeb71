package service

import (
	"context"

	"user_service/internal/logger"
	"user_service/internal/models"
	"user_service/internal/repository"
)

// auditor appends lifecycle events. A failed append is logged and otherwise ignored,
// so auditing never changes the outcome of the operation being recorded.
type auditor struct {
	events repository.EventRepo
	log    *logger.Logger
}

func (a auditor) record(ctx context.Context, typ string, userID *int, description string, meta map[string]any) {
	if a.events == nil {
		return
	}
	e := models.UserEvent{Type: typ, UserID: userID, Description: description}
	if len(meta) > 0 {
		e.Metadata = meta
	}
	if err := a.events.Append(ctx, e); err != nil && a.log != nil {
		a.log.Warnw("audit_append_failed", "type", typ, "err", err)
	}
}

func intPtr(v int) *int { return &v }
