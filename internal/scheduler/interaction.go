package scheduler

import (
	"context"
	"fmt"

	"github.com/julianstephens/hourlog/internal/constants"
)

// OpenFunc opens the log entry surface.
type OpenFunc func(ctx context.Context) error

// Handler maps notification interactions to actions. It keeps no state.
type Handler struct {
	scheduler *Scheduler
	open      OpenFunc
}

func NewHandler(s *Scheduler, open OpenFunc) *Handler {
	return &Handler{scheduler: s, open: open}
}

// OnClicked handles a click on the notification body.
func (h *Handler) OnClicked(ctx context.Context, notificationID string) error {
	return h.openLogger(ctx)
}

// OnButtonClicked handles an action button: 0 logs now, 1 snoozes.
func (h *Handler) OnButtonClicked(ctx context.Context, notificationID string, index int) error {
	switch index {
	case constants.ButtonIndexLogNow:
		return h.openLogger(ctx)
	case constants.ButtonIndexSnooze:
		return h.scheduler.OnSnoozeRequested(ctx, notificationID)
	default:
		return fmt.Errorf("unknown notification button %d", index)
	}
}

func (h *Handler) openLogger(ctx context.Context) error {
	if h.open == nil {
		return nil
	}
	return h.open(ctx)
}
