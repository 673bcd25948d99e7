package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/hibiken/asynq"
	"github.com/shopfloor/api/internal/model"
	"github.com/shopfloor/api/internal/notify"
	"github.com/shopfloor/api/internal/service"
	"github.com/shopfloor/api/internal/websocket"
)

// AlertCustomerNotified is pushed to the alerts topic once a notice is sent.
const AlertCustomerNotified = "CUSTOMER_NOTIFIED"

// NotifyWorker delivers customer notices and records them on the job
type NotifyWorker struct {
	jobService *service.JobService
	hub        *websocket.Hub
}

// NewNotifyWorker creates a new notification worker
func NewNotifyWorker(jobService *service.JobService, hub *websocket.Hub) *NotifyWorker {
	return &NotifyWorker{
		jobService: jobService,
		hub:        hub,
	}
}

// ProcessTask handles customer notification tasks
func (w *NotifyWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var p notify.CustomerNoticePayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("failed to unmarshal notice payload: %w", asynq.SkipRetry)
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	recipient := p.Customer
	if p.Contact != "" {
		recipient = fmt.Sprintf("%s (%s)", p.Contact, p.Customer)
	}
	log.Printf("Notifying %s about job %s: %s", recipient, p.JobID, p.Message)

	_, err := w.jobService.AppendLog(ctx, p.JobID, model.LogTypeInfo, "Customer notified: "+p.Message)
	if errors.Is(err, service.ErrNotFound) {
		return fmt.Errorf("job %s: %w", p.JobID, asynq.SkipRetry)
	}
	if err != nil {
		return err
	}

	w.hub.BroadcastAlert(AlertCustomerNotified, p.Message, p.JobID)
	return nil
}
