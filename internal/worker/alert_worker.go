package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/hibiken/asynq"
	"github.com/shopfloor/api/internal/model"
	"github.com/shopfloor/api/internal/notify"
	"github.com/shopfloor/api/internal/websocket"
	"github.com/shopspring/decimal"
)

// AlertWorker pushes stock alerts to live dashboards
type AlertWorker struct {
	hub *websocket.Hub
}

// NewAlertWorker creates a new alert worker
func NewAlertWorker(hub *websocket.Hub) *AlertWorker {
	return &AlertWorker{hub: hub}
}

// ProcessTask handles stock alert tasks
func (w *AlertWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var p notify.StockAlertPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("failed to unmarshal stock alert payload: %w", asynq.SkipRetry)
	}
	stock, err := decimal.NewFromString(p.Stock)
	if err != nil {
		return fmt.Errorf("invalid stock %q: %w", p.Stock, asynq.SkipRetry)
	}
	minLevel, err := decimal.NewFromString(p.MinLevel)
	if err != nil {
		return fmt.Errorf("invalid min level %q: %w", p.MinLevel, asynq.SkipRetry)
	}

	m := model.Material{
		ID:       p.MaterialID,
		Name:     p.Name,
		Stock:    stock,
		MinLevel: minLevel,
		Unit:     p.Unit,
		Status:   p.Status,
	}
	code, msg := websocket.StockAlertMessage(m)
	log.Printf("Stock alert %s: %s", code, msg)
	w.hub.BroadcastAlert(code, msg, m.ID)
	return nil
}
