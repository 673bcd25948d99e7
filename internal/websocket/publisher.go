package websocket

import (
	"fmt"

	"github.com/shopfloor/api/internal/model"
)

// Alert codes pushed to the alerts topic.
const (
	AlertLowStock      = "LOW_STOCK"
	AlertCriticalStock = "CRITICAL_STOCK"
)

// Publisher forwards committed ledger changes to hub subscribers.
type Publisher struct {
	hub *Hub
	// directAlerts broadcasts stock alerts immediately instead of leaving
	// them to the notification worker.
	directAlerts bool
}

// NewPublisher creates a hub publisher
func NewPublisher(hub *Hub, directAlerts bool) *Publisher {
	return &Publisher{hub: hub, directAlerts: directAlerts}
}

func (p *Publisher) JobCreated(model.Job) {}

func (p *Publisher) JobChanged(job model.Job, entry *model.JobLog) {
	p.hub.BroadcastJob(job, entry)
}

func (p *Publisher) MachineChanged(m model.Machine) {
	p.hub.BroadcastMachine(m)
}

func (p *Publisher) MaterialChanged(m model.Material, trx *model.MaterialTransaction) {
	p.hub.BroadcastMaterial(m, trx)
}

func (p *Publisher) StockAlert(m model.Material, previous model.MaterialStatus) {
	if !p.directAlerts {
		return
	}
	code, msg := StockAlertMessage(m)
	p.hub.BroadcastAlert(code, msg, m.ID)
}

// StockAlertMessage formats the alert for a material whose stock worsened.
func StockAlertMessage(m model.Material) (code, message string) {
	if m.Status == model.MaterialCritical {
		return AlertCriticalStock, fmt.Sprintf("%s is out of stock (%s %s)", m.Name, m.Stock, m.Unit)
	}
	return AlertLowStock, fmt.Sprintf("%s is below minimum level (%s of %s %s)", m.Name, m.Stock, m.MinLevel, m.Unit)
}
