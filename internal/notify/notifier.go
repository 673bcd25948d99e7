package notify

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/hibiken/asynq"
	"github.com/shopfloor/api/internal/model"
)

const (
	TaskTypeStockAlert     = "material:stock_alert"
	TaskTypeCustomerNotify = "job:customer_notify"

	QueueAlerts        = "alerts"
	QueueNotifications = "notifications"
)

// Customer notice kinds.
const (
	NoticeProductionStarted = "PRODUCTION_STARTED"
	NoticeJobCompleted      = "JOB_COMPLETED"
)

// StockAlertPayload is the task payload for a worsened stock status.
type StockAlertPayload struct {
	MaterialID string               `json:"materialId"`
	Name       string               `json:"name"`
	Stock      string               `json:"stock"`
	MinLevel   string               `json:"minLevel"`
	Unit       string               `json:"unit"`
	Status     model.MaterialStatus `json:"status"`
	Previous   model.MaterialStatus `json:"previous"`
}

// CustomerNoticePayload is the task payload for a customer notification.
type CustomerNoticePayload struct {
	JobID    string `json:"jobId"`
	Customer string `json:"customer"`
	Contact  string `json:"contact,omitempty"`
	Kind     string `json:"kind"`
	Message  string `json:"message"`
}

// Enqueuer is the part of *asynq.Client the notifier needs.
type Enqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Notifier turns ledger events into background tasks. It ignores events
// that need no follow-up.
type Notifier struct {
	client Enqueuer
}

// NewNotifier creates a notifier backed by client
func NewNotifier(client Enqueuer) *Notifier {
	return &Notifier{client: client}
}

// NewStockAlertTask builds a stock alert task for m.
func NewStockAlertTask(m model.Material, previous model.MaterialStatus) (*asynq.Task, error) {
	data, err := json.Marshal(StockAlertPayload{
		MaterialID: m.ID,
		Name:       m.Name,
		Stock:      m.Stock.String(),
		MinLevel:   m.MinLevel.String(),
		Unit:       m.Unit,
		Status:     m.Status,
		Previous:   previous,
	})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeStockAlert, data), nil
}

// NewCustomerNoticeTask builds a customer notification task for job.
func NewCustomerNoticeTask(job model.Job, kind string) (*asynq.Task, error) {
	var msg string
	switch kind {
	case NoticeProductionStarted:
		msg = fmt.Sprintf("Production started for %s", job.PartName)
	case NoticeJobCompleted:
		msg = fmt.Sprintf("%s completed: %d pcs passed quality control", job.PartName, job.CompletedQty)
	default:
		return nil, fmt.Errorf("unknown notice kind %q", kind)
	}
	data, err := json.Marshal(CustomerNoticePayload{
		JobID:    job.ID,
		Customer: job.Customer,
		Contact:  job.ContactPerson,
		Kind:     kind,
		Message:  msg,
	})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeCustomerNotify, data), nil
}

func (n *Notifier) JobCreated(job model.Job) {
	if !job.NotifyCustomer {
		return
	}
	n.enqueueNotice(job, NoticeProductionStarted)
}

func (n *Notifier) JobChanged(job model.Job, entry *model.JobLog) {
	if !job.NotifyCustomer || job.Status != model.JobStatusCompleted {
		return
	}
	if entry == nil || entry.Type != model.LogTypeComplete {
		return
	}
	n.enqueueNotice(job, NoticeJobCompleted)
}

func (n *Notifier) MachineChanged(model.Machine) {}

func (n *Notifier) MaterialChanged(model.Material, *model.MaterialTransaction) {}

func (n *Notifier) StockAlert(m model.Material, previous model.MaterialStatus) {
	task, err := NewStockAlertTask(m, previous)
	if err != nil {
		log.Printf("Warning: failed to build stock alert for %s: %v", m.ID, err)
		return
	}
	n.enqueue(task, asynq.Queue(QueueAlerts), asynq.MaxRetry(3), asynq.Retention(24*time.Hour))
}

func (n *Notifier) enqueueNotice(job model.Job, kind string) {
	task, err := NewCustomerNoticeTask(job, kind)
	if err != nil {
		log.Printf("Warning: failed to build customer notice for %s: %v", job.ID, err)
		return
	}
	n.enqueue(task, asynq.Queue(QueueNotifications), asynq.MaxRetry(5), asynq.Retention(24*time.Hour))
}

func (n *Notifier) enqueue(task *asynq.Task, opts ...asynq.Option) {
	if n == nil || n.client == nil {
		return
	}
	if _, err := n.client.Enqueue(task, opts...); err != nil {
		log.Printf("Warning: failed to enqueue %s: %v", task.Type(), err)
	}
}
