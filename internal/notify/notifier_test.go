package notify

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/shopfloor/api/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type fakeEnqueuer struct {
	tasks []*asynq.Task
	err   error
}

func (f *fakeEnqueuer) Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.tasks = append(f.tasks, task)
	return &asynq.TaskInfo{Type: task.Type()}, nil
}

func TestNotifierCustomerNotices(t *testing.T) {
	q := &fakeEnqueuer{}
	n := NewNotifier(q)

	job := model.Job{ID: "JOB-1", Customer: "Acme", PartName: "Bracket", NotifyCustomer: true}
	n.JobCreated(job)

	job.Status = model.JobStatusRunning
	n.JobChanged(job, &model.JobLog{Type: model.LogTypeStart})

	job.Status = model.JobStatusCompleted
	job.CompletedQty = 48
	n.JobChanged(job, &model.JobLog{Type: model.LogTypeComplete})

	require.Len(t, q.tasks, 2)
	require.Equal(t, TaskTypeCustomerNotify, q.tasks[0].Type())

	var first, second CustomerNoticePayload
	require.NoError(t, json.Unmarshal(q.tasks[0].Payload(), &first))
	require.NoError(t, json.Unmarshal(q.tasks[1].Payload(), &second))
	require.Equal(t, NoticeProductionStarted, first.Kind)
	require.Equal(t, "Production started for Bracket", first.Message)
	require.Equal(t, NoticeJobCompleted, second.Kind)
	require.Contains(t, second.Message, "48 pcs")
}

func TestNotifierSkipsSilentJobs(t *testing.T) {
	q := &fakeEnqueuer{}
	n := NewNotifier(q)

	job := model.Job{ID: "JOB-1", Status: model.JobStatusCompleted}
	n.JobCreated(job)
	n.JobChanged(job, &model.JobLog{Type: model.LogTypeComplete})
	require.Empty(t, q.tasks)
}

func TestNotifierStockAlert(t *testing.T) {
	q := &fakeEnqueuer{}
	n := NewNotifier(q)

	n.StockAlert(model.Material{
		ID:       "MAT-01",
		Name:     "Steel",
		Stock:    decimal.RequireFromString("4.5"),
		MinLevel: decimal.NewFromInt(20),
		Unit:     "kg",
		Status:   model.MaterialLowStock,
	}, model.MaterialInStock)

	require.Len(t, q.tasks, 1)
	var p StockAlertPayload
	require.NoError(t, json.Unmarshal(q.tasks[0].Payload(), &p))
	require.Equal(t, "MAT-01", p.MaterialID)
	require.Equal(t, "4.5", p.Stock)
	require.Equal(t, model.MaterialInStock, p.Previous)
}

func TestNotifierToleratesEnqueueFailure(t *testing.T) {
	n := NewNotifier(&fakeEnqueuer{err: errors.New("redis down")})
	n.StockAlert(model.Material{ID: "MAT-01", Status: model.MaterialCritical}, model.MaterialLowStock)

	var nilNotifier *Notifier
	nilNotifier.enqueue(asynq.NewTask(TaskTypeStockAlert, nil))
}
