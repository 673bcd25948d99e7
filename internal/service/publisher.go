package service

import (
	"context"
	"time"

	"github.com/shopfloor/api/internal/model"
)

// Publisher receives committed state changes. Publishers are called after
// all ledger locks are released and must not call back into the core
// synchronously.
type Publisher interface {
	JobCreated(job model.Job)
	JobChanged(job model.Job, log *model.JobLog)
	MachineChanged(machine model.Machine)
	MaterialChanged(material model.Material, trx *model.MaterialTransaction)
	StockAlert(material model.Material, previous model.MaterialStatus)
}

// MetricsRecorder receives operation timings and domain counters.
type MetricsRecorder interface {
	Observe(ctx context.Context, operation string, success bool, duration time.Duration)
	JobTransitioned(from, to model.JobStatus)
	StockMoved(direction model.Direction, status model.MaterialStatus)
	MachineSyncFailed()
}

// Publishers fans every event out to each publisher in order.
type Publishers []Publisher

func (p Publishers) JobCreated(job model.Job) {
	for _, pub := range p {
		pub.JobCreated(job)
	}
}

func (p Publishers) JobChanged(job model.Job, log *model.JobLog) {
	for _, pub := range p {
		pub.JobChanged(job, log)
	}
}

func (p Publishers) MachineChanged(machine model.Machine) {
	for _, pub := range p {
		pub.MachineChanged(machine)
	}
}

func (p Publishers) MaterialChanged(material model.Material, trx *model.MaterialTransaction) {
	for _, pub := range p {
		pub.MaterialChanged(material, trx)
	}
}

func (p Publishers) StockAlert(material model.Material, previous model.MaterialStatus) {
	for _, pub := range p {
		pub.StockAlert(material, previous)
	}
}

type nopMetrics struct{}

func (nopMetrics) Observe(context.Context, string, bool, time.Duration) {}
func (nopMetrics) JobTransitioned(model.JobStatus, model.JobStatus)     {}
func (nopMetrics) StockMoved(model.Direction, model.MaterialStatus)     {}
func (nopMetrics) MachineSyncFailed()                                   {}
