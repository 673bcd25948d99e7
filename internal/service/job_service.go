package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/shopfloor/api/internal/ledger"
	"github.com/shopfloor/api/internal/model"
)

// JobService plans jobs and drives them through their lifecycle.
type JobService struct {
	core
}

// NewJobService creates a new job service
func NewJobService(store *ledger.Store, opts ...Option) *JobService {
	return &JobService{core: newCore(store, opts)}
}

// JobSpec is the planner's input for a new job.
type JobSpec struct {
	CustomerType        model.CustomerType
	Customer            string
	ContractID          string
	ContactPerson       string
	PartName            string
	DrawingNo           string
	Revision            string
	Qty                 int
	Priority            model.Priority
	DueDate             time.Time
	MaterialID          string
	MachineID           string
	OperatorID          string
	SpecialInstructions string
	NotifyCustomer      bool
	Operations          []model.Operation
}

// JobFilter narrows ListJobs. Empty fields match everything.
type JobFilter struct {
	Status     model.JobStatus
	OperatorID string
	MachineID  string
}

func (f JobFilter) match(j model.Job) bool {
	if f.Status != "" && j.Status != f.Status {
		return false
	}
	if f.OperatorID != "" && j.AssignedOperatorID != f.OperatorID {
		return false
	}
	if f.MachineID != "" && j.CurrentMachineID != f.MachineID {
		return false
	}
	return true
}

// Reassignment names the new machine and/or operator of a transferred
// job. Empty fields keep the current value.
type Reassignment struct {
	MachineID  string
	OperatorID string
}

const maxIDAttempts = 3

// CreateJob validates spec and stores a new PENDING job.
func (s *JobService) CreateJob(ctx context.Context, spec JobSpec) (model.Job, error) {
	start := time.Now()
	job, err := s.createJob(ctx, spec)
	s.observe(ctx, "create_job", err, start)
	return job, err
}

func (s *JobService) createJob(ctx context.Context, spec JobSpec) (model.Job, error) {
	const op = "CreateJob"
	if err := s.validateSpec(op, spec); err != nil {
		return model.Job{}, err
	}

	now := s.now()
	ops := make([]model.Operation, len(spec.Operations))
	copy(ops, spec.Operations)
	model.SortOperations(ops)
	for i := range ops {
		if ops[i].ID == "" {
			ops[i].ID = newID("OP")
		}
		if ops[i].Status == "" {
			ops[i].Status = model.OperationPending
		}
	}

	job := model.Job{
		CustomerType:        spec.CustomerType,
		Customer:            spec.Customer,
		ContractID:          spec.ContractID,
		ContactPerson:       spec.ContactPerson,
		PartName:            spec.PartName,
		DrawingNo:           spec.DrawingNo,
		Revision:            spec.Revision,
		Qty:                 spec.Qty,
		Status:              model.JobStatusPending,
		CurrentMachineID:    spec.MachineID,
		AssignedOperatorID:  spec.OperatorID,
		Priority:            spec.Priority,
		DueDate:             spec.DueDate,
		MaterialID:          spec.MaterialID,
		SpecialInstructions: spec.SpecialInstructions,
		NotifyCustomer:      spec.NotifyCustomer,
		TotalCycleTime:      model.CycleTime(ops),
		Operations:          ops,
		Logs:                []model.JobLog{newLogEntry(now, model.LogTypeInfo, "Job created", ActorFrom(ctx))},
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	var err error
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		job.ID = newID("JOB")
		if err = s.store.InsertJob(job); !errors.Is(err, ledger.ErrExists) {
			break
		}
	}
	if err != nil {
		return model.Job{}, fromLedger(op, err)
	}

	s.publishers.JobCreated(job.Clone())
	s.publishers.JobChanged(job.Clone(), &job.Logs[0])
	return job.Clone(), nil
}

func (s *JobService) validateSpec(op string, spec JobSpec) error {
	if spec.Qty <= 0 {
		return invalidArgument(op, "qty must be positive")
	}
	if !spec.Priority.Valid() {
		return invalidArgument(op, "unknown priority %q", spec.Priority)
	}
	if strings.TrimSpace(spec.Customer) == "" {
		return invalidArgument(op, "customer is required")
	}
	if strings.TrimSpace(spec.PartName) == "" {
		return invalidArgument(op, "part name is required")
	}
	switch spec.CustomerType {
	case model.CustomerContract:
		if spec.ContractID == "" || spec.ContactPerson != "" {
			return invalidArgument(op, "contract customers need a contract id and no contact person")
		}
	case model.CustomerIndividual:
		if spec.ContactPerson == "" || spec.ContractID != "" {
			return invalidArgument(op, "individual customers need a contact person and no contract id")
		}
	default:
		return invalidArgument(op, "unknown customer type %q", spec.CustomerType)
	}
	for _, o := range spec.Operations {
		if o.EstTime < 0 {
			return invalidArgument(op, "operation %d has a negative estimated time", o.Sequence)
		}
	}

	if spec.MachineID != "" && !s.store.HasMachine(spec.MachineID) {
		return notFound(op, "machine %s not found", spec.MachineID)
	}
	if spec.MaterialID != "" && !s.store.HasMaterial(spec.MaterialID) {
		return notFound(op, "material %s not found", spec.MaterialID)
	}
	if spec.OperatorID != "" {
		if _, ok := s.store.GetUser(spec.OperatorID); !ok {
			return notFound(op, "operator %s not found", spec.OperatorID)
		}
	}
	return nil
}

// GetJob returns a snapshot of one job.
func (s *JobService) GetJob(ctx context.Context, jobID string) (model.Job, error) {
	job, ok := s.store.GetJob(jobID)
	if !ok {
		return model.Job{}, notFound("GetJob", "job %s not found", jobID)
	}
	return job, nil
}

// ListJobs returns jobs in creation order.
func (s *JobService) ListJobs(ctx context.Context, filter JobFilter) []model.Job {
	all := s.store.ListJobs()
	out := make([]model.Job, 0, len(all))
	for _, j := range all {
		if filter.match(j) {
			out = append(out, j)
		}
	}
	return out
}

// JobLogs returns a job's history in append order, or ordered by
// timestamp when sorted is set.
func (s *JobService) JobLogs(ctx context.Context, jobID string, sorted bool) ([]model.JobLog, error) {
	job, err := s.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if sorted {
		return model.SortLogsByTime(job.Logs), nil
	}
	return job.Logs, nil
}

// checkReassignment validates a transfer request against the ledger.
func (s *JobService) checkReassignment(op string, to Reassignment, reason string) error {
	if to.MachineID == "" && to.OperatorID == "" {
		return invalidArgument(op, "a target machine or operator is required")
	}
	if strings.TrimSpace(reason) == "" {
		return invalidArgument(op, "a reason is required to transfer a job")
	}
	if to.MachineID != "" && !s.store.HasMachine(to.MachineID) {
		return notFound(op, "machine %s not found", to.MachineID)
	}
	if to.OperatorID != "" {
		if _, ok := s.store.GetUser(to.OperatorID); !ok {
			return notFound(op, "operator %s not found", to.OperatorID)
		}
	}
	return nil
}

// TransferJob moves a job to another machine and/or operator without
// changing its status.
func (s *JobService) TransferJob(ctx context.Context, jobID string, to Reassignment, reason string) (*TransitionResult, error) {
	start := time.Now()
	res, err := s.transfer(ctx, jobID, to, reason)
	s.observe(ctx, "transfer_job", err, start)
	return res, err
}

func (s *JobService) transfer(ctx context.Context, jobID string, to Reassignment, reason string) (*TransitionResult, error) {
	const op = "TransferJob"
	actor := ActorFrom(ctx)
	var (
		result  TransitionResult
		changed []model.Machine
	)
	job, err := s.store.WithJob(jobID, func(tx *ledger.JobTx) error {
		if tx.Job.Status.Terminal() {
			return invalidTransition(op, "job %s is %s", jobID, tx.Job.Status)
		}
		if err := s.checkReassignment(op, to, reason); err != nil {
			return err
		}
		oldMachine, newMachine := tx.Job.CurrentMachineID, tx.Job.CurrentMachineID
		if to.MachineID != "" {
			newMachine = to.MachineID
		}
		newOperator := tx.Job.AssignedOperatorID
		if to.OperatorID != "" {
			newOperator = to.OperatorID
		}
		tx.Job.CurrentMachineID = newMachine
		tx.Job.AssignedOperatorID = newOperator

		if tx.Job.Status == model.JobStatusRunning {
			if err := tx.ClaimOperator(newOperator); err != nil {
				return conflict(op, err, "operator %s already has a running job", newOperator)
			}
			copies, missing, err := tx.LockMachines(oldMachine, newMachine)
			if err != nil {
				return err
			}
			for _, id := range missing {
				if id == newMachine {
					return notFound(op, "machine %s not found", id)
				}
				result.Warnings = append(result.Warnings, missingMachineWarning(id, jobID))
			}
			if m := copies[newMachine]; m != nil {
				if err := machineAvailable(op, m, jobID); err != nil {
					return err
				}
			}
			if m := copies[oldMachine]; m != nil && oldMachine != newMachine {
				if syncMachine(m, jobID, "", model.JobStatusPaused) {
					changed = append(changed, *m)
				}
			}
			if m := copies[newMachine]; m != nil {
				if syncMachine(m, jobID, newOperator, model.JobStatusRunning) {
					changed = append(changed, *m)
				}
			}
		}

		result.Log = newLogEntry(s.now(), model.LogTypeTransfer, "Transferred: "+reason, actor)
		appendLocked(tx, result.Log)
		return nil
	})
	if err != nil {
		return nil, fromLedger(op, err)
	}

	result.Job = job
	for _, w := range result.Warnings {
		log.Printf("Warning: %s", w)
		s.metrics.MachineSyncFailed()
	}
	s.publishers.JobChanged(job, &result.Log)
	for i := range changed {
		if changed[i].ID == job.CurrentMachineID {
			result.Machine = &changed[i]
		}
		s.publishers.MachineChanged(changed[i])
	}
	return &result, nil
}
