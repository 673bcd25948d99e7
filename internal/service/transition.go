package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/shopfloor/api/internal/ledger"
	"github.com/shopfloor/api/internal/model"
)

// FieldUpdate is the set of job fields a transition may change besides
// its status. Implementations are ProductionReport and QCDecision.
type FieldUpdate interface {
	// target is the only status the update may accompany.
	target() model.JobStatus
	validate(op string) error
	apply(job *model.Job)
}

// ProductionReport adds the quantities an operator reports when a job
// goes to quality control.
type ProductionReport struct {
	CompletedQty int
	ScrapQty     int
}

func (ProductionReport) target() model.JobStatus { return model.JobStatusQCPending }

func (r ProductionReport) validate(op string) error {
	if r.CompletedQty < 0 || r.ScrapQty < 0 {
		return invalidArgument(op, "reported quantities must not be negative")
	}
	return nil
}

func (r ProductionReport) apply(job *model.Job) {
	job.CompletedQty += r.CompletedQty
	job.ScrapQty += r.ScrapQty
}

// QCDecision records the good quantity confirmed by quality control. The
// job's quantities are already final, so it only shapes the log entry.
type QCDecision struct {
	ApprovedQty int
}

func (QCDecision) target() model.JobStatus { return model.JobStatusCompleted }

func (d QCDecision) validate(op string) error {
	if d.ApprovedQty < 0 {
		return invalidArgument(op, "approved quantity must not be negative")
	}
	return nil
}

func (QCDecision) apply(*model.Job) {}

// TransitionResult describes a committed transition.
type TransitionResult struct {
	Job      model.Job      `json:"job"`
	Log      model.JobLog   `json:"log"`
	Machine  *model.Machine `json:"machine,omitempty"`
	Warnings []string       `json:"warnings,omitempty"`
}

// TransitionJob moves a job to target, merging update, appending one log
// entry and synchronizing the bound machine, all atomically.
func (s *JobService) TransitionJob(ctx context.Context, jobID string, target model.JobStatus, message string, update FieldUpdate) (*TransitionResult, error) {
	start := time.Now()
	res, err := s.transition(ctx, jobID, target, message, message, update)
	s.observe(ctx, "transition_job", err, start)
	return res, err
}

// transition is TransitionJob with an optional set of statuses the job
// must currently be in. reason is checked for PAUSED and HOLD; message is
// the log text. Arguments are checked after the job's status, so a missing
// job reports NotFound and a terminal one InvalidTransition.
func (s *JobService) transition(ctx context.Context, jobID string, target model.JobStatus, message, reason string, update FieldUpdate, from ...model.JobStatus) (*TransitionResult, error) {
	const op = "TransitionJob"

	actor := ActorFrom(ctx)
	var (
		result   TransitionResult
		previous model.JobStatus
		machine  *model.Machine
	)
	job, err := s.store.WithJob(jobID, func(tx *ledger.JobTx) error {
		previous = tx.Job.Status
		if len(from) > 0 && !statusIn(previous, from) {
			return invalidTransition(op, "job %s is %s", jobID, previous)
		}
		if previous.Terminal() {
			return invalidTransition(op, "job %s is %s", jobID, previous)
		}
		if !target.Valid() {
			return invalidArgument(op, "unknown job status %q", target)
		}
		if !model.CanTransition(previous, target) {
			return invalidTransition(op, "job %s cannot move from %s to %s", jobID, previous, target)
		}
		if err := checkTransitionArgs(op, target, reason, update); err != nil {
			return err
		}

		if target == model.JobStatusRunning {
			if err := tx.ClaimOperator(tx.Job.AssignedOperatorID); err != nil {
				return conflict(op, err, "operator %s already has a running job", tx.Job.AssignedOperatorID)
			}
		}

		var bound *model.Machine
		if mid := tx.Job.CurrentMachineID; mid != "" {
			copies, missing, err := tx.LockMachines(mid)
			if err != nil {
				return err
			}
			if len(missing) > 0 {
				result.Warnings = append(result.Warnings, missingMachineWarning(mid, jobID))
			} else {
				bound = copies[mid]
			}
		}
		if bound != nil && target == model.JobStatusRunning {
			if err := machineAvailable(op, bound, jobID); err != nil {
				return err
			}
		}

		tx.Job.Status = target
		if update != nil {
			update.apply(&tx.Job)
		}
		result.Log = newLogEntry(s.now(), model.LogTypeFor(target), message, actor)
		appendLocked(tx, result.Log)

		if bound != nil && syncMachine(bound, jobID, tx.Job.AssignedOperatorID, target) {
			cp := *bound
			machine = &cp
		}
		return nil
	})
	if err != nil {
		return nil, fromLedger(op, err)
	}

	result.Job = job
	result.Machine = machine
	for _, w := range result.Warnings {
		log.Printf("Warning: %s", w)
		s.metrics.MachineSyncFailed()
	}
	s.metrics.JobTransitioned(previous, target)
	s.publishers.JobChanged(job, &result.Log)
	if machine != nil {
		s.publishers.MachineChanged(*machine)
	}
	return &result, nil
}

// checkTransitionArgs validates the caller-supplied parts of a transition.
func checkTransitionArgs(op string, target model.JobStatus, reason string, update FieldUpdate) error {
	if update != nil {
		if update.target() != target {
			return invalidArgument(op, "%T cannot accompany a transition to %s", update, target)
		}
		if err := update.validate(op); err != nil {
			return err
		}
	}
	if (target == model.JobStatusPaused || target == model.JobStatusHold) && strings.TrimSpace(reason) == "" {
		return invalidArgument(op, "a reason is required to move a job to %s", target)
	}
	return nil
}

func statusIn(s model.JobStatus, set []model.JobStatus) bool {
	for _, v := range set {
		if s == v {
			return true
		}
	}
	return false
}

// Start puts a pending or paused job into production.
func (s *JobService) Start(ctx context.Context, jobID string) (*TransitionResult, error) {
	return s.TransitionJob(ctx, jobID, model.JobStatusRunning, "Operator started job", nil)
}

// Pause stops a running job. A reason is required.
func (s *JobService) Pause(ctx context.Context, jobID, reason string) (*TransitionResult, error) {
	start := time.Now()
	res, err := s.transition(ctx, jobID, model.JobStatusPaused, "Paused: "+reason, reason, nil)
	s.observe(ctx, "transition_job", err, start)
	return res, err
}

// Resume restarts a paused job.
func (s *JobService) Resume(ctx context.Context, jobID string) (*TransitionResult, error) {
	start := time.Now()
	res, err := s.transition(ctx, jobID, model.JobStatusRunning, "Job resumed", "", nil, model.JobStatusPaused)
	s.observe(ctx, "transition_job", err, start)
	return res, err
}

// ReportProduction submits produced and scrapped quantities for QC.
func (s *JobService) ReportProduction(ctx context.Context, jobID string, completedQty, scrapQty int) (*TransitionResult, error) {
	msg := fmt.Sprintf("Production reported. Qty: %d, Scrap: %d", completedQty, scrapQty)
	return s.TransitionJob(ctx, jobID, model.JobStatusQCPending, msg, ProductionReport{CompletedQty: completedQty, ScrapQty: scrapQty})
}

// ApproveQC closes a job that passed quality control.
func (s *JobService) ApproveQC(ctx context.Context, jobID string, approvedQty int) (*TransitionResult, error) {
	msg := fmt.Sprintf("QC Approved. Good: %d", approvedQty)
	return s.TransitionJob(ctx, jobID, model.JobStatusCompleted, msg, QCDecision{ApprovedQty: approvedQty})
}

// RejectQC sends a job awaiting QC to HOLD for rework.
func (s *JobService) RejectQC(ctx context.Context, jobID, reason string) (*TransitionResult, error) {
	msg := "QC Rejected - Rework Required"
	if r := strings.TrimSpace(reason); r != "" {
		msg += ": " + r
	}
	start := time.Now()
	res, err := s.transition(ctx, jobID, model.JobStatusHold, msg, msg, nil, model.JobStatusQCPending)
	s.observe(ctx, "transition_job", err, start)
	return res, err
}

// Hold stops work on a job pending a decision.
func (s *JobService) Hold(ctx context.Context, jobID, reason string) (*TransitionResult, error) {
	return s.TransitionJob(ctx, jobID, model.JobStatusHold, reason, nil)
}

// Recall returns a held job to the pending queue.
func (s *JobService) Recall(ctx context.Context, jobID, reason string) (*TransitionResult, error) {
	msg := "Recalled"
	if r := strings.TrimSpace(reason); r != "" {
		msg += ": " + r
	}
	return s.TransitionJob(ctx, jobID, model.JobStatusPending, msg, nil)
}

// Cancel terminates a job.
func (s *JobService) Cancel(ctx context.Context, jobID, reason string) (*TransitionResult, error) {
	msg := "Job cancelled"
	if r := strings.TrimSpace(reason); r != "" {
		msg = "Cancelled: " + r
	}
	return s.TransitionJob(ctx, jobID, model.JobStatusCancelled, msg, nil)
}
