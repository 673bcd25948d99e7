package ledger

import (
	"errors"
	"fmt"

	"github.com/shopfloor/api/internal/model"
)

// JobTx is an exclusive, all-or-nothing update of one job and the
// machines it touches. Job is a working copy; nothing is visible to
// readers until the transaction commits.
type JobTx struct {
	store  *Store
	before model.Job
	Job    model.Job

	machines      map[string]*machineEntry
	machineCopies map[string]*model.Machine
	locked        bool

	claimed string // operator id claimed in the running index by this tx
}

// WithJob locks the job, runs fn against a JobTx and commits the working
// copies when fn returns nil. Machine locks acquired through the tx are
// held until commit or rollback. Only one job lock is ever held at a time.
func (s *Store) WithJob(id string, fn func(tx *JobTx) error) (model.Job, error) {
	e, ok := s.jobEntry(id)
	if !ok {
		return model.Job{}, fmt.Errorf("job %q: %w", id, ErrNotFound)
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	tx := &JobTx{
		store:         s,
		before:        e.job.Clone(),
		Job:           e.job.Clone(),
		machines:      make(map[string]*machineEntry),
		machineCopies: make(map[string]*model.Machine),
	}
	defer tx.unlockMachines()

	if err := fn(tx); err != nil {
		tx.rollback()
		return model.Job{}, err
	}

	tx.Job.ID = id
	e.job = tx.Job.Clone()
	for mid, entry := range tx.machines {
		if cp := tx.machineCopies[mid]; cp != nil {
			entry.machine = *cp
		}
	}
	s.reconcileRunning(tx.before, tx.Job)
	return e.job.Clone(), nil
}

// Before returns the job as it was when the transaction started.
func (tx *JobTx) Before() model.Job {
	return tx.before.Clone()
}

// LockMachines acquires the locks of the given machines in id order and
// returns their working copies. Ids that do not exist are reported in
// missing. It may be called once per transaction.
func (tx *JobTx) LockMachines(ids ...string) (map[string]*model.Machine, []string, error) {
	if tx.locked {
		return nil, nil, errors.New("machines already locked in this transaction")
	}
	tx.locked = true

	var missing []string
	for _, id := range sortedUnique(ids) {
		e, ok := tx.store.machineEntry(id)
		if !ok {
			missing = append(missing, id)
			continue
		}
		e.mu.Lock()
		cp := e.machine
		tx.machines[id] = e
		tx.machineCopies[id] = &cp
	}
	return tx.machineCopies, missing, nil
}

// ClaimOperator reserves operatorID as running this job. It fails with
// ErrOperatorBusy when the operator already runs a different job. The
// claim is released if the transaction rolls back.
func (tx *JobTx) ClaimOperator(operatorID string) error {
	if operatorID == "" {
		return nil
	}
	s := tx.store
	s.opMu.Lock()
	defer s.opMu.Unlock()
	if other, busy := s.running[operatorID]; busy {
		if other == tx.Job.ID {
			return nil
		}
		return fmt.Errorf("operator %q runs %s: %w", operatorID, other, ErrOperatorBusy)
	}
	s.running[operatorID] = tx.Job.ID
	tx.claimed = operatorID
	return nil
}

func (tx *JobTx) rollback() {
	if tx.claimed == "" {
		return
	}
	s := tx.store
	s.opMu.Lock()
	if s.running[tx.claimed] == tx.Job.ID {
		delete(s.running, tx.claimed)
	}
	s.opMu.Unlock()
}

func (tx *JobTx) unlockMachines() {
	for _, e := range tx.machines {
		e.mu.Unlock()
	}
}

// reconcileRunning keeps the operator index in step with a committed job.
func (s *Store) reconcileRunning(before, after model.Job) {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	wasRunning := before.Status == model.JobStatusRunning && before.AssignedOperatorID != ""
	isRunning := after.Status == model.JobStatusRunning && after.AssignedOperatorID != ""

	if wasRunning && (!isRunning || before.AssignedOperatorID != after.AssignedOperatorID) {
		if s.running[before.AssignedOperatorID] == before.ID {
			delete(s.running, before.AssignedOperatorID)
		}
	}
	if isRunning {
		s.running[after.AssignedOperatorID] = after.ID
	}
}
