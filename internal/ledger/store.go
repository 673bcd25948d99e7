package ledger

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/shopfloor/api/internal/model"
)

var (
	// ErrNotFound is returned when a referenced record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrExists is returned when inserting a record whose id is taken.
	ErrExists = errors.New("record already exists")
	// ErrOperatorBusy is returned when an operator already runs another job.
	ErrOperatorBusy = errors.New("operator already has a running job")
)

type jobEntry struct {
	mu  sync.Mutex
	job model.Job
}

type machineEntry struct {
	mu      sync.Mutex
	machine model.Machine
}

type materialEntry struct {
	mu       sync.Mutex
	material model.Material
}

// Store holds the authoritative in-memory collections of the shop floor.
// The store-level lock only guards the id maps; every job, machine and
// material has its own lock so unrelated records never contend.
type Store struct {
	mu            sync.RWMutex
	jobs          map[string]*jobEntry
	jobOrder      []string
	machines      map[string]*machineEntry
	machineOrder  []string
	materials     map[string]*materialEntry
	materialOrder []string
	users         map[string]model.User
	userOrder     []string

	maintMu     sync.RWMutex
	maintenance []model.MaintenanceLog

	txMu         sync.RWMutex
	transactions []model.MaterialTransaction

	// running maps operator id to the id of the job that operator runs.
	opMu    sync.Mutex
	running map[string]string
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		jobs:      make(map[string]*jobEntry),
		machines:  make(map[string]*machineEntry),
		materials: make(map[string]*materialEntry),
		users:     make(map[string]model.User),
		running:   make(map[string]string),
	}
}

// Jobs ---------------------------------------------------------------------

// InsertJob stores a new job. A job inserted as RUNNING claims its
// operator in the running index.
func (s *Store) InsertJob(job model.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.jobs[job.ID]; exists {
		return fmt.Errorf("job %q: %w", job.ID, ErrExists)
	}
	if job.Status == model.JobStatusRunning && job.AssignedOperatorID != "" {
		s.opMu.Lock()
		if other, busy := s.running[job.AssignedOperatorID]; busy && other != job.ID {
			s.opMu.Unlock()
			return fmt.Errorf("operator %q: %w", job.AssignedOperatorID, ErrOperatorBusy)
		}
		s.running[job.AssignedOperatorID] = job.ID
		s.opMu.Unlock()
	}
	s.jobs[job.ID] = &jobEntry{job: job.Clone()}
	s.jobOrder = append(s.jobOrder, job.ID)
	return nil
}

func (s *Store) jobEntry(id string) (*jobEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.jobs[id]
	return e, ok
}

// GetJob returns a snapshot of the job.
func (s *Store) GetJob(id string) (model.Job, bool) {
	e, ok := s.jobEntry(id)
	if !ok {
		return model.Job{}, false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.job.Clone(), true
}

// ListJobs returns snapshots of all jobs in creation order.
func (s *Store) ListJobs() []model.Job {
	s.mu.RLock()
	entries := make([]*jobEntry, 0, len(s.jobOrder))
	for _, id := range s.jobOrder {
		entries = append(entries, s.jobs[id])
	}
	s.mu.RUnlock()

	out := make([]model.Job, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		out = append(out, e.job.Clone())
		e.mu.Unlock()
	}
	return out
}

// RunningJobOf returns the job id the operator currently runs, if any.
func (s *Store) RunningJobOf(operatorID string) (string, bool) {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	id, ok := s.running[operatorID]
	return id, ok
}

// Machines -----------------------------------------------------------------

// InsertMachine stores a new machine.
func (s *Store) InsertMachine(m model.Machine) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.machines[m.ID]; exists {
		return fmt.Errorf("machine %q: %w", m.ID, ErrExists)
	}
	s.machines[m.ID] = &machineEntry{machine: m}
	s.machineOrder = append(s.machineOrder, m.ID)
	return nil
}

func (s *Store) machineEntry(id string) (*machineEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.machines[id]
	return e, ok
}

// HasMachine reports whether a machine with id exists.
func (s *Store) HasMachine(id string) bool {
	_, ok := s.machineEntry(id)
	return ok
}

// GetMachine returns a snapshot of the machine.
func (s *Store) GetMachine(id string) (model.Machine, bool) {
	e, ok := s.machineEntry(id)
	if !ok {
		return model.Machine{}, false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.machine, true
}

// ListMachines returns snapshots of all machines in insertion order.
func (s *Store) ListMachines() []model.Machine {
	s.mu.RLock()
	entries := make([]*machineEntry, 0, len(s.machineOrder))
	for _, id := range s.machineOrder {
		entries = append(entries, s.machines[id])
	}
	s.mu.RUnlock()

	out := make([]model.Machine, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		out = append(out, e.machine)
		e.mu.Unlock()
	}
	return out
}

// UpdateMachine applies mutator to a working copy of the machine and
// commits it when mutator returns nil.
func (s *Store) UpdateMachine(id string, mutator func(*model.Machine) error) (model.Machine, error) {
	e, ok := s.machineEntry(id)
	if !ok {
		return model.Machine{}, fmt.Errorf("machine %q: %w", id, ErrNotFound)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	current := e.machine
	if err := mutator(&current); err != nil {
		return model.Machine{}, err
	}
	current.ID = id
	e.machine = current
	return current, nil
}

// Materials ----------------------------------------------------------------

// InsertMaterial stores a new material. Its status is recomputed from the
// stock level regardless of the supplied value.
func (s *Store) InsertMaterial(m model.Material) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.materials[m.ID]; exists {
		return fmt.Errorf("material %q: %w", m.ID, ErrExists)
	}
	m.Status = model.ClassifyStock(m.Stock, m.MinLevel)
	s.materials[m.ID] = &materialEntry{material: m}
	s.materialOrder = append(s.materialOrder, m.ID)
	return nil
}

func (s *Store) materialEntry(id string) (*materialEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.materials[id]
	return e, ok
}

// HasMaterial reports whether a material with id exists.
func (s *Store) HasMaterial(id string) bool {
	_, ok := s.materialEntry(id)
	return ok
}

// GetMaterial returns a snapshot of the material.
func (s *Store) GetMaterial(id string) (model.Material, bool) {
	e, ok := s.materialEntry(id)
	if !ok {
		return model.Material{}, false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.material, true
}

// ListMaterials returns snapshots of all materials in insertion order.
func (s *Store) ListMaterials() []model.Material {
	s.mu.RLock()
	entries := make([]*materialEntry, 0, len(s.materialOrder))
	for _, id := range s.materialOrder {
		entries = append(entries, s.materials[id])
	}
	s.mu.RUnlock()

	out := make([]model.Material, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		out = append(out, e.material)
		e.mu.Unlock()
	}
	return out
}

// MoveMaterial runs move against a working copy of the material while
// holding the material's lock. When move succeeds the material is
// committed and the returned transaction is appended before the lock is
// released, so stock and ledger never disagree.
func (s *Store) MoveMaterial(id string, move func(*model.Material) (model.MaterialTransaction, error)) (model.Material, model.MaterialTransaction, error) {
	e, ok := s.materialEntry(id)
	if !ok {
		return model.Material{}, model.MaterialTransaction{}, fmt.Errorf("material %q: %w", id, ErrNotFound)
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	current := e.material
	trx, err := move(&current)
	if err != nil {
		return model.Material{}, model.MaterialTransaction{}, err
	}
	current.ID = id
	current.Status = model.ClassifyStock(current.Stock, current.MinLevel)
	trx.MaterialID = id

	e.material = current
	s.txMu.Lock()
	s.transactions = append(s.transactions, trx)
	s.txMu.Unlock()
	return current, trx, nil
}

// Transactions -------------------------------------------------------------

// AppendTransaction records a historical movement without touching stock.
// It is used when loading an existing ledger.
func (s *Store) AppendTransaction(trx model.MaterialTransaction) error {
	if !s.HasMaterial(trx.MaterialID) {
		return fmt.Errorf("material %q: %w", trx.MaterialID, ErrNotFound)
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()
	s.transactions = append(s.transactions, trx)
	return nil
}

// ListTransactions returns recorded movements in append order. An empty
// materialID returns every transaction.
func (s *Store) ListTransactions(materialID string) []model.MaterialTransaction {
	s.txMu.RLock()
	defer s.txMu.RUnlock()
	out := make([]model.MaterialTransaction, 0, len(s.transactions))
	for _, t := range s.transactions {
		if materialID == "" || t.MaterialID == materialID {
			out = append(out, t)
		}
	}
	return out
}

// Maintenance --------------------------------------------------------------

// AppendMaintenance records a maintenance log entry.
func (s *Store) AppendMaintenance(log model.MaintenanceLog) {
	s.maintMu.Lock()
	defer s.maintMu.Unlock()
	s.maintenance = append(s.maintenance, log)
}

// ListMaintenance returns maintenance logs, optionally for one machine.
func (s *Store) ListMaintenance(machineID string) []model.MaintenanceLog {
	s.maintMu.RLock()
	defer s.maintMu.RUnlock()
	out := make([]model.MaintenanceLog, 0, len(s.maintenance))
	for _, l := range s.maintenance {
		if machineID == "" || l.MachineID == machineID {
			out = append(out, l)
		}
	}
	return out
}

// Users --------------------------------------------------------------------

// InsertUser stores a user. Ids must be unique.
func (s *Store) InsertUser(u model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[u.ID]; exists {
		return fmt.Errorf("user %q: %w", u.ID, ErrExists)
	}
	s.users[u.ID] = u
	s.userOrder = append(s.userOrder, u.ID)
	return nil
}

// GetUser returns a user by id.
func (s *Store) GetUser(id string) (model.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	return u, ok
}

// ListUsers returns all users in creation order.
func (s *Store) ListUsers() []model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.User, 0, len(s.userOrder))
	for _, id := range s.userOrder {
		out = append(out, s.users[id])
	}
	return out
}

// sortedUnique returns ids sorted with duplicates and blanks removed.
func sortedUnique(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
