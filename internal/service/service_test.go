package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopfloor/api/internal/ledger"
	"github.com/shopfloor/api/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// recorder captures published events.
type recorder struct {
	mu        sync.Mutex
	created   []model.Job
	jobs      []model.Job
	logs      []*model.JobLog
	machines  []model.Machine
	materials []model.Material
	alerts    []model.MaterialStatus
}

func (r *recorder) JobCreated(job model.Job) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.created = append(r.created, job)
}

func (r *recorder) JobChanged(job model.Job, log *model.JobLog) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs = append(r.jobs, job)
	r.logs = append(r.logs, log)
}

func (r *recorder) MachineChanged(m model.Machine) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.machines = append(r.machines, m)
}

func (r *recorder) MaterialChanged(m model.Material, _ *model.MaterialTransaction) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.materials = append(r.materials, m)
}

func (r *recorder) StockAlert(m model.Material, previous model.MaterialStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alerts = append(r.alerts, m.Status)
}

type fixture struct {
	store    *ledger.Store
	rec      *recorder
	jobs     *JobService
	stock    *StockService
	machines *MachineService
	users    *UserService
	reports  *ReportService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := ledger.NewStore()
	for _, id := range []string{"M-1", "M-2", "M-3"} {
		require.NoError(t, store.InsertMachine(model.Machine{ID: id, Name: id, Status: model.MachineStatusIdle}))
	}
	for _, u := range []model.User{
		{ID: "PL-1", Name: "Planner", Role: model.RolePlanner},
		{ID: "OP-1", Name: "Operator One", Role: model.RoleOperator},
		{ID: "OP-2", Name: "Operator Two", Role: model.RoleOperator},
	} {
		require.NoError(t, store.InsertUser(u))
	}
	require.NoError(t, store.InsertMaterial(model.Material{
		ID:       "MAT-1",
		Name:     "Steel bar",
		Stock:    decimal.NewFromInt(5),
		MinLevel: decimal.NewFromInt(20),
		Unit:     "kg",
	}))

	rec := &recorder{}
	opts := []Option{WithPublisher(rec)}
	return &fixture{
		store:    store,
		rec:      rec,
		jobs:     NewJobService(store, opts...),
		stock:    NewStockService(store, opts...),
		machines: NewMachineService(store, opts...),
		users:    NewUserService(store, opts...),
		reports:  NewReportService(store, opts...),
	}
}

func operatorCtx() context.Context {
	return WithActor(context.Background(), Actor{ID: "OP-1", Name: "Operator One", Role: model.RoleOperator})
}

func contractSpec(machineID, operatorID string) JobSpec {
	return JobSpec{
		CustomerType: model.CustomerContract,
		Customer:     "Acme Corp",
		ContractID:   "CN-1",
		PartName:     "Bracket",
		DrawingNo:    "DRW-1",
		Revision:     "A",
		Qty:          50,
		Priority:     model.PriorityHigh,
		DueDate:      time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC),
		MaterialID:   "MAT-1",
		MachineID:    machineID,
		OperatorID:   operatorID,
	}
}

func createJob(t *testing.T, f *fixture, machineID, operatorID string) model.Job {
	t.Helper()
	job, err := f.jobs.CreateJob(context.Background(), contractSpec(machineID, operatorID))
	require.NoError(t, err)
	return job
}

func machine(t *testing.T, f *fixture, id string) model.Machine {
	t.Helper()
	m, ok := f.store.GetMachine(id)
	require.True(t, ok)
	return m
}

func TestActorFromDefaultsToSystem(t *testing.T) {
	require.Equal(t, SystemActor, ActorFrom(context.Background()).Name)
	require.Equal(t, "Operator One", ActorFrom(operatorCtx()).Name)
}

func TestNewIDIsUniqueAcrossManyRows(t *testing.T) {
	seen := make(map[string]bool, 50000)
	for i := 0; i < 50000; i++ {
		id := newID("TRX")
		require.Regexp(t, `^TRX-[0-9A-F]{16}$`, id)
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestErrorKinds(t *testing.T) {
	err := notFound("GetJob", "job %s not found", "J-1")
	require.ErrorIs(t, err, ErrNotFound)
	require.NotErrorIs(t, err, ErrConflict)
	require.Equal(t, KindNotFound, KindOf(err))
	require.Equal(t, "GetJob: job J-1 not found", err.Error())

	wrapped := fromLedger("TransferJob", ledger.ErrOperatorBusy)
	require.ErrorIs(t, wrapped, ErrConflict)
	require.ErrorIs(t, wrapped, ledger.ErrOperatorBusy)
}
