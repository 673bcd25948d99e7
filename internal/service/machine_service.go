package service

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/shopfloor/api/internal/ledger"
	"github.com/shopfloor/api/internal/model"
)

// MachineService handles machine reads and maintenance overrides.
type MachineService struct {
	core
}

// NewMachineService creates a new machine service
func NewMachineService(store *ledger.Store, opts ...Option) *MachineService {
	return &MachineService{core: newCore(store, opts)}
}

// GetMachine returns a snapshot of one machine.
func (s *MachineService) GetMachine(ctx context.Context, machineID string) (model.Machine, error) {
	m, ok := s.store.GetMachine(machineID)
	if !ok {
		return model.Machine{}, notFound("GetMachine", "machine %s not found", machineID)
	}
	return m, nil
}

// ListMachines returns all machines.
func (s *MachineService) ListMachines(ctx context.Context) []model.Machine {
	return s.store.ListMachines()
}

// SetMachineStatus overrides a machine's status for maintenance. DOWN and
// MAINTENANCE keep the running job's reference so the machine cannot be
// handed to another job; IDLE is refused until that job leaves RUNNING.
func (s *MachineService) SetMachineStatus(ctx context.Context, machineID string, status model.MachineStatus) (model.Machine, error) {
	const op = "SetMachineStatus"
	start := time.Now()

	if status == model.MachineStatusRunning {
		err := invalidArgument(op, "machines only start running through a job")
		s.observe(ctx, "set_machine_status", err, start)
		return model.Machine{}, err
	}
	if !status.Valid() {
		err := invalidArgument(op, "unknown machine status %q", status)
		s.observe(ctx, "set_machine_status", err, start)
		return model.Machine{}, err
	}

	m, err := s.store.UpdateMachine(machineID, func(m *model.Machine) error {
		if status == model.MachineStatusIdle && m.CurrentJobID != "" {
			return conflict(op, nil, "machine %s is running job %s", m.ID, m.CurrentJobID)
		}
		m.Status = status
		return nil
	})
	err = fromLedger(op, err)
	s.observe(ctx, "set_machine_status", err, start)
	if err != nil {
		return model.Machine{}, err
	}

	if m.CurrentJobID != "" {
		log.Printf("Warning: machine %s set to %s while running job %s", machineID, status, m.CurrentJobID)
	}
	s.publishers.MachineChanged(m)
	return m, nil
}

// ScheduleMaintenance books a maintenance task for a machine.
func (s *MachineService) ScheduleMaintenance(ctx context.Context, machineID string, req *model.ScheduleMaintenanceRequest) (model.MaintenanceLog, error) {
	const op = "ScheduleMaintenance"
	if !s.store.HasMachine(machineID) {
		return model.MaintenanceLog{}, notFound(op, "machine %s not found", machineID)
	}
	if req.Type != model.MaintenancePreventive && req.Type != model.MaintenanceBreakdown {
		return model.MaintenanceLog{}, invalidArgument(op, "unknown maintenance type %q", req.Type)
	}
	date, err := time.Parse(model.DateLayout, req.Date)
	if err != nil {
		return model.MaintenanceLog{}, invalidArgument(op, "invalid date %q", req.Date)
	}
	technician := strings.TrimSpace(req.Technician)
	if technician == "" {
		technician = "Internal"
	}

	entry := model.MaintenanceLog{
		ID:          newID("ML"),
		MachineID:   machineID,
		Type:        req.Type,
		Description: req.Description,
		Date:        date,
		Technician:  technician,
		Status:      model.MaintenanceScheduled,
	}
	s.store.AppendMaintenance(entry)

	if _, err := s.store.UpdateMachine(machineID, func(m *model.Machine) error {
		if m.NextMaintenance.IsZero() || date.Before(m.NextMaintenance) {
			m.NextMaintenance = date
		}
		return nil
	}); err != nil {
		return model.MaintenanceLog{}, fromLedger(op, err)
	}
	return entry, nil
}

// ListMaintenance returns maintenance logs, optionally for one machine.
func (s *MachineService) ListMaintenance(ctx context.Context, machineID string) ([]model.MaintenanceLog, error) {
	if machineID != "" && !s.store.HasMachine(machineID) {
		return nil, notFound("ListMaintenance", "machine %s not found", machineID)
	}
	return s.store.ListMaintenance(machineID), nil
}
