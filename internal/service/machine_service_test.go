package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopfloor/api/internal/model"
	"github.com/stretchr/testify/require"
)

func TestSetMachineStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	m, err := f.machines.SetMachineStatus(ctx, "M-2", model.MachineStatusMaintenance)
	require.NoError(t, err)
	require.Equal(t, model.MachineStatusMaintenance, m.Status)

	m, err = f.machines.SetMachineStatus(ctx, "M-2", model.MachineStatusIdle)
	require.NoError(t, err)
	require.Equal(t, model.MachineStatusIdle, m.Status)

	_, err = f.machines.SetMachineStatus(ctx, "M-2", model.MachineStatusRunning)
	require.ErrorIs(t, err, ErrInvalidArgument)
	_, err = f.machines.SetMachineStatus(ctx, "M-2", "BROKEN")
	require.ErrorIs(t, err, ErrInvalidArgument)
	_, err = f.machines.SetMachineStatus(ctx, "M-9", model.MachineStatusDown)
	require.ErrorIs(t, err, ErrNotFound)

	require.Len(t, f.rec.machines, 2)
}

func TestSetMachineStatusKeepsRunningJobBound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	job := createJob(t, f, "M-1", "OP-1")
	_, err := f.jobs.Start(ctx, job.ID)
	require.NoError(t, err)

	_, err = f.machines.SetMachineStatus(ctx, "M-1", model.MachineStatusIdle)
	require.ErrorIs(t, err, ErrConflict)

	m, err := f.machines.SetMachineStatus(ctx, "M-1", model.MachineStatusDown)
	require.NoError(t, err)
	require.Equal(t, model.MachineStatusDown, m.Status)
	require.Equal(t, job.ID, m.CurrentJobID)

	got, _ := f.jobs.GetJob(ctx, job.ID)
	require.Equal(t, model.JobStatusRunning, got.Status)
	require.Equal(t, "M-1", got.CurrentMachineID)

	// still bound, so another job cannot take the machine
	_, err = f.machines.SetMachineStatus(ctx, "M-1", model.MachineStatusIdle)
	require.ErrorIs(t, err, ErrConflict)
	other := createJob(t, f, "M-1", "OP-2")
	_, err = f.jobs.Start(ctx, other.ID)
	require.ErrorIs(t, err, ErrConflict)

	// pausing releases the job but leaves the machine down
	_, err = f.jobs.Pause(ctx, job.ID, "spindle fault")
	require.NoError(t, err)
	m, _ = f.machines.GetMachine(ctx, "M-1")
	require.Equal(t, model.MachineStatusDown, m.Status)
	require.Empty(t, m.CurrentJobID)
	require.Empty(t, m.CurrentOperatorID)

	_, err = f.jobs.Start(ctx, job.ID)
	require.ErrorIs(t, err, ErrConflict)

	m, err = f.machines.SetMachineStatus(ctx, "M-1", model.MachineStatusIdle)
	require.NoError(t, err)
	require.Equal(t, model.MachineStatusIdle, m.Status)
	_, err = f.jobs.Start(ctx, other.ID)
	require.NoError(t, err)
}

func TestScheduleMaintenance(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	entry, err := f.machines.ScheduleMaintenance(ctx, "M-3", &model.ScheduleMaintenanceRequest{
		Type:        model.MaintenancePreventive,
		Description: "Spindle lubrication",
		Date:        "2026-11-20",
	})
	require.NoError(t, err)
	require.Equal(t, "Internal", entry.Technician)
	require.Equal(t, model.MaintenanceScheduled, entry.Status)
	require.Equal(t, time.Date(2026, 11, 20, 0, 0, 0, 0, time.UTC), entry.Date)

	m, err := f.machines.GetMachine(ctx, "M-3")
	require.NoError(t, err)
	require.Equal(t, entry.Date, m.NextMaintenance)

	logs, err := f.machines.ListMaintenance(ctx, "M-3")
	require.NoError(t, err)
	require.Len(t, logs, 1)
	all, err := f.machines.ListMaintenance(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 1)

	_, err = f.machines.ScheduleMaintenance(ctx, "M-9", &model.ScheduleMaintenanceRequest{Type: model.MaintenanceBreakdown, Date: "2026-11-20"})
	require.ErrorIs(t, err, ErrNotFound)
	_, err = f.machines.ScheduleMaintenance(ctx, "M-3", &model.ScheduleMaintenanceRequest{Type: model.MaintenanceBreakdown, Date: "20/11/2026"})
	require.ErrorIs(t, err, ErrInvalidArgument)
	_, err = f.machines.ListMaintenance(ctx, "M-9")
	require.ErrorIs(t, err, ErrNotFound)
}
