package service

import (
	"fmt"

	"github.com/shopfloor/api/internal/model"
)

// syncMachine mirrors a job status change onto the machine the job is
// bound to. It reports whether the machine changed.
//
// RUNNING binds the machine to the job. Any other status releases the
// machine only when it is still bound to this job, so DOWN and MAINTENANCE
// machines and machines running other jobs are left alone.
func syncMachine(m *model.Machine, jobID, operatorID string, status model.JobStatus) bool {
	if status == model.JobStatusRunning {
		if m.Status == model.MachineStatusRunning && m.CurrentJobID == jobID && m.CurrentOperatorID == operatorID {
			return false
		}
		m.Bind(jobID, operatorID)
		return true
	}
	if m.CurrentJobID != jobID {
		return false
	}
	m.Release()
	return true
}

// machineAvailable fails when m cannot start jobID.
func machineAvailable(op string, m *model.Machine, jobID string) error {
	switch m.Status {
	case model.MachineStatusDown, model.MachineStatusMaintenance:
		return conflict(op, nil, "machine %s is %s", m.ID, m.Status)
	}
	if m.CurrentJobID != "" && m.CurrentJobID != jobID {
		return conflict(op, nil, "machine %s is running job %s", m.ID, m.CurrentJobID)
	}
	return nil
}

func missingMachineWarning(machineID, jobID string) string {
	return fmt.Sprintf("machine %s for job %s not found; machine status not synchronized", machineID, jobID)
}
