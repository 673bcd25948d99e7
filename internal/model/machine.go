package model

import "time"

// Machine is a physical resource that runs at most one job at a time.
type Machine struct {
	ID                string        `json:"id"`
	Name              string        `json:"name"`
	Type              string        `json:"type"`
	Status            MachineStatus `json:"status"`
	CurrentOperatorID string        `json:"currentOperatorId,omitempty"`
	CurrentJobID      string        `json:"currentJobId,omitempty"`
	Efficiency        float64       `json:"efficiency"`
	LastMaintenance   time.Time     `json:"lastMaintenance"`
	NextMaintenance   time.Time     `json:"nextMaintenance"`
	TotalRunHours     float64       `json:"totalRunHours"`
}

// Bind marks the machine as running jobID for operatorID.
func (m *Machine) Bind(jobID, operatorID string) {
	m.Status = MachineStatusRunning
	m.CurrentJobID = jobID
	m.CurrentOperatorID = operatorID
}

// Release drops the machine's job reference. A running machine returns to
// IDLE; DOWN and MAINTENANCE are kept.
func (m *Machine) Release() {
	if m.Status == MachineStatusRunning {
		m.Status = MachineStatusIdle
	}
	m.CurrentJobID = ""
	m.CurrentOperatorID = ""
}

// MaintenanceLog records a scheduled or completed maintenance task.
type MaintenanceLog struct {
	ID          string            `json:"id"`
	MachineID   string            `json:"machineId"`
	Type        MaintenanceType   `json:"type"`
	Description string            `json:"description"`
	Date        time.Time         `json:"date"`
	Technician  string            `json:"technician"`
	Status      MaintenanceStatus `json:"status"`
}
