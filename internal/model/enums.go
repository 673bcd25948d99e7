package model

// Job status
type JobStatus string

const (
	JobStatusPending   JobStatus = "PENDING"
	JobStatusRunning   JobStatus = "RUNNING"
	JobStatusPaused    JobStatus = "PAUSED"
	JobStatusQCPending JobStatus = "QC_PENDING"
	JobStatusCompleted JobStatus = "COMPLETED"
	JobStatusHold      JobStatus = "HOLD"
	JobStatusCancelled JobStatus = "CANCELLED"
)

var ValidJobStatuses = []JobStatus{
	JobStatusPending, JobStatusRunning, JobStatusPaused, JobStatusQCPending,
	JobStatusCompleted, JobStatusHold, JobStatusCancelled,
}

// Valid reports whether s is one of the seven job statuses.
func (s JobStatus) Valid() bool {
	for _, v := range ValidJobStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition is accepted from s.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusCancelled
}

// Machine status
type MachineStatus string

const (
	MachineStatusIdle        MachineStatus = "IDLE"
	MachineStatusRunning     MachineStatus = "RUNNING"
	MachineStatusDown        MachineStatus = "DOWN"
	MachineStatusMaintenance MachineStatus = "MAINTENANCE"
)

func (s MachineStatus) Valid() bool {
	switch s {
	case MachineStatusIdle, MachineStatusRunning, MachineStatusDown, MachineStatusMaintenance:
		return true
	}
	return false
}

// Log types
type LogType string

const (
	LogTypeStart     LogType = "START"
	LogTypePause     LogType = "PAUSE"
	LogTypeResume    LogType = "RESUME"
	LogTypeQCSubmit  LogType = "QC_SUBMIT"
	LogTypeQCApprove LogType = "QC_APPROVE"
	LogTypeComplete  LogType = "COMPLETE"
	LogTypeHold      LogType = "HOLD"
	LogTypeTransfer  LogType = "TRANSFER"
	LogTypeInfo      LogType = "INFO"
)

var ValidLogTypes = []LogType{
	LogTypeStart, LogTypePause, LogTypeResume, LogTypeQCSubmit, LogTypeQCApprove,
	LogTypeComplete, LogTypeHold, LogTypeTransfer, LogTypeInfo,
}

func (t LogType) Valid() bool {
	for _, v := range ValidLogTypes {
		if t == v {
			return true
		}
	}
	return false
}

// Customer types
type CustomerType string

const (
	CustomerContract   CustomerType = "CONTRACT"
	CustomerIndividual CustomerType = "INDIVIDUAL"
)

// Priorities
type Priority string

const (
	PriorityHigh   Priority = "HIGH"
	PriorityMedium Priority = "MEDIUM"
	PriorityLow    Priority = "LOW"
)

func (p Priority) Valid() bool {
	return p == PriorityHigh || p == PriorityMedium || p == PriorityLow
}

// Operation status
type OperationStatus string

const (
	OperationPending   OperationStatus = "PENDING"
	OperationCompleted OperationStatus = "COMPLETED"
)

// Material stock status
type MaterialStatus string

const (
	MaterialInStock  MaterialStatus = "IN_STOCK"
	MaterialLowStock MaterialStatus = "LOW_STOCK"
	MaterialCritical MaterialStatus = "CRITICAL"
)

// severity orders stock statuses from healthy to critical.
func (s MaterialStatus) severity() int {
	switch s {
	case MaterialLowStock:
		return 1
	case MaterialCritical:
		return 2
	}
	return 0
}

// Worse reports whether s is a more severe stock status than prev.
func (s MaterialStatus) Worse(prev MaterialStatus) bool {
	return s.severity() > prev.severity()
}

// Stock movement direction
type Direction string

const (
	DirectionInward  Direction = "INWARD"
	DirectionOutward Direction = "OUTWARD"
)

func (d Direction) Valid() bool {
	return d == DirectionInward || d == DirectionOutward
}

// Maintenance
type MaintenanceType string

const (
	MaintenancePreventive MaintenanceType = "PREVENTIVE"
	MaintenanceBreakdown  MaintenanceType = "BREAKDOWN"
)

type MaintenanceStatus string

const (
	MaintenanceScheduled MaintenanceStatus = "SCHEDULED"
	MaintenanceCompleted MaintenanceStatus = "COMPLETED"
)

// Roles
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RolePlanner  Role = "PLANNER"
	RoleOperator Role = "OPERATOR"
	RoleQuality  Role = "QUALITY"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RolePlanner, RoleOperator, RoleQuality:
		return true
	}
	return false
}
