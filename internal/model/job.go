package model

import (
	"sort"
	"time"
)

// Job is a manufacturing work order tracked from creation to completion
// or cancellation. A job exclusively owns its operations and logs.
type Job struct {
	ID                  string       `json:"id"`
	CustomerType        CustomerType `json:"customerType"`
	Customer            string       `json:"customer"`
	ContractID          string       `json:"contractId,omitempty"`
	ContactPerson       string       `json:"contactPerson,omitempty"`
	PartName            string       `json:"partName"`
	DrawingNo           string       `json:"drawingNo"`
	Revision            string       `json:"revision"`
	Qty                 int          `json:"qty"`
	CompletedQty        int          `json:"completedQty"`
	ScrapQty            int          `json:"scrapQty"`
	Status              JobStatus    `json:"status"`
	CurrentMachineID    string       `json:"currentMachineId,omitempty"`
	AssignedOperatorID  string       `json:"assignedOperatorId,omitempty"`
	Priority            Priority     `json:"priority"`
	DueDate             time.Time    `json:"dueDate"`
	MaterialID          string       `json:"materialId,omitempty"`
	SpecialInstructions string       `json:"specialInstructions,omitempty"`
	NotifyCustomer      bool         `json:"notifyCustomer"`
	TotalCycleTime      int          `json:"totalCycleTime"`
	Operations          []Operation  `json:"operations"`
	Logs                []JobLog     `json:"logs"`
	CreatedAt           time.Time    `json:"createdAt"`
	UpdatedAt           time.Time    `json:"updatedAt"`
}

// Operation is one routing step of a job's process plan.
type Operation struct {
	ID          string          `json:"id"`
	Sequence    int             `json:"sequence"`
	Description string          `json:"description"`
	WorkCenter  string          `json:"workCenter"`
	EstTime     int             `json:"estTime"` // minutes
	Status      OperationStatus `json:"status"`
}

// JobLog is an immutable audit entry appended on every state change.
type JobLog struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Type      LogType   `json:"type"`
	Message   string    `json:"message"`
	User      string    `json:"user"`
}

// Clone returns a deep copy so callers never share slices with the store.
func (j Job) Clone() Job {
	cp := j
	cp.Operations = append([]Operation(nil), j.Operations...)
	cp.Logs = append([]JobLog(nil), j.Logs...)
	return cp
}

// SortOperations orders operations by ascending sequence, keeping
// insertion order for equal sequence numbers.
func SortOperations(ops []Operation) {
	sort.SliceStable(ops, func(i, k int) bool {
		return ops[i].Sequence < ops[k].Sequence
	})
}

// SortLogsByTime returns a copy of logs ordered by timestamp. Entries that
// share a timestamp keep their insertion order.
func SortLogsByTime(logs []JobLog) []JobLog {
	out := append([]JobLog(nil), logs...)
	sort.SliceStable(out, func(i, k int) bool {
		return out[i].Timestamp.Before(out[k].Timestamp)
	})
	return out
}

// CycleTime sums the estimated minutes of all operations.
func CycleTime(ops []Operation) int {
	total := 0
	for _, op := range ops {
		total += op.EstTime
	}
	return total
}

// transitions lists the status edges callers may request. HOLD and
// CANCELLED are reachable from every non-terminal status and are handled
// in CanTransition.
var transitions = map[JobStatus][]JobStatus{
	JobStatusPending:   {JobStatusRunning},
	JobStatusRunning:   {JobStatusPaused, JobStatusQCPending},
	JobStatusPaused:    {JobStatusRunning},
	JobStatusQCPending: {JobStatusCompleted, JobStatusHold},
	JobStatusHold:      {JobStatusPending},
}

// CanTransition reports whether a job in status from may move to status to.
func CanTransition(from, to JobStatus) bool {
	if !from.Valid() || !to.Valid() || from.Terminal() || from == to {
		return false
	}
	if to == JobStatusHold || to == JobStatusCancelled {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// LogTypeFor derives the audit log type written for a transition into s.
func LogTypeFor(s JobStatus) LogType {
	switch s {
	case JobStatusRunning:
		return LogTypeStart
	case JobStatusPaused:
		return LogTypePause
	case JobStatusQCPending:
		return LogTypeQCSubmit
	case JobStatusCompleted:
		return LogTypeComplete
	default:
		return LogTypeInfo
	}
}
