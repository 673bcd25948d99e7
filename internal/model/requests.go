package model

import "github.com/shopspring/decimal"

// DateLayout is the calendar date format used by request payloads.
const DateLayout = "2006-01-02"

// CreateJobRequest represents the request to plan a new job
type CreateJobRequest struct {
	CustomerType        CustomerType       `json:"customerType" validate:"required,oneof=CONTRACT INDIVIDUAL"`
	Customer            string             `json:"customer" validate:"required"`
	ContractID          string             `json:"contractId" validate:"required_if=CustomerType CONTRACT,excluded_if=CustomerType INDIVIDUAL"`
	ContactPerson       string             `json:"contactPerson" validate:"required_if=CustomerType INDIVIDUAL,excluded_if=CustomerType CONTRACT"`
	PartName            string             `json:"partName" validate:"required"`
	DrawingNo           string             `json:"drawingNo" validate:"required"`
	Revision            string             `json:"revision"`
	Qty                 int                `json:"qty" validate:"required,min=1"`
	Priority            Priority           `json:"priority" validate:"required,oneof=HIGH MEDIUM LOW"`
	DueDate             string             `json:"dueDate" validate:"required,datetime=2006-01-02"`
	MaterialID          string             `json:"materialId"`
	MachineID           string             `json:"machineId"`
	OperatorID          string             `json:"operatorId"`
	SpecialInstructions string             `json:"specialInstructions"`
	NotifyCustomer      bool               `json:"notifyCustomer"`
	Operations          []OperationRequest `json:"operations" validate:"omitempty,dive"`
}

// OperationRequest is one routing step supplied at job creation
type OperationRequest struct {
	ID          string          `json:"id"`
	Sequence    int             `json:"sequence" validate:"min=0"`
	Description string          `json:"description" validate:"required"`
	WorkCenter  string          `json:"workCenter" validate:"required"`
	EstTime     int             `json:"estTime" validate:"min=0"`
	Status      OperationStatus `json:"status" validate:"omitempty,oneof=PENDING COMPLETED"`
}

// TransitionRequest drives the generic status transition endpoint
type TransitionRequest struct {
	TargetStatus JobStatus             `json:"targetStatus" validate:"required,oneof=PENDING RUNNING PAUSED QC_PENDING COMPLETED HOLD CANCELLED"`
	Message      string                `json:"message"`
	Report       *ProductionReportBody `json:"report" validate:"omitempty"`
	ApprovedQty  *int                  `json:"approvedQty" validate:"omitempty,min=0"`
}

// ProductionReportBody carries the quantities an operator reports
type ProductionReportBody struct {
	CompletedQty int `json:"completedQty" validate:"min=0"`
	ScrapQty     int `json:"scrapQty" validate:"min=0"`
}

// ReasonRequest is used by pause, hold, recall, reject and cancel
type ReasonRequest struct {
	Reason string `json:"reason"`
}

// ApproveRequest is sent by quality control when accepting a job
type ApproveRequest struct {
	ApprovedQty int `json:"approvedQty" validate:"min=0"`
}

// TransferRequest re-points a job to another machine and/or operator
type TransferRequest struct {
	MachineID  string `json:"machineId" validate:"required_without=OperatorID"`
	OperatorID string `json:"operatorId" validate:"required_without=MachineID"`
	Reason     string `json:"reason" validate:"required"`
}

// AppendLogRequest adds a free-form note to a job's history
type AppendLogRequest struct {
	Type    LogType `json:"type" validate:"omitempty,oneof=START PAUSE RESUME QC_SUBMIT QC_APPROVE COMPLETE HOLD TRANSFER INFO"`
	Message string  `json:"message" validate:"required"`
}

// StockMovementRequest represents an inward or outward material movement
type StockMovementRequest struct {
	Qty       decimal.Decimal `json:"qty"`
	Direction Direction       `json:"direction" validate:"required,oneof=INWARD OUTWARD"`
	Reference string          `json:"reference" validate:"required"`
}

// MachineStatusRequest is the external maintenance override
type MachineStatusRequest struct {
	Status MachineStatus `json:"status" validate:"required,oneof=IDLE DOWN MAINTENANCE"`
}

// ScheduleMaintenanceRequest books a maintenance task for a machine
type ScheduleMaintenanceRequest struct {
	Type        MaintenanceType `json:"type" validate:"required,oneof=PREVENTIVE BREAKDOWN"`
	Description string          `json:"description" validate:"required"`
	Date        string          `json:"date" validate:"required,datetime=2006-01-02"`
	Technician  string          `json:"technician"`
}

// CreateUserRequest adds a shop-floor user
type CreateUserRequest struct {
	ID     string `json:"id"`
	Name   string `json:"name" validate:"required"`
	Role   Role   `json:"role" validate:"required,oneof=ADMIN PLANNER OPERATOR QUALITY"`
	Avatar string `json:"avatar" validate:"omitempty,url"`
}

// TokenRequest asks for a caller token for an existing user
type TokenRequest struct {
	UserID string `json:"userId" validate:"required"`
}

// TokenResponse is returned by the token endpoint
type TokenResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
