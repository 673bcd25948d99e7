// Package seed loads the demonstration shop floor: four machines, three
// jobs in different lifecycle stages, four materials with their movement
// history and the default users.
package seed

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopfloor/api/internal/ledger"
	"github.com/shopfloor/api/internal/model"
	"github.com/shopspring/decimal"
)

// Data is a complete ledger snapshot.
type Data struct {
	Users        []model.User
	Machines     []model.Machine
	Maintenance  []model.MaintenanceLog
	Materials    []model.Material
	Transactions []model.MaterialTransaction
	Jobs         []model.Job
}

// ErrUnbalanced is returned by Load when a material's stock differs from
// the sum of its movements.
var ErrUnbalanced = errors.New("stock does not match movements")

// Load inserts d into store. Records are inserted in dependency order so
// jobs, logs and transactions always reference existing entities.
func Load(store *ledger.Store, d Data) error {
	if err := checkBalances(d); err != nil {
		return err
	}
	for _, u := range d.Users {
		if err := store.InsertUser(u); err != nil {
			return fmt.Errorf("seed user: %w", err)
		}
	}
	for _, m := range d.Machines {
		if err := store.InsertMachine(m); err != nil {
			return fmt.Errorf("seed machine: %w", err)
		}
	}
	for _, l := range d.Maintenance {
		if !store.HasMachine(l.MachineID) {
			return fmt.Errorf("seed maintenance %s: machine %q: %w", l.ID, l.MachineID, ledger.ErrNotFound)
		}
		store.AppendMaintenance(l)
	}
	for _, m := range d.Materials {
		if err := store.InsertMaterial(m); err != nil {
			return fmt.Errorf("seed material: %w", err)
		}
	}
	for _, t := range d.Transactions {
		if err := store.AppendTransaction(t); err != nil {
			return fmt.Errorf("seed transaction %s: %w", t.ID, err)
		}
	}
	for _, j := range d.Jobs {
		j.TotalCycleTime = model.CycleTime(j.Operations)
		model.SortOperations(j.Operations)
		if err := store.InsertJob(j); err != nil {
			return fmt.Errorf("seed job: %w", err)
		}
	}
	return nil
}

// checkBalances requires every seeded stock to equal the fold of its
// movements, so the transaction history replays to the shown balance.
func checkBalances(d Data) error {
	sums := make(map[string]decimal.Decimal, len(d.Materials))
	for _, t := range d.Transactions {
		if t.Type == model.DirectionInward {
			sums[t.MaterialID] = sums[t.MaterialID].Add(t.Qty)
		} else {
			sums[t.MaterialID] = sums[t.MaterialID].Sub(t.Qty)
		}
	}
	for _, m := range d.Materials {
		if !sums[m.ID].Equal(m.Stock) {
			return fmt.Errorf("seed material %s: stock %s, movements %s: %w", m.ID, m.Stock, sums[m.ID], ErrUnbalanced)
		}
	}
	return nil
}

func day(s string) time.Time {
	t, err := time.Parse(model.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func at(date, clock string) time.Time {
	t, err := time.Parse(model.DateLayout+" 15:04", date+" "+clock)
	if err != nil {
		panic(err)
	}
	return t
}

func qty(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

// Default returns the demonstration data set.
func Default() Data {
	return Data{
		Users: []model.User{
			{ID: "ADMIN-01", Name: "Vikram Seth (Planner)", Role: model.RolePlanner, Avatar: "https://i.pravatar.cc/150?u=a"},
			{ID: "OP-01", Name: "Ramesh Kumar", Role: model.RoleOperator, Avatar: "https://i.pravatar.cc/150?u=b"},
			{ID: "OP-02", Name: "Suresh Yadav", Role: model.RoleOperator, Avatar: "https://i.pravatar.cc/150?u=c"},
		},
		Machines: []model.Machine{
			{ID: "M-001", Name: "VMC-Haas-VF2", Type: "VMC", Status: model.MachineStatusRunning, CurrentJobID: "JOB-101", CurrentOperatorID: "OP-01", Efficiency: 92, LastMaintenance: day("2023-10-15"), NextMaintenance: day("2023-11-15"), TotalRunHours: 1240},
			{ID: "M-002", Name: "CNC-Turn-01", Type: "Turning", Status: model.MachineStatusIdle, Efficiency: 85, LastMaintenance: day("2023-10-01"), NextMaintenance: day("2023-11-01"), TotalRunHours: 850},
			{ID: "M-003", Name: "Wirecut-Sodic", Type: "Wirecut", Status: model.MachineStatusDown, Efficiency: 45, LastMaintenance: day("2023-09-20"), NextMaintenance: day("2023-10-20"), TotalRunHours: 2100},
			{ID: "M-004", Name: "Grinder-Surface", Type: "Grinding", Status: model.MachineStatusMaintenance, Efficiency: 78, LastMaintenance: day("2023-10-25"), NextMaintenance: day("2023-11-25"), TotalRunHours: 430},
		},
		Maintenance: []model.MaintenanceLog{
			{ID: "MT-01", MachineID: "M-004", Type: model.MaintenancePreventive, Description: "Monthly Lubrication & Alignment", Date: day("2023-11-05"), Technician: "Service Team A", Status: model.MaintenanceScheduled},
			{ID: "MT-02", MachineID: "M-003", Type: model.MaintenanceBreakdown, Description: "Wire Guide Replacement", Date: day("2023-11-04"), Technician: "External Vendor", Status: model.MaintenanceCompleted},
		},
		Materials: []model.Material{
			{ID: "MAT-01", Name: "Aluminium 6061 Block", SKU: "AL-6061-BLK", Stock: qty(45), Unit: "pcs", MinLevel: qty(20)},
			{ID: "MAT-02", Name: "SS 304 Rod Ø20mm", SKU: "SS-304-R20", Stock: qty(120), Unit: "meters", MinLevel: qty(50)},
			{ID: "MAT-03", Name: "Coolant Oil - Synthetic", SKU: "COOL-SYN-200", Stock: qty(15), Unit: "liters", MinLevel: qty(40)},
			{ID: "MAT-04", Name: "Carbide Insert TNMG", SKU: "INS-TNMG-16", Stock: qty(24), Unit: "box", MinLevel: qty(30)},
		},
		Transactions: []model.MaterialTransaction{
			{ID: "TRX-01", MaterialID: "MAT-01", Type: model.DirectionInward, Qty: qty(50), Date: day("2023-11-01"), Reference: "PO-9921", PerformedBy: "Store Keeper"},
			{ID: "TRX-02", MaterialID: "MAT-02", Type: model.DirectionOutward, Qty: qty(10), Date: day("2023-11-02"), Reference: "JOB-101", PerformedBy: "Ramesh"},
			{ID: "TRX-03", MaterialID: "MAT-01", Type: model.DirectionOutward, Qty: qty(5), Date: day("2023-11-03"), Reference: "JOB-101", PerformedBy: "Ramesh"},
			{ID: "TRX-04", MaterialID: "MAT-04", Type: model.DirectionInward, Qty: qty(100), Date: day("2023-10-25"), Reference: "PO-9000", PerformedBy: "Admin"},
			{ID: "TRX-05", MaterialID: "MAT-02", Type: model.DirectionInward, Qty: qty(130), Date: day("2023-10-01"), Reference: "OPENING-BALANCE", PerformedBy: "Admin"},
			{ID: "TRX-06", MaterialID: "MAT-03", Type: model.DirectionInward, Qty: qty(15), Date: day("2023-10-01"), Reference: "OPENING-BALANCE", PerformedBy: "Admin"},
			{ID: "TRX-07", MaterialID: "MAT-04", Type: model.DirectionOutward, Qty: qty(76), Date: day("2023-10-31"), Reference: "JOB-098", PerformedBy: "Ramesh"},
		},
		Jobs: []model.Job{
			{
				ID:                  "JOB-101",
				CustomerType:        model.CustomerContract,
				Customer:            "Tata Motors",
				ContractID:          "CTR-2023-001",
				PartName:            "Gear Box Housing",
				DrawingNo:           "TM-GBH-001",
				Revision:            "v2",
				Qty:                 50,
				CompletedQty:        12,
				Status:              model.JobStatusRunning,
				CurrentMachineID:    "M-001",
				AssignedOperatorID:  "OP-01",
				Priority:            model.PriorityHigh,
				DueDate:             day("2023-11-20"),
				MaterialID:          "MAT-01",
				SpecialInstructions: "Ensure surface finish Ra 1.6 on mating faces.",
				Operations: []model.Operation{
					{ID: "op1", Sequence: 10, Description: "Rough Facing", WorkCenter: "VMC", EstTime: 15, Status: model.OperationCompleted},
					{ID: "op2", Sequence: 20, Description: "Drill & Tap M10", WorkCenter: "VMC", EstTime: 8, Status: model.OperationPending},
					{ID: "op3", Sequence: 30, Description: "Final Inspection", WorkCenter: "QC", EstTime: 5, Status: model.OperationPending},
				},
				Logs: []model.JobLog{
					{ID: "l1", Timestamp: at("2023-11-06", "09:00"), Type: model.LogTypeStart, Message: "Job Started", User: "Ramesh"},
				},
				CreatedAt: at("2023-11-06", "08:30"),
				UpdatedAt: at("2023-11-06", "09:00"),
			},
			{
				ID:                  "JOB-102",
				CustomerType:        model.CustomerContract,
				Customer:            "Mahindra",
				ContractID:          "CTR-2023-045",
				PartName:            "Axle Shaft",
				DrawingNo:           "MM-AX-22",
				Revision:            "v1",
				Qty:                 100,
				CompletedQty:        100,
				ScrapQty:            2,
				Status:              model.JobStatusQCPending,
				CurrentMachineID:    "M-002",
				AssignedOperatorID:  "OP-01",
				Priority:            model.PriorityMedium,
				DueDate:             day("2023-11-25"),
				MaterialID:          "MAT-02",
				SpecialInstructions: "Check concentricity after turning.",
				Operations: []model.Operation{
					{ID: "op1", Sequence: 10, Description: "Turning OD", WorkCenter: "Turning", EstTime: 12, Status: model.OperationCompleted},
					{ID: "op2", Sequence: 20, Description: "Grooving", WorkCenter: "Turning", EstTime: 4, Status: model.OperationCompleted},
				},
				Logs: []model.JobLog{
					{ID: "l2a", Timestamp: at("2023-11-06", "08:00"), Type: model.LogTypeStart, Message: "Job Started", User: "Ramesh"},
					{ID: "l2b", Timestamp: at("2023-11-06", "14:30"), Type: model.LogTypeQCSubmit, Message: "Submitted for QC inspection", User: "Ramesh"},
				},
				CreatedAt: at("2023-11-06", "07:45"),
				UpdatedAt: at("2023-11-06", "14:30"),
			},
			{
				ID:                 "JOB-103",
				CustomerType:       model.CustomerIndividual,
				Customer:           "Bosch",
				ContactPerson:      "Mr. Adithya",
				PartName:           "Fuel Pump Base",
				DrawingNo:          "B-FP-99",
				Revision:           "v3",
				Qty:                200,
				CompletedQty:       45,
				ScrapQty:           2,
				Status:             model.JobStatusHold,
				CurrentMachineID:   "M-002",
				AssignedOperatorID: "OP-02",
				Priority:           model.PriorityLow,
				DueDate:            day("2023-12-01"),
				Operations: []model.Operation{
					{ID: "op1", Sequence: 10, Description: "Profile Cutting", WorkCenter: "Wirecut", EstTime: 45, Status: model.OperationPending},
				},
				Logs: []model.JobLog{
					{ID: "l3", Timestamp: at("2023-11-06", "10:30"), Type: model.LogTypeHold, Message: "Material shortage detected", User: "Supervisor"},
				},
				CreatedAt: at("2023-11-05", "16:00"),
				UpdatedAt: at("2023-11-06", "10:30"),
			},
		},
	}
}
