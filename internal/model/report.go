package model

import "github.com/shopspring/decimal"

// SummaryReport aggregates production, quality, machine and inventory
// figures for the dashboard and reports views.
type SummaryReport struct {
	Production ProductionSummary     `json:"production"`
	Machines   map[MachineStatus]int `json:"machines"`
	Inventory  []MaterialUsage       `json:"inventory"`
}

// ProductionSummary counts jobs and reported quantities.
type ProductionSummary struct {
	TotalJobs     int               `json:"totalJobs"`
	CompletedJobs int               `json:"completedJobs"`
	ByStatus      map[JobStatus]int `json:"byStatus"`
	TotalProduced int               `json:"totalProduced"`
	TotalScrap    int               `json:"totalScrap"`
	RejectRate    float64           `json:"rejectRate"` // percent of produced
}

// MaterialUsage is the inward and consumed totals for one material.
type MaterialUsage struct {
	Material Material        `json:"material"`
	Inward   decimal.Decimal `json:"inward"`
	Consumed decimal.Decimal `json:"consumed"`
}
