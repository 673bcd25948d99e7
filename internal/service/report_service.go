package service

import (
	"context"
	"math"

	"github.com/shopfloor/api/internal/ledger"
	"github.com/shopfloor/api/internal/model"
	"github.com/shopspring/decimal"
)

// ReportService computes dashboard summaries from ledger snapshots.
type ReportService struct {
	core
}

// NewReportService creates a new report service
func NewReportService(store *ledger.Store, opts ...Option) *ReportService {
	return &ReportService{core: newCore(store, opts)}
}

// Summary aggregates production, machine and inventory figures.
func (s *ReportService) Summary(ctx context.Context) model.SummaryReport {
	jobs := s.store.ListJobs()
	prod := model.ProductionSummary{
		TotalJobs: len(jobs),
		ByStatus:  make(map[model.JobStatus]int),
	}
	for _, j := range jobs {
		prod.ByStatus[j.Status]++
		if j.Status == model.JobStatusCompleted {
			prod.CompletedJobs++
		}
		prod.TotalProduced += j.CompletedQty
		prod.TotalScrap += j.ScrapQty
	}
	if prod.TotalProduced > 0 {
		rate := float64(prod.TotalScrap) / float64(prod.TotalProduced) * 100
		prod.RejectRate = math.Round(rate*10) / 10
	}

	machines := make(map[model.MachineStatus]int)
	for _, m := range s.store.ListMachines() {
		machines[m.Status]++
	}

	materials := s.store.ListMaterials()
	usage := make(map[string]*model.MaterialUsage, len(materials))
	inventory := make([]model.MaterialUsage, len(materials))
	for i, m := range materials {
		inventory[i] = model.MaterialUsage{Material: m, Inward: decimal.Zero, Consumed: decimal.Zero}
		usage[m.ID] = &inventory[i]
	}
	for _, t := range s.store.ListTransactions("") {
		u, ok := usage[t.MaterialID]
		if !ok {
			continue
		}
		if t.Type == model.DirectionInward {
			u.Inward = u.Inward.Add(t.Qty)
		} else {
			u.Consumed = u.Consumed.Add(t.Qty)
		}
	}

	return model.SummaryReport{Production: prod, Machines: machines, Inventory: inventory}
}
