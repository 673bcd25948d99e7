package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Material is a stocked input tracked by a quantity ledger. Status is
// derived from Stock and MinLevel and stored alongside for cheap reads.
type Material struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	SKU      string          `json:"sku"`
	Stock    decimal.Decimal `json:"stock"`
	Unit     string          `json:"unit"`
	MinLevel decimal.Decimal `json:"minLevel"`
	Status   MaterialStatus  `json:"status"`
}

// MaterialTransaction is an immutable record of one stock movement.
type MaterialTransaction struct {
	ID          string          `json:"id"`
	MaterialID  string          `json:"materialId"`
	Type        Direction       `json:"type"`
	Qty         decimal.Decimal `json:"qty"`
	Date        time.Time       `json:"date"`
	Reference   string          `json:"reference"`
	PerformedBy string          `json:"performedBy"`
}

// ClassifyStock derives the stock status. It is the only place the rule
// lives; every stock mutator calls it.
func ClassifyStock(stock, minLevel decimal.Decimal) MaterialStatus {
	switch {
	case stock.LessThanOrEqual(decimal.Zero):
		return MaterialCritical
	case stock.LessThan(minLevel):
		return MaterialLowStock
	default:
		return MaterialInStock
	}
}

// Apply moves qty in the given direction and reclassifies the material.
func (m *Material) Apply(direction Direction, qty decimal.Decimal) {
	if direction == DirectionInward {
		m.Stock = m.Stock.Add(qty)
	} else {
		m.Stock = m.Stock.Sub(qty)
	}
	m.Status = ClassifyStock(m.Stock, m.MinLevel)
}
