package service

import (
	"context"
	"strings"
	"time"

	"github.com/shopfloor/api/internal/ledger"
	"github.com/shopfloor/api/internal/model"
	"github.com/shopspring/decimal"
)

// StockService maintains material stock levels and their movement ledger.
type StockService struct {
	core
}

// NewStockService creates a new stock service
func NewStockService(store *ledger.Store, opts ...Option) *StockService {
	return &StockService{core: newCore(store, opts)}
}

// StockMovement is the committed result of MoveStock.
type StockMovement struct {
	Material    model.Material            `json:"material"`
	Transaction model.MaterialTransaction `json:"transaction"`
}

// MoveStock applies an inward or outward movement and records it.
func (s *StockService) MoveStock(ctx context.Context, materialID string, qty decimal.Decimal, direction model.Direction, reference string) (*StockMovement, error) {
	start := time.Now()
	mv, err := s.moveStock(ctx, materialID, qty, direction, reference)
	s.observe(ctx, "move_stock", err, start)
	return mv, err
}

func (s *StockService) moveStock(ctx context.Context, materialID string, qty decimal.Decimal, direction model.Direction, reference string) (*StockMovement, error) {
	const op = "MoveStock"
	if !qty.IsPositive() {
		return nil, invalidArgument(op, "qty must be positive, got %s", qty)
	}
	if !direction.Valid() {
		return nil, invalidArgument(op, "unknown direction %q", direction)
	}

	actor := ActorFrom(ctx)
	var previous model.MaterialStatus
	material, trx, err := s.store.MoveMaterial(materialID, func(m *model.Material) (model.MaterialTransaction, error) {
		previous = m.Status
		m.Apply(direction, qty)
		return model.MaterialTransaction{
			ID:          newID("TRX"),
			Type:        direction,
			Qty:         qty,
			Date:        s.now(),
			Reference:   strings.TrimSpace(reference),
			PerformedBy: actor.Name,
		}, nil
	})
	if err != nil {
		return nil, fromLedger(op, err)
	}

	s.metrics.StockMoved(direction, material.Status)
	s.publishers.MaterialChanged(material, &trx)
	if material.Status.Worse(previous) {
		s.publishers.StockAlert(material, previous)
	}
	return &StockMovement{Material: material, Transaction: trx}, nil
}

// GetMaterial returns a snapshot of one material.
func (s *StockService) GetMaterial(ctx context.Context, materialID string) (model.Material, error) {
	m, ok := s.store.GetMaterial(materialID)
	if !ok {
		return model.Material{}, notFound("GetMaterial", "material %s not found", materialID)
	}
	return m, nil
}

// ListMaterials returns all materials.
func (s *StockService) ListMaterials(ctx context.Context) []model.Material {
	return s.store.ListMaterials()
}

// ListTransactions returns recorded movements, optionally for one
// material.
func (s *StockService) ListTransactions(ctx context.Context, materialID string) ([]model.MaterialTransaction, error) {
	if materialID != "" && !s.store.HasMaterial(materialID) {
		return nil, notFound("ListTransactions", "material %s not found", materialID)
	}
	return s.store.ListTransactions(materialID), nil
}
