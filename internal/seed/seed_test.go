package seed

import (
	"testing"

	"github.com/shopfloor/api/internal/ledger"
	"github.com/shopfloor/api/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestLoadDefault(t *testing.T) {
	store := ledger.NewStore()
	require.NoError(t, Load(store, Default()))

	require.Len(t, store.ListUsers(), 3)
	require.Len(t, store.ListMachines(), 4)
	require.Len(t, store.ListJobs(), 3)
	require.Len(t, store.ListMaterials(), 4)
	require.Len(t, store.ListTransactions(""), 7)
	require.Len(t, store.ListMaintenance(""), 2)

	// running machines and running jobs agree
	for _, m := range store.ListMachines() {
		if m.Status != model.MachineStatusRunning {
			require.Empty(t, m.CurrentJobID, m.ID)
			continue
		}
		job, ok := store.GetJob(m.CurrentJobID)
		require.True(t, ok)
		require.Equal(t, model.JobStatusRunning, job.Status)
		require.Equal(t, m.ID, job.CurrentMachineID)
	}
	id, ok := store.RunningJobOf("OP-01")
	require.True(t, ok)
	require.Equal(t, "JOB-101", id)

	job, _ := store.GetJob("JOB-101")
	require.Equal(t, 28, job.TotalCycleTime)

	coolant, _ := store.GetMaterial("MAT-03")
	require.Equal(t, model.MaterialLowStock, coolant.Status)
	inserts, _ := store.GetMaterial("MAT-04")
	require.Equal(t, model.MaterialLowStock, inserts.Status)

	// every stock replays from its movements
	for _, m := range store.ListMaterials() {
		sum := decimal.Zero
		for _, trx := range store.ListTransactions(m.ID) {
			if trx.Type == model.DirectionInward {
				sum = sum.Add(trx.Qty)
			} else {
				sum = sum.Sub(trx.Qty)
			}
		}
		require.True(t, sum.Equal(m.Stock), "%s: stock %s, movements %s", m.ID, m.Stock, sum)
	}
}

func TestLoadRejectsUnbalancedStock(t *testing.T) {
	d := Default()
	d.Materials[1].Stock = decimal.NewFromInt(121)
	require.ErrorIs(t, Load(ledger.NewStore(), d), ErrUnbalanced)
}

func TestLoadRejectsDanglingReferences(t *testing.T) {
	d := Default()
	d.Transactions = append(d.Transactions, model.MaterialTransaction{ID: "TRX-X", MaterialID: "MAT-99"})
	require.ErrorIs(t, Load(ledger.NewStore(), d), ledger.ErrNotFound)

	d = Default()
	d.Maintenance = append(d.Maintenance, model.MaintenanceLog{ID: "MT-X", MachineID: "M-999"})
	require.ErrorIs(t, Load(ledger.NewStore(), d), ledger.ErrNotFound)
}
