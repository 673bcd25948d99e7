package metrics

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopfloor/api/internal/model"
	"github.com/stretchr/testify/require"
)

func TestRecorderCounts(t *testing.T) {
	r := NewRecorder()
	ctx := context.Background()

	r.Observe(ctx, "transition_job", true, 2*time.Millisecond)
	r.Observe(ctx, "transition_job", false, time.Millisecond)
	r.Observe(ctx, "transition_job", true, time.Millisecond)
	r.Observe(ctx, "", true, time.Millisecond)
	r.JobTransitioned(model.JobStatusPending, model.JobStatusRunning)
	r.StockMoved(model.DirectionOutward, model.MaterialCritical)
	r.MachineSyncFailed()

	require.Equal(t, 2.0, testutil.ToFloat64(r.operations.WithLabelValues("transition_job", "success")))
	require.Equal(t, 1.0, testutil.ToFloat64(r.operations.WithLabelValues("transition_job", "error")))
	require.Equal(t, 1.0, testutil.ToFloat64(r.transitions.WithLabelValues("PENDING", "RUNNING")))
	require.Equal(t, 1.0, testutil.ToFloat64(r.movements.WithLabelValues("OUTWARD", "CRITICAL")))
	require.Equal(t, 1.0, testutil.ToFloat64(r.syncFailed))
	require.Equal(t, 1, testutil.CollectAndCount(r.durations))
}

func TestRecorderHandler(t *testing.T) {
	r := NewRecorder()
	r.JobTransitioned(model.JobStatusRunning, model.JobStatusPaused)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	require.True(t, strings.Contains(string(body), `shopfloor_job_transitions_total{from="RUNNING",to="PAUSED"} 1`))

	// recorders do not share state
	require.Equal(t, 0.0, testutil.ToFloat64(NewRecorder().syncFailed))
}
