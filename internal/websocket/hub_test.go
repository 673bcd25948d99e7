package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopfloor/api/internal/model"
	"github.com/shopspring/decimal"
)

func subscribe(t *testing.T, h *Hub, topic string) *Client {
	t.Helper()
	c := &Client{Topic: topic, Send: make(chan []byte, 8)}
	h.Register(c)
	deadline := time.Now().Add(time.Second)
	for h.Subscribers(topic) == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("client never subscribed to %s", topic)
		}
		time.Sleep(time.Millisecond)
	}
	return c
}

func receive(t *testing.T, c *Client, v any) {
	t.Helper()
	select {
	case data, ok := <-c.Send:
		if !ok {
			t.Fatal("client channel closed")
		}
		if err := json.Unmarshal(data, v); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("no message on %s", c.Topic)
	}
}

func TestHubRoutesByTopic(t *testing.T) {
	h := NewHub()
	go h.Run()
	defer h.Stop()

	all := subscribe(t, h, model.TopicJobs)
	one := subscribe(t, h, model.JobTopic("JOB-1"))
	machines := subscribe(t, h, model.TopicMachines)

	entry := &model.JobLog{ID: "LOG-1", Type: model.LogTypeStart, Message: "Operator started job"}
	h.BroadcastJob(model.Job{ID: "JOB-1", Status: model.JobStatusRunning}, entry)

	var msg model.WSJobMessage
	receive(t, all, &msg)
	if msg.Type != model.WSMessageTypeJob || msg.Job.ID != "JOB-1" || msg.Log == nil || msg.Log.ID != "LOG-1" {
		t.Errorf("unexpected jobs message: %+v", msg)
	}
	receive(t, one, &msg)
	if msg.Job.Status != model.JobStatusRunning {
		t.Errorf("Expected RUNNING, got %s", msg.Job.Status)
	}

	select {
	case data := <-machines.Send:
		t.Errorf("machines topic got %s", data)
	default:
	}
}

func TestPublisherAlerts(t *testing.T) {
	h := NewHub()
	go h.Run()
	defer h.Stop()

	alerts := subscribe(t, h, model.TopicAlerts)
	mat := model.Material{
		ID:       "MAT-01",
		Name:     "Aluminium 6061",
		Stock:    decimal.NewFromInt(-5),
		MinLevel: decimal.NewFromInt(20),
		Unit:     "kg",
		Status:   model.MaterialCritical,
	}

	NewPublisher(h, false).StockAlert(mat, model.MaterialLowStock)
	NewPublisher(h, true).StockAlert(mat, model.MaterialLowStock)

	var msg model.WSAlertMessage
	receive(t, alerts, &msg)
	if msg.Code != AlertCriticalStock || msg.Subject != "MAT-01" {
		t.Errorf("unexpected alert: %+v", msg)
	}
	select {
	case data := <-alerts.Send:
		t.Errorf("expected a single alert, got another: %s", data)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestStopClosesClients(t *testing.T) {
	h := NewHub()
	done := make(chan struct{})
	go func() {
		h.Run()
		close(done)
	}()

	c := subscribe(t, h, model.TopicMaterials)
	h.Stop()
	<-done

	if _, ok := <-c.Send; ok {
		t.Error("expected client channel to be closed")
	}
	// safe after stop
	h.Stop()
	h.Unregister(c)
}

func TestValidTopic(t *testing.T) {
	for topic, want := range map[string]bool{
		"jobs":      true,
		"machines":  true,
		"materials": true,
		"alerts":    true,
		"job:J-1":   true,
		"job:":      false,
		"users":     false,
		"":          false,
	} {
		if got := ValidTopic(topic); got != want {
			t.Errorf("ValidTopic(%q) = %v, want %v", topic, got, want)
		}
	}
}

func TestOfferAfterCloseDoesNotPanic(t *testing.T) {
	h := NewHub()
	done := make(chan struct{})
	go func() {
		h.Run()
		close(done)
	}()

	c := subscribe(t, h, model.TopicJobs)
	h.Stop()
	<-done

	// A ping answered after the hub closed the client must be dropped.
	if c.Offer([]byte(`{"type":"pong"}`)) {
		t.Error("expected offer to a closed client to fail")
	}
	c.Close()
}

func TestSlowClientIsDroppedAndClosed(t *testing.T) {
	h := NewHub()
	go h.Run()
	defer h.Stop()

	slow := &Client{Topic: model.TopicAlerts, Send: make(chan []byte, 1)}
	h.Register(slow)
	deadline := time.Now().Add(time.Second)
	for h.Subscribers(model.TopicAlerts) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never subscribed")
		}
		time.Sleep(time.Millisecond)
	}

	h.BroadcastAlert("A", "first", "MAT-1")
	h.BroadcastAlert("A", "second", "MAT-1")
	deadline = time.Now().Add(time.Second)
	for h.Subscribers(model.TopicAlerts) != 0 {
		if time.Now().After(deadline) {
			t.Fatal("slow client was not dropped")
		}
		time.Sleep(time.Millisecond)
	}

	if slow.Offer([]byte("late")) {
		t.Error("expected offer to a dropped client to fail")
	}
	// drain the buffered message, then observe the close
	<-slow.Send
	if _, ok := <-slow.Send; ok {
		t.Error("expected dropped client channel to be closed")
	}
}
