package monitoring

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestHubBroadcastsPredictions(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(nil, nil)
	go hub.Run(ctx)

	server := httptest.NewServer(http.HandlerFunc(hub.HandleWebSocket))
	defer server.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() != 1 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	event := PredictionMessage{SessionID: "s1", Disease: "Allergy", Probability: 0.9, Symptoms: []string{"chills"}}
	if err := hub.Publish(PredictionEvent, event); err != nil {
		t.Fatalf("publish: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	if msg.Type != PredictionEvent || msg.ID == "" {
		t.Fatalf("unexpected message %+v", msg)
	}
	var got PredictionMessage
	if err := json.Unmarshal(msg.Data, &got); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if got.Disease != "Allergy" || got.SessionID != "s1" {
		t.Fatalf("unexpected payload %+v", got)
	}
}

func TestHubSendsHeartbeats(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(nil, nil)
	hub.SetHeartbeatInterval(20 * time.Millisecond)
	go hub.Run(ctx)

	server := httptest.NewServer(http.HandlerFunc(hub.HandleWebSocket))
	defer server.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	if msg.Type != Heartbeat {
		t.Fatalf("expected heartbeat, got %+v", msg)
	}
	var got HeartbeatMessage
	if err := json.Unmarshal(msg.Data, &got); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if got.Clients != 1 {
		t.Fatalf("expected 1 client in heartbeat, got %d", got.Clients)
	}
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"https://clinic.example"})
	allowed := httptest.NewRequest(http.MethodGet, "/", nil)
	allowed.Header.Set("Origin", "https://clinic.example")
	denied := httptest.NewRequest(http.MethodGet, "/", nil)
	denied.Header.Set("Origin", "https://evil.example")

	if !check(allowed) || check(denied) {
		t.Fatal("origin checker did not filter origins")
	}
	if !originChecker([]string{"*"})(denied) {
		t.Fatal("wildcard should allow every origin")
	}
}

func TestMetricsExport(t *testing.T) {
	m := NewMetrics()
	m.RecordPrediction("Allergy", 1, 2*time.Millisecond)
	m.RecordPrediction("Allergy", 0, 4*time.Millisecond)
	m.RecordPrediction("Drug Reaction", 0, 3*time.Millisecond)
	m.RecordFailure()
	m.RecordModelReload()

	s := m.Snapshot()
	if s.Predictions != 3 || s.Failures != 1 || s.UnknownSymptoms != 1 || s.ModelReloads != 1 {
		t.Fatalf("unexpected snapshot %+v", s)
	}
	if s.AverageLatency != 3 {
		t.Fatalf("expected 3ms average, got %v", s.AverageLatency)
	}

	var b strings.Builder
	if err := m.ExportPrometheus(&b); err != nil {
		t.Fatalf("export: %v", err)
	}
	out := b.String()
	for _, want := range []string{
		"diseasepredict_predictions_total 3\n",
		`diseasepredict_predictions_by_disease{disease="Allergy"} 2`,
		`diseasepredict_predictions_by_disease{disease="Drug Reaction"} 1`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
}
