package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"doc-llm-pipeline/constants"
	"doc-llm-pipeline/internal/jobs"
)

func newHubServer(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	hub := NewHub(nil)
	srv := httptest.NewServer(http.HandlerFunc(hub.Handle))
	t.Cleanup(srv.Close)
	return hub, srv
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(url, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return conn
}

func waitForClients(t *testing.T, hub *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() != n {
		if time.Now().After(deadline) {
			t.Fatalf("clients = %d, want %d", hub.ClientCount(), n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHub_BroadcastJobUpdate(t *testing.T) {
	hub, srv := newHubServer(t)

	conn := dial(t, srv.URL)
	defer conn.Close()
	waitForClients(t, hub, 1)

	hub.Publish(jobs.Update{
		JobID:  "job-1",
		Status: constants.JobStatusCompleted,
		Result: &jobs.Result{TableCount: 1},
	})

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	var msg struct {
		Event  string              `json:"event"`
		JobID  string              `json:"job_id"`
		Status constants.JobStatus `json:"status"`
		Result *jobs.Result        `json:"result"`
	}
	if err := json.Unmarshal(raw, &msg); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if msg.Event != "job_update" {
		t.Fatalf("event = %q, want job_update", msg.Event)
	}
	if msg.JobID != "job-1" || msg.Status != constants.JobStatusCompleted {
		t.Fatalf("unexpected message: %+v", msg)
	}
	if msg.Result == nil || msg.Result.TableCount != 1 {
		t.Fatal("terminal update must carry the result")
	}
}

func TestHub_StalledClientNeverBlocksPublish(t *testing.T) {
	hub, srv := newHubServer(t)

	// connects and never reads, so its TCP buffers fill up
	stalled := dial(t, srv.URL)
	defer stalled.Close()
	waitForClients(t, hub, 1)

	big := strings.Repeat("x", 1<<20)
	update := jobs.Update{
		JobID:  "job-1",
		Status: constants.JobStatusInProgress,
		Result: &jobs.Result{Pages: []string{big}},
	}

	done := make(chan struct{})
	go func() {
		for i := 0; i < 64; i++ {
			hub.Publish(update)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("Publish blocked behind a non-reading client")
	}

	// the hub must still deliver to fresh subscribers
	reader := dial(t, srv.URL)
	defer reader.Close()
	for deadline := time.Now().Add(2 * time.Second); hub.ClientCount() == 0; {
		if time.Now().After(deadline) {
			t.Fatal("fresh client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	hub.Publish(jobs.Update{JobID: "job-2", Status: constants.JobStatusCompleted})
	_ = reader.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := reader.ReadMessage(); err != nil {
		t.Fatalf("fresh client read: %v", err)
	}
}

func TestHub_DroppedClientRemoved(t *testing.T) {
	hub, srv := newHubServer(t)

	conn := dial(t, srv.URL)
	waitForClients(t, hub, 1)

	conn.Close()
	// publishing to a closed peer must drop it, not error
	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() > 0 && time.Now().Before(deadline) {
		hub.Publish(jobs.Update{JobID: "x", Status: constants.JobStatusInProgress})
		time.Sleep(10 * time.Millisecond)
	}
	if hub.ClientCount() != 0 {
		t.Fatal("closed client should have been removed")
	}
}
