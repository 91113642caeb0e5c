package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mdrrmo4516/PIODURAN-PROCUREMENT-FINAL/internal/procurement/handler"
	"github.com/mdrrmo4516/PIODURAN-PROCUREMENT-FINAL/internal/procurement/testutil"
	"github.com/mdrrmo4516/PIODURAN-PROCUREMENT-FINAL/internal/shared/sse"
)

func TestNotificationEndpoints(t *testing.T) {
	env := testutil.NewEnv(t, nil)
	createPurchase(t, env, "First")
	createPurchase(t, env, "Second")

	w := testutil.DoRequest(env.Router, http.MethodGet, "/api/notifications/unread-count", nil, "")
	if n := testutil.ParseResponse(w)["data"].(map[string]interface{})["count"].(float64); n != 2 {
		t.Fatalf("expected 2 unread, got %v", n)
	}

	w = testutil.DoRequest(env.Router, http.MethodGet, "/api/notifications", nil, "")
	list := testutil.ParseResponse(w)["data"].([]interface{})
	if len(list) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(list))
	}
	first := list[0].(map[string]interface{})
	if first["type"] != "purchase_created" {
		t.Fatalf("unexpected type %v", first["type"])
	}

	w = testutil.DoRequest(env.Router, http.MethodPost, "/api/notifications/"+first["id"].(string)+"/read", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("mark read: expected 200, got %d", w.Code)
	}
	w = testutil.DoRequest(env.Router, http.MethodGet, "/api/notifications?unread=true", nil, "")
	if list := testutil.ParseResponse(w)["data"].([]interface{}); len(list) != 1 {
		t.Fatalf("expected one unread, got %d", len(list))
	}

	w = testutil.DoRequest(env.Router, http.MethodPost, "/api/notifications/read-all", nil, "")
	if n := testutil.ParseResponse(w)["data"].(map[string]interface{})["updated"].(float64); n != 1 {
		t.Fatalf("expected one marked, got %v", n)
	}

	w = testutil.DoRequest(env.Router, http.MethodDelete, "/api/notifications/"+first["id"].(string), nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", w.Code)
	}
	w = testutil.DoRequest(env.Router, http.MethodPost, "/api/notifications/"+first["id"].(string)+"/read", nil, "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for a deleted notification, got %d", w.Code)
	}
}

func TestStreamDeliversEvents(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := sse.NewHub(nil)
	r := gin.New()
	r.GET("/stream", handler.NewSSEHandler(hub).Stream)

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/stream", nil).WithContext(ctx)
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		r.ServeHTTP(w, req)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("stream client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}
	hub.Broadcast(sse.Event{Type: "notification", Data: `{"id":"n1"}`})
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("stream did not end after the client went away")
	}
	body := w.Body.String()
	if !strings.Contains(body, "event: connected") || !strings.Contains(body, "event: notification\ndata: {\"id\":\"n1\"}") {
		t.Fatalf("unexpected stream body %q", body)
	}
	if hub.ClientCount() != 0 {
		t.Fatalf("client not unregistered")
	}
}
