package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"
)

func TestHttpClient_GET(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/schedules/cal-1" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("start") != "2024-01-15" {
			t.Errorf("missing start query, got %q", r.URL.RawQuery)
		}
		if r.Header.Get("Authorization") != "Bearer token" {
			t.Errorf("custom header not forwarded")
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}))
	defer server.Close()

	c := NewHttpClient(server.URL, time.Second)
	c.Headers["Authorization"] = "Bearer token"

	resp, err := c.GET(context.Background(), "/schedules/cal-1", url.Values{"start": {"2024-01-15"}})
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	if !resp.IsSuccess() {
		t.Fatalf("unexpected status %d", resp.StatusCode)
	}
	var body map[string]string
	if err := resp.DecodeJSON(&body); err != nil || body["status"] != "ok" {
		t.Errorf("unexpected body %s (%v)", resp.Body, err)
	}
}

func TestHttpClient_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := NewHttpClient(server.URL, time.Second).GET(ctx, "/slow", nil); err == nil {
		t.Fatal("expected the request to be cancelled")
	}
}

func TestGetErrorMessage(t *testing.T) {
	tests := []struct {
		body string
		want string
	}{
		{`{"message":"calendar not found"}`, "calendar not found"},
		{`{"error":"bad range"}`, "bad range"},
		{`{"code":"NOT_FOUND"}`, "NOT_FOUND"},
		{`not json`, "status 502"},
	}
	for _, tt := range tests {
		resp := &Response{Response: &http.Response{StatusCode: http.StatusBadGateway}, Body: []byte(tt.body)}
		if got := GetErrorMessage(resp); got != tt.want {
			t.Errorf("GetErrorMessage(%s) = %q, want %q", tt.body, got, tt.want)
		}
	}
}
