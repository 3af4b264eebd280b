package nomi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClient_SendMessage(t *testing.T) {
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/nomis/nomi-123/chat" {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if r.Header.Get("Authorization") != "test-key" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		json.NewDecoder(r.Body).Decode(&gotBody)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"sentMessage": map[string]any{
				"uuid": "m1", "text": gotBody["messageText"], "sent": "2026-01-01T00:00:00Z",
			},
			"replyMessage": map[string]any{
				"uuid": "m2", "text": "Hi there! 💕", "sent": "2026-01-01T00:00:02Z",
			},
		})
	}))
	defer server.Close()

	c := NewClient("test-key", "nomi-123", WithBaseURL(server.URL))

	reply, err := c.SendMessage(t.Context(), "hello")
	if err != nil {
		t.Fatalf("SendMessage() error: %v", err)
	}
	if reply != "Hi there! 💕" {
		t.Errorf("reply = %q, want %q", reply, "Hi there! 💕")
	}
	if gotBody["messageText"] != "hello" {
		t.Errorf("messageText = %v, want hello", gotBody["messageText"])
	}
}

func TestClient_SendMessageAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"type": "RateLimitExceeded"},
		})
	}))
	defer server.Close()

	c := NewClient("test-key", "nomi-123", WithBaseURL(server.URL))

	_, err := c.SendMessage(t.Context(), "hello")
	if err == nil {
		t.Fatal("SendMessage(): want error on 429")
	}
	if got := err.Error(); got != "nomi API error (HTTP 429): RateLimitExceeded" {
		t.Errorf("error = %q", got)
	}
}

func TestClient_SendMessagePlainErrorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer server.Close()

	c := NewClient("test-key", "nomi-123", WithBaseURL(server.URL))

	_, err := c.SendMessage(t.Context(), "hello")
	if err == nil {
		t.Fatal("SendMessage(): want error on 502")
	}
	if got := err.Error(); got != "nomi API error: HTTP 502" {
		t.Errorf("error = %q", got)
	}
}

func TestClient_FetchProfile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/v1/nomis/nomi-123" {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"uuid":    "nomi-123",
			"name":    "Vicky",
			"gender":  "female",
			"created": "2025-06-15T10:00:00Z",
		})
	}))
	defer server.Close()

	c := NewClient("test-key", "nomi-123", WithBaseURL(server.URL))

	p, err := c.FetchProfile(t.Context())
	if err != nil {
		t.Fatalf("FetchProfile() error: %v", err)
	}
	if p.Name != "Vicky" {
		t.Errorf("Name = %q, want Vicky", p.Name)
	}
}

func TestWithBaseURL_TrimsTrailingSlash(t *testing.T) {
	c := NewClient("k", "id", WithBaseURL("https://example.com/"))
	if c.baseURL != "https://example.com" {
		t.Errorf("baseURL = %q", c.baseURL)
	}
}
