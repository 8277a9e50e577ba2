package notifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dyli/olx-iphone-bot/internal/models"
)

func testListing() models.Listing {
	return models.Listing{
		Variant:     models.VariantIPhone13,
		Price:       1800,
		URL:         "https://www.olx.pl/d/oferta/iphone-13-ID1.html",
		Title:       "iPhone 13 128GB stan idealny",
		Description: "Sprzedam iPhone 13, bateria 89%, komplet w pudełku.",
	}
}

func TestSendPostsMessage(t *testing.T) {
	var gotPath string
	var gotPayload sendMessageRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotPayload); err != nil {
			t.Errorf("failed to decode payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewWithAPIBase("123:abc", "-100200", 4000, true, server.URL)
	if err := client.Send(context.Background(), testListing()); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	if gotPath != "/bot123:abc/sendMessage" {
		t.Errorf("request path = %q, want /bot123:abc/sendMessage", gotPath)
	}
	if gotPayload.ChatID != "-100200" {
		t.Errorf("chat_id = %q, want -100200", gotPayload.ChatID)
	}
	if gotPayload.ParseMode != "Markdown" {
		t.Errorf("parse_mode = %q, want Markdown", gotPayload.ParseMode)
	}
	for _, want := range []string{"iPhone 13", "1800.00 zł", "bateria 89%", "https://www.olx.pl/d/oferta/iphone-13-ID1.html"} {
		if !strings.Contains(gotPayload.Text, want) {
			t.Errorf("message text missing %q:\n%s", want, gotPayload.Text)
		}
	}
}

func TestSendOmitsDescriptionWhenDisabled(t *testing.T) {
	var gotPayload sendMessageRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotPayload)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewWithAPIBase("123:abc", "-100200", 4000, false, server.URL)
	if err := client.Send(context.Background(), testListing()); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if strings.Contains(gotPayload.Text, "bateria 89%") {
		t.Errorf("description should be omitted:\n%s", gotPayload.Text)
	}
}

func TestSendTruncatesLongMessages(t *testing.T) {
	var gotPayload sendMessageRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotPayload)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	const maxLen = 60
	client := NewWithAPIBase("123:abc", "-100200", maxLen, true, server.URL)
	listing := testListing()
	listing.Description = strings.Repeat("bardzo długi opis ", 40)
	if err := client.Send(context.Background(), listing); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	runes := []rune(gotPayload.Text)
	if len(runes) != maxLen {
		t.Errorf("truncated message is %d runes, want %d", len(runes), maxLen)
	}
	if !strings.HasSuffix(gotPayload.Text, "...") {
		t.Errorf("truncated message should end with ellipsis:\n%s", gotPayload.Text)
	}
}

func TestSendRetriesOnRateLimit(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewWithAPIBase("123:abc", "-100200", 4000, true, server.URL)
	if err := client.Send(context.Background(), testListing()); err != nil {
		t.Fatalf("Send should succeed after rate-limit retry: %v", err)
	}
	if calls != 2 {
		t.Errorf("server saw %d calls, want 2", calls)
	}
}

func TestSendDoesNotRetryClientErrors(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, `{"ok":false,"description":"Bad Request"}`, http.StatusBadRequest)
	}))
	defer server.Close()

	client := NewWithAPIBase("123:abc", "-100200", 4000, true, server.URL)
	if err := client.Send(context.Background(), testListing()); err == nil {
		t.Fatal("Send should fail on a 400 response")
	}
	if calls != 1 {
		t.Errorf("server saw %d calls, want 1 (no retry on client errors)", calls)
	}
}

func TestSendDisabledIsNoOp(t *testing.T) {
	client := New("", "", 4000, true)
	if err := client.Send(context.Background(), testListing()); err != nil {
		t.Fatalf("disabled client Send should be a no-op, got: %v", err)
	}
}
