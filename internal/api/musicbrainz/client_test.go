package musicbrainz

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// CreateMockClient creates a client pointed at a test server
func CreateMockClient(baseURL string) *Client {
	config := Config{
		BaseURL:      baseURL + "/ws/2/",
		UserAgent:    "test-client/1.0",
		Timeout:      5 * time.Second,
		MaxRetries:   1,
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     1 * time.Second,
		RateLimit:    10 * time.Millisecond,
		BurstLimit:   10,
	}
	return NewClientWithConfig(config)
}

func TestNewClient(t *testing.T) {
	client := NewClient("")
	if client == nil {
		t.Fatal("NewClient() returned nil")
	}

	config := client.GetConfig()
	if config.BaseURL != defaultBaseURL {
		t.Errorf("Expected BaseURL %s, got %s", defaultBaseURL, config.BaseURL)
	}
	if config.UserAgent != defaultUserAgent {
		t.Errorf("Expected default user agent, got %s", config.UserAgent)
	}
}

func TestSearchRecordingPicksBestMatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"recordings":[
			{"id":"bad","title":"Completely Different Song","artist-credit":[{"name":"Somebody Else"}],"tags":[{"count":3,"name":"pop"}]},
			{"id":"good","title":"Strobe","artist-credit":[{"name":"deadmau5"}],"tags":[{"count":1,"name":"electronic"},{"count":5,"name":"progressive house"}]}
		]}`))
	}))
	defer server.Close()

	client := CreateMockClient(server.URL)
	rec, err := client.SearchRecording(context.Background(), "deadmau5", "Strobe")
	if err != nil {
		t.Fatalf("SearchRecording failed: %v", err)
	}
	if rec == nil {
		t.Fatal("expected a recording, got nil")
	}
	if rec.ID != "good" {
		t.Errorf("expected best match 'good', got %s", rec.ID)
	}

	tags := rec.TagNames()
	if len(tags) != 2 || tags[0] != "progressive house" {
		t.Errorf("expected tags sorted by vote count, got %v", tags)
	}
}

func TestSearchRecordingNoMatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"recordings":[
			{"id":"r1","title":"Unrelated","artist-credit":[{"name":"Nobody"}]}
		]}`))
	}))
	defer server.Close()

	client := CreateMockClient(server.URL)
	rec, err := client.SearchRecording(context.Background(), "deadmau5", "Strobe")
	if err != nil {
		t.Fatalf("SearchRecording failed: %v", err)
	}
	if rec != nil {
		t.Errorf("expected nil for a below-threshold match, got %+v", rec)
	}
}

func TestWordOverlap(t *testing.T) {
	tests := []struct {
		a, b     string
		expected float64
	}{
		{"strobe", "strobe", 1.0},
		{"deadmau5", "deadmau5", 1.0},
		{"one two", "two three", 1.0 / 3.0},
		{"", "anything", 0.0},
	}
	for _, tt := range tests {
		if got := wordOverlap(tt.a, tt.b); got != tt.expected {
			t.Errorf("wordOverlap(%q, %q) = %f, want %f", tt.a, tt.b, got, tt.expected)
		}
	}
}
