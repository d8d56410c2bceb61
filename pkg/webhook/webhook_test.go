package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/espirado/log-insights/pkg/analyzer"
	"github.com/espirado/log-insights/pkg/config"
	"github.com/espirado/log-insights/pkg/output"
)

func reportWithSeverity(severity string) *output.Report {
	results := analyzer.NewResults()
	results.Add(&analyzer.Analysis{Context: "application", Severity: severity})
	return output.NewReport(&analyzer.RunResult{
		Results: results,
		Stats:   analyzer.Stats{ChunksAnalyzed: 1},
	}, "")
}

func TestClient_Send(t *testing.T) {
	var received map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.Header.Get("User-Agent"); got != "loginsight-webhook" {
			t.Errorf("User-Agent = %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("decoding payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	resp := NewClient().Send(context.Background(), reportWithSeverity("Critical"), SendOptions{
		URL:   srv.URL,
		Token: "tok",
	})

	if !resp.Success() {
		t.Fatalf("Send failed: status=%d err=%v", resp.StatusCode, resp.Error)
	}
	if _, ok := received["summary"]; !ok {
		t.Error("payload missing summary")
	}
}

func TestClient_SendErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	resp := NewClient().Send(context.Background(), reportWithSeverity("Low"), SendOptions{URL: srv.URL})

	if resp.Success() {
		t.Error("Success() = true for 403")
	}
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("StatusCode = %d", resp.StatusCode)
	}
	if resp.Error == nil {
		t.Error("Error = nil, want status error")
	}
}

func TestClient_SendTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	resp := NewClient().Send(context.Background(), reportWithSeverity("Low"), SendOptions{
		URL:     srv.URL,
		Timeout: 10 * time.Millisecond,
	})

	if resp.Error == nil {
		t.Error("expected timeout error")
	}
}

func TestShouldFire(t *testing.T) {
	critical := reportWithSeverity("Critical")
	calm := reportWithSeverity("Low")

	tests := []struct {
		trigger config.WebhookTrigger
		report  *output.Report
		want    bool
	}{
		{config.WebhookTriggerAlways, calm, true},
		{config.WebhookTriggerNever, critical, false},
		{config.WebhookTriggerOnCritical, critical, true},
		{config.WebhookTriggerOnCritical, calm, false},
		{"", critical, true}, // empty trigger defaults to on_critical
	}

	for _, tt := range tests {
		if got := ShouldFire(tt.trigger, tt.report); got != tt.want {
			t.Errorf("ShouldFire(%q, critical=%v) = %v, want %v",
				tt.trigger, tt.report.HasCritical(), got, tt.want)
		}
	}
}
