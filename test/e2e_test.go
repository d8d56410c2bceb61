package test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/espirado/log-insights/pkg/analyzer"
	"github.com/espirado/log-insights/pkg/config"
	"github.com/espirado/log-insights/pkg/generator"
	"github.com/espirado/log-insights/pkg/output"
	"github.com/espirado/log-insights/pkg/parser"
	"github.com/espirado/log-insights/pkg/webhook"
)

// newLLMStub returns an OpenAI-compatible server that replies to every chunk
// with the given analysis JSON and counts requests.
func newLLMStub(t *testing.T, analysisJSON string, calls *atomic.Int64) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls != nil {
			calls.Add(1)
		}
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		reply := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": analysisJSON}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(reply)
	}))
}

// writeConfig writes a config file for the given log source and stub URL.
func writeConfig(t *testing.T, dir, logGlob, baseURL string, chunkSize int) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	content := fmt.Sprintf(`log_sources:
  - %s
chunk_size: %d
timestamp_formats:
  - name: iso8601
    pattern: '^(\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(?:\.\d+)?(?:Z|[+-]\d{2}:\d{2})?)'
    layout: "2006-01-02T15:04:05"
llm:
  model: test-model
  base_url: %s
  api_key_env: LOGINSIGHT_E2E_KEY
`, logGlob, chunkSize, baseURL)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// runPipeline drives the full flow: config, glob expansion, ingestion
// pipeline, analysis run, report.
func runPipeline(t *testing.T, ctx context.Context, cfgPath string) *output.Report {
	t.Helper()

	cfg, err := config.Load(ctx, cfgPath)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	files, err := parser.ExpandGlobs(cfg.LogSources)
	if err != nil {
		t.Fatalf("expand globs: %v", err)
	}
	if len(files) == 0 {
		t.Fatal("no log files matched")
	}

	extractor, err := cfg.Extractor()
	if err != nil {
		t.Fatalf("build extractor: %v", err)
	}

	chunks, err := parser.NewFilePipeline(files, extractor, cfg.ChunkSize)
	if err != nil {
		t.Fatalf("build pipeline: %v", err)
	}
	defer chunks.Close()

	llm, err := analyzer.NewLLMAnalyzer(&cfg.LLM)
	if err != nil {
		t.Fatalf("create analyzer: %v", err)
	}

	result, err := analyzer.NewRunner(llm).Run(ctx, chunks, files, cfg.LLM.Model)
	if err != nil {
		t.Fatalf("run analysis: %v", err)
	}

	return output.NewReport(result, cfgPath)
}

func TestE2E_GeneratedLogs(t *testing.T) {
	t.Setenv("LOGINSIGHT_E2E_KEY", "e2e-key")

	dir := t.TempDir()
	logPath := filepath.Join(dir, "synthetic.log")
	gen := generator.New(
		generator.WithSeed(42),
		generator.WithStartTime(time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)),
		generator.WithoutFollowups(),
	)
	if err := gen.WriteFile(logPath, 25); err != nil {
		t.Fatal(err)
	}

	var calls atomic.Int64
	srv := newLLMStub(t, `{
		"context": "Infrastructure",
		"category": "Memory",
		"severity": "High",
		"component": "prod-app-01",
		"root_cause": "Sustained memory pressure",
		"remediation": "Scale out the node pool",
		"timestamp": "2024-01-15T10:00:00Z"
	}`, &calls)
	defer srv.Close()

	cfgPath := writeConfig(t, dir, logPath, srv.URL, 10)
	report := runPipeline(t, context.Background(), cfgPath)

	// 25 single-line entries at chunk size 10 makes 3 chunks.
	if report.Summary.ChunksAnalyzed != 3 {
		t.Errorf("ChunksAnalyzed = %d, want 3", report.Summary.ChunksAnalyzed)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("analysis calls = %d, want 3", got)
	}
	if report.Summary.EntriesAnalyzed != 25 {
		t.Errorf("EntriesAnalyzed = %d, want 25", report.Summary.EntriesAnalyzed)
	}
	if report.Summary.Failures != 0 {
		t.Errorf("Failures = %d, want 0", report.Summary.Failures)
	}
	if report.HasCritical() {
		t.Error("HasCritical() = true, no Critical analyses were returned")
	}
	if report.Summary.TopSeverity != "High" {
		t.Errorf("TopSeverity = %q, want High", report.Summary.TopSeverity)
	}
}

func TestE2E_MultiLineEntries(t *testing.T) {
	t.Setenv("LOGINSIGHT_E2E_KEY", "e2e-key")

	dir := t.TempDir()
	logPath := filepath.Join(dir, "app.log")
	content := strings.Join([]string{
		"2024-01-15T10:30:00Z ERROR Unhandled exception in payment-service",
		"Traceback (most recent call last):",
		`  File "worker.py", line 14, in charge`,
		"ValueError: amount must be positive",
		"2024-01-15T10:31:00Z INFO Retrying request",
		"",
	}, "\n")
	if err := os.WriteFile(logPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	// Capture the prompt to check the stack trace traveled as one entry.
	var prompt atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		if len(req.Messages) > 1 {
			prompt.Store(req.Messages[1].Content)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": `{"severity":"Medium","root_cause":"bad input"}`}},
			},
		})
	}))
	defer srv.Close()

	cfgPath := writeConfig(t, dir, logPath, srv.URL, 10)
	report := runPipeline(t, context.Background(), cfgPath)

	// 5 raw lines coalesce into 2 entries in 1 chunk.
	if report.Summary.EntriesAnalyzed != 2 {
		t.Errorf("EntriesAnalyzed = %d, want 2", report.Summary.EntriesAnalyzed)
	}

	sent, _ := prompt.Load().(string)
	if !strings.Contains(sent, "ValueError: amount must be positive") {
		t.Error("continuation lines did not reach the analysis prompt")
	}
	if !strings.Contains(sent, "2024-01-15T10:30:00Z ERROR Unhandled exception in payment-service") {
		t.Error("prompt is missing the raw first line of the entry")
	}
}

func TestE2E_FailedChunkDoesNotAbort(t *testing.T) {
	t.Setenv("LOGINSIGHT_E2E_KEY", "e2e-key")

	dir := t.TempDir()
	logPath := filepath.Join(dir, "app.log")
	var sb strings.Builder
	for i := 0; i < 4; i++ {
		fmt.Fprintf(&sb, "2024-01-15T10:%02d:00Z ERROR failure %d\n", i, i)
	}
	if err := os.WriteFile(logPath, []byte(sb.String()), 0o644); err != nil {
		t.Fatal(err)
	}

	// First chunk errors, second succeeds.
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, `{"error":{"message":"rate limited"}}`, http.StatusTooManyRequests)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": `{"severity":"Low","root_cause":"noise"}`}},
			},
		})
	}))
	defer srv.Close()

	cfgPath := writeConfig(t, dir, logPath, srv.URL, 2)
	report := runPipeline(t, context.Background(), cfgPath)

	if report.Summary.ChunksAnalyzed != 2 {
		t.Errorf("ChunksAnalyzed = %d, want 2", report.Summary.ChunksAnalyzed)
	}
	if report.Summary.Failures != 1 {
		t.Errorf("Failures = %d, want 1", report.Summary.Failures)
	}
	// The failed chunk appears on the timeline as a fallback record.
	if report.Summary.TotalIssues != 2 {
		t.Errorf("TotalIssues = %d, want 2", report.Summary.TotalIssues)
	}

	found := false
	for _, ev := range report.Results.Timeline {
		if ev.RootCause == "Analysis failed" {
			found = true
		}
	}
	if !found {
		t.Error("fallback analysis missing from timeline")
	}
}

func TestE2E_WebhookOnCritical(t *testing.T) {
	t.Setenv("LOGINSIGHT_E2E_KEY", "e2e-key")

	dir := t.TempDir()
	logPath := filepath.Join(dir, "app.log")
	content := "2024-01-15T10:30:00Z CRITICAL Out of memory on prod-app-01\n"
	if err := os.WriteFile(logPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	llmSrv := newLLMStub(t, `{"severity":"Critical","root_cause":"OOM killer fired"}`, nil)
	defer llmSrv.Close()

	var hookBody atomic.Value
	hookSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		buf.ReadFrom(r.Body)
		hookBody.Store(buf.Bytes())
		w.WriteHeader(http.StatusOK)
	}))
	defer hookSrv.Close()

	cfgPath := writeConfig(t, dir, logPath, llmSrv.URL, 10)
	report := runPipeline(t, context.Background(), cfgPath)

	if !report.HasCritical() {
		t.Fatal("expected critical issue in report")
	}
	if !webhook.ShouldFire(config.WebhookTriggerOnCritical, report) {
		t.Fatal("on_critical webhook should fire")
	}

	resp := webhook.NewClient().Send(context.Background(), report, webhook.SendOptions{URL: hookSrv.URL})
	if !resp.Success() {
		t.Fatalf("webhook send failed: %v", resp.Error)
	}

	body, _ := hookBody.Load().([]byte)
	var delivered output.Report
	if err := json.Unmarshal(body, &delivered); err != nil {
		t.Fatalf("webhook payload is not a report: %v", err)
	}
	if delivered.Summary.CriticalIssues != 1 {
		t.Errorf("delivered CriticalIssues = %d, want 1", delivered.Summary.CriticalIssues)
	}
}

func TestE2E_AllFormatters(t *testing.T) {
	t.Setenv("LOGINSIGHT_E2E_KEY", "e2e-key")

	dir := t.TempDir()
	logPath := filepath.Join(dir, "app.log")
	content := "2024-01-15T10:30:00Z ERROR connection refused\n"
	if err := os.WriteFile(logPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	srv := newLLMStub(t, `{"severity":"High","context":"Application","root_cause":"service down"}`, nil)
	defer srv.Close()

	cfgPath := writeConfig(t, dir, logPath, srv.URL, 10)
	report := runPipeline(t, context.Background(), cfgPath)

	formatters := map[string]output.Formatter{
		"text": output.NewTextFormatter(output.FormatOptions{NoColor: true}),
		"json": output.NewJSONFormatter(output.FormatOptions{}),
		"html": output.NewHTMLFormatter(output.FormatOptions{}),
	}
	for name, f := range formatters {
		var buf bytes.Buffer
		if err := f.Format(context.Background(), report, &buf); err != nil {
			t.Errorf("%s formatter: %v", name, err)
			continue
		}
		if !strings.Contains(buf.String(), "service down") {
			t.Errorf("%s output missing root cause", name)
		}
	}
}
