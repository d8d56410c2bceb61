package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/espirado/log-insights/pkg/config"
	"github.com/espirado/log-insights/pkg/parser"
)

// LLMAnalyzer sends chunks to an OpenAI-compatible chat-completions API and
// parses the JSON analysis the model returns.
type LLMAnalyzer struct {
	httpClient  *http.Client
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	timeout     time.Duration
}

// NewLLMAnalyzer creates an analyzer from the LLM configuration.
// Returns an error when the API key environment variable is unset.
func NewLLMAnalyzer(cfg *config.LLMConfig) (*LLMAnalyzer, error) {
	apiKey := cfg.APIKey()
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required: set %s", cfg.APIKeyEnv)
	}

	return &LLMAnalyzer{
		httpClient:  &http.Client{},
		baseURL:     strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:      apiKey,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		timeout:     cfg.Timeout,
	}, nil
}

// chat-completions wire types, reduced to the fields this client uses.
type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	Temperature    float64        `json:"temperature"`
	ResponseFormat responseFormat `json:"response_format"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// AnalyzeChunk sends one chunk to the model and returns the parsed analysis.
// Transport and API failures are returned as errors; a syntactically broken
// model reply degrades to a fallback analysis rather than failing the run.
func (a *LLMAnalyzer) AnalyzeChunk(ctx context.Context, chunk *parser.Chunk) (*Analysis, error) {
	detected := DetectContext(chunk)

	payload, err := json.Marshal(chatRequest{
		Model: a.model,
		Messages: []chatMessage{
			{
				Role: "system",
				Content: fmt.Sprintf("You are an expert SRE analyzing %s logs. "+
					"Focus on precise categorization and technical accuracy.", detected),
			},
			{Role: "user", Content: buildPrompt(chunk)},
		},
		Temperature:    a.temperature,
		ResponseFormat: responseFormat{Type: "json_object"},
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		a.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.apiKey)

	httpResp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("analysis request failed: %w", err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(httpResp.Body, 4*1024*1024))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("analysis API returned status %d: %s",
			httpResp.StatusCode, truncate(string(body), 200))
	}

	var resp chatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("analysis API error: %s", resp.Error.Message)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("analysis API returned no choices")
	}

	analysis := parseAnalysis(resp.Choices[0].Message.Content, detected)
	analysis.ChunkIndex = chunk.Index
	return analysis, nil
}

// buildPrompt renders the chunk's entries into the analysis prompt.
func buildPrompt(chunk *parser.Chunk) string {
	var sb strings.Builder

	sb.WriteString(`As an experienced SRE, analyze these logs with focus on infrastructure context.
First, determine the log context (type of system generating these logs).
Then identify specific issues and their impact.

Context Categories:
1. Kubernetes Logs - Container orchestration issues (pods, nodes, deployments)
2. Database Logs - Database performance, connectivity, query issues
3. Infrastructure Logs - VM/EC2 resource utilization (CPU, memory, disk)
4. Application Logs - Service-level issues, API errors

Return analysis in JSON format:
{
  "context": "Primary system context (Kubernetes/Database/Infrastructure/Application)",
  "category": "Specific category (CPU/Memory/Network/Storage/Security)",
  "severity": "Critical/High/Medium/Low",
  "component": "Specific component affected",
  "root_cause": "Technical explanation of the issue",
  "remediation": "Specific actions to resolve",
  "timestamp": "timestamp from relevant log"
}

Logs to analyze:
`)
	for _, entry := range chunk.Entries {
		sb.WriteString(entry.Raw())
		sb.WriteByte('\n')
	}

	return sb.String()
}

// parseAnalysis decodes the model's JSON reply, filling gaps with the
// locally detected context and a fallback record when the reply is not
// valid JSON.
func parseAnalysis(content, detectedContext string) *Analysis {
	var a Analysis
	if err := json.Unmarshal([]byte(content), &a); err != nil {
		return fallbackAnalysis(detectedContext)
	}

	if a.Context == "" {
		a.Context = detectedContext
	}
	if a.Component == "" {
		a.Component = "undefined"
	}
	if a.Severity == "" {
		a.Severity = "Unknown"
	}
	if a.Category == "" {
		a.Category = "Unknown"
	}

	return &a
}

// fallbackAnalysis is recorded when the model reply cannot be used, so a
// bad chunk never aborts the run.
func fallbackAnalysis(detectedContext string) *Analysis {
	return &Analysis{
		Context:     detectedContext,
		Category:    "Unknown",
		Severity:    "Unknown",
		Component:   "Unknown",
		RootCause:   "Analysis failed",
		Remediation: "Manual investigation required",
		Timestamp:   time.Now().Format(time.RFC3339),
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
