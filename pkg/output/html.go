package output

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
)

// HTMLFormatter renders a self-contained dashboard page: severity and
// context distributions, the issue timeline, and root-cause ranking.
// Charts are drawn client-side by plotly loaded from its CDN.
type HTMLFormatter struct {
	opts FormatOptions
}

// NewHTMLFormatter creates a new HTML formatter with the given options.
func NewHTMLFormatter(opts FormatOptions) *HTMLFormatter {
	return &HTMLFormatter{opts: opts}
}

// Name returns the format name.
func (f *HTMLFormatter) Name() string {
	return "html"
}

// Format renders the report as an HTML dashboard.
func (f *HTMLFormatter) Format(ctx context.Context, report *Report, w io.Writer) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}

	return dashboardTemplate.Execute(w, struct {
		Report     *Report
		ReportJSON template.JS
	}{
		Report:     report,
		ReportJSON: template.JS(data), // #nosec G203 -- marshaled JSON, not user HTML
	})
}

var dashboardTemplate = template.Must(template.New("dashboard").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Log Insight Dashboard</title>
<script src="https://cdn.plot.ly/plotly-2.35.2.min.js"></script>
<style>
  body { font-family: sans-serif; margin: 2rem; background: #fafafa; }
  h1 { margin-bottom: 0.25rem; }
  .meta { color: #666; margin-bottom: 1.5rem; }
  .metrics { display: flex; gap: 1rem; flex-wrap: wrap; margin-bottom: 1.5rem; }
  .metric { background: #fff; border: 1px solid #ddd; border-radius: 6px; padding: 0.75rem 1.25rem; }
  .metric .value { font-size: 1.6rem; font-weight: bold; }
  .metric .label { color: #666; font-size: 0.8rem; }
  .charts { display: grid; grid-template-columns: 1fr 1fr; gap: 1rem; }
  .chart { background: #fff; border: 1px solid #ddd; border-radius: 6px; }
  @media (max-width: 900px) { .charts { grid-template-columns: 1fr; } }
</style>
</head>
<body>
<h1>Log Insight Analysis</h1>
<div class="meta">{{.Report.Metadata.Model}} &middot; {{.Report.Metadata.AnalyzedAt.Format "2006-01-02 15:04:05"}}</div>

<div class="metrics">
  <div class="metric"><div class="value">{{.Report.Summary.ChunksAnalyzed}}</div><div class="label">Chunks analyzed</div></div>
  <div class="metric"><div class="value">{{.Report.Summary.EntriesAnalyzed}}</div><div class="label">Log entries</div></div>
  <div class="metric"><div class="value">{{.Report.Summary.TotalIssues}}</div><div class="label">Issues</div></div>
  <div class="metric"><div class="value">{{.Report.Summary.CriticalIssues}}</div><div class="label">Critical</div></div>
  <div class="metric"><div class="value">{{.Report.Summary.TopContext}}</div><div class="label">Top context</div></div>
</div>

<div class="charts">
  <div id="severity" class="chart"></div>
  <div id="contexts" class="chart"></div>
  <div id="timeline" class="chart"></div>
  <div id="rootcauses" class="chart"></div>
</div>

<script>
const report = {{.ReportJSON}};
const severityColors = {Critical: "#ff0000", High: "#ff9900", Medium: "#ffff00", Low: "#00ff00"};

const severities = report.results.severities || {};
Plotly.newPlot("severity", [{
  type: "pie",
  labels: Object.keys(severities),
  values: Object.values(severities),
  marker: {colors: Object.keys(severities).map(s => severityColors[s] || "#999")},
  hole: 0.4
}], {title: "Severity Distribution", height: 400});

const contexts = report.results.issues || {};
Plotly.newPlot("contexts", [{
  type: "bar",
  x: Object.keys(contexts),
  y: Object.values(contexts),
  marker: {color: "#2E86C1"}
}], {title: "Issues by Context", height: 400, yaxis: {title: "Count"}});

const timeline = report.results.timeline || [];
Plotly.newPlot("timeline", [{
  type: "scatter",
  mode: "markers",
  x: timeline.map(e => e.chunk_index),
  y: timeline.map(e => e.severity),
  text: timeline.map(e => e.root_cause),
  marker: {size: 10, color: timeline.map(e => severityColors[e.severity] || "#999")}
}], {title: "Issue Timeline", height: 400, xaxis: {title: "Chunk"}, yaxis: {title: "Severity"}});

const causeCounts = {};
for (const e of timeline) {
  if (e.root_cause) causeCounts[e.root_cause] = (causeCounts[e.root_cause] || 0) + 1;
}
const causes = Object.entries(causeCounts).sort((a, b) => b[1] - a[1]).slice(0, 10);
Plotly.newPlot("rootcauses", [{
  type: "bar",
  orientation: "h",
  x: causes.map(c => c[1]),
  y: causes.map(c => c[0]),
  marker: {color: "#2E86C1"}
}], {title: "Root Cause Distribution", height: 400, xaxis: {title: "Count"}, margin: {l: 250}});
</script>
</body>
</html>
`))
