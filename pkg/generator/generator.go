// Package generator produces synthetic log files for testing pipelines and
// demo configs. Output is plain text, one ISO 8601-timestamped entry per
// line, drawn from templates across several incident categories.
package generator

import (
	"fmt"
	"math/rand"
	"net"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Category names for templated entries.
const (
	CategoryDatabase    = "database"
	CategoryMemory      = "memory"
	CategorySecurity    = "security"
	CategoryApplication = "application"
)

// Categories returns the supported template categories.
func Categories() []string {
	return []string{CategoryDatabase, CategoryMemory, CategorySecurity, CategoryApplication}
}

// Generator produces synthetic log entries.
type Generator struct {
	rng           *rand.Rand
	startTime     time.Time
	interval      time.Duration
	includeErrors bool
	categories    []string
}

// Option configures the Generator.
type Option func(*Generator)

// WithSeed makes output deterministic for a given seed.
func WithSeed(seed int64) Option {
	return func(g *Generator) {
		g.rng = rand.New(rand.NewSource(seed))
	}
}

// WithStartTime sets the timestamp of the first entry (defaults to now).
func WithStartTime(t time.Time) Option {
	return func(g *Generator) {
		g.startTime = t
	}
}

// WithInterval sets the time between consecutive entries (default 60s).
func WithInterval(d time.Duration) Option {
	return func(g *Generator) {
		if d > 0 {
			g.interval = d
		}
	}
}

// WithoutFollowups disables correlated follow-up errors.
func WithoutFollowups() Option {
	return func(g *Generator) {
		g.includeErrors = false
	}
}

// WithCategories restricts output to the given categories. Unknown names
// are ignored; an empty result falls back to all categories.
func WithCategories(names ...string) Option {
	return func(g *Generator) {
		var valid []string
		for _, n := range names {
			if _, ok := templates[n]; ok {
				valid = append(valid, n)
			}
		}
		if len(valid) > 0 {
			g.categories = valid
		}
	}
}

// New creates a Generator.
func New(opts ...Option) *Generator {
	g := &Generator{
		rng:           rand.New(rand.NewSource(time.Now().UnixNano())),
		startTime:     time.Now(),
		interval:      time.Minute,
		includeErrors: true,
		categories:    Categories(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

var templates = map[string][]string{
	CategoryDatabase: {
		"ERROR [Database] Connection timeout after %d retries to %s",
		"ERROR [Database] Query execution failed: %s",
		"WARNING [Database] Slow query detected. Execution time: %dms",
		"ERROR [Database] Max connections reached on %s",
	},
	CategoryMemory: {
		"WARNING [Memory] High memory usage: %d%% on %s",
		"CRITICAL [Memory] Out of memory error on %s",
		"WARNING [Memory] Memory threshold (80%%) exceeded: current usage %d%%",
		"ERROR [Memory] Memory leak detected in %s",
	},
	CategorySecurity: {
		"CRITICAL [Security] Multiple failed login attempts from IP: %s",
		"WARNING [Security] Unusual traffic pattern detected from %s",
		"CRITICAL [Security] Unauthorized access attempt to %s",
		"ERROR [Security] SSL certificate validation failed for %s",
	},
	CategoryApplication: {
		"ERROR [App] Request timeout for %s (request_id=%s)",
		"WARNING [App] High latency detected: %dms",
		"ERROR [App] Service %s not responding",
		"CRITICAL [App] Unhandled exception in %s: %s",
	},
}

var followups = map[string][]string{
	CategoryDatabase: {
		"ERROR [Database] Failed to reconnect to %s after connection timeout",
		"ERROR [Database] Failover attempted for %s but failed",
	},
	CategoryMemory: {
		"ERROR [Memory] Service %s crashed due to memory exhaustion on %s",
		"CRITICAL [Memory] System performance degraded due to memory pressure on %s",
	},
	CategorySecurity: {
		"ERROR [Security] Account locked after multiple failures from %s",
		"CRITICAL [Security] Blocking traffic from %s due to suspicious activity",
	},
	CategoryApplication: {
		"ERROR [App] Circuit breaker triggered for %s",
		"CRITICAL [App] Service %s entering degraded state",
	},
}

var (
	errorMessages = []string{
		"Connection refused",
		"Timeout waiting for response",
		"Invalid credentials",
		"Resource not found",
		"Internal server error",
	}
	services = []string{
		"user-service", "auth-service", "payment-service",
		"inventory-service", "notification-service",
	}
	hosts = []string{
		"prod-app-01", "prod-app-02", "prod-db-01",
		"prod-cache-01", "prod-worker-01",
	}
	databases = []string{"users_db", "orders_db", "products_db"}
	endpoints = []string{"/api/v1/users", "/api/v1/orders", "/api/v1/products"}
	resources = []string{"/api/admin", "/api/users", "/api/payments"}
	domains   = []string{"api.example.com", "admin.example.com"}
)

// entryContext holds the values substituted into one entry's template and
// its correlated follow-up, so both refer to the same host, service, etc.
type entryContext struct {
	host      string
	service   string
	errorMsg  string
	requestID string
	dbName    string
	ip        string
	resource  string
	domain    string
	endpoint  string
}

// Generate produces count primary entries. When follow-up errors are
// enabled, correlated errors appear a few seconds after roughly a third of
// the entries, so total line count may exceed count.
func (g *Generator) Generate(count int) []string {
	var lines []string
	for i := 0; i < count; i++ {
		category := g.categories[g.rng.Intn(len(g.categories))]
		c := g.newContext()
		ts := g.startTime.Add(time.Duration(i) * g.interval)

		lines = append(lines, ts.Format(time.RFC3339)+" "+g.render(category, c))

		if g.includeErrors && g.rng.Float64() < 0.3 {
			followTS := ts.Add(time.Duration(1+g.rng.Intn(5)) * time.Second)
			lines = append(lines, followTS.Format(time.RFC3339)+" "+g.renderFollowup(category, c))
		}
	}
	return lines
}

// WriteFile generates count entries and writes them to path.
func (g *Generator) WriteFile(path string, count int) error {
	lines := g.Generate(count)
	data := strings.Join(lines, "\n") + "\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		return fmt.Errorf("failed to write log file: %w", err)
	}
	return nil
}

func (g *Generator) newContext() entryContext {
	return entryContext{
		host:      hosts[g.rng.Intn(len(hosts))],
		service:   services[g.rng.Intn(len(services))],
		errorMsg:  errorMessages[g.rng.Intn(len(errorMessages))],
		requestID: uuid.NewString(),
		dbName:    databases[g.rng.Intn(len(databases))],
		ip:        g.randomIP(),
		resource:  resources[g.rng.Intn(len(resources))],
		domain:    domains[g.rng.Intn(len(domains))],
		endpoint:  endpoints[g.rng.Intn(len(endpoints))],
	}
}

func (g *Generator) randomIP() string {
	return net.IPv4(
		byte(g.rng.Intn(223)+1), // avoid 0.x and multicast ranges
		byte(g.rng.Intn(256)),
		byte(g.rng.Intn(256)),
		byte(g.rng.Intn(254)+1),
	).String()
}

func (g *Generator) render(category string, c entryContext) string {
	tmpl := templates[category][g.rng.Intn(len(templates[category]))]
	switch category {
	case CategoryDatabase:
		switch {
		case strings.Contains(tmpl, "retries"):
			return fmt.Sprintf(tmpl, 1+g.rng.Intn(5), c.dbName)
		case strings.Contains(tmpl, "Query"):
			return fmt.Sprintf(tmpl, c.errorMsg)
		case strings.Contains(tmpl, "Slow"):
			return fmt.Sprintf(tmpl, 1000+g.rng.Intn(4000))
		default:
			return fmt.Sprintf(tmpl, c.dbName)
		}
	case CategoryMemory:
		switch {
		case strings.Contains(tmpl, "High memory"):
			return fmt.Sprintf(tmpl, 80+g.rng.Intn(20), c.host)
		case strings.Contains(tmpl, "Out of memory"):
			return fmt.Sprintf(tmpl, c.host)
		case strings.Contains(tmpl, "threshold"):
			return fmt.Sprintf(tmpl, 80+g.rng.Intn(20))
		default:
			return fmt.Sprintf(tmpl, c.service)
		}
	case CategorySecurity:
		switch {
		case strings.Contains(tmpl, "IP:") || strings.Contains(tmpl, "traffic"):
			return fmt.Sprintf(tmpl, c.ip)
		case strings.Contains(tmpl, "Unauthorized"):
			return fmt.Sprintf(tmpl, c.resource)
		default:
			return fmt.Sprintf(tmpl, c.domain)
		}
	default: // application
		switch {
		case strings.Contains(tmpl, "Request timeout"):
			return fmt.Sprintf(tmpl, c.endpoint, c.requestID)
		case strings.Contains(tmpl, "latency"):
			return fmt.Sprintf(tmpl, 500+g.rng.Intn(2500))
		case strings.Contains(tmpl, "not responding"):
			return fmt.Sprintf(tmpl, c.service)
		default:
			return fmt.Sprintf(tmpl, c.service, c.errorMsg)
		}
	}
}

func (g *Generator) renderFollowup(category string, c entryContext) string {
	tmpl := followups[category][g.rng.Intn(len(followups[category]))]
	switch category {
	case CategoryDatabase:
		return fmt.Sprintf(tmpl, c.dbName)
	case CategoryMemory:
		if strings.Contains(tmpl, "crashed") {
			return fmt.Sprintf(tmpl, c.service, c.host)
		}
		return fmt.Sprintf(tmpl, c.host)
	case CategorySecurity:
		return fmt.Sprintf(tmpl, c.ip)
	default:
		return fmt.Sprintf(tmpl, c.service)
	}
}
