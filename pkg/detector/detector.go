// Package detector identifies the timestamp format used by a log file so the
// result can be dropped into a config file as a timestamp_formats entry.
package detector

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/espirado/log-insights/pkg/config"
	"github.com/espirado/log-insights/pkg/parser"
)

// Epoch layouts share the extractor's sentinels so detected unix formats
// parse once pasted into a config.
const (
	layoutUnixSeconds = parser.LayoutUnixSeconds
	layoutUnixMillis  = parser.LayoutUnixMillis
)

// Match is a format that matched sampled lines, with its confidence score.
type Match struct {
	Format     *FormatCandidate
	Confidence float64   // 0.0 to 1.0 (fraction of sampled lines matched)
	MatchCount int       // Number of lines that matched
	SampleLine string    // Example line that matched
	ParsedTime time.Time // Parsed timestamp from the sample line
}

// Result holds the outcome of analyzing a log file.
type Result struct {
	Matches       []Match // Sorted by confidence descending
	SampledLines  int
	ParsedLines   int    // Lines matched by the best format
	AmbiguityNote string // Warning about date ordering, if applicable
}

// BestMatch returns the highest confidence match, or nil if none found.
func (r *Result) BestMatch() *Match {
	if len(r.Matches) == 0 {
		return nil
	}
	return &r.Matches[0]
}

// HasMatch reports whether at least one format matched.
func (r *Result) HasMatch() bool {
	return len(r.Matches) > 0
}

// ConfigSnippet renders the top matches as a timestamp_formats YAML block
// ready to paste into a config file.
func (r *Result) ConfigSnippet() (string, error) {
	if !r.HasMatch() {
		return "", fmt.Errorf("no timestamp format detected")
	}

	entries := []config.TimestampFormatConfig{r.Matches[0].Format.ConfigEntry()}
	snippet := struct {
		TimestampFormats []config.TimestampFormatConfig `yaml:"timestamp_formats"`
	}{entries}

	out, err := yaml.Marshal(snippet)
	if err != nil {
		return "", fmt.Errorf("failed to render config snippet: %w", err)
	}
	return string(out), nil
}

// Detector samples log files to identify their timestamp format.
type Detector struct {
	formats    []*FormatCandidate
	sampleSize int
}

// Option configures the Detector.
type Option func(*Detector)

// WithSampleSize sets the number of lines to sample (default 100).
func WithSampleSize(n int) Option {
	return func(d *Detector) {
		if n > 0 {
			d.sampleSize = n
		}
	}
}

// New creates a Detector with the built-in format table.
func New(opts ...Option) *Detector {
	d := &Detector{
		formats:    KnownFormats(),
		sampleSize: 100,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DetectFromFile samples a log file and returns detected formats.
func (d *Detector) DetectFromFile(ctx context.Context, path string) (*Result, error) {
	lines, err := d.sampleFile(ctx, path)
	if err != nil {
		return nil, err
	}
	return d.DetectFromLines(lines), nil
}

// DetectFromLines analyzes a slice of log lines.
func (d *Detector) DetectFromLines(lines []string) *Result {
	result := &Result{SampledLines: len(lines)}
	if len(lines) == 0 {
		return result
	}

	type tally struct {
		format     *FormatCandidate
		matchCount int
		sampleLine string
		parsedTime time.Time
	}
	counts := make(map[string]*tally)

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		for _, format := range d.formats {
			groups := format.Pattern.FindStringSubmatch(line)
			if len(groups) < 2 {
				continue
			}

			parsed, ok := parseCandidate(groups[1], format.Layout)
			if !ok {
				continue
			}

			if counts[format.Name] == nil {
				counts[format.Name] = &tally{
					format:     format,
					sampleLine: line,
					parsedTime: parsed,
				}
			}
			counts[format.Name].matchCount++
		}
	}

	for _, t := range counts {
		result.Matches = append(result.Matches, Match{
			Format:     t.format,
			Confidence: float64(t.matchCount) / float64(len(lines)),
			MatchCount: t.matchCount,
			SampleLine: t.sampleLine,
			ParsedTime: t.parsedTime,
		})
	}

	// Confidence descending; longer patterns win ties since they are more
	// specific (iso8601-z over iso8601).
	sort.Slice(result.Matches, func(i, j int) bool {
		if result.Matches[i].Confidence != result.Matches[j].Confidence {
			return result.Matches[i].Confidence > result.Matches[j].Confidence
		}
		return len(result.Matches[i].Format.Regex) > len(result.Matches[j].Format.Regex)
	})

	if best := result.BestMatch(); best != nil {
		result.ParsedLines = best.MatchCount
		if best.Format.Ambiguous {
			result.AmbiguityNote = "This format has date ordering ambiguity (MM/DD vs DD/MM). " +
				"Verify the layout matches your log source. " +
				"For European format (DD/MM/YYYY), use layout: \"02/01/2006 15:04:05\""
		}
	}

	return result
}

// parseCandidate parses a captured timestamp with the candidate's layout.
// Unix epoch layouts get a range sanity check (1970-2100).
func parseCandidate(value, layout string) (time.Time, bool) {
	const maxEpochSeconds = 4102444800

	switch layout {
	case layoutUnixSeconds:
		secs, err := strconv.ParseInt(value, 10, 64)
		if err != nil || secs < 0 || secs > maxEpochSeconds {
			return time.Time{}, false
		}
		return time.Unix(secs, 0), true

	case layoutUnixMillis:
		millis, err := strconv.ParseInt(value, 10, 64)
		if err != nil || millis < 0 || millis/1000 > maxEpochSeconds {
			return time.Time{}, false
		}
		return time.UnixMilli(millis), true

	default:
		t, err := time.Parse(layout, value)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	}
}

// sampleFile reads up to sampleSize non-empty lines from the head of a file.
func (d *Detector) sampleFile(ctx context.Context, path string) ([]string, error) {
	file, err := os.Open(path) // #nosec G304 - path comes from the CLI user
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)

	for scanner.Scan() && len(lines) < d.sampleSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if trimmed := strings.TrimSpace(scanner.Text()); trimmed != "" {
			lines = append(lines, scanner.Text())
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}
