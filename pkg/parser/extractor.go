package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Sentinel layouts for epoch timestamps, which time.Parse cannot express.
const (
	LayoutUnixSeconds = "UNIX_SECONDS"
	LayoutUnixMillis  = "UNIX_MILLIS"
)

// TimestampPattern is a named timestamp matcher: a regex whose first capture
// group is the timestamp text, and the Go layout used to parse it. Patterns
// are tried in registration order and the first successful parse wins.
type TimestampPattern struct {
	Name    string
	Pattern *regexp.Regexp
	Layout  string
}

// NewTimestampPattern compiles a pattern definition. The regex must contain
// at least one capture group for the timestamp text.
func NewTimestampPattern(name, pattern, layout string) (TimestampPattern, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return TimestampPattern{}, fmt.Errorf("invalid pattern %q: %w", name, err)
	}
	if re.NumSubexp() < 1 {
		return TimestampPattern{}, fmt.Errorf("pattern %q must have a capture group for the timestamp", name)
	}
	if layout == "" {
		return TimestampPattern{}, fmt.Errorf("pattern %q: layout is required", name)
	}
	return TimestampPattern{Name: name, Pattern: re, Layout: layout}, nil
}

// Extracted is a LogLine tagged with the fields pulled out of it.
type Extracted struct {
	Line LogLine

	// Timestamp is the parsed timestamp; zero when HasTimestamp is false.
	Timestamp time.Time

	// HasTimestamp reports whether any pattern matched and parsed.
	HasTimestamp bool

	// Level is the severity token found on the line, or LevelUnknown.
	Level Level

	// Remainder is the line with the matched timestamp and level token
	// removed, for display purposes. The original text stays in Line.Raw.
	Remainder string
}

// Extractor classifies raw lines against an ordered set of timestamp
// patterns and a severity token set. Adding a new timestamp format means
// appending a pattern; the extraction logic never changes per format.
type Extractor struct {
	patterns []TimestampPattern
	levelRe  *regexp.Regexp
}

// NewExtractor creates an extractor over the given ordered patterns and
// severity tokens. Tokens are matched case-insensitively on word boundaries.
func NewExtractor(patterns []TimestampPattern, tokens []Level) *Extractor {
	if len(tokens) == 0 {
		tokens = DefaultSeverityTokens()
	}
	quoted := make([]string, len(tokens))
	for i, t := range tokens {
		quoted[i] = regexp.QuoteMeta(string(t))
	}
	levelRe := regexp.MustCompile(`(?i)\b(` + strings.Join(quoted, "|") + `)\b`)

	return &Extractor{
		patterns: patterns,
		levelRe:  levelRe,
	}
}

// DefaultSeverityTokens returns the built-in severity token set.
func DefaultSeverityTokens() []Level {
	return []Level{LevelError, LevelWarning, LevelInfo, LevelDebug, LevelCritical}
}

// Extract classifies a single line. Each configured pattern is tried in
// order; the first one whose capture parses as a timestamp wins. A pattern
// that matches textually but fails to parse does not stop the scan.
func (e *Extractor) Extract(line LogLine) Extracted {
	ex := Extracted{
		Line:      line,
		Level:     LevelUnknown,
		Remainder: line.Raw,
	}

	rest := line.Raw
	for _, p := range e.patterns {
		loc := p.Pattern.FindStringSubmatchIndex(line.Raw)
		if loc == nil || len(loc) < 4 || loc[2] < 0 {
			continue
		}
		tsStr := line.Raw[loc[2]:loc[3]]
		ts, err := parseTimestamp(tsStr, p.Layout)
		if err != nil {
			continue
		}
		ex.Timestamp = ts
		ex.HasTimestamp = true
		// Advance past the full pattern match, not just the capture.
		rest = line.Raw[:loc[0]] + line.Raw[loc[1]:]
		break
	}

	if m := e.levelRe.FindStringIndex(rest); m != nil {
		ex.Level = Level(strings.ToUpper(rest[m[0]:m[1]]))
		rest = rest[:m[0]] + rest[m[1]:]
	}

	ex.Remainder = strings.TrimSpace(rest)
	return ex
}

// parseTimestamp parses a timestamp string, tolerating the optional
// fractional-second and timezone suffixes ISO 8601 allows. The unix
// sentinel layouts parse the capture as an epoch value.
func parseTimestamp(s, layout string) (time.Time, error) {
	switch layout {
	case LayoutUnixSeconds:
		secs, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return time.Time{}, fmt.Errorf("parsing epoch seconds %q: %w", s, err)
		}
		return time.Unix(secs, 0).UTC(), nil
	case LayoutUnixMillis:
		millis, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return time.Time{}, fmt.Errorf("parsing epoch millis %q: %w", s, err)
		}
		return time.UnixMilli(millis).UTC(), nil
	}

	if t, err := time.Parse(layout, s); err == nil {
		return t, nil
	}

	// ISO 8601 inputs may carry fractional seconds and/or an offset the
	// base layout doesn't spell out. Try the richer variants.
	for _, l := range isoVariants(layout) {
		if t, err := time.Parse(l, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("parsing timestamp %q with layout %q", s, layout)
}

func isoVariants(layout string) []string {
	if !strings.Contains(layout, "2006-01-02T15:04:05") {
		return nil
	}
	return []string{
		"2006-01-02T15:04:05Z07:00",
		"2006-01-02T15:04:05.999999999Z07:00",
		"2006-01-02T15:04:05.999999999",
	}
}
