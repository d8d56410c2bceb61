package detector

import (
	"regexp"

	"github.com/espirado/log-insights/pkg/config"
)

// FormatCandidate is a timestamp format the detector knows how to recognize.
// Candidate names double as the format names written to config snippets.
type FormatCandidate struct {
	Name      string         // Format name, matches config naming
	Pattern   *regexp.Regexp // Compiled regex (set by KnownFormats)
	Regex     string         // Pattern source for config output
	Layout    string         // Go time layout for parsing
	Example   string         // Example timestamp
	Ambiguous bool           // Date ordering ambiguity (MM/DD vs DD/MM)
}

// ConfigEntry converts the candidate into a config timestamp format entry.
func (f *FormatCandidate) ConfigEntry() config.TimestampFormatConfig {
	return config.TimestampFormatConfig{
		Name:    f.Name,
		Pattern: f.Regex,
		Layout:  f.Layout,
	}
}

// KnownFormats returns the built-in timestamp formats to detect, ordered by
// specificity. More specific patterns come first so that ties on confidence
// resolve toward exact matches.
func KnownFormats() []*FormatCandidate {
	formats := []*FormatCandidate{
		{
			Name:    "iso8601-millis-offset",
			Regex:   `^(\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}\.\d{3}[+-]\d{2}:\d{2})`,
			Layout:  "2006-01-02T15:04:05.000-07:00",
			Example: "2024-01-15T10:30:00.123+00:00",
		},
		{
			Name:    "iso8601-millis-z",
			Regex:   `^(\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}\.\d{3}Z)`,
			Layout:  "2006-01-02T15:04:05.000Z",
			Example: "2024-01-15T10:30:00.123Z",
		},
		{
			Name:    "iso8601-offset",
			Regex:   `^(\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}[+-]\d{2}:\d{2})`,
			Layout:  "2006-01-02T15:04:05-07:00",
			Example: "2024-01-15T10:30:00+00:00",
		},
		{
			Name:    "iso8601-z",
			Regex:   `^(\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}Z)`,
			Layout:  "2006-01-02T15:04:05Z",
			Example: "2024-01-15T10:30:00Z",
		},
		{
			Name:    "iso8601",
			Regex:   `^(\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2})`,
			Layout:  "2006-01-02T15:04:05",
			Example: "2024-01-15T10:30:00",
		},
		{
			Name:    "bracketed-datetime",
			Regex:   `^\[(\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2})\]`,
			Layout:  "2006-01-02 15:04:05",
			Example: "[2024-01-15 10:30:00]",
		},
		{
			Name:    "python-logging",
			Regex:   `^(\d{4}-\d{2}-\d{2}\s+\d{2}:\d{2}:\d{2},\d{3})`,
			Layout:  "2006-01-02 15:04:05,000",
			Example: "2024-01-15 10:30:00,123",
		},
		{
			Name:    "log4j",
			Regex:   `^(\d{4}-\d{2}-\d{2}\s+\d{2}:\d{2}:\d{2}\.\d{3})`,
			Layout:  "2006-01-02 15:04:05.000",
			Example: "2024-01-15 10:30:00.123",
		},
		{
			Name:    "datetime",
			Regex:   `^(\d{4}-\d{2}-\d{2}\s+\d{2}:\d{2}:\d{2})`,
			Layout:  "2006-01-02 15:04:05",
			Example: "2024-01-15 10:30:00",
		},
		{
			Name:    "syslog-year",
			Regex:   `^(\w{3}\s+\d{1,2}\s+\d{4}\s+\d{2}:\d{2}:\d{2})`,
			Layout:  "Jan 2 2006 15:04:05",
			Example: "Jun 14 2024 15:16:01",
		},
		{
			Name:    "syslog",
			Regex:   `^(\w{3}\s+\d{1,2}\s+\d{2}:\d{2}:\d{2})`,
			Layout:  "Jan 2 15:04:05",
			Example: "Jun 14 15:16:01",
		},
		{
			Name:    "apache-clf",
			Regex:   `\[(\d{2}/\w{3}/\d{4}:\d{2}:\d{2}:\d{2}\s+[+-]\d{4})\]`,
			Layout:  "02/Jan/2006:15:04:05 -0700",
			Example: "[15/Jun/2024:10:30:00 +0000]",
		},
		{
			Name:    "apache-error",
			Regex:   `^\[(\w{3} \w{3} \d{2} \d{2}:\d{2}:\d{2} \d{4})\]`,
			Layout:  "Mon Jan 02 15:04:05 2006",
			Example: "[Sun Dec 04 04:47:44 2005]",
		},
		{
			Name:    "unix-seconds",
			Regex:   `^(\d{10})(?:\s|$|\])`,
			Layout:  layoutUnixSeconds,
			Example: "1705315800",
		},
		{
			Name:    "unix-millis",
			Regex:   `^(\d{13})(?:\s|$|\])`,
			Layout:  layoutUnixMillis,
			Example: "1705315800000",
		},
		{
			Name:      "us-date",
			Regex:     `^(\d{2}/\d{2}/\d{4}\s+\d{2}:\d{2}:\d{2})`,
			Layout:    "01/02/2006 15:04:05",
			Example:   "01/15/2024 10:30:00",
			Ambiguous: true,
		},
	}

	for _, f := range formats {
		f.Pattern = regexp.MustCompile(f.Regex)
	}

	return formats
}
