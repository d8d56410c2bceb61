package analyzer

import (
	"strings"

	"github.com/espirado/log-insights/pkg/parser"
)

// contextPatterns maps a system context to the keywords that suggest it.
var contextPatterns = map[string][]string{
	"kubernetes":     {"pod", "node", "deployment", "container", "namespace", "kubectl"},
	"database":       {"postgresql", "mysql", "database", "query", "sql"},
	"infrastructure": {"ec2", "vm", "instance", "cpu", "memory", "disk"},
	"application":    {"application", "service", "api", "endpoint"},
}

// DetectContext guesses the predominant system context of a chunk by
// counting keyword hits per context. Ties resolve alphabetically so the
// result is deterministic. Returns "application" when nothing matches.
func DetectContext(chunk *parser.Chunk) string {
	counts := make(map[string]int, len(contextPatterns))

	for _, entry := range chunk.Entries {
		text := strings.ToLower(entry.Raw())
		for name, keywords := range contextPatterns {
			for _, kw := range keywords {
				if strings.Contains(text, kw) {
					counts[name]++
					break
				}
			}
		}
	}

	best := maxKey(counts)
	if best == "" {
		return "application"
	}
	return best
}
