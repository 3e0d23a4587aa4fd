// Package extractor pulls recent chat text into a single search query.
package extractor

import (
	"regexp"
	"strings"

	"github.com/EmerJK/emertxthn/internal/domain"
)

var newlineRuns = regexp.MustCompile(`\n{2,}`)

// Query builds the query string from the most recent eligible messages in
// chronological order. System messages and messages with empty text are
// skipped, expand is applied to each surviving text, and at most limit
// entries (counted from the end of the history) are joined with newlines.
// Returns "" when nothing is eligible; callers treat that as "skip query".
func Query(messages []domain.Message, limit int, expand func(string) string) string {
	if limit <= 0 {
		return ""
	}

	var texts []string
	for _, m := range messages {
		if m.System || m.Role == domain.RoleSystem {
			continue
		}
		if strings.TrimSpace(m.Text) == "" {
			continue
		}
		text := m.Text
		if expand != nil {
			text = expand(text)
		}
		texts = append(texts, text)
	}

	if len(texts) > limit {
		texts = texts[len(texts)-limit:]
	}

	joined := strings.Join(texts, "\n")
	joined = newlineRuns.ReplaceAllString(joined, "\n")
	return strings.TrimSpace(joined)
}
