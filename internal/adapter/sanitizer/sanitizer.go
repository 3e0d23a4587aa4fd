// Package sanitizer strips injected reference blocks out of stored
// messages so retrieved passages never persist into conversation history.
package sanitizer

import (
	"regexp"

	"github.com/EmerJK/emertxthn/internal/domain"
)

var boxPattern = regexp.MustCompile(`(?s)` + regexp.QuoteMeta(domain.BoxOpen) + `.*?` + regexp.QuoteMeta(domain.BoxClose))

// Strip removes every reference block span from text, including the
// markers. Idempotent.
func Strip(text string) string {
	return boxPattern.ReplaceAllString(text, "")
}

// Message rewrites the message text in place. A nil message or one with no
// text is left alone.
func Message(msg *domain.Message) {
	if msg == nil || msg.Text == "" {
		return
	}
	msg.Text = Strip(msg.Text)
}
