// Package usecase wires the augmentation pipeline: extract recent chat
// text, query the search service, and splice the result into the prompt.
package usecase

import (
	"context"
	"errors"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/sirupsen/logrus"

	"github.com/EmerJK/emertxthn/config"
	"github.com/EmerJK/emertxthn/internal/adapter/chunker"
	"github.com/EmerJK/emertxthn/internal/adapter/extractor"
	"github.com/EmerJK/emertxthn/internal/adapter/prompt"
	"github.com/EmerJK/emertxthn/internal/adapter/sanitizer"
	"github.com/EmerJK/emertxthn/internal/adapter/search"
	"github.com/EmerJK/emertxthn/internal/domain"
	"github.com/EmerJK/emertxthn/internal/port"
)

// SlotID is the prompt slot owned by the augmenter.
const SlotID = "txtai"

// Augmenter runs the per-turn retrieval pipeline for one chat session.
// The prompt slot and the cached last result always reflect the last
// completed run: an empty outcome clears both.
type Augmenter struct {
	settings port.SettingsSource
	searcher port.Searcher
	slots    port.Slots
	notify   port.Notifier
	log      logrus.FieldLogger

	mu   sync.Mutex
	last domain.SearchResult
}

var _ port.PromptModifier = (*Augmenter)(nil)

func NewAugmenter(settings port.SettingsSource, searcher port.Searcher, slots port.Slots, notify port.Notifier, log logrus.FieldLogger) *Augmenter {
	return &Augmenter{
		settings: settings,
		searcher: searcher,
		slots:    slots,
		notify:   notify,
		log:      log,
	}
}

// BeforeGeneration is the extension entry point invoked once per
// generation turn. It never fails: any error or panic degrades to "no
// augmentation this turn" and the original history is returned.
func (a *Augmenter) BeforeGeneration(ctx context.Context, history []domain.Message, contextSize int, kind domain.GenerationKind) (result []domain.Message) {
	cfg := a.settings.Augment()
	if !cfg.Enabled {
		return history
	}

	defer func() {
		if r := recover(); r != nil {
			a.log.Errorf("augmentation panicked: %v", r)
			a.notify.Warn("chat augmentation failed, continuing without it")
			result = history
		}
	}()

	// Clear first so a run that bails out never leaves a stale slot
	// from a previous turn.
	a.clear()

	a.log.WithFields(logrus.Fields{
		"kind":         kind,
		"context_size": contextSize,
		"messages":     len(history),
	}).Debug("augmenting generation turn")

	if a.quietKind(cfg, kind) {
		a.log.Debugf("generation kind %q is quiet, skipping augmentation", kind)
		return history
	}

	query := extractor.Query(history, cfg.QueryMessages, func(s string) string {
		return prompt.Expand(s, cfg.Macros)
	})
	if query == "" {
		a.log.Debug("no eligible chat text, skipping query")
		return history
	}

	chunks := chunker.Split(query, cfg.ChunkBoundary)

	text, err := a.searcher.Search(ctx, cfg.APIURL, query, cfg.ScoreThreshold, chunks)
	if err != nil {
		if errors.Is(err, search.ErrUnexpectedFormat) {
			a.log.Warnf("search response: %v", err)
		} else {
			a.log.Errorf("search failed: %v", err)
			a.notify.Warn("semantic search request failed")
		}
		return history
	}
	if text == "" {
		return history
	}

	a.slots.Set(SlotID, prompt.Expand(cfg.Template, map[string]string{"text": text}), port.PositionInPrompt, cfg.InjectionDepth, false)

	a.mu.Lock()
	a.last = domain.SearchResult{Query: query, Text: text}
	a.mu.Unlock()

	if len(history) > 0 {
		entry := &history[len(history)-1]
		if entry.Extra == nil {
			entry.Extra = make(map[string]any)
		}
		entry.Extra[domain.ExtraAugmented] = true
	}

	a.log.WithField("chars", len(text)).Debug("injected retrieved context")
	return history
}

// OnMessageReceived strips reference blocks from a generated message so
// injected passages never persist into conversation history.
func (a *Augmenter) OnMessageReceived(msg *domain.Message) {
	if !a.settings.Augment().Enabled {
		return
	}
	sanitizer.Message(msg)
}

// Clear is the user-triggered reset: cached results and the prompt slot
// are emptied and the user is notified. Idempotent.
func (a *Augmenter) Clear() {
	a.clear()
	a.notify.Info("cached search results cleared")
}

// LastResult returns the cached result of the last completed query.
func (a *Augmenter) LastResult() domain.SearchResult {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.last
}

func (a *Augmenter) clear() {
	a.slots.Clear(SlotID)
	a.mu.Lock()
	a.last = domain.SearchResult{}
	a.mu.Unlock()
}

func (a *Augmenter) quietKind(cfg config.AugmentConfig, kind domain.GenerationKind) bool {
	for _, pattern := range cfg.QuietKinds {
		if pattern == string(kind) {
			return true
		}
		if ok, err := doublestar.Match(pattern, string(kind)); err == nil && ok {
			return true
		}
	}
	return false
}
