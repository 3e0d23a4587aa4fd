package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/EmerJK/emertxthn/config"
	"github.com/EmerJK/emertxthn/internal/adapter/prompt"
	"github.com/EmerJK/emertxthn/internal/adapter/search"
	"github.com/EmerJK/emertxthn/internal/domain"
)

type fakeSettings struct {
	cfg config.AugmentConfig
}

func (f *fakeSettings) Augment() config.AugmentConfig {
	return f.cfg
}

type fakeSearcher struct {
	result string
	err    error
	calls  int
	query  string
	chunks []string
}

func (f *fakeSearcher) Search(ctx context.Context, apiURL, query string, threshold float64, chunks []string) (string, error) {
	f.calls++
	f.query = query
	f.chunks = chunks
	return f.result, f.err
}

type recordingNotifier struct {
	infos []string
	warns []string
}

func (n *recordingNotifier) Info(msg string) { n.infos = append(n.infos, msg) }
func (n *recordingNotifier) Warn(msg string) { n.warns = append(n.warns, msg) }

func enabledConfig() config.AugmentConfig {
	cfg := config.DefaultConfig().Augment
	cfg.Enabled = true
	cfg.APIURL = "http://localhost:8000/search"
	return cfg
}

func newTestAugmenter(cfg config.AugmentConfig, searcher *fakeSearcher) (*Augmenter, *prompt.Registry, *recordingNotifier) {
	log := logrus.New()
	log.SetOutput(io.Discard)

	slots := prompt.NewRegistry()
	notifier := &recordingNotifier{}
	a := NewAugmenter(&fakeSettings{cfg: cfg}, searcher, slots, notifier, log)
	return a, slots, notifier
}

func history() []domain.Message {
	return []domain.Message{
		{Role: domain.RoleSystem, Text: "sys msg", System: true},
		{Role: domain.RoleUser, Text: "hi"},
		{Role: domain.RoleAssistant, Text: "reply"},
	}
}

func TestBeforeGenerationDisabled(t *testing.T) {
	cfg := enabledConfig()
	cfg.Enabled = false

	searcher := &fakeSearcher{result: "found"}
	a, slots, _ := newTestAugmenter(cfg, searcher)

	// A stale slot from some previous state must stay untouched when the
	// extension is disabled.
	slots.Set(SlotID, "stale", 0, 2, false)

	in := history()
	out := a.BeforeGeneration(context.Background(), in, 4096, domain.KindNormal)

	if len(out) != len(in) {
		t.Errorf("expected history unchanged, got %d messages", len(out))
	}
	if searcher.calls != 0 {
		t.Errorf("expected no search call, got %d", searcher.calls)
	}
	if _, ok := slots.Get(SlotID); !ok {
		t.Error("expected slot untouched when disabled")
	}
}

func TestBeforeGenerationSuccess(t *testing.T) {
	searcher := &fakeSearcher{result: "retrieved passage"}
	a, slots, _ := newTestAugmenter(enabledConfig(), searcher)

	out := a.BeforeGeneration(context.Background(), history(), 4096, domain.KindNormal)

	if searcher.query != "hi\nreply" {
		t.Errorf("expected query %q, got %q", "hi\nreply", searcher.query)
	}

	slot, ok := slots.Get(SlotID)
	if !ok {
		t.Fatal("expected populated slot")
	}
	want := "<txtai_box>Relevant information:\nretrieved passage</txtai_box>"
	if slot.Text != want {
		t.Errorf("expected slot %q, got %q", want, slot.Text)
	}

	last := a.LastResult()
	if last.Text != "retrieved passage" || last.Query != "hi\nreply" {
		t.Errorf("unexpected cached result: %+v", last)
	}

	if got := out[len(out)-1].Extra[domain.ExtraAugmented]; got != true {
		t.Errorf("expected last entry marked augmented, got %v", got)
	}
}

func TestBeforeGenerationClearsStaleSlot(t *testing.T) {
	searcher := &fakeSearcher{err: errors.New("network down")}
	a, slots, notifier := newTestAugmenter(enabledConfig(), searcher)

	slots.Set(SlotID, "stale", 0, 2, false)
	a.mu.Lock()
	a.last = domain.SearchResult{Query: "old", Text: "old"}
	a.mu.Unlock()

	out := a.BeforeGeneration(context.Background(), history(), 4096, domain.KindNormal)

	if len(out) != 3 {
		t.Errorf("expected original history, got %d messages", len(out))
	}
	if _, ok := slots.Get(SlotID); ok {
		t.Error("expected stale slot cleared after failed run")
	}
	if a.LastResult() != (domain.SearchResult{}) {
		t.Errorf("expected cached result cleared, got %+v", a.LastResult())
	}
	if len(notifier.warns) != 1 {
		t.Errorf("expected one user notification, got %v", notifier.warns)
	}
}

func TestBeforeGenerationQuietKind(t *testing.T) {
	searcher := &fakeSearcher{result: "found"}
	a, slots, _ := newTestAugmenter(enabledConfig(), searcher)

	slots.Set(SlotID, "stale", 0, 2, false)
	a.BeforeGeneration(context.Background(), history(), 4096, domain.KindQuiet)

	if searcher.calls != 0 {
		t.Errorf("expected no search for quiet kind, got %d calls", searcher.calls)
	}
	if _, ok := slots.Get(SlotID); ok {
		t.Error("expected slot cleared for quiet kind")
	}
}

func TestBeforeGenerationQuietKindGlob(t *testing.T) {
	cfg := enabledConfig()
	cfg.QuietKinds = []string{"quiet*"}

	searcher := &fakeSearcher{result: "found"}
	a, _, _ := newTestAugmenter(cfg, searcher)

	a.BeforeGeneration(context.Background(), history(), 4096, domain.GenerationKind("quiet-summary"))

	if searcher.calls != 0 {
		t.Errorf("expected glob-matched kind skipped, got %d calls", searcher.calls)
	}
}

func TestBeforeGenerationEmptyQuery(t *testing.T) {
	searcher := &fakeSearcher{result: "found"}
	a, slots, _ := newTestAugmenter(enabledConfig(), searcher)

	onlySystem := []domain.Message{
		{Role: domain.RoleSystem, Text: "sys", System: true},
	}
	a.BeforeGeneration(context.Background(), onlySystem, 4096, domain.KindNormal)

	if searcher.calls != 0 {
		t.Errorf("expected empty query to skip search, got %d calls", searcher.calls)
	}
	if _, ok := slots.Get(SlotID); ok {
		t.Error("expected slot to remain empty")
	}
}

func TestBeforeGenerationEmptySearchResult(t *testing.T) {
	searcher := &fakeSearcher{result: ""}
	a, slots, notifier := newTestAugmenter(enabledConfig(), searcher)

	a.BeforeGeneration(context.Background(), history(), 4096, domain.KindNormal)

	if _, ok := slots.Get(SlotID); ok {
		t.Error("expected slot empty for empty search result")
	}
	if len(notifier.warns) != 0 {
		t.Errorf("expected no notification, got %v", notifier.warns)
	}
}

func TestBeforeGenerationUnexpectedFormatNotNotified(t *testing.T) {
	searcher := &fakeSearcher{err: fmt.Errorf("%w: {}", search.ErrUnexpectedFormat)}
	a, _, notifier := newTestAugmenter(enabledConfig(), searcher)

	out := a.BeforeGeneration(context.Background(), history(), 4096, domain.KindNormal)

	if len(out) != 3 {
		t.Errorf("expected original history, got %d messages", len(out))
	}
	// Shape problems are logged as warnings but not pushed at the user.
	if len(notifier.warns) != 0 {
		t.Errorf("expected no user notification, got %v", notifier.warns)
	}
}

func TestBeforeGenerationChunks(t *testing.T) {
	cfg := enabledConfig()
	cfg.ChunkBoundary = "\n"

	searcher := &fakeSearcher{result: "found"}
	a, _, _ := newTestAugmenter(cfg, searcher)

	a.BeforeGeneration(context.Background(), history(), 4096, domain.KindNormal)

	if len(searcher.chunks) != 2 {
		t.Errorf("expected per-message chunks, got %v", searcher.chunks)
	}
}

func TestOnMessageReceived(t *testing.T) {
	a, _, _ := newTestAugmenter(enabledConfig(), &fakeSearcher{})

	msg := &domain.Message{Role: domain.RoleAssistant, Text: "pre<txtai_box>ref stuff</txtai_box>post"}
	a.OnMessageReceived(msg)

	if msg.Text != "prepost" {
		t.Errorf("expected sanitized text, got %q", msg.Text)
	}
}

func TestOnMessageReceivedDisabled(t *testing.T) {
	cfg := enabledConfig()
	cfg.Enabled = false
	a, _, _ := newTestAugmenter(cfg, &fakeSearcher{})

	msg := &domain.Message{Role: domain.RoleAssistant, Text: "pre<txtai_box>ref</txtai_box>post"}
	a.OnMessageReceived(msg)

	if msg.Text != "pre<txtai_box>ref</txtai_box>post" {
		t.Errorf("expected text untouched when disabled, got %q", msg.Text)
	}
}

func TestClearIdempotent(t *testing.T) {
	searcher := &fakeSearcher{result: "found"}
	a, slots, notifier := newTestAugmenter(enabledConfig(), searcher)

	a.BeforeGeneration(context.Background(), history(), 4096, domain.KindNormal)
	if _, ok := slots.Get(SlotID); !ok {
		t.Fatal("expected populated slot before clear")
	}

	a.Clear()
	a.Clear()

	if _, ok := slots.Get(SlotID); ok {
		t.Error("expected slot cleared")
	}
	if a.LastResult() != (domain.SearchResult{}) {
		t.Errorf("expected empty cached result, got %+v", a.LastResult())
	}
	if len(notifier.infos) != 2 {
		t.Errorf("expected a notification per clear, got %v", notifier.infos)
	}
}
