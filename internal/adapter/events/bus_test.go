package events

import (
	"testing"

	"github.com/EmerJK/emertxthn/internal/domain"
)

func TestBusRoutesToSubscribers(t *testing.T) {
	bus := NewBus()

	var seen []string
	bus.Subscribe(MessageReceived, func(msg *domain.Message) {
		seen = append(seen, "first:"+msg.Text)
	})
	bus.Subscribe(MessageReceived, func(msg *domain.Message) {
		seen = append(seen, "second:"+msg.Text)
	})
	bus.Subscribe(MessageSent, func(msg *domain.Message) {
		t.Error("unexpected handler invocation")
	})

	bus.Publish(MessageReceived, &domain.Message{Text: "hi"})

	if len(seen) != 2 || seen[0] != "first:hi" || seen[1] != "second:hi" {
		t.Errorf("unexpected handler calls: %v", seen)
	}
}

func TestBusMutationVisible(t *testing.T) {
	bus := NewBus()
	bus.Subscribe(MessageReceived, func(msg *domain.Message) {
		msg.Text = "rewritten"
	})

	msg := &domain.Message{Text: "original"}
	bus.Publish(MessageReceived, msg)

	if msg.Text != "rewritten" {
		t.Errorf("expected in-place rewrite, got %q", msg.Text)
	}
}

func TestBusNoSubscribers(t *testing.T) {
	bus := NewBus()
	bus.Publish(MessageEdited, &domain.Message{Text: "x"})
}
