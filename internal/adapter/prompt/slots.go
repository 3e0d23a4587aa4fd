// Package prompt implements the named prompt-slot registry and template
// macro expansion used when splicing retrieved text into the prompt.
package prompt

import (
	"sort"
	"strings"
	"sync"

	"github.com/EmerJK/emertxthn/internal/port"
)

// Slot is a named, positioned fragment of the assembled prompt.
type Slot struct {
	ID    string
	Text  string
	Pos   port.Position
	Depth int
	Scan  bool
}

// Registry holds the current prompt slots for one session.
type Registry struct {
	mu    sync.RWMutex
	slots map[string]Slot
}

var _ port.Slots = (*Registry)(nil)

func NewRegistry() *Registry {
	return &Registry{
		slots: make(map[string]Slot),
	}
}

// Set fully replaces the slot's content.
func (r *Registry) Set(id, text string, pos port.Position, depth int, scan bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.slots[id] = Slot{ID: id, Text: text, Pos: pos, Depth: depth, Scan: scan}
}

// Clear removes the slot. Clearing an absent slot is a no-op.
func (r *Registry) Clear(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.slots, id)
}

// Get returns the slot and whether it is populated.
func (r *Registry) Get(id string) (Slot, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.slots[id]
	return s, ok
}

// Render joins the texts of all populated slots at pos, ordered by depth
// (deepest first) with slot id as tiebreaker.
func (r *Registry) Render(pos port.Position) string {
	r.mu.RLock()
	var slots []Slot
	for _, s := range r.slots {
		if s.Pos == pos && s.Text != "" {
			slots = append(slots, s)
		}
	}
	r.mu.RUnlock()

	sort.Slice(slots, func(i, j int) bool {
		if slots[i].Depth != slots[j].Depth {
			return slots[i].Depth > slots[j].Depth
		}
		return slots[i].ID < slots[j].ID
	})

	texts := make([]string, 0, len(slots))
	for _, s := range slots {
		texts = append(texts, s.Text)
	}
	return strings.Join(texts, "\n")
}
