package port

// Position addresses where a prompt slot lands in the assembled prompt.
type Position int

const (
	// PositionInPrompt splices the slot into the main prompt body at the
	// configured depth from the end.
	PositionInPrompt Position = iota
	// PositionBeforePrompt places the slot ahead of the prompt body.
	PositionBeforePrompt
	// PositionInChat interleaves the slot with chat messages.
	PositionInChat
)

// Slots is the host's prompt-slot API. Each slot is a named fragment of the
// assembled prompt; Set fully replaces its content.
type Slots interface {
	Set(id, text string, pos Position, depth int, scan bool)
	Clear(id string)
}
