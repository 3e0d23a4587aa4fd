// Package chunker splits query text into sub-chunks on a literal boundary
// marker. The chunks are sent to the search service as auxiliary context.
package chunker

import "strings"

// Split cuts text on every literal occurrence of boundary, trims each piece
// and drops empty ones. An empty boundary returns the text as a single
// chunk; empty input returns no chunks at all.
func Split(text, boundary string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if boundary == "" {
		return []string{text}
	}

	var chunks []string
	for _, piece := range strings.Split(text, boundary) {
		piece = strings.TrimSpace(piece)
		if piece == "" {
			continue
		}
		chunks = append(chunks, piece)
	}
	return chunks
}
