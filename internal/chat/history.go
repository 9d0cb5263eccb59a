// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package chat keeps a conversation with the retrieval oracle: an
// append-only history of answers and a session that asks new questions.
package chat

import (
	"sync"

	"github.com/pdiddy/bioexplorer/pkg/types"
)

// History is an append-only, chronological list of chat responses. It is
// emptied only by Clear. Safe for concurrent use.
type History struct {
	mu        sync.RWMutex
	responses []types.ChatResponse
}

// Append adds resp at the end of the history.
func (h *History) Append(resp types.ChatResponse) {
	h.mu.Lock()
	h.responses = append(h.responses, resp)
	h.mu.Unlock()
}

// Clear empties the history.
func (h *History) Clear() {
	h.mu.Lock()
	h.responses = nil
	h.mu.Unlock()
}

// Responses returns a copy of the history, oldest first.
func (h *History) Responses() []types.ChatResponse {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]types.ChatResponse, len(h.responses))
	copy(out, h.responses)
	return out
}

// Len returns the number of stored responses.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.responses)
}

// Last returns the most recent response.
func (h *History) Last() (types.ChatResponse, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.responses) == 0 {
		return types.ChatResponse{}, false
	}
	return h.responses[len(h.responses)-1], true
}
