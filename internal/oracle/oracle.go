// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package oracle is the HTTP client for the retrieval backend: semantic RAG
// chat, structured document search, facet discovery, and corpus stats.
package oracle

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pdiddy/bioexplorer/pkg/types"
)

// Chatter answers a question with grounded citations.
type Chatter interface {
	Chat(ctx context.Context, req types.ChatRequest) (*types.ChatResponse, error)
}

// DocumentSearcher runs a structured document search.
type DocumentSearcher interface {
	SearchDocuments(ctx context.Context, req types.DocumentSearchRequest) (*types.DocumentSearchResponse, error)
}

// Catalog reports facet values and corpus statistics.
type Catalog interface {
	FilterValues(ctx context.Context) (*types.FilterValues, error)
	Stats(ctx context.Context) (*types.Stats, error)
}

// Backend is everything the explorer needs from a retrieval source. Both
// the HTTP Client and the fixture backend implement it.
type Backend interface {
	Chatter
	DocumentSearcher
	Catalog
	Health(ctx context.Context) (*types.HealthResponse, error)
}

// Diagnostics inspects the retrieval pipeline below the chat endpoint.
// Only the HTTP Client implements it.
type Diagnostics interface {
	Embedding(ctx context.Context, text string) (*types.EmbeddingResponse, error)
	Retrieval(ctx context.Context, query string, topK int) (*types.RetrievalResponse, error)
}

// ErrRetrievalFailed matches every *RetrievalError via errors.Is.
var ErrRetrievalFailed = errors.New("retrieval failed")

// RetrievalError describes a failed call to the retrieval backend. A
// non-2xx response carries StatusCode, Status, and Body; a transport
// failure carries Err.
type RetrievalError struct {
	Op         string
	StatusCode int
	Status     string
	Body       string
	Err        error
}

func (e *RetrievalError) Error() string {
	if e == nil {
		return ErrRetrievalFailed.Error()
	}
	if e.StatusCode == 0 {
		return fmt.Sprintf("retrieval %s: %v", e.Op, e.Err)
	}
	if strings.TrimSpace(e.Body) == "" {
		return fmt.Sprintf("retrieval %s: HTTP %d %s", e.Op, e.StatusCode, e.Status)
	}
	return fmt.Sprintf("retrieval %s: HTTP %d %s: %s", e.Op, e.StatusCode, e.Status, e.Body)
}

// Unwrap returns the transport cause, if any.
func (e *RetrievalError) Unwrap() error { return e.Err }

// Is reports true for ErrRetrievalFailed.
func (e *RetrievalError) Is(target error) bool { return target == ErrRetrievalFailed }

// Upstream reports whether the backend answered with an error status, as
// opposed to the request never completing.
func (e *RetrievalError) Upstream() bool { return e.StatusCode != 0 }
