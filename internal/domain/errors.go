package domain

import "errors"

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput signals a structurally invalid request, rejected before any external call.
	ErrInvalidInput = errors.New("invalid input")
	// ErrSessionNotFound signals a clarification answer with no matching pending session.
	ErrSessionNotFound = errors.New("clarification session not found")
	// ErrSessionCorrupted signals a pending session missing its original query.
	ErrSessionCorrupted = errors.New("clarification session corrupted")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrParserProviderError signals an intent parser provider failure.
	ErrParserProviderError = errors.New("intent parser provider error")
	// ErrParserOutputInvalid signals well-formed transport but malformed
	// parser output; recovered locally by degrading to clarification.
	ErrParserOutputInvalid = errors.New("intent parser output invalid")
)
