package rag

import "errors"

var (
	// ErrUnsupportedFormat is returned when no parser handles the file extension.
	ErrUnsupportedFormat = errors.New("unsupported file type")

	// ErrEmptyDocument is returned when extraction yields no usable text.
	ErrEmptyDocument = errors.New("document contains no extractable text")

	// ErrDimensionMismatch is returned when a vector's length disagrees with
	// the index dimension. This is a configuration fault, not a transient one.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrChunkConfig is returned for an invalid chunk size / overlap pair.
	ErrChunkConfig = errors.New("chunk size must be greater than overlap")
)
