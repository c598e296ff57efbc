// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package storage

import (
	"context"
	"errors"
	"io"
)

var (
	// ErrAlreadyClosed is returned when writing to or committing an output that has been closed.
	ErrAlreadyClosed = errors.New("output already closed")
)

// Store gives access to a single export file.
type Store interface {
	// Create returns a new Output replacing any previous content once committed.
	Create(ctx context.Context) (Output, error)
	// Open returns a reader over the current content.
	Open(ctx context.Context) (io.ReadCloser, error)
	// String returns a human readable location for logging.
	String() string
}

// Output is the write side of a Store.
type Output interface {
	io.Writer

	// Commit flushes the written content and releases the output.
	Commit() error
	// Close releases the output. Called before Commit it discards the written content when
	// the backing store allows it, called after Commit it does nothing.
	Close() error
}
