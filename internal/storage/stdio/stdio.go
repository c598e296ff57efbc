// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package stdio implements a storage.Store backed by the process standard streams.
// It is useful to pipe an export into another tool, or an import from one.
package stdio

import (
	"context"
	"io"
	"sync"

	"github.com/mia-platform/adtport/internal/storage"
)

// Path is the conventional path selecting the standard streams.
const Path = "-"

var _ storage.Store = &Store{}

// Store reads from in and writes to out.
type Store struct {
	in  io.Reader
	out io.Writer

	lock sync.Mutex
}

// NewStore returns a Store over the given streams.
func NewStore(in io.Reader, out io.Writer) *Store {
	return &Store{
		in:  in,
		out: out,
	}
}

// Create implements storage.Store. Content cannot be discarded once written.
func (s *Store) Create(context.Context) (storage.Output, error) {
	return &output{store: s}, nil
}

// Open implements storage.Store.
func (s *Store) Open(context.Context) (io.ReadCloser, error) {
	return io.NopCloser(s.in), nil
}

func (s *Store) String() string {
	return "standard streams"
}

type output struct {
	store  *Store
	closed bool
}

func (o *output) Write(p []byte) (int, error) {
	if o.closed {
		return 0, storage.ErrAlreadyClosed
	}

	o.store.lock.Lock()
	defer o.store.lock.Unlock()
	return o.store.out.Write(p)
}

func (o *output) Commit() error {
	if o.closed {
		return storage.ErrAlreadyClosed
	}

	o.closed = true
	return nil
}

func (o *output) Close() error {
	o.closed = true
	return nil
}
