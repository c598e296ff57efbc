// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package file implements a storage.Store backed by a file on a filesystem.
package file

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/mia-platform/adtport/internal/storage"
)

const (
	dirPermissions  = 0o755
	filePermissions = 0o644
)

var _ storage.Store = &Store{}

// Store reads and writes the file at path.
type Store struct {
	fs   afero.Fs
	path string
}

// NewStore returns a Store for path on fs.
func NewStore(fs afero.Fs, path string) *Store {
	return &Store{
		fs:   fs,
		path: filepath.Clean(path),
	}
}

// Create implements storage.Store. Content is written to a temporary file in the same
// directory and renamed over path on Commit, so a failed export never leaves a truncated file.
func (s *Store) Create(context.Context) (storage.Output, error) {
	dir := filepath.Dir(s.path)
	if err := s.fs.MkdirAll(dir, dirPermissions); err != nil {
		return nil, fmt.Errorf("creating directory %q: %w", dir, err)
	}

	tmp, err := afero.TempFile(s.fs, dir, "."+filepath.Base(s.path)+".*")
	if err != nil {
		return nil, fmt.Errorf("creating %q: %w", s.path, err)
	}

	return &output{
		store:    s,
		file:     tmp,
		buffered: bufio.NewWriter(tmp),
	}, nil
}

// Open implements storage.Store.
func (s *Store) Open(context.Context) (io.ReadCloser, error) {
	file, err := s.fs.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("opening %q: %w", s.path, err)
	}

	return file, nil
}

func (s *Store) String() string {
	return s.path
}

type output struct {
	store    *Store
	file     afero.File
	buffered *bufio.Writer
	closed   bool
}

func (o *output) Write(p []byte) (int, error) {
	if o.closed {
		return 0, storage.ErrAlreadyClosed
	}

	return o.buffered.Write(p)
}

func (o *output) Commit() error {
	if o.closed {
		return storage.ErrAlreadyClosed
	}
	o.closed = true

	tmpName := o.file.Name()
	if err := o.buffered.Flush(); err != nil {
		return o.discard(fmt.Errorf("writing %q: %w", o.store.path, err))
	}

	if err := o.file.Sync(); err != nil {
		return o.discard(fmt.Errorf("writing %q: %w", o.store.path, err))
	}

	if err := o.file.Close(); err != nil {
		_ = o.store.fs.Remove(tmpName)
		return fmt.Errorf("closing %q: %w", o.store.path, err)
	}

	if err := o.store.fs.Chmod(tmpName, filePermissions); err != nil && !errors.Is(err, os.ErrPermission) {
		_ = o.store.fs.Remove(tmpName)
		return fmt.Errorf("writing %q: %w", o.store.path, err)
	}

	if err := o.store.fs.Rename(tmpName, o.store.path); err != nil {
		_ = o.store.fs.Remove(tmpName)
		return fmt.Errorf("replacing %q: %w", o.store.path, err)
	}

	return nil
}

func (o *output) Close() error {
	if o.closed {
		return nil
	}

	o.closed = true
	return o.discard(nil)
}

// discard closes and removes the temporary file, returning err.
func (o *output) discard(err error) error {
	tmpName := o.file.Name()
	_ = o.file.Close()
	_ = o.store.fs.Remove(tmpName)
	return err
}
