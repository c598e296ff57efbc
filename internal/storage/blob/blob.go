// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package blob implements a storage.Store backed by an Azure Storage blob.
package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"

	"github.com/mia-platform/adtport/internal/storage"
)

var (
	// ErrMissingAccount is returned when neither an account name nor a connection string is provided.
	ErrMissingAccount = errors.New("one of storage account name or connection string must be present")
	// ErrMissingContainer is returned when the container name is empty.
	ErrMissingContainer = errors.New("missing storage container name")
	// ErrMissingBlobName is returned when the blob name is empty.
	ErrMissingBlobName = errors.New("missing blob name")

	errUploadAborted = errors.New("upload aborted")
)

// ClientConfig holds the information needed to connect to a storage account.
type ClientConfig struct {
	AccountName      string
	ConnectionString string
	Credential       azcore.TokenCredential
	Options          *azblob.ClientOptions
}

// NewClient returns a blob client using the connection string when present and
// the account name with the token credential otherwise.
func NewClient(cfg ClientConfig) (*azblob.Client, error) {
	if cfg.ConnectionString != "" {
		return azblob.NewClientFromConnectionString(cfg.ConnectionString, cfg.Options)
	}

	if cfg.AccountName == "" {
		return nil, ErrMissingAccount
	}

	return azblob.NewClient(ServiceURL(cfg.AccountName), cfg.Credential, cfg.Options)
}

// ServiceURL returns the blob service url for account, that can be a bare account
// name or an already complete service url.
func ServiceURL(account string) string {
	if strings.Contains(account, ".blob.core.windows.net") {
		if !strings.Contains(account, "://") {
			return "https://" + account
		}
		return account
	}

	return fmt.Sprintf("https://%s.blob.core.windows.net/", account)
}

var _ storage.Store = &Store{}

// Store reads and writes a single block blob.
type Store struct {
	client    *azblob.Client
	container string
	name      string
}

// NewStore returns a Store for the blob name inside container.
func NewStore(client *azblob.Client, container, name string) (*Store, error) {
	switch {
	case container == "":
		return nil, ErrMissingContainer
	case name == "":
		return nil, ErrMissingBlobName
	}

	return &Store{
		client:    client,
		container: container,
		name:      name,
	}, nil
}

// Create implements storage.Store. Writes are streamed to the blob by a background
// upload that is completed on Commit and cancelled on Close.
func (s *Store) Create(ctx context.Context) (storage.Output, error) {
	uploadCtx, cancel := context.WithCancel(ctx)
	reader, writer := io.Pipe()

	out := &output{
		store:  s,
		writer: writer,
		cancel: cancel,
		done:   make(chan error, 1),
	}

	go func() {
		_, err := s.client.UploadStream(uploadCtx, s.container, s.name, reader, nil)
		reader.CloseWithError(err)
		out.done <- err
	}()

	return out, nil
}

// Open implements storage.Store.
func (s *Store) Open(ctx context.Context) (io.ReadCloser, error) {
	resp, err := s.client.DownloadStream(ctx, s.container, s.name, nil)
	if err != nil {
		return nil, fmt.Errorf("downloading %s: %w", s, err)
	}

	return resp.Body, nil
}

func (s *Store) String() string {
	return s.client.ServiceClient().NewContainerClient(s.container).NewBlobClient(s.name).URL()
}

type output struct {
	store  *Store
	writer *io.PipeWriter
	cancel context.CancelFunc
	done   chan error
	closed bool
}

func (o *output) Write(p []byte) (int, error) {
	if o.closed {
		return 0, storage.ErrAlreadyClosed
	}

	return o.writer.Write(p)
}

func (o *output) Commit() error {
	if o.closed {
		return storage.ErrAlreadyClosed
	}
	o.closed = true
	defer o.cancel()

	if err := o.writer.Close(); err != nil {
		return fmt.Errorf("uploading %s: %w", o.store, err)
	}

	if err := <-o.done; err != nil {
		return fmt.Errorf("uploading %s: %w", o.store, err)
	}

	return nil
}

func (o *output) Close() error {
	if o.closed {
		return nil
	}
	o.closed = true

	o.writer.CloseWithError(errUploadAborted)
	o.cancel()
	<-o.done
	return nil
}
