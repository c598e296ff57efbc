// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package cmd

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/spf13/afero"

	"github.com/mia-platform/adtport/internal/config"
	"github.com/mia-platform/adtport/internal/digitaltwins"
	"github.com/mia-platform/adtport/internal/logger"
	"github.com/mia-platform/adtport/internal/pipeline"
	"github.com/mia-platform/adtport/internal/resolver"
	"github.com/mia-platform/adtport/internal/storage"
	"github.com/mia-platform/adtport/internal/storage/blob"
	"github.com/mia-platform/adtport/internal/storage/file"
	"github.com/mia-platform/adtport/internal/storage/stdio"
)

// service is an instance that can be used both as source and as target.
type service interface {
	pipeline.Source
	pipeline.Target
}

// endpointResolver finds the endpoint of an instance given its name.
type endpointResolver interface {
	Endpoint(ctx context.Context, name string) (string, error)
}

// options holds the resolved settings of a single command execution.
type options struct {
	config *config.Config
	path   string
	fs     afero.Fs
	in     io.Reader
	out    io.Writer

	// the getters can be overridden for testing purposes.
	credentialGetter func(kind string) (azcore.TokenCredential, error)
	serviceGetter    func(endpoint string, credential azcore.TokenCredential) (service, error)
	resolverGetter   func(credential azcore.TokenCredential, subscriptionID string) (endpointResolver, error)

	lock sync.Mutex
}

func newOptions(cfg *config.Config, path string, fs afero.Fs, in io.Reader, out io.Writer) *options {
	return &options{
		config:           cfg,
		path:             path,
		fs:               fs,
		in:               in,
		out:              out,
		credentialGetter: digitaltwins.NewCredential,
		serviceGetter:    newDigitalTwinsClient,
		resolverGetter:   newResolver,
	}
}

// executeMigrate copies the source instance into the target instance.
func (o *options) executeMigrate(ctx context.Context) error {
	if !o.lock.TryLock() {
		return nil
	}
	defer o.lock.Unlock()

	credential, err := o.credentialGetter(o.config.Credential)
	if err != nil {
		return err
	}

	source, err := o.service(ctx, o.config.SourceEndpoint, credential)
	if err != nil {
		return err
	}

	target, err := o.service(ctx, o.config.TargetEndpoint, credential)
	if err != nil {
		return err
	}

	_, err = pipeline.NewMigrator(source, target, o.queries()).Run(ctx)
	return err
}

// executeExport writes the source instance to the configured store.
func (o *options) executeExport(ctx context.Context) error {
	if !o.lock.TryLock() {
		return nil
	}
	defer o.lock.Unlock()

	credential, err := o.credentialGetter(o.config.Credential)
	if err != nil {
		return err
	}

	source, err := o.service(ctx, o.config.SourceEndpoint, credential)
	if err != nil {
		return err
	}

	store, err := o.store(credential)
	if err != nil {
		return err
	}

	_, err = pipeline.NewExporter(source, store, o.queries()).Run(ctx)
	return err
}

// executeImport pushes the content of the configured store to the target instance.
func (o *options) executeImport(ctx context.Context) error {
	if !o.lock.TryLock() {
		return nil
	}
	defer o.lock.Unlock()

	credential, err := o.credentialGetter(o.config.Credential)
	if err != nil {
		return err
	}

	target, err := o.service(ctx, o.config.TargetEndpoint, credential)
	if err != nil {
		return err
	}

	store, err := o.store(credential)
	if err != nil {
		return err
	}

	_, err = pipeline.NewImporter(store, target).Run(ctx)
	return err
}

// service returns the client for endpoint, looking up its host name first when endpoint
// is a bare instance name.
func (o *options) service(ctx context.Context, endpoint string, credential azcore.TokenCredential) (service, error) {
	if resolver.IsInstanceName(endpoint) {
		instanceResolver, err := o.resolverGetter(credential, o.config.SubscriptionID)
		if err != nil {
			return nil, err
		}

		resolved, err := instanceResolver.Endpoint(ctx, endpoint)
		if err != nil {
			return nil, err
		}

		logger.FromContext(ctx).Debug("instance endpoint resolved", "instance", endpoint, "endpoint", resolved)
		endpoint = resolved
	}

	return o.serviceGetter(endpoint, credential)
}

func (o *options) queries() pipeline.Queries {
	return pipeline.Queries{
		Twins:         o.config.Queries.Twins,
		Relationships: o.config.Queries.Relationships,
	}
}

// store selects the blob when configured, the standard streams for "-" and a local
// file otherwise.
func (o *options) store(credential azcore.TokenCredential) (storage.Store, error) {
	switch {
	case o.config.Blob.Enabled():
		client, err := blob.NewClient(blob.ClientConfig{
			AccountName:      o.config.Blob.AccountName,
			ConnectionString: o.config.Blob.ConnectionString,
			Credential:       credential,
		})
		if err != nil {
			return nil, fmt.Errorf("creating storage client: %w", err)
		}
		return blob.NewStore(client, o.config.Blob.ContainerName, o.config.Blob.Name)
	case o.path == stdio.Path:
		return stdio.NewStore(o.in, o.out), nil
	default:
		return file.NewStore(o.fs, o.path), nil
	}
}

func newResolver(credential azcore.TokenCredential, subscriptionID string) (endpointResolver, error) {
	return resolver.New(credential, subscriptionID, nil)
}

func newDigitalTwinsClient(endpoint string, credential azcore.TokenCredential) (service, error) {
	return digitaltwins.NewClient(endpoint, credential, nil)
}
