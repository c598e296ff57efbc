// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package resolver finds the endpoint of an Azure Digital Twins instance from its
// resource name using Azure Resource Graph.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/arm"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resourcegraph/armresourcegraph"
)

const (
	instanceQueryTemplate = "resources" +
		" | where type =~ 'microsoft.digitaltwins/digitaltwinsinstances' and name =~ '%s'" +
		" | project id, hostName = tostring(properties.hostName)"
)

var (
	// ErrResolver is the sentinel wrapping every error of the package.
	ErrResolver = errors.New("instance resolution")
	// ErrInstanceNotFound is returned when no instance has the requested name.
	ErrInstanceNotFound = errors.New("instance not found")
	// ErrAmbiguousInstance is returned when more instances share the requested name.
	ErrAmbiguousInstance = errors.New("more instances found, set the subscription to select one")

	instanceNameRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9-]{1,61}[A-Za-z0-9]$`)
)

// IsInstanceName reports whether value is a bare instance name instead of a host name or url.
func IsInstanceName(value string) bool {
	return instanceNameRegex.MatchString(value)
}

// Resolver looks up instances in the subscriptions visible to its credential.
type Resolver struct {
	client        *armresourcegraph.Client
	subscriptions []*string
}

// New returns a Resolver. When subscriptionID is empty every subscription visible to the
// credential is searched.
func New(credential azcore.TokenCredential, subscriptionID string, options *arm.ClientOptions) (*Resolver, error) {
	client, err := armresourcegraph.NewClient(credential, options)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrResolver, err)
	}

	var subscriptions []*string
	if subscriptionID != "" {
		subscriptions = []*string{to.Ptr(subscriptionID)}
	}

	return &Resolver{
		client:        client,
		subscriptions: subscriptions,
	}, nil
}

// Endpoint returns the https endpoint of the instance called name.
func (r *Resolver) Endpoint(ctx context.Context, name string) (string, error) {
	if !IsInstanceName(name) {
		return "", fmt.Errorf("%w: invalid instance name %q", ErrResolver, name)
	}

	resp, err := r.client.Resources(ctx, armresourcegraph.QueryRequest{
		Query:         to.Ptr(fmt.Sprintf(instanceQueryTemplate, name)),
		Subscriptions: r.subscriptions,
		Options: &armresourcegraph.QueryRequestOptions{
			ResultFormat: to.Ptr(armresourcegraph.ResultFormatObjectArray),
		},
	}, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrResolver, err)
	}

	rows, _ := resp.Data.([]any)
	hostNames := make([]string, 0, len(rows))
	for _, row := range rows {
		values, ok := row.(map[string]any)
		if !ok {
			continue
		}
		if hostName, ok := values["hostName"].(string); ok && hostName != "" {
			hostNames = append(hostNames, hostName)
		}
	}

	switch len(hostNames) {
	case 0:
		return "", fmt.Errorf("%w: %w: %s", ErrResolver, ErrInstanceNotFound, name)
	case 1:
		return "https://" + strings.TrimSuffix(hostNames[0], "/"), nil
	default:
		return "", fmt.Errorf("%w: %w: %s", ErrResolver, ErrAmbiguousInstance, name)
	}
}
