// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package pipeline

import (
	"context"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"

	"github.com/mia-platform/adtport/internal/digitaltwins"
)

// Source is an instance the models, twins and relationships are read from.
type Source interface {
	NewListModelsPager(options *digitaltwins.ListModelsOptions) *runtime.Pager[digitaltwins.ListModelsResponse]
	NewQueryPager(query string, options *digitaltwins.QueryOptions) *runtime.Pager[digitaltwins.QueryResponse]
}

// Target is an instance the models, twins and relationships are written to.
type Target interface {
	CreateModels(ctx context.Context, models []digitaltwins.Model, options *digitaltwins.CreateModelsOptions) (digitaltwins.CreateModelsResponse, error)
	UpsertDigitalTwin(ctx context.Context, id string, twin digitaltwins.Twin, options *digitaltwins.UpsertDigitalTwinOptions) (digitaltwins.UpsertDigitalTwinResponse, error)
	UpsertRelationship(ctx context.Context, sourceID, relationshipID string, relationship digitaltwins.Relationship, options *digitaltwins.UpsertRelationshipOptions) (digitaltwins.UpsertRelationshipResponse, error)
}

var (
	_ Source = &digitaltwins.Client{}
	_ Target = &digitaltwins.Client{}
)

// Queries holds the queries used to enumerate twins and relationships.
type Queries struct {
	Twins         string
	Relationships string
}

// DefaultQueries selects every twin and every relationship.
func DefaultQueries() Queries {
	return Queries{
		Twins:         digitaltwins.AllTwinsQuery,
		Relationships: digitaltwins.AllRelationshipsQuery,
	}
}

func (q Queries) withDefaults() Queries {
	defaults := DefaultQueries()
	if q.Twins == "" {
		q.Twins = defaults.Twins
	}
	if q.Relationships == "" {
		q.Relationships = defaults.Relationships
	}
	return q
}
