// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package fake provides an in-memory Azure Digital Twins instance for tests.
package fake

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"

	"github.com/mia-platform/adtport/internal/digitaltwins"
)

// Service records every call it receives and serves the configured content through
// pagers that return at most PageSize items per page.
type Service struct {
	tb testing.TB

	Models        []digitaltwins.Model
	Twins         []digitaltwins.Twin
	Relationships []digitaltwins.Relationship
	// PageSize defaults to one item per page.
	PageSize int

	ListModelsErr    error
	QueryErrs        map[string]error
	CreateModelsErr  error
	TwinErrs         map[string]error
	RelationshipErrs map[string]error

	CreatedModels         [][]digitaltwins.Model
	UpsertedTwins         []digitaltwins.Twin
	UpsertedRelationships []digitaltwins.Relationship
	// Calls lists the operations in the order they were issued.
	Calls []string

	lock sync.Mutex
}

// NewService returns an empty Service.
func NewService(tb testing.TB) *Service {
	tb.Helper()
	return &Service{
		tb:               tb,
		QueryErrs:        map[string]error{},
		TwinErrs:         map[string]error{},
		RelationshipErrs: map[string]error{},
	}
}

// RelationshipKey returns the key used by RelationshipErrs.
func RelationshipKey(sourceID, relationshipID string) string {
	return sourceID + "/" + relationshipID
}

// NewListModelsPager serves Models wrapped in their listing envelope.
func (s *Service) NewListModelsPager(options *digitaltwins.ListModelsOptions) *runtime.Pager[digitaltwins.ListModelsResponse] {
	s.tb.Helper()
	includeDefinition := options != nil && options.IncludeModelDefinition

	return runtime.NewPager(runtime.PagingHandler[digitaltwins.ListModelsResponse]{
		More: func(page digitaltwins.ListModelsResponse) bool {
			return page.NextLink != nil
		},
		Fetcher: func(_ context.Context, page *digitaltwins.ListModelsResponse) (digitaltwins.ListModelsResponse, error) {
			s.record("ListModels")
			if s.ListModelsErr != nil {
				return digitaltwins.ListModelsResponse{}, s.ListModelsErr
			}

			start := 0
			if page != nil {
				start, _ = strconv.Atoi(*page.NextLink)
			}

			end, next := s.pageBounds(start, len(s.Models))
			result := digitaltwins.ListModelsResponse{}
			result.Value = make([]digitaltwins.ModelData, 0, end-start)
			for _, model := range s.Models[start:end] {
				data := digitaltwins.ModelData{ID: model.ID}
				if includeDefinition {
					data.Model = &model
				}
				result.Value = append(result.Value, data)
			}
			result.NextLink = next

			return result, nil
		},
	})
}

// NewQueryPager serves Twins for digitaltwins.AllTwinsQuery and Relationships for
// digitaltwins.AllRelationshipsQuery; any other query fails unless an error is configured for it.
func (s *Service) NewQueryPager(query string, _ *digitaltwins.QueryOptions) *runtime.Pager[digitaltwins.QueryResponse] {
	s.tb.Helper()

	return runtime.NewPager(runtime.PagingHandler[digitaltwins.QueryResponse]{
		More: func(page digitaltwins.QueryResponse) bool {
			return page.ContinuationToken != nil
		},
		Fetcher: func(_ context.Context, page *digitaltwins.QueryResponse) (digitaltwins.QueryResponse, error) {
			s.record("Query " + query)
			if err := s.QueryErrs[query]; err != nil {
				return digitaltwins.QueryResponse{}, err
			}

			var items []any
			switch query {
			case digitaltwins.AllTwinsQuery:
				for _, twin := range s.Twins {
					items = append(items, twin)
				}
			case digitaltwins.AllRelationshipsQuery:
				for _, relationship := range s.Relationships {
					items = append(items, relationship)
				}
			default:
				return digitaltwins.QueryResponse{}, fmt.Errorf("fake: unsupported query %q", query)
			}

			start := 0
			if page != nil {
				start, _ = strconv.Atoi(*page.ContinuationToken)
			}

			end, next := s.pageBounds(start, len(items))
			result := digitaltwins.QueryResponse{}
			result.Value = make([]json.RawMessage, 0, end-start)
			for _, item := range items[start:end] {
				encoded, err := json.Marshal(item)
				if err != nil {
					return digitaltwins.QueryResponse{}, err
				}
				result.Value = append(result.Value, encoded)
			}
			result.ContinuationToken = next

			return result, nil
		},
	})
}

// CreateModels records the batch.
func (s *Service) CreateModels(_ context.Context, models []digitaltwins.Model, _ *digitaltwins.CreateModelsOptions) (digitaltwins.CreateModelsResponse, error) {
	s.tb.Helper()
	s.record("CreateModels " + strconv.Itoa(len(models)))

	s.lock.Lock()
	s.CreatedModels = append(s.CreatedModels, models)
	s.lock.Unlock()
	if s.CreateModelsErr != nil {
		return digitaltwins.CreateModelsResponse{}, s.CreateModelsErr
	}

	response := digitaltwins.CreateModelsResponse{}
	for _, model := range models {
		response.Value = append(response.Value, digitaltwins.ModelData{ID: model.ID})
	}
	return response, nil
}

// UpsertDigitalTwin records the twin and fails when an error is configured for id.
func (s *Service) UpsertDigitalTwin(_ context.Context, id string, twin digitaltwins.Twin, _ *digitaltwins.UpsertDigitalTwinOptions) (digitaltwins.UpsertDigitalTwinResponse, error) {
	s.tb.Helper()
	s.record("UpsertDigitalTwin " + id)

	s.lock.Lock()
	s.UpsertedTwins = append(s.UpsertedTwins, twin)
	s.lock.Unlock()
	if err := s.TwinErrs[id]; err != nil {
		return digitaltwins.UpsertDigitalTwinResponse{}, err
	}

	return digitaltwins.UpsertDigitalTwinResponse{Twin: twin}, nil
}

// UpsertRelationship records the relationship and fails when an error is configured for
// the (sourceID, relationshipID) pair.
func (s *Service) UpsertRelationship(_ context.Context, sourceID, relationshipID string, relationship digitaltwins.Relationship, _ *digitaltwins.UpsertRelationshipOptions) (digitaltwins.UpsertRelationshipResponse, error) {
	s.tb.Helper()
	key := RelationshipKey(sourceID, relationshipID)
	s.record("UpsertRelationship " + key)

	s.lock.Lock()
	s.UpsertedRelationships = append(s.UpsertedRelationships, relationship)
	s.lock.Unlock()
	if err := s.RelationshipErrs[key]; err != nil {
		return digitaltwins.UpsertRelationshipResponse{}, err
	}

	return digitaltwins.UpsertRelationshipResponse{Relationship: relationship}, nil
}

func (s *Service) record(call string) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.Calls = append(s.Calls, call)
}

// pageBounds returns the end index of the page starting at start and the token of the
// following page, nil when the page is the last one.
func (s *Service) pageBounds(start, total int) (int, *string) {
	pageSize := s.PageSize
	if pageSize <= 0 {
		pageSize = 1
	}

	end := min(start+pageSize, total)
	if end >= total {
		return end, nil
	}

	next := strconv.Itoa(end)
	return end, &next
}
