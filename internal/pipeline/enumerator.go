// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"

	"github.com/mia-platform/adtport/internal/digitaltwins"
)

// Models returns the model definitions of source in service order. Pages are fetched
// only when the previous one has been consumed. The sequence stops at the first error.
func Models(ctx context.Context, source Source) iter.Seq2[digitaltwins.Model, error] {
	pager := source.NewListModelsPager(&digitaltwins.ListModelsOptions{IncludeModelDefinition: true})
	return pageItems(ctx, pager, func(page digitaltwins.ListModelsResponse) ([]digitaltwins.Model, error) {
		models := make([]digitaltwins.Model, 0, len(page.Value))
		for _, data := range page.Value {
			if data.Model == nil {
				return nil, fmt.Errorf("%w: model %q listed without its definition", digitaltwins.ErrInvalidRecord, data.ID)
			}
			models = append(models, *data.Model)
		}
		return models, nil
	})
}

// Twins returns the twins matched by query in service order.
func Twins(ctx context.Context, source Source, query string) iter.Seq2[digitaltwins.Twin, error] {
	return queryItems[digitaltwins.Twin](ctx, source, query)
}

// Relationships returns the relationships matched by query in service order.
func Relationships(ctx context.Context, source Source, query string) iter.Seq2[digitaltwins.Relationship, error] {
	return queryItems[digitaltwins.Relationship](ctx, source, query)
}

func queryItems[T any](ctx context.Context, source Source, query string) iter.Seq2[T, error] {
	pager := source.NewQueryPager(query, nil)
	return pageItems(ctx, pager, func(page digitaltwins.QueryResponse) ([]T, error) {
		items := make([]T, 0, len(page.Value))
		for _, raw := range page.Value {
			var item T
			if err := json.Unmarshal(raw, &item); err != nil {
				return nil, err
			}
			items = append(items, item)
		}
		return items, nil
	})
}

// pageItems flattens the pages of pager into a sequence of items, wrapping every failure
// with ErrEnumeration.
func pageItems[P, T any](ctx context.Context, pager *runtime.Pager[P], items func(P) ([]T, error)) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T
		for pager.More() {
			page, err := pager.NextPage(ctx)
			if err != nil {
				yield(zero, fmt.Errorf("%w: %w", ErrEnumeration, err))
				return
			}

			values, err := items(page)
			if err != nil {
				yield(zero, fmt.Errorf("%w: %w", ErrEnumeration, err))
				return
			}

			for _, item := range values {
				if !yield(item, nil) {
					return
				}
			}
		}
	}
}
