// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package pipeline

import (
	"context"
	"fmt"

	"github.com/mia-platform/adtport/internal/digitaltwins"
	"github.com/mia-platform/adtport/internal/logger"
)

// Result is the outcome of pushing a single twin or relationship.
type Result struct {
	// ID is the twin id, or the relationship id for relationships.
	ID  string
	Err error
}

// pusher sends entities to a target and records the outcome in a report.
type pusher struct {
	target Target
	log    logger.Logger
	report *Report
}

// pushModels sends all models in one batch so that the target can resolve the
// references between them. The batch is sent even when models is empty.
func (p *pusher) pushModels(ctx context.Context, models []digitaltwins.Model) error {
	p.log.Info("pushing models", "count", len(models))
	if models == nil {
		models = []digitaltwins.Model{}
	}

	p.report.Models.Total = len(models)
	if _, err := p.target.CreateModels(ctx, models, nil); err != nil {
		p.log.Error("error pushing models", "error", digitaltwins.ErrorMessage(err))
		p.report.Models.Failed = len(models)
		return fmt.Errorf("%w: %w", ErrModelsPush, err)
	}

	return nil
}

func (p *pusher) pushTwin(ctx context.Context, twin digitaltwins.Twin) Result {
	p.log.Info("pushing twin", "twinId", twin.ID)
	result := Result{ID: twin.ID}
	if _, err := p.target.UpsertDigitalTwin(ctx, twin.ID, twin, nil); err != nil {
		p.log.Error("error pushing twin", "twinId", twin.ID, "error", digitaltwins.ErrorMessage(err))
		result.Err = err
	}

	p.report.recordTwin(result)
	return result
}

func (p *pusher) pushRelationship(ctx context.Context, relationship digitaltwins.Relationship) Result {
	p.log.Info("pushing relationship",
		"sourceId", relationship.SourceID,
		"targetId", relationship.TargetID,
		"relationshipId", relationship.ID,
	)

	result := Result{ID: relationship.ID}
	if _, err := p.target.UpsertRelationship(ctx, relationship.SourceID, relationship.ID, relationship, nil); err != nil {
		p.log.Error("error pushing relationship",
			"sourceId", relationship.SourceID,
			"targetId", relationship.TargetID,
			"relationshipId", relationship.ID,
			"error", digitaltwins.ErrorMessage(err),
		)
		result.Err = err
	}

	p.report.recordRelationship(result)
	return result
}
