// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package pipeline

import (
	"context"

	"github.com/mia-platform/adtport/internal/digitaltwins"
	"github.com/mia-platform/adtport/internal/logger"
)

const (
	migrateLoggerName = "adtport:migrate"
)

// Migrator copies models, twins and relationships from a source to a target instance.
type Migrator struct {
	source  Source
	target  Target
	queries Queries
}

// NewMigrator returns a Migrator. Empty queries select every twin and relationship.
func NewMigrator(source Source, target Target, queries Queries) *Migrator {
	return &Migrator{
		source:  source,
		target:  target,
		queries: queries.withDefaults(),
	}
}

// Run copies all the models in one batch, then every twin and finally every relationship.
// Errors returned are fatal: reading from the source, pushing the models or a cancelled
// context. Failures on single twins or relationships are logged and collected in the report.
func (m *Migrator) Run(ctx context.Context) (*Report, error) {
	report := newReport()
	log := logger.Named(ctx, migrateLoggerName, "runId", report.RunID)
	push := &pusher{target: m.target, log: log, report: report}

	log.Info("migration started")
	models := make([]digitaltwins.Model, 0)
	for model, err := range Models(ctx, m.source) {
		if err != nil {
			log.Error("error reading models", "error", err)
			return report, err
		}
		models = append(models, model)
	}

	if err := push.pushModels(ctx, models); err != nil {
		return report, err
	}

	for twin, err := range Twins(ctx, m.source, m.queries.Twins) {
		if err != nil {
			log.Error("error reading twins", "error", err)
			return report, err
		}
		if err := ctx.Err(); err != nil {
			return report, err
		}
		push.pushTwin(ctx, twin)
	}

	for relationship, err := range Relationships(ctx, m.source, m.queries.Relationships) {
		if err != nil {
			log.Error("error reading relationships", "error", err)
			return report, err
		}
		if err := ctx.Err(); err != nil {
			return report, err
		}
		push.pushRelationship(ctx, relationship)
	}

	report.log(log, "migration finished")
	return report, nil
}
