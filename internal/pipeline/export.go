// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package pipeline

import (
	"context"
	"fmt"

	"github.com/mia-platform/adtport/internal/exportfile"
	"github.com/mia-platform/adtport/internal/logger"
	"github.com/mia-platform/adtport/internal/storage"
)

const (
	exportLoggerName = "adtport:export"
)

// Exporter writes the models, twins and relationships of a source instance to a store.
type Exporter struct {
	source  Source
	store   storage.Store
	queries Queries
}

// NewExporter returns an Exporter. Empty queries select every twin and relationship.
func NewExporter(source Source, store storage.Store, queries Queries) *Exporter {
	return &Exporter{
		source:  source,
		store:   store,
		queries: queries.withDefaults(),
	}
}

// Run writes the header, then every model, twin and relationship, each preceded by its
// section marker. Any error aborts the run and discards the partial output.
func (e *Exporter) Run(ctx context.Context) (*Report, error) {
	report := newReport()
	log := logger.Named(ctx, exportLoggerName, "runId", report.RunID)

	log.Info("export started", "output", e.store.String())
	output, err := e.store.Create(ctx)
	if err != nil {
		return report, fmt.Errorf("%w: %w", ErrExport, err)
	}
	defer output.Close()

	writer := exportfile.NewWriter(output)
	if err := writer.WriteHeader(); err != nil {
		return report, fmt.Errorf("%w: %w", ErrExport, err)
	}

	for model, err := range Models(ctx, e.source) {
		if err != nil {
			log.Error("error reading models", "error", err)
			return report, err
		}
		if err := writer.WriteRecord(exportfile.SectionModels, model); err != nil {
			return report, fmt.Errorf("%w: %w", ErrExport, err)
		}
		report.Models.Total++
	}

	for twin, err := range Twins(ctx, e.source, e.queries.Twins) {
		if err != nil {
			log.Error("error reading twins", "error", err)
			return report, err
		}
		if err := writer.WriteRecord(exportfile.SectionTwins, twin); err != nil {
			return report, fmt.Errorf("%w: %w", ErrExport, err)
		}
		report.Twins.Total++
	}

	for relationship, err := range Relationships(ctx, e.source, e.queries.Relationships) {
		if err != nil {
			log.Error("error reading relationships", "error", err)
			return report, err
		}
		if err := writer.WriteRecord(exportfile.SectionRelationships, relationship); err != nil {
			return report, fmt.Errorf("%w: %w", ErrExport, err)
		}
		report.Relationships.Total++
	}

	if err := output.Commit(); err != nil {
		return report, fmt.Errorf("%w: %w", ErrExport, err)
	}

	log.Debug("export written", "lines", writer.Lines())
	report.log(log, "export finished")
	return report, nil
}
