// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mia-platform/adtport/internal/digitaltwins"
	"github.com/mia-platform/adtport/internal/exportfile"
	"github.com/mia-platform/adtport/internal/logger"
	"github.com/mia-platform/adtport/internal/storage"
)

const (
	importLoggerName = "adtport:import"
)

// Importer pushes the content of an export file to a target instance.
type Importer struct {
	store  storage.Store
	target Target
}

// NewImporter returns an Importer reading from store.
func NewImporter(store storage.Store, target Target) *Importer {
	return &Importer{
		store:  store,
		target: target,
	}
}

// Run buffers the models of the file and pushes them in one batch before the first twin
// or relationship, then pushes every twin and relationship as they are read. Malformed
// input and a failed model batch stop the run.
func (i *Importer) Run(ctx context.Context) (*Report, error) {
	report := newReport()
	log := logger.Named(ctx, importLoggerName, "runId", report.RunID)
	push := &pusher{target: i.target, log: log, report: report}

	log.Info("import started", "input", i.store.String())
	input, err := i.store.Open(ctx)
	if err != nil {
		return report, fmt.Errorf("%w: %w", ErrImport, err)
	}
	defer input.Close()

	reader := exportfile.NewReader(input)
	version, err := reader.ReadHeader()
	if err != nil {
		return report, fmt.Errorf("%w: %w", ErrImport, err)
	}
	log.Debug("export file header read", "fileVersion", version)

	models := make([]digitaltwins.Model, 0)
	modelsPushed := false
	for record, err := range reader.Records() {
		if err != nil {
			return report, fmt.Errorf("%w: %w", ErrImport, err)
		}

		if record.Section == exportfile.SectionModels {
			var model digitaltwins.Model
			if err := decodeRecord(record, &model); err != nil {
				return report, err
			}
			models = append(models, model)
			continue
		}

		if !modelsPushed {
			if err := push.pushModels(ctx, models); err != nil {
				return report, err
			}
			modelsPushed = true
		}

		if err := ctx.Err(); err != nil {
			return report, err
		}

		switch record.Section {
		case exportfile.SectionTwins:
			var twin digitaltwins.Twin
			if err := decodeRecord(record, &twin); err != nil {
				return report, err
			}
			push.pushTwin(ctx, twin)
		case exportfile.SectionRelationships:
			var relationship digitaltwins.Relationship
			if err := decodeRecord(record, &relationship); err != nil {
				return report, err
			}
			push.pushRelationship(ctx, relationship)
		}
	}

	if !modelsPushed {
		if err := push.pushModels(ctx, models); err != nil {
			return report, err
		}
	}

	report.log(log, "import finished")
	return report, nil
}

func decodeRecord(record exportfile.Record, target any) error {
	if err := json.Unmarshal(record.Raw, target); err != nil {
		return fmt.Errorf("%w: %w: line %d: %w", ErrImport, exportfile.ErrInvalidFormat, record.Line, err)
	}
	return nil
}
