// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package pipeline

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"

	"github.com/mia-platform/adtport/internal/logger"
)

// Counter tracks how many items of a category were handled and how many of them failed.
type Counter struct {
	Total  int
	Failed int
}

// Report summarizes a single run.
type Report struct {
	// RunID identifies the run in the log lines.
	RunID         string
	Models        Counter
	Twins         Counter
	Relationships Counter
	// Failures collects the errors of the twins and relationships that could not be pushed.
	Failures *multierror.Error
}

func newReport() *Report {
	return &Report{RunID: uuid.NewString()}
}

// Err returns the aggregated item failures, or nil when every item succeeded.
func (r *Report) Err() error {
	return r.Failures.ErrorOrNil()
}

func (r *Report) recordTwin(result Result) {
	r.Twins.Total++
	if result.Err != nil {
		r.Twins.Failed++
		r.Failures = multierror.Append(r.Failures, fmt.Errorf("twin %q: %w", result.ID, result.Err))
	}
}

func (r *Report) recordRelationship(result Result) {
	r.Relationships.Total++
	if result.Err != nil {
		r.Relationships.Failed++
		r.Failures = multierror.Append(r.Failures, fmt.Errorf("relationship %q: %w", result.ID, result.Err))
	}
}

func (r *Report) log(log logger.Logger, msg string) {
	log.Info(msg,
		"models", r.Models.Total,
		"twins", r.Twins.Total,
		"failedTwins", r.Twins.Failed,
		"relationships", r.Relationships.Total,
		"failedRelationships", r.Relationships.Failed,
	)
}
