// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package pipeline provides the flows that move models, twins and relationships
// between Azure Digital Twins instances and export files.
// Every flow is sequential: models are sent first in a single batch, then twins and
// relationships are sent one at a time, and a failure on a single item is logged
// without stopping the run.
package pipeline
