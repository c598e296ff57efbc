// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package pipeline

import "errors"

var (
	// ErrEnumeration reports a failure while reading entities from the source.
	ErrEnumeration = errors.New("error reading from source")
	// ErrModelsPush reports the failure of the model batch, that stops the run.
	ErrModelsPush = errors.New("error pushing models")
	// ErrExport reports a failure while writing the export file.
	ErrExport = errors.New("error writing export")
	// ErrImport reports a failure while reading the export file.
	ErrImport = errors.New("error reading export")
)
