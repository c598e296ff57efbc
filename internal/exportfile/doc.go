// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package exportfile reads and writes the line-delimited JSON format used to export the
// content of an Azure Digital Twins instance.
//
// The file starts with a {"Section": "Header"} marker followed by a {"fileVersion": "1.0.0"}
// record, then every model, twin and relationship is written on its own line, each one
// preceded by the marker of its section. Sections always appear in the order
// Models, Twins, Relationships. Every line uses ", " and ": " as separators.
package exportfile
