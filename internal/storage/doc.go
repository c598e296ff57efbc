// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package storage defines where export files are written to and read from.
// Every implementation gives the same guarantees: an output is created once, written
// sequentially and either committed or discarded when closed.
package storage
