// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package logger provides the JSON structured logger used by every command.
// Loggers are carried through the context, so that each pipeline can derive its own
// named logger from the one configured by the root command.
package logger
