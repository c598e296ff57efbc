// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package digitaltwins implements a small data plane client for Azure Digital Twins.
// It only exposes the operations needed to read models, twins and relationships from
// an instance and to write them into another one, and it is built on top of the
// Azure core pipeline so authentication, retries and telemetry follow the Azure SDK behavior.
package digitaltwins
