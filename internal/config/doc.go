// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package config loads the settings shared by all commands from an optional yaml file
// and from environment variables, with the environment taking precedence.
package config
