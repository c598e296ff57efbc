// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/mia-platform/adtport/internal/config"
)

// handleError will do custom print error handling based on the type of error received.
// It prints the usage for configuration errors and returns the original error so that
// the command exits with a non zero code.
func handleError(cmd *cobra.Command, err error) error {
	switch {
	case errors.Is(err, config.ErrInvalidConfig):
		cmd.PrintErrln(err)
		_ = cmd.Usage() // do not check error as we cannot do much about it
		return err
	default:
		cmd.PrintErrln(err)
		return err
	}
}

// noArgs rejects any positional argument printing the error and the usage.
func noArgs(cmd *cobra.Command, args []string) error {
	err := cobra.NoArgs(cmd, args)
	if err != nil {
		cmd.PrintErrln(err)
		_ = cmd.Usage()
	}

	return err
}
