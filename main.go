// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	internalcmd "github.com/mia-platform/adtport/internal/cmd"
	"github.com/mia-platform/adtport/internal/info"
	"github.com/mia-platform/adtport/internal/logger"
)

var (
	// Version is injected at build time via the Makefile.
	Version = info.Version
	// BuildDate is injected at build time via the Makefile.
	BuildDate = info.BuildDate
)

const (
	appShort = "adtport copies and exports the content of Azure Digital Twins instances"
	appLong  = `adtport moves models, twins and relationships out of an Azure Digital Twins instance.

	The migrate command copies them into another instance, the export command writes them
	to a line delimited JSON file, locally or on Azure Blob Storage, and the import command
	loads such a file into an instance.

	Endpoints are full instance urls or bare instance names, that are looked up with
	Azure Resource Graph in the subscriptions the credential can read.`

	logLevelFlagName      = "log-level"
	logLevelShortFlagName = "v"

	versionCmdName = "version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	exitCode := run(ctx, os.Args[1:])
	stop()
	os.Exit(exitCode)
}

// run executes the command tree with args and returns the process exit code.
func run(ctx context.Context, args []string) int {
	cmd := rootCmd()
	cmd.SetArgs(args)

	log := logger.NewLogger(cmd.ErrOrStderr())
	if err := cmd.ExecuteContext(logger.WithContext(ctx, log)); err != nil {
		return 1
	}

	return 0
}

// rootCmd constructs the root command and attaches every subcommand.
func rootCmd() *cobra.Command {
	var logLevel string

	cmd := &cobra.Command{
		Use:   info.AppName,
		Short: heredoc.Doc(appShort),
		Long:  heredoc.Doc(appLong),

		SilenceErrors: true,
		SilenceUsage:  true,

		ValidArgsFunction: cobra.NoFileCompletions,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			level, err := logger.ParseLevel(logLevel)
			if err != nil {
				cmd.PrintErrln(err)
				return err
			}

			logger.FromContext(cmd.Context()).SetLevel(level)
			return nil
		},
	}

	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		c.PrintErrln(err)
		_ = c.Usage()
		return err
	})

	logLevelUsage := "set the logging level (possible values: " + strings.Join(logger.Levels(), ", ") + ")"
	cmd.PersistentFlags().StringVarP(&logLevel, logLevelFlagName, logLevelShortFlagName, logger.INFO.String(), logLevelUsage)

	cmd.AddCommand(
		internalcmd.MigrateCmd(),
		internalcmd.ExportCmd(),
		internalcmd.ImportCmd(),
		versionCmd(),
	)

	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   versionCmdName,
		Short: "Display the " + info.AppName + " version",

		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.NoArgs(cmd, args); err != nil {
				cmd.PrintErrln(err)
				_ = cmd.Usage()
				return err
			}

			return nil
		},
		ValidArgsFunction: cobra.NoFileCompletions,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), versionString(Version, BuildDate, runtime.Version()))
		},
	}
}

// versionString formats the version metadata as "<version> [(<date>)], Go Version: <go>".
func versionString(version, buildDate, runtimeVersion string) string {
	if buildDate != "" {
		version += " (" + buildDate + ")"
	}

	return version + ", Go Version: " + runtimeVersion
}
