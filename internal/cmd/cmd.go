// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package cmd

import (
	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"
)

const (
	migrateCmdUsage = "migrate"
	migrateCmdShort = "copy models, twins and relationships between two instances"
	migrateCmdLong  = `Copy models, twins and relationships from a source Azure Digital Twins
	instance to a target instance.

	All the models are created on the target with a single request, so that references
	between them can be resolved, and a failure stops the migration. Twins and
	relationships are then upserted one at a time: a failure on a single item is logged
	and the migration continues with the next one.

	Endpoints and the other settings can be provided with a configuration file,
	environment variables or flags, the latter taking precedence.`

	migrateCmdExample = `# Copy everything between two instances
	adtport migrate --source sourceadt.api.weu.digitaltwins.azure.net --target targetadt.api.weu.digitaltwins.azure.net

	# Copy only the rooms, reading the endpoints from a configuration file
	ADT_TWINS_QUERY="SELECT * FROM digitaltwins WHERE IS_OF_MODEL('dtmi:com:example:Room;1')" adtport migrate -c adtport.yaml`

	exportCmdUsage = "export"
	exportCmdShort = "export models, twins and relationships to a file"
	exportCmdLong  = `Export models, twins and relationships of an Azure Digital Twins instance
	to a line delimited JSON file.

	The file starts with a header and then contains every model, twin and relationship,
	each one preceded by a line naming its section. The export can be written to a local
	file, to the standard output using "-" as path, or to an Azure Storage blob.
	Any error stops the export and a partially written file is discarded.`

	exportCmdExample = `# Export an instance to export.jsonld
	adtport export --source sourceadt.api.weu.digitaltwins.azure.net

	# Export an instance to the standard output
	adtport export --source sourceadt.api.weu.digitaltwins.azure.net -o -

	# Export an instance to a blob
	AZURE_STORAGE_BLOB_ACCOUNT_NAME=exports adtport export --source sourceadt.api.weu.digitaltwins.azure.net --blob-container backups --blob-name adt.jsonld`

	importCmdUsage = "import"
	importCmdShort = "import an export file into an instance"
	importCmdLong  = `Import a file created by the export command into an Azure Digital Twins instance.

	The models contained in the file are created with a single request before any twin
	or relationship, and a failure stops the import. Twins and relationships are then
	upserted one at a time: a failure on a single item is logged and the import continues
	with the next one.`

	importCmdExample = `# Import export.jsonld
	adtport import --target targetadt.api.weu.digitaltwins.azure.net

	# Import a file from the standard input
	cat export.jsonld | adtport import --target targetadt.api.weu.digitaltwins.azure.net -i -`
)

// MigrateCmd returns the "migrate" cli command.
func MigrateCmd() *cobra.Command {
	flags := &flags{}
	cmd := &cobra.Command{
		Use:     migrateCmdUsage,
		Short:   heredoc.Doc(migrateCmdShort),
		Long:    heredoc.Doc(migrateCmdLong),
		Example: heredoc.Doc(migrateCmdExample),

		SilenceErrors: true,
		SilenceUsage:  true,

		Args:              noArgs,
		ValidArgsFunction: cobra.NoFileCompletions,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := flags.toOptions(cmd)
			if err != nil {
				return handleError(cmd, err)
			}

			if err := opts.config.ValidateForMigrate(); err != nil {
				return handleError(cmd, err)
			}

			if err := opts.executeMigrate(cmd.Context()); err != nil {
				return handleError(cmd, err)
			}

			return nil
		},
	}

	flags.addConfigFlags(cmd)
	flags.addSourceFlag(cmd)
	flags.addTargetFlag(cmd)
	return cmd
}

// ExportCmd returns the "export" cli command.
func ExportCmd() *cobra.Command {
	flags := &flags{}
	cmd := &cobra.Command{
		Use:     exportCmdUsage,
		Short:   heredoc.Doc(exportCmdShort),
		Long:    heredoc.Doc(exportCmdLong),
		Example: heredoc.Doc(exportCmdExample),

		SilenceErrors: true,
		SilenceUsage:  true,

		Args:              noArgs,
		ValidArgsFunction: cobra.NoFileCompletions,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := flags.toOptions(cmd)
			if err != nil {
				return handleError(cmd, err)
			}

			if err := opts.config.ValidateForExport(); err != nil {
				return handleError(cmd, err)
			}

			if err := opts.executeExport(cmd.Context()); err != nil {
				return handleError(cmd, err)
			}

			return nil
		},
	}

	flags.addConfigFlags(cmd)
	flags.addSourceFlag(cmd)
	flags.addStoreFlags(cmd, outputFlagName, outputFlagShort, outputFlagUsage)
	return cmd
}

// ImportCmd returns the "import" cli command.
func ImportCmd() *cobra.Command {
	flags := &flags{}
	cmd := &cobra.Command{
		Use:     importCmdUsage,
		Short:   heredoc.Doc(importCmdShort),
		Long:    heredoc.Doc(importCmdLong),
		Example: heredoc.Doc(importCmdExample),

		SilenceErrors: true,
		SilenceUsage:  true,

		Args:              noArgs,
		ValidArgsFunction: cobra.NoFileCompletions,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := flags.toOptions(cmd)
			if err != nil {
				return handleError(cmd, err)
			}

			if err := opts.config.ValidateForImport(); err != nil {
				return handleError(cmd, err)
			}

			if err := opts.executeImport(cmd.Context()); err != nil {
				return handleError(cmd, err)
			}

			return nil
		},
	}

	flags.addConfigFlags(cmd)
	flags.addTargetFlag(cmd)
	flags.addStoreFlags(cmd, inputFlagName, inputFlagShort, inputFlagUsage)
	return cmd
}
