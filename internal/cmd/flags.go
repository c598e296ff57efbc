// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package cmd

import (
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/mia-platform/adtport/internal/config"
	"github.com/mia-platform/adtport/internal/digitaltwins"
)

const (
	configFlagName  = "config"
	configFlagShort = "c"
	configFlagUsage = "path to a yaml configuration file"

	credentialFlagName = "credential"

	subscriptionFlagName  = "subscription"
	subscriptionFlagUsage = "subscription used to look up endpoints given as instance names"

	sourceFlagName  = "source"
	sourceFlagUsage = "endpoint or instance name of the instance to read from"
	targetFlagName  = "target"
	targetFlagUsage = "endpoint or instance name of the instance to write to"

	outputFlagName  = "output"
	outputFlagShort = "o"
	outputFlagUsage = `path of the export file, use "-" for the standard output`
	inputFlagName   = "input"
	inputFlagShort  = "i"
	inputFlagUsage  = `path of the export file, use "-" for the standard input`
	defaultPath     = "export.jsonld"

	blobContainerFlagName  = "blob-container"
	blobContainerFlagUsage = "storage container of the export blob, the account is read from the environment or the configuration file"
	blobNameFlagName       = "blob-name"
	blobNameFlagUsage      = "name of the export blob"
)

var (
	credentialFlagUsage = "credential used to authenticate (possible values: " + strings.Join(digitaltwins.CredentialKinds, ", ") + ")"
)

// flags holds the cli flags shared by all the commands, every command registers only
// the ones it needs.
type flags struct {
	configPath    string
	credential    string
	subscription  string
	source        string
	target        string
	path          string
	blobContainer string
	blobName      string
}

// addConfigFlags adds the configuration file and credential flags.
func (f *flags) addConfigFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.configPath, configFlagName, configFlagShort, "", configFlagUsage)
	cmd.Flags().StringVar(&f.credential, credentialFlagName, "", credentialFlagUsage)
	cmd.Flags().StringVar(&f.subscription, subscriptionFlagName, "", subscriptionFlagUsage)
}

func (f *flags) addSourceFlag(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.source, sourceFlagName, "", sourceFlagUsage)
}

func (f *flags) addTargetFlag(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.target, targetFlagName, "", targetFlagUsage)
}

// addStoreFlags adds the flags selecting where the export file is written to or read from.
func (f *flags) addStoreFlags(cmd *cobra.Command, pathFlagName, pathFlagShort, pathFlagUsage string) {
	cmd.Flags().StringVarP(&f.path, pathFlagName, pathFlagShort, defaultPath, pathFlagUsage)
	cmd.Flags().StringVar(&f.blobContainer, blobContainerFlagName, "", blobContainerFlagUsage)
	cmd.Flags().StringVar(&f.blobName, blobNameFlagName, "", blobNameFlagUsage)
	cmd.MarkFlagsMutuallyExclusive(pathFlagName, blobContainerFlagName)
	cmd.MarkFlagsMutuallyExclusive(pathFlagName, blobNameFlagName)
}

// toOptions loads the configuration and overrides it with the flags set on the command line.
func (f *flags) toOptions(cmd *cobra.Command) (*options, error) {
	fs := afero.NewOsFs()
	cfg, err := config.Load(fs, f.configPath)
	if err != nil {
		return nil, err
	}

	overrides := []struct {
		value  string
		target *string
	}{
		{value: f.credential, target: &cfg.Credential},
		{value: f.subscription, target: &cfg.SubscriptionID},
		{value: f.source, target: &cfg.SourceEndpoint},
		{value: f.target, target: &cfg.TargetEndpoint},
		{value: f.blobContainer, target: &cfg.Blob.ContainerName},
		{value: f.blobName, target: &cfg.Blob.Name},
	}
	for _, override := range overrides {
		if override.value != "" {
			*override.target = override.value
		}
	}

	return newOptions(cfg, f.path, fs, cmd.InOrStdin(), cmd.OutOrStdout()), nil
}
