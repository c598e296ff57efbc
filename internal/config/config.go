// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package config

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/mia-platform/adtport/internal/digitaltwins"
)

var (
	// ErrParsing reports failures that occur while decoding the configuration file.
	ErrParsing = errors.New("error parsing")
	// ErrInvalidConfig reports missing or malformed configuration values.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Config holds the settings of a single run.
type Config struct {
	SourceEndpoint string `yaml:"sourceEndpoint" env:"ADT_SOURCE_ENDPOINT"`
	TargetEndpoint string `yaml:"targetEndpoint" env:"ADT_TARGET_ENDPOINT"`
	Credential     string `yaml:"credential" env:"ADT_CREDENTIAL"`
	// SubscriptionID restricts the lookup of endpoints given as bare instance names.
	SubscriptionID string  `yaml:"subscriptionId" env:"AZURE_SUBSCRIPTION_ID"`
	Queries        Queries `yaml:"queries"`
	Blob           Blob    `yaml:"blob"`
}

// Queries holds the queries used to enumerate twins and relationships on the source.
type Queries struct {
	Twins         string `yaml:"twins" env:"ADT_TWINS_QUERY"`
	Relationships string `yaml:"relationships" env:"ADT_RELATIONSHIPS_QUERY"`
}

// Blob holds the location of an export file kept in an Azure Storage blob.
type Blob struct {
	AccountName      string `yaml:"accountName" env:"AZURE_STORAGE_BLOB_ACCOUNT_NAME"`
	ConnectionString string `yaml:"connectionString" env:"AZURE_STORAGE_BLOB_CONNECTION_STRING"`
	ContainerName    string `yaml:"containerName" env:"AZURE_STORAGE_BLOB_CONTAINER_NAME"`
	Name             string `yaml:"name" env:"ADT_EXPORT_BLOB_NAME"`
}

// Enabled reports whether the export file lives in a blob instead of a local path.
func (b Blob) Enabled() bool {
	return b.ContainerName != "" || b.Name != ""
}

func (b Blob) validate() []string {
	if !b.Enabled() {
		return nil
	}

	errorsList := make([]string, 0)
	if b.AccountName == "" && b.ConnectionString == "" {
		errorsList = append(errorsList, "one of AZURE_STORAGE_BLOB_CONNECTION_STRING or AZURE_STORAGE_BLOB_ACCOUNT_NAME must be present")
	}
	if b.ContainerName == "" {
		errorsList = append(errorsList, "missing AZURE_STORAGE_BLOB_CONTAINER_NAME")
	}
	if b.Name == "" {
		errorsList = append(errorsList, "missing ADT_EXPORT_BLOB_NAME")
	}
	return errorsList
}

// Load reads the yaml file at path, if not empty, and then overrides its values with the
// environment variables that are set. Unset values get their defaults.
func Load(fs afero.Fs, path string) (*Config, error) {
	config := new(Config)
	if path != "" {
		if err := decodeFile(fs, path, config); err != nil {
			return nil, err
		}
	}

	if err := env.Parse(config); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	config.setDefaults()
	return config, nil
}

func decodeFile(fs afero.Fs, path string, config *Config) error {
	file, err := fs.Open(path)
	if err != nil {
		return fmt.Errorf("%w %q: %w", ErrParsing, path, err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(config); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w %q: %w", ErrParsing, path, err)
	}

	return nil
}

func (c *Config) setDefaults() {
	if c.Credential == "" {
		c.Credential = digitaltwins.CredentialCLI
	}
	if c.Queries.Twins == "" {
		c.Queries.Twins = digitaltwins.AllTwinsQuery
	}
	if c.Queries.Relationships == "" {
		c.Queries.Relationships = digitaltwins.AllRelationshipsQuery
	}
}

// ValidateForMigrate checks that both instances and a supported credential are configured.
func (c *Config) ValidateForMigrate() error {
	errorsList := c.validateCommon()
	if c.SourceEndpoint == "" {
		errorsList = append(errorsList, "missing source endpoint")
	}
	if c.TargetEndpoint == "" {
		errorsList = append(errorsList, "missing target endpoint")
	}

	return joinErrors(errorsList)
}

// ValidateForExport checks that the source instance and a valid blob location, if any, are configured.
func (c *Config) ValidateForExport() error {
	errorsList := c.validateCommon()
	if c.SourceEndpoint == "" {
		errorsList = append(errorsList, "missing source endpoint")
	}
	errorsList = append(errorsList, c.Blob.validate()...)

	return joinErrors(errorsList)
}

// ValidateForImport checks that the target instance and a valid blob location, if any, are configured.
func (c *Config) ValidateForImport() error {
	errorsList := c.validateCommon()
	if c.TargetEndpoint == "" {
		errorsList = append(errorsList, "missing target endpoint")
	}
	errorsList = append(errorsList, c.Blob.validate()...)

	return joinErrors(errorsList)
}

func (c *Config) validateCommon() []string {
	errorsList := make([]string, 0)
	if !slices.Contains(digitaltwins.CredentialKinds, c.Credential) {
		errorsList = append(errorsList, fmt.Sprintf("unsupported credential %q, must be one of %s", c.Credential, strings.Join(digitaltwins.CredentialKinds, ", ")))
	}
	return errorsList
}

func joinErrors(errorsList []string) error {
	if len(errorsList) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(errorsList, ", "))
	}
	return nil
}
