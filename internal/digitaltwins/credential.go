// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package digitaltwins

import (
	"fmt"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
)

const (
	// CredentialCLI uses the identity logged in with the Azure CLI.
	CredentialCLI = "cli"
	// CredentialDefault uses the azidentity default chain (environment, workload identity,
	// managed identity, Azure CLI, Azure Developer CLI).
	CredentialDefault = "default"
)

// CredentialKinds lists the accepted credential kinds.
var CredentialKinds = []string{CredentialCLI, CredentialDefault}

// NewCredential returns the token credential for kind. An empty kind selects CredentialCLI.
func NewCredential(kind string) (azcore.TokenCredential, error) {
	switch strings.ToLower(kind) {
	case "", CredentialCLI:
		credential, err := azidentity.NewAzureCLICredential(nil)
		if err != nil {
			return nil, handleError(err)
		}
		return credential, nil
	case CredentialDefault:
		credential, err := azidentity.NewDefaultAzureCredential(nil)
		if err != nil {
			return nil, handleError(err)
		}
		return credential, nil
	default:
		return nil, handleError(fmt.Errorf("%w: %q", ErrUnsupportedCredential, kind))
	}
}
