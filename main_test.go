// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package main

import (
	"bytes"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mia-platform/adtport/internal/logger"
)

func TestVersionString(t *testing.T) {
	t.Parallel()

	testCases := map[string]struct {
		version   string
		buildDate string
		expected  string
	}{
		"with build date": {
			version:   "1.2.0",
			buildDate: "2024-06-01",
			expected:  "1.2.0 (2024-06-01), Go Version: go1.25.0",
		},
		"without build date": {
			version:  "DEV",
			expected: "DEV, Go Version: go1.25.0",
		},
	}

	for testName, test := range testCases {
		t.Run(testName, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, test.expected, versionString(test.version, test.buildDate, "go1.25.0"))
		})
	}
}

func TestRootCommand(t *testing.T) {
	t.Parallel()

	testCases := map[string]struct {
		args           []string
		expectedErr    bool
		expectedOutput string
		expectedStderr string
	}{
		"version": {
			args:           []string{"--log-level", "warn", "version"},
			expectedOutput: versionString(Version, BuildDate, runtime.Version()) + "\n",
		},
		"version rejects arguments": {
			args:           []string{"version", "extra"},
			expectedErr:    true,
			expectedStderr: `unknown command "extra" for "adtport version"`,
		},
		"unknown log level": {
			args:           []string{"--log-level", "verbose", "version"},
			expectedErr:    true,
			expectedStderr: `unknown log level "verbose"`,
		},
	}

	for testName, test := range testCases {
		t.Run(testName, func(t *testing.T) {
			t.Parallel()

			stdout := new(bytes.Buffer)
			stderr := new(bytes.Buffer)
			cmd := rootCmd()
			cmd.SetOut(stdout)
			cmd.SetErr(stderr)
			cmd.SetArgs(test.args)

			log := logger.NewLogger(stderr)
			err := cmd.ExecuteContext(logger.WithContext(t.Context(), log))
			if test.expectedErr {
				require.Error(t, err)
				assert.Contains(t, stderr.String(), test.expectedStderr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, test.expectedOutput, stdout.String())

			log.Info("silenced by the warn level")
			assert.Empty(t, stderr.String())
		})
	}
}

func TestRunExitCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, run(t.Context(), []string{"--help"}))
	assert.Equal(t, 1, run(t.Context(), []string{"--log-level", "verbose", "version"}))
}

func TestRootSubcommands(t *testing.T) {
	t.Parallel()

	names := make([]string, 0)
	for _, subcommand := range rootCmd().Commands() {
		names = append(names, subcommand.Name())
	}

	assert.Subset(t, names, []string{"migrate", "export", "import", versionCmdName})
}
