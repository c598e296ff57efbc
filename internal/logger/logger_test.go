// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger(t *testing.T) {
	t.Parallel()

	buffer := new(bytes.Buffer)
	logger := NewLogger(buffer)

	logger.SetLevel(TRACE)
	namedLogger := logger.WithName("test_logger")
	namedLogger.Info("new log line for INFO level")
	logger.Trace("new log line for TRACE level")
	logger.SetLevel(DEBUG)
	logger.Debug("new log line for DEBUG level")
	namedLogger.Warn("new log line for WARN level")

	logger.SetLevel(ERROR)
	namedLogger.Warn("silenced log line for WARN level")
	logger.SetLevel(WARN)
	logger.Error("new log line for ERROR level")
	logger.Debug("silenced log line for TRACE level")

	logger.SetLevel(999) // invalid level; should default to INFO
	logger.Info("new log line for INFO level after invalid level set")
	namedLogger.Debug("silenced log line for DEBUG level after invalid level set")

	lines := strings.Split(buffer.String(), "\n")
	t.Logf("%v", lines)
	assert.Len(t, lines, 7) // 6 log lines plus 1 trailing empty line
}

func TestLevelStrings(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"TRACE", "DEBUG", "INFO", "WARN", "ERROR"}, Levels())
	assert.Equal(t, "Level(999)", Level(999).String())
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	testCases := map[string]struct {
		level         string
		expectedLevel Level
		expectedErr   string
	}{
		"upper case": {
			level:         "TRACE",
			expectedLevel: TRACE,
		},
		"lower case": {
			level:         "debug",
			expectedLevel: DEBUG,
		},
		"mixed case": {
			level:         "Warn",
			expectedLevel: WARN,
		},
		"error": {
			level:         "ERROR",
			expectedLevel: ERROR,
		},
		"unknown level": {
			level:         "verbose",
			expectedLevel: INFO,
			expectedErr:   `unknown log level "verbose", must be one of TRACE, DEBUG, INFO, WARN, ERROR`,
		},
		"empty level": {
			level:         "",
			expectedLevel: INFO,
			expectedErr:   `unknown log level "", must be one of TRACE, DEBUG, INFO, WARN, ERROR`,
		},
	}

	for testName, test := range testCases {
		t.Run(testName, func(t *testing.T) {
			t.Parallel()

			level, err := ParseLevel(test.level)
			assert.Equal(t, test.expectedLevel, level)
			if test.expectedErr != "" {
				assert.ErrorIs(t, err, ErrUnknownLevel)
				assert.EqualError(t, err, test.expectedErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestLoggerWithArgs(t *testing.T) {
	t.Parallel()

	buffer := new(bytes.Buffer)
	logger := NewLogger(buffer)

	runLogger := logger.WithName("adtport:test").With("runId", "run-1")
	runLogger.Info("first line")
	logger.SetLevel(WARN)
	runLogger.Info("silenced line")
	runLogger.Warn("second line", "key", "value")

	lines := strings.Split(strings.TrimSpace(buffer.String()), "\n")
	require.Len(t, lines, 2)
	for _, line := range lines {
		var decoded map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &decoded))
		assert.Equal(t, "run-1", decoded["runId"])
		assert.Equal(t, "adtport:test", decoded["@module"])
	}
}
