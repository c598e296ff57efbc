// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package exportfile

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriter(t *testing.T) {
	t.Parallel()

	buffer := new(bytes.Buffer)
	writer := NewWriter(buffer)

	require.NoError(t, writer.WriteHeader())
	require.NoError(t, writer.WriteRecord(SectionModels, map[string]any{"@id": "dtmi:example:Room;1"}))
	require.NoError(t, writer.WriteRecord(SectionTwins, map[string]any{"$dtId": "room-1", "name": "<Room & co>"}))
	require.NoError(t, writer.WriteRecord(SectionRelationships, map[string]any{"$sourceId": "floor-1"}))

	expected := `{"Section": "Header"}
{"fileVersion": "1.0.0"}
{"Section": "Models"}
{"@id": "dtmi:example:Room;1"}
{"Section": "Twins"}
{"$dtId": "room-1", "name": "<Room & co>"}
{"Section": "Relationships"}
{"$sourceId": "floor-1"}
`
	assert.Equal(t, expected, buffer.String())
	assert.Equal(t, 8, writer.Lines())

	err := writer.WriteRecord(SectionHeader, map[string]any{})
	assert.ErrorIs(t, err, ErrInvalidFormat)
	err = writer.WriteRecord(Section("Unknown"), map[string]any{})
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestWriterSeparators(t *testing.T) {
	t.Parallel()

	testCases := map[string]struct {
		record   any
		expected string
	}{
		"nested values": {
			record:   map[string]any{"a": []any{1, 2, map[string]any{"b": nil}}, "c": true},
			expected: `{"a": [1, 2, {"b": null}], "c": true}`,
		},
		"separators inside strings are kept": {
			record:   map[string]any{"dtmi:example:Room;1": "one, two: three"},
			expected: `{"dtmi:example:Room;1": "one, two: three"}`,
		},
		"escaped quotes and backslashes": {
			record:   map[string]any{"etag": `W/"a,b"`, "path": `c:\\`},
			expected: `{"etag": "W/\"a,b\"", "path": "c:\\\\"}`,
		},
		"raw json is reformatted": {
			record:   json.RawMessage(`{"$dtId":"room-1","name":"a<b&c"}`),
			expected: `{"$dtId": "room-1", "name": "a<b&c"}`,
		},
		"empty object": {
			record:   map[string]any{},
			expected: `{}`,
		},
	}

	for testName, test := range testCases {
		t.Run(testName, func(t *testing.T) {
			t.Parallel()

			buffer := new(bytes.Buffer)
			writer := NewWriter(buffer)
			require.NoError(t, writer.WriteRecord(SectionTwins, test.record))

			assert.Equal(t, "{\"Section\": \"Twins\"}\n"+test.expected+"\n", buffer.String())
			assert.True(t, json.Valid([]byte(test.expected)))
		})
	}
}

func TestWriterRejectsUnencodableRecords(t *testing.T) {
	t.Parallel()

	buffer := new(bytes.Buffer)
	writer := NewWriter(buffer)
	err := writer.WriteRecord(SectionTwins, map[string]any{"invalid": make(chan int)})
	assert.Error(t, err)
	assert.Empty(t, buffer.String(), "no marker is written for a record that cannot be encoded")
	assert.Equal(t, 0, writer.Lines())
}

func TestWriterPropagatesWriteErrors(t *testing.T) {
	t.Parallel()

	writer := NewWriter(failingWriter{})
	err := writer.WriteHeader()
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 0, writer.Lines())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, assert.AnError
}

func TestReaderRoundTrip(t *testing.T) {
	t.Parallel()

	buffer := new(bytes.Buffer)
	writer := NewWriter(buffer)
	require.NoError(t, writer.WriteHeader())
	require.NoError(t, writer.WriteRecord(SectionModels, map[string]any{"@id": "m1"}))
	require.NoError(t, writer.WriteRecord(SectionModels, map[string]any{"@id": "m2"}))
	require.NoError(t, writer.WriteRecord(SectionRelationships, map[string]any{"$relationshipId": "r1"}))

	reader := NewReader(buffer)
	version, err := reader.ReadHeader()
	require.NoError(t, err)
	assert.Equal(t, FileVersion, version)

	var records []Record
	for record, err := range reader.Records() {
		require.NoError(t, err)
		records = append(records, record)
	}

	require.Len(t, records, 3)
	assert.Equal(t, SectionModels, records[0].Section)
	assert.Equal(t, 4, records[0].Line)
	assert.JSONEq(t, `{"@id":"m1"}`, string(records[0].Raw))
	assert.Equal(t, SectionModels, records[1].Section)
	assert.Equal(t, SectionRelationships, records[2].Section)
	assert.Equal(t, 8, records[2].Line)
}

func TestReaderAcceptsSpacedJSONAndBlankLines(t *testing.T) {
	t.Parallel()

	input := `{"Section": "Header"}
{"fileVersion": "1.2.0"}

{"Section": "Twins"}
{"$dtId": "room-1"}

`
	reader := NewReader(strings.NewReader(input))

	var records []Record
	for record, err := range reader.Records() {
		require.NoError(t, err)
		records = append(records, record)
	}

	require.Len(t, records, 1)
	assert.Equal(t, SectionTwins, records[0].Section)
	assert.Equal(t, 5, records[0].Line)
}

func TestReaderErrors(t *testing.T) {
	t.Parallel()

	testCases := map[string]struct {
		input           string
		expectedMessage string
	}{
		"empty input": {
			input:           "",
			expectedMessage: "invalid export file: line 0: missing header",
		},
		"header marker only": {
			input:           `{"Section":"Header"}`,
			expectedMessage: "invalid export file: line 1: missing header",
		},
		"wrong first line": {
			input:           `{"Section":"Models"}` + "\n" + `{"fileVersion":"1.0.0"}`,
			expectedMessage: `invalid export file: line 1: expected the "Header" section marker`,
		},
		"missing version": {
			input:           `{"Section":"Header"}` + "\n" + `{"version":"1.0.0"}`,
			expectedMessage: "invalid export file: line 2: expected the file version record",
		},
		"unsupported version": {
			input:           `{"Section":"Header"}` + "\n" + `{"fileVersion":"2.0.0"}`,
			expectedMessage: `invalid export file: line 2: unsupported file version "2.0.0"`,
		},
		"record without marker": {
			input:           header + `{"$dtId":"room-1"}`,
			expectedMessage: "invalid export file: line 3: expected a section marker",
		},
		"unknown section": {
			input:           header + `{"Section":"Jobs"}` + "\n" + `{}`,
			expectedMessage: "invalid export file: line 3: expected a section marker",
		},
		"sections out of order": {
			input:           header + `{"Section":"Twins"}` + "\n" + `{"$dtId":"room-1"}` + "\n" + `{"Section":"Models"}` + "\n" + `{"@id":"m1"}`,
			expectedMessage: `invalid export file: line 5: section "Models" found after section "Twins"`,
		},
		"marker without record": {
			input:           header + `{"Section":"Twins"}`,
			expectedMessage: `invalid export file: line 3: section marker "Twins" without a record`,
		},
		"record is not an object": {
			input:           header + `{"Section":"Twins"}` + "\n" + `["room-1"]`,
			expectedMessage: "invalid export file: line 4: record is not a JSON object",
		},
		"record is not valid json": {
			input:           header + `{"Section":"Twins"}` + "\n" + `{"$dtId":`,
			expectedMessage: "invalid export file: line 4: record is not a JSON object",
		},
	}

	for testName, test := range testCases {
		t.Run(testName, func(t *testing.T) {
			t.Parallel()

			reader := NewReader(strings.NewReader(test.input))
			var lastErr error
			for _, err := range reader.Records() {
				if err != nil {
					lastErr = err
				}
			}

			require.ErrorIs(t, lastErr, ErrInvalidFormat)
			assert.EqualError(t, lastErr, test.expectedMessage)
		})
	}
}

func TestReaderStopsWhenConsumerStops(t *testing.T) {
	t.Parallel()

	input := header +
		`{"Section":"Twins"}` + "\n" + `{"$dtId":"a"}` + "\n" +
		`{"Section":"Twins"}` + "\n" + `{"$dtId":"b"}` + "\n"
	reader := NewReader(strings.NewReader(input))

	count := 0
	for _, err := range reader.Records() {
		require.NoError(t, err)
		count++
		break
	}

	assert.Equal(t, 1, count)
}

const header = `{"Section": "Header"}` + "\n" + `{"fileVersion": "1.0.0"}` + "\n"
