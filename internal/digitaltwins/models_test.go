// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package digitaltwins

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTwinJSON(t *testing.T) {
	t.Parallel()

	raw := `{"$dtId":"room-1","$etag":"W/\"a\"","$metadata":{"$model":"dtmi:example:Room;1"},"counter":9007199254740993,"name":"Room <1>"}`

	var twin Twin
	require.NoError(t, json.Unmarshal([]byte(raw), &twin))
	assert.Equal(t, "room-1", twin.ID)
	assert.NotContains(t, twin.Properties, TwinIDKey)
	assert.Equal(t, json.Number("9007199254740993"), twin.Properties["counter"])

	encoded, err := json.Marshal(twin)
	require.NoError(t, err)
	assert.JSONEq(t, raw, string(encoded))
	assert.Contains(t, string(encoded), "9007199254740993")
}

func TestRelationshipJSON(t *testing.T) {
	t.Parallel()

	raw := `{"$relationshipId":"r1","$sourceId":"floor-1","$targetId":"room-1","$relationshipName":"contains","$etag":"W/\"b\"","weight":1.5}`

	var relationship Relationship
	require.NoError(t, json.Unmarshal([]byte(raw), &relationship))
	assert.Equal(t, Relationship{
		ID:       "r1",
		SourceID: "floor-1",
		TargetID: "room-1",
		Name:     "contains",
		Properties: map[string]any{
			"$etag":  `W/"b"`,
			"weight": json.Number("1.5"),
		},
	}, relationship)

	encoded, err := json.Marshal(relationship)
	require.NoError(t, err)
	assert.JSONEq(t, raw, string(encoded))
}

func TestModelJSON(t *testing.T) {
	t.Parallel()

	raw := `{"@id":"dtmi:example:Room;1","@type":"Interface","@context":"dtmi:dtdl:context;3","contents":[{"@type":"Property","name":"temperature","schema":"double"}]}`

	var model Model
	require.NoError(t, json.Unmarshal([]byte(raw), &model))
	assert.Equal(t, "dtmi:example:Room;1", model.ID)
	assert.Len(t, model.Properties, 3)

	encoded, err := json.Marshal(model)
	require.NoError(t, err)
	assert.JSONEq(t, raw, string(encoded))
}

func TestInvalidRecords(t *testing.T) {
	t.Parallel()

	testCases := map[string]struct {
		raw    string
		target any
	}{
		"twin id is not a string": {
			raw:    `{"$dtId":42}`,
			target: &Twin{},
		},
		"twin is an array": {
			raw:    `[{"$dtId":"room-1"}]`,
			target: &Twin{},
		},
		"relationship is a string": {
			raw:    `"floor-1"`,
			target: &Relationship{},
		},
		"model id is an object": {
			raw:    `{"@id":{"value":"dtmi:example:Room;1"}}`,
			target: &Model{},
		},
	}

	for testName, test := range testCases {
		t.Run(testName, func(t *testing.T) {
			t.Parallel()

			err := json.Unmarshal([]byte(test.raw), test.target)
			assert.ErrorIs(t, err, ErrInvalidRecord)
		})
	}
}

func TestMissingReservedKeysAreNotEncoded(t *testing.T) {
	t.Parallel()

	encoded, err := json.Marshal(Relationship{ID: "r1", SourceID: "floor-1"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"$relationshipId":"r1","$sourceId":"floor-1"}`, string(encoded))
}

func TestRecordsKeepHTMLCharacters(t *testing.T) {
	t.Parallel()

	testCases := map[string]struct {
		record   json.Marshaler
		expected string
	}{
		"twin": {
			record:   Twin{ID: "t1", Properties: map[string]any{"name": "a<b&c>"}},
			expected: `{"$dtId":"t1","name":"a<b&c>"}`,
		},
		"relationship": {
			record:   Relationship{ID: "r1", SourceID: "s&1", TargetID: "<t1>"},
			expected: `{"$relationshipId":"r1","$sourceId":"s&1","$targetId":"<t1>"}`,
		},
		"model": {
			record:   Model{ID: "dtmi:example:Room;1", Properties: map[string]any{"description": "<b>rooms</b> & halls"}},
			expected: `{"@id":"dtmi:example:Room;1","description":"<b>rooms</b> & halls"}`,
		},
	}

	for testName, test := range testCases {
		t.Run(testName, func(t *testing.T) {
			t.Parallel()

			encoded, err := test.record.MarshalJSON()
			require.NoError(t, err)
			assert.Equal(t, test.expected, string(encoded))
		})
	}
}

func TestNewCredential(t *testing.T) {
	t.Parallel()

	credential, err := NewCredential("unknown")
	assert.ErrorIs(t, err, ErrUnsupportedCredential)
	assert.Nil(t, credential)

	credential, err = NewCredential(CredentialCLI)
	require.NoError(t, err)
	assert.NotNil(t, credential)
}
