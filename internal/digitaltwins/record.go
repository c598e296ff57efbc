// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package digitaltwins

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
)

// decodeRecord decodes a JSON object into an open property map, moving the reserved
// string keys into the given targets. Numbers are kept as json.Number so that
// values are written back without precision loss.
func decodeRecord(data []byte, reserved map[string]*string) (map[string]any, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	var properties map[string]any
	if err := decoder.Decode(&properties); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}

	if properties == nil {
		return nil, fmt.Errorf("%w: expected a JSON object", ErrInvalidRecord)
	}

	for key, target := range reserved {
		value, found := properties[key]
		if !found {
			continue
		}

		stringValue, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("%w: %q must be a string", ErrInvalidRecord, key)
		}

		*target = stringValue
		delete(properties, key)
	}

	return properties, nil
}

// encodeRecord merges the non empty reserved keys back into properties and encodes the result
// leaving <, > and & unescaped.
func encodeRecord(properties map[string]any, reserved map[string]string) ([]byte, error) {
	merged := make(map[string]any, len(properties)+len(reserved))
	maps.Copy(merged, properties)
	for key, value := range reserved {
		if value != "" {
			merged[key] = value
		}
	}

	buffer := new(bytes.Buffer)
	encoder := json.NewEncoder(buffer)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(merged); err != nil {
		return nil, err
	}

	return bytes.TrimSuffix(buffer.Bytes(), []byte{'\n'}), nil
}
