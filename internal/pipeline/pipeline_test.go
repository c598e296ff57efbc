// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package pipeline

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mia-platform/adtport/internal/digitaltwins"
	"github.com/mia-platform/adtport/internal/digitaltwins/fake"
	"github.com/mia-platform/adtport/internal/logger"
	"github.com/mia-platform/adtport/internal/storage"
)

var (
	roomModel = digitaltwins.Model{
		ID: "dtmi:example:Room;1",
		Properties: map[string]any{
			"@type":    "Interface",
			"@context": "dtmi:dtdl:context;3",
		},
	}
	floorModel = digitaltwins.Model{
		ID: "dtmi:example:Floor;1",
		Properties: map[string]any{
			"@type":    "Interface",
			"@context": "dtmi:dtdl:context;3",
		},
	}

	floorTwin = digitaltwins.Twin{
		ID: "floor-1",
		Properties: map[string]any{
			"$metadata": map[string]any{"$model": "dtmi:example:Floor;1"},
		},
	}
	roomTwin = digitaltwins.Twin{
		ID: "room-1",
		Properties: map[string]any{
			"$metadata": map[string]any{"$model": "dtmi:example:Room;1"},
			"name":      "Room 1",
		},
	}
	otherRoomTwin = digitaltwins.Twin{
		ID: "room-2",
		Properties: map[string]any{
			"$metadata": map[string]any{"$model": "dtmi:example:Room;1"},
			"name":      "Room 2",
		},
	}

	containsRoom = digitaltwins.Relationship{
		ID:         "rel-1",
		SourceID:   "floor-1",
		TargetID:   "room-1",
		Name:       "contains",
		Properties: map[string]any{},
	}
	containsOtherRoom = digitaltwins.Relationship{
		ID:         "rel-2",
		SourceID:   "floor-1",
		TargetID:   "room-2",
		Name:       "contains",
		Properties: map[string]any{},
	}
)

func populatedSource(t *testing.T) *fake.Service {
	t.Helper()

	source := fake.NewService(t)
	source.Models = []digitaltwins.Model{floorModel, roomModel}
	source.Twins = []digitaltwins.Twin{floorTwin, roomTwin, otherRoomTwin}
	source.Relationships = []digitaltwins.Relationship{containsRoom, containsOtherRoom}
	return source
}

// testContext returns a context carrying a debug logger writing to the returned buffer.
func testContext(t *testing.T) (context.Context, *bytes.Buffer) {
	t.Helper()

	buffer := new(bytes.Buffer)
	log := logger.NewLogger(buffer)
	log.SetLevel(logger.DEBUG)
	return logger.WithContext(t.Context(), log), buffer
}

func logLines(buffer *bytes.Buffer, msg string) []string {
	lines := make([]string, 0)
	for line := range strings.SplitSeq(buffer.String(), "\n") {
		if strings.Contains(line, `"@message":"`+msg+`"`) {
			lines = append(lines, line)
		}
	}
	return lines
}

// memoryStore keeps the committed content in memory.
type memoryStore struct {
	content   []byte
	committed int
	writeErr  error
	openErr   error
}

var _ storage.Store = &memoryStore{}

func (s *memoryStore) Create(context.Context) (storage.Output, error) {
	return &memoryOutput{store: s}, nil
}

func (s *memoryStore) Open(context.Context) (io.ReadCloser, error) {
	if s.openErr != nil {
		return nil, s.openErr
	}
	return io.NopCloser(bytes.NewReader(s.content)), nil
}

func (s *memoryStore) String() string {
	return "memory"
}

type memoryOutput struct {
	store  *memoryStore
	buffer bytes.Buffer
	closed bool
}

func (o *memoryOutput) Write(p []byte) (int, error) {
	if o.closed {
		return 0, storage.ErrAlreadyClosed
	}
	if o.store.writeErr != nil {
		return 0, o.store.writeErr
	}
	return o.buffer.Write(p)
}

func (o *memoryOutput) Commit() error {
	if o.closed {
		return storage.ErrAlreadyClosed
	}
	o.closed = true
	o.store.content = bytes.Clone(o.buffer.Bytes())
	o.store.committed++
	return nil
}

func (o *memoryOutput) Close() error {
	o.closed = true
	return nil
}

var errRejected = errors.New("rejected by the service")

func requireNoFailures(t *testing.T, report *Report) {
	t.Helper()
	require.NoError(t, report.Err())
	require.Zero(t, report.Twins.Failed)
	require.Zero(t, report.Relationships.Failed)
}
