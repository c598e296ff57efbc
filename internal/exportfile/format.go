// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package exportfile

import (
	"errors"
)

// FileVersion is the version written in the header of new files.
const FileVersion = "1.0.0"

// supportedMajorVersion is the only major version the reader accepts.
const supportedMajorVersion = "1"

var (
	// ErrInvalidFormat reports input that does not follow the export file format.
	ErrInvalidFormat = errors.New("invalid export file")
)

// Section identifies the category of the record following a section marker.
type Section string

const (
	SectionHeader        Section = "Header"
	SectionModels        Section = "Models"
	SectionTwins         Section = "Twins"
	SectionRelationships Section = "Relationships"
)

// order returns the position of the section inside a file, or -1 for unknown sections.
func (s Section) order() int {
	switch s {
	case SectionHeader:
		return 0
	case SectionModels:
		return 1
	case SectionTwins:
		return 2
	case SectionRelationships:
		return 3
	default:
		return -1
	}
}

var (
	markerLines = map[Section][]byte{
		SectionHeader:        []byte(`{"Section": "Header"}`),
		SectionModels:        []byte(`{"Section": "Models"}`),
		SectionTwins:         []byte(`{"Section": "Twins"}`),
		SectionRelationships: []byte(`{"Section": "Relationships"}`),
	}
	versionLine = []byte(`{"fileVersion": "` + FileVersion + `"}`)
)

type sectionMarker struct {
	Section Section `json:"Section"`
}

type versionRecord struct {
	FileVersion string `json:"fileVersion"`
}
