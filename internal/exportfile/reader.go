// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package exportfile

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"strings"
)

const (
	initialLineBuffer = 64 * 1024
	// MaxLineSize is the longest line the reader accepts.
	MaxLineSize = 32 * 1024 * 1024
)

// Record is a single model, twin or relationship read from an export file.
type Record struct {
	Section Section
	// Line is the 1-based line number of the record.
	Line int
	Raw  json.RawMessage
}

// Reader reads an export file written by Writer.
type Reader struct {
	scanner    *bufio.Scanner
	line       int
	version    string
	headerRead bool
}

// NewReader returns a Reader consuming r.
func NewReader(r io.Reader) *Reader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, initialLineBuffer), MaxLineSize)
	return &Reader{scanner: scanner}
}

// ReadHeader reads and validates the two header lines, returning the file version.
func (r *Reader) ReadHeader() (string, error) {
	if r.headerRead {
		return r.version, nil
	}

	line, err := r.headerLine()
	if err != nil {
		return "", err
	}

	var marker sectionMarker
	if err := json.Unmarshal(line, &marker); err != nil || marker.Section != SectionHeader {
		return "", r.formatError("expected the %q section marker", SectionHeader)
	}

	line, err = r.headerLine()
	if err != nil {
		return "", err
	}

	var version versionRecord
	if err := json.Unmarshal(line, &version); err != nil || version.FileVersion == "" {
		return "", r.formatError("expected the file version record")
	}

	if major, _, _ := strings.Cut(version.FileVersion, "."); major != supportedMajorVersion {
		return "", r.formatError("unsupported file version %q", version.FileVersion)
	}

	r.headerRead = true
	r.version = version.FileVersion
	return r.version, nil
}

// Records returns a single-pass sequence of the records following the header, reading the
// header first when ReadHeader has not been called. The sequence stops at the first error.
func (r *Reader) Records() iter.Seq2[Record, error] {
	return func(yield func(Record, error) bool) {
		if _, err := r.ReadHeader(); err != nil {
			yield(Record{}, err)
			return
		}

		current := SectionHeader
		for {
			line, err := r.nextLine()
			if err == io.EOF {
				return
			}
			if err != nil {
				yield(Record{}, err)
				return
			}

			var marker sectionMarker
			if err := json.Unmarshal(line, &marker); err != nil || marker.Section.order() <= SectionHeader.order() {
				yield(Record{}, r.formatError("expected a section marker"))
				return
			}

			if marker.Section.order() < current.order() {
				yield(Record{}, r.formatError("section %q found after section %q", marker.Section, current))
				return
			}
			current = marker.Section

			line, err = r.nextLine()
			if err == io.EOF {
				yield(Record{}, r.formatError("section marker %q without a record", marker.Section))
				return
			}
			if err != nil {
				yield(Record{}, err)
				return
			}

			if !json.Valid(line) || line[0] != '{' {
				yield(Record{}, r.formatError("record is not a JSON object"))
				return
			}

			record := Record{
				Section: marker.Section,
				Line:    r.line,
				Raw:     bytes.Clone(line),
			}
			if !yield(record, nil) {
				return
			}
		}
	}
}

// headerLine is nextLine reporting a truncated header as a format error.
func (r *Reader) headerLine() ([]byte, error) {
	line, err := r.nextLine()
	if err == io.EOF {
		return nil, r.formatError("missing header")
	}

	return line, err
}

// nextLine returns the next non blank line, or io.EOF at the end of the input.
func (r *Reader) nextLine() ([]byte, error) {
	for r.scanner.Scan() {
		r.line++
		line := bytes.TrimSpace(r.scanner.Bytes())
		if len(line) > 0 {
			return line, nil
		}
	}

	if err := r.scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: line %d: %w", ErrInvalidFormat, r.line+1, err)
	}

	return nil, io.EOF
}

func (r *Reader) formatError(format string, args ...any) error {
	return fmt.Errorf("%w: line %d: %s", ErrInvalidFormat, r.line, fmt.Sprintf(format, args...))
}
