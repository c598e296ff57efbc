// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package exportfile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// Writer writes an export file to an io.Writer, one JSON value per line.
type Writer struct {
	w       io.Writer
	encoded bytes.Buffer
	line    []byte
	lines   int
}

// NewWriter returns a Writer writing to w. Each line is handed to w with a single Write call.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteHeader writes the header marker and the file version record.
func (w *Writer) WriteHeader() error {
	if err := w.writeLine(markerLines[SectionHeader]); err != nil {
		return err
	}

	return w.writeLine(versionLine)
}

// WriteRecord writes the marker of section followed by record.
func (w *Writer) WriteRecord(section Section, record any) error {
	if section.order() <= SectionHeader.order() {
		return fmt.Errorf("%w: cannot write a record in section %q", ErrInvalidFormat, section)
	}

	encoded, err := w.encode(record)
	if err != nil {
		return fmt.Errorf("encoding line %d: %w", w.lines+2, err)
	}

	if err := w.writeLine(markerLines[section]); err != nil {
		return err
	}

	return w.writeLine(encoded)
}

// Lines returns the number of lines written so far.
func (w *Writer) Lines() int {
	return w.lines
}

// encode returns record as a single line with ", " and ": " separators and without HTML escaping.
func (w *Writer) encode(record any) ([]byte, error) {
	w.encoded.Reset()
	encoder := json.NewEncoder(&w.encoded)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(record); err != nil {
		return nil, err
	}

	return appendSpaced(nil, bytes.TrimSuffix(w.encoded.Bytes(), []byte{'\n'})), nil
}

func (w *Writer) writeLine(content []byte) error {
	w.line = append(append(w.line[:0], content...), '\n')
	if _, err := w.w.Write(w.line); err != nil {
		return fmt.Errorf("writing line %d: %w", w.lines+1, err)
	}

	w.lines++
	return nil
}

// appendSpaced appends compact JSON to dst adding a space after every separator found
// outside string literals.
func appendSpaced(dst, compact []byte) []byte {
	inString, escaped := false, false
	for _, c := range compact {
		dst = append(dst, c)
		switch {
		case escaped:
			escaped = false
		case inString && c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case !inString && (c == ',' || c == ':'):
			dst = append(dst, ' ')
		}
	}

	return dst
}
