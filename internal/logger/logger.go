// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package logger

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
)

var (
	// ErrUnknownLevel is returned when parsing a level name not listed in Levels.
	ErrUnknownLevel = errors.New("unknown log level")

	nullLogger = &instance{log: hclog.NewNullLogger()}
)

//go:generate ${TOOLS_BIN}/stringer -type=Level
type Level int

const (
	ERROR Level = iota
	WARN
	INFO
	DEBUG
	TRACE
)

var hclogLevels = map[Level]hclog.Level{
	TRACE: hclog.Trace,
	DEBUG: hclog.Debug,
	INFO:  hclog.Info,
	WARN:  hclog.Warn,
	ERROR: hclog.Error,
}

// Levels returns the names of the supported levels, from the most to the least verbose.
func Levels() []string {
	return []string{TRACE.String(), DEBUG.String(), INFO.String(), WARN.String(), ERROR.String()}
}

// ParseLevel returns the Level named by level, ignoring case.
func ParseLevel(level string) (Level, error) {
	for candidate := range hclogLevels {
		if strings.EqualFold(candidate.String(), level) {
			return candidate, nil
		}
	}

	return INFO, fmt.Errorf("%w %q, must be one of %s", ErrUnknownLevel, level, strings.Join(Levels(), ", "))
}

func (l Level) convertedLevel() hclog.Level {
	if level, found := hclogLevels[l]; found {
		return level
	}

	return hclog.Info
}

// Logger is the logging interface shared by every package of the module.
type Logger interface {
	// WithName returns a new Logger instance with the specified name.
	WithName(name string) Logger
	// With returns a new Logger that always emits the given key/value pairs.
	With(args ...any) Logger
	// SetLevel updates the logger level, unknown levels fall back to INFO.
	SetLevel(level Level)

	Trace(msg string, args ...any)
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

var _ Logger = &instance{}

type instance struct {
	log hclog.Logger
}

// NewLogger creates a JSON logger writing to writer at INFO level.
func NewLogger(writer io.Writer) Logger {
	return &instance{
		log: hclog.New(&hclog.LoggerOptions{
			JSONFormat: true,
			Output:     writer,
			TimeFn:     time.Now,
			Level:      INFO.convertedLevel(),
		}),
	}
}

func (i instance) WithName(name string) Logger {
	return &instance{log: i.log.ResetNamed(name)}
}

func (i instance) With(args ...any) Logger {
	return &instance{log: i.log.With(args...)}
}

func (i instance) SetLevel(level Level) { i.log.SetLevel(level.convertedLevel()) }

func (i instance) Trace(msg string, args ...any) { i.log.Trace(msg, args...) }

func (i instance) Debug(msg string, args ...any) { i.log.Debug(msg, args...) }

func (i instance) Info(msg string, args ...any) { i.log.Info(msg, args...) }

func (i instance) Warn(msg string, args ...any) { i.log.Warn(msg, args...) }

func (i instance) Error(msg string, args ...any) { i.log.Error(msg, args...) }
