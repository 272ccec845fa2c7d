package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrTransport marks an unreachable service or a non-success status.
	ErrTransport = errors.New("transport error")
	// ErrMalformed marks a response payload that could not be parsed.
	ErrMalformed = errors.New("malformed response")
	// ErrFilesystem marks a failed rename, stat, or state file write.
	ErrFilesystem = errors.New("filesystem error")
	// ErrDataGap marks missing canonical names or an empty catalog.
	ErrDataGap = errors.New("data gap")
	// ErrConfiguration marks missing credentials or unusable settings.
	ErrConfiguration = errors.New("configuration error")
)

// FailureKind is the inspectable classification of a recovered failure.
type FailureKind string

const (
	KindNone          FailureKind = ""
	KindTransport     FailureKind = "transport"
	KindMalformed     FailureKind = "malformed"
	KindFilesystem    FailureKind = "filesystem"
	KindDataGap       FailureKind = "data_gap"
	KindConfiguration FailureKind = "configuration"
	KindUnknown       FailureKind = "unknown"
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrTransport
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// KindOf classifies err by the marker it carries.
func KindOf(err error) FailureKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrConfiguration):
		return KindConfiguration
	case errors.Is(err, ErrMalformed):
		return KindMalformed
	case errors.Is(err, ErrTransport):
		return KindTransport
	case errors.Is(err, ErrFilesystem):
		return KindFilesystem
	case errors.Is(err, ErrDataGap):
		return KindDataGap
	default:
		return KindUnknown
	}
}

// Fatal reports whether a failure kind should stop the whole run. Only
// configuration problems do; everything else is recovered per category,
// batch, or file.
func Fatal(err error) bool {
	return KindOf(err) == KindConfiguration
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
