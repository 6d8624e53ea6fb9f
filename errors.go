package turbojpeg

import (
	"errors"
	"fmt"
)

// SourceFormatError indicates bytes the native library could not parse
// as JPEG: empty, truncated, or merely JPEG-looking input. Msg carries
// the library's error text when one is available.
type SourceFormatError struct {
	Msg string
}

func (e *SourceFormatError) Error() string {
	return "turbojpeg: source format: " + e.Msg
}

// IndexError indicates an image or thumbnail index for a position that
// does not exist. It is raised before any native call.
type IndexError struct {
	Kind  string // "image" or "thumbnail"
	Index int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("turbojpeg: %s index %d out of range", e.Kind, e.Index)
}

// ConfigurationError indicates an unusable option value, detected at
// option-resolution time before any native compression call.
type ConfigurationError struct {
	Option string
	Value  string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("turbojpeg: invalid %s: %q", e.Option, e.Value)
}

var (
	// ErrUnsupportedOperation is returned for operations JPEG cannot
	// express, such as sequence decoding.
	ErrUnsupportedOperation = errors.New("turbojpeg: operation not supported")

	// ErrSourceNotSet is returned when neither a file path nor a
	// reader was supplied before a source-touching call.
	ErrSourceNotSet = errors.New("turbojpeg: source not set")
)
