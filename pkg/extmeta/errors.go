// SPDX-License-Identifier: MPL-2.0

package extmeta

import (
	"errors"
	"fmt"
)

const (
	// KindMissingFile means metadata.json does not exist.
	KindMissingFile ErrorKind = iota + 1
	// KindMalformed means the file is not valid JSON.
	KindMalformed
	// KindMissingField means uuid is absent or empty.
	KindMissingField
	// KindInvalidField means a known field has the wrong type.
	KindInvalidField
	// KindUnreadable means the file exists but could not be read.
	KindUnreadable
)

// ErrConfiguration is the sentinel wrapped by every *ConfigurationError.
var ErrConfiguration = errors.New("configuration error")

type (
	// ErrorKind classifies a ConfigurationError.
	ErrorKind int

	// ConfigurationError reports missing or unusable package metadata.
	ConfigurationError struct {
		Kind ErrorKind
		// File is the metadata file path as given to Load.
		File string
		// Dir is the directory the file was looked up in.
		Dir string
		// Field names the offending field for KindMissingField and KindInvalidField.
		Field string
		Err   error
	}
)

// String returns a short human-readable kind name.
func (k ErrorKind) String() string {
	switch k {
	case KindMissingFile:
		return "missing file"
	case KindMalformed:
		return "malformed JSON"
	case KindMissingField:
		return "missing required field"
	case KindInvalidField:
		return "invalid field"
	case KindUnreadable:
		return "unreadable file"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	switch e.Kind {
	case KindMissingFile:
		return fmt.Sprintf("%s not found in %s", e.File, e.Dir)
	case KindMalformed:
		return fmt.Sprintf("failed to parse %s: check your JSON syntax", e.File)
	case KindMissingField:
		return fmt.Sprintf("'%s' missing in %s", e.Field, e.File)
	case KindInvalidField:
		return fmt.Sprintf("invalid '%s' in %s: %v", e.Field, e.File, e.Err)
	default:
		return fmt.Sprintf("failed to read %s: %v", e.File, e.Err)
	}
}

// Unwrap returns the underlying cause and ErrConfiguration.
func (e *ConfigurationError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrConfiguration}
	}
	return []error{ErrConfiguration, e.Err}
}
