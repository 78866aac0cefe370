// SPDX-License-Identifier: MPL-2.0

package extmeta

import (
	_ "embed"
	"errors"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"extpack-cli/pkg/cueutil"

	"cuelang.org/go/cue"
)

const (
	// DefaultFileName is the metadata file looked up in the working directory.
	DefaultFileName = "metadata.json"

	// DefaultVersion is used when neither version-name nor version is set.
	DefaultVersion = "0"
)

//go:embed metadata_schema.cue
var metadataSchema []byte

var (
	versionNamePath = cue.MakePath(cue.Str("version-name"))
	versionPath     = cue.MakePath(cue.Str("version"))
	uuidPath        = cue.MakePath(cue.Str("uuid"))
)

type (
	// Metadata is the package identity read from metadata.json. It is
	// immutable once loaded.
	Metadata struct {
		UUID    string
		Version string
		// Name is the display name, empty when absent.
		Name string
		// SettingsSchema is the GSettings schema id, empty when absent.
		SettingsSchema string
	}

	rawMetadata struct {
		UUID           string `json:"uuid"`
		Name           string `json:"name"`
		SettingsSchema string `json:"settings-schema"`
	}
)

// ArchiveName returns "{uuid}_v{version}.zip".
func (m *Metadata) ArchiveName() string {
	return ArchiveName(m.UUID, m.Version)
}

// ArchiveName returns the archive file name for a package identity.
func ArchiveName(uuid, version string) string {
	return uuid + "_v" + version + ".zip"
}

// Load reads fileName (DefaultFileName when empty) from dir.
func Load(dir, fileName string) (*Metadata, error) {
	if fileName == "" {
		fileName = DefaultFileName
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		absDir = dir
	}

	data, err := os.ReadFile(filepath.Join(dir, fileName))
	if err != nil {
		kind := KindUnreadable
		if errors.Is(err, fs.ErrNotExist) {
			kind = KindMissingFile
		}
		return nil, &ConfigurationError{Kind: kind, File: fileName, Dir: absDir, Err: err}
	}

	return Parse(data, fileName)
}

// Parse decodes metadata from raw JSON. fileName is used in errors only.
func Parse(data []byte, fileName string) (*Metadata, error) {
	result, err := cueutil.DecodeJSON[rawMetadata](metadataSchema, data, "#Metadata", cueutil.WithFilename(fileName))
	if err != nil {
		return nil, classify(err, fileName)
	}

	version, err := ResolveVersion(result.Unified)
	if err != nil {
		return nil, &ConfigurationError{Kind: KindInvalidField, File: fileName, Field: "version", Err: err}
	}

	return &Metadata{
		UUID:           result.Value.UUID,
		Version:        version,
		Name:           result.Value.Name,
		SettingsSchema: result.Value.SettingsSchema,
	}, nil
}

// ResolveVersion applies the version fallback: "version-name" if present,
// then "version" (number or string), then DefaultVersion.
func ResolveVersion(v cue.Value) (string, error) {
	if name := v.LookupPath(versionNamePath); name.Exists() {
		return name.String()
	}

	version := v.LookupPath(versionPath)
	if !version.Exists() {
		return DefaultVersion, nil
	}

	switch version.IncompleteKind() {
	case cue.StringKind:
		return version.String()
	case cue.IntKind:
		i, err := version.Int64()
		if err != nil {
			return "", err
		}
		return strconv.FormatInt(i, 10), nil
	default:
		f, err := version.Float64()
		if err != nil {
			return "", err
		}
		return formatFloat(f), nil
	}
}

// formatFloat renders whole floats with a trailing ".0" so "version": 2.0
// stays distinguishable from "version": 2.
func formatFloat(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e16 {
		return strconv.FormatFloat(f, 'f', 1, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func classify(err error, fileName string) error {
	if errors.Is(err, cueutil.ErrInvalidJSON) {
		return &ConfigurationError{Kind: KindMalformed, File: fileName, Err: err}
	}

	var schemaErr *cueutil.SchemaError
	if !errors.As(err, &schemaErr) {
		return &ConfigurationError{Kind: KindUnreadable, File: fileName, Err: err}
	}

	uuid := schemaErr.Raw.LookupPath(uuidPath)
	if !uuid.Exists() || uuid.IsNull() {
		return &ConfigurationError{Kind: KindMissingField, File: fileName, Field: "uuid", Err: err}
	}
	if s, strErr := uuid.String(); strErr == nil && s == "" {
		return &ConfigurationError{Kind: KindMissingField, File: fileName, Field: "uuid", Err: err}
	}

	field := "uuid"
	for _, candidate := range []string{"uuid", "version-name", "version", "name", "settings-schema"} {
		if schemaErr.HasPath(candidate) {
			field = candidate
			break
		}
	}
	return &ConfigurationError{Kind: KindInvalidField, File: fileName, Field: field, Err: err}
}
