// SPDX-License-Identifier: MPL-2.0

// Package cueutil validates configuration and metadata documents against
// embedded CUE schemas.
//
// Both entry points follow the same three steps:
//
//  1. Compile the embedded schema
//  2. Compile user data (CUE source or strict JSON) and unify with the schema
//  3. Validate and decode to a Go value
//
// # Usage
//
//	//go:embed metadata_schema.cue
//	var schemaBytes []byte
//
//	result, err := cueutil.DecodeJSON[rawMetadata](
//	    schemaBytes,
//	    fileBytes,
//	    "#Metadata",
//	    cueutil.WithFilename("metadata.json"),
//	)
//
// Syntax failures wrap ErrInvalidJSON (or are plain CUE errors for CUE input);
// schema failures are returned as *SchemaError, which keeps the raw user value
// so callers can tell a missing field from a mistyped one.
package cueutil
