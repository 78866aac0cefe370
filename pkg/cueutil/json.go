// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"errors"
	"fmt"

	"cuelang.org/go/cue/cuecontext"
	cuejson "cuelang.org/go/encoding/json"
)

// ErrInvalidJSON is wrapped by every syntax error DecodeJSON returns.
var ErrInvalidJSON = errors.New("invalid JSON")

// DecodeJSON parses data as strict JSON (CUE-only syntax such as comments or
// unquoted keys is rejected), unifies it with the schema definition at
// schemaPath and decodes the result into T.
func DecodeJSON[T any](schema, data []byte, schemaPath string, opts ...Option) (*ParseResult[T], error) {
	o := applyOptions(opts)
	if err := CheckFileSize(data, o.maxFileSize, o.filename); err != nil {
		return nil, err
	}

	expr, err := cuejson.Extract(o.filename, data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", o.filename, ErrInvalidJSON, err)
	}

	ctx := cuecontext.New()
	userValue := ctx.BuildExpr(expr)
	if userValue.Err() != nil {
		return nil, fmt.Errorf("%s: %w: %w", o.filename, ErrInvalidJSON, userValue.Err())
	}

	return unifyAndDecode[T](ctx, schema, userValue, schemaPath, o)
}
