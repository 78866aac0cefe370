// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable error handling with user-friendly messages.
//
// ActionableError carries the failed operation, the resource involved and
// suggestions; the issue catalog adds Markdown remediation pages rendered
// with glamour for the most common failures.
package issue
