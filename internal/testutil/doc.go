// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helper functions for tests that build extension
// source trees on disk and inspect the archives produced from them.
//
// Every helper fails the test immediately on I/O errors, so call sites stay
// free of error plumbing.
package testutil
