// SPDX-License-Identifier: MPL-2.0

// Package watch rebuilds an extension when its source tree changes.
//
// Every directory under the root that survives the exclusion rules is
// registered with fsnotify. Events for excluded or ignored paths are dropped,
// the rest are collected until the tree has been quiet for the debounce
// period, and the callback then runs once with the changed paths.
package watch
