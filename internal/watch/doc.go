// SPDX-License-Identifier: MPL-2.0

// Package watch re-runs a callback when files under a directory change.
//
// Events inside the debounce window are coalesced, so a burst of editor
// writes to a spec document produces a single re-run with every changed path.
package watch
