// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the specdrift CLI.
//
// Command handlers stay thin: they load configuration through the App's
// config.Provider, call into internal/discovery or internal/drift, and map
// the outcome to an exit code with ExitError.
package cmd
