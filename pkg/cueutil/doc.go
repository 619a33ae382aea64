// SPDX-License-Identifier: MPL-2.0

// Package cueutil provides helpers shared by code that reads user-written CUE
// files: a size guard applied before compiling, and conversion of CUE errors
// into "<file>:<line>: <path>: <message>" diagnostics.
package cueutil
