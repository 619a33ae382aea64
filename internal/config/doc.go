// SPDX-License-Identifier: MPL-2.0

// Package config loads the drift-check configuration using Viper with CUE as
// the file format.
//
// The configuration lives in specdrift.cue at the project root. It names the
// specification documents, the tracked categories (where to count in code and
// which table sections or patterns to count in each document), the name-coverage
// documents and the freshness threshold. Without a file, the defaults describe
// the reference serverless layout: lambda_functions/, lambda_layer/python/,
// terraform/ and docs/specification/.
//
// A config file is unified with the embedded CUE schema (config_schema.cue),
// merged over the defaults, decoded, and finally checked with struct-tag
// validation plus semantic checks (document references, regex syntax).
package config
