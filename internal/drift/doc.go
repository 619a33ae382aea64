// SPDX-License-Identifier: MPL-2.0

// Package drift reconciles a source tree with its hand-written specification
// documents.
//
// A Comparator runs three checks in a fixed order and hands every Finding to a
// Reporter as soon as it is produced:
//
//  1. count: the number of components found in code (directories, files,
//     declared resources or pattern matches) against the number of table rows
//     or heading matches in the specification document;
//  2. coverage: every component name must appear somewhere in the coverage
//     documents;
//  3. freshness: every document must carry a "Last verified: YYYY-MM-DD" line
//     no older than the configured number of days.
//
// Findings never modify documents. A missing document or code path aborts the
// whole run with an *issue.ActionableError.
package drift
