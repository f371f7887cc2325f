// Package shared holds helpers used by more than one package.
//
// The testutil subpackage provides a capturing slog handler and a small
// canonical order dataset, available both as in-memory records and as CSV
// files, so service, transport and exporter tests agree on expected values.
package shared
