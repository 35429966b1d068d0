// Package audit reconciles per-bag photo counts against checksum manifest line counts
// for the bagaudit CLI.
//
// It exposes CommandBuilder for wiring the audit Cobra command, Service for driving the
// audit programmatically, and MismatchError for mapping a failed audit to its exit code.
package audit
