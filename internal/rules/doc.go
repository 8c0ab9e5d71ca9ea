// Package rules implements the dependency/conflict validator for service
// selections. Every operation is a pure function of (selection, catalog
// snapshot) with no shared mutable state, so calls are safe to run
// concurrently without locking.
//
// Business-rule violations are ordinary return values, never errors:
// callers render them. Errors are reserved for malformed input
// (ErrInvalidInput) checked before any rule evaluation.
package rules
