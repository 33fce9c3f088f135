// Package errors provides the structured error type foldkit raises for its
// own failures: unsupported collection or target shapes, invalid arguments,
// invalid configuration, and use of closed iterators.
//
// Errors returned by user callbacks (mappers, predicates, reducers) are never
// converted to AppError; they reach the caller unchanged so errors.Is and
// identity comparisons keep working.
package errors
