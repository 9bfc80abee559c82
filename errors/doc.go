// Package errors provides the engine's structured error type. Every failure
// crossing a package boundary is an *AppError carrying a machine-readable
// code, so hosts can branch on NOT_FOUND or INVALID_ARGUMENT without string
// matching.
package errors
