// Copyright (c) 2024 The illium developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package types

import (
	"errors"
	"fmt"
)

// AssertError identifies an error that indicates an internal code consistency
// issue and should be treated as a critical and unrecoverable error.
type AssertError string

// Error returns the assertion error as a human-readable string and satisfies
// the error interface.
func (e AssertError) Error() string {
	return "assertion failed: " + string(e)
}

type ErrorCode int

const (
	ErrInsufficientBalance ErrorCode = iota
	ErrSlippageExceeded
	ErrDeadlineExceeded
	ErrNotPremiumUser
	ErrBatchSizeExceeded
	ErrPoolNotFound
	ErrContractPaused
	ErrUnauthorized
	ErrProofVerificationFailed
	ErrNetwork
	ErrInvalidInput
	ErrDecode
	ErrTransactionReverted
)

// Map of ErrorCode values back to their constant names for pretty printing.
var errorCodeStrings = map[ErrorCode]string{
	ErrInsufficientBalance:     "ErrInsufficientBalance",
	ErrSlippageExceeded:        "ErrSlippageExceeded",
	ErrDeadlineExceeded:        "ErrDeadlineExceeded",
	ErrNotPremiumUser:          "ErrNotPremiumUser",
	ErrBatchSizeExceeded:       "ErrBatchSizeExceeded",
	ErrPoolNotFound:            "ErrPoolNotFound",
	ErrContractPaused:          "ErrContractPaused",
	ErrUnauthorized:            "ErrUnauthorized",
	ErrProofVerificationFailed: "ErrProofVerificationFailed",
	ErrNetwork:                 "ErrNetwork",
	ErrInvalidInput:            "ErrInvalidInput",
	ErrDecode:                  "ErrDecode",
	ErrTransactionReverted:     "ErrTransactionReverted",
}

// String returns the ErrorCode as a human-readable name.
func (e ErrorCode) String() string {
	if s := errorCodeStrings[e]; s != "" {
		return s
	}
	return fmt.Sprintf("Unknown ErrorCode (%d)", int(e))
}

// Error is returned by every operation in the transaction pipeline. The
// caller can use ErrorIs or errors.As to determine which kind of failure
// occurred and access the wrapped cause, if any, through errors.Unwrap.
type Error struct {
	Code        ErrorCode // Describes the kind of error
	Description string    // Human-readable description of the issue
	Err         error     // Underlying cause, may be nil
}

// Error satisfies the error interface and prints human-readable errors.
func (e Error) Error() string {
	if e.Err != nil {
		return e.Description + ": " + e.Err.Error()
	}
	return e.Description
}

// Unwrap returns the underlying cause.
func (e Error) Unwrap() error {
	return e.Err
}

// NewError creates an Error given a set of arguments.
func NewError(c ErrorCode, desc string) Error {
	return Error{Code: c, Description: desc}
}

// WrapError creates an Error that wraps cause.
func WrapError(c ErrorCode, desc string, cause error) Error {
	return Error{Code: c, Description: desc, Err: cause}
}

// ErrorIs returns whether err, or any error it wraps, is an Error
// with the given code.
func ErrorIs(err error, code ErrorCode) bool {
	var e Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}
