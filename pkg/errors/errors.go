// Copyright 2026 CodeSail Authors. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");

// Package errors provides typed errors for codesail
package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents the category of error
type ErrorType int

const (
	// ErrConfig indicates a configuration error
	ErrConfig ErrorType = iota
	// ErrValidation indicates an input validation error
	ErrValidation
	// ErrTransport indicates the provider could not be reached or the stream broke
	ErrTransport
	// ErrUpstream indicates the provider answered but not with a usable stream
	ErrUpstream
	// ErrConsumer indicates a host-side collaborator failed (e.g. file read)
	ErrConsumer
	// ErrTimeout indicates a timeout occurred
	ErrTimeout
)

// CodesailError is the base error type for all codesail errors
type CodesailError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error returns the human readable message. The category is left out so the
// text can be shown to users verbatim; use Type.String() for logs.
func (e *CodesailError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause
func (e *CodesailError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a CodesailError with the same type and message.
// This lets package-level sentinels built with New be matched by errors.Is.
func (e *CodesailError) Is(target error) bool {
	t, ok := target.(*CodesailError)
	if !ok {
		return false
	}
	return t.Type == e.Type && t.Message == e.Message && t.Cause == nil
}

// New creates a new CodesailError
func New(errType ErrorType, message string, cause error) *CodesailError {
	return &CodesailError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// WithContext adds context to the error
func (e *CodesailError) WithContext(key string, value interface{}) *CodesailError {
	e.Context[key] = value
	return e
}

// IsType checks if an error is of a specific type
func IsType(err error, errType ErrorType) bool {
	var csErr *CodesailError
	if err == nil {
		return false
	}
	if errors.As(err, &csErr) {
		return csErr.Type == errType
	}
	return false
}

// IsRetryable returns true if the error is transient. Nothing in codesail
// retries on its own; the host surfaces this so a user can re-run.
func IsRetryable(err error) bool {
	var csErr *CodesailError
	if !errors.As(err, &csErr) {
		return false
	}

	switch csErr.Type {
	case ErrTransport, ErrTimeout:
		return true
	default:
		return false
	}
}

// String returns the category label used in log fields
func (et ErrorType) String() string {
	switch et {
	case ErrConfig:
		return "CONFIG"
	case ErrValidation:
		return "VALIDATION"
	case ErrTransport:
		return "TRANSPORT"
	case ErrUpstream:
		return "UPSTREAM"
	case ErrConsumer:
		return "CONSUMER"
	case ErrTimeout:
		return "TIMEOUT"
	default:
		return "UNKNOWN"
	}
}

// TypeOf returns the category of err, or false if err is not a CodesailError
func TypeOf(err error) (ErrorType, bool) {
	var csErr *CodesailError
	if errors.As(err, &csErr) {
		return csErr.Type, true
	}
	return 0, false
}

// Convenience functions for common errors

// ConfigError creates a configuration error
func ConfigError(message string, cause error) *CodesailError {
	return New(ErrConfig, message, cause)
}

// ValidationError creates a validation error
func ValidationError(message string, cause error) *CodesailError {
	return New(ErrValidation, message, cause)
}

// TransportError creates a transport error
func TransportError(message string, cause error) *CodesailError {
	return New(ErrTransport, message, cause)
}

// UpstreamError creates an upstream protocol error
func UpstreamError(message string, cause error) *CodesailError {
	return New(ErrUpstream, message, cause)
}

// ConsumerError creates a collaborator error
func ConsumerError(message string, cause error) *CodesailError {
	return New(ErrConsumer, message, cause)
}

// TimeoutError creates a timeout error
func TimeoutError(message string, cause error) *CodesailError {
	return New(ErrTimeout, message, cause)
}
