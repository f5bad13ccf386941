/*
 * Copyright 2025 The Yorkie Authors. All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package errors provides status-carrying errors shared by the stores, the
// lockers and the document operations of revisor.
package errors

import "fmt"

// StatusCode classifies an error so that callers at the edge of the system
// can map it to a response without inspecting messages.
type StatusCode int

const (
	// ErrCodeInvalidArgument indicates a malformed request, e.g. an unknown
	// section or an empty deletion reason.
	ErrCodeInvalidArgument StatusCode = 3

	// ErrCodeNotFound indicates that a document, revision or room is missing.
	ErrCodeNotFound StatusCode = 5

	// ErrCodeAlreadyExists indicates that the entity being created exists.
	ErrCodeAlreadyExists StatusCode = 6

	// ErrCodePermissionDenied indicates that the caller is not authorized.
	ErrCodePermissionDenied StatusCode = 7

	// ErrCodeFailedPrecondition indicates that the stored state does not
	// allow the operation, e.g. restoring the latest revision.
	ErrCodeFailedPrecondition StatusCode = 9

	// ErrCodeInternal indicates a broken data-integrity invariant.
	ErrCodeInternal StatusCode = 13

	// ErrCodeUnavailable indicates a transient condition such as a lock
	// that could not be acquired in time.
	ErrCodeUnavailable StatusCode = 14
)

// String returns the snake_case name of the code.
func (c StatusCode) String() string {
	switch c {
	case ErrCodeInvalidArgument:
		return "invalid_argument"
	case ErrCodeNotFound:
		return "not_found"
	case ErrCodeAlreadyExists:
		return "already_exists"
	case ErrCodePermissionDenied:
		return "permission_denied"
	case ErrCodeFailedPrecondition:
		return "failed_precondition"
	case ErrCodeInternal:
		return "internal"
	case ErrCodeUnavailable:
		return "unavailable"
	default:
		return fmt.Sprintf("code_%d", int(c))
	}
}

// IsClientError returns true if the code blames the request.
func (c StatusCode) IsClientError() bool {
	switch c {
	case ErrCodeInvalidArgument, ErrCodeNotFound, ErrCodeAlreadyExists,
		ErrCodePermissionDenied, ErrCodeFailedPrecondition:
		return true
	}
	return false
}

// IsServerError returns true if the code blames the system.
func (c StatusCode) IsServerError() bool {
	return c == ErrCodeInternal || c == ErrCodeUnavailable
}
