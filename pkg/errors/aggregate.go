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

package errors

import (
	"fmt"
	"strings"
)

// Violation is a single problem found while validating stored data.
type Violation struct {
	// Subject names what was validated, e.g. "document" or "revision 3".
	Subject string

	// Field is the offending field, if any.
	Field string

	Message string
}

func (v Violation) String() string {
	if v.Field == "" {
		return fmt.Sprintf("%s: %s", v.Subject, v.Message)
	}
	return fmt.Sprintf("%s: %s: %s", v.Subject, v.Field, v.Message)
}

// AggregateError collects every violation found in one validation pass.
type AggregateError struct {
	Violations []Violation

	// Irrecoverable marks data that no automatic process can repair.
	Irrecoverable bool
}

// Error joins all violations into one message.
func (e *AggregateError) Error() string {
	lines := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		lines = append(lines, v.String())
	}
	return fmt.Sprintf("%d violation(s): %s", len(e.Violations), strings.Join(lines, "; "))
}

// Status reports ErrCodeInternal: the stored data is inconsistent.
func (e *AggregateError) Status() StatusCode {
	return ErrCodeInternal
}

// Code returns the machine-readable code of the aggregate.
func (e *AggregateError) Code() string {
	return "ErrValidationFailed"
}

// WithCode is a no-op for aggregates; the code is fixed.
func (e *AggregateError) WithCode(string) StatusError {
	return e
}

// Collector accumulates violations and produces an AggregateError.
type Collector struct {
	violations []Violation
}

// Add records a violation.
func (c *Collector) Add(subject, field, message string) {
	c.violations = append(c.violations, Violation{Subject: subject, Field: field, Message: message})
}

// Addf records a violation with a formatted message.
func (c *Collector) Addf(subject, field, format string, args ...any) {
	c.Add(subject, field, fmt.Sprintf(format, args...))
}

// Len returns the number of violations recorded so far.
func (c *Collector) Len() int {
	return len(c.violations)
}

// Err returns nil if nothing was recorded, otherwise an irrecoverable
// AggregateError.
func (c *Collector) Err() error {
	if len(c.violations) == 0 {
		return nil
	}
	return &AggregateError{Violations: c.violations, Irrecoverable: true}
}
