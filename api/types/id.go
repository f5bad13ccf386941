/*
 * Copyright 2021 The Yorkie Authors. All rights reserved.
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

// Package types provides the domain types of revisor: revisions, sections,
// documents, rooms and the fields used to create and change them.
package types

import (
	"fmt"

	"github.com/rs/xid"

	"github.com/docroom/revisor/pkg/errors"
)

// ErrInvalidID is returned when the given ID is not an xid.
var ErrInvalidID = errors.InvalidArgument("invalid ID").WithCode("ErrInvalidID")

// ID represents ID of entity.
type ID string

// NewID returns a new globally unique ID.
func NewID() ID {
	return ID(xid.New().String())
}

// String returns a string representation of this ID.
func (id ID) String() string {
	return string(id)
}

// IsEmpty reports whether the ID is unset.
func (id ID) IsEmpty() bool {
	return id == ""
}

// Validate returns error if this ID is invalid.
func (id ID) Validate() error {
	if _, err := xid.FromString(string(id)); err != nil {
		return fmt.Errorf("%q: %w", id, ErrInvalidID)
	}
	return nil
}
