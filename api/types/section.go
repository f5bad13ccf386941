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

package types

import (
	"bytes"
	"encoding/json"
	"time"
)

// Content is the content of a section. Its shape depends on the section
// type and is only interpreted by the content plugins.
type Content map[string]interface{}

// DeepCopy returns a copy of the content that shares no maps or slices with
// the receiver.
func (c Content) DeepCopy() Content {
	if c == nil {
		return nil
	}
	return deepCopyValue(map[string]interface{}(c)).(map[string]interface{})
}

// Equal reports whether both contents encode to the same canonical JSON.
// encoding/json sorts map keys, so the encoding is canonical.
func (c Content) Equal(other Content) bool {
	if c == nil || other == nil {
		return c == nil && other == nil
	}

	a, errA := json.Marshal(c)
	b, errB := json.Marshal(other)
	if errA != nil || errB != nil {
		return false
	}
	return bytes.Equal(a, b)
}

// String returns a string value of the content, or "".
func (c Content) String(key string) string {
	if v, ok := c[key].(string); ok {
		return v
	}
	return ""
}

func deepCopyValue(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		m := make(map[string]interface{}, len(val))
		for k, item := range val {
			m[k] = deepCopyValue(item)
		}
		return m
	case Content:
		return Content(deepCopyValue(map[string]interface{}(val)).(map[string]interface{}))
	case []interface{}:
		s := make([]interface{}, len(val))
		for i, item := range val {
			s[i] = deepCopyValue(item)
		}
		return s
	case []string:
		return append([]string{}, val...)
	default:
		return val
	}
}

// Section is a content block inside a revision.
type Section struct {
	// Key identifies the section across revisions.
	Key string `json:"key" validate:"required"`

	// Revision identifies the content version of the section. It changes
	// whenever Content changes.
	Revision ID `json:"revision" validate:"required,xid"`

	// Type selects the content plugin.
	Type string `json:"type" validate:"required"`

	// Content is nil once the section is hard-deleted.
	Content Content `json:"content"`

	DeletedOn      *time.Time `json:"deletedOn,omitempty"`
	DeletedBy      ID         `json:"deletedBy,omitempty"`
	DeletedBecause string     `json:"deletedBecause,omitempty"`
}

// IsDeleted reports whether the section was hard-deleted.
func (s *Section) IsDeleted() bool {
	return s.DeletedOn != nil
}

// DeepCopy returns a copy of the section.
func (s *Section) DeepCopy() *Section {
	if s == nil {
		return nil
	}

	clone := *s
	clone.Content = s.Content.DeepCopy()
	if s.DeletedOn != nil {
		deletedOn := *s.DeletedOn
		clone.DeletedOn = &deletedOn
	}
	return &clone
}

// Redacted returns a copy of the section with its content removed and the
// deletion stamped.
func (s *Section) Redacted(by ID, because string, on time.Time) *Section {
	clone := s.DeepCopy()
	clone.Content = nil
	clone.DeletedOn = &on
	clone.DeletedBy = by
	clone.DeletedBecause = because
	return clone
}

// DeepCopySections returns a copy of the given sections.
func DeepCopySections(sections []*Section) []*Section {
	clone := make([]*Section, 0, len(sections))
	for _, s := range sections {
		clone = append(clone, s.DeepCopy())
	}
	return clone
}
