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
	"fmt"
	"time"

	"github.com/docroom/revisor/pkg/errors"
)

var (
	// ErrContextMismatch is returned when the context of a revision does not
	// match its room id.
	ErrContextMismatch = errors.Internal("document context does not match room").WithCode("ErrContextMismatch")
)

// Revision is an immutable snapshot of a document. Revisions of the same
// document form its chain.
type Revision struct {
	ID         ID `json:"id" validate:"required,xid"`
	DocumentID ID `json:"documentId" validate:"required,xid"`

	// RoomID is empty for public documents.
	RoomID ID `json:"roomId,omitempty" validate:"omitempty,xid"`

	// Order is assigned by the sequencer when the revision is committed.
	Order int64 `json:"order" validate:"gt=0"`

	CreatedOn time.Time `json:"createdOn" validate:"required"`
	CreatedBy ID        `json:"createdBy" validate:"required"`

	// RestoredFrom is the revision this one was restored from, if any.
	RestoredFrom ID `json:"restoredFrom,omitempty"`

	Title       string     `json:"title" validate:"required,max=300"`
	Description string     `json:"description" validate:"max=2000"`
	Slug        string     `json:"slug" validate:"required,slug,max=300"`
	Language    string     `json:"language" validate:"required,language"`
	Tags        []string   `json:"tags" validate:"dive,required,max=100"`
	Sections    []*Section `json:"sections" validate:"dive,required"`

	Context DocumentContext `json:"context" validate:"required"`

	// CDNResources is derived from the sections on every write.
	CDNResources []string `json:"cdnResources"`
}

// PublicContext returns the public context, or nil for room documents.
func (r *Revision) PublicContext() *PublicContext {
	c, _ := r.Context.(*PublicContext)
	return c
}

// RoomContext returns the room context, or nil for public documents.
func (r *Revision) RoomContext() *RoomContext {
	c, _ := r.Context.(*RoomContext)
	return c
}

// IsPublic reports whether the revision belongs to a public document.
func (r *Revision) IsPublic() bool {
	return r.RoomID.IsEmpty()
}

// CheckContext returns ErrContextMismatch unless the context is public
// exactly when the room id is empty.
func (r *Revision) CheckContext() error {
	if r.Context == nil {
		return fmt.Errorf("revision %s has no context: %w", r.ID, ErrContextMismatch)
	}
	if r.Context.IsPublic() != r.IsPublic() {
		return fmt.Errorf("revision %s: %w", r.ID, ErrContextMismatch)
	}
	return nil
}

// FindSection returns the section with the given key, or nil.
func (r *Revision) FindSection(key string) *Section {
	for _, s := range r.Sections {
		if s.Key == key {
			return s
		}
	}
	return nil
}

// DeepCopy returns a copy of the revision that shares no memory with the
// receiver.
func (r *Revision) DeepCopy() *Revision {
	if r == nil {
		return nil
	}

	clone := *r
	clone.Tags = append([]string{}, r.Tags...)
	clone.Sections = DeepCopySections(r.Sections)
	clone.CDNResources = append([]string{}, r.CDNResources...)
	if r.Context != nil {
		clone.Context = r.Context.DeepCopyContext()
	}
	return &clone
}

// DeepCopyRevisions returns a copy of the given chain.
func DeepCopyRevisions(revisions []*Revision) []*Revision {
	clone := make([]*Revision, 0, len(revisions))
	for _, r := range revisions {
		clone = append(clone, r.DeepCopy())
	}
	return clone
}
