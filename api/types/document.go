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
	"time"
)

// Document is the current state of a document, folded from its whole
// revision chain. It is never edited directly.
type Document struct {
	ID     ID `json:"id" validate:"required,xid"`
	RoomID ID `json:"roomId,omitempty" validate:"omitempty,xid"`

	// Revision is the id of the last revision of the chain.
	Revision ID    `json:"revision" validate:"required,xid"`
	Order    int64 `json:"order" validate:"gt=0"`

	CreatedOn time.Time `json:"createdOn" validate:"required"`
	CreatedBy ID        `json:"createdBy" validate:"required"`
	UpdatedOn time.Time `json:"updatedOn" validate:"required"`
	UpdatedBy ID        `json:"updatedBy" validate:"required"`

	Title       string     `json:"title" validate:"required,max=300"`
	Description string     `json:"description" validate:"max=2000"`
	Slug        string     `json:"slug" validate:"required,slug,max=300"`
	Language    string     `json:"language" validate:"required,language"`
	Tags        []string   `json:"tags" validate:"dive,required,max=100"`
	Sections    []*Section `json:"sections" validate:"dive,required"`

	Context      DocumentContext `json:"context" validate:"required"`
	CDNResources []string        `json:"cdnResources"`

	// Contributors lists every distinct author of the chain in order of
	// first contribution.
	Contributors []ID `json:"contributors" validate:"min=1"`
}

// PublicContext returns the public context, or nil for room documents.
func (d *Document) PublicContext() *PublicContext {
	c, _ := d.Context.(*PublicContext)
	return c
}

// RoomContext returns the room context, or nil for public documents.
func (d *Document) RoomContext() *RoomContext {
	c, _ := d.Context.(*RoomContext)
	return c
}

// IsPublic reports whether the document lives outside of any room.
func (d *Document) IsPublic() bool {
	return d.RoomID.IsEmpty()
}

// DeepCopy returns a copy of the document.
func (d *Document) DeepCopy() *Document {
	if d == nil {
		return nil
	}

	clone := *d
	clone.Tags = append([]string{}, d.Tags...)
	clone.Sections = DeepCopySections(d.Sections)
	clone.CDNResources = append([]string{}, d.CDNResources...)
	clone.Contributors = append([]ID{}, d.Contributors...)
	if d.Context != nil {
		clone.Context = d.Context.DeepCopyContext()
	}
	return &clone
}
