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

// ReviewState is the editorial review state of a public document.
type ReviewState string

const (
	// ReviewNone means no review was requested.
	ReviewNone ReviewState = ""

	// ReviewRequested means the document awaits review.
	ReviewRequested ReviewState = "requested"

	// ReviewApproved means a reviewer approved the document.
	ReviewApproved ReviewState = "approved"

	// ReviewRejected means a reviewer rejected the document.
	ReviewRejected ReviewState = "rejected"
)

// DocumentContext is the access context of a revision. It is either a
// *PublicContext, for documents outside of any room, or a *RoomContext.
type DocumentContext interface {
	// IsPublic reports whether the context belongs to a public document.
	IsPublic() bool

	// DeepCopyContext returns a copy that shares no memory with the receiver.
	DeepCopyContext() DocumentContext

	isDocumentContext()
}

// PublicContext holds the access-control flags of a public document.
type PublicContext struct {
	Protected      bool        `json:"protected"`
	Archived       bool        `json:"archived"`
	Verified       bool        `json:"verified"`
	Review         ReviewState `json:"review" validate:"omitempty,oneof=requested approved rejected"`
	AllowedEditors []ID        `json:"allowedEditors" validate:"dive,xid"`
}

// IsPublic returns true.
func (c *PublicContext) IsPublic() bool { return true }

// DeepCopyContext returns a copy of the context.
func (c *PublicContext) DeepCopyContext() DocumentContext { return c.DeepCopy() }

func (c *PublicContext) isDocumentContext() {}

// DeepCopy returns a copy of the public context.
func (c *PublicContext) DeepCopy() *PublicContext {
	if c == nil {
		return nil
	}
	clone := *c
	clone.AllowedEditors = append([]ID{}, c.AllowedEditors...)
	return &clone
}

// IsAllowedEditor reports whether the given user is an allowed editor.
func (c *PublicContext) IsAllowedEditor(userID ID) bool {
	for _, id := range c.AllowedEditors {
		if id == userID {
			return true
		}
	}
	return false
}

// RoomContext holds the flags of a document that lives in a room.
type RoomContext struct {
	Draft bool `json:"draft"`
}

// IsPublic returns false.
func (c *RoomContext) IsPublic() bool { return false }

// DeepCopyContext returns a copy of the context.
func (c *RoomContext) DeepCopyContext() DocumentContext { return c.DeepCopy() }

func (c *RoomContext) isDocumentContext() {}

// DeepCopy returns a copy of the room context.
func (c *RoomContext) DeepCopy() *RoomContext {
	if c == nil {
		return nil
	}
	clone := *c
	return &clone
}

// ContextFor returns the empty context matching the given room id.
func ContextFor(roomID ID) DocumentContext {
	if roomID.IsEmpty() {
		return &PublicContext{AllowedEditors: []ID{}}
	}
	return &RoomContext{}
}
