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

import "time"

// RoomMember is a user invited into a room.
type RoomMember struct {
	UserID   ID        `json:"userId"`
	JoinedOn time.Time `json:"joinedOn"`
}

// Room groups private documents of an owner and the members invited by them.
type Room struct {
	ID    ID     `json:"id"`
	Name  string `json:"name"`
	Owner ID     `json:"owner"`

	Members []*RoomMember `json:"members"`

	// IsCollaborative allows members to create and edit non-draft documents.
	IsCollaborative bool `json:"isCollaborative"`

	// Documents lists the documents of the room in creation order.
	Documents []ID `json:"documents"`
}

// IsOwner reports whether the user owns the room.
func (r *Room) IsOwner(userID ID) bool {
	return r.Owner == userID
}

// IsMember reports whether the user was invited into the room.
func (r *Room) IsMember(userID ID) bool {
	for _, m := range r.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

// HasDocument reports whether the document belongs to the room.
func (r *Room) HasDocument(docID ID) bool {
	for _, id := range r.Documents {
		if id == docID {
			return true
		}
	}
	return false
}

// AddDocument appends the document unless already present.
func (r *Room) AddDocument(docID ID) {
	if !r.HasDocument(docID) {
		r.Documents = append(r.Documents, docID)
	}
}

// RemoveDocument removes the document and reports whether it was present.
func (r *Room) RemoveDocument(docID ID) bool {
	for i, id := range r.Documents {
		if id == docID {
			r.Documents = append(r.Documents[:i:i], r.Documents[i+1:]...)
			return true
		}
	}
	return false
}

// DeepCopy returns a copy of the room.
func (r *Room) DeepCopy() *Room {
	if r == nil {
		return nil
	}

	clone := *r
	clone.Members = make([]*RoomMember, 0, len(r.Members))
	for _, m := range r.Members {
		member := *m
		clone.Members = append(clone.Members, &member)
	}
	clone.Documents = append([]ID{}, r.Documents...)
	return &clone
}
