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

// EventType is the type of a document event.
type EventType string

const (
	// EventRevisionCreated is recorded whenever a revision is appended.
	EventRevisionCreated EventType = "revision-created"

	// EventRevisionRestored is recorded when a revision is appended by a
	// restore.
	EventRevisionRestored EventType = "revision-restored"
)

// Event records a change to a document.
type Event struct {
	ID         ID        `json:"id"`
	Type       EventType `json:"type"`
	DocumentID ID        `json:"documentId"`
	RevisionID ID        `json:"revisionId"`
	RoomID     ID        `json:"roomId,omitempty"`
	UserID     ID        `json:"userId"`
	CreatedOn  time.Time `json:"createdOn"`
}

// NewRevisionEvent returns the event recorded for the given revision.
func NewRevisionEvent(rev *Revision) *Event {
	eventType := EventRevisionCreated
	if !rev.RestoredFrom.IsEmpty() {
		eventType = EventRevisionRestored
	}

	return &Event{
		ID:         NewID(),
		Type:       eventType,
		DocumentID: rev.DocumentID,
		RevisionID: rev.ID,
		RoomID:     rev.RoomID,
		UserID:     rev.CreatedBy,
		CreatedOn:  rev.CreatedOn,
	}
}

// Comment is a discussion entry attached to a document.
type Comment struct {
	ID         ID        `json:"id"`
	DocumentID ID        `json:"documentId"`
	CreatedBy  ID        `json:"createdBy"`
	CreatedOn  time.Time `json:"createdOn"`
	Topic      string    `json:"topic"`
	Text       string    `json:"text"`
}
