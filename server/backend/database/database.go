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

// Package database provides the database interface for revisor: the
// revision store, the current-document store, rooms, events, comments and
// the order sequencer.
package database

import (
	"context"

	"github.com/docroom/revisor/api/types"
	"github.com/docroom/revisor/pkg/errors"
)

var (
	// ErrDocumentNotFound is returned when the document could not be found.
	ErrDocumentNotFound = errors.NotFound("document not found").WithCode("ErrDocumentNotFound")

	// ErrRevisionNotFound is returned when the revision could not be found.
	ErrRevisionNotFound = errors.NotFound("revision not found").WithCode("ErrRevisionNotFound")

	// ErrRoomNotFound is returned when the room could not be found.
	ErrRoomNotFound = errors.NotFound("room not found").WithCode("ErrRoomNotFound")

	// ErrRevisionAlreadyExists is returned when a revision with the same id
	// was already created. Revisions are append-only.
	ErrRevisionAlreadyExists = errors.AlreadyExists("revision already exists").WithCode("ErrRevisionAlreadyExists")
)

// Database represents the stores used by the document operations. Every
// method called with a context returned by WithTransaction takes part in
// that transaction.
type Database interface {
	// Close all resources of this database.
	Close() error

	// WithTransaction runs fn in one atomic transaction. The writes of fn
	// are committed if fn returns nil and discarded otherwise. Nested calls
	// join the outer transaction.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// NextOrder returns the next value of the global order sequence. Values
	// are strictly increasing in call order across all documents.
	NextOrder(ctx context.Context) (int64, error)

	// FindRevisionsByDocumentID returns the chain of the given document
	// ordered by order. It returns an empty chain for unknown documents.
	FindRevisionsByDocumentID(ctx context.Context, docID types.ID) ([]*types.Revision, error)

	// FindRevisionByID returns the revision of the given id.
	FindRevisionByID(ctx context.Context, id types.ID) (*types.Revision, error)

	// CreateRevision appends a new revision.
	CreateRevision(ctx context.Context, rev *types.Revision) error

	// UpsertRevisions writes the given revisions by id. It is only used to
	// rewrite history: redaction and consolidation.
	UpsertRevisions(ctx context.Context, revs []*types.Revision) error

	// DeleteRevisionsByDocumentID deletes the chain of the given document and
	// returns the number of deleted revisions.
	DeleteRevisionsByDocumentID(ctx context.Context, docID types.ID) (int, error)

	// FindDocumentByID returns the current document of the given id.
	FindDocumentByID(ctx context.Context, id types.ID) (*types.Document, error)

	// UpsertDocument writes the current document.
	UpsertDocument(ctx context.Context, doc *types.Document) error

	// DeleteDocumentByID deletes the current document of the given id.
	DeleteDocumentByID(ctx context.Context, id types.ID) error

	// FindDocumentIDs returns up to limit document ids greater than after in
	// ascending order. An empty after starts from the beginning.
	FindDocumentIDs(ctx context.Context, after types.ID, limit int) ([]types.ID, error)

	// FindRoomByID returns the room of the given id.
	FindRoomByID(ctx context.Context, id types.ID) (*types.Room, error)

	// UpsertRoom writes the room.
	UpsertRoom(ctx context.Context, room *types.Room) error

	// CreateEvent records an event.
	CreateEvent(ctx context.Context, event *types.Event) error

	// FindEventsByDocumentID returns the events of a document in creation
	// order.
	FindEventsByDocumentID(ctx context.Context, docID types.ID) ([]*types.Event, error)

	// CreateComment stores a comment.
	CreateComment(ctx context.Context, comment *types.Comment) error

	// FindCommentsByDocumentID returns the comments of a document.
	FindCommentsByDocumentID(ctx context.Context, docID types.ID) ([]*types.Comment, error)

	// DeleteCommentsByDocumentID deletes the comments of a document and
	// returns their number.
	DeleteCommentsByDocumentID(ctx context.Context, docID types.ID) (int, error)
}
