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

// Package memory implements the database interface on top of go-memdb. It is
// used by tests and by single-process deployments.
package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/hashicorp/go-memdb"

	"github.com/docroom/revisor/api/types"
	"github.com/docroom/revisor/server/backend/database"
)

const orderCounter = "order"

type txnKey struct{}

// DB is an in-memory database for testing or temporarily.
type DB struct {
	db *memdb.MemDB
}

// New returns a new in-memory database.
func New() (*DB, error) {
	memDB, err := memdb.NewMemDB(schema)
	if err != nil {
		return nil, fmt.Errorf("new memdb: %w", err)
	}

	return &DB{
		db: memDB,
	}, nil
}

// Close closes the database.
func (d *DB) Close() error {
	return nil
}

// WithTransaction runs fn in one memdb write transaction. memdb allows a
// single writer at a time, so the transaction is carried in the context and
// reused by every store method that fn calls.
func (d *DB) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txnKey{}).(*memdb.Txn); ok {
		return fn(ctx)
	}

	txn := d.db.Txn(true)
	defer txn.Abort()

	if err := fn(context.WithValue(ctx, txnKey{}, txn)); err != nil {
		return err
	}

	txn.Commit()
	return nil
}

// update runs fn in the ambient transaction, or in a new write transaction
// committed when fn succeeds.
func (d *DB) update(ctx context.Context, fn func(txn *memdb.Txn) error) error {
	if txn, ok := ctx.Value(txnKey{}).(*memdb.Txn); ok {
		return fn(txn)
	}

	txn := d.db.Txn(true)
	defer txn.Abort()
	if err := fn(txn); err != nil {
		return err
	}
	txn.Commit()
	return nil
}

// view runs fn in the ambient transaction, or in a new read transaction.
func (d *DB) view(ctx context.Context, fn func(txn *memdb.Txn) error) error {
	if txn, ok := ctx.Value(txnKey{}).(*memdb.Txn); ok {
		return fn(txn)
	}

	txn := d.db.Txn(false)
	defer txn.Abort()
	return fn(txn)
}

// NextOrder increments the order counter.
func (d *DB) NextOrder(ctx context.Context) (int64, error) {
	var next int64
	if err := d.update(ctx, func(txn *memdb.Txn) error {
		raw, err := txn.First(tblCounters, "id", orderCounter)
		if err != nil {
			return fmt.Errorf("find counter: %w", err)
		}

		next = 1
		if raw != nil {
			next = raw.(*counter).Value + 1
		}

		if err := txn.Insert(tblCounters, &counter{Name: orderCounter, Value: next}); err != nil {
			return fmt.Errorf("insert counter: %w", err)
		}
		return nil
	}); err != nil {
		return 0, err
	}

	return next, nil
}

// FindRevisionsByDocumentID returns the chain of the given document.
func (d *DB) FindRevisionsByDocumentID(ctx context.Context, docID types.ID) ([]*types.Revision, error) {
	var revisions []*types.Revision
	if err := d.view(ctx, func(txn *memdb.Txn) error {
		iterator, err := txn.Get(tblRevisions, "doc_id", docID.String())
		if err != nil {
			return fmt.Errorf("find revisions of %s: %w", docID, err)
		}

		for raw := iterator.Next(); raw != nil; raw = iterator.Next() {
			// NOTE: memdb returns references to stored objects.
			revisions = append(revisions, raw.(*types.Revision).DeepCopy())
		}
		return nil
	}); err != nil {
		return nil, err
	}

	sort.Slice(revisions, func(i, j int) bool {
		return revisions[i].Order < revisions[j].Order
	})
	return revisions, nil
}

// FindRevisionByID returns the revision of the given id.
func (d *DB) FindRevisionByID(ctx context.Context, id types.ID) (*types.Revision, error) {
	var rev *types.Revision
	if err := d.view(ctx, func(txn *memdb.Txn) error {
		raw, err := txn.First(tblRevisions, "id", id.String())
		if err != nil {
			return fmt.Errorf("find revision %s: %w", id, err)
		}
		if raw == nil {
			return fmt.Errorf("%s: %w", id, database.ErrRevisionNotFound)
		}
		rev = raw.(*types.Revision).DeepCopy()
		return nil
	}); err != nil {
		return nil, err
	}
	return rev, nil
}

// CreateRevision appends a new revision.
func (d *DB) CreateRevision(ctx context.Context, rev *types.Revision) error {
	return d.update(ctx, func(txn *memdb.Txn) error {
		raw, err := txn.First(tblRevisions, "id", rev.ID.String())
		if err != nil {
			return fmt.Errorf("find revision %s: %w", rev.ID, err)
		}
		if raw != nil {
			return fmt.Errorf("%s: %w", rev.ID, database.ErrRevisionAlreadyExists)
		}

		if err := txn.Insert(tblRevisions, rev.DeepCopy()); err != nil {
			return fmt.Errorf("insert revision %s: %w", rev.ID, err)
		}
		return nil
	})
}

// UpsertRevisions writes the given revisions by id.
func (d *DB) UpsertRevisions(ctx context.Context, revs []*types.Revision) error {
	return d.update(ctx, func(txn *memdb.Txn) error {
		for _, rev := range revs {
			if err := txn.Insert(tblRevisions, rev.DeepCopy()); err != nil {
				return fmt.Errorf("upsert revision %s: %w", rev.ID, err)
			}
		}
		return nil
	})
}

// DeleteRevisionsByDocumentID deletes the chain of the given document.
func (d *DB) DeleteRevisionsByDocumentID(ctx context.Context, docID types.ID) (int, error) {
	var deleted int
	if err := d.update(ctx, func(txn *memdb.Txn) error {
		n, err := txn.DeleteAll(tblRevisions, "doc_id", docID.String())
		if err != nil {
			return fmt.Errorf("delete revisions of %s: %w", docID, err)
		}
		deleted = n
		return nil
	}); err != nil {
		return 0, err
	}
	return deleted, nil
}

// FindDocumentByID returns the current document of the given id.
func (d *DB) FindDocumentByID(ctx context.Context, id types.ID) (*types.Document, error) {
	var doc *types.Document
	if err := d.view(ctx, func(txn *memdb.Txn) error {
		raw, err := txn.First(tblDocuments, "id", id.String())
		if err != nil {
			return fmt.Errorf("find document %s: %w", id, err)
		}
		if raw == nil {
			return fmt.Errorf("%s: %w", id, database.ErrDocumentNotFound)
		}
		doc = raw.(*types.Document).DeepCopy()
		return nil
	}); err != nil {
		return nil, err
	}
	return doc, nil
}

// UpsertDocument writes the current document.
func (d *DB) UpsertDocument(ctx context.Context, doc *types.Document) error {
	return d.update(ctx, func(txn *memdb.Txn) error {
		if err := txn.Insert(tblDocuments, doc.DeepCopy()); err != nil {
			return fmt.Errorf("upsert document %s: %w", doc.ID, err)
		}
		return nil
	})
}

// DeleteDocumentByID deletes the current document of the given id.
func (d *DB) DeleteDocumentByID(ctx context.Context, id types.ID) error {
	return d.update(ctx, func(txn *memdb.Txn) error {
		raw, err := txn.First(tblDocuments, "id", id.String())
		if err != nil {
			return fmt.Errorf("find document %s: %w", id, err)
		}
		if raw == nil {
			return fmt.Errorf("%s: %w", id, database.ErrDocumentNotFound)
		}
		if err := txn.Delete(tblDocuments, raw); err != nil {
			return fmt.Errorf("delete document %s: %w", id, err)
		}
		return nil
	})
}

// FindDocumentIDs returns a page of document ids in ascending order.
func (d *DB) FindDocumentIDs(ctx context.Context, after types.ID, limit int) ([]types.ID, error) {
	var ids []types.ID
	if err := d.view(ctx, func(txn *memdb.Txn) error {
		iterator, err := txn.LowerBound(tblDocuments, "id", after.String())
		if err != nil {
			return fmt.Errorf("find document ids: %w", err)
		}

		for raw := iterator.Next(); raw != nil && len(ids) < limit; raw = iterator.Next() {
			doc := raw.(*types.Document)
			if doc.ID == after {
				continue
			}
			ids = append(ids, doc.ID)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return ids, nil
}

// FindRoomByID returns the room of the given id.
func (d *DB) FindRoomByID(ctx context.Context, id types.ID) (*types.Room, error) {
	var room *types.Room
	if err := d.view(ctx, func(txn *memdb.Txn) error {
		raw, err := txn.First(tblRooms, "id", id.String())
		if err != nil {
			return fmt.Errorf("find room %s: %w", id, err)
		}
		if raw == nil {
			return fmt.Errorf("%s: %w", id, database.ErrRoomNotFound)
		}
		room = raw.(*types.Room).DeepCopy()
		return nil
	}); err != nil {
		return nil, err
	}
	return room, nil
}

// UpsertRoom writes the room.
func (d *DB) UpsertRoom(ctx context.Context, room *types.Room) error {
	return d.update(ctx, func(txn *memdb.Txn) error {
		if err := txn.Insert(tblRooms, room.DeepCopy()); err != nil {
			return fmt.Errorf("upsert room %s: %w", room.ID, err)
		}
		return nil
	})
}

// CreateEvent records an event.
func (d *DB) CreateEvent(ctx context.Context, event *types.Event) error {
	return d.update(ctx, func(txn *memdb.Txn) error {
		e := *event
		if err := txn.Insert(tblEvents, &e); err != nil {
			return fmt.Errorf("insert event %s: %w", event.ID, err)
		}
		return nil
	})
}

// FindEventsByDocumentID returns the events of a document.
func (d *DB) FindEventsByDocumentID(ctx context.Context, docID types.ID) ([]*types.Event, error) {
	var events []*types.Event
	if err := d.view(ctx, func(txn *memdb.Txn) error {
		iterator, err := txn.Get(tblEvents, "doc_id", docID.String())
		if err != nil {
			return fmt.Errorf("find events of %s: %w", docID, err)
		}
		for raw := iterator.Next(); raw != nil; raw = iterator.Next() {
			e := *raw.(*types.Event)
			events = append(events, &e)
		}
		return nil
	}); err != nil {
		return nil, err
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].CreatedOn.Before(events[j].CreatedOn)
	})
	return events, nil
}

// CreateComment stores a comment.
func (d *DB) CreateComment(ctx context.Context, comment *types.Comment) error {
	return d.update(ctx, func(txn *memdb.Txn) error {
		c := *comment
		if err := txn.Insert(tblComments, &c); err != nil {
			return fmt.Errorf("insert comment %s: %w", comment.ID, err)
		}
		return nil
	})
}

// FindCommentsByDocumentID returns the comments of a document.
func (d *DB) FindCommentsByDocumentID(ctx context.Context, docID types.ID) ([]*types.Comment, error) {
	var comments []*types.Comment
	if err := d.view(ctx, func(txn *memdb.Txn) error {
		iterator, err := txn.Get(tblComments, "doc_id", docID.String())
		if err != nil {
			return fmt.Errorf("find comments of %s: %w", docID, err)
		}
		for raw := iterator.Next(); raw != nil; raw = iterator.Next() {
			c := *raw.(*types.Comment)
			comments = append(comments, &c)
		}
		return nil
	}); err != nil {
		return nil, err
	}

	sort.SliceStable(comments, func(i, j int) bool {
		return comments[i].CreatedOn.Before(comments[j].CreatedOn)
	})
	return comments, nil
}

// DeleteCommentsByDocumentID deletes the comments of a document.
func (d *DB) DeleteCommentsByDocumentID(ctx context.Context, docID types.ID) (int, error) {
	var deleted int
	if err := d.update(ctx, func(txn *memdb.Txn) error {
		n, err := txn.DeleteAll(tblComments, "doc_id", docID.String())
		if err != nil {
			return fmt.Errorf("delete comments of %s: %w", docID, err)
		}
		deleted = n
		return nil
	}); err != nil {
		return 0, err
	}
	return deleted, nil
}

var _ database.Database = (*DB)(nil)
