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

// Package testcases contains testcases shared by the database
// implementations.
package testcases

import (
	"context"
	"errors"
	gosync "sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docroom/revisor/api/types"
	"github.com/docroom/revisor/server/backend/database"
)

var errRollback = errors.New("rollback")

// NewRevision returns a revision of the given document for tests.
func NewRevision(docID types.ID, order int64, roomID types.ID) *types.Revision {
	return &types.Revision{
		ID:         types.NewID(),
		DocumentID: docID,
		RoomID:     roomID,
		Order:      order,
		CreatedOn:  time.Now().UTC().Truncate(time.Millisecond),
		CreatedBy:  types.NewID(),
		Title:      "title",
		Slug:       "title",
		Language:   "en",
		Tags:       []string{"tag"},
		Sections: []*types.Section{{
			Key:      "s1",
			Revision: types.NewID(),
			Type:     "markdown",
			Content:  types.Content{"text": "hello"},
		}},
		Context:      types.ContextFor(roomID),
		CDNResources: []string{},
	}
}

// RunNextOrderTest runs the NextOrder test for the given db.
func RunNextOrderTest(t *testing.T, db database.Database) {
	ctx := context.Background()

	t.Run("strictly increasing test", func(t *testing.T) {
		prev, err := db.NextOrder(ctx)
		require.NoError(t, err)
		for i := 0; i < 10; i++ {
			next, err := db.NextOrder(ctx)
			require.NoError(t, err)
			assert.Greater(t, next, prev)
			prev = next
		}
	})

	t.Run("concurrent callers get distinct orders test", func(t *testing.T) {
		var wg gosync.WaitGroup
		var mu gosync.Mutex
		seen := make(map[int64]bool)

		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				order, err := db.NextOrder(ctx)
				assert.NoError(t, err)

				mu.Lock()
				defer mu.Unlock()
				assert.False(t, seen[order])
				seen[order] = true
			}()
		}
		wg.Wait()
		assert.Len(t, seen, 20)
	})
}

// RunRevisionsTest runs the revision store tests for the given db.
func RunRevisionsTest(t *testing.T, db database.Database) {
	ctx := context.Background()

	t.Run("chain is ordered test", func(t *testing.T) {
		docID := types.NewID()
		second := NewRevision(docID, 20, "")
		first := NewRevision(docID, 10, "")
		require.NoError(t, db.CreateRevision(ctx, second))
		require.NoError(t, db.CreateRevision(ctx, first))
		require.NoError(t, db.CreateRevision(ctx, NewRevision(types.NewID(), 15, "")))

		revs, err := db.FindRevisionsByDocumentID(ctx, docID)
		require.NoError(t, err)
		require.Len(t, revs, 2)
		assert.Equal(t, first.ID, revs[0].ID)
		assert.Equal(t, second.ID, revs[1].ID)
		assert.Equal(t, first.Sections, revs[0].Sections)
		assert.Equal(t, first.Context, revs[0].Context)

		empty, err := db.FindRevisionsByDocumentID(ctx, types.NewID())
		require.NoError(t, err)
		assert.Empty(t, empty)
	})

	t.Run("append only test", func(t *testing.T) {
		rev := NewRevision(types.NewID(), 1, "")
		require.NoError(t, db.CreateRevision(ctx, rev))
		assert.ErrorIs(t, db.CreateRevision(ctx, rev), database.ErrRevisionAlreadyExists)
	})

	t.Run("stored revision is not aliased test", func(t *testing.T) {
		rev := NewRevision(types.NewID(), 1, "")
		require.NoError(t, db.CreateRevision(ctx, rev))
		rev.Sections[0].Content["text"] = "changed"

		found, err := db.FindRevisionByID(ctx, rev.ID)
		require.NoError(t, err)
		assert.Equal(t, "hello", found.Sections[0].Content["text"])

		found.Title = "changed"
		again, err := db.FindRevisionByID(ctx, rev.ID)
		require.NoError(t, err)
		assert.Equal(t, "title", again.Title)
	})

	t.Run("upsert keeps identity test", func(t *testing.T) {
		docID := types.NewID()
		rev := NewRevision(docID, 5, "")
		require.NoError(t, db.CreateRevision(ctx, rev))

		deletedOn := time.Now().UTC().Truncate(time.Millisecond)
		redacted := rev.DeepCopy()
		redacted.Sections[0] = redacted.Sections[0].Redacted("admin", "copyright", deletedOn)
		require.NoError(t, db.UpsertRevisions(ctx, []*types.Revision{redacted}))

		revs, err := db.FindRevisionsByDocumentID(ctx, docID)
		require.NoError(t, err)
		require.Len(t, revs, 1)
		assert.Equal(t, rev.Order, revs[0].Order)
		assert.Nil(t, revs[0].Sections[0].Content)
		assert.Equal(t, "copyright", revs[0].Sections[0].DeletedBecause)
	})

	t.Run("delete chain test", func(t *testing.T) {
		docID := types.NewID()
		require.NoError(t, db.CreateRevision(ctx, NewRevision(docID, 1, "")))
		require.NoError(t, db.CreateRevision(ctx, NewRevision(docID, 2, "")))

		n, err := db.DeleteRevisionsByDocumentID(ctx, docID)
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		_, err = db.FindRevisionByID(ctx, types.NewID())
		assert.ErrorIs(t, err, database.ErrRevisionNotFound)
	})
}

// RunDocumentsTest runs the current-document store tests for the given db.
func RunDocumentsTest(t *testing.T, db database.Database) {
	ctx := context.Background()

	t.Run("upsert and find test", func(t *testing.T) {
		roomID := types.NewID()
		rev := NewRevision(types.NewID(), 1, roomID)
		doc := &types.Document{
			ID:           rev.DocumentID,
			RoomID:       roomID,
			Revision:     rev.ID,
			Order:        1,
			CreatedOn:    rev.CreatedOn,
			CreatedBy:    rev.CreatedBy,
			UpdatedOn:    rev.CreatedOn,
			UpdatedBy:    rev.CreatedBy,
			Title:        rev.Title,
			Slug:         rev.Slug,
			Language:     rev.Language,
			Tags:         rev.Tags,
			Sections:     rev.Sections,
			Context:      &types.RoomContext{Draft: true},
			CDNResources: []string{"cdn://a"},
			Contributors: []types.ID{rev.CreatedBy},
		}
		require.NoError(t, db.UpsertDocument(ctx, doc))

		found, err := db.FindDocumentByID(ctx, doc.ID)
		require.NoError(t, err)
		assert.Equal(t, doc.Title, found.Title)
		assert.Equal(t, &types.RoomContext{Draft: true}, found.Context)
		assert.Equal(t, doc.Contributors, found.Contributors)

		doc.Title = "updated"
		require.NoError(t, db.UpsertDocument(ctx, doc))
		found, err = db.FindDocumentByID(ctx, doc.ID)
		require.NoError(t, err)
		assert.Equal(t, "updated", found.Title)

		require.NoError(t, db.DeleteDocumentByID(ctx, doc.ID))
		_, err = db.FindDocumentByID(ctx, doc.ID)
		assert.ErrorIs(t, err, database.ErrDocumentNotFound)
		assert.ErrorIs(t, db.DeleteDocumentByID(ctx, doc.ID), database.ErrDocumentNotFound)
	})

	t.Run("paging test", func(t *testing.T) {
		var created []types.ID
		for i := 0; i < 5; i++ {
			rev := NewRevision(types.NewID(), int64(i+1), "")
			doc := &types.Document{ID: rev.DocumentID, Revision: rev.ID, Context: rev.Context}
			require.NoError(t, db.UpsertDocument(ctx, doc))
			created = append(created, doc.ID)
		}

		var all []types.ID
		after := types.ID("")
		for {
			page, err := db.FindDocumentIDs(ctx, after, 2)
			require.NoError(t, err)
			if len(page) == 0 {
				break
			}
			assert.LessOrEqual(t, len(page), 2)
			all = append(all, page...)
			after = page[len(page)-1]
		}

		for i := 1; i < len(all); i++ {
			assert.Less(t, all[i-1].String(), all[i].String())
		}
		for _, id := range created {
			assert.Contains(t, all, id)
		}
	})
}

// RunRoomsTest runs the room store tests for the given db.
func RunRoomsTest(t *testing.T, db database.Database) {
	ctx := context.Background()

	room := &types.Room{
		ID:              types.NewID(),
		Name:            "room",
		Owner:           types.NewID(),
		Members:         []*types.RoomMember{{UserID: types.NewID(), JoinedOn: time.Now().UTC().Truncate(time.Millisecond)}},
		IsCollaborative: true,
		Documents:       []types.ID{},
	}
	_, err := db.FindRoomByID(ctx, room.ID)
	assert.ErrorIs(t, err, database.ErrRoomNotFound)

	require.NoError(t, db.UpsertRoom(ctx, room))
	room.AddDocument(types.NewID())
	require.NoError(t, db.UpsertRoom(ctx, room))

	found, err := db.FindRoomByID(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, room, found)
}

// RunEventsAndCommentsTest runs the event and comment store tests.
func RunEventsAndCommentsTest(t *testing.T, db database.Database) {
	ctx := context.Background()
	docID := types.NewID()

	rev := NewRevision(docID, 1, "")
	require.NoError(t, db.CreateEvent(ctx, types.NewRevisionEvent(rev)))
	events, err := db.FindEventsByDocumentID(ctx, docID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, types.EventRevisionCreated, events[0].Type)
	assert.Equal(t, rev.ID, events[0].RevisionID)

	for i := 0; i < 3; i++ {
		require.NoError(t, db.CreateComment(ctx, &types.Comment{
			ID:         types.NewID(),
			DocumentID: docID,
			CreatedBy:  types.NewID(),
			CreatedOn:  time.Now().UTC(),
			Text:       "comment",
		}))
	}
	comments, err := db.FindCommentsByDocumentID(ctx, docID)
	require.NoError(t, err)
	assert.Len(t, comments, 3)

	n, err := db.DeleteCommentsByDocumentID(ctx, docID)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

// RunTransactionTest runs the transaction tests for the given db.
func RunTransactionTest(t *testing.T, db database.Database) {
	ctx := context.Background()

	t.Run("commit test", func(t *testing.T) {
		rev := NewRevision(types.NewID(), 1, "")
		err := db.WithTransaction(ctx, func(ctx context.Context) error {
			if err := db.CreateRevision(ctx, rev); err != nil {
				return err
			}
			// reads inside the transaction observe its writes
			revs, err := db.FindRevisionsByDocumentID(ctx, rev.DocumentID)
			if err != nil {
				return err
			}
			assert.Len(t, revs, 1)
			return nil
		})
		require.NoError(t, err)

		found, err := db.FindRevisionByID(ctx, rev.ID)
		require.NoError(t, err)
		assert.Equal(t, rev.ID, found.ID)
	})

	t.Run("rollback test", func(t *testing.T) {
		rev := NewRevision(types.NewID(), 1, "")
		room := &types.Room{ID: types.NewID(), Owner: types.NewID()}

		err := db.WithTransaction(ctx, func(ctx context.Context) error {
			if err := db.CreateRevision(ctx, rev); err != nil {
				return err
			}
			if err := db.UpsertRoom(ctx, room); err != nil {
				return err
			}
			return errRollback
		})
		assert.ErrorIs(t, err, errRollback)

		_, err = db.FindRevisionByID(ctx, rev.ID)
		assert.ErrorIs(t, err, database.ErrRevisionNotFound)
		_, err = db.FindRoomByID(ctx, room.ID)
		assert.ErrorIs(t, err, database.ErrRoomNotFound)
	})

	t.Run("nested transaction joins outer test", func(t *testing.T) {
		rev := NewRevision(types.NewID(), 1, "")
		err := db.WithTransaction(ctx, func(ctx context.Context) error {
			if err := db.WithTransaction(ctx, func(ctx context.Context) error {
				return db.CreateRevision(ctx, rev)
			}); err != nil {
				return err
			}
			return errRollback
		})
		assert.ErrorIs(t, err, errRollback)

		_, err = db.FindRevisionByID(ctx, rev.ID)
		assert.ErrorIs(t, err, database.ErrRevisionNotFound)
	})

	t.Run("order inside transaction test", func(t *testing.T) {
		var inside int64
		require.NoError(t, db.WithTransaction(ctx, func(ctx context.Context) error {
			var err error
			inside, err = db.NextOrder(ctx)
			return err
		}))

		after, err := db.NextOrder(ctx)
		require.NoError(t, err)
		assert.Greater(t, after, inside)
	})
}
