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

// Package documents provides the operations on document revision chains.
// Every mutating operation holds the document lock, and the room lock when
// the room membership changes, and runs its reads and writes in a single
// transaction.
package documents

import (
	"context"
	"fmt"
	"time"

	"github.com/docroom/revisor/api/types"
	"github.com/docroom/revisor/pkg/chain"
	"github.com/docroom/revisor/pkg/errors"
	"github.com/docroom/revisor/server/backend"
	"github.com/docroom/revisor/server/backend/database"
	"github.com/docroom/revisor/server/backend/messagebroker"
	"github.com/docroom/revisor/server/backend/sync"
	"github.com/docroom/revisor/server/logging"
)

// DefaultLanguage is the language of documents created without one.
const DefaultLanguage = "en"

var (
	// ErrRevisionsAlreadyExist is returned when a new document id already
	// has revisions.
	ErrRevisionsAlreadyExist = errors.Internal("revisions already exist for new document").
					WithCode("ErrRevisionsAlreadyExist")

	// ErrRevisionAlreadyLatest is returned when restoring the last revision.
	ErrRevisionAlreadyLatest = errors.FailedPrecond("revision is already the latest").
					WithCode("ErrRevisionAlreadyLatest")

	// ErrPublicDocumentNotDeletable is returned when deleting a public
	// document.
	ErrPublicDocumentNotDeletable = errors.FailedPrecond("public documents cannot be deleted").
					WithCode("ErrPublicDocumentNotDeletable")
)

// Create creates a new document with its first revision and returns the
// current document.
func Create(
	ctx context.Context,
	be *backend.Backend,
	user *types.User,
	fields *types.CreateDocumentFields,
) (doc *types.Document, err error) {
	start := time.Now()
	defer func() { observe(be, "create", start, err) }()

	if err := fields.Validate(); err != nil {
		return nil, err
	}

	docID := types.NewID()
	ctx = logging.WithOperation(ctx, "create", docID.String())

	keys := []sync.Key{sync.DocumentKey(docID)}
	if !fields.RoomID.IsEmpty() {
		keys = append(keys, sync.RoomKey(fields.RoomID))
	}
	unlock, err := lock(ctx, be, keys...)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var rev *types.Revision
	if err := be.DB.WithTransaction(ctx, func(ctx context.Context) error {
		revisions, err := be.DB.FindRevisionsByDocumentID(ctx, docID)
		if err != nil {
			return err
		}
		if len(revisions) > 0 {
			return fmt.Errorf("document %s: %w", docID, ErrRevisionsAlreadyExist)
		}

		rev, err = newFirstRevision(be, user, docID, fields)
		if err != nil {
			return err
		}

		var room *types.Room
		if !rev.IsPublic() {
			if room, err = be.DB.FindRoomByID(ctx, rev.RoomID); err != nil {
				return err
			}
		}
		if err := be.Authorizer.CheckCreate(user, rev, room); err != nil {
			return err
		}

		if doc, err = appendRevision(ctx, be, nil, rev); err != nil {
			return err
		}

		if room != nil {
			room.AddDocument(docID)
			if err := be.DB.UpsertRoom(ctx, room); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return nil, err
	}

	publish(be, rev)
	logging.From(ctx).Debugf("document created: revision %s, order %d", rev.ID, rev.Order)
	return doc, nil
}

// Update appends a revision built from the last one and the given fields,
// and returns the current document.
func Update(
	ctx context.Context,
	be *backend.Backend,
	user *types.User,
	docID types.ID,
	fields *types.UpdatableDocumentFields,
) (doc *types.Document, err error) {
	start := time.Now()
	defer func() { observe(be, "update", start, err) }()

	if err := fields.Validate(); err != nil {
		return nil, err
	}

	ctx = logging.WithOperation(ctx, "update", docID.String())
	unlock, err := lock(ctx, be, sync.DocumentKey(docID))
	if err != nil {
		return nil, err
	}
	defer unlock()

	var rev *types.Revision
	if err := be.DB.WithTransaction(ctx, func(ctx context.Context) error {
		revisions, err := findChain(ctx, be, docID)
		if err != nil {
			return err
		}
		prev := chain.Last(revisions)

		if rev, err = nextRevision(be, user, prev, fields); err != nil {
			return err
		}
		if err := checkUpdate(ctx, be, user, prev, rev); err != nil {
			return err
		}

		doc, err = appendRevision(ctx, be, revisions, rev)
		return err
	}); err != nil {
		return nil, err
	}

	publish(be, rev)
	logging.From(ctx).Debugf("document updated: revision %s, order %d", rev.ID, rev.Order)
	return doc, nil
}

// Get returns the current document.
func Get(ctx context.Context, be *backend.Backend, docID types.ID) (*types.Document, error) {
	return be.DB.FindDocumentByID(ctx, docID)
}

// ListRevisions returns the revision chain of the document in order.
func ListRevisions(ctx context.Context, be *backend.Backend, docID types.ID) ([]*types.Revision, error) {
	return findChain(ctx, be, docID)
}

func findChain(ctx context.Context, be *backend.Backend, docID types.ID) ([]*types.Revision, error) {
	revisions, err := be.DB.FindRevisionsByDocumentID(ctx, docID)
	if err != nil {
		return nil, err
	}
	if len(revisions) == 0 {
		return nil, fmt.Errorf("%s: %w", docID, database.ErrDocumentNotFound)
	}
	return revisions, nil
}

func newFirstRevision(
	be *backend.Backend,
	user *types.User,
	docID types.ID,
	fields *types.CreateDocumentFields,
) (*types.Revision, error) {
	sections := chain.Reversion(nil, chain.NewSections(fields.Sections))
	if err := be.Registry.ValidateSections(sections); err != nil {
		return nil, err
	}

	slug := fields.Slug
	if slug == "" {
		slug = Slugify(fields.Title, docID.String())
	}
	language := fields.Language
	if language == "" {
		language = DefaultLanguage
	}

	return &types.Revision{
		ID:           types.NewID(),
		DocumentID:   docID,
		RoomID:       fields.RoomID,
		CreatedOn:    be.Now(),
		CreatedBy:    user.ID,
		Title:        fields.Title,
		Description:  fields.Description,
		Slug:         slug,
		Language:     language,
		Tags:         append([]string{}, fields.Tags...),
		Sections:     sections,
		Context:      fields.Context(),
		CDNResources: be.Registry.ExtractResources(sections),
	}, nil
}

// nextRevision overlays the given fields on a copy of prev.
func nextRevision(
	be *backend.Backend,
	user *types.User,
	prev *types.Revision,
	fields *types.UpdatableDocumentFields,
) (*types.Revision, error) {
	rev := prev.DeepCopy()
	rev.ID = types.NewID()
	rev.Order = 0
	rev.CreatedOn = be.Now()
	rev.CreatedBy = user.ID
	rev.RestoredFrom = ""

	if fields.Title != nil {
		rev.Title = *fields.Title
	}
	if fields.Description != nil {
		rev.Description = *fields.Description
	}
	if fields.Slug != nil {
		rev.Slug = *fields.Slug
	}
	if fields.Language != nil {
		rev.Language = *fields.Language
	}
	if fields.Tags != nil {
		rev.Tags = append([]string{}, (*fields.Tags)...)
	}
	if fields.Sections != nil {
		rev.Sections = chain.KeepDeleted(prev, chain.Reversion(prev, chain.NewSections(*fields.Sections)))
		if err := be.Registry.ValidateSections(rev.Sections); err != nil {
			return nil, err
		}
	}

	if fields.PublicContext != nil {
		if !rev.IsPublic() {
			return nil, fmt.Errorf("public context on room document: %w", types.ErrContextNotApplicable)
		}
		rev.Context = fields.PublicContext.DeepCopy()
	}
	if fields.RoomContext != nil {
		if rev.IsPublic() {
			return nil, fmt.Errorf("room context on public document: %w", types.ErrContextNotApplicable)
		}
		rev.Context = fields.RoomContext.DeepCopy()
	}

	rev.CDNResources = be.Registry.ExtractResources(rev.Sections)
	return rev, nil
}

// checkUpdate authorizes the change from prev to next against the current
// state of the room.
func checkUpdate(
	ctx context.Context,
	be *backend.Backend,
	user *types.User,
	prev, next *types.Revision,
) error {
	var room *types.Room
	if !prev.IsPublic() {
		var err error
		if room, err = be.DB.FindRoomByID(ctx, prev.RoomID); err != nil {
			return err
		}
	}
	return be.Authorizer.CheckUpdate(user, prev, next, room)
}

// appendRevision assigns the next order to rev, persists it with its event
// and writes the folded document. It must run inside a transaction.
func appendRevision(
	ctx context.Context,
	be *backend.Backend,
	revisions []*types.Revision,
	rev *types.Revision,
) (*types.Document, error) {
	if err := rev.CheckContext(); err != nil {
		return nil, err
	}

	order, err := be.DB.NextOrder(ctx)
	if err != nil {
		return nil, err
	}
	rev.Order = order

	if err := be.DB.CreateRevision(ctx, rev); err != nil {
		return nil, err
	}
	if be.Config.RecordRevisionEvents {
		if err := be.DB.CreateEvent(ctx, types.NewRevisionEvent(rev)); err != nil {
			return nil, err
		}
	}

	return saveDocument(ctx, be, append(revisions, rev))
}

// saveDocument folds the chain and writes the current document.
func saveDocument(ctx context.Context, be *backend.Backend, revisions []*types.Revision) (*types.Document, error) {
	doc, err := chain.Fold(revisions)
	if err != nil {
		return nil, err
	}
	if err := be.DB.UpsertDocument(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// publish sends the event of a committed revision to the message broker.
func publish(be *backend.Backend, rev *types.Revision) {
	if !be.Config.RecordRevisionEvents {
		return
	}

	msg := messagebroker.NewRevisionEventMessage(rev)
	be.Background.AttachGoroutine(func(ctx context.Context) {
		if err := be.MsgBroker.Produce(ctx, msg); err != nil {
			logging.From(ctx).Errorf("publish revision %s: %v", rev.ID, err)
			return
		}
		if be.Metrics != nil {
			be.Metrics.AddRevisionEvent(string(msg.EventType))
		}
	}, "publish-revision-event")
}
