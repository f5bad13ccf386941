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

package documents

import (
	"context"
	"fmt"
	"time"

	"github.com/docroom/revisor/api/types"
	"github.com/docroom/revisor/pkg/chain"
	"github.com/docroom/revisor/server/backend"
	"github.com/docroom/revisor/server/backend/database"
	"github.com/docroom/revisor/server/backend/sync"
	"github.com/docroom/revisor/server/logging"
)

// HardDeleteSection removes the content of the targeted section from one or
// every revision of the chain. Redacted revisions keep their id and order.
func HardDeleteSection(
	ctx context.Context,
	be *backend.Backend,
	user *types.User,
	fields *types.HardDeleteSectionFields,
) (doc *types.Document, err error) {
	start := time.Now()
	defer func() { observe(be, "hard-delete-section", start, err) }()

	if err := fields.Validate(); err != nil {
		return nil, err
	}
	if err := be.Authorizer.CheckHardDeleteSection(user); err != nil {
		return nil, err
	}

	ctx = logging.WithOperation(ctx, "hard-delete-section", fields.DocumentID.String())
	unlock, err := lock(ctx, be, sync.DocumentKey(fields.DocumentID))
	if err != nil {
		return nil, err
	}
	defer unlock()

	var redacted int
	if err := be.DB.WithTransaction(ctx, func(ctx context.Context) error {
		revisions, err := findChain(ctx, be, fields.DocumentID)
		if err != nil {
			return err
		}

		next, dirty, err := chain.Redact(revisions, fields, user.ID, be.Now(), be.Registry.ExtractResources)
		if err != nil {
			return err
		}
		if err := be.DB.UpsertRevisions(ctx, dirty); err != nil {
			return err
		}
		redacted = len(dirty)

		doc, err = saveDocument(ctx, be, next)
		return err
	}); err != nil {
		return nil, err
	}

	logging.From(ctx).Infof(
		"section %q redacted from %d revision(s) by %s: %s",
		fields.SectionKey,
		redacted,
		user.ID,
		fields.Reason,
	)
	return doc, nil
}

// RestoreRevision appends a copy of an older revision to the chain and
// returns the updated chain.
func RestoreRevision(
	ctx context.Context,
	be *backend.Backend,
	user *types.User,
	docID types.ID,
	revisionID types.ID,
) (revisions []*types.Revision, err error) {
	start := time.Now()
	defer func() { observe(be, "restore-revision", start, err) }()

	if err := be.Authorizer.CheckRestoreRevision(user); err != nil {
		return nil, err
	}

	ctx = logging.WithOperation(ctx, "restore-revision", docID.String())
	unlock, err := lock(ctx, be, sync.DocumentKey(docID))
	if err != nil {
		return nil, err
	}
	defer unlock()

	var rev *types.Revision
	if err := be.DB.WithTransaction(ctx, func(ctx context.Context) error {
		current, err := findChain(ctx, be, docID)
		if err != nil {
			return err
		}

		target := chain.Find(current, revisionID)
		if target == nil {
			return fmt.Errorf("%s of %s: %w", revisionID, docID, database.ErrRevisionNotFound)
		}
		last := chain.Last(current)
		if target.ID == last.ID {
			return fmt.Errorf("%s: %w", revisionID, ErrRevisionAlreadyLatest)
		}

		rev = restoredRevision(be, user, target, last)
		if err := checkUpdate(ctx, be, user, last, rev); err != nil {
			return err
		}

		if _, err := appendRevision(ctx, be, current, rev); err != nil {
			return err
		}
		revisions = append(current, rev)
		return nil
	}); err != nil {
		return nil, err
	}

	publish(be, rev)
	logging.From(ctx).Debugf("revision %s restored as %s", revisionID, rev.ID)
	return types.DeepCopyRevisions(revisions), nil
}

// restoredRevision copies the content of target into a new revision whose
// sections are versioned against the current last revision.
func restoredRevision(be *backend.Backend, user *types.User, target, last *types.Revision) *types.Revision {
	rev := target.DeepCopy()
	rev.ID = types.NewID()
	rev.Order = 0
	rev.CreatedOn = be.Now()
	rev.CreatedBy = user.ID
	rev.RestoredFrom = target.ID
	rev.Sections = chain.Reversion(last, target.Sections)
	rev.CDNResources = be.Registry.ExtractResources(rev.Sections)
	return rev
}

// HardDeletePrivateDocument deletes a room document together with its chain
// and comments, and removes it from the room.
func HardDeletePrivateDocument(
	ctx context.Context,
	be *backend.Backend,
	user *types.User,
	docID types.ID,
) (err error) {
	start := time.Now()
	defer func() { observe(be, "hard-delete-private-document", start, err) }()

	ctx = logging.WithOperation(ctx, "hard-delete-private-document", docID.String())

	// NOTE: the room of a document never changes, so it can be read before
	// the locks are held.
	doc, err := be.DB.FindDocumentByID(ctx, docID)
	if err != nil {
		return err
	}
	if doc.IsPublic() {
		return fmt.Errorf("%s: %w", docID, ErrPublicDocumentNotDeletable)
	}

	unlock, err := lock(ctx, be, sync.DocumentKey(docID), sync.RoomKey(doc.RoomID))
	if err != nil {
		return err
	}
	defer unlock()

	var revisions, comments int
	if err := be.DB.WithTransaction(ctx, func(ctx context.Context) error {
		room, err := be.DB.FindRoomByID(ctx, doc.RoomID)
		if err != nil {
			return err
		}
		if err := be.Authorizer.CheckDeletePrivateDocument(user, room); err != nil {
			return err
		}

		if comments, err = be.DB.DeleteCommentsByDocumentID(ctx, docID); err != nil {
			return err
		}
		if revisions, err = be.DB.DeleteRevisionsByDocumentID(ctx, docID); err != nil {
			return err
		}
		if err := be.DB.DeleteDocumentByID(ctx, docID); err != nil {
			return err
		}

		room.RemoveDocument(docID)
		return be.DB.UpsertRoom(ctx, room)
	}); err != nil {
		return err
	}

	logging.From(ctx).Infof(
		"private document deleted by %s: %d revision(s), %d comment(s)",
		user.ID,
		revisions,
		comments,
	)
	return nil
}
