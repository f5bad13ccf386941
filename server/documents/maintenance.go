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
	"slices"
	"time"

	"github.com/docroom/revisor/api/types"
	"github.com/docroom/revisor/internal/validation"
	"github.com/docroom/revisor/pkg/chain"
	"github.com/docroom/revisor/pkg/errors"
	"github.com/docroom/revisor/server/backend"
	"github.com/docroom/revisor/server/backend/database"
	"github.com/docroom/revisor/server/backend/housekeeping"
	"github.com/docroom/revisor/server/backend/sync"
	"github.com/docroom/revisor/server/logging"
)

// ConsolidateCDNResources recomputes the CDN resources of every revision and
// of the current document, and writes only those that differ. It reports
// whether anything was written.
func ConsolidateCDNResources(ctx context.Context, be *backend.Backend, docID types.ID) (changed bool, err error) {
	start := time.Now()
	defer func() { observe(be, "consolidate", start, err) }()

	ctx = logging.WithOperation(ctx, "consolidate", docID.String())
	unlock, err := lock(ctx, be, sync.DocumentKey(docID))
	if err != nil {
		return false, err
	}
	defer unlock()

	var updated int
	if err := be.DB.WithTransaction(ctx, func(ctx context.Context) error {
		revisions, err := findChain(ctx, be, docID)
		if err != nil {
			return err
		}

		dirty := chain.Consolidate(revisions, be.Registry.ExtractResources)
		if len(dirty) > 0 {
			if err := be.DB.UpsertRevisions(ctx, dirty); err != nil {
				return err
			}
			updated = len(dirty)
		}

		doc, err := be.DB.FindDocumentByID(ctx, docID)
		if err != nil {
			return err
		}
		resources := be.Registry.ExtractResources(doc.Sections)
		if chain.EqualResources(doc.CDNResources, resources) {
			return nil
		}

		doc.CDNResources = resources
		if err := be.DB.UpsertDocument(ctx, doc); err != nil {
			return err
		}
		changed = true
		return nil
	}); err != nil {
		return false, err
	}

	if updated > 0 {
		changed = true
		if be.Metrics != nil {
			be.Metrics.AddConsolidatedRevisions(updated)
		}
		logging.From(ctx).Infof("consolidated CDN resources of %d revision(s)", updated)
	}
	return changed, nil
}

// ConsolidateCandidates returns the housekeeping task that consolidates the
// CDN resources of every document, one page of ids per run.
func ConsolidateCandidates(be *backend.Backend) housekeeping.Task {
	return func(ctx context.Context, after types.ID, limit int) (types.ID, int, error) {
		ids, err := be.DB.FindDocumentIDs(ctx, after, limit)
		if err != nil {
			return after, 0, err
		}

		changed := 0
		for _, id := range ids {
			ok, err := ConsolidateCDNResources(ctx, be, id)
			if err != nil {
				if errors.Is(err, database.ErrDocumentNotFound) {
					continue
				}
				return id, changed, err
			}
			if ok {
				changed++
			}
		}

		if len(ids) < limit {
			return "", changed, nil
		}
		return ids[len(ids)-1], changed, nil
	}
}

// Regenerate rebuilds the current document from the chain.
func Regenerate(ctx context.Context, be *backend.Backend, docID types.ID) (doc *types.Document, err error) {
	start := time.Now()
	defer func() { observe(be, "regenerate", start, err) }()

	ctx = logging.WithOperation(ctx, "regenerate", docID.String())
	unlock, err := lock(ctx, be, sync.DocumentKey(docID))
	if err != nil {
		return nil, err
	}
	defer unlock()

	if err := be.DB.WithTransaction(ctx, func(ctx context.Context) error {
		revisions, err := findChain(ctx, be, docID)
		if err != nil {
			return err
		}
		doc, err = saveDocument(ctx, be, revisions)
		return err
	}); err != nil {
		return nil, err
	}

	return doc, nil
}

// Validate checks the stored document and its chain and returns an
// *errors.AggregateError listing every violation, or nil.
func Validate(ctx context.Context, be *backend.Backend, docID types.ID) error {
	revisions, err := be.DB.FindRevisionsByDocumentID(ctx, docID)
	if err != nil {
		return err
	}
	doc, err := be.DB.FindDocumentByID(ctx, docID)
	if err != nil && !errors.Is(err, database.ErrDocumentNotFound) {
		return err
	}
	if doc == nil && len(revisions) == 0 {
		return fmt.Errorf("%s: %w", docID, database.ErrDocumentNotFound)
	}

	c := &errors.Collector{}
	if doc == nil {
		c.Add("document", "", "document is missing")
	} else {
		validateDocument(c, be, doc)
	}
	validateChain(c, be, docID, revisions)

	if doc != nil && len(revisions) > 0 {
		folded, err := chain.Fold(revisions)
		if err != nil {
			return err
		}
		compareFolded(c, doc, folded)
	}

	return c.Err()
}

func validateDocument(c *errors.Collector, be *backend.Backend, doc *types.Document) {
	addStructViolations(c, "document", validation.ValidateStruct(doc))
	if doc.Context != nil && doc.Context.IsPublic() != doc.IsPublic() {
		c.Add("document", "context", types.ErrContextMismatch.Error())
	}
	validateSections(c, be, "document", doc.Sections)
}

func validateChain(c *errors.Collector, be *backend.Backend, docID types.ID, revisions []*types.Revision) {
	if len(revisions) == 0 {
		c.Add("revisions", "", "chain is empty")
		return
	}

	first := revisions[0]
	for i, rev := range revisions {
		subject := fmt.Sprintf("revision %d", rev.Order)

		addStructViolations(c, subject, validation.ValidateStruct(rev))
		if err := rev.CheckContext(); err != nil {
			c.Add(subject, "context", err.Error())
		}
		if rev.DocumentID != docID {
			c.Addf(subject, "documentId", "belongs to %s", rev.DocumentID)
		}
		if rev.RoomID != first.RoomID {
			c.Addf(subject, "roomId", "room changed from %q to %q", first.RoomID, rev.RoomID)
		}
		if !rev.RestoredFrom.IsEmpty() && chain.Find(revisions[:i], rev.RestoredFrom) == nil {
			c.Addf(subject, "restoredFrom", "%s is not an earlier revision", rev.RestoredFrom)
		}

		validateSections(c, be, subject, rev.Sections)
		if !chain.EqualResources(rev.CDNResources, be.Registry.ExtractResources(rev.Sections)) {
			c.Add(subject, "cdnResources", "resources are stale")
		}

		if i > 0 {
			prev := revisions[i-1]
			if rev.Order <= prev.Order {
				c.Addf(subject, "order", "not after %d", prev.Order)
			}
			validateSectionRevisions(c, subject, prev, rev)
		}
	}
}

func validateSections(c *errors.Collector, be *backend.Backend, subject string, sections []*types.Section) {
	keys := make(map[string]struct{}, len(sections))
	for _, s := range sections {
		field := "sections." + s.Key
		if _, ok := keys[s.Key]; ok {
			c.Add(subject, field, types.ErrDuplicateSectionKey.Error())
		}
		keys[s.Key] = struct{}{}

		if s.IsDeleted() {
			if s.Content != nil {
				c.Add(subject, field, "deleted section has content")
			}
			continue
		}
		if err := be.Registry.Validate(s.Type, s.Content); err != nil {
			c.Add(subject, field, err.Error())
		}
	}
}

// validateSectionRevisions checks that a section keeps its content version
// only while its content is unchanged.
func validateSectionRevisions(c *errors.Collector, subject string, prev, rev *types.Revision) {
	for _, s := range rev.Sections {
		p := prev.FindSection(s.Key)
		if p == nil || s.IsDeleted() || p.IsDeleted() || p.Revision != s.Revision {
			continue
		}
		if p.Type != s.Type || !p.Content.Equal(s.Content) {
			c.Addf(subject, "sections."+s.Key, "content changed but revision %s was kept", s.Revision)
		}
	}
}

// compareFolded reports every field of the stored document that differs
// from the folded chain.
func compareFolded(c *errors.Collector, doc, folded *types.Document) {
	mismatch := func(field string, equal bool) {
		if !equal {
			c.Add("document", field, "does not match revision chain")
		}
	}

	mismatch("revision", doc.Revision == folded.Revision)
	mismatch("order", doc.Order == folded.Order)
	mismatch("roomId", doc.RoomID == folded.RoomID)
	mismatch("createdOn", doc.CreatedOn.Equal(folded.CreatedOn))
	mismatch("createdBy", doc.CreatedBy == folded.CreatedBy)
	mismatch("updatedOn", doc.UpdatedOn.Equal(folded.UpdatedOn))
	mismatch("updatedBy", doc.UpdatedBy == folded.UpdatedBy)
	mismatch("title", doc.Title == folded.Title)
	mismatch("description", doc.Description == folded.Description)
	mismatch("slug", doc.Slug == folded.Slug)
	mismatch("language", doc.Language == folded.Language)
	mismatch("tags", slices.Equal(doc.Tags, folded.Tags))
	mismatch("contributors", slices.Equal(doc.Contributors, folded.Contributors))
	mismatch("cdnResources", chain.EqualResources(doc.CDNResources, folded.CDNResources))
	mismatch("sections", slices.EqualFunc(doc.Sections, folded.Sections, func(a, b *types.Section) bool {
		return a.Key == b.Key && a.Revision == b.Revision && a.IsDeleted() == b.IsDeleted()
	}))
}

func addStructViolations(c *errors.Collector, subject string, err error) {
	if err == nil {
		return
	}

	var structErr *validation.StructError
	if errors.As(err, &structErr) {
		for _, v := range structErr.Violations {
			c.Add(subject, v.Field, v.Error())
		}
		return
	}
	c.Add(subject, "", err.Error())
}
