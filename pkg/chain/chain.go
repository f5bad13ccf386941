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

// Package chain implements the pure operations on a revision chain: folding
// it into the current document, re-versioning sections, and redacting
// sections from history. Functions never modify their inputs.
package chain

import (
	"fmt"
	"slices"
	"time"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/docroom/revisor/api/types"
	"github.com/docroom/revisor/pkg/errors"
)

var (
	// ErrEmptyChain is returned when folding a chain without revisions.
	ErrEmptyChain = errors.Internal("revision chain is empty").WithCode("ErrEmptyChain")

	// ErrSectionNotFound is returned when a hard delete matches no section
	// in any revision of the chain.
	ErrSectionNotFound = errors.InvalidArgument("section not found in any revision").WithCode("ErrSectionNotFound")
)

// ResourceExtractor lists the CDN resources referenced by sections.
type ResourceExtractor func(sections []*types.Section) []string

// Fold builds the current document from the whole chain. Creation fields
// come from the first revision, contributors from every revision and
// everything else from the last one.
func Fold(revisions []*types.Revision) (*types.Document, error) {
	if len(revisions) == 0 {
		return nil, ErrEmptyChain
	}

	first := revisions[0]
	last := revisions[len(revisions)-1]

	contributors := make([]types.ID, 0, len(revisions))
	seen := mapset.NewThreadUnsafeSet[types.ID]()
	for _, rev := range revisions {
		if seen.Add(rev.CreatedBy) {
			contributors = append(contributors, rev.CreatedBy)
		}
	}

	var docCtx types.DocumentContext
	if last.Context != nil {
		docCtx = last.Context.DeepCopyContext()
	}

	return &types.Document{
		ID:           last.DocumentID,
		RoomID:       last.RoomID,
		Revision:     last.ID,
		Order:        last.Order,
		CreatedOn:    first.CreatedOn,
		CreatedBy:    first.CreatedBy,
		UpdatedOn:    last.CreatedOn,
		UpdatedBy:    last.CreatedBy,
		Title:        last.Title,
		Description:  last.Description,
		Slug:         last.Slug,
		Language:     last.Language,
		Tags:         append([]string{}, last.Tags...),
		Sections:     types.DeepCopySections(last.Sections),
		Context:      docCtx,
		CDNResources: append([]string{}, last.CDNResources...),
		Contributors: contributors,
	}, nil
}

// Last returns the last revision of the chain, or nil.
func Last(revisions []*types.Revision) *types.Revision {
	if len(revisions) == 0 {
		return nil
	}
	return revisions[len(revisions)-1]
}

// Find returns the revision with the given id, or nil.
func Find(revisions []*types.Revision, id types.ID) *types.Revision {
	for _, rev := range revisions {
		if rev.ID == id {
			return rev
		}
	}
	return nil
}

// NewSections converts caller-supplied sections into sections without
// content version. Missing keys are generated.
func NewSections(fields []*types.SectionFields) []*types.Section {
	sections := make([]*types.Section, 0, len(fields))
	for _, f := range fields {
		key := f.Key
		if key == "" {
			key = types.NewID().String()
		}
		sections = append(sections, &types.Section{
			Key:     key,
			Type:    f.Type,
			Content: f.Content.DeepCopy(),
		})
	}
	return sections
}

// Reversion assigns content versions to incoming sections by comparing them
// with the sections of prev. A section keeps the version of the previous
// section with the same key when type and content are unchanged and gets a
// new version otherwise. Deleted incoming sections are kept as they are.
// prev may be nil for the first revision.
func Reversion(prev *types.Revision, incoming []*types.Section) []*types.Section {
	sections := make([]*types.Section, 0, len(incoming))
	for _, s := range incoming {
		next := s.DeepCopy()
		if next.IsDeleted() {
			sections = append(sections, next)
			continue
		}

		next.Revision = types.NewID()
		if prev != nil {
			if p := prev.FindSection(s.Key); p != nil && !p.IsDeleted() &&
				p.Type == s.Type && p.Content.Equal(s.Content) {
				next.Revision = p.Revision
			}
		}
		sections = append(sections, next)
	}
	return sections
}

// KeepDeleted returns sections with the deleted sections of prev whose key
// is not in sections put back at their index in prev. Redaction records
// survive updates that leave the section out.
func KeepDeleted(prev *types.Revision, sections []*types.Section) []*types.Section {
	if prev == nil {
		return sections
	}

	keys := make(map[string]struct{}, len(sections))
	for _, s := range sections {
		keys[s.Key] = struct{}{}
	}

	result := append([]*types.Section{}, sections...)
	for i, p := range prev.Sections {
		if !p.IsDeleted() {
			continue
		}
		if _, ok := keys[p.Key]; ok {
			continue
		}

		pos := i
		if pos > len(result) {
			pos = len(result)
		}
		result = append(result, nil)
		copy(result[pos+1:], result[pos:])
		result[pos] = p.DeepCopy()
	}
	return result
}

// Redact removes the content of every section targeted by fields from the
// chain. It returns the new chain and the revisions that changed. Changed
// revisions keep their id, order and creation time; their CDN resources are
// recomputed with extract.
func Redact(
	revisions []*types.Revision,
	fields *types.HardDeleteSectionFields,
	by types.ID,
	now time.Time,
	extract ResourceExtractor,
) ([]*types.Revision, []*types.Revision, error) {
	next := make([]*types.Revision, 0, len(revisions))
	var dirty []*types.Revision

	for _, rev := range revisions {
		matched := false
		sections := make([]*types.Section, 0, len(rev.Sections))
		for _, s := range rev.Sections {
			if fields.Matches(s) {
				sections = append(sections, s.Redacted(by, fields.Reason, now))
				matched = true
				continue
			}
			sections = append(sections, s.DeepCopy())
		}

		if !matched {
			next = append(next, rev.DeepCopy())
			continue
		}

		redacted := rev.DeepCopy()
		redacted.Sections = sections
		redacted.CDNResources = extract(sections)
		next = append(next, redacted)
		dirty = append(dirty, redacted)
	}

	if len(dirty) == 0 {
		return nil, nil, fmt.Errorf(
			"section %q at %q: %w", fields.SectionKey, fields.SectionRevision, ErrSectionNotFound,
		)
	}
	return next, dirty, nil
}

// Consolidate recomputes the CDN resources of every revision and returns
// copies of the revisions whose stored value differs.
func Consolidate(revisions []*types.Revision, extract ResourceExtractor) []*types.Revision {
	var changed []*types.Revision
	for _, rev := range revisions {
		resources := extract(rev.Sections)
		if EqualResources(rev.CDNResources, resources) {
			continue
		}

		updated := rev.DeepCopy()
		updated.CDNResources = resources
		changed = append(changed, updated)
	}
	return changed
}

// EqualResources reports whether both lists hold the same references in the
// same order. nil and empty lists are equal.
func EqualResources(a, b []string) bool {
	return slices.Equal(a, b)
}

// ReplaceRevisions returns a copy of the chain in which revisions are
// replaced by the given ones with the same id.
func ReplaceRevisions(revisions []*types.Revision, replacements []*types.Revision) []*types.Revision {
	byID := make(map[types.ID]*types.Revision, len(replacements))
	for _, r := range replacements {
		byID[r.ID] = r
	}

	next := make([]*types.Revision, 0, len(revisions))
	for _, rev := range revisions {
		if r, ok := byID[rev.ID]; ok {
			next = append(next, r.DeepCopy())
			continue
		}
		next = append(next, rev.DeepCopy())
	}
	return next
}
