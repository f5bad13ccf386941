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

package chain_test

import (
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docroom/revisor/api/types"
	"github.com/docroom/revisor/pkg/chain"
)

// extractText treats every word of a "text" content starting with cdn://
// as a resource.
func extractText(sections []*types.Section) []string {
	resources := []string{}
	for _, s := range sections {
		if s.IsDeleted() {
			continue
		}
		for _, word := range strings.Fields(s.Content.String("text")) {
			if strings.HasPrefix(word, "cdn://") {
				resources = append(resources, word)
			}
		}
	}
	sort.Strings(resources)
	return resources
}

func newRevision(docID types.ID, order int64, by types.ID, title string, sections ...*types.Section) *types.Revision {
	return &types.Revision{
		ID:           types.NewID(),
		DocumentID:   docID,
		Order:        order,
		CreatedOn:    time.Unix(order, 0),
		CreatedBy:    by,
		Title:        title,
		Slug:         "slug",
		Language:     "en",
		Tags:         []string{},
		Sections:     sections,
		Context:      types.ContextFor(""),
		CDNResources: extractText(sections),
	}
}

func section(key string, rev types.ID, text string) *types.Section {
	return &types.Section{Key: key, Revision: rev, Type: "markdown", Content: types.Content{"text": text}}
}

func TestFold(t *testing.T) {
	t.Run("empty chain test", func(t *testing.T) {
		_, err := chain.Fold(nil)
		assert.ErrorIs(t, err, chain.ErrEmptyChain)
	})

	t.Run("fold correctness test", func(t *testing.T) {
		docID := types.NewID()
		revs := []*types.Revision{
			newRevision(docID, 3, "alice", "A", section("s1", "v1", "a")),
			newRevision(docID, 7, "bob", "B", section("s1", "v2", "b cdn://x")),
			newRevision(docID, 9, "alice", "C", section("s1", "v2", "b cdn://x")),
			newRevision(docID, 12, "carol", "D", section("s1", "v3", "c")),
		}

		doc, err := chain.Fold(revs)
		require.NoError(t, err)

		assert.Equal(t, docID, doc.ID)
		assert.Equal(t, revs[0].CreatedOn, doc.CreatedOn)
		assert.Equal(t, types.ID("alice"), doc.CreatedBy)
		assert.Equal(t, revs[3].CreatedOn, doc.UpdatedOn)
		assert.Equal(t, types.ID("carol"), doc.UpdatedBy)
		assert.Equal(t, revs[3].ID, doc.Revision)
		assert.Equal(t, int64(12), doc.Order)
		assert.Equal(t, "D", doc.Title)
		assert.Equal(t, []types.ID{"alice", "bob", "carol"}, doc.Contributors)
		assert.Equal(t, revs[3].Sections, doc.Sections)

		// the projection shares no memory with the chain
		doc.Sections[0].Content["text"] = "changed"
		assert.Equal(t, "c", revs[3].Sections[0].Content["text"])
	})
}

func TestReversion(t *testing.T) {
	prev := newRevision(types.NewID(), 1, "alice", "A",
		section("s1", "v1", "same"),
		section("s2", "v2", "old"),
	)

	incoming := chain.NewSections([]*types.SectionFields{
		{Key: "s1", Type: "markdown", Content: types.Content{"text": "same"}},
		{Key: "s2", Type: "markdown", Content: types.Content{"text": "new"}},
		{Key: "s3", Type: "markdown", Content: types.Content{"text": "added"}},
		{Type: "separator", Content: types.Content{}},
	})
	sections := chain.Reversion(prev, incoming)
	require.Len(t, sections, 4)

	assert.Equal(t, types.ID("v1"), sections[0].Revision)
	assert.NotEqual(t, types.ID("v2"), sections[1].Revision)
	assert.NoError(t, sections[1].Revision.Validate())
	assert.NoError(t, sections[2].Revision.Validate())
	assert.NotEmpty(t, sections[3].Key)

	t.Run("type change mints new version test", func(t *testing.T) {
		changed := []*types.Section{{Key: "s1", Type: "image", Content: types.Content{"text": "same"}}}
		assert.NotEqual(t, types.ID("v1"), chain.Reversion(prev, changed)[0].Revision)
	})

	t.Run("deleted previous section test", func(t *testing.T) {
		deleted := prev.DeepCopy()
		deleted.Sections[0] = deleted.Sections[0].Redacted("admin", "gone", time.Now())

		again := []*types.Section{{Key: "s1", Type: "markdown", Content: types.Content{"text": "same"}}}
		assert.NotEqual(t, types.ID("v1"), chain.Reversion(deleted, again)[0].Revision)
	})

	t.Run("first revision test", func(t *testing.T) {
		sections := chain.Reversion(nil, incoming)
		for _, s := range sections {
			assert.NoError(t, s.Revision.Validate())
		}
	})
}

func TestKeepDeleted(t *testing.T) {
	now := time.Now()
	prev := newRevision(types.NewID(), 1, "alice", "A",
		section("s1", "v1", "one").Redacted("admin", "spam", now),
		section("s2", "v2", "two"),
		section("s3", "v3", "three").Redacted("admin", "copyright", now),
	)

	t.Run("omitted deleted sections keep their position test", func(t *testing.T) {
		incoming := []*types.Section{section("s2", "v2", "two")}
		sections := chain.KeepDeleted(prev, incoming)
		require.Len(t, sections, 3)
		assert.Equal(t, "s1", sections[0].Key)
		assert.Equal(t, "s2", sections[1].Key)
		assert.Equal(t, "s3", sections[2].Key)
		assert.True(t, sections[0].IsDeleted())
		assert.Equal(t, "copyright", sections[2].DeletedBecause)

		sections[0].DeletedBecause = "changed"
		assert.Equal(t, "spam", prev.Sections[0].DeletedBecause)
	})

	t.Run("supplied key replaces deleted section test", func(t *testing.T) {
		incoming := []*types.Section{section("s1", "v9", "back")}
		sections := chain.KeepDeleted(prev, incoming)
		require.Len(t, sections, 2)
		assert.False(t, sections[0].IsDeleted())
		assert.Equal(t, "s3", sections[1].Key)
	})

	t.Run("removed live section stays removed test", func(t *testing.T) {
		sections := chain.KeepDeleted(prev, nil)
		require.Len(t, sections, 2)
		assert.Equal(t, "s1", sections[0].Key)
		assert.Equal(t, "s3", sections[1].Key)
	})

	t.Run("first revision test", func(t *testing.T) {
		incoming := []*types.Section{section("s1", "v1", "one")}
		assert.Equal(t, incoming, chain.KeepDeleted(nil, incoming))
	})
}

func TestRedact(t *testing.T) {
	docID := types.NewID()
	revs := []*types.Revision{
		newRevision(docID, 1, "alice", "A", section("s1", "v1", "a cdn://one"), section("s2", "w1", "keep")),
		newRevision(docID, 2, "bob", "B", section("s1", "v2", "b cdn://two"), section("s2", "w1", "keep")),
		newRevision(docID, 3, "alice", "C", section("s1", "v2", "b cdn://two"), section("s2", "w1", "keep")),
	}
	now := time.Unix(100, 0)

	t.Run("single content version test", func(t *testing.T) {
		fields := &types.HardDeleteSectionFields{
			DocumentID: docID, SectionKey: "s1", SectionRevision: "v2", Reason: "harassment",
		}
		next, dirty, err := chain.Redact(revs, fields, "admin", now, extractText)
		require.NoError(t, err)

		require.Len(t, dirty, 2)
		assert.Equal(t, revs[1].ID, dirty[0].ID)
		assert.Equal(t, revs[2].ID, dirty[1].ID)

		// other content versions of the section are untouched
		assert.Equal(t, "a cdn://one", next[0].Sections[0].Content["text"])
		assert.False(t, next[0].Sections[0].IsDeleted())

		for _, rev := range dirty {
			s := rev.FindSection("s1")
			assert.Nil(t, s.Content)
			assert.Equal(t, "harassment", s.DeletedBecause)
			assert.Equal(t, types.ID("admin"), s.DeletedBy)
			assert.Equal(t, []string{}, rev.CDNResources)
			assert.Equal(t, "keep", rev.FindSection("s2").Content["text"])
		}

		// identity is preserved
		assert.Equal(t, revs[1].Order, next[1].Order)
		assert.Equal(t, revs[1].CreatedOn, next[1].CreatedOn)

		// the input chain is not modified
		assert.Equal(t, "b cdn://two", revs[1].Sections[0].Content["text"])
		assert.Equal(t, []string{"cdn://two"}, revs[1].CDNResources)
	})

	t.Run("all revisions test", func(t *testing.T) {
		fields := &types.HardDeleteSectionFields{
			DocumentID: docID, SectionKey: "s1", Reason: "copyright", DeleteAllRevisions: true,
		}
		next, dirty, err := chain.Redact(revs, fields, "admin", now, extractText)
		require.NoError(t, err)
		assert.Len(t, dirty, 3)
		for _, rev := range next {
			assert.True(t, rev.FindSection("s1").IsDeleted())
		}

		// deleting again finds nothing left
		_, _, err = chain.Redact(next, fields, "admin", now, extractText)
		assert.ErrorIs(t, err, chain.ErrSectionNotFound)
	})

	t.Run("no match test", func(t *testing.T) {
		fields := &types.HardDeleteSectionFields{
			DocumentID: docID, SectionKey: "s1", SectionRevision: "unknown", Reason: "x",
		}
		_, _, err := chain.Redact(revs, fields, "admin", now, extractText)
		assert.ErrorIs(t, err, chain.ErrSectionNotFound)
	})
}

func TestConsolidate(t *testing.T) {
	docID := types.NewID()
	revs := []*types.Revision{
		newRevision(docID, 1, "alice", "A", section("s1", "v1", "cdn://a")),
		newRevision(docID, 2, "alice", "B", section("s1", "v2", "cdn://b")),
	}
	revs[1].CDNResources = nil

	changed := chain.Consolidate(revs, extractText)
	require.Len(t, changed, 1)
	assert.Equal(t, revs[1].ID, changed[0].ID)
	assert.Equal(t, []string{"cdn://b"}, changed[0].CDNResources)
	assert.Nil(t, revs[1].CDNResources)

	next := chain.ReplaceRevisions(revs, changed)
	assert.Empty(t, chain.Consolidate(next, extractText))
}
