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

import (
	"fmt"

	"github.com/docroom/revisor/internal/validation"
	"github.com/docroom/revisor/pkg/errors"
)

var (
	// ErrEmptyDocumentFields is returned when an update changes nothing.
	ErrEmptyDocumentFields = errors.InvalidArgument("updatable document fields are empty").
				WithCode("ErrEmptyDocumentFields")

	// ErrDuplicateSectionKey is returned when two sections share a key.
	ErrDuplicateSectionKey = errors.InvalidArgument("duplicate section key").WithCode("ErrDuplicateSectionKey")

	// ErrContextNotApplicable is returned when a public context is given for
	// a room document or a room context for a public one.
	ErrContextNotApplicable = errors.InvalidArgument("context does not apply to document").
				WithCode("ErrContextNotApplicable")

	// ErrSectionRevisionRequired is returned when a hard delete targets a
	// single content version without naming it.
	ErrSectionRevisionRequired = errors.InvalidArgument("section revision is required").
					WithCode("ErrSectionRevisionRequired")
)

// SectionFields is a section as supplied by a caller. The key is generated
// when empty; the section revision is always assigned by the server.
type SectionFields struct {
	Key     string  `json:"key" validate:"omitempty,max=100"`
	Type    string  `json:"type" validate:"required"`
	Content Content `json:"content" validate:"required"`
}

// CreateDocumentFields is the set of fields used to create a document.
type CreateDocumentFields struct {
	// RoomID is empty for public documents.
	RoomID ID `json:"roomId" validate:"omitempty,xid"`

	Title       string           `json:"title" validate:"required,max=300"`
	Description string           `json:"description" validate:"max=2000"`
	Slug        string           `json:"slug" validate:"omitempty,slug,max=300"`
	Language    string           `json:"language" validate:"omitempty,language"`
	Tags        []string         `json:"tags" validate:"dive,required,max=100"`
	Sections    []*SectionFields `json:"sections" validate:"dive,required"`

	PublicContext *PublicContext `json:"publicContext"`
	RoomContext   *RoomContext   `json:"roomContext"`
}

// Validate validates the CreateDocumentFields.
func (f *CreateDocumentFields) Validate() error {
	if err := validation.ValidateStruct(f); err != nil {
		return err
	}
	if f.RoomID.IsEmpty() && f.RoomContext != nil {
		return fmt.Errorf("room context on public document: %w", ErrContextNotApplicable)
	}
	if !f.RoomID.IsEmpty() && f.PublicContext != nil {
		return fmt.Errorf("public context on room document: %w", ErrContextNotApplicable)
	}
	return checkSectionKeys(f.Sections)
}

// Context returns the requested context, or the empty one for the room.
func (f *CreateDocumentFields) Context() DocumentContext {
	if f.RoomID.IsEmpty() {
		if f.PublicContext != nil {
			return f.PublicContext.DeepCopy()
		}
	} else if f.RoomContext != nil {
		return f.RoomContext.DeepCopy()
	}
	return ContextFor(f.RoomID)
}

// UpdatableDocumentFields is the set of fields used to update a document.
// Nil fields are left unchanged.
type UpdatableDocumentFields struct {
	Title       *string           `json:"title" validate:"omitempty,min=1,max=300"`
	Description *string           `json:"description" validate:"omitempty,max=2000"`
	Slug        *string           `json:"slug" validate:"omitempty,slug,max=300"`
	Language    *string           `json:"language" validate:"omitempty,language"`
	Tags        *[]string         `json:"tags" validate:"omitempty,dive,required,max=100"`
	Sections    *[]*SectionFields `json:"sections" validate:"omitempty,dive,required"`

	PublicContext *PublicContext `json:"publicContext"`
	RoomContext   *RoomContext   `json:"roomContext"`
}

// Validate validates the UpdatableDocumentFields.
func (f *UpdatableDocumentFields) Validate() error {
	if f.Title == nil && f.Description == nil && f.Slug == nil && f.Language == nil &&
		f.Tags == nil && f.Sections == nil && f.PublicContext == nil && f.RoomContext == nil {
		return ErrEmptyDocumentFields
	}
	if err := validation.ValidateStruct(f); err != nil {
		return err
	}
	if f.Sections != nil {
		return checkSectionKeys(*f.Sections)
	}
	return nil
}

// HardDeleteSectionFields targets a section for redaction from history.
type HardDeleteSectionFields struct {
	DocumentID ID     `json:"documentId" validate:"required,xid"`
	SectionKey string `json:"sectionKey" validate:"required"`

	// SectionRevision is the content version to redact. It is ignored when
	// DeleteAllRevisions is set.
	SectionRevision ID `json:"sectionRevision" validate:"omitempty,xid"`

	Reason             string `json:"reason" validate:"required,max=1000"`
	DeleteAllRevisions bool   `json:"deleteAllRevisions"`
}

// Validate validates the HardDeleteSectionFields.
func (f *HardDeleteSectionFields) Validate() error {
	if err := validation.ValidateStruct(f); err != nil {
		return err
	}
	if !f.DeleteAllRevisions && f.SectionRevision.IsEmpty() {
		return ErrSectionRevisionRequired
	}
	return nil
}

// Matches reports whether the given section is targeted.
func (f *HardDeleteSectionFields) Matches(s *Section) bool {
	if s.IsDeleted() || s.Key != f.SectionKey {
		return false
	}
	return f.DeleteAllRevisions || s.Revision == f.SectionRevision
}

func checkSectionKeys(sections []*SectionFields) error {
	seen := make(map[string]struct{}, len(sections))
	for _, s := range sections {
		if s.Key == "" {
			continue
		}
		if _, ok := seen[s.Key]; ok {
			return fmt.Errorf("%q: %w", s.Key, ErrDuplicateSectionKey)
		}
		seen[s.Key] = struct{}{}
	}
	return nil
}
