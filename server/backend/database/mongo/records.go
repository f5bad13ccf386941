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

package mongo

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/docroom/revisor/api/types"
)

const (
	contextKindPublic = "public"
	contextKindRoom   = "room"
)

// contextRecord stores a DocumentContext with a kind discriminator.
type contextRecord struct {
	Kind           string   `bson:"kind"`
	Protected      bool     `bson:"protected,omitempty"`
	Archived       bool     `bson:"archived,omitempty"`
	Verified       bool     `bson:"verified,omitempty"`
	Review         string   `bson:"review,omitempty"`
	AllowedEditors []string `bson:"allowed_editors,omitempty"`
	Draft          bool     `bson:"draft,omitempty"`
}

func toContextRecord(c types.DocumentContext) (contextRecord, error) {
	switch ctx := c.(type) {
	case *types.PublicContext:
		editors := make([]string, 0, len(ctx.AllowedEditors))
		for _, id := range ctx.AllowedEditors {
			editors = append(editors, id.String())
		}
		return contextRecord{
			Kind:           contextKindPublic,
			Protected:      ctx.Protected,
			Archived:       ctx.Archived,
			Verified:       ctx.Verified,
			Review:         string(ctx.Review),
			AllowedEditors: editors,
		}, nil
	case *types.RoomContext:
		return contextRecord{Kind: contextKindRoom, Draft: ctx.Draft}, nil
	default:
		return contextRecord{}, fmt.Errorf("encode context %T: %w", c, types.ErrContextMismatch)
	}
}

func (r contextRecord) toContext() (types.DocumentContext, error) {
	switch r.Kind {
	case contextKindPublic:
		editors := make([]types.ID, 0, len(r.AllowedEditors))
		for _, id := range r.AllowedEditors {
			editors = append(editors, types.ID(id))
		}
		return &types.PublicContext{
			Protected:      r.Protected,
			Archived:       r.Archived,
			Verified:       r.Verified,
			Review:         types.ReviewState(r.Review),
			AllowedEditors: editors,
		}, nil
	case contextKindRoom:
		return &types.RoomContext{Draft: r.Draft}, nil
	default:
		return nil, fmt.Errorf("decode context kind %q: %w", r.Kind, types.ErrContextMismatch)
	}
}

type sectionRecord struct {
	Key            string                 `bson:"key"`
	Revision       string                 `bson:"revision"`
	Type           string                 `bson:"type"`
	Content        map[string]interface{} `bson:"content"`
	DeletedOn      *time.Time             `bson:"deleted_on,omitempty"`
	DeletedBy      string                 `bson:"deleted_by,omitempty"`
	DeletedBecause string                 `bson:"deleted_because,omitempty"`
}

func toSectionRecords(sections []*types.Section) []sectionRecord {
	records := make([]sectionRecord, 0, len(sections))
	for _, s := range sections {
		records = append(records, sectionRecord{
			Key:            s.Key,
			Revision:       s.Revision.String(),
			Type:           s.Type,
			Content:        s.Content.DeepCopy(),
			DeletedOn:      s.DeletedOn,
			DeletedBy:      s.DeletedBy.String(),
			DeletedBecause: s.DeletedBecause,
		})
	}
	return records
}

func fromSectionRecords(records []sectionRecord) []*types.Section {
	sections := make([]*types.Section, 0, len(records))
	for _, r := range records {
		var content types.Content
		if r.Content != nil {
			content = types.Content(normalize(r.Content).(map[string]interface{}))
		}

		var deletedOn *time.Time
		if r.DeletedOn != nil {
			on := r.DeletedOn.UTC()
			deletedOn = &on
		}

		sections = append(sections, &types.Section{
			Key:            r.Key,
			Revision:       types.ID(r.Revision),
			Type:           r.Type,
			Content:        content,
			DeletedOn:      deletedOn,
			DeletedBy:      types.ID(r.DeletedBy),
			DeletedBecause: r.DeletedBecause,
		})
	}
	return sections
}

// normalize converts the bson.D, bson.M and bson.A values the driver decodes
// nested documents into back to plain maps and slices.
func normalize(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		m := make(map[string]interface{}, len(val))
		for k, item := range val {
			m[k] = normalize(item)
		}
		return m
	case []interface{}:
		s := make([]interface{}, len(val))
		for i, item := range val {
			s[i] = normalize(item)
		}
		return s
	case primitive.D:
		return normalize(val.Map())
	case primitive.M:
		return normalize(map[string]interface{}(val))
	case primitive.A:
		return normalize([]interface{}(val))
	default:
		return v
	}
}

type revisionRecord struct {
	ID           string          `bson:"_id"`
	DocumentID   string          `bson:"document_id"`
	RoomID       string          `bson:"room_id,omitempty"`
	Order        int64           `bson:"order"`
	CreatedOn    time.Time       `bson:"created_on"`
	CreatedBy    string          `bson:"created_by"`
	RestoredFrom string          `bson:"restored_from,omitempty"`
	Title        string          `bson:"title"`
	Description  string          `bson:"description"`
	Slug         string          `bson:"slug"`
	Language     string          `bson:"language"`
	Tags         []string        `bson:"tags"`
	Sections     []sectionRecord `bson:"sections"`
	Context      contextRecord   `bson:"context"`
	CDNResources []string        `bson:"cdn_resources"`
}

func toRevisionRecord(rev *types.Revision) (*revisionRecord, error) {
	ctx, err := toContextRecord(rev.Context)
	if err != nil {
		return nil, err
	}

	return &revisionRecord{
		ID:           rev.ID.String(),
		DocumentID:   rev.DocumentID.String(),
		RoomID:       rev.RoomID.String(),
		Order:        rev.Order,
		CreatedOn:    rev.CreatedOn,
		CreatedBy:    rev.CreatedBy.String(),
		RestoredFrom: rev.RestoredFrom.String(),
		Title:        rev.Title,
		Description:  rev.Description,
		Slug:         rev.Slug,
		Language:     rev.Language,
		Tags:         append([]string{}, rev.Tags...),
		Sections:     toSectionRecords(rev.Sections),
		Context:      ctx,
		CDNResources: append([]string{}, rev.CDNResources...),
	}, nil
}

func (r *revisionRecord) toRevision() (*types.Revision, error) {
	ctx, err := r.Context.toContext()
	if err != nil {
		return nil, err
	}

	return &types.Revision{
		ID:           types.ID(r.ID),
		DocumentID:   types.ID(r.DocumentID),
		RoomID:       types.ID(r.RoomID),
		Order:        r.Order,
		CreatedOn:    r.CreatedOn.UTC(),
		CreatedBy:    types.ID(r.CreatedBy),
		RestoredFrom: types.ID(r.RestoredFrom),
		Title:        r.Title,
		Description:  r.Description,
		Slug:         r.Slug,
		Language:     r.Language,
		Tags:         append([]string{}, r.Tags...),
		Sections:     fromSectionRecords(r.Sections),
		Context:      ctx,
		CDNResources: append([]string{}, r.CDNResources...),
	}, nil
}

type documentRecord struct {
	ID           string          `bson:"_id"`
	RoomID       string          `bson:"room_id,omitempty"`
	Revision     string          `bson:"revision"`
	Order        int64           `bson:"order"`
	CreatedOn    time.Time       `bson:"created_on"`
	CreatedBy    string          `bson:"created_by"`
	UpdatedOn    time.Time       `bson:"updated_on"`
	UpdatedBy    string          `bson:"updated_by"`
	Title        string          `bson:"title"`
	Description  string          `bson:"description"`
	Slug         string          `bson:"slug"`
	Language     string          `bson:"language"`
	Tags         []string        `bson:"tags"`
	Sections     []sectionRecord `bson:"sections"`
	Context      contextRecord   `bson:"context"`
	CDNResources []string        `bson:"cdn_resources"`
	Contributors []string        `bson:"contributors"`
}

func toDocumentRecord(doc *types.Document) (*documentRecord, error) {
	ctx, err := toContextRecord(doc.Context)
	if err != nil {
		return nil, err
	}

	contributors := make([]string, 0, len(doc.Contributors))
	for _, id := range doc.Contributors {
		contributors = append(contributors, id.String())
	}

	return &documentRecord{
		ID:           doc.ID.String(),
		RoomID:       doc.RoomID.String(),
		Revision:     doc.Revision.String(),
		Order:        doc.Order,
		CreatedOn:    doc.CreatedOn,
		CreatedBy:    doc.CreatedBy.String(),
		UpdatedOn:    doc.UpdatedOn,
		UpdatedBy:    doc.UpdatedBy.String(),
		Title:        doc.Title,
		Description:  doc.Description,
		Slug:         doc.Slug,
		Language:     doc.Language,
		Tags:         append([]string{}, doc.Tags...),
		Sections:     toSectionRecords(doc.Sections),
		Context:      ctx,
		CDNResources: append([]string{}, doc.CDNResources...),
		Contributors: contributors,
	}, nil
}

func (r *documentRecord) toDocument() (*types.Document, error) {
	ctx, err := r.Context.toContext()
	if err != nil {
		return nil, err
	}

	contributors := make([]types.ID, 0, len(r.Contributors))
	for _, id := range r.Contributors {
		contributors = append(contributors, types.ID(id))
	}

	return &types.Document{
		ID:           types.ID(r.ID),
		RoomID:       types.ID(r.RoomID),
		Revision:     types.ID(r.Revision),
		Order:        r.Order,
		CreatedOn:    r.CreatedOn.UTC(),
		CreatedBy:    types.ID(r.CreatedBy),
		UpdatedOn:    r.UpdatedOn.UTC(),
		UpdatedBy:    types.ID(r.UpdatedBy),
		Title:        r.Title,
		Description:  r.Description,
		Slug:         r.Slug,
		Language:     r.Language,
		Tags:         append([]string{}, r.Tags...),
		Sections:     fromSectionRecords(r.Sections),
		Context:      ctx,
		CDNResources: append([]string{}, r.CDNResources...),
		Contributors: contributors,
	}, nil
}

type roomMemberRecord struct {
	UserID   string    `bson:"user_id"`
	JoinedOn time.Time `bson:"joined_on"`
}

type roomRecord struct {
	ID              string             `bson:"_id"`
	Name            string             `bson:"name"`
	Owner           string             `bson:"owner"`
	Members         []roomMemberRecord `bson:"members"`
	IsCollaborative bool               `bson:"is_collaborative"`
	Documents       []string           `bson:"documents"`
}

func toRoomRecord(room *types.Room) *roomRecord {
	members := make([]roomMemberRecord, 0, len(room.Members))
	for _, m := range room.Members {
		members = append(members, roomMemberRecord{UserID: m.UserID.String(), JoinedOn: m.JoinedOn})
	}
	docs := make([]string, 0, len(room.Documents))
	for _, id := range room.Documents {
		docs = append(docs, id.String())
	}

	return &roomRecord{
		ID:              room.ID.String(),
		Name:            room.Name,
		Owner:           room.Owner.String(),
		Members:         members,
		IsCollaborative: room.IsCollaborative,
		Documents:       docs,
	}
}

func (r *roomRecord) toRoom() *types.Room {
	members := make([]*types.RoomMember, 0, len(r.Members))
	for _, m := range r.Members {
		members = append(members, &types.RoomMember{UserID: types.ID(m.UserID), JoinedOn: m.JoinedOn.UTC()})
	}
	docs := make([]types.ID, 0, len(r.Documents))
	for _, id := range r.Documents {
		docs = append(docs, types.ID(id))
	}

	return &types.Room{
		ID:              types.ID(r.ID),
		Name:            r.Name,
		Owner:           types.ID(r.Owner),
		Members:         members,
		IsCollaborative: r.IsCollaborative,
		Documents:       docs,
	}
}

type eventRecord struct {
	ID         string    `bson:"_id"`
	Type       string    `bson:"type"`
	DocumentID string    `bson:"document_id"`
	RevisionID string    `bson:"revision_id"`
	RoomID     string    `bson:"room_id,omitempty"`
	UserID     string    `bson:"user_id"`
	CreatedOn  time.Time `bson:"created_on"`
}

func (r *eventRecord) toEvent() *types.Event {
	return &types.Event{
		ID:         types.ID(r.ID),
		Type:       types.EventType(r.Type),
		DocumentID: types.ID(r.DocumentID),
		RevisionID: types.ID(r.RevisionID),
		RoomID:     types.ID(r.RoomID),
		UserID:     types.ID(r.UserID),
		CreatedOn:  r.CreatedOn.UTC(),
	}
}

type commentRecord struct {
	ID         string    `bson:"_id"`
	DocumentID string    `bson:"document_id"`
	CreatedBy  string    `bson:"created_by"`
	CreatedOn  time.Time `bson:"created_on"`
	Topic      string    `bson:"topic"`
	Text       string    `bson:"text"`
}

func (r *commentRecord) toComment() *types.Comment {
	return &types.Comment{
		ID:         types.ID(r.ID),
		DocumentID: types.ID(r.DocumentID),
		CreatedBy:  types.ID(r.CreatedBy),
		CreatedOn:  r.CreatedOn.UTC(),
		Topic:      r.Topic,
		Text:       r.Text,
	}
}

type counterRecord struct {
	ID    string `bson:"_id"`
	Value int64  `bson:"value"`
}
