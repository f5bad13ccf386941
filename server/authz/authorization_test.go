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

package authz_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/docroom/revisor/api/types"
	"github.com/docroom/revisor/pkg/errors"
	"github.com/docroom/revisor/server/authz"
)

func publicRevision(c *types.PublicContext) *types.Revision {
	return &types.Revision{ID: types.NewID(), DocumentID: "doc", Context: c}
}

func roomRevision(roomID types.ID, draft bool) *types.Revision {
	return &types.Revision{
		ID:         types.NewID(),
		DocumentID: "doc",
		RoomID:     roomID,
		Context:    &types.RoomContext{Draft: draft},
	}
}

func TestAuthorization(t *testing.T) {
	a := authz.NewDefault()

	// Setup: users and a room
	owner := &types.User{ID: "owner"}
	member := &types.User{ID: "member"}
	stranger := &types.User{ID: "stranger"}
	admin := &types.User{ID: "admin", Permissions: []types.Permission{
		types.PermissionManagePublicContext,
		types.PermissionHardDeleteSection,
		types.PermissionRestoreRevision,
		types.PermissionDeletePrivateDocument,
	}}
	room := &types.Room{
		ID:              "room",
		Owner:           owner.ID,
		Members:         []*types.RoomMember{{UserID: member.ID}},
		IsCollaborative: true,
	}

	t.Run("create public document test", func(t *testing.T) {
		assert.NoError(t, a.CheckCreate(stranger, publicRevision(&types.PublicContext{}), nil))

		err := a.CheckCreate(stranger, publicRevision(&types.PublicContext{Protected: true}), nil)
		assert.ErrorIs(t, err, authz.ErrInsufficientPermission)
		assert.Equal(t, errors.ErrCodePermissionDenied, errors.StatusOf(err))

		assert.NoError(t, a.CheckCreate(admin, publicRevision(&types.PublicContext{
			Protected: true,
			Verified:  true,
			Review:    types.ReviewApproved,
		}), nil))
	})

	t.Run("sole allowed editor test", func(t *testing.T) {
		self := publicRevision(&types.PublicContext{AllowedEditors: []types.ID{stranger.ID}})
		assert.NoError(t, a.CheckCreate(stranger, self, nil))

		other := publicRevision(&types.PublicContext{AllowedEditors: []types.ID{member.ID}})
		assert.ErrorIs(t, a.CheckCreate(stranger, other, nil), authz.ErrInsufficientPermission)

		both := publicRevision(&types.PublicContext{AllowedEditors: []types.ID{stranger.ID, member.ID}})
		assert.ErrorIs(t, a.CheckCreate(stranger, both, nil), authz.ErrInsufficientPermission)
	})

	t.Run("create room document test", func(t *testing.T) {
		assert.NoError(t, a.CheckCreate(owner, roomRevision(room.ID, true), room))
		assert.NoError(t, a.CheckCreate(member, roomRevision(room.ID, false), room))
		assert.ErrorIs(t, a.CheckCreate(member, roomRevision(room.ID, true), room), authz.ErrDraftOwnerOnly)
		assert.ErrorIs(t, a.CheckCreate(stranger, roomRevision(room.ID, false), room), authz.ErrNotRoomMember)
		assert.ErrorIs(t, a.CheckCreate(owner, roomRevision(room.ID, false), nil), authz.ErrRoomRequired)

		private := room.DeepCopy()
		private.IsCollaborative = false
		assert.ErrorIs(t, a.CheckCreate(member, roomRevision(room.ID, false), private), authz.ErrNotRoomMember)
	})

	t.Run("update checks the delta test", func(t *testing.T) {
		prev := publicRevision(&types.PublicContext{Archived: true})
		next := prev.DeepCopy()
		next.Title = "changed"
		assert.NoError(t, a.CheckUpdate(stranger, prev, next, nil))

		unarchived := prev.DeepCopy()
		unarchived.PublicContext().Archived = false
		assert.ErrorIs(t, a.CheckUpdate(stranger, prev, unarchived, nil), authz.ErrInsufficientPermission)
		assert.NoError(t, a.CheckUpdate(admin, prev, unarchived, nil))
	})

	t.Run("protected document test", func(t *testing.T) {
		prev := publicRevision(&types.PublicContext{
			Protected:      true,
			AllowedEditors: []types.ID{member.ID},
		})
		next := prev.DeepCopy()
		next.Title = "changed"

		assert.ErrorIs(t, a.CheckUpdate(stranger, prev, next, nil), authz.ErrProtectedDocument)
		assert.NoError(t, a.CheckUpdate(member, prev, next, nil))
		assert.NoError(t, a.CheckUpdate(admin, prev, next, nil))
	})

	t.Run("update uses current room state test", func(t *testing.T) {
		prev := roomRevision(room.ID, false)
		next := prev.DeepCopy()
		next.Title = "changed"
		assert.NoError(t, a.CheckUpdate(member, prev, next, room))

		drafted := roomRevision(room.ID, true)
		assert.ErrorIs(t, a.CheckUpdate(member, drafted, next, room), authz.ErrDraftOwnerOnly)
		assert.NoError(t, a.CheckUpdate(owner, drafted, next, room))

		// the room stopped being collaborative after prev was written
		closed := room.DeepCopy()
		closed.IsCollaborative = false
		assert.ErrorIs(t, a.CheckUpdate(member, prev, next, closed), authz.ErrNotRoomMember)
	})

	t.Run("room cannot change test", func(t *testing.T) {
		prev := roomRevision(room.ID, false)
		next := publicRevision(&types.PublicContext{})
		assert.ErrorIs(t, a.CheckUpdate(owner, prev, next, room), authz.ErrRoomChanged)
	})

	t.Run("elevated operations test", func(t *testing.T) {
		assert.ErrorIs(t, a.CheckHardDeleteSection(owner), authz.ErrInsufficientPermission)
		assert.NoError(t, a.CheckHardDeleteSection(admin))

		assert.ErrorIs(t, a.CheckRestoreRevision(owner), authz.ErrInsufficientPermission)
		assert.NoError(t, a.CheckRestoreRevision(admin))

		assert.NoError(t, a.CheckDeletePrivateDocument(owner, room))
		assert.NoError(t, a.CheckDeletePrivateDocument(admin, room))
		assert.ErrorIs(t, a.CheckDeletePrivateDocument(member, room), authz.ErrInsufficientPermission)
	})
}
