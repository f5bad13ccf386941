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

// Package authz provides the authorization related business logic. Checks
// are pure functions of the user, the revisions involved and the room state
// loaded by the caller.
package authz

import (
	"fmt"
	"slices"

	"github.com/docroom/revisor/api/types"
	"github.com/docroom/revisor/pkg/errors"
)

var (
	// ErrInsufficientPermission is returned when user lacks required permission
	ErrInsufficientPermission = errors.PermissionDenied("insufficient permission").
					WithCode("ErrInsufficientPermission")

	// ErrNotRoomMember is returned when the user may not write into the room.
	ErrNotRoomMember = errors.PermissionDenied("user may not write into room").WithCode("ErrNotRoomMember")

	// ErrDraftOwnerOnly is returned when a non-owner touches a draft.
	ErrDraftOwnerOnly = errors.PermissionDenied("only the room owner may edit drafts").WithCode("ErrDraftOwnerOnly")

	// ErrProtectedDocument is returned when the user is not an allowed editor
	// of a protected document.
	ErrProtectedDocument = errors.PermissionDenied("document is protected").WithCode("ErrProtectedDocument")

	// ErrRoomChanged is returned when a revision moves between rooms.
	ErrRoomChanged = errors.InvalidArgument("room of a document cannot change").WithCode("ErrRoomChanged")

	// ErrRoomRequired is returned when a room document is checked without
	// its room.
	ErrRoomRequired = errors.Internal("room is required").WithCode("ErrRoomRequired")
)

// Authorizer decides whether a user may perform a document operation.
type Authorizer interface {
	// CheckCreate checks the first revision of a new document. room is nil
	// for public documents.
	CheckCreate(user *types.User, rev *types.Revision, room *types.Room) error

	// CheckUpdate checks the change from prev to next. room is the current
	// state of the room, nil for public documents.
	CheckUpdate(user *types.User, prev, next *types.Revision, room *types.Room) error

	// CheckHardDeleteSection checks the redaction of history.
	CheckHardDeleteSection(user *types.User) error

	// CheckRestoreRevision checks restoring an older revision.
	CheckRestoreRevision(user *types.User) error

	// CheckDeletePrivateDocument checks the deletion of a room document.
	CheckDeletePrivateDocument(user *types.User, room *types.Room) error
}

// Default is the Authorizer used by the server.
type Default struct{}

// NewDefault creates the default Authorizer.
func NewDefault() *Default {
	return &Default{}
}

// CheckCreate checks the first revision of a new document.
func (a *Default) CheckCreate(user *types.User, rev *types.Revision, room *types.Room) error {
	if rev.IsPublic() {
		return checkPublicContext(user, nil, rev.PublicContext())
	}

	return checkRoomWrite(user, room, false, isDraft(rev))
}

// CheckUpdate checks the delta between two consecutive revisions.
func (a *Default) CheckUpdate(user *types.User, prev, next *types.Revision, room *types.Room) error {
	if prev.RoomID != next.RoomID {
		return fmt.Errorf("%s to %s: %w", prev.RoomID, next.RoomID, ErrRoomChanged)
	}

	if next.IsPublic() {
		if err := checkProtected(user, prev.PublicContext()); err != nil {
			return err
		}
		return checkPublicContext(user, prev.PublicContext(), next.PublicContext())
	}

	return checkRoomWrite(user, room, isDraft(prev), isDraft(next))
}

// CheckHardDeleteSection requires PermissionHardDeleteSection.
func (a *Default) CheckHardDeleteSection(user *types.User) error {
	return requirePermission(user, types.PermissionHardDeleteSection)
}

// CheckRestoreRevision requires PermissionRestoreRevision.
func (a *Default) CheckRestoreRevision(user *types.User) error {
	return requirePermission(user, types.PermissionRestoreRevision)
}

// CheckDeletePrivateDocument allows the room owner, or holders of
// PermissionDeletePrivateDocument.
func (a *Default) CheckDeletePrivateDocument(user *types.User, room *types.Room) error {
	if room == nil {
		return ErrRoomRequired
	}
	if room.IsOwner(user.ID) {
		return nil
	}
	return requirePermission(user, types.PermissionDeletePrivateDocument)
}

func requirePermission(user *types.User, p types.Permission) error {
	if user.HasPermission(p) {
		return nil
	}
	return fmt.Errorf("'%s' required: %w", p, ErrInsufficientPermission)
}

func isDraft(rev *types.Revision) bool {
	c := rev.RoomContext()
	return c != nil && c.Draft
}

// checkRoomWrite allows the owner everything. Members of a collaborative room
// may write documents that neither were nor become drafts.
func checkRoomWrite(user *types.User, room *types.Room, wasDraft, isDraft bool) error {
	if room == nil {
		return ErrRoomRequired
	}
	if room.IsOwner(user.ID) {
		return nil
	}

	if !room.IsMember(user.ID) || !room.IsCollaborative {
		return fmt.Errorf("user %s, room %s: %w", user.ID, room.ID, ErrNotRoomMember)
	}
	if wasDraft || isDraft {
		return fmt.Errorf("user %s, room %s: %w", user.ID, room.ID, ErrDraftOwnerOnly)
	}
	return nil
}

func checkProtected(user *types.User, c *types.PublicContext) error {
	if c == nil || !c.Protected {
		return nil
	}
	if c.IsAllowedEditor(user.ID) || user.HasPermission(types.PermissionManagePublicContext) {
		return nil
	}
	return fmt.Errorf("user %s: %w", user.ID, ErrProtectedDocument)
}

// checkPublicContext requires PermissionManagePublicContext for every flag
// that changes between prev and next. A user may name themselves as the sole
// allowed editor without it.
func checkPublicContext(user *types.User, prev, next *types.PublicContext) error {
	if next == nil {
		return nil
	}
	if prev == nil {
		prev = &types.PublicContext{}
	}
	if user.HasPermission(types.PermissionManagePublicContext) {
		return nil
	}

	var changed []string
	if prev.Protected != next.Protected {
		changed = append(changed, "protected")
	}
	if prev.Archived != next.Archived {
		changed = append(changed, "archived")
	}
	if prev.Verified != next.Verified {
		changed = append(changed, "verified")
	}
	if prev.Review != next.Review {
		changed = append(changed, "review")
	}
	if !slices.Equal(prev.AllowedEditors, next.AllowedEditors) && !isSoleEditor(user, next.AllowedEditors) {
		changed = append(changed, "allowedEditors")
	}

	if len(changed) > 0 {
		return fmt.Errorf(
			"changing %v requires '%s': %w",
			changed,
			types.PermissionManagePublicContext,
			ErrInsufficientPermission,
		)
	}
	return nil
}

func isSoleEditor(user *types.User, editors []types.ID) bool {
	return len(editors) == 1 && editors[0] == user.ID
}
