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

// Permission is an elevated right held by a user.
type Permission string

const (
	// PermissionManagePublicContext allows changing the flags of the public
	// context of a document: protected, archived, verified, review state and
	// the allowed editors of others.
	PermissionManagePublicContext Permission = "manage-public-context"

	// PermissionHardDeleteSection allows redacting sections from history.
	PermissionHardDeleteSection Permission = "hard-delete-section"

	// PermissionRestoreRevision allows restoring an older revision.
	PermissionRestoreRevision Permission = "restore-revisions"

	// PermissionDeletePrivateDocument allows deleting room documents owned
	// by other users.
	PermissionDeletePrivateDocument Permission = "delete-private-document"
)

// User is the actor of an operation.
type User struct {
	ID          ID           `json:"id"`
	Name        string       `json:"name"`
	Permissions []Permission `json:"permissions"`
}

// HasPermission reports whether the user holds the given permission.
func (u *User) HasPermission(p Permission) bool {
	if u == nil {
		return false
	}
	for _, held := range u.Permissions {
		if held == p {
			return true
		}
	}
	return false
}
