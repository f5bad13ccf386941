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

// Package sync provides the advisory locks that serialize operations on
// documents and rooms.
package sync

import (
	"context"
	"fmt"
	"strings"

	"github.com/docroom/revisor/api/types"
	"github.com/docroom/revisor/pkg/errors"
)

var (
	// ErrAlreadyLocked is returned by TryLock when the lock is held.
	ErrAlreadyLocked = errors.Unavailable("already locked").WithCode("ErrAlreadyLocked")

	// ErrLockTimeout is returned when a lock could not be acquired before
	// the context expired.
	ErrLockTimeout = errors.Unavailable("lock acquisition timed out").WithCode("ErrLockTimeout")
)

// Key represents key of Locker.
type Key string

// NewKey creates a key from the given parts, e.g. NewKey("document", id).
func NewKey(parts ...string) Key {
	return Key(strings.Join(parts, "/"))
}

// DocumentKey returns the key that guards a document and its chain.
func DocumentKey(docID types.ID) Key {
	return NewKey("document", docID.String())
}

// RoomKey returns the key that guards the document list of a room.
func RoomKey(roomID types.ID) Key {
	return NewKey("room", roomID.String())
}

// String returns a string representation of this Key.
func (k Key) String() string {
	return string(k)
}

// A Locker represents an object that can be locked and unlocked.
type Locker interface {
	// Lock blocks until the lock is held. It returns ErrLockTimeout when
	// ctx expires first.
	Lock(ctx context.Context) error

	// TryLock locks the mutex if not already locked by another session.
	TryLock(ctx context.Context) error

	// Unlock releases the lock. Releasing a lock that is not held is a
	// no-op.
	Unlock(ctx context.Context) error
}

// LockerManager creates lockers that share one lock space.
type LockerManager interface {
	// NewLocker creates a locker for the given key.
	NewLocker(ctx context.Context, key Key) (Locker, error)

	// Close releases the resources of the manager.
	Close() error
}

// LockTimeoutError wraps ErrLockTimeout with the key that timed out.
func LockTimeoutError(key Key) error {
	return fmt.Errorf("%s: %w", key, ErrLockTimeout)
}
