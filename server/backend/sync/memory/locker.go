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

// Package memory provides a LockerManager for a single server process.
package memory

import (
	"context"
	gosync "sync"

	"github.com/docroom/revisor/pkg/locker"
	"github.com/docroom/revisor/server/backend/sync"
)

// LockerManager hands out lockers backed by an in-process named locker.
type LockerManager struct {
	locks *locker.Locker
}

// NewLockerManager creates a new instance of LockerManager.
func NewLockerManager() *LockerManager {
	return &LockerManager{
		locks: locker.New(),
	}
}

// NewLocker creates locker of the given key.
func (m *LockerManager) NewLocker(_ context.Context, key sync.Key) (sync.Locker, error) {
	return &internalLocker{
		key:   key,
		locks: m.locks,
	}, nil
}

// Close does nothing; held locks die with the process.
func (m *LockerManager) Close() error {
	return nil
}

type internalLocker struct {
	key   sync.Key
	locks *locker.Locker

	mu   gosync.Mutex
	held bool
}

// Lock locks the mutex.
func (il *internalLocker) Lock(ctx context.Context) error {
	if err := il.locks.Lock(ctx, il.key.String()); err != nil {
		return sync.LockTimeoutError(il.key)
	}

	il.mu.Lock()
	il.held = true
	il.mu.Unlock()
	return nil
}

// TryLock locks the mutex if not already locked by another session.
func (il *internalLocker) TryLock(_ context.Context) error {
	if !il.locks.TryLock(il.key.String()) {
		return sync.ErrAlreadyLocked
	}

	il.mu.Lock()
	il.held = true
	il.mu.Unlock()
	return nil
}

// Unlock unlocks the mutex.
func (il *internalLocker) Unlock(_ context.Context) error {
	il.mu.Lock()
	defer il.mu.Unlock()

	if !il.held {
		return nil
	}
	il.held = false
	return il.locks.Unlock(il.key.String())
}
