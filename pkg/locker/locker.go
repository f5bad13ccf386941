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
 *
 * This file was written with reference to moby/locker.
 *   https://github.com/moby/locker
 */

/*
Package locker provides named locks whose acquisition can be bounded by a
context.

A lock for a name is created on first use and dropped again on Unlock once no
caller is waiting for it, so the map only holds names that are in use.
*/
package locker

import (
	"context"
	"errors"
	"sync"
)

// ErrNoSuchLock is returned when unlocking a name that is not locked.
var ErrNoSuchLock = errors.New("no such lock")

// Locker holds one lock per name.
type Locker struct {
	mu    sync.Mutex
	locks map[string]*lockCtr
}

// lockCtr is a single named lock. The buffered channel is the mutex: a
// send acquires, a receive releases.
type lockCtr struct {
	ch chan struct{}

	// waiters is the number of callers between registering interest and
	// giving up or acquiring. Guarded by Locker.mu.
	waiters int
}

func newLockCtr() *lockCtr {
	return &lockCtr{ch: make(chan struct{}, 1)}
}

// New creates a new Locker.
func New() *Locker {
	return &Locker{
		locks: make(map[string]*lockCtr),
	}
}

// acquire registers the caller as a waiter of the named lock.
func (l *Locker) acquire(name string) *lockCtr {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.locks == nil {
		l.locks = make(map[string]*lockCtr)
	}
	nameLock, ok := l.locks[name]
	if !ok {
		nameLock = newLockCtr()
		l.locks[name] = nameLock
	}
	nameLock.waiters++
	return nameLock
}

// release unregisters a waiter and drops the lock if it is neither held nor
// awaited.
func (l *Locker) release(name string, nameLock *lockCtr) {
	l.mu.Lock()
	defer l.mu.Unlock()

	nameLock.waiters--
	if nameLock.waiters == 0 && len(nameLock.ch) == 0 {
		delete(l.locks, name)
	}
}

// Lock blocks until the named lock is acquired or ctx is done, in which case
// ctx.Err() is returned and the lock is not held.
func (l *Locker) Lock(ctx context.Context, name string) error {
	nameLock := l.acquire(name)

	select {
	case nameLock.ch <- struct{}{}:
		l.release(name, nameLock)
		return nil
	case <-ctx.Done():
		l.release(name, nameLock)
		return ctx.Err()
	}
}

// TryLock acquires the named lock if it is free and reports whether it did.
func (l *Locker) TryLock(name string) bool {
	nameLock := l.acquire(name)

	select {
	case nameLock.ch <- struct{}{}:
		l.release(name, nameLock)
		return true
	default:
		l.release(name, nameLock)
		return false
	}
}

// Unlock releases the named lock. The lock is dropped from the map when
// nobody is waiting for it.
func (l *Locker) Unlock(name string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	nameLock, ok := l.locks[name]
	if !ok {
		return ErrNoSuchLock
	}

	select {
	case <-nameLock.ch:
	default:
		return ErrNoSuchLock
	}

	if nameLock.waiters == 0 {
		delete(l.locks, name)
	}
	return nil
}

// Len returns the number of names currently tracked.
func (l *Locker) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
