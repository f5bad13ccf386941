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

package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docroom/revisor/api/types"
	"github.com/docroom/revisor/pkg/errors"
	"github.com/docroom/revisor/server/backend/sync"
	"github.com/docroom/revisor/server/backend/sync/memory"
)

func TestLockerManager(t *testing.T) {
	ctx := context.Background()
	manager := memory.NewLockerManager()
	defer func() { assert.NoError(t, manager.Close()) }()

	key := sync.DocumentKey(types.NewID())

	t.Run("lock timeout test", func(t *testing.T) {
		holder, err := manager.NewLocker(ctx, key)
		require.NoError(t, err)
		require.NoError(t, holder.Lock(ctx))

		waiter, err := manager.NewLocker(ctx, key)
		require.NoError(t, err)

		timeoutCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
		defer cancel()
		err = waiter.Lock(timeoutCtx)
		assert.ErrorIs(t, err, sync.ErrLockTimeout)
		assert.True(t, errors.IsStatus(err, errors.ErrCodeUnavailable))
		assert.ErrorIs(t, waiter.TryLock(ctx), sync.ErrAlreadyLocked)

		// unlocking a lock that was never acquired is a no-op
		assert.NoError(t, waiter.Unlock(ctx))

		assert.NoError(t, holder.Unlock(ctx))
		assert.NoError(t, holder.Unlock(ctx))

		assert.NoError(t, waiter.Lock(ctx))
		assert.NoError(t, waiter.Unlock(ctx))
	})

	t.Run("keys are independent test", func(t *testing.T) {
		doc, err := manager.NewLocker(ctx, sync.DocumentKey("d1"))
		require.NoError(t, err)
		room, err := manager.NewLocker(ctx, sync.RoomKey("d1"))
		require.NoError(t, err)

		assert.NoError(t, doc.Lock(ctx))
		assert.NoError(t, room.TryLock(ctx))
		assert.NoError(t, room.Unlock(ctx))
		assert.NoError(t, doc.Unlock(ctx))
	})

	t.Run("key test", func(t *testing.T) {
		assert.Equal(t, "document/abc", sync.DocumentKey("abc").String())
		assert.Equal(t, "room/abc", sync.RoomKey("abc").String())
		assert.Equal(t, "housekeeping/consolidate", sync.NewKey("housekeeping", "consolidate").String())
	})
}
