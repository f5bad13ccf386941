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

package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docroom/revisor/server/backend/sync"
	"github.com/docroom/revisor/server/backend/sync/redis"
)

func setupManager(t *testing.T) (*miniredis.Miniredis, *redis.LockerManager) {
	mr := miniredis.RunT(t)

	conf := &redis.Config{Address: mr.Addr(), LockTTL: "1s", LockRetryInterval: "5ms"}
	conf.EnsureDefaultValue()
	require.NoError(t, conf.Validate())

	manager, err := redis.Dial(context.Background(), conf)
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, manager.Close()) })

	return mr, manager
}

func TestRedisLocker(t *testing.T) {
	ctx := context.Background()

	t.Run("mutual exclusion test", func(t *testing.T) {
		mr, manager := setupManager(t)
		key := sync.DocumentKey("doc-1")

		first, err := manager.NewLocker(ctx, key)
		require.NoError(t, err)
		second, err := manager.NewLocker(ctx, key)
		require.NoError(t, err)

		require.NoError(t, first.Lock(ctx))
		assert.True(t, mr.Exists(redis.DefaultKeyPrefix+"document/doc-1"))
		assert.ErrorIs(t, second.TryLock(ctx), sync.ErrAlreadyLocked)

		timeoutCtx, cancel := context.WithTimeout(ctx, 30*time.Millisecond)
		defer cancel()
		assert.ErrorIs(t, second.Lock(timeoutCtx), sync.ErrLockTimeout)

		// releasing a lock that was never acquired keeps the holder's key
		assert.NoError(t, second.Unlock(ctx))
		assert.True(t, mr.Exists(redis.DefaultKeyPrefix+"document/doc-1"))

		assert.NoError(t, first.Unlock(ctx))
		assert.False(t, mr.Exists(redis.DefaultKeyPrefix+"document/doc-1"))
		assert.NoError(t, first.Unlock(ctx))

		assert.NoError(t, second.Lock(ctx))
		assert.NoError(t, second.Unlock(ctx))
	})

	t.Run("waiter acquires after release test", func(t *testing.T) {
		_, manager := setupManager(t)
		key := sync.RoomKey("room-1")

		holder, err := manager.NewLocker(ctx, key)
		require.NoError(t, err)
		require.NoError(t, holder.Lock(ctx))

		acquired := make(chan error, 1)
		go func() {
			waiter, err := manager.NewLocker(ctx, key)
			if err != nil {
				acquired <- err
				return
			}
			waitCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
			defer cancel()
			if err := waiter.Lock(waitCtx); err != nil {
				acquired <- err
				return
			}
			acquired <- waiter.Unlock(ctx)
		}()

		time.Sleep(20 * time.Millisecond)
		require.NoError(t, holder.Unlock(ctx))
		assert.NoError(t, <-acquired)
	})

	t.Run("expired lock is not released by its old holder test", func(t *testing.T) {
		mr, manager := setupManager(t)
		key := sync.DocumentKey("doc-2")

		stale, err := manager.NewLocker(ctx, key)
		require.NoError(t, err)
		require.NoError(t, stale.Lock(ctx))

		mr.FastForward(2 * time.Second)

		fresh, err := manager.NewLocker(ctx, key)
		require.NoError(t, err)
		require.NoError(t, fresh.TryLock(ctx))

		assert.NoError(t, stale.Unlock(ctx))
		assert.True(t, mr.Exists(redis.DefaultKeyPrefix+"document/doc-2"))
		assert.NoError(t, fresh.Unlock(ctx))
	})

	t.Run("config validation test", func(t *testing.T) {
		conf := &redis.Config{}
		assert.ErrorIs(t, conf.Validate(), redis.ErrEmptyAddress)

		conf = &redis.Config{Address: "localhost:6379", LockTTL: "soon"}
		conf.EnsureDefaultValue()
		assert.Error(t, conf.Validate())
	})
}
