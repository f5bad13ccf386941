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

package housekeeping_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docroom/revisor/api/types"
	"github.com/docroom/revisor/server/backend/housekeeping"
	"github.com/docroom/revisor/server/backend/sync"
	"github.com/docroom/revisor/server/backend/sync/memory"
)

func TestHousekeeping(t *testing.T) {
	ctx := context.Background()
	conf := &housekeeping.Config{Interval: "1h", CandidatesLimit: 2}

	t.Run("cursor advances across passes test", func(t *testing.T) {
		h, err := housekeeping.New(conf, memory.NewLockerManager())
		require.NoError(t, err)

		pages := map[types.ID]types.ID{"": "b", "b": "d", "d": ""}
		var seen []types.ID
		h.RegisterTask("consolidate", func(ctx context.Context, after types.ID, limit int) (types.ID, int, error) {
			assert.Equal(t, 2, limit)
			seen = append(seen, after)
			return pages[after], 1, nil
		})

		for i := 0; i < 4; i++ {
			h.RunOnce(ctx)
		}
		assert.Equal(t, []types.ID{"", "b", "d", ""}, seen)
	})

	t.Run("task is skipped while locked elsewhere test", func(t *testing.T) {
		lockers := memory.NewLockerManager()
		h, err := housekeeping.New(conf, lockers)
		require.NoError(t, err)

		calls := 0
		h.RegisterTask("consolidate", func(ctx context.Context, after types.ID, limit int) (types.ID, int, error) {
			calls++
			return "", 0, nil
		})

		other, err := lockers.NewLocker(ctx, sync.NewKey("housekeeping", "consolidate"))
		require.NoError(t, err)
		require.NoError(t, other.Lock(ctx))

		h.RunOnce(ctx)
		assert.Equal(t, 0, calls)

		require.NoError(t, other.Unlock(ctx))
		h.RunOnce(ctx)
		assert.Equal(t, 1, calls)
	})

	t.Run("failed task keeps its cursor test", func(t *testing.T) {
		h, err := housekeeping.New(conf, memory.NewLockerManager())
		require.NoError(t, err)

		var seen []types.ID
		fail := true
		h.RegisterTask("consolidate", func(ctx context.Context, after types.ID, limit int) (types.ID, int, error) {
			seen = append(seen, after)
			if fail {
				fail = false
				return "", 0, errors.New("boom")
			}
			return "x", 0, nil
		})

		h.RunOnce(ctx)
		h.RunOnce(ctx)
		h.RunOnce(ctx)
		assert.Equal(t, []types.ID{"", "", "x"}, seen)
	})

	t.Run("start and stop test", func(t *testing.T) {
		h, err := housekeeping.New(conf, memory.NewLockerManager())
		require.NoError(t, err)
		require.NoError(t, h.Start())
		assert.NoError(t, h.Stop())
	})
}
