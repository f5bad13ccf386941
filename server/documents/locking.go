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

package documents

import (
	"context"
	"time"

	"github.com/docroom/revisor/server/backend"
	"github.com/docroom/revisor/server/backend/sync"
	"github.com/docroom/revisor/server/logging"
)

// lock acquires the lockers of the given keys in order, each waiting at most
// the configured lock timeout. On failure the lockers already held are
// released. The returned function releases every locker in reverse order.
func lock(ctx context.Context, be *backend.Backend, keys ...sync.Key) (func(), error) {
	start := time.Now()
	var held []sync.Locker

	unlock := func() {
		// NOTE: release even if the operation's ctx was cancelled.
		releaseCtx := context.WithoutCancel(ctx)
		for i := len(held) - 1; i >= 0; i-- {
			if err := held[i].Unlock(releaseCtx); err != nil {
				logging.From(ctx).Errorf("unlock %s: %v", keys[i], err)
			}
		}
	}

	for _, key := range keys {
		locker, err := be.Lockers.NewLocker(ctx, key)
		if err != nil {
			unlock()
			return nil, err
		}

		lockCtx, cancel := context.WithTimeout(ctx, be.LockTimeout())
		err = locker.Lock(lockCtx)
		cancel()
		if err != nil {
			unlock()
			return nil, err
		}
		held = append(held, locker)
	}

	if be.Metrics != nil {
		be.Metrics.ObserveLockWait(time.Since(start))
	}
	return unlock, nil
}

// observe records the outcome of an operation in the metrics.
func observe(be *backend.Backend, operation string, start time.Time, err error) {
	if be.Metrics == nil {
		return
	}
	be.Metrics.ObserveOperation(be.Config.Hostname, operation, err, time.Since(start))
}
