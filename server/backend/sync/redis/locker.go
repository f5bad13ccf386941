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

// Package redis provides a LockerManager whose locks are shared by every
// server connected to the same redis. Locks are advisory: a lock expires
// after its TTL even if the holder did not release it.
package redis

import (
	"context"
	"fmt"
	gosync "sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/xid"

	"github.com/docroom/revisor/server/backend/sync"
	"github.com/docroom/revisor/server/logging"
)

// unlockScript deletes the key only if it still holds the token of the
// caller, so that an expired lock taken over by another server is kept.
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// LockerManager hands out lockers backed by redis keys.
type LockerManager struct {
	config *Config
	client *redis.Client
}

// Dial creates an instance of LockerManager and checks the connection.
func Dial(ctx context.Context, conf *Config) (*LockerManager, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     conf.Address,
		Password: conf.Password,
		DB:       conf.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", conf.Address, err)
	}

	logging.DefaultLogger().Infof("redis locker connected, URI: %s", conf.Address)

	return &LockerManager{
		config: conf,
		client: client,
	}, nil
}

// NewLocker creates locker of the given key.
func (m *LockerManager) NewLocker(_ context.Context, key sync.Key) (sync.Locker, error) {
	return &internalLocker{
		client:   m.client,
		key:      key,
		redisKey: m.config.KeyPrefix + key.String(),
		token:    xid.New().String(),
		ttl:      m.config.ParseLockTTL(),
		retry:    m.config.ParseLockRetryInterval(),
	}, nil
}

// Close closes the redis client.
func (m *LockerManager) Close() error {
	if err := m.client.Close(); err != nil {
		return fmt.Errorf("close redis client: %w", err)
	}
	return nil
}

type internalLocker struct {
	client   *redis.Client
	key      sync.Key
	redisKey string
	token    string
	ttl      time.Duration
	retry    time.Duration

	mu   gosync.Mutex
	held bool
}

func (il *internalLocker) acquire(ctx context.Context) (bool, error) {
	ok, err := il.client.SetNX(ctx, il.redisKey, il.token, il.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("set %s: %w", il.redisKey, err)
	}
	if ok {
		il.mu.Lock()
		il.held = true
		il.mu.Unlock()
	}
	return ok, nil
}

// Lock polls SET NX until the key is free or ctx expires.
func (il *internalLocker) Lock(ctx context.Context) error {
	ticker := time.NewTicker(il.retry)
	defer ticker.Stop()

	for {
		ok, err := il.acquire(ctx)
		if ok {
			return nil
		}
		if ctx.Err() != nil {
			return sync.LockTimeoutError(il.key)
		}
		if err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return sync.LockTimeoutError(il.key)
		case <-ticker.C:
		}
	}
}

// TryLock locks the mutex if not already locked by another session.
func (il *internalLocker) TryLock(ctx context.Context) error {
	ok, err := il.acquire(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return sync.ErrAlreadyLocked
	}
	return nil
}

// Unlock deletes the key if it is still ours.
func (il *internalLocker) Unlock(ctx context.Context) error {
	il.mu.Lock()
	defer il.mu.Unlock()

	if !il.held {
		return nil
	}
	il.held = false

	// NOTE: release even when the caller's context is already done.
	if err := unlockScript.Run(context.WithoutCancel(ctx), il.client, []string{il.redisKey}, il.token).Err(); err != nil {
		return fmt.Errorf("unlock %s: %w", il.redisKey, err)
	}
	return nil
}
