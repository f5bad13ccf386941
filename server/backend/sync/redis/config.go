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

package redis

import (
	"errors"
	"fmt"
	"os"
	"time"
)

// ErrEmptyAddress is returned when no redis address is configured.
var ErrEmptyAddress = errors.New("redis address is empty")

const (
	// DefaultLockTTL is the expiry of a held lock, so that locks of crashed
	// servers are released eventually.
	DefaultLockTTL = "30s"

	// DefaultLockRetryInterval is the pause between acquisition attempts.
	DefaultLockRetryInterval = "50ms"

	// DefaultKeyPrefix is prepended to every lock key.
	DefaultKeyPrefix = "revisor:lock:"
)

// Config is the configuration for the redis lockers.
type Config struct {
	Address  string `yaml:"Address"`
	Password string `yaml:"Password"`
	DB       int    `yaml:"DB"`

	// LockTTL is the expiry of a held lock.
	LockTTL string `yaml:"LockTTL"`

	// LockRetryInterval is the pause between two SET NX attempts.
	LockRetryInterval string `yaml:"LockRetryInterval"`

	KeyPrefix string `yaml:"KeyPrefix"`
}

// EnsureDefaultValue fills unset durations with their defaults.
func (c *Config) EnsureDefaultValue() {
	if c.LockTTL == "" {
		c.LockTTL = DefaultLockTTL
	}
	if c.LockRetryInterval == "" {
		c.LockRetryInterval = DefaultLockRetryInterval
	}
	if c.KeyPrefix == "" {
		c.KeyPrefix = DefaultKeyPrefix
	}
}

// Validate returns an error if the provided Config is invalidated.
func (c *Config) Validate() error {
	if c.Address == "" {
		return ErrEmptyAddress
	}

	if _, err := time.ParseDuration(c.LockTTL); err != nil {
		return fmt.Errorf(`invalid argument "%s" for "--redis-lock-ttl" flag: %w`, c.LockTTL, err)
	}

	if _, err := time.ParseDuration(c.LockRetryInterval); err != nil {
		return fmt.Errorf(
			`invalid argument "%s" for "--redis-lock-retry-interval" flag: %w`,
			c.LockRetryInterval,
			err,
		)
	}

	return nil
}

// ParseLockTTL returns the lock TTL.
func (c *Config) ParseLockTTL() time.Duration {
	d, err := time.ParseDuration(c.LockTTL)
	if err != nil {
		fmt.Fprintln(os.Stderr, "parse lock ttl: %w", err)
		os.Exit(1)
	}
	return d
}

// ParseLockRetryInterval returns the retry interval.
func (c *Config) ParseLockRetryInterval() time.Duration {
	d, err := time.ParseDuration(c.LockRetryInterval)
	if err != nil {
		fmt.Fprintln(os.Stderr, "parse lock retry interval: %w", err)
		os.Exit(1)
	}
	return d
}
