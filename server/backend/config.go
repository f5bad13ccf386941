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

package backend

import (
	"fmt"
	"os"
	"time"

	"github.com/docroom/revisor/server/plugins"
)

// DefaultLockTimeout is the default time an operation waits for its locks.
const DefaultLockTimeout = "10s"

// Config is the configuration for creating a Backend instance.
type Config struct {
	// LockTimeout is how long an operation waits for the document and room
	// locks before failing. Default is "10s".
	LockTimeout string `yaml:"LockTimeout"`

	// RecordRevisionEvents is whether appended revisions are recorded in the
	// event store and published to the message broker.
	RecordRevisionEvents bool `yaml:"RecordRevisionEvents"`

	// CDNPrefix is the prefix of references that are hosted on the CDN.
	CDNPrefix string `yaml:"CDNPrefix"`

	// Hostname is revisor server hostname. hostname is used by metrics.
	Hostname string `yaml:"Hostname"`
}

// EnsureDefaultValue fills unset fields with their defaults.
func (c *Config) EnsureDefaultValue() {
	if c.LockTimeout == "" {
		c.LockTimeout = DefaultLockTimeout
	}
	if c.CDNPrefix == "" {
		c.CDNPrefix = plugins.DefaultCDNPrefix
	}
}

// Validate validates this config.
func (c *Config) Validate() error {
	timeout, err := time.ParseDuration(c.LockTimeout)
	if err != nil {
		return fmt.Errorf(
			`invalid argument "%s" for "--lock-timeout" flag: %w`,
			c.LockTimeout,
			err,
		)
	}
	if timeout <= 0 {
		return fmt.Errorf(`invalid argument "%s" for "--lock-timeout" flag: must be positive`, c.LockTimeout)
	}

	return nil
}

// ParseLockTimeout returns the lock timeout.
func (c *Config) ParseLockTimeout() time.Duration {
	result, err := time.ParseDuration(c.LockTimeout)
	if err != nil {
		fmt.Fprintln(os.Stderr, "parse lock timeout: %w", err)
		os.Exit(1)
	}

	return result
}
