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

package server

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/docroom/revisor/server/backend"
	"github.com/docroom/revisor/server/backend/database/mongo"
	"github.com/docroom/revisor/server/backend/housekeeping"
	"github.com/docroom/revisor/server/backend/messagebroker"
	"github.com/docroom/revisor/server/backend/sync/redis"
	"github.com/docroom/revisor/server/profiling"
)

// Below are the values of the default values of revisor config.
const (
	DefaultProfilingPort = profiling.DefaultPort

	DefaultHousekeepingInterval        = housekeeping.DefaultInterval
	DefaultHousekeepingCandidatesLimit = housekeeping.DefaultCandidatesLimit

	DefaultLockTimeout = backend.DefaultLockTimeout

	DefaultMongoConnectionURI     = "mongodb://localhost:27017"
	DefaultMongoConnectionTimeout = mongo.DefaultConnectionTimeout
	DefaultMongoPingTimeout       = mongo.DefaultPingTimeout
	DefaultMongoDatabase          = mongo.DefaultDatabase

	DefaultRedisLockTTL           = redis.DefaultLockTTL
	DefaultRedisLockRetryInterval = redis.DefaultLockRetryInterval

	DefaultKafkaTopic        = "revision-events"
	DefaultKafkaWriteTimeout = messagebroker.DefaultWriteTimeout
)

// Config is the configuration for creating a revisor server instance. Mongo,
// Redis and Kafka are optional; without them the server keeps its data and
// locks in memory and does not publish events.
type Config struct {
	Profiling    *profiling.Config     `yaml:"Profiling"`
	Housekeeping *housekeeping.Config  `yaml:"Housekeeping"`
	Backend      *backend.Config       `yaml:"Backend"`
	Mongo        *mongo.Config         `yaml:"Mongo"`
	Redis        *redis.Config         `yaml:"Redis"`
	Kafka        *messagebroker.Config `yaml:"Kafka"`
}

// NewConfig returns a Config struct that contains reasonable defaults
// for most of the configurations.
func NewConfig() *Config {
	return newConfig(DefaultProfilingPort)
}

// NewConfigFromFile returns a Config struct for the given conf file.
func NewConfigFromFile(path string) (*Config, error) {
	conf := &Config{}
	bytes, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	if err = yaml.Unmarshal(bytes, conf); err != nil {
		return nil, fmt.Errorf("unmarshal config file: %w", err)
	}

	conf.ensureDefaultValue()
	return conf, nil
}

// Validate returns an error if the provided Config is invalidated.
func (c *Config) Validate() error {
	if c.Profiling != nil {
		if err := c.Profiling.Validate(); err != nil {
			return err
		}
	}

	if err := c.Housekeeping.Validate(); err != nil {
		return err
	}

	if err := c.Backend.Validate(); err != nil {
		return err
	}

	if c.Mongo != nil {
		if err := c.Mongo.Validate(); err != nil {
			return err
		}
	}

	if c.Redis != nil {
		if err := c.Redis.Validate(); err != nil {
			return err
		}
	}

	if c.Kafka != nil {
		if err := c.Kafka.Validate(); err != nil {
			return err
		}
	}

	return nil
}

// ensureDefaultValue sets the value of the option to which the default value
// should be applied when the user does not input it.
func (c *Config) ensureDefaultValue() {
	if c.Profiling != nil {
		c.Profiling.EnsureDefaultValue()
	}

	if c.Housekeeping == nil {
		c.Housekeeping = &housekeeping.Config{}
	}
	c.Housekeeping.EnsureDefaultValue()

	if c.Backend == nil {
		c.Backend = &backend.Config{}
	}
	c.Backend.EnsureDefaultValue()

	if c.Mongo != nil {
		if c.Mongo.ConnectionURI == "" {
			c.Mongo.ConnectionURI = DefaultMongoConnectionURI
		}
		c.Mongo.EnsureDefaultValue()
	}

	if c.Redis != nil {
		c.Redis.EnsureDefaultValue()
	}

	if c.Kafka != nil && c.Kafka.Addresses != "" {
		if c.Kafka.Topic == "" {
			c.Kafka.Topic = DefaultKafkaTopic
		}
		c.Kafka.EnsureDefaultValue()
	}
}

func newConfig(profilingPort int) *Config {
	return &Config{
		Profiling: &profiling.Config{
			Port: profilingPort,
		},
		Housekeeping: &housekeeping.Config{
			Interval:        DefaultHousekeepingInterval,
			CandidatesLimit: DefaultHousekeepingCandidatesLimit,
		},
		Backend: &backend.Config{
			LockTimeout: DefaultLockTimeout,
		},
	}
}
