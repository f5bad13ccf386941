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

package server_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docroom/revisor/server"
)

func TestNewConfigFromFile(t *testing.T) {
	t.Run("fail read config file test", func(t *testing.T) {
		conf := server.NewConfig()
		_, err := server.NewConfigFromFile("nowhere.yml")
		assert.Error(t, err)

		assert.Equal(t, server.DefaultProfilingPort, conf.Profiling.Port)
		assert.Equal(t, server.DefaultLockTimeout, conf.Backend.LockTimeout)
		assert.Nil(t, conf.Mongo)
		assert.Nil(t, conf.Redis)
		assert.NoError(t, conf.Validate())
	})

	t.Run("read config file test", func(t *testing.T) {
		conf, err := server.NewConfigFromFile("config.sample.yml")
		require.NoError(t, err)
		assert.NoError(t, conf.Validate())

		assert.Equal(t, server.DefaultProfilingPort, conf.Profiling.Port)
		assert.Equal(t, server.DefaultHousekeepingInterval, conf.Housekeeping.Interval)
		assert.Equal(t, server.DefaultHousekeepingCandidatesLimit, conf.Housekeeping.CandidatesLimit)
		assert.Equal(t, server.DefaultLockTimeout, conf.Backend.LockTimeout)

		require.NotNil(t, conf.Mongo)
		assert.Equal(t, server.DefaultMongoConnectionURI, conf.Mongo.ConnectionURI)
		assert.Equal(t, server.DefaultMongoConnectionTimeout, conf.Mongo.ConnectionTimeout)
		assert.Equal(t, server.DefaultMongoPingTimeout, conf.Mongo.PingTimeout)
		assert.Equal(t, server.DefaultMongoDatabase, conf.Mongo.Database)

		require.NotNil(t, conf.Redis)
		assert.Equal(t, "localhost:6379", conf.Redis.Address)
		assert.Equal(t, server.DefaultRedisLockTTL, conf.Redis.LockTTL)
		assert.Equal(t, server.DefaultRedisLockRetryInterval, conf.Redis.LockRetryInterval)

		assert.Nil(t, conf.Kafka)
	})

	t.Run("invalid config test", func(t *testing.T) {
		conf := server.NewConfig()
		conf.Backend.LockTimeout = "soon"
		assert.Error(t, conf.Validate())

		conf = server.NewConfig()
		conf.Profiling.Port = -1
		assert.Error(t, conf.Validate())
	})
}
