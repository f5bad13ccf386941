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

// Package backend provides the backend implementation of revisor. This
// package is responsible for managing the database, the lockers and the
// other resources the document operations run against.
package backend

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/docroom/revisor/server/authz"
	"github.com/docroom/revisor/server/backend/background"
	"github.com/docroom/revisor/server/backend/database"
	memdb "github.com/docroom/revisor/server/backend/database/memory"
	"github.com/docroom/revisor/server/backend/database/mongo"
	"github.com/docroom/revisor/server/backend/housekeeping"
	"github.com/docroom/revisor/server/backend/messagebroker"
	"github.com/docroom/revisor/server/backend/sync"
	memsync "github.com/docroom/revisor/server/backend/sync/memory"
	"github.com/docroom/revisor/server/backend/sync/redis"
	"github.com/docroom/revisor/server/logging"
	"github.com/docroom/revisor/server/plugins"
	"github.com/docroom/revisor/server/profiling/prometheus"
)

// Backend manages revisor's backend such as Database and Lockers.
type Backend struct {
	Config *Config

	// DB is the database instance.
	DB database.Database
	// Lockers is used to lock/unlock documents and rooms.
	Lockers sync.LockerManager
	// Registry validates section content and extracts CDN resources.
	Registry *plugins.Registry
	// Authorizer decides whether users may perform operations.
	Authorizer authz.Authorizer

	// Background is used to manage background tasks.
	Background *background.Background
	// Housekeeping is used to manage background batch tasks.
	Housekeeping *housekeeping.Housekeeping

	// Metrics is used to expose metrics.
	Metrics *prometheus.Metrics
	// MsgBroker is the message producer instance.
	MsgBroker messagebroker.Broker

	// Clock returns the current time. It is replaced in tests.
	Clock func() time.Time
}

// New creates a new instance of Backend.
func New(
	conf *Config,
	mongoConf *mongo.Config,
	redisConf *redis.Config,
	housekeepingConf *housekeeping.Config,
	metrics *prometheus.Metrics,
	kafkaConf *messagebroker.Config,
) (*Backend, error) {
	// 01. Build the server info with the given hostname or the hostname of the
	// current machine.
	if conf.Hostname == "" {
		hostname, err := os.Hostname()
		if err != nil {
			return nil, fmt.Errorf("os.Hostname: %w", err)
		}
		conf.Hostname = hostname
	}

	// 02. Create the lockers. If the Redis configuration is given, locks are
	// shared between servers. Otherwise, they are local to this process.
	var lockers sync.LockerManager = memsync.NewLockerManager()
	if redisConf != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		redisLockers, err := redis.Dial(ctx, redisConf)
		if err != nil {
			return nil, err
		}
		lockers = redisLockers
	}

	// 03. Create the database instance. If the MongoDB configuration is given,
	// create a MongoDB instance. Otherwise, create a memory database instance.
	var db database.Database
	var err error
	if mongoConf != nil {
		db, err = mongo.Dial(mongoConf)
	} else {
		db, err = memdb.New()
	}
	if err != nil {
		return nil, err
	}

	// 04. Create the housekeeping instance and the background task manager.
	housekeeper, err := housekeeping.New(housekeepingConf, lockers)
	if err != nil {
		return nil, err
	}
	bg := background.New(metrics)

	// 05. Create the message broker instance.
	broker := messagebroker.Ensure(kafkaConf)

	logging.DefaultLogger().Infof(
		"backend created: hostname: %s, db: %T, lockers: %T",
		conf.Hostname,
		db,
		lockers,
	)

	return &Backend{
		Config:       conf,
		DB:           db,
		Lockers:      lockers,
		Registry:     plugins.Default(conf.CDNPrefix),
		Authorizer:   authz.NewDefault(),
		Background:   bg,
		Housekeeping: housekeeper,
		Metrics:      metrics,
		MsgBroker:    broker,
		Clock:        time.Now,
	}, nil
}

// Start starts the backend.
func (b *Backend) Start() error {
	if err := b.Housekeeping.Start(); err != nil {
		return err
	}

	logging.DefaultLogger().Infof("backend started")
	return nil
}

// Shutdown closes all resources of this instance.
func (b *Backend) Shutdown() error {
	var errs []error

	if err := b.Housekeeping.Stop(); err != nil {
		errs = append(errs, err)
	}

	b.Background.Close()

	if err := b.MsgBroker.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := b.Lockers.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := b.DB.Close(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	logging.DefaultLogger().Infof("backend stopped")
	return nil
}

// Now returns the current time in UTC truncated to milliseconds, the
// precision every store keeps.
func (b *Backend) Now() time.Time {
	return b.Clock().UTC().Truncate(time.Millisecond)
}

// LockTimeout returns how long operations wait for their locks.
func (b *Backend) LockTimeout() time.Duration {
	return b.Config.ParseLockTimeout()
}
