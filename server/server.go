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

// Package server provides the revisor server which is the main entry point of
// the revisor system. The server is responsible for starting the backend,
// the housekeeping tasks and the profiling server.
package server

import (
	"context"
	gosync "sync"
	"time"

	"github.com/docroom/revisor/server/backend"
	"github.com/docroom/revisor/server/documents"
	"github.com/docroom/revisor/server/profiling"
	"github.com/docroom/revisor/server/profiling/prometheus"
)

// shutdownTimeout bounds a graceful shutdown of the profiling server.
const shutdownTimeout = 5 * time.Second

// Revisor is a server of revisor.
type Revisor struct {
	lock gosync.Mutex

	conf            *Config
	backend         *backend.Backend
	profilingServer *profiling.Server

	shutdown   bool
	shutdownCh chan struct{}
}

// New creates a new instance of Revisor.
func New(conf *Config) (*Revisor, error) {
	if err := conf.Validate(); err != nil {
		return nil, err
	}

	metrics, err := prometheus.NewMetrics()
	if err != nil {
		return nil, err
	}

	be, err := backend.New(
		conf.Backend,
		conf.Mongo,
		conf.Redis,
		conf.Housekeeping,
		metrics,
		conf.Kafka,
	)
	if err != nil {
		return nil, err
	}

	var profilingServer *profiling.Server
	if conf.Profiling != nil {
		profilingServer = profiling.NewServer(conf.Profiling, metrics)
	}

	return &Revisor{
		conf:            conf,
		backend:         be,
		profilingServer: profilingServer,
		shutdownCh:      make(chan struct{}),
	}, nil
}

// Start starts the housekeeping tasks and the profiling server.
func (r *Revisor) Start() error {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.RegisterHousekeepingTasks(r.backend)

	if err := r.backend.Start(); err != nil {
		return err
	}

	if r.profilingServer != nil {
		return r.profilingServer.Start()
	}
	return nil
}

// Shutdown shuts down this revisor server.
func (r *Revisor) Shutdown(graceful bool) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.shutdown {
		return nil
	}

	if r.profilingServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		r.profilingServer.Shutdown(ctx, graceful)
		cancel()
	}

	if err := r.backend.Shutdown(); err != nil {
		return err
	}

	close(r.shutdownCh)
	r.shutdown = true
	return nil
}

// ShutdownCh returns the shutdown channel.
func (r *Revisor) ShutdownCh() <-chan struct{} {
	return r.shutdownCh
}

// Backend returns the backend of the server. It is used by the document
// commands of the CLI and by tests.
func (r *Revisor) Backend() *backend.Backend {
	return r.backend
}

// RegisterHousekeepingTasks registers housekeeping tasks.
func (r *Revisor) RegisterHousekeepingTasks(be *backend.Backend) {
	be.Housekeeping.RegisterTask("consolidate", documents.ConsolidateCandidates(be))
}
