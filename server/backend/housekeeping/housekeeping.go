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

package housekeeping

import (
	"context"
	"errors"
	"fmt"
	gosync "sync"
	"time"

	"github.com/docroom/revisor/api/types"
	"github.com/docroom/revisor/server/backend/sync"
	"github.com/docroom/revisor/server/logging"
)

// Task processes up to limit documents whose ids follow after. It returns
// the id to continue from, empty once the last page was visited, and the
// number of documents it changed.
type Task func(ctx context.Context, after types.ID, limit int) (types.ID, int, error)

type task struct {
	name   string
	fn     Task
	cursor types.ID
}

// Housekeeping is the housekeeping service. It periodically runs the
// registered tasks, each under a global lock so that only one server runs a
// task at a time.
type Housekeeping struct {
	lockers sync.LockerManager

	interval        time.Duration
	candidatesLimit int

	tasksMu gosync.Mutex
	tasks   []*task

	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         gosync.WaitGroup
}

// New creates a new housekeeping instance.
func New(conf *Config, lockers sync.LockerManager) (*Housekeeping, error) {
	interval, err := conf.ParseInterval()
	if err != nil {
		return nil, err
	}

	ctx, cancelFunc := context.WithCancel(context.Background())
	ctx = logging.With(ctx, logging.New("HSKP"))

	return &Housekeeping{
		lockers:         lockers,
		interval:        interval,
		candidatesLimit: conf.CandidatesLimit,
		ctx:             ctx,
		cancelFunc:      cancelFunc,
	}, nil
}

// RegisterTask registers a task run on every interval.
func (h *Housekeeping) RegisterTask(name string, fn Task) {
	h.tasksMu.Lock()
	defer h.tasksMu.Unlock()

	h.tasks = append(h.tasks, &task{name: name, fn: fn})
}

// Start starts the housekeeping loop.
func (h *Housekeeping) Start() error {
	h.wg.Add(1)
	go h.run()
	return nil
}

// Stop stops the housekeeping loop and waits for the running pass.
func (h *Housekeeping) Stop() error {
	h.cancelFunc()
	h.wg.Wait()

	return nil
}

func (h *Housekeeping) run() {
	defer h.wg.Done()

	for {
		h.RunOnce(h.ctx)

		select {
		case <-time.After(h.interval):
		case <-h.ctx.Done():
			return
		}
	}
}

// RunOnce runs one pass of every registered task.
func (h *Housekeeping) RunOnce(ctx context.Context) {
	h.tasksMu.Lock()
	tasks := append([]*task{}, h.tasks...)
	h.tasksMu.Unlock()

	for _, t := range tasks {
		if err := h.runTask(ctx, t); err != nil {
			logging.From(ctx).Errorf("HSKP: %s: %v", t.name, err)
		}
	}
}

func (h *Housekeeping) runTask(ctx context.Context, t *task) error {
	start := time.Now()
	locker, err := h.lockers.NewLocker(ctx, sync.NewKey("housekeeping", t.name))
	if err != nil {
		return err
	}

	if err := locker.TryLock(ctx); err != nil {
		if errors.Is(err, sync.ErrAlreadyLocked) {
			return nil
		}
		return err
	}

	defer func() {
		if err := locker.Unlock(ctx); err != nil {
			logging.From(ctx).Error(err)
		}
	}()

	next, changed, err := t.fn(ctx, t.cursor, h.candidatesLimit)
	if err != nil {
		return fmt.Errorf("from %q: %w", t.cursor, err)
	}
	t.cursor = next

	if changed > 0 {
		logging.From(ctx).Infof(
			"HSKP: %s changed %d, %s",
			t.name,
			changed,
			time.Since(start),
		)
	}

	return nil
}
