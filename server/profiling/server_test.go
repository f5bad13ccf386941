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

package profiling_test

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docroom/revisor/server/profiling"
	"github.com/docroom/revisor/server/profiling/prometheus"
)

func TestServer(t *testing.T) {
	metrics, err := prometheus.NewMetrics()
	require.NoError(t, err)

	metrics.ObserveOperation("test-host", "update", nil, 10*time.Millisecond)
	metrics.ObserveOperation("test-host", "update", errors.New("boom"), time.Millisecond)
	metrics.ObserveLockWait(time.Millisecond)
	metrics.AddConsolidatedRevisions(3)
	metrics.AddRevisionEvent("revision-created")
	metrics.AddBackgroundGoroutines("publish-event")
	metrics.RemoveBackgroundGoroutines("publish-event")

	srv := profiling.NewServer(&profiling.Config{Port: profiling.DefaultPort}, metrics)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	t.Run("metrics endpoint test", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/metrics")
		require.NoError(t, err)
		defer func() { assert.NoError(t, resp.Body.Close()) }()

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, string(body), "revisor_documents_operation_handled_total")
		assert.Contains(t, string(body), "revisor_housekeeping_consolidated_revisions_total 3")
		assert.Contains(t, string(body), "revisor_server_version")
	})

	t.Run("pprof disabled test", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/debug/pprof/")
		require.NoError(t, err)
		defer func() { assert.NoError(t, resp.Body.Close()) }()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}
