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
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docroom/revisor/api/types"
	"github.com/docroom/revisor/server"
	"github.com/docroom/revisor/server/documents"
	"github.com/docroom/revisor/test/helper"
)

func TestServer(t *testing.T) {
	conf := server.NewConfig()
	conf.Profiling = nil
	conf.Housekeeping.Interval = "1h"

	r, err := server.New(conf)
	require.NoError(t, err)
	require.NoError(t, r.Start())

	ctx := context.Background()
	be := r.Backend()
	doc, err := documents.Create(ctx, be, helper.NewUser("alice"), &types.CreateDocumentFields{
		Title:    "served",
		Sections: []*types.SectionFields{helper.Image("img", "cdn://img.png")},
	})
	require.NoError(t, err)

	revisions, err := be.DB.FindRevisionsByDocumentID(ctx, doc.ID)
	require.NoError(t, err)
	stale := revisions[0].DeepCopy()
	stale.CDNResources = nil
	require.NoError(t, be.DB.UpsertRevisions(ctx, []*types.Revision{stale}))

	// the registered consolidation task repairs the stale revision
	be.Housekeeping.RunOnce(ctx)
	assert.NoError(t, documents.Validate(ctx, be, doc.ID))

	assert.NoError(t, r.Shutdown(true))
	<-r.ShutdownCh()
	assert.NoError(t, r.Shutdown(true))
}
