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

// Package helper provides helper functions for testing.
package helper

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docroom/revisor/api/types"
	"github.com/docroom/revisor/server/backend"
	"github.com/docroom/revisor/server/backend/housekeeping"
	"github.com/docroom/revisor/server/backend/messagebroker"
	"github.com/docroom/revisor/server/plugins"
	"github.com/docroom/revisor/server/profiling/prometheus"
)

var (
	// LockTimeout is the lock timeout of test backends.
	LockTimeout = "1s"

	// HousekeepingInterval is the housekeeping interval of test backends.
	HousekeepingInterval = "1h"

	// CDNPrefix is the CDN prefix of test backends.
	CDNPrefix = plugins.DefaultCDNPrefix
)

// BackendOption customizes the backend built by TestBackend.
type BackendOption func(conf *backend.Config)

// WithRevisionEvents enables the recording of revision events.
func WithRevisionEvents() BackendOption {
	return func(conf *backend.Config) {
		conf.RecordRevisionEvents = true
	}
}

// TestBackend creates an in-memory backend that is shut down when the test
// ends. Published messages are kept by a RecordingBroker.
func TestBackend(t *testing.T, opts ...BackendOption) *backend.Backend {
	conf := &backend.Config{
		LockTimeout: LockTimeout,
		CDNPrefix:   CDNPrefix,
		Hostname:    "test",
	}
	for _, opt := range opts {
		opt(conf)
	}
	conf.EnsureDefaultValue()
	require.NoError(t, conf.Validate())

	metrics, err := prometheus.NewMetrics()
	require.NoError(t, err)

	be, err := backend.New(
		conf,
		nil,
		nil,
		&housekeeping.Config{
			Interval:        HousekeepingInterval,
			CandidatesLimit: housekeeping.DefaultCandidatesLimit,
		},
		metrics,
		nil,
	)
	require.NoError(t, err)
	be.MsgBroker = &messagebroker.RecordingBroker{}

	t.Cleanup(func() {
		assert.NoError(t, be.Shutdown())
	})
	return be
}

// NewUser creates a user with a fresh id and the given permissions.
func NewUser(name string, permissions ...types.Permission) *types.User {
	return &types.User{
		ID:          types.NewID(),
		Name:        name,
		Permissions: permissions,
	}
}

// Admin creates a user holding every permission.
func Admin() *types.User {
	return NewUser(
		"admin",
		types.PermissionManagePublicContext,
		types.PermissionHardDeleteSection,
		types.PermissionRestoreRevision,
		types.PermissionDeletePrivateDocument,
	)
}

// NewRoom stores a room owned by owner with the given members.
func NewRoom(
	t *testing.T,
	be *backend.Backend,
	owner *types.User,
	collaborative bool,
	members ...*types.User,
) *types.Room {
	room := &types.Room{
		ID:              types.NewID(),
		Name:            owner.Name + "'s room",
		Owner:           owner.ID,
		IsCollaborative: collaborative,
		Documents:       []types.ID{},
	}
	for _, m := range members {
		room.Members = append(room.Members, &types.RoomMember{
			UserID:   m.ID,
			JoinedOn: time.Now().UTC(),
		})
	}

	require.NoError(t, be.DB.UpsertRoom(context.Background(), room))
	return room
}

// Markdown returns a markdown section with the given key and text.
func Markdown(key, text string) *types.SectionFields {
	return &types.SectionFields{
		Key:     key,
		Type:    "markdown",
		Content: types.Content{"text": text},
	}
}

// Image returns an image section with the given key and source.
func Image(key, sourceURL string) *types.SectionFields {
	return &types.SectionFields{
		Key:     key,
		Type:    "image",
		Content: types.Content{"sourceUrl": sourceURL},
	}
}

// Sections returns the given sections as the pointer used by updates.
func Sections(sections ...*types.SectionFields) *[]*types.SectionFields {
	return &sections
}

// String returns a pointer to s.
func String(s string) *string {
	return &s
}
