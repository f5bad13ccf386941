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

package plugins_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/docroom/revisor/api/types"
	"github.com/docroom/revisor/server/plugins"
)

func TestRegistry(t *testing.T) {
	registry := plugins.Default(plugins.DefaultCDNPrefix)

	t.Run("types test", func(t *testing.T) {
		assert.Equal(t, []string{"file", "image", "markdown", "separator"}, registry.Types())
	})

	t.Run("validate test", func(t *testing.T) {
		tests := []struct {
			name        string
			sectionType string
			content     types.Content
			wantErr     error
		}{
			{"markdown", "markdown", types.Content{"text": "# hi"}, nil},
			{"markdown wrong type", "markdown", types.Content{"text": 1}, plugins.ErrInvalidContent},
			{"markdown unknown field", "markdown", types.Content{"text": "a", "x": 1}, plugins.ErrInvalidContent},
			{"image", "image", types.Content{"sourceUrl": "cdn://a.png", "alt": "a"}, nil},
			{"image without source", "image", types.Content{"alt": "a"}, plugins.ErrInvalidContent},
			{"file", "file", types.Content{"fileUrl": "cdn://a.pdf", "name": "a.pdf", "size": 10}, nil},
			{"separator", "separator", types.Content{}, nil},
			{"separator with content", "separator", types.Content{"text": "a"}, plugins.ErrInvalidContent},
			{"unknown", "video", types.Content{}, plugins.ErrUnknownSectionType},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				err := registry.Validate(tt.sectionType, tt.content)
				if tt.wantErr == nil {
					assert.NoError(t, err)
				} else {
					assert.ErrorIs(t, err, tt.wantErr)
				}
			})
		}
	})

	t.Run("extract resources test", func(t *testing.T) {
		now := time.Now()
		sections := []*types.Section{
			{Key: "s1", Type: "markdown", Content: types.Content{
				"text": "See ![diagram](cdn://img/b.png) and [spec](cdn://docs/a.pdf) or [site](https://example.com).",
			}},
			{Key: "s2", Type: "image", Content: types.Content{"sourceUrl": "cdn://img/b.png"}},
			{Key: "s3", Type: "file", Content: types.Content{"fileUrl": "https://elsewhere/c.zip", "name": "c"}},
			{Key: "s4", Type: "image", DeletedOn: &now},
			{Key: "s5", Type: "separator", Content: types.Content{}},
		}

		assert.Equal(t, []string{"cdn://docs/a.pdf", "cdn://img/b.png"}, registry.ExtractResources(sections))
		assert.Equal(t, []string{}, registry.ExtractResources(nil))
	})

	t.Run("validate sections skips deleted test", func(t *testing.T) {
		now := time.Now()
		sections := []*types.Section{
			{Key: "s1", Type: "markdown", Content: types.Content{"text": "a"}},
			{Key: "s2", Type: "image", DeletedOn: &now},
		}
		assert.NoError(t, registry.ValidateSections(sections))

		sections = append(sections, &types.Section{Key: "s3", Type: "image", Content: types.Content{}})
		assert.ErrorIs(t, registry.ValidateSections(sections), plugins.ErrInvalidContent)
	})
}
