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

package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		code   StatusCode
		want   string
		client bool
		server bool
	}{
		{ErrCodeInvalidArgument, "invalid_argument", true, false},
		{ErrCodeNotFound, "not_found", true, false},
		{ErrCodeAlreadyExists, "already_exists", true, false},
		{ErrCodePermissionDenied, "permission_denied", true, false},
		{ErrCodeFailedPrecondition, "failed_precondition", true, false},
		{ErrCodeInternal, "internal", false, true},
		{ErrCodeUnavailable, "unavailable", false, true},
		{StatusCode(42), "code_42", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.code.String())
			assert.Equal(t, tt.client, tt.code.IsClientError())
			assert.Equal(t, tt.server, tt.code.IsServerError())
		})
	}
}

func TestStatusOf(t *testing.T) {
	errNotFound := NotFound("document not found").WithCode("ErrDocumentNotFound")

	t.Run("wrapped status error test", func(t *testing.T) {
		wrapped := fmt.Errorf("doc-1: %w", errNotFound)
		assert.Equal(t, ErrCodeNotFound, StatusOf(wrapped))
		assert.Equal(t, "ErrDocumentNotFound", CodeOf(wrapped))
		assert.True(t, Is(wrapped, errNotFound))
		assert.True(t, IsClientError(wrapped))
	})

	t.Run("plain error test", func(t *testing.T) {
		assert.Equal(t, StatusCode(0), StatusOf(New("boom")))
		assert.Equal(t, StatusCode(0), StatusOf(nil))
		assert.False(t, IsServerError(New("boom")))
	})

	t.Run("with code keeps identity of status test", func(t *testing.T) {
		err := Unavailable("lock timeout")
		coded := err.WithCode("ErrLockTimeout")
		assert.Equal(t, ErrCodeUnavailable, coded.Status())
		assert.Equal(t, "", err.Code())
		assert.Equal(t, "ErrLockTimeout", coded.Code())
	})
}

func TestCollector(t *testing.T) {
	t.Run("empty collector test", func(t *testing.T) {
		c := &Collector{}
		assert.NoError(t, c.Err())
	})

	t.Run("aggregate test", func(t *testing.T) {
		c := &Collector{}
		c.Add("document", "title", "is required")
		c.Addf("revision 2", "", "room id %q differs from %q", "a", "b")

		err := c.Err()
		assert.Error(t, err)

		var agg *AggregateError
		assert.True(t, As(err, &agg))
		assert.True(t, agg.Irrecoverable)
		assert.Len(t, agg.Violations, 2)
		assert.Equal(t, ErrCodeInternal, StatusOf(err))
		assert.Contains(t, err.Error(), "document: title: is required")
		assert.Contains(t, err.Error(), `revision 2: room id "a" differs from "b"`)
	})
}
