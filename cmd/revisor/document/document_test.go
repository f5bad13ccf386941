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

package document

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docroom/revisor/api/types"
	"github.com/docroom/revisor/pkg/errors"
)

func TestDocumentCommands(t *testing.T) {
	t.Run("document id argument test", func(t *testing.T) {
		id := types.NewID()
		parsed, err := documentID([]string{id.String()})
		require.NoError(t, err)
		assert.Equal(t, id, parsed)

		_, err = documentID(nil)
		assert.Error(t, err)

		_, err = documentID([]string{"not-an-id"})
		assert.ErrorIs(t, err, types.ErrInvalidID)
	})

	t.Run("mongo required test", func(t *testing.T) {
		_, err := openServer()
		assert.ErrorIs(t, err, ErrMongoRequired)
	})

	t.Run("print violations test", func(t *testing.T) {
		buf := &bytes.Buffer{}
		cmd := &cobra.Command{}
		cmd.SetOut(buf)

		violations := []errors.Violation{{Subject: "document", Field: "title", Message: "does not match revision chain"}}
		require.NoError(t, printViolations(cmd, "", violations))
		assert.Contains(t, buf.String(), "does not match revision chain")

		buf.Reset()
		require.NoError(t, printViolations(cmd, "json", violations))
		assert.Contains(t, buf.String(), `"Subject": "document"`)

		assert.Error(t, printViolations(cmd, "xml", violations))
	})
}
