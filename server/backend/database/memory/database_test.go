/*
 * Copyright 2021 The Yorkie Authors. All rights reserved.
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

package memory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/docroom/revisor/server/backend/database/memory"
	"github.com/docroom/revisor/server/backend/database/testcases"
)

func TestDB(t *testing.T) {
	db, err := memory.New()
	assert.NoError(t, err)
	defer func() { assert.NoError(t, db.Close()) }()

	t.Run("NextOrder test", func(t *testing.T) {
		testcases.RunNextOrderTest(t, db)
	})

	t.Run("Revisions test", func(t *testing.T) {
		testcases.RunRevisionsTest(t, db)
	})

	t.Run("Documents test", func(t *testing.T) {
		testcases.RunDocumentsTest(t, db)
	})

	t.Run("Rooms test", func(t *testing.T) {
		testcases.RunRoomsTest(t, db)
	})

	t.Run("Events and comments test", func(t *testing.T) {
		testcases.RunEventsAndCommentsTest(t, db)
	})

	t.Run("Transaction test", func(t *testing.T) {
		testcases.RunTransactionTest(t, db)
	})
}
