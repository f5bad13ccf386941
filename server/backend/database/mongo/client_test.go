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

package mongo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/docroom/revisor/api/types"
	"github.com/docroom/revisor/server/backend/database/testcases"
)

const testMongoConnectionURI = "mongodb://localhost:27017"

func setupTestWithDummyData(t *testing.T) *Client {
	config := &Config{
		ConnectionTimeout: "2s",
		ConnectionURI:     testMongoConnectionURI,
		Database:          "revisor-test-" + types.NewID().String(),
		PingTimeout:       "1s",
	}
	require.NoError(t, config.Validate())

	cli, err := Dial(config)
	if err != nil {
		t.Skipf("mongo is not reachable at %s: %v", testMongoConnectionURI, err)
	}
	t.Cleanup(func() {
		assert.NoError(t, cli.db.Drop(context.Background()))
		assert.NoError(t, cli.Close())
	})
	return cli
}

func bsonDoc(key, value string) primitive.D {
	return primitive.D{{Key: key, Value: value}}
}

func isReplicaSet(t *testing.T, cli *Client) bool {
	var hello struct {
		SetName string `bson:"setName"`
	}
	err := cli.db.RunCommand(context.Background(), primitive.D{{Key: "hello", Value: 1}}).Decode(&hello)
	require.NoError(t, err)
	return hello.SetName != ""
}

func TestClient(t *testing.T) {
	cli := setupTestWithDummyData(t)

	t.Run("NextOrder test", func(t *testing.T) {
		testcases.RunNextOrderTest(t, cli)
	})

	t.Run("Revisions test", func(t *testing.T) {
		testcases.RunRevisionsTest(t, cli)
	})

	t.Run("Documents test", func(t *testing.T) {
		testcases.RunDocumentsTest(t, cli)
	})

	t.Run("Rooms test", func(t *testing.T) {
		testcases.RunRoomsTest(t, cli)
	})

	t.Run("Events and comments test", func(t *testing.T) {
		testcases.RunEventsAndCommentsTest(t, cli)
	})

	t.Run("Transaction test", func(t *testing.T) {
		if !isReplicaSet(t, cli) {
			t.Skip("transactions need a replica set")
		}
		testcases.RunTransactionTest(t, cli)
	})
}

func TestRecords(t *testing.T) {
	t.Run("context discriminator test", func(t *testing.T) {
		public := &types.PublicContext{
			Protected:      true,
			Review:         types.ReviewRequested,
			AllowedEditors: []types.ID{"editor"},
		}
		record, err := toContextRecord(public)
		require.NoError(t, err)
		assert.Equal(t, contextKindPublic, record.Kind)

		decoded, err := record.toContext()
		require.NoError(t, err)
		assert.Equal(t, public, decoded)

		record, err = toContextRecord(&types.RoomContext{Draft: true})
		require.NoError(t, err)
		decoded, err = record.toContext()
		require.NoError(t, err)
		assert.Equal(t, &types.RoomContext{Draft: true}, decoded)

		_, err = contextRecord{Kind: "unknown"}.toContext()
		assert.ErrorIs(t, err, types.ErrContextMismatch)
	})

	t.Run("nested content normalize test", func(t *testing.T) {
		deletedOn := time.Now().UTC()
		records := []sectionRecord{{
			Key:      "s1",
			Revision: "r1",
			Type:     "markdown",
			Content: map[string]interface{}{
				"nested": bsonDoc("a", "b"),
			},
		}, {
			Key:       "s2",
			Revision:  "r2",
			Type:      "markdown",
			DeletedOn: &deletedOn,
		}}

		sections := fromSectionRecords(records)
		require.Len(t, sections, 2)
		assert.Equal(t, map[string]interface{}{"a": "b"}, sections[0].Content["nested"])
		assert.Nil(t, sections[1].Content)
		assert.True(t, sections[1].IsDeleted())
	})

	t.Run("detached context is cancelled with parent test", func(t *testing.T) {
		parent, cancelParent := context.WithCancel(context.Background())
		detached, cancel := detachSession(parent)
		defer cancel()

		cancelParent()
		select {
		case <-detached.Done():
		case <-time.After(time.Second):
			t.Fatal("detached context was not cancelled")
		}
	})
}
