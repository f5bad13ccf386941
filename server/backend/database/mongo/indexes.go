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
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Below are names and indexes information of collections that stores revisor
// data.
const (
	ColRevisions = "revisions"
	ColDocuments = "documents"
	ColRooms     = "rooms"
	ColEvents    = "events"
	ColComments  = "comments"
	ColCounters  = "counters"
)

type collectionInfo struct {
	name    string
	indexes []mongo.IndexModel
}

var collectionInfos = []collectionInfo{{
	name: ColRevisions,
	indexes: []mongo.IndexModel{{
		Keys: bson.D{{Key: "document_id", Value: 1}, {Key: "order", Value: 1}},
	}},
}, {
	name: ColDocuments,
	indexes: []mongo.IndexModel{{
		Keys: bson.D{{Key: "room_id", Value: 1}},
	}},
}, {
	name: ColRooms,
	indexes: []mongo.IndexModel{{
		Keys: bson.D{{Key: "owner", Value: 1}},
	}},
}, {
	name: ColEvents,
	indexes: []mongo.IndexModel{{
		Keys: bson.D{{Key: "document_id", Value: 1}, {Key: "created_on", Value: 1}},
	}},
}, {
	name: ColComments,
	indexes: []mongo.IndexModel{{
		Keys: bson.D{{Key: "document_id", Value: 1}, {Key: "created_on", Value: 1}},
	}},
}, {
	name: ColCounters,
}}

func ensureIndexes(ctx context.Context, db *mongo.Database) error {
	for _, info := range collectionInfos {
		// NOTE: collections used inside transactions must exist beforehand.
		if err := db.CreateCollection(ctx, info.name); err != nil {
			var cmdErr mongo.CommandError
			if !(errors.As(err, &cmdErr) && cmdErr.Name == "NamespaceExists") {
				return fmt.Errorf("create collection %s: %w", info.name, err)
			}
		}

		if len(info.indexes) == 0 {
			continue
		}
		if _, err := db.Collection(info.name).Indexes().CreateMany(ctx, info.indexes); err != nil {
			return fmt.Errorf("create indexes of %s: %w", info.name, err)
		}
	}
	return nil
}
