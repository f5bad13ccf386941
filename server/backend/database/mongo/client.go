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

// Package mongo implements the database interface using MongoDB.
package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/docroom/revisor/api/types"
	"github.com/docroom/revisor/server/backend/database"
	"github.com/docroom/revisor/server/logging"
)

const orderCounter = "order"

// Client is a client that connects to Mongo DB and reads or saves revisor
// data.
type Client struct {
	config *Config
	client *mongo.Client
	db     *mongo.Database
}

// Dial creates an instance of Client and dials the given MongoDB.
func Dial(conf *Config) (*Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), conf.ParseConnectionTimeout())
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(conf.ConnectionURI))
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}

	pingTimeout := conf.ParsePingTimeout()
	ctxPing, cancelPing := context.WithTimeout(context.Background(), pingTimeout)
	defer cancelPing()

	if err := client.Ping(ctxPing, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	db := client.Database(conf.Database)
	if err := ensureIndexes(ctx, db); err != nil {
		return nil, err
	}

	logging.DefaultLogger().Infof("MongoDB connected, URI: %s, DB: %s", conf.ConnectionURI, conf.Database)

	return &Client{
		config: conf,
		client: client,
		db:     db,
	}, nil
}

// Close all resources of this client.
func (c *Client) Close() error {
	if err := c.client.Disconnect(context.Background()); err != nil {
		return fmt.Errorf("close mongo client: %w", err)
	}
	return nil
}

func (c *Client) collection(name string) *mongo.Collection {
	return c.db.Collection(name)
}

// WithTransaction runs fn in a session transaction. Store methods called
// with the session context take part in it. Nested calls join the outer
// transaction.
func (c *Client) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if mongo.SessionFromContext(ctx) != nil {
		return fn(ctx)
	}

	session, err := c.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	if _, err := session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		return nil, fn(sessCtx)
	}); err != nil {
		return err
	}
	return nil
}

// NextOrder increments the order counter. The counter is updated outside of
// the ambient transaction so concurrent transactions do not conflict on it.
// Aborted transactions leave gaps in the sequence.
func (c *Client) NextOrder(ctx context.Context) (int64, error) {
	seqCtx, cancel := detachSession(ctx)
	defer cancel()

	result := c.collection(ColCounters).FindOneAndUpdate(
		seqCtx,
		bson.M{"_id": orderCounter},
		bson.M{"$inc": bson.M{"value": int64(1)}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	)

	var counter counterRecord
	if err := result.Decode(&counter); err != nil {
		return 0, fmt.Errorf("increase order counter: %w", err)
	}
	return counter.Value, nil
}

// detachSession returns a context without the session of ctx that is still
// cancelled together with ctx.
func detachSession(ctx context.Context) (context.Context, context.CancelFunc) {
	var detached context.Context
	var cancel context.CancelFunc
	if deadline, ok := ctx.Deadline(); ok {
		detached, cancel = context.WithDeadline(context.Background(), deadline)
	} else {
		detached, cancel = context.WithCancel(context.Background())
	}
	stop := context.AfterFunc(ctx, cancel)
	return detached, func() {
		stop()
		cancel()
	}
}

// FindRevisionsByDocumentID returns the chain of the given document.
func (c *Client) FindRevisionsByDocumentID(ctx context.Context, docID types.ID) ([]*types.Revision, error) {
	cursor, err := c.collection(ColRevisions).Find(
		ctx,
		bson.M{"document_id": docID.String()},
		options.Find().SetSort(bson.D{{Key: "order", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("find revisions of %s: %w", docID, err)
	}

	var records []revisionRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("fetch revisions of %s: %w", docID, err)
	}

	revisions := make([]*types.Revision, 0, len(records))
	for i := range records {
		rev, err := records[i].toRevision()
		if err != nil {
			return nil, err
		}
		revisions = append(revisions, rev)
	}
	return revisions, nil
}

// FindRevisionByID returns the revision of the given id.
func (c *Client) FindRevisionByID(ctx context.Context, id types.ID) (*types.Revision, error) {
	var record revisionRecord
	if err := c.collection(ColRevisions).FindOne(ctx, bson.M{"_id": id.String()}).Decode(&record); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", id, database.ErrRevisionNotFound)
		}
		return nil, fmt.Errorf("find revision %s: %w", id, err)
	}
	return record.toRevision()
}

// CreateRevision appends a new revision.
func (c *Client) CreateRevision(ctx context.Context, rev *types.Revision) error {
	record, err := toRevisionRecord(rev)
	if err != nil {
		return err
	}

	if _, err := c.collection(ColRevisions).InsertOne(ctx, record); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%s: %w", rev.ID, database.ErrRevisionAlreadyExists)
		}
		return fmt.Errorf("insert revision %s: %w", rev.ID, err)
	}
	return nil
}

// UpsertRevisions writes the given revisions by id.
func (c *Client) UpsertRevisions(ctx context.Context, revs []*types.Revision) error {
	if len(revs) == 0 {
		return nil
	}

	models := make([]mongo.WriteModel, 0, len(revs))
	for _, rev := range revs {
		record, err := toRevisionRecord(rev)
		if err != nil {
			return err
		}
		models = append(models, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": record.ID}).
			SetReplacement(record).
			SetUpsert(true))
	}

	if _, err := c.collection(ColRevisions).BulkWrite(ctx, models, options.BulkWrite().SetOrdered(true)); err != nil {
		return fmt.Errorf("upsert revisions: %w", err)
	}
	return nil
}

// DeleteRevisionsByDocumentID deletes the chain of the given document.
func (c *Client) DeleteRevisionsByDocumentID(ctx context.Context, docID types.ID) (int, error) {
	result, err := c.collection(ColRevisions).DeleteMany(ctx, bson.M{"document_id": docID.String()})
	if err != nil {
		return 0, fmt.Errorf("delete revisions of %s: %w", docID, err)
	}
	return int(result.DeletedCount), nil
}

// FindDocumentByID returns the current document of the given id.
func (c *Client) FindDocumentByID(ctx context.Context, id types.ID) (*types.Document, error) {
	var record documentRecord
	if err := c.collection(ColDocuments).FindOne(ctx, bson.M{"_id": id.String()}).Decode(&record); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", id, database.ErrDocumentNotFound)
		}
		return nil, fmt.Errorf("find document %s: %w", id, err)
	}
	return record.toDocument()
}

// UpsertDocument writes the current document.
func (c *Client) UpsertDocument(ctx context.Context, doc *types.Document) error {
	record, err := toDocumentRecord(doc)
	if err != nil {
		return err
	}

	if _, err := c.collection(ColDocuments).ReplaceOne(
		ctx,
		bson.M{"_id": record.ID},
		record,
		options.Replace().SetUpsert(true),
	); err != nil {
		return fmt.Errorf("upsert document %s: %w", doc.ID, err)
	}
	return nil
}

// DeleteDocumentByID deletes the current document of the given id.
func (c *Client) DeleteDocumentByID(ctx context.Context, id types.ID) error {
	result, err := c.collection(ColDocuments).DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		return fmt.Errorf("delete document %s: %w", id, err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%s: %w", id, database.ErrDocumentNotFound)
	}
	return nil
}

// FindDocumentIDs returns a page of document ids in ascending order.
func (c *Client) FindDocumentIDs(ctx context.Context, after types.ID, limit int) ([]types.ID, error) {
	filter := bson.M{}
	if !after.IsEmpty() {
		filter["_id"] = bson.M{"$gt": after.String()}
	}

	cursor, err := c.collection(ColDocuments).Find(
		ctx,
		filter,
		options.Find().
			SetSort(bson.D{{Key: "_id", Value: 1}}).
			SetLimit(int64(limit)).
			SetProjection(bson.M{"_id": 1}),
	)
	if err != nil {
		return nil, fmt.Errorf("find document ids: %w", err)
	}

	var records []struct {
		ID string `bson:"_id"`
	}
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("fetch document ids: %w", err)
	}

	ids := make([]types.ID, 0, len(records))
	for _, r := range records {
		ids = append(ids, types.ID(r.ID))
	}
	return ids, nil
}

// FindRoomByID returns the room of the given id.
func (c *Client) FindRoomByID(ctx context.Context, id types.ID) (*types.Room, error) {
	var record roomRecord
	if err := c.collection(ColRooms).FindOne(ctx, bson.M{"_id": id.String()}).Decode(&record); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", id, database.ErrRoomNotFound)
		}
		return nil, fmt.Errorf("find room %s: %w", id, err)
	}
	return record.toRoom(), nil
}

// UpsertRoom writes the room.
func (c *Client) UpsertRoom(ctx context.Context, room *types.Room) error {
	record := toRoomRecord(room)
	if _, err := c.collection(ColRooms).ReplaceOne(
		ctx,
		bson.M{"_id": record.ID},
		record,
		options.Replace().SetUpsert(true),
	); err != nil {
		return fmt.Errorf("upsert room %s: %w", room.ID, err)
	}
	return nil
}

// CreateEvent records an event.
func (c *Client) CreateEvent(ctx context.Context, event *types.Event) error {
	if _, err := c.collection(ColEvents).InsertOne(ctx, &eventRecord{
		ID:         event.ID.String(),
		Type:       string(event.Type),
		DocumentID: event.DocumentID.String(),
		RevisionID: event.RevisionID.String(),
		RoomID:     event.RoomID.String(),
		UserID:     event.UserID.String(),
		CreatedOn:  event.CreatedOn,
	}); err != nil {
		return fmt.Errorf("insert event %s: %w", event.ID, err)
	}
	return nil
}

// FindEventsByDocumentID returns the events of a document.
func (c *Client) FindEventsByDocumentID(ctx context.Context, docID types.ID) ([]*types.Event, error) {
	cursor, err := c.collection(ColEvents).Find(
		ctx,
		bson.M{"document_id": docID.String()},
		options.Find().SetSort(bson.D{{Key: "created_on", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("find events of %s: %w", docID, err)
	}

	var records []eventRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("fetch events of %s: %w", docID, err)
	}

	events := make([]*types.Event, 0, len(records))
	for i := range records {
		events = append(events, records[i].toEvent())
	}
	return events, nil
}

// CreateComment stores a comment.
func (c *Client) CreateComment(ctx context.Context, comment *types.Comment) error {
	if _, err := c.collection(ColComments).InsertOne(ctx, &commentRecord{
		ID:         comment.ID.String(),
		DocumentID: comment.DocumentID.String(),
		CreatedBy:  comment.CreatedBy.String(),
		CreatedOn:  comment.CreatedOn,
		Topic:      comment.Topic,
		Text:       comment.Text,
	}); err != nil {
		return fmt.Errorf("insert comment %s: %w", comment.ID, err)
	}
	return nil
}

// FindCommentsByDocumentID returns the comments of a document.
func (c *Client) FindCommentsByDocumentID(ctx context.Context, docID types.ID) ([]*types.Comment, error) {
	cursor, err := c.collection(ColComments).Find(
		ctx,
		bson.M{"document_id": docID.String()},
		options.Find().SetSort(bson.D{{Key: "created_on", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("find comments of %s: %w", docID, err)
	}

	var records []commentRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("fetch comments of %s: %w", docID, err)
	}

	comments := make([]*types.Comment, 0, len(records))
	for i := range records {
		comments = append(comments, records[i].toComment())
	}
	return comments, nil
}

// DeleteCommentsByDocumentID deletes the comments of a document.
func (c *Client) DeleteCommentsByDocumentID(ctx context.Context, docID types.ID) (int, error) {
	result, err := c.collection(ColComments).DeleteMany(ctx, bson.M{"document_id": docID.String()})
	if err != nil {
		return 0, fmt.Errorf("delete comments of %s: %w", docID, err)
	}
	return int(result.DeletedCount), nil
}

var _ database.Database = (*Client)(nil)
