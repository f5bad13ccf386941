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

// Package messagebroker publishes document events to an external message
// broker.
package messagebroker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/docroom/revisor/api/types"
	"github.com/docroom/revisor/server/logging"
)

// Message represents a message that can be sent to the message broker.
type Message interface {
	Key() []byte
	Marshal() ([]byte, error)
}

// RevisionEventMessage represents a message for revision events.
type RevisionEventMessage struct {
	EventType  types.EventType `json:"event_type"`
	DocumentID string          `json:"document_id"`
	RevisionID string          `json:"revision_id"`
	RoomID     string          `json:"room_id,omitempty"`
	UserID     string          `json:"user_id"`
	Order      int64           `json:"order"`
	Timestamp  time.Time       `json:"timestamp"`
}

// NewRevisionEventMessage creates the message published for the given
// revision.
func NewRevisionEventMessage(rev *types.Revision) RevisionEventMessage {
	event := types.NewRevisionEvent(rev)
	return RevisionEventMessage{
		EventType:  event.Type,
		DocumentID: rev.DocumentID.String(),
		RevisionID: rev.ID.String(),
		RoomID:     rev.RoomID.String(),
		UserID:     rev.CreatedBy.String(),
		Order:      rev.Order,
		Timestamp:  rev.CreatedOn,
	}
}

// Key returns the partition key. Events of one document share a partition
// so consumers see them in order.
func (m RevisionEventMessage) Key() []byte {
	return []byte(m.DocumentID)
}

// Marshal marshals the revision event message to JSON.
func (m RevisionEventMessage) Marshal() ([]byte, error) {
	encoded, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}

	return encoded, nil
}

// Broker is an interface for the message broker.
type Broker interface {
	Produce(ctx context.Context, msg Message) error
	Close() error
}

// Ensure creates a message broker based on the given configuration. If the
// configuration is nil or invalid, it returns a DummyBroker, allowing callers
// to use the broker without nil checks.
func Ensure(kafkaConf *Config) Broker {
	if kafkaConf == nil {
		return &DummyBroker{}
	}

	if err := kafkaConf.Validate(); err != nil {
		logging.DefaultLogger().Warnf("invalid kafka configuration: %v", err)
		return &DummyBroker{}
	}

	logging.DefaultLogger().Infof(
		"connecting to kafka: %s, topic: %s",
		kafkaConf.Addresses,
		kafkaConf.Topic,
	)

	return newKafkaBroker(kafkaConf)
}
