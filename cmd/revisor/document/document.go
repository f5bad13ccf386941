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

// Package document provides the commands that inspect and repair the
// revision chain of a document.
package document

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/docroom/revisor/api/types"
	"github.com/docroom/revisor/server"
	"github.com/docroom/revisor/server/backend/database/mongo"
)

var (
	// SubCmd represents the document command
	SubCmd = &cobra.Command{
		Use:   "document",
		Short: "Inspect and repair documents",
	}

	flagConfPath       string
	mongoConnectionURI string
	mongoDatabase      string
	output             string
)

// ErrMongoRequired is returned when no MongoDB is configured. The in-memory
// database of a CLI process holds no documents.
var ErrMongoRequired = errors.New("--mongo-connection-uri or a config file with Mongo is required")

// openServer creates a revisor server connected to the configured stores
// without starting its background services.
func openServer() (*server.Revisor, error) {
	conf := server.NewConfig()
	if flagConfPath != "" {
		parsed, err := server.NewConfigFromFile(flagConfPath)
		if err != nil {
			return nil, err
		}
		conf = parsed
	} else if mongoConnectionURI != "" {
		conf.Mongo = &mongo.Config{
			ConnectionURI: mongoConnectionURI,
			Database:      mongoDatabase,
		}
		conf.Mongo.EnsureDefaultValue()
	}

	if conf.Mongo == nil {
		return nil, ErrMongoRequired
	}
	conf.Profiling = nil

	return server.New(conf)
}

// documentID parses the single document id argument.
func documentID(args []string) (types.ID, error) {
	if len(args) != 1 {
		return "", errors.New("document id is required")
	}

	id := types.ID(args[0])
	if err := id.Validate(); err != nil {
		return "", fmt.Errorf("document id %q: %w", args[0], err)
	}
	return id, nil
}

func closeServer(cmd *cobra.Command, r *server.Revisor) {
	if err := r.Shutdown(true); err != nil {
		cmd.PrintErrln(err)
	}
}

func init() {
	SubCmd.PersistentFlags().StringVarP(
		&flagConfPath,
		"config",
		"c",
		"",
		"Config path",
	)
	SubCmd.PersistentFlags().StringVar(
		&mongoConnectionURI,
		"mongo-connection-uri",
		"",
		"MongoDB's connection URI",
	)
	SubCmd.PersistentFlags().StringVar(
		&mongoDatabase,
		"mongo-database",
		server.DefaultMongoDatabase,
		"revisor's database name in MongoDB",
	)
	SubCmd.PersistentFlags().StringVarP(
		&output,
		"output",
		"o",
		"",
		"One of 'yaml' or 'json'.",
	)
}
