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
	"context"

	"github.com/spf13/cobra"

	"github.com/docroom/revisor/server/documents"
)

func newConsolidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "consolidate [document id]",
		Short: "Recompute the CDN resources of a document and its revisions",
		RunE: func(cmd *cobra.Command, args []string) error {
			docID, err := documentID(args)
			if err != nil {
				return err
			}

			r, err := openServer()
			if err != nil {
				return err
			}
			defer closeServer(cmd, r)

			changed, err := documents.ConsolidateCDNResources(context.Background(), r.Backend(), docID)
			if err != nil {
				return err
			}

			if changed {
				cmd.Printf("consolidated %s\n", docID)
			} else {
				cmd.Printf("%s is up to date\n", docID)
			}
			return nil
		},
	}
}

func newRegenerateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "regenerate [document id]",
		Short: "Rebuild the current document from its revisions",
		RunE: func(cmd *cobra.Command, args []string) error {
			docID, err := documentID(args)
			if err != nil {
				return err
			}

			r, err := openServer()
			if err != nil {
				return err
			}
			defer closeServer(cmd, r)

			doc, err := documents.Regenerate(context.Background(), r.Backend(), docID)
			if err != nil {
				return err
			}

			cmd.Printf("regenerated %s at revision %s (order %d)\n", doc.ID, doc.Revision, doc.Order)
			return nil
		},
	}
}

func init() {
	SubCmd.AddCommand(newConsolidateCommand())
	SubCmd.AddCommand(newRegenerateCommand())
}
