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
	"encoding/json"
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/docroom/revisor/api/types"
	"github.com/docroom/revisor/server/documents"
)

func newRevisionsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "revisions [document id]",
		Short: "List the revisions of a document",
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

			revisions, err := documents.ListRevisions(context.Background(), r.Backend(), docID)
			if err != nil {
				return err
			}

			return printRevisions(cmd, output, revisions)
		},
	}
}

func printRevisions(cmd *cobra.Command, output string, revisions []*types.Revision) error {
	switch output {
	case "":
		tw := table.NewWriter()
		tw.Style().Options.DrawBorder = false
		tw.Style().Options.SeparateColumns = false
		tw.Style().Options.SeparateFooter = false
		tw.Style().Options.SeparateHeader = false
		tw.Style().Options.SeparateRows = false
		tw.AppendHeader(table.Row{
			"ORDER",
			"ID",
			"CREATED ON",
			"AUTHOR",
			"RESTORED FROM",
			"SECTIONS",
			"TITLE",
		})
		for _, rev := range revisions {
			tw.AppendRow(table.Row{
				rev.Order,
				rev.ID,
				rev.CreatedOn.Format(time.RFC3339),
				rev.CreatedBy,
				rev.RestoredFrom,
				len(rev.Sections),
				rev.Title,
			})
		}
		cmd.Printf("%s\n", tw.Render())
	case "json":
		jsonOutput, err := json.MarshalIndent(revisions, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal JSON: %w", err)
		}
		cmd.Println(string(jsonOutput))
	case "yaml":
		yamlOutput, err := yaml.Marshal(revisions)
		if err != nil {
			return fmt.Errorf("failed to marshal YAML: %w", err)
		}
		cmd.Println(string(yamlOutput))
	default:
		return fmt.Errorf("unknown output format: %s", output)
	}

	return nil
}

func init() {
	SubCmd.AddCommand(newRevisionsCommand())
}
