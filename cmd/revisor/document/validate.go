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

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/docroom/revisor/pkg/errors"
	"github.com/docroom/revisor/server/documents"
)

func newValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [document id]",
		Short: "Check a document and its revisions for violations",
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

			err = documents.Validate(context.Background(), r.Backend(), docID)
			var aggregate *errors.AggregateError
			if !errors.As(err, &aggregate) {
				if err == nil {
					cmd.Println("no violations")
				}
				return err
			}

			if err := printViolations(cmd, output, aggregate.Violations); err != nil {
				return err
			}
			return fmt.Errorf("%d violation(s) found", len(aggregate.Violations))
		},
	}
}

func printViolations(cmd *cobra.Command, output string, violations []errors.Violation) error {
	switch output {
	case "":
		tw := table.NewWriter()
		tw.Style().Options.DrawBorder = false
		tw.Style().Options.SeparateColumns = false
		tw.Style().Options.SeparateFooter = false
		tw.Style().Options.SeparateHeader = false
		tw.Style().Options.SeparateRows = false
		tw.AppendHeader(table.Row{"SUBJECT", "FIELD", "MESSAGE"})
		for _, v := range violations {
			tw.AppendRow(table.Row{v.Subject, v.Field, v.Message})
		}
		cmd.Printf("%s\n", tw.Render())
	case "json":
		jsonOutput, err := json.MarshalIndent(violations, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal JSON: %w", err)
		}
		cmd.Println(string(jsonOutput))
	case "yaml":
		yamlOutput, err := yaml.Marshal(violations)
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
	SubCmd.AddCommand(newValidateCommand())
}
