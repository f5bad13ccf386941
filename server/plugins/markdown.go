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

package plugins

import (
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"

	"github.com/docroom/revisor/api/types"
)

var (
	markdownOnce   sync.Once
	markdownParser goldmark.Markdown
)

// parser returns the shared goldmark instance; it holds no per-document state.
func parser() goldmark.Markdown {
	markdownOnce.Do(func() {
		markdownParser = goldmark.New(goldmark.WithExtensions(extension.GFM))
	})
	return markdownParser
}

type markdownContent struct {
	Text string `json:"text" validate:"max=100000"`
}

// Markdown handles sections of type "markdown" whose content is
// {"text": "..."}.
type Markdown struct{}

// Type returns "markdown".
func (m *Markdown) Type() string { return "markdown" }

// Validate checks that the content holds a text.
func (m *Markdown) Validate(content types.Content) error {
	return decode(content, &markdownContent{})
}

// References returns the destinations of every link and image of the text.
func (m *Markdown) References(content types.Content) []string {
	source := []byte(content.String("text"))
	if len(source) == 0 {
		return nil
	}

	doc := parser().Parser().Parse(text.NewReader(source))

	var refs []string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Image:
			refs = append(refs, string(node.Destination))
		case *ast.Link:
			refs = append(refs, string(node.Destination))
		case *ast.AutoLink:
			refs = append(refs, string(node.URL(source)))
		}
		return ast.WalkContinue, nil
	})
	return refs
}
