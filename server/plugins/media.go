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
	"fmt"

	"github.com/docroom/revisor/api/types"
)

type imageContent struct {
	SourceURL string `json:"sourceUrl" validate:"required"`
	Alt       string `json:"alt" validate:"max=500"`
	Caption   string `json:"caption" validate:"max=2000"`
}

// Image handles sections of type "image".
type Image struct{}

// Type returns "image".
func (i *Image) Type() string { return "image" }

// Validate checks that the content names an image source.
func (i *Image) Validate(content types.Content) error {
	return decode(content, &imageContent{})
}

// References returns the image source.
func (i *Image) References(content types.Content) []string {
	if src := content.String("sourceUrl"); src != "" {
		return []string{src}
	}
	return nil
}

type fileContent struct {
	FileURL string `json:"fileUrl" validate:"required"`
	Name    string `json:"name" validate:"required,max=300"`
	Size    int64  `json:"size" validate:"gte=0"`
}

// File handles downloadable attachments.
type File struct{}

// Type returns "file".
func (f *File) Type() string { return "file" }

// Validate checks that the content names a file and its location.
func (f *File) Validate(content types.Content) error {
	return decode(content, &fileContent{})
}

// References returns the file location.
func (f *File) References(content types.Content) []string {
	if u := content.String("fileUrl"); u != "" {
		return []string{u}
	}
	return nil
}

// Separator is a horizontal rule without content.
type Separator struct{}

// Type returns "separator".
func (s *Separator) Type() string { return "separator" }

// Validate checks that the content is empty.
func (s *Separator) Validate(content types.Content) error {
	if content == nil {
		return fmt.Errorf("missing content: %w", ErrInvalidContent)
	}
	if len(content) != 0 {
		return fmt.Errorf("separator takes no content: %w", ErrInvalidContent)
	}
	return nil
}

// References returns nothing.
func (s *Separator) References(types.Content) []string { return nil }
