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

// Package plugins provides the content plugins of sections. A plugin
// validates the content shape of one section type and lists the resources
// the content references.
package plugins

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/docroom/revisor/api/types"
	"github.com/docroom/revisor/internal/validation"
	"github.com/docroom/revisor/pkg/errors"
)

// DefaultCDNPrefix is the prefix of resource references served by the CDN.
const DefaultCDNPrefix = "cdn://"

var (
	// ErrUnknownSectionType is returned for a section type without plugin.
	ErrUnknownSectionType = errors.InvalidArgument("unknown section type").WithCode("ErrUnknownSectionType")

	// ErrInvalidContent is returned when content does not match the shape
	// expected by its plugin.
	ErrInvalidContent = errors.InvalidArgument("invalid section content").WithCode("ErrInvalidContent")
)

// Plugin handles the content of one section type.
type Plugin interface {
	// Type returns the section type handled by the plugin.
	Type() string

	// Validate returns an error if the content has the wrong shape.
	Validate(content types.Content) error

	// References returns every URL referenced by the content.
	References(content types.Content) []string
}

// Registry dispatches to plugins by section type.
type Registry struct {
	plugins   map[string]Plugin
	cdnPrefix string
}

// NewRegistry creates a registry with the given plugins. Only references
// starting with cdnPrefix are reported as CDN resources.
func NewRegistry(cdnPrefix string, plugins ...Plugin) *Registry {
	r := &Registry{
		plugins:   make(map[string]Plugin, len(plugins)),
		cdnPrefix: cdnPrefix,
	}
	for _, p := range plugins {
		r.plugins[p.Type()] = p
	}
	return r
}

// Default creates a registry with the built-in plugins.
func Default(cdnPrefix string) *Registry {
	return NewRegistry(
		cdnPrefix,
		&Markdown{},
		&Image{},
		&File{},
		&Separator{},
	)
}

// Types returns the registered section types in sorted order.
func (r *Registry) Types() []string {
	var sectionTypes []string
	for t := range r.plugins {
		sectionTypes = append(sectionTypes, t)
	}
	sort.Strings(sectionTypes)
	return sectionTypes
}

// Validate validates the content of a section of the given type.
func (r *Registry) Validate(sectionType string, content types.Content) error {
	p, ok := r.plugins[sectionType]
	if !ok {
		return fmt.Errorf("%q: %w", sectionType, ErrUnknownSectionType)
	}
	if err := p.Validate(content); err != nil {
		return fmt.Errorf("%s section: %w", sectionType, err)
	}
	return nil
}

// ValidateSections validates every section that still holds content.
func (r *Registry) ValidateSections(sections []*types.Section) error {
	for _, s := range sections {
		if s.IsDeleted() {
			continue
		}
		if err := r.Validate(s.Type, s.Content); err != nil {
			return fmt.Errorf("section %q: %w", s.Key, err)
		}
	}
	return nil
}

// ExtractResources returns the distinct CDN resources referenced by the
// sections, sorted. Deleted sections reference nothing.
func (r *Registry) ExtractResources(sections []*types.Section) []string {
	seen := make(map[string]struct{})
	resources := []string{}

	for _, s := range sections {
		if s.IsDeleted() || s.Content == nil {
			continue
		}
		p, ok := r.plugins[s.Type]
		if !ok {
			continue
		}

		for _, ref := range p.References(s.Content) {
			if !strings.HasPrefix(ref, r.cdnPrefix) {
				continue
			}
			if _, ok := seen[ref]; ok {
				continue
			}
			seen[ref] = struct{}{}
			resources = append(resources, ref)
		}
	}

	sort.Strings(resources)
	return resources
}

// decode converts generic content into the given struct and validates it.
func decode(content types.Content, v interface{}) error {
	if content == nil {
		return fmt.Errorf("missing content: %w", ErrInvalidContent)
	}

	data, err := json.Marshal(content)
	if err != nil {
		return fmt.Errorf("encode content: %w", ErrInvalidContent)
	}
	decoder := json.NewDecoder(strings.NewReader(string(data)))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		return fmt.Errorf("%s: %w", err.Error(), ErrInvalidContent)
	}

	if err := validation.ValidateStruct(v); err != nil {
		return fmt.Errorf("%s: %w", err.Error(), ErrInvalidContent)
	}
	return nil
}
