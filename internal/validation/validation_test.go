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

package validation

import (
	"testing"

	"github.com/rs/xid"
	"github.com/stretchr/testify/assert"

	"github.com/docroom/revisor/pkg/errors"
)

func TestValidation(t *testing.T) {
	t.Run("ValidateValue test", func(t *testing.T) {
		assert.NoError(t, ValidateValue("getting-started", "required,slug,max=120"))

		err := ValidateValue("Getting Started", "required,slug,max=120")
		assert.Equal(t, "slug", err.(Violation).Tag)

		assert.NoError(t, ValidateValue("en", "language"))
		assert.NoError(t, ValidateValue("pt-BR", "language"))
		err = ValidateValue("english", "language")
		assert.Equal(t, "language", err.(Violation).Tag)

		assert.NoError(t, ValidateValue(xid.New().String(), "xid"))
		err = ValidateValue("not-an-id", "xid")
		assert.Equal(t, "xid", err.(Violation).Tag)
	})

	t.Run("ValidateStruct test", func(t *testing.T) {
		type section struct {
			Key  string `validate:"required"`
			Type string `validate:"required"`
		}
		type document struct {
			Title    string     `validate:"required,max=10"`
			Slug     string     `validate:"required,slug"`
			Sections []*section `validate:"dive"`
		}

		doc := document{
			Title:    "a title that is too long",
			Slug:     "Bad Slug",
			Sections: []*section{{Key: "k"}},
		}

		err := ValidateStruct(doc)
		structError, ok := err.(*StructError)
		assert.True(t, ok)
		assert.Len(t, structError.Violations, 3)
		assert.Equal(t, "document.Sections[0].Type", structError.Violations[2].Field)
		assert.True(t, errors.IsStatus(err, errors.ErrCodeInvalidArgument))
	})

	t.Run("custom rule test", func(t *testing.T) {
		assert.NoError(t, RegisterValidation("even", func(v FieldLevel) bool {
			return v.Field().Int()%2 == 0
		}))
		assert.NoError(t, RegisterTranslation("even", "{0} must be even"))

		assert.NoError(t, ValidateValue(4, "even"))
		err := ValidateValue(3, "even")
		assert.Equal(t, "even", err.(Violation).Tag)
	})
}
