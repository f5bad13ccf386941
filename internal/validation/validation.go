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

// Package validation wraps go-playground/validator with the rules and
// English messages used by revisor.
package validation

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/rs/xid"

	"github.com/docroom/revisor/pkg/errors"
)

var (
	// NOTE: unreserved characters of RFC 3986 section 2.3, lower case only.
	slugRegex = regexp.MustCompile(`^[a-z0-9\-._~]+$`)

	// language tags such as "en", "de" or "pt-BR".
	languageRegex = regexp.MustCompile(`^[a-z]{2,3}(-[A-Z]{2})?$`)
)

var (
	defaultValidator = validator.New()
	defaultEn        = en.New()
	uni              = ut.New(defaultEn, defaultEn)
	trans, _         = uni.GetTranslator(defaultEn.Locale())
)

// FieldLevel is the field level interface.
type FieldLevel = validator.FieldLevel

// Violation is a single failed rule.
type Violation struct {
	Tag         string
	Field       string
	Err         error
	Description string
}

// Error returns the translated description.
func (v Violation) Error() string {
	if v.Description != "" {
		return v.Description
	}
	return v.Err.Error()
}

// StructError lists every failed rule of a struct.
type StructError struct {
	Violations []Violation
}

// Error returns the descriptions joined by newlines.
func (s *StructError) Error() string {
	sb := strings.Builder{}
	for _, v := range s.Violations {
		sb.WriteString(v.Error())
		sb.WriteString("\n")
	}
	return strings.TrimSpace(sb.String())
}

// Status reports invalid argument, so that StructError flows through
// errors.StatusOf like any other client error.
func (s *StructError) Status() errors.StatusCode {
	return errors.ErrCodeInvalidArgument
}

// Code returns the machine-readable code.
func (s *StructError) Code() string {
	return "ErrInvalidFields"
}

// WithCode is a no-op; the code is fixed.
func (s *StructError) WithCode(string) errors.StatusError {
	return s
}

// RegisterValidation registers a custom rule on the default validator.
func RegisterValidation(tag string, fn validator.Func) error {
	if err := defaultValidator.RegisterValidation(tag, fn); err != nil {
		return fmt.Errorf("register validation: %w", err)
	}
	return nil
}

// RegisterTranslation registers the English message of a rule.
func RegisterTranslation(tag, msg string) error {
	if err := defaultValidator.RegisterTranslation(
		tag,
		trans,
		func(ut ut.Translator) error {
			return ut.Add(tag, msg, true)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			t, _ := ut.T(tag, fe.Field())
			return t
		},
	); err != nil {
		return fmt.Errorf("register translation: %w", err)
	}
	return nil
}

// ValidateValue validates a single value against the given tag.
func ValidateValue(v interface{}, tag string) error {
	err := defaultValidator.Var(v, tag)
	if err == nil {
		return nil
	}

	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok || len(fieldErrs) == 0 {
		return err
	}
	return Violation{
		Tag:         fieldErrs[0].Tag(),
		Err:         fieldErrs[0],
		Description: fieldErrs[0].Translate(trans),
	}
}

// ValidateStruct validates every field of s, including nested structs and
// slices marked with "dive".
func ValidateStruct(s interface{}) error {
	err := defaultValidator.Struct(s)
	if err == nil {
		return nil
	}

	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	structError := &StructError{}
	for _, e := range fieldErrs {
		structError.Violations = append(structError.Violations, Violation{
			Tag:         e.Tag(),
			Field:       e.Namespace(),
			Err:         e,
			Description: e.Translate(trans),
		})
	}
	return structError
}

func mustRegister(tag, msg string, fn validator.Func) {
	if err := RegisterValidation(tag, fn); err != nil {
		fmt.Fprintf(os.Stderr, "validation %s: %v\n", tag, err)
		os.Exit(1)
	}
	if err := RegisterTranslation(tag, msg); err != nil {
		fmt.Fprintf(os.Stderr, "validation %s: %v\n", tag, err)
		os.Exit(1)
	}
}

func init() {
	if err := entranslations.RegisterDefaultTranslations(defaultValidator, trans); err != nil {
		fmt.Fprintf(os.Stderr, "validation register default translations: %v\n", err)
		os.Exit(1)
	}

	mustRegister(
		"slug",
		"{0} must only contain lower case letters, numbers, hyphen, period, underscore, and tilde",
		func(level validator.FieldLevel) bool {
			return slugRegex.MatchString(level.Field().String())
		},
	)

	mustRegister("language", "{0} must be a language tag such as en or pt-BR", func(level validator.FieldLevel) bool {
		return languageRegex.MatchString(level.Field().String())
	})

	mustRegister("xid", "{0} must be a valid id", func(level validator.FieldLevel) bool {
		_, err := xid.FromString(level.Field().String())
		return err == nil
	})
}
