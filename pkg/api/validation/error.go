// Reina Manager
// Copyright (c) 2026 The Reina Manager Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Reina Manager.
//
// Reina Manager is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Reina Manager is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Reina Manager.  If not, see <http://www.gnu.org/licenses/>.

package validation

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Error lists every param field that failed validation.
type Error struct {
	Fields []FieldError
}

// FieldError is one failed rule on one param, named by its JSON key.
type FieldError struct {
	Field   string
	Rule    string
	Message string
}

func (e *Error) Error() string {
	if len(e.Fields) == 0 {
		return "invalid params"
	}
	var sb strings.Builder
	for i, fe := range e.Fields {
		if i > 0 {
			sb.WriteString("; ")
		}
		sb.WriteString(fe.Message)
	}
	return sb.String()
}

// NewError converts validator errors into an Error.
func NewError(errs validator.ValidationErrors) *Error {
	fields := make([]FieldError, 0, len(errs))
	for _, fe := range errs {
		fields = append(fields, FieldError{
			Field:   fe.Field(),
			Rule:    fe.Tag(),
			Message: fieldMessage(fe.Field(), fe.Tag(), fe.Param()),
		})
	}
	return &Error{Fields: fields}
}

var ruleMessages = map[string]string{
	"required": "%s is required",
	"notblank": "%s must not be blank",
	"gt":       "%s must be greater than %s",
	"gte":      "%s must be at least %s",
	"lte":      "%s must be at most %s",
}

func fieldMessage(field, rule, param string) string {
	format, ok := ruleMessages[rule]
	if !ok {
		return fmt.Sprintf("%s is invalid (%s)", field, rule)
	}
	if strings.Count(format, "%s") == 1 {
		return fmt.Sprintf(format, field)
	}
	return fmt.Sprintf(format, field, param)
}
