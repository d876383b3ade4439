/*
 * Copyright (c) 2025, WSO2 LLC. (https://www.wso2.com).
 *
 * WSO2 LLC. licenses this file to you under the Apache License,
 * Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

// Package form tracks field values, touched flags and validation errors for
// the flow step currently on screen.
package form

import (
	"regexp"
	"strings"

	"github.com/asgardeo/flowkit/flow/constants"
	"github.com/asgardeo/flowkit/flow/model"
)

const (
	// RequiredErrorMessage is the validation error for an empty required field.
	RequiredErrorMessage = "This field is required"
	// InvalidEmailErrorMessage is the validation error for a malformed email value.
	InvalidEmailErrorMessage = "Enter a valid email address"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// FieldSpec describes one input field derived from the current step.
type FieldSpec struct {
	Ref      string
	Kind     constants.ComponentType
	Required bool
	Label    string
}

// Tracker holds the form state for the step currently on screen. It is owned
// by one engine instance and is fully reset on every step transition so no
// field state leaks across steps. The tracker is not safe for concurrent use;
// the owning engine serializes access.
type Tracker struct {
	fields  []FieldSpec
	values  map[string]string
	touched map[string]bool
	errors  map[string]string
}

// NewTracker creates an empty form state tracker.
func NewTracker() *Tracker {
	t := &Tracker{}
	t.Reset()
	return t
}

// Reset clears all form state. Partial carry-over across steps is disallowed.
func (t *Tracker) Reset() {
	t.fields = nil
	t.values = make(map[string]string)
	t.touched = make(map[string]bool)
	t.errors = make(map[string]string)
}

// DeriveFields resets the tracker and extracts one field per input component,
// in document order, descending into block components.
func (t *Tracker) DeriveFields(components []model.Component) []FieldSpec {
	t.Reset()
	model.WalkComponents(components, func(c *model.Component) bool {
		if c.IsInput() && c.Ref != "" {
			t.fields = append(t.fields, FieldSpec{
				Ref:      c.Ref,
				Kind:     c.Type,
				Required: c.Required,
				Label:    c.Label,
			})
		}
		return true
	})
	return t.fields
}

// DeriveFieldsFromAuthenticator resets the tracker and extracts fields from a
// legacy authenticator's parameter metadata. Parameters listed only in
// requiredParams default to text inputs.
func (t *Tracker) DeriveFieldsFromAuthenticator(authenticator *model.Authenticator) []FieldSpec {
	t.Reset()
	if authenticator == nil {
		return nil
	}

	seen := make(map[string]bool)
	for _, param := range authenticator.Metadata.Params {
		if param.Param == "" || seen[param.Param] {
			continue
		}
		seen[param.Param] = true
		t.fields = append(t.fields, FieldSpec{
			Ref:      param.Param,
			Kind:     paramKind(param),
			Required: containsParam(authenticator.RequiredParams, param.Param),
			Label:    param.Param,
		})
	}
	for _, param := range authenticator.RequiredParams {
		if param == "" || seen[param] {
			continue
		}
		seen[param] = true
		t.fields = append(t.fields, FieldSpec{
			Ref:      param,
			Kind:     constants.ComponentTypeTextInput,
			Required: true,
			Label:    param,
		})
	}
	return t.fields
}

// Fields returns the derived field specifications in document order.
func (t *Tracker) Fields() []FieldSpec {
	return t.fields
}

// SetValue records a field value. Values for refs outside the current step
// are ignored so formValues keys stay a subset of the step's refs.
func (t *Tracker) SetValue(ref, value string) {
	if !t.hasField(ref) {
		return
	}
	t.values[ref] = value
}

// Value returns the current value of a field.
func (t *Tracker) Value(ref string) string {
	return t.values[ref]
}

// Values returns a copy of the current field values.
func (t *Tracker) Values() map[string]string {
	values := make(map[string]string, len(t.values))
	for k, v := range t.values {
		values[k] = v
	}
	return values
}

// SetTouched marks whether the user has interacted with a field.
func (t *Tracker) SetTouched(ref string, touched bool) {
	if !t.hasField(ref) {
		return
	}
	t.touched[ref] = touched
}

// Touched reports whether the user has interacted with a field.
func (t *Tracker) Touched(ref string) bool {
	return t.touched[ref]
}

// TouchAll marks every field as touched. Typically called on a submit attempt
// so errors are not shown before the user interacts with a field.
func (t *Tracker) TouchAll() {
	for _, field := range t.fields {
		t.touched[field.Ref] = true
	}
}

// Validate recomputes per-field validation errors from the current values.
// It does not mutate touched flags. Required fields must be non-empty after
// trimming; email fields with a non-empty value must match a standard email
// shape. Other rules are the caller's concern.
func (t *Tracker) Validate() (map[string]string, bool) {
	errors := make(map[string]string)
	for _, field := range t.fields {
		value := strings.TrimSpace(t.values[field.Ref])
		if field.Required && value == "" {
			errors[field.Ref] = RequiredErrorMessage
			continue
		}
		if field.Kind == constants.ComponentTypeEmailInput && value != "" &&
			!emailPattern.MatchString(value) {
			errors[field.Ref] = InvalidEmailErrorMessage
		}
	}
	t.errors = errors
	return errors, len(errors) == 0
}

// FieldErrors returns the errors computed by the last Validate call.
func (t *Tracker) FieldErrors() map[string]string {
	return t.errors
}

func (t *Tracker) hasField(ref string) bool {
	for _, field := range t.fields {
		if field.Ref == ref {
			return true
		}
	}
	return false
}

func paramKind(param model.ParamSpec) constants.ComponentType {
	switch strings.ToUpper(param.Type) {
	case "PASSWORD":
		return constants.ComponentTypePasswordInput
	case "EMAIL":
		return constants.ComponentTypeEmailInput
	default:
		if strings.EqualFold(param.Param, "password") {
			return constants.ComponentTypePasswordInput
		}
		return constants.ComponentTypeTextInput
	}
}

func containsParam(params []string, param string) bool {
	for _, p := range params {
		if p == param {
			return true
		}
	}
	return false
}
