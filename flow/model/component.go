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

package model

import (
	"github.com/asgardeo/flowkit/flow/constants"
)

// Component is the unit of renderable UI description in a flow step,
// discriminated by Type. Block components nest sub-components.
type Component struct {
	Type constants.ComponentType `json:"type"`

	// Input variants.
	Ref         string   `json:"ref,omitempty"`
	Required    bool     `json:"required,omitempty"`
	Label       string   `json:"label,omitempty"`
	Placeholder string   `json:"placeholder,omitempty"`
	Options     []string `json:"options,omitempty"`

	// Action variant.
	ID        string                    `json:"id,omitempty"`
	EventType constants.ActionEventType `json:"eventType,omitempty"`
	Variant   constants.ActionVariant   `json:"variant,omitempty"`

	// Text variant.
	Text string `json:"text,omitempty"`

	// Block variant.
	Components []Component `json:"components,omitempty"`
}

// IsInput reports whether the component collects a form value.
func (c *Component) IsInput() bool {
	switch c.Type {
	case constants.ComponentTypeTextInput, constants.ComponentTypePasswordInput,
		constants.ComponentTypeEmailInput, constants.ComponentTypeSelect:
		return true
	default:
		return false
	}
}

// WalkComponents visits every component in document order, descending into
// block components depth first. The walk stops when visit returns false.
// This is the single tree traversal shared by field derivation, heading
// extraction and the renderer seam.
func WalkComponents(components []Component, visit func(*Component) bool) bool {
	for i := range components {
		c := &components[i]
		if !visit(c) {
			return false
		}
		if len(c.Components) > 0 {
			if !WalkComponents(c.Components, visit) {
				return false
			}
		}
	}
	return true
}

// FindAction returns the action component with the given ID, searching nested
// blocks as well.
func FindAction(components []Component, id string) *Component {
	var found *Component
	WalkComponents(components, func(c *Component) bool {
		if c.Type == constants.ComponentTypeAction && c.ID == id {
			found = c
			return false
		}
		return true
	})
	return found
}

// Actions returns all action components in document order.
func Actions(components []Component) []*Component {
	var actions []*Component
	WalkComponents(components, func(c *Component) bool {
		if c.Type == constants.ComponentTypeAction {
			actions = append(actions, c)
		}
		return true
	})
	return actions
}

// Heading returns the text of the first text component, or an empty string
// when the step carries none.
func Heading(components []Component) string {
	heading := ""
	WalkComponents(components, func(c *Component) bool {
		if c.Type == constants.ComponentTypeText && c.Text != "" {
			heading = c.Text
			return false
		}
		return true
	})
	return heading
}
