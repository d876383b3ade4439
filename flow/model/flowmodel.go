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

// Package model defines the data structures for flow execution steps and requests.
package model

import (
	"encoding/json"

	"github.com/asgardeo/flowkit/flow/constants"
)

// FlowRequest represents the flow execution API request body.
type FlowRequest struct {
	ApplicationID string            `json:"applicationId,omitempty"`
	FlowType      string            `json:"flowType,omitempty"`
	FlowID        string            `json:"flowId,omitempty"`
	ActionID      string            `json:"actionId,omitempty"`
	Inputs        map[string]string `json:"inputs,omitempty"`
}

// Message represents a server-declared message to be surfaced verbatim.
// Insertion order is display order.
type Message struct {
	Text     string                    `json:"text"`
	Severity constants.MessageSeverity `json:"severity"`
}

// FlowResponse is the canonical, post-normalization model of one flow step.
// It is replaced wholesale on every step transition and never partially mutated.
type FlowResponse struct {
	FlowID         string                 `json:"flowId"`
	Status         constants.FlowStatus   `json:"flowStatus"`
	Type           constants.ResponseType `json:"type,omitempty"`
	Components     []Component            `json:"components,omitempty"`
	Authenticators []Authenticator        `json:"authenticators,omitempty"`
	Messages       []Message              `json:"messages,omitempty"`
	RedirectURL    string                 `json:"redirectURL,omitempty"`
	AdditionalData map[string]string      `json:"additionalData,omitempty"`
	AuthData       map[string]string      `json:"authData,omitempty"`
	Assertion      string                 `json:"assertion,omitempty"`
	FailureReason  string                 `json:"failureReason,omitempty"`
}

// AsRaw re-serializes the response into the current wire shape. Normalizing
// the produced payload yields an equal FlowResponse.
func (r *FlowResponse) AsRaw() ([]byte, error) {
	raw := RawFlowResponse{
		FlowID:        r.FlowID,
		FlowStatus:    string(r.Status),
		Type:          string(r.Type),
		Messages:      make([]RawMessage, 0, len(r.Messages)),
		AuthData:      r.AuthData,
		Assertion:     r.Assertion,
		FailureReason: r.FailureReason,
	}
	for _, m := range r.Messages {
		raw.Messages = append(raw.Messages, RawMessage{Text: m.Text, Severity: string(m.Severity)})
	}
	if len(r.Components) > 0 || len(r.Authenticators) > 0 || r.RedirectURL != "" ||
		len(r.AdditionalData) > 0 {
		raw.Data = &RawFlowData{
			Components:     componentsAsRaw(r.Components),
			Authenticators: authenticatorsAsRaw(r.Authenticators),
			RedirectURL:    r.RedirectURL,
			AdditionalData: r.AdditionalData,
		}
	}
	return json.Marshal(raw)
}

func componentsAsRaw(components []Component) []RawComponent {
	if len(components) == 0 {
		return nil
	}
	raws := make([]RawComponent, 0, len(components))
	for _, c := range components {
		required := c.Required
		raws = append(raws, RawComponent{
			Type:        string(c.Type),
			Ref:         c.Ref,
			Required:    &required,
			Label:       c.Label,
			Placeholder: c.Placeholder,
			Options:     c.Options,
			ID:          c.ID,
			EventType:   string(c.EventType),
			Variant:     string(c.Variant),
			Text:        c.Text,
			Components:  componentsAsRaw(c.Components),
		})
	}
	return raws
}

func authenticatorsAsRaw(authenticators []Authenticator) []RawAuthenticator {
	if len(authenticators) == 0 {
		return nil
	}
	raws := make([]RawAuthenticator, 0, len(authenticators))
	for _, a := range authenticators {
		raw := RawAuthenticator{
			AuthenticatorID: a.AuthenticatorID,
			IDP:             a.IDP,
			RequiredParams:  a.RequiredParams,
		}
		if len(a.Metadata.Params) > 0 || a.Metadata.PromptType != "" ||
			len(a.Metadata.AdditionalData) > 0 {
			meta := RawAuthenticatorMetadata{
				PromptType:     string(a.Metadata.PromptType),
				AdditionalData: a.Metadata.AdditionalData,
			}
			for _, p := range a.Metadata.Params {
				meta.Params = append(meta.Params, RawParam{Param: p.Param, Type: p.Type})
			}
			raw.Metadata = &meta
		}
		raws = append(raws, raw)
	}
	return raws
}
