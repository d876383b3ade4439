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

// RawFlowResponse mirrors the flow execution API response body before
// normalization. Older servers nest components under data.meta and omit
// fields the current shape carries; the normalizer projects both layouts
// into FlowResponse.
type RawFlowResponse struct {
	FlowID        string            `json:"flowId"`
	FlowStatus    string            `json:"flowStatus"`
	Type          string            `json:"type,omitempty"`
	Data          *RawFlowData      `json:"data,omitempty"`
	Messages      []RawMessage      `json:"messages,omitempty"`
	AuthData      map[string]string `json:"authData,omitempty"`
	Assertion     string            `json:"assertion,omitempty"`
	FailureReason string            `json:"failureReason,omitempty"`

	// Error payload fields returned by non-2xx responses.
	Code        string `json:"code,omitempty"`
	Message     string `json:"message,omitempty"`
	Description string `json:"description,omitempty"`
}

// RawFlowData carries the step payload of a raw flow response.
type RawFlowData struct {
	Components     []RawComponent     `json:"components,omitempty"`
	Meta           *RawFlowMeta       `json:"meta,omitempty"`
	Authenticators []RawAuthenticator `json:"authenticators,omitempty"`
	RedirectURL    string             `json:"redirectURL,omitempty"`
	AdditionalData map[string]string  `json:"additionalData,omitempty"`
}

// RawFlowMeta holds the legacy nested component layout.
type RawFlowMeta struct {
	Components []RawComponent `json:"components,omitempty"`
}

// RawComponent is a loosely shaped component as received on the wire.
// Required is a pointer so the normalizer can distinguish an absent flag
// from an explicit false.
type RawComponent struct {
	Type        string         `json:"type"`
	Ref         string         `json:"ref,omitempty"`
	Required    *bool          `json:"required,omitempty"`
	Label       string         `json:"label,omitempty"`
	Placeholder string         `json:"placeholder,omitempty"`
	Options     []string       `json:"options,omitempty"`
	ID          string         `json:"id,omitempty"`
	EventType   string         `json:"eventType,omitempty"`
	Variant     string         `json:"variant,omitempty"`
	Text        string         `json:"text,omitempty"`
	Components  []RawComponent `json:"components,omitempty"`
}

// RawMessage is a server-declared message as received on the wire.
type RawMessage struct {
	Text     string `json:"text"`
	Severity string `json:"severity,omitempty"`
}

// RawAuthenticator is an authenticator as received on the legacy wire shape.
type RawAuthenticator struct {
	AuthenticatorID string                    `json:"authenticatorId"`
	IDP             string                    `json:"idp,omitempty"`
	RequiredParams  []string                  `json:"requiredParams,omitempty"`
	Metadata        *RawAuthenticatorMetadata `json:"metadata,omitempty"`
}

// RawAuthenticatorMetadata is authenticator metadata as received on the wire.
type RawAuthenticatorMetadata struct {
	Params         []RawParam        `json:"params,omitempty"`
	PromptType     string            `json:"promptType,omitempty"`
	AdditionalData map[string]string `json:"additionalData,omitempty"`
}

// RawParam is a parameter specification as received on the wire.
type RawParam struct {
	Param string `json:"param"`
	Type  string `json:"type,omitempty"`
}
