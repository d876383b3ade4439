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

// ParamSpec describes one parameter an authenticator collects.
type ParamSpec struct {
	Param string `json:"param"`
	Type  string `json:"type"`
}

// AuthenticatorMetadata carries the prompt behaviour of an authenticator.
type AuthenticatorMetadata struct {
	Params         []ParamSpec          `json:"params,omitempty"`
	PromptType     constants.PromptType `json:"promptType,omitempty"`
	AdditionalData map[string]string    `json:"additionalData,omitempty"`
}

// Authenticator is a named method of proving identity at a step. This is the
// legacy protocol surface; the modern surface describes steps via components.
type Authenticator struct {
	AuthenticatorID string                `json:"authenticatorId"`
	IDP             string                `json:"idp,omitempty"`
	RequiredParams  []string              `json:"requiredParams,omitempty"`
	Metadata        AuthenticatorMetadata `json:"metadata,omitempty"`
}

// RequiresInput reports whether the authenticator needs user supplied
// parameters before it can be submitted.
func (a *Authenticator) RequiresInput() bool {
	return len(a.RequiredParams) > 0 || len(a.Metadata.Params) > 0
}

// IsRedirect reports whether the authenticator resolves via an external
// redirection.
func (a *Authenticator) IsRedirect() bool {
	return a.Metadata.PromptType == constants.PromptTypeRedirection
}

// IsInternal reports whether the authenticator resolves via a platform
// ceremony without form interaction.
func (a *Authenticator) IsInternal() bool {
	return a.Metadata.PromptType == constants.PromptTypeInternal
}
