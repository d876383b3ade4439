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

// Package normalizer converts heterogeneous flow execution payload shapes
// into the canonical FlowResponse model.
package normalizer

import (
	"encoding/json"
	"strings"

	"github.com/asgardeo/flowkit/flow/constants"
	"github.com/asgardeo/flowkit/flow/model"
	"github.com/asgardeo/flowkit/internal/system/log"
)

const (
	loggerComponentName = "ResponseNormalizer"

	// GenericFailureMessage is surfaced when no human-readable reason can be
	// extracted from the payload.
	GenericFailureMessage = "Something went wrong"
)

// Normalize converts a raw flow execution payload into the canonical
// FlowResponse model. It never fails: malformed input is mapped to an
// ERROR status response so a normalization failure cannot crash the flow.
// The function is pure and deterministic.
func Normalize(payload []byte) *model.FlowResponse {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName))

	if len(payload) == 0 {
		return errorResponse("", GenericFailureMessage)
	}

	var raw model.RawFlowResponse
	if err := json.Unmarshal(payload, &raw); err != nil {
		logger.Debug("Failed to decode flow execution payload", log.Error(err))
		return errorResponse("", GenericFailureMessage)
	}

	status, known := parseStatus(raw.FlowStatus)
	if !known {
		reason := extractFailureReason(&raw)
		return errorResponse(raw.FlowID, reason)
	}

	resp := &model.FlowResponse{
		FlowID:        raw.FlowID,
		Status:        status,
		AuthData:      raw.AuthData,
		Assertion:     raw.Assertion,
		FailureReason: raw.FailureReason,
		Messages:      normalizeMessages(raw.Messages),
	}

	if raw.Data != nil {
		resp.Components = normalizeComponents(selectComponents(raw.Data), logger)
		resp.Authenticators = normalizeAuthenticators(raw.Data.Authenticators, logger)
		resp.RedirectURL = raw.Data.RedirectURL
		resp.AdditionalData = raw.Data.AdditionalData
	}

	resp.Type = parseResponseType(raw.Type, resp)

	// A server reported failure reason is surfaced as a message unless the
	// server already declared messages for the step.
	if status == constants.FlowStatusError && raw.FailureReason != "" && len(resp.Messages) == 0 {
		resp.Messages = []model.Message{{
			Text:     extractFailureReason(&raw),
			Severity: constants.MessageSeverityError,
		}}
	}

	return resp
}

// errorResponse builds the canonical shape for an unprocessable payload.
func errorResponse(flowID, reason string) *model.FlowResponse {
	return &model.FlowResponse{
		FlowID:        flowID,
		Status:        constants.FlowStatusError,
		FailureReason: reason,
		Messages: []model.Message{{
			Text:     reason,
			Severity: constants.MessageSeverityError,
		}},
	}
}

// parseStatus maps a wire status onto the closed status enum.
func parseStatus(status string) (constants.FlowStatus, bool) {
	switch constants.FlowStatus(status) {
	case constants.FlowStatusComplete, constants.FlowStatusIncomplete,
		constants.FlowStatusFailIncomplete, constants.FlowStatusFailCompleted,
		constants.FlowStatusError:
		return constants.FlowStatus(status), true
	default:
		return constants.FlowStatusError, false
	}
}

// parseResponseType maps the wire step type, defaulting from the step payload
// when the server omits it.
func parseResponseType(stepType string, resp *model.FlowResponse) constants.ResponseType {
	switch constants.ResponseType(stepType) {
	case constants.ResponseTypeView, constants.ResponseTypeRedirection:
		return constants.ResponseType(stepType)
	}
	if resp.RedirectURL != "" {
		return constants.ResponseTypeRedirection
	}
	if resp.Status == constants.FlowStatusIncomplete {
		return constants.ResponseTypeView
	}
	return ""
}

// selectComponents picks the current component layout when present and falls
// back to the legacy data.meta layout otherwise.
func selectComponents(data *model.RawFlowData) []model.RawComponent {
	if len(data.Components) > 0 {
		return data.Components
	}
	if data.Meta != nil {
		return data.Meta.Components
	}
	return nil
}

// normalizeComponents projects raw components into the closed component
// union, filling defaults for fields the legacy layout omits. Components with
// unknown type tags are logged and dropped so protocol drift surfaces early
// instead of silently matching a fallback branch.
func normalizeComponents(raws []model.RawComponent, logger *log.Logger) []model.Component {
	if len(raws) == 0 {
		return nil
	}
	components := make([]model.Component, 0, len(raws))
	for _, raw := range raws {
		componentType, ok := parseComponentType(raw.Type)
		if !ok {
			logger.Warn("Dropping component with unknown type", log.String("type", raw.Type))
			continue
		}

		component := model.Component{
			Type:        componentType,
			Ref:         raw.Ref,
			Label:       raw.Label,
			Placeholder: raw.Placeholder,
			Options:     raw.Options,
			ID:          raw.ID,
			Text:        raw.Text,
		}
		if raw.Required != nil {
			component.Required = *raw.Required
		}
		if raw.EventType != "" {
			component.EventType = parseEventType(raw.EventType)
		}
		if raw.Variant != "" {
			component.Variant = constants.ActionVariant(strings.ToUpper(raw.Variant))
		}
		if len(raw.Components) > 0 {
			component.Components = normalizeComponents(raw.Components, logger)
		}
		components = append(components, component)
	}
	return components
}

func parseComponentType(componentType string) (constants.ComponentType, bool) {
	switch constants.ComponentType(componentType) {
	case constants.ComponentTypeTextInput, constants.ComponentTypePasswordInput,
		constants.ComponentTypeEmailInput, constants.ComponentTypeSelect,
		constants.ComponentTypeAction, constants.ComponentTypeText,
		constants.ComponentTypeDivider, constants.ComponentTypeBlock:
		return constants.ComponentType(componentType), true
	default:
		return "", false
	}
}

func parseEventType(eventType string) constants.ActionEventType {
	if constants.ActionEventType(strings.ToUpper(eventType)) == constants.ActionEventTypeTrigger {
		return constants.ActionEventTypeTrigger
	}
	return constants.ActionEventTypeSubmit
}

// normalizeAuthenticators projects raw authenticators into the canonical
// shape. Authenticators without an ID cannot be selected and are dropped.
func normalizeAuthenticators(raws []model.RawAuthenticator, logger *log.Logger) []model.Authenticator {
	if len(raws) == 0 {
		return nil
	}
	authenticators := make([]model.Authenticator, 0, len(raws))
	for _, raw := range raws {
		if raw.AuthenticatorID == "" {
			logger.Warn("Dropping authenticator without an ID", log.String("idp", raw.IDP))
			continue
		}
		authenticator := model.Authenticator{
			AuthenticatorID: raw.AuthenticatorID,
			IDP:             raw.IDP,
			RequiredParams:  raw.RequiredParams,
		}
		if raw.Metadata != nil {
			authenticator.Metadata = model.AuthenticatorMetadata{
				PromptType:     parsePromptType(raw.Metadata.PromptType, logger),
				AdditionalData: raw.Metadata.AdditionalData,
			}
			for _, p := range raw.Metadata.Params {
				authenticator.Metadata.Params = append(authenticator.Metadata.Params,
					model.ParamSpec{Param: p.Param, Type: p.Type})
			}
		}
		authenticators = append(authenticators, authenticator)
	}
	return authenticators
}

func parsePromptType(promptType string, logger *log.Logger) constants.PromptType {
	switch constants.PromptType(promptType) {
	case constants.PromptTypeUser, constants.PromptTypeRedirection, constants.PromptTypeInternal:
		return constants.PromptType(promptType)
	case "":
		return constants.PromptTypeUser
	default:
		logger.Warn("Unknown prompt type, treating as user prompt", log.String("promptType", promptType))
		return constants.PromptTypeUser
	}
}

// normalizeMessages maps wire messages onto the canonical shape preserving
// insertion order. Unknown severities default to INFO.
func normalizeMessages(raws []model.RawMessage) []model.Message {
	if len(raws) == 0 {
		return nil
	}
	messages := make([]model.Message, 0, len(raws))
	for _, raw := range raws {
		severity := constants.MessageSeverity(strings.ToUpper(raw.Severity))
		switch severity {
		case constants.MessageSeverityInfo, constants.MessageSeverityWarning,
			constants.MessageSeverityError:
		default:
			severity = constants.MessageSeverityInfo
		}
		messages = append(messages, model.Message{Text: raw.Text, Severity: severity})
	}
	return messages
}

// extractFailureReason resolves the human-readable reason for an error
// payload. Extraction order: structured failure reason, description or
// message nested inside a JSON encoded error string, raw error body fields,
// generic fallback.
func extractFailureReason(raw *model.RawFlowResponse) string {
	if raw.FailureReason != "" {
		if nested := extractNestedReason(raw.FailureReason); nested != "" {
			return nested
		}
		return raw.FailureReason
	}
	if raw.Description != "" {
		return raw.Description
	}
	if raw.Message != "" {
		return raw.Message
	}
	return GenericFailureMessage
}

// extractNestedReason unwraps a failure reason that is itself a JSON encoded
// error object carrying a description or message field.
func extractNestedReason(reason string) string {
	trimmed := strings.TrimSpace(reason)
	if !strings.HasPrefix(trimmed, "{") {
		return ""
	}
	var nested struct {
		Description string `json:"description"`
		Message     string `json:"message"`
	}
	if err := json.Unmarshal([]byte(trimmed), &nested); err != nil {
		return ""
	}
	if nested.Description != "" {
		return nested.Description
	}
	return nested.Message
}
