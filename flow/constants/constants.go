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

// Package constants defines the constants used by the embedded flow client.
package constants

// FlowType defines the type of flow execution.
type FlowType string

const (
	// FlowTypeAuthentication represents a flow execution for user authentication.
	FlowTypeAuthentication FlowType = "AUTHENTICATION"
	// FlowTypeRegistration represents a flow execution for user registration.
	FlowTypeRegistration FlowType = "REGISTRATION"
	// FlowTypeInvite represents a flow execution for invite acceptance.
	FlowTypeInvite FlowType = "INVITE"
)

// FlowStatus defines the status of a flow execution.
type FlowStatus string

const (
	// FlowStatusComplete indicates that the flow execution completed successfully.
	FlowStatusComplete FlowStatus = "COMPLETE"
	// FlowStatusIncomplete indicates that the flow execution requires further steps.
	FlowStatusIncomplete FlowStatus = "INCOMPLETE"
	// FlowStatusFailIncomplete indicates that the flow execution failed before completing.
	FlowStatusFailIncomplete FlowStatus = "FAIL_INCOMPLETE"
	// FlowStatusFailCompleted indicates that the flow execution ran to completion and failed.
	FlowStatusFailCompleted FlowStatus = "FAIL_COMPLETED"
	// FlowStatusError indicates that there was an error during the flow execution.
	FlowStatusError FlowStatus = "ERROR"
)

// IsTerminal reports whether the status ends the flow. No further submissions
// are issued for a flow once its status is terminal.
func (s FlowStatus) IsTerminal() bool {
	switch s {
	case FlowStatusComplete, FlowStatusFailIncomplete, FlowStatusFailCompleted:
		return true
	default:
		return false
	}
}

// IsFailure reports whether the status is a terminal failure.
func (s FlowStatus) IsFailure() bool {
	return s == FlowStatusFailIncomplete || s == FlowStatusFailCompleted
}

// ResponseType defines the type of a step in the flow execution.
type ResponseType string

const (
	// ResponseTypeView represents a step that renders components and collects user input.
	ResponseTypeView ResponseType = "VIEW"
	// ResponseTypeRedirection represents a step that redirects the user to another URL.
	ResponseTypeRedirection ResponseType = "REDIRECTION"
)

// ComponentType defines the renderable component types in a flow step.
type ComponentType string

const (
	// ComponentTypeTextInput represents a plain text input field.
	ComponentTypeTextInput ComponentType = "TEXT_INPUT"
	// ComponentTypePasswordInput represents a password input field.
	ComponentTypePasswordInput ComponentType = "PASSWORD_INPUT"
	// ComponentTypeEmailInput represents an email input field.
	ComponentTypeEmailInput ComponentType = "EMAIL_INPUT"
	// ComponentTypeSelect represents a selection field with predefined options.
	ComponentTypeSelect ComponentType = "SELECT"
	// ComponentTypeAction represents an actionable element such as a button.
	ComponentTypeAction ComponentType = "ACTION"
	// ComponentTypeText represents a static text element.
	ComponentTypeText ComponentType = "TEXT"
	// ComponentTypeDivider represents a visual divider element.
	ComponentTypeDivider ComponentType = "DIVIDER"
	// ComponentTypeBlock represents a grouping element nesting other components.
	ComponentTypeBlock ComponentType = "BLOCK"
)

// ActionEventType defines how an action component is submitted.
type ActionEventType string

const (
	// ActionEventTypeSubmit submits the current form after local validation.
	ActionEventTypeSubmit ActionEventType = "SUBMIT"
	// ActionEventTypeTrigger submits without local validation.
	ActionEventTypeTrigger ActionEventType = "TRIGGER"
)

// ActionVariant hints at the rendering style of an action component.
type ActionVariant string

const (
	// ActionVariantPrimary represents the primary action of a step.
	ActionVariantPrimary ActionVariant = "PRIMARY"
	// ActionVariantSecondary represents a secondary action of a step.
	ActionVariantSecondary ActionVariant = "SECONDARY"
	// ActionVariantSocial represents a social login action.
	ActionVariantSocial ActionVariant = "SOCIAL"
)

// PromptType defines how an authenticator expects to collect its parameters.
type PromptType string

const (
	// PromptTypeUser indicates the authenticator collects parameters via a rendered form.
	PromptTypeUser PromptType = "USER_PROMPT"
	// PromptTypeRedirection indicates the authenticator resolves via an external redirection.
	PromptTypeRedirection PromptType = "REDIRECTION_PROMPT"
	// PromptTypeInternal indicates the authenticator resolves via a platform ceremony
	// without user visible form interaction.
	PromptTypeInternal PromptType = "INTERNAL_PROMPT"
)

// MessageSeverity defines the severity of a server-declared message.
type MessageSeverity string

const (
	// MessageSeverityInfo represents an informational message.
	MessageSeverityInfo MessageSeverity = "INFO"
	// MessageSeverityWarning represents a warning message.
	MessageSeverityWarning MessageSeverity = "WARNING"
	// MessageSeverityError represents an error message.
	MessageSeverityError MessageSeverity = "ERROR"
)

const (
	// DataPasskeyCreationOptions is the additional data key carrying a passkey
	// registration challenge.
	DataPasskeyCreationOptions = "passkeyCreationOptions"
	// DataPasskeyRequestOptions is the additional data key carrying a passkey
	// assertion challenge.
	DataPasskeyRequestOptions = "passkeyRequestOptions"
	// DataInviteLink is the additional data key carrying a generated invite link.
	DataInviteLink = "inviteLink"
	// DataIDPName is the additional data key carrying the identity provider name.
	DataIDPName = "idpName"
)

const (
	// InputCode is the input key used to submit an authorization code.
	InputCode = "code"
	// InputState is the input key used to submit an authorization state value.
	InputState = "state"
	// InputCredential is the input key used to submit a passkey credential response.
	InputCredential = "credential"
	// InputAuthenticatorID is the input key used to submit a legacy authenticator selection.
	InputAuthenticatorID = "authenticatorId"
)
