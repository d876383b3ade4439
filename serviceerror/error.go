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

// Package serviceerror defines the error structures used across the SDK.
package serviceerror

// ServiceErrorType defines the type of service error.
type ServiceErrorType string

const (
	// ClientErrorType denotes an error caused by an invalid client request.
	ClientErrorType ServiceErrorType = "client_error"
	// ServerErrorType denotes an unexpected server side error.
	ServerErrorType ServiceErrorType = "server_error"
	// TransportErrorType denotes a network or HTTP level failure without a structured server response.
	TransportErrorType ServiceErrorType = "transport_error"
	// ProtocolErrorType denotes a structured error status returned by the flow server.
	ProtocolErrorType ServiceErrorType = "protocol_error"
	// CeremonyErrorType denotes a failed or rejected passkey ceremony.
	CeremonyErrorType ServiceErrorType = "ceremony_error"
	// StallErrorType denotes a non-terminating auto-advance loop detected by the engine.
	StallErrorType ServiceErrorType = "stall_error"
)

// ServiceError defines a generic error structure that can be used across the SDK.
type ServiceError struct {
	Code             string           `json:"code"`
	Type             ServiceErrorType `json:"type"`
	Error            string           `json:"error"`
	ErrorDescription string           `json:"error_description,omitempty"`
}

// CustomServiceError returns a copy of the given error with a custom description.
func CustomServiceError(svcErr ServiceError, description string) *ServiceError {
	svcErr.ErrorDescription = description
	return &svcErr
}
