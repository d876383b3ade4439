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

package constants

import (
	"github.com/asgardeo/flowkit/serviceerror"
)

// Client error structs

var ErrorFlowNotInitialized = serviceerror.ServiceError{
	Code:             "FCE-60001",
	Type:             serviceerror.ClientErrorType,
	Error:            "Invalid engine state",
	ErrorDescription: "The flow has not been initialized",
}

var ErrorSubmissionInFlight = serviceerror.ServiceError{
	Code:             "FCE-60002",
	Type:             serviceerror.ClientErrorType,
	Error:            "Submission in progress",
	ErrorDescription: "A submission is already in flight for this flow",
}

var ErrorFlowAlreadyTerminal = serviceerror.ServiceError{
	Code:             "FCE-60003",
	Type:             serviceerror.ClientErrorType,
	Error:            "Flow already terminated",
	ErrorDescription: "The flow has reached a terminal status and accepts no further submissions",
}

var ErrorHandoffInProgress = serviceerror.ServiceError{
	Code:             "FCE-60004",
	Type:             serviceerror.ClientErrorType,
	Error:            "Handoff in progress",
	ErrorDescription: "An out-of-band interaction is pending for this flow",
}

var ErrorInvalidSelection = serviceerror.ServiceError{
	Code:             "FCE-60005",
	Type:             serviceerror.ClientErrorType,
	Error:            "Invalid selection",
	ErrorDescription: "The selected action or authenticator is not part of the current step",
}

var ErrorMissingTransport = serviceerror.ServiceError{
	Code:             "FCE-60006",
	Type:             serviceerror.ClientErrorType,
	Error:            "Invalid configuration",
	ErrorDescription: "A transport is required to drive the flow",
}

// Transport error structs

var ErrorTransportFailure = serviceerror.ServiceError{
	Code:             "FCE-61001",
	Type:             serviceerror.TransportErrorType,
	Error:            "Request failed",
	ErrorDescription: "Failed to communicate with the flow execution endpoint",
}

// Protocol error structs

var ErrorFlowFailure = serviceerror.ServiceError{
	Code:             "FCE-62001",
	Type:             serviceerror.ProtocolErrorType,
	Error:            "Flow failed",
	ErrorDescription: "The flow terminated with a failure status",
}

var ErrorProtocolFailure = serviceerror.ServiceError{
	Code:             "FCE-62002",
	Type:             serviceerror.ProtocolErrorType,
	Error:            "Flow error",
	ErrorDescription: "The server reported an error for the current step",
}

var ErrorMissingRedirectURL = serviceerror.ServiceError{
	Code:             "FCE-62003",
	Type:             serviceerror.ProtocolErrorType,
	Error:            "Flow error",
	ErrorDescription: "A redirection step was returned without a redirect URL",
}

// Stall error structs

var ErrorStallDetected = serviceerror.ServiceError{
	Code:             "FCE-63001",
	Type:             serviceerror.StallErrorType,
	Error:            "Flow stalled",
	ErrorDescription: "The flow repeated the same step without making progress",
}

// Redirect handoff error structs

var ErrorRedirectBlocked = serviceerror.ServiceError{
	Code:             "FCE-64001",
	Type:             serviceerror.ClientErrorType,
	Error:            "Redirect blocked",
	ErrorDescription: "The browsing context for the redirection could not be opened",
}

var ErrorRedirectWindowClosed = serviceerror.ServiceError{
	Code:             "FCE-64002",
	Type:             serviceerror.ClientErrorType,
	Error:            "Redirect cancelled",
	ErrorDescription: "The browsing context was closed before the redirection resolved",
}

var ErrorRedirectDenied = serviceerror.ServiceError{
	Code:             "FCE-64003",
	Type:             serviceerror.ProtocolErrorType,
	Error:            "Redirect failed",
	ErrorDescription: "The identity provider returned an error for the redirection",
}

var ErrorRedirectTimeout = serviceerror.ServiceError{
	Code:             "FCE-64004",
	Type:             serviceerror.ClientErrorType,
	Error:            "Redirect timed out",
	ErrorDescription: "The redirection did not resolve within the allowed duration",
}

var ErrorRedirectUnavailable = serviceerror.ServiceError{
	Code:             "FCE-64005",
	Type:             serviceerror.ClientErrorType,
	Error:            "Redirect unavailable",
	ErrorDescription: "No window opener is configured for redirection steps",
}

// Ceremony error structs

var ErrorCeremonyFailed = serviceerror.ServiceError{
	Code:             "FCE-66001",
	Type:             serviceerror.CeremonyErrorType,
	Error:            "Passkey ceremony failed",
	ErrorDescription: "The platform credential ceremony did not complete",
}

var ErrorCeremonyCancelled = serviceerror.ServiceError{
	Code:             "FCE-66002",
	Type:             serviceerror.CeremonyErrorType,
	Error:            "Passkey ceremony cancelled",
	ErrorDescription: "The user cancelled the platform credential ceremony",
}

var ErrorCeremonyAlreadyProcessed = serviceerror.ServiceError{
	Code:             "FCE-66003",
	Type:             serviceerror.CeremonyErrorType,
	Error:            "Passkey ceremony already processed",
	ErrorDescription: "The ceremony for this challenge has already been invoked",
}

var ErrorInvalidPasskeyChallenge = serviceerror.ServiceError{
	Code:             "FCE-66004",
	Type:             serviceerror.CeremonyErrorType,
	Error:            "Invalid passkey challenge",
	ErrorDescription: "The passkey challenge payload could not be parsed",
}

var ErrorCeremonyUnavailable = serviceerror.ServiceError{
	Code:             "FCE-66005",
	Type:             serviceerror.CeremonyErrorType,
	Error:            "Passkey ceremony unavailable",
	ErrorDescription: "No platform authenticator is configured for passkey steps",
}
