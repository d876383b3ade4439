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

// Package passkey runs the platform WebAuthn ceremony for passkey steps and
// funnels the credential result back into the flow as a synthetic submission.
package passkey

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"sync"

	"github.com/go-webauthn/webauthn/protocol"

	"github.com/asgardeo/flowkit/flow/constants"
	"github.com/asgardeo/flowkit/flow/model"
	"github.com/asgardeo/flowkit/internal/system/log"
	"github.com/asgardeo/flowkit/serviceerror"
)

const loggerComponentName = "PasskeyHandler"

// ErrCeremonyCancelled is returned by a PlatformAuthenticator when the user
// dismisses the platform prompt. The handler maps it to a distinguished
// cancellation error instead of a generic ceremony failure.
var ErrCeremonyCancelled = errors.New("ceremony cancelled by the user")

// CeremonyKind discriminates registration from assertion ceremonies.
type CeremonyKind string

const (
	// CeremonyRegistration creates a new platform credential.
	CeremonyRegistration CeremonyKind = "REGISTRATION"
	// CeremonyAssertion proves possession of an existing credential.
	CeremonyAssertion CeremonyKind = "ASSERTION"
)

// Challenge is one passkey challenge extracted from a flow step.
type Challenge struct {
	Kind    CeremonyKind
	Options string
}

// PlatformAuthenticator abstracts the platform WebAuthn API. Hosting
// applications bridge this to their environment's credential container.
type PlatformAuthenticator interface {
	// Create runs a registration ceremony and returns the credential creation
	// response in the WebAuthn JSON wire shape.
	Create(ctx context.Context, options protocol.CredentialCreation) (json.RawMessage, error)
	// Get runs an assertion ceremony and returns the credential assertion
	// response in the WebAuthn JSON wire shape.
	Get(ctx context.Context, options protocol.CredentialAssertion) (json.RawMessage, error)
}

// DetectChallenge inspects a step for passkey challenge data. Registration
// challenges arrive in the step's additional data; assertion challenges
// arrive either in the step's additional data or on an internal-prompt
// authenticator's metadata.
func DetectChallenge(resp *model.FlowResponse, current *model.Authenticator) (Challenge, bool) {
	if resp != nil {
		if options := resp.AdditionalData[constants.DataPasskeyCreationOptions]; options != "" {
			return Challenge{Kind: CeremonyRegistration, Options: options}, true
		}
		if options := resp.AdditionalData[constants.DataPasskeyRequestOptions]; options != "" {
			return Challenge{Kind: CeremonyAssertion, Options: options}, true
		}
	}
	if current != nil && current.IsInternal() {
		if options := current.Metadata.AdditionalData[constants.DataPasskeyRequestOptions]; options != "" {
			return Challenge{Kind: CeremonyAssertion, Options: options}, true
		}
	}
	return Challenge{}, false
}

// ceremonyState tracks a ceremony invocation for the duplicate-trigger guard.
type ceremonyState int

const (
	ceremonyInFlight ceremonyState = iota + 1
	ceremonyDone
)

// Handler owns passkey ceremony invocation state. Each challenge is invoked
// at most once even if the enclosing render re-fires; a failed ceremony
// clears the guard so the user can retry deliberately.
type Handler struct {
	authenticator PlatformAuthenticator

	mu        sync.Mutex
	processed map[string]ceremonyState
}

// NewHandler creates a passkey handler bound to a platform authenticator.
func NewHandler(authenticator PlatformAuthenticator) *Handler {
	return &Handler{
		authenticator: authenticator,
		processed:     make(map[string]ceremonyState),
	}
}

// Run invokes the platform ceremony for the challenge exactly once and
// packages the credential response into the protocol's expected input shape.
// Failures are reported without automatic retry; user cancellation is
// distinguished from generic ceremony failure.
func (h *Handler) Run(ctx context.Context, flowID string, challenge Challenge) (
	map[string]string, *serviceerror.ServiceError) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName),
		log.String(log.LoggerKeyFlowID, flowID))

	if h.authenticator == nil {
		return nil, &constants.ErrorCeremonyUnavailable
	}

	key := ceremonyKey(flowID, challenge)
	h.mu.Lock()
	if h.processed[key] != 0 {
		h.mu.Unlock()
		logger.Debug("Ceremony already invoked for this challenge")
		return nil, &constants.ErrorCeremonyAlreadyProcessed
	}
	h.processed[key] = ceremonyInFlight
	h.mu.Unlock()

	credential, svcErr := h.invoke(ctx, challenge, logger)

	h.mu.Lock()
	if svcErr != nil {
		delete(h.processed, key)
	} else {
		h.processed[key] = ceremonyDone
	}
	h.mu.Unlock()

	if svcErr != nil {
		return nil, svcErr
	}
	return map[string]string{constants.InputCredential: string(credential)}, nil
}

// Reset clears all invocation state, e.g. when the owning flow is reset.
func (h *Handler) Reset() {
	h.mu.Lock()
	h.processed = make(map[string]ceremonyState)
	h.mu.Unlock()
}

func (h *Handler) invoke(ctx context.Context, challenge Challenge,
	logger *log.Logger) (json.RawMessage, *serviceerror.ServiceError) {
	switch challenge.Kind {
	case CeremonyRegistration:
		var options protocol.CredentialCreation
		if err := json.Unmarshal([]byte(challenge.Options), &options); err != nil {
			logger.Debug("Failed to parse creation options", log.Error(err))
			return nil, &constants.ErrorInvalidPasskeyChallenge
		}
		if len(options.Response.Challenge) == 0 {
			return nil, &constants.ErrorInvalidPasskeyChallenge
		}
		credential, err := h.authenticator.Create(ctx, options)
		if err != nil {
			return nil, mapCeremonyError(err, logger)
		}
		return credential, nil

	case CeremonyAssertion:
		var options protocol.CredentialAssertion
		if err := json.Unmarshal([]byte(challenge.Options), &options); err != nil {
			logger.Debug("Failed to parse assertion options", log.Error(err))
			return nil, &constants.ErrorInvalidPasskeyChallenge
		}
		if len(options.Response.Challenge) == 0 {
			return nil, &constants.ErrorInvalidPasskeyChallenge
		}
		credential, err := h.authenticator.Get(ctx, options)
		if err != nil {
			return nil, mapCeremonyError(err, logger)
		}
		return credential, nil

	default:
		return nil, &constants.ErrorInvalidPasskeyChallenge
	}
}

func mapCeremonyError(err error, logger *log.Logger) *serviceerror.ServiceError {
	if errors.Is(err, ErrCeremonyCancelled) {
		logger.Debug("Ceremony cancelled by the user")
		return &constants.ErrorCeremonyCancelled
	}
	logger.Error("Platform ceremony failed", log.Error(err))
	return serviceerror.CustomServiceError(constants.ErrorCeremonyFailed, err.Error())
}

// ceremonyKey derives the dedupe key for one ceremony invocation from the
// flow and the challenge content.
func ceremonyKey(flowID string, challenge Challenge) string {
	sum := sha256.Sum256([]byte(challenge.Options))
	return flowID + ":" + string(challenge.Kind) + ":" + hex.EncodeToString(sum[:8])
}
