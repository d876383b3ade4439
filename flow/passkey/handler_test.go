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

package passkey

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/descope/virtualwebauthn"
	"github.com/go-webauthn/webauthn/protocol"
	"github.com/stretchr/testify/suite"

	"github.com/asgardeo/flowkit/flow/constants"
	"github.com/asgardeo/flowkit/flow/model"
)

const (
	testRPID     = "example.com"
	testRPName   = "Example Corp"
	testRPOrigin = "https://example.com"

	creationOptionsJSON = `{"publicKey":{
		"challenge":"dGVzdC1yZWdpc3RyYXRpb24tY2hhbGxlbmdl",
		"rp":{"name":"Example Corp","id":"example.com"},
		"user":{"name":"alice@example.com","displayName":"Alice","id":"dXNlci1pZC0xMjM0"},
		"pubKeyCredParams":[{"type":"public-key","alg":-7},{"type":"public-key","alg":-257}],
		"timeout":60000,
		"authenticatorSelection":{"userVerification":"preferred"}
	}}`
)

// virtualPlatform bridges the platform authenticator contract to a virtual
// WebAuthn authenticator so ceremonies produce genuine credential responses.
type virtualPlatform struct {
	rp            virtualwebauthn.RelyingParty
	authenticator virtualwebauthn.Authenticator
	credential    virtualwebauthn.Credential
}

func newVirtualPlatform() *virtualPlatform {
	return &virtualPlatform{
		rp:            virtualwebauthn.RelyingParty{Name: testRPName, ID: testRPID, Origin: testRPOrigin},
		authenticator: virtualwebauthn.NewAuthenticator(),
		credential:    virtualwebauthn.NewCredential(virtualwebauthn.KeyTypeEC2),
	}
}

func (v *virtualPlatform) Create(_ context.Context, options protocol.CredentialCreation) (
	json.RawMessage, error) {
	optionsJSON, err := json.Marshal(options.Response)
	if err != nil {
		return nil, err
	}
	parsed, err := virtualwebauthn.ParseAttestationOptions(string(optionsJSON))
	if err != nil {
		return nil, err
	}
	response := virtualwebauthn.CreateAttestationResponse(v.rp, v.authenticator, v.credential, *parsed)
	return json.RawMessage(response), nil
}

func (v *virtualPlatform) Get(_ context.Context, options protocol.CredentialAssertion) (
	json.RawMessage, error) {
	optionsJSON, err := json.Marshal(options.Response)
	if err != nil {
		return nil, err
	}
	parsed, err := virtualwebauthn.ParseAssertionOptions(string(optionsJSON))
	if err != nil {
		return nil, err
	}
	response := virtualwebauthn.CreateAssertionResponse(v.rp, v.authenticator, v.credential, *parsed)
	return json.RawMessage(response), nil
}

// failingPlatform fails every ceremony with a fixed error.
type failingPlatform struct {
	err error
}

func (f *failingPlatform) Create(context.Context, protocol.CredentialCreation) (json.RawMessage, error) {
	return nil, f.err
}

func (f *failingPlatform) Get(context.Context, protocol.CredentialAssertion) (json.RawMessage, error) {
	return nil, f.err
}

func assertionOptionsFor(credentialID []byte) string {
	return fmt.Sprintf(`{"publicKey":{
		"challenge":"dGVzdC1hc3NlcnRpb24tY2hhbGxlbmdl",
		"rpId":"example.com",
		"allowCredentials":[{"type":"public-key","id":"%s"}],
		"userVerification":"preferred",
		"timeout":60000
	}}`, base64.RawURLEncoding.EncodeToString(credentialID))
}

type HandlerTestSuite struct {
	suite.Suite
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerTestSuite))
}

func (suite *HandlerTestSuite) TestRegistrationCeremony() {
	platform := newVirtualPlatform()
	handler := NewHandler(platform)

	inputs, svcErr := handler.Run(context.Background(), "flow-001",
		Challenge{Kind: CeremonyRegistration, Options: creationOptionsJSON})

	suite.Require().Nil(svcErr)
	suite.Require().Contains(inputs, constants.InputCredential)

	// The credential response must be genuine WebAuthn wire format.
	var ccr protocol.CredentialCreationResponse
	suite.Require().NoError(json.Unmarshal([]byte(inputs[constants.InputCredential]), &ccr))
	parsed, err := ccr.Parse()
	suite.Require().NoError(err)
	suite.NotEmpty(parsed.ID)
}

func (suite *HandlerTestSuite) TestAssertionCeremony() {
	platform := newVirtualPlatform()
	handler := NewHandler(platform)

	// Register first so the virtual authenticator holds the credential.
	_, svcErr := handler.Run(context.Background(), "flow-002",
		Challenge{Kind: CeremonyRegistration, Options: creationOptionsJSON})
	suite.Require().Nil(svcErr)
	platform.authenticator.AddCredential(platform.credential)

	inputs, svcErr := handler.Run(context.Background(), "flow-002",
		Challenge{Kind: CeremonyAssertion, Options: assertionOptionsFor(platform.credential.ID)})

	suite.Require().Nil(svcErr)
	var car protocol.CredentialAssertionResponse
	suite.Require().NoError(json.Unmarshal([]byte(inputs[constants.InputCredential]), &car))
	parsed, err := car.Parse()
	suite.Require().NoError(err)
	suite.NotEmpty(parsed.ID)
}

// TestDuplicateChallengeRejected verifies that a re-fired render cannot invoke
// the same ceremony twice.
func (suite *HandlerTestSuite) TestDuplicateChallengeRejected() {
	platform := newVirtualPlatform()
	handler := NewHandler(platform)
	challenge := Challenge{Kind: CeremonyRegistration, Options: creationOptionsJSON}

	_, svcErr := handler.Run(context.Background(), "flow-003", challenge)
	suite.Require().Nil(svcErr)

	_, svcErr = handler.Run(context.Background(), "flow-003", challenge)
	suite.Require().NotNil(svcErr)
	suite.Equal(constants.ErrorCeremonyAlreadyProcessed.Code, svcErr.Code)

	// The same challenge on a different flow is a distinct ceremony.
	_, svcErr = handler.Run(context.Background(), "flow-004", challenge)
	suite.Nil(svcErr)
}

func (suite *HandlerTestSuite) TestFailedCeremonyCanBeRetried() {
	failing := &failingPlatform{err: errors.New("authenticator unplugged")}
	handler := NewHandler(failing)
	challenge := Challenge{Kind: CeremonyRegistration, Options: creationOptionsJSON}

	_, svcErr := handler.Run(context.Background(), "flow-005", challenge)
	suite.Require().NotNil(svcErr)
	suite.Equal(constants.ErrorCeremonyFailed.Code, svcErr.Code)
	suite.Contains(svcErr.ErrorDescription, "authenticator unplugged")

	// A failure clears the guard so a deliberate retry is allowed.
	handler.authenticator = newVirtualPlatform()
	_, svcErr = handler.Run(context.Background(), "flow-005", challenge)
	suite.Nil(svcErr)
}

func (suite *HandlerTestSuite) TestCancellationIsDistinguished() {
	cancelling := &failingPlatform{err: fmt.Errorf("prompt dismissed: %w", ErrCeremonyCancelled)}
	handler := NewHandler(cancelling)

	_, svcErr := handler.Run(context.Background(), "flow-006",
		Challenge{Kind: CeremonyRegistration, Options: creationOptionsJSON})

	suite.Require().NotNil(svcErr)
	suite.Equal(constants.ErrorCeremonyCancelled.Code, svcErr.Code)
}

func (suite *HandlerTestSuite) TestInvalidChallenges() {
	handler := NewHandler(newVirtualPlatform())

	tests := []struct {
		name      string
		challenge Challenge
	}{
		{
			name:      "Unparseable options",
			challenge: Challenge{Kind: CeremonyRegistration, Options: "not json"},
		},
		{
			name:      "Missing challenge value",
			challenge: Challenge{Kind: CeremonyRegistration, Options: `{"publicKey":{"rp":{"name":"x"}}}`},
		},
		{
			name:      "Unknown ceremony kind",
			challenge: Challenge{Kind: "TELEPATHY", Options: creationOptionsJSON},
		},
		{
			name:      "Unparseable assertion options",
			challenge: Challenge{Kind: CeremonyAssertion, Options: "{{"},
		},
	}

	for _, tc := range tests {
		suite.T().Run(tc.name, func(t *testing.T) {
			_, svcErr := handler.Run(context.Background(), "flow-007", tc.challenge)
			if svcErr == nil || svcErr.Code != constants.ErrorInvalidPasskeyChallenge.Code {
				t.Errorf("expected invalid challenge error, got %+v", svcErr)
			}
		})
	}
}

func (suite *HandlerTestSuite) TestNoPlatformAuthenticator() {
	handler := NewHandler(nil)

	_, svcErr := handler.Run(context.Background(), "flow-008",
		Challenge{Kind: CeremonyRegistration, Options: creationOptionsJSON})

	suite.Require().NotNil(svcErr)
	suite.Equal(constants.ErrorCeremonyUnavailable.Code, svcErr.Code)
}

func (suite *HandlerTestSuite) TestResetClearsInvocationState() {
	handler := NewHandler(newVirtualPlatform())
	challenge := Challenge{Kind: CeremonyRegistration, Options: creationOptionsJSON}

	_, svcErr := handler.Run(context.Background(), "flow-009", challenge)
	suite.Require().Nil(svcErr)

	handler.Reset()

	_, svcErr = handler.Run(context.Background(), "flow-009", challenge)
	suite.Nil(svcErr)
}

func (suite *HandlerTestSuite) TestDetectChallenge() {
	creation := creationOptionsJSON
	request := assertionOptionsFor([]byte("cred"))

	tests := []struct {
		name     string
		resp     *model.FlowResponse
		current  *model.Authenticator
		expected CeremonyKind
		found    bool
	}{
		{
			name: "Creation options in additional data",
			resp: &model.FlowResponse{AdditionalData: map[string]string{
				constants.DataPasskeyCreationOptions: creation,
			}},
			expected: CeremonyRegistration,
			found:    true,
		},
		{
			name: "Request options in additional data",
			resp: &model.FlowResponse{AdditionalData: map[string]string{
				constants.DataPasskeyRequestOptions: request,
			}},
			expected: CeremonyAssertion,
			found:    true,
		},
		{
			name: "Request options on internal prompt authenticator",
			resp: &model.FlowResponse{},
			current: &model.Authenticator{
				AuthenticatorID: "passkey-auth",
				Metadata: model.AuthenticatorMetadata{
					PromptType: constants.PromptTypeInternal,
					AdditionalData: map[string]string{
						constants.DataPasskeyRequestOptions: request,
					},
				},
			},
			expected: CeremonyAssertion,
			found:    true,
		},
		{
			name: "Options on non-internal authenticator ignored",
			resp: &model.FlowResponse{},
			current: &model.Authenticator{
				AuthenticatorID: "basic-auth",
				Metadata: model.AuthenticatorMetadata{
					PromptType: constants.PromptTypeUser,
					AdditionalData: map[string]string{
						constants.DataPasskeyRequestOptions: request,
					},
				},
			},
			found: false,
		},
		{
			name:  "No challenge anywhere",
			resp:  &model.FlowResponse{AdditionalData: map[string]string{"other": "x"}},
			found: false,
		},
	}

	for _, tc := range tests {
		suite.T().Run(tc.name, func(t *testing.T) {
			challenge, found := DetectChallenge(tc.resp, tc.current)
			if found != tc.found {
				t.Fatalf("expected found=%v, got %v", tc.found, found)
			}
			if found && challenge.Kind != tc.expected {
				t.Errorf("expected kind %s, got %s", tc.expected, challenge.Kind)
			}
		})
	}
}
