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

package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/asgardeo/flowkit/flow/constants"
	"github.com/asgardeo/flowkit/flow/model"
)

type TransportTestSuite struct {
	suite.Suite

	mu       sync.Mutex
	requests []model.FlowRequest
	status   int
	body     string
	server   *httptest.Server
}

func TestTransportSuite(t *testing.T) {
	suite.Run(t, new(TransportTestSuite))
}

func (suite *TransportTestSuite) SetupTest() {
	suite.requests = nil
	suite.status = http.StatusOK
	suite.body = `{"flowId":"flow-1","flowStatus":"INCOMPLETE"}`
	suite.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		suite.Equal(http.MethodPost, r.Method)
		suite.Equal("application/json", r.Header.Get("Content-Type"))

		var req model.FlowRequest
		suite.Require().NoError(json.NewDecoder(r.Body).Decode(&req))
		suite.mu.Lock()
		suite.requests = append(suite.requests, req)
		status, body := suite.status, suite.body
		suite.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
}

func (suite *TransportTestSuite) TearDownTest() {
	suite.server.Close()
}

func (suite *TransportTestSuite) newTransport() *HTTPTransport {
	t, err := NewHTTPTransport(Config{
		BaseURL:       suite.server.URL,
		ApplicationID: "app-001",
		FlowType:      constants.FlowTypeAuthentication,
	})
	suite.Require().NoError(err)
	return t
}

func (suite *TransportTestSuite) setResponse(status int, body string) {
	suite.mu.Lock()
	defer suite.mu.Unlock()
	suite.status = status
	suite.body = body
}

func (suite *TransportTestSuite) lastRequest() model.FlowRequest {
	suite.mu.Lock()
	defer suite.mu.Unlock()
	suite.Require().NotEmpty(suite.requests)
	return suite.requests[len(suite.requests)-1]
}

func (suite *TransportTestSuite) TestBaseURLRequired() {
	_, err := NewHTTPTransport(Config{BaseURL: "   "})

	suite.Error(err)
}

func (suite *TransportTestSuite) TestInitCarriesApplicationAndFlowType() {
	transport := suite.newTransport()

	payload, err := transport.Init(context.Background(), model.FlowRequest{})

	suite.Require().NoError(err)
	suite.JSONEq(suite.body, string(payload))

	req := suite.lastRequest()
	suite.Equal("app-001", req.ApplicationID)
	suite.Equal(string(constants.FlowTypeAuthentication), req.FlowType)
	suite.Empty(req.FlowID, "the server assigns the flow ID on init")
}

func (suite *TransportTestSuite) TestInitStripsStaleFlowID() {
	transport := suite.newTransport()

	_, err := transport.Init(context.Background(), model.FlowRequest{FlowID: "stale"})

	suite.Require().NoError(err)
	suite.Empty(suite.lastRequest().FlowID)
}

func (suite *TransportTestSuite) TestSubmitRequiresFlowID() {
	transport := suite.newTransport()

	_, err := transport.Submit(context.Background(), model.FlowRequest{})

	suite.Error(err)
	suite.mu.Lock()
	suite.Empty(suite.requests, "a request without a flow ID must not reach the server")
	suite.mu.Unlock()
}

func (suite *TransportTestSuite) TestSubmitCarriesSelectionAndInputs() {
	transport := suite.newTransport()

	_, err := transport.Submit(context.Background(), model.FlowRequest{
		FlowID:   "flow-1",
		ActionID: "continue",
		Inputs:   map[string]string{"username": "alice"},
	})

	suite.Require().NoError(err)
	req := suite.lastRequest()
	suite.Equal("flow-1", req.FlowID)
	suite.Equal("continue", req.ActionID)
	suite.Equal("alice", req.Inputs["username"])
}

// TestNon2xxWithBodyReturnsPayload verifies the error body contract: a
// structured error response is handed to the caller for normalization rather
// than swallowed.
func (suite *TransportTestSuite) TestNon2xxWithBodyReturnsPayload() {
	errorBody := `{"code":"FES-60001","message":"Bad request","description":"Invalid inputs"}`
	suite.setResponse(http.StatusBadRequest, errorBody)
	transport := suite.newTransport()

	payload, err := transport.Submit(context.Background(), model.FlowRequest{FlowID: "flow-1"})

	suite.Require().NoError(err)
	suite.JSONEq(errorBody, string(payload))
}

func (suite *TransportTestSuite) TestNon2xxWithoutBodyIsAnError() {
	suite.setResponse(http.StatusBadGateway, "")
	transport := suite.newTransport()

	_, err := transport.Submit(context.Background(), model.FlowRequest{FlowID: "flow-1"})

	suite.Error(err)
}

func (suite *TransportTestSuite) TestServerUnreachable() {
	unreachable, err := NewHTTPTransport(Config{BaseURL: "http://127.0.0.1:1"})
	suite.Require().NoError(err)

	_, err = unreachable.Init(context.Background(), model.FlowRequest{})

	suite.Error(err)
}

func (suite *TransportTestSuite) TestExecutePathOverride() {
	var path string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	transport, err := NewHTTPTransport(Config{
		BaseURL:     server.URL + "/",
		ExecutePath: "/api/v2/flow/run",
	})
	suite.Require().NoError(err)

	_, err = transport.Init(context.Background(), model.FlowRequest{})

	suite.Require().NoError(err)
	suite.Equal("/api/v2/flow/run", path)
}

func (suite *TransportTestSuite) TestContextCancellation() {
	transport := suite.newTransport()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := transport.Init(ctx, model.FlowRequest{})

	suite.Error(err)
}
