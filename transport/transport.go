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

// Package transport defines the collaborator contract the engine uses to
// reach the flow execution API, and a default HTTP implementation.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/asgardeo/flowkit/flow/constants"
	"github.com/asgardeo/flowkit/flow/model"
	"github.com/asgardeo/flowkit/internal/system/log"
)

const (
	loggerComponentName = "HTTPTransport"

	// DefaultExecutePath is the flow execution endpoint path.
	DefaultExecutePath = "/flow/execute"
)

// Transport is the engine's transport collaborator. Both operations return
// the raw response payload; the engine normalizes it. Implementations return
// an error only for failures without a usable payload (network failure,
// non-2xx without a body); a non-2xx response with a structured error body is
// returned as payload bytes so the normalizer can classify it.
type Transport interface {
	// Init starts a new flow and returns the first step payload.
	Init(ctx context.Context, req model.FlowRequest) ([]byte, error)
	// Submit advances an existing flow and returns the next step payload.
	Submit(ctx context.Context, req model.FlowRequest) ([]byte, error)
}

// Config parameterizes the default HTTP transport.
type Config struct {
	// BaseURL is the flow server origin, e.g. "https://localhost:8090".
	BaseURL string
	// ExecutePath overrides DefaultExecutePath when non-empty.
	ExecutePath string
	// ApplicationID identifies the application the flow belongs to.
	ApplicationID string
	// FlowType selects the flow to start.
	FlowType constants.FlowType
	// Client overrides the default HTTP client when non-nil.
	Client HTTPClientInterface
}

// HTTPTransport is the default Transport implementation speaking the flow
// execution API over HTTP.
type HTTPTransport struct {
	cfg    Config
	client HTTPClientInterface
}

// NewHTTPTransport creates a transport for the given configuration.
func NewHTTPTransport(cfg Config) (*HTTPTransport, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.New("transport base URL is required")
	}
	if cfg.ExecutePath == "" {
		cfg.ExecutePath = DefaultExecutePath
	}
	client := cfg.Client
	if client == nil {
		client = NewHTTPClient()
	}
	return &HTTPTransport{cfg: cfg, client: client}, nil
}

// Init starts a new flow. The request carries the application ID and flow
// type; the server assigns the flow ID.
func (t *HTTPTransport) Init(ctx context.Context, req model.FlowRequest) ([]byte, error) {
	req.FlowID = ""
	if req.ApplicationID == "" {
		req.ApplicationID = t.cfg.ApplicationID
	}
	if req.FlowType == "" {
		req.FlowType = string(t.cfg.FlowType)
	}
	return t.execute(ctx, req)
}

// Submit advances an existing flow identified by the request's flow ID.
func (t *HTTPTransport) Submit(ctx context.Context, req model.FlowRequest) ([]byte, error) {
	if strings.TrimSpace(req.FlowID) == "" {
		return nil, errors.New("flow ID is required to submit a step")
	}
	return t.execute(ctx, req)
}

func (t *HTTPTransport) execute(ctx context.Context, flowReq model.FlowRequest) ([]byte, error) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName))

	body, err := json.Marshal(flowReq)
	if err != nil {
		return nil, err
	}

	endpoint := strings.TrimSuffix(t.cfg.BaseURL, "/") + t.cfg.ExecutePath
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := t.client.Do(httpReq)
	if err != nil {
		logger.Debug("Flow execution request failed", log.Error(err))
		return nil, err
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			logger.Debug("Failed to close response body", log.Error(closeErr))
		}
	}()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logger.Debug("Flow execution returned non-2xx status",
			log.Int("status", resp.StatusCode))
		if len(payload) == 0 {
			return nil, errors.New("flow execution failed with status " + resp.Status)
		}
		// A structured error body is the server's opinion on the step; the
		// normalizer turns it into an ERROR status response.
	}
	return payload, nil
}
