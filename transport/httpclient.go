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
	"net/http"
	"time"
)

// DefaultHTTPTimeout bounds a single flow execution request.
const DefaultHTTPTimeout = 30 * time.Second

// HTTPClientInterface defines the interface for HTTP client operations.
type HTTPClientInterface interface {
	// Do executes an HTTP request and returns an HTTP response.
	Do(req *http.Request) (*http.Response, error)
}

// HTTPClient implements HTTPClientInterface around a standard http.Client.
type HTTPClient struct {
	client *http.Client
}

// NewHTTPClient creates a new HTTPClient with default settings.
func NewHTTPClient() HTTPClientInterface {
	return NewHTTPClientWithTimeout(DefaultHTTPTimeout)
}

// NewHTTPClientWithTimeout creates a new HTTPClient with a custom timeout.
func NewHTTPClientWithTimeout(timeout time.Duration) HTTPClientInterface {
	return &HTTPClient{
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// NewHTTPClientWithConfig creates a new HTTPClient with a custom configuration.
func NewHTTPClientWithConfig(client *http.Client) HTTPClientInterface {
	return &HTTPClient{
		client: client,
	}
}

// Do executes an HTTP request and returns an HTTP response.
func (c *HTTPClient) Do(req *http.Request) (*http.Response, error) {
	return c.client.Do(req)
}
