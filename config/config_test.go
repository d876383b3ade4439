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

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type ConfigTestSuite struct {
	suite.Suite
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

func (suite *ConfigTestSuite) writeConfig(content string) string {
	path := filepath.Join(suite.T().TempDir(), "client.yaml")
	suite.Require().NoError(os.WriteFile(path, []byte(content), 0o600))
	return path
}

func (suite *ConfigTestSuite) TestLoadFullConfig() {
	path := suite.writeConfig(`
server:
  base_url: "https://localhost:8090"
  execute_path: "/flow/execute"
flow:
  application_id: "app-001"
  flow_type: "AUTHENTICATION"
redirect:
  callback_origin: "http://localhost:8090"
  poll_interval: 500ms
  max_duration: 5m
http_timeout: 45s
`)

	cfg, err := LoadClientConfig(path)

	suite.Require().NoError(err)
	suite.Equal("https://localhost:8090", cfg.Server.BaseURL)
	suite.Equal("/flow/execute", cfg.Server.ExecutePath)
	suite.Equal("app-001", cfg.Flow.ApplicationID)
	suite.Equal("AUTHENTICATION", cfg.Flow.FlowType)
	suite.Equal("http://localhost:8090", cfg.Redirect.CallbackOrigin)
	suite.Equal(500*time.Millisecond, cfg.Redirect.PollInterval.Std())
	suite.Equal(5*time.Minute, cfg.Redirect.MaxDuration.Std())
	suite.Equal(45*time.Second, cfg.HTTPTimeout.Std())
}

func (suite *ConfigTestSuite) TestLoadMinimalConfig() {
	path := suite.writeConfig(`
server:
  base_url: "https://localhost:8090"
flow:
  application_id: "app-001"
`)

	cfg, err := LoadClientConfig(path)

	suite.Require().NoError(err)
	suite.Empty(cfg.Server.ExecutePath)
	suite.Zero(cfg.HTTPTimeout)
}

func (suite *ConfigTestSuite) TestValidationFailures() {
	tests := []struct {
		name    string
		content string
	}{
		{
			name: "Missing base URL",
			content: `
flow:
  application_id: "app-001"
`,
		},
		{
			name: "Missing application ID",
			content: `
server:
  base_url: "https://localhost:8090"
`,
		},
	}

	for _, tc := range tests {
		suite.T().Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "client.yaml")
			if err := os.WriteFile(path, []byte(tc.content), 0o600); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadClientConfig(path); err == nil {
				t.Error("expected a validation error")
			}
		})
	}
}

func (suite *ConfigTestSuite) TestMissingFile() {
	_, err := LoadClientConfig(filepath.Join(suite.T().TempDir(), "absent.yaml"))

	suite.Error(err)
}

func (suite *ConfigTestSuite) TestMalformedYAML() {
	path := suite.writeConfig("server: [not: valid")

	_, err := LoadClientConfig(path)

	suite.Error(err)
}
