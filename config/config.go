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

// Package config provides structures and functions for loading client
// configurations.
package config

import (
	"errors"
	"os"
	"time"

	yaml "gopkg.in/yaml.v3"
)

// Duration is a time.Duration that unmarshals from YAML duration strings
// such as "500ms" or "5m".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// ServerConfig holds the flow server connection details.
type ServerConfig struct {
	BaseURL     string `yaml:"base_url"`
	ExecutePath string `yaml:"execute_path"`
}

// FlowConfig holds the flow selection details.
type FlowConfig struct {
	ApplicationID string `yaml:"application_id"`
	FlowType      string `yaml:"flow_type"`
}

// RedirectConfig holds the redirect handshake tuning details.
type RedirectConfig struct {
	CallbackOrigin string   `yaml:"callback_origin"`
	PollInterval   Duration `yaml:"poll_interval"`
	MaxDuration    Duration `yaml:"max_duration"`
}

// ClientConfig holds the client configuration details.
type ClientConfig struct {
	Server      ServerConfig   `yaml:"server"`
	Flow        FlowConfig     `yaml:"flow"`
	Redirect    RedirectConfig `yaml:"redirect"`
	HTTPTimeout Duration       `yaml:"http_timeout"`
}

// LoadClientConfig loads the client configuration from the given YAML file.
func LoadClientConfig(path string) (*ClientConfig, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is operator supplied
	if err != nil {
		return nil, err
	}

	var cfg ClientConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validate(cfg *ClientConfig) error {
	if cfg.Server.BaseURL == "" {
		return errors.New("server.base_url is required")
	}
	if cfg.Flow.ApplicationID == "" {
		return errors.New("flow.application_id is required")
	}
	return nil
}
