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

// Package main is a terminal host application that drives an embedded flow
// end to end. It exists as a reference integration of the engine's renderer
// seam and the redirect window collaborator.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/asgardeo/flowkit/config"
	"github.com/asgardeo/flowkit/flow/constants"
	"github.com/asgardeo/flowkit/transport"
)

func main() {
	var configPath string
	var flowType string

	rootCmd := &cobra.Command{
		Use:   "flowcli",
		Short: "Drive an embedded authentication flow from the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadClientConfig(configPath)
			if err != nil {
				return fmt.Errorf("loading configuration: %w", err)
			}
			if flowType != "" {
				cfg.Flow.FlowType = flowType
			}
			if cfg.Flow.FlowType == "" {
				cfg.Flow.FlowType = string(constants.FlowTypeAuthentication)
			}

			client := transport.NewHTTPClient()
			if cfg.HTTPTimeout > 0 {
				client = transport.NewHTTPClientWithTimeout(cfg.HTTPTimeout.Std())
			}
			t, err := transport.NewHTTPTransport(transport.Config{
				BaseURL:       cfg.Server.BaseURL,
				ExecutePath:   cfg.Server.ExecutePath,
				ApplicationID: cfg.Flow.ApplicationID,
				FlowType:      constants.FlowType(cfg.Flow.FlowType),
				Client:        client,
			})
			if err != nil {
				return fmt.Errorf("creating transport: %w", err)
			}

			runner := newRunner(cfg, t)
			return runner.run(cmd.Context())
		},
	}

	rootCmd.Flags().StringVarP(&configPath, "config", "c", "flowcli.yaml",
		"Path to the client configuration file")
	rootCmd.Flags().StringVarP(&flowType, "flow-type", "t", "",
		"Flow type to start (AUTHENTICATION, REGISTRATION or INVITE)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
