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

package model

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/asgardeo/flowkit/flow/constants"
)

type ComponentTestSuite struct {
	suite.Suite
	components []Component
}

func TestComponentSuite(t *testing.T) {
	suite.Run(t, new(ComponentTestSuite))
}

func (suite *ComponentTestSuite) SetupTest() {
	suite.components = []Component{
		{Type: constants.ComponentTypeText, Text: "Create your account"},
		{Type: constants.ComponentTypeBlock, Components: []Component{
			{Type: constants.ComponentTypeEmailInput, Ref: "email"},
			{Type: constants.ComponentTypeBlock, Components: []Component{
				{Type: constants.ComponentTypePasswordInput, Ref: "password"},
				{Type: constants.ComponentTypeAction, ID: "nested", EventType: constants.ActionEventTypeSubmit},
			}},
		}},
		{Type: constants.ComponentTypeDivider},
		{Type: constants.ComponentTypeAction, ID: "google", EventType: constants.ActionEventTypeTrigger,
			Variant: constants.ActionVariantSocial},
	}
}

func (suite *ComponentTestSuite) TestWalkComponentsVisitsInDocumentOrder() {
	var order []string
	WalkComponents(suite.components, func(c *Component) bool {
		key := string(c.Type)
		if c.Ref != "" {
			key = c.Ref
		}
		if c.ID != "" {
			key = c.ID
		}
		order = append(order, key)
		return true
	})

	suite.Equal([]string{"TEXT", "BLOCK", "email", "BLOCK", "password", "nested", "DIVIDER", "google"}, order)
}

func (suite *ComponentTestSuite) TestWalkComponentsStopsEarly() {
	var visited int
	WalkComponents(suite.components, func(c *Component) bool {
		visited++
		return c.Ref != "email"
	})

	suite.Equal(3, visited)
}

func (suite *ComponentTestSuite) TestFindActionSearchesNestedBlocks() {
	action := FindAction(suite.components, "nested")

	suite.Require().NotNil(action)
	suite.Equal(constants.ActionEventTypeSubmit, action.EventType)

	suite.Nil(FindAction(suite.components, "absent"))
}

func (suite *ComponentTestSuite) TestActions() {
	actions := Actions(suite.components)

	suite.Require().Len(actions, 2)
	suite.Equal("nested", actions[0].ID)
	suite.Equal("google", actions[1].ID)
}

func (suite *ComponentTestSuite) TestHeading() {
	suite.Equal("Create your account", Heading(suite.components))
	suite.Empty(Heading(nil))
}

func (suite *ComponentTestSuite) TestIsInput() {
	tests := []struct {
		componentType constants.ComponentType
		isInput       bool
	}{
		{constants.ComponentTypeTextInput, true},
		{constants.ComponentTypePasswordInput, true},
		{constants.ComponentTypeEmailInput, true},
		{constants.ComponentTypeSelect, true},
		{constants.ComponentTypeAction, false},
		{constants.ComponentTypeText, false},
		{constants.ComponentTypeDivider, false},
		{constants.ComponentTypeBlock, false},
	}

	for _, tc := range tests {
		c := Component{Type: tc.componentType}
		suite.Equal(tc.isInput, c.IsInput(), string(tc.componentType))
	}
}
