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

package assertion

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/suite"
)

type AssertionTestSuite struct {
	suite.Suite
}

func TestAssertionSuite(t *testing.T) {
	suite.Run(t, new(AssertionTestSuite))
}

func signToken(suite *AssertionTestSuite, claims jwt.MapClaims) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("unit-test-secret"))
	suite.Require().NoError(err)
	return signed
}

func (suite *AssertionTestSuite) TestDecodeStandardClaims() {
	issuedAt := time.Now().Truncate(time.Second)
	expiresAt := issuedAt.Add(time.Hour)
	token := signToken(suite, jwt.MapClaims{
		"sub":      "user-123",
		"iss":      "https://server.example.com",
		"aud":      "app-001",
		"iat":      issuedAt.Unix(),
		"exp":      expiresAt.Unix(),
		"username": "alice",
	})

	claims, err := Decode(token)

	suite.Require().NoError(err)
	suite.Equal("user-123", claims.Subject)
	suite.Equal("https://server.example.com", claims.Issuer)
	suite.Equal([]string{"app-001"}, []string(claims.Audience))
	suite.True(claims.ExpiresAt.Equal(expiresAt))
	suite.True(claims.IssuedAt.Equal(issuedAt))
	suite.Equal("alice", claims.All["username"])
}

func (suite *AssertionTestSuite) TestDecodeMultipleAudiences() {
	token := signToken(suite, jwt.MapClaims{
		"sub": "user-123",
		"aud": []string{"app-001", "app-002"},
	})

	claims, err := Decode(token)

	suite.Require().NoError(err)
	suite.Equal([]string{"app-001", "app-002"}, []string(claims.Audience))
}

func (suite *AssertionTestSuite) TestDecodeMinimalClaims() {
	token := signToken(suite, jwt.MapClaims{"custom": "value"})

	claims, err := Decode(token)

	suite.Require().NoError(err)
	suite.Empty(claims.Subject)
	suite.Empty(claims.Issuer)
	suite.True(claims.ExpiresAt.IsZero())
	suite.Equal("value", claims.All["custom"])
}

// TestDecodeDoesNotVerifySignature documents the deliberate contract: the
// token is decoded for display, not trusted locally.
func (suite *AssertionTestSuite) TestDecodeDoesNotVerifySignature() {
	token := signToken(suite, jwt.MapClaims{"sub": "user-123"})
	tampered := token[:len(token)-4] + "AAAA"

	claims, err := Decode(tampered)

	suite.Require().NoError(err)
	suite.Equal("user-123", claims.Subject)
}

func (suite *AssertionTestSuite) TestDecodeRejectsMalformedTokens() {
	tests := []struct {
		name  string
		token string
	}{
		{name: "Empty token", token: ""},
		{name: "Not a JWT", token: "just-a-string"},
		{name: "Two segments only", token: "aGVhZGVy.cGF5bG9hZA"},
		{name: "Garbage segments", token: "!!!.???.###"},
	}

	for _, tc := range tests {
		suite.T().Run(tc.name, func(t *testing.T) {
			claims, err := Decode(tc.token)
			if err == nil {
				t.Errorf("expected decode error, got claims %+v", claims)
			}
		})
	}
}
