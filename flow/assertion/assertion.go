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

// Package assertion decodes the assertion JWT handed back on flow completion.
// The token is parsed without signature verification: the SDK is the party
// the server just issued the token to, and verification is the resource
// server's concern.
package assertion

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the commonly used claims of a decoded assertion alongside
// the full claim set.
type Claims struct {
	Subject   string
	Issuer    string
	Audience  []string
	ExpiresAt time.Time
	IssuedAt  time.Time
	All       map[string]interface{}
}

// Decode parses the assertion JWT and extracts its claims without verifying
// the signature.
func Decode(token string) (*Claims, error) {
	if token == "" {
		return nil, errors.New("assertion token is empty")
	}

	parser := jwt.NewParser()
	mapClaims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, mapClaims); err != nil {
		return nil, err
	}

	claims := &Claims{All: mapClaims}
	if sub, err := mapClaims.GetSubject(); err == nil {
		claims.Subject = sub
	}
	if iss, err := mapClaims.GetIssuer(); err == nil {
		claims.Issuer = iss
	}
	if aud, err := mapClaims.GetAudience(); err == nil {
		claims.Audience = aud
	}
	if exp, err := mapClaims.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}
	if iat, err := mapClaims.GetIssuedAt(); err == nil && iat != nil {
		claims.IssuedAt = iat.Time
	}
	return claims, nil
}
