// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package jwt implements the bits of the JWS/JWT formats the library needs:
// encoding and signing RS256 assertions and decoding claims out of tokens
// returned by origins.
package jwt

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const (
	// HeaderAlgRSA256 is the RS256 algorithm identifier.
	HeaderAlgRSA256 = "RS256"
	// HeaderType is the JWT header type.
	HeaderType = "JWT"
)

// Header is the header of a JWT.
type Header struct {
	Algorithm string `json:"alg"`
	Type      string `json:"typ"`
	KeyID     string `json:"kid,omitempty"`
}

// Claims holds the claims of a JWT. Claims outside the registered set go into
// AdditionalClaims.
type Claims struct {
	Iss string `json:"iss"`
	Aud string `json:"aud"`
	Exp int64  `json:"exp"`
	Iat int64  `json:"iat"`
	Sub string `json:"sub,omitempty"`

	Scope string `json:"scope,omitempty"`

	AdditionalClaims map[string]interface{} `json:"-"`
}

// MarshalJSON implements [json.Marshaler], folding AdditionalClaims into the
// top-level object.
func (c *Claims) MarshalJSON() ([]byte, error) {
	type aliasClaims Claims
	b, err := json.Marshal((*aliasClaims)(c))
	if err != nil {
		return nil, err
	}
	if len(c.AdditionalClaims) == 0 {
		return b, nil
	}
	var m map[string]interface{}
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	for k, v := range c.AdditionalClaims {
		if _, ok := m[k]; ok {
			return nil, fmt.Errorf("jwt: claim %q collides with a registered claim", k)
		}
		m[k] = v
	}
	return json.Marshal(m)
}

var registeredClaims = map[string]bool{
	"iss": true, "aud": true, "exp": true, "iat": true, "sub": true, "scope": true,
}

// UnmarshalJSON implements [json.Unmarshaler], collecting unregistered claims
// into AdditionalClaims.
func (c *Claims) UnmarshalJSON(b []byte) error {
	type aliasClaims Claims
	if err := json.Unmarshal(b, (*aliasClaims)(c)); err != nil {
		return err
	}
	var m map[string]interface{}
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	for k := range m {
		if registeredClaims[k] {
			delete(m, k)
		}
	}
	if len(m) > 0 {
		c.AdditionalClaims = m
	}
	return nil
}

// EncodeJWS encodes the data as a signed JWS using the provided RSA private
// key.
func EncodeJWS(header *Header, c *Claims, key *rsa.PrivateKey) (string, error) {
	head, err := json.Marshal(header)
	if err != nil {
		return "", err
	}
	claims, err := json.Marshal(c)
	if err != nil {
		return "", err
	}
	ss := base64.RawURLEncoding.EncodeToString(head) + "." + base64.RawURLEncoding.EncodeToString(claims)
	h := sha256.Sum256([]byte(ss))
	sig, err := rsa.SignPKCS1v15(rand.Reader, key, crypto.SHA256, h[:])
	if err != nil {
		return "", err
	}
	return ss + "." + base64.RawURLEncoding.EncodeToString(sig), nil
}

// DecodeJWS decodes the claim set from a JWS payload. The signature is not
// verified.
func DecodeJWS(payload string) (*Claims, error) {
	s := strings.Split(payload, ".")
	if len(s) < 2 {
		return nil, errors.New("jwt: invalid token received")
	}
	decoded, err := base64.RawURLEncoding.DecodeString(s[1])
	if err != nil {
		return nil, err
	}
	c := &Claims{}
	if err := json.Unmarshal(decoded, c); err != nil {
		return nil, err
	}
	return c, nil
}

// VerifyJWS tests whether the provided JWS token's signature was produced by
// the private key associated with the provided public key.
func VerifyJWS(token string, key *rsa.PublicKey) error {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return errors.New("jwt: invalid token received, token must have 3 parts")
	}
	signedContent := parts[0] + "." + parts[1]
	signature, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil {
		return err
	}
	h := sha256.Sum256([]byte(signedContent))
	return rsa.VerifyPKCS1v15(key, crypto.SHA256, h[:], signature)
}
