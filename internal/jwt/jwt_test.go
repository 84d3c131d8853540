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

package jwt

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func testKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatal(err)
	}
	return key
}

func TestEncodeDecodeJWS_RoundTrip(t *testing.T) {
	key := testKey(t)
	header := &Header{
		Algorithm: HeaderAlgRSA256,
		Type:      HeaderType,
		KeyID:     "key-id",
	}
	claims := &Claims{
		Iss:   "issuer@example.com",
		Aud:   "https://sts.googleapis.com/v1/token",
		Exp:   1700003600,
		Iat:   1700000000,
		Sub:   "subject",
		Scope: "https://www.googleapis.com/auth/cloud-platform",
		AdditionalClaims: map[string]interface{}{
			"target_audience": "https://service.example.com",
		},
	}

	token, err := EncodeJWS(header, claims, key)
	if err != nil {
		t.Fatal(err)
	}
	got, err := DecodeJWS(token)
	if err != nil {
		t.Fatal(err)
	}
	if got.Iss != claims.Iss || got.Aud != claims.Aud || got.Exp != claims.Exp || got.Iat != claims.Iat {
		t.Errorf("got %+v, want the registered claims of %+v", got, claims)
	}
	if got.Sub != claims.Sub || got.Scope != claims.Scope {
		t.Errorf("got sub=%q scope=%q, want sub=%q scope=%q", got.Sub, got.Scope, claims.Sub, claims.Scope)
	}
	if diff := cmp.Diff(claims.AdditionalClaims, got.AdditionalClaims); diff != "" {
		t.Errorf("additional claims mismatch (-want +got):\n%s", diff)
	}
}

func TestVerifyJWS(t *testing.T) {
	key := testKey(t)
	token, err := EncodeJWS(&Header{Algorithm: HeaderAlgRSA256, Type: HeaderType}, &Claims{Iss: "iss", Aud: "aud"}, key)
	if err != nil {
		t.Fatal(err)
	}
	if err := VerifyJWS(token, &key.PublicKey); err != nil {
		t.Errorf("got %v, want valid signature", err)
	}

	otherKey := testKey(t)
	if err := VerifyJWS(token, &otherKey.PublicKey); err == nil {
		t.Error("got nil error, want verification failure with the wrong key")
	}
	if err := VerifyJWS("abc.def", &key.PublicKey); err == nil {
		t.Error("got nil error, want malformed token failure")
	}
}

func TestDecodeJWS_Malformed(t *testing.T) {
	if _, err := DecodeJWS("onlyonepart"); err == nil {
		t.Error("got nil error, want one for a token without a payload")
	}
	if _, err := DecodeJWS("head.!!!not-base64!!!.sig"); err == nil {
		t.Error("got nil error, want one for a non-base64 payload")
	}
}

func TestClaims_AdditionalClaimsCollision(t *testing.T) {
	c := &Claims{
		Iss: "iss",
		AdditionalClaims: map[string]interface{}{
			"iss": "other-iss",
		},
	}
	if _, err := c.MarshalJSON(); err == nil {
		t.Error("got nil error, want a collision error for a registered claim name")
	}
}
