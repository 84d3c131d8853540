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

package auth

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"testing"
	"time"
)

type fakeDualProvider struct {
	id    string
	dt    *DualToken
	err   error
	calls int
}

func (f *fakeDualProvider) DualToken(context.Context) (*DualToken, error) {
	f.calls++
	return f.dt, f.err
}

func (f *fakeDualProvider) Equal(other DualTokenProvider) bool {
	o, ok := other.(*fakeDualProvider)
	return ok && f.id == o.id
}

func (f *fakeDualProvider) CacheKey() string {
	return "fake\n" + f.id
}

func dualResponse() *DualToken {
	return &DualToken{
		AccessToken: NewTokenWithExpiry("at-xyz", time.Now().Add(time.Hour)),
		IDToken:     "jwt-abc",
	}
}

func TestNewProxyTokenProvider_Validation(t *testing.T) {
	tests := []struct {
		name string
		opts *ProxyTokenProviderOptions
	}{
		{name: "nil options", opts: nil},
		{name: "missing base", opts: &ProxyTokenProviderOptions{Kind: TokenKindAccessToken}},
		{name: "missing kind", opts: &ProxyTokenProviderOptions{Base: &fakeDualProvider{}}},
		{name: "unknown kind", opts: &ProxyTokenProviderOptions{Base: &fakeDualProvider{}, Kind: TokenKind(42)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewProxyTokenProvider(tt.opts); !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("got %v, want ErrInvalidArgument", err)
			}
		})
	}
}

func TestProxyTokenProvider_SelectsByKind(t *testing.T) {
	tests := []struct {
		kind TokenKind
		want string
	}{
		{kind: TokenKindAccessToken, want: "at-xyz"},
		{kind: TokenKindIDToken, want: "jwt-abc"},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			tp, err := NewProxyTokenProvider(&ProxyTokenProviderOptions{
				Base: &fakeDualProvider{dt: dualResponse()},
				Kind: tt.kind,
			})
			if err != nil {
				t.Fatal(err)
			}
			tok, err := tp.Token(context.Background())
			if err != nil {
				t.Fatal(err)
			}
			if got := tok.Value(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestProxyTokenProvider_MissingIDToken(t *testing.T) {
	tp, err := NewProxyTokenProvider(&ProxyTokenProviderOptions{
		Base: &fakeDualProvider{dt: &DualToken{AccessToken: NewToken("at-xyz")}},
		Kind: TokenKindIDToken,
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := tp.Token(context.Background()); err == nil {
		t.Error("got nil error, want missing ID token error; silent fallback to the access token is not allowed")
	}
}

// fakeJWT builds an unsigned but structurally valid JWS carrying the
// provided exp claim.
func fakeJWT(exp int64) string {
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"RS256","typ":"JWT"}`))
	payload := base64.RawURLEncoding.EncodeToString([]byte(fmt.Sprintf(`{"iss":"test","aud":"aud","exp":%d,"iat":1}`, exp)))
	return header + "." + payload + ".c2ln"
}

func TestProxyTokenProvider_IDTokenExpiryFromClaims(t *testing.T) {
	exp := time.Now().Add(45 * time.Minute).Unix()
	tp, err := NewProxyTokenProvider(&ProxyTokenProviderOptions{
		Base: &fakeDualProvider{dt: &DualToken{
			AccessToken: NewTokenWithExpiry("at-xyz", time.Now().Add(time.Hour)),
			IDToken:     fakeJWT(exp),
		}},
		Kind: TokenKindIDToken,
	})
	if err != nil {
		t.Fatal(err)
	}
	tok, err := tp.Token(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	expiry, ok := tok.Expiry()
	if !ok {
		t.Fatal("got no expiry, want the exp claim")
	}
	if got, want := expiry.Unix(), exp; got != want {
		t.Errorf("got %d, want %d", got, want)
	}
}

func TestProxyTokenProvider_IDTokenExpiryFallsBackToAccessToken(t *testing.T) {
	accessExpiry := time.Now().Add(30 * time.Minute)
	tp, err := NewProxyTokenProvider(&ProxyTokenProviderOptions{
		Base: &fakeDualProvider{dt: &DualToken{
			AccessToken: NewTokenWithExpiry("at-xyz", accessExpiry),
			IDToken:     "jwt-abc",
		}},
		Kind: TokenKindIDToken,
	})
	if err != nil {
		t.Fatal(err)
	}
	tok, err := tp.Token(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	expiry, ok := tok.Expiry()
	if !ok {
		t.Fatal("got no expiry, want the access token's")
	}
	if got, want := expiry.UnixMilli(), accessExpiry.UnixMilli(); got != want {
		t.Errorf("got %d, want %d", got, want)
	}
}

func TestProxyTokenProvider_InitialToken(t *testing.T) {
	base := &fakeDualProvider{dt: dualResponse()}
	tp, err := NewProxyTokenProvider(&ProxyTokenProviderOptions{
		Base:         base,
		Kind:         TokenKindAccessToken,
		InitialToken: NewTokenWithExpiry("initial", time.Now().Add(time.Hour)),
	})
	if err != nil {
		t.Fatal(err)
	}
	tok, err := tp.Token(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if got, want := tok.Value(), "initial"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if base.calls != 0 {
		t.Errorf("got %d refreshes, want 0 while the initial token is valid", base.calls)
	}
}

func TestProxyTokenProvider_ExpiredInitialTokenRefreshes(t *testing.T) {
	base := &fakeDualProvider{dt: dualResponse()}
	tp, err := NewProxyTokenProvider(&ProxyTokenProviderOptions{
		Base:         base,
		Kind:         TokenKindAccessToken,
		InitialToken: NewTokenWithExpiry("initial", time.Now().Add(-time.Hour)),
	})
	if err != nil {
		t.Fatal(err)
	}
	tok, err := tp.Token(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if got, want := tok.Value(), "at-xyz"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if base.calls != 1 {
		t.Errorf("got %d refreshes, want 1", base.calls)
	}
}

func TestProxyTokenProvider_Equal(t *testing.T) {
	mustNew := func(base DualTokenProvider, kind TokenKind) *ProxyTokenProvider {
		t.Helper()
		tp, err := NewProxyTokenProvider(&ProxyTokenProviderOptions{Base: base, Kind: kind})
		if err != nil {
			t.Fatal(err)
		}
		return tp
	}
	baseA := &fakeDualProvider{id: "base"}
	baseB := &fakeDualProvider{id: "base"}
	baseC := &fakeDualProvider{id: "other"}

	access := mustNew(baseA, TokenKindAccessToken)
	accessTwin := mustNew(baseB, TokenKindAccessToken)
	id := mustNew(baseB, TokenKindIDToken)
	otherBase := mustNew(baseC, TokenKindAccessToken)

	if !access.Equal(accessTwin) {
		t.Error("providers with equal bases and matching kinds should be equal")
	}
	if access.Equal(id) {
		t.Error("providers with different kinds must never be equal, even over equal bases")
	}
	if access.Equal(otherBase) {
		t.Error("providers over unequal bases must not be equal")
	}
	if access.Equal(nil) {
		t.Error("nil is never equal to a live provider")
	}
}

func TestProxyTokenProvider_CacheKeyDistinguishesKinds(t *testing.T) {
	base := &fakeDualProvider{id: "base"}
	access, err := NewProxyTokenProvider(&ProxyTokenProviderOptions{Base: base, Kind: TokenKindAccessToken})
	if err != nil {
		t.Fatal(err)
	}
	id, err := NewProxyTokenProvider(&ProxyTokenProviderOptions{Base: base, Kind: TokenKindIDToken})
	if err != nil {
		t.Fatal(err)
	}
	if access.CacheKey() == id.CacheKey() {
		t.Errorf("got identical cache keys %q for different kinds", access.CacheKey())
	}
}
