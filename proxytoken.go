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
	"errors"
	"fmt"
	"time"

	"github.com/googleapis/google-auth-library-go/internal/jwt"
)

// TokenKind selects which of the two token strings minted by a refresh is
// surfaced to callers.
type TokenKind int

const (
	// TokenKindUnspecified means the value has not been initiated.
	// Constructing a [ProxyTokenProvider] with it fails.
	TokenKindUnspecified TokenKind = 0
	// TokenKindAccessToken surfaces the opaque access token.
	TokenKindAccessToken TokenKind = 1
	// TokenKindIDToken surfaces the ID token (JWT) instead of the access
	// token. Required by proxy layers, such as Cloud Endpoints ESP, that
	// reject opaque access tokens.
	TokenKindIDToken TokenKind = 2
)

// String returns a stable identifier for the kind, suitable for use in cache
// keys.
func (k TokenKind) String() string {
	switch k {
	case TokenKindAccessToken:
		return "access_token"
	case TokenKindIDToken:
		return "id_token"
	default:
		return "unspecified"
	}
}

// DualToken is the result of one refresh against an origin that mints both an
// access token and an ID token.
type DualToken struct {
	// AccessToken is the opaque access token, with its expiry when known.
	AccessToken *Token
	// IDToken is the raw ID token (JWT) string. Empty when the origin did not
	// return one.
	IDToken string
}

// DualTokenProvider is implemented by credentials whose refresh response
// carries both an access token and an ID token. Implementations may also
// provide Equal and CacheKey methods, which [ProxyTokenProvider] folds into
// its own equality and cache-key contracts.
type DualTokenProvider interface {
	// DualToken returns both tokens minted by a single refresh, or an error.
	// The result must not be modified after it is returned.
	DualToken(context.Context) (*DualToken, error)
}

// ProxyTokenProviderOptions configures a [ProxyTokenProvider].
type ProxyTokenProviderOptions struct {
	// Base performs the actual refresh. Required.
	Base DualTokenProvider
	// Kind decides which token string the provider surfaces. It is fixed for
	// the lifetime of the provider; construct a new provider to change it.
	// Required.
	Kind TokenKind
	// InitialToken, when set, is returned as-is until it is no longer valid.
	// Optional.
	InitialToken *Token
}

func (o *ProxyTokenProviderOptions) validate() error {
	if o == nil {
		return fmt.Errorf("auth: options must be provided: %w", ErrInvalidArgument)
	}
	if o.Base == nil {
		return fmt.Errorf("auth: base token provider must be provided: %w", ErrInvalidArgument)
	}
	switch o.Kind {
	case TokenKindAccessToken, TokenKindIDToken:
	default:
		return fmt.Errorf("auth: token kind must be provided: %w", ErrInvalidArgument)
	}
	return nil
}

// ProxyTokenProvider wraps a [DualTokenProvider] and exposes one of its two
// token strings as "the" token, decided once at construction by
// [ProxyTokenProviderOptions.Kind]. Callers treat the resolved token exactly
// like any other [Token] and never need to know which kind is active.
type ProxyTokenProvider struct {
	base         DualTokenProvider
	kind         TokenKind
	initialToken *Token
}

// NewProxyTokenProvider returns a [ProxyTokenProvider] from the provided
// options.
func NewProxyTokenProvider(opts *ProxyTokenProviderOptions) (*ProxyTokenProvider, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	return &ProxyTokenProvider{
		base:         opts.Base,
		kind:         opts.Kind,
		initialToken: opts.InitialToken,
	}, nil
}

// Kind returns the token kind the provider surfaces.
func (p *ProxyTokenProvider) Kind() TokenKind {
	return p.kind
}

// Token refreshes through the base provider and resolves the token matching
// the configured kind. In ID-token mode a refresh that returned no ID token
// is an error; there is no silent fallback to the access token.
func (p *ProxyTokenProvider) Token(ctx context.Context) (*Token, error) {
	if p.initialToken.IsValid() {
		return p.initialToken, nil
	}
	dt, err := p.base.DualToken(ctx)
	if err != nil {
		return nil, err
	}
	if dt == nil {
		return nil, errors.New("auth: refresh returned no tokens")
	}
	switch p.kind {
	case TokenKindIDToken:
		if dt.IDToken == "" {
			return nil, errors.New("auth: refresh response doesn't have an ID token")
		}
		return NewTokenWithExpiry(dt.IDToken, idTokenExpiry(dt)), nil
	default:
		if dt.AccessToken == nil {
			return nil, errors.New("auth: refresh response doesn't have an access token")
		}
		return dt.AccessToken, nil
	}
}

// idTokenExpiry derives the expiry of the ID token from its exp claim. Not
// every origin returns a decodable JWS, so on decode failure the access
// token's expiry is used, and a zero time when that is unknown too.
func idTokenExpiry(dt *DualToken) time.Time {
	if claims, err := jwt.DecodeJWS(dt.IDToken); err == nil && claims.Exp > 0 {
		return time.Unix(claims.Exp, 0)
	}
	if dt.AccessToken != nil {
		if expiry, ok := dt.AccessToken.Expiry(); ok {
			return expiry
		}
	}
	return time.Time{}
}

// Equal reports whether two providers are interchangeable: the base
// credentials must be equal and the configured kinds must match. Base
// equality uses the base's own Equal method when it has one, identity
// otherwise; kind equality is always checked in addition, never
// short-circuited.
func (p *ProxyTokenProvider) Equal(o *ProxyTokenProvider) bool {
	if p == nil || o == nil {
		return p == o
	}
	if p.kind != o.kind {
		return false
	}
	if eq, ok := p.base.(interface{ Equal(DualTokenProvider) bool }); ok {
		return eq.Equal(o.base)
	}
	return p.base == o.base
}

// CacheKey returns a key that distinguishes this provider from any
// non-[Equal] provider. Providers over the same base but different kinds
// always produce distinct keys, so access-token and ID-token wrappers never
// collide in a token cache.
func (p *ProxyTokenProvider) CacheKey() string {
	baseKey := fmt.Sprintf("%T", p.base)
	if ck, ok := p.base.(interface{ CacheKey() string }); ok {
		baseKey = ck.CacheKey()
	}
	return baseKey + "\n" + p.kind.String()
}
