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

// Package auth provides the core token and credential contracts shared by all
// concrete credential implementations: the immutable [Token] value, the
// [TokenProvider] refresh seam, token-kind selection for proxies that only
// accept ID tokens, and the [Credentials] wrapper exposing optional
// credential properties such as the quota project.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"
)

const defaultExpiryDelta = 10 * time.Second

// ErrInvalidArgument is wrapped by all errors reported for missing or
// malformed construction-time configuration. Use [errors.Is] to test for it.
var ErrInvalidArgument = errors.New("invalid argument")

// for testing
var timeNow = time.Now

// TokenProvider specifies an interface for anything that can return a token.
type TokenProvider interface {
	// Token returns a Token or an error.
	// The Token returned must be safe to use
	// concurrently.
	// The returned Token must not be modified.
	// The context provided must be sent along to any requests that are made in
	// the implementing code.
	Token(context.Context) (*Token, error)
}

// Token holds a credential token used to authorize requests. It is immutable
// after construction; the expiration instant, when present, is stored with
// millisecond precision.
type Token struct {
	value        string
	expiryMillis int64
	hasExpiry    bool
}

// NewToken returns a [Token] with no known expiration.
func NewToken(value string) *Token {
	return &Token{value: value}
}

// NewTokenWithExpiry returns a [Token] that expires at the provided instant.
// The instant is truncated to millisecond precision at construction time, so
// later reads are unaffected by anything the caller does with expiry. A zero
// expiry is treated as "no known expiration".
func NewTokenWithExpiry(value string, expiry time.Time) *Token {
	if expiry.IsZero() {
		return NewToken(value)
	}
	return &Token{
		value:        value,
		expiryMillis: expiry.UnixMilli(),
		hasExpiry:    true,
	}
}

// Value returns the token used to authorize requests. It is usually an access
// token but may be other types of tokens such as ID tokens in some flows.
func (t *Token) Value() string {
	return t.value
}

// Expiry returns the instant the token expires, at millisecond precision, and
// whether an expiration is known at all. Each call returns a freshly built
// instant.
func (t *Token) Expiry() (time.Time, bool) {
	if !t.hasExpiry {
		return time.Time{}, false
	}
	return time.UnixMilli(t.expiryMillis).UTC(), true
}

// IsValid reports that a [Token] is non-nil, has a value, and has not
// expired. A token is considered expired if its expiration has passed or will
// pass in the next 10 seconds.
func (t *Token) IsValid() bool {
	return t.isValidWithEarlyExpiry(defaultExpiryDelta)
}

func (t *Token) isValidWithEarlyExpiry(earlyExpiry time.Duration) bool {
	if t == nil || t.value == "" {
		return false
	}
	if !t.hasExpiry {
		return true
	}
	expiry := time.UnixMilli(t.expiryMillis)
	return !expiry.Add(-earlyExpiry).Before(timeNow())
}

// CachedTokenProviderOptions provides options for configuring a cached
// [TokenProvider].
type CachedTokenProviderOptions struct {
	// DisableAutoRefresh makes the TokenProvider always return the same token,
	// even if it is expired.
	DisableAutoRefresh bool
	// ExpireEarly configures the amount of time before a token expires, that it
	// should be refreshed.
	ExpireEarly time.Duration
}

func (ctpo *CachedTokenProviderOptions) autoRefresh() bool {
	if ctpo == nil {
		return true
	}
	return !ctpo.DisableAutoRefresh
}

func (ctpo *CachedTokenProviderOptions) expireEarly() time.Duration {
	if ctpo == nil || ctpo.ExpireEarly == 0 {
		return defaultExpiryDelta
	}
	return ctpo.ExpireEarly
}

// NewCachedTokenProvider wraps a [TokenProvider] to cache the tokens returned
// by the underlying provider. Only fully constructed tokens are published to
// readers; a token observed by one caller is never mutated for another.
func NewCachedTokenProvider(tp TokenProvider, opts *CachedTokenProviderOptions) TokenProvider {
	if ctp, ok := tp.(*cachedTokenProvider); ok {
		return ctp
	}
	return &cachedTokenProvider{
		tp:          tp,
		autoRefresh: opts.autoRefresh(),
		expireEarly: opts.expireEarly(),
	}
}

type cachedTokenProvider struct {
	tp          TokenProvider
	autoRefresh bool
	expireEarly time.Duration

	mu          sync.Mutex
	cachedToken *Token
}

func (c *cachedTokenProvider) Token(ctx context.Context) (*Token, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cachedToken.isValidWithEarlyExpiry(c.expireEarly) || (c.cachedToken != nil && !c.autoRefresh) {
		return c.cachedToken, nil
	}
	t, err := c.tp.Token(ctx)
	if err != nil {
		return nil, err
	}
	c.cachedToken = t
	return t, nil
}

// Error is an error associated with retrieving a [Token]. It can hold useful
// additional details for debugging.
type Error struct {
	// Response is the HTTP response associated with error. The body will always
	// be already closed and consumed.
	Response *http.Response
	// Body is the HTTP response body.
	Body []byte
	// Err is the underlying wrapped error.
	Err error

	// code returned in the token response
	code string
	// description returned in the token response
	description string
	// uri returned in the token response
	uri string
}

func (e *Error) Error() string {
	if e.code != "" {
		s := fmt.Sprintf("auth: %q", e.code)
		if e.description != "" {
			s += fmt.Sprintf(" %q", e.description)
		}
		if e.uri != "" {
			s += fmt.Sprintf(" %q", e.uri)
		}
		return s
	}
	if e.Response != nil {
		return fmt.Sprintf("auth: cannot fetch token: %v\nResponse: %s", e.Response.StatusCode, e.Body)
	}
	return fmt.Sprintf("auth: cannot fetch token: %v", e.Err)
}

// Temporary returns true if the error is considered temporary and may be able
// to be retried.
func (e *Error) Temporary() bool {
	if e.Response == nil {
		return false
	}
	sc := e.Response.StatusCode
	return sc == http.StatusInternalServerError ||
		sc == http.StatusServiceUnavailable ||
		sc == http.StatusRequestTimeout ||
		sc == http.StatusTooManyRequests
}

func (e *Error) Unwrap() error {
	return e.Err
}
