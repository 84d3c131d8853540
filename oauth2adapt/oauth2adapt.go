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

// Package oauth2adapt helps converts types used in
// [github.com/googleapis/google-auth-library-go] and [golang.org/x/oauth2].
package oauth2adapt

import (
	"context"
	"encoding/json"
	"errors"

	auth "github.com/googleapis/google-auth-library-go"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// TokenProviderFromTokenSource converts any [golang.org/x/oauth2.TokenSource]
// into a [github.com/googleapis/google-auth-library-go.TokenProvider].
func TokenProviderFromTokenSource(ts oauth2.TokenSource) auth.TokenProvider {
	return &tokenProviderAdapter{ts: ts}
}

type tokenProviderAdapter struct {
	ts oauth2.TokenSource
}

// Token fulfills the [github.com/googleapis/google-auth-library-go.TokenProvider]
// interface. It is a light wrapper around the underlying TokenSource.
func (tp *tokenProviderAdapter) Token(context.Context) (*auth.Token, error) {
	tok, err := tp.ts.Token()
	if err != nil {
		var err2 *oauth2.RetrieveError
		if ok := errors.As(err, &err2); ok {
			return nil, &auth.Error{
				Response: err2.Response,
				Body:     err2.Body,
				Err:      err2,
			}
		}
		return nil, err
	}
	return auth.NewTokenWithExpiry(tok.AccessToken, tok.Expiry), nil
}

// TokenSourceFromTokenProvider converts any
// [github.com/googleapis/google-auth-library-go.TokenProvider] into a
// [golang.org/x/oauth2.TokenSource].
func TokenSourceFromTokenProvider(tp auth.TokenProvider) oauth2.TokenSource {
	return &tokenSourceAdapter{tp: tp}
}

type tokenSourceAdapter struct {
	tp auth.TokenProvider
}

// Token fulfills the [golang.org/x/oauth2.TokenSource] interface. It is a
// light wrapper around the underlying TokenProvider.
func (ts *tokenSourceAdapter) Token() (*oauth2.Token, error) {
	tok, err := ts.tp.Token(context.Background())
	if err != nil {
		var err2 *auth.Error
		if ok := errors.As(err, &err2); ok {
			// Wrap both error types so callers can unwrap to whichever
			// representation they expect.
			err = errors.Join(&oauth2.RetrieveError{
				Response: err2.Response,
				Body:     err2.Body,
			}, err)
		}
		return nil, err
	}
	expiry, _ := tok.Expiry()
	return &oauth2.Token{
		AccessToken: tok.Value(),
		TokenType:   "Bearer",
		Expiry:      expiry,
	}, nil
}

// AuthCredentialsFromOauth2Credentials converts a
// [golang.org/x/oauth2/google.Credentials] to a
// [github.com/googleapis/google-auth-library-go.Credentials].
func AuthCredentialsFromOauth2Credentials(creds *google.Credentials) *auth.Credentials {
	if creds == nil {
		return nil
	}
	return auth.NewCredentials(&auth.CredentialsOptions{
		TokenProvider: TokenProviderFromTokenSource(creds.TokenSource),
		JSON:          creds.JSON,
		ProjectIDProvider: auth.CredentialsPropertyFunc(func(ctx context.Context) (string, error) {
			return creds.ProjectID, nil
		}),
		UniverseDomainProvider: auth.CredentialsPropertyFunc(func(ctx context.Context) (string, error) {
			return creds.GetUniverseDomain()
		}),
		QuotaProjectIDProvider: auth.CredentialsPropertyFunc(func(ctx context.Context) (string, error) {
			return quotaProjectIDFromJSON(creds.JSON), nil
		}),
	})
}

// Oauth2CredentialsFromAuthCredentials converts a
// [github.com/googleapis/google-auth-library-go.Credentials] to a
// [golang.org/x/oauth2/google.Credentials].
func Oauth2CredentialsFromAuthCredentials(creds *auth.Credentials) *google.Credentials {
	if creds == nil {
		return nil
	}
	// Throw away errors as old credentials are not request aware. Also, no
	// network requests are currently happening for this use case.
	projectID, _ := creds.ProjectID(context.Background())

	return &google.Credentials{
		TokenSource: TokenSourceFromTokenProvider(creds),
		ProjectID:   projectID,
		JSON:        creds.JSON(),
		UniverseDomainProvider: func() (string, error) {
			return creds.UniverseDomain(context.Background())
		},
	}
}

// quotaProjectIDFromJSON looks for the quota project a credential file was
// annotated with, since [golang.org/x/oauth2/google.Credentials] does not
// expose it as a field.
func quotaProjectIDFromJSON(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	var v struct {
		QuotaProject string `json:"quota_project_id"`
	}
	if err := json.Unmarshal(b, &v); err != nil {
		return ""
	}
	return v.QuotaProject
}
