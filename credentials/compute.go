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

// Package credentials provides credentials backed by concrete token origins.
// Today that is the compute metadata service, which can mint both access
// tokens and ID tokens for the instance's service account.
package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"cloud.google.com/go/compute/metadata"
	auth "github.com/googleapis/google-auth-library-go"
	"github.com/googleapis/google-auth-library-go/internal"
)

var (
	computeTokenURI    = "instance/service-accounts/default/token"
	computeIdentityURI = "instance/service-accounts/default/identity"
)

// ComputeOptions configures credentials sourced from the compute metadata
// service.
type ComputeOptions struct {
	// TokenKind decides whether callers see the access token or the ID token
	// minted by the metadata service. Required.
	TokenKind auth.TokenKind
	// Scopes are the requested scopes for access tokens. Optional.
	Scopes []string
	// IDTokenAudience is the audience baked into minted ID tokens. Required
	// when TokenKind is [auth.TokenKindIDToken].
	IDTokenAudience string
	// EarlyTokenRefresh is the amount of time before a token expires that it
	// should be refreshed. Optional.
	EarlyTokenRefresh time.Duration
	// Client is the metadata client to use. Optional.
	Client *metadata.Client
}

func (o *ComputeOptions) validate() error {
	if o == nil {
		return fmt.Errorf("credentials: options must be provided: %w", auth.ErrInvalidArgument)
	}
	if o.TokenKind == auth.TokenKindIDToken && o.IDTokenAudience == "" {
		return fmt.Errorf("credentials: IDTokenAudience must be provided for ID token credentials: %w", auth.ErrInvalidArgument)
	}
	return nil
}

func (o *ComputeOptions) client() *metadata.Client {
	if o.Client != nil {
		return o.Client
	}
	return metadata.NewClient(nil)
}

// NewComputeCredentials returns [auth.Credentials] that fetch tokens from the
// compute metadata service. The token surfaced to callers is selected by
// [ComputeOptions.TokenKind]; everything else about the credentials behaves
// identically for both kinds.
func NewComputeCredentials(opts *ComputeOptions) (*auth.Credentials, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	dual := &computeDualProvider{
		scopes:   opts.Scopes,
		audience: opts.IDTokenAudience,
		client:   opts.client(),
	}
	tp, err := auth.NewProxyTokenProvider(&auth.ProxyTokenProviderOptions{
		Base: dual,
		Kind: opts.TokenKind,
	})
	if err != nil {
		return nil, err
	}
	return auth.NewCredentials(&auth.CredentialsOptions{
		TokenProvider: auth.NewCachedTokenProvider(tp, &auth.CachedTokenProviderOptions{
			ExpireEarly: opts.EarlyTokenRefresh,
		}),
		ProjectIDProvider:      computeProjectIDProvider{client: dual.client},
		UniverseDomainProvider: &computeUniverseDomainProvider{client: dual.client},
	}), nil
}

// computeDualProvider fetches both token kinds from the compute metadata
// service. The ID token is only requested when an audience is configured.
type computeDualProvider struct {
	scopes   []string
	audience string
	client   *metadata.Client
}

type metadataTokenResp struct {
	AccessToken  string `json:"access_token"`
	ExpiresInSec int    `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

func (p *computeDualProvider) DualToken(ctx context.Context) (*auth.DualToken, error) {
	tokenURI, err := url.Parse(computeTokenURI)
	if err != nil {
		return nil, err
	}
	if len(p.scopes) > 0 {
		v := url.Values{}
		v.Set("scopes", strings.Join(p.scopes, ","))
		tokenURI.RawQuery = v.Encode()
	}
	tokenJSON, err := p.client.GetWithContext(ctx, tokenURI.String())
	if err != nil {
		return nil, fmt.Errorf("credentials: cannot fetch token from metadata: %w", err)
	}
	var res metadataTokenResp
	if err := json.NewDecoder(strings.NewReader(tokenJSON)).Decode(&res); err != nil {
		return nil, fmt.Errorf("credentials: invalid token JSON from metadata: %w", err)
	}
	if res.ExpiresInSec == 0 || res.AccessToken == "" {
		return nil, errors.New("credentials: incomplete token received from metadata")
	}
	dt := &auth.DualToken{
		AccessToken: auth.NewTokenWithExpiry(res.AccessToken, time.Now().Add(time.Duration(res.ExpiresInSec)*time.Second)),
	}

	if p.audience != "" {
		v := url.Values{}
		v.Set("audience", p.audience)
		v.Set("format", "full")
		idToken, err := p.client.GetWithContext(ctx, computeIdentityURI+"?"+v.Encode())
		if err != nil {
			return nil, fmt.Errorf("credentials: cannot fetch ID token from metadata: %w", err)
		}
		dt.IDToken = strings.TrimSpace(idToken)
	}
	return dt, nil
}

// Equal reports whether both providers are configured to mint the same
// tokens.
func (p *computeDualProvider) Equal(other auth.DualTokenProvider) bool {
	o, ok := other.(*computeDualProvider)
	if !ok {
		return false
	}
	if len(p.scopes) != len(o.scopes) {
		return false
	}
	for i := range p.scopes {
		if p.scopes[i] != o.scopes[i] {
			return false
		}
	}
	return p.audience == o.audience
}

// CacheKey identifies the provider's configuration for token caches.
func (p *computeDualProvider) CacheKey() string {
	return "compute-metadata\n" + strings.Join(p.scopes, ",") + "\n" + p.audience
}

// computeProjectIDProvider fetches the instance's project ID from the
// metadata service.
type computeProjectIDProvider struct {
	client *metadata.Client
}

func (p computeProjectIDProvider) GetProperty(ctx context.Context) (string, error) {
	return p.client.ProjectIDWithContext(ctx)
}

// computeUniverseDomainProvider fetches the credentials universe domain from
// the metadata service. The result never changes for a running instance, so
// it is fetched once.
type computeUniverseDomainProvider struct {
	client *metadata.Client

	universeDomainOnce sync.Once
	universeDomain     string
	universeDomainErr  error
}

func (c *computeUniverseDomainProvider) GetProperty(ctx context.Context) (string, error) {
	c.universeDomainOnce.Do(func() {
		c.universeDomain, c.universeDomainErr = getMetadataUniverseDomain(ctx, c.client)
	})
	if c.universeDomainErr != nil {
		return "", c.universeDomainErr
	}
	return c.universeDomain, nil
}

func getMetadataUniverseDomain(ctx context.Context, client *metadata.Client) (string, error) {
	universeDomain, err := client.GetWithContext(ctx, "universe/universe-domain")
	if err == nil {
		return universeDomain, nil
	}
	if _, ok := err.(metadata.NotDefinedError); ok {
		// http.StatusNotFound (404)
		return internal.DefaultUniverseDomain, nil
	}
	return "", err
}
