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

	"github.com/googleapis/google-auth-library-go/internal"
)

// Credentials are used to authorize requests. They hold a [TokenProvider]
// together with optional properties of the underlying credential. Properties
// a credential does not carry resolve to an empty value, never an error, so
// callers can probe for a capability without knowing the concrete credential
// type.
type Credentials struct {
	json []byte

	projectID      CredentialsPropertyProvider
	quotaProjectID CredentialsPropertyProvider
	universeDomain CredentialsPropertyProvider

	TokenProvider
}

// JSON returns the bytes associated with the the file used to source
// credentials, if one was used.
func (c *Credentials) JSON() []byte {
	return c.json
}

// ProjectID returns the associated project ID from the underlying file or
// environment.
func (c *Credentials) ProjectID(ctx context.Context) (string, error) {
	return resolveProperty(ctx, c.projectID)
}

// QuotaProjectID returns the billing/quota project that usage should be
// attributed to, if one is configured for the credential.
func (c *Credentials) QuotaProjectID(ctx context.Context) (string, error) {
	return resolveProperty(ctx, c.quotaProjectID)
}

// UniverseDomain returns the default service domain for a given Cloud
// universe. The default value is "googleapis.com".
func (c *Credentials) UniverseDomain(ctx context.Context) (string, error) {
	v, err := resolveProperty(ctx, c.universeDomain)
	if err != nil {
		return "", err
	}
	if v == "" {
		return internal.DefaultUniverseDomain, nil
	}
	return v, nil
}

func resolveProperty(ctx context.Context, p CredentialsPropertyProvider) (string, error) {
	if p == nil {
		return "", nil
	}
	return p.GetProperty(ctx)
}

// CredentialsPropertyProvider provides an implementation to fetch a property
// value for [Credentials].
type CredentialsPropertyProvider interface {
	GetProperty(context.Context) (string, error)
}

// CredentialsPropertyFunc is a type adapter to allow the use of ordinary
// functions as a [CredentialsPropertyProvider].
type CredentialsPropertyFunc func(context.Context) (string, error)

// GetProperty loads the properly value provided the given context.
func (p CredentialsPropertyFunc) GetProperty(ctx context.Context) (string, error) {
	return p(ctx)
}

// CredentialsOptions are used to configure [Credentials].
type CredentialsOptions struct {
	// TokenProvider is a means of sourcing a token for the credentials. Required.
	TokenProvider TokenProvider
	// JSON is the raw contents of the credentials file if sourced from a file.
	JSON []byte
	// ProjectIDProvider resolves the project ID associated with the
	// credentials.
	ProjectIDProvider CredentialsPropertyProvider
	// QuotaProjectIDProvider resolves the quota project ID associated with the
	// credentials.
	QuotaProjectIDProvider CredentialsPropertyProvider
	// UniverseDomainProvider resolves the universe domain with the credentials.
	UniverseDomainProvider CredentialsPropertyProvider
}

// NewCredentials returns new [Credentials] from the provided options.
func NewCredentials(opts *CredentialsOptions) *Credentials {
	return &Credentials{
		TokenProvider:  opts.TokenProvider,
		json:           opts.JSON,
		projectID:      opts.ProjectIDProvider,
		quotaProjectID: opts.QuotaProjectIDProvider,
		universeDomain: opts.UniverseDomainProvider,
	}
}
