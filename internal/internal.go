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

package internal

import (
	"context"
	"io"
	"net/http"
	"time"
)

const (
	// TokenTypeBearer is the auth header prefix for bearer tokens.
	TokenTypeBearer = "Bearer"

	// QuotaProjectHeaderKey is the header used to attribute quota and billing
	// usage to a project independent of the authenticating identity.
	QuotaProjectHeaderKey = "x-goog-user-project"

	// DefaultUniverseDomain is the default service domain for a given Cloud
	// universe.
	DefaultUniverseDomain = "googleapis.com"

	// maxBodySize is the maximum read of response bodies in bytes.
	maxBodySize = 1 << 20
)

// CloneDefaultClient returns a fresh HTTP client with conservative defaults
// for contacting token origins.
func CloneDefaultClient() *http.Client {
	return &http.Client{
		Transport: http.DefaultTransport.(*http.Transport).Clone(),
		Timeout:   30 * time.Second,
	}
}

// ReadAll consumes the whole reader, capped at 1MB to protect against
// misbehaving origins.
func ReadAll(r io.Reader) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r, maxBodySize))
}

// StaticCredentialsProperty is a helper for creating static credentials
// properties.
type StaticCredentialsProperty string

// GetProperty loads the static property value.
func (p StaticCredentialsProperty) GetProperty(context.Context) (string, error) {
	return string(p), nil
}
