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

// Package headers decorates outbound requests with credential material:
// the Authorization bearer header and, when a credential carries a quota
// project, the quota attribution header.
package headers

import (
	"context"
	"net/http"

	auth "github.com/googleapis/google-auth-library-go"
	"github.com/googleapis/google-auth-library-go/internal"
)

// SetAuthHeader uses the provided token to set the Authorization header on a
// request.
func SetAuthHeader(token *auth.Token, req *http.Request) {
	req.Header.Set("Authorization", internal.TokenTypeBearer+" "+token.Value())
}

// SetAuthMetadata uses the provided token to set the authorization metadata
// for RPC transports.
func SetAuthMetadata(token *auth.Token, m map[string]string) {
	m["authorization"] = internal.TokenTypeBearer + " " + token.Value()
}

// SetQuotaProject queries the credentials for a quota project and, when one
// is configured, sets the x-goog-user-project header on the request.
// Credentials without the property leave the request untouched.
func SetQuotaProject(ctx context.Context, creds *auth.Credentials, req *http.Request) error {
	qp, err := creds.QuotaProjectID(ctx)
	if err != nil {
		return err
	}
	if qp != "" {
		req.Header.Set(internal.QuotaProjectHeaderKey, qp)
	}
	return nil
}
