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

package headers

import (
	"context"
	"net/http"
	"testing"

	auth "github.com/googleapis/google-auth-library-go"
	"github.com/googleapis/google-auth-library-go/internal"
)

type staticProvider struct {
	tok *auth.Token
}

func (p staticProvider) Token(context.Context) (*auth.Token, error) {
	return p.tok, nil
}

func TestSetAuthHeader(t *testing.T) {
	req, err := http.NewRequest(http.MethodGet, "https://example.com", nil)
	if err != nil {
		t.Fatal(err)
	}
	SetAuthHeader(auth.NewToken("at-xyz"), req)
	if got, want := req.Header.Get("Authorization"), "Bearer at-xyz"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestSetAuthMetadata(t *testing.T) {
	m := map[string]string{}
	SetAuthMetadata(auth.NewToken("at-xyz"), m)
	if got, want := m["authorization"], "Bearer at-xyz"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestSetQuotaProject(t *testing.T) {
	tests := []struct {
		name  string
		creds *auth.Credentials
		want  string
	}{
		{
			name: "quota project set",
			creds: auth.NewCredentials(&auth.CredentialsOptions{
				TokenProvider:          staticProvider{tok: auth.NewToken("tok")},
				QuotaProjectIDProvider: internal.StaticCredentialsProperty("quota-proj"),
			}),
			want: "quota-proj",
		},
		{
			name: "no quota project",
			creds: auth.NewCredentials(&auth.CredentialsOptions{
				TokenProvider: staticProvider{tok: auth.NewToken("tok")},
			}),
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodGet, "https://example.com", nil)
			if err != nil {
				t.Fatal(err)
			}
			if err := SetQuotaProject(context.Background(), tt.creds, req); err != nil {
				t.Fatal(err)
			}
			if got := req.Header.Get(internal.QuotaProjectHeaderKey); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
