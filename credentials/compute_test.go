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

package credentials

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	auth "github.com/googleapis/google-auth-library-go"
)

// startMetadataServer stands in for the compute metadata service and points
// the metadata package at itself via GCE_METADATA_HOST.
func startMetadataServer(t *testing.T) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got, want := r.Header.Get("Metadata-Flavor"), "Google"; got != want {
			t.Errorf("got %q, want %q", got, want)
		}
		w.Header().Set("Metadata-Flavor", "Google")
		switch {
		case strings.HasSuffix(r.URL.Path, "/token"):
			fmt.Fprint(w, `{"access_token":"at-from-metadata","expires_in":3600,"token_type":"Bearer"}`)
		case strings.HasSuffix(r.URL.Path, "/identity"):
			if got, want := r.URL.Query().Get("format"), "full"; got != want {
				t.Errorf("got format %q, want %q", got, want)
			}
			if r.URL.Query().Get("audience") == "" {
				t.Error("identity request missing audience")
			}
			fmt.Fprint(w, "id-from-metadata")
		case strings.HasSuffix(r.URL.Path, "/project-id"):
			fmt.Fprint(w, "fake-project")
		case strings.HasSuffix(r.URL.Path, "/universe-domain"):
			http.Error(w, "not found", http.StatusNotFound)
		default:
			http.Error(w, "unexpected path "+r.URL.Path, http.StatusNotFound)
		}
	}))
	t.Cleanup(ts.Close)
	t.Setenv("GCE_METADATA_HOST", strings.TrimPrefix(ts.URL, "http://"))
	return ts
}

func TestNewComputeCredentials_Validation(t *testing.T) {
	tests := []struct {
		name string
		opts *ComputeOptions
	}{
		{name: "nil options", opts: nil},
		{name: "id token without audience", opts: &ComputeOptions{TokenKind: auth.TokenKindIDToken}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewComputeCredentials(tt.opts); !errors.Is(err, auth.ErrInvalidArgument) {
				t.Errorf("got %v, want ErrInvalidArgument", err)
			}
		})
	}
}

func TestNewComputeCredentials_AccessToken(t *testing.T) {
	startMetadataServer(t)
	ctx := context.Background()

	creds, err := NewComputeCredentials(&ComputeOptions{
		TokenKind: auth.TokenKindAccessToken,
		Scopes:    []string{"https://www.googleapis.com/auth/cloud-platform"},
	})
	if err != nil {
		t.Fatal(err)
	}
	tok, err := creds.Token(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := tok.Value(), "at-from-metadata"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if _, ok := tok.Expiry(); !ok {
		t.Error("got no expiry, want the metadata expires_in")
	}

	project, err := creds.ProjectID(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if want := "fake-project"; project != want {
		t.Errorf("got %q, want %q", project, want)
	}
	// 404 on the universe endpoint resolves to the default domain.
	ud, err := creds.UniverseDomain(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if want := "googleapis.com"; ud != want {
		t.Errorf("got %q, want %q", ud, want)
	}
}

func TestNewComputeCredentials_IDToken(t *testing.T) {
	startMetadataServer(t)
	ctx := context.Background()

	creds, err := NewComputeCredentials(&ComputeOptions{
		TokenKind:       auth.TokenKindIDToken,
		IDTokenAudience: "https://service.example.com",
	})
	if err != nil {
		t.Fatal(err)
	}
	tok, err := creds.Token(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := tok.Value(), "id-from-metadata"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestComputeDualProvider_Equal(t *testing.T) {
	scoped := &computeDualProvider{scopes: []string{"a", "b"}}
	scopedTwin := &computeDualProvider{scopes: []string{"a", "b"}}
	otherScopes := &computeDualProvider{scopes: []string{"a"}}
	withAudience := &computeDualProvider{scopes: []string{"a", "b"}, audience: "aud"}

	if !scoped.Equal(scopedTwin) {
		t.Error("identically configured providers should be equal")
	}
	if scoped.Equal(otherScopes) {
		t.Error("providers with different scopes must not be equal")
	}
	if scoped.Equal(withAudience) {
		t.Error("providers with different audiences must not be equal")
	}
}

func TestComputeDualProvider_CacheKey(t *testing.T) {
	a := &computeDualProvider{scopes: []string{"s1"}}
	b := &computeDualProvider{scopes: []string{"s1"}, audience: "aud"}
	if a.CacheKey() == b.CacheKey() {
		t.Errorf("got identical cache keys %q for different configurations", a.CacheKey())
	}
}
