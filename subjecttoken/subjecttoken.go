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

// Package subjecttoken materializes the subject token described by a
// credential source. This is the refresh-side collaborator of the credsource
// package: sources stay pure data, providers do the I/O.
package subjecttoken

import (
	"context"
	"fmt"
	"net/http"

	"github.com/googleapis/google-auth-library-go/credsource"
	"github.com/googleapis/google-auth-library-go/internal"
)

// Provider retrieves the subject token a credential exchanges for an access
// token.
type Provider interface {
	// SubjectToken returns the current subject token or an error. Results are
	// not cached; providers are re-invoked on every refresh.
	SubjectToken(ctx context.Context) (string, error)
}

// Options configures the providers returned by [New].
type Options struct {
	// Audience is the audience the owning credential was configured with. It
	// is surfaced to executable sources through their environment. Optional.
	Audience string
	// SubjectTokenType is the token type the owning credential expects,
	// e.g. "urn:ietf:params:oauth:token-type:jwt". Surfaced to executable
	// sources. Optional.
	SubjectTokenType string
	// Client is used for URL-backed sources. Optional.
	Client *http.Client
}

func (o *Options) client() *http.Client {
	if o != nil && o.Client != nil {
		return o.Client
	}
	return internal.CloneDefaultClient()
}

// New returns the [Provider] matching the concrete type of src.
func New(src credsource.Source, opts *Options) (Provider, error) {
	switch s := src.(type) {
	case *credsource.File:
		return fileProvider{path: s.Path(), format: s.Format()}, nil
	case *credsource.URL:
		return urlProvider{
			endpoint: s.Endpoint(),
			headers:  s.Headers(),
			format:   s.Format(),
			client:   opts.client(),
		}, nil
	case *credsource.Executable:
		return newExecutableProvider(s, opts), nil
	case *credsource.Certificate:
		// Certificate sources authenticate the transport itself and carry no
		// subject token.
		return certificateProvider{}, nil
	default:
		return nil, fmt.Errorf("subjecttoken: unsupported credential source type %T", src)
	}
}

type certificateProvider struct{}

func (certificateProvider) SubjectToken(context.Context) (string, error) {
	return "", nil
}
