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

package subjecttoken

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/googleapis/google-auth-library-go/credsource"
	"github.com/googleapis/google-auth-library-go/internal"
)

type urlProvider struct {
	endpoint string
	headers  map[string]string
	format   *credsource.Format
	client   *http.Client
}

func (p urlProvider) SubjectToken(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("subjecttoken: HTTP request for URL-sourced credential failed: %w", err)
	}
	for key, val := range p.headers {
		req.Header.Add(key, val)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("subjecttoken: invalid response when retrieving subject token: %w", err)
	}
	defer resp.Body.Close()

	body, err := internal.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("subjecttoken: invalid body in subject token URL query: %w", err)
	}
	if c := resp.StatusCode; c < http.StatusOK || c >= http.StatusMultipleChoices {
		return "", fmt.Errorf("subjecttoken: status code %d: %s", c, body)
	}
	return parseToken(bytes.TrimSpace(body), p.format)
}
