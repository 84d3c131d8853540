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

package credsource

// URL is a credential source backed by a metadata endpoint that serves a
// subject token over HTTP.
type URL struct {
	config   map[string]any
	endpoint string
	headers  map[string]string
	format   *Format
}

// NewURL constructs a URL-backed [Source]. The "url" key is required;
// "headers" and "format" are optional.
func NewURL(config map[string]any) (*URL, error) {
	if err := checkConfig(config); err != nil {
		return nil, err
	}
	endpoint, err := stringField(config, "url")
	if err != nil {
		return nil, err
	}
	if endpoint == "" {
		return nil, missingFieldError("url")
	}
	headers, err := parseHeaders(config)
	if err != nil {
		return nil, err
	}
	format, err := parseFormat(config)
	if err != nil {
		return nil, err
	}
	return &URL{
		config:   cloneConfig(config),
		endpoint: endpoint,
		headers:  headers,
		format:   format,
	}, nil
}

func parseHeaders(config map[string]any) (map[string]string, error) {
	v, ok := config["headers"]
	if !ok || v == nil {
		return nil, nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, malformedFieldError("headers")
	}
	headers := make(map[string]string, len(m))
	for k := range m {
		s, err := stringField(m, k)
		if err != nil {
			return nil, err
		}
		headers[k] = s
	}
	return headers, nil
}

// SourceType implements [Source].
func (u *URL) SourceType() string { return URLSourceType }

// Config implements [Source].
func (u *URL) Config() map[string]any { return cloneConfig(u.config) }

// Endpoint returns the URL the subject token is fetched from.
func (u *URL) Endpoint() string { return u.endpoint }

// Headers returns a copy of the headers to attach to the fetch request.
func (u *URL) Headers() map[string]string {
	if u.headers == nil {
		return nil
	}
	headers := make(map[string]string, len(u.headers))
	for k, v := range u.headers {
		headers[k] = v
	}
	return headers
}

// Format returns how the subject token is carried by the response, or nil
// for plain text.
func (u *URL) Format() *Format {
	if u.format == nil {
		return nil
	}
	format := *u.format
	return &format
}
