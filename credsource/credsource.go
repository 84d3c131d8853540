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

// Package credsource models the origins externally-sourced credentials are
// retrieved from: a local file, a URL, a subprocess, or a workload
// certificate. A source is pure configuration plus type identity and
// performs no I/O itself. The set of sources is open: anything satisfying
// [Source] can be carried by a credential, so new origin mechanisms do not
// affect existing variants or their callers.
//
// Every constructor takes the raw configuration mapping parsed out of a
// credential description (see the credsfile package) and validates the keys
// the variant requires. All validation failures wrap
// [github.com/googleapis/google-auth-library-go.ErrInvalidArgument].
package credsource

import (
	"fmt"

	auth "github.com/googleapis/google-auth-library-go"
)

// Source type identifiers, as reported by [Source.SourceType].
const (
	FileSourceType        = "file"
	URLSourceType         = "url"
	ExecutableSourceType  = "executable"
	CertificateSourceType = "certificate"
)

// Format types for file and URL sourced subject tokens.
const (
	FormatTypeText = "text"
	FormatTypeJSON = "json"
)

// Source is one configured origin for external credential retrieval. A
// concrete credential holds exactly one Source describing how to refresh
// itself; the fetch logic itself lives with the credential (see the
// subjecttoken package), keeping sources serializable as pure data.
type Source interface {
	// SourceType identifies the variant, e.g. "file" or "url".
	SourceType() string
	// Config returns a copy of the raw configuration mapping the source was
	// built from. Mutating the returned map does not affect the source.
	Config() map[string]any
}

// New constructs the [Source] variant matching the keys present in config.
func New(config map[string]any) (Source, error) {
	if err := checkConfig(config); err != nil {
		return nil, err
	}
	switch {
	case config["file"] != nil:
		return NewFile(config)
	case config["url"] != nil:
		return NewURL(config)
	case config["executable"] != nil:
		return NewExecutable(config)
	case config["certificate"] != nil:
		return NewCertificate(config)
	}
	return nil, fmt.Errorf("credsource: unable to determine the credential source type: %w", auth.ErrInvalidArgument)
}

// Format describes how a subject token is carried by a file or URL response.
type Format struct {
	// Type is either "text" or "json". When empty, "text" is assumed.
	Type string
	// SubjectTokenFieldName names the field holding the token in a JSON
	// response. Required for the "json" type.
	SubjectTokenFieldName string
}

// checkConfig is the base validation shared by all variants: the mapping must
// be present. An empty mapping is allowed here; each variant rejects it via
// its own required-key checks.
func checkConfig(config map[string]any) error {
	if config == nil {
		return fmt.Errorf("credsource: credential source configuration must be provided: %w", auth.ErrInvalidArgument)
	}
	return nil
}

func missingFieldError(key string) error {
	return fmt.Errorf("credsource: missing required %q field: %w", key, auth.ErrInvalidArgument)
}

func malformedFieldError(key string) error {
	return fmt.Errorf("credsource: malformed %q field: %w", key, auth.ErrInvalidArgument)
}

// stringField returns the string under key. Absence is not an error; a value
// of any other type is.
func stringField(config map[string]any, key string) (string, error) {
	v, ok := config[key]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", malformedFieldError(key)
	}
	return s, nil
}

func parseFormat(config map[string]any) (*Format, error) {
	v, ok := config["format"]
	if !ok || v == nil {
		return nil, nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, malformedFieldError("format")
	}
	typ, err := stringField(m, "type")
	if err != nil {
		return nil, err
	}
	fieldName, err := stringField(m, "subject_token_field_name")
	if err != nil {
		return nil, err
	}
	switch typ {
	case "", FormatTypeText:
	case FormatTypeJSON:
		if fieldName == "" {
			return nil, fmt.Errorf("credsource: missing \"subject_token_field_name\" for JSON format: %w", auth.ErrInvalidArgument)
		}
	default:
		return nil, fmt.Errorf("credsource: invalid format type %q: %w", typ, auth.ErrInvalidArgument)
	}
	return &Format{Type: typ, SubjectTokenFieldName: fieldName}, nil
}

// cloneConfig deep-copies a configuration mapping so sources and their
// callers never share mutable state.
func cloneConfig(config map[string]any) map[string]any {
	out := make(map[string]any, len(config))
	for k, v := range config {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch v := v.(type) {
	case map[string]any:
		return cloneConfig(v)
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}
