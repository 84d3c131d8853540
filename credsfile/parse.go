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

package credsfile

import (
	"encoding/json"

	"github.com/googleapis/google-auth-library-go/credsource"
)

// ExternalAccountFile representation.
type ExternalAccountFile struct {
	Type                           string `json:"type"`
	ClientID                       string `json:"client_id"`
	ClientSecret                   string `json:"client_secret"`
	Audience                       string `json:"audience"`
	SubjectTokenType               string `json:"subject_token_type"`
	ServiceAccountImpersonationURL string `json:"service_account_impersonation_url"`
	TokenURL                       string `json:"token_url"`
	TokenInfoURL                   string `json:"token_info_url"`
	QuotaProjectID                 string `json:"quota_project_id"`
	UniverseDomain                 string `json:"universe_domain"`

	// CredentialSource is kept as the raw mapping the file carried; variant
	// validation happens in [ExternalAccountFile.Source].
	CredentialSource map[string]any `json:"credential_source"`
}

// ParseExternalAccount parses bytes into an [ExternalAccountFile].
func ParseExternalAccount(b []byte) (*ExternalAccountFile, error) {
	var f *ExternalAccountFile
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, err
	}
	return f, nil
}

// Source validates the file's credential_source object and returns the
// matching [credsource.Source] variant.
func (f *ExternalAccountFile) Source() (credsource.Source, error) {
	return credsource.New(f.CredentialSource)
}

type fileTypeChecker struct {
	Type string `json:"type"`
}

// ParseFileType determines the [CredentialType] based on bytes provided.
// Only returns error for json.Unmarshal.
// Returns UnknownCredType if no match.
func ParseFileType(b []byte) (CredentialType, error) {
	var f fileTypeChecker
	if err := json.Unmarshal(b, &f); err != nil {
		return 0, err
	}
	return parseCredentialType(f.Type), nil
}
