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
	"encoding/json"
	"fmt"
	"os"

	"github.com/googleapis/google-auth-library-go/credsource"
)

type fileProvider struct {
	path   string
	format *credsource.Format
}

func (p fileProvider) SubjectToken(ctx context.Context) (string, error) {
	tokenBytes, err := os.ReadFile(p.path)
	if err != nil {
		return "", fmt.Errorf("subjecttoken: failed to read credential file: %w", err)
	}
	return parseToken(bytes.TrimSpace(tokenBytes), p.format)
}

// parseToken extracts the subject token from raw file or response bytes per
// the source's format configuration.
func parseToken(b []byte, format *credsource.Format) (string, error) {
	if format == nil || format.Type == "" || format.Type == credsource.FormatTypeText {
		return string(b), nil
	}
	if format.Type != credsource.FormatTypeJSON {
		return "", fmt.Errorf("subjecttoken: invalid format type %q", format.Type)
	}
	jsonData := make(map[string]interface{})
	if err := json.Unmarshal(b, &jsonData); err != nil {
		return "", fmt.Errorf("subjecttoken: failed to unmarshal subject token: %w", err)
	}
	val, ok := jsonData[format.SubjectTokenFieldName]
	if !ok {
		return "", fmt.Errorf("subjecttoken: provided subject_token_field_name %q not found in credentials", format.SubjectTokenFieldName)
	}
	token, ok := val.(string)
	if !ok {
		return "", fmt.Errorf("subjecttoken: improperly formatted subject token")
	}
	return token, nil
}
