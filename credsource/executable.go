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

import (
	"fmt"
	"time"

	auth "github.com/googleapis/google-auth-library-go"
)

const (
	defaultExecutableTimeout = 30 * time.Second
	executableTimeoutMinimum = 5 * time.Second
	executableTimeoutMaximum = 120 * time.Second
)

// Executable is a credential source backed by a subprocess that prints a
// subject token response.
type Executable struct {
	config     map[string]any
	command    string
	timeout    time.Duration
	outputFile string
}

// NewExecutable constructs an executable-backed [Source]. The "executable"
// object is required and must carry a "command"; "timeout_millis" (bounded
// between 5 and 120 seconds, default 30) and "output_file" are optional.
func NewExecutable(config map[string]any) (*Executable, error) {
	if err := checkConfig(config); err != nil {
		return nil, err
	}
	v, ok := config["executable"]
	if !ok || v == nil {
		return nil, missingFieldError("executable")
	}
	ec, ok := v.(map[string]any)
	if !ok {
		return nil, malformedFieldError("executable")
	}
	command, err := stringField(ec, "command")
	if err != nil {
		return nil, err
	}
	if command == "" {
		return nil, missingFieldError("command")
	}
	timeout := defaultExecutableTimeout
	if tv, ok := ec["timeout_millis"]; ok && tv != nil {
		millis, ok := asInt64(tv)
		if !ok {
			return nil, malformedFieldError("timeout_millis")
		}
		timeout = time.Duration(millis) * time.Millisecond
		if timeout < executableTimeoutMinimum || timeout > executableTimeoutMaximum {
			return nil, fmt.Errorf("credsource: invalid \"timeout_millis\" field — executable timeout must be between 5 and 120 seconds: %w", auth.ErrInvalidArgument)
		}
	}
	outputFile, err := stringField(ec, "output_file")
	if err != nil {
		return nil, err
	}
	return &Executable{
		config:     cloneConfig(config),
		command:    command,
		timeout:    timeout,
		outputFile: outputFile,
	}, nil
}

// asInt64 accepts the integer encodings a JSON decode or a hand-built config
// may carry.
func asInt64(v any) (int64, bool) {
	switch v := v.(type) {
	case int:
		return int64(v), true
	case int64:
		return v, true
	case float64:
		return int64(v), true
	default:
		return 0, false
	}
}

// SourceType implements [Source].
func (e *Executable) SourceType() string { return ExecutableSourceType }

// Config implements [Source].
func (e *Executable) Config() map[string]any { return cloneConfig(e.config) }

// Command returns the full command, including arguments, that produces the
// subject token response.
func (e *Executable) Command() string { return e.command }

// Timeout returns how long the subprocess may run.
func (e *Executable) Timeout() time.Duration { return e.timeout }

// OutputFile returns the location the executable caches responses at, or
// empty when caching is not configured.
func (e *Executable) OutputFile() string { return e.outputFile }
