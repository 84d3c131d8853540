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
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/googleapis/google-auth-library-go/credsource"
	"github.com/googleapis/google-auth-library-go/internal"
)

const (
	executableSupportedMaxVersion = 1
	executableSource              = "response"
	outputFileSource              = "output file"

	allowExecutablesEnvVar = "GOOGLE_EXTERNAL_ACCOUNT_ALLOW_EXECUTABLES"

	jwtTokenType   = "urn:ietf:params:oauth:token-type:jwt"
	idTokenType    = "urn:ietf:params:oauth:token-type:id_token"
	saml2TokenType = "urn:ietf:params:oauth:token-type:saml2"
)

// nonCacheableError marks failures that invalidate a cached output file
// instead of being reported to the caller.
type nonCacheableError struct {
	message string
}

func (nce nonCacheableError) Error() string {
	return nce.message
}

// environment abstracts the process environment for testing.
type environment interface {
	existingEnv() []string
	getenv(string) string
	run(ctx context.Context, command string, env []string) ([]byte, error)
	now() time.Time
}

type runtimeEnvironment struct{}

func (r runtimeEnvironment) existingEnv() []string {
	return os.Environ()
}

func (r runtimeEnvironment) getenv(key string) string {
	return os.Getenv(key)
}

func (r runtimeEnvironment) now() time.Time {
	return time.Now().UTC()
}

func (r runtimeEnvironment) run(ctx context.Context, command string, env []string) ([]byte, error) {
	splitCommand := strings.Fields(command)
	cmd := exec.CommandContext(ctx, splitCommand[0], splitCommand[1:]...)
	cmd.Env = env

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, context.DeadlineExceeded
		}
		if exitError, ok := err.(*exec.ExitError); ok {
			return nil, exitCodeError(exitError.ExitCode())
		}
		return nil, executableError(err)
	}

	bytesStdout := bytes.TrimSpace(stdout.Bytes())
	if len(bytesStdout) > 0 {
		return bytesStdout, nil
	}
	return bytes.TrimSpace(stderr.Bytes()), nil
}

type executableProvider struct {
	command    string
	timeout    time.Duration
	outputFile string

	audience         string
	subjectTokenType string

	env environment
}

func newExecutableProvider(src *credsource.Executable, opts *Options) *executableProvider {
	p := &executableProvider{
		command:    src.Command(),
		timeout:    src.Timeout(),
		outputFile: src.OutputFile(),
		env:        runtimeEnvironment{},
	}
	if opts != nil {
		p.audience = opts.Audience
		p.subjectTokenType = opts.SubjectTokenType
	}
	return p
}

// executableResponse is the JSON document an executable prints, or caches in
// its output file.
type executableResponse struct {
	Version        int    `json:"version,omitempty"`
	Success        *bool  `json:"success,omitempty"`
	TokenType      string `json:"token_type,omitempty"`
	ExpirationTime int64  `json:"expiration_time,omitempty"`
	IDToken        string `json:"id_token,omitempty"`
	SamlResponse   string `json:"saml_response,omitempty"`
	Code           string `json:"code,omitempty"`
	Message        string `json:"message,omitempty"`
}

func (p *executableProvider) parseSubjectTokenFromSource(response []byte, source string, now int64) (string, error) {
	var result executableResponse
	if err := json.Unmarshal(response, &result); err != nil {
		return "", jsonParsingError(source, string(response))
	}
	if result.Version == 0 {
		return "", missingFieldError(source, "version")
	}
	if result.Success == nil {
		return "", missingFieldError(source, "success")
	}
	if !*result.Success {
		if result.Code == "" || result.Message == "" {
			return "", malformedFailureError()
		}
		return "", userDefinedError(result.Code, result.Message)
	}
	if result.Version > executableSupportedMaxVersion || result.Version < 0 {
		return "", unsupportedVersionError(source, result.Version)
	}
	if result.ExpirationTime == 0 && p.outputFile != "" {
		return "", missingFieldError(source, "expiration_time")
	}
	if result.TokenType == "" {
		return "", missingFieldError(source, "token_type")
	}
	if result.ExpirationTime != 0 && result.ExpirationTime < now {
		return "", tokenExpiredError()
	}

	switch result.TokenType {
	case jwtTokenType, idTokenType:
		if result.IDToken == "" {
			return "", missingFieldError(source, "id_token")
		}
		return result.IDToken, nil
	case saml2TokenType:
		if result.SamlResponse == "" {
			return "", missingFieldError(source, "saml_response")
		}
		return result.SamlResponse, nil
	default:
		return "", tokenTypeError(source)
	}
}

func (p *executableProvider) SubjectToken(ctx context.Context) (string, error) {
	if token, err := p.tokenFromOutputFile(); token != "" || err != nil {
		return token, err
	}
	return p.tokenFromExecutableCommand(ctx)
}

func (p *executableProvider) tokenFromOutputFile() (string, error) {
	if p.outputFile == "" {
		// This source doesn't use an output file.
		return "", nil
	}

	file, err := os.Open(p.outputFile)
	if err != nil {
		// No output file found. Hasn't been created yet, so skip it.
		return "", nil
	}
	defer file.Close()

	data, err := internal.ReadAll(file)
	if err != nil || len(data) == 0 {
		// Cache file exists but holds no data. Get a fresh credential.
		return "", nil
	}

	token, err := p.parseSubjectTokenFromSource(data, outputFileSource, p.env.now().Unix())
	if err != nil {
		if _, ok := err.(nonCacheableError); ok {
			// If the cached token is expired we need a new token, and if the
			// cache contains a failure we need to try again.
			return "", nil
		}
		// There was an error in the cached token and the developer should be
		// aware of it.
		return "", err
	}
	return token, nil
}

func (p *executableProvider) executableEnvironment() []string {
	result := p.env.existingEnv()
	result = append(result, fmt.Sprintf("GOOGLE_EXTERNAL_ACCOUNT_AUDIENCE=%v", p.audience))
	result = append(result, fmt.Sprintf("GOOGLE_EXTERNAL_ACCOUNT_TOKEN_TYPE=%v", p.subjectTokenType))
	result = append(result, "GOOGLE_EXTERNAL_ACCOUNT_INTERACTIVE=0")
	if p.outputFile != "" {
		result = append(result, fmt.Sprintf("GOOGLE_EXTERNAL_ACCOUNT_OUTPUT_FILE=%v", p.outputFile))
	}
	return result
}

func (p *executableProvider) tokenFromExecutableCommand(ctx context.Context) (string, error) {
	// Consumers must explicitly allow running executables.
	if p.env.getenv(allowExecutablesEnvVar) != "1" {
		return "", errors.New("subjecttoken: executables need to be explicitly allowed (set GOOGLE_EXTERNAL_ACCOUNT_ALLOW_EXECUTABLES to '1') to run")
	}

	ctx, cancel := context.WithDeadline(ctx, p.env.now().Add(p.timeout))
	defer cancel()

	output, err := p.env.run(ctx, p.command, p.executableEnvironment())
	if err != nil {
		return "", err
	}
	return p.parseSubjectTokenFromSource(output, executableSource, p.env.now().Unix())
}

func missingFieldError(source, field string) error {
	return fmt.Errorf("subjecttoken: %q missing %q field", source, field)
}

func jsonParsingError(source, data string) error {
	return fmt.Errorf("subjecttoken: unable to parse %q: %v", source, data)
}

func malformedFailureError() error {
	return nonCacheableError{"subjecttoken: response must include `error` and `message` fields when unsuccessful"}
}

func userDefinedError(code, message string) error {
	return nonCacheableError{fmt.Sprintf("subjecttoken: response contains unsuccessful response: (%v) %v", code, message)}
}

func unsupportedVersionError(source string, version int) error {
	return fmt.Errorf("subjecttoken: %v contains unsupported version: %v", source, version)
}

func tokenExpiredError() error {
	return nonCacheableError{"subjecttoken: the token returned by the executable is expired"}
}

func tokenTypeError(source string) error {
	return fmt.Errorf("subjecttoken: %v contains unsupported token type", source)
}

func exitCodeError(exitCode int) error {
	return fmt.Errorf("subjecttoken: executable command failed with exit code %v", exitCode)
}

func executableError(err error) error {
	return fmt.Errorf("subjecttoken: executable command failed: %v", err)
}
