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

	auth "github.com/googleapis/google-auth-library-go"
)

// Certificate is a credential source backed by a workload X.509 certificate.
// The certificate authenticates the transport itself, so this source carries
// no subject token of its own.
type Certificate struct {
	config           map[string]any
	configLocation   string
	useDefaultConfig bool
}

// NewCertificate constructs a certificate-backed [Source]. The "certificate"
// object is required and must set exactly one of
// "certificate_config_location" or "use_default_certificate_config".
func NewCertificate(config map[string]any) (*Certificate, error) {
	if err := checkConfig(config); err != nil {
		return nil, err
	}
	v, ok := config["certificate"]
	if !ok || v == nil {
		return nil, missingFieldError("certificate")
	}
	cc, ok := v.(map[string]any)
	if !ok {
		return nil, malformedFieldError("certificate")
	}
	location, err := stringField(cc, "certificate_config_location")
	if err != nil {
		return nil, err
	}
	useDefault := false
	if dv, ok := cc["use_default_certificate_config"]; ok && dv != nil {
		b, ok := dv.(bool)
		if !ok {
			return nil, malformedFieldError("use_default_certificate_config")
		}
		useDefault = b
	}
	if useDefault && location != "" {
		return nil, fmt.Errorf("credsource: \"certificate_config_location\" must not be set when the default certificate config is requested: %w", auth.ErrInvalidArgument)
	}
	if !useDefault && location == "" {
		return nil, fmt.Errorf("credsource: one of \"certificate_config_location\" or \"use_default_certificate_config\" must be set: %w", auth.ErrInvalidArgument)
	}
	return &Certificate{
		config:           cloneConfig(config),
		configLocation:   location,
		useDefaultConfig: useDefault,
	}, nil
}

// SourceType implements [Source].
func (c *Certificate) SourceType() string { return CertificateSourceType }

// Config implements [Source].
func (c *Certificate) Config() map[string]any { return cloneConfig(c.config) }

// ConfigLocation returns the location of the certificate configuration file,
// or empty when the default location is used.
func (c *Certificate) ConfigLocation() string { return c.configLocation }

// UseDefaultConfig reports whether the certificate configuration is read
// from its well-known default location.
func (c *Certificate) UseDefaultConfig() bool { return c.useDefaultConfig }
