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

// File is a credential source backed by a local file holding a subject
// token.
type File struct {
	config map[string]any
	path   string
	format *Format
}

// NewFile constructs a file-backed [Source]. The "file" key is required;
// "format" is optional.
func NewFile(config map[string]any) (*File, error) {
	if err := checkConfig(config); err != nil {
		return nil, err
	}
	path, err := stringField(config, "file")
	if err != nil {
		return nil, err
	}
	if path == "" {
		return nil, missingFieldError("file")
	}
	format, err := parseFormat(config)
	if err != nil {
		return nil, err
	}
	return &File{
		config: cloneConfig(config),
		path:   path,
		format: format,
	}, nil
}

// SourceType implements [Source].
func (f *File) SourceType() string { return FileSourceType }

// Config implements [Source].
func (f *File) Config() map[string]any { return cloneConfig(f.config) }

// Path returns the location of the file holding the subject token.
func (f *File) Path() string { return f.path }

// Format returns how the subject token is carried by the file, or nil for
// plain text.
func (f *File) Format() *Format {
	if f.format == nil {
		return nil
	}
	format := *f.format
	return &format
}
