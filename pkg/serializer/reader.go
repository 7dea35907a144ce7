/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package serializer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/stk5800/cliharness/pkg/k8s/client"
)

// Reader decodes a JSON or YAML document.
type Reader struct {
	format Format
	in     io.Reader
	closer io.Closer
}

// NewReader creates a Reader on in.
func NewReader(format Format, in io.Reader) (*Reader, error) {
	if format != FormatJSON && format != FormatYAML {
		return nil, fmt.Errorf("cannot read %q documents", format)
	}
	return &Reader{format: format, in: in}, nil
}

// NewFileReader opens path for reading.
func NewFileReader(format Format, path string) (*Reader, error) {
	r, err := NewReader(format, nil)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %q: %w", path, err)
	}
	r.in, r.closer = f, f
	return r, nil
}

// Deserialize decodes the document into v.
func (r *Reader) Deserialize(v any) error {
	switch r.format {
	case FormatYAML:
		if err := yaml.NewDecoder(r.in).Decode(v); err != nil {
			return fmt.Errorf("failed to decode yaml: %w", err)
		}
	default:
		if err := json.NewDecoder(r.in).Decode(v); err != nil {
			return fmt.Errorf("failed to decode json: %w", err)
		}
	}
	return nil
}

// Close closes the underlying file, if any.
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	err := r.closer.Close()
	r.closer = nil
	return err
}

// FromFile loads a document of type T from a file or a cm:// URI. The
// format follows the file extension; ConfigMap documents carry their own.
func FromFile[T any](ctx context.Context, path string) (*T, error) {
	var doc T

	if strings.HasPrefix(path, ConfigMapURIScheme) {
		ns, name, err := ParseConfigMapURI(path)
		if err != nil {
			return nil, err
		}
		cs, _, err := client.GetKubeClient()
		if err != nil {
			return nil, fmt.Errorf("failed to get kubernetes client for %q: %w", path, err)
		}
		if err := ReadConfigMap(ctx, cs, ns, name, &doc); err != nil {
			return nil, err
		}
		return &doc, nil
	}

	r, err := NewFileReader(FormatFromPath(path), path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	if err := r.Deserialize(&doc); err != nil {
		return nil, fmt.Errorf("failed to deserialize %q: %w", path, err)
	}
	return &doc, nil
}
