/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

// Package header provides the Kubernetes-style Kind/APIVersion/Metadata
// header carried by every document the harness writes: snapshots,
// acceptance reports and validation results.
package header

import (
	"fmt"
	"strings"
	"time"
)

const (
	APIVersionDomain = "cliharness.io"
	APIVersionV1     = "v1"
)

// Kind identifies the document type.
type Kind string

const (
	KindClusterSnapshot     Kind = "ClusterSnapshot"
	KindCLIAcceptanceReport Kind = "CLIAcceptanceReport"
	KindValidationResult    Kind = "ValidationResult"
)

func (k Kind) String() string {
	return string(k)
}

// Metadata keys.
const (
	MetaTimestamp = "timestamp"
	MetaVersion   = "version"
	MetaRunID     = "run-id"
	MetaHost      = "admin-host"
)

// Option is a functional option for configuring Header instances.
type Option func(*Header)

// WithMetadata adds a metadata key-value pair.
func WithMetadata(key, value string) Option {
	return func(h *Header) {
		if h.Metadata == nil {
			h.Metadata = make(map[string]string)
		}
		h.Metadata[key] = value
	}
}

// WithKind sets the Kind.
func WithKind(kind Kind) Option {
	return func(h *Header) {
		h.Kind = kind
	}
}

// WithAPIVersion sets the APIVersion.
func WithAPIVersion(version string) Option {
	return func(h *Header) {
		h.APIVersion = version
	}
}

// New creates a Header with the provided options.
func New(opts ...Option) *Header {
	h := &Header{
		Metadata: make(map[string]string),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Header contains metadata and versioning information for harness documents.
type Header struct {
	// Kind is the type of the document.
	Kind Kind `json:"kind,omitempty" yaml:"kind,omitempty"`

	// APIVersion is the schema version of the document.
	APIVersion string `json:"apiVersion,omitempty" yaml:"apiVersion,omitempty"`

	// Metadata contains key-value pairs describing how the document was produced.
	Metadata map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Init sets Kind, derives APIVersion as "<kind>.cliharness.io/v1" and
// stamps the creation time and tool version into Metadata. Existing
// metadata is kept.
func (h *Header) Init(kind Kind, version string) {
	h.Kind = kind
	h.APIVersion = APIVersion(kind)
	if h.Metadata == nil {
		h.Metadata = make(map[string]string)
	}
	h.Metadata[MetaTimestamp] = time.Now().UTC().Format(time.RFC3339)
	if version != "" {
		h.Metadata[MetaVersion] = version
	}
}

// APIVersion returns the API version string for kind.
func APIVersion(kind Kind) string {
	return fmt.Sprintf("%s.%s/%s", strings.ToLower(string(kind)), APIVersionDomain, APIVersionV1)
}
