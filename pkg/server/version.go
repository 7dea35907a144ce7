/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package server

import (
	"net/http"
	"regexp"
	"slices"
)

const (
	// DefaultAPIVersion is served when the client does not ask for one.
	DefaultAPIVersion = "v1"

	// APIVersionHeader reports the API version that served the request.
	APIVersionHeader = "X-API-Version"
)

var (
	supportedAPIVersions = []string{"v1"}
	vendorMediaRe        = regexp.MustCompile(`application/vnd\.cliharness\.(v\d+)\+(?:json|yaml)`)
)

// negotiateAPIVersion reads application/vnd.cliharness.vN+json from Accept.
func negotiateAPIVersion(r *http.Request) string {
	m := vendorMediaRe.FindStringSubmatch(r.Header.Get("Accept"))
	if m == nil || !isValidAPIVersion(m[1]) {
		return DefaultAPIVersion
	}
	return m[1]
}

func isValidAPIVersion(v string) bool {
	return slices.Contains(supportedAPIVersions, v)
}
