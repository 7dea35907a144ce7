/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package serializer

import (
	"log/slog"
	"net/http"
	"strings"
)

var contentTypes = map[Format]string{
	FormatJSON:  "application/json",
	FormatYAML:  "application/yaml",
	FormatTable: "text/plain; charset=utf-8",
}

// RespondJSON writes data as JSON with the given status code.
func RespondJSON(w http.ResponseWriter, statusCode int, data any) {
	respond(w, FormatJSON, statusCode, data)
}

// Respond writes data in the format requested by the "format" query
// parameter or the Accept header, defaulting to JSON.
func Respond(w http.ResponseWriter, r *http.Request, statusCode int, data any) {
	respond(w, Negotiate(r), statusCode, data)
}

// Negotiate picks the response format for r.
func Negotiate(r *http.Request) Format {
	if f := ParseFormat(r.URL.Query().Get("format")); !f.IsUnknown() {
		return f
	}
	accept := r.Header.Get("Accept")
	switch {
	case strings.Contains(accept, "yaml"):
		return FormatYAML
	case strings.Contains(accept, "text/plain"):
		return FormatTable
	default:
		return FormatJSON
	}
}

// respond encodes before writing headers so an encoding error never
// produces a partial response.
func respond(w http.ResponseWriter, format Format, statusCode int, data any) {
	body, err := Encode(format, data)
	if err != nil {
		slog.Error("response encoding failed", "format", string(format), "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentTypes[format])
	w.WriteHeader(statusCode)
	if _, err := w.Write(body); err != nil {
		slog.Warn("response write failed", "error", err)
	}
}
